package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/docklift/docklift/internal/infrastructure/fs"
)

// Validator runs the construction-time validation pass: defaults are applied
// first, then struct rules are checked, then failures are collected into
// ValidationErrors.
type Validator struct {
	validate   *validator.Validate
	fileSystem fs.FileSystem
	homeDir    func() (string, error)
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithValidatorFileSystem sets the file system used to check that the SSH key exists.
func WithValidatorFileSystem(fileSystem fs.FileSystem) ValidatorOption {
	return func(v *Validator) {
		v.fileSystem = fileSystem
	}
}

// WithHomeDir overrides how the home directory is resolved for "~" expansion.
func WithHomeDir(homeDir func() (string, error)) ValidatorOption {
	return func(v *Validator) {
		v.homeDir = homeDir
	}
}

// NewValidator creates a validator backed by the OS file system.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		fileSystem: fs.NewFileSystem(),
		homeDir:    os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.validate.RegisterTagNameFunc(yamlFieldName)
	// RegisterValidation only fails for empty or reserved tags.
	_ = v.validate.RegisterValidation("exists", v.pathExists)

	return v
}

var defaultValidator = NewValidator()

// Validate normalizes cfg in place and checks it.
func (v *Validator) Validate(cfg *DeploymentConfig) error {
	if !reflect.ValueOf(cfg.VPS).IsZero() {
		if err := v.normalizeVPS(&cfg.VPS); err != nil {
			return err
		}
	}
	if !reflect.ValueOf(cfg.Application).IsZero() {
		normalizeApplication(&cfg.Application)
	}

	return v.check(cfg, "")
}

// ValidateVPS normalizes and checks a single VPS connection.
func (v *Validator) ValidateVPS(vps *VPSConnection) error {
	if err := v.normalizeVPS(vps); err != nil {
		return err
	}
	return v.check(vps, "vps")
}

// ValidateApplication normalizes and checks a single application descriptor.
func (v *Validator) ValidateApplication(app *ApplicationDescriptor) error {
	normalizeApplication(app)
	return v.check(app, "application")
}

func (v *Validator) normalizeVPS(vps *VPSConnection) error {
	if vps.Port == 0 {
		vps.Port = DefaultSSHPort
	}

	expanded, err := expandHome(vps.SSHKeyPath, v.homeDir)
	if err != nil {
		return ValidationErrors{{
			Field:  "vps.ssh_key_path",
			Value:  vps.SSHKeyPath,
			Reason: fmt.Sprintf("cannot be expanded (%v)", err),
		}}
	}
	vps.SSHKeyPath = expanded

	return nil
}

func normalizeApplication(app *ApplicationDescriptor) {
	if app.DockerfilePath == "" {
		app.DockerfilePath = DefaultDockerfile
	}
	if app.BuildContext == "" {
		app.BuildContext = DefaultContext
	}
	if app.Environment == nil {
		app.Environment = map[string]string{}
	}
	if app.Dependencies == nil {
		app.Dependencies = map[string]ServiceOverride{}
	}
	for name, svc := range app.Dependencies {
		app.Dependencies[name] = normalizeService(svc)
	}
}

func normalizeService(svc ServiceOverride) ServiceOverride {
	if svc.Environment == nil {
		svc.Environment = map[string]string{}
	}
	if svc.Volumes == nil {
		svc.Volumes = []string{}
	}
	if svc.Ports == nil {
		svc.Ports = []string{}
	}
	if svc.DependsOn == nil {
		svc.DependsOn = []string{}
	}
	if svc.Extra == nil {
		svc.Extra = map[string]Value{}
	}
	return svc
}

// check runs the struct rules. prefix is the document path of s.
func (v *Validator) check(s interface{}, prefix string) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config validation failed: %w", err)
	}

	errs := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, toValidationError(fe, prefix))
	}
	return errs
}

func (v *Validator) pathExists(fl validator.FieldLevel) bool {
	_, err := v.fileSystem.Stat(fl.Field().String())
	return err == nil
}

// toValidationError maps a validator failure to a document path and a readable reason.
func toValidationError(fe validator.FieldError, prefix string) *ValidationError {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	if prefix != "" {
		field = prefix + "." + field
	}

	ve := &ValidationError{Field: field}
	switch fe.Tag() {
	case "required":
		ve.Reason = "is required"
	case "exists":
		ve.Reason = "points to a missing file"
		ve.Value = fmt.Sprint(fe.Value())
	case "min", "max":
		ve.Reason = "must be between 1 and 65535"
		ve.Value = fmt.Sprint(reflect.Indirect(reflect.ValueOf(fe.Value())))
	case "email":
		ve.Reason = "must be a valid email address"
		ve.Value = fmt.Sprint(fe.Value())
	default:
		ve.Reason = fmt.Sprintf("failed validation: %s (condition: %s)", fe.Tag(), fe.Param())
	}
	return ve
}

// yamlFieldName reports fields by their document key so errors match the file.
func yamlFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string, homeDir func() (string, error)) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}

	home, err := homeDir()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
