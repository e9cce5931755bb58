package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"

	"github.com/docklift/docklift/internal/infrastructure/fs"
)

// Loader defines the interface for loading configuration.
type Loader interface {
	Load(configPath string) (*DeploymentConfig, error)
}

// DefaultLoader reads a configuration file, decodes it according to its
// extension and validates the result.
type DefaultLoader struct {
	fileSystem fs.FileSystem
	validator  *Validator
	expandEnv  bool
}

// LoaderOption configures a DefaultLoader.
type LoaderOption func(*DefaultLoader)

// WithFileSystem sets the file system used to read the configuration and to
// check the SSH key.
func WithFileSystem(fileSystem fs.FileSystem) LoaderOption {
	return func(l *DefaultLoader) {
		l.fileSystem = fileSystem
	}
}

// WithEnvExpansion enables replacing ${VAR} references with environment
// variables before the document is parsed.
func WithEnvExpansion(enabled bool) LoaderOption {
	return func(l *DefaultLoader) {
		l.expandEnv = enabled
	}
}

// WithValidator replaces the validator used after decoding.
func WithValidator(v *Validator) LoaderOption {
	return func(l *DefaultLoader) {
		l.validator = v
	}
}

// NewLoader creates a new configuration loader with default implementations.
func NewLoader(opts ...LoaderOption) Loader {
	loader := &DefaultLoader{
		fileSystem: fs.NewFileSystem(),
	}
	for _, opt := range opts {
		opt(loader)
	}
	if loader.validator == nil {
		loader.validator = NewValidator(WithValidatorFileSystem(loader.fileSystem))
	}
	return loader
}

// LoadFromFile loads and validates the configuration at path using the OS file system.
func LoadFromFile(path string) (*DeploymentConfig, error) {
	return NewLoader().Load(path)
}

// Load loads and validates configuration from the specified path. It never
// returns a partially populated configuration.
func (l *DefaultLoader) Load(configPath string) (*DeploymentConfig, error) {
	if _, err := l.fileSystem.Stat(configPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingFileError{Path: configPath}
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	data, err := l.fileSystem.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if l.expandEnv {
		data = []byte(replaceEnvVariables(string(data)))
	}

	format := FormatForPath(configPath)
	log.Printf("loading %s configuration from %s", format, configPath)

	c, err := codecFor(format)
	if err != nil {
		return nil, err
	}

	var cfg DeploymentConfig
	if err := c.decode(data, &cfg); err != nil {
		var serErr *SerializationError
		if errors.As(err, &serErr) {
			serErr.Path = configPath
		}
		return nil, err
	}

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var envVariablePattern = regexp.MustCompile(`\${(\w+)}`)

// replaceEnvVariables replaces environment variables in the content
func replaceEnvVariables(content string) string {
	return envVariablePattern.ReplaceAllStringFunc(content, func(s string) string {
		key := envVariablePattern.FindStringSubmatch(s)[1]
		return os.Getenv(key)
	})
}
