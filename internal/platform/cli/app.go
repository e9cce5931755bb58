// Package cli provides the command-line interface functionality for docklift.
// It ties together environment loading, descriptor loading and saving, and SSH
// key inspection behind the operations exposed by the docklift command.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/docklift/docklift/internal/config"
	"github.com/docklift/docklift/internal/infrastructure/env"
	"github.com/docklift/docklift/internal/infrastructure/fs"
	"github.com/docklift/docklift/internal/infrastructure/prompt"
	"github.com/docklift/docklift/internal/infrastructure/sshkey"
)

// EnvLoader defines the interface for loading environment variables
type EnvLoader interface {
	Load(path, vaultPassword string) error
}

// ConfigLoader defines the interface for loading configuration
type ConfigLoader interface {
	Load(configPath string) (*config.DeploymentConfig, error)
}

// ConfigSaver defines the interface for writing configuration
type ConfigSaver interface {
	Save(cfg *config.DeploymentConfig, configPath string) error
}

// Options holds the settings shared by every command.
type Options struct {
	ConfigPath    string
	EnvPaths      []string
	VaultPassword string
}

// InitParams holds the values of a freshly generated descriptor.
type InitParams struct {
	Host       string
	User       string
	SSHKeyPath string
	SSHPort    int
	Email      string
	Name       string
	Domain     string
	Port       int
	Force      bool
}

// App represents the main application structure that handles
// descriptor loading, saving and inspection.
type App struct {
	envLoader    EnvLoader
	configLoader ConfigLoader
	configSaver  ConfigSaver
	fileSystem   fs.FileSystem
	passphrase   prompt.SecretFunc
	out          io.Writer
}

// AppOption is a function that modifies an App
type AppOption func(*App)

// WithOutput redirects user-facing output.
func WithOutput(out io.Writer) AppOption {
	return func(app *App) {
		app.out = out
	}
}

// WithFileSystem sets the file system used for key reads and existence checks.
func WithFileSystem(fileSystem fs.FileSystem) AppOption {
	return func(app *App) {
		app.fileSystem = fileSystem
	}
}

// WithPassphrasePrompt sets the function asked for SSH key passphrases.
func WithPassphrasePrompt(passphrase prompt.SecretFunc) AppOption {
	return func(app *App) {
		app.passphrase = passphrase
	}
}

// NewApp creates and returns a new App instance with default implementations
// for all dependencies.
func NewApp(opts ...AppOption) *App {
	fileSystem := fs.NewFileSystem()
	return NewAppWithDeps(
		env.NewLoader(),
		config.NewLoader(config.WithFileSystem(fileSystem), config.WithEnvExpansion(true)),
		config.NewSaver(fileSystem),
		opts...,
	)
}

// NewAppWithDeps creates and returns a new App instance with custom dependencies
func NewAppWithDeps(envLoader EnvLoader, configLoader ConfigLoader, configSaver ConfigSaver, opts ...AppOption) *App {
	app := &App{
		envLoader:    envLoader,
		configLoader: configLoader,
		configSaver:  configSaver,
		fileSystem:   fs.NewFileSystem(),
		passphrase:   prompt.Secret,
		out:          os.Stdout,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// Load reads the environment files and then the descriptor named by opts.
func (a *App) Load(opts Options) (*config.DeploymentConfig, error) {
	if err := a.loadEnvironments(opts.EnvPaths, opts.VaultPassword); err != nil {
		return nil, fmt.Errorf("environment loading failed: %w", err)
	}

	cfg, err := a.configLoader.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("config loading failed: %w", err)
	}

	return cfg, nil
}

// Validate loads the descriptor and prints a one-line summary of it.
func (a *App) Validate(opts Options) error {
	cfg, err := a.Load(opts)
	if err != nil {
		return err
	}

	app := cfg.Application
	fmt.Fprintf(a.out, "%s is valid: %s (%s) on %s@%s, %d %s\n",
		opts.ConfigPath, app.Name, app.Domain, cfg.VPS.User, cfg.VPS.Address(),
		len(app.Dependencies), plural(len(app.Dependencies), "dependency", "dependencies"))
	return nil
}

// Show loads the descriptor and prints it with defaults applied.
func (a *App) Show(opts Options, format string) error {
	format = strings.ToLower(format)
	if format == "" {
		format = config.FormatYAML
	}

	cfg, err := a.Load(opts)
	if err != nil {
		return err
	}

	data, err := config.Marshal(cfg, format)
	if err != nil {
		return err
	}

	_, err = a.out.Write(data)
	return err
}

// Init writes a starter descriptor to opts.ConfigPath. An existing file is
// only replaced when params.Force is set.
func (a *App) Init(opts Options, params InitParams) error {
	if !params.Force {
		if _, err := a.fileSystem.Stat(opts.ConfigPath); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite it", opts.ConfigPath)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to check %s: %w", opts.ConfigPath, err)
		}
	}

	builder := config.NewBuilder().
		VPS(params.Host, params.User, params.SSHKeyPath).
		SSHPort(params.SSHPort).
		Email(params.Email).
		Application(params.Name, params.Domain)
	if params.Port != 0 {
		builder.Port(params.Port)
	}

	cfg, err := builder.Build()
	if err != nil {
		return err
	}

	if err := a.configSaver.Save(cfg, opts.ConfigPath); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Wrote %s\n", opts.ConfigPath)
	return nil
}

// Key loads the descriptor, parses its SSH private key and prints the public
// half in the forms needed to install it on the server.
func (a *App) Key(opts Options) error {
	cfg, err := a.Load(opts)
	if err != nil {
		return err
	}

	signer, err := sshkey.LoadSigner(a.fileSystem, cfg.VPS.SSHKeyPath, a.passphrase)
	if err != nil {
		return err
	}

	pub := signer.PublicKey()
	fmt.Fprintf(a.out, "Key:         %s\n", cfg.VPS.SSHKeyPath)
	fmt.Fprintf(a.out, "Type:        %s\n", pub.Type())
	fmt.Fprintf(a.out, "Fingerprint: %s\n", sshkey.Fingerprint(pub))
	fmt.Fprintf(a.out, "Server:      %s@%s\n", cfg.VPS.User, cfg.VPS.Address())
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Add this line to ~/.ssh/authorized_keys on the server:")
	fmt.Fprintln(a.out, sshkey.AuthorizedKey(pub, "docklift@"+cfg.Application.Name))
	return nil
}

// GetConfigLoader returns the config loader for testing
func (a *App) GetConfigLoader() ConfigLoader {
	return a.configLoader
}

// GetEnvLoader returns the environment loader for testing
func (a *App) GetEnvLoader() EnvLoader {
	return a.envLoader
}

// loadEnvironments loads all environment files
func (a *App) loadEnvironments(envPaths []string, vaultPassword string) error {
	for _, path := range envPaths {
		if err := a.envLoader.Load(path, vaultPassword); err != nil {
			return fmt.Errorf("failed to load environment file %s: %w", path, err)
		}
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
