package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/docklift/docklift/internal/platform/cli"
)

var versionString = "1.0.0"

// Application encapsulates the docklift CLI application
type Application struct {
	opts    cli.Options
	verbose bool
	newApp  func(opts ...cli.AppOption) *cli.App
}

// NewApplication creates a new Application instance with default values
func NewApplication() *Application {
	return &Application{
		opts:   cli.Options{ConfigPath: "docklift.yaml"},
		newApp: cli.NewApp,
	}
}

// NewRootCommand builds the docklift command tree.
func (app *Application) NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "docklift",
		Short: "Manage docklift deployment descriptors",
		Long: `docklift reads, checks and writes the deployment descriptor that tells the
deployment engine which server to use and which application to ship to it.`,
		Version:       versionString,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.setupLogging(cmd.ErrOrStderr())
		},
	}
	root.SetVersionTemplate("docklift version {{.Version}}\n")
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVarP(&app.opts.ConfigPath, "config", "c", app.opts.ConfigPath, "Path to deployment descriptor")
	flags.StringSliceVar(&app.opts.EnvPaths, "env", nil, "Environment files to load before the descriptor (repeatable)")
	flags.StringVar(&app.opts.VaultPassword, "vault-password", "", "Password for Ansible Vault environment files")
	flags.BoolVar(&app.verbose, "verbose", false, "Enable verbose logging")

	root.AddCommand(
		app.newValidateCommand(),
		app.newShowCommand(),
		app.newInitCommand(),
		app.newKeyCommand(),
	)

	return root
}

func (app *Application) newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the descriptor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cliApp(cmd).Validate(app.opts)
		},
	}
}

func (app *Application) newShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the descriptor with defaults applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cliApp(cmd).Show(app.opts, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml, json or toml")

	return cmd
}

func (app *Application) newInitCommand() *cobra.Command {
	var params cli.InitParams

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter descriptor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cliApp(cmd).Init(app.opts, params)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&params.Host, "host", "", "VPS host name or address")
	flags.StringVar(&params.User, "user", "", "SSH user")
	flags.StringVar(&params.SSHKeyPath, "key", "~/.ssh/id_ed25519", "SSH private key path")
	flags.IntVar(&params.SSHPort, "ssh-port", 0, "SSH port (default 22)")
	flags.StringVar(&params.Email, "email", "", "Certificate notification address")
	flags.StringVar(&params.Name, "name", "", "Application name")
	flags.StringVar(&params.Domain, "domain", "", "Application domain")
	flags.IntVar(&params.Port, "port", 0, "Application container port (default: chosen at deploy time)")
	flags.BoolVar(&params.Force, "force", false, "Overwrite an existing descriptor")
	for _, name := range []string{"host", "user", "name", "domain"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func (app *Application) newKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "key",
		Short: "Print the fingerprint and authorized_keys line of the configured SSH key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cliApp(cmd).Key(app.opts)
		},
	}
}

func (app *Application) cliApp(cmd *cobra.Command) *cli.App {
	return app.newApp(cli.WithOutput(cmd.OutOrStdout()))
}

func (app *Application) setupLogging(w io.Writer) {
	if app.verbose {
		log.SetOutput(w)
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		return
	}
	log.SetOutput(io.Discard)
	log.SetFlags(0)
}

// Run executes the application with the given arguments
func (app *Application) Run(args []string) error {
	root := app.NewRootCommand()
	root.SetArgs(args)
	return root.Execute()
}

func main() {
	app := NewApplication()

	if err := app.Run(os.Args[1:]); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("Error: %v", err)
	}
}
