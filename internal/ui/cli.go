// Package ui implements the calgrid command line and its interactive session.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/calgrid/internal/config"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config     *config.Config
	configPath string
	root       *cobra.Command
	debug      bool // Enable debug logging
	noColor    bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	log    *logrus.Logger
}

// NewApp creates a new CLI application. A nil cfg is loaded from --config
// (or the default path) before any command runs.
func NewApp(cfg *config.Config) *App {
	a := &App{
		config: cfg,
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}

	a.root = &cobra.Command{
		Use:   "calgrid",
		Short: "A grid-aligned calendar scheduler",
		Long: `calgrid keeps a calendar of grid-aligned events for one session.

Events snap to the configured grid, overlapping events of shared attendees
are rejected as conflicts, and every edit can be undone. Running calgrid
without a subcommand starts an interactive session.`,
		SilenceUsage:      true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return a.setup() },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSession(cmd.Context(), sessionFlags{})
		},
	}

	// Add global flags
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	a.root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ~/.config/calgrid/config.toml)")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.sessionCmd())
	a.root.AddCommand(a.renderCmd())

	return a
}

// SetIO redirects the application's input and output streams.
func (a *App) SetIO(in io.Reader, out, errOut io.Writer) {
	a.in = in
	a.out = out
	a.errOut = errOut
	a.root.SetIn(in)
	a.root.SetOut(out)
	a.root.SetErr(errOut)
}

// SetArgs overrides the command line arguments.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// setup loads configuration and builds the logger.
func (a *App) setup() error {
	if a.config == nil {
		path := a.configPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		cfg, err := config.LoadFrom(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		a.config = cfg
	}

	a.log = newLogger(a.errOut, a.config.LogLevel(), a.debug)

	if a.noColor || !a.config.UI.Color {
		DisableColor()
	}
	return nil
}

func newLogger(w io.Writer, level logrus.Level, debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(level)
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "calgrid %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}
