package ui

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wardrota/wardrota/internal/availability"
	"github.com/wardrota/wardrota/internal/config"
	"github.com/wardrota/wardrota/internal/logging"
	"github.com/wardrota/wardrota/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config  *config.Config
	root    *cobra.Command
	debug   bool // Enable debug logging
	noColor bool

	backend  availability.Backend
	logger   zerolog.Logger
	closeLog func() error
	now      func() time.Time
}

// AppOption configures an App.
type AppOption func(*App)

// WithBackend makes the App use b instead of opening the configured store.
func WithBackend(b availability.Backend) AppOption {
	return func(a *App) {
		a.backend = b
	}
}

// WithClock overrides the current time, used to resolve --week.
func WithClock(now func() time.Time) AppOption {
	return func(a *App) {
		a.now = now
	}
}

// NewApp creates a new CLI application with the given config.
func NewApp(cfg *config.Config, opts ...AppOption) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &App{
		config:   cfg,
		logger:   zerolog.Nop(),
		closeLog: func() error { return nil },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.root = &cobra.Command{
		Use:   "wardrota",
		Short: "Edit weekly nurse availability",
		Long: `Wardrota edits the weekly availability of nurses.

Each hour of the week is unset, unavailable, preferred or available.
Run without arguments to open the interactive grid, or use the
subcommands to inspect and change a week from the shell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if a.noColor {
				DisableColor()
			}
			return a.setupLogging()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			backend, err := a.store()
			if err != nil {
				return err
			}
			logger := a.logger
			if a.config.Log.File == "" {
				// stderr belongs to the TUI
				logger = zerolog.Nop()
			}
			return tui.Run(backend, a.config, tui.WithLogger(logger))
		},
	}

	// Add global flags
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.nursesCmd())
	a.root.AddCommand(a.showCmd())
	a.root.AddCommand(a.setCmd())
	a.root.AddCommand(a.fillCmd())
	a.root.AddCommand(a.clearCmd())
	a.root.AddCommand(a.exportCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wardrota %s (commit: %s)\n", Version, Commit)
		},
	}
}

// setupLogging builds the logger once flags are parsed. Logs go to the
// configured file, or to stderr when log.file is empty.
func (a *App) setupLogging() error {
	logger, closeLog, err := logging.New(logging.Options{
		Level:   a.config.Log.Level,
		Debug:   a.debug,
		File:    a.config.Log.File,
		Console: true,
		Out:     a.root.ErrOrStderr(),
		NoColor: a.noColor,
	})
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	a.logger = logger
	a.closeLog = closeLog
	return nil
}

// store returns the backend, opening it on first use.
func (a *App) store() (availability.Backend, error) {
	if a.backend != nil {
		return a.backend, nil
	}
	backend, err := openBackend(a.config, a.logger)
	if err != nil {
		return nil, err
	}
	a.backend = backend
	return backend, nil
}

// SetOutput redirects command output, mainly for tests.
func (a *App) SetOutput(w io.Writer) {
	a.root.SetOut(w)
	a.root.SetErr(w)
}

// SetArgs sets the command line arguments, mainly for tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the backend and the log file.
func (a *App) Close() error {
	var errs []error
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing store: %w", err))
		}
	}
	if err := a.closeLog(); err != nil {
		errs = append(errs, fmt.Errorf("closing log: %w", err))
	}
	return errors.Join(errs...)
}
