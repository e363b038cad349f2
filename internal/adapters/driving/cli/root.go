// Package cli provides the lexrag command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
	"github.com/custodia-labs/lexrag/internal/lock"
	"github.com/custodia-labs/lexrag/internal/logger"
	"github.com/custodia-labs/lexrag/internal/metrics"
)

// Command annotations read by setup.
const (
	// annLock makes the command hold the singleton lock.
	annLock = "lexrag.lock"
	// annEmbedding requires a validated embedding service.
	annEmbedding = "lexrag.embedding"
	// annLLM requires a validated LLM service ("optional" builds it when configured).
	annLLM = "lexrag.llm"
	// annSettingsOnly loads settings but builds no services.
	annSettingsOnly = "lexrag.settings"
	// annNoSetup skips setup entirely.
	annNoSetup = "lexrag.nosetup"
)

// Options locates the configuration.
type Options struct {
	// DataDir overrides the default data directory.
	DataDir string

	// ConfigDir overrides the default configuration directory.
	ConfigDir string
}

// Requirements lists the external services a command needs.
type Requirements struct {
	// Embedding requires a reachable embedding service.
	Embedding bool

	// LLM requires a reachable completion service.
	LLM bool

	// OptionalLLM builds the answer service when the LLM is configured
	// and skips it otherwise.
	OptionalLLM bool
}

// App holds the services one command runs against.
type App struct {
	Settings *domain.AppSettings
	Ingest   driving.IngestService
	Index    driving.IndexService
	Search   driving.SearchService
	Answer   driving.AnswerService
	Reset    driving.ResetService
	Status   driving.StatusService
	Metrics  *metrics.Metrics

	// Closers are closed in reverse order when the command ends.
	Closers []io.Closer
}

// Close closes every closer in reverse order.
func (a *App) Close() error {
	var errs []error
	for _, c := range slices.Backward(a.Closers) {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.Closers = nil
	return errors.Join(errs...)
}

// Wiring builds the services behind the commands.
type Wiring interface {
	// Settings returns the settings service for opts.
	Settings(opts Options) (driving.SettingsService, error)

	// Build constructs the services a command needs.
	Build(ctx context.Context, settings *domain.AppSettings, req Requirements) (*App, error)
}

var (
	wiring          Wiring
	settingsService driving.SettingsService
	app             *App

	flagVerbose   bool
	flagNoColor   bool
	flagDataDir   string
	flagConfigDir string

	heldLock *lock.Lock
	logFile  io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "lexrag",
	Short: "Question answering over PDF contracts",
	Long: `lexrag ingests PDF contracts, stages their cleaned text, indexes
retrieval chunks in a vector collection and answers questions from the
retrieved passages.

Typical flow:
  lexrag ingest ./contracts   Convert new PDFs into staged artifacts
  lexrag index                Embed staged artifacts into the collection
  lexrag chat                 Ask questions interactively`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "print debug output to stderr")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable coloured output")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.lexrag)")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.lexrag)")
}

// SetWiring sets the builder used by every command.
func SetWiring(w Wiring) {
	wiring = w
}

// NoColor reports whether --no-color was given.
func NoColor() bool {
	return flagNoColor
}

// Execute runs the command line and releases everything setup acquired,
// on success and on error.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if terr := teardown(); err == nil {
		err = terr
	}
	return err
}

// setup loads settings, takes the lock, opens the audit log and builds
// the services the command is annotated with.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)
	if cmd.Annotations[annNoSetup] == "true" || cmd.Name() == "help" {
		return nil
	}
	if wiring == nil {
		return errors.New("cli: no wiring configured")
	}

	svc, err := wiring.Settings(Options{DataDir: flagDataDir, ConfigDir: flagConfigDir})
	if err != nil {
		return err
	}
	settingsService = svc
	if cmd.Annotations[annSettingsOnly] == "true" {
		return nil
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := svc.Validate(); err != nil {
		return err
	}

	if cmd.Annotations[annLock] == "true" {
		l, err := lock.Acquire(settings.Paths.LockFile)
		if err != nil {
			return err
		}
		heldLock = l
	}

	closer, err := logger.OpenFile(settings.Paths.LogFile)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	logFile = closer

	built, err := wiring.Build(cmd.Context(), settings, requirements(cmd))
	if err != nil {
		return err
	}
	if built.Settings == nil {
		built.Settings = settings
	}
	app = built
	return nil
}

func requirements(cmd *cobra.Command) Requirements {
	return Requirements{
		Embedding:   cmd.Annotations[annEmbedding] == "true",
		LLM:         cmd.Annotations[annLLM] == "true",
		OptionalLLM: cmd.Annotations[annLLM] == "optional",
	}
}

// teardown writes metrics, closes services and the log, then releases the lock.
func teardown() error {
	var errs []error
	if app != nil {
		if path := app.Settings.Metrics.Textfile; path != "" && app.Metrics != nil {
			if err := app.Metrics.WriteTextfile(path); err != nil {
				logger.Warn("Writing metrics textfile: %v", err)
			}
		}
		errs = append(errs, app.Close())
		app = nil
	}
	errs = append(errs, closeLog())
	if heldLock != nil {
		errs = append(errs, heldLock.Release())
		heldLock = nil
	}
	settingsService = nil
	return errors.Join(errs...)
}

// closeLog detaches and closes the audit log. Safe to call twice.
func closeLog() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// requireApp returns the built services or an error when setup did not run.
func requireApp() (*App, error) {
	if app == nil {
		return nil, errors.New("cli: services not initialised")
	}
	return app, nil
}
