package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrix/internal/auth"
	"github.com/desertthunder/lyrix/internal/repositories"
	"github.com/desertthunder/lyrix/internal/services"
	"github.com/desertthunder/lyrix/internal/shared"
	"github.com/desertthunder/lyrix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	provider services.Provider
	lyrics   services.LyricsService
	logger   *log.Logger
	output   io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Provider services.Provider
	Lyrics   services.LyricsService
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:   opts.Config,
		provider: opts.Provider,
		lyrics:   opts.Lyrics,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, authCommand, nowCommand, tuiCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the runner's logger, used when stderr belongs to the TUI.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// loadConfig returns the runner's config, reloading from the given path when
// a file exists there so commands see edits made since startup.
func (r *Runner) loadConfig(configPath string) *shared.Config {
	if _, err := os.Stat(configPath); err == nil {
		if config, err := shared.LoadConfig(configPath); err == nil {
			return config
		}
		r.logger.Warnf("failed to load config at %v, using current configuration", configPath)
	}
	return r.config
}

// openEngine opens the database and assembles the session flow the commands
// drive. The caller owns closing the returned handle.
func (r *Runner) openEngine(config *shared.Config) (*tasks.SessionEngine, *sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	users := repositories.NewCredentialRepository(db)
	tokens := repositories.NewTokenRepository(db)
	manager := auth.NewManager(tokens, r.logger, config.Session.MultiDevice)
	engine := tasks.NewSessionEngine(users, manager, r.provider, r.lyrics, r.logger)

	return engine, db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
