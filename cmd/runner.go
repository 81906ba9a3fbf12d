package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundshelf/internal/repositories"
	"github.com/desertthunder/soundshelf/internal/shared"
	"github.com/desertthunder/soundshelf/internal/tasks"
	"github.com/desertthunder/soundshelf/internal/usertypes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database is opened on first use so commands that do not need it (and --help) never touch disk.
type Runner struct {
	config    *shared.Config
	db        *sql.DB
	ownsDB    bool
	users     *repositories.UserRepository
	plans     *repositories.PlanRepository
	roles     *repositories.RoleRepository
	tracks    *repositories.TrackRepository
	playlists *repositories.PlaylistRepository
	registry  *prometheus.Registry
	resolver  *usertypes.Resolver
	engine    *tasks.Engine
	logger    *log.Logger
	output    io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	DB     *sql.DB // Already-migrated handle; when nil one is opened from Config.Database.Path
	Logger *log.Logger
	Output io.Writer
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

	r := &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
	if opts.DB != nil {
		r.wire(opts.DB)
	}
	return r
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:      "soundshelf",
		Usage:     "Manage a media library and inspect cached user types",
		Version:   "0.1.0",
		Writer:    r.output,
		ErrWriter: r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file with SOUNDSHELF_* overrides",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before:   r.configure,
		Commands: r.register(),
	}
}

// configure loads the effective configuration before any command runs.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	config, err := shared.ReadConfig(cmd.String("config"), cmd.String("env-file"))
	if err != nil {
		return ctx, err
	}
	r.config = config

	shared.SetLogLevel(r.logger, config.LogLevel())
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, userCommand, resolveCommand, trackCommand, playlistCommand, statsCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// open connects to the configured database and wires the repositories, resolver and engine.
func (r *Runner) open() error {
	if r.db != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.ownsDB = true
	r.wire(db)
	return nil
}

func (r *Runner) wire(db *sql.DB) {
	r.db = db
	r.users = repositories.NewUserRepository(db)
	r.plans = repositories.NewPlanRepository(db)
	r.roles = repositories.NewRoleRepository(db)
	r.tracks = repositories.NewTrackRepository(db)
	r.playlists = repositories.NewPlaylistRepository(db)

	r.registry = prometheus.NewRegistry()
	r.resolver = usertypes.NewResolver(usertypes.ResolverOpts{
		Store: repositories.NewRowStore(db),
		Cache: usertypes.NewCache(r.config.Cache.TTL, nil),
		Retry: usertypes.RetryOpts{
			MaxAttempts: r.config.Retry.MaxAttempts,
			BaseDelay:   r.config.Retry.BaseDelay,
		},
		Logger:   shared.WithLogger(r.logger, "component", "usertypes"),
		Metrics:  usertypes.NewMetrics(r.registry),
		Coalesce: r.config.Cache.Coalesce,
	})
	r.engine = tasks.NewEngine(r.resolver, r.playlists, shared.WithLogger(r.logger, "component", "tasks"))
}

// SetLogger replaces the runner's logger and rewires dependent components.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if r.db != nil {
		r.wire(r.db)
	}
}

// Close releases the database when the runner opened it.
func (r *Runner) Close() error {
	if r.db == nil || !r.ownsDB {
		return nil
	}
	return r.db.Close()
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

// writeDocument writes rendered output, terminating it with a newline when it lacks one.
func (r *Runner) writeDocument(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if bytes.HasSuffix(data, []byte("\n")) {
		return nil
	}
	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
