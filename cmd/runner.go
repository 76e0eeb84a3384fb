package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelist/internal/auth"
	"github.com/desertthunder/reelist/internal/cache"
	"github.com/desertthunder/reelist/internal/lists"
	"github.com/desertthunder/reelist/internal/metrics"
	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/repositories"
	"github.com/desertthunder/reelist/internal/services"
	"github.com/desertthunder/reelist/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database and movie provider are opened on first use so commands that need neither
// (setup config, auth status) work without them.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	fs         afero.Fs
	metrics    *metrics.Collector

	mu       sync.Mutex
	db       *sql.DB
	users    *repositories.UserRepository
	lists    *lists.Service
	accounts *auth.Accounts
	movies   services.MovieProvider
	sessions *auth.SessionStore
	caches   []interface{ Start(context.Context) }
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Fs         afero.Fs               // session storage, defaults to the OS filesystem
	DB         *sql.DB                // already migrated; opened from config when nil
	Movies     services.MovieProvider // built from config when nil
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		fs:         opts.Fs,
		metrics:    metrics.New(),
		movies:     opts.Movies,
		sessions:   auth.NewSessionStore(opts.Fs, opts.Config.Session.SessionPath()),
	}
	if opts.DB != nil {
		r.wire(opts.DB)
	}
	return r
}

// SetLogger replaces the runner's logger, e.g. to keep log output off the TUI screen.
func (r *Runner) SetLogger(l *log.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, listsCommand, moviesCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// open returns the list service, opening and migrating the configured database on first use.
func (r *Runner) open() (*lists.Service, error) {
	return r.connect(true)
}

func (r *Runner) connect(migrate bool) (*lists.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lists != nil {
		return r.lists, nil
	}

	path := shared.ExpandHome(r.config.Database.Path)
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path != shared.MemoryDatabase {
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	}

	if migrate {
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	r.logger.Debug("database ready", "path", path)
	r.wire(db)
	return r.lists, nil
}

// wire builds the repositories and services over db.
func (r *Runner) wire(db *sql.DB) {
	r.db = db
	r.users = repositories.NewUserRepository(db)
	r.lists = lists.NewService(repositories.NewListRepository(db), repositories.NewListItemRepository(db), lists.Options{
		Logger:                shared.WithLogger(r.logger, "component", "lists"),
		DeleteConcurrency:     r.config.Lists.DeleteConcurrency,
		MembershipConcurrency: r.config.Lists.MembershipConcurrency,
		Observer:              r.metrics,
	})
	r.accounts = auth.NewAccounts(r.users, r.lists, auth.AccountsOpts{
		Logger: shared.WithLogger(r.logger, "component", "auth"),
	})
}

// provider returns the movie provider, building the OMDb client from config on first use.
func (r *Runner) provider() (services.MovieProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.movies != nil {
		return r.movies, nil
	}

	opts := r.config.OMDb
	client := r.httpClient
	if opts.Timeout > 0 {
		client = &http.Client{Timeout: opts.Timeout, Transport: r.httpClient.Transport}
	}

	cacheCfg := cache.Config{TTL: opts.CacheTTL, MaxSize: opts.CacheSize}
	searchCache := cache.New[*models.SearchResult](cacheCfg)
	detailsCache := cache.New[*models.Movie](cacheCfg)
	svc, err := services.NewOMDbService(services.OMDbOpts{
		BaseURL:      opts.BaseURL,
		APIKey:       opts.APIKey,
		HTTPClient:   client,
		RateLimit:    opts.RateLimit,
		Retries:      opts.Retries,
		SearchCache:  searchCache,
		DetailsCache: detailsCache,
		Logger:       shared.WithLogger(r.logger, "component", "omdb"),
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set OMDB_API_KEY or [omdb] api_key)", err)
	}

	r.movies = svc
	r.caches = append(r.caches, searchCache, detailsCache)
	return r.movies, nil
}

// currentUser loads the signed-in CLI session.
func (r *Runner) currentUser() (*auth.Session, error) {
	session, err := r.sessions.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: run 'reelist auth login' first", err)
	}
	return session, nil
}

// session opens the store and loads the signed-in user in one step.
func (r *Runner) session() (*lists.Service, string, error) {
	session, err := r.currentUser()
	if err != nil {
		return nil, "", err
	}
	svc, err := r.open()
	if err != nil {
		return nil, "", err
	}
	return svc, session.UserID, nil
}

// Close releases the database, if it was opened.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) resolveMovie(ctx context.Context, movieID string) (models.Movie, error) {
	provider, err := r.provider()
	if err != nil {
		r.logger.Warn("no movie provider, storing the bare id", "movie", movieID, "error", err)
		return models.Movie{IMDbID: movieID}, nil
	}

	movie, err := provider.Details(ctx, movieID)
	if err != nil {
		return models.Movie{}, err
	}
	return *movie, nil
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

func (r *Runner) writeBytes(b []byte) error {
	if _, err := r.output.Write(b); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
