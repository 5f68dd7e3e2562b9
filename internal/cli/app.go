// Package cli implements the interactive moodstream client: a REPL over the
// session, repository, and photo storage layers.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/moodstream/internal/config"
	"github.com/dmitrijs2005/moodstream/internal/docstore"
	"github.com/dmitrijs2005/moodstream/internal/docstore/memstore"
	"github.com/dmitrijs2005/moodstream/internal/docstore/pgstore"
	"github.com/dmitrijs2005/moodstream/internal/logging"
	"github.com/dmitrijs2005/moodstream/internal/models"
	"github.com/dmitrijs2005/moodstream/internal/moodfeed"
	"github.com/dmitrijs2005/moodstream/internal/photos"
	"github.com/dmitrijs2005/moodstream/internal/repository"
	"github.com/dmitrijs2005/moodstream/internal/session"
)

// App wires the REPL commands to the data layer. Live subscriptions opened at
// login feed the two views and the request inbox until logout.
type App struct {
	config  *config.Config
	client  docstore.Client
	session *session.Session
	photos  photos.Store
	logger  logging.Logger
	reader  *bufio.Reader

	myView   *moodfeed.FilterView
	feedView *moodfeed.FilterView

	mu       sync.Mutex
	requests []models.Request
	regs     []repository.Registration
}

// NewApp builds the application from config: the selected document store
// backend, the repository and session over it, and photo storage.
func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	var client docstore.Client
	switch c.Backend {
	case config.BackendPostgres:
		db, err := sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := pgstore.RunMigrations(ctx, db); err != nil {
			return nil, err
		}
		store := pgstore.New(db, logger)
		if err := store.Start(ctx, c.DatabaseDSN); err != nil {
			return nil, fmt.Errorf("start notification listener: %w", err)
		}
		client = store
	case config.BackendMemory:
		client = memstore.New()
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}

	var photoStore photos.Store
	if c.PhotosBackend == "s3" {
		photoStore = photos.NewS3Store(photos.S3Settings{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			Endpoint:  c.S3BaseEndpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		})
	} else {
		photoStore = photos.NewMemStore()
	}

	repo := repository.NewDocRepository(client, logger)
	return &App{
		config:   c,
		client:   client,
		session:  session.New(repo, logger),
		photos:   photoStore,
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
		myView:   moodfeed.NewFilterView(),
		feedView: moodfeed.NewFilterView(),
	}, nil
}

// Run starts the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

// Close logs out and releases the backend client.
func (a *App) Close(ctx context.Context) {
	a.closeSubscriptions()
	a.session.Logout()
	if err := a.client.Close(ctx); err != nil {
		a.logger.Error(ctx, "closing backend", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.LoggedIn()
}

func (a *App) getStatus() string {
	if user := a.session.CurrentUser(); user != nil {
		return fmt.Sprintf("(%s)", user.Username)
	}
	return ""
}

// openSubscriptions starts the per-login live views: own moods, following
// feed, and the request inbox.
func (a *App) openSubscriptions(ctx context.Context, user models.User) error {
	repo := a.session.Repository()

	myReg, err := repo.GetUserMoods(ctx, user, func(moods []models.Mood, err error) {
		if err != nil {
			a.logger.Error(ctx, "mood list delivery failed", "error", err)
			return
		}
		a.myView.Replace(moods)
	})
	if err != nil {
		return err
	}

	feedReg, err := repo.GetFollowingMoods(ctx, user, a.session.Following, func(moods []models.Mood, err error) {
		if err != nil {
			a.logger.Error(ctx, "feed delivery failed", "error", err)
			return
		}
		a.feedView.Replace(moods)
	})
	if err != nil {
		myReg.Unsubscribe()
		return err
	}

	reqReg, err := repo.GetUserRequests(ctx, user, func(requests []models.Request, err error) {
		if err != nil {
			a.logger.Error(ctx, "request inbox delivery failed", "error", err)
			return
		}
		a.mu.Lock()
		a.requests = requests
		a.mu.Unlock()
	})
	if err != nil {
		myReg.Unsubscribe()
		feedReg.Unsubscribe()
		return err
	}

	a.mu.Lock()
	a.regs = []repository.Registration{myReg, feedReg, reqReg}
	a.mu.Unlock()
	return nil
}

func (a *App) closeSubscriptions() {
	a.mu.Lock()
	regs := a.regs
	a.regs = nil
	a.requests = nil
	a.mu.Unlock()

	for _, reg := range regs {
		reg.Unsubscribe()
	}
	a.myView.Replace(nil)
	a.myView.ClearFilter()
	a.feedView.Replace(nil)
	a.feedView.ClearFilter()
}

// LevelFromName maps a config log level name to a slog level.
func LevelFromName(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
