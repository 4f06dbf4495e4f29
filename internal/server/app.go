// Package server initializes and runs the user service: it opens the
// database, applies migrations, connects the event publisher, and starts the
// HTTP server with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/withgossing/bank-app/internal/logging"
	"github.com/withgossing/bank-app/internal/server/config"
	"github.com/withgossing/bank-app/internal/server/events"
	"github.com/withgossing/bank-app/internal/server/repositories/repomanager"
	"github.com/withgossing/bank-app/internal/server/rest"
	"github.com/withgossing/bank-app/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	publisher   events.Publisher
	userService *services.UserService
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.EventExchange)
		if err != nil {
			return nil, fmt.Errorf("amqp init error: %w", err)
		}
		publisher = p
	}

	us := services.NewUserService(db, m, publisher, logger, cfg)

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		publisher:   publisher,
		userService: us,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := rest.NewServer(app.config.EndpointAddrHTTP, app.logger, app.userService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if closer, ok := app.publisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			app.logger.Warn(ctx, "publisher close error", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err)
	}
}
