// Package app initializes and runs the user directory service.
// It configures logging, storage and routing, and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/patric-chuzhbe/userdir/internal/config"
	"github.com/patric-chuzhbe/userdir/internal/db/memorystorage"
	"github.com/patric-chuzhbe/userdir/internal/logger"
	"github.com/patric-chuzhbe/userdir/internal/models"
	"github.com/patric-chuzhbe/userdir/internal/router"
	"github.com/patric-chuzhbe/userdir/internal/service"
)

type usersKeeper interface {
	ListUsers(ctx context.Context) (models.Users, error)
	InsertUser(ctx context.Context, usr models.User) error
	UpdateUser(ctx context.Context, userID string, update models.UpdateUserRequest) (models.User, bool, error)
	DeleteUser(ctx context.Context, userID string) (bool, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	usersKeeper
	pinger
	Close() error
}

// App encapsulates the configuration, HTTP handler and storage backend
// needed to run the user directory service.
type App struct {
	cfg         *config.Config
	db          storage
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - creating the user table, seeded unless disabled
// - setting up the router and middleware
func New(configOptions ...config.InitOption) (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New(configOptions...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel, app.cfg.LogFile)
	if err != nil {
		return nil, err
	}

	var seed models.Users
	if !app.cfg.DisableSeed {
		seed = memorystorage.DefaultUsers()
	}
	theStorage, err := memorystorage.New(seed...)
	if err != nil {
		return nil, err
	}
	numberOfUsers, err := theStorage.GetNumberOfUsers(context.Background())
	if err != nil {
		return nil, err
	}
	logger.Log.Infow("user table ready", "users", numberOfUsers)
	app.db = theStorage

	app.httpHandler = router.New(
		service.New(app.db, service.WithUserExistsError(memorystorage.ErrUserExists)),
		app.cfg.AllowedOrigins,
	)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", a.cfg.RunAddr)
	if err != nil {
		return fmt.Errorf("in internal/app/app.go/Run(): error while `net.Listen()` calling: %w", err)
	}

	return a.serve(ctx, listener)
}

func (a *App) serve(ctx context.Context, listener net.Listener) error {
	logger.Log.Infoln("server running", "RunAddr", listener.Addr().String())

	server := &http.Server{
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}
