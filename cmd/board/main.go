package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	adapterHTTP "github.com/comitanigiacomo/kanso-habit-board/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-habit-board/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habit-board/internal/config"
	"github.com/comitanigiacomo/kanso-habit-board/internal/core/services"
	"github.com/comitanigiacomo/kanso-habit-board/internal/core/workers"
	"github.com/comitanigiacomo/kanso-habit-board/internal/logger"
)

type application struct {
	backend *repository.Backend
	store   *services.HabitStore
	events  *services.Broadcaster
	worker  *workers.ResetWorker
	router  *gin.Engine
}

// bootstrap connects storage, loads the persisted habits and wires the
// HTTP surface. The reset worker is created but not started.
func bootstrap(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, opts ...services.StoreOption) (*application, error) {
	backend, err := repository.NewBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store := services.NewHabitStore(backend.Storage, log, opts...)
	if _, err := store.Load(ctx); err != nil {
		backend.Close()
		return nil, err
	}

	tmpl, err := adapterHTTP.LoadTemplates()
	if err != nil {
		backend.Close()
		return nil, err
	}

	events := services.NewBroadcaster(16)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		BoardHandler: adapterHTTP.NewBoardHandler(store, events, tmpl, log),
		HabitHandler: adapterHTTP.NewHabitHandler(store, events, log),
		Health:       backend,
		BackendName:  backend.Name,
		Redis:        backend.Redis,
		RateLimit:    cfg.RateLimit,
		Log:          log,
		StartTime:    time.Now(),
	})

	return &application{
		backend: backend,
		store:   store,
		events:  events,
		worker:  workers.NewResetWorker(store, events, cfg.ResetInterval, log),
		router:  router,
	}, nil
}

// newServer leaves WriteTimeout unset for the /events stream. Open streams
// are ended as soon as Shutdown starts so it can drain connections.
func newServer(addr string, app *application) *http.Server {
	srv := &http.Server{
		Addr:        addr,
		Handler:     app.router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	srv.RegisterOnShutdown(app.events.Close)
	return srv
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Critical: invalid configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	app, err := bootstrap(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Critical: failed to start habit board")
	}
	defer func() {
		if err := app.backend.Close(); err != nil {
			log.WithError(err).Warn("failed to close storage connections")
		}
	}()

	app.worker.Start(ctx)

	srv := newServer(":"+cfg.Port, app)

	go func() {
		log.WithField("port", cfg.Port).Infof("Habit board running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Critical server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Stop signal received. Shutting down...")

	stop()
	<-app.worker.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}

	log.Info("Server stopped gracefully.")
}
