// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/saadz-khan/smartcampus/internal/actor"
	"github.com/saadz-khan/smartcampus/internal/booking"
	"github.com/saadz-khan/smartcampus/internal/campus"
	"github.com/saadz-khan/smartcampus/internal/config"
	"github.com/saadz-khan/smartcampus/internal/database"
	"github.com/saadz-khan/smartcampus/internal/handler"
	"github.com/saadz-khan/smartcampus/internal/notify"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("smartcampus stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.ConfigureLogging(cfg); err != nil {
		return err
	}
	actor.SetLogger(logrus.WithField("component", "actor"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage
	store, err := database.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logrus.WithError(err).Warn("close store")
		}
	}()

	// Actors
	var bridge *notify.Bridge
	if cfg.SocketIOEnabled {
		bridge = notify.NewBridge(cfg.CORSOrigins)
		defer bridge.Close()
	}
	c, err := campus.Start(ctx, store, campus.Options{
		AskTimeout: cfg.AskTimeout,
		Policy: booking.Policy{
			MaxSlotDuration:     cfg.MaxSlotDuration,
			OneBookingPerDay:    cfg.OneBookingPerDay,
			CancelRequiresOwner: cfg.CancelRequiresOwner,
		},
		ContactDomain: cfg.ContactDomain,
		Bridge:        bridge,
	})
	if err != nil {
		return err
	}
	defer c.Shutdown()

	// Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.Logger)
	r.Use(handler.CORS(cfg.CORSOrigins))

	handler.NewCampusHandler(c.Service, c.Directory).Routes(r)
	if bridge != nil {
		r.Handle("/socket.io/", bridge.Handler())
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("addr", cfg.HTTPAddr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logrus.Info("server stopped")
	return nil
}
