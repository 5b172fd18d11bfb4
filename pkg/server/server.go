package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/de-tools/metric-atlas/pkg/handlers/dashboard"
	metricatlasmiddleware "github.com/de-tools/metric-atlas/pkg/server/middleware"
	"github.com/de-tools/metric-atlas/pkg/services/decoder"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Session  handlers.Session
	Decoders decoder.Registry
	Metrics  *Metrics
	Logger   zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
	Dependencies    Dependencies
}

// ConfigureRouter builds the HTTP routes for the dashboard API.
func ConfigureRouter(config Config) *chi.Mux {
	deps := config.Dependencies
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}

	h := handlers.NewHandler(handlers.Config{
		Session:        deps.Session,
		Decoders:       deps.Decoders,
		Metrics:        deps.Metrics,
		MaxUploadBytes: config.MaxUploadBytes,
	})

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(metricatlasmiddleware.Logger(&deps.Logger))
	router.Use(middleware.Recoverer)
	router.Use(deps.Metrics.Middleware)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", deps.Metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/dataset", h.UploadDataset)
		r.Get("/view", h.GetView)
		r.Put("/selection", h.PutSelection)
		r.Put("/mode", h.PutMode)
		r.Post("/calc-columns", h.AddCalcColumn)
		r.Delete("/calc-columns/{name}", h.RemoveCalcColumn)
		r.Get("/export", h.Export)
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)
	logger := config.Dependencies.Logger

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: timeout,
	}
}

// Start serves until ctx is cancelled or the process receives SIGINT/SIGTERM, then shuts
// the server down gracefully.
func (w *WebAPI) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		if err := w.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		if err := w.server.Shutdown(shutdownCtx); err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			return w.server.Close()
		}
		return nil
	})

	return g.Wait()
}
