package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/imrenagi/go-wiki/api/web"
	"github.com/imrenagi/go-wiki/markdown"
	"github.com/imrenagi/go-wiki/wiki"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Opts struct {
	Config Config
	// InitTelemetry defaults to installing the Prometheus meter provider
	// and, if configured, the OTLP tracer provider.
	InitTelemetry TelemetryInitFn
}

func New(opts Opts) Server {
	if opts.InitTelemetry == nil {
		opts.InitTelemetry = initTelemetry
	}
	s := Server{
		opts: opts,
	}
	return s
}

type Server struct {
	opts Opts
}

const gracefulShutdownPeriod = 30 * time.Second

// Run serves the wiki until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log.Info().Msg("starting server")
	cfg := s.opts.Config

	telemetryShutdownFn, err := s.opts.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownPeriod)
		defer cancel()
		if err := telemetryShutdownFn(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry providers")
		}
	}()

	store, closeStore, err := NewStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("failed to close entry store")
		}
	}()

	pages, err := web.LoadPages()
	if err != nil {
		return err
	}
	renderer := markdown.NewGoldmarkRenderer(
		markdown.WithExtensions(cfg.Markdown.Extensions...),
		markdown.WithUnsafe(cfg.Markdown.Unsafe),
		markdown.WithHardWraps(cfg.Markdown.HardWraps))
	w := wiki.New(store, renderer,
		wiki.WithFormRules(wiki.FormRules{TitleMaxLength: cfg.Form.TitleMaxLength}))

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: s.newHTTPHandler(web.NewController(w, pages)),
		// ReadTimeout is the maximum duration for reading the entire request, including the body.
		ReadTimeout: 30 * time.Second,
		// WriteTimeout is the maximum duration before timing out writes of the response.
		WriteTimeout: 10 * time.Second,
		// ReadHeaderTimeout is necessary here to prevent slowloris attacks.
		// https://www.cloudflare.com/learning/ddos/ddos-attack-tools/slowloris/
		ReadHeaderTimeout: 5 * time.Second,
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
		IdleTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Msgf("Starting http server on %s", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("listen:%+s\n", err)
		}
	}()

	<-ctx.Done()

	log.Warn().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownPeriod)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown http server gracefully")
	}
	log.Warn().Msg("http server gracefully stopped")
	return nil
}

func healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

func (s *Server) newHTTPHandler(ctrl web.Controller) http.Handler {
	mux := mux.NewRouter()
	mux.Use(
		otelhttp.NewMiddleware("wiki"),
		LogInterceptor)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthz()).Methods(http.MethodGet)

	mux.Handle("/", otelhttp.WithRouteTag("/", ctrl.Index())).Methods(http.MethodGet)
	mux.Handle("/wiki/{title}", otelhttp.WithRouteTag("/wiki/{title}", ctrl.Entry())).Methods(http.MethodGet)
	mux.Handle("/search", otelhttp.WithRouteTag("/search", ctrl.Search())).Methods(http.MethodGet)
	mux.Handle("/new", otelhttp.WithRouteTag("/new", ctrl.New())).Methods(http.MethodGet, http.MethodPost)
	mux.Handle("/edit/{title}", otelhttp.WithRouteTag("/edit/{title}", ctrl.Edit())).Methods(http.MethodGet, http.MethodPost)
	mux.Handle("/random", otelhttp.WithRouteTag("/random", ctrl.Random())).Methods(http.MethodGet)

	return otelhttp.NewHandler(mux, "/")
}
