package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/prepdeck/internal/adapters/http/api"
	"github.com/okian/prepdeck/internal/adapters/http/swagger"
	app "github.com/okian/prepdeck/internal/app"
	"github.com/okian/prepdeck/internal/config"
	"github.com/okian/prepdeck/internal/domain/bank"
	"github.com/okian/prepdeck/internal/domain/catalog"
	"github.com/okian/prepdeck/pkg/logger"
	"github.com/okian/prepdeck/pkg/metrics"
	"github.com/okian/prepdeck/pkg/tracing"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
	limiterEvictInterval   = 10 * time.Minute
	serviceName            = "prepdeck"
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	shutdownTracing, err := tracing.Init(ctx,
		tracing.WithServiceName(serviceName),
		tracing.WithExporter(cfg.TraceExporter),
		tracing.WithOTLPEndpoint(cfg.OTLPEndpoint),
		tracing.WithSampleRate(cfg.TraceSampleRate),
	)
	if err != nil {
		log.Error(ctx, "failed to initialize tracing", logger.Error(err))
		return
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn(ctx, "tracing shutdown failed", logger.Error(err))
		}
	}()

	svc, err := newService(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to build service", logger.Error(err))
		return
	}
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	limiter := api.NewRateLimiter(cfg.RateLimitRPM, cfg.RateLimitBurst)
	if limiter != nil {
		go limiter.Run(ctx, limiterEvictInterval)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc, limiter),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
}

// newService loads the catalog and question bank named by cfg and builds the service.
func newService(ctx context.Context, cfg *config.Config) (*app.Service, error) {
	cat, err := catalog.Load(ctx, cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	qb, err := bank.Load(ctx, cfg.QuestionBankPath)
	if err != nil {
		return nil, err
	}
	return app.New(
		app.WithLogger(logger.Named("service")),
		app.WithCatalog(cat),
		app.WithQuestionBank(qb),
		app.WithMaxSessions(cfg.MaxSessions),
		app.WithSessionTTL(cfg.SessionTTL),
		app.WithSweepInterval(cfg.SweepInterval),
		app.WithTimePerQuestion(cfg.TimePerQuestion()),
		app.WithDefaultTotalQuestions(cfg.DefaultTotalQuestions),
		app.WithMaxTotalQuestions(cfg.MaxTotalQuestions),
		app.WithMaxRecommendations(cfg.MaxRecommendations),
		app.WithMaxKeywordsPerMatch(cfg.MaxKeywordsPerMatch),
		app.WithMaxResumeBytes(cfg.MaxResumeBytes),
		app.WithRandomSource(app.NewSeededSource(cfg.RandomSeed)),
	), nil
}

// newHandler registers the docs and business routes and wraps them with CORS and tracing.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service, limiter *api.RateLimiter) http.Handler {
	r := mux.NewRouter()
	swagger.Register(ctx, r)

	var opts []api.Option
	if limiter != nil {
		opts = append(opts, api.WithRateLimiter(limiter))
	}
	if cfg.MaxResumeBytes > 0 {
		// JSON escaping can double the resume text.
		opts = append(opts, api.WithMaxBodyBytes(int64(cfg.MaxResumeBytes)*2+1024))
	}
	api.NewServer(svc, svc, opts...).Register(ctx, r)

	return api.NewHandler(r, api.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins})
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}

// startServiceMetricsUpdater refreshes the live session gauge via GetStats.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = svc.GetStats()
		}
	}
}
