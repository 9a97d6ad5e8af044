package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/commerce-chat/internal/api/router"
	appconfig "github.com/wolfman30/commerce-chat/internal/config"
	"github.com/wolfman30/commerce-chat/internal/conversation"
	"github.com/wolfman30/commerce-chat/internal/observability/metrics"
	"github.com/wolfman30/commerce-chat/internal/persona"
	"github.com/wolfman30/commerce-chat/internal/shipping"
	"github.com/wolfman30/commerce-chat/pkg/logging"
)

// App is the assembled HTTP surface plus the resources it owns.
type App struct {
	Handler      http.Handler
	Orchestrator *conversation.Orchestrator
	Persona      *persona.Config

	redis   *redis.Client
	closers []func() error
}

// Close releases backend clients and the Redis connection.
func (a *App) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Options overrides pieces of the default wiring. Tests inject a fake backend
// and a private registry through it.
type Options struct {
	LLM      conversation.LLMClient
	Registry *prometheus.Registry
}

// BuildApp wires config into the router used by both the server and the Lambda.
func BuildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	p, err := persona.Load(cfg.PersonaFile)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load persona: %w", err)
	}

	app := &App{Persona: p}

	llm := opts.LLM
	if llm == nil {
		llm, err = BuildLLMClient(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if closer, ok := llm.(interface{ Close() error }); ok {
			app.closers = append(app.closers, closer.Close)
		}
	}

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	chatMetrics := metrics.NewChatMetrics(registry)
	shippingMetrics := metrics.NewShippingMetrics(registry)

	app.redis = BuildRedisClient(ctx, cfg, logger, true)
	lookup := BuildOrderStatusLookup(app.redis, cfg, logger)

	app.Orchestrator = BuildOrchestrator(cfg, p, llm, lookup, chatMetrics, logger)
	chatHandler := conversation.NewHandler(app.Orchestrator, logger)

	carrier := shipping.New(shipping.Config{
		BaseURL: cfg.CarrierBaseURL,
		APIKey:  cfg.CarrierAPIKey,
		Timeout: cfg.CarrierTimeout,
		Logger:  logger,
	})
	if cfg.CarrierAPIKey == "" {
		logger.Warn("no carrier API key configured; /rate will return configuration errors")
	}
	rateHandler := shipping.NewHandler(carrier, cfg.CarrierTimeout, shippingMetrics, logger)

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	app.Handler = router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        chatHandler.Chat,
		RateHandler:        rateHandler.Rate,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	logger.Info("application wired",
		"persona", p.Name(),
		"llm_provider", cfg.LLMProvider,
		"metrics", cfg.MetricsEnabled,
	)
	return app, nil
}
