package tracing

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/noah-isme/study-mission-api/pkg/config"
)

// Init installs a global tracer provider writing spans to stdout. When tracing
// is disabled the returned shutdown is a no-op and the global provider stays
// the otel default.
func Init(ctx context.Context, cfg *config.Config, logger *zap.Logger) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if cfg == nil || !cfg.Tracing.Enabled {
		return noop, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	serviceName := strings.TrimSpace(cfg.Tracing.ServiceName)
	if serviceName == "" {
		serviceName = "study-mission-api"
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", serviceName),
		attribute.String("deployment.environment", cfg.Env),
	))
	if err != nil {
		logger.Warn("otel resource init failed", zap.Error(err))
	}

	exporter, err := stdouttrace.New()
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	logger.Info("tracing initialised", zap.String("service", serviceName))
	return tp.Shutdown, nil
}
