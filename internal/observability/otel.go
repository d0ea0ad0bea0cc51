// Package observability wires request IDs and OpenTelemetry tracing.
package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
)

// Config controls the OpenTelemetry initialization.
type Config struct {
	ServiceName string
	Environment string
	Endpoint    string
	Protocol    string // grpc or http
	Headers     map[string]string
	Insecure    bool
}

// Provider wraps the tracer provider and exposes Shutdown.
type Provider struct {
	tp       *sdktrace.TracerProvider
	fallback bool
	err      error
}

// Shutdown flushes telemetry exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p != nil && p.tp != nil
}

// Fallback reports whether exporter setup failed and tracing is a no-op.
func (p *Provider) Fallback() bool {
	if p == nil {
		return false
	}
	return p.fallback
}

// Err returns the exporter setup failure behind a fallback provider.
func (p *Provider) Err() error {
	if p == nil {
		return nil
	}
	return p.err
}

// Init configures OpenTelemetry exporters and global providers. An empty
// endpoint installs a no-op tracer. Exporter failures never fail startup:
// gRPC falls back to HTTP, then to a no-op provider.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Endpoint == "" {
		installNoop()
		return &Provider{}, nil
	}

	provider, err := initWithConfig(ctx, cfg)
	if err == nil {
		return provider, nil
	}
	err = fmt.Errorf("telemetry init failed for %s exporter: %w", cfg.Protocol, err)
	otel.Handle(err)

	if cfg.Protocol == "grpc" {
		httpCfg := cfg
		httpCfg.Protocol = "http"
		httpProvider, httpErr := initWithConfig(ctx, httpCfg)
		if httpErr == nil {
			return httpProvider, nil
		}
		httpErr = fmt.Errorf("telemetry http fallback failed: %w", httpErr)
		otel.Handle(httpErr)
		err = errors.Join(err, httpErr)
	}

	installNoop()
	return &Provider{fallback: true, err: err}, nil
}

// TraceMiddleware extracts an incoming trace context and opens a server span
// around the request. The span is named after the method and, once chi has
// routed the request, the matched route pattern; unmatched paths leave the
// method alone so span names stay bounded.
func TraceMiddleware(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := otel.Tracer(serviceName).Start(ctx, r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.RequestURI()),
				),
			)
			defer span.End()

			if id, ok := RequestIDFromContext(ctx); ok {
				span.SetAttributes(attribute.String("http.request_id", id))
			}

			next.ServeHTTP(w, r.WithContext(ctx))

			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					span.SetName(r.Method + " " + pattern)
				}
			}
		})
	}
}

func initWithConfig(ctx context.Context, cfg Config) (*Provider, error) {
	client, err := buildClient(cfg)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	setPropagator()

	return &Provider{tp: tp}, nil
}

func installNoop() {
	otel.SetTracerProvider(noop.NewTracerProvider())
	setPropagator()
}

func setPropagator() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

func buildClient(cfg Config) (otlptrace.Client, error) {
	switch cfg.Protocol {
	case "http":
		options := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(cfg.Endpoint),
			otlptracehttp.WithHeaders(cfg.Headers),
			otlptracehttp.WithRetry(otlptracehttp.RetryConfig{
				Enabled:         true,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     5 * time.Second,
				MaxElapsedTime:  0,
			}),
		}
		if cfg.Insecure {
			options = append(options, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.NewClient(options...), nil
	case "grpc", "":
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithRetry(otlptracegrpc.RetryConfig{
				Enabled:         true,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     5 * time.Second,
				MaxElapsedTime:  0,
			}),
			otlptracegrpc.WithDialOption(grpc.WithUserAgent(cfg.ServiceName)),
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
		}
		return otlptracegrpc.NewClient(opts...), nil
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", cfg.Protocol)
	}
}
