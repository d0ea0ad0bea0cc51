// Command color-service answers every HTTP request on port 3000 with a single
// line naming the request time, the Kubernetes namespace, the hostname, a
// colored glyph, and a custom text.
//
// Usage:
//
//	color-service [color] [custom_text]
//
// Both arguments are positional and optional; color defaults to "blue" and
// custom_text to "Hi there!". HOSTNAME must be set; NAMESPACE is optional.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/otherjamesbrown/color-service/internal/compose"
	"github.com/otherjamesbrown/color-service/internal/config"
	apperrors "github.com/otherjamesbrown/color-service/internal/errors"
	"github.com/otherjamesbrown/color-service/internal/glyph"
	"github.com/otherjamesbrown/color-service/internal/identity"
	"github.com/otherjamesbrown/color-service/internal/logging"
	"github.com/otherjamesbrown/color-service/internal/observability"
	"github.com/otherjamesbrown/color-service/internal/preflight"
	"github.com/otherjamesbrown/color-service/internal/server"
)

var version = "dev"

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute runs the root command and maps failures to an exit code.
func execute(args []string) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "color-service [color] [custom_text]",
		Short: "Serve a colored status line on port 3000",
		Long: fmt.Sprintf(`color-service answers every request to / with

  [<timestamp>][<namespace>][<hostname>] <glyph> -- <custom_text>

Recognized colors: %s.`, strings.Join(glyph.Names(), ", ")),
		Version: version,
		// Every argument is positional, including ones starting with "-".
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), parseArgs(args))
		},
	}
}

// settings are the values captured from the command line at startup.
type settings struct {
	Color string
	Text  string
}

// parseArgs reads the two optional positional arguments. Extra arguments are
// ignored.
func parseArgs(args []string) settings {
	s := settings{Color: glyph.DefaultColor, Text: compose.DefaultText}
	if len(args) > 0 {
		s.Color = args[0]
	}
	if len(args) > 1 {
		s.Text = args[1]
	}
	return s
}

func run(ctx context.Context, s settings) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
		OutputPath:  cfg.LogOutput,
	})
	if err != nil {
		return apperrors.New(apperrors.CodeConfigInvalid, "initialize logger", apperrors.WithCause(err))
	}
	defer func() { _ = logger.Sync() }()

	// The provider is never shut down, so spans still batched when the process is killed are lost.
	tel, err := observability.Init(ctx, observability.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.TelemetryEndpoint,
		Protocol:    cfg.TelemetryProtocol,
		Headers:     cfg.TelemetryHeaders,
		Insecure:    cfg.TelemetryInsecure,
	})
	if err != nil {
		return err
	}
	if tel.Fallback() {
		logger.Warn("telemetry exporter unavailable, tracing disabled", zap.Error(tel.Err()))
	}

	if !glyph.Known(s.Color) {
		logger.Warn("unrecognized color, using fallback glyph",
			zap.String("color", s.Color),
			zap.Strings("known", glyph.Names()))
	}

	resolver := identity.NewResolver()
	if err := checkPreconditions(ctx, logger.Logger, resolver); err != nil {
		logger.Error("preflight failed", zap.Error(err))
		return err
	}

	srv := server.New(server.Options{
		Addr:              cfg.Address(),
		ServiceName:       cfg.ServiceName,
		Logger:            logger,
		Composer:          compose.New(s.Color, s.Text, resolver),
		RequestTimeout:    cfg.RequestTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	})

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.Error("failed to bind listener", zap.String("addr", srv.Addr), zap.Error(err))
		return apperrors.New(apperrors.CodeListenFailed,
			fmt.Sprintf("listen on %s", srv.Addr), apperrors.WithCause(err))
	}

	logger.Info(fmt.Sprintf("Starting HTTP server on port %d", config.HTTPPort),
		zap.Int("port", config.HTTPPort),
		zap.String("color", s.Color),
		zap.String("version", version),
	)
	// No shutdown sequence: Serve only returns on a listener failure.
	return srv.Serve(ln)
}

// checkPreconditions validates the environment once before serving. A
// missing HOSTNAME is fatal; an unreadable namespace override is reported.
func checkPreconditions(ctx context.Context, logger *zap.Logger, resolver *identity.Resolver) error {
	reg := preflight.NewRegistry()
	reg.Require("hostname", func(context.Context) error {
		_, err := resolver.Hostname()
		return err
	})
	reg.Advise("namespace-override", func(context.Context) error {
		if ns, ok := resolver.NamespaceEnvValue(); !ok || ns == "" {
			return nil
		}
		_, err := resolver.NamespaceOverride()
		return err
	})

	result := reg.Evaluate(ctx)
	for _, w := range result.Warnings() {
		logger.Warn("namespace override file unavailable, using NAMESPACE",
			zap.String("check", w.Name),
			zap.String("path", resolver.NamespaceFilePath()),
			zap.String("error", w.Error))
	}
	if err := result.Err(); err != nil {
		return apperrors.New(apperrors.CodePreflight, "startup preconditions not met", apperrors.WithCause(err))
	}
	return nil
}
