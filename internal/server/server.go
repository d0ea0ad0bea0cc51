// Package server exposes the composed line over HTTP.
package server

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/otherjamesbrown/color-service/internal/compose"
	apperrors "github.com/otherjamesbrown/color-service/internal/errors"
	"github.com/otherjamesbrown/color-service/internal/logging"
	"github.com/otherjamesbrown/color-service/internal/observability"
)

// Options configure the HTTP server instance.
type Options struct {
	Addr        string
	ServiceName string
	Logger      *logging.Logger
	Composer    *compose.Composer

	RequestTimeout    time.Duration
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = logging.FromZap(zap.NewNop())
	}
	if o.ServiceName == "" {
		o.ServiceName = "color-service"
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 10 * time.Second
	}
	if o.ReadHeaderTimeout <= 0 {
		o.ReadHeaderTimeout = 2 * time.Second
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 5 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = 60 * time.Second
	}
}

// New constructs an http.Server serving the composed line on "/".
func New(opts Options) *http.Server {
	opts.setDefaults()

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           NewRouter(opts),
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		ReadTimeout:       opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		ErrorLog:          zap.NewStdLog(opts.Logger.Logger),
	}
}

// NewRouter builds the chi router with the middleware stack and the single
// route. "/" answers every HTTP method, including extension methods chi
// does not register.
func NewRouter(opts Options) http.Handler {
	opts.setDefaults()

	router := chi.NewRouter()
	router.Use(observability.RequestContextMiddleware)
	router.Use(observability.TraceMiddleware(opts.ServiceName))
	router.Use(requestLogger(opts.Logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(opts.RequestTimeout))

	h := &lineHandler{composer: opts.Composer, logger: opts.Logger}
	router.HandleFunc("/", h.ServeHTTP)
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})

	return router
}

type lineHandler struct {
	composer *compose.Composer
	logger   *logging.Logger
}

func (h *lineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	line, err := h.composer.Compose(r.Context())
	if err != nil {
		requestID, _ := observability.RequestIDFromContext(r.Context())
		h.logger.WithContext(r.Context()).WithRequestID(requestID).
			Error("failed to compose response", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err, requestID)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, line.String())
}

func writeError(w http.ResponseWriter, status int, err error, requestID string) {
	coded := apperrors.From(err)
	payload, marshalErr := apperrors.Marshal(apperrors.New(coded.Code, coded.Message,
		apperrors.WithDetail(coded.Detail),
		apperrors.WithRequestID(requestID),
	))
	if marshalErr != nil {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// requestLogger logs one record per request once the handler returns.
func requestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			requestID, _ := observability.RequestIDFromContext(r.Context())
			logger.WithContext(r.Context()).WithRequestID(requestID).Debug("request served",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
