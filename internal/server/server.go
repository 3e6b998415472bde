// Package server wires the HTTP surface of the crash-report gateway: one
// method-gated route running the admission pipeline, plus the signed read
// endpoints.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	nrecho "github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/crashgate-io/crashgate/internal/config"
	"github.com/crashgate-io/crashgate/internal/ratelimit"
	"github.com/crashgate-io/crashgate/internal/response"
	"github.com/crashgate-io/crashgate/internal/store"
)

// Server holds the Echo app and dependencies.
type Server struct {
	Echo   *echo.Echo
	Config *config.Config
	log    zerolog.Logger
}

// New builds the Echo server and registers routes. The counter store is
// injected so deployments can swap the in-memory implementation for a shared
// one.
func New(cfg *config.Config, st store.Store, counters ratelimit.CounterStore, log zerolog.Logger, nrApp *newrelic.Application) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(log)
	e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.Server.IdleTimeout) * time.Second

	e.Use(middleware.Recover())
	if nrApp != nil {
		e.Use(nrecho.Middleware(nrApp))
	}
	e.Use(requestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodPost, http.MethodOptions, http.MethodGet},
		AllowHeaders: []string{echo.HeaderContentType, HeaderSignature, HeaderAppName, HeaderAppVersion},
	}))
	e.Use(middleware.BodyLimit(strconv.Itoa(cfg.Limits.MaxBodyBytes)))

	h := &Handler{
		cfg:     cfg,
		store:   st,
		limiter: ratelimit.New(counters, cfg.Limits.RequestsPerMinute, log),
		log:     log,
		now:     time.Now,
	}

	e.POST("/", h.Ingest)
	e.OPTIONS("/", preflight)
	e.GET("/reports", h.Query)
	e.GET("/summary", h.Summary)

	return &Server{Echo: e, Config: cfg, log: log}
}

// Start runs the HTTP server until the context is cancelled or the listener
// fails.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()
	s.log.Info().Str("port", s.Config.Server.Port).Msg("crash gateway listening")
	err := s.Echo.Start(":" + s.Config.Server.Port)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

// preflight answers bare OPTIONS requests that carry no Origin header and so
// bypass the CORS middleware.
func preflight(c echo.Context) error {
	h := c.Response().Header()
	h.Set(echo.HeaderAccessControlAllowOrigin, "*")
	h.Set(echo.HeaderAccessControlAllowMethods, "POST, OPTIONS")
	h.Set(echo.HeaderAccessControlAllowHeaders, "Content-Type, X-HMAC-Signature, X-App-Name")
	return c.NoContent(http.StatusNoContent)
}

// errorHandler maps router and middleware failures onto the wire contract.
func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			switch httpErr.Code {
			case http.StatusMethodNotAllowed:
				_ = response.MethodNotAllowed(c)
				return
			case http.StatusRequestEntityTooLarge:
				_ = response.PayloadTooLarge(c)
				return
			case http.StatusNotFound:
				_ = c.JSON(http.StatusNotFound, response.APIError{Error: "Not found"})
				return
			}
		}
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled request error")
		_ = response.Internal(c)
	}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogMethod:  true,
		LogURI:     true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
