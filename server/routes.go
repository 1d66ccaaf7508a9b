package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/lixenwraith/firehose/metrics"
)

func (s *Server) registerRoutes() {
	s.echo.Use(s.requestLogger())
	s.echo.Use(middleware.Recover())
	if s.cfg.HTTPMetrics != nil {
		s.echo.Use(s.cfg.HTTPMetrics.Middleware())
	}

	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	if s.cfg.Registry != nil {
		s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler(s.cfg.Registry)))
	}
	if s.cfg.Hub != nil {
		s.echo.GET("/ws", s.handleWebSocket)
	}

	api := s.echo.Group("/api")
	api.GET("/stats", s.handleStats)
	api.GET("/modes", s.handleModes)

	guarded := api.Group("", s.requireAPIKey)
	guarded.POST("/content", s.handleContent)
	guarded.POST("/entries", s.handleEntry)
	guarded.POST("/control/:action", s.handleControl)
	guarded.PUT("/config", s.handleConfig)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURIPath: true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			s.log.Debugw("request", attrs...)
			return nil
		},
	})
}

// requireAPIKey accepts X-API-Key or a bearer token, open when no key is configured
func (s *Server) requireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.authorized(c, false) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid api key")
		}
		return next(c)
	}
}

// authorized checks the request's api key
// Browsers cannot set headers on a websocket handshake, so allowQuery also accepts ?api_key=
func (s *Server) authorized(c echo.Context, allowQuery bool) bool {
	if s.cfg.APIKey == "" {
		return true
	}
	key := c.Request().Header.Get("X-API-Key")
	if key == "" {
		key = strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	}
	if key == "" && allowQuery {
		key = c.QueryParam("api_key")
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.APIKey)) == 1
}
