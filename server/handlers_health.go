package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"uptime":  s.clock.Since(s.startTime).Seconds(),
		"running": s.engine.Running(),
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	if s.cfg.Store == nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := s.cfg.Store.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status":       "unhealthy",
			"failed_check": "store",
			"error":        err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleWebSocket(c echo.Context) error {
	if err := s.cfg.Hub.ServeWS(c.Response(), c.Request(), !s.authorized(c, true)); err != nil {
		// The upgrader has already written the response
		s.log.Debugw("websocket session rejected", "remote_addr", c.RealIP(), "error", err)
	}
	return nil
}
