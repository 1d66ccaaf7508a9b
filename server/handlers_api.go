package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lixenwraith/firehose/feed"
)

type contentRequest struct {
	Text string `json:"text"`
	Tag  string `json:"tag"`
}

type configRequest struct {
	Mode            *string  `json:"mode"`
	Speed           *float64 `json:"speed"`
	SpawnIntervalMs *int     `json:"spawn_interval_ms"`
	Capacity        *int     `json:"capacity"`
}

type statsResponse struct {
	Active          int     `json:"active"`
	Pending         int     `json:"pending"`
	Mode            string  `json:"mode"`
	Running         bool    `json:"running"`
	Speed           float64 `json:"speed"`
	SpawnIntervalMs int64   `json:"spawn_interval_ms"`
	Capacity        int     `json:"capacity"`
}

func (s *Server) stats() statsResponse {
	st := s.engine.Stats()
	return statsResponse{
		Active:          st.Active,
		Pending:         st.Pending,
		Mode:            st.Mode,
		Running:         st.Running,
		Speed:           st.Speed,
		SpawnIntervalMs: st.SpawnInterval.Milliseconds(),
		Capacity:        st.Capacity,
	}
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.stats())
}

func (s *Server) handleModes(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"modes":   s.engine.Modes(),
		"current": s.engine.Mode(),
	})
}

func (s *Server) handleContent(c echo.Context) error {
	var req contentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}

	n := s.engine.AddContent(req.Text, req.Tag)
	return c.JSON(http.StatusAccepted, map[string]int{
		"queued":  n,
		"pending": s.engine.Pending(),
	})
}

// handleEntry persists an entry, the feed poller later delivers it to the engine
func (s *Server) handleEntry(c echo.Context) error {
	if s.cfg.Store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no entry store configured")
	}

	var e feed.Entry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if e.Source == "" || strings.TrimSpace(e.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "source and text are required")
	}
	if e.ExternalID == "" {
		e.ExternalID = feed.ExternalID(e.Source, e.Text)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.clock.Now().UTC().Truncate(time.Second)
	}

	id, err := s.cfg.Store.Insert(c.Request().Context(), e.Counted())
	if errors.Is(err, feed.ErrDuplicate) {
		return echo.NewHTTPError(http.StatusConflict, "entry already exists")
	}
	if err != nil {
		s.log.Errorw("entry insert failed", "source", e.Source, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store entry")
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"id":          id,
		"external_id": e.ExternalID,
	})
}

func (s *Server) handleControl(c echo.Context) error {
	switch c.Param("action") {
	case "start":
		s.engine.Start()
	case "stop":
		s.engine.Stop()
	case "clear":
		s.engine.Clear()
	default:
		return echo.NewHTTPError(http.StatusNotFound, "unknown action")
	}
	return c.JSON(http.StatusOK, s.stats())
}

func (s *Server) handleConfig(c echo.Context) error {
	var req configRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Mode != nil && !s.engine.SetMode(*req.Mode) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown mode")
	}
	if req.Speed != nil {
		s.engine.SetSpeed(*req.Speed)
	}
	if req.SpawnIntervalMs != nil {
		s.engine.SetSpawnRate(*req.SpawnIntervalMs)
	}
	if req.Capacity != nil {
		s.engine.SetMaxWords(*req.Capacity)
	}
	return c.JSON(http.StatusOK, s.stats())
}
