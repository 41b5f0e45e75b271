package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"TradePulse/internal/service/metrics"
	"TradePulse/internal/service/ratelimit"
	applogger "TradePulse/pkg/logger"
)

// ConnectionProbe reports the state of one upstream connection.
type ConnectionProbe interface {
	IsConnected() bool
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status     string          `json:"status"`
	Uptime     string          `json:"uptime"`
	Components map[string]bool `json:"components"`
	Degraded   []string        `json:"degraded,omitempty"`
}

// HealthHandler serves the liveness probe. The process is alive while it can
// answer; disconnected streams only mark it degraded.
type HealthHandler struct {
	probes  map[string]ConnectionProbe
	started time.Time
	rl      *ratelimit.Limiter
	l       *applogger.Logger
}

// NewHealthHandler creates a handler reporting on probes.
func NewHealthHandler(probes map[string]ConnectionProbe, l *applogger.Logger) *HealthHandler {
	metrics.Register()
	if l == nil {
		l = applogger.Nop()
	}
	return &HealthHandler{
		probes:  probes,
		started: time.Now(),
		rl:      ratelimit.New(20, 10),
		l:       l,
	}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
}

func (h *HealthHandler) Health(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()) {
		h.l.Warn("healthz rate_limited", applogger.String("remote", c.RealIP()))
		return c.NoContent(http.StatusTooManyRequests)
	}

	resp := HealthResponse{
		Status:     "ok",
		Uptime:     time.Since(h.started).Truncate(time.Second).String(),
		Components: make(map[string]bool, len(h.probes)),
	}
	for name, p := range h.probes {
		up := p.IsConnected()
		resp.Components[name] = up
		if !up {
			resp.Degraded = append(resp.Degraded, name)
		}
	}
	if len(resp.Degraded) > 0 {
		sort.Strings(resp.Degraded)
		resp.Status = "degraded"
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.JSON(http.StatusOK, resp)
}
