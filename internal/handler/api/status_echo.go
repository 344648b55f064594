package api

import (
	"time"

	"SignalRelay/internal/domain/models"
	drepo "SignalRelay/internal/domain/repository"
	xhttp "SignalRelay/pkg/http"
	xlogger "SignalRelay/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StatusEchoHandler exposes the liveness/health surface. It only reads
// supervisor snapshots and never blocks the relay path.
type StatusEchoHandler struct {
	logger     *xlogger.Logger
	status     drepo.StatusSource
	sourceChat string
	targetChat string
}

func NewStatusEchoHandler(logger *xlogger.Logger, status drepo.StatusSource, sourceChat, targetChat string) *StatusEchoHandler {
	return &StatusEchoHandler{
		logger:     logger,
		status:     status,
		sourceChat: sourceChat,
		targetChat: targetChat,
	}
}

func (h *StatusEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Home)
	e.GET("/health", h.Health)
}

type botInfo struct {
	Polling       bool   `json:"polling"`
	SourceGroup   string `json:"source_group"`
	TargetChannel string `json:"target_channel"`
}

type homeResponse struct {
	Status    string  `json:"status"`
	State     string  `json:"state"`
	Uptime    float64 `json:"uptime"`
	Timestamp string  `json:"timestamp"`
	BotInfo   botInfo `json:"bot_info"`
}

type healthResponse struct {
	Status     string  `json:"status"`
	BotRunning bool    `json:"bot_running"`
	State      string  `json:"state"`
	Uptime     float64 `json:"uptime"`
	Restarts   int64   `json:"restarts"`
	LastError  string  `json:"last_error,omitempty"`
}

// Home reports overall service status.
func (h *StatusEchoHandler) Home(c echo.Context) error {
	snap := h.status.Snapshot()

	status := "Bot is running!"
	if !snap.Running {
		status = "Bot is " + string(snap.State)
	}

	return xhttp.SuccessResponse(c, homeResponse{
		Status:    status,
		State:     string(snap.State),
		Uptime:    snap.Uptime.Seconds(),
		Timestamp: time.Now().Format(time.RFC3339),
		BotInfo: botInfo{
			Polling:       snap.Running,
			SourceGroup:   h.sourceChat,
			TargetChannel: h.targetChat,
		},
	})
}

// Health reports liveness for orchestration probes. The process is
// healthy as long as the supervisor cycle is alive, including during
// restarts.
func (h *StatusEchoHandler) Health(c echo.Context) error {
	snap := h.status.Snapshot()

	status := "healthy"
	if snap.State == models.StateStopped {
		status = "stopped"
		return xhttp.ServiceUnavailableResponse(c, healthResponse{
			Status:     status,
			BotRunning: snap.Running,
			State:      string(snap.State),
			Uptime:     snap.Uptime.Seconds(),
			Restarts:   snap.Restarts,
			LastError:  snap.LastError,
		})
	}

	return xhttp.SuccessResponse(c, healthResponse{
		Status:     status,
		BotRunning: snap.Running,
		State:      string(snap.State),
		Uptime:     snap.Uptime.Seconds(),
		Restarts:   snap.Restarts,
		LastError:  snap.LastError,
	})
}
