package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"

	"github.com/pandeptwidyaop/hostbridge/internal/services"
	"github.com/pandeptwidyaop/hostbridge/internal/system"
	"github.com/pandeptwidyaop/hostbridge/internal/version"
)

// SystemHandler serves read-only facts about the bridge.
type SystemHandler struct {
	dispatcher *services.Dispatcher
}

// NewSystemHandler creates a new SystemHandler instance.
func NewSystemHandler(dispatcher *services.Dispatcher) *SystemHandler {
	return &SystemHandler{dispatcher: dispatcher}
}

// SystemStatus describes the running bridge.
type SystemStatus struct {
	Platform        string   `json:"platform"`
	Arch            string   `json:"arch"`
	Version         string   `json:"version"`
	Calls           []string `json:"calls"`
	AllowedCommands []string `json:"allowed_commands"`
}

// Status returns the platform, version and call surface.
// GET /api/status
func (h *SystemHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, SystemStatus{
		Platform:        runtime.GOOS,
		Arch:            runtime.GOARCH,
		Version:         version.Version,
		Calls:           h.dispatcher.Calls(),
		AllowedCommands: system.AllowedCommands(),
	})
}

// Allowlist returns the executables system_execute_command may run.
// GET /api/allowlist
func (h *SystemHandler) Allowlist(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"commands": system.AllowedCommands()})
}

// Version returns build metadata.
// GET /api/version
func (h *SystemHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Info())
}

// Health is a liveness probe.
// GET /healthz
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
