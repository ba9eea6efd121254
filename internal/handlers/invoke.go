// Package handlers exposes the invocation dispatcher over HTTP and WebSocket.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pandeptwidyaop/hostbridge/internal/middleware"
	"github.com/pandeptwidyaop/hostbridge/internal/models"
	"github.com/pandeptwidyaop/hostbridge/internal/services"
	"github.com/pandeptwidyaop/hostbridge/internal/system"
)

// InvokeHandler serves one call per HTTP request.
type InvokeHandler struct {
	dispatcher *services.Dispatcher
}

// NewInvokeHandler creates a new InvokeHandler instance.
func NewInvokeHandler(dispatcher *services.Dispatcher) *InvokeHandler {
	return &InvokeHandler{dispatcher: dispatcher}
}

// Invoke runs the call named in the path with the request body as its
// argument object.
// POST /api/invoke/:cmd
func (h *InvokeHandler) Invoke(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, models.InvokeResponse{
			Error: "Failed to read request body: " + err.Error(),
			Kind:  string(services.KindInvalidArgs),
		})
		return
	}

	resp := h.dispatcher.Invoke(c.Request.Context(), services.Invocation{
		ID:        middleware.GetRequestID(c),
		Call:      c.Param("cmd"),
		Args:      body,
		Transport: models.TransportHTTP,
		ClientIP:  c.ClientIP(),
	})
	c.JSON(StatusFor(resp), resp)
}

// StatusFor maps a response to its HTTP status code.
func StatusFor(resp models.InvokeResponse) int {
	if resp.OK {
		return http.StatusOK
	}
	switch system.Kind(resp.Kind) {
	case system.KindPolicyViolation:
		return http.StatusForbidden
	case system.KindNotFound, services.KindUnknownCall:
		return http.StatusNotFound
	case services.KindInvalidArgs:
		return http.StatusBadRequest
	case system.KindTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
