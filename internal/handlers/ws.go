package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pandeptwidyaop/hostbridge/internal/middleware"
	"github.com/pandeptwidyaop/hostbridge/internal/models"
	"github.com/pandeptwidyaop/hostbridge/internal/services"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// WSHandler multiplexes calls over one WebSocket connection. Each frame is an
// InvokeRequest; responses may arrive out of order and carry the request id.
type WSHandler struct {
	dispatcher *services.Dispatcher
	upgrader   websocket.Upgrader
	maxMessage int64
}

// NewWSHandler creates a new WSHandler instance. Handshakes from origins not
// in allowedOrigins are refused.
func NewWSHandler(dispatcher *services.Dispatcher, allowedOrigins []string, maxMessage int64) *WSHandler {
	return &WSHandler{
		dispatcher: dispatcher,
		maxMessage: maxMessage,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

// Serve handles a WebSocket connection until the client goes away. Calls
// still running when the connection closes are cancelled.
// GET /api/ws
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("client_ip", c.ClientIP()).Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	clientIP := c.ClientIP()
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	if h.maxMessage > 0 {
		conn.SetReadLimit(h.maxMessage)
	}
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	var writeMu sync.Mutex
	send := func(resp models.InvokeResponse) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(resp); err != nil {
			log.Debug().Err(err).Msg("websocket write failed")
		}
	}

	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Debug().Str("client_ip", clientIP).Msg("websocket connected")

	var wg sync.WaitGroup
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("websocket read error")
			}
			break
		}

		var req models.InvokeRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			send(models.InvokeResponse{
				Error: "Invalid request: " + err.Error(),
				Kind:  string(services.KindInvalidArgs),
			})
			continue
		}

		wg.Add(1)
		go func(req models.InvokeRequest) {
			defer wg.Done()
			send(h.dispatcher.Invoke(ctx, services.Invocation{
				ID:        req.ID,
				Call:      req.Cmd,
				Args:      req.Args,
				Transport: models.TransportWebSocket,
				ClientIP:  clientIP,
			}))
		}(req)
	}

	cancel()
	wg.Wait()
	log.Debug().Str("client_ip", clientIP).Msg("websocket disconnected")
}
