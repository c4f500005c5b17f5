package http

import (
	"log/slog"
	"net/http"

	gorilla "github.com/gorilla/websocket"

	"storepulse/internal/config"
	apierrors "storepulse/internal/errors"
	"storepulse/internal/websocket"
)

// WSHandler upgrades requests to WebSocket connections and hands them to the
// hub.
type WSHandler struct {
	hub          *websocket.Hub
	upgrader     gorilla.Upgrader
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler(hub *websocket.Hub, cfg config.WebSocketConfig, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			// Origin enforcement happens in the CORS middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:       logger,
		errorHandler: apierrors.NewErrorHandler(logger, false),
	}
}

// Serve upgrades the connection
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	websocket.ServeWS(h.hub, conn, h.logger)
}
