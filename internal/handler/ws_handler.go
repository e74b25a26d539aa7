package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yourusername/rhodes-guide-api/internal/websocket"
)

// WSHandler обрабатывает подключение клиентов к потоку уведомлений
type WSHandler struct {
	hub *websocket.Hub
}

// NewWSHandler создает новый обработчик WebSocket подключений
func NewWSHandler(hub *websocket.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleConnection переводит HTTP-запрос в WebSocket подключение
func (h *WSHandler) HandleConnection(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}
