// Package websocket доставляет приложению события-уведомления (тосты)
// в режиме fire-and-forget. Ядро публикует событие, hub рассылает его
// всем подключенным экземплярам приложения; недоставленные события
// отбрасываются.
package websocket

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Единственный потребитель - мобильное приложение; браузерного
	// происхождения у соединений нет
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub ведёт учёт подключенных клиентов и рассылает им события
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

// NewHub создает новый hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run обрабатывает регистрацию клиентов и рассылку событий.
// Запускается одной горутиной при старте процесса.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Переполненный буфер клиента: отключаем его,
					// уведомления не накапливаются
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Broadcast сериализует событие и рассылает его всем клиентам.
// Никогда не блокирует вызывающего.
func (h *Hub) Broadcast(event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WS] Failed to marshal event: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Printf("[WS] Broadcast queue full, event dropped")
	}
}

// ServeWS регистрирует новое WebSocket соединение в hub
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, clientBufferSize)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}
