package websocket

import (
	"time"

	"github.com/yourusername/rhodes-guide-api/internal/service"
)

// notificationEvent - событие-уведомление в канале WebSocket
type notificationEvent struct {
	Type         string               `json:"type"`
	Notification service.Notification `json:"notification"`
	SentAt       time.Time            `json:"sent_at"`
}

// Notifier реализует service.Notifier поверх hub: уведомления ядра
// рассылаются всем подключенным экземплярам приложения как тосты
type Notifier struct {
	hub *Hub
}

// NewNotifier создает notifier поверх hub
func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

// Notify рассылает уведомление. Fire-and-forget: ни доставка,
// ни её результат ядром не отслеживаются.
func (n *Notifier) Notify(note service.Notification) {
	n.hub.Broadcast(notificationEvent{
		Type:         "notification",
		Notification: note,
		SentAt:       time.Now(),
	})
}
