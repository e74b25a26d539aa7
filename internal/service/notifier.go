package service

import "log"

// NotificationKind - тип уведомления (тост на стороне приложения)
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
)

// Notification - пользовательское уведомление, отправляемое приложению.
// Отрисовка - забота внешнего слоя; ядро только порождает события.
type Notification struct {
	Kind  NotificationKind `json:"kind"`
	Title string           `json:"title"`
	Body  string           `json:"body,omitempty"`
}

// Notifier доставляет уведомления в режиме fire-and-forget:
// результат доставки ядром не используется.
type Notifier interface {
	Notify(n Notification)
}

// LogNotifier пишет уведомления в лог. Используется, когда ни один
// клиент не подключен по WebSocket, и в тестах.
type LogNotifier struct{}

// Notify записывает уведомление в лог
func (LogNotifier) Notify(n Notification) {
	log.Printf("[Notify] %s: %s %s", n.Kind, n.Title, n.Body)
}
