package service

import "github.com/google/uuid"

// EventNotifier доставляет событие пользователю (WebSocket hub).
// Вызовы fire-and-forget: ошибки доставки не влияют на результат операции.
type EventNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}
