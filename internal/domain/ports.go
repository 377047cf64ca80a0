package domain

import "time"

// UserResolver разрешает владельца корзины/заказа по стабильному идентификатору.
// Аутентификация и сессии — внешние коллабораторы ядра.
type UserResolver interface {
	// Resolve возвращает пользователя или ErrUserNotFound.
	Resolve(userID string) (User, error)
}

// CatalogService описывает операции каталога, которые потребляют корзина и заказы.
// Мутации остатков атомарны и сериализованы по книге.
type CatalogService interface {
	// GetBook возвращает книгу или ErrBookNotFound.
	GetBook(id string) (Book, error)
	// IsAvailable — true, если книга существует, доступна и остаток >= qty.
	IsAvailable(id string, qty int32) bool
	// DecreaseStock списывает остаток; ErrInsufficientStock при нехватке.
	DecreaseStock(id string, qty int32) error
	// IncreaseStock возвращает остаток (компенсация/отмена).
	IncreaseStock(id string, qty int32) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
