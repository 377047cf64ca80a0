package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderCanceled      EventType = "order.canceled"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderPaymentUpdate EventType = "order.payment_updated"

	// Stock события
	EventTypeStockDecreased EventType = "stock.decreased"
	EventTypeStockRestored  EventType = "stock.restored"
)

// Topics для Kafka
const (
	TopicOrderEvents = "bookstore.order.events"
	TopicStockEvents = "bookstore.stock.events"
)

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventType   EventType              `json:"event_type"`
	OrderID     string                 `json:"order_id"`
	OrderNumber string                 `json:"order_number"`
	UserID      string                 `json:"user_id"`
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// StockEvent представляет событие изменения остатка
type StockEvent struct {
	EventType EventType `json:"event_type"`
	BookID    string    `json:"book_id"`
	Quantity  int32     `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, orderNumber, userID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:   eventType,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		UserID:      userID,
		Status:      status,
		Timestamp:   time.Now(),
		Metadata:    metadata,
	}
}

// NewStockEvent создает новое событие изменения остатка
func NewStockEvent(eventType EventType, bookID string, quantity int32) *StockEvent {
	return &StockEvent{
		EventType: eventType,
		BookID:    bookID,
		Quantity:  quantity,
		Timestamp: time.Now(),
	}
}
