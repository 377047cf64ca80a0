package order

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
	"github.com/vladislavdragonenkov/bookstore/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/bookstore/internal/metrics"
)

// CreateOrderRequest описывает запрос на оформление заказа.
// Позиции приходят из корзины вместе со снимком цены.
type CreateOrderRequest struct {
	UserID          string
	Items           []domain.CartItem
	ShippingAddress string
	PaymentMethod   string
	CustomerNote    string
}

// Service реализует жизненный цикл заказа: оформление со списанием остатков,
// смену статусов и отмену с компенсирующим возвратом остатков.
type Service struct {
	orders        domain.OrderRepository
	users         domain.UserResolver
	catalog       domain.CatalogService
	outbox        domain.OutboxRepository
	timeline      domain.TimelineRepository
	logger        *log.Entry
	metrics       *metrics.OrderMetrics
	kafkaProducer *kafka.Producer // опциональный Kafka producer для event-driven архитектуры
}

// Option настраивает сервис заказов.
type Option func(*Service)

// WithMetrics включает Prometheus-метрики жизненного цикла заказа.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithKafkaProducer включает публикацию событий заказа в Kafka.
func WithKafkaProducer(producer *kafka.Producer) Option {
	return func(s *Service) {
		s.kafkaProducer = producer
	}
}

// NewService создаёт рабочий экземпляр сервиса заказов.
func NewService(
	orders domain.OrderRepository,
	users domain.UserResolver,
	catalog domain.CatalogService,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	logger *log.Entry,
	options ...Option,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order")
	}
	s := &Service{
		orders:   orders,
		users:    users,
		catalog:  catalog,
		outbox:   outbox,
		timeline: timeline,
		logger:   logger,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// CreateOrder оформляет заказ: валидирует запрос, атомарно списывает остатки
// по каждой позиции и сохраняет заказ в статусе pending. Любой сбой после
// частичного списания компенсируется возвратом уже списанных остатков,
// поэтому заказ либо создаётся целиком, либо не оставляет следов на складе.
func (s *Service) CreateOrder(req CreateOrderRequest) (domain.Order, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.RecordCheckoutStarted()
		defer func() {
			s.metrics.RecordCheckoutDuration(time.Since(start))
			s.metrics.RecordCheckoutFinished()
		}()
	}

	if req.UserID == "" {
		return domain.Order{}, s.failCheckout(domain.ErrUserIDRequired)
	}
	if len(req.Items) == 0 {
		return domain.Order{}, s.failCheckout(domain.ErrItemsRequired)
	}
	for idx := range req.Items {
		if req.Items[idx].Quantity <= 0 {
			return domain.Order{}, s.failCheckout(domain.ErrItemQuantityInvalid)
		}
	}

	user, err := s.users.Resolve(req.UserID)
	if err != nil {
		return domain.Order{}, s.failCheckout(err)
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:              uuid.NewString(),
		OrderNumber:     newOrderNumber(now),
		UserID:          user.ID,
		Status:          domain.OrderStatusPending,
		Payment:         domain.PaymentStatusPending,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CustomerNote:    req.CustomerNote,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// decremented хранит позиции, чьи остатки уже списаны,
	// для компенсирующего возврата при сбое.
	decremented := make([]domain.CartItem, 0, len(req.Items))
	rollback := func() {
		for idx := range decremented {
			item := &decremented[idx]
			if err := s.catalog.IncreaseStock(item.BookID, item.Quantity); err != nil {
				s.logger.WithError(err).WithField("book_id", item.BookID).Error("stock rollback failed")
				continue
			}
			if s.metrics != nil {
				s.metrics.RecordStockRollback()
			}
			s.publishStockEvent(kafka.EventTypeStockRestored, item.BookID, item.Quantity)
		}
	}

	for idx := range req.Items {
		item := &req.Items[idx]

		if _, err := s.catalog.GetBook(item.BookID); err != nil {
			rollback()
			return domain.Order{}, s.failCheckout(err)
		}

		if err := s.catalog.DecreaseStock(item.BookID, item.Quantity); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"book_id":  item.BookID,
				"quantity": item.Quantity,
			}).Warn("stock decrease failed during checkout")
			rollback()
			return domain.Order{}, s.failCheckout(err)
		}
		decremented = append(decremented, *item)
		s.publishStockEvent(kafka.EventTypeStockDecreased, item.BookID, item.Quantity)

		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.NewString(),
			BookID:    item.BookID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.Subtotal(),
			CreatedAt: now,
		})
		order.TotalAmount = order.TotalAmount.Add(item.Subtotal())
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		rollback()
		return domain.Order{}, s.failCheckout(errs[0])
	}

	if err := s.orders.Create(order); err != nil {
		rollback()
		return domain.Order{}, s.failCheckout(err)
	}

	s.emitEvent(&order, "OrderCreated", map[string]interface{}{
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount.String(),
		"items_count":  len(order.Items),
		"ts":           now.Format(time.RFC3339Nano),
	})
	s.publishOrderEvent(kafka.EventTypeOrderCreated, &order, map[string]interface{}{
		"items_count": len(order.Items),
	})

	if s.metrics != nil {
		s.metrics.RecordCheckoutCompleted()
	}
	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"total":        order.TotalAmount.String(),
	}).Info("order created")

	return order, nil
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(orderID string) (domain.Order, error) {
	return s.orders.Get(orderID)
}

// OrderTimeline возвращает события заказа в порядке возникновения.
func (s *Service) OrderTimeline(orderID string) ([]domain.TimelineEvent, error) {
	if _, err := s.orders.Get(orderID); err != nil {
		return nil, err
	}
	return s.timeline.List(orderID)
}

// GetOrdersForUser возвращает заказы пользователя, новые первыми.
// limit <= 0 означает выборку без ограничения.
func (s *Service) GetOrdersForUser(userID string, limit int) ([]domain.Order, error) {
	if _, err := s.users.Resolve(userID); err != nil {
		return nil, err
	}
	return s.orders.ListByUser(userID, limit)
}

// ListByStatus возвращает заказы в заданном статусе.
func (s *Service) ListByStatus(status domain.OrderStatus, limit int) ([]domain.Order, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidStateTransition
	}
	return s.orders.ListByStatus(status, limit)
}

// PendingOrders возвращает заказы, ожидающие подтверждения.
func (s *Service) PendingOrders() ([]domain.Order, error) {
	return s.orders.ListByStatus(domain.OrderStatusPending, 0)
}

// CountByStatus возвращает количество заказов в статусе.
func (s *Service) CountByStatus(status domain.OrderStatus) (int64, error) {
	if !status.IsValid() {
		return 0, domain.ErrInvalidStateTransition
	}
	return s.orders.CountByStatus(status)
}

// UpdateStatus переводит заказ в новый статус исполнения. Переход в cancelled
// через этот метод запрещён: отмена идёт только через CancelOrder, потому что
// требует возврата остатков.
func (s *Service) UpdateStatus(orderID string, next domain.OrderStatus) (domain.Order, error) {
	if !next.IsValid() || next == domain.OrderStatusCancelled {
		return domain.Order{}, domain.ErrInvalidStateTransition
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if order.Status == next {
		return order, nil
	}
	if !order.CanTransitionTo(next) {
		return domain.Order{}, domain.ErrInvalidStateTransition
	}

	if err := s.saveStatus(&order, next); err != nil {
		return domain.Order{}, err
	}

	s.publishOrderEvent(kafka.EventTypeOrderStatusChanged, &order, nil)
	if s.metrics != nil {
		s.metrics.RecordStatusTransition(string(next))
	}

	return order, nil
}

// UpdatePaymentStatus фиксирует новое состояние оплаты заказа.
func (s *Service) UpdatePaymentStatus(orderID string, payment domain.PaymentStatus) (domain.Order, error) {
	switch payment {
	case domain.PaymentStatusPending, domain.PaymentStatusPaid,
		domain.PaymentStatusFailed, domain.PaymentStatusRefunded:
	default:
		return domain.Order{}, fmt.Errorf("unknown payment status %q", payment)
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.Payment == payment {
		return order, nil
	}

	order.Payment = payment
	order.UpdatedAt = time.Now().UTC()
	if err := s.saveWithRetry(&order); err != nil {
		return domain.Order{}, err
	}

	s.emitEvent(&order, "OrderPaymentUpdated", map[string]interface{}{
		"payment": string(payment),
		"ts":      order.UpdatedAt.Format(time.RFC3339Nano),
	})
	s.publishOrderEvent(kafka.EventTypeOrderPaymentUpdate, &order, map[string]interface{}{
		"payment": string(payment),
	})

	return order, nil
}

// CancelOrder отменяет заказ и возвращает остатки всех его позиций.
// Отмена допустима только из pending; повторная отмена, конкурентная отмена
// и отмена исполняемого заказа отклоняются без побочных эффектов на складе.
func (s *Service) CancelOrder(orderID, reason string) (domain.Order, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if !order.CanTransitionTo(domain.OrderStatusCancelled) {
		s.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"status":   order.Status,
		}).Warn("cancel rejected for non-pending order")
		return domain.Order{}, domain.ErrInvalidStateTransition
	}

	if order.Payment == domain.PaymentStatusPaid {
		order.Payment = domain.PaymentStatusRefunded
	}

	// Сначала фиксируем cancelled через optimistic locking и только потом
	// возвращаем остатки. Проигравший конкурентную отмену выходит на
	// version conflict, не тронув склад, поэтому возврат по заказу
	// выполняется ровно один раз; при ошибке сохранения остатки тоже
	// не трогаются и повторная отмена безопасна.
	if err := s.saveStatus(&order, domain.OrderStatusCancelled); err != nil {
		return domain.Order{}, err
	}

	for idx := range order.Items {
		item := &order.Items[idx]
		if err := s.catalog.IncreaseStock(item.BookID, item.Quantity); err != nil {
			s.logger.WithError(err).WithField("book_id", item.BookID).Error("stock restore during cancel failed")
		} else {
			s.publishStockEvent(kafka.EventTypeStockRestored, item.BookID, item.Quantity)
		}
	}

	payload := map[string]interface{}{
		"reason": reason,
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
	}
	if reason == "" {
		delete(payload, "reason")
	}
	s.emitEvent(&order, "OrderCanceled", payload)
	s.publishOrderEvent(kafka.EventTypeOrderCanceled, &order, map[string]interface{}{
		"reason": reason,
	})

	if s.metrics != nil {
		s.metrics.RecordOrderCanceled()
	}
	s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"reason":   reason,
	}).Info("order canceled")

	return order, nil
}

func (s *Service) failCheckout(err error) error {
	if s.metrics != nil {
		s.metrics.RecordCheckoutFailed()
	}
	return err
}

// saveStatus меняет статус заказа и эмитит событие OrderStatusChanged.
// Повторяет сохранение с exponential backoff при version conflict.
func (s *Service) saveStatus(order *domain.Order, next domain.OrderStatus) error {
	const maxRetries = 3
	const baseDelay = 10 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		previousStatus := order.Status
		order.Status = next
		order.UpdatedAt = time.Now().UTC()

		err := s.persist(order)
		if err == nil {
			s.emitEvent(order, "OrderStatusChanged", map[string]interface{}{
				"status":     string(order.Status),
				"updated_at": order.UpdatedAt.Format(time.RFC3339Nano),
				"ts":         order.UpdatedAt.Format(time.RFC3339Nano),
			})
			return nil
		}

		if domain.IsVersionConflict(err) && attempt < maxRetries-1 {
			s.logger.WithFields(log.Fields{
				"order_id": order.ID,
				"attempt":  attempt + 1,
				"version":  order.Version,
			}).Warn("version conflict detected, retrying")

			fresh, loadErr := s.orders.Get(order.ID)
			if loadErr != nil {
				s.logger.WithError(loadErr).WithField("order_id", order.ID).Error("failed to reload order after conflict")
				return loadErr
			}
			// Свежая копия может уже оказаться в терминальном статусе.
			if !fresh.CanTransitionTo(next) {
				return domain.ErrInvalidStateTransition
			}
			// Намерение вызывающего по оплате (например refund при отмене)
			// переносится на свежую копию.
			payment := order.Payment
			*order = fresh
			order.Payment = payment

			time.Sleep(baseDelay * time.Duration(1<<uint(attempt)))
			continue
		}

		order.Status = previousStatus
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"attempt":  attempt + 1,
		}).Error("failed to persist status")
		return err
	}

	return domain.ErrOrderVersionConflict
}

// saveWithRetry сохраняет заказ, один раз перечитывая его при version conflict.
func (s *Service) saveWithRetry(order *domain.Order) error {
	if err := s.persist(order); err != nil {
		if !domain.IsVersionConflict(err) {
			return err
		}
		fresh, loadErr := s.orders.Get(order.ID)
		if loadErr != nil {
			return loadErr
		}
		payment := order.Payment
		*order = fresh
		order.Payment = payment
		order.UpdatedAt = time.Now().UTC()
		return s.persist(order)
	}
	return nil
}

func (s *Service) persist(order *domain.Order) error {
	prevVersion := order.Version
	if err := s.orders.Save(*order); err != nil {
		return err
	}
	order.Version = prevVersion + 1
	return nil
}

func (s *Service) emitEvent(order *domain.Order, eventType string, payload map[string]interface{}) {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	payload["order_id"] = order.ID
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     eventType,
		Payload:       data,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("enqueue event failed")
	} else if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}

	if s.timeline != nil {
		var reason string
		if r, ok := payload["reason"].(string); ok {
			reason = r
		}
		occurred := order.UpdatedAt
		if ts, ok := payload["ts"].(string); ok {
			if parsed, parseErr := time.Parse(time.RFC3339Nano, ts); parseErr == nil {
				occurred = parsed
			}
		}
		if occurred.IsZero() {
			occurred = time.Now().UTC()
		}
		event := domain.TimelineEvent{
			OrderID:  order.ID,
			Type:     eventType,
			Reason:   reason,
			Occurred: occurred,
		}
		if err := s.timeline.Append(event); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id": order.ID,
				"event":    eventType,
			}).Warn("append timeline event failed")
		} else if s.metrics != nil {
			s.metrics.RecordTimelineEvent()
		}
	}
}

// publishOrderEvent публикует событие заказа в Kafka (если producer настроен)
func (s *Service) publishOrderEvent(eventType kafka.EventType, order *domain.Order, metadata map[string]interface{}) {
	if s.kafkaProducer == nil {
		return
	}

	event := kafka.NewOrderEvent(eventType, order.ID, order.OrderNumber, order.UserID, string(order.Status), metadata)
	if err := s.kafkaProducer.PublishOrderEvent(event); err != nil {
		// Логируем ошибку, но не прерываем операцию: Kafka опциональный
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"order_id":   order.ID,
		}).Warn("failed to publish order event to kafka")
	}
}

func (s *Service) publishStockEvent(eventType kafka.EventType, bookID string, quantity int32) {
	if s.kafkaProducer == nil {
		return
	}
	if err := s.kafkaProducer.PublishStockEvent(kafka.NewStockEvent(eventType, bookID, quantity)); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"book_id":    bookID,
		}).Warn("failed to publish stock event to kafka")
	}
}

// newOrderNumber генерирует человекочитаемый номер заказа.
func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
