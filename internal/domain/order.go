package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, остатки списаны, исполнение не началось.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — заказ подтверждён магазином.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusProcessing — заказ собирается на складе.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен; терминальный статус.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён с возвратом остатков; терминальный статус.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus описывает состояние оплаты заказа.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsTerminal сообщает, запрещены ли дальнейшие переходы из статуса.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusDelivered
}

// IsValid проверяет, что статус принадлежит известному множеству.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem — неизменяемый снимок позиции корзины на момент оформления заказа.
type OrderItem struct {
	ID     string
	BookID string
	// Quantity и UnitPrice копируются из позиции корзины дословно,
	// без перечитывания книги из каталога.
	Quantity  int32
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	CreatedAt time.Time
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID string
	// OrderNumber — уникальный человекочитаемый номер заказа.
	OrderNumber string
	UserID      string
	Status      OrderStatus
	Payment     PaymentStatus
	// TotalAmount вычисляется один раз при создании и далее не пересчитывается.
	TotalAmount     decimal.Decimal
	Items           []OrderItem
	ShippingAddress string
	PaymentMethod   string
	CustomerNote    string
	// Version используется для optimistic locking при сохранении.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" {
		errs = append(errs, ErrUserIDRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.TotalAmount.IsNegative() {
		errs = append(errs, ErrAmountNegative)
	}

	// Сверяем сумму заказа с суммой позиций: quantity * unit_price.
	calc := decimal.Zero
	for idx := range o.Items {
		item := &o.Items[idx]
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQuantityInvalid)
		}
		if item.UnitPrice.IsNegative() {
			errs = append(errs, ErrItemPriceInvalid)
		}
		calc = calc.Add(item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	if !calc.Equal(o.TotalAmount) {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// CanTransitionTo проверяет допустимость перехода в новый статус.
// Отмена разрешена только из pending; терминальные статусы неизменяемы;
// порядок промежуточных статусов исполнения здесь не форсируется.
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	if !next.IsValid() || o.Status.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return o.Status == OrderStatusPending
	}
	return true
}
