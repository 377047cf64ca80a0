package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem — одна позиция корзины: ссылка на книгу, количество и цена-снимок.
type CartItem struct {
	// BookID — невладеющая ссылка на книгу каталога.
	BookID string
	// Quantity всегда строго больше нуля; позиция с нулём удаляется целиком.
	Quantity int32
	// UnitPrice фиксируется в момент добавления и не перечитывается из каталога,
	// чтобы смена цены в каталоге не меняла сумму корзины до оформления.
	UnitPrice decimal.Decimal
	AddedAt   time.Time
}

// Subtotal возвращает стоимость позиции: цена × количество.
func (i *CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}

// Cart агрегирует позиции покупательской сессии и производные суммы.
type Cart struct {
	ID        string
	SessionID string
	// Items хранит не более одной позиции на книгу; повторное добавление сливает количества.
	Items []CartItem
	// TotalPrice и TotalItems — производные от Items; пересчитываются
	// после каждой мутации и никогда не корректируются инкрементально.
	TotalPrice decimal.Decimal
	TotalItems int32
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCart создаёт пустую корзину для сессии.
func NewCart(id, sessionID string, now time.Time) Cart {
	return Cart{
		ID:         id,
		SessionID:  sessionID,
		Items:      []CartItem{},
		TotalPrice: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AddItem добавляет книгу в корзину или сливает количество с уже существующей позицией.
// Проверка остатков выполняется на уровне сервиса до вызова этого метода.
func (c *Cart) AddItem(book *Book, quantity int32, now time.Time) {
	if idx := c.findItem(book.ID); idx >= 0 {
		c.Items[idx].Quantity += quantity
	} else {
		c.Items = append(c.Items, CartItem{
			BookID:    book.ID,
			Quantity:  quantity,
			UnitPrice: book.CurrentPrice(),
			AddedAt:   now,
		})
	}
	c.recalculateTotals(now)
}

// UpdateItemQuantity заменяет количество позиции; quantity <= 0 эквивалентно удалению.
func (c *Cart) UpdateItemQuantity(bookID string, quantity int32, now time.Time) {
	if quantity <= 0 {
		c.RemoveItem(bookID, now)
		return
	}
	if idx := c.findItem(bookID); idx >= 0 {
		c.Items[idx].Quantity = quantity
	}
	c.recalculateTotals(now)
}

// RemoveItem удаляет позицию книги; отсутствие позиции не является ошибкой.
func (c *Cart) RemoveItem(bookID string, now time.Time) {
	for idx := range c.Items {
		if c.Items[idx].BookID == bookID {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			break
		}
	}
	c.recalculateTotals(now)
}

// Clear опустошает корзину и обнуляет суммы.
func (c *Cart) Clear(now time.Time) {
	c.Items = c.Items[:0]
	c.recalculateTotals(now)
}

// ItemQuantity возвращает количество книги в корзине (0, если позиции нет).
func (c *Cart) ItemQuantity(bookID string) int32 {
	if idx := c.findItem(bookID); idx >= 0 {
		return c.Items[idx].Quantity
	}
	return 0
}

// IsEmpty сообщает, пуста ли корзина.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// recalculateTotals пересчитывает производные суммы как чистую функцию списка позиций.
func (c *Cart) recalculateTotals(now time.Time) {
	total := decimal.Zero
	var count int32
	for idx := range c.Items {
		total = total.Add(c.Items[idx].Subtotal())
		count += c.Items[idx].Quantity
	}
	c.TotalPrice = total
	c.TotalItems = count
	c.UpdatedAt = now
}

func (c *Cart) findItem(bookID string) int {
	for idx := range c.Items {
		if c.Items[idx].BookID == bookID {
			return idx
		}
	}
	return -1
}
