package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book описывает позицию каталога книжного магазина.
type Book struct {
	ID          string
	ISBN        string
	Title       string
	Author      string
	Publisher   string
	Description string
	// Price — базовая цена книги.
	Price decimal.Decimal
	// DiscountPrice — опциональная акционная цена; действует только если она ниже базовой.
	DiscountPrice decimal.NullDecimal
	// StockQuantity — остаток на складе, никогда не опускается ниже нуля.
	StockQuantity int32
	// SoldQuantity — накопительный счётчик продаж для витрины бестселлеров.
	SoldQuantity int32
	// Available — флаг доступности: снятая с продажи книга не продаётся даже при остатке.
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CurrentPrice возвращает действующую цену: акционную, если она задана и ниже базовой.
func (b *Book) CurrentPrice() decimal.Decimal {
	if b.DiscountPrice.Valid && b.DiscountPrice.Decimal.LessThan(b.Price) {
		return b.DiscountPrice.Decimal
	}
	return b.Price
}

// IsOnSale сообщает, действует ли на книгу акционная цена.
func (b *Book) IsOnSale() bool {
	return b.DiscountPrice.Valid && b.DiscountPrice.Decimal.LessThan(b.Price)
}

// DiscountPercentage возвращает размер скидки в процентах, округлённый
// до двух знаков (half-up) — только для отображения, внутренние расчёты
// ведутся без промежуточных округлений.
func (b *Book) DiscountPercentage() decimal.Decimal {
	if !b.IsOnSale() || !b.Price.IsPositive() {
		return decimal.Zero
	}
	discount := b.Price.Sub(b.DiscountPrice.Decimal)
	return discount.Div(b.Price).Mul(decimal.NewFromInt(100)).Round(2)
}

// IsInStock сообщает, доступна ли книга к продаже прямо сейчас.
func (b *Book) IsInStock() bool {
	return b.Available && b.StockQuantity > 0
}

// ValidateInvariants проверяет базовые инварианты книги и возвращает список замечаний.
func (b *Book) ValidateInvariants() []error {
	var errs []error

	if b.Title == "" {
		errs = append(errs, ErrBookTitleRequired)
	}
	if b.ISBN == "" {
		errs = append(errs, ErrBookISBNRequired)
	}
	if b.Price.IsNegative() {
		errs = append(errs, ErrBookPriceInvalid)
	}
	if b.DiscountPrice.Valid && b.DiscountPrice.Decimal.IsNegative() {
		errs = append(errs, ErrBookPriceInvalid)
	}
	if b.StockQuantity < 0 {
		errs = append(errs, ErrBookStockNegative)
	}

	return errs
}
