package domain

import "errors"

var (
	// ErrBookNotFound возвращается, если книга не найдена в каталоге.
	ErrBookNotFound = errors.New("book not found")
	// ErrCartNotFound возвращается, если корзина для сессии отсутствует.
	ErrCartNotFound = errors.New("cart not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrUserNotFound возвращается, если пользователь не разрешается по идентификатору.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidQuantity — бизнес-ошибка при количестве <= 0.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	// ErrOutOfStock — книга недоступна для продажи (снята с продажи или нулевой остаток).
	ErrOutOfStock = errors.New("book is out of stock")
	// ErrInsufficientStock — запрошенное количество превышает остаток на складе.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidStateTransition — недопустимый переход статуса заказа.
	ErrInvalidStateTransition = errors.New("invalid order state transition")
	// ErrDuplicateISBN — попытка создать книгу с уже существующим ISBN.
	ErrDuplicateISBN = errors.New("book with this isbn already exists")
	// ErrDuplicateEmail — попытка зарегистрировать пользователя с занятым email.
	ErrDuplicateEmail = errors.New("user with this email already exists")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении заказа.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrOutboxMessageNotFound возвращается при попытке сменить статус несуществующего outbox-сообщения.
	ErrOutboxMessageNotFound = errors.New("outbox message not found")

	// Ошибка отсутствующего идентификатора пользователя в заказе.
	ErrUserIDRequired = errors.New("user_id is required")
	// Ошибка отсутствующего email при регистрации пользователя.
	ErrEmailRequired = errors.New("email is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("total_amount must be non-negative")
	// Ошибка при некорректном количестве в позиции (<= 0).
	ErrItemQuantityInvalid = errors.New("order item quantity must be greater than zero")
	// Ошибка отрицательной цены позиции.
	ErrItemPriceInvalid = errors.New("order item unit price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order total does not match items sum")
	// Ошибка отсутствующего названия книги.
	ErrBookTitleRequired = errors.New("book title is required")
	// Ошибка отсутствующего ISBN.
	ErrBookISBNRequired = errors.New("book isbn is required")
	// Ошибка отрицательной цены книги.
	ErrBookPriceInvalid = errors.New("book price must be non-negative")
	// Ошибка отрицательного остатка книги.
	ErrBookStockNegative = errors.New("book stock quantity must be non-negative")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}

// IsNotFound проверяет ошибки отсутствия сущности любого вида.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrCartNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
