package domain

import "time"

// User — минимальное представление покупателя, достаточное для оформления заказа.
// Аутентификация и профиль находятся вне ядра.
type User struct {
	ID        string
	Email     string
	FullName  string
	CreatedAt time.Time
}
