package domain

import "time"

// BookRepository описывает требования к хранилищу каталога.
// Мутации остатков атомарны: конкурирующие списания по одной книге
// сериализуются реализацией, инвариант stock >= 0 держится на каждой границе.
type BookRepository interface {
	// Create сохраняет новую книгу. Возвращает ErrDuplicateISBN при совпадении ISBN.
	Create(book Book) error
	// Get возвращает книгу по идентификатору или ErrBookNotFound.
	Get(id string) (Book, error)
	// GetByISBN возвращает книгу по ISBN или ErrBookNotFound.
	GetByISBN(isbn string) (Book, error)
	// Update перезаписывает атрибуты книги (кроме остатков — для них отдельные операции).
	Update(book Book) error
	// DecreaseStock атомарно уменьшает остаток; ErrInsufficientStock, если qty больше остатка.
	DecreaseStock(id string, qty int32) error
	// IncreaseStock атомарно увеличивает остаток; верхняя граница не проверяется.
	IncreaseStock(id string, qty int32) error
	// ListAvailable возвращает доступные к продаже книги (limit <= 0 — без ограничения).
	ListAvailable(limit int) ([]Book, error)
	// Search ищет книги по подстроке названия или автора.
	Search(query string, limit int) ([]Book, error)
}

// CartRepository описывает требования к хранилищу корзин.
type CartRepository interface {
	// GetBySession возвращает корзину сессии или ErrCartNotFound.
	GetBySession(sessionID string) (Cart, error)
	// Save сохраняет корзину целиком вместе с позициями (upsert).
	Save(cart Cart) error
	// DeleteBySession удаляет корзину вместе с позициями.
	DeleteBySession(sessionID string) error
	// DeleteExpired удаляет до limit корзин, не менявшихся с момента before.
	DeleteExpired(before time.Time, limit int) (int, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ошибку, если запись с таким ID уже существует.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// ListByUser возвращает заказы пользователя, новые первыми, с опциональным лимитом.
	ListByUser(userID string, limit int) ([]Order, error)
	// ListByStatus возвращает заказы в указанном статусе, новые первыми.
	ListByStatus(status OrderStatus, limit int) ([]Order, error)
	// CountByStatus возвращает количество заказов в статусе.
	CountByStatus(status OrderStatus) (int64, error)
	// Save применяет обновления к заказу с учётом optimistic locking.
	Save(order Order) error
}

// UserRepository описывает минимальное хранилище пользователей для разрешения владельца заказа.
type UserRepository interface {
	// Create сохраняет нового пользователя.
	Create(user User) error
	// Get возвращает пользователя или ErrUserNotFound.
	Get(id string) (User, error)
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}
