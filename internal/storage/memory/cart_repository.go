package memory

import (
	"sync"
	"time"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

// cartRepositoryInMemory — простая in-memory реализация CartRepository.
type cartRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Cart
}

// NewCartRepository возвращает in-memory репозиторий корзин.
func NewCartRepository() domain.CartRepository {
	return &cartRepositoryInMemory{
		items: make(map[string]domain.Cart),
	}
}

// GetBySession возвращает корзину сессии или ErrCartNotFound.
func (r *cartRepositoryInMemory) GetBySession(sessionID string) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.items[sessionID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	// Копируем срез позиций, чтобы мутации снаружи не трогали хранилище.
	items := make([]domain.CartItem, len(cart.Items))
	copy(items, cart.Items)
	cart.Items = items
	return cart, nil
}

// Save перезаписывает корзину вместе с позициями.
func (r *cartRepositoryInMemory) Save(cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]domain.CartItem, len(cart.Items))
	copy(items, cart.Items)
	cart.Items = items
	r.items[cart.SessionID] = cart
	return nil
}

// DeleteBySession удаляет корзину; отсутствие корзины не является ошибкой.
func (r *cartRepositoryInMemory) DeleteBySession(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, sessionID)
	return nil
}

// DeleteExpired удаляет до limit корзин без активности с момента before.
func (r *cartRepositoryInMemory) DeleteExpired(before time.Time, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for sessionID, cart := range r.items {
		if limit > 0 && deleted >= limit {
			break
		}
		if cart.UpdatedAt.Before(before) {
			delete(r.items, sessionID)
			deleted++
		}
	}
	return deleted, nil
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
