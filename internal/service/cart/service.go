package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

// Service реализует операции корзины поверх CartRepository и каталога.
// Все мутации одной сессии сериализуются через мьютекс сессии, поэтому
// конкурентные изменения не теряют позиции и не искажают итоги.
type Service struct {
	carts   domain.CartRepository
	catalog domain.CatalogService
	logger  *log.Entry

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	now   func() time.Time
}

// NewService конструирует сервис корзины.
func NewService(carts domain.CartRepository, catalog domain.CatalogService, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "cart")
	}
	return &Service{
		carts:   carts,
		catalog: catalog,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
		now:     time.Now,
	}
}

// sessionLock возвращает мьютекс сессии, создавая его при первом обращении.
func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

// GetOrCreateCart возвращает корзину сессии, создавая пустую при отсутствии.
func (s *Service) GetOrCreateCart(sessionID string) (domain.Cart, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.getOrCreateLocked(sessionID)
}

func (s *Service) getOrCreateLocked(sessionID string) (domain.Cart, error) {
	cart, err := s.carts.GetBySession(sessionID)
	if err == nil {
		return cart, nil
	}
	if err != domain.ErrCartNotFound {
		return domain.Cart{}, err
	}

	cart = domain.NewCart(uuid.NewString(), sessionID, s.now())
	if err := s.carts.Save(cart); err != nil {
		return domain.Cart{}, err
	}

	s.logger.WithFields(log.Fields{
		"cart_id":    cart.ID,
		"session_id": sessionID,
	}).Info("cart created")

	return cart, nil
}

// GetCart возвращает корзину сессии или ErrCartNotFound.
func (s *Service) GetCart(sessionID string) (domain.Cart, error) {
	return s.carts.GetBySession(sessionID)
}

// AddToCart добавляет книгу в корзину сессии. Повторное добавление той же
// книги сливается в одну позицию; остаток проверяется на суммарное
// количество с учётом уже лежащего в корзине.
func (s *Service) AddToCart(sessionID, bookID string, quantity int32) (domain.Cart, error) {
	if quantity <= 0 {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.getOrCreateLocked(sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	book, err := s.catalog.GetBook(bookID)
	if err != nil {
		return domain.Cart{}, err
	}
	if !book.IsInStock() {
		return domain.Cart{}, domain.ErrOutOfStock
	}

	requested := cart.ItemQuantity(bookID) + quantity
	if !s.catalog.IsAvailable(bookID, requested) {
		s.logger.WithFields(log.Fields{
			"session_id": sessionID,
			"book_id":    bookID,
			"requested":  requested,
		}).Warn("insufficient stock for cart add")
		return domain.Cart{}, domain.ErrInsufficientStock
	}

	cart.AddItem(&book, quantity, s.now())
	if err := s.carts.Save(cart); err != nil {
		return domain.Cart{}, err
	}

	s.logger.WithFields(log.Fields{
		"session_id": sessionID,
		"book_id":    bookID,
		"quantity":   quantity,
		"total":      cart.TotalItems,
	}).Info("book added to cart")

	return cart, nil
}

// UpdateCartItem выставляет количество позиции; ноль и меньше удаляет её.
func (s *Service) UpdateCartItem(sessionID, bookID string, quantity int32) (domain.Cart, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.carts.GetBySession(sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	// Увеличение количества проверяется по остатку, как и добавление.
	// Уменьшение и удаление каталог не трогают.
	current := cart.ItemQuantity(bookID)
	if current > 0 && quantity > current && !s.catalog.IsAvailable(bookID, quantity) {
		s.logger.WithFields(log.Fields{
			"session_id": sessionID,
			"book_id":    bookID,
			"requested":  quantity,
		}).Warn("insufficient stock for cart update")
		return domain.Cart{}, domain.ErrInsufficientStock
	}

	cart.UpdateItemQuantity(bookID, quantity, s.now())
	if err := s.carts.Save(cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// RemoveFromCart удаляет позицию; отсутствие позиции не ошибка.
func (s *Service) RemoveFromCart(sessionID, bookID string) (domain.Cart, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.carts.GetBySession(sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart.RemoveItem(bookID, s.now())
	if err := s.carts.Save(cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// ClearCart опустошает корзину сессии.
func (s *Service) ClearCart(sessionID string) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.carts.GetBySession(sessionID)
	if err != nil {
		if err == domain.ErrCartNotFound {
			return nil
		}
		return err
	}

	cart.Clear(s.now())
	return s.carts.Save(cart)
}

// CartTotal возвращает итоговую сумму корзины; для отсутствующей корзины ноль.
func (s *Service) CartTotal(sessionID string) (decimal.Decimal, error) {
	cart, err := s.carts.GetBySession(sessionID)
	if err != nil {
		if err == domain.ErrCartNotFound {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return cart.TotalPrice, nil
}

// CartItemCount возвращает суммарное количество единиц в корзине сессии.
func (s *Service) CartItemCount(sessionID string) int32 {
	cart, err := s.carts.GetBySession(sessionID)
	if err != nil {
		return 0
	}
	return cart.TotalItems
}
