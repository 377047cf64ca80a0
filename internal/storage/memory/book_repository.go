package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

// bookRepositoryInMemory — in-memory реализация каталога для локальной разработки и тестов.
// Мутации остатков сериализуются общим мьютексом, что держит инвариант stock >= 0
// при конкурентных оформлениях заказов.
type bookRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Book
	isbn  map[string]string
}

// NewBookRepository возвращает in-memory репозиторий каталога.
func NewBookRepository() domain.BookRepository {
	return &bookRepositoryInMemory{
		items: make(map[string]domain.Book),
		isbn:  make(map[string]string),
	}
}

// Create сохраняет новую книгу, отклоняя дубликаты ISBN.
func (r *bookRepositoryInMemory) Create(book domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.isbn[book.ISBN]; exists {
		return domain.ErrDuplicateISBN
	}
	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[book.ID] = book
	r.isbn[book.ISBN] = book.ID
	return nil
}

// Get возвращает книгу или ErrBookNotFound, если её нет.
func (r *bookRepositoryInMemory) Get(id string) (domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.items[id]
	if !ok {
		return domain.Book{}, domain.ErrBookNotFound
	}
	return book, nil
}

// GetByISBN возвращает книгу по ISBN или ErrBookNotFound.
func (r *bookRepositoryInMemory) GetByISBN(isbn string) (domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.isbn[isbn]
	if !ok {
		return domain.Book{}, domain.ErrBookNotFound
	}
	return r.items[id], nil
}

// Update перезаписывает атрибуты книги, сохраняя текущие остатки.
func (r *bookRepositoryInMemory) Update(book domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[book.ID]
	if !ok {
		return domain.ErrBookNotFound
	}
	if book.ISBN != current.ISBN {
		if owner, exists := r.isbn[book.ISBN]; exists && owner != book.ID {
			return domain.ErrDuplicateISBN
		}
		delete(r.isbn, current.ISBN)
		r.isbn[book.ISBN] = book.ID
	}
	// Остатки меняются только через DecreaseStock/IncreaseStock.
	book.StockQuantity = current.StockQuantity
	book.SoldQuantity = current.SoldQuantity
	book.UpdatedAt = time.Now().UTC()
	r.items[book.ID] = book
	return nil
}

// DecreaseStock атомарно списывает остаток; проверка и вычитание под одним замком.
func (r *bookRepositoryInMemory) DecreaseStock(id string, qty int32) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.items[id]
	if !ok {
		return domain.ErrBookNotFound
	}
	if book.StockQuantity < qty {
		return domain.ErrInsufficientStock
	}
	book.StockQuantity -= qty
	book.SoldQuantity += qty
	book.UpdatedAt = time.Now().UTC()
	r.items[id] = book
	return nil
}

// IncreaseStock атомарно возвращает остаток (используется при отмене заказа).
func (r *bookRepositoryInMemory) IncreaseStock(id string, qty int32) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.items[id]
	if !ok {
		return domain.ErrBookNotFound
	}
	book.StockQuantity += qty
	if book.SoldQuantity >= qty {
		book.SoldQuantity -= qty
	} else {
		book.SoldQuantity = 0
	}
	book.UpdatedAt = time.Now().UTC()
	r.items[id] = book
	return nil
}

// ListAvailable возвращает доступные книги, новые первыми.
func (r *bookRepositoryInMemory) ListAvailable(limit int) ([]domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Book, 0, len(r.items))
	for _, book := range r.items {
		if !book.Available || book.StockQuantity <= 0 {
			continue
		}
		result = append(result, book)
	}

	sortBooks(result)

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Search ищет по подстроке названия, автора или ISBN без учёта регистра.
func (r *bookRepositoryInMemory) Search(query string, limit int) ([]domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(query))
	result := make([]domain.Book, 0)
	for _, book := range r.items {
		if needle == "" ||
			strings.Contains(strings.ToLower(book.Title), needle) ||
			strings.Contains(strings.ToLower(book.Author), needle) ||
			strings.Contains(strings.ToLower(book.ISBN), needle) {
			result = append(result, book)
		}
	}

	sortBooks(result)

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func sortBooks(books []domain.Book) {
	sort.Slice(books, func(i, j int) bool {
		if !books[i].CreatedAt.Equal(books[j].CreatedAt) {
			return books[i].CreatedAt.After(books[j].CreatedAt)
		}
		return books[i].ID > books[j].ID
	})
}

var _ domain.BookRepository = (*bookRepositoryInMemory)(nil)
