package catalog

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

var _ domain.CatalogService = (*Service)(nil)

// Service реализует операции каталога: чтение книг и атомарные мутации остатков.
type Service struct {
	books  domain.BookRepository
	logger *log.Entry
}

// NewService конструирует сервис каталога.
func NewService(books domain.BookRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{
		books:  books,
		logger: logger,
	}
}

// GetBook возвращает книгу по идентификатору.
func (s *Service) GetBook(id string) (domain.Book, error) {
	return s.books.Get(id)
}

// GetBookByISBN возвращает книгу по ISBN.
func (s *Service) GetBookByISBN(isbn string) (domain.Book, error) {
	return s.books.GetByISBN(isbn)
}

// CreateBook регистрирует новую книгу; дубликат ISBN отклоняется с ErrDuplicateISBN.
func (s *Service) CreateBook(book domain.Book) (domain.Book, error) {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now

	if errs := book.ValidateInvariants(); len(errs) > 0 {
		return domain.Book{}, errs[0]
	}

	if err := s.books.Create(book); err != nil {
		s.logger.WithError(err).WithField("isbn", book.ISBN).Warn("failed to create book")
		return domain.Book{}, err
	}

	s.logger.WithFields(log.Fields{
		"book_id": book.ID,
		"isbn":    book.ISBN,
	}).Info("book created")
	return book, nil
}

// UpdateBook перезаписывает атрибуты книги; остатки меняются только stock-операциями.
func (s *Service) UpdateBook(book domain.Book) error {
	if errs := book.ValidateInvariants(); len(errs) > 0 {
		return errs[0]
	}
	return s.books.Update(book)
}

// IsAvailable сообщает, можно ли продать qty экземпляров:
// книга существует, доступна к продаже и остаток не меньше запрошенного.
func (s *Service) IsAvailable(id string, qty int32) bool {
	if qty <= 0 {
		return false
	}
	book, err := s.books.Get(id)
	if err != nil {
		return false
	}
	return book.Available && book.StockQuantity >= qty
}

// DecreaseStock атомарно списывает остаток книги.
func (s *Service) DecreaseStock(id string, qty int32) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	if err := s.books.DecreaseStock(id, qty); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"book_id": id,
			"qty":     qty,
		}).Warn("stock decrease rejected")
		return err
	}
	return nil
}

// IncreaseStock атомарно возвращает остаток книги (восстановление при отмене).
func (s *Service) IncreaseStock(id string, qty int32) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	return s.books.IncreaseStock(id, qty)
}

// ListAvailable возвращает книги, доступные к продаже.
func (s *Service) ListAvailable(limit int) ([]domain.Book, error) {
	return s.books.ListAvailable(limit)
}

// Search ищет книги по подстроке названия или автора.
func (s *Service) Search(query string, limit int) ([]domain.Book, error) {
	return s.books.Search(query, limit)
}
