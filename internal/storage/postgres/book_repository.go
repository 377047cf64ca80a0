package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type bookRepository struct {
	db *sql.DB
}

// NewBookRepository создаёт PostgreSQL-реализацию BookRepository.
func NewBookRepository(store *Store) domain.BookRepository {
	return &bookRepository{db: store.DB()}
}

const bookColumns = `id, isbn, title, author, publisher, description,
	price, discount_price, stock_quantity, sold_quantity, available, created_at, updated_at`

func (r *bookRepository) Create(book domain.Book) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO books (
			id, isbn, title, author, publisher, description,
			price, discount_price, stock_quantity, sold_quantity, available, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		book.ID, book.ISBN, book.Title, book.Author, book.Publisher, book.Description,
		book.Price, book.DiscountPrice, book.StockQuantity, book.SoldQuantity,
		book.Available, book.CreatedAt, book.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateISBN
		}
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r *bookRepository) Get(id string) (domain.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+bookColumns+`
		FROM books
		WHERE id = $1
	`, id)
	return scanBook(row)
}

func (r *bookRepository) GetByISBN(isbn string) (domain.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+bookColumns+`
		FROM books
		WHERE isbn = $1
	`, isbn)
	return scanBook(row)
}

// Update перезаписывает атрибуты книги. Остатки и счётчик продаж
// меняются только через DecreaseStock/IncreaseStock.
func (r *bookRepository) Update(book domain.Book) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET isbn = $1,
		    title = $2,
		    author = $3,
		    publisher = $4,
		    description = $5,
		    price = $6,
		    discount_price = $7,
		    available = $8,
		    updated_at = $9
		WHERE id = $10
	`,
		book.ISBN, book.Title, book.Author, book.Publisher, book.Description,
		book.Price, book.DiscountPrice, book.Available, book.UpdatedAt, book.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateISBN
		}
		return fmt.Errorf("update book: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

// DecreaseStock атомарно списывает остаток одним условным UPDATE;
// CHECK stock_quantity >= 0 в схеме страхует от гонок на уровне БД.
func (r *bookRepository) DecreaseStock(id string, qty int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET stock_quantity = stock_quantity - $1,
		    sold_quantity = sold_quantity + $1,
		    updated_at = NOW()
		WHERE id = $2
		  AND stock_quantity >= $1
	`, qty, id)
	if err != nil {
		return fmt.Errorf("decrease stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := r.bookExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrBookNotFound
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *bookRepository) IncreaseStock(id string, qty int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET stock_quantity = stock_quantity + $1,
		    sold_quantity = GREATEST(sold_quantity - $1, 0),
		    updated_at = NOW()
		WHERE id = $2
	`, qty, id)
	if err != nil {
		return fmt.Errorf("increase stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *bookRepository) ListAvailable(limit int) ([]domain.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE available = TRUE AND stock_quantity > 0
		ORDER BY title ASC, id ASC
	`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $1", limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list available books: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

func (r *bookRepository) Search(query string, limit int) ([]domain.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	stmt := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE title ILIKE $1 OR author ILIKE $1 OR isbn ILIKE $1
		ORDER BY title ASC, id ASC
	`
	pattern := "%" + query + "%"

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, stmt+" LIMIT $2", pattern, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, stmt, pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

func (r *bookRepository) bookExists(ctx context.Context, id string) (bool, error) {
	var found string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM books WHERE id = $1`, id).Scan(&found)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check book exists: %w", err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (domain.Book, error) {
	var book domain.Book
	err := row.Scan(
		&book.ID, &book.ISBN, &book.Title, &book.Author, &book.Publisher, &book.Description,
		&book.Price, &book.DiscountPrice, &book.StockQuantity, &book.SoldQuantity,
		&book.Available, &book.CreatedAt, &book.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Book{}, domain.ErrBookNotFound
		}
		return domain.Book{}, fmt.Errorf("scan book: %w", err)
	}
	return book, nil
}

func collectBooks(rows *sql.Rows) ([]domain.Book, error) {
	books := make([]domain.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book rows: %w", err)
	}
	return books, nil
}

var _ domain.BookRepository = (*bookRepository)(nil)
