package memory_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
	"github.com/vladislavdragonenkov/bookstore/internal/storage/memory"
)

func newBook(id, isbn string, stock int32) domain.Book {
	now := time.Now().UTC()
	return domain.Book{
		ID:            id,
		ISBN:          isbn,
		Title:         "Book " + id,
		Author:        "Author",
		Price:         decimal.RequireFromString("10.00"),
		StockQuantity: stock,
		Available:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestBookRepository_CreateGet(t *testing.T) {
	repo := memory.NewBookRepository()
	book := newBook("book-1", "isbn-1", 5)

	if err := repo.Create(book); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get(book.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ISBN != book.ISBN {
		t.Fatalf("expected isbn %s, got %s", book.ISBN, stored.ISBN)
	}

	byISBN, err := repo.GetByISBN(book.ISBN)
	if err != nil {
		t.Fatalf("get by isbn failed: %v", err)
	}
	if byISBN.ID != book.ID {
		t.Fatalf("expected id %s, got %s", book.ID, byISBN.ID)
	}
}

func TestBookRepository_DuplicateISBN(t *testing.T) {
	repo := memory.NewBookRepository()
	if err := repo.Create(newBook("book-1", "isbn-1", 5)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := repo.Create(newBook("book-2", "isbn-1", 5))
	if !errors.Is(err, domain.ErrDuplicateISBN) {
		t.Fatalf("expected ErrDuplicateISBN, got %v", err)
	}
}

func TestBookRepository_DecreaseStock(t *testing.T) {
	repo := memory.NewBookRepository()
	if err := repo.Create(newBook("book-1", "isbn-1", 5)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.DecreaseStock("book-1", 3); err != nil {
		t.Fatalf("decrease failed: %v", err)
	}

	book, err := repo.Get("book-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if book.StockQuantity != 2 {
		t.Fatalf("expected stock 2, got %d", book.StockQuantity)
	}
	if book.SoldQuantity != 3 {
		t.Fatalf("expected sold 3, got %d", book.SoldQuantity)
	}
}

func TestBookRepository_DecreaseStockInsufficient(t *testing.T) {
	repo := memory.NewBookRepository()
	if err := repo.Create(newBook("book-1", "isbn-1", 2)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := repo.DecreaseStock("book-1", 3)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	book, _ := repo.Get("book-1")
	if book.StockQuantity != 2 {
		t.Fatalf("failed decrement must not change stock, got %d", book.StockQuantity)
	}
}

func TestBookRepository_IncreaseStock(t *testing.T) {
	repo := memory.NewBookRepository()
	if err := repo.Create(newBook("book-1", "isbn-1", 2)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.IncreaseStock("book-1", 4); err != nil {
		t.Fatalf("increase failed: %v", err)
	}

	book, _ := repo.Get("book-1")
	if book.StockQuantity != 6 {
		t.Fatalf("expected stock 6, got %d", book.StockQuantity)
	}
}

// Конкурентные списания не должны опускать остаток ниже нуля.
func TestBookRepository_ConcurrentDecrease(t *testing.T) {
	repo := memory.NewBookRepository()
	if err := repo.Create(newBook("book-1", "isbn-1", 50)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.DecreaseStock("book-1", 1)
		}()
	}
	wg.Wait()

	book, err := repo.Get("book-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if book.StockQuantity != 0 {
		t.Fatalf("expected stock exactly 0 after 100 attempts on 50 units, got %d", book.StockQuantity)
	}
}

func TestBookRepository_UpdateKeepsStock(t *testing.T) {
	repo := memory.NewBookRepository()
	book := newBook("book-1", "isbn-1", 5)
	if err := repo.Create(book); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.DecreaseStock("book-1", 2); err != nil {
		t.Fatalf("decrease failed: %v", err)
	}

	book.Title = "Renamed"
	book.StockQuantity = 999
	if err := repo.Update(book); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	stored, _ := repo.Get("book-1")
	if stored.Title != "Renamed" {
		t.Fatalf("expected renamed title, got %s", stored.Title)
	}
	if stored.StockQuantity != 3 {
		t.Fatalf("update must not bypass stock operations, got %d", stored.StockQuantity)
	}
}
