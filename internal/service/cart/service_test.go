package cart_test

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
	"github.com/vladislavdragonenkov/bookstore/internal/service/cart"
	"github.com/vladislavdragonenkov/bookstore/internal/service/catalog"
	"github.com/vladislavdragonenkov/bookstore/internal/storage/memory"
)

func newCartFixture(t *testing.T, stock int32) (*cart.Service, *catalog.Service, domain.Book) {
	t.Helper()

	books := memory.NewBookRepository()
	catalogService := catalog.NewService(books, nil)

	created, err := catalogService.CreateBook(domain.Book{
		ISBN:          "978-5-4461-0512-0",
		Title:         "The Go Programming Language",
		Author:        "Donovan, Kernighan",
		Price:         decimal.RequireFromString("39.99"),
		StockQuantity: stock,
		Available:     true,
	})
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	cartService := cart.NewService(memory.NewCartRepository(), catalogService, nil)
	return cartService, catalogService, created
}

func TestService_AddToCart_CreatesCartAndSnapshotsPrice(t *testing.T) {
	t.Parallel()

	service, _, book := newCartFixture(t, 5)

	got, err := service.AddToCart("session-1", book.ID, 2)
	if err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	if len(got.Items) != 1 {
		t.Fatalf("unexpected items count: got=%d want=1", len(got.Items))
	}
	if !got.Items[0].UnitPrice.Equal(book.Price) {
		t.Fatalf("unexpected unit price: got=%s want=%s", got.Items[0].UnitPrice, book.Price)
	}
	if !got.TotalPrice.Equal(decimal.RequireFromString("79.98")) {
		t.Fatalf("unexpected total price: got=%s", got.TotalPrice)
	}
	if got.TotalItems != 2 {
		t.Fatalf("unexpected total items: got=%d want=2", got.TotalItems)
	}
}

func TestService_AddToCart_MergeRespectsStock(t *testing.T) {
	t.Parallel()

	service, _, book := newCartFixture(t, 5)

	if _, err := service.AddToCart("session-1", book.ID, 3); err != nil {
		t.Fatalf("first AddToCart failed: %v", err)
	}

	// В корзине уже 3, остаток 5: добавление еще 3 превышает остаток.
	if _, err := service.AddToCart("session-1", book.ID, 3); err != domain.ErrInsufficientStock {
		t.Fatalf("unexpected error: got=%v want=%v", err, domain.ErrInsufficientStock)
	}

	if _, err := service.AddToCart("session-1", book.ID, 2); err != nil {
		t.Fatalf("AddToCart within stock failed: %v", err)
	}

	got, err := service.GetCart("session-1")
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if got.ItemQuantity(book.ID) != 5 {
		t.Fatalf("unexpected merged quantity: got=%d want=5", got.ItemQuantity(book.ID))
	}
	if len(got.Items) != 1 {
		t.Fatalf("merge must not duplicate the line: got=%d items", len(got.Items))
	}
}

func TestService_AddToCart_Validation(t *testing.T) {
	t.Parallel()

	service, catalogService, book := newCartFixture(t, 5)

	if _, err := service.AddToCart("session-1", book.ID, 0); err != domain.ErrInvalidQuantity {
		t.Fatalf("unexpected error for zero quantity: got=%v", err)
	}
	if _, err := service.AddToCart("session-1", "missing", 1); err != domain.ErrBookNotFound {
		t.Fatalf("unexpected error for missing book: got=%v", err)
	}

	if err := catalogService.DecreaseStock(book.ID, 5); err != nil {
		t.Fatalf("DecreaseStock failed: %v", err)
	}
	if _, err := service.AddToCart("session-1", book.ID, 1); err != domain.ErrOutOfStock {
		t.Fatalf("unexpected error for empty stock: got=%v", err)
	}
}

func TestService_UpdateCartItem_ZeroRemovesLine(t *testing.T) {
	t.Parallel()

	service, _, book := newCartFixture(t, 5)

	if _, err := service.AddToCart("session-1", book.ID, 2); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	got, err := service.UpdateCartItem("session-1", book.ID, 0)
	if err != nil {
		t.Fatalf("UpdateCartItem failed: %v", err)
	}

	if !got.IsEmpty() {
		t.Fatalf("expected empty cart, got %d items", len(got.Items))
	}
	if !got.TotalPrice.Equal(decimal.Zero) {
		t.Fatalf("unexpected total price: got=%s", got.TotalPrice)
	}
}

func TestService_UpdateCartItem_IncreaseRespectsStock(t *testing.T) {
	t.Parallel()

	service, _, book := newCartFixture(t, 3)

	if _, err := service.AddToCart("session-1", book.ID, 2); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	// Увеличение сверх остатка отклоняется, корзина не меняется.
	if _, err := service.UpdateCartItem("session-1", book.ID, 5); err != domain.ErrInsufficientStock {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	got, err := service.GetCart("session-1")
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if got.ItemQuantity(book.ID) != 2 {
		t.Fatalf("unexpected quantity after rejected update: got=%d want=2", got.ItemQuantity(book.ID))
	}

	// Увеличение в пределах остатка и любое уменьшение проходят.
	if _, err := service.UpdateCartItem("session-1", book.ID, 3); err != nil {
		t.Fatalf("UpdateCartItem within stock failed: %v", err)
	}
	if _, err := service.UpdateCartItem("session-1", book.ID, 1); err != nil {
		t.Fatalf("UpdateCartItem decrease failed: %v", err)
	}
}

func TestService_RemoveFromCart_MissingLineIsNoop(t *testing.T) {
	t.Parallel()

	service, _, book := newCartFixture(t, 5)

	if _, err := service.AddToCart("session-1", book.ID, 1); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	got, err := service.RemoveFromCart("session-1", "missing")
	if err != nil {
		t.Fatalf("RemoveFromCart failed: %v", err)
	}
	if got.ItemQuantity(book.ID) != 1 {
		t.Fatalf("existing line must survive: got=%d want=1", got.ItemQuantity(book.ID))
	}
}

func TestService_ClearCart(t *testing.T) {
	t.Parallel()

	service, _, book := newCartFixture(t, 5)

	if _, err := service.AddToCart("session-1", book.ID, 2); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if err := service.ClearCart("session-1"); err != nil {
		t.Fatalf("ClearCart failed: %v", err)
	}

	got, err := service.GetCart("session-1")
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if !got.IsEmpty() {
		t.Fatalf("expected empty cart, got %d items", len(got.Items))
	}

	// Очистка несуществующей корзины не ошибка.
	if err := service.ClearCart("session-2"); err != nil {
		t.Fatalf("ClearCart for missing session failed: %v", err)
	}
}

func TestService_CartTotalAndCount_MissingSession(t *testing.T) {
	t.Parallel()

	service, _, _ := newCartFixture(t, 5)

	total, err := service.CartTotal("missing")
	if err != nil {
		t.Fatalf("CartTotal failed: %v", err)
	}
	if !total.Equal(decimal.Zero) {
		t.Fatalf("unexpected total: got=%s want=0", total)
	}
	if count := service.CartItemCount("missing"); count != 0 {
		t.Fatalf("unexpected count: got=%d want=0", count)
	}
}

func TestService_ConcurrentAdds_SingleSession(t *testing.T) {
	t.Parallel()

	service, _, book := newCartFixture(t, 100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := service.AddToCart("session-1", book.ID, 2); err != nil {
				t.Errorf("AddToCart failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := service.GetCart("session-1")
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if got.ItemQuantity(book.ID) != 100 {
		t.Fatalf("lost cart updates: got=%d want=100", got.ItemQuantity(book.ID))
	}
	if got.TotalItems != 100 {
		t.Fatalf("unexpected total items: got=%d want=100", got.TotalItems)
	}
}
