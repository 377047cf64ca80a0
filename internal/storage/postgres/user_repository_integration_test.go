package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

func TestUserRepository_PostgresCreateAndGet(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewUserRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	user := domain.User{
		ID:        "user-1",
		Email:     "reader@example.com",
		FullName:  "Test Reader",
		CreatedAt: now,
	}

	if err := repo.Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	dup := domain.User{ID: "user-2", Email: user.Email, CreatedAt: now}
	if err := repo.Create(dup); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	got, err := repo.Get(user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Email != user.Email || got.FullName != user.FullName {
		t.Fatalf("unexpected user payload: %+v", got)
	}

	if _, err := repo.Get("missing-user"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
