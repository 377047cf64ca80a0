package identity_test

import (
	"testing"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
	"github.com/vladislavdragonenkov/bookstore/internal/service/identity"
	"github.com/vladislavdragonenkov/bookstore/internal/storage/memory"
)

func TestResolver_RegisterAndResolve(t *testing.T) {
	t.Parallel()

	resolver := identity.NewResolver(memory.NewUserRepository(), nil)

	created, err := resolver.Register(domain.User{
		Email:    "reader@example.com",
		FullName: "Test Reader",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated user id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	got, err := resolver.Resolve(created.ID)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Email != "reader@example.com" {
		t.Fatalf("unexpected email: got=%s", got.Email)
	}
}

func TestResolver_Resolve_Errors(t *testing.T) {
	t.Parallel()

	resolver := identity.NewResolver(memory.NewUserRepository(), nil)

	if _, err := resolver.Resolve(""); err != domain.ErrUserIDRequired {
		t.Fatalf("unexpected error for empty id: got=%v", err)
	}
	if _, err := resolver.Resolve("missing"); err != domain.ErrUserNotFound {
		t.Fatalf("unexpected error for missing user: got=%v", err)
	}
}

func TestResolver_Register_RequiresEmail(t *testing.T) {
	t.Parallel()

	resolver := identity.NewResolver(memory.NewUserRepository(), nil)

	if _, err := resolver.Register(domain.User{FullName: "No Email"}); err != domain.ErrEmailRequired {
		t.Fatalf("unexpected error: got=%v", err)
	}
}
