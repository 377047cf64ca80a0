package postgres

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

func TestTimelineRepository_PostgresAppendAndList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewTimelineRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)

	events := []domain.TimelineEvent{
		{OrderID: "order-1", Type: "OrderCreated", Occurred: now.Add(-2 * time.Minute)},
		{OrderID: "order-1", Type: "OrderStatusChanged", Occurred: now.Add(-time.Minute)},
		{OrderID: "order-1", Type: "OrderCanceled", Reason: "customer request", Occurred: now},
		{OrderID: "order-other", Type: "OrderCreated", Occurred: now},
	}
	for _, event := range events {
		if err := repo.Append(event); err != nil {
			t.Fatalf("append %s: %v", event.Type, err)
		}
	}

	// Нулевое время события заменяется текущим при записи.
	if err := repo.Append(domain.TimelineEvent{OrderID: "order-zero", Type: "OrderCreated"}); err != nil {
		t.Fatalf("append event with zero time: %v", err)
	}

	listed, err := repo.List("order-1")
	if err != nil {
		t.Fatalf("list timeline: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 events, got %d", len(listed))
	}
	if listed[0].Type != "OrderCreated" || listed[2].Type != "OrderCanceled" {
		t.Fatalf("unexpected event order: %+v", listed)
	}
	if listed[2].Reason != "customer request" {
		t.Fatalf("unexpected reason: %s", listed[2].Reason)
	}

	zeroed, err := repo.List("order-zero")
	if err != nil {
		t.Fatalf("list zero-time order: %v", err)
	}
	if len(zeroed) != 1 || zeroed[0].Occurred.IsZero() {
		t.Fatalf("expected backfilled occurred_at: %+v", zeroed)
	}

	empty, err := repo.List("order-unknown")
	if err != nil {
		t.Fatalf("list unknown order: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty timeline, got %d", len(empty))
	}
}
