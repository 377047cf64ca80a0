package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
	"github.com/vladislavdragonenkov/bookstore/internal/storage/memory"
	"github.com/vladislavdragonenkov/bookstore/internal/storage/postgres"
)

// runtimeRepositories объединяет все репозитории, выбранные по StorageDriver.
type runtimeRepositories struct {
	books    domain.BookRepository
	carts    domain.CartRepository
	orders   domain.OrderRepository
	users    domain.UserRepository
	outbox   domain.OutboxRepository
	timeline domain.TimelineRepository

	// store не nil только для postgres.
	store *postgres.Store
}

// initRuntimeRepositories создаёт репозитории согласно конфигурации.
func initRuntimeRepositories(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeRepositories, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		logger.Info("using in-memory storage")
		return &runtimeRepositories{
			books:    memory.NewBookRepository(),
			carts:    memory.NewCartRepository(),
			orders:   memory.NewOrderRepository(),
			users:    memory.NewUserRepository(),
			outbox:   memory.NewOutboxRepository(),
			timeline: memory.NewTimelineRepository(),
		}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage requires a DSN")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("ensure postgres schema: %w", err)
			}
		}
		logger.Info("using postgres storage")
		return &runtimeRepositories{
			books:    postgres.NewBookRepository(store),
			carts:    postgres.NewCartRepository(store),
			orders:   postgres.NewOrderRepository(store),
			users:    postgres.NewUserRepository(store),
			outbox:   postgres.NewOutboxRepository(store),
			timeline: postgres.NewTimelineRepository(store),
			store:    store,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}

// Close закрывает ресурсы хранилища (no-op для memory).
func (r *runtimeRepositories) Close() error {
	if r == nil || r.store == nil {
		return nil
	}
	return r.store.Close()
}
