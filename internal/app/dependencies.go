package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookstore/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/bookstore/internal/metrics"
	"github.com/vladislavdragonenkov/bookstore/internal/service/cart"
	"github.com/vladislavdragonenkov/bookstore/internal/service/catalog"
	"github.com/vladislavdragonenkov/bookstore/internal/service/identity"
	"github.com/vladislavdragonenkov/bookstore/internal/service/order"
)

// Dependencies содержит собранные сервисы приложения.
type Dependencies struct {
	Repos    *runtimeRepositories
	Catalog  *catalog.Service
	Cart     *cart.Service
	Identity *identity.Resolver
	Orders   *order.Service
	Logger   *log.Entry
}

// NewDependencies строит сервисный слой поверх репозиториев.
// kafkaProducer может быть nil, тогда заказной сервис работает без прямой публикации.
func NewDependencies(repos *runtimeRepositories, kafkaProducer *kafka.Producer, logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	catalogSvc := catalog.NewService(repos.books, logger.WithField("service", "catalog"))
	cartSvc := cart.NewService(repos.carts, catalogSvc, logger.WithField("service", "cart"))
	resolver := identity.NewResolver(repos.users, logger.WithField("service", "identity"))

	orderOptions := []order.Option{
		order.WithMetrics(metrics.NewOrderMetrics()),
	}
	if kafkaProducer != nil {
		orderOptions = append(orderOptions, order.WithKafkaProducer(kafkaProducer))
	}
	orderSvc := order.NewService(
		repos.orders,
		resolver,
		catalogSvc,
		repos.outbox,
		repos.timeline,
		logger.WithField("service", "order"),
		orderOptions...,
	)

	return &Dependencies{
		Repos:    repos,
		Catalog:  catalogSvc,
		Cart:     cartSvc,
		Identity: resolver,
		Orders:   orderSvc,
		Logger:   logger,
	}
}
