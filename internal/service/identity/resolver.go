package identity

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
)

var _ domain.UserResolver = (*Resolver)(nil)

// Resolver разрешает пользователей по идентификатору поверх UserRepository.
type Resolver struct {
	users  domain.UserRepository
	logger *log.Entry
}

// NewResolver конструирует резолвер пользователей.
func NewResolver(users domain.UserRepository, logger *log.Entry) *Resolver {
	if logger == nil {
		logger = log.New().WithField("component", "identity")
	}
	return &Resolver{
		users:  users,
		logger: logger,
	}
}

// Resolve возвращает пользователя или ErrUserNotFound.
func (r *Resolver) Resolve(userID string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, domain.ErrUserIDRequired
	}
	return r.users.Get(userID)
}

// Register регистрирует нового пользователя.
func (r *Resolver) Register(user domain.User) (domain.User, error) {
	if user.Email == "" {
		return domain.User{}, domain.ErrEmailRequired
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if err := r.users.Create(user); err != nil {
		return domain.User{}, err
	}
	r.logger.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}
