package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"user-management-service/internal/entity"
	"user-management-service/internal/events"
	"user-management-service/internal/idempotency"
	"user-management-service/internal/repository"

	"github.com/rs/zerolog/log"
)

// UserStore is the persistence the service needs. *repository.UserRepository implements it.
type UserStore interface {
	ListUsers(ctx context.Context) ([]*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	UpdateUser(ctx context.Context, id int64, fields map[string]string) ([]string, error)
	DeleteUser(ctx context.Context, id int64) error
}

type UserService struct {
	repo       UserStore
	publisher  events.Publisher
	guard      idempotency.Guard
	bcryptCost int
	now        func() time.Time
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore, publisher events.Publisher, guard idempotency.Guard, bcryptCost int) *UserService {
	return &UserService{
		repo:       repo,
		publisher:  publisher,
		guard:      guard,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// ListUsers returns all users without their password hashes.
func (s *UserService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error listing users")
		return nil, &StoreError{Op: "list", Err: err}
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, s.storeError("get", id, err)
	}
	return user, nil
}

// CreateUser hashes the password and inserts the user. The password is not checked
// against the strength policy here, only on update.
// A non-empty idempotencyKey that was already used yields ErrDuplicateRequest.
func (s *UserService) CreateUser(ctx context.Context, req entity.CreateUserRequest, idempotencyKey string) (*entity.User, error) {
	if !req.HasRequiredFields() {
		return nil, ErrMissingFields
	}

	if idempotencyKey != "" {
		reserved, err := s.guard.Reserve(ctx, idempotencyKey)
		if err != nil {
			log.Error().Err(err).Msgf("Error reserving idempotency key %s", idempotencyKey)
			return nil, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if !reserved {
			log.Warn().Msgf("Duplicate create request for idempotency key %s", idempotencyKey)
			return nil, ErrDuplicateRequest
		}
	}

	hash, err := HashPassword(*req.Password, s.bcryptCost)
	if err != nil {
		s.releaseKey(ctx, idempotencyKey)
		log.Error().Err(err).Msg("Error hashing password")
		return nil, fmt.Errorf("%w: %v", ErrHashPassword, err)
	}

	user := &entity.User{
		FirstName:    *req.FirstName,
		LastName:     *req.LastName,
		Email:        *req.Email,
		PhoneNumber:  *req.PhoneNumber,
		PasswordHash: hash,
		Role:         *req.Role,
	}

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		s.releaseKey(ctx, idempotencyKey)
		log.Error().Err(err).Msg("Error creating user")
		return nil, &StoreError{Op: "create", Err: err}
	}

	s.publish(ctx, events.TypeCreated, createdUser.ID, nil)
	return createdUser, nil
}

// UpdateUser applies the supplied fields to the user. A supplied password must pass
// ValidatePasswordStrength and is stored only as its hash.
func (s *UserService) UpdateUser(ctx context.Context, id int64, req entity.UpdateUserRequest) error {
	fields := req.Fields()
	if len(fields) == 0 {
		return ErrNoUpdateFields
	}

	if password, ok := fields["password"]; ok {
		if err := ValidatePasswordStrength(password); err != nil {
			return err
		}

		hash, err := HashPassword(password, s.bcryptCost)
		if err != nil {
			log.Error().Err(err).Msgf("Error hashing password for user %d", id)
			return fmt.Errorf("%w: %v", ErrHashPassword, err)
		}
		delete(fields, "password")
		fields["password_hash"] = hash
	}

	columns, err := s.repo.UpdateUser(ctx, id, fields)
	if err != nil {
		return s.storeError("update", id, err)
	}

	s.publish(ctx, events.TypeUpdated, id, columns)
	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return s.storeError("delete", id, err)
	}

	s.publish(ctx, events.TypeDeleted, id, nil)
	return nil
}

// storeError maps repository.ErrNotFound to ErrNotFound and wraps everything else in StoreError.
func (s *UserService) storeError(op string, id int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	log.Error().Err(err).Msgf("Error on %s of user %d", op, id)
	return &StoreError{Op: op, Err: err}
}

func (s *UserService) releaseKey(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.guard.Release(ctx, key); err != nil {
		log.Error().Err(err).Msgf("Error releasing idempotency key %s", key)
	}
}

// publishTimeout bounds how long a committed request waits on the broker.
const publishTimeout = 2 * time.Second

// publish is best effort: the change is already committed. It outlives a
// cancelled request but never runs past publishTimeout.
func (s *UserService) publish(ctx context.Context, eventType string, id int64, fields []string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := entity.UserEvent{
		Type:       eventType,
		UserID:     id,
		Fields:     fields,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Error().Err(err).Msgf("Error publishing %s event for user %d", eventType, id)
	}
}
