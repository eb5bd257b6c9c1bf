package services

import (
	"context"
	"errors"
	"time"

	"usermgmt/internal/models"
	"usermgmt/internal/repositories"
	"usermgmt/pkg/apperror"

	"github.com/sirupsen/logrus"
)

// UserEventsQueue is the queue user lifecycle events are published to.
const UserEventsQueue = "user_events"

const (
	invalidCredentialsMessage = "Invalid username or password"
	tokenFailureMessage       = "An error occurred while generating the token."
	passwordTooLongMessage    = "Password must not exceed 72 bytes"
)

// EventPublisher publishes JSON messages to a queue.
type EventPublisher interface {
	PublishJSON(queue string, v interface{}) error
}

// TokenIssuer issues bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *models.User) TokenResult
}

// UserService handles the user management use cases.
type UserService struct {
	repo      repositories.UserRepository
	hasher    PasswordHasher
	tokens    TokenIssuer
	events    EventPublisher
	log       *logrus.Logger
	dummyHash string
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(repo repositories.UserRepository, hasher PasswordHasher, tokens TokenIssuer, events EventPublisher, log *logrus.Logger) *UserService {
	s := &UserService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		events: events,
		log:    log,
	}
	// Unknown usernames are verified against this hash so both login
	// failures cost one hash comparison.
	if dummy, err := hasher.Hash("not-a-real-password"); err == nil {
		s.dummyHash = dummy
	}
	return s
}

// ListUsers returns every stored user.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, s.internal(err, "list_users", logrus.Fields{})
	}
	return users, nil
}

// GetUser returns the user with the given id.
func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFound("User with ID %d not found", id)
		}
		return nil, s.internal(err, "get_user", logrus.Fields{"user_id": id})
	}
	return user, nil
}

// CreateUser hashes the password carried in user.PasswordHash and stores the
// user. On success user holds the assigned ID and the hash.
func (s *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	existing, err := s.repo.GetByUsername(ctx, user.Username)
	switch {
	case err == nil && existing != nil:
		return nil, apperror.Conflict("Username '%s' is already taken", user.Username)
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return nil, s.internal(err, "create_user", logrus.Fields{"username": user.Username})
	}

	if err := s.hashPassword(user); err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return nil, apperror.BadRequest(passwordTooLongMessage)
		}
		return nil, s.internal(err, "create_user", logrus.Fields{"username": user.Username})
	}

	// Timestamps belong to the store, not the caller.
	user.CreatedAt, user.UpdatedAt = time.Time{}, time.Time{}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, s.internal(err, "create_user", logrus.Fields{"username": user.Username})
	}

	s.publish(models.UserCreated, user)
	return user, nil
}

// UpdateUser replaces the user identified by id. The store is not touched
// when id and user.ID disagree. Renaming onto another user's username is a
// Conflict.
func (s *UserService) UpdateUser(ctx context.Context, id int, user *models.User) error {
	if id != user.ID {
		return apperror.BadRequest("User ID in path does not match user ID in body")
	}

	existing, err := s.repo.GetByUsername(ctx, user.Username)
	switch {
	case err == nil && existing != nil && existing.ID != id:
		return apperror.Conflict("Username '%s' is already taken", user.Username)
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return s.internal(err, "update_user", logrus.Fields{"user_id": id})
	}

	if err := s.hashPassword(user); err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return apperror.BadRequest(passwordTooLongMessage)
		}
		return s.internal(err, "update_user", logrus.Fields{"user_id": id})
	}

	user.CreatedAt, user.UpdatedAt = time.Time{}, time.Time{}
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFound("User with ID %d not found", id)
		}
		return s.internal(err, "update_user", logrus.Fields{"user_id": id})
	}

	s.publish(models.UserUpdated, user)
	return nil
}

// DeleteUser removes the user with the given id after confirming it exists.
func (s *UserService) DeleteUser(ctx context.Context, id int) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return s.internal(err, "delete_user", logrus.Fields{"user_id": id})
	}
	if !exists {
		return apperror.NotFound("User with ID %d not found", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		// Deleted concurrently between the check and the delete.
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFound("User with ID %d not found", id)
		}
		return s.internal(err, "delete_user", logrus.Fields{"user_id": id})
	}

	s.publish(models.UserDeleted, &models.User{ID: id})
	return nil
}

// Login verifies the credentials and issues a bearer token. Unknown users and
// wrong passwords produce the same Unauthorized error and are not logged.
func (s *UserService) Login(ctx context.Context, login models.UserLoginModel) (string, time.Time, error) {
	user, err := s.repo.GetByUsername(ctx, login.Username)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return "", time.Time{}, s.internal(err, "login", logrus.Fields{})
		}
		s.hasher.Verify(login.Password, s.dummyHash)
		return "", time.Time{}, apperror.Unauthorized(invalidCredentialsMessage)
	}

	if !s.hasher.Verify(login.Password, user.PasswordHash) {
		return "", time.Time{}, apperror.Unauthorized(invalidCredentialsMessage)
	}

	result := s.tokens.Issue(user)
	if !result.Success {
		s.log.WithFields(logrus.Fields{
			"operation": "login",
			"user_id":   user.ID,
		}).Errorf("Token generation failed: %s", result.Error)
		return "", time.Time{}, apperror.New(apperror.KindInternal, tokenFailureMessage, errors.New(result.Error))
	}
	return result.Token, result.Expires, nil
}

func (s *UserService) hashPassword(user *models.User) error {
	hashed, err := s.hasher.Hash(user.PasswordHash)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	return nil
}

func (s *UserService) internal(err error, operation string, fields logrus.Fields) error {
	fields["operation"] = operation
	s.log.WithError(err).WithFields(fields).Error("User store operation failed")
	return apperror.Internal(err)
}

func (s *UserService) publish(eventType string, user *models.User) {
	if s.events == nil {
		return
	}
	event := models.UserEvent{
		Type:       eventType,
		UserID:     user.ID,
		Username:   user.Username,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.PublishJSON(UserEventsQueue, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event":   eventType,
			"user_id": user.ID,
		}).Warn("Failed to publish user event")
	}
}
