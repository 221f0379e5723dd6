package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkhromov/user-directory/internal/logger"
	"github.com/dkhromov/user-directory/internal/models"
	"github.com/dkhromov/user-directory/internal/repositories"
	"github.com/dkhromov/user-directory/internal/storage"
)

// Error variables
var (
	ErrDuplicateEmail   = errors.New("user already exists with this email")
	ErrPasswordMismatch = errors.New("password and password confirmation do not match")
	ErrUserNotFound     = errors.New("user not found")
	ErrStorage          = errors.New("storage failure")
)

// UserReader defines read-only operations for user records.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// UserWriter defines write operations for user records.
type UserWriter interface {
	Save(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// UserService owns the user record lifecycle: create, read, update, delete
// and password verification. It holds no state beyond its collaborators and
// is safe for concurrent use.
type UserService struct {
	reader      UserReader
	writer      UserWriter
	kafkaWriter KafkaWriter
	cost        int
}

// NewUserService creates a new UserService. cost is the bcrypt cost factor;
// values below bcrypt.MinCost fall back to bcrypt.DefaultCost (10).
// kafkaWriter may be nil, in which case lifecycle events are not published.
func NewUserService(reader UserReader, writer UserWriter, kafkaWriter KafkaWriter, cost int) *UserService {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &UserService{
		reader:      reader,
		writer:      writer,
		kafkaWriter: kafkaWriter,
		cost:        cost,
	}
}

// CreateUser registers a new user. The email must be free, password and
// confirmation must match. On success the returned record carries the
// assigned id, salt, hash and creation timestamp; stripping secrets before
// external exposure is the caller's job (models.User.Public).
//
// The uniqueness check is read-then-write and not transactional: two
// concurrent creates for the same email can both pass it. The window is
// accepted, not closed.
func (svc *UserService) CreateUser(ctx context.Context, input models.UserInput) (*models.User, error) {
	_, err := svc.reader.GetByEmail(ctx, input.Email)
	switch {
	case err == nil:
		logger.Log.Errorw("email already taken", "email", input.Email)
		return nil, ErrDuplicateEmail
	case errors.Is(err, storage.ErrNotFound):
		// Expected path: the email is free.
	case errors.Is(err, repositories.ErrCorruptRecord):
		return nil, err
	default:
		logger.Log.Errorw("failed to check email uniqueness", "email", input.Email, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if input.Password != input.PasswordConfirmation {
		return nil, ErrPasswordMismatch
	}

	salt, err := newSalt()
	if err != nil {
		logger.Log.Errorw("failed to generate salt", "err", err)
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password+salt), svc.cost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Email:     input.Email,
		Password:  string(hash),
		Salt:      salt,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if err := svc.writer.Save(ctx, user); err != nil {
		logger.Log.Errorw("failed to save user", "id", user.ID, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	svc.publishEvent(ctx, models.UserCreated, user.ID, user.Email)
	return user, nil
}

// GetUserByEmail returns the user stored under the given email, via the
// secondary index.
func (svc *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		return nil, svc.readError(email, err)
	}
	return user, nil
}

// GetUserByID returns the user stored under the given primary key.
func (svc *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		return nil, svc.readError(id, err)
	}
	return user, nil
}

// UpdateUser overwrites every mutable field of the record at user.ID. The
// caller is trusted to supply the complete record; there is no partial merge
// and no optimistic-concurrency token. Email uniqueness is not re-checked
// against other records.
func (svc *UserService) UpdateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := svc.writer.Update(ctx, user); err != nil {
		logger.Log.Errorw("failed to update user", "id", user.ID, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	svc.publishEvent(ctx, models.UserUpdated, user.ID, user.Email)
	return user, nil
}

// DeleteUser removes the record at id. Deleting a missing id succeeds.
func (svc *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := svc.writer.Delete(ctx, id); err != nil {
		logger.Log.Errorw("failed to delete user", "id", id, "err", err)
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	svc.publishEvent(ctx, models.UserDeleted, id, "")
	return nil
}

// CheckPassword verifies a plaintext password against the stored credential.
// An unknown email yields (false, nil), never an error. The lookup goes
// through the email secondary index and the candidate is hashed with the
// stored per-user salt before comparison.
func (svc *UserService) CheckPassword(ctx context.Context, email, password string) (bool, error) {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		if errors.Is(err, repositories.ErrCorruptRecord) {
			return false, err
		}
		logger.Log.Errorw("failed to load user for password check", "email", email, "err", err)
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password+user.Salt)); err != nil {
		return false, nil
	}
	return true, nil
}

func (svc *UserService) readError(subject string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUserNotFound
	}
	if errors.Is(err, repositories.ErrCorruptRecord) {
		return err
	}
	logger.Log.Errorw("failed to read user", "subject", subject, "err", err)
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

// publishEvent publishes a lifecycle event to Kafka. Publishing failures are
// logged and never surfaced to the caller.
func (svc *UserService) publishEvent(ctx context.Context, action, userID, email string) {
	if svc.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "action", action, "user_id", userID)
		return
	}

	event := models.UserEvent{
		EventID:   uuid.NewString(),
		Action:    action,
		UserID:    userID,
		Email:     email,
		Timestamp: time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal user event", "action", action, "user_id", userID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(userID),
		Value: data,
	}

	if err := svc.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish user event", "action", action, "user_id", userID, "error", err)
	} else {
		logger.Log.Infow("user event published", "action", action, "user_id", userID)
	}
}

// newSalt returns a fresh random per-user salt as a hex string.
func newSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
