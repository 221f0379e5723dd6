package repositories

import (
	"context"
	"errors"

	"github.com/dkhromov/user-directory/internal/logger"
	"github.com/dkhromov/user-directory/internal/models"
	"github.com/dkhromov/user-directory/internal/storage"
)

// ErrCorruptRecord is returned when a stored record does not match the
// expected user shape (required attributes missing or empty).
var ErrCorruptRecord = errors.New("stored user record is malformed")

// Attribute names of the user record in the store.
const (
	attrID        = "id"
	attrName      = "name"
	attrEmail     = "email"
	attrPassword  = "password"
	attrSalt      = "salt"
	attrCreatedAt = "createdAt"
)

// UserReadRepository reads user records from the key-value store.
type UserReadRepository struct {
	store      storage.Store
	table      string
	emailIndex string
}

// NewUserReadRepository creates a read repository over the given store.
// table is the record table name, emailIndex the secondary index on email.
func NewUserReadRepository(store storage.Store, table, emailIndex string) *UserReadRepository {
	return &UserReadRepository{store: store, table: table, emailIndex: emailIndex}
}

// GetByEmail looks the user up through the email secondary index. Zero
// matches surface as storage.ErrNotFound; if the invariant of one user per
// email is ever violated, the first match wins.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	recs, err := r.store.QueryByIndex(ctx, r.table, r.emailIndex, attrEmail, email)

	logger.Log.Infow("users query by email",
		"table", r.table,
		"index", r.emailIndex,
		"email", email,
		"hits", len(recs),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return userFromRecord(recs[0])
}

// GetByID reads the user record at its primary key.
func (r *UserReadRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	rec, err := r.store.GetByKey(ctx, r.table, id)

	logger.Log.Infow("users get by id",
		"table", r.table,
		"id", id,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return userFromRecord(rec)
}

// UserWriteRepository writes user records to the key-value store.
type UserWriteRepository struct {
	store storage.Store
	table string
}

// NewUserWriteRepository creates a write repository over the given store.
func NewUserWriteRepository(store storage.Store, table string) *UserWriteRepository {
	return &UserWriteRepository{store: store, table: table}
}

// Save writes the full record keyed by the user's id.
func (r *UserWriteRepository) Save(ctx context.Context, user *models.User) error {
	err := r.store.PutRecord(ctx, r.table, user.ID, recordFromUser(user))

	logger.Log.Infow("users put",
		"table", r.table,
		"id", user.ID,
		"email", user.Email,
		"error", err,
	)

	return err
}

// Update overwrites every mutable field at the user's id. Last writer wins.
func (r *UserWriteRepository) Update(ctx context.Context, user *models.User) error {
	attrs := recordFromUser(user)
	delete(attrs, attrID)
	err := r.store.UpdateRecord(ctx, r.table, user.ID, attrs)

	logger.Log.Infow("users update",
		"table", r.table,
		"id", user.ID,
		"error", err,
	)

	return err
}

// Delete removes the record at id. Deleting a missing id is not an error.
func (r *UserWriteRepository) Delete(ctx context.Context, id string) error {
	err := r.store.DeleteRecord(ctx, r.table, id)

	logger.Log.Infow("users delete",
		"table", r.table,
		"id", id,
		"error", err,
	)

	return err
}

func recordFromUser(u *models.User) map[string]string {
	return map[string]string{
		attrID:        u.ID,
		attrName:      u.Name,
		attrEmail:     u.Email,
		attrPassword:  u.Password,
		attrSalt:      u.Salt,
		attrCreatedAt: u.CreatedAt,
	}
}

func userFromRecord(rec map[string]string) (*models.User, error) {
	u := &models.User{
		ID:        rec[attrID],
		Name:      rec[attrName],
		Email:     rec[attrEmail],
		Password:  rec[attrPassword],
		Salt:      rec[attrSalt],
		CreatedAt: rec[attrCreatedAt],
	}
	if u.ID == "" || u.Email == "" || u.Password == "" || u.Salt == "" || u.CreatedAt == "" {
		return nil, ErrCorruptRecord
	}
	return u, nil
}
