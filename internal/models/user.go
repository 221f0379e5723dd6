package models

// User represents the full user record as it lives in the key-value store.
// Password always holds the salted bcrypt hash at rest, never the plaintext.
type User struct {
	ID        string `json:"id"`        // Primary key, UUID v4, assigned once at creation
	Name      string `json:"name"`      // Display name
	Email     string `json:"email"`     // Unique across all users, secondary lookup key
	Password  string `json:"password"`  // bcrypt(plaintext+salt)
	Salt      string `json:"salt"`      // Per-user random salt
	CreatedAt string `json:"createdAt"` // RFC3339 timestamp, assigned once at creation
}

// UserInput is the transient create-time payload. PasswordConfirmation is
// compared against Password and never persisted.
type UserInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
}

// UserPublic is the projection of a User that is safe to return to external
// callers: all credential material is stripped.
type UserPublic struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

// Public returns the external view of the user with password and salt removed.
func (u *User) Public() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
