package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User-specific validation errors.
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrEmptyFullname    = errors.New("fullname cannot be empty")
	ErrFullnameTooShort = errors.New("fullname must be at least 6 characters")
	ErrEmptyUsername    = errors.New("username cannot be empty")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters")
)

// User represents a registered user of the planner.
//
// RefreshToken is the single active refresh token slot: it is set on
// login, replaced on rotation, and cleared on logout. Holding one slot
// per user means a login on a new device invalidates the session on any
// other device.
type User struct {
	ID                uuid.UUID `json:"id"`
	Fullname          string    `json:"fullname"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	HashedPassword    string    `json:"-"` // Never expose the hash
	RefreshToken      *string   `json:"-"` // Never expose the session slot
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty"`
	TasksCount        int       `json:"tasks_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given identity fields and an already
// hashed password. It generates a new UUID, normalizes the email to
// lowercase, and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewUser(fullname, username, email, hashedPassword string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Fullname:       strings.TrimSpace(fullname),
		Username:       strings.TrimSpace(username),
		Email:          NormalizeEmail(email),
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Failures come back as field-tagged *ValidationError values wrapping the
// sentinel, so the API layer classifies them as client errors even when
// they escape past request-tag validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", ErrEmptyUserID.Error(), ErrEmptyUserID)
	}

	if u.Fullname == "" {
		return NewValidationError("fullname", ErrEmptyFullname.Error(), ErrEmptyFullname)
	}
	if len(u.Fullname) < 6 {
		return NewValidationError("fullname", ErrFullnameTooShort.Error(), ErrFullnameTooShort)
	}

	if u.Username == "" {
		return NewValidationError("username", ErrEmptyUsername.Error(), ErrEmptyUsername)
	}

	if u.Email == "" {
		return NewValidationError("email", ErrEmptyEmail.Error(), ErrEmptyEmail)
	}
	if !validateEmailFormat(u.Email) {
		return NewValidationError("email", ErrInvalidEmail.Error(), ErrInvalidEmail)
	}

	if u.HashedPassword == "" {
		return NewValidationError("password", ErrEmptyPassword.Error(), ErrEmptyPassword)
	}

	return nil
}

// NormalizeEmail lowercases and trims an email address. Email uniqueness is
// case-insensitive, so every email entering the system passes through here.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword checks a plaintext password against the length policy.
// The upper bound is bcrypt's 72-byte input limit.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return ErrEmptyPassword
	case len(password) < 6:
		return ErrPasswordTooShort
	case len(password) > 72:
		return ErrPasswordTooLong
	}
	return nil
}

// validateEmailFormat performs basic validation of email format: a single @
// with a non-empty local part and a dotted domain.
func validateEmailFormat(email string) bool {
	atIndex := strings.Index(email, "@")
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}
	if strings.Contains(email[atIndex+1:], "@") {
		return false
	}

	domain := email[atIndex+1:]
	dotIndex := strings.Index(domain, ".")
	return dotIndex > 0 && dotIndex < len(domain)-1
}
