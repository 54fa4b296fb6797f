// Package user provides CMS account management.
package user

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/openlocalize/blankpage/internal/platform/errors"
	"github.com/openlocalize/blankpage/internal/platform/id"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmptyName indicates a missing account name.
	ErrEmptyName = apperrors.New(apperrors.CodeUserNameEmpty, "account name is required")
	// ErrInvalidName indicates an account name that does not match the required format.
	ErrInvalidName = apperrors.New(apperrors.CodeUserNameInvalid, "account name must be 3-32 lowercase alphanumeric, dot, dash, or underscore characters")
	// ErrEmptyPassword indicates a missing password.
	ErrEmptyPassword = apperrors.New(apperrors.CodeUserPasswordEmpty, "password is required")
	// ErrBadCredentials indicates a failed password check.
	ErrBadCredentials = apperrors.New(apperrors.CodeUserBadCredentials, "invalid credentials")

	namePattern = regexp.MustCompile(`^[a-z0-9_.\-]{3,32}$`)
)

// User represents an authenticated account record.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserInput describes the metadata needed to create an account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

// ValidateName enforces canonical account name constraints.
func ValidateName(s string) error {
	if !namePattern.MatchString(s) {
		return ErrInvalidName
	}
	return nil
}

// CreateUser creates a durable account from validated input.
//
// The setup command and any future registration surface both route through
// here so password hashing happens in exactly one place.
func CreateUser(input CreateUserInput, now func() time.Time, idGenerator func() (string, error)) (User, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Name = strings.ToLower(strings.TrimSpace(input.Name))
	if input.Name == "" {
		return User{}, ErrEmptyName
	}
	if err := ValidateName(input.Name); err != nil {
		return User{}, err
	}
	if input.Password == "" {
		return User{}, ErrEmptyPassword
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	userID, err := idGenerator()
	if err != nil {
		return User{}, fmt.Errorf("generate user id: %w", err)
	}

	createdAt := now().UTC()
	return User{
		ID:           userID,
		Name:         input.Name,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		IsAdmin:      input.IsAdmin,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}, nil
}

// HashPassword derives a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a candidate password against the stored hash.
func (u User) CheckPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return ErrBadCredentials
	}
	return nil
}
