package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pressroom-io/pressroom/internal/db/models"
)

// Subject is an authenticated identity. Role names are queried live
// during authentication, never taken from the token payload.
type Subject struct {
	ID    uint64
	Email string
	Roles []string
}

// Authenticate turns an Authorization header value into a Subject.
//
// It fails with ErrUnauthenticated when the header is absent or not a
// bearer credential, the token does not verify, the referenced user no
// longer exists, or the token's bound email no longer matches the live
// user record (a stale token after an email change). On success the
// subject carries the current role names, so a role change is visible on
// the very next request.
func (s *Service) Authenticate(authHeader string) (*Subject, error) {
	tokenString := ExtractBearerToken(authHeader)
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	var user models.User

	err = s.db.First(&user, claims.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthenticated
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if user.Email != claims.Email {
		return nil, ErrUnauthenticated
	}

	roles, err := s.RoleNames(user.ID)
	if err != nil {
		return nil, err
	}

	return &Subject{
		ID:    user.ID,
		Email: user.Email,
		Roles: roles,
	}, nil
}

// Login verifies an email/password pair and returns the matching user.
//
// The password comparison runs even when no user matches the email, by
// comparing against a fixed dummy hash, so response timing does not
// reveal whether the account exists. Unknown email and wrong password
// both return ErrInvalidCredentials.
func (s *Service) Login(email, password string) (*models.User, error) {
	var user models.User

	err := s.db.Where("email = ?", models.NormalizeEmail(email)).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		models.CompareDummyPassword(password)
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}
