// Package session keeps the operator's bearer token and profile between
// runs. SetSession and ClearSession are the only mutations; everything else
// reads.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/hiredesk/internal/client/models"
)

var ErrEmptyToken = errors.New("empty session token")

// Store is the session contract used by the API client and the controllers.
type Store interface {
	// GetToken returns the bearer token. An expired JWT is cleared and
	// reported as absent.
	GetToken(ctx context.Context) (string, bool)
	User(ctx context.Context) (models.User, bool)
	SetSession(ctx context.Context, token string, user models.User) error
	ClearSession(ctx context.Context) error
}

// expired reports whether token is a JWT whose exp claim is before now.
// Anything that does not parse as a JWT is opaque and never expires here;
// the signature is not checked, the server remains the authority.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

func encodeUser(u models.User) ([]byte, error) {
	if len(u.Raw) > 0 {
		return u.Raw, nil
	}
	return json.Marshal(struct {
		Email string `json:"email,omitempty"`
		Name  string `json:"name,omitempty"`
	}{u.Email, u.Name})
}
