// Package services holds the client's controllers: the public application
// form, the operator dashboard and sign-in. They sit between the CLI and the
// API client and own all user-visible state.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hiredesk/internal/client/client"
	"github.com/dmitrijs2005/hiredesk/internal/client/models"
	"github.com/dmitrijs2005/hiredesk/internal/client/session"
	"github.com/dmitrijs2005/hiredesk/internal/logging"
)

// AuthService signs the operator in and out.
//
// Login stores the returned token and profile in the session store; Logout
// clears them. CurrentUser reads the stored profile.
type AuthService interface {
	Login(ctx context.Context, email, password string) (models.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (models.User, bool)
}

type authService struct {
	client client.Client
	store  session.Store
	logger logging.Logger
}

func NewAuthService(c client.Client, store session.Store, logger logging.Logger) AuthService {
	return &authService{client: c, store: store, logger: logger}
}

func (a *authService) Login(ctx context.Context, email, password string) (models.User, error) {
	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		return models.User{}, fmt.Errorf("login error: %w", err)
	}
	if err := a.store.SetSession(ctx, res.Token, res.User); err != nil {
		return models.User{}, fmt.Errorf("session saving error: %w", err)
	}
	a.logger.Info(ctx, "signed in", "user", res.User.DisplayName())
	return res.User, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.store.ClearSession(ctx)
}

func (a *authService) CurrentUser(ctx context.Context) (models.User, bool) {
	return a.store.User(ctx)
}
