package client

import (
	"context"

	"github.com/dmitrijs2005/hiredesk/internal/client/models"
)

// AcceptRequest is the body of the accept call; the server uses it to
// notify the applicant.
type AcceptRequest struct {
	ApplicantName string `json:"applicantName"`
	ProjectName   string `json:"projectName"`
	Email         string `json:"email"`
}

// LoginResult is a successful sign-in.
type LoginResult struct {
	Token string
	User  models.User
}

type Client interface {
	List(ctx context.Context) ([]models.Application, error)
	// Submit is the public, unauthenticated create. Status is always pending.
	Submit(ctx context.Context, app models.Application) (models.Application, error)
	Create(ctx context.Context, app models.Application) (models.Application, error)
	Update(ctx context.Context, id string, app models.Application) (models.Application, error)
	Delete(ctx context.Context, id string) error
	Accept(ctx context.Context, id string, req AcceptRequest) error
	Login(ctx context.Context, email, password string) (LoginResult, error)
}
