package client

import (
	"context"

	"github.com/dmitrijs2005/bcards/internal/client/models"
)

// Client is the bcard2 API surface used by the application. Calls taking a
// token send it in the x-auth-token header.
type Client interface {
	ListCards(ctx context.Context) ([]models.Card, error)
	GetCard(ctx context.Context, id string) (models.Card, error)
	MyCards(ctx context.Context, token string) ([]models.Card, error)
	CreateCard(ctx context.Context, token string, in models.CardInput) (models.Card, error)
	// ToggleLike flips the caller's like on a card. The response body is not
	// inspected.
	ToggleLike(ctx context.Context, token string, id string) error
	DeleteCard(ctx context.Context, token string, id string) error
	Register(ctx context.Context, reg models.Registration) error
	// Login returns the raw response body, which holds the token either as a
	// bare (optionally quoted) string or as {"token": "..."}.
	Login(ctx context.Context, creds models.Credentials) ([]byte, error)
}
