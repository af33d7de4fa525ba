// Package services contains the application services of the bcards client.
// They sit between the UI controllers and the API client, and apply the
// session checks every mutating call needs before it reaches the network.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bcards/internal/client/client"
	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/client/session"
	"github.com/dmitrijs2005/bcards/internal/common"
	"github.com/dmitrijs2005/bcards/internal/logging"
)

// Session is the part of *session.Store the services depend on.
type Session interface {
	Snapshot() session.Snapshot
	Login(ctx context.Context, user models.User, token string) error
	Logout(ctx context.Context) error
}

// AuthService signs users in and out and registers new accounts.
//
// Contract:
//   - Login: exchange credentials for a token, decode it into a user and
//     store both in the session.
//   - Register: create an account; the session is left untouched.
//   - Logout: drop the user and the token.
type AuthService interface {
	Login(ctx context.Context, creds models.Credentials) (models.User, error)
	Register(ctx context.Context, reg models.Registration) error
	Logout(ctx context.Context) error
}

type authService struct {
	client  client.Client
	session Session
	logger  logging.Logger
}

func NewAuthService(c client.Client, s Session, logger logging.Logger) AuthService {
	return &authService{client: c, session: s, logger: logger}
}

func (a *authService) Login(ctx context.Context, creds models.Credentials) (models.User, error) {
	body, err := a.client.Login(ctx, creds)
	if err != nil {
		return models.User{}, fmt.Errorf("login: %w", err)
	}

	token, err := ExtractToken(body)
	if err != nil {
		a.logger.Warn(ctx, "login response without token", "bytes", len(body))
		return models.User{}, err
	}

	user, _, err := session.DecodeToken(token)
	if err != nil {
		a.logger.Warn(ctx, "login token not decodable", "error", err)
		return models.User{}, err
	}

	if err := a.session.Login(ctx, user, token); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (a *authService) Register(ctx context.Context, reg models.Registration) error {
	if err := a.client.Register(ctx, reg); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	a.logger.Info(ctx, "registered", "business", reg.IsBusiness)
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}

// ExtractToken pulls the bearer token out of a login response body, which is
// either the token itself (optionally JSON-quoted) or {"token": "..."}.
func ExtractToken(body []byte) (string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", common.ErrNoToken
	}

	var token string
	switch body[0] {
	case '{':
		var obj struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(body, &obj); err != nil {
			return "", fmt.Errorf("%w: %v", common.ErrNoToken, err)
		}
		token = obj.Token
	case '"':
		if err := json.Unmarshal(body, &token); err != nil {
			return "", fmt.Errorf("%w: %v", common.ErrNoToken, err)
		}
	default:
		token = string(body)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", common.ErrNoToken
	}
	return token, nil
}
