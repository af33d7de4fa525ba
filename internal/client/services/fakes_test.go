package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/client/session"
)

// fakeClient records calls and returns canned results.
type fakeClient struct {
	mu    sync.Mutex
	calls []string
	token []string

	cards     []models.Card
	card      models.Card
	loginBody []byte
	err       error
}

func (f *fakeClient) record(name, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	f.token = append(f.token, token)
}

func (f *fakeClient) ListCards(ctx context.Context) ([]models.Card, error) {
	f.record("list", "")
	return f.cards, f.err
}

func (f *fakeClient) GetCard(ctx context.Context, id string) (models.Card, error) {
	f.record("get "+id, "")
	return f.card, f.err
}

func (f *fakeClient) MyCards(ctx context.Context, token string) ([]models.Card, error) {
	f.record("mine", token)
	return f.cards, f.err
}

func (f *fakeClient) CreateCard(ctx context.Context, token string, in models.CardInput) (models.Card, error) {
	f.record("create", token)
	return f.card, f.err
}

func (f *fakeClient) ToggleLike(ctx context.Context, token string, id string) error {
	f.record("like "+id, token)
	return f.err
}

func (f *fakeClient) DeleteCard(ctx context.Context, token string, id string) error {
	f.record("delete "+id, token)
	return f.err
}

func (f *fakeClient) Register(ctx context.Context, reg models.Registration) error {
	f.record("register", "")
	return f.err
}

func (f *fakeClient) Login(ctx context.Context, creds models.Credentials) ([]byte, error) {
	f.record("login", "")
	return f.loginBody, f.err
}

// fakeSession is an in-memory Session.
type fakeSession struct {
	snap     session.Snapshot
	loginErr error
}

func (f *fakeSession) Snapshot() session.Snapshot { return f.snap }

func (f *fakeSession) Login(ctx context.Context, user models.User, token string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.snap = session.Snapshot{User: user, Token: token, LoggedIn: true}
	return nil
}

func (f *fakeSession) Logout(ctx context.Context) error {
	f.snap = session.Snapshot{}
	return nil
}

func loggedIn(user models.User) *fakeSession {
	return &fakeSession{snap: session.Snapshot{User: user, Token: "tok", LoggedIn: true}}
}
