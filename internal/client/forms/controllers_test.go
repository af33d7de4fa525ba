package forms

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/client/session"
	"github.com/dmitrijs2005/bcards/internal/client/validation"
	"github.com/dmitrijs2005/bcards/internal/common"
	"github.com/dmitrijs2005/bcards/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardValues() validation.Values {
	return validation.Values{
		"title":               "Acme",
		"subtitle":            "Tools",
		"description":         "We sell tools",
		"phone":               "0501234567",
		"email":               "shop@acme.co",
		"address.state":       "Center",
		"address.country":     "Israel",
		"address.city":        "Tel Aviv",
		"address.street":      "Herzl",
		"address.houseNumber": "12",
		"address.zip":         "100",
	}
}

func TestNewCardForm_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		f := NewCardForm(&fakeCards{}, openStore(t), logging.Discard())
		assert.Equal(t, StateClosed, f.State())
		r, ok := f.Redirect()
		require.True(t, ok)
		assert.Equal(t, Redirect{To: "/login", Notice: MsgLoginFirst}, r)
		require.ErrorIs(t, f.Set("title", "x"), common.ErrFormClosed)
		require.ErrorIs(t, f.Submit(ctx), common.ErrFormClosed)
	})

	t.Run("plain user", func(t *testing.T) {
		store := openStore(t)
		require.NoError(t, store.Login(ctx, models.User{ID: "u1"}, "tok"))

		f := NewCardForm(&fakeCards{}, store, logging.Discard())
		r, ok := f.Redirect()
		require.True(t, ok)
		assert.Equal(t, Redirect{To: "/", Notice: MsgBusinessOnly}, r)
	})

	t.Run("business", func(t *testing.T) {
		store := openStore(t)
		require.NoError(t, store.Login(ctx, models.User{ID: "u1", IsBusiness: true}, "tok"))

		f := NewCardForm(&fakeCards{}, store, logging.Discard())
		assert.Equal(t, StateEditing, f.State())
		_, ok := f.Redirect()
		assert.False(t, ok)
	})
}

func TestNewCardForm_ClosedByBackgroundLogout(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.Login(ctx, models.User{ID: "u1", IsBusiness: true}, "tok"))

	cards := &fakeCards{}
	f := NewCardForm(cards, store, logging.Discard())
	defer f.Close()
	fill(t, f, cardValues())
	require.True(t, f.CanSubmit())

	require.NoError(t, store.Logout(ctx))

	assert.Equal(t, StateClosed, f.State())
	assert.False(t, f.CanSubmit())
	require.ErrorIs(t, f.Submit(ctx), common.ErrFormClosed)
	assert.Empty(t, cards.created)
}

func TestNewCardForm_CloseDetaches(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.Login(ctx, models.User{ID: "u1", IsBusiness: true}, "tok"))

	f := NewCardForm(&fakeCards{}, store, logging.Discard())
	f.Close()
	require.NoError(t, store.Logout(ctx))

	assert.Equal(t, StateEditing, f.State())
}

func TestNewCardForm_Submit(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.Login(ctx, models.User{ID: "u1", IsBusiness: true}, "tok"))

	cards := &fakeCards{}
	f := NewCardForm(cards, store, logging.Discard())
	fill(t, f, cardValues())
	require.NoError(t, f.Set("web", "https://acme.example"))

	require.NoError(t, f.Submit(ctx))
	require.Len(t, cards.created, 1)
	got := cards.created[0]
	assert.Equal(t, "Acme", got.Title)
	assert.Equal(t, "https://acme.example", got.Web)
	assert.Equal(t, models.Address{State: "Center", Country: "Israel", City: "Tel Aviv", Street: "Herzl", HouseNumber: 12, Zip: 100}, got.Address)

	r, ok := f.Redirect()
	require.True(t, ok)
	assert.Equal(t, "/my-cards", r.To)
}

func TestNewCardForm_ServerFailure(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.Login(ctx, models.User{ID: "u1", IsBusiness: true}, "tok"))

	cards := &fakeCards{err: assert.AnError}
	f := NewCardForm(cards, store, logging.Discard())
	fill(t, f, cardValues())

	require.ErrorIs(t, f.Submit(ctx), assert.AnError)
	assert.Equal(t, MsgCreateFailed, f.ServerError())
	assert.True(t, f.CanSubmit(), "form stays editable")
}

func TestRegisterForm(t *testing.T) {
	ctx := context.Background()

	t.Run("closed when logged in", func(t *testing.T) {
		store := openStore(t)
		require.NoError(t, store.Login(ctx, models.User{ID: "u1"}, "tok"))

		f := NewRegisterForm(&fakeAuth{}, store, logging.Discard())
		r, ok := f.Redirect()
		require.True(t, ok)
		assert.Equal(t, MsgAlreadyLoggedIn, r.Notice)
	})

	t.Run("house number one is rejected", func(t *testing.T) {
		auth := &fakeAuth{}
		f := NewRegisterForm(auth, openStore(t), logging.Discard())
		fill(t, f, validation.Values{
			"name.first": "Dana", "name.last": "Levi", "phone": "0501234567",
			"email": "dana@example.com", "password": "Abcdef1!",
			"address.state": "Center", "address.country": "Israel", "address.city": "Haifa",
			"address.street": "Main", "address.houseNumber": "1",
		})

		var ve *ValidationError
		require.ErrorAs(t, f.Submit(ctx), &ve)
		_, ok := ve.Violations.For("address.houseNumber")
		assert.True(t, ok)
		assert.Empty(t, auth.registers)
	})

	t.Run("submits registration", func(t *testing.T) {
		auth := &fakeAuth{}
		f := NewRegisterForm(auth, openStore(t), logging.Discard())
		fill(t, f, validation.Values{
			"name.first": "Dana", "name.last": "Levi", "phone": "0501234567",
			"email": "dana@example.com", "password": "Abcdef1!",
			"address.state": "Center", "address.country": "Israel", "address.city": "Haifa",
			"address.street": "Main", "address.houseNumber": "10", "isBusiness": "yes",
		})

		require.NoError(t, f.Submit(ctx))
		require.Len(t, auth.registers, 1)
		reg := auth.registers[0]
		assert.True(t, reg.IsBusiness)
		assert.Equal(t, 10, reg.Address.HouseNumber)
		assert.Equal(t, 0, reg.Address.Zip)

		r, _ := f.Redirect()
		assert.Equal(t, "/login", r.To)
	})
}

func TestGuards(t *testing.T) {
	anon := session.Snapshot{}
	plain := session.Snapshot{LoggedIn: true, Token: "t", User: models.User{ID: "u"}}
	admin := session.Snapshot{LoggedIn: true, Token: "t", User: models.User{ID: "u", IsAdmin: true}}
	biz := session.Snapshot{LoggedIn: true, Token: "t", User: models.User{ID: "u", IsBusiness: true}}
	noToken := session.Snapshot{LoggedIn: true, User: models.User{ID: "u", IsBusiness: true}}

	assert.Equal(t, "/login", MyCardsGuard(anon).To)
	assert.Equal(t, MsgBusinessOrAdmin, MyCardsGuard(plain).Notice)
	assert.Nil(t, MyCardsGuard(admin))
	assert.Nil(t, MyCardsGuard(biz))

	assert.Equal(t, "/login", NewCardGuard(noToken).To)
	assert.Equal(t, MsgBusinessOnly, NewCardGuard(admin).Notice)
	assert.Nil(t, NewCardGuard(biz))
}
