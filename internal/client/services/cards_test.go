package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/bcards/internal/client/client"
	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/common"
	"github.com/dmitrijs2005/bcards/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardService_PublicReads(t *testing.T) {
	fc := &fakeClient{cards: []models.Card{{ID: "a"}}, card: models.Card{ID: "a"}}
	svc := NewCardService(fc, &fakeSession{}, logging.Discard())

	cards, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	card, err := svc.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", card.ID)
	assert.Equal(t, []string{"list", "get a"}, fc.calls)
}

func TestCardService_AnonymousMutationsNeverReachNetwork(t *testing.T) {
	ctx := context.Background()
	fc := &fakeClient{}
	svc := NewCardService(fc, &fakeSession{}, logging.Discard())

	require.ErrorIs(t, svc.ToggleLike(ctx, "a"), common.ErrNotAuthenticated)
	require.ErrorIs(t, svc.Delete(ctx, "a"), common.ErrNotAuthenticated)
	_, err := svc.Create(ctx, models.CardInput{})
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	_, err = svc.Mine(ctx)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)

	assert.Empty(t, fc.calls)
}

func TestCardService_RoleGates(t *testing.T) {
	ctx := context.Background()

	t.Run("plain user", func(t *testing.T) {
		fc := &fakeClient{}
		svc := NewCardService(fc, loggedIn(models.User{ID: "u1"}), logging.Discard())

		_, err := svc.Create(ctx, models.CardInput{})
		require.ErrorIs(t, err, common.ErrNotBusiness)
		_, err = svc.Mine(ctx)
		require.ErrorIs(t, err, common.ErrNotBusiness)
		assert.Empty(t, fc.calls)

		require.NoError(t, svc.ToggleLike(ctx, "c1"))
		assert.Equal(t, []string{"like c1"}, fc.calls)
		assert.Equal(t, []string{"tok"}, fc.token)
	})

	t.Run("admin lists own cards but does not create", func(t *testing.T) {
		fc := &fakeClient{}
		svc := NewCardService(fc, loggedIn(models.User{ID: "u1", IsAdmin: true}), logging.Discard())

		_, err := svc.Mine(ctx)
		require.NoError(t, err)
		_, err = svc.Create(ctx, models.CardInput{})
		require.ErrorIs(t, err, common.ErrNotBusiness)
		assert.Equal(t, []string{"mine"}, fc.calls)
	})

	t.Run("business", func(t *testing.T) {
		fc := &fakeClient{card: models.Card{ID: "n1"}}
		svc := NewCardService(fc, loggedIn(models.User{ID: "u1", IsBusiness: true}), logging.Discard())

		card, err := svc.Create(ctx, models.CardInput{Title: "T"})
		require.NoError(t, err)
		assert.Equal(t, "n1", card.ID)
		require.NoError(t, svc.Delete(ctx, "n1"))
		assert.Equal(t, []string{"create", "delete n1"}, fc.calls)
		assert.Equal(t, []string{"tok", "tok"}, fc.token)
	})
}

func TestCardService_WrapsErrors(t *testing.T) {
	fc := &fakeClient{err: client.ErrNotFound}
	svc := NewCardService(fc, loggedIn(models.User{ID: "u1"}), logging.Discard())

	_, err := svc.Get(context.Background(), "zz")
	require.ErrorIs(t, err, client.ErrNotFound)
	assert.Contains(t, err.Error(), "get card zz")

	require.ErrorIs(t, svc.ToggleLike(context.Background(), "zz"), client.ErrNotFound)
}
