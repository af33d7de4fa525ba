package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/client/session"
	"github.com/dmitrijs2005/bcards/internal/common"
	"github.com/dmitrijs2005/bcards/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCards struct {
	mu      sync.Mutex
	cards   []models.Card
	listErr error
	likeErr error
	likes   []string
	release chan struct{}
}

func (f *fakeCards) List(ctx context.Context) ([]models.Card, error) {
	return f.cards, f.listErr
}

func (f *fakeCards) ToggleLike(ctx context.Context, id string) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.likes = append(f.likes, id)
	return f.likeErr
}

func (f *fakeCards) likeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.likes)
}

type fakeSession struct{ snap session.Snapshot }

func (f fakeSession) Snapshot() session.Snapshot { return f.snap }

var (
	anonymous = fakeSession{}
	member    = fakeSession{snap: session.Snapshot{User: models.User{ID: "u1"}, Token: "tok", LoggedIn: true}}
)

// manualTimers captures scheduled callbacks so tests fire them explicitly.
type manualTimers struct {
	mu    sync.Mutex
	funcs []func()
	delay []time.Duration
}

func (m *manualTimers) after(d time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := len(m.funcs)
	m.funcs = append(m.funcs, f)
	m.delay = append(m.delay, d)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		stopped := m.funcs[i] != nil
		m.funcs[i] = nil
		return stopped
	}
}

func (m *manualTimers) fireAll() {
	m.mu.Lock()
	funcs := m.funcs
	m.funcs = make([]func(), len(funcs))
	m.mu.Unlock()
	for _, f := range funcs {
		if f != nil {
			f()
		}
	}
}

func makeCards(n int) []models.Card {
	cards := make([]models.Card, n)
	for i := range cards {
		cards[i] = models.Card{ID: fmt.Sprintf("c%02d", i), Title: fmt.Sprintf("Card %02d", i)}
	}
	return cards
}

func loaded(t *testing.T, cards []models.Card, sess Session) (*Controller, *fakeCards) {
	t.Helper()
	fc := &fakeCards{cards: cards}
	c := New(fc, sess, logging.Discard(), Options{PageSize: 9, FadeDelay: 400 * time.Millisecond})
	require.NoError(t, c.Load(context.Background()))
	return c, fc
}

func TestFilter(t *testing.T) {
	cards := []models.Card{{ID: "a", Title: "Acme"}, {ID: "b", Title: "Beta"}}

	got := Filter(cards, "ac")
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	assert.Equal(t, got, Filter(got, "ac"), "filtering is idempotent")
	assert.Len(t, Filter(cards, ""), 2)
	assert.Empty(t, Filter(cards, "cme"))
	assert.Len(t, Filter(cards, "BETA"), 1)
}

func TestLoad_LikedSetFromUser(t *testing.T) {
	cards := []models.Card{
		{ID: "a", Title: "A", Likes: []string{"u1", "u2"}},
		{ID: "b", Title: "B", Likes: []string{"u2"}},
		{ID: "c", Title: "C"},
	}

	c, _ := loaded(t, cards, member)
	assert.True(t, c.IsLiked("a"))
	assert.False(t, c.IsLiked("b"))

	anon, _ := loaded(t, cards, anonymous)
	assert.False(t, anon.IsLiked("a"))
	assert.Empty(t, anon.Favorites())
}

func TestLoad_ErrorKeepsPrevious(t *testing.T) {
	c, fc := loaded(t, makeCards(3), anonymous)
	fc.listErr = errors.New("offline")

	require.Error(t, c.Load(context.Background()))
	assert.Len(t, c.All(), 3)
}

func TestPagination(t *testing.T) {
	tests := []struct {
		n     int
		total int
	}{
		{0, 0}, {1, 1}, {9, 1}, {10, 2}, {18, 2}, {19, 3}, {100, 12},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			c, _ := loaded(t, makeCards(tt.n), anonymous)
			assert.Equal(t, tt.total, c.TotalPages())
			assert.Equal(t, 1, c.CurrentPage())

			page := c.Page()
			assert.Len(t, page, min(tt.n, 9))
			if tt.n > 0 {
				assert.Equal(t, "c00", page[0].ID, "page 1 starts at index 0")
			}
		})
	}
}

func TestPagination_Clamps(t *testing.T) {
	c, _ := loaded(t, makeCards(20), anonymous)

	assert.Equal(t, 3, c.SetPage(99))
	assert.Equal(t, 3, c.Next())
	assert.Len(t, c.Page(), 2)
	assert.Equal(t, "c18", c.Page()[0].ID)

	assert.Equal(t, 1, c.SetPage(-5))
	assert.Equal(t, 1, c.Prev())
	assert.Equal(t, 2, c.Next())
}

func TestPagination_EmptyCollection(t *testing.T) {
	c, _ := loaded(t, nil, anonymous)
	assert.Equal(t, 1, c.Next())
	assert.Nil(t, c.Page())
	assert.Empty(t, c.PageWindow())
}

func TestSetQuery_ResetsPage(t *testing.T) {
	cards := append(makeCards(30), models.Card{ID: "z", Title: "Zeta"})
	c, _ := loaded(t, cards, anonymous)

	c.SetPage(4)
	require.Equal(t, 4, c.CurrentPage())

	c.SetQuery("ze")
	assert.Equal(t, 1, c.CurrentPage())
	assert.Equal(t, 1, c.TotalPages())
	require.Len(t, c.Page(), 1)
	assert.Equal(t, "z", c.Page()[0].ID)

	c.SetQuery("")
	assert.Equal(t, 4, c.TotalPages())
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 1, []int{1}},
		{1, 3, []int{1, 2, 3}},
		{1, 10, []int{1, 2, 3, 4}},
		{5, 10, []int{5, 6, 7, 8}},
		{8, 10, []int{7, 8, 9, 10}},
		{10, 10, []int{7, 8, 9, 10}},
		{2, 4, []int{1, 2, 3, 4}},
		{1, 0, nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d of %d", tt.current, tt.total), func(t *testing.T) {
			got := pageWindow(tt.current, tt.total)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), WindowSize)
			for _, p := range got {
				assert.LessOrEqual(t, p, tt.total)
			}
		})
	}
}

func TestToggleLike_Anonymous(t *testing.T) {
	c, fc := loaded(t, makeCards(2), anonymous)

	_, err := c.ToggleLike(context.Background(), "c00")
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.Contains(t, err.Error(), MsgLoginToLike)
	assert.Zero(t, fc.likeCalls())
	assert.False(t, c.IsLiked("c00"))
}

func TestToggleLike_FlipsOncePerCall(t *testing.T) {
	c, fc := loaded(t, makeCards(2), member)
	ctx := context.Background()

	liked, err := c.ToggleLike(ctx, "c00")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, c.IsLiked("c00"))

	liked, err = c.ToggleLike(ctx, "c00")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.False(t, c.IsLiked("c00"))

	assert.Equal(t, []string{"c00", "c00"}, fc.likes)
}

func TestToggleLike_FlipHappensBeforeResponse(t *testing.T) {
	fc := &fakeCards{cards: makeCards(1), release: make(chan struct{})}
	c := New(fc, member, logging.Discard(), Options{})
	require.NoError(t, c.Load(context.Background()))

	done := make(chan struct{})
	go func() {
		_, _ = c.ToggleLike(context.Background(), "c00")
		close(done)
	}()

	require.Eventually(t, func() bool { return c.IsLiked("c00") }, time.Second, time.Millisecond)
	assert.Zero(t, fc.likeCalls(), "request still in flight")

	close(fc.release)
	<-done
	assert.True(t, c.IsLiked("c00"))
}

func TestToggleLike_FailureIsNotRolledBack(t *testing.T) {
	c, fc := loaded(t, makeCards(2), member)
	fc.likeErr = errors.New("502")

	liked, err := c.ToggleLike(context.Background(), "c01")
	require.Error(t, err)
	assert.True(t, liked)
	assert.True(t, c.IsLiked("c01"), "local flip stays")
	assert.True(t, c.IsUnconfirmed("c01"))
	assert.Equal(t, 1, fc.likeCalls(), "no retry")

	require.NoError(t, c.Load(context.Background()))
	assert.False(t, c.IsLiked("c01"), "reload reconciles with the server")
	assert.False(t, c.IsUnconfirmed("c01"))
}

func TestFavorites_FadeOut(t *testing.T) {
	cards := []models.Card{
		{ID: "a", Title: "A", Likes: []string{"u1"}},
		{ID: "b", Title: "B", Likes: []string{"u1"}},
		{ID: "c", Title: "C"},
	}
	c, _ := loaded(t, cards, member)
	timers := &manualTimers{}
	c.after = timers.after

	require.Len(t, c.Favorites(), 2)

	_, err := c.ToggleLike(context.Background(), "a")
	require.NoError(t, err)

	assert.False(t, c.IsLiked("a"))
	assert.True(t, c.IsFading("a"))
	assert.Len(t, c.Favorites(), 2, "still shown while fading")
	assert.Equal(t, []time.Duration{400 * time.Millisecond}, timers.delay)

	timers.fireAll()
	assert.False(t, c.IsFading("a"))
	favs := c.Favorites()
	require.Len(t, favs, 1)
	assert.Equal(t, "b", favs[0].ID)
}

func TestFavorites_RelikeCancelsFade(t *testing.T) {
	cards := []models.Card{{ID: "a", Title: "A", Likes: []string{"u1"}}}
	c, _ := loaded(t, cards, member)
	timers := &manualTimers{}
	c.after = timers.after
	ctx := context.Background()

	_, err := c.ToggleLike(ctx, "a")
	require.NoError(t, err)
	_, err = c.ToggleLike(ctx, "a")
	require.NoError(t, err)

	timers.fireAll()
	assert.True(t, c.IsLiked("a"))
	assert.False(t, c.IsFading("a"))
	assert.Len(t, c.Favorites(), 1)
}

func TestFavorites_RealTimer(t *testing.T) {
	cards := []models.Card{{ID: "a", Title: "A", Likes: []string{"u1"}}}
	fc := &fakeCards{cards: cards}
	c := New(fc, member, logging.Discard(), Options{FadeDelay: 10 * time.Millisecond})
	require.NoError(t, c.Load(context.Background()))

	_, err := c.ToggleLike(context.Background(), "a")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(c.Favorites()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestFind(t *testing.T) {
	c, _ := loaded(t, makeCards(3), anonymous)

	card, ok := c.Find("c02")
	require.True(t, ok)
	assert.Equal(t, "Card 02", card.Title)

	_, ok = c.Find("nope")
	assert.False(t, ok)
}

func TestNew_DefaultPageSize(t *testing.T) {
	c := New(&fakeCards{}, anonymous, logging.Discard(), Options{})
	assert.Equal(t, DefaultPageSize, c.PageSize())
}
