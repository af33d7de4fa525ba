// Package listing keeps the card collection of a view in memory and serves
// search, pagination and like toggling from it.
//
// The collection is fetched once per Load; everything else works on the
// local copy until the next Load.
package listing

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/client/session"
	"github.com/dmitrijs2005/bcards/internal/common"
	"github.com/dmitrijs2005/bcards/internal/logging"
)

const (
	DefaultPageSize = 9
	// WindowSize is the number of page buttons shown at once.
	WindowSize = 4

	MsgLoginToLike = "You must be logged in to like cards."
)

// Cards is the card source used by the controller.
type Cards interface {
	List(ctx context.Context) ([]models.Card, error)
	ToggleLike(ctx context.Context, id string) error
}

// Session reports who is looking at the cards.
type Session interface {
	Snapshot() session.Snapshot
}

type Options struct {
	PageSize  int
	FadeDelay time.Duration
}

// afterFunc schedules f and returns a function that cancels it.
type afterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfter(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Controller is safe for concurrent use.
type Controller struct {
	cards     Cards
	session   Session
	logger    logging.Logger
	pageSize  int
	fadeDelay time.Duration
	after     afterFunc

	mu          sync.Mutex
	all         []models.Card
	liked       map[string]bool
	unconfirmed map[string]bool
	fading      map[string]fade
	fadeGen     uint64
	query       string
	page        int
}

func New(cards Cards, sess Session, logger logging.Logger, opts Options) *Controller {
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Controller{
		cards:       cards,
		session:     sess,
		logger:      logger,
		pageSize:    size,
		fadeDelay:   opts.FadeDelay,
		after:       timeAfter,
		liked:       map[string]bool{},
		unconfirmed: map[string]bool{},
		fading:      map[string]fade{},
		page:        1,
	}
}

// Load fetches the collection and rebuilds the liked set from the server's
// likes, dropping any local flips the server has not confirmed. On error
// the previous collection is kept.
func (c *Controller) Load(ctx context.Context) error {
	cards, err := c.cards.List(ctx)
	if err != nil {
		c.logger.Error(ctx, "fetch cards failed", "error", err)
		return err
	}

	userID := ""
	if snap := c.session.Snapshot(); snap.LoggedIn {
		userID = snap.User.ID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.all = cards
	c.liked = map[string]bool{}
	for _, card := range cards {
		if card.LikedBy(userID) {
			c.liked[card.ID] = true
		}
	}
	if n := len(c.unconfirmed); n > 0 {
		c.logger.Debug(ctx, "reconciled unconfirmed likes", "count", n)
	}
	c.unconfirmed = map[string]bool{}
	for id, f := range c.fading {
		f.stop()
		delete(c.fading, id)
	}
	c.page = clamp(c.page, c.totalPagesLocked())
	return nil
}

// Filter returns the cards whose title starts with q, ignoring case.
func Filter(cards []models.Card, q string) []models.Card {
	out := make([]models.Card, 0, len(cards))
	for _, card := range cards {
		if card.HasTitlePrefix(q) {
			out = append(out, card)
		}
	}
	return out
}

// SetQuery changes the search and goes back to the first page.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = q
	c.page = 1
}

func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// All returns the unfiltered collection.
func (c *Controller) All() []models.Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.all)
}

// Filtered returns the collection narrowed by the current query.
func (c *Controller) Filtered() []models.Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Filter(c.all, c.query)
}

// Find looks a card up in the loaded collection.
func (c *Controller) Find(id string) (models.Card, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, card := range c.all {
		if card.ID == id {
			return card, true
		}
	}
	return models.Card{}, false
}

func (c *Controller) PageSize() int {
	return c.pageSize
}

func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPagesLocked()
}

func (c *Controller) totalPagesLocked() int {
	n := len(Filter(c.all, c.query))
	return (n + c.pageSize - 1) / c.pageSize
}

func (c *Controller) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// SetPage moves to page n, clamped to the available pages.
func (c *Controller) SetPage(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = clamp(n, c.totalPagesLocked())
	return c.page
}

func (c *Controller) Next() int {
	return c.SetPage(c.CurrentPage() + 1)
}

func (c *Controller) Prev() int {
	return c.SetPage(c.CurrentPage() - 1)
}

// Page returns the cards of the current page.
func (c *Controller) Page() []models.Card {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := Filter(c.all, c.query)
	start := (c.page - 1) * c.pageSize
	if start >= len(filtered) {
		return nil
	}
	end := min(start+c.pageSize, len(filtered))
	return filtered[start:end]
}

// PageWindow returns up to WindowSize page numbers starting at the current
// page, shifted left so the window never runs past the last page.
func (c *Controller) PageWindow() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pageWindow(c.page, c.totalPagesLocked())
}

func pageWindow(current, total int) []int {
	start := current
	if start+WindowSize-1 > total {
		start = max(total-WindowSize+1, 1)
	}
	var out []int
	for i := start; i < start+WindowSize && i <= total; i++ {
		out = append(out, i)
	}
	return out
}

func clamp(page, total int) int {
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}

func (c *Controller) IsLiked(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liked[id]
}

// IsUnconfirmed reports a local like flip whose request failed.
func (c *Controller) IsUnconfirmed(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unconfirmed[id]
}

func (c *Controller) IsFading(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.fading[id]
	return ok
}

// ToggleLike flips the like on card id locally and sends one toggle request.
//
// Without a session nothing is sent and common.ErrNotAuthenticated is
// returned. The local flip is applied before the request and is not undone
// when the request fails: the card is marked unconfirmed until the next
// Load replaces local state with the server's. It returns the new local
// state.
func (c *Controller) ToggleLike(ctx context.Context, id string) (bool, error) {
	snap := c.session.Snapshot()
	if !snap.LoggedIn || snap.Token == "" {
		return false, fmt.Errorf("%w: %s", common.ErrNotAuthenticated, MsgLoginToLike)
	}

	c.mu.Lock()
	liked := !c.liked[id]
	if liked {
		c.liked[id] = true
		if f, ok := c.fading[id]; ok {
			f.stop()
			delete(c.fading, id)
		}
	} else {
		delete(c.liked, id)
		c.startFadeLocked(id)
	}
	c.mu.Unlock()

	if err := c.cards.ToggleLike(ctx, id); err != nil {
		c.logger.Error(ctx, "toggle like failed", "card_id", id, "error", err)
		c.mu.Lock()
		c.unconfirmed[id] = true
		c.mu.Unlock()
		return liked, err
	}

	c.mu.Lock()
	delete(c.unconfirmed, id)
	c.mu.Unlock()
	return liked, nil
}

type fade struct {
	gen  uint64
	stop func() bool
}

// startFadeLocked keeps an unliked card in Favorites for the fade delay.
func (c *Controller) startFadeLocked(id string) {
	if f, ok := c.fading[id]; ok {
		f.stop()
	}
	c.fadeGen++
	gen := c.fadeGen
	stop := c.after(c.fadeDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if f, ok := c.fading[id]; ok && f.gen == gen {
			delete(c.fading, id)
		}
	})
	c.fading[id] = fade{gen: gen, stop: stop}
}

// Favorites returns the liked cards plus those still fading out.
func (c *Controller) Favorites() []models.Card {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []models.Card
	for _, card := range c.all {
		_, fading := c.fading[card.ID]
		if c.liked[card.ID] || fading {
			out = append(out, card)
		}
	}
	return out
}
