package listing

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/logging"
)

// OwnCards is the source for the my-cards view.
type OwnCards interface {
	Mine(ctx context.Context) ([]models.Card, error)
	Delete(ctx context.Context, id string) error
}

// MyCards holds the cards owned by the signed-in business or admin user.
type MyCards struct {
	cards  OwnCards
	logger logging.Logger

	mu    sync.Mutex
	items []models.Card
}

func NewMyCards(cards OwnCards, logger logging.Logger) *MyCards {
	return &MyCards{cards: cards, logger: logger}
}

func (m *MyCards) Load(ctx context.Context) error {
	items, err := m.cards.Mine(ctx)
	if err != nil {
		m.logger.Error(ctx, "fetch own cards failed", "error", err)
		return err
	}

	m.mu.Lock()
	m.items = items
	m.mu.Unlock()
	return nil
}

func (m *MyCards) Items() []models.Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.items)
}

// Delete removes the card remotely and, on success, from the local list.
func (m *MyCards) Delete(ctx context.Context, id string) error {
	if err := m.cards.Delete(ctx, id); err != nil {
		m.logger.Error(ctx, "delete card failed", "card_id", id, "error", err)
		return err
	}

	m.mu.Lock()
	m.items = slices.DeleteFunc(m.items, func(c models.Card) bool { return c.ID == id })
	m.mu.Unlock()
	return nil
}
