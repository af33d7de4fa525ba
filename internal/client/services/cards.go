package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bcards/internal/client/client"
	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/common"
	"github.com/dmitrijs2005/bcards/internal/logging"
)

// CardService reads and mutates cards. Every mutating call, and the
// my-cards listing, is refused locally when the session lacks a user or a
// token; no request is sent in that case.
type CardService interface {
	List(ctx context.Context) ([]models.Card, error)
	Get(ctx context.Context, id string) (models.Card, error)
	Mine(ctx context.Context) ([]models.Card, error)
	Create(ctx context.Context, in models.CardInput) (models.Card, error)
	ToggleLike(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type cardService struct {
	client  client.Client
	session Session
	logger  logging.Logger
}

func NewCardService(c client.Client, s Session, logger logging.Logger) CardService {
	return &cardService{client: c, session: s, logger: logger}
}

func (s *cardService) List(ctx context.Context) ([]models.Card, error) {
	cards, err := s.client.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

func (s *cardService) Get(ctx context.Context, id string) (models.Card, error) {
	card, err := s.client.GetCard(ctx, id)
	if err != nil {
		return models.Card{}, fmt.Errorf("get card %s: %w", id, err)
	}
	return card, nil
}

func (s *cardService) Mine(ctx context.Context) ([]models.Card, error) {
	token, err := s.manager()
	if err != nil {
		return nil, err
	}
	cards, err := s.client.MyCards(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("my cards: %w", err)
	}
	return cards, nil
}

func (s *cardService) Create(ctx context.Context, in models.CardInput) (models.Card, error) {
	snap := s.session.Snapshot()
	if !snap.LoggedIn || snap.Token == "" {
		return models.Card{}, common.ErrNotAuthenticated
	}
	if !snap.User.IsBusiness {
		return models.Card{}, common.ErrNotBusiness
	}

	card, err := s.client.CreateCard(ctx, snap.Token, in)
	if err != nil {
		return models.Card{}, fmt.Errorf("create card: %w", err)
	}
	s.logger.Info(ctx, "card created", "card_id", card.ID)
	return card, nil
}

func (s *cardService) ToggleLike(ctx context.Context, id string) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	if err := s.client.ToggleLike(ctx, token, id); err != nil {
		return fmt.Errorf("toggle like %s: %w", id, err)
	}
	return nil
}

func (s *cardService) Delete(ctx context.Context, id string) error {
	token, err := s.token()
	if err != nil {
		return err
	}
	if err := s.client.DeleteCard(ctx, token, id); err != nil {
		return fmt.Errorf("delete card %s: %w", id, err)
	}
	s.logger.Info(ctx, "card deleted", "card_id", id)
	return nil
}

func (s *cardService) token() (string, error) {
	snap := s.session.Snapshot()
	if !snap.LoggedIn || snap.Token == "" {
		return "", common.ErrNotAuthenticated
	}
	return snap.Token, nil
}

func (s *cardService) manager() (string, error) {
	snap := s.session.Snapshot()
	if !snap.LoggedIn || snap.Token == "" {
		return "", common.ErrNotAuthenticated
	}
	if !snap.User.CanManageCards() {
		return "", common.ErrNotBusiness
	}
	return snap.Token, nil
}
