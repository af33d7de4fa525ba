package session

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bcards/internal/common"
)

// StartExpiryWatcher logs the user out once the token's exp claim has
// passed. It blocks until ctx is done.
func (s *Store) StartExpiryWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireIfDue(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Store) expireIfDue(ctx context.Context) bool {
	snap := s.Snapshot()
	if !snap.LoggedIn || snap.ExpiresAt.IsZero() || s.now().Before(snap.ExpiresAt) {
		return false
	}

	s.logger.Info(ctx, "ending session", "reason", common.ErrTokenExpired, "user_id", snap.User.ID)
	ended, err := s.logoutToken(ctx, snap.Token)
	if err != nil {
		s.logger.Error(ctx, "background logout failed", "error", err)
		return false
	}
	return ended
}

// logoutToken ends the session only while token is still the current one,
// so a login that lands after the expiry check survives.
func (s *Store) logoutToken(ctx context.Context, token string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	current := s.snap
	s.mu.RUnlock()

	if !current.LoggedIn || current.Token != token {
		return false, nil
	}
	if err := s.clear(ctx); err != nil {
		return false, err
	}

	s.logger.Info(ctx, "logged out")
	s.notify(Snapshot{})
	return true, nil
}
