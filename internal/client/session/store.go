// Package session holds the signed-in user and bearer token, mirrors them
// to the local database, and tells observers when they change.
//
// The user record and the token are stored under separate keys but always
// written and cleared together, so one never outlives the other.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/bcards/internal/client/models"
	"github.com/dmitrijs2005/bcards/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/bcards/internal/common"
	"github.com/dmitrijs2005/bcards/internal/dbx"
	"github.com/dmitrijs2005/bcards/internal/logging"
)

// Snapshot is a consistent view of the session.
type Snapshot struct {
	User      models.User
	Token     string
	ExpiresAt time.Time
	LoggedIn  bool
}

// Store is safe for concurrent readers. Writes (Login, Logout) are
// serialized; observers run synchronously on the writing goroutine and must
// not write to the store themselves.
type Store struct {
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time

	writeMu sync.Mutex

	mu   sync.RWMutex
	snap Snapshot

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// Open builds a Store and rehydrates it from db. Unreadable or half-present
// session data is discarded and yields a logged-out store; only database
// failures are returned as errors.
func Open(ctx context.Context, db *sql.DB, logger logging.Logger) (*Store, error) {
	s := &Store{
		db:     db,
		logger: logger,
		now:    time.Now,
		subs:   make(map[int]func(Snapshot)),
	}

	if err := s.rehydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) rehydrate(ctx context.Context) error {
	repo := metadata.NewSQLiteRepository(s.db)

	rawUser, err := repo.Get(ctx, metadata.KeyUser)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	rawToken, err := repo.Get(ctx, metadata.KeyToken)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	if rawUser == nil && rawToken == nil {
		return nil
	}

	snap, reason := restore(rawUser, string(rawToken))
	if reason != "" {
		s.logger.Warn(ctx, "discarding stored session", "reason", reason)
		return s.clear(ctx)
	}

	if !snap.ExpiresAt.IsZero() && !s.now().Before(snap.ExpiresAt) {
		s.logger.Info(ctx, "stored session expired", "expired_at", snap.ExpiresAt)
		return s.clear(ctx)
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.logger.Debug(ctx, "session restored", "user_id", snap.User.ID)
	return nil
}

// restore rebuilds a snapshot from stored values, or explains why it can't.
func restore(rawUser []byte, token string) (Snapshot, string) {
	if rawUser == nil {
		return Snapshot{}, "token without user"
	}
	if token == "" {
		return Snapshot{}, "user without token"
	}

	var user models.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		return Snapshot{}, "corrupt user record"
	}
	if user.ID == "" {
		return Snapshot{}, "user record without id"
	}

	snap := Snapshot{User: user, Token: token, LoggedIn: true}
	if _, exp, err := DecodeToken(token); err == nil {
		snap.ExpiresAt = exp
	}
	return snap, ""
}

// Login replaces the current user and token. Both are persisted in one
// transaction before observers are notified.
func (s *Store) Login(ctx context.Context, user models.User, token string) error {
	if user.ID == "" || token == "" {
		return common.ErrInvalidToken
	}

	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	var exp time.Time
	if _, e, err := DecodeToken(token); err == nil {
		exp = e
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyUser, rawUser); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyToken, []byte(token))
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	snap := Snapshot{User: user, Token: token, ExpiresAt: exp, LoggedIn: true}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.logger.Info(ctx, "logged in", "user_id", user.ID, "business", user.IsBusiness, "admin", user.IsAdmin)
	s.notify(snap)
	return nil
}

// Logout forgets the user and the token, in memory and on disk.
func (s *Store) Logout(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	was := s.snap.LoggedIn
	s.mu.RUnlock()

	if err := s.clear(ctx); err != nil {
		return err
	}

	if was {
		s.logger.Info(ctx, "logged out")
		s.notify(Snapshot{})
	}
	return nil
}

func (s *Store) clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, metadata.KeyUser); err != nil {
			return err
		}
		return repo.Delete(ctx, metadata.KeyToken)
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	s.mu.Lock()
	s.snap = Snapshot{}
	s.mu.Unlock()
	return nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// User returns the signed-in user, if any.
func (s *Store) User() (models.User, bool) {
	snap := s.Snapshot()
	return snap.User, snap.LoggedIn
}

func (s *Store) Token() string {
	return s.Snapshot().Token
}

func (s *Store) IsAuthenticated() bool {
	snap := s.Snapshot()
	return snap.LoggedIn && snap.Token != ""
}

func (s *Store) IsBusiness() bool {
	snap := s.Snapshot()
	return snap.LoggedIn && snap.User.IsBusiness
}

func (s *Store) IsAdmin() bool {
	snap := s.Snapshot()
	return snap.LoggedIn && snap.User.IsAdmin
}

func (s *Store) ExpiresAt() time.Time {
	return s.Snapshot().ExpiresAt
}

// Subscribe registers fn to be called after every change. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, id := range slices.Sorted(maps.Keys(s.subs)) {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
