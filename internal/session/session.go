// Package session holds the signed-in identity and persists it in a
// key-value side channel: loaded at open, saved on login, deleted on logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"restaurant-system/internal/common/logger"
	"restaurant-system/internal/domain"
)

// IdentityKey is where the identity record lives in the store.
const IdentityKey = "session/identity.json"

type Session struct {
	store Store
	log   *logger.Logger

	mu      sync.RWMutex
	current *domain.Identity
}

// Open restores the persisted identity, if any. A record that cannot be
// decoded is discarded and reported as signed out.
func Open(ctx context.Context, store Store, lg *logger.Logger) (*Session, error) {
	s := &Session{store: store, log: lg}
	entries, err := store.Load(ctx, IdentityKey)
	switch {
	case errors.Is(err, ErrKeyNotFound):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("session: load identity: %w", err)
	}
	var id domain.Identity
	if err := json.Unmarshal(entries[0].Value, &id); err != nil || validate(id) != nil {
		lg.Warn("session_record_discarded", map[string]any{"key": IdentityKey})
		_ = store.Delete(ctx, IdentityKey)
		return s, nil
	}
	s.current = &id
	lg.Info("session_restored", map[string]any{"username": id.Username, "role": string(id.Role)})
	return s, nil
}

func (s *Session) Login(ctx context.Context, id domain.Identity) error {
	if err := validate(id); err != nil {
		return err
	}
	body, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("session: encode identity: %w", err)
	}
	if err := s.store.Save(ctx, Entry{Key: IdentityKey, Value: body}); err != nil {
		return fmt.Errorf("session: save identity: %w", err)
	}
	s.mu.Lock()
	s.current = &id
	s.mu.Unlock()
	return nil
}

func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, IdentityKey); err != nil {
		return fmt.Errorf("session: clear identity: %w", err)
	}
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	return nil
}

func (s *Session) Current() (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Identity{}, false
	}
	return *s.current, true
}

func validate(id domain.Identity) error {
	if strings.TrimSpace(id.Username) == "" {
		return domain.Invalid("username", "is required")
	}
	if !id.Role.Valid() {
		return domain.Invalid("role", "unknown role "+string(id.Role))
	}
	return nil
}
