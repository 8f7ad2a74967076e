package session

import (
	"context"
	"errors"
)

// BoundStore is a per-request Store view over one browser session row.
// The console server constructs one for each incoming request from the
// session cookie, giving the route guard and the API gateway the same
// Get/Set/Clear surface the CLI's FileStore provides.
type BoundStore struct {
	ctx  context.Context
	repo *Repository
	id   string
}

var _ Store = (*BoundStore)(nil)

// Bind creates a Store bound to the browser session id for the lifetime of
// ctx (one request). An id with no backing row behaves as an empty store.
func Bind(ctx context.Context, repo *Repository, id string) *BoundStore {
	return &BoundStore{ctx: ctx, repo: repo, id: id}
}

// SessionID returns the bound browser session id.
func (s *BoundStore) SessionID() string {
	return s.id
}

// Get implements Store. A successful read touches the row so last_used_at
// tracks real activity; a failed touch does not fail the read.
func (s *BoundStore) Get() (string, bool) {
	if s.id == "" {
		return "", false
	}
	row, err := s.repo.Get(s.ctx, s.id)
	if err != nil || row.Token == "" {
		return "", false
	}
	_ = s.repo.Touch(s.ctx, s.id)
	return row.Token, true
}

// Set implements Store.
func (s *BoundStore) Set(token string) error {
	if s.id == "" {
		return ErrSessionNotFound
	}
	return s.repo.SetToken(s.ctx, s.id, token)
}

// Clear implements Store.
func (s *BoundStore) Clear() error {
	if s.id == "" {
		return nil
	}
	err := s.repo.ClearToken(s.ctx, s.id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	return err
}
