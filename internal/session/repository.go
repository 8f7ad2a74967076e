package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrSessionNotFound is returned when a browser session id does not exist.
var ErrSessionNotFound = errors.New("session not found")

// BrowserSession is one browser's persisted state on the console server:
// its bearer credential for the platform API and its language preference.
// The row outlives logout so the preference survives; Clear only empties
// the token.
type BrowserSession struct {
	bun.BaseModel `bun:"table:browser_sessions"`

	ID         string    `bun:"id,pk"`
	Token      string    `bun:"token"`
	Language   string    `bun:"language"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	LastUsedAt time.Time `bun:"last_used_at,notnull"`
}

// Repository persists browser sessions in the console's local SQLite
// database, keyed by the session cookie value.
type Repository struct {
	db *bun.DB
}

// NewRepository creates a Repository over db.
func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Init creates the sessions table when it does not exist.
func (r *Repository) Init(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*BrowserSession)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create browser_sessions table: %w", err)
	}
	return nil
}

// Create inserts a new session carrying token and returns it. The id is a
// random UUID suitable for use as a cookie value.
func (r *Repository) Create(ctx context.Context, token string) (*BrowserSession, error) {
	now := time.Now()
	s := &BrowserSession{
		ID:         uuid.NewString(),
		Token:      token,
		CreatedAt:  now,
		LastUsedAt: now,
	}
	if _, err := r.db.NewInsert().Model(s).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

// Get returns the session with the given id.
func (r *Repository) Get(ctx context.Context, id string) (*BrowserSession, error) {
	s := new(BrowserSession)
	err := r.db.NewSelect().Model(s).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return s, nil
}

// SetToken replaces the credential stored for a session.
func (r *Repository) SetToken(ctx context.Context, id, token string) error {
	res, err := r.db.NewUpdate().
		Model((*BrowserSession)(nil)).
		Set("token = ?", token).
		Set("last_used_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update session token: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ClearToken removes the credential but keeps the session row, so the
// language preference survives logout.
func (r *Repository) ClearToken(ctx context.Context, id string) error {
	return r.SetToken(ctx, id, "")
}

// SetLanguage persists the browser's language preference.
func (r *Repository) SetLanguage(ctx context.Context, id, lang string) error {
	res, err := r.db.NewUpdate().
		Model((*BrowserSession)(nil)).
		Set("language = ?", lang).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update session language: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Delete removes a session row entirely.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.NewDelete().
		Model((*BrowserSession)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Touch updates the session's last-used timestamp.
func (r *Repository) Touch(ctx context.Context, id string) error {
	_, err := r.db.NewUpdate().
		Model((*BrowserSession)(nil)).
		Set("last_used_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}
