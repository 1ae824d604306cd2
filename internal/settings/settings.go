// Package settings caches the runtime settings record. It is read on every
// request that depends on require_login, so the database is only consulted
// on load and on update.
package settings

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/erazemk/kitreq/internal/model"
	"github.com/erazemk/kitreq/internal/store"
)

// Cache holds the current settings.
type Cache struct {
	db *sql.DB

	mu       sync.RWMutex
	current  model.Settings
	onChange func(model.Settings)
}

// NewCache loads the settings from db.
func NewCache(ctx context.Context, db *sql.DB) (*Cache, error) {
	c := &Cache{db: db}
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// OnChange registers fn to be called after every successful update.
func (c *Cache) OnChange(fn func(model.Settings)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Load replaces the cached settings with the stored ones.
func (c *Cache) Load(ctx context.Context) error {
	s, err := store.GetSettings(ctx, c.db)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	c.mu.Lock()
	c.current = s
	c.mu.Unlock()
	return nil
}

// Get returns the cached settings.
func (c *Cache) Get() model.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Update validates, stores and caches s. The cache is left alone when the
// write fails.
func (c *Cache) Update(ctx context.Context, s model.Settings) (model.Settings, error) {
	s.Normalize()
	if err := s.Validate(); err != nil {
		return model.Settings{}, err
	}
	if err := store.SaveSettings(ctx, c.db, s); err != nil {
		return model.Settings{}, err
	}

	c.mu.Lock()
	c.current = s
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(s)
	}
	return s, nil
}
