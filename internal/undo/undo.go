// Package undo keeps short-lived undo actions for destructive or creating
// operations. Each action can be run once, by a caller with at least the
// role recorded for it, before its window closes.
package undo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/kitreq/internal/model"
)

var (
	// ErrNotFound is returned for unknown or already used tokens.
	ErrNotFound = errors.New("undo action not found")
	// ErrExpired is returned when the undo window has closed.
	ErrExpired = errors.New("undo window has expired")
	// ErrForbidden is returned when the caller's role is too low.
	ErrForbidden = errors.New("not allowed to undo this action")
)

// Func reverts an operation.
type Func func(ctx context.Context) error

// Action is what a caller gets back after a reversible operation.
type Action struct {
	Token     string    `json:"token"`
	Label     string    `json:"label"`
	ExpiresAt time.Time `json:"expires_at"`
}

type entry struct {
	fn      Func
	role    string
	label   string
	expires time.Time
}

// Buffer holds pending undo actions.
type Buffer struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[string]entry
	now     func() time.Time
}

// NewBuffer creates a buffer whose actions expire after window.
func NewBuffer(window time.Duration) *Buffer {
	return &Buffer{
		window:  window,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Window returns how long actions stay available.
func (b *Buffer) Window() time.Duration {
	return b.window
}

// Add registers fn. An empty role means anyone holding the token may
// undo, which is how anonymous requesters cancel their own submission.
func (b *Buffer) Add(label, role string, fn Func) Action {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.purge(now)

	token := uuid.NewString()
	expires := now.Add(b.window)
	b.entries[token] = entry{fn: fn, role: role, label: label, expires: expires}

	return Action{Token: token, Label: label, ExpiresAt: expires}
}

// Undo runs and removes the action behind token. The entry is removed
// before fn runs, so a failed undo cannot be retried.
func (b *Buffer) Undo(ctx context.Context, token, role string) (string, error) {
	b.mu.Lock()
	e, ok := b.entries[token]
	if !ok {
		b.mu.Unlock()
		return "", ErrNotFound
	}
	if b.now().After(e.expires) {
		delete(b.entries, token)
		b.mu.Unlock()
		return "", ErrExpired
	}
	if e.role != "" && !model.RoleAtLeast(role, e.role) {
		b.mu.Unlock()
		return "", ErrForbidden
	}
	delete(b.entries, token)
	b.mu.Unlock()

	return e.label, e.fn(ctx)
}

// Len returns the number of actions that have not expired.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.purge(b.now())
	return len(b.entries)
}

// purge drops expired entries. Caller holds b.mu.
func (b *Buffer) purge(now time.Time) {
	for token, e := range b.entries {
		if now.After(e.expires) {
			delete(b.entries, token)
		}
	}
}
