// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package approval

import (
	"context"
	"log/slog"
	"sync"
)

// ListenerFunc is called after a review action changed the pending records
// of kind.
type ListenerFunc func(ctx context.Context, kind Kind) error

// Listener wraps a ListenerFunc with metadata.
type Listener struct {
	Name     string // Name of the listener for debugging
	Priority int    // Lower priority runs first (default: 0)
	Fn       ListenerFunc
}

type subscription struct {
	id int
	Listener
}

// Notifier delivers pending count changes to registered listeners.
type Notifier struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID int
	logger *slog.Logger
}

// NewNotifier creates an empty notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{logger: logger}
}

// Subscribe registers fn with default priority.
func (n *Notifier) Subscribe(name string, fn ListenerFunc) (unsubscribe func()) {
	return n.Register(Listener{Name: name, Fn: fn})
}

// Register adds a listener and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (n *Notifier) Register(l Listener) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	subs := append(n.subs, subscription{id: id, Listener: l})

	// Sort by priority (lower priority runs first)
	for i := len(subs) - 1; i > 0; i-- {
		if subs[i].Priority < subs[i-1].Priority {
			subs[i], subs[i-1] = subs[i-1], subs[i]
		}
	}
	n.subs = subs

	n.logger.Debug("approval listener registered", "listener", l.Name, "priority", l.Priority)

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(id) })
	}
}

func (n *Notifier) remove(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, s := range n.subs {
		if s.id == id {
			n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
			return
		}
	}
}

// Notify calls every listener in priority order. A failing listener is
// logged and does not stop the others.
func (n *Notifier) Notify(ctx context.Context, kind Kind) {
	n.mu.RLock()
	subs := make([]subscription, len(n.subs))
	copy(subs, n.subs)
	n.mu.RUnlock()

	for _, s := range subs {
		if err := s.Fn(ctx, kind); err != nil {
			n.logger.Warn("approval listener failed",
				"listener", s.Name,
				"kind", kind,
				"error", err,
			)
		}
	}
}

// Len returns the number of registered listeners.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
