// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package approval

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestNotifier_PriorityOrder(t *testing.T) {
	n := NewNotifier(nil)
	var got []string

	n.Register(Listener{Name: "late", Priority: 10, Fn: func(context.Context, Kind) error {
		got = append(got, "late")
		return nil
	}})
	n.Register(Listener{Name: "early", Priority: -1, Fn: func(context.Context, Kind) error {
		got = append(got, "early")
		return nil
	}})
	n.Subscribe("default", func(context.Context, Kind) error {
		got = append(got, "default")
		return nil
	})

	n.Notify(context.Background(), KindPorts)

	want := []string{"early", "default", "late"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNotifier_ErrorDoesNotStopOthers(t *testing.T) {
	n := NewNotifier(nil)
	called := false

	n.Subscribe("failing", func(context.Context, Kind) error {
		return errors.New("boom")
	})
	n.Subscribe("next", func(context.Context, Kind) error {
		called = true
		return nil
	})

	n.Notify(context.Background(), KindParts)

	if !called {
		t.Error("listener after a failing one was not called")
	}
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := NewNotifier(nil)
	calls := 0

	unsubscribe := n.Subscribe("counter", func(_ context.Context, kind Kind) error {
		if kind != KindTranslations {
			t.Errorf("kind = %s, want translations", kind)
		}
		calls++
		return nil
	})
	keep := n.Subscribe("other", func(context.Context, Kind) error { return nil })
	defer keep()

	n.Notify(context.Background(), KindTranslations)
	unsubscribe()
	unsubscribe()
	n.Notify(context.Background(), KindTranslations)

	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}
	if n.Len() != 1 {
		t.Errorf("Len() = %d, want 1", n.Len())
	}
}

func TestNotifier_Concurrent(t *testing.T) {
	n := NewNotifier(nil)
	var mu sync.Mutex
	total := 0

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsub := n.Subscribe("c", func(context.Context, Kind) error {
				mu.Lock()
				total++
				mu.Unlock()
				return nil
			})
			n.Notify(context.Background(), KindHSCodes)
			unsub()
		}()
	}
	wg.Wait()

	if n.Len() != 0 {
		t.Errorf("Len() = %d after all unsubscribed", n.Len())
	}
	if total == 0 {
		t.Error("no listener was called")
	}
}
