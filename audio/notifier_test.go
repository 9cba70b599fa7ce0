package audio

import (
	"testing"
)

// TestNotifierOrder verifies observers are called in subscription order
func TestNotifierOrder(t *testing.T) {
	n := NewStatusNotifier()

	var got []int
	for i := 0; i < 3; i++ {
		n.SubscribeFunc(func() { got = append(got, i) })
	}
	n.Notify()

	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("Expected order [0 1 2], got %v", got)
	}
}

// TestNotifierUnsubscribe verifies removed observers are not called
func TestNotifierUnsubscribe(t *testing.T) {
	n := NewStatusNotifier()

	var a, b int
	subA := n.SubscribeFunc(func() { a++ })
	n.SubscribeFunc(func() { b++ })

	n.Unsubscribe(subA)
	n.Unsubscribe(subA) // unknown ids are ignored
	n.Notify()

	if a != 0 || b != 1 {
		t.Errorf("Expected a=0 b=1, got a=%d b=%d", a, b)
	}
	if n.Len() != 1 {
		t.Errorf("Expected 1 observer, got %d", n.Len())
	}
}

// TestNotifierReentrant verifies observers may unsubscribe during delivery
func TestNotifierReentrant(t *testing.T) {
	n := NewStatusNotifier()

	var calls int
	var sub Subscription
	sub = n.SubscribeFunc(func() {
		calls++
		n.Unsubscribe(sub)
	})

	n.Notify()
	n.Notify()
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

// TestNotifierPanic verifies a panicking observer does not stop delivery
func TestNotifierPanic(t *testing.T) {
	n := NewStatusNotifier()

	var called bool
	n.SubscribeFunc(func() { panic("bad observer") })
	n.SubscribeFunc(func() { called = true })

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Notify propagated panic: %v", r)
		}
	}()
	n.Notify()

	if !called {
		t.Error("Expected second observer to be called")
	}
}
