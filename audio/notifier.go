package audio

import (
	"sync"

	"go.uber.org/zap"
)

// Observer is notified after every status transition
// The notification carries no payload; observers pull Engine.Status
type Observer interface {
	StatusChanged()
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func()

// StatusChanged implements Observer
func (f ObserverFunc) StatusChanged() {
	f()
}

// Subscription identifies a registered observer for removal
type Subscription uint64

// StatusNotifier fans out status-change notifications
type StatusNotifier struct {
	mu        sync.RWMutex
	observers map[Subscription]Observer
	order     []Subscription
	nextID    Subscription
}

// NewStatusNotifier creates an empty notifier
func NewStatusNotifier() *StatusNotifier {
	return &StatusNotifier{
		observers: make(map[Subscription]Observer),
	}
}

// Subscribe registers an observer; notifications are delivered in subscription order
func (n *StatusNotifier) Subscribe(o Observer) Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.observers[id] = o
	n.order = append(n.order, id)
	return id
}

// SubscribeFunc registers a function observer
func (n *StatusNotifier) SubscribeFunc(fn func()) Subscription {
	return n.Subscribe(ObserverFunc(fn))
}

// Unsubscribe removes an observer; unknown subscriptions are ignored
func (n *StatusNotifier) Unsubscribe(id Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.observers[id]; !ok {
		return
	}
	delete(n.observers, id)
	for i, sid := range n.order {
		if sid == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (n *StatusNotifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

// Notify calls every observer synchronously
// Observers run without the notifier lock held and may subscribe or unsubscribe
func (n *StatusNotifier) Notify() {
	n.mu.RLock()
	snapshot := make([]Observer, 0, len(n.order))
	for _, id := range n.order {
		snapshot = append(snapshot, n.observers[id])
	}
	n.mu.RUnlock()

	for _, o := range snapshot {
		n.deliver(o)
	}
}

func (n *StatusNotifier) deliver(o Observer) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("status observer panicked", zap.Any("panic", r))
		}
	}()
	o.StatusChanged()
}
