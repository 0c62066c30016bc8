package webstore

import (
	"sync"

	"github.com/google/uuid"
)

// Listener receives the new value of a key, or nil when it was removed.
type Listener func(value any)

// Subscription is the handle returned by Store.On.
type Subscription struct {
	id  string
	key string
	n   *notifier
}

// ID returns the subscription's unique id; empty for a rejected registration.
func (s Subscription) ID() string { return s.id }

// Key returns the fully-qualified key the subscription listens on.
func (s Subscription) Key() string { return s.key }

// Unsubscribe stops further deliveries. Calling it more than once is harmless.
func (s Subscription) Unsubscribe() {
	if s.n != nil {
		s.n.unsubscribe(s.key, s.id)
	}
}

type subscriber struct {
	id string
	fn Listener
}

// notifier fans values out to listeners keyed by fully-qualified key.
// Registering the same function twice yields two deliveries.
type notifier struct {
	mu   sync.RWMutex
	subs map[string][]subscriber
	keys []string // first-registration order
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[string][]subscriber)}
}

func (n *notifier) subscribe(key string, fn Listener) Subscription {
	if fn == nil {
		return Subscription{}
	}
	id := uuid.NewString()

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.subs[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.subs[key] = append(n.subs[key], subscriber{id: id, fn: fn})
	return Subscription{id: id, key: key, n: n}
}

func (n *notifier) unsubscribe(key, id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	list := n.subs[key]
	for i, sub := range list {
		if sub.id == id {
			n.subs[key] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// snapshot copies the listeners so they can run without the lock held
// and may re-enter the Store.
func (n *notifier) snapshot(key string) []Listener {
	n.mu.RLock()
	defer n.mu.RUnlock()
	list := n.subs[key]
	if len(list) == 0 {
		return nil
	}
	fns := make([]Listener, len(list))
	for i, sub := range list {
		fns[i] = sub.fn
	}
	return fns
}

func (n *notifier) publish(key string, value any) {
	for _, fn := range n.snapshot(key) {
		fn(value)
	}
}

// publishAll delivers value to every key that currently has listeners.
func (n *notifier) publishAll(value any) {
	n.mu.RLock()
	keys := make([]string, 0, len(n.keys))
	for _, k := range n.keys {
		if len(n.subs[k]) > 0 {
			keys = append(keys, k)
		}
	}
	n.mu.RUnlock()

	for _, k := range keys {
		n.publish(k, value)
	}
}
