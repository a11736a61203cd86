package xbee

import (
	"sync"
	"sync/atomic"
)

// ListenerID identifies a registered listener for later removal.
type ListenerID uint64

var lastListenerID atomic.Uint64

type registration[T any] struct {
	id  ListenerID
	val T
}

// registry is a set of listeners of one kind. Each registry has its own
// lock; dispatch to one kind never waits on registrations of another.
type registry[T any] struct {
	mut  sync.Mutex
	subs []registration[T]
}

func (r *registry[T]) add(val T) ListenerID {
	id := ListenerID(lastListenerID.Add(1))
	r.mut.Lock()
	r.subs = append(r.subs, registration[T]{id: id, val: val})
	r.mut.Unlock()
	return id
}

// remove drops the listener with the given ID. Unknown IDs are ignored.
func (r *registry[T]) remove(id ListenerID) {
	r.mut.Lock()
	defer r.mut.Unlock()
	for i, sub := range r.subs {
		if sub.id == id {
			n := len(r.subs) - 1
			copy(r.subs[i:], r.subs[i+1:])
			clear(r.subs[n:])
			r.subs = r.subs[:n]
			return
		}
	}
}

// all returns a copy of the current listeners.
func (r *registry[T]) all() []T {
	r.mut.Lock()
	defer r.mut.Unlock()
	vals := make([]T, len(r.subs))
	for i, sub := range r.subs {
		vals[i] = sub.val
	}
	return vals
}

// take returns the listeners for which sel reports use, and removes those
// for which it also reports once. Selection and removal happen under the
// same lock so a one-shot listener is returned at most once.
func (r *registry[T]) take(sel func(T) (use, once bool)) []T {
	r.mut.Lock()
	defer r.mut.Unlock()
	var vals []T
	kept := r.subs[:0]
	for _, sub := range r.subs {
		use, once := sel(sub.val)
		if use {
			vals = append(vals, sub.val)
		}
		if !use || !once {
			kept = append(kept, sub)
		}
	}
	clear(r.subs[len(kept):])
	r.subs = kept
	return vals
}

func (r *registry[T]) len() int {
	r.mut.Lock()
	defer r.mut.Unlock()
	return len(r.subs)
}
