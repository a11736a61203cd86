package main

import (
	"sync"
)

const buffer = 64

// fanout hands each published value to every subscriber without blocking.
// Subscribers that fall behind lose values.
type fanout[T any] struct {
	mut     sync.Mutex
	subs    []chan<- T
	dropped int
}

func NewFanout[T any]() *fanout[T] {
	return &fanout[T]{}
}

// Publish returns the number of subscribers the value could not be given
// to.
func (s *fanout[T]) Publish(val T) int {
	s.mut.Lock()
	defer s.mut.Unlock()
	dropped := 0
	for _, sub := range s.subs {
		select {
		case sub <- val:
		default:
			dropped++
		}
	}
	s.dropped += dropped
	return dropped
}

func (s *fanout[T]) Listen() *fanoutSub[T] {
	ch := make(chan T, buffer)
	s.mut.Lock()
	s.subs = append(s.subs, ch)
	s.mut.Unlock()
	return &fanoutSub[T]{s, ch}
}

func (s *fanout[T]) Len() int {
	s.mut.Lock()
	defer s.mut.Unlock()
	return len(s.subs)
}

func (s *fanout[T]) release(ch chan T) {
	s.mut.Lock()
	defer s.mut.Unlock()
	for i, sub := range s.subs {
		if sub == ch {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

type fanoutSub[T any] struct {
	pubsub *fanout[T]
	ch     chan T
}

func (s *fanoutSub[T]) Channel() <-chan T {
	return s.ch
}

// Close unsubscribes and closes the channel. It is safe to call twice.
func (s *fanoutSub[T]) Close() error {
	s.pubsub.release(s.ch)
	return nil
}
