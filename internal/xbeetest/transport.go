// Package xbeetest provides an in-memory transport for testing code built
// on package xbee.
package xbeetest

import (
	"io"
	"sync"
	"time"

	"calmh.dev/xbee"
	"calmh.dev/xbee/api"
)

// readTimeout is how long Read blocks before reporting that nothing
// arrived.
const readTimeout = 10 * time.Millisecond

// Responder is called with every frame written to a Transport and returns
// the frames the simulated module answers with.
type Responder func(api.Frame) []api.Frame

// Transport is an xbee.Transport backed by memory. Bytes given to Feed are
// returned by Read; frames written are decoded and recorded.
type Transport struct {
	mode api.Mode

	mut       sync.Mutex
	open      bool
	pending   []byte
	readErr   error
	written   []api.Frame
	responder Responder
	wake      chan struct{}
}

var _ xbee.Transport = (*Transport)(nil)

// New returns an open transport speaking the given API mode.
func New(mode api.Mode) *Transport {
	return &Transport{
		mode: mode,
		open: true,
		wake: make(chan struct{}, 1),
	}
}

func (t *Transport) Open() error {
	t.mut.Lock()
	defer t.mut.Unlock()
	if t.open {
		return xbee.ErrAlreadyOpen
	}
	t.open = true
	return nil
}

func (t *Transport) Close() error {
	t.mut.Lock()
	defer t.mut.Unlock()
	if !t.open {
		return xbee.ErrNotOpen
	}
	t.open = false
	t.signal()
	return nil
}

func (t *Transport) IsOpen() bool {
	t.mut.Lock()
	defer t.mut.Unlock()
	return t.open
}

func (t *Transport) Read(p []byte) (int, error) {
	for {
		t.mut.Lock()
		switch {
		case len(t.pending) > 0 && (t.open || t.readErr != nil):
			// The last of the pending data comes with the read error,
			// if one is set.
			n := copy(p, t.pending)
			t.pending = t.pending[n:]
			var err error
			if len(t.pending) == 0 {
				err = t.readErr
			}
			t.mut.Unlock()
			return n, err
		case t.readErr != nil:
			err := t.readErr
			t.mut.Unlock()
			return 0, err
		case !t.open:
			t.mut.Unlock()
			return 0, io.EOF
		}
		t.mut.Unlock()

		select {
		case <-t.wake:
		case <-time.After(readTimeout):
			return 0, nil
		}
	}
}

// Write records the frame in p and feeds back whatever the responder
// returns. p must hold exactly one frame.
func (t *Transport) Write(p []byte) (int, error) {
	t.mut.Lock()
	defer t.mut.Unlock()
	if !t.open {
		return 0, xbee.ErrNotOpen
	}
	f, err := api.Decode(p, t.mode)
	if err != nil {
		return 0, err
	}
	t.written = append(t.written, f)
	if t.responder != nil {
		for _, r := range t.responder(f) {
			t.pending = append(t.pending, api.Marshal(r, t.mode.Escaped())...)
		}
		t.signal()
	}
	return len(p), nil
}

// Feed queues raw bytes for Read.
func (t *Transport) Feed(b []byte) {
	t.mut.Lock()
	t.pending = append(t.pending, b...)
	t.signal()
	t.mut.Unlock()
}

// FeedFrame queues the serialized form of f for Read.
func (t *Transport) FeedFrame(f api.Frame) {
	t.Feed(api.Marshal(f, t.mode.Escaped()))
}

// Fail makes every subsequent Read return err.
func (t *Transport) Fail(err error) {
	t.mut.Lock()
	t.readErr = err
	t.signal()
	t.mut.Unlock()
}

// Hangup queues b for Read and makes the Read returning its last byte
// report err as well, as a device that fails mid-transfer does.
func (t *Transport) Hangup(b []byte, err error) {
	t.mut.Lock()
	t.pending = append(t.pending, b...)
	t.readErr = err
	t.signal()
	t.mut.Unlock()
}

// Respond installs r as the responder for frames written from now on.
func (t *Transport) Respond(r Responder) {
	t.mut.Lock()
	t.responder = r
	t.mut.Unlock()
}

// Written returns the frames written so far.
func (t *Transport) Written() []api.Frame {
	t.mut.Lock()
	defer t.mut.Unlock()
	return append([]api.Frame(nil), t.written...)
}

// WaitWritten waits until at least n frames have been written.
func (t *Transport) WaitWritten(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(t.Written()) >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

// signal wakes a blocked Read. Called with mut held.
func (t *Transport) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}
