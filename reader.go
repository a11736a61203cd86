package xbee

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"calmh.dev/xbee/api"
)

// State is the state of a Reader.
type State int

const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// anyFrameID marks a frame listener that receives every frame and is never
// removed automatically.
const anyFrameID = -1

const readBufferSize = 256

type (
	FrameListener    func(api.Frame)
	DataListener     func(Message)
	IOSampleListener func(IOSample)
)

// RemoteDevice identifies the sender of a received frame. Addresses the
// frame did not carry are api.Unknown64 and api.Unknown16.
type RemoteDevice struct {
	Addr64 api.Addr64
	Addr16 api.Addr16
}

func (d RemoteDevice) String() string {
	if d.Addr64 != api.Unknown64 {
		return d.Addr64.String()
	}
	return d.Addr16.String()
}

// Message is RF data received from a remote module.
type Message struct {
	Remote    RemoteDevice
	Data      []byte
	Broadcast bool
	Frame     api.Frame
}

// IOSample is an IO sample received from a remote module. Sample holds
// the undecoded sample bytes.
type IOSample struct {
	Remote  RemoteDevice
	Sample  []byte
	Options uint8
	Frame   api.Frame
}

type frameSub struct {
	frameID int
	accept  func(api.Frame) bool
	fn      FrameListener
	// inline listeners run on the reader goroutine and must not block.
	inline bool
	box    mailbox
}

func (s *frameSub) selects(f api.Frame) (use, once bool) {
	if s.frameID == anyFrameID {
		return true, false
	}
	id, ok := api.FrameIDOf(f)
	if !ok || int(id) != s.frameID {
		return false, false
	}
	if s.accept != nil && !s.accept(f) {
		return false, false
	}
	return true, true
}

type listener[T any] struct {
	fn  T
	box mailbox
}

// mailbox holds the calls queued for one listener. They run one at a time
// in the order they were posted, on a goroutine that exists only while
// calls are pending.
type mailbox struct {
	mut     sync.Mutex
	pending []func()
	running bool
}

type chunk struct {
	data []byte
	err  error
}

// Reader reads frames from a transport and dispatches them to listeners.
// A Reader runs once; after it has stopped a new one must be created.
type Reader struct {
	t   Transport
	cfg Config
	log *slog.Logger

	frames    registry[*frameSub]
	data      registry[*listener[DataListener]]
	ioSamples registry[*listener[IOSampleListener]]
	workers   *semaphore.Weighted

	chunks   chan chunk
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup

	mut     sync.Mutex
	state   State
	started bool
	err     error
}

func NewReader(t Transport, cfg Config) *Reader {
	cfg = cfg.withDefaults()
	return &Reader{
		t:       t,
		cfg:     cfg,
		log:     cfg.Logger,
		workers: semaphore.NewWeighted(int64(max(cfg.MaxWorkers, 1))),
		chunks:  make(chan chunk),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the reader goroutines. It fails if the reader has been
// started before.
func (r *Reader) Start() error {
	if err := r.cfg.validate(); err != nil {
		return err
	}
	r.mut.Lock()
	defer r.mut.Unlock()
	if r.started {
		return ErrReaderStopped
	}
	select {
	case <-r.stop:
		return ErrReaderStopped
	default:
	}
	if !r.t.IsOpen() {
		return ErrNotOpen
	}
	r.started = true
	r.state = StateRunning

	r.wg.Add(2)
	go r.pump()
	go r.loop()
	go func() {
		r.wg.Wait()
		close(r.done)
	}()
	return nil
}

// Stop stops the reader and closes the transport, then waits for the
// reader to exit. It is safe to call more than once, including from a
// listener. Listener calls queued before Stop may still run after it
// returns.
func (r *Reader) Stop() {
	r.shutdown(nil)
	r.mut.Lock()
	started := r.started
	r.mut.Unlock()
	if started {
		<-r.done
	}
}

func (r *Reader) shutdown(cause error) {
	r.stopOnce.Do(func() {
		r.mut.Lock()
		r.state = StateStopped
		r.err = cause
		r.mut.Unlock()
		close(r.stop)
		if r.t.IsOpen() {
			if err := r.t.Close(); err != nil {
				r.log.Debug("closing transport", "error", err)
			}
		}
	})
}

func (r *Reader) State() State {
	r.mut.Lock()
	defer r.mut.Unlock()
	return r.state
}

// Done is closed once the reader has exited.
func (r *Reader) Done() <-chan struct{} {
	return r.done
}

// Err returns the transport error that stopped the reader, or nil if it
// was stopped by Stop or is still running.
func (r *Reader) Err() error {
	r.mut.Lock()
	defer r.mut.Unlock()
	return r.err
}

// AddFrameListener registers fn for every frame received.
func (r *Reader) AddFrameListener(fn FrameListener) ListenerID {
	return r.frames.add(&frameSub{frameID: anyFrameID, fn: fn})
}

// AddFrameIDListener registers fn for the next frame carrying the given
// frame ID. The listener is removed once it has been called.
func (r *Reader) AddFrameIDListener(frameID uint8, fn FrameListener) ListenerID {
	return r.frames.add(&frameSub{frameID: int(frameID), fn: fn})
}

// addResponseListener registers fn for the next frame with the given frame
// ID that accept also approves. fn runs on the reader goroutine.
func (r *Reader) addResponseListener(frameID uint8, accept func(api.Frame) bool, fn FrameListener) ListenerID {
	return r.frames.add(&frameSub{frameID: int(frameID), accept: accept, fn: fn, inline: true})
}

func (r *Reader) RemoveFrameListener(id ListenerID) {
	r.frames.remove(id)
}

// AddDataListener registers fn for RF data received from remote modules.
func (r *Reader) AddDataListener(fn DataListener) ListenerID {
	return r.data.add(&listener[DataListener]{fn: fn})
}

func (r *Reader) RemoveDataListener(id ListenerID) {
	r.data.remove(id)
}

// AddIOSampleListener registers fn for IO samples received from remote
// modules.
func (r *Reader) AddIOSampleListener(fn IOSampleListener) ListenerID {
	return r.ioSamples.add(&listener[IOSampleListener]{fn: fn})
}

func (r *Reader) RemoveIOSampleListener(id ListenerID) {
	r.ioSamples.remove(id)
}

// pump moves bytes from the transport to the loop. Data returned together
// with an error is handed over before the error.
func (r *Reader) pump() {
	defer r.wg.Done()
	buf := make([]byte, readBufferSize)
	for {
		n, err := r.t.Read(buf)
		if n > 0 && !r.handOver(chunk{data: bytes.Clone(buf[:n])}) {
			return
		}
		if err != nil {
			r.handOver(chunk{err: err})
			return
		}
		if n == 0 {
			select {
			case <-r.stop:
				return
			default:
			}
		}
	}
}

// handOver passes c to the loop. It returns false if the reader stopped
// first.
func (r *Reader) handOver(c chunk) bool {
	select {
	case r.chunks <- c:
		return true
	case <-r.stop:
		return false
	}
}

func (r *Reader) loop() {
	defer r.wg.Done()
	src := &byteSource{r: r, timeout: r.cfg.ByteTimeout}
	discarded := 0
	for {
		b, err := src.wait()
		if err != nil {
			r.exit(err)
			return
		}
		if b != api.Delimiter {
			discarded++
			continue
		}
		if discarded > 0 {
			r.log.Debug("discarded bytes before frame", "count", discarded)
			discarded = 0
		}

		f, err := api.ReadFrame(src, r.cfg.Mode)
		if src.err != nil {
			r.exit(src.err)
			return
		}
		if err != nil {
			r.log.Warn("dropping malformed frame", "error", err)
			if r.cfg.OnParseError != nil {
				r.cfg.OnParseError(err)
			}
			continue
		}
		r.dispatch(f)
	}
}

func (r *Reader) exit(err error) {
	if errors.Is(err, ErrReaderStopped) {
		return
	}
	select {
	case <-r.stop:
		// The transport error is the result of Stop closing it.
		return
	default:
	}
	r.log.Error("reader stopped", "error", err)
	r.shutdown(&IOError{Op: "read", Err: err})
}

// dispatch hands f to every interested listener without waiting for any
// of them.
func (r *Reader) dispatch(f api.Frame) {
	for _, s := range r.frames.take(func(s *frameSub) (bool, bool) { return s.selects(f) }) {
		fn := s.fn
		if s.inline {
			r.invoke(func() { fn(f) })
			continue
		}
		r.post(&s.box, func() { fn(f) })
	}

	if msg, ok := messageFrom(f); ok {
		for _, l := range r.data.all() {
			fn := l.fn
			r.post(&l.box, func() { fn(msg) })
		}
	}
	if sample, ok := ioSampleFrom(f); ok {
		for _, l := range r.ioSamples.all() {
			fn := l.fn
			r.post(&l.box, func() { fn(sample) })
		}
	}
}

// post queues call on m and makes sure a goroutine is draining it.
func (r *Reader) post(m *mailbox, call func()) {
	m.mut.Lock()
	m.pending = append(m.pending, call)
	if m.running {
		m.mut.Unlock()
		return
	}
	m.running = true
	m.mut.Unlock()
	go r.drain(m)
}

// drain runs the calls queued on m in order until it is empty. At most
// MaxWorkers listener calls run at the same time across the reader.
func (r *Reader) drain(m *mailbox) {
	for {
		m.mut.Lock()
		if len(m.pending) == 0 {
			m.running = false
			m.pending = nil
			m.mut.Unlock()
			return
		}
		call := m.pending[0]
		m.pending[0] = nil
		m.pending = m.pending[1:]
		m.mut.Unlock()

		_ = r.workers.Acquire(context.Background(), 1)
		r.invoke(call)
		r.workers.Release(1)
	}
}

func (r *Reader) invoke(call func()) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("listener panicked", "panic", fmt.Sprint(p))
		}
	}()
	call()
}

func messageFrom(f api.Frame) (Message, bool) {
	switch f := f.(type) {
	case api.ReceivePacket:
		return Message{
			Remote:    RemoteDevice{Addr64: f.Source64, Addr16: f.Source16},
			Data:      f.Data,
			Broadcast: f.Options&api.OptionBroadcast != 0,
			Frame:     f,
		}, true
	case api.RX64:
		return Message{
			Remote:    RemoteDevice{Addr64: f.Source64, Addr16: api.Unknown16},
			Data:      f.Data,
			Broadcast: f.Options&api.OptionBroadcast != 0,
			Frame:     f,
		}, true
	case api.RX16:
		return Message{
			Remote:    RemoteDevice{Addr64: api.Unknown64, Addr16: f.Source16},
			Data:      f.Data,
			Broadcast: f.Options&api.OptionBroadcast != 0,
			Frame:     f,
		}, true
	case api.ExplicitRxIndicator:
		return Message{
			Remote:    RemoteDevice{Addr64: f.Source64, Addr16: f.Source16},
			Data:      f.Data,
			Broadcast: f.Options&api.OptionBroadcast != 0,
			Frame:     f,
		}, true
	}
	return Message{}, false
}

func ioSampleFrom(f api.Frame) (IOSample, bool) {
	switch f := f.(type) {
	case api.IODataSampleRxIndicator:
		return IOSample{
			Remote:  RemoteDevice{Addr64: f.Source64, Addr16: f.Source16},
			Sample:  f.Sample,
			Options: f.Options,
			Frame:   f,
		}, true
	case api.RX64IO:
		return IOSample{
			Remote:  RemoteDevice{Addr64: f.Source64, Addr16: api.Unknown16},
			Sample:  f.Sample,
			Options: f.Options,
			Frame:   f,
		}, true
	case api.RX16IO:
		return IOSample{
			Remote:  RemoteDevice{Addr64: api.Unknown64, Addr16: f.Source16},
			Sample:  f.Sample,
			Options: f.Options,
			Frame:   f,
		}, true
	}
	return IOSample{}, false
}

var errByteTimeout = errors.New("no data within byte timeout")

// byteSource feeds the parser from the chunks handed over by the pump.
// err is set once the transport has failed or the reader is stopping.
type byteSource struct {
	r       *Reader
	timeout time.Duration
	buf     []byte
	err     error
}

// wait returns the next byte, blocking until one arrives or the reader
// stops.
func (s *byteSource) wait() (byte, error) {
	return s.next(nil)
}

// ReadByte returns the next byte, waiting at most the byte timeout.
func (s *byteSource) ReadByte() (byte, error) {
	t := time.NewTimer(s.timeout)
	defer t.Stop()
	return s.next(t.C)
}

func (s *byteSource) next(timeout <-chan time.Time) (byte, error) {
	for len(s.buf) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		select {
		case c := <-s.r.chunks:
			if c.err != nil {
				s.err = c.err
				return 0, c.err
			}
			s.buf = c.data
		case <-timeout:
			return 0, errByteTimeout
		case <-s.r.stop:
			s.err = ErrReaderStopped
			return 0, s.err
		}
	}
	b := s.buf[0]
	s.buf = s.buf[1:]
	return b, nil
}
