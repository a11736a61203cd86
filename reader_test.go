package xbee_test

import (
	"errors"
	"testing"
	"time"

	"calmh.dev/xbee"
	"calmh.dev/xbee/api"
	"calmh.dev/xbee/internal/xbeetest"
)

const waitTime = 2 * time.Second

func openConn(t *testing.T, mode api.Mode, tweak ...func(*xbee.Config)) (*xbee.Conn, *xbeetest.Transport) {
	t.Helper()
	tr := xbeetest.New(mode)
	cfg := xbee.DefaultConfig()
	cfg.Mode = mode
	for _, fn := range tweak {
		fn(&cfg)
	}
	conn, err := xbee.Open(tr, cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, tr
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitTime):
		t.Fatal("timeout waiting for dispatch")
	}
	var zero T
	return zero
}

func TestReaderDispatchesData(t *testing.T) {
	conn, tr := openConn(t, api.ModeAPI)

	frames := make(chan api.Frame, 4)
	msgs := make(chan xbee.Message, 4)
	samples := make(chan xbee.IOSample, 4)
	conn.AddFrameListener(func(f api.Frame) { frames <- f })
	conn.AddDataListener(func(m xbee.Message) { msgs <- m })
	conn.AddIOSampleListener(func(s xbee.IOSample) { samples <- s })

	tr.FeedFrame(api.ReceivePacket{
		Source64: 0x0013A20040A1B2C3,
		Source16: 0x1234,
		Options:  api.OptionPacketAcknowledged | api.OptionBroadcast,
		Data:     []byte("hello"),
	})

	if f := recv(t, frames); f.Type() != api.TypeReceivePacket {
		t.Error("invalid frame type", f.Type())
	}
	m := recv(t, msgs)
	if m.Remote.Addr64 != 0x0013A20040A1B2C3 {
		t.Error("invalid remote", m.Remote)
	}
	if !m.Broadcast {
		t.Error("broadcast flag not set")
	}
	if string(m.Data) != "hello" {
		t.Errorf("invalid data %q", m.Data)
	}

	tr.FeedFrame(api.RX16{Source16: 0x0002, Data: []byte{1}})
	m = recv(t, msgs)
	if m.Broadcast {
		t.Error("unicast frame reported as broadcast")
	}
	if m.Remote.Addr64 != api.Unknown64 || m.Remote.Addr16 != 0x0002 {
		t.Error("invalid remote", m.Remote)
	}

	select {
	case s := <-samples:
		t.Fatal("data frame dispatched as IO sample", s)
	default:
	}
}

func TestReaderDispatchesIOSamples(t *testing.T) {
	conn, tr := openConn(t, api.ModeAPIEscaped)

	samples := make(chan xbee.IOSample, 4)
	msgs := make(chan xbee.Message, 4)
	conn.AddIOSampleListener(func(s xbee.IOSample) { samples <- s })
	conn.AddDataListener(func(m xbee.Message) { msgs <- m })

	tr.FeedFrame(api.IODataSampleRxIndicator{
		Source64: 0x0013A2004011137E,
		Source16: 0x7D33,
		Options:  0x01,
		Sample:   []byte{0x01, 0x00, 0x02, 0x00, 0x02},
	})
	s := recv(t, samples)
	if s.Remote.Addr64 != 0x0013A2004011137E || s.Remote.Addr16 != 0x7D33 {
		t.Error("invalid remote", s.Remote)
	}
	if len(s.Sample) != 5 {
		t.Error("invalid sample", s.Sample)
	}

	tr.FeedFrame(api.RX64IO{Source64: 0x0013A20040A1B2C3, RSSI: 0x30, Sample: []byte{0x01}})
	s = recv(t, samples)
	if s.Remote.Addr16 != api.Unknown16 {
		t.Error("invalid remote", s.Remote)
	}

	select {
	case m := <-msgs:
		t.Fatal("IO sample dispatched as data", m)
	default:
	}
}

func TestFrameIDListenerFiresOnce(t *testing.T) {
	conn, tr := openConn(t, api.ModeAPI)

	calls := make(chan api.Frame, 4)
	conn.AddFrameIDListener(7, func(f api.Frame) { calls <- f })
	frames := make(chan api.Frame, 4)
	conn.AddFrameListener(func(f api.Frame) { frames <- f })

	tr.FeedFrame(api.ATCommandResponse{ID: 7, Command: "NI"})
	tr.FeedFrame(api.ATCommandResponse{ID: 7, Command: "NI"})

	recv(t, frames)
	recv(t, frames)
	if f := recv(t, calls); f.(api.ATCommandResponse).ID != 7 {
		t.Error("unexpected frame", f)
	}
	select {
	case f := <-calls:
		t.Fatal("frame id listener called twice", f)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFrameIDListenerIgnoresOtherIDs(t *testing.T) {
	conn, tr := openConn(t, api.ModeAPI)

	calls := make(chan api.Frame, 4)
	conn.AddFrameIDListener(0xFF, func(f api.Frame) { calls <- f })

	tr.FeedFrame(api.ATCommandResponse{ID: 0xFE, Command: "NI"})
	tr.FeedFrame(api.ModemStatus{Status: 0xFF})
	tr.FeedFrame(api.TXStatus{ID: 0xFF})

	if f := recv(t, calls); f.Type() != api.TypeTXStatus {
		t.Error("unexpected frame", f)
	}
}

func TestRemoveListener(t *testing.T) {
	conn, tr := openConn(t, api.ModeAPI)

	removed := make(chan api.Frame, 4)
	id := conn.AddFrameListener(func(f api.Frame) { removed <- f })
	conn.RemoveFrameListener(id)
	conn.RemoveFrameListener(id)
	conn.RemoveDataListener(id)

	kept := make(chan api.Frame, 4)
	conn.AddFrameListener(func(f api.Frame) { kept <- f })

	tr.FeedFrame(api.ModemStatus{})
	recv(t, kept)
	if len(removed) != 0 {
		t.Fatal("removed listener was called")
	}
}

func TestReaderSkipsNoise(t *testing.T) {
	conn, tr := openConn(t, api.ModeAPI)

	frames := make(chan api.Frame, 4)
	conn.AddFrameListener(func(f api.Frame) { frames <- f })

	tr.Feed(append([]byte{0x05}, api.Marshal(api.ModemStatus{Status: 0x06}, false)...))
	f := recv(t, frames)
	if ms, ok := f.(api.ModemStatus); !ok || ms.Status != 0x06 {
		t.Fatal("unexpected frame", f)
	}
	select {
	case f := <-frames:
		t.Fatal("unexpected second frame", f)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReaderContinuesAfterParseError(t *testing.T) {
	parseErrs := make(chan error, 4)
	conn, tr := openConn(t, api.ModeAPI, func(cfg *xbee.Config) {
		cfg.OnParseError = func(err error) { parseErrs <- err }
	})

	frames := make(chan api.Frame, 4)
	conn.AddFrameListener(func(f api.Frame) { frames <- f })

	bad := api.Marshal(api.ModemStatus{Status: 0x01}, false)
	bad[len(bad)-1] ^= 0xFF
	tr.Feed(bad)
	tr.FeedFrame(api.ModemStatus{Status: 0x02})

	if err := recv(t, parseErrs); !errors.Is(err, api.ErrBadChecksum) {
		t.Error("expected bad checksum, got", err)
	}
	if ms := recv(t, frames).(api.ModemStatus); ms.Status != 0x02 {
		t.Error("invalid status", ms.Status)
	}
	if conn.State() != xbee.StateRunning {
		t.Error("reader stopped after parse error")
	}
}

func TestReaderTruncatedFrame(t *testing.T) {
	parseErrs := make(chan error, 4)
	conn, tr := openConn(t, api.ModeAPI, func(cfg *xbee.Config) {
		cfg.ByteTimeout = 20 * time.Millisecond
		cfg.OnParseError = func(err error) { parseErrs <- err }
	})

	frames := make(chan api.Frame, 4)
	conn.AddFrameListener(func(f api.Frame) { frames <- f })

	tr.Feed([]byte{0x7E, 0x00, 0x04, 0x08})
	if err := recv(t, parseErrs); !errors.Is(err, api.ErrTruncated) {
		t.Fatal("expected truncated frame, got", err)
	}

	tr.FeedFrame(api.ModemStatus{Status: 0x00})
	if f := recv(t, frames); f.Type() != api.TypeModemStatus {
		t.Error("unexpected frame", f)
	}
}

func TestReaderDeliversDataBeforeFailure(t *testing.T) {
	conn, tr := openConn(t, api.ModeAPI)

	frames := make(chan api.Frame, 4)
	conn.AddFrameListener(func(f api.Frame) { frames <- f })

	unplugged := errors.New("device unplugged")
	tr.Hangup(api.Marshal(api.ModemStatus{Status: 0x01}, false), unplugged)

	if ms := recv(t, frames).(api.ModemStatus); ms.Status != 0x01 {
		t.Error("invalid status", ms.Status)
	}
	select {
	case <-conn.Done():
	case <-time.After(waitTime):
		t.Fatal("reader did not stop")
	}
	if err := conn.Err(); !errors.Is(err, unplugged) {
		t.Error("unexpected error", err)
	}
}

func TestReaderTransportFailure(t *testing.T) {
	conn, tr := openConn(t, api.ModeAPI)

	unplugged := errors.New("device unplugged")
	tr.Fail(unplugged)

	select {
	case <-conn.Done():
	case <-time.After(waitTime):
		t.Fatal("reader did not stop")
	}
	if conn.State() != xbee.StateStopped {
		t.Error("invalid state", conn.State())
	}
	var ioErr *xbee.IOError
	if err := conn.Err(); !errors.As(err, &ioErr) || !errors.Is(err, unplugged) {
		t.Error("unexpected error", err)
	}
	if tr.IsOpen() {
		t.Error("transport left open")
	}
}

func TestReaderStop(t *testing.T) {
	conn, tr := openConn(t, api.ModeAPI)

	conn.Stop()
	conn.Stop()
	select {
	case <-conn.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}
	if err := conn.Err(); err != nil {
		t.Error("unexpected error after Stop", err)
	}
	if tr.IsOpen() {
		t.Error("transport left open")
	}
	if err := conn.Start(); !errors.Is(err, xbee.ErrReaderStopped) {
		t.Error("restarting a stopped reader should fail, got", err)
	}
}

func TestListenerPanic(t *testing.T) {
	conn, tr := openConn(t, api.ModeAPI)

	frames := make(chan api.Frame, 4)
	conn.AddFrameListener(func(f api.Frame) { panic("listener bug") })
	conn.AddFrameListener(func(f api.Frame) { frames <- f })

	tr.FeedFrame(api.ModemStatus{Status: 0x00})
	tr.FeedFrame(api.ModemStatus{Status: 0x01})
	recv(t, frames)
	recv(t, frames)
}

func TestSlowListenerDoesNotBlockOthers(t *testing.T) {
	conn, tr := openConn(t, api.ModeAPI)

	release := make(chan struct{})
	defer close(release)
	stuck := make(chan api.Frame, 16)
	conn.AddFrameListener(func(f api.Frame) {
		stuck <- f
		<-release
	})
	frames := make(chan api.Frame, 16)
	conn.AddFrameListener(func(f api.Frame) { frames <- f })

	for i := 0; i < 5; i++ {
		tr.FeedFrame(api.ModemStatus{Status: api.ModemStatusCode(i)})
	}
	for i := 0; i < 5; i++ {
		recv(t, frames)
	}
	if n := len(stuck); n != 1 {
		t.Error("blocked listener got", n, "frames")
	}
}

func TestListenerSeesFramesInOrder(t *testing.T) {
	conn, tr := openConn(t, api.ModeAPI, func(cfg *xbee.Config) {
		cfg.MaxWorkers = 2
	})

	const count = 50
	var lists [3]chan uint8
	for i := range lists {
		ch := make(chan uint8, count)
		lists[i] = ch
		slow := i%2 == 0
		conn.AddFrameListener(func(f api.Frame) {
			if slow {
				time.Sleep(time.Millisecond)
			}
			ch <- uint8(f.(api.ModemStatus).Status)
		})
	}

	for i := 0; i < count; i++ {
		tr.FeedFrame(api.ModemStatus{Status: api.ModemStatusCode(i)})
	}
	for _, ch := range lists {
		for i := 0; i < count; i++ {
			if got := recv(t, ch); got != uint8(i) {
				t.Fatal("frame", got, "delivered at position", i)
			}
		}
	}
}

func TestStopFromListener(t *testing.T) {
	conn, tr := openConn(t, api.ModeAPI)

	stopped := make(chan struct{})
	conn.AddFrameListener(func(f api.Frame) {
		conn.Stop()
		close(stopped)
	})
	tr.FeedFrame(api.ModemStatus{})

	recv(t, stopped)
	if conn.State() != xbee.StateStopped {
		t.Error("invalid state", conn.State())
	}
}
