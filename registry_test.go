package xbee

import (
	"sync"
	"sync/atomic"
	"testing"

	"calmh.dev/xbee/api"
)

func TestRegistryRemove(t *testing.T) {
	var r registry[int]
	a := r.add(1)
	b := r.add(2)
	r.remove(a)
	r.remove(a)
	r.remove(ListenerID(12345))
	if vals := r.all(); len(vals) != 1 || vals[0] != 2 {
		t.Fatal("unexpected listeners", vals)
	}
	r.remove(b)
	if r.len() != 0 {
		t.Fatal("registry not empty", r.len())
	}
}

func TestRegistryRemoveReleasesListener(t *testing.T) {
	var r registry[*frameSub]
	a := r.add(&frameSub{frameID: 1})
	r.add(&frameSub{frameID: 2})
	r.add(&frameSub{frameID: 3})
	r.remove(a)

	if r.len() != 2 {
		t.Fatal("invalid listener count", r.len())
	}
	if tail := r.subs[:3][2]; tail.val != nil || tail.id != 0 {
		t.Error("removed slot still holds a listener", tail)
	}
	if vals := r.all(); vals[0].frameID != 2 || vals[1].frameID != 3 {
		t.Error("listeners out of order", vals[0].frameID, vals[1].frameID)
	}
}

func TestRegistryTakeOnce(t *testing.T) {
	var r registry[*frameSub]
	r.add(&frameSub{frameID: 5})
	r.add(&frameSub{frameID: anyFrameID})
	r.add(&frameSub{frameID: 6})

	f := api.ATCommandResponse{ID: 5, Command: "NI"}
	sel := func(s *frameSub) (bool, bool) { return s.selects(f) }

	if subs := r.take(sel); len(subs) != 2 {
		t.Fatal("first dispatch should select two listeners, got", len(subs))
	}
	if subs := r.take(sel); len(subs) != 1 || subs[0].frameID != anyFrameID {
		t.Fatal("second dispatch should select only the persistent listener", subs)
	}
	if r.len() != 2 {
		t.Error("invalid listener count", r.len())
	}
}

func TestRegistryTakeOnceConcurrent(t *testing.T) {
	var r registry[*frameSub]
	r.add(&frameSub{frameID: 9})
	f := api.TXStatus{ID: 9}

	var taken atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			subs := r.take(func(s *frameSub) (bool, bool) { return s.selects(f) })
			taken.Add(int32(len(subs)))
		}()
	}
	wg.Wait()
	if n := taken.Load(); n != 1 {
		t.Fatal("one-shot listener selected", n, "times")
	}
}

func TestFrameSubAccept(t *testing.T) {
	s := &frameSub{frameID: 3, accept: atResponseFor("SH")}
	if use, _ := s.selects(api.ATCommandResponse{ID: 3, Command: "SL"}); use {
		t.Error("response to another command accepted")
	}
	if use, _ := s.selects(api.ATCommandResponse{ID: 4, Command: "SH"}); use {
		t.Error("response with another frame id accepted")
	}
	if use, once := s.selects(api.ATCommandResponse{ID: 3, Command: "SH"}); !use || !once {
		t.Error("matching response not accepted")
	}
	if use, _ := s.selects(api.ModemStatus{}); use {
		t.Error("frame without id accepted")
	}
}
