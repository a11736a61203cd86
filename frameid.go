package xbee

import (
	"sync"

	"calmh.dev/xbee/api"
)

// frameIDs is shared by every connection in the process.
var frameIDs = frameIDCounter{last: 0xFF}

// frameIDCounter hands out frame IDs 1 through 255 in order, wrapping back
// to 1. Zero means "no response wanted" on the wire and is never handed
// out.
type frameIDCounter struct {
	mut  sync.Mutex
	last uint8
}

func (c *frameIDCounter) next() uint8 {
	c.mut.Lock()
	defer c.mut.Unlock()
	if c.last == 0xFF {
		c.last = 1
	} else {
		c.last++
	}
	return c.last
}

// assignFrameID returns f with a fresh frame ID if it uses frame IDs and
// has none set. Other frames are returned unchanged.
func assignFrameID(f api.Frame) api.Frame {
	idf, ok := f.(api.Identified)
	if !ok || idf.FrameID() != 0 {
		return f
	}
	return idf.WithFrameID(frameIDs.next())
}
