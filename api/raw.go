package api

// RawFrame is a frame of a type without a dedicated decoder, including
// discriminators missing from the frame type table. The payload is kept
// exactly as received.
type RawFrame struct {
	FrameType FrameType
	Data      []byte
}

func (f RawFrame) Type() FrameType { return f.FrameType }
func (f RawFrame) Payload() []byte { return f.Data }

func (f RawFrame) Params() []Param {
	return []Param{{Name: "Payload", Value: hexString(f.Data)}}
}
