package api

import (
	"testing"
	"testing/quick"
)

func TestChecksumGenerateValidate(t *testing.T) {
	f := func(body []byte) bool {
		var c Checksum
		c.Write(body)
		cs := c.Generate()

		var v Checksum
		v.Write(body)
		v.Add(cs)
		return v.Validate()
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestChecksumSingleBitFlip(t *testing.T) {
	f := func(body []byte, pos uint, bit uint8) bool {
		frame := append(append([]byte(nil), body...), ChecksumOf(body))
		i := int(pos % uint(len(frame)))
		frame[i] ^= 1 << (bit % 8)

		var v Checksum
		v.Write(frame)
		return !v.Validate()
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestChecksumEmpty(t *testing.T) {
	var c Checksum
	c.Write(nil)
	if cs := c.Generate(); cs != 0xFF {
		t.Errorf("checksum of nothing = %02X, want FF", cs)
	}
	c.Add(0xFF)
	if !c.Validate() {
		t.Error("FF should validate an empty body")
	}
}

func TestChecksumReset(t *testing.T) {
	var c Checksum
	c.Write([]byte{0x01, 0x02, 0x03})
	c.Reset()
	c.Write([]byte{0x08, 0x01, 0x4E, 0x49})
	if cs := c.Generate(); cs != 0x5F {
		t.Errorf("checksum = %02X, want 5F", cs)
	}
}
