package api

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Addr64 is the 64-bit IEEE address of a module.
type Addr64 uint64

const (
	Coordinator64 Addr64 = 0x0000000000000000
	Broadcast64   Addr64 = 0x000000000000FFFF
	Unknown64     Addr64 = 0xFFFFFFFFFFFFFFFF
)

func (a Addr64) String() string {
	return fmt.Sprintf("%016X", uint64(a))
}

func (a Addr64) appendTo(b []byte) []byte {
	return binary.BigEndian.AppendUint64(b, uint64(a))
}

// ParseAddr64 parses a hex address, with or without separators
// ("0013A20040A1B2C3", "00:13:A2:00:40:A1:B2:C3").
func ParseAddr64(s string) (Addr64, error) {
	clean := strings.NewReplacer(":", "", "-", "", " ", "").Replace(s)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
	if len(clean) == 0 || len(clean) > 16 {
		return 0, fmt.Errorf("invalid 64-bit address %q", s)
	}
	v, err := strconv.ParseUint(clean, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid 64-bit address %q", s)
	}
	return Addr64(v), nil
}

// Addr16 is the 16-bit network address of a module.
type Addr16 uint16

const (
	Coordinator16 Addr16 = 0x0000
	Broadcast16   Addr16 = 0xFFFF
	Unknown16     Addr16 = 0xFFFE
)

func (a Addr16) String() string {
	return fmt.Sprintf("%04X", uint16(a))
}

func (a Addr16) appendTo(b []byte) []byte {
	return binary.BigEndian.AppendUint16(b, uint16(a))
}

// Receive options bits shared by the receive frame types.
const (
	OptionPacketAcknowledged = 0x01
	OptionBroadcast          = 0x02
	OptionPANBroadcast       = 0x04
)
