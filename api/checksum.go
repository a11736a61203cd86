package api

// Checksum is the running 8-bit additive checksum of an API frame. Only the
// low 8 bits of the accumulator are ever consulted.
type Checksum struct {
	acc int
}

func (c *Checksum) Reset() {
	c.acc = 0
}

func (c *Checksum) Add(b byte) {
	c.acc += int(b)
}

// Write adds every byte of p. It never fails.
func (c *Checksum) Write(p []byte) (int, error) {
	for _, b := range p {
		c.acc += int(b)
	}
	return len(p), nil
}

// Generate returns the checksum byte that completes the accumulated bytes.
func (c *Checksum) Generate() byte {
	return byte(0xFF - (c.acc & 0xFF))
}

// Validate reports whether the accumulated bytes, including a trailing
// checksum byte, form a valid frame body.
func (c *Checksum) Validate() bool {
	return c.acc&0xFF == 0xFF
}

// ChecksumOf returns the checksum byte for the frame body p.
func ChecksumOf(p []byte) byte {
	var c Checksum
	c.Write(p)
	return c.Generate()
}
