package xbee

// Transport is a byte stream to a module. Implementations live under
// transport/.
//
// Read blocks until at least one byte is available or an implementation
// defined read timeout expires, in which case it returns (0, nil). Any
// error from Read is treated as the end of the stream. Read and Write are
// called from different goroutines.
type Transport interface {
	Open() error
	Close() error
	IsOpen() bool
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}
