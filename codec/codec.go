package codec

import (
	"io"

	"github.com/driftkv/driftkv/model"
)

// Codec marshals log records to their framed on-disk form and reads
// them back from a stream. Implement it to swap the wire format.
type Codec interface {
	// MarshalRecord returns the framed bytes and their size.
	MarshalRecord(*model.Record) ([]byte, int64, error)

	// ReadRecord consumes exactly one frame from r and verifies it.
	// It returns io.EOF at a clean end of stream, ErrTornTail when the
	// stream ends inside a frame, ErrBadChecksum when the stored CRC
	// does not match, and ErrBadKind for an unknown record kind.
	ReadRecord(r io.Reader) (*model.Record, error)
}
