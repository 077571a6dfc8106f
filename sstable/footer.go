package sstable

import (
	"encoding/binary"
	"errors"
)

// MagicNumber marks the last 8 bytes of every table file.
const MagicNumber uint64 = 0xdb4775248b80fb57

const (
	// FooterSize is fixed: metaindex handle (20) + index handle (20) +
	// magic (8).
	FooterSize = 48

	handleSize = 20
)

var ErrBadMagic = errors.New("sstable: bad magic number")

// BlockHandle locates a block inside the file.
type BlockHandle struct {
	Offset uint64
	Size   uint64
}

// Footer is the fixed-size trailer. The metaindex handle is reserved
// and zero-filled for now.
type Footer struct {
	MetaindexHandle BlockHandle
	IndexHandle     BlockHandle
}

// encodeHandle lays a handle out as offset(8) | size(8) | padding(4).
func encodeHandle(buf []byte, handle BlockHandle) {
	binary.LittleEndian.PutUint64(buf[0:8], handle.Offset)
	binary.LittleEndian.PutUint64(buf[8:16], handle.Size)
}

func decodeHandle(buf []byte) BlockHandle {
	return BlockHandle{
		Offset: binary.LittleEndian.Uint64(buf[0:8]),
		Size:   binary.LittleEndian.Uint64(buf[8:16]),
	}
}

func (f *Footer) Encode() []byte {
	buf := make([]byte, FooterSize)
	encodeHandle(buf[0:handleSize], f.MetaindexHandle)
	encodeHandle(buf[handleSize:2*handleSize], f.IndexHandle)
	binary.LittleEndian.PutUint64(buf[2*handleSize:], MagicNumber)
	return buf
}

// DecodeFooter parses the last FooterSize bytes of a table file.
func DecodeFooter(buf []byte) (*Footer, error) {
	if len(buf) != FooterSize {
		return nil, errors.New("sstable: footer must be 48 bytes")
	}
	if binary.LittleEndian.Uint64(buf[2*handleSize:]) != MagicNumber {
		return nil, ErrBadMagic
	}
	return &Footer{
		MetaindexHandle: decodeHandle(buf[0:handleSize]),
		IndexHandle:     decodeHandle(buf[handleSize : 2*handleSize]),
	}, nil
}
