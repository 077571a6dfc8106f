package codec

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/driftkv/driftkv/model"
	"github.com/driftkv/driftkv/utils"
)

var (
	ErrTornTail    = errors.New("codec: incomplete frame at end of stream")
	ErrBadChecksum = errors.New("codec: checksum mismatch")
	ErrBadKind     = errors.New("codec: unknown record kind")
)

// HeaderSize is the fixed frame header:
// crc(4) + keyLen(4) + valueLen(4) + kind(1).
const HeaderSize = 13

type CodecImpl struct{}

func NewCodecImpl() *CodecImpl {
	return &CodecImpl{}
}

var _ Codec = (*CodecImpl)(nil)

/*
frame layout, little-endian:
	crc | keyLen | valueLen | kind | key | value
the crc covers everything after itself.
*/

func (cl *CodecImpl) MarshalRecord(record *model.Record) ([]byte, int64, error) {
	size := HeaderSize + len(record.Key) + len(record.Value)
	data := make([]byte, size)

	binary.LittleEndian.PutUint32(data[4:8], uint32(len(record.Key)))
	binary.LittleEndian.PutUint32(data[8:12], uint32(len(record.Value)))
	data[12] = byte(record.Kind)

	idx := HeaderSize
	idx += copy(data[idx:], record.Key)
	copy(data[idx:], record.Value)

	binary.LittleEndian.PutUint32(data[:4], utils.GenerateCrc(data[4:]))

	return data, int64(size), nil
}

func (cl *CodecImpl) ReadRecord(r io.Reader) (*model.Record, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		switch {
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, ErrTornTail
		case errors.Is(err, io.EOF):
			return nil, io.EOF
		default:
			return nil, err
		}
	}

	crc := binary.LittleEndian.Uint32(header[:4])
	keySize := binary.LittleEndian.Uint32(header[4:8])
	valueSize := binary.LittleEndian.Uint32(header[8:12])

	body := make([]byte, int64(keySize)+int64(valueSize))
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrTornTail
		}
		return nil, err
	}

	if !utils.CheckCrc(crc, append(header[4:], body...)) {
		return nil, ErrBadChecksum
	}

	kind := model.RecordKind(header[12])
	if kind != model.RecordPut && kind != model.RecordDelete {
		return nil, ErrBadKind
	}

	return &model.Record{
		Kind:  kind,
		Key:   body[:keySize],
		Value: body[keySize:],
	}, nil
}
