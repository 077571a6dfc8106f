package codec

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/driftkv/driftkv/model"
	"github.com/driftkv/driftkv/utils"

	"github.com/stretchr/testify/assert"
)

func TestCrcKnownValues(t *testing.T) {
	assert.Equal(t, uint32(0), utils.GenerateCrc(nil))
	assert.Equal(t, uint32(0xCBF43926), utils.GenerateCrc([]byte("123456789")))
}

func TestCodecImpl_MarshalRecord(t *testing.T) {
	cl := NewCodecImpl()
	record := &model.Record{
		Kind:  model.RecordPut,
		Key:   []byte("1"),
		Value: []byte("one"),
	}

	data, size, err := cl.MarshalRecord(record)
	assert.Nil(t, err)
	assert.Equal(t, int64(HeaderSize+1+3), size)
	assert.Equal(t, int64(len(data)), size)

	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(data[8:12]))
	assert.Equal(t, byte(model.RecordPut), data[12])
	assert.Equal(t, []byte("1one"), data[HeaderSize:])

	crc := binary.LittleEndian.Uint32(data[:4])
	assert.True(t, utils.CheckCrc(crc, data[4:]))
}

func TestCodecImpl_RoundTrip(t *testing.T) {
	cl := NewCodecImpl()
	records := []*model.Record{
		{Kind: model.RecordPut, Key: []byte("42"), Value: []byte("answer")},
		{Kind: model.RecordPut, Key: []byte("7"), Value: nil},
		{Kind: model.RecordDelete, Key: []byte("42")},
	}

	var buf bytes.Buffer
	for _, record := range records {
		data, _, err := cl.MarshalRecord(record)
		assert.Nil(t, err)
		buf.Write(data)
	}

	for _, want := range records {
		got, err := cl.ReadRecord(&buf)
		assert.Nil(t, err)
		assert.Equal(t, want.Kind, got.Kind)
		assert.Equal(t, want.Key, got.Key)
		assert.Equal(t, len(want.Value), len(got.Value))
		if len(want.Value) > 0 {
			assert.Equal(t, want.Value, got.Value)
		}
	}

	_, err := cl.ReadRecord(&buf)
	assert.Equal(t, io.EOF, err)
}

func TestCodecImpl_ReadRecord_TornHeader(t *testing.T) {
	cl := NewCodecImpl()

	_, err := cl.ReadRecord(bytes.NewReader([]byte{0, 1, 2, 3, 4}))
	assert.Equal(t, ErrTornTail, err)
}

func TestCodecImpl_ReadRecord_TornBody(t *testing.T) {
	cl := NewCodecImpl()
	data, _, err := cl.MarshalRecord(&model.Record{
		Kind:  model.RecordPut,
		Key:   []byte("1"),
		Value: []byte("value"),
	})
	assert.Nil(t, err)

	// header is intact, body is short
	_, err = cl.ReadRecord(bytes.NewReader(data[:HeaderSize+2]))
	assert.Equal(t, ErrTornTail, err)
}

func TestCodecImpl_ReadRecord_BadChecksum(t *testing.T) {
	cl := NewCodecImpl()
	data, _, err := cl.MarshalRecord(&model.Record{
		Kind:  model.RecordPut,
		Key:   []byte("1"),
		Value: []byte("value"),
	})
	assert.Nil(t, err)

	data[len(data)-1] ^= 0xFF
	_, err = cl.ReadRecord(bytes.NewReader(data))
	assert.Equal(t, ErrBadChecksum, err)
}

func TestCodecImpl_ReadRecord_BadKind(t *testing.T) {
	cl := NewCodecImpl()
	data, _, err := cl.MarshalRecord(&model.Record{
		Kind:  model.RecordKind(2),
		Key:   []byte("1"),
		Value: []byte("value"),
	})
	assert.Nil(t, err)

	// checksum is valid, the kind byte is not
	_, err = cl.ReadRecord(bytes.NewReader(data))
	assert.Equal(t, ErrBadKind, err)
}

func TestCodecImpl_EmptyValue(t *testing.T) {
	cl := NewCodecImpl()
	data, size, err := cl.MarshalRecord(&model.Record{
		Kind: model.RecordDelete,
		Key:  []byte("10"),
	})
	assert.Nil(t, err)
	assert.Equal(t, int64(HeaderSize+2), size)

	got, err := cl.ReadRecord(bytes.NewReader(data))
	assert.Nil(t, err)
	assert.Equal(t, model.RecordDelete, got.Kind)
	assert.Equal(t, []byte("10"), got.Key)
	assert.Empty(t, got.Value)
}
