package sstable

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/driftkv/driftkv/utils"
)

// BlockSize is the threshold at which a data block is flushed. Entry
// bytes are counted without the trailing CRC, so on-disk blocks are a
// little larger.
const BlockSize = 4096

var ErrAlreadyFinished = errors.New("sstable: builder already finished")

// Builder serializes an ordered stream of key/value pairs into a
// table file: data blocks, then an index block, then a fixed footer.
//
// Callers must Add keys in strictly increasing order and must not
// share a Builder between goroutines.
type Builder struct {
	file     *os.File
	offset   uint64
	finished bool

	dataBlock  []byte
	indexBlock []byte
	lastKey    []byte
}

// NewBuilder opens path for truncating write.
func NewBuilder(path string) (*Builder, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("sstable: create %s: %w", path, err)
	}
	return &Builder{file: file}, nil
}

// Add appends one entry to the current data block and flushes the
// block once it reaches BlockSize.
//
// entry layout: keyLen(4) | valueLen(4) | key | value
func (b *Builder) Add(key, value []byte) error {
	if b.finished {
		return ErrAlreadyFinished
	}

	b.dataBlock = binary.LittleEndian.AppendUint32(b.dataBlock, uint32(len(key)))
	b.dataBlock = binary.LittleEndian.AppendUint32(b.dataBlock, uint32(len(value)))
	b.dataBlock = append(b.dataBlock, key...)
	b.dataBlock = append(b.dataBlock, value...)

	b.lastKey = append(b.lastKey[:0], key...)

	if len(b.dataBlock) >= BlockSize {
		return b.writeBlock()
	}
	return nil
}

// writeBlock seals the current data block with a CRC, writes it, and
// records an index entry last_key_len(4) | last_key | offset(8) | size(8).
func (b *Builder) writeBlock() error {
	if len(b.dataBlock) == 0 {
		return nil
	}

	b.dataBlock = binary.LittleEndian.AppendUint32(b.dataBlock, utils.GenerateCrc(b.dataBlock))

	if _, err := b.file.Write(b.dataBlock); err != nil {
		return fmt.Errorf("sstable: write data block: %w", err)
	}

	blockOffset, blockSize := b.offset, uint64(len(b.dataBlock))
	b.offset += blockSize

	b.indexBlock = binary.LittleEndian.AppendUint32(b.indexBlock, uint32(len(b.lastKey)))
	b.indexBlock = append(b.indexBlock, b.lastKey...)
	b.indexBlock = binary.LittleEndian.AppendUint64(b.indexBlock, blockOffset)
	b.indexBlock = binary.LittleEndian.AppendUint64(b.indexBlock, blockSize)

	b.dataBlock = b.dataBlock[:0]
	return nil
}

// Finish flushes the last data block, writes the index block and the
// footer, and closes the file. Calling it twice fails.
func (b *Builder) Finish() error {
	if b.finished {
		return ErrAlreadyFinished
	}

	if err := b.writeBlock(); err != nil {
		return err
	}

	var indexHandle BlockHandle
	if len(b.indexBlock) > 0 {
		b.indexBlock = binary.LittleEndian.AppendUint32(b.indexBlock, utils.GenerateCrc(b.indexBlock))

		indexHandle = BlockHandle{Offset: b.offset, Size: uint64(len(b.indexBlock))}
		if _, err := b.file.Write(b.indexBlock); err != nil {
			return fmt.Errorf("sstable: write index block: %w", err)
		}
		b.offset += indexHandle.Size
	}

	footer := Footer{IndexHandle: indexHandle}
	if _, err := b.file.Write(footer.Encode()); err != nil {
		return fmt.Errorf("sstable: write footer: %w", err)
	}
	b.offset += FooterSize

	if err := b.file.Sync(); err != nil {
		return fmt.Errorf("sstable: sync: %w", err)
	}

	b.finished = true
	err := b.file.Close()
	b.file = nil
	return err
}

// FileSize is the number of bytes written so far.
func (b *Builder) FileSize() uint64 {
	return b.offset
}

func (b *Builder) Finished() bool {
	return b.finished
}

// Close finishes the table if the caller has not, so a dropped
// builder never leaves a file without a footer. Errors from that
// implicit Finish are swallowed.
func (b *Builder) Close() error {
	if b.file == nil {
		return nil
	}
	if !b.finished {
		_ = b.Finish()
	}
	if b.file != nil {
		err := b.file.Close()
		b.file = nil
		return err
	}
	return nil
}
