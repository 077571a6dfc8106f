package model

import (
	"bufio"
	"io"

	"github.com/driftkv/driftkv/fio"
)

const (
	WalFileName     = "wal.log"
	TableFileSuffix = ".sst"
)

// LogFile is the append-only WAL file. Writes go through a user-space
// buffer; Sync drains the buffer to the kernel and then forces the
// kernel buffer to media.
type LogFile struct {
	WriteOffset int64
	ioManager   fio.IOManager
	buf         *bufio.Writer
}

func OpenLogFile(ioManager fio.IOManager) (*LogFile, error) {
	size, err := ioManager.Size()
	if err != nil {
		return nil, err
	}
	return &LogFile{
		WriteOffset: size,
		ioManager:   ioManager,
		buf:         bufio.NewWriter(ioManager),
	}, nil
}

// Append buffers data; it is not durable until Sync returns.
func (lf *LogFile) Append(data []byte) error {
	n, err := lf.buf.Write(data)
	if err != nil {
		return err
	}
	lf.WriteOffset += int64(n)
	return nil
}

func (lf *LogFile) Sync() error {
	if err := lf.buf.Flush(); err != nil {
		return err
	}
	return lf.ioManager.Sync()
}

func (lf *LogFile) Close() error {
	if err := lf.buf.Flush(); err != nil {
		_ = lf.ioManager.Close()
		return err
	}
	if err := lf.ioManager.Sync(); err != nil {
		_ = lf.ioManager.Close()
		return err
	}
	return lf.ioManager.Close()
}

// NewReader returns a sequential reader over the file from offset 0.
func (lf *LogFile) NewReader() io.Reader {
	return &logReader{ioManager: lf.ioManager}
}

type logReader struct {
	ioManager fio.IOManager
	offset    int64
}

func (lr *logReader) Read(p []byte) (int, error) {
	n, err := lr.ioManager.Read(p, lr.offset)
	lr.offset += int64(n)
	return n, err
}
