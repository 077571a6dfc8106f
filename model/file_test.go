package model

import (
	"bufio"
	"io"
	"path/filepath"
	"testing"

	"github.com/driftkv/driftkv/fio"

	"github.com/stretchr/testify/assert"
)

func openTestLogFile(t *testing.T, dir string) *LogFile {
	ioManager, err := fio.NewFileIO(filepath.Join(dir, WalFileName))
	assert.Nil(t, err)

	lf, err := OpenLogFile(ioManager)
	assert.Nil(t, err)
	return lf
}

func TestLogFile_Append(t *testing.T) {
	lf := openTestLogFile(t, t.TempDir())
	defer lf.Close()

	assert.Nil(t, lf.Append([]byte("aaa")))
	assert.Equal(t, int64(3), lf.WriteOffset)

	assert.Nil(t, lf.Append([]byte("bbb")))
	assert.Equal(t, int64(6), lf.WriteOffset)
}

func TestLogFile_SyncThenRead(t *testing.T) {
	lf := openTestLogFile(t, t.TempDir())
	defer lf.Close()

	assert.Nil(t, lf.Append([]byte("hello ")))
	assert.Nil(t, lf.Append([]byte("world")))
	assert.Nil(t, lf.Sync())

	data, err := io.ReadAll(bufio.NewReader(lf.NewReader()))
	assert.Nil(t, err)
	assert.Equal(t, []byte("hello world"), data)
}

func TestLogFile_ReopenKeepsOffset(t *testing.T) {
	dir := t.TempDir()

	lf := openTestLogFile(t, dir)
	assert.Nil(t, lf.Append([]byte("12345678")))
	assert.Nil(t, lf.Close())

	lf = openTestLogFile(t, dir)
	defer lf.Close()
	assert.Equal(t, int64(8), lf.WriteOffset)

	// appends extend the existing file
	assert.Nil(t, lf.Append([]byte("9")))
	assert.Nil(t, lf.Sync())
	assert.Equal(t, int64(9), lf.WriteOffset)

	data, err := io.ReadAll(lf.NewReader())
	assert.Nil(t, err)
	assert.Equal(t, []byte("123456789"), data)
}
