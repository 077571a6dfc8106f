package driftkv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/driftkv/driftkv/codec"
	"github.com/driftkv/driftkv/fio"
	"github.com/driftkv/driftkv/keydir"
	"github.com/driftkv/driftkv/model"
	"github.com/driftkv/driftkv/sstable"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// DB is a single-node key-value store: an ordered in-memory index
// fronted by a write-ahead log. Every Put/Delete is appended to the
// log and forced to media before the index is touched, so a crash at
// any point replays back to the last synced record.
type DB struct {
	mu sync.Mutex

	dir      string
	logFile  *model.LogFile
	keydir   keydir.Keydir[int64, []byte]
	fileLock *flock.Flock
	options  *options
	closed   bool
}

// Open creates the data directory if needed, locks it, replays an
// existing log into the index, and opens the log for append.
func Open(dir string, opts ...Option) (*DB, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.ioManagerCreator == nil {
		return nil, ErrNoIOManager
	}
	cfg := &Config{MaxLevel: o.maxLevel, Probability: o.probability}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}

	fileLock := fio.NewFlock(dir)
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock data dir %s: %w", dir, err)
	}
	if !locked {
		return nil, ErrDirIsUsing
	}

	db := &DB{
		dir:      dir,
		fileLock: fileLock,
		options:  o,
		keydir:   newKeydir(o),
	}

	ioManager, err := o.ioManagerCreator(filepath.Join(dir, model.WalFileName))
	if err != nil {
		_ = fileLock.Unlock()
		return nil, err
	}
	db.logFile, err = model.OpenLogFile(ioManager)
	if err != nil {
		_ = ioManager.Close()
		_ = fileLock.Unlock()
		return nil, err
	}

	if db.logFile.WriteOffset > 0 {
		if err = db.replay(); err != nil {
			_ = db.logFile.Close()
			_ = fileLock.Unlock()
			return nil, err
		}
	}

	return db, nil
}

func newKeydir(o *options) keydir.Keydir[int64, []byte] {
	if o.useBTree {
		return keydir.NewBTree[int64, []byte](o.btreeDegree)
	}
	if o.seed != 0 {
		return keydir.NewSkipListWithSeed[int64, []byte](o.maxLevel, o.probability, o.seed)
	}
	return keydir.NewSkipList[int64, []byte](o.maxLevel, o.probability)
}

// replay walks the log from offset 0 and applies every verified
// record. A torn tail or a corrupt frame is a legitimate recovery
// boundary: replay stops there and everything before it stands.
func (db *DB) replay() error {
	reader := bufio.NewReader(db.logFile.NewReader())
	for {
		record, err := db.options.codec.ReadRecord(reader)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return nil
			case errors.Is(err, codec.ErrTornTail),
				errors.Is(err, codec.ErrBadChecksum),
				errors.Is(err, codec.ErrBadKind):
				log.Printf("WARNING: wal replay stopped: %v", err)
				return nil
			default:
				return fmt.Errorf("replay wal: %w", err)
			}
		}

		key, err := strconv.ParseInt(string(record.Key), 10, 64)
		if err != nil {
			log.Printf("WARNING: wal replay: skipping record with bad key %q: %v", record.Key, err)
			continue
		}

		switch record.Kind {
		case model.RecordPut:
			db.keydir.Put(key, record.Value)
		case model.RecordDelete:
			db.keydir.Delete(key)
		}
	}
}

// Put logs the pair, forces it to media, then updates the index.
// The index is untouched when any step of the log write fails.
func (db *DB) Put(key int64, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}

	record := &model.Record{
		Kind:  model.RecordPut,
		Key:   encodeKey(key),
		Value: value,
	}
	if err := db.appendRecord(record); err != nil {
		return err
	}

	db.keydir.Put(key, value)
	return nil
}

// Delete logs a tombstone record, forces it to media, then removes
// the key. It reports whether the key was present.
func (db *DB) Delete(key int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return false, ErrClosed
	}

	record := &model.Record{
		Kind: model.RecordDelete,
		Key:  encodeKey(key),
	}
	if err := db.appendRecord(record); err != nil {
		return false, err
	}

	return db.keydir.Delete(key), nil
}

// Get reads the index only; it performs no I/O.
func (db *DB) Get(key int64) ([]byte, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, false
	}
	return db.keydir.Get(key)
}

func (db *DB) appendRecord(record *model.Record) error {
	data, _, err := db.options.codec.MarshalRecord(record)
	if err != nil {
		return err
	}
	if err = db.logFile.Append(data); err != nil {
		return err
	}
	return db.logFile.Sync()
}

// ListKeys returns every live key in ascending order.
func (db *DB) ListKeys() []int64 {
	db.mu.Lock()
	defer db.mu.Unlock()

	keys := make([]int64, 0, db.keydir.Len())
	db.keydir.Ascend(func(key int64, _ []byte) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Fold calls fn for every pair in ascending key order and stops at
// the first error.
func (db *DB) Fold(fn func(key int64, value []byte) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var foldErr error
	db.keydir.Ascend(func(key int64, value []byte) bool {
		if err := fn(key, value); err != nil {
			foldErr = err
			return false
		}
		return true
	})
	return foldErr
}

// Sync forces any buffered log bytes to media.
func (db *DB) Sync() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}
	return db.logFile.Sync()
}

// Flush writes the index contents, in key order, to a fresh sorted
// table file in the data directory and returns its path. The log is
// kept as is.
func (db *DB) Flush() (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return "", ErrClosed
	}

	path := filepath.Join(db.dir, uuid.NewString()+model.TableFileSuffix)
	builder, err := sstable.NewBuilder(path)
	if err != nil {
		return "", err
	}
	defer builder.Close()

	var addErr error
	db.keydir.Ascend(func(key int64, value []byte) bool {
		addErr = builder.Add(encodeKey(key), value)
		return addErr == nil
	})
	if addErr != nil {
		return "", addErr
	}

	if err = builder.Finish(); err != nil {
		return "", err
	}
	return path, nil
}

// Close syncs and closes the log, then releases the directory lock.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}
	db.closed = true

	err := db.logFile.Close()
	if unlockErr := db.fileLock.Unlock(); err == nil {
		err = unlockErr
	}
	return err
}

// encodeKey is the WAL/table byte form of a key: decimal ASCII.
// replay's strconv.ParseInt is its inverse.
func encodeKey(key int64) []byte {
	return strconv.AppendInt(nil, key, 10)
}
