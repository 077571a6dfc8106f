package driftkv

import (
	"github.com/driftkv/driftkv/codec"
	"github.com/driftkv/driftkv/fio"
)

type options struct {
	maxLevel    int
	probability float64
	useBTree    bool
	btreeDegree int
	seed        int64

	ioManagerCreator func(path string) (fio.IOManager, error)
	codec            codec.Codec
}

type Option func(*options)

func defaultOptions() *options {
	return &options{
		maxLevel:         DefaultMaxLevel,
		probability:      DefaultProbability,
		ioManagerCreator: defaultIOManagerCreator,
		codec:            codec.NewCodecImpl(),
	}
}

var defaultIOManagerCreator = func(path string) (fio.IOManager, error) {
	return fio.NewFileIO(path)
}

// WithMaxLevel bounds the skiplist height.
func WithMaxLevel(maxLevel int) Option {
	return func(o *options) {
		o.maxLevel = maxLevel
	}
}

// WithProbability sets the skiplist promotion probability. 0 and 1
// are legal degenerate cases.
func WithProbability(p float64) Option {
	return func(o *options) {
		o.probability = p
	}
}

// WithBTreeKeydir swaps the in-memory index for a btree.
// degree <= 0 picks the default degree.
func WithBTreeKeydir(degree int) Option {
	return func(o *options) {
		o.useBTree = true
		o.btreeDegree = degree
	}
}

// WithSkiplistSeed fixes the skiplist's level generator, for
// reproducible tests. A zero seed counts as unset: the generator is
// then seeded from the clock.
func WithSkiplistSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

func WithIOManagerCreator(fn func(path string) (fio.IOManager, error)) Option {
	return func(o *options) {
		o.ioManagerCreator = fn
	}
}

func WithCodec(codec codec.Codec) Option {
	return func(o *options) {
		o.codec = codec
	}
}

// WithConfig applies a loaded Config.
func WithConfig(cfg *Config) Option {
	return func(o *options) {
		o.maxLevel = cfg.MaxLevel
		o.probability = cfg.Probability
		if cfg.Keydir == keydirBTree {
			o.useBTree = true
			o.btreeDegree = cfg.BTreeDegree
		}
	}
}
