package keydir

import (
	"cmp"
	"sync"

	"github.com/google/btree"
)

var _ Keydir[int64, []byte] = (*BTree[int64, []byte])(nil)

const defaultDegree = 32

// BTree implements Keydir on top of google/btree. Unlike SkipList it
// guards writes with its own lock.
type BTree[K cmp.Ordered, V any] struct {
	tree *btree.BTreeG[*item[K, V]]

	// be cautious!!!
	// lock should be caught before concurrent write
	lock *sync.RWMutex
}

type item[K cmp.Ordered, V any] struct {
	key   K
	value V
}

func NewBTree[K cmp.Ordered, V any](degree int) *BTree[K, V] {
	if degree <= 0 {
		degree = defaultDegree
	}
	return &BTree[K, V]{
		tree: btree.NewG(degree, func(a, b *item[K, V]) bool {
			return a.key < b.key
		}),
		lock: &sync.RWMutex{},
	}
}

func (bt *BTree[K, V]) Put(key K, value V) bool {
	bt.lock.Lock()
	defer bt.lock.Unlock()
	bt.tree.ReplaceOrInsert(&item[K, V]{key: key, value: value})
	return true
}

func (bt *BTree[K, V]) Get(key K) (V, bool) {
	got, ok := bt.tree.Get(&item[K, V]{key: key})
	if !ok {
		var zero V
		return zero, false
	}
	return got.value, true
}

func (bt *BTree[K, V]) Delete(key K) bool {
	bt.lock.Lock()
	defer bt.lock.Unlock()
	_, ok := bt.tree.Delete(&item[K, V]{key: key})
	return ok
}

func (bt *BTree[K, V]) Len() int {
	return bt.tree.Len()
}

func (bt *BTree[K, V]) Ascend(fn func(key K, value V) bool) {
	bt.tree.Ascend(func(it *item[K, V]) bool {
		return fn(it.key, it.value)
	})
}
