package keydir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBTree_PutGet(t *testing.T) {
	bt := NewBTree[int64, []byte](32)

	res := bt.Put(1, []byte("one"))
	assert.True(t, res)

	value, ok := bt.Get(1)
	assert.True(t, ok)
	assert.Equal(t, []byte("one"), value)

	res = bt.Put(1, []byte("uno"))
	assert.True(t, res)
	value, ok = bt.Get(1)
	assert.True(t, ok)
	assert.Equal(t, []byte("uno"), value)
	assert.Equal(t, 1, bt.Len())

	_, ok = bt.Get(2)
	assert.False(t, ok)
}

func TestBTree_Delete(t *testing.T) {
	bt := NewBTree[int64, []byte](32)

	assert.False(t, bt.Delete(1))

	bt.Put(1, []byte("one"))
	assert.True(t, bt.Delete(1))
	assert.False(t, bt.Delete(1))

	_, ok := bt.Get(1)
	assert.False(t, ok)
}

func TestBTree_Ascend(t *testing.T) {
	bt := NewBTree[int64, []byte](0) // zero degree falls back to default

	for _, key := range []int64{4, 1, 3, 2} {
		bt.Put(key, []byte("v"))
	}

	var keys []int64
	bt.Ascend(func(key int64, _ []byte) bool {
		keys = append(keys, key)
		return true
	})
	assert.Equal(t, []int64{1, 2, 3, 4}, keys)
}
