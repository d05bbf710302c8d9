package store

import (
	"testing"

	"github.com/iov-one/custody/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBase() (CacheableKVStore, func()) {
	return MemStore(), func() {}
}

func TestBTreeCacheGetSet(t *testing.T) {
	NewTestSuite(makeBase).GetSet(t)
}

func TestBTreeCacheConflicts(t *testing.T) {
	NewTestSuite(makeBase).CacheConflicts(t)
}

func TestBTreeCacheIteration(t *testing.T) {
	NewTestSuite(makeBase).Iteration(t)
}

func TestNestedCacheWrapDiscard(t *testing.T) {
	base := MemStore()
	require.NoError(t, base.Set([]byte("balance"), []byte("150")))

	outer := base.CacheWrap()
	require.NoError(t, outer.Set([]byte("proposal"), []byte("pending")))

	inner := outer.CacheWrap()
	require.NoError(t, inner.Set([]byte("balance"), []byte("50")))
	require.NoError(t, inner.Set([]byte("proposal"), []byte("executed")))
	inner.Discard()

	got, err := outer.Get([]byte("balance"))
	require.NoError(t, err)
	assert.Equal(t, []byte("150"), got)
	got, err = outer.Get([]byte("proposal"))
	require.NoError(t, err)
	assert.Equal(t, []byte("pending"), got)

	// A discarded wrap must not leak any operation on a later write.
	require.NoError(t, inner.Write())
	got, err = outer.Get([]byte("proposal"))
	require.NoError(t, err)
	assert.Equal(t, []byte("pending"), got)
}

func TestSliceIterator(t *testing.T) {
	it := NewSliceIterator([]Model{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
	})
	k, v, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", string(k))
	assert.Equal(t, "1", string(v))
	_, _, err = it.Next()
	require.NoError(t, err)
	_, _, err = it.Next()
	assert.True(t, errors.ErrIteratorDone.Is(err))
	it.Release()
}

func TestNonAtomicBatch(t *testing.T) {
	base := MemStore()
	b := NewNonAtomicBatch(base)
	require.NoError(t, b.Set([]byte("k"), []byte("v")))
	require.NoError(t, b.Delete([]byte("gone")))

	ops := b.ShowOps()
	require.Len(t, ops, 2)
	assert.True(t, ops[0].IsSetOp())
	assert.False(t, ops[1].IsSetOp())
	assert.Equal(t, []byte("gone"), ops[1].Key())

	has, err := base.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, b.Write())
	has, err = base.Has([]byte("k"))
	require.NoError(t, err)
	assert.True(t, has)
	assert.Empty(t, b.ShowOps())
}
