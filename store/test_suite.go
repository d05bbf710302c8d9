package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSuite provides many methods that can be called in package-specific
// test code. We just customize the store being tested (pass in constructor),
// the rest of the logic is generic to the KVStore interface.
//
// This removes duplication between btree_test.go and iavl/adapter_test.go,
// but can be used for any implementation of CacheableKVStore.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns a fresh store and a function releasing
// its resources.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

// NewTestSuite returns a suite running against stores built by the given
// constructor.
func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{
		makeBase: constructor,
	}
}

// GetSet does basic sanity checks on our cache
//
// Other tests should handle deletes, setting same value,
// iterating over ranges, and general fuzzing
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	// make sure the store is empty at start but returns results
	// that are written to it
	k, v := []byte("french"), []byte("fry")
	s.AssertGetHas(t, base, k, nil, false)
	require.NoError(t, base.Set(k, v))
	s.AssertGetHas(t, base, k, v, true)

	// now layer another btree on top and make sure that we get
	// base data
	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, k, v, true)

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	s.AssertGetHas(t, cache, k2, nil, false)
	require.NoError(t, cache.Set(k2, v2))
	s.AssertGetHas(t, cache, k2, v2, true)
	s.AssertGetHas(t, base, k2, nil, false)

	// we can write the cache to the base layer...
	require.NoError(t, cache.Write())
	s.AssertGetHas(t, base, k, v, true)
	s.AssertGetHas(t, base, k2, v2, true)

	// we can discard one
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	s.AssertGetHas(t, c2, k, v, true)
	require.NoError(t, c2.Set(k3, v3))
	c2.Discard()

	// and commit another
	c3 := base.CacheWrap()
	s.AssertGetHas(t, c3, k2, v2, true)
	require.NoError(t, c3.Delete(k))
	require.NoError(t, c3.Write())

	// make sure it commits proper
	s.AssertGetHas(t, base, k, nil, false)
	s.AssertGetHas(t, base, k2, v2, true)
	s.AssertGetHas(t, base, k3, nil, false)
}

// CacheConflicts checks that the cache always shows the most recent value
// for a key, no matter if it was set or deleted in the base or the cache.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	k, v, v2 := []byte("key"), []byte("one"), []byte("two")
	require.NoError(t, base.Set(k, v))

	cache := base.CacheWrap()
	require.NoError(t, cache.Set(k, v2))
	s.AssertGetHas(t, cache, k, v2, true)
	s.AssertGetHas(t, base, k, v, true)

	require.NoError(t, cache.Delete(k))
	s.AssertGetHas(t, cache, k, nil, false)
	s.AssertGetHas(t, base, k, v, true)

	require.NoError(t, cache.Set(k, v2))
	require.NoError(t, cache.Write())
	s.AssertGetHas(t, base, k, v2, true)
}

// Iteration checks that both iteration directions return merged data of the
// base and the cache, in order, respecting the range boundaries.
func (s *TestSuite) Iteration(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	for _, k := range []string{"a", "c", "e", "g"} {
		require.NoError(t, base.Set([]byte(k), []byte("base-"+k)))
	}

	cache := base.CacheWrap()
	require.NoError(t, cache.Set([]byte("b"), []byte("cache-b")))
	require.NoError(t, cache.Set([]byte("c"), []byte("cache-c")))
	require.NoError(t, cache.Delete([]byte("e")))
	require.NoError(t, cache.Set([]byte("h"), []byte("cache-h")))

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		want       []string
	}{
		"all ascending": {
			want: []string{"a=base-a", "b=cache-b", "c=cache-c", "g=base-g", "h=cache-h"},
		},
		"all descending": {
			reverse: true,
			want:    []string{"h=cache-h", "g=base-g", "c=cache-c", "b=cache-b", "a=base-a"},
		},
		"bounded ascending": {
			start: []byte("b"),
			end:   []byte("g"),
			want:  []string{"b=cache-b", "c=cache-c"},
		},
		"bounded descending": {
			start:   []byte("b"),
			end:     []byte("h"),
			reverse: true,
			want:    []string{"g=base-g", "c=cache-c", "b=cache-b"},
		},
		"open end": {
			start: []byte("d"),
			want:  []string{"g=base-g", "h=cache-h"},
		},
		"open start": {
			end:  []byte("c"),
			want: []string{"a=base-a", "b=cache-b"},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var (
				it  Iterator
				err error
			)
			if tc.reverse {
				it, err = cache.ReverseIterator(tc.start, tc.end)
			} else {
				it, err = cache.Iterator(tc.start, tc.end)
			}
			require.NoError(t, err)
			models, err := ReadAll(it)
			require.NoError(t, err)

			got := make([]string, len(models))
			for i, m := range models {
				got[i] = string(m.Key) + "=" + string(m.Value)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

// AssertGetHas makes sure that both Get and Has return expected values for
// the given key.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	require.NoError(t, err)
	assert.Equal(t, has, exists)
}
