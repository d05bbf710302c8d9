package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/custody/errors"
)

// SliceIterator wraps an Iterator over a slice of models
type SliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator creates a new Iterator over this slice
func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{
		data: data,
	}
}

// Next returns the next key/value pair or ErrIteratorDone when there is no
// more data.
func (s *SliceIterator) Next() (key, value []byte, err error) {
	if s.idx >= len(s.data) {
		return nil, nil, errors.ErrIteratorDone
	}
	m := s.data[s.idx]
	s.idx++
	return m.Key, m.Value, nil
}

// Release releases the Iterator.
func (s *SliceIterator) Release() {
	s.data = nil
}

// ReadAll consumes the iterator and returns all key/value pairs in the
// iteration order. The iterator is released.
func ReadAll(it Iterator) ([]Model, error) {
	defer it.Release()
	var res []Model
	for {
		key, value, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		res = append(res, Model{Key: key, Value: value})
	}
}

// ascendRange collects all items from the btree in [start, end) in
// ascending order. A nil boundary means no limit.
func ascendRange(bt *btree.BTree, start, end []byte) []btree.Item {
	var items []btree.Item
	collect := func(i btree.Item) bool {
		items = append(items, i)
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}
	return items
}

// mergeAscending combines parent data with the cached changes. Both
// sources must be sorted ascending. Cached items take precedence over parent
// entries with the same key and deleted items hide them.
func mergeAscending(parent []Model, cached []btree.Item) []Model {
	res := make([]Model, 0, len(parent)+len(cached))
	add := func(item btree.Item) {
		if s, ok := item.(setItem); ok {
			res = append(res, Model{Key: s.key, Value: s.value})
		}
	}

	var p, c int
	for p < len(parent) && c < len(cached) {
		ckey := cached[c].(keyer).Key()
		switch cmp := bytes.Compare(parent[p].Key, ckey); {
		case cmp < 0:
			res = append(res, parent[p])
			p++
		case cmp > 0:
			add(cached[c])
			c++
		default:
			add(cached[c])
			p++
			c++
		}
	}
	res = append(res, parent[p:]...)
	for ; c < len(cached); c++ {
		add(cached[c])
	}
	return res
}

func reverseModels(models []Model) []Model {
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return models
}
