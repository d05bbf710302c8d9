package orm

import (
	"bytes"
	"sort"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const compactIdxPrefix = "_i."

// compactIndex stores all primary keys indexed under a single value as a
// sorted set, serialized and stored under single key. This implementation
// should be used only for small sized index collections.
type compactIndex struct {
	name   string
	id     []byte
	unique bool
	index  Indexer
}

func newCompactIndex(bucket, name string, indexer Indexer, unique bool) compactIndex {
	return compactIndex{
		name:   name,
		id:     []byte(compactIdxPrefix + bucket + "_" + name + ":"),
		index:  indexer,
		unique: unique,
	}
}

func (i compactIndex) dbKey(value []byte) []byte {
	return append(append([]byte(nil), i.id...), value...)
}

// update moves the primary key from the index values of prev to those of
// next. prev is nil on insert, next is nil on delete.
func (i compactIndex) update(db custody.KVStore, pk []byte, prev, next Model) error {
	var before, after [][]byte
	var err error
	if prev != nil {
		if before, err = i.index(prev); err != nil {
			return errors.Wrapf(ErrInvalidIndex, "%s: %s", i.name, err)
		}
	}
	if next != nil {
		if after, err = i.index(next); err != nil {
			return errors.Wrapf(ErrInvalidIndex, "%s: %s", i.name, err)
		}
	}

	for _, v := range before {
		if containsKey(after, v) {
			continue
		}
		if err := i.remove(db, v, pk); err != nil {
			return err
		}
	}
	for _, v := range after {
		if containsKey(before, v) {
			continue
		}
		if err := i.add(db, v, pk); err != nil {
			return err
		}
	}
	return nil
}

func (i compactIndex) add(db custody.KVStore, value, pk []byte) error {
	refs, err := i.refs(db, value)
	if err != nil {
		return err
	}
	if i.unique && len(refs) > 0 {
		return errors.Wrapf(errors.ErrDuplicate, "index %s: %X", i.name, value)
	}
	n := sort.Search(len(refs), func(k int) bool { return bytes.Compare(refs[k], pk) >= 0 })
	if n < len(refs) && bytes.Equal(refs[n], pk) {
		return nil
	}
	refs = append(refs, nil)
	copy(refs[n+1:], refs[n:])
	refs[n] = pk
	return i.store(db, value, refs)
}

func (i compactIndex) remove(db custody.KVStore, value, pk []byte) error {
	refs, err := i.refs(db, value)
	if err != nil {
		return err
	}
	n := sort.Search(len(refs), func(k int) bool { return bytes.Compare(refs[k], pk) >= 0 })
	if n == len(refs) || !bytes.Equal(refs[n], pk) {
		return errors.Wrapf(ErrInvalidIndex, "%s: reference not found", i.name)
	}
	refs = append(refs[:n], refs[n+1:]...)
	if len(refs) == 0 {
		return db.Delete(i.dbKey(value))
	}
	return i.store(db, value, refs)
}

func (i compactIndex) store(db custody.KVStore, value []byte, refs [][]byte) error {
	raw, err := cdc.MarshalBinaryBare(multiRef{Refs: refs})
	if err != nil {
		return errors.Wrap(err, "cannot serialize index")
	}
	return db.Set(i.dbKey(value), raw)
}

// refs returns all primary keys indexed under the given value, in
// ascending order.
func (i compactIndex) refs(db custody.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	raw, err := db.Get(i.dbKey(value))
	if err != nil {
		return nil, errors.Wrap(err, "cannot load index")
	}
	if raw == nil {
		return nil, nil
	}
	var m multiRef
	if err := cdc.UnmarshalBinaryBare(raw, &m); err != nil {
		return nil, errors.Wrapf(ErrInvalidIndex, "cannot deserialize %s: %s", i.name, err)
	}
	return m.Refs, nil
}

func containsKey(keys [][]byte, k []byte) bool {
	for _, key := range keys {
		if bytes.Equal(key, k) {
			return true
		}
	}
	return false
}
