package orm

import (
	"reflect"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

// ModelBucket stores models under a prefixed key space and maintains its
// secondary indexes.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	One(db custody.ReadOnlyKVStore, key []byte, dest Model) error

	// ByIndex returns all models that are referenced by the given index
	// value. Models are appended to the destination, that must be a pointer
	// to a slice of models. Returned keys are in the same order as the
	// loaded models.
	ByIndex(db custody.ReadOnlyKVStore, indexName string, key []byte, dest interface{}) ([][]byte, error)

	// Put saves given model in the database. When key is nil, the bucket
	// sequence is used to generate one. The key under which the model was
	// saved is returned.
	Put(db custody.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db custody.KVStore, key []byte) error

	// Has returns nil if an entity with given primary key exists and
	// ErrNotFound otherwise.
	Has(db custody.ReadOnlyKVStore, key []byte) error

	// Keys returns the primary keys of all stored entities in ascending
	// order.
	Keys(db custody.ReadOnlyKVStore) ([][]byte, error)
}

// ModelBucketOption is implemented by any function that can configure a
// model bucket during its creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using the indexer function.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic("index " + name + " registered twice")
		}
		mb.indexes[name] = newCompactIndex(mb.name, name, indexer, unique)
	}
}

// WithIDSequence configures the bucket to use given sequence for generating
// keys of entities stored without an explicit key.
func WithIDSequence(s Sequence) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.idSeq = s
	}
}

// NewModelBucket returns a ModelBucket instance for the given model type.
// Bucket name must be unique within the application and is used as the key
// prefix of all stored entities.
func NewModelBucket(name string, m Model, opts ...ModelBucketOption) ModelBucket {
	mb := &modelBucket{
		name:    name,
		prefix:  []byte(name + ":"),
		model:   reflect.TypeOf(m),
		indexes: make(map[string]compactIndex),
		idSeq:   NewSequence(name, "id"),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	indexes map[string]compactIndex
	idSeq   Sequence
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	return append(append([]byte(nil), mb.prefix...), key...)
}

func (mb *modelBucket) One(db custody.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != mb.model {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %s", dest, mb.model)
	}
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot load from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "cannot unmarshal %s", mb.name)
	}
	return nil
}

func (mb *modelBucket) ByIndex(db custody.ReadOnlyKVStore, indexName string, key []byte, dest interface{}) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidIndex, "%s has no index %q", mb.name, indexName)
	}

	slice := reflect.ValueOf(dest)
	if slice.Kind() != reflect.Ptr || slice.Elem().Kind() != reflect.Slice {
		return nil, errors.Wrapf(errors.ErrType, "destination must be a pointer to a slice, got %T", dest)
	}
	elemType := slice.Elem().Type().Elem()
	if elemType != mb.model && reflect.PtrTo(elemType) != mb.model {
		return nil, errors.Wrapf(errors.ErrType, "%s cannot be represented as %s", elemType, mb.model)
	}

	refs, err := idx.refs(db, key)
	if err != nil {
		return nil, err
	}
	result := slice.Elem()
	for _, ref := range refs {
		m := reflect.New(mb.model.Elem())
		if err := mb.One(db, ref, m.Interface().(Model)); err != nil {
			return nil, errors.Wrapf(err, "index %s reference %X", indexName, ref)
		}
		if elemType == mb.model {
			result = reflect.Append(result, m)
		} else {
			result = reflect.Append(result, m.Elem())
		}
	}
	slice.Elem().Set(result)
	return refs, nil
}

func (mb *modelBucket) Put(db custody.KVStore, key []byte, m Model) ([]byte, error) {
	if reflect.TypeOf(m) != mb.model {
		return nil, errors.Wrapf(errors.ErrType, "cannot store %T in %s", m, mb.name)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}

	var prev Model
	if key == nil {
		k, err := mb.idSeq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "id sequence")
		}
		key = k
	} else if len(mb.indexes) > 0 {
		old := reflect.New(mb.model.Elem()).Interface().(Model)
		switch err := mb.One(db, key, old); {
		case err == nil:
			prev = old
		case !errors.ErrNotFound.Is(err):
			return nil, err
		}
	}

	raw, err := m.Marshal()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot marshal %s", mb.name)
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return nil, errors.Wrap(err, "cannot store in the database")
	}
	for _, idx := range mb.indexes {
		if err := idx.update(db, key, prev, m); err != nil {
			return nil, errors.Wrap(err, "cannot update index")
		}
	}
	return key, nil
}

func (mb *modelBucket) Delete(db custody.KVStore, key []byte) error {
	old := reflect.New(mb.model.Elem()).Interface().(Model)
	if err := mb.One(db, key, old); err != nil {
		return err
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(err, "cannot delete from the database")
	}
	for _, idx := range mb.indexes {
		if err := idx.update(db, key, old, nil); err != nil {
			return errors.Wrap(err, "cannot update index")
		}
	}
	return nil
}

func (mb *modelBucket) Has(db custody.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot query the database")
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) Keys(db custody.ReadOnlyKVStore) ([][]byte, error) {
	it, err := db.Iterator(mb.prefix, prefixEnd(mb.prefix))
	if err != nil {
		return nil, errors.Wrap(err, "cannot iterate")
	}
	models, err := store.ReadAll(it)
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, len(models))
	for i, m := range models {
		keys[i] = m.Key[len(mb.prefix):]
	}
	return keys, nil
}

// prefixEnd returns the smallest key that is greater than all keys starting
// with the given prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
