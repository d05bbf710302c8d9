package orm

import (
	"github.com/iov-one/custody"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	custody.Persistent
	Validate() error
}

// Indexer calculates the secondary index keys for a given model. A model
// can be indexed under any number of keys, including none.
type Indexer func(Model) ([][]byte, error)
