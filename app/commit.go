package app

import (
	"regexp"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// CommitStore handles loading from a CommitKVStore, handing out cache wraps
// for every state transition and committing the ones that succeeded.
type CommitStore struct {
	committed custody.CommitKVStore
}

// NewCommitStore loads the latest version of the store.
func NewCommitStore(store custody.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{committed: store}, nil
}

// CommitInfo returns the current version and hash
func (cs *CommitStore) CommitInfo() (custody.CommitID, error) {
	return cs.committed.LatestVersion()
}

// CacheWrap returns a scratch pad over the latest committed state. Pass it
// to Commit to persist the changes or Discard it.
func (cs *CommitStore) CacheWrap() custody.KVCacheWrap {
	return cs.committed.CacheWrap()
}

// Commit will flush the cache to the store and commit a new version to
// disk.
func (cs *CommitStore) Commit(cache custody.KVCacheWrap) (custody.CommitID, error) {
	if err := cache.Write(); err != nil {
		return custody.CommitID{}, errors.Wrap(err, "write cache")
	}
	return cs.committed.Commit()
}

//------- storing chainID ---------

// _cs: is a prefix for custody internal data
const chainIDKey = "_cs:chainID"

var isChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{4,128}$`).MatchString

// loadChainID returns the chain id stored if any
func loadChainID(kv custody.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv custody.KVStore, chainID string) error {
	if !isChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}
