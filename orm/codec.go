package orm

import (
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// multiRef is the set of primary keys stored under a single index value.
type multiRef struct {
	Refs [][]byte
}
