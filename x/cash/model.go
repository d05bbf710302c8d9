package cash

import (
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Set is the content of a wallet.
type Set struct {
	Coins coin.Coins `json:"coins"`
}

// Marshal serializes the set.
func (s *Set) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(s)
}

// Unmarshal loads the set from its serialized form.
func (s *Set) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, s)
}

// Validate requires that all coins are in alphabetical order, unique and
// not zero.
func (s *Set) Validate() error {
	return s.Coins.Validate()
}

// NewBucket returns the bucket holding all wallets keyed by address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Set{})
}
