package custodytest

import (
	"encoding/binary"
	"sync/atomic"
	"testing"

	"github.com/iov-one/custody"
)

var addrCounter uint64

// NewCondition returns a new condition, unique within a single process.
func NewCondition() custody.Condition {
	n := atomic.AddUint64(&addrCounter, 1)
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, n)
	return custody.NewCondition("custodytest", "uniq", data)
}

// NewAddress returns a new address, unique within a single process.
func NewAddress() custody.Address {
	return NewCondition().Address()
}

// SequenceID returns the 8 byte big endian encoded value, the same way
// sequences stored by the orm are.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

// ParseAddress takes an address in a human readable format and returns
// its binary representation. This function is a test helper that is using
// custody.ParseAddress function functionality.
func ParseAddress(t testing.TB, encodedAddress string) custody.Address {
	t.Helper()

	addr, err := custody.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
