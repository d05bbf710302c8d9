package coin

import (
	"sort"
	"strings"

	"github.com/iov-one/custody/errors"
)

// Coins is a set of amounts of distinct assets. A normalized set is sorted
// by ticker and holds no zero amounts.
type Coins []Coin

// CombineCoins creates a normalized Coins from the given coins, adding
// together amounts of the same asset.
func CombineCoins(cs ...Coin) (Coins, error) {
	var res Coins
	for _, c := range cs {
		var err error
		if res, err = res.Add(c); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Clone returns a copy that can be modified without affecting the original.
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	return append(Coins(nil), cs...)
}

// Balance returns the amount held of the given asset. Zero is returned when
// the asset is not present.
func (cs Coins) Balance(ticker string) uint64 {
	if i, ok := cs.find(ticker); ok {
		return cs[i].Amount
	}
	return 0
}

// Add returns a new set with given coin added. Receiver is not modified.
func (cs Coins) Add(c Coin) (Coins, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.IsZero() {
		return cs.Clone(), nil
	}
	i, ok := cs.find(c.Ticker)
	if !ok {
		res := make(Coins, 0, len(cs)+1)
		res = append(res, cs[:i]...)
		res = append(res, c)
		return append(res, cs[i:]...), nil
	}
	sum, err := cs[i].Add(c)
	if err != nil {
		return nil, err
	}
	res := cs.Clone()
	res[i] = sum
	return res, nil
}

// Subtract returns a new set with given coin removed. It fails with
// ErrAmount if there is not enough of the asset. Receiver is not modified.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.IsZero() {
		return cs.Clone(), nil
	}
	i, ok := cs.find(c.Ticker)
	if !ok {
		return nil, errors.Wrapf(errors.ErrAmount, "no %s held", c.Ticker)
	}
	diff, err := cs[i].Subtract(c)
	if err != nil {
		return nil, err
	}
	res := cs.Clone()
	if diff.IsZero() {
		return append(res[:i], res[i+1:]...), nil
	}
	res[i] = diff
	return res, nil
}

// Contains returns true if there is at least that much of the asset.
func (cs Coins) Contains(c Coin) bool {
	return cs.Balance(c.Ticker) >= c.Amount
}

// IsEmpty returns if nothing is in the set
func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// Equals returns true if both sets hold exactly the same amounts.
func (cs Coins) Equals(o Coins) bool {
	if len(cs) != len(o) {
		return false
	}
	for i := range cs {
		if !cs[i].Equals(o[i]) {
			return false
		}
	}
	return true
}

// Validate requires that all coins are valid, sorted by ticker, unique and
// not zero.
func (cs Coins) Validate() error {
	for i, c := range cs {
		if err := c.Validate(); err != nil {
			return err
		}
		if c.IsZero() {
			return errors.Wrapf(errors.ErrAmount, "zero %s", c.Ticker)
		}
		if i > 0 && cs[i-1].Ticker >= c.Ticker {
			return errors.Wrap(errors.ErrState, "coins not normalized")
		}
	}
	return nil
}

func (cs Coins) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// find returns the position of the asset, or the position at which it
// should be inserted when not present.
func (cs Coins) find(ticker string) (int, bool) {
	i := sort.Search(len(cs), func(k int) bool { return cs[k].Ticker >= ticker })
	return i, i < len(cs) && cs[i].Ticker == ticker
}
