package coin

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/iov-one/custody/errors"
)

// IsCC is the RegExp to ensure valid asset tickers
var IsCC = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,11}$`).MatchString

// Coin is an amount of a single asset.
type Coin struct {
	Ticker string `json:"ticker"`
	Amount uint64 `json:"amount"`
}

// NewCoin creates a new coin object
func NewCoin(amount uint64, ticker string) Coin {
	return Coin{
		Ticker: ticker,
		Amount: amount,
	}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(amount uint64, ticker string) *Coin {
	c := NewCoin(amount, ticker)
	return &c
}

// ID returns a coin ticker name.
func (c Coin) ID() string {
	return c.Ticker
}

// Add combines two coins.
// Returns error if they are of different
// assets, or if the combination would cause
// an overflow
func (c Coin) Add(o Coin) (Coin, error) {
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrType, "adding %s to %s", o.Ticker, c.Ticker)
	}
	if o.Amount > math.MaxUint64-c.Amount {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%s + %s", c, o)
	}
	return Coin{Ticker: c.Ticker, Amount: c.Amount + o.Amount}, nil
}

// Subtract returns the result of removing o from c. It fails with ErrAmount
// if the result would be negative.
func (c Coin) Subtract(o Coin) (Coin, error) {
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrType, "subtracting %s from %s", o.Ticker, c.Ticker)
	}
	if o.Amount > c.Amount {
		return Coin{}, errors.Wrapf(errors.ErrAmount, "%s - %s is negative", c, o)
	}
	return Coin{Ticker: c.Ticker, Amount: c.Amount - o.Amount}, nil
}

// Compare will check values of two coins, without inspecting the asset
// ticker. Returns 1 if c is greater, -1 if o is greater and 0 when equal.
func (c Coin) Compare(o Coin) int {
	switch {
	case c.Amount > o.Amount:
		return 1
	case c.Amount < o.Amount:
		return -1
	default:
		return 0
	}
}

// IsGTE returns true if c is same type and at least as large as o.
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Amount >= o.Amount
}

// SameType returns true if they have the same ticker
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// IsZero returns true if the amount is 0
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

// IsPositive returns true if the amount is greater than 0
func (c Coin) IsPositive() bool {
	return c.Amount > 0
}

// Equals returns true if all fields are identical
func (c Coin) Equals(o Coin) bool {
	return c.Ticker == o.Ticker && c.Amount == o.Amount
}

// Validate ensures that the ticker is valid.
func (c Coin) Validate() error {
	if !IsCC(c.Ticker) {
		return errors.Wrapf(errors.ErrInput, "invalid ticker %q", c.Ticker)
	}
	return nil
}

// String provides a human readable representation of the coin, the same
// format ParseHumanFormat accepts.
func (c Coin) String() string {
	return fmt.Sprintf("%d %s", c.Amount, c.Ticker)
}

// ParseHumanFormat parses a coin written as "<amount> <ticker>", ie
// "100 USDC". Whitespace between amount and ticker is optional.
func ParseHumanFormat(s string) (Coin, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if i <= 0 {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid coin format %q", s)
	}
	amount, err := strconv.ParseUint(s[:i], 10, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return Coin{}, errors.Wrapf(errors.ErrOverflow, "amount %s", s[:i])
		}
		return Coin{}, errors.Wrapf(errors.ErrInput, "amount: %s", err)
	}
	c := NewCoin(amount, strings.TrimSpace(s[i:]))
	if err := c.Validate(); err != nil {
		return Coin{}, err
	}
	return c, nil
}

// UnmarshalJSON accepts both the object representation and the human
// readable string format, ie "100 USDC".
func (c *Coin) UnmarshalJSON(raw []byte) error {
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		parsed, err := ParseHumanFormat(human)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	// Alias type to avoid infinite recursion.
	type coin Coin
	var obj coin
	if err := json.Unmarshal(raw, &obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "invalid coin: %s", err)
	}
	*c = Coin(obj)
	return nil
}
