package cash

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// Controller is the functionality needed by other extensions that hold or
// move funds.
type Controller interface {
	Balance(db custody.ReadOnlyKVStore, addr custody.Address) (coin.Coins, error)
	MoveCoins(db custody.KVStore, src, dest custody.Address, amount coin.Coin) error
	IssueCoins(db custody.KVStore, dest custody.Address, amount coin.Coin) error
}

// BaseController is the default Controller implementation.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller operating on the cash bucket.
func NewController() BaseController {
	return BaseController{bucket: NewBucket()}
}

// Balance returns all coins held by the address. An unknown address holds
// nothing.
func (c BaseController) Balance(db custody.ReadOnlyKVStore, addr custody.Address) (coin.Coins, error) {
	var set Set
	switch err := c.bucket.One(db, addr, &set); {
	case err == nil:
		return set.Coins, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db custody.KVStore, src, dest custody.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if err := amount.Validate(); err != nil {
		return err
	}
	if src.Equals(dest) {
		return errors.Wrap(errors.ErrInput, "source and destination are the same")
	}

	sender, err := c.Balance(db, src)
	if err != nil {
		return err
	}
	if !sender.Contains(amount) {
		return errors.Wrapf(errors.ErrAmount, "insufficient funds: %s held, %s required", coin.NewCoin(sender.Balance(amount.Ticker), amount.Ticker), amount)
	}
	sender, err = sender.Subtract(amount)
	if err != nil {
		return err
	}

	recipient, err := c.Balance(db, dest)
	if err != nil {
		return err
	}
	recipient, err = recipient.Add(amount)
	if err != nil {
		return err
	}

	// Compute both sides before writing anything, so that a failure leaves
	// both wallets untouched.
	if err := c.save(db, src, sender); err != nil {
		return err
	}
	return c.save(db, dest, recipient)
}

// IssueCoins attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
func (c BaseController) IssueCoins(db custody.KVStore, dest custody.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	recipient, err := c.Balance(db, dest)
	if err != nil {
		return err
	}
	recipient, err = recipient.Add(amount)
	if err != nil {
		return err
	}
	return c.save(db, dest, recipient)
}

// save stores the wallet. An empty wallet is removed from the store.
func (c BaseController) save(db custody.KVStore, addr custody.Address, coins coin.Coins) error {
	if err := addr.Validate(); err != nil {
		return errors.Wrap(err, "wallet address")
	}
	if coins.IsEmpty() {
		err := c.bucket.Delete(db, addr)
		if errors.ErrNotFound.Is(err) {
			return nil
		}
		return err
	}
	_, err := c.bucket.Put(db, addr, &Set{Coins: coins})
	return err
}
