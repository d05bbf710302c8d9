package treasury

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/cash"
)

// Ledger keeps the per asset balances of treasuries. Every asset is tracked
// on its own, there is no conversion between them.
type Ledger struct {
	cash cash.Controller
}

// NewLedger returns a ledger storing balances using the given cash
// controller.
func NewLedger(ctrl cash.Controller) Ledger {
	return Ledger{cash: ctrl}
}

// Deposit increases the treasury balance of the given asset and returns the
// new balance.
func (l Ledger) Deposit(db custody.KVStore, t *Treasury, amount coin.Coin) (coin.Coin, error) {
	if !amount.IsPositive() {
		return coin.Coin{}, errors.Wrap(ErrInvalidAmount, "must be positive")
	}
	if err := l.cash.IssueCoins(db, t.Address(), amount); err != nil {
		return coin.Coin{}, err
	}
	return l.Balance(db, t, amount.Ticker)
}

// Balance returns the amount of the asset held by the treasury.
func (l Ledger) Balance(db custody.ReadOnlyKVStore, t *Treasury, ticker string) (coin.Coin, error) {
	coins, err := l.cash.Balance(db, t.Address())
	if err != nil {
		return coin.Coin{}, err
	}
	return coin.NewCoin(coins.Balance(ticker), ticker), nil
}

// Balances returns all assets held by the treasury.
func (l Ledger) Balances(db custody.ReadOnlyKVStore, t *Treasury) (coin.Coins, error) {
	return l.cash.Balance(db, t.Address())
}

// debit moves the amount from the treasury to the recipient and returns the
// remaining treasury balance of that asset. Only transfer execution may
// call it.
func (l Ledger) debit(db custody.KVStore, t *Treasury, recipient custody.Address, amount coin.Coin) (coin.Coin, error) {
	if !amount.IsPositive() {
		return coin.Coin{}, errors.Wrap(ErrInvalidAmount, "must be positive")
	}
	balance, err := l.Balance(db, t, amount.Ticker)
	if err != nil {
		return coin.Coin{}, err
	}
	if !balance.IsGTE(amount) {
		return coin.Coin{}, errors.Wrapf(ErrInsufficientBalance, "%s held, %s required", balance, amount)
	}
	if err := l.cash.MoveCoins(db, t.Address(), recipient, amount); err != nil {
		return coin.Coin{}, err
	}
	return balance.Subtract(amount)
}
