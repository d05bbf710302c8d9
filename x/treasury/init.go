package treasury

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/x/cash"
)

const optKey = "treasuries"

// GenesisTreasury is a treasury created when the application starts, as if
// by CreateTreasuryMsg followed by deposits.
type GenesisTreasury struct {
	Name      string            `json:"name"`
	Owners    []custody.Address `json:"owners"`
	Threshold uint32            `json:"threshold"`
	Deposits  []coin.Coin       `json:"deposits"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis stores the treasury configuration and creates all genesis
// treasuries. The configuration is optional, defaults are used when it is
// missing.
func (Initializer) FromGenesis(opts custody.Options, db custody.KVStore) error {
	conf := DefaultConfiguration()
	switch err := gconf.InitConfig(db, opts, confPkg, &conf); {
	case errors.ErrNotFound.Is(err):
	case err != nil:
		return err
	}

	var gts []GenesisTreasury
	if err := opts.ReadOptions(optKey, &gts); err != nil {
		return err
	}
	treasuries := NewTreasuryBucket()
	ledger := NewLedger(cash.NewController())
	for i, gt := range gts {
		msg := CreateTreasuryMsg{Name: gt.Name, Owners: gt.Owners, Threshold: gt.Threshold}
		if err := msg.Validate(); err != nil {
			return errors.Wrapf(err, "treasury %d", i)
		}
		if uint32(len(gt.Owners)) > conf.MaxOwners {
			return errors.Wrapf(errors.ErrInput, "treasury %d: more than %d owners", i, conf.MaxOwners)
		}
		owners, err := NewAddressSet(gt.Owners...)
		if err != nil {
			return errors.Wrapf(err, "treasury %d", i)
		}
		t := &Treasury{Name: gt.Name, Owners: owners, Threshold: gt.Threshold}
		if err := treasuries.Create(db, t); err != nil {
			return errors.Wrapf(err, "treasury %d", i)
		}
		for _, c := range gt.Deposits {
			if _, err := ledger.Deposit(db, t, c); err != nil {
				return errors.Wrapf(err, "treasury %d deposit", i)
			}
		}
	}
	return nil
}
