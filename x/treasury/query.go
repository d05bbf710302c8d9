package treasury

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/cash"
)

// Query paths registered by RegisterQuery.
const (
	QueryTreasuries        = "/treasuries"
	QueryProposals         = "/proposals"
	QueryTreasuryProposals = "/proposals/treasury"
	QueryBalances          = "/balances"
)

// RegisterQuery registers treasury lookups with the query router.
//
//   /treasuries          treasury ID -> treasury, no data -> all treasuries
//   /proposals           proposal ID -> proposal
//   /proposals/treasury  treasury ID -> all proposals of the treasury
//   /balances            treasury ID -> cash.Set of the treasury address
func RegisterQuery(qr custody.QueryRouter) {
	treasuries := NewTreasuryBucket()
	proposals := NewProposalBucket()
	ledger := NewLedger(cash.NewController())

	qr.Register(QueryTreasuries, custody.QueryHandlerFunc(func(db custody.ReadOnlyKVStore, id []byte) ([]custody.Model, error) {
		if len(id) == 0 {
			all, err := treasuries.All(db)
			if err != nil {
				return nil, err
			}
			res := make([]custody.Model, 0, len(all))
			for _, t := range all {
				m, err := pairs(t.ID, t)
				if err != nil {
					return nil, err
				}
				res = append(res, m...)
			}
			return res, nil
		}
		t, err := treasuries.GetTreasury(db, id)
		if err != nil {
			return notFoundIsEmpty(err)
		}
		return pairs(t.ID, t)
	}))

	qr.Register(QueryProposals, custody.QueryHandlerFunc(func(db custody.ReadOnlyKVStore, id []byte) ([]custody.Model, error) {
		// Only a full proposal ID can match.
		if len(id) != proposalIDLength {
			return nil, nil
		}
		p, err := proposals.GetProposal(db, nil, id)
		if err != nil {
			return notFoundIsEmpty(err)
		}
		return pairs(p.ID, p)
	}))

	qr.Register(QueryTreasuryProposals, custody.QueryHandlerFunc(func(db custody.ReadOnlyKVStore, id []byte) ([]custody.Model, error) {
		if len(id) != treasuryIDLength {
			return nil, errors.Wrapf(errors.ErrInput, "invalid treasury id length %d", len(id))
		}
		props, err := proposals.ByTreasury(db, id)
		if err != nil {
			return nil, err
		}
		res := make([]custody.Model, 0, len(props))
		for _, p := range props {
			m, err := pairs(p.ID, p)
			if err != nil {
				return nil, err
			}
			res = append(res, m...)
		}
		return res, nil
	}))

	qr.Register(QueryBalances, custody.QueryHandlerFunc(func(db custody.ReadOnlyKVStore, id []byte) ([]custody.Model, error) {
		t, err := treasuries.GetTreasury(db, id)
		if err != nil {
			return notFoundIsEmpty(err)
		}
		coins, err := ledger.Balances(db, t)
		if err != nil || coins.IsEmpty() {
			return nil, err
		}
		return pairs(t.ID, &cash.Set{Coins: coins})
	}))
}

func pairs(key []byte, m custody.Marshaller) ([]custody.Model, error) {
	raw, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	return []custody.Model{custody.Pair(key, raw)}, nil
}

func notFoundIsEmpty(err error) ([]custody.Model, error) {
	if errors.ErrNotFound.Is(err) || ErrTransactionNotFound.Is(err) {
		return nil, nil
	}
	return nil, err
}
