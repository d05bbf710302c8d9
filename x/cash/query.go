package cash

import (
	"github.com/iov-one/custody"
)

// RegisterQuery registers the wallet lookup under /wallets. The query data
// is the wallet address and the result is the serialized Set.
func RegisterQuery(qr custody.QueryRouter) {
	ctrl := NewController()
	qr.Register("/wallets", custody.QueryHandlerFunc(func(db custody.ReadOnlyKVStore, data []byte) ([]custody.Model, error) {
		coins, err := ctrl.Balance(db, custody.Address(data))
		if err != nil || coins.IsEmpty() {
			return nil, err
		}
		raw, err := (&Set{Coins: coins}).Marshal()
		if err != nil {
			return nil, err
		}
		return []custody.Model{custody.Pair(data, raw)}, nil
	}))
}
