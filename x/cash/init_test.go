package cash

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenesis(t *testing.T) {
	addr := custodytest.NewAddress()
	genesis := `{"cash": [{"address": "` + addr.String() + `", "coins": ["100 USD", {"ticker": "EUR", "amount": 7}, "3 USD"]}]}`

	var opts custody.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	require.NoError(t, Initializer{}.FromGenesis(opts, db))

	got, err := NewController().Balance(db, addr)
	require.NoError(t, err)
	assert.Equal(t, coin.Coins{coin.NewCoin(7, "EUR"), coin.NewCoin(103, "USD")}, got)
}

func TestGenesisInvalidAddress(t *testing.T) {
	opts := custody.Options{"cash": json.RawMessage(`[{"address": "", "coins": ["1 USD"]}]`)}
	err := Initializer{}.FromGenesis(opts, store.MemStore())
	assert.Error(t, err)
}

func TestWalletQuery(t *testing.T) {
	db := store.MemStore()
	addr := custodytest.NewAddress()
	require.NoError(t, NewController().IssueCoins(db, addr, coin.NewCoin(9, "GLD")))

	qr := custody.NewQueryRouter()
	RegisterQuery(qr)
	h := qr.Handler("/wallets")
	require.NotNil(t, h)

	res, err := h.Query(db, addr)
	require.NoError(t, err)
	require.Len(t, res, 1)
	var set Set
	require.NoError(t, set.Unmarshal(res[0].Value))
	assert.Equal(t, coin.Coins{coin.NewCoin(9, "GLD")}, set.Coins)

	res, err = h.Query(db, custodytest.NewAddress())
	require.NoError(t, err)
	assert.Empty(t, res)
}
