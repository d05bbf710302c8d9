package treasury

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x/cash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenesis(t *testing.T) {
	a, b := custodytest.NewAddress(), custodytest.NewAddress()
	genesis := `{
		"conf": {
			"treasury": {
				"default_ttl": "24h",
				"max_ttl": "720h",
				"max_owners": 10,
				"reject_unfunded_transfers": true
			}
		},
		"treasuries": [
			{
				"name": "ops",
				"owners": ["` + a.String() + `", "` + b.String() + `"],
				"threshold": 2,
				"deposits": ["100 USD", "3 BTC"]
			}
		]
	}`
	var opts custody.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	require.NoError(t, Initializer{}.FromGenesis(opts, db))

	conf, err := loadConf(db)
	require.NoError(t, err)
	assert.Equal(t, custody.AsUnixDuration(24*time.Hour), conf.DefaultTTL)
	assert.Equal(t, uint32(10), conf.MaxOwners)
	assert.True(t, conf.RejectUnfundedTransfers)

	tr, err := NewTreasuryBucket().GetTreasury(db, custodytest.SequenceID(1))
	require.NoError(t, err)
	assert.Equal(t, "ops", tr.Name)
	assert.Equal(t, uint32(2), tr.Threshold)
	assert.True(t, tr.IsOwner(a))
	assert.True(t, tr.IsOwner(b))

	coins, err := NewLedger(cash.NewController()).Balances(db, tr)
	require.NoError(t, err)
	assert.Equal(t, coin.Coins{coin.NewCoin(3, "BTC"), coin.NewCoin(100, "USD")}, coins)
}

func TestGenesisDefaults(t *testing.T) {
	db := store.MemStore()
	require.NoError(t, Initializer{}.FromGenesis(custody.Options{}, db))
	conf, err := loadConf(db)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfiguration(), conf)
}

func TestGenesisInvalidThreshold(t *testing.T) {
	a := custodytest.NewAddress()
	opts := custody.Options{
		"treasuries": json.RawMessage(`[{"owners": ["` + a.String() + `"], "threshold": 2}]`),
	}
	err := Initializer{}.FromGenesis(opts, store.MemStore())
	assert.True(t, ErrInvalidThreshold.Is(err), "unexpected error: %+v", err)
}
