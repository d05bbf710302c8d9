package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/iov-one/custody"
	custodyapp "github.com/iov-one/custody/app"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/treasury"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func TestCommitKVStore(t *testing.T) {
	_, err := CommitKVStore("rocksdb", "")
	assert.True(t, errors.ErrInput.Is(err))

	_, err = CommitKVStore(BackendMemDB, "")
	assert.NoError(t, err)
}

func TestStackTransfer(t *testing.T) {
	ctx := context.Background()
	store, err := CommitKVStore(BackendMemDB, "")
	require.NoError(t, err)
	node, err := NewNode(store, log.NewNopLogger(), prometheus.NewRegistry())
	require.NoError(t, err)

	a, b, recipient := custodytest.NewAddress(), custodytest.NewAddress(), custodytest.NewAddress()
	require.NoError(t, node.InitGenesis(ctx, custodyapp.Genesis{ChainID: "stack-test"}))

	c := treasury.NewClient(node)
	tid, err := c.CreateTreasury(ctx, a, "ops", []custody.Address{a, b}, 2)
	require.NoError(t, err)
	require.NoError(t, c.Deposit(ctx, a, tid, coin.NewCoin(10, "ETH")))

	pid, err := c.ProposeTransfer(ctx, a, tid, recipient, coin.NewCoin(4, "ETH"), 0)
	require.NoError(t, err)

	err = c.Execute(ctx, a, tid, pid)
	assert.True(t, treasury.ErrInsufficientApprovals.Is(err))

	require.NoError(t, c.Approve(ctx, b, tid, pid))
	require.NoError(t, c.Execute(ctx, a, tid, pid))

	balance, err := c.GetBalance(tid, "ETH")
	require.NoError(t, err)
	assert.Equal(t, coin.NewCoin(6, "ETH"), balance)

	models, err := node.Query("/wallets", recipient)
	require.NoError(t, err)
	assert.Len(t, models, 1)
}

func TestLevelDBStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := CommitKVStore(BackendLevelDB, path)
	require.NoError(t, err)
	node, err := NewNode(store, log.NewNopLogger(), prometheus.NewRegistry())
	require.NoError(t, err)
	require.NoError(t, node.InitGenesis(ctx, custodyapp.Genesis{ChainID: "persist-test"}))
	v, err := node.Version()
	require.NoError(t, err)
	store.(interface{ Close() }).Close()

	store, err = CommitKVStore(BackendLevelDB, path)
	require.NoError(t, err)
	node, err = NewNode(store, log.NewNopLogger(), prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, "persist-test", node.ChainID())
	reloaded, err := node.Version()
	require.NoError(t, err)
	assert.Equal(t, v, reloaded)
}
