package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store/iavl"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/treasury"
	"github.com/iov-one/custody/x/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu     sync.Mutex
	events []custody.Event
}

func (s *memorySink) Publish(ctx context.Context, events []custody.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

func (s *memorySink) kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]string, len(s.events))
	for i, e := range s.events {
		res[i] = e.Kind
	}
	return res
}

func newTestNode(t testing.TB, clock *custodytest.Clock, sink app.EventSink) *app.Node {
	t.Helper()
	r := app.NewRouter()
	treasury.RegisterRoutes(r, x.CallerAuth{}, cash.NewController())
	qr := custody.NewQueryRouter()
	qr.RegisterAll(treasury.RegisterQuery, cash.RegisterQuery)
	handler := app.ChainDecorators(
		utils.NewRecovery(),
		utils.NewLogging(),
	).WithHandler(r)

	n, err := app.NewNode(iavl.NewMemCommitStore(), handler, qr,
		app.WithClock(clock.Now),
		app.WithEventSinks(sink),
		app.WithInitializer(app.ChainInitializers(cash.Initializer{}, treasury.Initializer{})),
	)
	require.NoError(t, err)
	return n
}

func TestNodeCommitsOnlySuccessfulDeliveries(t *testing.T) {
	ctx := context.Background()
	clock := custodytest.NewClock(time.Now())
	sink := &memorySink{}
	n := newTestNode(t, clock, sink)
	c := treasury.NewClient(n)

	a, b := custodytest.NewAddress(), custodytest.NewAddress()
	tid, err := c.CreateTreasury(ctx, a, "ops", []custody.Address{a, b}, 2)
	require.NoError(t, err)
	v1, err := n.Version()
	require.NoError(t, err)

	// Failing delivery does not create a version.
	_, err = c.CreateTreasury(ctx, a, "bad", []custody.Address{a}, 2)
	assert.True(t, treasury.ErrInvalidThreshold.Is(err))
	v2, err := n.Version()
	require.NoError(t, err)
	assert.Equal(t, v1, v2)

	require.NoError(t, c.Deposit(ctx, nil, tid, coin.NewCoin(10, "X")))
	balance, err := c.GetBalance(tid, "X")
	require.NoError(t, err)
	assert.Equal(t, coin.NewCoin(10, "X"), balance)

	assert.Equal(t, []string{treasury.EventTreasuryCreated, treasury.EventFundsDeposited}, sink.kinds())
}

func TestNodeConcurrentExecute(t *testing.T) {
	ctx := context.Background()
	clock := custodytest.NewClock(time.Now())
	sink := &memorySink{}
	n := newTestNode(t, clock, sink)
	c := treasury.NewClient(n)

	a, b, d := custodytest.NewAddress(), custodytest.NewAddress(), custodytest.NewAddress()
	tid, err := c.CreateTreasury(ctx, nil, "", []custody.Address{a, b, d}, 2)
	require.NoError(t, err)
	require.NoError(t, c.Deposit(ctx, nil, tid, coin.NewCoin(150, "X")))
	pid, err := c.ProposeTransfer(ctx, a, tid, custodytest.NewAddress(), coin.NewCoin(100, "X"), 0)
	require.NoError(t, err)
	require.NoError(t, c.Approve(ctx, b, tid, pid))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, caller := range []custody.Address{b, d} {
		wg.Add(1)
		go func(i int, caller custody.Address) {
			defer wg.Done()
			errs[i] = c.Execute(ctx, caller, tid, pid)
		}(i, caller)
	}
	wg.Wait()

	var failed int
	for _, err := range errs {
		if err != nil {
			failed++
			assert.True(t, treasury.ErrAlreadyExecuted.Is(err), "unexpected error: %+v", err)
		}
	}
	assert.Equal(t, 1, failed)

	balance, err := c.GetBalance(tid, "X")
	require.NoError(t, err)
	assert.Equal(t, coin.NewCoin(50, "X"), balance)
}

func TestNodeGenesis(t *testing.T) {
	ctx := context.Background()
	clock := custodytest.NewClock(time.Now())
	n := newTestNode(t, clock, &memorySink{})

	owner := custodytest.NewAddress()
	gen := app.Genesis{
		ChainID: "custody-test",
		AppState: custody.Options{
			"treasuries": []byte(`[{"name": "main", "owners": ["` + owner.String() + `"], "threshold": 1, "deposits": ["5 ETH"]}]`),
		},
	}
	require.NoError(t, n.InitGenesis(ctx, gen))
	assert.Equal(t, "custody-test", n.ChainID())

	err := n.InitGenesis(ctx, gen)
	assert.True(t, errors.ErrState.Is(err))

	c := treasury.NewClient(n)
	balance, err := c.GetBalance(custodytest.SequenceID(1), "ETH")
	require.NoError(t, err)
	assert.Equal(t, coin.NewCoin(5, "ETH"), balance)
}

func TestNodeQueryUnknownPath(t *testing.T) {
	n := newTestNode(t, custodytest.NewClock(time.Now()), &memorySink{})
	_, err := n.Query("/unknown", nil)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestNodeVersionMetric(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := app.NewRouter()
	treasury.RegisterRoutes(r, x.CallerAuth{}, cash.NewController())
	n, err := app.NewNode(iavl.NewMemCommitStore(), r, custody.NewQueryRouter(), app.WithRegisterer(reg))
	require.NoError(t, err)

	a := custodytest.NewAddress()
	_, err = n.Deliver(context.Background(), a, &treasury.CreateTreasuryMsg{Owners: []custody.Address{a}, Threshold: 1})
	require.NoError(t, err)

	v, err := n.Version()
	require.NoError(t, err)
	count, err := testutil.GatherAndCount(reg, "custody_committed_version")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 1)
	assert.Equal(t, float64(v), mfs[0].GetMetric()[0].GetGauge().GetValue())
}
