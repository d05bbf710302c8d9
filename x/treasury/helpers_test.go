package treasury

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/utils"
)

type routes map[string]custody.Handler

func (r routes) Handle(path string, h custody.Handler) {
	r[path] = h
}

// testEnv runs messages the way the application does: one at a time, each
// on its own savepoint of a shared store. It implements Executor.
type testEnv struct {
	t       testing.TB
	mu      sync.Mutex
	db      custody.CacheableKVStore
	clock   *custodytest.Clock
	routes  routes
	queries custody.QueryRouter
	events  []custody.Event
}

var _ Executor = (*testEnv)(nil)

func newTestEnv(t testing.TB) *testEnv {
	env := &testEnv{
		t:       t,
		db:      store.MemStore(),
		clock:   custodytest.NewClock(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
		routes:  make(routes),
		queries: custody.NewQueryRouter(),
	}
	RegisterRoutes(env.routes, x.CallerAuth{}, cash.NewController())
	RegisterQuery(env.queries)
	return env
}

func (e *testEnv) Deliver(ctx context.Context, caller custody.Address, msg custody.Msg) (*custody.DeliverResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.routes[msg.Path()]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "path %s", msg.Path())
	}
	ctx = custody.WithBlockTime(ctx, e.clock.Now())
	if caller != nil {
		ctx = x.WithCaller(ctx, caller)
	}
	var res *custody.DeliverResult
	err := utils.InSavepoint(e.db, func(db custody.KVStore) error {
		var err error
		res, err = h.Deliver(ctx, db, &custodytest.Tx{Msg: msg})
		return err
	})
	if err != nil {
		return nil, err
	}
	e.events = append(e.events, res.Events...)
	return res, nil
}

func (e *testEnv) Query(path string, data []byte) ([]custody.Model, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := e.queries.Handler(path)
	if h == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "path %s", path)
	}
	return h.Query(e.db, data)
}

// eventKinds returns the kinds of all events emitted so far.
func (e *testEnv) eventKinds() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	kinds := make([]string, len(e.events))
	for i, ev := range e.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

// newTreasury creates a treasury owned by n new addresses, funded with the
// given coins.
func (e *testEnv) newTreasury(c *Client, n int, threshold uint32) ([]byte, []custody.Address) {
	e.t.Helper()
	owners := make([]custody.Address, n)
	for i := range owners {
		owners[i] = custodytest.NewAddress()
	}
	id, err := c.CreateTreasury(context.Background(), owners[0], "test", owners, threshold)
	if err != nil {
		e.t.Fatalf("cannot create treasury: %+v", err)
	}
	return id, owners
}

func assertErrIs(t testing.TB, want *errors.Error, err error) {
	t.Helper()
	if want == nil {
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		return
	}
	if !want.Is(err) {
		t.Fatalf("want %q error, got %+v", want, err)
	}
}
