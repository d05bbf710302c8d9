package app

import (
	"context"
	"sync"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/libs/log"
)

// Node is the single writer of the application state. Every message is
// delivered one at a time, on a cache wrap of the committed state. The wrap
// is committed only if the handler succeeded, so a failed message leaves no
// trace. Queries can run concurrently and see only committed state.
type Node struct {
	mu      sync.RWMutex
	store   *CommitStore
	handler custody.Handler
	queries custody.QueryRouter
	init    custody.Initializer
	chainID string

	now     func() time.Time
	logger  log.Logger
	sinks   []EventSink
	version prometheus.Gauge
}

// Option configures a Node.
type Option func(*Node)

// WithClock sets the source of the block time. Clock is read once at the
// beginning of every call.
func WithClock(now func() time.Time) Option {
	return func(n *Node) { n.now = now }
}

// WithNodeLogger sets the logger passed on the context to the handlers.
func WithNodeLogger(logger log.Logger) Option {
	return func(n *Node) { n.logger = logger }
}

// WithEventSinks adds sinks receiving the events of committed transitions.
func WithEventSinks(sinks ...EventSink) Option {
	return func(n *Node) { n.sinks = append(n.sinks, sinks...) }
}

// WithInitializer sets the genesis initializer.
func WithInitializer(init custody.Initializer) Option {
	return func(n *Node) { n.init = init }
}

// WithRegisterer registers the node metrics with the registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(n *Node) {
		if reg != nil {
			reg.MustRegister(n.version)
		}
	}
}

// NewNode returns a node operating on the given store. The latest committed
// version is loaded.
func NewNode(store custody.CommitKVStore, handler custody.Handler, queries custody.QueryRouter, opts ...Option) (*Node, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	n := &Node{
		store:   cs,
		handler: handler,
		queries: queries,
		now:     time.Now,
		logger:  log.NewNopLogger(),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "custody_committed_version",
			Help: "Latest committed version of the application state.",
		}),
	}
	for _, fn := range opts {
		fn(n)
	}

	info, err := cs.CommitInfo()
	if err != nil {
		return nil, err
	}
	n.version.Set(float64(info.Version))

	read := cs.CacheWrap()
	defer read.Discard()
	if n.chainID, err = loadChainID(read); err != nil {
		return nil, err
	}
	return n, nil
}

// ChainID returns the identifier set by the genesis, or an empty string
// if the genesis was not loaded yet.
func (n *Node) ChainID() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.chainID
}

// InitGenesis loads the initial state. It can be done only once for the
// lifetime of a store.
func (n *Node) InitGenesis(ctx context.Context, gen Genesis) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.chainID != "" {
		return errors.Wrapf(errors.ErrState, "genesis already loaded for %s", n.chainID)
	}
	cache := n.store.CacheWrap()
	if err := saveChainID(cache, gen.ChainID); err != nil {
		cache.Discard()
		return err
	}
	if n.init != nil {
		if err := n.init.FromGenesis(gen.AppState, cache); err != nil {
			cache.Discard()
			return errors.Wrap(err, "genesis")
		}
	}
	info, err := n.store.Commit(cache)
	if err != nil {
		return err
	}
	n.chainID = gen.ChainID
	n.version.Set(float64(info.Version))
	n.logger.Info("Genesis loaded", "chain_id", gen.ChainID, "version", info.Version)
	return nil
}

// Deliver executes the message on behalf of the caller and commits the
// result. A nil caller stands for an anonymous call.
func (n *Node) Deliver(ctx context.Context, caller custody.Address, msg custody.Msg) (*custody.DeliverResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	info, err := n.store.CommitInfo()
	if err != nil {
		return nil, err
	}
	tx := msgTx{msg: msg}
	ctx = n.context(ctx, caller, info.Version+1, "deliver", tx)

	cache := n.store.CacheWrap()
	res, err := n.handler.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	info, err = n.store.Commit(cache)
	if err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	n.version.Set(float64(info.Version))

	// Sinks are notified under the lock, so that they observe events in
	// commit order. The state is already committed, a sink failure is
	// only logged.
	for _, s := range n.sinks {
		if err := s.Publish(ctx, res.Events); err != nil {
			custody.GetLogger(ctx).Error("Cannot publish events", "err", err, "sink", s)
		}
	}
	return res, nil
}

// Check validates the message against the committed state, without
// modifying it.
func (n *Node) Check(ctx context.Context, caller custody.Address, msg custody.Msg) (*custody.CheckResult, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	info, err := n.store.CommitInfo()
	if err != nil {
		return nil, err
	}
	tx := msgTx{msg: msg}
	ctx = n.context(ctx, caller, info.Version+1, "check", tx)

	cache := n.store.CacheWrap()
	defer cache.Discard()
	return n.handler.Check(ctx, cache, tx)
}

// Query runs a registered query against the committed state.
func (n *Node) Query(path string, data []byte) ([]custody.Model, error) {
	h := n.queries.Handler(path)
	if h == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no query handler for path %q", path)
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	read := n.store.CacheWrap()
	defer read.Discard()
	return h.Query(read, data)
}

// Version returns the latest committed version.
func (n *Node) Version() (int64, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	info, err := n.store.CommitInfo()
	return info.Version, err
}

func (n *Node) context(ctx context.Context, caller custody.Address, height int64, call string, tx custody.Tx) context.Context {
	ctx = custody.WithBlockTime(ctx, n.now())
	ctx = custody.WithHeight(ctx, height)
	ctx = custody.WithLogger(ctx, n.logger)
	ctx = custody.WithLogInfo(ctx, "call", call, "path", custody.GetPath(tx))
	if caller != nil {
		ctx = x.WithCaller(ctx, caller)
	}
	return ctx
}

// msgTx is a transaction carrying a single message.
type msgTx struct {
	msg custody.Msg
}

func (tx msgTx) GetMsg() (custody.Msg, error) {
	return tx.msg, nil
}
