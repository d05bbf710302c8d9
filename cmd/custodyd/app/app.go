/*
Package app wires together the components of the custody application:
the message router, the decorator chain, queries, genesis initializers and
the state store.
*/
package app

import (
	"path/filepath"
	"strings"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store/iavl"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/treasury"
	"github.com/iov-one/custody/x/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/libs/log"
)

// Store backends supported by CommitKVStore.
const (
	BackendLevelDB = "goleveldb"
	BackendMemDB   = "memdb"
)

// Authenticator returns the caller based authentication. The identity of
// the caller is established by the transport and placed on the context.
func Authenticator() x.Authenticator {
	return x.CallerAuth{}
}

// CashControl returns a controller for cash functions.
func CashControl() cash.Controller {
	return cash.NewController()
}

// Chain returns a chain of decorators, to handle logging, recovery and
// metrics. On deliver a failed message does not modify the state.
func Chain(reg prometheus.Registerer) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewMetrics(reg),
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router returns a router dispatching to all treasury messages.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	treasury.RegisterRoutes(r, authFn, CashControl())
	return r
}

// QueryRouter returns a query router, allowing access to "/wallets",
// "/treasuries", "/proposals", "/proposals/treasury" and "/balances".
func QueryRouter() custody.QueryRouter {
	r := custody.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		treasury.RegisterQuery,
	)
	return r
}

// Stack wires up the router with the decorator chain.
func Stack(reg prometheus.Registerer) custody.Handler {
	return Chain(reg).WithHandler(Router(Authenticator()))
}

// Initializer loads the state of all extensions from the genesis.
func Initializer() custody.Initializer {
	return app.ChainInitializers(
		cash.Initializer{},
		treasury.Initializer{},
	)
}

// CommitKVStore returns a store for the given backend. The leveldb backend
// persists the data in the given directory.
func CommitKVStore(backend, dbPath string) (custody.CommitKVStore, error) {
	switch backend {
	case BackendMemDB:
		return iavl.NewMemCommitStore(), nil
	case BackendLevelDB:
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown store backend %q", backend)
	}

	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database path %q", dbPath)
	}
	// Some external calls accidentally add a ".db", which is removed.
	path = strings.TrimSuffix(path, filepath.Ext(path))
	return iavl.NewCommitStore(filepath.Dir(path), filepath.Base(path)), nil
}

// NewNode returns a node running the complete custody stack on top of the
// given store.
func NewNode(store custody.CommitKVStore, logger log.Logger, reg prometheus.Registerer, sinks ...app.EventSink) (*app.Node, error) {
	return app.NewNode(store, Stack(reg), QueryRouter(),
		app.WithNodeLogger(logger),
		app.WithInitializer(Initializer()),
		app.WithRegisterer(reg),
		app.WithEventSinks(sinks...),
	)
}
