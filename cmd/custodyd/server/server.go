/*
Package server exposes the treasury over an HTTP JSON API.

The server does not authenticate callers. It is meant to run behind a gateway
that verifies the identity of the caller and passes the address in the
X-Custody-Caller header.
*/
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/iov-one/custody/eventlog"
	"github.com/iov-one/custody/x/treasury"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/libs/log"
)

// CallerHeader is the name of the header carrying the caller address.
const CallerHeader = "X-Custody-Caller"

// Node is the application state the server operates on.
type Node interface {
	treasury.Executor
	ChainID() string
	Version() (int64, error)
}

// EventReader provides access to the event journal.
type EventReader interface {
	List(ctx context.Context, treasuryID []byte, after int64, limit int) ([]eventlog.Entry, error)
}

// Config holds the server settings.
type Config struct {
	// RateLimit is the number of requests per second allowed for a single
	// client. Zero disables rate limiting.
	RateLimit float64
	// Burst is the maximum number of requests a client can make at once.
	Burst int
}

// Server is the HTTP JSON API of the treasury.
type Server struct {
	node     Node
	client   *treasury.Client
	events   EventReader
	gatherer prometheus.Gatherer
	logger   log.Logger
	now      func() time.Time
	conf     Config
}

// New returns a server operating on the given node. Events are read from
// the journal, which can be nil if the journal is disabled.
func New(node Node, events EventReader, gatherer prometheus.Gatherer, logger log.Logger, conf Config) *Server {
	return &Server{
		node:     node,
		client:   treasury.NewClient(node),
		events:   events,
		gatherer: gatherer,
		logger:   logger,
		now:      time.Now,
		conf:     conf,
	}
}

// Handler returns the HTTP handler serving all endpoints.
func (s *Server) Handler() http.Handler {
	rt := http.NewServeMux()
	rt.HandleFunc("/treasuries", s.handleTreasuries)
	rt.HandleFunc("/treasuries/", s.handleTreasury)
	rt.HandleFunc("/proposals/", s.handleProposal)
	rt.HandleFunc("/events", s.handleEvents)
	rt.HandleFunc("/healthz", s.handleHealth)
	rt.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	rt.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		JSONErr(w, http.StatusNotFound, "Not found", "")
	})

	var h http.Handler = rt
	if s.conf.RateLimit > 0 {
		h = newRateLimiter(s.conf.RateLimit, s.conf.Burst).Middleware(h)
	}
	return withRequestLog(s.logger, h)
}

// pathParts splits the URL path, ignoring leading and trailing slashes.
func pathParts(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
