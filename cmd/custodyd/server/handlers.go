package server

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/eventlog"
	"github.com/iov-one/custody/x/treasury"
)

const (
	maxBodySize     = 1 << 20
	defaultPageSize = 100
	maxPageSize     = 1000
)

type treasuryView struct {
	ID        string              `json:"id"`
	Name      string              `json:"name,omitempty"`
	Address   custody.Address     `json:"address"`
	Owners    treasury.AddressSet `json:"owners"`
	Threshold uint32              `json:"threshold"`
	CreatedAt custody.UnixTime    `json:"created_at"`
}

func newTreasuryView(t *treasury.Treasury) treasuryView {
	return treasuryView{
		ID:        hex.EncodeToString(t.ID),
		Name:      t.Name,
		Address:   t.Address(),
		Owners:    t.Owners,
		Threshold: t.Threshold,
		CreatedAt: t.CreatedAt,
	}
}

type proposalView struct {
	ID         string              `json:"id"`
	TreasuryID string              `json:"treasury_id"`
	Kind       string              `json:"kind"`
	Action     treasury.Action     `json:"action"`
	Status     treasury.Status     `json:"status"`
	Proposer   custody.Address     `json:"proposer"`
	Approvals  treasury.AddressSet `json:"approvals"`
	CreatedAt  custody.UnixTime    `json:"created_at"`
	ExpiresAt  custody.UnixTime    `json:"expires_at"`
	ExecutedAt custody.UnixTime    `json:"executed_at,omitempty"`
	Memo       string              `json:"memo,omitempty"`
	Funded     bool                `json:"funded"`
}

func newProposalView(p *treasury.Proposal, now custody.UnixTime, t *treasury.Treasury) proposalView {
	return proposalView{
		ID:         hex.EncodeToString(p.ID),
		TreasuryID: hex.EncodeToString(p.TreasuryID),
		Kind:       p.Action.Kind(),
		Action:     p.Action,
		Status:     p.Status(now, t),
		Proposer:   p.Proposer,
		Approvals:  p.Approvals,
		CreatedAt:  p.CreatedAt,
		ExpiresAt:  p.ExpiresAt,
		ExecutedAt: p.ExecutedAt,
		Memo:       p.Memo,
		Funded:     p.Funded,
	}
}

type createTreasuryRequest struct {
	Name      string            `json:"name"`
	Owners    []custody.Address `json:"owners"`
	Threshold uint32            `json:"threshold"`
}

type depositRequest struct {
	Amount coin.Coin `json:"amount"`
}

type proposeRequest struct {
	Kind      string               `json:"kind"`
	Recipient custody.Address      `json:"recipient,omitempty"`
	Amount    coin.Coin            `json:"amount"`
	Owner     custody.Address      `json:"owner,omitempty"`
	Threshold uint32               `json:"threshold,omitempty"`
	TTL       custody.UnixDuration `json:"ttl,omitempty"`
	Memo      string               `json:"memo,omitempty"`
}

func (r proposeRequest) action() (treasury.Action, error) {
	switch r.Kind {
	case treasury.KindTransfer:
		return &treasury.TransferAction{Recipient: r.Recipient, Amount: r.Amount}, nil
	case treasury.KindAddOwner:
		return &treasury.AddOwnerAction{Owner: r.Owner}, nil
	case treasury.KindRemoveOwner:
		return &treasury.RemoveOwnerAction{Owner: r.Owner}, nil
	case treasury.KindUpdateThreshold:
		return &treasury.UpdateThresholdAction{Threshold: r.Threshold}, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown proposal kind %q", r.Kind)
	}
}

// handleTreasuries serves POST and GET /treasuries.
func (s *Server) handleTreasuries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
	case http.MethodGet:
		all, err := s.client.ListTreasuries()
		if err != nil {
			writeErr(w, err)
			return
		}
		views := make([]treasuryView, len(all))
		for i, t := range all {
			views[i] = newTreasuryView(t)
		}
		JSONResp(w, http.StatusOK, struct {
			Treasuries []treasuryView `json:"treasuries"`
		}{Treasuries: views})
		return
	default:
		methodNotAllowed(w, "GET, POST")
		return
	}
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req createTreasuryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tid, err := s.client.CreateTreasury(r.Context(), caller, req.Name, req.Owners, req.Threshold)
	if err != nil {
		writeErr(w, err)
		return
	}
	s.writeTreasury(w, http.StatusCreated, tid)
}

// handleTreasury serves all /treasuries/{id}[/...] endpoints.
func (s *Server) handleTreasury(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path)
	if len(parts) < 2 {
		JSONErr(w, http.StatusNotFound, "Not found", "")
		return
	}
	tid, ok := parseID(w, parts[1])
	if !ok {
		return
	}

	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		s.writeTreasury(w, http.StatusOK, tid)
	case len(parts) == 3 && parts[2] == "deposits" && r.Method == http.MethodPost:
		s.deposit(w, r, tid)
	case len(parts) == 3 && parts[2] == "balances" && r.Method == http.MethodGet:
		coins, err := s.client.GetBalances(tid)
		if err != nil {
			writeErr(w, err)
			return
		}
		JSONResp(w, http.StatusOK, struct {
			Balances coin.Coins `json:"balances"`
		}{Balances: coins})
	case len(parts) == 4 && parts[2] == "balances" && r.Method == http.MethodGet:
		c, err := s.client.GetBalance(tid, parts[3])
		if err != nil {
			writeErr(w, err)
			return
		}
		JSONResp(w, http.StatusOK, c)
	case len(parts) == 3 && parts[2] == "proposals" && r.Method == http.MethodPost:
		s.propose(w, r, tid)
	case len(parts) == 3 && parts[2] == "proposals" && r.Method == http.MethodGet:
		s.listProposals(w, tid)
	default:
		JSONErr(w, http.StatusNotFound, "Not found", "")
	}
}

func (s *Server) writeTreasury(w http.ResponseWriter, status int, tid []byte) {
	t, err := s.client.GetTreasury(tid)
	if err != nil {
		writeErr(w, err)
		return
	}
	JSONResp(w, status, newTreasuryView(t))
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request, tid []byte) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req depositRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.client.Deposit(r.Context(), caller, tid, req.Amount); err != nil {
		writeErr(w, err)
		return
	}
	c, err := s.client.GetBalance(tid, req.Amount.Ticker)
	if err != nil {
		writeErr(w, err)
		return
	}
	JSONResp(w, http.StatusOK, c)
}

func (s *Server) propose(w http.ResponseWriter, r *http.Request, tid []byte) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req proposeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	action, err := req.action()
	if err != nil {
		writeErr(w, err)
		return
	}
	pid, err := s.client.Propose(r.Context(), caller, tid, action, req.TTL, req.Memo)
	if err != nil {
		writeErr(w, err)
		return
	}
	s.writeProposal(w, http.StatusCreated, pid)
}

func (s *Server) listProposals(w http.ResponseWriter, tid []byte) {
	t, err := s.client.GetTreasury(tid)
	if err != nil {
		writeErr(w, err)
		return
	}
	props, err := s.client.ListProposals(tid)
	if err != nil {
		writeErr(w, err)
		return
	}
	now := custody.AsUnixTime(s.now())
	views := make([]proposalView, len(props))
	for i, p := range props {
		views[i] = newProposalView(p, now, t)
	}
	JSONResp(w, http.StatusOK, struct {
		Proposals []proposalView `json:"proposals"`
	}{Proposals: views})
}

// handleProposal serves GET /proposals/{pid} as well as the approve and
// execute actions.
func (s *Server) handleProposal(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path)
	if len(parts) < 2 {
		JSONErr(w, http.StatusNotFound, "Not found", "")
		return
	}
	pid, ok := parseID(w, parts[1])
	if !ok {
		return
	}

	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		s.writeProposal(w, http.StatusOK, pid)
	case len(parts) == 3 && parts[2] == "approve" && r.Method == http.MethodPost:
		s.vote(w, r, pid, s.client.Approve)
	case len(parts) == 3 && parts[2] == "execute" && r.Method == http.MethodPost:
		s.vote(w, r, pid, s.client.Execute)
	default:
		JSONErr(w, http.StatusNotFound, "Not found", "")
	}
}

type voteFn func(ctx custody.Context, caller custody.Address, treasuryID, proposalID []byte) error

func (s *Server) vote(w http.ResponseWriter, r *http.Request, pid []byte, fn voteFn) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	p, err := s.client.GetProposal(pid)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := fn(r.Context(), caller, p.TreasuryID, pid); err != nil {
		writeErr(w, err)
		return
	}
	s.writeProposal(w, http.StatusOK, pid)
}

func (s *Server) writeProposal(w http.ResponseWriter, status int, pid []byte) {
	p, err := s.client.GetProposal(pid)
	if err != nil {
		writeErr(w, err)
		return
	}
	t, err := s.client.GetTreasury(p.TreasuryID)
	if err != nil {
		writeErr(w, err)
		return
	}
	JSONResp(w, status, newProposalView(p, custody.AsUnixTime(s.now()), t))
}

// handleEvents serves GET /events, reading the event journal.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if s.events == nil {
		JSONErr(w, http.StatusNotFound, "Event journal is disabled.", "")
		return
	}
	q := r.URL.Query()

	var tid []byte
	if raw := q.Get("treasury"); raw != "" {
		var ok bool
		if tid, ok = parseID(w, raw); !ok {
			return
		}
	}
	after, ok := intParam(w, q.Get("after"), 0, "after")
	if !ok {
		return
	}
	limit, ok := intParam(w, q.Get("limit"), defaultPageSize, "limit")
	if !ok {
		return
	}
	if limit <= 0 || limit > maxPageSize {
		JSONErr(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxPageSize), "")
		return
	}

	entries, err := s.events.List(r.Context(), tid, after, int(limit))
	if err != nil {
		writeErr(w, err)
		return
	}
	if entries == nil {
		entries = []eventlog.Entry{}
	}
	JSONResp(w, http.StatusOK, struct {
		Events []eventlog.Entry `json:"events"`
	}{Events: entries})
}

// handleHealth serves GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	version, err := s.node.Version()
	if err != nil {
		writeErr(w, err)
		return
	}
	JSONResp(w, http.StatusOK, struct {
		ChainID string `json:"chain_id"`
		Version int64  `json:"version"`
	}{
		ChainID: s.node.ChainID(),
		Version: version,
	})
}

// caller returns the address from the caller header or nil if the header is
// not present.
func (s *Server) caller(w http.ResponseWriter, r *http.Request) (custody.Address, bool) {
	raw := r.Header.Get(CallerHeader)
	if raw == "" {
		return nil, true
	}
	addr, err := custody.ParseAddress(raw)
	if err != nil {
		JSONErr(w, http.StatusBadRequest, "Invalid caller address.", err.Error())
		return nil, false
	}
	return addr, true
}

func parseID(w http.ResponseWriter, raw string) ([]byte, bool) {
	id, err := hex.DecodeString(raw)
	if err != nil || len(id) == 0 {
		JSONErr(w, http.StatusBadRequest, "ID must be a hex encoded value.", "")
		return nil, false
	}
	return id, true
}

func intParam(w http.ResponseWriter, raw string, fallback int64, name string) (int64, bool) {
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		JSONErr(w, http.StatusBadRequest, name+" must be an integer.", "")
		return 0, false
	}
	return n, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		JSONErr(w, http.StatusBadRequest, "Invalid request body.", err.Error())
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	JSONErr(w, http.StatusMethodNotAllowed, "Method not allowed", "")
}
