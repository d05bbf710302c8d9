package treasury

import (
	"encoding/hex"
	"strconv"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/utils"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r custody.Registry, auth x.Authenticator, ctrl cash.Controller) {
	treasuries := NewTreasuryBucket()
	proposals := NewProposalBucket()
	ledger := NewLedger(ctrl)
	r.Handle(pathCreateTreasuryMsg, &CreateTreasuryHandler{auth: auth, treasuries: treasuries})
	r.Handle(pathDepositMsg, &DepositHandler{auth: auth, treasuries: treasuries, ledger: ledger})
	r.Handle(pathProposeMsg, &ProposeHandler{auth: auth, treasuries: treasuries, proposals: proposals, ledger: ledger})
	r.Handle(pathApproveMsg, &ApproveHandler{auth: auth, treasuries: treasuries, proposals: proposals})
	r.Handle(pathExecuteMsg, &ExecuteHandler{auth: auth, treasuries: treasuries, proposals: proposals, ledger: ledger})
}

// CreateTreasuryHandler creates treasuries. Anybody can create one.
type CreateTreasuryHandler struct {
	auth       x.Authenticator
	treasuries *TreasuryBucket
}

var _ custody.Handler = CreateTreasuryHandler{}

func (h CreateTreasuryHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h CreateTreasuryHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, now, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	owners, err := NewAddressSet(msg.Owners...)
	if err != nil {
		return nil, err
	}
	t := &Treasury{
		Name:      msg.Name,
		Owners:    owners,
		Threshold: msg.Threshold,
		CreatedAt: now,
	}
	if err := h.treasuries.Create(db, t); err != nil {
		return nil, errors.Wrap(err, "cannot store treasury")
	}
	ev := custody.NewEvent(EventTreasuryCreated, t.ID, now, withCaller(ctx, h.auth, "creator",
		"owners", t.Owners.String(),
		"threshold", strconv.FormatUint(uint64(t.Threshold), 10),
	)...)
	return &custody.DeliverResult{Data: t.ID, Events: []custody.Event{ev}}, nil
}

func (h CreateTreasuryHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*CreateTreasuryMsg, custody.UnixTime, error) {
	var msg *CreateTreasuryMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, 0, errors.Wrap(err, "load msg")
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, 0, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, 0, err
	}
	if uint32(len(msg.Owners)) > conf.MaxOwners {
		return nil, 0, errors.Wrapf(errors.ErrInput, "more than %d owners", conf.MaxOwners)
	}
	return msg, now, nil
}

// DepositHandler increases treasury balances. Anybody can deposit.
type DepositHandler struct {
	auth       x.Authenticator
	treasuries *TreasuryBucket
	ledger     Ledger
}

var _ custody.Handler = DepositHandler{}

func (h DepositHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h DepositHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, t, now, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	balance, err := h.ledger.Deposit(db, t, msg.Amount)
	if err != nil {
		return nil, err
	}
	ev := custody.NewEvent(EventFundsDeposited, t.ID, now, withCaller(ctx, h.auth, "depositor",
		"amount", msg.Amount.String(),
		"balance", balance.String(),
	)...)
	return &custody.DeliverResult{Events: []custody.Event{ev}}, nil
}

func (h DepositHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*DepositMsg, *Treasury, custody.UnixTime, error) {
	var msg *DepositMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, 0, errors.Wrap(err, "load msg")
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, 0, err
	}
	t, err := h.treasuries.GetTreasury(db, msg.TreasuryID)
	if err != nil {
		return nil, nil, 0, err
	}
	return msg, t, now, nil
}

// ProposeHandler creates proposals. Only an owner can propose and the
// proposer approval is recorded with the proposal.
type ProposeHandler struct {
	auth       x.Authenticator
	treasuries *TreasuryBucket
	proposals  *ProposalBucket
	ledger     Ledger
}

var _ custody.Handler = ProposeHandler{}

func (h ProposeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h ProposeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	p, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	t := p.treasury
	prop := &Proposal{
		ID:         t.nextProposalID(),
		TreasuryID: t.ID,
		Action:     p.msg.Action,
		Proposer:   p.caller,
		Approvals:  AddressSet{p.caller},
		CreatedAt:  p.now,
		ExpiresAt:  p.now.Add(p.ttl.Duration()),
		Memo:       p.msg.Memo,
		Funded:     p.funded,
	}
	if err := h.treasuries.Save(db, t); err != nil {
		return nil, errors.Wrap(err, "cannot store treasury")
	}
	if err := h.proposals.Save(db, prop); err != nil {
		return nil, errors.Wrap(err, "cannot store proposal")
	}
	ev := custody.NewEvent(EventTransactionProposed, t.ID, p.now,
		"proposal", hex.EncodeToString(prop.ID),
		"kind", prop.Action.Kind(),
		"proposer", p.caller.String(),
		"expires_at", strconv.FormatInt(int64(prop.ExpiresAt), 10),
		"approvals", strconv.Itoa(len(prop.Approvals)),
		"threshold", strconv.FormatUint(uint64(t.Threshold), 10),
		"funded", strconv.FormatBool(prop.Funded),
	)
	return &custody.DeliverResult{Data: prop.ID, Events: []custody.Event{ev}}, nil
}

type proposal struct {
	msg      *ProposeMsg
	treasury *Treasury
	caller   custody.Address
	now      custody.UnixTime
	ttl      custody.UnixDuration
	funded   bool
}

func (h ProposeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*proposal, error) {
	var msg *ProposeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	t, err := h.treasuries.GetTreasury(db, msg.TreasuryID)
	if err != nil {
		return nil, err
	}
	caller := x.MainSigner(ctx, h.auth)
	if !t.IsOwner(caller) {
		return nil, errors.Wrapf(ErrNotOwner, "caller %s", caller)
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	ttl, err := conf.ttl(msg.TTL)
	if err != nil {
		return nil, err
	}

	// Owner and threshold changes are validated against the owner set at
	// execution time, because it may change before then. The balance
	// check is advisory for the same reason.
	funded := true
	if transfer, ok := msg.Action.(*TransferAction); ok {
		if transfer.Recipient.Equals(t.Address()) {
			return nil, errors.Wrap(errors.ErrInput, "cannot transfer to the treasury itself")
		}
		balance, err := h.ledger.Balance(db, t, transfer.Amount.Ticker)
		if err != nil {
			return nil, err
		}
		funded = balance.IsGTE(transfer.Amount)
		if !funded && conf.RejectUnfundedTransfers {
			return nil, errors.Wrapf(ErrInsufficientBalance, "%s held, %s required", balance, transfer.Amount)
		}
	}
	return &proposal{
		msg:      msg,
		treasury: t,
		caller:   caller,
		now:      now,
		ttl:      ttl,
		funded:   funded,
	}, nil
}

// ApproveHandler records approvals of owners.
type ApproveHandler struct {
	auth       x.Authenticator
	treasuries *TreasuryBucket
	proposals  *ProposalBucket
}

var _ custody.Handler = ApproveHandler{}

func (h ApproveHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h ApproveHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	v, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	approvals, err := v.proposal.Approvals.Add(v.caller)
	if err != nil {
		return nil, err
	}
	v.proposal.Approvals = approvals
	if err := h.proposals.Save(db, v.proposal); err != nil {
		return nil, errors.Wrap(err, "cannot store proposal")
	}
	ev := custody.NewEvent(EventTransactionApproved, v.treasury.ID, v.now,
		"proposal", hex.EncodeToString(v.proposal.ID),
		"approver", v.caller.String(),
		"approvals", strconv.Itoa(len(approvals)),
		"threshold", strconv.FormatUint(uint64(v.treasury.Threshold), 10),
	)
	return &custody.DeliverResult{Data: v.proposal.ID, Events: []custody.Event{ev}}, nil
}

func (h ApproveHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*vote, error) {
	var msg *ApproveMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	v, err := loadVote(ctx, db, h.auth, h.treasuries, h.proposals, msg.TreasuryID, msg.ProposalID)
	if err != nil {
		return nil, err
	}
	if v.proposal.Approvals.Contains(v.caller) {
		return nil, errors.Wrapf(ErrAlreadyApproved, "caller %s", v.caller)
	}
	return v, nil
}

// ExecuteHandler applies proposals that collected enough approvals.
type ExecuteHandler struct {
	auth       x.Authenticator
	treasuries *TreasuryBucket
	proposals  *ProposalBucket
	ledger     Ledger
}

var _ custody.Handler = ExecuteHandler{}

func (h ExecuteHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h ExecuteHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	v, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	t, p := v.treasury, v.proposal
	approved := p.Approved(t)

	// The proposal is marked as executed only if the action succeeded.
	// Otherwise nothing is written and it can be executed again later.
	var eff *effect
	err = utils.InSavepoint(db, func(db custody.KVStore) error {
		var err error
		eff, err = executor{ledger: h.ledger, conf: conf}.execute(db, v.now, t, p.Action)
		if err != nil {
			return err
		}
		if err := h.treasuries.Save(db, t); err != nil {
			return errors.Wrap(err, "cannot store treasury")
		}
		p.Executed = true
		p.ExecutedAt = v.now
		if err := h.proposals.Save(db, p); err != nil {
			return errors.Wrap(err, "cannot store proposal")
		}
		return nil
	})
	if err != nil {
		p.Executed = false
		p.ExecutedAt = 0
		return nil, err
	}

	attrs := append([]string{
		"proposal", hex.EncodeToString(p.ID),
		"kind", p.Action.Kind(),
		"executor", v.caller.String(),
		"approvals", strconv.FormatUint(uint64(approved), 10),
	}, eff.attrs...)
	events := append([]custody.Event{
		custody.NewEvent(EventTransactionExecuted, t.ID, v.now, attrs...),
	}, eff.events...)
	return &custody.DeliverResult{Data: p.ID, Events: events}, nil
}

func (h ExecuteHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*vote, error) {
	var msg *ExecuteMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	v, err := loadVote(ctx, db, h.auth, h.treasuries, h.proposals, msg.TreasuryID, msg.ProposalID)
	if err != nil {
		return nil, err
	}
	if n := v.proposal.Approved(v.treasury); n < v.treasury.Threshold {
		return nil, errors.Wrapf(ErrInsufficientApprovals, "%d of %d, %d more required",
			n, v.treasury.Threshold, v.treasury.Threshold-n)
	}
	return v, nil
}

// vote is the state an owner acts on when approving or executing a
// proposal.
type vote struct {
	treasury *Treasury
	proposal *Proposal
	caller   custody.Address
	now      custody.UnixTime
}

// loadVote loads the proposal and ensures the caller may act on it: the
// caller must be a current owner and the proposal neither executed nor
// expired.
func loadVote(
	ctx custody.Context,
	db custody.ReadOnlyKVStore,
	auth x.Authenticator,
	treasuries *TreasuryBucket,
	proposals *ProposalBucket,
	treasuryID, proposalID []byte,
) (*vote, error) {
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	t, err := treasuries.GetTreasury(db, treasuryID)
	if err != nil {
		return nil, err
	}
	p, err := proposals.GetProposal(db, treasuryID, proposalID)
	if err != nil {
		return nil, err
	}
	caller := x.MainSigner(ctx, auth)
	if !t.IsOwner(caller) {
		return nil, errors.Wrapf(ErrNotOwner, "caller %s", caller)
	}
	if p.Executed {
		return nil, errors.Wrapf(ErrAlreadyExecuted, "at %s", p.ExecutedAt)
	}
	if custody.IsExpired(ctx, p.ExpiresAt) {
		return nil, errors.Wrapf(ErrTransactionExpired, "at %s", p.ExpiresAt)
	}
	return &vote{treasury: t, proposal: p, caller: caller, now: now}, nil
}

func blockNow(ctx custody.Context) (custody.UnixTime, error) {
	now, ok := custody.BlockTime(ctx)
	if !ok {
		return 0, errors.Wrap(errors.ErrHuman, "block time not set")
	}
	return custody.AsUnixTime(now), nil
}

// withCaller appends the caller under the given attribute key, if the
// call was made by an authenticated identity.
func withCaller(ctx custody.Context, auth x.Authenticator, key string, kv ...string) []string {
	if caller := x.MainSigner(ctx, auth); caller != nil {
		return append(kv, key, caller.String())
	}
	return kv
}
