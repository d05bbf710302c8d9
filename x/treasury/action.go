package treasury

import (
	"strconv"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
)

// Action kinds, as used in events and by the HTTP API.
const (
	KindTransfer        = "transfer"
	KindAddOwner        = "add_owner"
	KindRemoveOwner     = "remove_owner"
	KindUpdateThreshold = "update_threshold"
)

// Action is the change a proposal applies to the treasury once executed.
// The set of actions is closed, see RegisterAmino.
type Action interface {
	// Kind returns the name of the action.
	Kind() string
	// Validate checks the shape of the action. It must not depend on the
	// state.
	Validate() error
}

// TransferAction moves funds from the treasury to the recipient.
type TransferAction struct {
	Recipient custody.Address `json:"recipient"`
	Amount    coin.Coin       `json:"amount"`
}

func (*TransferAction) Kind() string { return KindTransfer }

func (a *TransferAction) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Recipient", a.Recipient.Validate())
	if !a.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(ErrInvalidAmount, "must be positive"))
	} else {
		errs = errors.AppendField(errs, "Amount", a.Amount.Validate())
	}
	return errs
}

// AddOwnerAction adds an address to the owner set.
type AddOwnerAction struct {
	Owner custody.Address `json:"owner"`
}

func (*AddOwnerAction) Kind() string { return KindAddOwner }

func (a *AddOwnerAction) Validate() error {
	return errors.Field("Owner", a.Owner.Validate(), "")
}

// RemoveOwnerAction removes an address from the owner set.
type RemoveOwnerAction struct {
	Owner custody.Address `json:"owner"`
}

func (*RemoveOwnerAction) Kind() string { return KindRemoveOwner }

func (a *RemoveOwnerAction) Validate() error {
	return errors.Field("Owner", a.Owner.Validate(), "")
}

// UpdateThresholdAction sets the number of approvals required to execute a
// proposal.
type UpdateThresholdAction struct {
	Threshold uint32 `json:"threshold"`
}

func (*UpdateThresholdAction) Kind() string { return KindUpdateThreshold }

func (a *UpdateThresholdAction) Validate() error {
	if a.Threshold == 0 {
		return errors.Field("Threshold", ErrInvalidThreshold, "must be at least 1")
	}
	return nil
}

// executor applies an action to the state. Each call operates on a
// savepoint, so a failing action leaves no trace.
type executor struct {
	ledger Ledger
	conf   Configuration
}

// effect describes what an executed action changed. Attributes are added to
// the TransactionExecuted event, events are emitted after it.
type effect struct {
	attrs  []string
	events []custody.Event
}

// execute dispatches the action by kind. The treasury is modified in place
// and must be saved by the caller.
func (e executor) execute(db custody.KVStore, now custody.UnixTime, t *Treasury, action Action) (*effect, error) {
	switch a := action.(type) {
	case *TransferAction:
		balance, err := e.ledger.debit(db, t, a.Recipient, a.Amount)
		if err != nil {
			return nil, err
		}
		return &effect{attrs: []string{
			"recipient", a.Recipient.String(),
			"amount", a.Amount.String(),
			"balance", balance.String(),
		}}, nil
	case *AddOwnerAction:
		if err := t.addOwner(a.Owner, e.conf.MaxOwners); err != nil {
			return nil, err
		}
		return &effect{events: []custody.Event{custody.NewEvent(EventOwnerAdded, t.ID, now,
			"owner", a.Owner.String(),
			"owners", strconv.Itoa(len(t.Owners)),
		)}}, nil
	case *RemoveOwnerAction:
		if err := t.removeOwner(a.Owner); err != nil {
			return nil, err
		}
		return &effect{events: []custody.Event{custody.NewEvent(EventOwnerRemoved, t.ID, now,
			"owner", a.Owner.String(),
			"owners", strconv.Itoa(len(t.Owners)),
		)}}, nil
	case *UpdateThresholdAction:
		prev := t.Threshold
		if err := t.setThreshold(a.Threshold); err != nil {
			return nil, err
		}
		return &effect{events: []custody.Event{custody.NewEvent(EventThresholdUpdated, t.ID, now,
			"previous", strconv.FormatUint(uint64(prev), 10),
			"threshold", strconv.FormatUint(uint64(a.Threshold), 10),
		)}}, nil
	default:
		return nil, errors.Wrapf(errors.ErrType, "unknown action %T", action)
	}
}
