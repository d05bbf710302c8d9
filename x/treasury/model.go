package treasury

import (
	"encoding/binary"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const (
	maxNameLength = 64
	maxMemoLength = 128

	// A proposal ID is the treasury ID followed by the 8 byte proposal
	// sequence of that treasury.
	treasuryIDLength = 8
	proposalIDLength = treasuryIDLength + 8
)

// Treasury is the governance state of a shared fund: who owns it and how
// many of them must agree on a change.
type Treasury struct {
	ID        []byte           `json:"id"`
	Name      string           `json:"name,omitempty"`
	Owners    AddressSet       `json:"owners"`
	Threshold uint32           `json:"threshold"`
	Sequence  uint64           `json:"sequence"`
	CreatedAt custody.UnixTime `json:"created_at"`
}

var _ custody.Persistent = (*Treasury)(nil)

// Marshal serializes the treasury.
func (t *Treasury) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(t)
}

// Unmarshal loads the treasury from its serialized form.
func (t *Treasury) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, t)
}

// Validate ensures the owner set and the threshold are consistent.
func (t *Treasury) Validate() error {
	var errs error
	if len(t.ID) != treasuryIDLength {
		errs = errors.AppendField(errs, "ID", errors.Wrapf(errors.ErrModel, "invalid length %d", len(t.ID)))
	}
	if len(t.Name) > maxNameLength {
		errs = errors.AppendField(errs, "Name", errors.ErrInput)
	}
	if len(t.Owners) == 0 {
		errs = errors.AppendField(errs, "Owners", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Owners", t.Owners.Validate())
	errs = errors.AppendField(errs, "Threshold", validateThreshold(t.Threshold, len(t.Owners)))
	errs = errors.AppendField(errs, "CreatedAt", t.CreatedAt.Validate())
	return errs
}

// Address returns the address holding the balances of the treasury.
func (t *Treasury) Address() custody.Address {
	return Condition(t.ID).Address()
}

// Condition returns the condition controlling the funds of the treasury
// with the given ID. Nobody can sign for it, funds are released only by
// executing a proposal.
func Condition(treasuryID []byte) custody.Condition {
	return custody.NewCondition("treasury", "seq", treasuryID)
}

// nextProposalID increments the proposal sequence of the treasury and
// returns the ID of the next proposal.
func (t *Treasury) nextProposalID() []byte {
	t.Sequence++
	id := make([]byte, 0, proposalIDLength)
	id = append(id, t.ID...)
	seq := make([]byte, 8)
	binary.BigEndian.PutUint64(seq, t.Sequence)
	return append(id, seq...)
}

// Proposal is a typed intent to change the treasury, awaiting approvals.
type Proposal struct {
	ID         []byte           `json:"id"`
	TreasuryID []byte           `json:"treasury_id"`
	Action     Action           `json:"action"`
	Proposer   custody.Address  `json:"proposer"`
	Approvals  AddressSet       `json:"approvals"`
	Executed   bool             `json:"executed"`
	ExecutedAt custody.UnixTime `json:"executed_at,omitempty"`
	CreatedAt  custody.UnixTime `json:"created_at"`
	ExpiresAt  custody.UnixTime `json:"expires_at"`
	Memo       string           `json:"memo,omitempty"`
	// Funded records the result of the balance check done when a transfer
	// was proposed. It is advisory, the balance is checked again when the
	// proposal is executed.
	Funded bool `json:"funded"`
}

var _ custody.Persistent = (*Proposal)(nil)

// Marshal serializes the proposal.
func (p *Proposal) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(p)
}

// Unmarshal loads the proposal from its serialized form.
func (p *Proposal) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, p)
}

// Validate checks the proposal content without consulting the treasury.
func (p *Proposal) Validate() error {
	var errs error
	if len(p.TreasuryID) != treasuryIDLength {
		errs = errors.AppendField(errs, "TreasuryID", errors.Wrap(errors.ErrModel, "invalid length"))
	}
	if len(p.ID) != proposalIDLength {
		errs = errors.AppendField(errs, "ID", errors.Wrap(errors.ErrModel, "invalid length"))
	}
	if p.Action == nil {
		errs = errors.AppendField(errs, "Action", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "Action", p.Action.Validate())
	}
	errs = errors.AppendField(errs, "Proposer", p.Proposer.Validate())
	errs = errors.AppendField(errs, "Approvals", p.Approvals.Validate())
	errs = errors.AppendField(errs, "CreatedAt", p.CreatedAt.Validate())
	if p.ExpiresAt <= p.CreatedAt {
		errs = errors.AppendField(errs, "ExpiresAt", errors.Wrap(errors.ErrModel, "must be after creation"))
	}
	if p.Executed && p.ExecutedAt.IsZero() {
		errs = errors.AppendField(errs, "ExecutedAt", errors.ErrEmpty)
	}
	if len(p.Memo) > maxMemoLength {
		errs = errors.AppendField(errs, "Memo", errors.ErrInput)
	}
	return errs
}

// Status is the lifecycle state of a proposal. It is never stored, but
// derived from the proposal, the current time and the treasury threshold.
type Status int

const (
	StatusPending Status = iota
	StatusApproved
	StatusExecuted
	StatusExpired
)

var statusNames = [...]string{
	StatusPending:  "pending",
	StatusApproved: "approved",
	StatusExecuted: "executed",
	StatusExpired:  "expired",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// MarshalJSON encodes the status as its name.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Approved returns the number of approvals given by current owners of t.
// Approvals of owners removed since they approved are not counted.
func (p *Proposal) Approved(t *Treasury) uint32 {
	var n uint32
	for _, a := range p.Approvals {
		if t.IsOwner(a) {
			n++
		}
	}
	return n
}

// Status returns the state of the proposal at the given time, counting the
// approvals of the current owners of t. An executed proposal stays
// executed even after its expiration time passed.
func (p *Proposal) Status(now custody.UnixTime, t *Treasury) Status {
	switch {
	case p.Executed:
		return StatusExecuted
	case p.ExpiresAt <= now:
		return StatusExpired
	case p.Approved(t) >= t.Threshold:
		return StatusApproved
	default:
		return StatusPending
	}
}
