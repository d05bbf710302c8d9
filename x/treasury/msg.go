package treasury

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
)

const (
	pathCreateTreasuryMsg = "treasury/create"
	pathDepositMsg        = "treasury/deposit"
	pathProposeMsg        = "treasury/propose"
	pathApproveMsg        = "treasury/approve"
	pathExecuteMsg        = "treasury/execute"
)

// CreateTreasuryMsg creates a new treasury with the given owners.
type CreateTreasuryMsg struct {
	Name      string            `json:"name,omitempty"`
	Owners    []custody.Address `json:"owners"`
	Threshold uint32            `json:"threshold"`
}

var _ custody.Msg = (*CreateTreasuryMsg)(nil)

func (CreateTreasuryMsg) Path() string {
	return pathCreateTreasuryMsg
}

// Validate rejects duplicated owners and a threshold that the owner set
// cannot satisfy.
func (m *CreateTreasuryMsg) Validate() error {
	if len(m.Owners) == 0 {
		return errors.Field("Owners", errors.ErrEmpty, "at least one owner required")
	}
	owners, err := NewAddressSet(m.Owners...)
	if err != nil {
		return errors.Field("Owners", err, "")
	}
	if err := validateThreshold(m.Threshold, len(owners)); err != nil {
		return errors.Field("Threshold", err, "")
	}
	if len(m.Name) > maxNameLength {
		return errors.Field("Name", errors.ErrInput, "longer than %d characters", maxNameLength)
	}
	return nil
}

// DepositMsg increases the treasury balance.
type DepositMsg struct {
	TreasuryID []byte    `json:"treasury_id"`
	Amount     coin.Coin `json:"amount"`
}

var _ custody.Msg = (*DepositMsg)(nil)

func (DepositMsg) Path() string {
	return pathDepositMsg
}

func (m *DepositMsg) Validate() error {
	if err := validateID("TreasuryID", m.TreasuryID, treasuryIDLength); err != nil {
		return err
	}
	if !m.Amount.IsPositive() {
		return errors.Field("Amount", ErrInvalidAmount, "must be positive")
	}
	return errors.Field("Amount", m.Amount.Validate(), "")
}

// ProposeMsg creates a proposal to apply the action to the treasury. A zero
// TTL selects the configured default.
type ProposeMsg struct {
	TreasuryID []byte               `json:"treasury_id"`
	Action     Action               `json:"action"`
	TTL        custody.UnixDuration `json:"ttl,omitempty"`
	Memo       string               `json:"memo,omitempty"`
}

var _ custody.Msg = (*ProposeMsg)(nil)

func (ProposeMsg) Path() string {
	return pathProposeMsg
}

func (m *ProposeMsg) Validate() error {
	if err := validateID("TreasuryID", m.TreasuryID, treasuryIDLength); err != nil {
		return err
	}
	if m.Action == nil {
		return errors.Field("Action", errors.ErrEmpty, "")
	}
	if err := m.Action.Validate(); err != nil {
		return errors.Field("Action", err, "")
	}
	if m.TTL < 0 {
		return errors.Field("TTL", errors.ErrInput, "negative")
	}
	if len(m.Memo) > maxMemoLength {
		return errors.Field("Memo", errors.ErrInput, "longer than %d characters", maxMemoLength)
	}
	return nil
}

// ApproveMsg records the approval of the caller.
type ApproveMsg struct {
	TreasuryID []byte `json:"treasury_id"`
	ProposalID []byte `json:"proposal_id"`
}

var _ custody.Msg = (*ApproveMsg)(nil)

func (ApproveMsg) Path() string {
	return pathApproveMsg
}

func (m *ApproveMsg) Validate() error {
	return errors.Append(
		validateID("TreasuryID", m.TreasuryID, treasuryIDLength),
		validateID("ProposalID", m.ProposalID, proposalIDLength),
	)
}

// ExecuteMsg applies an approved proposal.
type ExecuteMsg struct {
	TreasuryID []byte `json:"treasury_id"`
	ProposalID []byte `json:"proposal_id"`
}

var _ custody.Msg = (*ExecuteMsg)(nil)

func (ExecuteMsg) Path() string {
	return pathExecuteMsg
}

func (m *ExecuteMsg) Validate() error {
	return errors.Append(
		validateID("TreasuryID", m.TreasuryID, treasuryIDLength),
		validateID("ProposalID", m.ProposalID, proposalIDLength),
	)
}

func validateID(field string, id []byte, size int) error {
	if len(id) == 0 {
		return errors.Field(field, errors.ErrEmpty, "")
	}
	if len(id) != size {
		return errors.Field(field, errors.ErrInput, "want %d bytes, got %d", size, len(id))
	}
	return nil
}
