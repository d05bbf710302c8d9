package treasury

import (
	"bytes"
	"context"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/cash"
)

// Executor runs messages and queries against the application state. Every
// Deliver call is a separate, atomic state transition made on behalf of the
// caller.
type Executor interface {
	Deliver(ctx context.Context, caller custody.Address, msg custody.Msg) (*custody.DeliverResult, error)
	Query(path string, data []byte) ([]custody.Model, error)
}

// Client is the Go API of the treasury.
type Client struct {
	exec Executor
}

// NewClient returns a client running all operations using the executor.
func NewClient(exec Executor) *Client {
	return &Client{exec: exec}
}

// CreateTreasury creates a treasury and returns its ID.
func (c *Client) CreateTreasury(ctx context.Context, caller custody.Address, name string, owners []custody.Address, threshold uint32) ([]byte, error) {
	res, err := c.exec.Deliver(ctx, caller, &CreateTreasuryMsg{
		Name:      name,
		Owners:    owners,
		Threshold: threshold,
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// Deposit adds funds to the treasury.
func (c *Client) Deposit(ctx context.Context, caller custody.Address, treasuryID []byte, amount coin.Coin) error {
	_, err := c.exec.Deliver(ctx, caller, &DepositMsg{TreasuryID: treasuryID, Amount: amount})
	return err
}

// Propose submits a proposal with the given action and returns its ID. A
// zero ttl selects the configured default.
func (c *Client) Propose(ctx context.Context, caller custody.Address, treasuryID []byte, action Action, ttl custody.UnixDuration, memo string) ([]byte, error) {
	res, err := c.exec.Deliver(ctx, caller, &ProposeMsg{
		TreasuryID: treasuryID,
		Action:     action,
		TTL:        ttl,
		Memo:       memo,
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// ProposeTransfer proposes to send amount to recipient.
func (c *Client) ProposeTransfer(ctx context.Context, caller custody.Address, treasuryID []byte, recipient custody.Address, amount coin.Coin, ttl custody.UnixDuration) ([]byte, error) {
	return c.Propose(ctx, caller, treasuryID, &TransferAction{Recipient: recipient, Amount: amount}, ttl, "")
}

// ProposeAddOwner proposes to add candidate to the owners.
func (c *Client) ProposeAddOwner(ctx context.Context, caller custody.Address, treasuryID []byte, candidate custody.Address, ttl custody.UnixDuration) ([]byte, error) {
	return c.Propose(ctx, caller, treasuryID, &AddOwnerAction{Owner: candidate}, ttl, "")
}

// ProposeRemoveOwner proposes to remove candidate from the owners.
func (c *Client) ProposeRemoveOwner(ctx context.Context, caller custody.Address, treasuryID []byte, candidate custody.Address, ttl custody.UnixDuration) ([]byte, error) {
	return c.Propose(ctx, caller, treasuryID, &RemoveOwnerAction{Owner: candidate}, ttl, "")
}

// ProposeUpdateThreshold proposes a new approval threshold.
func (c *Client) ProposeUpdateThreshold(ctx context.Context, caller custody.Address, treasuryID []byte, threshold uint32, ttl custody.UnixDuration) ([]byte, error) {
	return c.Propose(ctx, caller, treasuryID, &UpdateThresholdAction{Threshold: threshold}, ttl, "")
}

// Approve records the approval of the caller.
func (c *Client) Approve(ctx context.Context, caller custody.Address, treasuryID, proposalID []byte) error {
	_, err := c.exec.Deliver(ctx, caller, &ApproveMsg{TreasuryID: treasuryID, ProposalID: proposalID})
	return err
}

// Execute applies an approved proposal.
func (c *Client) Execute(ctx context.Context, caller custody.Address, treasuryID, proposalID []byte) error {
	_, err := c.exec.Deliver(ctx, caller, &ExecuteMsg{TreasuryID: treasuryID, ProposalID: proposalID})
	return err
}

// GetTreasury returns the treasury with the given ID.
func (c *Client) GetTreasury(treasuryID []byte) (*Treasury, error) {
	if len(treasuryID) == 0 {
		return nil, errors.Wrap(errors.ErrInput, "treasury id required")
	}
	res, err := c.exec.Query(QueryTreasuries, treasuryID)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "treasury %X", treasuryID)
	}
	var t Treasury
	if err := t.Unmarshal(res[0].Value); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal treasury")
	}
	return &t, nil
}

// ListTreasuries returns all treasuries ordered by ID.
func (c *Client) ListTreasuries() ([]*Treasury, error) {
	res, err := c.exec.Query(QueryTreasuries, nil)
	if err != nil {
		return nil, err
	}
	all := make([]*Treasury, len(res))
	for i, m := range res {
		var t Treasury
		if err := t.Unmarshal(m.Value); err != nil {
			return nil, errors.Wrap(err, "cannot unmarshal treasury")
		}
		all[i] = &t
	}
	return all, nil
}

// GetOwners returns the current owner set.
func (c *Client) GetOwners(treasuryID []byte) (AddressSet, error) {
	t, err := c.GetTreasury(treasuryID)
	if err != nil {
		return nil, err
	}
	return t.Owners, nil
}

// GetThreshold returns the current approval threshold.
func (c *Client) GetThreshold(treasuryID []byte) (uint32, error) {
	t, err := c.GetTreasury(treasuryID)
	if err != nil {
		return 0, err
	}
	return t.Threshold, nil
}

// GetBalances returns all assets held by the treasury.
func (c *Client) GetBalances(treasuryID []byte) (coin.Coins, error) {
	if _, err := c.GetTreasury(treasuryID); err != nil {
		return nil, err
	}
	res, err := c.exec.Query(QueryBalances, treasuryID)
	if err != nil || len(res) == 0 {
		return nil, err
	}
	var set cash.Set
	if err := set.Unmarshal(res[0].Value); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal balances")
	}
	return set.Coins, nil
}

// GetBalance returns the amount of the asset held by the treasury.
func (c *Client) GetBalance(treasuryID []byte, ticker string) (coin.Coin, error) {
	coins, err := c.GetBalances(treasuryID)
	if err != nil {
		return coin.Coin{}, err
	}
	return coin.NewCoin(coins.Balance(ticker), ticker), nil
}

// GetProposal returns the proposal with the given ID.
func (c *Client) GetProposal(proposalID []byte) (*Proposal, error) {
	if len(proposalID) != proposalIDLength {
		return nil, errors.Wrapf(ErrTransactionNotFound, "proposal %X", proposalID)
	}
	res, err := c.exec.Query(QueryProposals, proposalID)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, errors.Wrapf(ErrTransactionNotFound, "proposal %X", proposalID)
	}
	var p Proposal
	if err := p.Unmarshal(res[0].Value); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal proposal")
	}
	if !bytes.Equal(p.ID, proposalID) {
		return nil, errors.Wrapf(ErrTransactionNotFound, "proposal %X", proposalID)
	}
	return &p, nil
}

// ListProposals returns all proposals of the treasury in creation order.
func (c *Client) ListProposals(treasuryID []byte) ([]*Proposal, error) {
	res, err := c.exec.Query(QueryTreasuryProposals, treasuryID)
	if err != nil {
		return nil, err
	}
	props := make([]*Proposal, len(res))
	for i, m := range res {
		var p Proposal
		if err := p.Unmarshal(m.Value); err != nil {
			return nil, errors.Wrap(err, "cannot unmarshal proposal")
		}
		props[i] = &p
	}
	return props, nil
}

// ProposalStatus returns the state of the proposal at the given time.
func (c *Client) ProposalStatus(proposalID []byte, now custody.UnixTime) (Status, error) {
	p, err := c.GetProposal(proposalID)
	if err != nil {
		return 0, err
	}
	t, err := c.GetTreasury(p.TreasuryID)
	if err != nil {
		return 0, err
	}
	return p.Status(now, t), nil
}
