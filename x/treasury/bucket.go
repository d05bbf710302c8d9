package treasury

import (
	"bytes"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// TreasuryBucket stores treasuries under their sequence ID.
type TreasuryBucket struct {
	orm.ModelBucket
	idSeq orm.Sequence
}

// NewTreasuryBucket returns a bucket for storing treasuries.
func NewTreasuryBucket() *TreasuryBucket {
	seq := orm.NewSequence("treasury", "id")
	return &TreasuryBucket{
		ModelBucket: orm.NewModelBucket("trsy", &Treasury{}, orm.WithIDSequence(seq)),
		idSeq:       seq,
	}
}

// Create assigns an ID to the treasury and stores it.
func (b *TreasuryBucket) Create(db custody.KVStore, t *Treasury) error {
	id, err := b.idSeq.NextVal(db)
	if err != nil {
		return errors.Wrap(err, "treasury id")
	}
	t.ID = id
	_, err = b.Put(db, id, t)
	return err
}

// GetTreasury loads the treasury with the given ID. ErrNotFound is returned
// if it does not exist.
func (b *TreasuryBucket) GetTreasury(db custody.ReadOnlyKVStore, id []byte) (*Treasury, error) {
	var t Treasury
	if err := b.One(db, id, &t); err != nil {
		return nil, errors.Wrapf(err, "treasury %X", id)
	}
	return &t, nil
}

// All returns every treasury, ordered by ID.
func (b *TreasuryBucket) All(db custody.ReadOnlyKVStore) ([]*Treasury, error) {
	keys, err := b.Keys(db)
	if err != nil {
		return nil, err
	}
	res := make([]*Treasury, 0, len(keys))
	for _, k := range keys {
		t, err := b.GetTreasury(db, k)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, nil
}

// Save stores the updated treasury.
func (b *TreasuryBucket) Save(db custody.KVStore, t *Treasury) error {
	_, err := b.Put(db, t.ID, t)
	return err
}

const proposalTreasuryIndex = "treasury"

// ProposalBucket stores proposals under treasury ID followed by the
// proposal sequence of that treasury.
type ProposalBucket struct {
	orm.ModelBucket
}

// NewProposalBucket returns a bucket for storing proposals, indexed by
// treasury.
func NewProposalBucket() *ProposalBucket {
	return &ProposalBucket{
		ModelBucket: orm.NewModelBucket("prop", &Proposal{},
			orm.WithIndex(proposalTreasuryIndex, proposalTreasury, false)),
	}
}

func proposalTreasury(m orm.Model) ([][]byte, error) {
	p, ok := m.(*Proposal)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return [][]byte{p.TreasuryID}, nil
}

// GetProposal loads a proposal of the given treasury. A proposal that does
// not exist or belongs to a different treasury is reported as
// ErrTransactionNotFound.
func (b *ProposalBucket) GetProposal(db custody.ReadOnlyKVStore, treasuryID, proposalID []byte) (*Proposal, error) {
	var p Proposal
	switch err := b.One(db, proposalID, &p); {
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(ErrTransactionNotFound, "proposal %X", proposalID)
	case err != nil:
		return nil, err
	}
	if treasuryID != nil && !bytes.Equal(p.TreasuryID, treasuryID) {
		return nil, errors.Wrapf(ErrTransactionNotFound, "proposal %X in treasury %X", proposalID, treasuryID)
	}
	return &p, nil
}

// ByTreasury returns all proposals of the treasury in creation order.
func (b *ProposalBucket) ByTreasury(db custody.ReadOnlyKVStore, treasuryID []byte) ([]*Proposal, error) {
	var props []*Proposal
	if _, err := b.ByIndex(db, proposalTreasuryIndex, treasuryID, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// Save stores the updated proposal.
func (b *ProposalBucket) Save(db custody.KVStore, p *Proposal) error {
	_, err := b.Put(db, p.ID, p)
	return err
}
