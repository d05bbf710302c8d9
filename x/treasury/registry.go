package treasury

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// AddressSet is a set of addresses kept in ascending byte order. Membership
// is tested with a binary search.
type AddressSet []custody.Address

// NewAddressSet builds a set from the given addresses. Duplicates are
// rejected with ErrOwnerAlreadyExists.
func NewAddressSet(addrs ...custody.Address) (AddressSet, error) {
	var set AddressSet
	for _, a := range addrs {
		var err error
		if set, err = set.Add(a); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (s AddressSet) search(a custody.Address) (int, bool) {
	i := sort.Search(len(s), func(i int) bool {
		return bytes.Compare(s[i], a) >= 0
	})
	return i, i < len(s) && bytes.Equal(s[i], a)
}

// Contains returns true if the address is a member of the set.
func (s AddressSet) Contains(a custody.Address) bool {
	_, ok := s.search(a)
	return ok
}

// Add returns a new set with the address added. Receiver is not modified.
func (s AddressSet) Add(a custody.Address) (AddressSet, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	i, ok := s.search(a)
	if ok {
		return nil, errors.Wrapf(ErrOwnerAlreadyExists, "%s", a)
	}
	res := make(AddressSet, 0, len(s)+1)
	res = append(res, s[:i]...)
	res = append(res, a.Clone())
	return append(res, s[i:]...), nil
}

// Remove returns a new set without the address. Receiver is not modified.
func (s AddressSet) Remove(a custody.Address) (AddressSet, error) {
	i, ok := s.search(a)
	if !ok {
		return nil, errors.Wrapf(ErrOwnerNotFound, "%s", a)
	}
	res := make(AddressSet, 0, len(s)-1)
	res = append(res, s[:i]...)
	return append(res, s[i+1:]...), nil
}

// Validate returns an error if the set is not sorted, holds duplicates or
// invalid addresses.
func (s AddressSet) Validate() error {
	for i, a := range s {
		if err := a.Validate(); err != nil {
			return errors.Field(strconv.Itoa(i), err, "")
		}
		if i > 0 && bytes.Compare(s[i-1], a) >= 0 {
			return errors.Wrapf(errors.ErrModel, "address %d not in ascending order", i)
		}
	}
	return nil
}

func (s AddressSet) String() string {
	strs := make([]string, len(s))
	for i, a := range s {
		strs[i] = a.String()
	}
	return strings.Join(strs, ",")
}

// IsOwner returns true if the address belongs to the owner set.
func (t *Treasury) IsOwner(a custody.Address) bool {
	return t.Owners.Contains(a)
}

// addOwner is called only when executing an approved proposal.
func (t *Treasury) addOwner(a custody.Address, maxOwners uint32) error {
	owners, err := t.Owners.Add(a)
	if err != nil {
		return err
	}
	if maxOwners > 0 && uint32(len(owners)) > maxOwners {
		return errors.Wrapf(errors.ErrState, "owner limit of %d reached", maxOwners)
	}
	t.Owners = owners
	return nil
}

// removeOwner is called only when executing an approved proposal. The
// threshold invariant is checked against the current owner set.
func (t *Treasury) removeOwner(a custody.Address) error {
	owners, err := t.Owners.Remove(a)
	if err != nil {
		return err
	}
	if uint32(len(owners)) < t.Threshold {
		return errors.Wrapf(ErrThresholdViolation,
			"%d owners cannot satisfy threshold %d", len(owners), t.Threshold)
	}
	t.Owners = owners
	return nil
}

// setThreshold is called only when executing an approved proposal.
func (t *Treasury) setThreshold(m uint32) error {
	if err := validateThreshold(m, len(t.Owners)); err != nil {
		return err
	}
	t.Threshold = m
	return nil
}

func validateThreshold(m uint32, owners int) error {
	if m == 0 {
		return errors.Wrap(ErrInvalidThreshold, "must be at least 1")
	}
	if int(m) > owners {
		return errors.Wrapf(ErrInvalidThreshold, "%d exceeds %d owners", m, owners)
	}
	return nil
}
