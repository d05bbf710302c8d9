package treasury

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/cash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := NewClient(env)
	tid, owners := env.newTreasury(c, 3, 2)
	a, b, cc := owners[0], owners[1], owners[2]
	recipient := custodytest.NewAddress()

	require.NoError(t, c.Deposit(ctx, nil, tid, coin.NewCoin(150, "X")))

	pid, err := c.ProposeTransfer(ctx, a, tid, recipient, coin.NewCoin(100, "X"), 0)
	require.NoError(t, err)

	status, err := c.ProposalStatus(pid, custody.AsUnixTime(env.clock.Now()))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)

	// Not enough approvals yet, the proposer approval is counted.
	assertErrIs(t, ErrInsufficientApprovals, c.Execute(ctx, a, tid, pid))

	require.NoError(t, c.Approve(ctx, b, tid, pid))
	p, err := c.GetProposal(pid)
	require.NoError(t, err)
	assert.Len(t, p.Approvals, 2)

	status, err = c.ProposalStatus(pid, custody.AsUnixTime(env.clock.Now()))
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, status)

	require.NoError(t, c.Execute(ctx, cc, tid, pid))

	balance, err := c.GetBalance(tid, "X")
	require.NoError(t, err)
	assert.Equal(t, coin.NewCoin(50, "X"), balance)

	got, err := cash.NewController().Balance(env.db, recipient)
	require.NoError(t, err)
	assert.Equal(t, coin.Coins{coin.NewCoin(100, "X")}, got)

	p, err = c.GetProposal(pid)
	require.NoError(t, err)
	assert.True(t, p.Executed)
	assert.Equal(t, custody.AsUnixTime(env.clock.Now()), p.ExecutedAt)

	assertErrIs(t, ErrAlreadyExecuted, c.Execute(ctx, cc, tid, pid))
	assertErrIs(t, ErrAlreadyExecuted, c.Execute(ctx, a, tid, pid))
	assertErrIs(t, ErrAlreadyExecuted, c.Approve(ctx, cc, tid, pid))

	balance, err = c.GetBalance(tid, "X")
	require.NoError(t, err)
	assert.Equal(t, coin.NewCoin(50, "X"), balance)

	assert.Equal(t, []string{
		EventTreasuryCreated,
		EventFundsDeposited,
		EventTransactionProposed,
		EventTransactionApproved,
		EventTransactionExecuted,
	}, env.eventKinds())
}

func TestExpiryScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := NewClient(env)
	tid, owners := env.newTreasury(c, 3, 2)
	a, b, cc := owners[0], owners[1], owners[2]
	require.NoError(t, c.Deposit(ctx, nil, tid, coin.NewCoin(150, "X")))

	pid, err := c.ProposeTransfer(ctx, a, tid, custodytest.NewAddress(), coin.NewCoin(100, "X"), custody.AsUnixDuration(time.Hour))
	require.NoError(t, err)

	// Second proposal reaches the threshold before it expires.
	approved, err := c.ProposeTransfer(ctx, a, tid, custodytest.NewAddress(), coin.NewCoin(10, "X"), custody.AsUnixDuration(time.Hour))
	require.NoError(t, err)
	require.NoError(t, c.Approve(ctx, b, tid, approved))

	env.clock.Advance(2 * time.Hour)

	assertErrIs(t, ErrTransactionExpired, c.Approve(ctx, b, tid, pid))
	assertErrIs(t, ErrTransactionExpired, c.Execute(ctx, cc, tid, pid))
	assertErrIs(t, ErrTransactionExpired, c.Execute(ctx, cc, tid, approved))

	status, err := c.ProposalStatus(approved, custody.AsUnixTime(env.clock.Now()))
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, status)

	balance, err := c.GetBalance(tid, "X")
	require.NoError(t, err)
	assert.Equal(t, coin.NewCoin(150, "X"), balance)
}

func TestExpirationIsInclusive(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := NewClient(env)
	tid, owners := env.newTreasury(c, 2, 1)

	pid, err := c.ProposeUpdateThreshold(ctx, owners[0], tid, 2, custody.AsUnixDuration(time.Minute))
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	assertErrIs(t, ErrTransactionExpired, c.Execute(ctx, owners[0], tid, pid))
}

func TestRemoveOwnerScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := NewClient(env)
	tid, owners := env.newTreasury(c, 4, 2)
	a, b, d := owners[0], owners[1], owners[3]

	pid, err := c.ProposeRemoveOwner(ctx, a, tid, d, 0)
	require.NoError(t, err)
	require.NoError(t, c.Approve(ctx, b, tid, pid))
	require.NoError(t, c.Execute(ctx, a, tid, pid))

	got, err := c.GetOwners(tid)
	require.NoError(t, err)
	want, err := NewAddressSet(owners[0], owners[1], owners[2])
	require.NoError(t, err)
	assert.Equal(t, want, got)

	threshold, err := c.GetThreshold(tid)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), threshold)

	// Removed owner lost all rights.
	_, err = c.ProposeAddOwner(ctx, d, tid, d, 0)
	assertErrIs(t, ErrNotOwner, err)

	kinds := env.eventKinds()
	assert.Equal(t, []string{EventTransactionExecuted, EventOwnerRemoved}, kinds[len(kinds)-2:])
}

func TestRemoveOwnerBelowThreshold(t *testing.T) {
	cases := map[string]struct {
		owners    int
		threshold uint32
	}{
		"two owners, threshold two":     {owners: 2, threshold: 2},
		"three owners, threshold three": {owners: 3, threshold: 3},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t)
			c := NewClient(env)
			tid, owners := env.newTreasury(c, tc.owners, tc.threshold)

			// Proposing is allowed, it is not a mutation yet.
			pid, err := c.ProposeRemoveOwner(ctx, owners[0], tid, owners[1], 0)
			require.NoError(t, err)
			for _, o := range owners[1:tc.threshold] {
				require.NoError(t, c.Approve(ctx, o, tid, pid))
			}
			assertErrIs(t, ErrThresholdViolation, c.Execute(ctx, owners[0], tid, pid))

			got, err := c.GetOwners(tid)
			require.NoError(t, err)
			assert.Len(t, got, tc.owners)

			p, err := c.GetProposal(pid)
			require.NoError(t, err)
			assert.False(t, p.Executed)
		})
	}
}

func TestApproveDeduplication(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := NewClient(env)
	tid, owners := env.newTreasury(c, 3, 3)

	pid, err := c.ProposeAddOwner(ctx, owners[0], tid, custodytest.NewAddress(), 0)
	require.NoError(t, err)

	// Proposer approval is recorded on creation.
	assertErrIs(t, ErrAlreadyApproved, c.Approve(ctx, owners[0], tid, pid))

	require.NoError(t, c.Approve(ctx, owners[1], tid, pid))
	assertErrIs(t, ErrAlreadyApproved, c.Approve(ctx, owners[1], tid, pid))

	p, err := c.GetProposal(pid)
	require.NoError(t, err)
	assert.Len(t, p.Approvals, 2)
	assertErrIs(t, ErrInsufficientApprovals, c.Execute(ctx, owners[1], tid, pid))
}

func TestFailedTransferIsReexecutable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := NewClient(env)
	tid, owners := env.newTreasury(c, 2, 2)
	recipient := custodytest.NewAddress()
	require.NoError(t, c.Deposit(ctx, nil, tid, coin.NewCoin(100, "X")))

	first, err := c.ProposeTransfer(ctx, owners[0], tid, recipient, coin.NewCoin(80, "X"), 0)
	require.NoError(t, err)
	second, err := c.ProposeTransfer(ctx, owners[0], tid, recipient, coin.NewCoin(80, "X"), 0)
	require.NoError(t, err)
	for _, pid := range [][]byte{first, second} {
		require.NoError(t, c.Approve(ctx, owners[1], tid, pid))
	}

	require.NoError(t, c.Execute(ctx, owners[0], tid, first))
	assertErrIs(t, ErrInsufficientBalance, c.Execute(ctx, owners[0], tid, second))

	p, err := c.GetProposal(second)
	require.NoError(t, err)
	assert.False(t, p.Executed)
	assert.Len(t, p.Approvals, 2)
	balance, err := c.GetBalance(tid, "X")
	require.NoError(t, err)
	assert.Equal(t, coin.NewCoin(20, "X"), balance)

	// Refill and retry.
	require.NoError(t, c.Deposit(ctx, recipient, tid, coin.NewCoin(60, "X")))
	require.NoError(t, c.Execute(ctx, owners[1], tid, second))
	balance, err = c.GetBalance(tid, "X")
	require.NoError(t, err)
	assert.Equal(t, coin.NewCoin(0, "X"), balance)
}

func TestGovernanceActions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := NewClient(env)
	tid, owners := env.newTreasury(c, 2, 1)
	newOwner := custodytest.NewAddress()

	pid, err := c.ProposeAddOwner(ctx, owners[0], tid, newOwner, 0)
	require.NoError(t, err)
	require.NoError(t, c.Execute(ctx, owners[0], tid, pid))

	pid, err = c.ProposeUpdateThreshold(ctx, newOwner, tid, 3, 0)
	require.NoError(t, err)
	require.NoError(t, c.Execute(ctx, newOwner, tid, pid))

	threshold, err := c.GetThreshold(tid)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), threshold)

	// Adding an existing owner fails when executed.
	pid, err = c.ProposeAddOwner(ctx, owners[0], tid, owners[1], 0)
	require.NoError(t, err)
	for _, o := range []custody.Address{owners[1], newOwner} {
		require.NoError(t, c.Approve(ctx, o, tid, pid))
	}
	assertErrIs(t, ErrOwnerAlreadyExists, c.Execute(ctx, owners[0], tid, pid))

	// Threshold above the owner count fails when executed.
	pid, err = c.ProposeUpdateThreshold(ctx, owners[0], tid, 4, 0)
	require.NoError(t, err)
	for _, o := range []custody.Address{owners[1], newOwner} {
		require.NoError(t, c.Approve(ctx, o, tid, pid))
	}
	assertErrIs(t, ErrInvalidThreshold, c.Execute(ctx, owners[0], tid, pid))

	// Removing a stranger fails when executed.
	pid, err = c.ProposeRemoveOwner(ctx, owners[0], tid, custodytest.NewAddress(), 0)
	require.NoError(t, err)
	for _, o := range []custody.Address{owners[1], newOwner} {
		require.NoError(t, c.Approve(ctx, o, tid, pid))
	}
	assertErrIs(t, ErrOwnerNotFound, c.Execute(ctx, owners[0], tid, pid))

	assert.Contains(t, env.eventKinds(), EventOwnerAdded)
	assert.Contains(t, env.eventKinds(), EventThresholdUpdated)
}

func TestAuthorization(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := NewClient(env)
	tid, owners := env.newTreasury(c, 2, 1)
	otherID, otherOwners := env.newTreasury(c, 1, 1)
	stranger := custodytest.NewAddress()

	pid, err := c.ProposeAddOwner(ctx, owners[0], tid, stranger, 0)
	require.NoError(t, err)

	cases := map[string]struct {
		run     func() error
		wantErr *errors.Error
	}{
		"stranger cannot propose": {
			run: func() error {
				_, err := c.ProposeAddOwner(ctx, stranger, tid, stranger, 0)
				return err
			},
			wantErr: ErrNotOwner,
		},
		"anonymous cannot propose": {
			run: func() error {
				_, err := c.ProposeAddOwner(ctx, nil, tid, stranger, 0)
				return err
			},
			wantErr: ErrNotOwner,
		},
		"stranger cannot approve": {
			run:     func() error { return c.Approve(ctx, stranger, tid, pid) },
			wantErr: ErrNotOwner,
		},
		"stranger cannot execute": {
			run:     func() error { return c.Execute(ctx, stranger, tid, pid) },
			wantErr: ErrNotOwner,
		},
		"owner of another treasury cannot approve": {
			run:     func() error { return c.Approve(ctx, otherOwners[0], tid, pid) },
			wantErr: ErrNotOwner,
		},
		"proposal of another treasury is not found": {
			run:     func() error { return c.Approve(ctx, otherOwners[0], otherID, pid) },
			wantErr: ErrTransactionNotFound,
		},
		"unknown proposal": {
			run:     func() error { return c.Approve(ctx, owners[0], tid, append(append([]byte{}, tid...), custodytest.SequenceID(99)...)) },
			wantErr: ErrTransactionNotFound,
		},
		"unknown treasury": {
			run:     func() error { return c.Deposit(ctx, nil, []byte{0, 0, 0, 0, 0, 0, 0, 99}, coin.NewCoin(1, "X")) },
			wantErr: errors.ErrNotFound,
		},
		"zero deposit": {
			run:     func() error { return c.Deposit(ctx, nil, tid, coin.NewCoin(0, "X")) },
			wantErr: ErrInvalidAmount,
		},
		"zero transfer": {
			run: func() error {
				_, err := c.ProposeTransfer(ctx, owners[0], tid, stranger, coin.NewCoin(0, "X"), 0)
				return err
			},
			wantErr: ErrInvalidAmount,
		},
		"ttl too long": {
			run: func() error {
				_, err := c.ProposeAddOwner(ctx, owners[0], tid, stranger, custody.AsUnixDuration(91*24*time.Hour))
				return err
			},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assertErrIs(t, tc.wantErr, tc.run())
		})
	}

	p, err := c.GetProposal(pid)
	require.NoError(t, err)
	assert.False(t, p.Executed)
	assert.Len(t, p.Approvals, 1)
}

func TestCreateTreasury(t *testing.T) {
	a, b := custodytest.NewAddress(), custodytest.NewAddress()

	cases := map[string]struct {
		owners    []custody.Address
		threshold uint32
		wantErr   *errors.Error
	}{
		"valid": {
			owners:    []custody.Address{a, b},
			threshold: 2,
		},
		"zero threshold": {
			owners:    []custody.Address{a, b},
			threshold: 0,
			wantErr:   ErrInvalidThreshold,
		},
		"threshold above owners": {
			owners:    []custody.Address{a, b},
			threshold: 3,
			wantErr:   ErrInvalidThreshold,
		},
		"duplicated owner": {
			owners:    []custody.Address{a, b, a},
			threshold: 1,
			wantErr:   ErrOwnerAlreadyExists,
		},
		"no owners": {
			threshold: 1,
			wantErr:   errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			env := newTestEnv(t)
			c := NewClient(env)
			id, err := c.CreateTreasury(context.Background(), nil, "", tc.owners, tc.threshold)
			assertErrIs(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}
			tr, err := c.GetTreasury(id)
			require.NoError(t, err)
			assert.Equal(t, tc.threshold, tr.Threshold)
			assert.Len(t, tr.Owners, len(tc.owners))
		})
	}
}

func TestRejectUnfundedTransfers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := NewClient(env)
	tid, owners := env.newTreasury(c, 1, 1)

	// Advisory by default.
	pid, err := c.ProposeTransfer(ctx, owners[0], tid, custodytest.NewAddress(), coin.NewCoin(5, "X"), 0)
	require.NoError(t, err)
	p, err := c.GetProposal(pid)
	require.NoError(t, err)
	assert.False(t, p.Funded)

	conf := DefaultConfiguration()
	conf.RejectUnfundedTransfers = true
	require.NoError(t, SaveConfiguration(env.db, conf))

	_, err = c.ProposeTransfer(ctx, owners[0], tid, custodytest.NewAddress(), coin.NewCoin(5, "X"), 0)
	assertErrIs(t, ErrInsufficientBalance, err)

	require.NoError(t, c.Deposit(ctx, nil, tid, coin.NewCoin(5, "X")))
	pid, err = c.ProposeTransfer(ctx, owners[0], tid, custodytest.NewAddress(), coin.NewCoin(5, "X"), 0)
	require.NoError(t, err)
	p, err = c.GetProposal(pid)
	require.NoError(t, err)
	assert.True(t, p.Funded)
}

func TestConcurrentExecuteIsAtMostOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := NewClient(env)
	tid, owners := env.newTreasury(c, 3, 1)
	recipient := custodytest.NewAddress()
	require.NoError(t, c.Deposit(ctx, nil, tid, coin.NewCoin(1000, "X")))
	pid, err := c.ProposeTransfer(ctx, owners[0], tid, recipient, coin.NewCoin(100, "X"), 0)
	require.NoError(t, err)

	const workers = 16
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(caller custody.Address) {
			defer wg.Done()
			errs <- c.Execute(ctx, caller, tid, pid)
		}(owners[i%len(owners)])
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assertErrIs(t, ErrAlreadyExecuted, err)
	}
	assert.Equal(t, 1, succeeded)

	got, err := cash.NewController().Balance(env.db, recipient)
	require.NoError(t, err)
	assert.Equal(t, coin.Coins{coin.NewCoin(100, "X")}, got)
}

func TestProposalIDsArePerTreasury(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := NewClient(env)
	t1, o1 := env.newTreasury(c, 1, 1)
	t2, o2 := env.newTreasury(c, 1, 1)

	p1, err := c.ProposeUpdateThreshold(ctx, o1[0], t1, 1, 0)
	require.NoError(t, err)
	p2, err := c.ProposeUpdateThreshold(ctx, o2[0], t2, 1, 0)
	require.NoError(t, err)
	p3, err := c.ProposeUpdateThreshold(ctx, o1[0], t1, 1, 0)
	require.NoError(t, err)

	assert.Equal(t, append(append([]byte{}, t1...), custodytest.SequenceID(1)...), p1)
	assert.Equal(t, append(append([]byte{}, t2...), custodytest.SequenceID(1)...), p2)
	assert.Equal(t, append(append([]byte{}, t1...), custodytest.SequenceID(2)...), p3)

	props, err := c.ListProposals(t1)
	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Equal(t, p1, props[0].ID)
	assert.Equal(t, p3, props[1].ID)
}

func TestGetProposalByID(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	c := NewClient(env)
	tid, owners := env.newTreasury(c, 1, 1)
	pid, err := c.ProposeUpdateThreshold(ctx, owners[0], tid, 1, 0)
	require.NoError(t, err)

	cases := map[string]struct {
		id      []byte
		wantErr *errors.Error
	}{
		"proposal id": {
			id: pid,
		},
		"treasury id": {
			id:      tid,
			wantErr: ErrTransactionNotFound,
		},
		"unknown sequence": {
			id:      append(append([]byte{}, tid...), custodytest.SequenceID(99)...),
			wantErr: ErrTransactionNotFound,
		},
		"empty id": {
			id:      nil,
			wantErr: ErrTransactionNotFound,
		},
		"too long": {
			id:      append(append([]byte{}, pid...), 0),
			wantErr: ErrTransactionNotFound,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			p, err := c.GetProposal(tc.id)
			assertErrIs(t, tc.wantErr, err)
			if tc.wantErr == nil {
				assert.Equal(t, pid, p.ID)
			}
		})
	}

	// The lookup query never lists by treasury.
	res, err := env.Query(QueryProposals, tid)
	require.NoError(t, err)
	assert.Empty(t, res)

	props, err := c.ListProposals(tid)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, pid, props[0].ID)
}

func TestTransferRecipient(t *testing.T) {
	cases := map[string]struct {
		recipient func(tr *Treasury, owners []custody.Address) custody.Address
		wantErr   *errors.Error
	}{
		"owner": {
			recipient: func(_ *Treasury, owners []custody.Address) custody.Address { return owners[1] },
		},
		"stranger": {
			recipient: func(*Treasury, []custody.Address) custody.Address { return custodytest.NewAddress() },
		},
		"treasury itself": {
			recipient: func(tr *Treasury, _ []custody.Address) custody.Address { return tr.Address() },
			wantErr:   errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t)
			c := NewClient(env)
			tid, owners := env.newTreasury(c, 2, 1)
			require.NoError(t, c.Deposit(ctx, nil, tid, coin.NewCoin(10, "X")))
			tr, err := c.GetTreasury(tid)
			require.NoError(t, err)

			pid, err := c.ProposeTransfer(ctx, owners[0], tid, tc.recipient(tr, owners), coin.NewCoin(5, "X"), 0)
			assertErrIs(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}
			require.NoError(t, c.Execute(ctx, owners[0], tid, pid))
			balance, err := c.GetBalance(tid, "X")
			require.NoError(t, err)
			assert.Equal(t, coin.NewCoin(5, "X"), balance)
		})
	}
}

func TestApprovalsOfRemovedOwners(t *testing.T) {
	cases := map[string]struct {
		// approvers are indexes of the remaining owners approving after
		// the proposer was removed.
		approvers  []int
		wantStatus Status
		wantErr    *errors.Error
	}{
		"removed proposer approval alone": {
			approvers:  nil,
			wantStatus: StatusPending,
			wantErr:    ErrInsufficientApprovals,
		},
		"one current owner": {
			approvers:  []int{0},
			wantStatus: StatusPending,
			wantErr:    ErrInsufficientApprovals,
		},
		"two current owners": {
			approvers:  []int{0, 1},
			wantStatus: StatusApproved,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t)
			c := NewClient(env)
			tid, owners := env.newTreasury(c, 3, 2)
			a, b, removed := owners[0], owners[1], owners[2]

			// The removed owner proposes and approves before losing rights.
			pid, err := c.ProposeAddOwner(ctx, removed, tid, custodytest.NewAddress(), 0)
			require.NoError(t, err)
			rm, err := c.ProposeRemoveOwner(ctx, a, tid, removed, 0)
			require.NoError(t, err)
			require.NoError(t, c.Approve(ctx, b, tid, rm))
			require.NoError(t, c.Execute(ctx, a, tid, rm))

			remaining := []custody.Address{a, b}
			for _, i := range tc.approvers {
				require.NoError(t, c.Approve(ctx, remaining[i], tid, pid))
			}

			status, err := c.ProposalStatus(pid, custody.AsUnixTime(env.clock.Now()))
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, status)
			assertErrIs(t, tc.wantErr, c.Execute(ctx, a, tid, pid))

			p, err := c.GetProposal(pid)
			require.NoError(t, err)
			assert.True(t, p.Approvals.Contains(removed))
			assert.Equal(t, tc.wantErr == nil, p.Executed)
		})
	}
}

func TestExecuteExecutedProposal(t *testing.T) {
	cases := map[string]struct {
		caller  func(owners []custody.Address) custody.Address
		wantErr *errors.Error
	}{
		"current owner": {
			caller:  func(owners []custody.Address) custody.Address { return owners[1] },
			wantErr: ErrAlreadyExecuted,
		},
		"removed owner": {
			caller:  func(owners []custody.Address) custody.Address { return owners[2] },
			wantErr: ErrNotOwner,
		},
		"stranger": {
			caller:  func([]custody.Address) custody.Address { return custodytest.NewAddress() },
			wantErr: ErrNotOwner,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t)
			c := NewClient(env)
			tid, owners := env.newTreasury(c, 3, 1)

			pid, err := c.ProposeRemoveOwner(ctx, owners[0], tid, owners[2], 0)
			require.NoError(t, err)
			require.NoError(t, c.Execute(ctx, owners[0], tid, pid))

			assertErrIs(t, tc.wantErr, c.Execute(ctx, tc.caller(owners), tid, pid))
		})
	}
}
