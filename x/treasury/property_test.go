package treasury

import (
	"context"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/custodytest"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestGovernanceInvariants runs random sequences of proposals, approvals
// and executions against a single treasury and checks that the threshold
// is always satisfiable and that no proposal is executed twice.
func TestGovernanceInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("owner set and threshold stay consistent", prop.ForAll(
		func(ops []uint32) bool {
			ctx := context.Background()
			env := newTestEnv(t)
			c := NewClient(env)
			tid, owners := env.newTreasury(c, 3, 2)
			if err := c.Deposit(ctx, nil, tid, coin.NewCoin(1000, "X")); err != nil {
				return false
			}

			// Candidates include all initial owners and a few strangers.
			candidates := append([]custody.Address{}, owners...)
			for i := 0; i < 3; i++ {
				candidates = append(candidates, custodytest.NewAddress())
			}
			var proposals [][]byte
			executed := make(map[string]bool)

			for _, op := range ops {
				caller := candidates[int(op>>4)%len(candidates)]
				target := candidates[int(op>>8)%len(candidates)]

				switch op % 6 {
				case 0:
					if id, err := c.ProposeAddOwner(ctx, caller, tid, target, 0); err == nil {
						proposals = append(proposals, id)
					}
				case 1:
					if id, err := c.ProposeRemoveOwner(ctx, caller, tid, target, 0); err == nil {
						proposals = append(proposals, id)
					}
				case 2:
					m := (op >> 12) % 7
					if id, err := c.ProposeUpdateThreshold(ctx, caller, tid, m, 0); err == nil {
						proposals = append(proposals, id)
					}
				case 3:
					amount := coin.NewCoin(uint64(op>>12)%400+1, "X")
					if id, err := c.ProposeTransfer(ctx, caller, tid, target, amount, 0); err == nil {
						proposals = append(proposals, id)
					}
				case 4, 5:
					if len(proposals) == 0 {
						continue
					}
					pid := proposals[int(op>>12)%len(proposals)]
					if op%6 == 4 {
						_ = c.Approve(ctx, caller, tid, pid)
						continue
					}
					if err := c.Execute(ctx, caller, tid, pid); err == nil {
						if executed[string(pid)] {
							return false
						}
						executed[string(pid)] = true
					} else if executed[string(pid)] {
						// Ownership is checked before the executed flag.
						tr, terr := c.GetTreasury(tid)
						if terr != nil {
							return false
						}
						want := ErrAlreadyExecuted
						if !tr.IsOwner(caller) {
							want = ErrNotOwner
						}
						if !want.Is(err) {
							return false
						}
					}
				}

				tr, err := c.GetTreasury(tid)
				if err != nil {
					return false
				}
				if tr.Threshold < 1 || int(tr.Threshold) > len(tr.Owners) {
					return false
				}
				if tr.Validate() != nil {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt32()),
	))

	properties.TestingRun(t)
}
