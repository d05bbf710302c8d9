package treasury

import (
	"github.com/iov-one/custody/errors"
)

// treasury takes 1100-1111
var (
	ErrNotOwner              = errors.Register(1100, "not an owner")
	ErrAlreadyExecuted       = errors.Register(1101, "already executed")
	ErrTransactionExpired    = errors.Register(1102, "transaction expired")
	ErrAlreadyApproved       = errors.Register(1103, "already approved")
	ErrInsufficientApprovals = errors.Register(1104, "insufficient approvals")
	ErrInvalidThreshold      = errors.Register(1105, "invalid threshold")
	ErrOwnerAlreadyExists    = errors.Register(1106, "owner already exists")
	ErrOwnerNotFound         = errors.Register(1107, "owner not found")
	ErrThresholdViolation    = errors.Register(1108, "threshold violation")
	ErrTransactionNotFound   = errors.Register(1109, "transaction not found")
	ErrInsufficientBalance   = errors.Register(1110, "insufficient balance")
	ErrInvalidAmount         = errors.Register(1111, "invalid amount")
)
