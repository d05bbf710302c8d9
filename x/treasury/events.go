package treasury

// Kinds of the events emitted by the treasury handlers.
const (
	EventTreasuryCreated     = "TreasuryCreated"
	EventFundsDeposited      = "FundsDeposited"
	EventTransactionProposed = "TransactionProposed"
	EventTransactionApproved = "TransactionApproved"
	EventTransactionExecuted = "TransactionExecuted"
	EventOwnerAdded          = "OwnerAdded"
	EventOwnerRemoved        = "OwnerRemoved"
	EventThresholdUpdated    = "ThresholdUpdated"
)
