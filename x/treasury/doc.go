/*
Package treasury implements a shared treasury that releases funds, or changes
its own governance, only when a quorum of its owners approved the change.

A treasury holds an owner set and an M-of-N threshold. Any owner may propose
an action: a transfer of funds, the addition or removal of an owner, or a
new threshold. Owners approve proposals and once enough approvals are
collected, any owner may execute it. A proposal is executed at most once and
only before it expires. Governance changes go through the same pipeline as
transfers, so a single owner can never alter the trust model alone.

Balances are held in the cash wallet of the treasury address, see
Treasury.Address.
*/
package treasury
