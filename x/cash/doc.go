/*
Package cash keeps the asset balances of every address.

A wallet is a normalized set of coins stored under the owning address. Funds
are created by IssueCoins (deposits and genesis) and moved between wallets by
MoveCoins. Any move that would take a wallet below zero fails with
errors.ErrAmount and any addition that would overflow fails with
errors.ErrOverflow; both leave all wallets untouched.
*/
package cash
