/*
Package coin defines the asset amounts held by treasuries and wallets.

A coin is a non-negative integer amount of a single asset identified by its
ticker. All arithmetic is checked: an addition that does not fit in 64 bits
fails with errors.ErrOverflow instead of wrapping, and a subtraction that
would go below zero fails with errors.ErrAmount. There is no conversion
between assets.
*/
package coin
