package custodytest

import "github.com/iov-one/custody"

// Tx represents a transaction carrying a single message.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg custody.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ custody.Tx = (*Tx)(nil)

// GetMsg returns the message or the configured error.
func (tx *Tx) GetMsg() (custody.Msg, error) {
	return tx.Msg, tx.Err
}

// Msg represents a message with configurable routing and validation.
type Msg struct {
	// RoutePath returned by the path method, consumed by the router.
	RoutePath string
	// Err if set is returned by Validate.
	Err error
}

var _ custody.Msg = (*Msg)(nil)

// Path returns RoutePath.
func (m *Msg) Path() string {
	return m.RoutePath
}

// Validate returns Err.
func (m *Msg) Validate() error {
	return m.Err
}
