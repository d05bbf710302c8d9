package custodytest

import "github.com/iov-one/custody"

// Handler is a mock implementation of the custody.Handler interface.
//
// Each method call is counted and returns configured result. Set Panic to
// make the handler panic instead, and Write to make Deliver store a value.
type Handler struct {
	checkCall   int
	CheckResult custody.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult custody.DeliverResult
	DeliverErr    error

	// Write if set is stored in the database by Deliver before the error
	// is returned.
	Write *custody.Model
	// Panic if set is the value used to panic when handling a message.
	Panic interface{}
}

var _ custody.Handler = (*Handler)(nil)

// Check returns the configured result.
func (h *Handler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	h.checkCall++
	if h.Panic != nil {
		panic(h.Panic)
	}
	res := h.CheckResult
	return &res, h.CheckErr
}

// Deliver returns the configured result.
func (h *Handler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	h.deliverCall++
	if h.Write != nil {
		if err := db.Set(h.Write.Key, h.Write.Value); err != nil {
			return nil, err
		}
	}
	if h.Panic != nil {
		panic(h.Panic)
	}
	res := h.DeliverResult
	return &res, h.DeliverErr
}

// CheckCallCount returns the number of Check calls.
func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

// DeliverCallCount returns the number of Deliver calls.
func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

// CallCount returns the total number of calls.
func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
