package custody

import (
	"fmt"
	"strings"

	"github.com/tendermint/tendermint/libs/common"
)

// Event is an observable fact emitted by a successful state transition.
// Events are the only interface offered to audit and analytics consumers.
type Event struct {
	// Kind is the name of the fact, for example "TransactionApproved".
	Kind string
	// Treasury is the identifier of the treasury this event belongs to.
	Treasury []byte
	// Time is the block time of the transition that emitted the event.
	Time UnixTime
	// Attributes hold the identities and amounts relevant to the event.
	Attributes []common.KVPair
}

// NewEvent returns an event of the given kind. Attributes are given as
// alternating key and value strings.
func NewEvent(kind string, treasury []byte, now UnixTime, kv ...string) Event {
	if len(kv)%2 != 0 {
		panic("odd number of attribute arguments")
	}
	attrs := make([]common.KVPair, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		attrs = append(attrs, common.KVPair{Key: []byte(kv[i]), Value: []byte(kv[i+1])})
	}
	return Event{
		Kind:       kind,
		Treasury:   treasury,
		Time:       now,
		Attributes: attrs,
	}
}

// Attr returns the value of the attribute with the given key or an empty
// string if not present.
func (e Event) Attr(key string) string {
	for _, a := range e.Attributes {
		if string(a.Key) == key {
			return string(a.Value)
		}
	}
	return ""
}

func (e Event) String() string {
	attrs := make([]string, len(e.Attributes))
	for i, a := range e.Attributes {
		attrs[i] = fmt.Sprintf("%s=%s", a.Key, a.Value)
	}
	return fmt.Sprintf("%s treasury=%X at=%d %s", e.Kind, e.Treasury, e.Time, strings.Join(attrs, " "))
}
