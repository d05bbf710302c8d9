package app

import (
	"context"

	"github.com/iov-one/custody"
	"github.com/tendermint/tendermint/libs/log"
)

// EventSink receives the events of every committed state transition, in
// commit order.
type EventSink interface {
	Publish(ctx context.Context, events []custody.Event) error
}

// LogSink writes every event to the logger.
type LogSink struct {
	logger log.Logger
}

var _ EventSink = LogSink{}

// NewLogSink returns a sink writing to the given logger.
func NewLogSink(logger log.Logger) LogSink {
	return LogSink{logger: logger.With("module", "events")}
}

// Publish logs the events.
func (s LogSink) Publish(ctx context.Context, events []custody.Event) error {
	for _, e := range events {
		kv := make([]interface{}, 0, 4+2*len(e.Attributes))
		kv = append(kv, "treasury", e.Treasury, "time", int64(e.Time))
		for _, a := range e.Attributes {
			kv = append(kv, string(a.Key), string(a.Value))
		}
		s.logger.Info(e.Kind, kv...)
	}
	return nil
}
