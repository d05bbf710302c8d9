package utils

import (
	"context"
	"testing"

	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ctx := context.Background()
	db := store.MemStore()
	tx := &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: "treasury/execute"}}

	_, err := m.Deliver(ctx, db, tx, &custodytest.Handler{})
	require.NoError(t, err)
	_, err = m.Deliver(ctx, db, tx, &custodytest.Handler{DeliverErr: errors.ErrExpired})
	assert.True(t, errors.ErrExpired.Is(err))
	_, err = m.Deliver(ctx, db, tx, &custodytest.Handler{DeliverErr: errors.ErrExpired})
	assert.True(t, errors.ErrExpired.Is(err))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.total.WithLabelValues("treasury/execute", "0")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.total.WithLabelValues("treasury/execute", "15")))

	// Check calls are not counted.
	_, err = m.Check(ctx, db, tx, &custodytest.Handler{})
	require.NoError(t, err)
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}
