package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fenrir/internal/common"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New("test")

	m.ObserveAccepted()
	m.ObserveAccepted()
	m.ObserveDropped(fmt.Errorf("%w: missing id", common.ErrMalformedOrder))
	m.ObserveDropped(fmt.Errorf("%w: negative price", common.ErrRejectedOrder))
	m.ObserveDropped(fmt.Errorf("%w: negative price", common.ErrRejectedOrder))
	m.ObserveDropped(errors.New("something else"))
	m.ObserveTrades([]common.Trade{
		{BuyOrderID: 1, SellOrderID: 2, Price: decimal.NewFromInt(10), MatchQty: 3},
		{BuyOrderID: 1, SellOrderID: 2, Price: decimal.NewFromInt(10), MatchQty: 4},
	})
	m.ObserveDepth(5, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersAccepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersDropped.WithLabelValues("malformed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersDropped.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersDropped.WithLabelValues("other")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.tradesExecuted))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.tradedQuantity))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.restingOrders.WithLabelValues("Buy")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.restingOrders.WithLabelValues("Sell")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New("test")
	m.ObserveAccepted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "test_orders_accepted_total 1"))
}
