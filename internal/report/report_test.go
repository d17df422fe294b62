package report

import (
	"bytes"
	"errors"
	"testing"

	"fenrir/internal/common"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() common.BookSnapshot {
	return common.BookSnapshot{
		Buy: []common.RestingOrder{
			{ID: 1, Price: decimal.NewFromInt(14), Quantity: 20},
		},
		Sell: []common.RestingOrder{
			{ID: 2, Price: decimal.RequireFromString("15.5"), Quantity: 10},
		},
	}
}

func sampleTrades() []common.Trade {
	return []common.Trade{
		{BuyOrderID: 3, SellOrderID: 2, Price: decimal.RequireFromString("15.5"), MatchQty: 4},
	}
}

func TestJSONReporter_Final(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewJSONReporter(&buf, false)

	require.NoError(t, reporter.ReportFinal(sampleSnapshot(), sampleTrades()))
	assert.Equal(t,
		`{"buyOrders":[{"id":1,"price":14,"quantity":20}],"sellOrders":[{"id":2,"price":15.5,"quantity":10}]}`+"\n"+
			`{"buyOrderId":3,"sellOrderId":2,"price":15.5,"quantity":4}`+"\n",
		buf.String(),
	)
}

func TestJSONReporter_EmptyBook(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewJSONReporter(&buf, false)

	require.NoError(t, reporter.ReportFinal(common.BookSnapshot{}, nil))
	assert.Equal(t, `{"buyOrders":[],"sellOrders":[]}`+"\n", buf.String())
}

func TestJSONReporter_EventsOnlyWhenLive(t *testing.T) {
	var quiet bytes.Buffer
	require.NoError(t, NewJSONReporter(&quiet, false).ReportEvent(1, sampleTrades(), sampleSnapshot))
	assert.Empty(t, quiet.String())

	var live bytes.Buffer
	require.NoError(t, NewJSONReporter(&live, true).ReportEvent(1, sampleTrades(), sampleSnapshot))
	assert.Equal(t,
		`{"buyOrderId":3,"sellOrderId":2,"price":15.5,"quantity":4}`+"\n"+
			`{"buyOrders":[{"id":1,"price":14,"quantity":20}],"sellOrders":[{"id":2,"price":15.5,"quantity":10}]}`+"\n",
		live.String(),
	)
}

func TestJSONReporter_Rejection(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewJSONReporter(&buf, false)

	require.NoError(t, reporter.ReportRejection(7, errors.New("order rejection: bad price")))
	assert.Equal(t, `{"line":7,"error":"order rejection: bad price"}`+"\n", buf.String())
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("pipe closed")
}

func TestJSONReporter_WriteError(t *testing.T) {
	reporter := NewJSONReporter(brokenWriter{}, true)
	assert.Error(t, reporter.ReportFinal(sampleSnapshot(), nil))
}
