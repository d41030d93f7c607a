package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"ordercore/domain/command"
	"ordercore/domain/event"
	"ordercore/domain/orderbook"
)

func TestExecuteKeepsSentinelIDs(t *testing.T) {
	in := command.Execute{
		Time:        17,
		OrderID:     3,
		Side:        orderbook.ExecuteSideMaker,
		Size:        40,
		Price:       101 * orderbook.PriceScale,
		ExecutionID: orderbook.NoID,
		MatchID:     orderbook.NoID,
	}

	var out command.Execute
	require.NoError(t, DecodeExecute(AppendExecute(nil, &in), &out))
	assert.Equal(t, in, out)
}

func TestPurgeRoundTrip(t *testing.T) {
	in := command.Purge{Time: 9, Security: "BTC-USD"}
	var out command.Purge
	require.NoError(t, DecodePurge(AppendPurge(nil, &in), &out))
	assert.Equal(t, in, out)
}

func TestPlaceRoundTrip(t *testing.T) {
	in := command.Place{
		Time: 1, OrderID: 2, ClientID: 3, ClientOrderID: "c-1", Security: "AAPL",
		Side: orderbook.Sell, Type: orderbook.Limit, TimeInForce: orderbook.IOC,
		Price: 5, Size: 6,
	}
	var out command.Place
	require.NoError(t, DecodePlace(AppendPlace(nil, &in), &out))
	assert.Equal(t, in, out)
}

func TestEventSkipsUnknownFields(t *testing.T) {
	in := event.Event{Seq: 9, Type: event.TypeCanceled, OrderID: 4, CancelReason: orderbook.CancelReasonPurged}
	b := AppendEvent(nil, &in)
	b = protowire.AppendTag(b, 99, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, 1)

	var out event.Event
	require.NoError(t, DecodeEvent(b, &out))
	assert.Equal(t, in, out)
}

func TestDecodeTruncated(t *testing.T) {
	b := AppendReduce(nil, &command.Reduce{Time: 1, OrderID: 300, NewTotalSize: 5})
	var out command.Reduce
	err := DecodeReduce(b[:len(b)-1], &out)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestAppendReusesBuffer(t *testing.T) {
	buf := make([]byte, 0, 128)
	c := command.Cancel{Time: 1, OrderID: 2, Size: 3}
	allocs := testing.AllocsPerRun(100, func() {
		buf = AppendCancel(buf[:0], &c)
	})
	assert.Zero(t, allocs)
}
