package orderbook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringLimitOrder(t *testing.T) {
	o := NewOrder()
	o.Init(11, 3, "cl-9", "AAPL", Sell, Limit, IOC, 10_150_000_000, 100)
	o.Execute(1, 25)
	o.CancelSize(2, 5)

	assert.Equal(t,
		"Order [id=11, clientId=3, clientOrderId=cl-9, side=SELL, security=AAPL, "+
			"originalSize=100, openSize=70, executedSize=25, canceledSize=5, "+
			"price=101.5, type=LIMIT, tif=IOC]",
		o.String())
}

func TestStringMarketOrderOmitsPriceAndTIF(t *testing.T) {
	o := NewOrder()
	o.Init(1, 2, "", "BTC-USD", Buy, Market, Day, 0, 3)

	s := o.String()
	assert.NotContains(t, s, "price=")
	assert.NotContains(t, s, "tif=")
	assert.Contains(t, s, "clientOrderId=,")
	assert.True(t, strings.HasSuffix(s, "type=MARKET]"))
}

func TestStringUnsetClientOrderID(t *testing.T) {
	o := NewOrder()
	assert.Contains(t, o.String(), "clientOrderId=NULL")
}

func TestAppendToDoesNotAllocate(t *testing.T) {
	o := NewOrder()
	o.Init(11, 3, "cl-9", "AAPL", Sell, Limit, GTC, 10_150_000_000, 100)
	buf := make([]byte, 0, 512)

	allocs := testing.AllocsPerRun(100, func() {
		buf = o.AppendTo(buf[:0])
	})
	assert.Zero(t, allocs)
}

func TestAppendPrice(t *testing.T) {
	cases := map[int64]string{
		0:              "0",
		PriceScale:     "1",
		10_150_000_000: "101.5",
		1:              "0.00000001",
		-250_000_000:   "-2.5",
	}
	for price, want := range cases {
		assert.Equal(t, want, string(AppendPrice(nil, price)))
	}
}

func TestClientOrderID(t *testing.T) {
	var id ClientOrderID
	assert.False(t, id.IsSet())
	assert.Equal(t, "NULL", id.String())

	id.Set("")
	assert.True(t, id.IsSet())
	assert.Equal(t, "", id.String())

	long := strings.Repeat("x", ClientOrderIDMaxLength+10)
	id.Set(long)
	assert.Equal(t, ClientOrderIDMaxLength, id.Len())
	assert.Equal(t, long[:ClientOrderIDMaxLength], id.String())

	id.SetBytes([]byte("abc"))
	assert.Equal(t, []byte("abc"), id.Bytes())

	id.Reset()
	assert.False(t, id.IsSet())
}

func TestClientOrderIDSetDoesNotAllocate(t *testing.T) {
	var id ClientOrderID
	src := []byte("order-123")
	allocs := testing.AllocsPerRun(100, func() {
		id.SetBytes(src)
	})
	assert.Zero(t, allocs)
}
