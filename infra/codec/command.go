package codec

import (
	"ordercore/domain/command"
	"ordercore/domain/orderbook"
)

func AppendPlace(b []byte, c *command.Place) []byte {
	b = appendInt(b, 1, c.Time)
	b = appendUint(b, 2, c.OrderID)
	b = appendUint(b, 3, c.ClientID)
	b = appendString(b, 4, c.ClientOrderID)
	b = appendString(b, 5, c.Security)
	b = appendUint(b, 6, uint64(c.Side))
	b = appendUint(b, 7, uint64(c.Type))
	b = appendUint(b, 8, uint64(c.TimeInForce))
	b = appendInt(b, 9, c.Price)
	return appendInt(b, 10, c.Size)
}

func DecodePlace(b []byte, c *command.Place) error {
	*c = command.Place{}
	return walk(b, func(f field) {
		switch f.num {
		case 1:
			c.Time = f.int()
		case 2:
			c.OrderID = f.v
		case 3:
			c.ClientID = f.v
		case 4:
			c.ClientOrderID = string(f.bs)
		case 5:
			c.Security = string(f.bs)
		case 6:
			c.Side = orderbook.Side(f.v)
		case 7:
			c.Type = orderbook.OrderType(f.v)
		case 8:
			c.TimeInForce = orderbook.TimeInForce(f.v)
		case 9:
			c.Price = f.int()
		case 10:
			c.Size = f.int()
		}
	})
}

func AppendCancel(b []byte, c *command.Cancel) []byte {
	b = appendInt(b, 1, c.Time)
	b = appendUint(b, 2, c.OrderID)
	b = appendInt(b, 3, c.Size)
	return appendUint(b, 4, uint64(c.Reason))
}

func DecodeCancel(b []byte, c *command.Cancel) error {
	*c = command.Cancel{}
	return walk(b, func(f field) {
		switch f.num {
		case 1:
			c.Time = f.int()
		case 2:
			c.OrderID = f.v
		case 3:
			c.Size = f.int()
		case 4:
			c.Reason = orderbook.CancelReason(f.v)
		}
	})
}

func AppendReduce(b []byte, c *command.Reduce) []byte {
	b = appendInt(b, 1, c.Time)
	b = appendUint(b, 2, c.OrderID)
	return appendInt(b, 3, c.NewTotalSize)
}

func DecodeReduce(b []byte, c *command.Reduce) error {
	*c = command.Reduce{}
	return walk(b, func(f field) {
		switch f.num {
		case 1:
			c.Time = f.int()
		case 2:
			c.OrderID = f.v
		case 3:
			c.NewTotalSize = f.int()
		}
	})
}

func AppendExecute(b []byte, c *command.Execute) []byte {
	b = appendInt(b, 1, c.Time)
	b = appendUint(b, 2, c.OrderID)
	b = appendUint(b, 3, uint64(c.Side))
	b = appendInt(b, 4, c.Size)
	b = appendInt(b, 5, c.Price)
	b = appendInt(b, 6, c.ExecutionID)
	return appendInt(b, 7, c.MatchID)
}

func DecodeExecute(b []byte, c *command.Execute) error {
	*c = command.Execute{}
	return walk(b, func(f field) {
		switch f.num {
		case 1:
			c.Time = f.int()
		case 2:
			c.OrderID = f.v
		case 3:
			c.Side = orderbook.ExecuteSide(f.v)
		case 4:
			c.Size = f.int()
		case 5:
			c.Price = f.int()
		case 6:
			c.ExecutionID = f.int()
		case 7:
			c.MatchID = f.int()
		}
	})
}

func AppendPurge(b []byte, c *command.Purge) []byte {
	b = appendInt(b, 1, c.Time)
	return appendString(b, 2, c.Security)
}

func DecodePurge(b []byte, c *command.Purge) error {
	*c = command.Purge{}
	return walk(b, func(f field) {
		switch f.num {
		case 1:
			c.Time = f.int()
		case 2:
			c.Security = string(f.bs)
		}
	})
}
