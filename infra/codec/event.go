package codec

import (
	"ordercore/domain/event"
	"ordercore/domain/orderbook"
)

func AppendEvent(b []byte, e *event.Event) []byte {
	b = appendUint(b, 1, e.Seq)
	b = appendUint(b, 2, uint64(e.Type))
	b = appendInt(b, 3, e.Time)
	b = appendUint(b, 4, e.OrderID)
	b = appendUint(b, 5, e.ClientID)
	b = appendString(b, 6, e.Security)
	b = appendUint(b, 7, uint64(e.Side))
	b = appendInt(b, 8, e.Size)
	b = appendInt(b, 9, e.Price)
	b = appendUint(b, 10, uint64(e.CancelReason))
	b = appendUint(b, 11, uint64(e.ExecuteSide))
	b = appendInt(b, 12, e.ExecutionID)
	b = appendInt(b, 13, e.MatchID)
	b = appendInt(b, 14, e.TotalSize)
	return appendInt(b, 15, e.ExecutedSize)
}

func DecodeEvent(b []byte, e *event.Event) error {
	*e = event.Event{}
	return walk(b, func(f field) {
		switch f.num {
		case 1:
			e.Seq = f.v
		case 2:
			e.Type = event.Type(f.v)
		case 3:
			e.Time = f.int()
		case 4:
			e.OrderID = f.v
		case 5:
			e.ClientID = f.v
		case 6:
			e.Security = string(f.bs)
		case 7:
			e.Side = orderbook.Side(f.v)
		case 8:
			e.Size = f.int()
		case 9:
			e.Price = f.int()
		case 10:
			e.CancelReason = orderbook.CancelReason(f.v)
		case 11:
			e.ExecuteSide = orderbook.ExecuteSide(f.v)
		case 12:
			e.ExecutionID = f.int()
		case 13:
			e.MatchID = f.int()
		case 14:
			e.TotalSize = f.int()
		case 15:
			e.ExecutedSize = f.int()
		}
	})
}
