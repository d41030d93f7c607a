package orderbook

type Side uint8
type ExecuteSide uint8
type OrderType uint8
type TimeInForce uint8
type CancelReason uint8
type RejectReason uint8

const (
	Buy Side = iota
	Sell
)

const (
	ExecuteSideTaker ExecuteSide = iota
	ExecuteSideMaker
)

const (
	Limit OrderType = iota
	Market
)

const (
	Day TimeInForce = iota
	GTC
	IOC
)

const (
	CancelReasonUser CancelReason = iota
	CancelReasonNoLiquidity
	CancelReasonExpired
	CancelReasonPrice
	CancelReasonPurged
	CancelReasonMissed
)

const (
	RejectReasonMissingField RejectReason = iota
	RejectReasonBadSide
	RejectReasonBadType
	RejectReasonBadTIF
	RejectReasonBadPrice
	RejectReasonBadSize
	RejectReasonDuplicateID
	RejectReasonRiskLimit
)

// PriceScale is the number of price units per whole currency unit.
const PriceScale = 100_000_000

// NoID marks an execution or match id that was not supplied.
const NoID int64 = -1

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

func (s Side) Valid() bool { return s <= Sell }

func (s ExecuteSide) String() string {
	switch s {
	case ExecuteSideTaker:
		return "TAKER"
	case ExecuteSideMaker:
		return "MAKER"
	default:
		return "UNKNOWN"
	}
}

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "LIMIT"
	case Market:
		return "MARKET"
	default:
		return "UNKNOWN"
	}
}

func (t OrderType) Valid() bool { return t <= Market }

func (t TimeInForce) String() string {
	switch t {
	case Day:
		return "DAY"
	case GTC:
		return "GTC"
	case IOC:
		return "IOC"
	default:
		return "UNKNOWN"
	}
}

func (t TimeInForce) Valid() bool { return t <= IOC }

func (r CancelReason) String() string {
	switch r {
	case CancelReasonUser:
		return "USER"
	case CancelReasonNoLiquidity:
		return "NO_LIQUIDITY"
	case CancelReasonExpired:
		return "EXPIRED"
	case CancelReasonPrice:
		return "PRICE"
	case CancelReasonPurged:
		return "PURGED"
	case CancelReasonMissed:
		return "MISSED"
	default:
		return "UNKNOWN"
	}
}

func (r RejectReason) String() string {
	switch r {
	case RejectReasonMissingField:
		return "MISSING_FIELD"
	case RejectReasonBadSide:
		return "BAD_SIDE"
	case RejectReasonBadType:
		return "BAD_TYPE"
	case RejectReasonBadTIF:
		return "BAD_TIF"
	case RejectReasonBadPrice:
		return "BAD_PRICE"
	case RejectReasonBadSize:
		return "BAD_SIZE"
	case RejectReasonDuplicateID:
		return "DUPLICATE_ORDER_ID"
	case RejectReasonRiskLimit:
		return "RISK_LIMIT"
	default:
		return "UNKNOWN"
	}
}
