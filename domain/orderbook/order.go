package orderbook

const defaultListenerCap = 8

// Order is the state machine for a single order from acceptance to
// termination. It is not safe for concurrent use; the owner of the
// book it rests in serialises every call.
//
// Sizes always satisfy 0 <= executed <= total <= original.
type Order struct {
	id            uint64
	clientID      uint64
	clientOrderID ClientOrderID
	security      string
	side          Side
	orderType     OrderType
	tif           TimeInForce
	price         int64

	originalSize int64
	totalSize    int64
	executedSize int64

	acceptTime  int64
	restTime    int64
	cancelTime  int64
	rejectTime  int64
	reduceTime  int64
	executeTime int64

	resting       bool
	pendingCancel bool
	pendingSize   int64
	terminated    bool
	rejectReason  RejectReason
	rejected      bool
	levelOpenSize int64
	listeners     []OrderListener
	prev, next    *Order
	level         *PriceLevel
}

// NewOrder allocates an empty order ready for Init.
func NewOrder() *Order {
	return &Order{listeners: make([]OrderListener, 0, defaultListenerCap)}
}

// Init populates identity and sizes at acceptance time. It must be
// called on a fresh or Reset order before any lifecycle operation.
func (o *Order) Init(
	id, clientID uint64,
	clientOrderID string,
	security string,
	side Side,
	otype OrderType,
	tif TimeInForce,
	price, size int64,
) {
	o.id = id
	o.clientID = clientID
	o.clientOrderID.Set(clientOrderID)
	o.security = security
	o.side = side
	o.orderType = otype
	o.tif = tif
	o.price = price
	if size < 0 {
		size = 0
	}
	o.originalSize = size
	o.totalSize = size
	o.executedSize = 0
}

// Reset clears all state so a terminated order can be pooled. The
// listener slice keeps its capacity.
func (o *Order) Reset() {
	ls := o.listeners
	for i := range ls {
		ls[i] = nil
	}
	*o = Order{listeners: ls[:0]}
}

// Accept records the acceptance time.
func (o *Order) Accept(time int64) { o.acceptTime = time }

// SetResting is called by the price level owner when the order is
// parked in (or removed from) a queue.
func (o *Order) SetResting(time int64, resting bool) {
	o.resting = resting
	if resting {
		o.restTime = time
	}
}

// Reject records a rejection. A rejected order never becomes active.
func (o *Order) Reject(time int64, reason RejectReason) {
	o.rejectTime = time
	o.rejectReason = reason
	o.rejected = true
}

// MarkPendingCancel records an in-flight cancel request of size.
func (o *Order) MarkPendingCancel(size int64) {
	o.pendingCancel = true
	o.pendingSize = size
}

func (o *Order) ClearPendingCancel() {
	o.pendingCancel = false
	o.pendingSize = 0
}

// ---- identity ----

func (o *Order) ID() uint64                         { return o.id }
func (o *Order) ClientID() uint64                   { return o.clientID }
func (o *Order) ClientOrderID() *ClientOrderID      { return &o.clientOrderID }
func (o *Order) Security() string                   { return o.security }
func (o *Order) Side() Side                         { return o.side }
func (o *Order) Type() OrderType                    { return o.orderType }
func (o *Order) TimeInForce() TimeInForce           { return o.tif }
func (o *Order) Price() int64                       { return o.price }
func (o *Order) RejectReason() (RejectReason, bool) { return o.rejectReason, o.rejected }

// ---- sizes ----

func (o *Order) OriginalSize() int64 { return o.originalSize }
func (o *Order) TotalSize() int64    { return o.totalSize }
func (o *Order) ExecutedSize() int64 { return o.executedSize }

// OpenSize is the size still eligible to trade.
func (o *Order) OpenSize() int64 { return o.totalSize - o.executedSize }

// CanceledSize is the size removed by reductions and cancels.
func (o *Order) CanceledSize() int64 { return o.originalSize - o.totalSize }

// IsTerminal reports whether nothing is left open.
func (o *Order) IsTerminal() bool { return o.OpenSize() == 0 }

// IsTerminated reports whether the terminal event has been delivered
// and the listener set released.
func (o *Order) IsTerminated() bool { return o.terminated }

// ---- timestamps ----

func (o *Order) AcceptTime() int64  { return o.acceptTime }
func (o *Order) RestTime() int64    { return o.restTime }
func (o *Order) CancelTime() int64  { return o.cancelTime }
func (o *Order) RejectTime() int64  { return o.rejectTime }
func (o *Order) ReduceTime() int64  { return o.reduceTime }
func (o *Order) ExecuteTime() int64 { return o.executeTime }

// ---- flags ----

func (o *Order) IsResting() bool       { return o.resting }
func (o *Order) IsPendingCancel() bool { return o.pendingCancel }
func (o *Order) PendingSize() int64    { return o.pendingSize }

// ---- queue linkage ----

func (o *Order) Prev() *Order       { return o.prev }
func (o *Order) Next() *Order       { return o.next }
func (o *Order) Level() *PriceLevel { return o.level }
