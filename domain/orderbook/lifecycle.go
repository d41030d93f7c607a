package orderbook

// Lifecycle operations never fail. Sizes outside the legal range are
// clamped, and calls on an order whose terminal event was already
// delivered are ignored.

// ReduceTo shrinks the order's total size to newTotalSize. A target at
// or below the executed size cancels the order. A target above the
// current total size leaves it unchanged.
func (o *Order) ReduceTo(time, newTotalSize int64) {
	if o.terminated {
		return
	}
	if newTotalSize <= o.executedSize {
		o.CancelWithReason(time, CancelReasonUser)
		return
	}
	if newTotalSize > o.totalSize {
		newTotalSize = o.totalSize
	}

	o.totalSize = newTotalSize
	o.reduceTime = time
	o.notifyReduced(time, o.totalSize)
}

// CancelSize cancels size from the open portion for a user request.
func (o *Order) CancelSize(time, size int64) {
	o.CancelSizeWithReason(time, size, CancelReasonUser)
}

// CancelSizeWithReason removes size from the open portion. A partial
// cancel is reported as a reduce; only removing all open size is
// reported as a cancel.
func (o *Order) CancelSizeWithReason(time, size int64, reason CancelReason) {
	if o.terminated {
		return
	}
	if size < 0 {
		size = 0
	}
	if size >= o.OpenSize() {
		o.CancelWithReason(time, reason)
		return
	}

	newSize := o.totalSize - size
	o.totalSize = newSize
	o.reduceTime = time
	o.notifyReduced(time, newSize)
}

// Cancel cancels all open size for a user request.
func (o *Order) Cancel(time int64) {
	o.CancelWithReason(time, CancelReasonUser)
}

// CancelWithReason cancels all open size and terminates the order.
func (o *Order) CancelWithReason(time int64, reason CancelReason) {
	if o.terminated {
		return
	}

	o.totalSize = o.executedSize
	o.cancelTime = time
	o.notifyCanceled(time, reason)
	o.terminate(time)
}

// Execute fills size as a taker at the order's own price with no
// execution or match id.
func (o *Order) Execute(time, size int64) {
	o.ExecuteTrade(time, ExecuteSideTaker, size, o.price, NoID, NoID)
}

// ExecuteTrade records a fill. size is capped at the open size. When
// the fill leaves nothing open the order terminates.
func (o *Order) ExecuteTrade(time int64, side ExecuteSide, size, price, executionID, matchID int64) {
	if o.terminated {
		return
	}
	if open := o.OpenSize(); size > open {
		size = open
	}
	if size < 0 {
		size = 0
	}

	o.executedSize += size
	o.executeTime = time
	o.notifyExecuted(time, side, size, price, executionID, matchID)

	if o.IsTerminal() {
		o.terminate(time)
	}
}
