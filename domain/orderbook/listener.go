package orderbook

// OrderListener observes every state change of an order. Callbacks run
// synchronously on the mutating goroutine and must not block.
//
// For each event, listeners are invoked in reverse registration order:
// the most recently added listener hears about it first.
type OrderListener interface {
	OnOrderReduced(time int64, o *Order, newTotalSize int64)
	OnOrderCanceled(time int64, o *Order, reason CancelReason)
	OnOrderExecuted(time int64, o *Order, side ExecuteSide, size, price, executionID, matchID int64)
	OnOrderTerminated(time int64, o *Order)
}

// NopListener can be embedded by listeners interested in a subset of
// events.
type NopListener struct{}

func (NopListener) OnOrderReduced(int64, *Order, int64)                                    {}
func (NopListener) OnOrderCanceled(int64, *Order, CancelReason)                            {}
func (NopListener) OnOrderExecuted(int64, *Order, ExecuteSide, int64, int64, int64, int64) {}
func (NopListener) OnOrderTerminated(int64, *Order)                                        {}

// AddListener registers l. Registration after termination is ignored.
func (o *Order) AddListener(l OrderListener) {
	if o.terminated || l == nil {
		return
	}
	o.listeners = append(o.listeners, l)
}

// RemoveListener unregisters the most recent registration of l.
func (o *Order) RemoveListener(l OrderListener) bool {
	for i := len(o.listeners) - 1; i >= 0; i-- {
		if o.listeners[i] != l {
			continue
		}
		copy(o.listeners[i:], o.listeners[i+1:])
		o.listeners[len(o.listeners)-1] = nil
		o.listeners = o.listeners[:len(o.listeners)-1]
		return true
	}
	return false
}

func (o *Order) ListenerCount() int { return len(o.listeners) }

func (o *Order) notifyReduced(time, newTotalSize int64) {
	ls := o.listeners
	for i := len(ls) - 1; i >= 0; i-- {
		ls[i].OnOrderReduced(time, o, newTotalSize)
	}
}

func (o *Order) notifyCanceled(time int64, reason CancelReason) {
	ls := o.listeners
	for i := len(ls) - 1; i >= 0; i-- {
		ls[i].OnOrderCanceled(time, o, reason)
	}
}

func (o *Order) notifyExecuted(time int64, side ExecuteSide, size, price, executionID, matchID int64) {
	ls := o.listeners
	for i := len(ls) - 1; i >= 0; i-- {
		ls[i].OnOrderExecuted(time, o, side, size, price, executionID, matchID)
	}
}

// terminate delivers the terminated event and then drops every
// listener reference so the order can be recycled.
func (o *Order) terminate(time int64) {
	o.terminated = true
	ls := o.listeners
	for i := len(ls) - 1; i >= 0; i-- {
		ls[i].OnOrderTerminated(time, o)
	}
	for i := range ls {
		ls[i] = nil
	}
	o.listeners = ls[:0]
}
