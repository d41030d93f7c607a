package service

import (
	"errors"
	"fmt"

	"ordercore/domain/orderbook"
)

var (
	ErrOrderNotFound = errors.New("service: order not found")
	// ErrTerminated is returned for commands on an order that recently
	// reached its terminal state.
	ErrTerminated = errors.New("service: order terminated")
)

// RejectError reports an order refused at entry.
type RejectError struct {
	OrderID uint64
	Reason  orderbook.RejectReason
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("service: order %d rejected: %s", e.OrderID, e.Reason)
}

// IsReject reports whether err is a *RejectError and returns it.
func IsReject(err error) (*RejectError, bool) {
	var re *RejectError
	ok := errors.As(err, &re)
	return re, ok
}
