package service

import "ordercore/domain/orderbook"

// Exposure tracks open size per client and enforces a ceiling on it.
// It follows each tracked order through its listener callbacks.
type Exposure struct {
	orderbook.NopListener

	max      int64
	byClient map[uint64]int64
	byOrder  map[uint64]int64
}

// NewExposure returns an Exposure limiting each client to max open
// size. A max of zero disables the limit.
func NewExposure(max int64) *Exposure {
	return &Exposure{
		max:      max,
		byClient: make(map[uint64]int64),
		byOrder:  make(map[uint64]int64),
	}
}

// Check reports whether clientID may add size to its open size.
func (e *Exposure) Check(clientID uint64, size int64) bool {
	if e.max <= 0 {
		return true
	}
	return e.byClient[clientID]+size <= e.max
}

func (e *Exposure) Open(clientID uint64) int64 {
	return e.byClient[clientID]
}

// Track starts counting o's open size against its client.
func (e *Exposure) Track(o *orderbook.Order) {
	e.byOrder[o.ID()] = 0
	e.sync(o)
	o.AddListener(e)
}

func (e *Exposure) sync(o *orderbook.Order) {
	prev, ok := e.byOrder[o.ID()]
	if !ok {
		return
	}
	open := o.OpenSize()
	e.byOrder[o.ID()] = open
	e.byClient[o.ClientID()] += open - prev
}

// ---- OrderListener ----

func (e *Exposure) OnOrderReduced(_ int64, o *orderbook.Order, _ int64) {
	e.sync(o)
}

func (e *Exposure) OnOrderExecuted(_ int64, o *orderbook.Order, _ orderbook.ExecuteSide, _, _, _, _ int64) {
	e.sync(o)
}

func (e *Exposure) OnOrderTerminated(_ int64, o *orderbook.Order) {
	e.sync(o)
	delete(e.byOrder, o.ID())
	if e.byClient[o.ClientID()] == 0 {
		delete(e.byClient, o.ClientID())
	}
}
