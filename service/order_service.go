package service

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"ordercore/domain/command"
	"ordercore/domain/orderbook"
	"ordercore/infra/codec"
	"ordercore/infra/journal"
	"ordercore/infra/memory"
	"ordercore/infra/metrics"
	"ordercore/infra/sequence"
	entrywal "ordercore/infra/wal/entry"
	exitwal "ordercore/infra/wal/exit"
	"ordercore/snapshot"
)

const defaultRetireRingSize = 4096

// Options wires the collaborators of an OrderService. Nil
// collaborators are skipped.
type Options struct {
	Logger *slog.Logger

	// EntryWAL journals commands before they are applied.
	EntryWAL *entrywal.WAL
	// Outbox receives every order event through the journal.
	Outbox  *exitwal.ExitWAL
	Metrics *metrics.Collector

	// MaxOpenSize caps each client's open size; zero disables it.
	MaxOpenSize    int64
	RetireRingSize uint64

	// Now supplies command times that were not set by the caller.
	Now func() int64
}

// OrderService is the only write entry point into the order core.
type OrderService struct {
	mu  sync.Mutex
	log *slog.Logger
	now func() int64

	books map[string]*orderbook.Book
	index *liveIndex
	risk  *Exposure

	pool   *memory.Pool[orderbook.Order]
	ring   *memory.RetireRing[orderbook.Order]
	reader *snapshot.Reader

	orderSeq *sequence.Sequencer
	execSeq  *sequence.Sequencer
	matchSeq *sequence.Sequencer
	walSeq   *sequence.Sequencer
	eventSeq *sequence.Sequencer

	wal     *entrywal.WAL
	outbox  *exitwal.ExitWAL
	journal *journal.Journal
	metrics *metrics.Collector

	rec       entrywal.Record
	buf       []byte
	replaying bool
}

func NewOrderService(opts Options) *OrderService {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixNano() }
	}
	ringSize := opts.RetireRingSize
	if ringSize == 0 {
		ringSize = defaultRetireRingSize
	}

	s := &OrderService{
		log:      log.With("component", "order_service"),
		now:      now,
		books:    make(map[string]*orderbook.Book),
		index:    newLiveIndex(),
		risk:     NewExposure(opts.MaxOpenSize),
		pool:     memory.NewPool(orderbook.NewOrder, (*orderbook.Order).Reset),
		ring:     memory.NewRetireRing[orderbook.Order](ringSize),
		reader:   snapshot.NewReader(),
		orderSeq: sequence.New(0),
		execSeq:  sequence.New(0),
		matchSeq: sequence.New(0),
		walSeq:   sequence.New(0),
		eventSeq: sequence.New(0),
		wal:      opts.EntryWAL,
		outbox:   opts.Outbox,
		metrics:  opts.Metrics,
		buf:      make([]byte, 0, 256),
	}
	if opts.Outbox != nil {
		s.journal = journal.New(opts.Outbox, s.eventSeq)
	}
	return s
}

// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────

// PlaceOrder validates and accepts a new order. A zero OrderID or Time
// is assigned by the service. Limit orders rest; market and IOC orders
// are cancelled at entry with CancelReasonNoLiquidity since nothing
// matches them here.
func (s *OrderService) PlaceOrder(cmd command.Place) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cmd.Time == 0 {
		cmd.Time = s.now()
	}
	if cmd.OrderID == 0 {
		cmd.OrderID = s.orderSeq.Next()
	} else {
		s.orderSeq.Observe(cmd.OrderID)
	}

	s.buf = codec.AppendPlace(s.buf[:0], &cmd)
	if err := s.journalCommand(command.TypePlace, cmd.Time); err != nil {
		return View{}, err
	}
	return s.place(&cmd)
}

// CancelOrder cancels Size from the order's open size, or all of it
// when Size is not positive.
func (s *OrderService) CancelOrder(cmd command.Cancel) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(cmd.OrderID); err != nil {
		return View{}, err
	}
	if cmd.Time == 0 {
		cmd.Time = s.now()
	}

	s.buf = codec.AppendCancel(s.buf[:0], &cmd)
	if err := s.journalCommand(command.TypeCancel, cmd.Time); err != nil {
		return View{}, err
	}
	return s.cancel(&cmd)
}

// ReduceOrder shrinks the order's total size to NewTotalSize.
func (s *OrderService) ReduceOrder(cmd command.Reduce) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(cmd.OrderID); err != nil {
		return View{}, err
	}
	if cmd.Time == 0 {
		cmd.Time = s.now()
	}

	s.buf = codec.AppendReduce(s.buf[:0], &cmd)
	if err := s.journalCommand(command.TypeReduce, cmd.Time); err != nil {
		return View{}, err
	}
	return s.reduce(&cmd)
}

// ExecuteOrder records a fill decided by an external matcher. Missing
// execution and match ids are drawn from the service's sequencers and
// a zero price means the order's own price.
func (s *OrderService) ExecuteOrder(cmd command.Execute) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.lookup(cmd.OrderID)
	if err != nil {
		return View{}, err
	}
	if cmd.Time == 0 {
		cmd.Time = s.now()
	}
	if cmd.ExecutionID == 0 {
		cmd.ExecutionID = int64(s.execSeq.Next())
	} else if cmd.ExecutionID > 0 {
		s.execSeq.Observe(uint64(cmd.ExecutionID))
	}
	if cmd.MatchID == 0 {
		cmd.MatchID = int64(s.matchSeq.Next())
	} else if cmd.MatchID > 0 {
		s.matchSeq.Observe(uint64(cmd.MatchID))
	}
	if cmd.Price == 0 {
		cmd.Price = o.Price()
	}

	s.buf = codec.AppendExecute(s.buf[:0], &cmd)
	if err := s.journalCommand(command.TypeExecute, cmd.Time); err != nil {
		return View{}, err
	}
	return s.execute(&cmd)
}

// PurgeBook cancels every resting order of cmd.Security with
// CancelReasonPurged and reports how many were cancelled. An unknown
// security is not journaled.
func (s *OrderService) PurgeBook(cmd command.Purge) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[cmd.Security]; !ok {
		return 0, nil
	}
	if cmd.Time == 0 {
		cmd.Time = s.now()
	}

	s.buf = codec.AppendPurge(s.buf[:0], &cmd)
	if err := s.journalCommand(command.TypePurge, cmd.Time); err != nil {
		return 0, err
	}
	return s.purge(&cmd), nil
}

// RequestCancel flags a cancel as in flight at the gateway. It is not
// journaled; the flag is cleared by the next CancelOrder.
func (s *OrderService) RequestCancel(id uint64, size int64) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	o.MarkPendingCancel(size)
	return viewOf(o), nil
}

// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────

func (s *OrderService) Order(id uint64) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	return viewOf(o), nil
}

// Snapshot returns every resting order, securities in name order, bids
// then asks, best price first.
func (s *OrderService) Snapshot() []View {
	s.reader.Begin()
	defer s.reader.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]View, 0, len(s.index.live))
	visit := func(lvl *orderbook.PriceLevel) bool {
		for o := lvl.Head(); o != nil; o = o.Next() {
			out = append(out, viewOf(o))
		}
		return true
	}
	for _, b := range s.sortedBooks() {
		b.WalkBids(visit)
		b.WalkAsks(visit)
	}
	return out
}

// Depth returns up to n aggregated levels of security on side.
func (s *OrderService) Depth(security string, side orderbook.Side, n int) []orderbook.LevelDepth {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[security]
	if !ok {
		return nil
	}
	return b.Depth(side, n)
}

// Exposure returns the open size held by clientID.
func (s *OrderService) Exposure(clientID uint64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.risk.Open(clientID)
}

// ──────────────────────────────────────────────────────────
// Reclamation
// ──────────────────────────────────────────────────────────

// AdvanceEpoch returns retired orders to the pool once no snapshot
// reader is active. It reports how many were reclaimed.
func (s *OrderService) AdvanceEpoch() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memory.AdvanceEpochAndReclaim(s.ring, s.pool, s.reader.Epoch())
}

// ──────────────────────────────────────────────────────────
// Apply
// ──────────────────────────────────────────────────────────

func (s *OrderService) place(cmd *command.Place) (View, error) {
	o := s.pool.Get()
	o.Init(cmd.OrderID, cmd.ClientID, cmd.ClientOrderID, cmd.Security,
		cmd.Side, cmd.Type, cmd.TimeInForce, cmd.Price, cmd.Size)

	if reason, ok := s.validate(cmd); !ok {
		o.Reject(cmd.Time, reason)
		v := viewOf(o)
		s.pool.Put(o)
		if s.metrics != nil && !s.replaying {
			s.metrics.Reject(reason)
		}
		return v, &RejectError{OrderID: cmd.OrderID, Reason: reason}
	}

	o.Accept(cmd.Time)
	if s.metrics != nil && !s.replaying {
		s.metrics.Accepted.Inc()
	}
	s.attach(o)

	if cmd.Type == orderbook.Market || cmd.TimeInForce == orderbook.IOC {
		o.CancelWithReason(cmd.Time, orderbook.CancelReasonNoLiquidity)
		v := viewOf(o)
		s.retire(o)
		s.flush()
		return v, nil
	}

	s.book(cmd.Security).Rest(cmd.Time, o)
	v := viewOf(o)
	s.flush()
	return v, nil
}

func (s *OrderService) cancel(cmd *command.Cancel) (View, error) {
	o, err := s.lookup(cmd.OrderID)
	if err != nil {
		return View{}, err
	}
	o.ClearPendingCancel()
	if cmd.Size <= 0 {
		o.CancelWithReason(cmd.Time, cmd.Reason)
	} else {
		o.CancelSizeWithReason(cmd.Time, cmd.Size, cmd.Reason)
	}
	v := viewOf(o)
	s.flush()
	return v, nil
}

func (s *OrderService) reduce(cmd *command.Reduce) (View, error) {
	o, err := s.lookup(cmd.OrderID)
	if err != nil {
		return View{}, err
	}
	o.ReduceTo(cmd.Time, cmd.NewTotalSize)
	v := viewOf(o)
	s.flush()
	return v, nil
}

func (s *OrderService) execute(cmd *command.Execute) (View, error) {
	o, err := s.lookup(cmd.OrderID)
	if err != nil {
		return View{}, err
	}
	o.ExecuteTrade(cmd.Time, cmd.Side, cmd.Size, cmd.Price, cmd.ExecutionID, cmd.MatchID)
	v := viewOf(o)
	s.flush()
	return v, nil
}

func (s *OrderService) purge(cmd *command.Purge) int {
	b, ok := s.books[cmd.Security]
	if !ok {
		return 0
	}
	n := b.Purge(cmd.Time, orderbook.CancelReasonPurged)
	s.flush()
	return n
}

func (s *OrderService) validate(cmd *command.Place) (orderbook.RejectReason, bool) {
	switch {
	case cmd.Security == "":
		return orderbook.RejectReasonMissingField, false
	case !cmd.Side.Valid():
		return orderbook.RejectReasonBadSide, false
	case !cmd.Type.Valid():
		return orderbook.RejectReasonBadType, false
	case !cmd.TimeInForce.Valid():
		return orderbook.RejectReasonBadTIF, false
	case cmd.Type == orderbook.Limit && cmd.Price <= 0:
		return orderbook.RejectReasonBadPrice, false
	case cmd.Size <= 0:
		return orderbook.RejectReasonBadSize, false
	case s.index.known(cmd.OrderID):
		return orderbook.RejectReasonDuplicateID, false
	case !s.risk.Check(cmd.ClientID, cmd.Size):
		return orderbook.RejectReasonRiskLimit, false
	}
	return 0, true
}

// attach registers the service's listeners on an accepted order. The
// book and level register later, in Rest, so they are notified first
// and the journal last.
func (s *OrderService) attach(o *orderbook.Order) {
	if s.journal != nil {
		o.AddListener(s.journal)
	}
	if s.metrics != nil {
		o.AddListener(s.metrics)
	}
	s.risk.Track(o)
	s.index.add(o)
}

func (s *OrderService) lookup(id uint64) (*orderbook.Order, error) {
	if o := s.index.get(id); o != nil {
		return o, nil
	}
	if s.index.known(id) {
		return nil, fmt.Errorf("order %d: %w", id, ErrTerminated)
	}
	return nil, fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
}

func (s *OrderService) book(security string) *orderbook.Book {
	b, ok := s.books[security]
	if !ok {
		b = orderbook.NewBook(security, s.retire)
		s.books[security] = b
	}
	return b
}

func (s *OrderService) sortedBooks() []*orderbook.Book {
	names := make([]string, 0, len(s.books))
	for name := range s.books {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*orderbook.Book, 0, len(names))
	for _, name := range names {
		out = append(out, s.books[name])
	}
	return out
}

// retire parks a terminated order until the next epoch advance.
func (s *OrderService) retire(o *orderbook.Order) {
	if !s.ring.Enqueue(o) {
		// Ring full; let the GC have it.
		s.log.Debug("retire ring full", "order_id", o.ID())
	}
}

func (s *OrderService) journalCommand(t command.Type, time int64) error {
	if s.wal == nil || s.replaying {
		return nil
	}
	s.rec = entrywal.Record{Type: uint8(t), Seq: s.walSeq.Next(), Time: time, Data: s.buf}
	if err := s.wal.Append(&s.rec); err != nil {
		return fmt.Errorf("journal %s: %w", t, err)
	}
	return nil
}

// flush persists the events of the command just applied. A failure is
// logged only: the command is already in the entry WAL, and replay
// rebuilds its events.
func (s *OrderService) flush() {
	if s.journal == nil {
		return
	}
	if err := s.journal.Flush(); err != nil {
		s.log.Error("journal flush failed", "err", err)
	}
}
