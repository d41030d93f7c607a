package service

import (
	"errors"
	"fmt"

	"ordercore/domain/command"
	"ordercore/infra/codec"
	entrywal "ordercore/infra/wal/entry"
	"ordercore/snapshot"
)

// Replay rebuilds state from the snapshot in snapshotDir, if any, and
// every entry WAL record after it. It must run before the service takes
// traffic. Events re-emitted during replay carry the same journal
// sequence numbers as before, so the outbox keeps what it already has.
func (s *OrderService) Replay(snapshotDir, walDir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaying = true
	if s.metrics != nil {
		s.metrics.Mute(true)
	}
	defer func() {
		s.replaying = false
		if s.metrics != nil {
			s.metrics.Mute(false)
		}
	}()

	snap, err := snapshot.Load(snapshotDir)
	if err != nil {
		return err
	}
	var after uint64
	if snap != nil {
		s.restore(snap)
		after = snap.Seqs.WAL
	}
	restored := len(s.index.live)

	applied := 0
	last, err := entrywal.Replay(walDir, after, func(rec *entrywal.Record) error {
		if err := s.apply(rec); err != nil {
			return fmt.Errorf("replay seq %d: %w", rec.Seq, err)
		}
		applied++
		return nil
	})
	if err != nil {
		return err
	}
	s.walSeq.Observe(last)

	s.log.Info("replay complete",
		"snapshot_orders", restored,
		"records", applied,
		"last_seq", last,
		"resting", len(s.index.live),
	)
	return nil
}

func (s *OrderService) restore(snap *snapshot.Snapshot) {
	s.walSeq.Observe(snap.Seqs.WAL)
	s.eventSeq.Observe(snap.Seqs.Event)
	s.orderSeq.Observe(snap.Seqs.Order)
	s.execSeq.Observe(snap.Seqs.Execution)
	s.matchSeq.Observe(snap.Seqs.Match)

	for _, id := range snap.Terminated {
		s.index.remember(id)
	}

	for i := range snap.Orders {
		e := &snap.Orders[i]
		o := s.pool.Get()
		e.Apply(o)
		s.attach(o)
		s.book(e.Security).Rest(e.RestTime, o)
	}
}

// apply re-executes one journaled command. Outcomes that were
// reported to the caller the first time (rejects, unknown orders) are
// expected and skipped.
func (s *OrderService) apply(rec *entrywal.Record) error {
	var err error
	switch command.Type(rec.Type) {
	case command.TypePlace:
		var c command.Place
		if err = codec.DecodePlace(rec.Data, &c); err == nil {
			s.orderSeq.Observe(c.OrderID)
			_, err = s.place(&c)
		}
	case command.TypeCancel:
		var c command.Cancel
		if err = codec.DecodeCancel(rec.Data, &c); err == nil {
			_, err = s.cancel(&c)
		}
	case command.TypeReduce:
		var c command.Reduce
		if err = codec.DecodeReduce(rec.Data, &c); err == nil {
			_, err = s.reduce(&c)
		}
	case command.TypeExecute:
		var c command.Execute
		if err = codec.DecodeExecute(rec.Data, &c); err == nil {
			if c.ExecutionID > 0 {
				s.execSeq.Observe(uint64(c.ExecutionID))
			}
			if c.MatchID > 0 {
				s.matchSeq.Observe(uint64(c.MatchID))
			}
			_, err = s.execute(&c)
		}
	case command.TypePurge:
		var c command.Purge
		if err = codec.DecodePurge(rec.Data, &c); err == nil {
			s.purge(&c)
		}
	default:
		return fmt.Errorf("unknown command type %d", rec.Type)
	}

	if _, ok := IsReject(err); ok {
		return nil
	}
	if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrTerminated) {
		s.log.Warn("replayed command for missing order", "seq", rec.Seq, "err", err)
		return nil
	}
	return err
}
