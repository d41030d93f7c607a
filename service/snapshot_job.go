package service

import (
	"context"
	"time"

	"ordercore/snapshot"
)

// WriteSnapshot captures every resting order and the sequence
// positions, writes them through w and then drops the entry WAL
// segments and acknowledged outbox records the snapshot covers.
func (s *OrderService) WriteSnapshot(w *snapshot.Writer) (snapshot.Seqs, error) {
	s.mu.Lock()
	seqs := snapshot.Seqs{
		WAL:       s.walSeq.Current(),
		Event:     s.eventSeq.Current(),
		Order:     s.orderSeq.Current(),
		Execution: s.execSeq.Current(),
		Match:     s.matchSeq.Current(),
	}
	snap := snapshot.Capture(seqs, time.Now(), s.sortedBooks()...)
	snap.Terminated = s.index.recentIDs()
	s.mu.Unlock()

	if s.wal != nil {
		if err := s.wal.Sync(); err != nil {
			return seqs, err
		}
	}
	if err := w.Write(snap); err != nil {
		return seqs, err
	}

	if s.wal != nil {
		n, err := s.wal.TruncateBefore(seqs.WAL)
		if err != nil {
			return seqs, err
		}
		s.log.Debug("entry wal truncated", "segments", n, "seq", seqs.WAL)
	}
	if s.outbox != nil {
		n, err := s.outbox.TruncateAckedUpTo(seqs.Event)
		if err != nil {
			return seqs, err
		}
		s.log.Debug("outbox truncated", "records", n, "seq", seqs.Event)
	}
	return seqs, nil
}

// RunSnapshotJob writes a snapshot to dir every interval and returns
// once ctx is done. A snapshot in progress completes first.
func (s *OrderService) RunSnapshotJob(ctx context.Context, dir string, interval time.Duration) {
	w := &snapshot.Writer{Dir: dir}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			seqs, err := s.WriteSnapshot(w)
			if err != nil {
				s.log.Error("snapshot failed", "err", err)
				continue
			}
			s.log.Info("snapshot written", "wal_seq", seqs.WAL, "event_seq", seqs.Event)
		}
	}
}

// RunEpochJob reclaims retired orders every interval until ctx is done.
func (s *OrderService) RunEpochJob(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.AdvanceEpoch(); n > 0 {
				s.log.Debug("orders reclaimed", "count", n)
			}
		}
	}
}
