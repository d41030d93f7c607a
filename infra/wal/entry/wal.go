package entry

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

var (
	ErrClosed   = errors.New("entry wal: closed")
	ErrTooLarge = errors.New("entry wal: record too large")
)

type Config struct {
	Dir             string
	SegmentSize     int64
	SegmentDuration time.Duration
	// SyncEveryWrite fsyncs after each Append.
	SyncEveryWrite bool
}

// WAL is the append-only command journal. Records are framed as
// [type:1][seq:8][time:8][len:4][payload][crc:4] and spread over
// numbered segment files.
type WAL struct {
	mu         sync.Mutex
	cfg        Config
	current    *segment
	lastRotate time.Time
	buf        []byte
	closed     bool
}

func Open(cfg Config) (*WAL, error) {
	if cfg.SegmentSize <= 0 {
		cfg.SegmentSize = 64 << 20
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("entry wal: create dir: %w", err)
	}

	files, err := listSegments(cfg.Dir)
	if err != nil {
		return nil, err
	}
	index := 0
	if len(files) > 0 {
		if index, err = segmentIndex(files[len(files)-1]); err != nil {
			return nil, fmt.Errorf("entry wal: %w", err)
		}
	}

	seg, err := openSegment(cfg.Dir, index)
	if err != nil {
		return nil, fmt.Errorf("entry wal: open segment: %w", err)
	}

	return &WAL{
		cfg:        cfg,
		current:    seg,
		lastRotate: time.Now(),
		buf:        make([]byte, 0, 512),
	}, nil
}

func (w *WAL) Append(r *Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if len(r.Data) > MaxRecordSize {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, len(r.Data))
	}

	payloadLen := uint32(len(r.Data))
	buf := w.buf[:0]
	buf = append(buf, r.Type)
	buf = binary.BigEndian.AppendUint64(buf, r.Seq)
	buf = binary.BigEndian.AppendUint64(buf, uint64(r.Time))
	buf = binary.BigEndian.AppendUint32(buf, payloadLen)
	buf = append(buf, r.Data...)
	buf = binary.BigEndian.AppendUint32(buf, checksum(buf))
	w.buf = buf

	if err := w.current.append(buf); err != nil {
		return fmt.Errorf("entry wal: append seq %d: %w", r.Seq, err)
	}
	if w.cfg.SyncEveryWrite {
		if err := w.current.sync(); err != nil {
			return fmt.Errorf("entry wal: sync: %w", err)
		}
	}

	if w.shouldRotate() {
		return w.rotate()
	}
	return nil
}

func (w *WAL) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	return w.current.sync()
}

func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.current.sync(); err != nil {
		_ = w.current.close()
		return err
	}
	return w.current.close()
}

func (w *WAL) shouldRotate() bool {
	if w.current.offset >= w.cfg.SegmentSize {
		return true
	}
	return w.cfg.SegmentDuration > 0 && time.Since(w.lastRotate) >= w.cfg.SegmentDuration
}

func (w *WAL) rotate() error {
	if err := w.current.sync(); err != nil {
		return fmt.Errorf("entry wal: sync before rotate: %w", err)
	}
	_ = w.current.close()

	seg, err := openSegment(w.cfg.Dir, w.current.index+1)
	if err != nil {
		return fmt.Errorf("entry wal: rotate: %w", err)
	}

	w.current = seg
	w.lastRotate = time.Now()
	return nil
}

// TruncateBefore removes closed segments whose records are all at or
// below seq. The active segment is never removed.
func (w *WAL) TruncateBefore(seq uint64) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	files, err := listSegments(w.cfg.Dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, path := range files {
		idx, err := segmentIndex(path)
		if err != nil || idx == w.current.index {
			continue
		}
		maxSeq, err := maxSeqInSegment(path)
		if err != nil {
			continue
		}
		if maxSeq <= seq {
			if err := os.Remove(path); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
