package exit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// -------------------- State --------------------

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrNotFound       = errors.New("exit wal: record not found")
	errRecordTooShort = errors.New("exit wal: record too short")
)

// -------------------- Record --------------------

// Record is one outbound event awaiting delivery.
type Record struct {
	Seq         uint64
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

const recordHeader = 1 + 4 + 8

// binary encoding: [state:1][retries:4][lastAttempt:8][payload]
func encodeRecord(r *Record) []byte {
	buf := make([]byte, recordHeader, recordHeader+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	return append(buf, r.Payload...)
}

func decodeRecord(seq uint64, b []byte) (*Record, error) {
	if len(b) < recordHeader {
		return nil, errRecordTooShort
	}
	payload := make([]byte, len(b)-recordHeader)
	copy(payload, b[recordHeader:])
	return &Record{
		Seq:         seq,
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     payload,
	}, nil
}

// -------------------- WAL --------------------

// ExitWAL is the durable outbox between the engine and the broadcaster.
type ExitWAL struct {
	db   *pebble.DB
	sync *pebble.WriteOptions
}

type Options struct {
	// NoSync trades durability of the latest records for latency.
	NoSync bool
}

func Open(dir string, opts Options) (*ExitWAL, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("exit wal: open %s: %w", dir, err)
	}
	wo := pebble.Sync
	if opts.NoSync {
		wo = pebble.NoSync
	}
	return &ExitWAL{db: db, sync: wo}, nil
}

func (w *ExitWAL) Close() error {
	return w.db.Close()
}

// -------------------- API --------------------

// PutNew stores payload under seq in state NEW.
func (w *ExitWAL) PutNew(seq uint64, payload []byte) error {
	rec := Record{State: StateNew, Payload: payload}
	return w.db.Set(keyFor(seq), encodeRecord(&rec), w.sync)
}

// Entry is one record for PutNewBatch.
type Entry struct {
	Seq     uint64
	Payload []byte
}

// PutNewBatch stores entries in state NEW in one atomic write. A seq
// that is already present keeps its record, so re-journaling events
// during replay does not resend them.
func (w *ExitWAL) PutNewBatch(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := w.db.NewBatch()
	defer batch.Close()

	for i := range entries {
		exists, err := w.has(entries[i].Seq)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		rec := Record{State: StateNew, Payload: entries[i].Payload}
		if err := batch.Set(keyFor(entries[i].Seq), encodeRecord(&rec), nil); err != nil {
			return err
		}
	}
	return batch.Commit(w.sync)
}

// UpdateState moves a record to state and bumps its attempt time.
func (w *ExitWAL) UpdateState(seq uint64, state State, retries uint32) error {
	rec, err := w.Get(seq)
	if err != nil {
		return err
	}
	rec.State = state
	rec.Retries = retries
	rec.LastAttempt = time.Now().UnixNano()
	return w.db.Set(keyFor(seq), encodeRecord(rec), w.sync)
}

func (w *ExitWAL) has(seq uint64) (bool, error) {
	_, closer, err := w.db.Get(keyFor(seq))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, closer.Close()
}

func (w *ExitWAL) Get(seq uint64) (*Record, error) {
	val, closer, err := w.db.Get(keyFor(seq))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	return decodeRecord(seq, val)
}

// -------------------- Scan --------------------

// ScanByState visits records in state in sequence order. Returning an
// error from fn stops the scan.
func (w *ExitWAL) ScanByState(state State, fn func(rec *Record) error) error {
	iter, err := w.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyUpper),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		val := iter.Value()
		if len(val) == 0 || State(val[0]) != state {
			continue
		}

		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeRecord(seq, val)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// TruncateAckedUpTo deletes ACKED records with seq <= upTo.
func (w *ExitWAL) TruncateAckedUpTo(upTo uint64) (int, error) {
	batch := w.db.NewBatch()
	defer batch.Close()

	n := 0
	err := w.ScanByState(StateAcked, func(rec *Record) error {
		if rec.Seq > upTo {
			return errStopScan
		}
		n++
		return batch.Delete(keyFor(rec.Seq), nil)
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	return n, batch.Commit(w.sync)
}

var errStopScan = errors.New("stop scan")

// -------------------- Helpers --------------------

const (
	keyPrefix = "event/"
	keyUpper  = "event0" // '0' sorts right after '/'
)

func keyFor(seq uint64) []byte {
	key := make([]byte, len(keyPrefix)+8)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[len(keyPrefix):], seq)
	return key
}

func parseKey(b []byte) (uint64, error) {
	if len(b) != len(keyPrefix)+8 {
		return 0, fmt.Errorf("exit wal: bad key %q", b)
	}
	return binary.BigEndian.Uint64(b[len(keyPrefix):]), nil
}
