package broadcaster

import (
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"ordercore/infra/kafka"
	exitwal "ordercore/infra/wal/exit"
)

// Outbox is the part of the exit WAL the broadcaster drives.
type Outbox interface {
	ScanByState(state exitwal.State, fn func(rec *exitwal.Record) error) error
	UpdateState(seq uint64, state exitwal.State, retries uint32) error
}

type Config struct {
	Interval   time.Duration
	MaxRetries uint32
	// PublishTimeout bounds a single publish.
	PublishTimeout time.Duration
}

// Broadcaster drains NEW outbox records to Kafka in sequence order.
// A record moves NEW -> SENT -> ACKED; after MaxRetries failed
// attempts it is parked as FAILED.
type Broadcaster struct {
	outbox    Outbox
	publisher kafka.Publisher
	cfg       Config
	log       *slog.Logger
	retries   map[uint64]uint32
}

func New(outbox Outbox, publisher kafka.Publisher, cfg Config, log *slog.Logger) *Broadcaster {
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	return &Broadcaster{
		outbox:    outbox,
		publisher: publisher,
		cfg:       cfg,
		log:       log.With("component", "broadcaster"),
		retries:   make(map[uint64]uint32),
	}
}

// Run drains the outbox every Interval until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("started", "interval", b.cfg.Interval)

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.Info("stopped")
			return
		case <-ticker.C:
			if _, err := b.DrainOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				b.log.Warn("drain failed", "err", err)
			}
		}
	}
}

var errBackoff = errors.New("publish failed")

// DrainOnce publishes pending records in order and stops at the first
// failure so downstream order is preserved. It returns the number of
// records acknowledged.
func (b *Broadcaster) DrainOnce(ctx context.Context) (int, error) {
	// SENT records were interrupted mid-publish; resend them first.
	acked := 0
	for _, state := range []exitwal.State{exitwal.StateSent, exitwal.StateNew} {
		err := b.outbox.ScanByState(state, func(rec *exitwal.Record) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := b.publish(ctx, rec); err != nil {
				return err
			}
			acked++
			return nil
		})
		if errors.Is(err, errBackoff) {
			return acked, nil
		}
		if err != nil {
			return acked, err
		}
	}
	return acked, nil
}

func (b *Broadcaster) publish(ctx context.Context, rec *exitwal.Record) error {
	if rec.State == exitwal.StateNew {
		if err := b.outbox.UpdateState(rec.Seq, exitwal.StateSent, rec.Retries); err != nil {
			return err
		}
	}

	var key [8]byte
	binary.BigEndian.PutUint64(key[:], rec.Seq)

	pctx, cancel := context.WithTimeout(ctx, b.cfg.PublishTimeout)
	err := b.publisher.Publish(pctx, key[:], rec.Payload)
	cancel()

	if err != nil {
		n := b.retries[rec.Seq] + 1
		b.retries[rec.Seq] = n
		if n >= b.cfg.MaxRetries {
			delete(b.retries, rec.Seq)
			b.log.Error("giving up on event", "seq", rec.Seq, "attempts", n, "err", err)
			if uerr := b.outbox.UpdateState(rec.Seq, exitwal.StateFailed, n); uerr != nil {
				return uerr
			}
			// Parked; move on to the next record.
			return nil
		}
		b.log.Warn("publish failed", "seq", rec.Seq, "attempt", n, "err", err)
		return errBackoff
	}

	delete(b.retries, rec.Seq)
	return b.outbox.UpdateState(rec.Seq, exitwal.StateAcked, 0)
}

func (b *Broadcaster) Close() error {
	return b.publisher.Close()
}
