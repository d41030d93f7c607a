package broadcaster

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	exitwal "ordercore/infra/wal/exit"
)

type fakePublisher struct {
	sent   [][]byte
	failOn map[string]int
}

func (f *fakePublisher) Publish(_ context.Context, _, value []byte) error {
	if f.failOn[string(value)] > 0 {
		f.failOn[string(value)]--
		return errors.New("broker down")
	}
	f.sent = append(f.sent, append([]byte(nil), value...))
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func newOutbox(t *testing.T, payloads ...string) *exitwal.ExitWAL {
	t.Helper()
	w, err := exitwal.Open(t.TempDir(), exitwal.Options{NoSync: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	for i, p := range payloads {
		require.NoError(t, w.PutNew(uint64(i+1), []byte(p)))
	}
	return w
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func states(t *testing.T, w *exitwal.ExitWAL, n int) []exitwal.State {
	t.Helper()
	out := make([]exitwal.State, 0, n)
	for seq := 1; seq <= n; seq++ {
		rec, err := w.Get(uint64(seq))
		require.NoError(t, err)
		out = append(out, rec.State)
	}
	return out
}

func TestDrainPublishesInOrder(t *testing.T) {
	w := newOutbox(t, "a", "b", "c")
	pub := &fakePublisher{}
	b := New(w, pub, Config{}, quiet())

	n, err := b.DrainOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, pub.sent)
	assert.Equal(t, []exitwal.State{exitwal.StateAcked, exitwal.StateAcked, exitwal.StateAcked}, states(t, w, 3))

	n, err = b.DrainOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDrainStopsAtFailureAndResumes(t *testing.T) {
	w := newOutbox(t, "a", "b", "c")
	pub := &fakePublisher{failOn: map[string]int{"b": 1}}
	b := New(w, pub, Config{MaxRetries: 3}, quiet())

	n, err := b.DrainOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []exitwal.State{exitwal.StateAcked, exitwal.StateSent, exitwal.StateNew}, states(t, w, 3))

	n, err = b.DrainOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, pub.sent)
}

func TestDrainParksPoisonRecord(t *testing.T) {
	w := newOutbox(t, "a", "bad", "c")
	pub := &fakePublisher{failOn: map[string]int{"bad": 100}}
	b := New(w, pub, Config{MaxRetries: 2}, quiet())

	_, err := b.DrainOnce(context.Background())
	require.NoError(t, err)
	_, err = b.DrainOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []exitwal.State{exitwal.StateAcked, exitwal.StateFailed, exitwal.StateAcked}, states(t, w, 3))
	rec, err := w.Get(2)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), rec.Retries)
}

func TestDrainHonoursCanceledContext(t *testing.T) {
	w := newOutbox(t, "a")
	b := New(w, &fakePublisher{}, Config{}, quiet())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.DrainOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
