package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchCoalescesWriteBurst(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := Watch(ctx, WatchConfig{Root: dir, Debounce: 20 * time.Millisecond}, nil)
	require.NoError(t, err)

	const n = 40
	want := map[string]struct{}{}
	for i := 0; i < n; i++ {
		p := filepath.Join(dir, fmt.Sprintf("receipt-%02d.jpg", i))
		write(t, p, "burst")
		want[p] = struct{}{}
	}

	got := map[string]struct{}{}
	deadline := time.After(5 * time.Second)
	for len(got) < n {
		select {
		case p, ok := <-events:
			require.True(t, ok, "event channel closed early")
			got[p] = struct{}{}
		case <-deadline:
			t.Fatalf("received %d of %d paths before timeout", len(got), n)
		}
	}
	assert.Equal(t, want, got)

	cancel()
	deadline = time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event channel not closed after cancel")
		}
	}
}

func TestWatchInitialScan(t *testing.T) {
	dir := t.TempDir()
	pre := filepath.Join(dir, "existing.pdf")
	write(t, pre, "already-there")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := Watch(ctx, WatchConfig{Root: dir, InitialScan: true}, nil)
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, pre, p)
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan emitted nothing")
	}
}

func TestWatchMissingRoot(t *testing.T) {
	_, _, err := Watch(context.Background(), WatchConfig{}, nil)
	assert.Error(t, err)
}
