package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidshard/tallyman/pkg/adapter"
	"github.com/voidshard/tallyman/pkg/crypto"
	"github.com/voidshard/tallyman/pkg/domain"
	"github.com/voidshard/tallyman/pkg/export"
	"github.com/voidshard/tallyman/pkg/pipeline"
)

func testWatcher(t *testing.T, signKey string) *watcher {
	exp, err := export.For("tally-xml")
	require.NoError(t, err)
	return &watcher{
		proc:     pipeline.New(nil, adapter.Options{}),
		exporter: exp,
		signKey:  signKey,
		inbox:    t.TempDir(),
		outbox:   t.TempDir(),
		seen:     map[string]bool{},
	}
}

func TestWatcherScan(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"
	w := testWatcher(t, key)

	require.NoError(t, os.WriteFile(filepath.Join(w.inbox, "sbi.csv"), []byte(sbiCSV), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(w.inbox, "bad.csv"), []byte("A,B\n1,2\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(w.inbox, ".hidden.csv"), []byte(sbiCSV), 0600))
	require.NoError(t, os.Mkdir(filepath.Join(w.inbox, "archive"), 0755))

	n, err := w.scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	result, err := os.ReadFile(filepath.Join(w.outbox, "sbi.json"))
	require.NoError(t, err)
	assert.Contains(t, string(result), `"status": "success"`)

	doc, err := os.ReadFile(filepath.Join(w.outbox, "sbi.xml"))
	require.NoError(t, err)
	sig, err := os.ReadFile(filepath.Join(w.outbox, "sbi.xml.sig"))
	require.NoError(t, err)
	ok, err := crypto.Verify(doc, string(sig), key)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = os.Stat(filepath.Join(w.outbox, "bad.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(w.outbox, "bad.xml"))
	assert.True(t, os.IsNotExist(err))

	// nothing new
	n, err = w.scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// same name, new content
	require.NoError(t, os.WriteFile(filepath.Join(w.inbox, "bad.csv"), []byte(sbiCSV), 0600))
	n, err = w.scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = os.Stat(filepath.Join(w.outbox, "bad.xml"))
	assert.NoError(t, err)
}

func TestWatcherMissingInbox(t *testing.T) {
	w := testWatcher(t, "")
	w.inbox = filepath.Join(w.inbox, "nope")

	_, err := w.scan(context.Background())
	assert.Error(t, err)
}

type flakySink struct {
	failures  int
	calls     int
	delivered []*domain.Statement
}

func (f *flakySink) Write(ctx context.Context, stmts []*domain.Statement) error {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errors.New("es down")
	}
	f.delivered = append(f.delivered, stmts...)
	return nil
}

func TestWatcherRetriesAfterSinkFailure(t *testing.T) {
	sink := &flakySink{failures: 1}
	w := testWatcher(t, "")
	w.sink = sink

	require.NoError(t, os.WriteFile(filepath.Join(w.inbox, "sbi.csv"), []byte(sbiCSV), 0600))

	n, err := w.scan(context.Background())
	assert.ErrorContains(t, err, "es down")
	assert.Equal(t, 0, n)
	assert.Empty(t, sink.delivered)

	n, err = w.scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, sink.calls)
	require.Len(t, sink.delivered, 1)
	assert.Equal(t, "sbi.csv", sink.delivered[0].File)

	n, err = w.scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 2, sink.calls)
}

func TestWatcherFlushesBeforeDeliveryError(t *testing.T) {
	sink := &flakySink{}
	w := testWatcher(t, "")
	w.sink = sink

	for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(w.inbox, name), []byte(sbiCSV), 0600))
	}
	// b.json cannot be written while a directory sits in its place
	blocked := filepath.Join(w.outbox, "b.json")
	require.NoError(t, os.Mkdir(blocked, 0755))

	n, err := w.scan(context.Background())
	assert.ErrorContains(t, err, "b.csv")
	assert.Equal(t, 1, n)
	require.Len(t, sink.delivered, 1)
	assert.Equal(t, "a.csv", sink.delivered[0].File)

	require.NoError(t, os.Remove(blocked))

	n, err = w.scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, sink.delivered, 3)
	assert.Equal(t, "b.csv", sink.delivered[1].File)
	assert.Equal(t, "c.csv", sink.delivered[2].File)
}
