package reqlog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/classense/attention-core/internal/infrastructure/config"
	"github.com/classense/attention-core/internal/infrastructure/logging"
	"github.com/classense/attention-core/internal/store"
)

// fakeLogRepo collects written entries.
type fakeLogRepo struct {
	mu      sync.Mutex
	entries []Entry
}

func (f *fakeLogRepo) List(_ context.Context, _ *store.ListQuery) (*store.Page[Entry], error) {
	return store.NewPage[Entry](nil, 0, 5, 1), nil
}

func (f *fakeLogRepo) Create(_ context.Context, entry *Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeLogRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text"}, "test")
}

func TestRecorderWritesEntries(t *testing.T) {
	repo := &fakeLogRepo{}
	rec := NewRecorder(repo, testLogger())

	rec.Record(Entry{Detail: "GET /v1/readings 200"})
	rec.Record(Entry{Detail: "POST /v1/tags 202"})

	deadline := time.Now().Add(2 * time.Second)
	for repo.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	rec.Close()

	if repo.count() != 2 {
		t.Fatalf("repo has %d entries, want 2", repo.count())
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.entries[0].Detail != "GET /v1/readings 200" {
		t.Errorf("first entry = %q", repo.entries[0].Detail)
	}
}

func TestRecorderCloseFlushesQueue(t *testing.T) {
	repo := &fakeLogRepo{}
	rec := NewRecorder(repo, testLogger())

	for i := 0; i < 20; i++ {
		rec.Record(Entry{Detail: "entry"})
	}
	rec.Close()

	if repo.count() != 20 {
		t.Errorf("repo has %d entries after Close(), want 20", repo.count())
	}
}

func TestRecorderCloseIsIdempotent(t *testing.T) {
	rec := NewRecorder(&fakeLogRepo{}, testLogger())
	rec.Close()
	rec.Close()
}
