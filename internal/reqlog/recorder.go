package reqlog

import (
	"context"
	"sync"
	"time"

	"github.com/classense/attention-core/internal/infrastructure/logging"
)

const (
	recorderBuffer = 256
	writeTimeout   = 5 * time.Second
)

// Recorder drains request log entries to the repository on a background
// goroutine so request handling never waits on the store. When the buffer is
// full entries are dropped, not blocked on.
type Recorder struct {
	repo    Repository
	logger  *logging.Logger
	entries chan Entry
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewRecorder starts the drain goroutine.
func NewRecorder(repo Repository, logger *logging.Logger) *Recorder {
	r := &Recorder{
		repo:    repo,
		logger:  logger.With("component", "reqlog"),
		entries: make(chan Entry, recorderBuffer),
		done:    make(chan struct{}),
	}
	r.wg.Add(1)
	go r.drain()
	return r
}

// Record queues one entry. Never blocks; a saturated buffer drops the entry
// with a warning.
func (r *Recorder) Record(entry Entry) {
	select {
	case r.entries <- entry:
	default:
		r.logger.Warn("request log buffer full, dropping entry", "detail", entry.Detail)
	}
}

func (r *Recorder) drain() {
	defer r.wg.Done()
	for {
		select {
		case entry := <-r.entries:
			r.write(entry)
		case <-r.done:
			// Flush whatever is still queued before exiting.
			for {
				select {
				case entry := <-r.entries:
					r.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(entry Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.repo.Create(ctx, &entry); err != nil {
		r.logger.Error("writing request log entry", "error", err)
	}
}

// Close stops the drain goroutine after flushing queued entries.
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
}
