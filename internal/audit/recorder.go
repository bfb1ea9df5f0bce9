package audit

import (
	"context"
	"log/slog"
	"sync"
)

// recorderBuffer is the queue depth before entries are dropped.
const recorderBuffer = 256

// Recorder writes entries asynchronously so audit never adds latency to, or
// fails, the request that produced it. Entries are written serially, which
// suits SQLite's single writer.
type Recorder struct {
	repo   Repository
	ch     chan *Entry
	logger *slog.Logger
	once   sync.Once
	done   chan struct{}
}

// NewRecorder creates a Recorder over repo. Call Run to start writing.
func NewRecorder(repo Repository, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		repo:   repo,
		ch:     make(chan *Entry, recorderBuffer),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Record enqueues entry. When the queue is full the entry is dropped and a
// warning is logged. Safe on a nil Recorder.
func (r *Recorder) Record(entry *Entry) {
	if r == nil {
		return
	}
	if entry.Source == "" {
		entry.Source = SourceAPI
	}

	select {
	case r.ch <- entry:
	default:
		r.logger.Warn("audit queue full, dropping entry",
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
		)
	}
}

// Run writes queued entries until ctx is cancelled, then drains what is
// left and returns. Only the first call does anything.
func (r *Recorder) Run(ctx context.Context) {
	r.once.Do(func() {
		defer close(r.done)
		for {
			select {
			case entry := <-r.ch:
				r.write(entry)
			case <-ctx.Done():
				for {
					select {
					case entry := <-r.ch:
						r.write(entry)
					default:
						return
					}
				}
			}
		}
	})
}

// Done is closed once Run has drained and returned.
func (r *Recorder) Done() <-chan struct{} {
	return r.done
}

func (r *Recorder) write(entry *Entry) {
	// The request context is gone by now; the write must still land.
	if err := r.repo.Create(context.Background(), entry); err != nil {
		r.logger.Error("audit write failed",
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"error", err,
		)
	}
}
