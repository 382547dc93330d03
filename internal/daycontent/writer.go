package daycontent

import (
	"context"
	"sync"

	apperrors "github.com/kimhsiao/daycanvas/internal/errors"
	"github.com/kimhsiao/daycanvas/internal/logging"
	"github.com/kimhsiao/daycanvas/internal/models"
)

// Writer persists day content in the background so interactions never wait
// on storage. Submitting a date that is already queued replaces the queued
// snapshot, so only the latest state of each date is written.
type Writer struct {
	repo    *Repository
	onError func(date string, err error)

	mu       sync.Mutex
	cond     *sync.Cond
	pending  map[string]models.DayContent
	order    []string
	inFlight string
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWriter starts a writer over repo. onError, if non-nil, is called after
// a failed write has been logged.
func NewWriter(repo *Repository, onError func(date string, err error)) *Writer {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Writer{
		repo:    repo,
		onError: onError,
		pending: make(map[string]models.DayContent),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

// Submit queues content for writing and returns immediately.
func (w *Writer) Submit(content models.DayContent) error {
	if err := models.ValidateDate(content.Date); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalid, "invalid date", err)
	}
	snapshot := content.Clone()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return apperrors.New(apperrors.ErrWriteFailed, "writer is closed")
	}
	if _, queued := w.pending[content.Date]; !queued {
		w.order = append(w.order, content.Date)
	}
	w.pending[content.Date] = snapshot
	w.cond.Broadcast()
	return nil
}

// Flush waits until every submitted snapshot has been written or ctx ends.
func (w *Writer) Flush(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.cond.Broadcast()
			w.mu.Unlock()
		case <-stop:
		}
	}()

	w.mu.Lock()
	defer w.mu.Unlock()
	for len(w.order) > 0 || w.inFlight != "" {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.cond.Wait()
	}
	return nil
}

// Close writes everything still queued and stops the writer.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()

	<-w.done
	w.cancel()
	return nil
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		w.mu.Lock()
		for len(w.order) == 0 && !w.closed {
			w.cond.Wait()
		}
		if len(w.order) == 0 {
			w.mu.Unlock()
			return
		}
		date := w.order[0]
		w.order = w.order[1:]
		content := w.pending[date]
		delete(w.pending, date)
		w.inFlight = date
		w.mu.Unlock()

		err := w.repo.SaveContent(w.ctx, content)
		if err != nil {
			logging.Error("Failed to save day content", err, map[string]interface{}{
				"date":    date,
				"objects": len(content.Objects),
				"strokes": len(content.Strokes),
			})
			if w.onError != nil {
				w.onError(date, err)
			}
		}

		w.mu.Lock()
		w.inFlight = ""
		w.cond.Broadcast()
		w.mu.Unlock()
	}
}
