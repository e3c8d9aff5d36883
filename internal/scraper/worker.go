package scraper

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// RecordSink receives each emitted record as one independent, self-describing
// item. No batching, no secondary index.
type RecordSink interface {
	AddRecord(ctx context.Context, record interface{}) error
}

const (
	batchSize            = 20
	maxConcurrentFetches = 5
	emptyPollInterval    = 2 * time.Second
)

// Worker pulls descriptor batches from the frontier and dispatches each to
// its handler. Records go straight to the sink; follow-up descriptors go back
// to the frontier. Errors send the descriptor through the frontier's retry
// policy.
type Worker struct {
	ID       string
	frontier RequestFrontier
	router   Router
	sink     RecordSink
	busy     *atomic.Int64
	records  *atomic.Int64
	failures *atomic.Int64
	stopChan chan struct{}
	logger   *log.Logger
}

func NewWorker(id string, frontier RequestFrontier, router Router, sink RecordSink, busy, records, failures *atomic.Int64, logger *log.Logger) *Worker {
	return &Worker{
		ID:       id,
		frontier: frontier,
		router:   router,
		sink:     sink,
		busy:     busy,
		records:  records,
		failures: failures,
		stopChan: make(chan struct{}),
		logger:   logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	w.logger.Printf("Worker %s: Starting", w.ID)

	sem := make(chan struct{}, maxConcurrentFetches)

	// busy is incremented before the pull, so a batch that was handed out but
	// not yet dispatched still counts. Follow-up pushes happen before a batch
	// decrements it, so two consecutive empty reads around a busy == 0
	// observation mean the run is truly drained.
	drained := false

	for {
		select {
		case <-ctx.Done():
			w.logger.Printf("Worker %s: Context cancelled, shutting down", w.ID)
			return
		case <-w.stopChan:
			w.logger.Printf("Worker %s: Stop signal received, shutting down", w.ID)
			return
		default:
		}

		w.busy.Add(1)
		batchItems, err := w.frontier.NextBatch(ctx, w.ID, batchSize)
		if err != nil {
			w.busy.Add(-1)
			if errors.Is(err, ErrFrontierEmpty) {
				if w.busy.Load() == 0 {
					if drained {
						w.logger.Printf("Worker %s: Frontier drained, finishing", w.ID)
						return
					}
					drained = true
					continue
				}
				drained = false
				select {
				case <-ctx.Done():
					return
				case <-w.stopChan:
					return
				case <-time.After(emptyPollInterval):
				}
				continue
			}
			w.logger.Printf("Worker %s: Error getting next requests: %v. Shutting down.", w.ID, err)
			return
		}

		drained = false
		var batchWg sync.WaitGroup
		for _, item := range batchItems {
			desc := item
			sem <- struct{}{}
			batchWg.Add(1)

			go func() {
				defer batchWg.Done()
				defer func() { <-sem }()
				w.process(ctx, desc)
			}()
		}
		batchWg.Wait()
		w.busy.Add(-1)
	}
}

func (w *Worker) process(ctx context.Context, desc *RequestDescriptor) {
	handler, ok := w.router[desc.Label]
	if !ok {
		w.logger.Printf("Worker %s: Unhandled request %s with label: %s", w.ID, desc.UniqueKey, desc.Label)
		if err := w.frontier.Done(ctx, desc, w.ID); err != nil {
			w.logger.Printf("Worker %s: CRITICAL - Failed to acknowledge %s: %v", w.ID, desc.UniqueKey, err)
		}
		return
	}

	result, err := handler(ctx, desc)
	if err != nil {
		w.logger.Printf("Worker %s: Failed to process %s: %v", w.ID, desc.UniqueKey, err)
		requeued, failErr := w.frontier.Fail(ctx, desc, w.ID, err.Error())
		if failErr != nil {
			w.logger.Printf("Worker %s: CRITICAL - Failed to report failure for %s: %v", w.ID, desc.UniqueKey, failErr)
			return
		}
		if !requeued {
			w.failures.Add(1)
			w.logger.Printf("Worker %s: Request %s failed %d times, giving up", w.ID, desc.UniqueKey, desc.Retries+1)
		}
		return
	}

	for _, record := range result.Records {
		if err := w.sink.AddRecord(ctx, record); err != nil {
			w.logger.Printf("Worker %s: Failed to store record from %s: %v", w.ID, desc.UniqueKey, err)
			continue
		}
		w.records.Add(1)
	}

	for _, next := range result.Next {
		added, err := w.frontier.Push(ctx, next)
		if err != nil {
			w.logger.Printf("Worker %s: Could not enqueue %s: %v", w.ID, next.UniqueKey, err)
			continue
		}
		if !added {
			w.logger.Printf("Worker %s: Skipping duplicate request %s", w.ID, next.UniqueKey)
		}
	}

	if err := w.frontier.Done(ctx, desc, w.ID); err != nil {
		w.logger.Printf("Worker %s: CRITICAL - Failed to report success for %s: %v", w.ID, desc.UniqueKey, err)
	}
}

func (w *Worker) Stop() {
	select {
	case <-w.stopChan:
	default:
		close(w.stopChan)
	}
}
