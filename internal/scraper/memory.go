package scraper

import (
	"context"
	"sync"
)

// memoryFrontier is an in-process frontier with the same contract as the
// redis one. It backs single-process runs without a redis instance and the
// frontier-dependent tests.
type memoryFrontier struct {
	mu         sync.Mutex
	seen       map[string]bool
	pending    []*RequestDescriptor
	processing map[string][]*RequestDescriptor
	failed     []failedRequest
	handled    int64
}

type failedRequest struct {
	Descriptor *RequestDescriptor
	Reason     string
}

func NewMemoryFrontier() RequestFrontier {
	return &memoryFrontier{
		seen:       make(map[string]bool),
		processing: make(map[string][]*RequestDescriptor),
	}
}

func (f *memoryFrontier) Push(ctx context.Context, desc *RequestDescriptor) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[desc.UniqueKey] {
		return false, nil
	}
	f.seen[desc.UniqueKey] = true
	f.pending = append(f.pending, desc)
	return true, nil
}

func (f *memoryFrontier) NextBatch(ctx context.Context, workerID string, count int) ([]*RequestDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inFlight := f.processing[workerID]; len(inFlight) > 0 {
		batch := make([]*RequestDescriptor, len(inFlight))
		copy(batch, inFlight)
		return batch, nil
	}
	if len(f.pending) == 0 {
		return nil, ErrFrontierEmpty
	}
	if count > len(f.pending) {
		count = len(f.pending)
	}
	batch := f.pending[:count]
	f.pending = f.pending[count:]
	f.processing[workerID] = append(f.processing[workerID], batch...)
	return batch, nil
}

func (f *memoryFrontier) Done(ctx context.Context, desc *RequestDescriptor, workerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeProcessing(desc, workerID)
	f.handled++
	return nil
}

func (f *memoryFrontier) Fail(ctx context.Context, desc *RequestDescriptor, workerID, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeProcessing(desc, workerID)
	if desc.Retries < maxRequestRetries {
		retry := *desc
		retry.Retries++
		f.pending = append(f.pending, &retry)
		return true, nil
	}
	f.failed = append(f.failed, failedRequest{Descriptor: desc, Reason: reason})
	return false, nil
}

func (f *memoryFrontier) removeProcessing(desc *RequestDescriptor, workerID string) {
	inFlight := f.processing[workerID]
	for i, d := range inFlight {
		if d.UniqueKey == desc.UniqueKey && d.Retries == desc.Retries {
			f.processing[workerID] = append(inFlight[:i], inFlight[i+1:]...)
			return
		}
	}
}

func (f *memoryFrontier) Stats(ctx context.Context) (FrontierStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FrontierStats{
		Total:   int64(len(f.seen)),
		Handled: f.handled,
		Pending: int64(len(f.pending)),
		Failed:  int64(len(f.failed)),
	}, nil
}

func (f *memoryFrontier) Close() error {
	return nil
}
