package service

import (
	"sync"
	"time"
	"whalegen/internal/core/domain"
)

// RunTracker records the state of every item of one batch run. It is safe for concurrent use.
type RunTracker struct {
	runID   string
	start   int
	items   []domain.ItemStatus
	started time.Time
	mutex   *sync.Mutex
}

func NewRunTracker(runID string, start int, urls []string) *RunTracker {
	items := make([]domain.ItemStatus, len(urls))
	for pos, url := range urls {
		items[pos] = domain.ItemStatus{Index: start + pos, URL: url, State: domain.Pending}
	}

	return &RunTracker{
		runID:   runID,
		start:   start,
		items:   items,
		started: time.Now(),
		mutex:   &sync.Mutex{},
	}
}

func (t *RunTracker) RunID() string {
	return t.runID
}

func (t *RunTracker) Advance(pos int, state domain.ItemState) {
	t.mutex.Lock()
	t.items[pos].State = state
	t.mutex.Unlock()
}

func (t *RunTracker) Fail(pos int, state domain.ItemState, err error) {
	t.mutex.Lock()
	t.items[pos].State = domain.Failed
	t.items[pos].FailedAt = state
	t.items[pos].Err = err
	t.mutex.Unlock()
}

func (t *RunTracker) Complete(pos int, imageUploaded, descriptorUploaded bool) {
	t.mutex.Lock()
	t.items[pos].State = domain.Done
	t.items[pos].ImageUploaded = imageUploaded
	t.items[pos].DescriptorUploaded = descriptorUploaded
	t.mutex.Unlock()
}

// NextIndex returns the sequence index a follow-up run should start from. Under Abort the index only advances past
// completed items, under Continue it advances past every attempted position.
func (t *RunTracker) NextIndex(policy domain.FailurePolicy) int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for _, item := range t.items {
		if item.State == domain.Pending {
			return item.Index
		}
		if policy == domain.Abort && item.State != domain.Done {
			return item.Index
		}
	}

	return t.start + len(t.items)
}

func (t *RunTracker) Summary(policy domain.FailurePolicy) *domain.BatchSummary {
	next := t.NextIndex(policy)

	t.mutex.Lock()
	defer t.mutex.Unlock()

	summary := &domain.BatchSummary{
		RunID:     t.runID,
		Start:     t.start,
		NextIndex: next,
		Items:     append([]domain.ItemStatus(nil), t.items...),
		Elapsed:   time.Since(t.started),
	}

	for _, item := range t.items {
		switch item.State {
		case domain.Done:
			summary.Succeeded++
			if item.UploadFailed() {
				summary.UploadFailures++
			}
		case domain.Failed:
			summary.Failed++
		case domain.Pending:
			summary.NotAttempted++
		}
	}

	return summary
}
