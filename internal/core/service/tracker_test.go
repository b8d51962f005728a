package service

import (
	"errors"
	"sync"
	"testing"
	"whalegen/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestNewRunTracker(t *testing.T) {
	tracker := NewRunTracker("run", 4, []string{"a", "b"})

	assert.Equal(t, "run", tracker.RunID())
	assert.Equal(t, []domain.ItemStatus{
		{Index: 4, URL: "a", State: domain.Pending},
		{Index: 5, URL: "b", State: domain.Pending},
	}, tracker.items)
}

func TestTrackerNextIndex(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(tr *RunTracker)
		wantAbort    int
		wantContinue int
	}{
		{
			name:         "nothing attempted",
			setup:        func(_ *RunTracker) {},
			wantAbort:    0,
			wantContinue: 0,
		},
		{
			name: "all done",
			setup: func(tr *RunTracker) {
				for pos := range 3 {
					tr.Complete(pos, true, true)
				}
			},
			wantAbort:    3,
			wantContinue: 3,
		},
		{
			name: "failure in the middle",
			setup: func(tr *RunTracker) {
				tr.Complete(0, true, true)
				tr.Fail(1, domain.Fetching, errors.New("404"))
				tr.Complete(2, true, false)
			},
			wantAbort:    1,
			wantContinue: 3,
		},
		{
			name: "stopped after first",
			setup: func(tr *RunTracker) {
				tr.Complete(0, true, true)
			},
			wantAbort:    1,
			wantContinue: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tracker := NewRunTracker("run", 0, []string{"a", "b", "c"})
			tc.setup(tracker)

			assert.Equal(t, tc.wantAbort, tracker.NextIndex(domain.Abort))
			assert.Equal(t, tc.wantContinue, tracker.NextIndex(domain.Continue))
		})
	}
}

func TestTrackerSummary(t *testing.T) {
	tracker := NewRunTracker("run", 0, []string{"a", "b", "c", "d"})
	tracker.Complete(0, true, true)
	tracker.Fail(1, domain.Transforming, domain.ErrDecode)
	tracker.Complete(2, false, true)

	summary := tracker.Summary(domain.Continue)

	assert.Equal(t, "run", summary.RunID)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.NotAttempted)
	assert.Equal(t, 1, summary.UploadFailures)
	assert.Equal(t, 3, summary.NextIndex)
	assert.Equal(t, domain.Transforming, summary.Items[1].FailedAt)

	tracker.Advance(3, domain.Fetching)
	assert.Equal(t, domain.Pending, summary.Items[3].State)
}

func TestTrackerConcurrentUpdates(t *testing.T) {
	urls := make([]string, 100)
	tracker := NewRunTracker("run", 0, urls)

	var wg sync.WaitGroup
	for pos := range urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Advance(pos, domain.Fetching)
			tracker.Complete(pos, true, true)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, tracker.Summary(domain.Abort).Succeeded)
}
