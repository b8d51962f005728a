package domain

import "time"

// SourceImage holds the raw bytes of one discovered image for the duration of a batch item.
type SourceImage struct {
	Index  int
	URL    string
	Data   []byte
	Format Format
}

// PixelatedImage is the encoded result of the pixelation transform.
type PixelatedImage struct {
	Index  int
	Data   []byte
	Format Format
	Width  int
	Height int
}

type ItemState string

const (
	Pending      ItemState = "pending"
	Fetching     ItemState = "fetching"
	Transforming ItemState = "transforming"
	Synthesizing ItemState = "synthesizing"
	Persisting   ItemState = "persisting"
	Uploading    ItemState = "uploading"
	Done         ItemState = "done"
	Failed       ItemState = "failed"
)

type ItemStatus struct {
	Index              int
	URL                string
	State              ItemState
	FailedAt           ItemState
	Err                error
	ImageUploaded      bool
	DescriptorUploaded bool
}

// UploadFailed reports whether a completed item could not be mirrored to both buckets.
func (s ItemStatus) UploadFailed() bool {
	return s.State == Done && (!s.ImageUploaded || !s.DescriptorUploaded)
}

type BatchSummary struct {
	RunID          string
	Start          int
	NextIndex      int
	Items          []ItemStatus
	Succeeded      int
	Failed         int
	NotAttempted   int
	UploadFailures int
	Elapsed        time.Duration
}

type FailurePolicy string

const (
	// Abort stops the batch on the first item failure.
	Abort FailurePolicy = "abort"
	// Continue records the failure and moves on to the next item.
	Continue FailurePolicy = "continue"
)
