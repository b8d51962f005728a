package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDiscovery            = errors.New("discovery failed")
	ErrFetch                = errors.New("fetch failed")
	ErrDecode               = errors.New("not a decodable image")
	ErrUnsupportedFormat    = fmt.Errorf("%w: unsupported format", ErrDecode)
	ErrTransform            = errors.New("invalid transform parameters")
	ErrUnsupportedBlockSize = fmt.Errorf("%w: unsupported block size", ErrTransform)
	ErrPersist              = errors.New("failed to persist artifact")
)

// ItemError ties a batch item failure to its index and the state it failed in.
type ItemError struct {
	Index int
	URL   string
	State ItemState
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d failed while %s: %v", e.Index, e.State, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
