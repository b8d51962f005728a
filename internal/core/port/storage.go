package port

import "context"

type LocalStorage interface {
	// PersistLocal writes an artifact to the given layout-relative path, replacing any previous content.
	PersistLocal(artifact []byte, path string) error
}

type Uploader interface {
	// Upload mirrors a locally persisted artifact to a bucket. Failures are logged and reported as false.
	Upload(ctx context.Context, path string, bucket string) bool
}
