package service

import (
	"context"
	"errors"
	"sync"
	"whalegen/internal/core/domain"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type MockDiscoverer struct {
	urls []string
	err  error
}

func (m *MockDiscoverer) Discover(_ context.Context) ([]string, error) {
	return m.urls, m.err
}

type MockFetcher struct {
	failures map[string]error
	bodies   map[string][]byte
	mutex    sync.Mutex
	calls    []string
}

func (m *MockFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	m.mutex.Lock()
	m.calls = append(m.calls, url)
	m.mutex.Unlock()

	if err, ok := m.failures[url]; ok {
		return nil, err
	}
	if body, ok := m.bodies[url]; ok {
		return body, nil
	}
	return pngBytes, nil
}

func (m *MockFetcher) Calls() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]string(nil), m.calls...)
}

// MockConverter tags the output with the source URL so tests can check the index to source mapping.
type MockConverter struct {
	failures map[string]error
}

func (m *MockConverter) Pixelate(_ context.Context, src domain.SourceImage) (domain.PixelatedImage, error) {
	if err, ok := m.failures[src.URL]; ok {
		return domain.PixelatedImage{}, err
	}
	return domain.PixelatedImage{
		Index:  src.Index,
		Data:   []byte("pixelated:" + src.URL),
		Format: src.Format,
		Width:  396,
		Height: 300,
	}, nil
}

type MockStorage struct {
	files    map[string][]byte
	failPath string
	mutex    sync.Mutex
}

func NewMockStorage() *MockStorage {
	return &MockStorage{files: make(map[string][]byte)}
}

func (m *MockStorage) PersistLocal(artifact []byte, path string) error {
	if path == m.failPath {
		return errors.New("disk full")
	}
	m.mutex.Lock()
	m.files[path] = artifact
	m.mutex.Unlock()
	return nil
}

func (m *MockStorage) Get(path string) ([]byte, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	f, ok := m.files[path]
	return f, ok
}

type upload struct {
	path   string
	bucket string
}

type MockUploader struct {
	failBuckets map[string]bool
	mutex       sync.Mutex
	uploads     []upload
}

func (m *MockUploader) Upload(_ context.Context, path string, bucket string) bool {
	m.mutex.Lock()
	m.uploads = append(m.uploads, upload{path: path, bucket: bucket})
	m.mutex.Unlock()
	return !m.failBuckets[bucket]
}

type MockSummarySender struct {
	summary *domain.BatchSummary
	err     error
	calls   int
}

func (m *MockSummarySender) SendSummary(_ context.Context, summary *domain.BatchSummary) error {
	m.calls++
	m.summary = summary
	return m.err
}
