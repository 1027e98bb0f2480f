package blob

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
)

// ErrObjectNotFound is returned when the path holds no object
var ErrObjectNotFound = goerr.New("blob object not found")

type memoryObject struct {
	contentType string
	data        []byte
}

// Memory keeps blobs in process memory. Intended for development and tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

var _ interfaces.BlobStore = &Memory{}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memoryObject)}
}

func (m *Memory) Put(ctx context.Context, path string, contentType string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return goerr.Wrap(err, "failed to read blob content", goerr.V("path", path))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = memoryObject{contentType: contentType, data: data}
	return nil
}

func (m *Memory) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[path]
	if !ok {
		return nil, goerr.Wrap(ErrObjectNotFound, "blob not found", goerr.V("path", path))
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[path]; !ok {
		return goerr.Wrap(ErrObjectNotFound, "blob not found", goerr.V("path", path))
	}
	delete(m.objects, path)
	return nil
}

// Len returns the number of stored objects
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
