package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/ipfs"
)

// MemoryBackend keeps content in process memory. It is used for the local
// network and in tests, and serves stored content over HTTP like a gateway.
type MemoryBackend struct {
	mu     sync.RWMutex
	blocks map[CID][]byte
	pins   map[CID]string
}

var _ ipfs.IPFSClient = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		blocks: make(map[CID][]byte),
		pins:   make(map[CID]string),
	}
}

func (m *MemoryBackend) Add(ctx context.Context, reader io.Reader, name string) (*ipfs.AddResponse, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read data")
	}
	id, err := ComputeCID(data)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.blocks[id] = data
	m.pins[id] = name
	m.mu.Unlock()

	return &ipfs.AddResponse{Name: name, Cid: string(id), Size: int64(len(data))}, nil
}

func (m *MemoryBackend) Pin(ctx context.Context, cid string, name string) (*ipfs.PinResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blocks[CID(cid)]; !ok {
		return nil, errors.NewNotFoundError("content", cid)
	}
	m.pins[CID(cid)] = name
	return &ipfs.PinResponse{Cid: cid, Name: name}, nil
}

func (m *MemoryBackend) PinStatus(ctx context.Context, cid string) (*ipfs.PinStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.pins[CID(cid)]
	if !ok {
		return &ipfs.PinStatus{Cid: cid, Status: ipfs.StatusUnpinned}, nil
	}
	return &ipfs.PinStatus{Cid: cid, Name: name, Status: ipfs.StatusPinned, Size: int64(len(m.blocks[CID(cid)]))}, nil
}

func (m *MemoryBackend) Unpin(ctx context.Context, cid string) error {
	m.mu.Lock()
	delete(m.pins, CID(cid))
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Health(ctx context.Context) error { return nil }

func (m *MemoryBackend) Close(ctx context.Context) error { return nil }

// Get returns the stored bytes for id.
func (m *MemoryBackend) Get(id CID) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blocks[id]
	return data, ok
}

// Len returns the number of distinct payloads stored.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blocks)
}

// ServeHTTP answers GET and HEAD for /<cid> like a path gateway.
func (m *MemoryBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/")
	id = strings.TrimPrefix(id, "ipfs/")

	data, ok := m.Get(CID(id))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Etag", strconv.Quote(id))
	if r.Method == http.MethodHead {
		return
	}
	io.Copy(w, bytes.NewReader(data))
}
