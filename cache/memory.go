package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

const janitorInterval = 5 * time.Minute

type memoryEntry struct {
	key       string
	data      []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store bounded to a maximum entry count.
// Expired entries are dropped lazily on Get and swept by a background
// janitor; when the bound is exceeded the least recently used entry is
// evicted. A single mutex guards the map and the recency list because Get
// mutates recency.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	recency    *list.List // front is most recently used
	maxEntries int

	ticker *time.Ticker
	stopCh chan struct{}
	once   sync.Once

	now func() time.Time
}

// NewMemoryStore returns a running store bounded to maxEntries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries < 1 {
		maxEntries = 1
	}
	store := &MemoryStore{
		entries:    make(map[string]*list.Element),
		recency:    list.New(),
		maxEntries: maxEntries,
		ticker:     time.NewTicker(janitorInterval),
		stopCh:     make(chan struct{}),
		now:        time.Now,
	}

	go store.janitor()
	return store
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	element, exists := s.entries[key]
	if !exists {
		return nil, false
	}

	entry := element.Value.(*memoryEntry)
	if s.now().After(entry.expiresAt) {
		s.removeLocked(element)
		return nil, false
	}

	s.recency.MoveToFront(element)
	return entry.data, true
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if value == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(ttl)
	if element, exists := s.entries[key]; exists {
		entry := element.Value.(*memoryEntry)
		entry.data = value
		entry.expiresAt = expiresAt
		s.recency.MoveToFront(element)
		return nil
	}

	element := s.recency.PushFront(&memoryEntry{key: key, data: value, expiresAt: expiresAt})
	s.entries[key] = element

	for len(s.entries) > s.maxEntries {
		oldest := s.recency.Back()
		if oldest == nil {
			break
		}
		s.removeLocked(oldest)
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if element, exists := s.entries[key]; exists {
		s.removeLocked(element)
	}
	return nil
}

func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, element := range s.entries {
		if strings.HasPrefix(key, prefix) {
			s.removeLocked(element)
		}
	}
	return nil
}

// Close stops the janitor. The store stays usable afterwards; only the
// background sweep ends.
func (s *MemoryStore) Close() error {
	s.once.Do(func() {
		close(s.stopCh)
	})
	return nil
}

// Len reports the live entry count, counting entries that expired but have
// not been swept yet.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// removeLocked unlinks an entry from both structures. Callers must hold mu.
func (s *MemoryStore) removeLocked(element *list.Element) {
	entry := element.Value.(*memoryEntry)
	s.recency.Remove(element)
	delete(s.entries, entry.key)
}

func (s *MemoryStore) janitor() {
	for {
		select {
		case <-s.ticker.C:
			s.removeExpiredEntries()
		case <-s.stopCh:
			s.ticker.Stop()
			return
		}
	}
}

func (s *MemoryStore) removeExpiredEntries() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, element := range s.entries {
		if now.After(element.Value.(*memoryEntry).expiresAt) {
			s.removeLocked(element)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
