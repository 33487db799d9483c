package gtfs

import "sync"

// FeedStore publishes the current StaticFeed snapshot for concurrent readers.
// Readers share the snapshot freely because it is never mutated after
// publication; a refresh swaps in a whole new snapshot under the write lock
type FeedStore struct {
	mu      sync.RWMutex
	current *StaticFeed
}

// NewFeedStore creates an empty FeedStore. Current returns nil until the
// first Swap publishes a snapshot
func NewFeedStore() *FeedStore {
	return &FeedStore{}
}

// Swap replaces the published snapshot wholesale
func (s *FeedStore) Swap(feed *StaticFeed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = feed
}

// Current retrieves the published snapshot
func (s *FeedStore) Current() *StaticFeed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
