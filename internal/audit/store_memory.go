package audit

import (
	"context"
	"sync"
)

// MemoryStore keeps the audit trail in process memory. It favors clarity
// over performance and is the default when no database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryStore) ListByTarget(_ context.Context, targetType, targetID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, event := range s.events {
		if event.TargetType == targetType && event.TargetID == targetID {
			out = append(out, event)
		}
	}
	return out, nil
}

// All returns a copy of every recorded event, oldest first. Test helper.
func (s *MemoryStore) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event(nil), s.events...)
}
