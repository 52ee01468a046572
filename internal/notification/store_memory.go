package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	id "docket/pkg/domain"
	"docket/pkg/platform/sentinel"
)

// MemoryStore keeps notifications in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[id.NotificationID]*Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[id.NotificationID]*Notification)}
}

func (s *MemoryStore) Create(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.byID[n.ID] = &cp
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, notifID id.NotificationID) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.byID[notifID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (s *MemoryStore) ListByRecipient(_ context.Context, recipient id.ActorID) ([]*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Notification
	for _, n := range s.byID {
		if n.RecipientID == recipient {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) MarkRead(_ context.Context, notifID id.NotificationID, readAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[notifID]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.Read = true
	n.ReadAt = &readAt
	return nil
}

func (s *MemoryStore) SetPushState(_ context.Context, notifID id.NotificationID, state PushState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[notifID]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.PushState = state
	return nil
}
