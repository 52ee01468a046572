package evidence

import (
	"context"
	"sort"
	"sync"

	id "docket/pkg/domain"
	"docket/pkg/platform/sentinel"
)

// MemoryStore keeps evidence records in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[id.EvidenceID]*Evidence
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[id.EvidenceID]*Evidence)}
}

func (s *MemoryStore) Create(_ context.Context, e *Evidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[e.ID]; exists {
		return sentinel.ErrConflict
	}
	s.byID[e.ID] = e.Clone()
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, evidenceID id.EvidenceID) (*Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[evidenceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return e.Clone(), nil
}

func (s *MemoryStore) ListByCase(_ context.Context, caseID id.CaseID) ([]*Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Evidence
	for _, e := range s.byID {
		if e.CaseID == caseID {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Update replaces mutable fields. The anchor, case binding, and uploader are
// owned by Create and kept from the stored copy.
func (s *MemoryStore) Update(_ context.Context, e *Evidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[e.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	updated := e.Clone()
	updated.CaseID = current.CaseID
	updated.Anchor = current.Anchor
	updated.UploaderID = current.UploaderID
	updated.CreatedAt = current.CreatedAt
	s.byID[e.ID] = updated
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, evidenceID id.EvidenceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[evidenceID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, evidenceID)
	return nil
}
