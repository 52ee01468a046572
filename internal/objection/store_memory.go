package objection

import (
	"context"
	"sort"
	"sync"

	id "docket/pkg/domain"
	"docket/pkg/platform/sentinel"
)

// MemoryStore keeps objections in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[id.ObjectionID]*Objection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[id.ObjectionID]*Objection)}
}

func (s *MemoryStore) Create(_ context.Context, o *Objection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[o.ID]; exists {
		return sentinel.ErrConflict
	}
	s.byID[o.ID] = o.Clone()
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, objectionID id.ObjectionID) (*Objection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byID[objectionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return o.Clone(), nil
}

func (s *MemoryStore) ListByCase(_ context.Context, caseID id.CaseID) ([]*Objection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Objection
	for _, o := range s.byID {
		if o.CaseID == caseID {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Update replaces mutable fields. The case binding, evidence reference, and
// submitter are owned by Create and kept from the stored copy.
func (s *MemoryStore) Update(_ context.Context, o *Objection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[o.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	updated := o.Clone()
	updated.CaseID = current.CaseID
	updated.EvidenceID = current.EvidenceID
	updated.SubmitterID = current.SubmitterID
	updated.CreatedAt = current.CreatedAt
	s.byID[o.ID] = updated
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, objectionID id.ObjectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[objectionID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, objectionID)
	return nil
}
