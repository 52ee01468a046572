package defense

import (
	"context"
	"sort"
	"sync"

	id "docket/pkg/domain"
	"docket/pkg/platform/sentinel"
)

// MemoryStore keeps defense materials in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[id.DefenseMaterialID]*Material
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[id.DefenseMaterialID]*Material)}
}

func (s *MemoryStore) Create(_ context.Context, m *Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[m.ID]; exists {
		return sentinel.ErrConflict
	}
	s.byID[m.ID] = m.Clone()
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, materialID id.DefenseMaterialID) (*Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[materialID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return m.Clone(), nil
}

func (s *MemoryStore) ListByCase(_ context.Context, caseID id.CaseID) ([]*Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Material
	for _, m := range s.byID {
		if m.CaseID == caseID {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Update replaces mutable fields. The case binding, anchor, fingerprint, and
// submitter are owned by Create and kept from the stored copy.
func (s *MemoryStore) Update(_ context.Context, m *Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[m.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	updated := m.Clone()
	updated.CaseID = current.CaseID
	updated.Fingerprint = current.Fingerprint
	updated.Anchor = current.Anchor
	updated.SubmitterID = current.SubmitterID
	updated.CreatedAt = current.CreatedAt
	s.byID[m.ID] = updated
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, materialID id.DefenseMaterialID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[materialID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, materialID)
	return nil
}
