package correction

import (
	"context"
	"sort"
	"sync"

	id "docket/pkg/domain"
	"docket/pkg/platform/sentinel"
)

// MemoryStore keeps corrections in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[id.CorrectionID]*Correction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[id.CorrectionID]*Correction)}
}

func (s *MemoryStore) Create(_ context.Context, c *Correction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[c.ID]; exists {
		return sentinel.ErrConflict
	}
	s.byID[c.ID] = c.Clone()
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, correctionID id.CorrectionID) (*Correction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[correctionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *MemoryStore) ListByCase(_ context.Context, caseID id.CaseID) ([]*Correction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Correction
	for _, c := range s.byID {
		if c.CaseID == caseID {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Update replaces mutable fields. The case binding, original reference,
// anchor, and submitter are owned by Create and kept from the stored copy.
func (s *MemoryStore) Update(_ context.Context, c *Correction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	updated := c.Clone()
	updated.CaseID = current.CaseID
	updated.OriginalEvidenceID = current.OriginalEvidenceID
	updated.Anchor = current.Anchor
	updated.SubmitterID = current.SubmitterID
	updated.CreatedAt = current.CreatedAt
	s.byID[c.ID] = updated
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, correctionID id.CorrectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[correctionID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, correctionID)
	return nil
}
