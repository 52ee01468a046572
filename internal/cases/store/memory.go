package store

import (
	"context"
	"sync"

	"docket/internal/cases/models"
	id "docket/pkg/domain"
	"docket/pkg/platform/sentinel"
)

// Memory keeps cases and their timelines in process memory. The case
// document is the unit of consistency: ApplyTransition performs the stage
// compare-and-swap and the timeline append under one lock, so concurrent
// transition requests on the same case serialize and at most one wins.
type Memory struct {
	mu       sync.RWMutex
	byID     map[id.CaseID]*models.Case
	byNumber map[string]id.CaseID
	timeline map[id.CaseID][]models.TimelineEntry
}

func NewMemory() *Memory {
	return &Memory{
		byID:     make(map[id.CaseID]*models.Case),
		byNumber: make(map[string]id.CaseID),
		timeline: make(map[id.CaseID][]models.TimelineEntry),
	}
}

// Create persists a new case together with its initial timeline entry.
// Returns sentinel.ErrConflict when the case number is already taken.
func (s *Memory) Create(_ context.Context, c *models.Case, initial models.TimelineEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byNumber[c.Number]; taken {
		return sentinel.ErrConflict
	}
	s.byID[c.ID] = c.Clone()
	s.byNumber[c.Number] = c.ID
	s.timeline[c.ID] = []models.TimelineEntry{initial}
	return nil
}

func (s *Memory) FindByID(_ context.Context, caseID id.CaseID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[caseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

// Update replaces mutable case fields. Number, Type, and Stage are owned by
// Create/ApplyTransition and kept from the stored copy.
func (s *Memory) Update(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	updated := c.Clone()
	updated.Number = current.Number
	updated.Type = current.Type
	updated.Stage = current.Stage
	s.byID[c.ID] = updated
	return nil
}

func (s *Memory) Delete(_ context.Context, caseID id.CaseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[caseID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byNumber, c.Number)
	delete(s.byID, caseID)
	delete(s.timeline, caseID)
	return nil
}

// ApplyTransition advances the stage if and only if the stored stage still
// equals from, appending the timeline entry in the same critical section.
// Returns sentinel.ErrConflict when the stage moved underneath the caller.
func (s *Memory) ApplyTransition(_ context.Context, caseID id.CaseID, from, to models.Stage, entry models.TimelineEntry) (*models.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[caseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if c.Stage != from {
		return nil, sentinel.ErrConflict
	}
	c.Stage = to
	c.UpdatedAt = entry.CreatedAt
	s.timeline[caseID] = append(s.timeline[caseID], entry)
	return c.Clone(), nil
}

func (s *Memory) Timeline(_ context.Context, caseID id.CaseID) ([]models.TimelineEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.byID[caseID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]models.TimelineEntry(nil), s.timeline[caseID]...), nil
}
