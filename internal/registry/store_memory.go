package registry

import (
	"context"
	"sort"
	"sync"

	"docket/internal/identity"
	id "docket/pkg/domain"
	"docket/pkg/platform/sentinel"
)

type assignmentKey struct {
	address string
	role    identity.Role
}

// MemoryStore keeps role assignments in process memory. The (address, role)
// uniqueness for ACTIVE assignments is enforced under the store lock.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[id.AssignmentID]*RoleAssignment
	active map[assignmentKey]id.AssignmentID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[id.AssignmentID]*RoleAssignment),
		active: make(map[assignmentKey]id.AssignmentID),
	}
}

// Create persists an active assignment. Returns sentinel.ErrConflict when an
// ACTIVE assignment already exists for the (address, role) pair.
func (s *MemoryStore) Create(_ context.Context, a *RoleAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := assignmentKey{address: a.Address, role: a.Role}
	if _, taken := s.active[key]; taken {
		return sentinel.ErrConflict
	}
	s.byID[a.ID] = a.Clone()
	s.active[key] = a.ID
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, assignmentID id.AssignmentID) (*RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[assignmentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return a.Clone(), nil
}

// FindActive returns the ACTIVE assignment for an (address, role) pair.
func (s *MemoryStore) FindActive(_ context.Context, address string, role identity.Role) (*RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assignmentID, ok := s.active[assignmentKey{address: address, role: role}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.byID[assignmentID].Clone(), nil
}

// ListByAddress returns every assignment for an address, newest grant first.
func (s *MemoryStore) ListByAddress(_ context.Context, address string) ([]*RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*RoleAssignment
	for _, a := range s.byID {
		if a.Address == address {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GrantedAt.After(out[j].GrantedAt) })
	return out, nil
}

// Update persists a status flip, maintaining the active index.
func (s *MemoryStore) Update(_ context.Context, a *RoleAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[a.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	key := assignmentKey{address: current.Address, role: current.Role}
	if current.Active() && !a.Active() {
		delete(s.active, key)
	}
	if !current.Active() && a.Active() {
		if _, taken := s.active[key]; taken {
			return sentinel.ErrConflict
		}
		s.active[key] = a.ID
	}
	s.byID[a.ID] = a.Clone()
	return nil
}
