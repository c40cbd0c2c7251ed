package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store for tests and local runs. All methods are
// safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	users     map[string]User
	projects  map[string]Project
	members   map[string]map[string]Role // projectID -> userID -> role
	snapshots map[string][]Snapshot      // projectID -> ascending versions
}

func NewMemory() *Memory {
	return &Memory{
		users:     make(map[string]User),
		projects:  make(map[string]Project),
		members:   make(map[string]map[string]Role),
		snapshots: make(map[string][]Snapshot),
	}
}

func (s *Memory) CreateUser(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", ErrDuplicate)
		}
	}
	if _, ok := s.users[u.ID]; ok {
		return fmt.Errorf("create user: %w", ErrDuplicate)
	}
	u.CreatedAt = time.Now()
	s.users[u.ID] = u
	return nil
}

func (s *Memory) UserByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, fmt.Errorf("user: %w", ErrNotFound)
}

func (s *Memory) UserByID(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, fmt.Errorf("user: %w", ErrNotFound)
	}
	return u, nil
}

func (s *Memory) CreateProject(_ context.Context, p Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; ok {
		return fmt.Errorf("create project: %w", ErrDuplicate)
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.projects[p.ID] = p
	return nil
}

func (s *Memory) Project(_ context.Context, id string) (Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s *Memory) ProjectsForUser(_ context.Context, userID string) ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Project
	for projectID, roles := range s.members {
		if _, ok := roles[userID]; !ok {
			continue
		}
		if p, ok := s.projects[projectID]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *Memory) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
	delete(s.members, id)
	delete(s.snapshots, id)
	return nil
}

func (s *Memory) AddMember(_ context.Context, projectID, userID string, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.members[projectID] == nil {
		s.members[projectID] = make(map[string]Role)
	}
	s.members[projectID][userID] = role
	return nil
}

func (s *Memory) RemoveMember(_ context.Context, projectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members[projectID], userID)
	return nil
}

func (s *Memory) Member(_ context.Context, projectID, userID string) (Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.members[projectID][userID]
	if !ok {
		return Member{}, fmt.Errorf("member: %w", ErrNotFound)
	}
	m := Member{ProjectID: projectID, UserID: userID, Role: role}
	if u, ok := s.users[userID]; ok {
		m.DisplayName, m.Email = u.DisplayName, u.Email
	}
	return m, nil
}

func (s *Memory) Members(_ context.Context, projectID string) ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Member
	for userID, role := range s.members[projectID] {
		m := Member{ProjectID: projectID, UserID: userID, Role: role}
		if u, ok := s.users[userID]; ok {
			m.DisplayName, m.Email = u.DisplayName, u.Email
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

func (s *Memory) CreateSnapshot(_ context.Context, snap Snapshot) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.snapshots[snap.ProjectID] {
		if existing.Version == snap.Version {
			return Snapshot{}, fmt.Errorf("create snapshot: %w", ErrDuplicate)
		}
	}
	snap.CreatedAt = time.Now()
	s.snapshots[snap.ProjectID] = append(s.snapshots[snap.ProjectID], snap)
	sort.Slice(s.snapshots[snap.ProjectID], func(i, j int) bool {
		return s.snapshots[snap.ProjectID][i].Version < s.snapshots[snap.ProjectID][j].Version
	})
	return snap, nil
}

func (s *Memory) LatestSnapshot(_ context.Context, projectID string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snaps := s.snapshots[projectID]
	if len(snaps) == 0 {
		return Snapshot{}, fmt.Errorf("latest snapshot for %s: %w", projectID, ErrNotFound)
	}
	return snaps[len(snaps)-1], nil
}
