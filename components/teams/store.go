package teams

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrTeamNotFound   = errors.New("teams: team not found")
	ErrMemberNotFound = errors.New("teams: member not found")
	ErrRoleNotFound   = errors.New("teams: role not found")
)

// Store persists teams, members and roles. Services receive it explicitly.
type Store interface {
	Teams(ctx context.Context) ([]Team, error)
	Team(ctx context.Context, id string) (Team, error)
	SaveTeam(ctx context.Context, team Team) error

	Members(ctx context.Context, teamID string) ([]Member, error)
	Member(ctx context.Context, id string) (Member, error)
	SaveMember(ctx context.Context, member Member) error
	DeleteMembers(ctx context.Context, ids []string) error

	Roles(ctx context.Context) ([]Role, error)
	Role(ctx context.Context, name string) (Role, error)
	SaveRole(ctx context.Context, role Role) error

	Permissions(ctx context.Context) ([]Permission, error)
}

// InMemoryStore is a concurrency-safe Store seeded with the default roles and
// permissions.
type InMemoryStore struct {
	mu          sync.RWMutex
	teams       map[string]Team
	members     map[string]Member
	roles       map[string]Role
	permissions []Permission
}

// NewInMemoryStore creates a store with the built-in roles.
func NewInMemoryStore() *InMemoryStore {
	s := &InMemoryStore{
		teams:       map[string]Team{},
		members:     map[string]Member{},
		roles:       map[string]Role{},
		permissions: DefaultPermissions(),
	}
	for _, r := range DefaultRoles() {
		s.roles[r.Name] = r
	}
	return s
}

func (s *InMemoryStore) Teams(context.Context) ([]Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Team(_ context.Context, id string) (Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return Team{}, fmt.Errorf("%w: %s", ErrTeamNotFound, id)
	}
	return t, nil
}

func (s *InMemoryStore) SaveTeam(_ context.Context, team Team) error {
	s.mu.Lock()
	s.teams[team.ID] = team
	s.mu.Unlock()
	return nil
}

// Members returns the team's members ordered by join time. An empty teamID
// lists every member.
func (s *InMemoryStore) Members(_ context.Context, teamID string) ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Member{}
	for _, m := range s.members {
		if teamID == "" || m.TeamID == teamID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Member(_ context.Context, id string) (Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return Member{}, fmt.Errorf("%w: %s", ErrMemberNotFound, id)
	}
	return m, nil
}

func (s *InMemoryStore) SaveMember(_ context.Context, member Member) error {
	s.mu.Lock()
	s.members[member.ID] = member
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) DeleteMembers(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.members, id)
	}
	return nil
}

// Roles returns built-in roles first, then custom roles by name.
func (s *InMemoryStore) Roles(context.Context) ([]Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Role, 0, len(s.roles))
	for _, r := range s.roles {
		r.Permissions = append([]string(nil), r.Permissions...)
		out = append(out, r)
	}
	builtInOrder := map[string]int{RoleOwner: 0, RoleAdmin: 1, RoleMember: 2, RoleViewer: 3}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BuiltIn != out[j].BuiltIn {
			return out[i].BuiltIn
		}
		if out[i].BuiltIn {
			return builtInOrder[out[i].Name] < builtInOrder[out[j].Name]
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *InMemoryStore) Role(_ context.Context, name string) (Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[name]
	if !ok {
		return Role{}, fmt.Errorf("%w: %s", ErrRoleNotFound, name)
	}
	return r, nil
}

func (s *InMemoryStore) SaveRole(_ context.Context, role Role) error {
	s.mu.Lock()
	role.Permissions = append([]string(nil), role.Permissions...)
	s.roles[role.Name] = role
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) Permissions(context.Context) ([]Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Permission(nil), s.permissions...), nil
}
