package teams

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-dataview/pkg/activity"
	"github.com/goliatone/go-dataview/pkg/toast"
)

var (
	ErrStoreRequired  = errors.New("teams: store is required")
	ErrNameRequired   = errors.New("teams: name is required")
	ErrInvalidEmail   = errors.New("teams: a valid email is required")
	ErrUnknownRole    = errors.New("teams: unknown role")
	ErrDuplicateRole  = errors.New("teams: role already exists")
	ErrDuplicateEmail = errors.New("teams: member already on team")
	ErrPending        = errors.New("teams: operation already in progress")
	ErrNoMembers      = errors.New("teams: no members selected")
	ErrLastOwner      = errors.New("teams: a team must keep at least one owner")
)

// Backend is the host API behind the team screens. Every call is awaited and
// a rejection is surfaced to the user as a toast.
type Backend interface {
	AddMember(ctx context.Context, member Member) error
	UpdateRole(ctx context.Context, memberID, role string) error
	AddRole(ctx context.Context, role Role) error
	RemoveMembers(ctx context.Context, ids []string) error
}

// Options wires a Service.
type Options struct {
	Store    Store
	Backend  Backend
	Notifier toast.Notifier
	Activity *activity.Emitter
	NewID    func() string
	Now      func() time.Time
}

// Service implements the team, member and role screens on top of a Store.
type Service struct {
	store    Store
	backend  Backend
	notifier toast.Notifier
	activity *activity.Emitter
	newID    func() string
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewService validates options and applies defaults.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, ErrStoreRequired
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:    opts.Store,
		backend:  opts.Backend,
		notifier: toast.Normalize(opts.Notifier),
		activity: opts.Activity,
		newID:    opts.NewID,
		now:      opts.Now,
		pending:  map[string]struct{}{},
	}, nil
}

// Store exposes the underlying store.
func (s *Service) Store() Store { return s.store }

// AddTeam creates a team locally.
func (s *Service) AddTeam(ctx context.Context, name string) (Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Team{}, s.fail(ctx, "Failed to create team", ErrNameRequired)
	}
	team := Team{ID: s.newID(), Name: name, CreatedAt: s.now().UTC()}
	if err := s.store.SaveTeam(ctx, team); err != nil {
		return Team{}, s.fail(ctx, "Failed to create team", err)
	}
	s.notifier.Notify(ctx, toast.Success("Team created", fmt.Sprintf("%s is ready.", name)))
	s.emit(ctx, activity.VerbCreate, "team", team.ID, map[string]any{"name": name})
	return team, nil
}

// AddMember validates the invite, calls the backend and stores the member.
func (s *Service) AddMember(ctx context.Context, teamID, name, email, role string) (Member, error) {
	const title = "Failed to add member"
	name, email, role = strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(role)
	if role == "" {
		role = RoleMember
	}
	if name == "" {
		return Member{}, s.fail(ctx, title, ErrNameRequired)
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return Member{}, s.fail(ctx, title, fmt.Errorf("%w: %q", ErrInvalidEmail, email))
	}
	if _, err := s.store.Team(ctx, teamID); err != nil {
		return Member{}, s.fail(ctx, title, err)
	}
	if _, err := s.store.Role(ctx, role); err != nil {
		return Member{}, s.fail(ctx, title, fmt.Errorf("%w: %s", ErrUnknownRole, role))
	}
	existing, err := s.store.Members(ctx, teamID)
	if err != nil {
		return Member{}, s.fail(ctx, title, err)
	}
	for _, m := range existing {
		if m.Email == email {
			return Member{}, s.fail(ctx, title, fmt.Errorf("%w: %s", ErrDuplicateEmail, email))
		}
	}

	done, err := s.begin("add-member:" + teamID)
	if err != nil {
		return Member{}, err
	}
	defer done()

	member := Member{
		ID:       s.newID(),
		TeamID:   teamID,
		Name:     name,
		Email:    email,
		Role:     role,
		JoinedAt: s.now().UTC(),
	}
	if s.backend != nil {
		if err := s.backend.AddMember(ctx, member); err != nil {
			return Member{}, s.fail(ctx, title, err)
		}
	}
	if err := s.store.SaveMember(ctx, member); err != nil {
		return Member{}, s.fail(ctx, title, err)
	}
	s.notifier.Notify(ctx, toast.Success("Member added", fmt.Sprintf("%s was added as %s.", name, role)))
	s.emitTo(ctx, activity.VerbCreate, "member", member.ID, []string{email}, map[string]any{
		"team_id": teamID,
		"role":    role,
	})
	return member, nil
}

// UpdateRole changes a member's role. The last owner of a team cannot be
// demoted.
func (s *Service) UpdateRole(ctx context.Context, memberID, role string) (Member, error) {
	const title = "Failed to update role"
	role = strings.TrimSpace(role)
	member, err := s.store.Member(ctx, memberID)
	if err != nil {
		return Member{}, s.fail(ctx, title, err)
	}
	if _, err := s.store.Role(ctx, role); err != nil {
		return Member{}, s.fail(ctx, title, fmt.Errorf("%w: %s", ErrUnknownRole, role))
	}
	if member.Role == role {
		return member, nil
	}
	if member.Role == RoleOwner {
		if err := s.ensureAnotherOwner(ctx, member.TeamID, []string{member.ID}); err != nil {
			return Member{}, s.fail(ctx, title, err)
		}
	}

	done, err := s.begin("update-role:" + memberID)
	if err != nil {
		return Member{}, err
	}
	defer done()

	if s.backend != nil {
		if err := s.backend.UpdateRole(ctx, memberID, role); err != nil {
			return Member{}, s.fail(ctx, title, err)
		}
	}
	previous := member.Role
	member.Role = role
	if err := s.store.SaveMember(ctx, member); err != nil {
		return Member{}, s.fail(ctx, title, err)
	}
	s.notifier.Notify(ctx, toast.Success("Role updated", fmt.Sprintf("%s is now %s.", member.Name, role)))
	s.emit(ctx, activity.VerbUpdate, "member", member.ID, map[string]any{
		"team_id":       member.TeamID,
		"role":          role,
		"previous_role": previous,
	})
	return member, nil
}

// AddRole creates a custom role. Unknown permission ids are rejected.
func (s *Service) AddRole(ctx context.Context, name, description string, permissions []string) (Role, error) {
	const title = "Failed to create role"
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Role{}, s.fail(ctx, title, ErrNameRequired)
	}
	if _, err := s.store.Role(ctx, name); err == nil {
		return Role{}, s.fail(ctx, title, fmt.Errorf("%w: %s", ErrDuplicateRole, name))
	}
	catalogue, err := s.store.Permissions(ctx)
	if err != nil {
		return Role{}, s.fail(ctx, title, err)
	}
	known := make(map[string]bool, len(catalogue))
	for _, p := range catalogue {
		known[p.ID] = true
	}
	perms := make([]string, 0, len(permissions))
	seen := map[string]bool{}
	for _, p := range permissions {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		if !known[p] {
			return Role{}, s.fail(ctx, title, fmt.Errorf("teams: unknown permission %q", p))
		}
		seen[p] = true
		perms = append(perms, p)
	}

	done, err := s.begin("add-role")
	if err != nil {
		return Role{}, err
	}
	defer done()

	role := Role{Name: name, Description: strings.TrimSpace(description), Permissions: perms}
	if s.backend != nil {
		if err := s.backend.AddRole(ctx, role); err != nil {
			return Role{}, s.fail(ctx, title, err)
		}
	}
	if err := s.store.SaveRole(ctx, role); err != nil {
		return Role{}, s.fail(ctx, title, err)
	}
	s.notifier.Notify(ctx, toast.Success("Role created", fmt.Sprintf("%s has %d permissions.", name, len(perms))))
	s.emit(ctx, activity.VerbCreate, "role", name, map[string]any{"permissions": perms})
	return role, nil
}

// RemoveMembers removes members by id. Removing every owner of a team is
// rejected.
func (s *Service) RemoveMembers(ctx context.Context, ids []string) error {
	const title = "Failed to remove members"
	if len(ids) == 0 {
		return ErrNoMembers
	}
	byTeam := map[string][]string{}
	for _, id := range ids {
		m, err := s.store.Member(ctx, id)
		if err != nil {
			return s.fail(ctx, title, err)
		}
		if m.Role == RoleOwner {
			byTeam[m.TeamID] = append(byTeam[m.TeamID], m.ID)
		}
	}
	for teamID, owners := range byTeam {
		if err := s.ensureAnotherOwner(ctx, teamID, owners); err != nil {
			return s.fail(ctx, title, err)
		}
	}

	done, err := s.begin("remove-members")
	if err != nil {
		return err
	}
	defer done()

	if s.backend != nil {
		if err := s.backend.RemoveMembers(ctx, ids); err != nil {
			return s.fail(ctx, title, err)
		}
	}
	if err := s.store.DeleteMembers(ctx, ids); err != nil {
		return s.fail(ctx, title, err)
	}
	s.notifier.Notify(ctx, toast.Success("Members removed", fmt.Sprintf("%d member(s) removed.", len(ids))))
	for _, id := range ids {
		s.emit(ctx, activity.VerbDelete, "member", id, nil)
	}
	return nil
}

// Teams lists teams.
func (s *Service) Teams(ctx context.Context) ([]Team, error) {
	return s.store.Teams(ctx)
}

// Members lists a team's members.
func (s *Service) Members(ctx context.Context, teamID string) ([]Member, error) {
	return s.store.Members(ctx, teamID)
}

// Roles lists roles.
func (s *Service) Roles(ctx context.Context) ([]Role, error) {
	return s.store.Roles(ctx)
}

// Permissions lists the permission catalogue.
func (s *Service) Permissions(ctx context.Context) ([]Permission, error) {
	return s.store.Permissions(ctx)
}

func (s *Service) ensureAnotherOwner(ctx context.Context, teamID string, leaving []string) error {
	members, err := s.store.Members(ctx, teamID)
	if err != nil {
		return err
	}
	skip := make(map[string]bool, len(leaving))
	for _, id := range leaving {
		skip[id] = true
	}
	for _, m := range members {
		if m.Role == RoleOwner && !skip[m.ID] {
			return nil
		}
	}
	return ErrLastOwner
}

// begin marks key as in flight. The returned func releases it.
func (s *Service) begin(key string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.pending[key]; busy {
		return nil, fmt.Errorf("%w: %s", ErrPending, key)
	}
	s.pending[key] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.pending, key)
		s.mu.Unlock()
	}, nil
}

func (s *Service) fail(ctx context.Context, title string, err error) error {
	s.notifier.Notify(ctx, toast.Error(title, err, title+". Please try again."))
	return err
}

func (s *Service) emit(ctx context.Context, verb, objectType, objectID string, meta map[string]any) {
	s.emitTo(ctx, verb, objectType, objectID, nil, meta)
}

func (s *Service) emitTo(ctx context.Context, verb, objectType, objectID string, recipients []string, meta map[string]any) {
	if !s.activity.Enabled() {
		return
	}
	_ = s.activity.Emit(ctx, activity.Event{
		Verb:           verb,
		ObjectType:     objectType,
		ObjectID:       objectID,
		DefinitionCode: "teams." + objectType + "." + verb,
		Recipients:     recipients,
		Metadata:       meta,
	})
}
