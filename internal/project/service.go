package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/scopemap/scopemap/backend-go/internal/diagram"
	"github.com/scopemap/scopemap/backend-go/internal/store"
	"github.com/scopemap/scopemap/backend-go/internal/typeid"
)

var (
	ErrNotFound  = errors.New("project not found")
	ErrForbidden = errors.New("forbidden")
	ErrNotMember = errors.New("not a project member")
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Create makes a project owned by ownerID and seeds version 1 with the
// sample diagram so a fresh project opens with something to edit.
func (s *Service) Create(ctx context.Context, name, ownerID string) (*Project, error) {
	p := store.Project{
		ID:      typeid.NewProjectID(),
		Name:    name,
		OwnerID: ownerID,
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	if err := s.store.AddMember(ctx, p.ID, ownerID, store.RoleOwner); err != nil {
		return nil, fmt.Errorf("add owner as member: %w", err)
	}

	docJSON, err := diagram.MarshalJSONDocument(diagram.NewSampleDiagram())
	if err != nil {
		return nil, fmt.Errorf("marshal seed document: %w", err)
	}
	_, err = s.store.CreateSnapshot(ctx, store.Snapshot{
		ID:        typeid.NewSnapshotID(),
		ProjectID: p.ID,
		Version:   1,
		Document:  docJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	created, err := s.store.Project(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("reload project: %w", err)
	}
	return toProject(created), nil
}

func (s *Service) Get(ctx context.Context, projectID, userID string) (*Project, error) {
	if err := s.checkMembership(ctx, projectID, userID); err != nil {
		return nil, err
	}

	p, err := s.store.Project(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return toProject(p), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Project, error) {
	stored, err := s.store.ProjectsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]Project, len(stored))
	for i, p := range stored {
		projects[i] = *toProject(p)
	}
	return projects, nil
}

func (s *Service) Delete(ctx context.Context, projectID, userID string) error {
	p, err := s.store.Project(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get project: %w", err)
	}

	if p.OwnerID != userID {
		return ErrForbidden
	}

	return s.store.DeleteProject(ctx, projectID)
}

func (s *Service) InviteByEmail(ctx context.Context, projectID, ownerID, inviteeEmail string) error {
	p, err := s.store.Project(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get project: %w", err)
	}

	if p.OwnerID != ownerID {
		return ErrForbidden
	}

	invitee, err := s.store.UserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.New("user not found")
		}
		return fmt.Errorf("find user: %w", err)
	}

	return s.store.AddMember(ctx, projectID, invitee.ID, store.RoleEditor)
}

func (s *Service) ListMembers(ctx context.Context, projectID, userID string) ([]Member, error) {
	if err := s.checkMembership(ctx, projectID, userID); err != nil {
		return nil, err
	}

	stored, err := s.store.Members(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]Member, len(stored))
	for i, m := range stored {
		members[i] = Member{
			UserID:      m.UserID,
			Role:        string(m.Role),
			DisplayName: m.DisplayName,
			Email:       m.Email,
		}
	}
	return members, nil
}

func (s *Service) RemoveMember(ctx context.Context, projectID, ownerID, targetUserID string) error {
	p, err := s.store.Project(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get project: %w", err)
	}

	if p.OwnerID != ownerID {
		return ErrForbidden
	}

	if targetUserID == ownerID {
		return errors.New("cannot remove project owner")
	}

	return s.store.RemoveMember(ctx, projectID, targetUserID)
}

// LatestDocument returns the newest snapshot's diagram document.
func (s *Service) LatestDocument(ctx context.Context, projectID, userID string) (*diagram.Document, error) {
	if err := s.checkMembership(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.loadDocument(ctx, projectID)
}

// SaveDocument persists a document as the next snapshot version.
func (s *Service) SaveDocument(ctx context.Context, projectID string, doc *diagram.Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	version := int32(1)
	if snap, err := s.store.LatestSnapshot(ctx, projectID); err == nil {
		version = snap.Version + 1
	}

	_, err = s.store.CreateSnapshot(ctx, store.Snapshot{
		ID:        typeid.NewSnapshotID(),
		ProjectID: projectID,
		Version:   version,
		Document:  data,
	})
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	return nil
}

// loadDocument skips the membership check; session and export callers
// authorize separately.
func (s *Service) loadDocument(ctx context.Context, projectID string) (*diagram.Document, error) {
	snap, err := s.store.LatestSnapshot(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	doc, err := diagram.UnmarshalDocument(snap.Document)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", snap.ID, err)
	}
	return doc, nil
}

// Document loads the latest document without a membership check, for
// trusted in-process callers.
func (s *Service) Document(ctx context.Context, projectID string) (*diagram.Document, error) {
	return s.loadDocument(ctx, projectID)
}

func (s *Service) CheckMembership(ctx context.Context, projectID, userID string) error {
	return s.checkMembership(ctx, projectID, userID)
}

func (s *Service) checkMembership(ctx context.Context, projectID, userID string) error {
	_, err := s.store.Member(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("check membership: %w", err)
	}
	return nil
}

func toProject(p store.Project) *Project {
	return &Project{
		ID:        p.ID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
