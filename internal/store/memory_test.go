package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	u := User{ID: "user_1", Email: "ada@example.com", Password: "hash", DisplayName: "Ada"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateUser(ctx, User{ID: "user_2", Email: "ada@example.com"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email: got %v, want ErrDuplicate", err)
	}

	got, err := s.UserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "user_1" || got.DisplayName != "Ada" {
		t.Errorf("got %+v", got)
	}
	if _, err := s.UserByID(ctx, "user_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestMemoryProjectsAndMembers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	s.CreateUser(ctx, User{ID: "user_1", Email: "a@x.com", DisplayName: "A"})
	s.CreateUser(ctx, User{ID: "user_2", Email: "b@x.com", DisplayName: "B"})

	if err := s.CreateProject(ctx, Project{ID: "proj_1", Name: "Roadmap", OwnerID: "user_1"}); err != nil {
		t.Fatal(err)
	}
	s.AddMember(ctx, "proj_1", "user_1", RoleOwner)
	s.AddMember(ctx, "proj_1", "user_2", RoleEditor)

	projects, err := s.ProjectsForUser(ctx, "user_2")
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 || projects[0].ID != "proj_1" {
		t.Errorf("projects for member = %+v", projects)
	}

	m, err := s.Member(ctx, "proj_1", "user_2")
	if err != nil {
		t.Fatal(err)
	}
	if m.Role != RoleEditor || m.DisplayName != "B" {
		t.Errorf("member = %+v", m)
	}

	members, err := s.Members(ctx, "proj_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 2 {
		t.Fatalf("member count = %d", len(members))
	}

	s.RemoveMember(ctx, "proj_1", "user_2")
	if _, err := s.Member(ctx, "proj_1", "user_2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("removed member: got %v, want ErrNotFound", err)
	}

	if err := s.DeleteProject(ctx, "proj_1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Project(ctx, "proj_1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted project: got %v, want ErrNotFound", err)
	}
}

func TestMemorySnapshots(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if _, err := s.LatestSnapshot(ctx, "proj_1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty project: got %v, want ErrNotFound", err)
	}

	doc := json.RawMessage(`{"swimlanes":[]}`)
	for v := int32(1); v <= 3; v++ {
		if _, err := s.CreateSnapshot(ctx, Snapshot{
			ID: "snap_" + string(rune('0'+v)), ProjectID: "proj_1", Version: v, Document: doc,
		}); err != nil {
			t.Fatal(err)
		}
	}
	snap, err := s.LatestSnapshot(ctx, "proj_1")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Version != 3 {
		t.Errorf("latest version = %d, want 3", snap.Version)
	}

	if _, err := s.CreateSnapshot(ctx, Snapshot{ID: "snap_x", ProjectID: "proj_1", Version: 3}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate version: got %v, want ErrDuplicate", err)
	}
}
