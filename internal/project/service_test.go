package project

import (
	"context"
	"errors"
	"testing"

	"github.com/scopemap/scopemap/backend-go/internal/diagram"
	"github.com/scopemap/scopemap/backend-go/internal/store"
)

func setup(t *testing.T) (*Service, store.Store) {
	t.Helper()
	st := store.NewMemory()
	ctx := context.Background()
	for _, u := range []store.User{
		{ID: "user_owner", Email: "owner@x.com", DisplayName: "Owner"},
		{ID: "user_editor", Email: "editor@x.com", DisplayName: "Editor"},
		{ID: "user_other", Email: "other@x.com", DisplayName: "Other"},
	} {
		if err := st.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	return NewService(st), st
}

func TestCreateSeedsSampleDocument(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	p, err := svc.Create(ctx, "Roadmap", "user_owner")
	if err != nil {
		t.Fatal(err)
	}
	if p.OwnerID != "user_owner" {
		t.Errorf("owner = %q", p.OwnerID)
	}

	doc, err := svc.LatestDocument(ctx, p.ID, "user_owner")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Swimlanes) == 0 {
		t.Fatal("seed document has no swimlanes")
	}

	// The seed document must decode into a working diagram.
	d, err := diagram.Decode(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Swimlanes()) != len(doc.Swimlanes) {
		t.Error("decoded diagram lost swimlanes")
	}
}

func TestMembershipGates(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	p, err := svc.Create(ctx, "Roadmap", "user_owner")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Get(ctx, p.ID, "user_other"); !errors.Is(err, ErrNotMember) {
		t.Errorf("non-member get: got %v, want ErrNotMember", err)
	}
	if _, err := svc.LatestDocument(ctx, p.ID, "user_other"); !errors.Is(err, ErrNotMember) {
		t.Errorf("non-member document: got %v, want ErrNotMember", err)
	}

	if err := svc.InviteByEmail(ctx, p.ID, "user_owner", "editor@x.com"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, p.ID, "user_editor"); err != nil {
		t.Errorf("invited editor rejected: %v", err)
	}

	if err := svc.InviteByEmail(ctx, p.ID, "user_editor", "other@x.com"); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner invite: got %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, p.ID, "user_editor"); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner delete: got %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, p.ID, "user_owner"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, p.ID, "user_owner"); !errors.Is(err, ErrNotMember) && !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted project still readable: %v", err)
	}
}

func TestSaveDocumentIncrementsVersion(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)

	p, err := svc.Create(ctx, "Roadmap", "user_owner")
	if err != nil {
		t.Fatal(err)
	}

	doc, err := svc.Document(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.SaveDocument(ctx, p.ID, doc); err != nil {
		t.Fatal(err)
	}

	snap, err := st.LatestSnapshot(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Version != 2 {
		t.Errorf("version after save = %d, want 2", snap.Version)
	}
}
