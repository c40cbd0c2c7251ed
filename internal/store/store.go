// Package store is the persistence layer: users, projects, project
// membership, and versioned snapshots of diagram documents. The Postgres
// implementation backs the server; the memory implementation backs tests
// and local single-process runs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Role is a project membership role.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
)

type User struct {
	ID          string
	Email       string
	Password    string // bcrypt hash
	DisplayName string
	CreatedAt   time.Time
}

type Project struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member is a membership row joined with the user's identity fields.
type Member struct {
	ProjectID   string
	UserID      string
	Role        Role
	DisplayName string
	Email       string
}

// Snapshot is one persisted version of a project's diagram document.
type Snapshot struct {
	ID        string
	ProjectID string
	Version   int32
	Document  json.RawMessage
	CreatedAt time.Time
}

// Store is the full persistence contract. Lookups that miss return
// ErrNotFound; unique-key collisions return ErrDuplicate.
type Store interface {
	CreateUser(ctx context.Context, u User) error
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id string) (User, error)

	CreateProject(ctx context.Context, p Project) error
	Project(ctx context.Context, id string) (Project, error)
	ProjectsForUser(ctx context.Context, userID string) ([]Project, error)
	DeleteProject(ctx context.Context, id string) error

	AddMember(ctx context.Context, projectID, userID string, role Role) error
	RemoveMember(ctx context.Context, projectID, userID string) error
	Member(ctx context.Context, projectID, userID string) (Member, error)
	Members(ctx context.Context, projectID string) ([]Member, error)

	CreateSnapshot(ctx context.Context, s Snapshot) (Snapshot, error)
	LatestSnapshot(ctx context.Context, projectID string) (Snapshot, error)
}
