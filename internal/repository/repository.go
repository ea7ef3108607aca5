// Package repository defines the port to the remote task table. Backends
// live in the sqlite and supabase subpackages.
package repository

import (
	"context"
	"time"

	"todo-sync/internal/auth"
)

// DefaultTable is the name of the task table on the backend.
const DefaultTable = "tareas"

// Column names of the task table.
const (
	ColumnID          = "id"
	ColumnTitle       = "titulo"
	ColumnDescription = "descripcion"
	ColumnDueDate     = "fecha_vencimiento"
	ColumnCompleted   = "completed"
	ColumnUserID      = "user_id"
	ColumnCreatedAt   = "created_at"
)

// Record is one row of the task table as it travels over the wire.
type Record struct {
	ID               string     `json:"id,omitempty"`
	Titulo           string     `json:"titulo"`
	Descripcion      *string    `json:"descripcion"`
	FechaVencimiento *string    `json:"fecha_vencimiento"`
	Completed        bool       `json:"completed"`
	UserID           string     `json:"user_id"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

// Filter narrows a select. Empty fields are ignored.
type Filter struct {
	ID     string
	UserID string
	// Text matches title or description, case-insensitively.
	Text string
}

// Changes maps column names to new values for a partial update. A nil value
// sets the column to NULL.
type Changes map[string]interface{}

// TaskStore is the table-like CRUD surface of the remote task store. The
// session is passed explicitly on every call; a nil session means the call
// is made anonymously and row authorization decides what it may see.
type TaskStore interface {
	Select(ctx context.Context, session *auth.Session, filter Filter) ([]*Record, error)
	Insert(ctx context.Context, session *auth.Session, record Record) (*Record, error)
	Update(ctx context.Context, session *auth.Session, id string, changes Changes) (*Record, error)
	Delete(ctx context.Context, session *auth.Session, id string) error
}

// Backend bundles a task store with the auth provider of the same service.
type Backend interface {
	TaskStore
	auth.Provider
	Close() error
}
