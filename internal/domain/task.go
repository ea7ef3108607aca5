package domain

import (
	"strings"
	"time"
)

// Task represents a to-do item in the domain model.
// This is a pure domain model without wire or storage concerns.
type Task struct {
	ID          string
	Title       string
	Description *string
	DueDate     *Date
	Completed   bool
	OwnerID     string
	CreatedAt   time.Time
}

// IsValid checks the persisted-task invariants: a title and an owner.
func (t Task) IsValid() bool {
	return strings.TrimSpace(t.Title) != "" && t.OwnerID != ""
}

// String returns the task title for display purposes.
func (t Task) String() string {
	return t.Title
}

// TaskInput holds the user-supplied fields of a new task. ID, when set, is
// the id the task is stored under; otherwise the store assigns one.
type TaskInput struct {
	ID          string
	Title       string
	Description *string
	DueDate     *Date
}

// NewTaskInput creates an input with only a title.
func NewTaskInput(title string) TaskInput {
	return TaskInput{Title: title}
}

// WithDescription returns a copy of the input with a description.
func (in TaskInput) WithDescription(description string) TaskInput {
	in.Description = &description
	return in
}

// WithDueDate returns a copy of the input with a due date.
func (in TaskInput) WithDueDate(due Date) TaskInput {
	in.DueDate = &due
	return in
}

// WithID returns a copy of the input stored under id.
func (in TaskInput) WithID(id string) TaskInput {
	in.ID = id
	return in
}

// TaskPatch is a partial update. Nil pointers leave a field untouched; the
// Clear flags null a nullable column. The owner is never part of a patch.
type TaskPatch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	DueDate          *Date
	ClearDueDate     bool
	Completed        *bool
}

// CompletionPatch returns a patch that only sets the completed flag.
func CompletionPatch(completed bool) TaskPatch {
	return TaskPatch{Completed: &completed}
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && !p.ClearDescription &&
		p.DueDate == nil && !p.ClearDueDate && p.Completed == nil
}

// Apply returns t with the patch applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.ClearDescription {
		t.Description = nil
	} else if p.Description != nil {
		description := *p.Description
		t.Description = &description
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}
