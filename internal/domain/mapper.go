package domain

import (
	"fmt"

	"todo-sync/internal/repository"
)

// TaskMapper handles conversion between domain tasks and wire records.
type TaskMapper struct{}

// NewTaskMapper creates a new TaskMapper instance.
func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

// ToRecord converts a new-task input to an insertable record owned by ownerID.
func (m *TaskMapper) ToRecord(input TaskInput, ownerID string) repository.Record {
	return repository.Record{
		ID:               input.ID,
		Titulo:           input.Title,
		Descripcion:      input.Description,
		FechaVencimiento: dateToWire(input.DueDate),
		Completed:        false,
		UserID:           ownerID,
	}
}

// FromRecord converts a wire record to a domain Task.
func (m *TaskMapper) FromRecord(record repository.Record) (Task, error) {
	task := Task{
		ID:          record.ID,
		Title:       record.Titulo,
		Description: record.Descripcion,
		Completed:   record.Completed,
		OwnerID:     record.UserID,
	}
	if record.CreatedAt != nil {
		task.CreatedAt = *record.CreatedAt
	}
	if record.FechaVencimiento != nil && *record.FechaVencimiento != "" {
		due, err := ParseDate(*record.FechaVencimiento)
		if err != nil {
			return Task{}, fmt.Errorf("task %s: %w", record.ID, err)
		}
		task.DueDate = &due
	}
	return task, nil
}

// FromRecordSlice converts a slice of records to domain tasks.
func (m *TaskMapper) FromRecordSlice(records []*repository.Record) ([]*Task, error) {
	tasks := make([]*Task, 0, len(records))
	for _, record := range records {
		task, err := m.FromRecord(*record)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, &task)
	}
	return tasks, nil
}

// ToChanges converts a patch to the column changes of a partial update.
func (m *TaskMapper) ToChanges(patch TaskPatch) repository.Changes {
	changes := repository.Changes{}
	if patch.Title != nil {
		changes[repository.ColumnTitle] = *patch.Title
	}
	if patch.ClearDescription {
		changes[repository.ColumnDescription] = nil
	} else if patch.Description != nil {
		changes[repository.ColumnDescription] = *patch.Description
	}
	if patch.ClearDueDate {
		changes[repository.ColumnDueDate] = nil
	} else if patch.DueDate != nil {
		changes[repository.ColumnDueDate] = patch.DueDate.String()
	}
	if patch.Completed != nil {
		changes[repository.ColumnCompleted] = *patch.Completed
	}
	return changes
}

func dateToWire(d *Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
