package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"todo-sync/internal/auth"
	"todo-sync/internal/errors"
	"todo-sync/internal/logging"
	"todo-sync/internal/repository"
)

// updatableColumns are the columns a partial update may set. id, user_id and
// created_at are never client-editable.
var updatableColumns = map[string]bool{
	repository.ColumnTitle:       true,
	repository.ColumnDescription: true,
	repository.ColumnDueDate:     true,
	repository.ColumnCompleted:   true,
}

// Select returns the caller's rows matching the filter, oldest first. An
// anonymous caller sees nothing.
func (s *Store) Select(ctx context.Context, session *auth.Session, filter repository.Filter) ([]*repository.Record, error) {
	userID, err := s.userFor(session)
	if err != nil {
		return nil, err
	}
	if userID == "" || (filter.UserID != "" && filter.UserID != userID) {
		return []*repository.Record{}, nil
	}

	query := "SELECT " + recordColumns + " FROM tareas WHERE user_id = ?"
	args := []interface{}{userID}

	if filter.ID != "" {
		query += " AND id = ?"
		args = append(args, filter.ID)
	}
	if text := strings.TrimSpace(filter.Text); text != "" {
		pattern := "%" + escapeLike(text) + "%"
		query += ` AND (titulo LIKE ? ESCAPE '\' OR descripcion LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}
	query += " ORDER BY created_at ASC, rowid ASC"

	logging.Logger().Debug("sqlite select", "user", userID, "id", filter.ID, "text", filter.Text)
	return QueryMultiple(ctx, s.db, query, ScanRecords, "tasks", args...)
}

// Insert stores a new row owned by the caller and returns it with its
// creation time. A record without an id is given a new one.
func (s *Store) Insert(ctx context.Context, session *auth.Session, record repository.Record) (*repository.Record, error) {
	userID, err := s.userFor(session)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, errors.NewAuthRequiredError("create a task")
	}
	if record.UserID == "" {
		record.UserID = userID
	}
	if record.UserID != userID {
		return nil, errors.NewBackendError("insert task", fmt.Errorf("new row violates ownership of user %s", userID))
	}

	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}
	query := `
	INSERT INTO tareas (id, titulo, descripcion, fecha_vencimiento, completed, user_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	err = Execute(ctx, s.db, query,
		id,
		record.Titulo,
		FormatStringPtrForDB(record.Descripcion),
		FormatStringPtrForDB(record.FechaVencimiento),
		record.Completed,
		record.UserID,
		FormatTimeForDB(s.now()),
	)
	if err != nil {
		return nil, err
	}

	return s.get(ctx, userID, id)
}

// Update applies changes to one of the caller's rows. A row that does not
// exist or belongs to someone else yields a not-found error.
func (s *Store) Update(ctx context.Context, session *auth.Session, id string, changes repository.Changes) (*repository.Record, error) {
	userID, err := s.userFor(session)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, errors.NewNotFoundError("task", id)
	}
	if len(changes) == 0 {
		return s.get(ctx, userID, id)
	}

	columns := make([]string, 0, len(changes))
	for column := range changes {
		if !updatableColumns[column] {
			return nil, errors.NewInvalidInputError("column", column, "not an updatable column")
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	assignments := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns)+2)
	for _, column := range columns {
		assignments = append(assignments, column+" = ?")
		args = append(args, changes[column])
	}
	args = append(args, id, userID)

	query := "UPDATE tareas SET " + strings.Join(assignments, ", ") + " WHERE id = ? AND user_id = ?"
	if err := ExecuteWithRowsAffected(ctx, s.db, query, "task", id, args...); err != nil {
		return nil, err
	}

	return s.get(ctx, userID, id)
}

// Delete removes one of the caller's rows permanently.
func (s *Store) Delete(ctx context.Context, session *auth.Session, id string) error {
	userID, err := s.userFor(session)
	if err != nil {
		return err
	}
	if userID == "" {
		return errors.NewNotFoundError("task", id)
	}

	query := `DELETE FROM tareas WHERE id = ? AND user_id = ?`
	return ExecuteWithRowsAffected(ctx, s.db, query, "task", id, id, userID)
}

func (s *Store) get(ctx context.Context, userID, id string) (*repository.Record, error) {
	query := "SELECT " + recordColumns + " FROM tareas WHERE id = ? AND user_id = ?"
	return QuerySingle(ctx, s.db, query, ScanRecord, "task", id, id, userID)
}

// escapeLike escapes LIKE wildcards so the text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
