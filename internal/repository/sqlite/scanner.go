package sqlite

import (
	"database/sql"

	"todo-sync/internal/repository"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// recordColumns is the select list matching ScanRecord
const recordColumns = "id, titulo, descripcion, fecha_vencimiento, completed, user_id, created_at"

// ScanRecord scans a single task row
func ScanRecord(scanner Scanner) (*repository.Record, error) {
	record := &repository.Record{}
	var description, due sql.NullString
	var createdAt string

	err := scanner.Scan(
		&record.ID,
		&record.Titulo,
		&description,
		&due,
		&record.Completed,
		&record.UserID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		record.Descripcion = &description.String
	}
	if due.Valid {
		record.FechaVencimiento = &due.String
	}
	if createdAt != "" {
		t, err := ParseTimeFromDB(createdAt)
		if err != nil {
			return nil, err
		}
		record.CreatedAt = &t
	}

	return record, nil
}

// ScanRecords scans multiple task rows. The result is never nil.
func ScanRecords(rows Rows) ([]*repository.Record, error) {
	records := make([]*repository.Record, 0)
	for rows.Next() {
		record, err := ScanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// scanUser scans a single user row
func scanUser(scanner Scanner) (*userRow, error) {
	user := &userRow{}
	var createdAt string
	if err := scanner.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &createdAt); err != nil {
		return nil, err
	}
	t, err := ParseTimeFromDB(createdAt)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = t
	return user, nil
}

// scanRefreshToken scans a single refresh token row
func scanRefreshToken(scanner Scanner) (*refreshTokenRow, error) {
	token := &refreshTokenRow{}
	var expiresAt string
	if err := scanner.Scan(&token.ID, &token.UserID, &expiresAt, &token.Revoked); err != nil {
		return nil, err
	}
	t, err := ParseTimeFromDB(expiresAt)
	if err != nil {
		return nil, err
	}
	token.ExpiresAt = t
	return token, nil
}
