package migrations

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"todo-sync/internal/logging"
)

func init() {
	RegisterGoMigration(3, Up_000003_normalize_due_dates, Down_000003_normalize_due_dates)
}

// Up_000003_normalize_due_dates rewrites every fecha_vencimiento to the
// YYYY-MM-DD form. Rows imported from the mobile client carry full
// timestamps in several layouts:
// - RFC3339 with or without fractional seconds
// - JavaScript Date.toISOString() output (milliseconds, Z suffix)
// - Postgres timestamptz text ("2006-01-02 15:04:05+00")
// Values that cannot be parsed are left as they are.
func Up_000003_normalize_due_dates(tx *sql.Tx) error {
	type entry struct {
		id  string
		due string
	}
	var entries []entry

	rows, err := tx.Query("SELECT id, fecha_vencimiento FROM tareas WHERE fecha_vencimiento IS NOT NULL")
	if err != nil {
		return fmt.Errorf("failed to query due dates: %w", err)
	}
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.due); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan row %s: %w", e.id, err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error iterating due dates: %w", err)
	}
	rows.Close()

	stmt, err := tx.Prepare("UPDATE tareas SET fecha_vencimiento = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare due date update statement: %w", err)
	}
	defer stmt.Close()

	updates, skipped := 0, 0
	for _, e := range entries {
		if isDateOnly(e.due) {
			continue
		}
		normalized, err := normalizeDueDate(e.due)
		if err != nil {
			logging.Debugf("could not parse fecha_vencimiento for id %s: %v\n", e.id, err)
			skipped++
			continue
		}
		if _, err := stmt.Exec(normalized, e.id); err != nil {
			return fmt.Errorf("failed to update fecha_vencimiento for id %s: %w", e.id, err)
		}
		updates++
	}

	logging.Debugf("due date migration: %d rows, %d updated, %d skipped\n", len(entries), updates, skipped)
	return nil
}

// Down_000003_normalize_due_dates is a no-op: a calendar date is a valid
// value for the old column too.
func Down_000003_normalize_due_dates(tx *sql.Tx) error {
	return nil
}

// normalizeDueDate reduces a timestamp to its calendar day in the timestamp's
// own offset.
func normalizeDueDate(s string) (string, error) {
	s = strings.TrimSpace(s)

	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02 15:04:05.999999999-07",
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}

	return "", fmt.Errorf("could not parse date format: %s", s)
}

func isDateOnly(s string) bool {
	if len(s) != len("2006-01-02") {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
