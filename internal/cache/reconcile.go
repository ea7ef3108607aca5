package cache

import (
	"strings"

	"todo-sync/internal/domain"
)

// PlaceholderPrefix starts the temporary id of an optimistic task.
const PlaceholderPrefix = "optimistic-"

// IsPlaceholder reports whether id belongs to an unconfirmed task.
func IsPlaceholder(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}

// StoredID returns the id the store gives the task behind a placeholder.
func StoredID(placeholderID string) string {
	return strings.TrimPrefix(placeholderID, PlaceholderPrefix)
}

// Reconcile resolves one optimistic placeholder in state and returns the new
// state; state itself is not modified.
//
// With a confirmed task, the placeholder is replaced in place by it. If the
// confirmed id is already in state, as after a refetch that saw the new row,
// the placeholder is dropped instead so the task never appears twice.
//
// With a nil confirmed task the placeholder is removed and every other
// element keeps its position.
func Reconcile(state []*domain.Task, placeholderID string, confirmed *domain.Task) []*domain.Task {
	out := make([]*domain.Task, 0, len(state)+1)

	present := false
	if confirmed != nil {
		for _, t := range state {
			if t.ID == confirmed.ID {
				present = true
				break
			}
		}
	}

	replaced := false
	for _, t := range state {
		if t.ID != placeholderID {
			out = append(out, t)
			continue
		}
		if confirmed != nil && !present && !replaced {
			out = append(out, confirmed)
			replaced = true
		}
	}

	if confirmed != nil && !present && !replaced {
		out = append(out, confirmed)
	}
	return out
}
