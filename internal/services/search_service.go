package services

import (
	"context"
	"strings"

	"todo-sync/internal/domain"
	"todo-sync/internal/repository"
)

// SearchTasks matches query against title or description, ignoring case. A
// blank query is the same as ListTasks.
func (t *taskServiceImpl) SearchTasks(ctx context.Context, query string) ([]*domain.Task, error) {
	text := strings.TrimSpace(query)
	if text == "" {
		return t.ListTasks(ctx)
	}
	return t.selectTasks(ctx, "search tasks", repository.Filter{Text: text})
}
