package supabase

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strings"

	"todo-sync/internal/auth"
	"todo-sync/internal/errors"
	"todo-sync/internal/repository"
)

const returnRepresentation = "return=representation"

func (c *Client) tablePath() string {
	return "/rest/v1/" + c.table
}

func tokenOf(session *auth.Session) string {
	if session == nil {
		return ""
	}
	return session.AccessToken
}

// Select reads rows visible to the session, oldest first.
func (c *Client) Select(ctx context.Context, session *auth.Session, filter repository.Filter) ([]*repository.Record, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", repository.ColumnCreatedAt+".asc")
	if filter.ID != "" {
		q.Set(repository.ColumnID, "eq."+filter.ID)
	}
	if filter.UserID != "" {
		q.Set(repository.ColumnUserID, "eq."+filter.UserID)
	}
	if text := strings.TrimSpace(filter.Text); text != "" {
		pattern := quoteValue("*" + text + "*")
		q.Set("or", "("+repository.ColumnTitle+".ilike."+pattern+","+repository.ColumnDescription+".ilike."+pattern+")")
	}

	records := make([]*repository.Record, 0)
	err := c.do(ctx, request{method: http.MethodGet, path: c.tablePath(), query: q, token: tokenOf(session)}, &records)
	if err != nil {
		return nil, c.mapError("list tasks", filter.ID, err)
	}
	return records, nil
}

// Insert creates a row and returns it as stored. An empty id is left for the
// table default to fill.
func (c *Client) Insert(ctx context.Context, session *auth.Session, record repository.Record) (*repository.Record, error) {
	record.CreatedAt = nil

	var rows []*repository.Record
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   c.tablePath(),
		body:   record,
		token:  tokenOf(session),
		prefer: returnRepresentation,
	}, &rows)
	if err != nil {
		return nil, c.mapError("create task", "", err)
	}
	if len(rows) == 0 {
		return nil, errors.NewBackendError("create task", stderrors.New("insert returned no row"))
	}
	return rows[0], nil
}

// Update patches one row. No matching row, whether missing or hidden by
// row-level security, is a not-found error.
func (c *Client) Update(ctx context.Context, session *auth.Session, id string, changes repository.Changes) (*repository.Record, error) {
	q := url.Values{}
	q.Set(repository.ColumnID, "eq."+id)

	var rows []*repository.Record
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   c.tablePath(),
		query:  q,
		body:   changes,
		token:  tokenOf(session),
		prefer: returnRepresentation,
	}, &rows)
	if err != nil {
		return nil, c.mapError("update task", id, err)
	}
	if len(rows) == 0 {
		return nil, errors.NewNotFoundError("task", id)
	}
	return rows[0], nil
}

// Delete removes one row permanently.
func (c *Client) Delete(ctx context.Context, session *auth.Session, id string) error {
	q := url.Values{}
	q.Set(repository.ColumnID, "eq."+id)

	var rows []*repository.Record
	err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   c.tablePath(),
		query:  q,
		token:  tokenOf(session),
		prefer: returnRepresentation,
	}, &rows)
	if err != nil {
		return c.mapError("delete task", id, err)
	}
	if len(rows) == 0 {
		return errors.NewNotFoundError("task", id)
	}
	return nil
}

func (c *Client) mapError(operation, id string, err error) error {
	var se *StatusError
	if stderrors.As(err, &se) {
		return mapStatus(operation, id, se)
	}
	return errors.FromTransport(operation, err)
}

// quoteValue double-quotes a PostgREST filter value so commas and
// parentheses inside it are not read as syntax.
func quoteValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}
