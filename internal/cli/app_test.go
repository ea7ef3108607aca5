package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-sync/internal/domain"
	"todo-sync/internal/errors"
)

// freezeTime pins timeNow to noon on the given day for the test.
func freezeTime(t *testing.T, day string) domain.Date {
	t.Helper()
	d := domain.MustParseDate(day)
	orig := timeNow
	timeNow = func() time.Time { return d.Time(time.Local).Add(12 * time.Hour) }
	t.Cleanup(func() { timeNow = orig })
	return d
}

func datePtr(d domain.Date) *domain.Date {
	return &d
}

func TestApp_Run(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "empty args",
			args:    []string{},
			wantErr: "usage: todo <command>",
		},
		{
			name:    "unknown command",
			args:    []string{"start", "Task"},
			wantErr: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, _ := setupTestAppWithMockAPI(t, "")
			err := app.Run(context.Background(), tt.args)
			require.Error(t, err)
			assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApp_RunDispatchesToCommand(t *testing.T) {
	app, mock, out := setupTestAppWithMockAPI(t, "")
	mock.add("Buy milk", nil, false)

	err := app.Run(context.Background(), []string{"list"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Buy milk")
	assert.Equal(t, []string{""}, mock.queries)
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		keys           []string
		wantPositional []string
		wantOptions    map[string]string
	}{
		{
			name:           "no options",
			args:           []string{"Buy", "milk"},
			keys:           []string{"due"},
			wantPositional: []string{"Buy", "milk"},
			wantOptions:    map[string]string{},
		},
		{
			name:           "known options are split off",
			args:           []string{"Buy", "due=2030-01-02", "desc=two litres"},
			keys:           []string{"due", "desc"},
			wantPositional: []string{"Buy"},
			wantOptions:    map[string]string{"due": "2030-01-02", "desc": "two litres"},
		},
		{
			name:           "empty value is kept",
			args:           []string{"3", "due="},
			keys:           []string{"due"},
			wantPositional: []string{"3"},
			wantOptions:    map[string]string{"due": ""},
		},
		{
			name:           "unknown key stays positional",
			args:           []string{"a=b", "title=x"},
			keys:           []string{"due"},
			wantPositional: []string{"a=b", "title=x"},
			wantOptions:    map[string]string{},
		},
		{
			name:           "value may contain equals",
			args:           []string{"desc=x=y"},
			keys:           []string{"desc"},
			wantPositional: nil,
			wantOptions:    map[string]string{"desc": "x=y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positional, options := parseOptions(tt.args, tt.keys...)
			assert.Equal(t, tt.wantPositional, positional)
			assert.Equal(t, tt.wantOptions, options)
		})
	}
}

func TestApp_ResolveTask(t *testing.T) {
	app, mock, _ := setupTestAppWithMockAPI(t, "")
	first := mock.add("First", nil, false)
	second := mock.add("Second", nil, false)

	tests := []struct {
		name     string
		ref      string
		wantID   string
		wantErr  bool
		wantType errors.ErrorType
	}{
		{name: "by number", ref: "1", wantID: first.ID},
		{name: "by number with spaces", ref: " 2 ", wantID: second.ID},
		{name: "by id", ref: second.ID, wantID: second.ID},
		{name: "number out of range", ref: "3", wantErr: true, wantType: errors.ErrorTypeInvalidInput},
		{name: "zero", ref: "0", wantErr: true, wantType: errors.ErrorTypeInvalidInput},
		{name: "empty", ref: "", wantErr: true, wantType: errors.ErrorTypeInvalidInput},
		{name: "unknown id", ref: "task-99", wantErr: true, wantType: errors.ErrorTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := app.resolveTask(context.Background(), tt.ref)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorType(err, tt.wantType), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, task.ID)
		})
	}
}

func TestApp_Prompt(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		want    string
		wantErr bool
	}{
		{name: "line", stdin: "secret1\nrest\n", want: "secret1"},
		{name: "crlf", stdin: "secret1\r\n", want: "secret1"},
		{name: "last line without newline", stdin: "secret1", want: "secret1"},
		{name: "no input", stdin: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, out := setupTestAppWithMockAPI(t, tt.stdin)
			got, err := app.prompt("Password: ")
			assert.Equal(t, "Password: ", out.String())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderTasks(t *testing.T) {
	today := freezeTime(t, "2030-06-10")
	desc := "two litres"
	tasks := []*domain.Task{
		{ID: "a", Title: "Buy milk", Description: &desc, DueDate: datePtr(today)},
		{ID: "b", Title: "Pay rent", DueDate: datePtr(today.AddDays(-1))},
		{ID: "c", Title: "Call Bo", DueDate: datePtr(today.AddDays(-1)), Completed: true},
	}

	t.Run("numbered", func(t *testing.T) {
		var buf bytes.Buffer
		renderTasks(&buf, NewStyles(&buf, false), tasks, timeNow(), "2006-01-02", true)

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, "  1. [ ] Buy milk  due 2030-06-10  a", lines[0])
		assert.Equal(t, "     two litres", lines[1])
		assert.Equal(t, "  2. [ ] Pay rent  due 2030-06-09  (overdue)  b", lines[2])
		assert.Equal(t, "  3. [x] Call Bo  due 2030-06-09  c", lines[3])
	})

	t.Run("bulleted with date format", func(t *testing.T) {
		var buf bytes.Buffer
		renderTasks(&buf, NewStyles(&buf, false), tasks[1:2], timeNow(), "02/01/2006", false)
		assert.Equal(t, "   - [ ] Pay rent  due 09/06/2030  (overdue)  b\n", buf.String())
	})
}

func TestStyles_ForBucket(t *testing.T) {
	var buf bytes.Buffer
	s := NewStyles(&buf, true)
	assert.Equal(t, s.Overdue, s.ForBucket(domain.BucketOverdue))
	assert.Equal(t, s.Completed, s.ForBucket(domain.BucketCompleted))
	assert.Equal(t, s.Normal, s.ForBucket(domain.BucketNormal))
}
