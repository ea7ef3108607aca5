package api

import (
	"context"
	"sync"
	"time"

	"todo-sync/internal/auth"
	"todo-sync/internal/cache"
	"todo-sync/internal/domain"
	"todo-sync/internal/logging"
	"todo-sync/internal/services"
	"todo-sync/internal/validation"
)

// TaskAPI is the surface the UI layer talks to. Reads go through the task
// cache; writes go to the repository and then update or invalidate the cache.
type TaskAPI interface {
	// Session operations
	SignUp(ctx context.Context, email, password, name string) (*auth.Session, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context) error
	CurrentSession() *auth.Session

	// Task reads
	Tasks(ctx context.Context, query string) ([]*domain.Task, error)

	// Task writes
	CreateTask(ctx context.Context, input domain.TaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	ToggleComplete(ctx context.Context, id string) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error

	// Close ends the session subscription and waits for writes in flight.
	Close()
}

// SessionManager is the part of auth.Manager the API depends on.
type SessionManager interface {
	Subscribe() (<-chan auth.Event, func())
	Current() *auth.Session
	SignUp(ctx context.Context, email, password, name string) (*auth.Session, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context) error
}

// Option configures the API.
type Option func(*taskAPI)

// WithClock overrides the time source used for the completion rule.
func WithClock(now func() time.Time) Option {
	return func(a *taskAPI) { a.now = now }
}

// WithTaskValidator sets the validator applied before a placeholder is shown.
func WithTaskValidator(v *validation.TaskValidator) Option {
	return func(a *taskAPI) { a.validator = v }
}

// WithWriteTimeout bounds a write once it has been detached from its caller.
func WithWriteTimeout(d time.Duration) Option {
	return func(a *taskAPI) { a.writeTimeout = d }
}

const defaultWriteTimeout = 60 * time.Second

type taskAPI struct {
	service      services.TaskService
	cache        *cache.TaskCache
	sessions     SessionManager
	validator    *validation.TaskValidator
	now          func() time.Time
	writeTimeout time.Duration

	unsubscribe func()
	closeOnce   sync.Once
	watchDone   chan struct{}
	writes      sync.WaitGroup
}

// New creates the API and subscribes it to session changes. Whenever the
// signed-in user changes the cache is reset, so one user's list is never
// shown to another.
func New(service services.TaskService, taskCache *cache.TaskCache, sessions SessionManager, opts ...Option) TaskAPI {
	a := &taskAPI{
		service:      service,
		cache:        taskCache,
		sessions:     sessions,
		validator:    validation.NewTaskValidator(),
		now:          time.Now,
		writeTimeout: defaultWriteTimeout,
		watchDone:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	events, unsubscribe := sessions.Subscribe()
	a.unsubscribe = unsubscribe
	// The first event describes the session the cache starts out with.
	first := <-events
	go a.watchSessions(events, userOf(first.Session))
	return a
}

func (a *taskAPI) watchSessions(events <-chan auth.Event, user string) {
	defer close(a.watchDone)
	for ev := range events {
		next := userOf(ev.Session)
		if next == user {
			logging.Logger().Debug("session event kept cache", "kind", ev.Kind, "user", next)
			continue
		}
		logging.Logger().Debug("session changed, resetting cache", "kind", ev.Kind, "from", user, "to", next)
		user = next
		a.cache.Reset()
	}
}

func userOf(s *auth.Session) string {
	if s == nil {
		return ""
	}
	return s.UserID
}

// Close implements TaskAPI. It is safe to call more than once.
func (a *taskAPI) Close() {
	a.closeOnce.Do(func() {
		a.unsubscribe()
		<-a.watchDone
		a.writes.Wait()
	})
}

// SignUp implements TaskAPI.
func (a *taskAPI) SignUp(ctx context.Context, email, password, name string) (*auth.Session, error) {
	return a.sessions.SignUp(ctx, email, password, name)
}

// SignIn implements TaskAPI.
func (a *taskAPI) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	return a.sessions.SignIn(ctx, email, password)
}

// SignOut implements TaskAPI.
func (a *taskAPI) SignOut(ctx context.Context) error {
	return a.sessions.SignOut(ctx)
}

// CurrentSession implements TaskAPI.
func (a *taskAPI) CurrentSession() *auth.Session {
	return a.sessions.Current()
}
