package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"task-manager/internal/model"
	"task-manager/internal/password"
	"task-manager/internal/repository"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

type testEnv struct {
	store    *repository.Store
	statuses *TaskStatusService
	labels   *LabelService
	users    *UserService
	tasks    *TaskService
}

// setupTestEnv opens a fresh SQLite file with the real migrations.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "tasks.db"), nil)
	require.NoError(t, err, "Failed to create test database")
	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get sql.DB")
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewStore(db)
	return &testEnv{
		store:    store,
		statuses: NewTaskStatusService(store, log),
		labels:   NewLabelService(store, log),
		users:    NewUserService(store, password.NewBcrypt(bcrypt.MinCost), log),
		tasks:    NewTaskService(store, log),
	}
}

func (e *testEnv) status(t *testing.T, name, slug string) *model.TaskStatus {
	t.Helper()
	s, err := e.statuses.Create(context.Background(), TaskStatusCreate{Name: name, Slug: slug})
	require.NoError(t, err, "Failed to create status %q", slug)
	return s
}

func (e *testEnv) label(t *testing.T, name string) *model.Label {
	t.Helper()
	l, err := e.labels.Create(context.Background(), LabelCreate{Name: name})
	require.NoError(t, err, "Failed to create label %q", name)
	return l
}

func (e *testEnv) user(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), UserCreate{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "secret",
	})
	require.NoError(t, err, "Failed to create user %q", email)
	return u
}

func (e *testEnv) task(t *testing.T, in TaskCreate) *model.Task {
	t.Helper()
	task, err := e.tasks.CreateTask(context.Background(), in)
	require.NoError(t, err, "Failed to create task %q", in.Name)
	return task
}

func (e *testEnv) taskCount(t *testing.T) int64 {
	t.Helper()
	n, err := e.store.Tasks.Count(context.Background())
	require.NoError(t, err, "Failed to count tasks")
	return n
}

func ptr[T any](v T) *T { return &v }
