package seed

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"task-manager/internal/password"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

func setupTargets(t *testing.T) (Targets, *repository.Store) {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "seed.db"), nil)
	require.NoError(t, err, "Failed to create test database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := discard()
	store := repository.NewStore(db)
	return Targets{
		Statuses: service.NewTaskStatusService(store, log),
		Labels:   service.NewLabelService(store, log),
		Users:    service.NewUserService(store, password.NewBcrypt(bcrypt.MinCost), log),
	}, store
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefault(t *testing.T) {
	t.Parallel()

	data, err := Default()
	require.NoError(t, err)

	want := []string{"draft", "to_review", "to_be_fixed", "to_publish", "published"}
	require.Len(t, data.Statuses, len(want))
	for i, slug := range want {
		assert.Equal(t, slug, data.Statuses[i].Slug, "status %d", i)
		assert.NotEmpty(t, data.Statuses[i].Name, "status %q should have a name", slug)
	}
	assert.Equal(t, []string{"feature", "bug"}, data.Labels)
	assert.Nil(t, data.Admin, "no admin by default")
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := `statuses:
  - name: Open
    slug: open
labels: [ops]
admin:
  first_name: Ada
  last_name: Admin
  email: ada@example.com
  password: s3cret
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	data, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Status{{Name: "Open", Slug: "open"}}, data.Statuses)
	require.NotNil(t, data.Admin)
	assert.Equal(t, "ada@example.com", data.Admin.Email)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "missing file")
	_, err = Parse([]byte("statuses: {"))
	assert.Error(t, err, "malformed YAML")
}

func TestApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	targets, store := setupTargets(t)
	data, err := Default()
	require.NoError(t, err)
	data.Admin = &Admin{FirstName: "Ada", LastName: "Admin", Email: "ada@example.com", Password: "s3cret"}

	first, err := Apply(context.Background(), data, targets, discard())
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 8}, first)

	second, err := Apply(context.Background(), data, targets, discard())
	require.NoError(t, err, "second run")
	assert.Equal(t, Result{Skipped: 8}, second)

	statuses, err := store.Statuses.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, statuses, 5)

	n, err := store.Users.CountByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestApplyStopsOnInvalidRow(t *testing.T) {
	t.Parallel()

	targets, _ := setupTargets(t)
	data := &Data{Labels: []string{"ok-label", "x"}}

	res, err := Apply(context.Background(), data, targets, discard())
	require.ErrorIs(t, err, service.ErrValidation, "short label")
	assert.Equal(t, Result{Created: 1}, res, "rows before the failure stay created")
}

// A new slug whose name belongs to another status is a conflict, not an
// already-seeded row.
func TestApplyReportsConflictWithOtherRow(t *testing.T) {
	t.Parallel()

	targets, store := setupTargets(t)
	ctx := context.Background()
	_, err := targets.Statuses.Create(ctx, service.TaskStatusCreate{Name: "Draft", Slug: "draft"})
	require.NoError(t, err)

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	data := &Data{Statuses: []Status{
		{Name: "Draft", Slug: "draft"},
		{Name: "Draft", Slug: "drafting"},
	}}

	res, err := Apply(ctx, data, targets, log)
	require.ErrorIs(t, err, service.ErrConstraintViolation)
	assert.Contains(t, err.Error(), `"drafting"`)
	assert.Equal(t, Result{Skipped: 1}, res, "only the row with its own slug counts as present")
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "key=drafting")

	_, err = store.Statuses.FindBySlug(ctx, "drafting")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
