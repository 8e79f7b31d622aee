package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/internal/filter"
	"task-manager/internal/model"
	"task-manager/internal/optional"
)

func sampleTask() model.Task {
	assigneeID := uint(7)
	return model.Task{
		ID:          3,
		Name:        "bugfix",
		Index:       ptr(12),
		Description: "fix the login page",
		StatusID:    2,
		Status:      model.TaskStatus{ID: 2, Name: "Draft", Slug: "draft"},
		AssigneeID:  &assigneeID,
		Assignee:    &model.User{ID: 7, Email: "jack@example.com"},
		Labels:      []model.Label{{ID: 1, Name: "bug"}, {ID: 2, Name: "feature"}},
		CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestMergeTaskEmptyChangeSetIsIdentity(t *testing.T) {
	t.Parallel()

	original := sampleTask()
	merged := mergeTask(original, TaskUpdate{}, taskRefs{})

	assert.Equal(t, original, merged)
}

func TestMergeTaskFieldIsolation(t *testing.T) {
	t.Parallel()

	review := &model.TaskStatus{ID: 5, Name: "To review", Slug: "to_review"}
	jill := &model.User{ID: 9, Email: "jill@example.com"}
	docs := []model.Label{{ID: 4, Name: "docs"}}

	testCases := []struct {
		name   string
		update TaskUpdate
		refs   taskRefs
		apply  func(*model.Task)
	}{
		{
			name:   "name",
			update: TaskUpdate{Name: optional.Of("feature")},
			apply:  func(t *model.Task) { t.Name = "feature" },
		},
		{
			name:   "index",
			update: TaskUpdate{Index: optional.Of(1)},
			apply:  func(t *model.Task) { t.Index = ptr(1) },
		},
		{
			name:   "index cleared",
			update: TaskUpdate{Index: optional.Null[int]()},
			apply:  func(t *model.Task) { t.Index = nil },
		},
		{
			name:   "description cleared",
			update: TaskUpdate{Description: optional.Null[string]()},
			apply:  func(t *model.Task) { t.Description = "" },
		},
		{
			name:   "status",
			update: TaskUpdate{Status: optional.Of("to_review")},
			refs:   taskRefs{status: review},
			apply:  func(t *model.Task) { t.StatusID = 5; t.Status = *review },
		},
		{
			name:   "assignee",
			update: TaskUpdate{AssigneeID: optional.Of(uint(9))},
			refs:   taskRefs{assignee: jill, assigneeSet: true},
			apply:  func(t *model.Task) { t.AssigneeID = ptr(uint(9)); t.Assignee = jill },
		},
		{
			name:   "assignee cleared",
			update: TaskUpdate{AssigneeID: optional.Null[uint]()},
			refs:   taskRefs{assigneeSet: true},
			apply:  func(t *model.Task) { t.AssigneeID = nil; t.Assignee = nil },
		},
		{
			name:   "labels replaced",
			update: TaskUpdate{LabelIDs: optional.Of([]uint{4})},
			refs:   taskRefs{labels: docs, labelsSet: true},
			apply:  func(t *model.Task) { t.Labels = docs },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			original := sampleTask()
			want := sampleTask()
			tc.apply(&want)

			merged := mergeTask(original, tc.update, tc.refs)
			assert.Equal(t, want, merged)
			assert.Equal(t, sampleTask(), original, "merge must not modify its input")
		})
	}
}

func TestTaskUpdateValidateCollectsEveryField(t *testing.T) {
	t.Parallel()

	err := TaskUpdate{Name: optional.Of("  "), Status: optional.Null[string]()}.validate()

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, FieldError{Field: "title", Reason: ReasonBlank})
	assert.Contains(t, vErr.Fields, FieldError{Field: "status", Reason: ReasonNull})
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	draft := env.status(t, "Draft", "draft")
	user := env.user(t, "jack@example.com")
	bug := env.label(t, "bug")
	feature := env.label(t, "feature")

	task := env.task(t, TaskCreate{
		Index:       ptr(3),
		AssigneeID:  user.ID,
		Name:        "bugfix",
		Description: "fix it",
		Status:      "draft",
		LabelIDs:    []uint{feature.ID, bug.ID},
	})

	require.NotZero(t, task.ID)
	assert.Equal(t, draft.ID, task.StatusID)
	assert.Equal(t, draft.ID, task.Status.ID)
	require.NotNil(t, task.AssigneeID)
	assert.Equal(t, user.ID, *task.AssigneeID)
	assert.NotNil(t, task.Assignee)
	assert.Equal(t, []uint{bug.ID, feature.ID}, task.LabelIDs())
	assert.Equal(t, ptr(3), task.Index)
	assert.False(t, task.CreatedAt.IsZero(), "CreatedAt should be set")
}

func TestCreateTaskWithoutAssigneeOrLabels(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	env.status(t, "Draft", "draft")

	task := env.task(t, TaskCreate{Name: "plain", Status: "draft"})
	assert.Nil(t, task.AssigneeID)
	assert.Nil(t, task.Assignee)
	assert.Empty(t, task.Labels)
}

func TestCreateTaskUnknownStatus(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	env.status(t, "Draft", "draft")

	_, err := env.tasks.CreateTask(context.Background(), TaskCreate{Name: "bugfix", Status: "in_progress"})

	var refErr *ReferenceNotFoundError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, &ReferenceNotFoundError{Kind: KindStatus, Key: "in_progress"}, refErr)
	assert.Zero(t, env.taskCount(t))
}

func TestCreateTaskUnknownReferencesCreateNothing(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	env.status(t, "Draft", "draft")
	bug := env.label(t, "bug")

	var refErr *ReferenceNotFoundError

	_, err := env.tasks.CreateTask(context.Background(), TaskCreate{Name: "a", Status: "draft", AssigneeID: 42})
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, &ReferenceNotFoundError{Kind: KindUser, Key: "42"}, refErr)

	_, err = env.tasks.CreateTask(context.Background(), TaskCreate{Name: "b", Status: "draft", LabelIDs: []uint{bug.ID, 77}})
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, &ReferenceNotFoundError{Kind: KindLabel, Key: "77"}, refErr)

	assert.Zero(t, env.taskCount(t))
}

func TestCreateTaskValidation(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)

	_, err := env.tasks.CreateTask(context.Background(), TaskCreate{Name: " ", Status: ""})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, FieldError{Field: "title", Reason: ReasonBlank})
	assert.Contains(t, vErr.Fields, FieldError{Field: "status", Reason: ReasonBlank})
}

func TestUpdateTaskInvalidLabelLeavesLabelsUnchanged(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	env.status(t, "Draft", "draft")
	l1 := env.label(t, "first")
	l2 := env.label(t, "second")
	task := env.task(t, TaskCreate{Name: "bugfix", Status: "draft", LabelIDs: []uint{l1.ID, l2.ID}})

	missing := l2.ID + 10
	_, err := env.tasks.UpdateTask(context.Background(), task.ID, TaskUpdate{
		Name:     optional.Of("renamed"),
		LabelIDs: optional.Of([]uint{l1.ID, missing}),
	})
	require.ErrorIs(t, err, ErrReferenceNotFound)

	reloaded, err := env.tasks.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{l1.ID, l2.ID}, reloaded.LabelIDs(), "labels should be unchanged")
	assert.Equal(t, "bugfix", reloaded.Name, "name should be unchanged")
}

func TestUpdateTaskReplacesLabelSet(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	env.status(t, "Draft", "draft")
	l1 := env.label(t, "first")
	l2 := env.label(t, "second")
	l3 := env.label(t, "third")
	task := env.task(t, TaskCreate{Name: "bugfix", Status: "draft", LabelIDs: []uint{l1.ID, l2.ID}})

	updated, err := env.tasks.UpdateTask(context.Background(), task.ID, TaskUpdate{
		LabelIDs: optional.Of([]uint{l3.ID, l1.ID}),
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{l1.ID, l3.ID}, updated.LabelIDs())

	cleared, err := env.tasks.UpdateTask(context.Background(), task.ID, TaskUpdate{
		LabelIDs: optional.Of([]uint{}),
	})
	require.NoError(t, err)
	assert.Empty(t, cleared.Labels)

	// labels themselves survive being detached
	_, err = env.labels.Get(context.Background(), l2.ID)
	assert.NoError(t, err)
}

func TestUpdateTaskSingleFieldKeepsOthers(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	env.status(t, "Draft", "draft")
	review := env.status(t, "To review", "to_review")
	user := env.user(t, "jack@example.com")
	bug := env.label(t, "bug")
	task := env.task(t, TaskCreate{
		Index:       ptr(4),
		AssigneeID:  user.ID,
		Name:        "bugfix",
		Description: "desc",
		Status:      "draft",
		LabelIDs:    []uint{bug.ID},
	})

	updated, err := env.tasks.UpdateTask(context.Background(), task.ID, TaskUpdate{Status: optional.Of("to_review")})
	require.NoError(t, err)

	assert.Equal(t, review.ID, updated.StatusID)
	assert.Equal(t, "to_review", updated.Status.Slug)
	assert.Equal(t, task.Name, updated.Name)
	assert.Equal(t, task.Description, updated.Description)
	assert.Equal(t, ptr(4), updated.Index)
	assert.Equal(t, ptr(user.ID), updated.AssigneeID)
	assert.Equal(t, []uint{bug.ID}, updated.LabelIDs())
	assert.True(t, updated.CreatedAt.Equal(task.CreatedAt), "CreatedAt should be unchanged")
}

func TestUpdateTaskClearsAssignee(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	env.status(t, "Draft", "draft")
	user := env.user(t, "jack@example.com")
	task := env.task(t, TaskCreate{Name: "bugfix", Status: "draft", AssigneeID: user.ID})

	updated, err := env.tasks.UpdateTask(context.Background(), task.ID, TaskUpdate{AssigneeID: optional.Null[uint]()})
	require.NoError(t, err)
	assert.Nil(t, updated.AssigneeID)
	assert.Nil(t, updated.Assignee)
}

func TestUpdateTaskErrors(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	env.status(t, "Draft", "draft")
	task := env.task(t, TaskCreate{Name: "bugfix", Status: "draft"})

	_, err := env.tasks.UpdateTask(context.Background(), task.ID+1, TaskUpdate{Name: optional.Of("x")})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, &NotFoundError{Kind: KindTask, ID: task.ID + 1}, nf)

	var refErr *ReferenceNotFoundError
	_, err = env.tasks.UpdateTask(context.Background(), task.ID, TaskUpdate{Status: optional.Of("published")})
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, &ReferenceNotFoundError{Kind: KindStatus, Key: "published"}, refErr)

	_, err = env.tasks.UpdateTask(context.Background(), task.ID, TaskUpdate{AssigneeID: optional.Of(uint(5))})
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, &ReferenceNotFoundError{Kind: KindUser, Key: "5"}, refErr)

	_, err = env.tasks.UpdateTask(context.Background(), task.ID, TaskUpdate{Name: optional.Of("")})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, FieldError{Field: "title", Reason: ReasonBlank})

	reloaded, err := env.tasks.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "bugfix", reloaded.Name)
	assert.Equal(t, "draft", reloaded.Status.Slug)
	assert.Nil(t, reloaded.AssigneeID)
}

func TestDeleteTaskKeepsReferencedRows(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	ctx := context.Background()
	draft := env.status(t, "Draft", "draft")
	user := env.user(t, "jack@example.com")
	bug := env.label(t, "bug")
	task := env.task(t, TaskCreate{Name: "bugfix", Status: "draft", AssigneeID: user.ID, LabelIDs: []uint{bug.ID}})

	require.NoError(t, env.tasks.DeleteTask(ctx, task.ID))

	_, err := env.tasks.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.tasks.DeleteTask(ctx, task.ID), ErrNotFound, "second delete")

	_, err = env.statuses.Get(ctx, draft.ID)
	assert.NoError(t, err, "status should remain")
	_, err = env.users.Get(ctx, user.ID)
	assert.NoError(t, err, "user should remain")
	_, err = env.labels.Get(ctx, bug.ID)
	assert.NoError(t, err, "label should remain")

	// with the task gone nothing references them any more
	assert.NoError(t, env.labels.Delete(ctx, bug.ID))
}

func taskNames(tasks []model.Task) []string {
	names := make([]string, 0, len(tasks))
	for _, task := range tasks {
		names = append(names, task.Name)
	}
	return names
}

func TestListTasksTitleAndAssignee(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	env.status(t, "Draft", "draft")
	var users []uint
	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io", "d@x.io", "e@x.io", "f@x.io", "g@x.io"} {
		users = append(users, env.user(t, email).ID)
	}
	u3, u7 := users[2], users[6]

	env.task(t, TaskCreate{Name: "bugfix", Status: "draft", AssigneeID: u3})
	env.task(t, TaskCreate{Name: "BugFix", Status: "draft", AssigneeID: u7})
	env.task(t, TaskCreate{Name: "feature", Status: "draft", AssigneeID: u7})

	tasks, err := env.tasks.ListTasks(context.Background(), filter.TaskParams{TitleCont: "bug", AssigneeID: u7})
	require.NoError(t, err)
	assert.Equal(t, []string{"BugFix"}, taskNames(tasks))

	all, err := env.tasks.ListTasks(context.Background(), filter.TaskParams{})
	require.NoError(t, err)
	assert.Len(t, all, 3, "no filters lists every task")
}

func TestListTasksTitleIgnoresCaseBeyondASCII(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	env.status(t, "Draft", "draft")
	env.task(t, TaskCreate{Name: "Ошибка входа", Status: "draft"})
	env.task(t, TaskCreate{Name: "Émile's ÜBER task", Status: "draft"})
	env.task(t, TaskCreate{Name: "plain ascii", Status: "draft"})

	testCases := []struct {
		needle string
		want   []string
	}{
		{"Ошибка", []string{"Ошибка входа"}},
		{"ошибка", []string{"Ошибка входа"}},
		{"ОШИБКА ВХОДА", []string{"Ошибка входа"}},
		{"входа", []string{"Ошибка входа"}},
		{"émile", []string{"Émile's ÜBER task"}},
		{"über", []string{"Émile's ÜBER task"}},
		{"ASCII", []string{"plain ascii"}},
		{"ошибкa", []string{}}, // latin "a" at the end
	}

	for _, tc := range testCases {
		t.Run(tc.needle, func(t *testing.T) {
			tasks, err := env.tasks.ListTasks(context.Background(), filter.TaskParams{TitleCont: tc.needle})
			require.NoError(t, err)
			assert.Equal(t, tc.want, taskNames(tasks))
		})
	}
}

// TestListTasksComposability checks every subset of criteria against tasks
// that each miss exactly one criterion.
func TestListTasksComposability(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	env.status(t, "Draft", "draft")
	env.status(t, "Published", "published")
	alice := env.user(t, "alice@x.io")
	bob := env.user(t, "bob@x.io")
	bug := env.label(t, "bug")
	feature := env.label(t, "feature")

	base := TaskCreate{Name: "fix crash", Status: "draft", AssigneeID: alice.ID, LabelIDs: []uint{bug.ID}}
	variants := map[string]TaskCreate{
		"all":         base,
		"no title":    {Name: "refactor", Status: base.Status, AssigneeID: base.AssigneeID, LabelIDs: base.LabelIDs},
		"no assignee": {Name: "fix typo", Status: base.Status, AssigneeID: bob.ID, LabelIDs: base.LabelIDs},
		"no status":   {Name: "fix docs", Status: "published", AssigneeID: base.AssigneeID, LabelIDs: base.LabelIDs},
		"no label":    {Name: "fix build", Status: base.Status, AssigneeID: base.AssigneeID, LabelIDs: []uint{feature.ID}},
		"unassigned":  {Name: "fix css", Status: base.Status, LabelIDs: base.LabelIDs},
	}
	for _, in := range variants {
		env.task(t, in)
	}

	all, err := env.tasks.ListTasks(context.Background(), filter.TaskParams{})
	require.NoError(t, err)

	full := filter.TaskParams{TitleCont: "FIX", AssigneeID: alice.ID, Status: "draft", LabelID: bug.ID}
	for mask := 0; mask < 16; mask++ {
		var params filter.TaskParams
		if mask&1 != 0 {
			params.TitleCont = full.TitleCont
		}
		if mask&2 != 0 {
			params.AssigneeID = full.AssigneeID
		}
		if mask&4 != 0 {
			params.Status = full.Status
		}
		if mask&8 != 0 {
			params.LabelID = full.LabelID
		}

		got, err := env.tasks.ListTasks(context.Background(), params)
		require.NoError(t, err, "mask %04b", mask)

		spec := filter.Build(params)
		want := []string{}
		for i := range all {
			if spec.Match(&all[i]) {
				want = append(want, all[i].Name)
			}
		}
		assert.Equal(t, want, taskNames(got), "mask %04b", mask)
	}

	got, err := env.tasks.ListTasks(context.Background(), full)
	require.NoError(t, err)
	assert.Equal(t, []string{"fix crash"}, taskNames(got), "only the task matching every criterion")
}
