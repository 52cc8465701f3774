package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrelmts/taskhive/internal/database/testutil"
	"github.com/andrelmts/taskhive/internal/models"
)

func newTaskFixture(t *testing.T) (*gorm.DB, *TaskService, *models.Project) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	svc, err := NewTaskService(db)
	require.NoError(t, err)

	owner := createTestUser(t, db, "owner@example.com")
	workspace := createTestWorkspace(t, db, owner)
	project := createTestProject(t, db, workspace.ID)
	return db, svc, project
}

func TestTaskServiceCreateAssignsPositions(t *testing.T) {
	_, svc, project := newTaskFixture(t)

	first, err := svc.Create(context.Background(), project.ID, CreateTaskInput{Title: "Design review"})
	require.NoError(t, err)
	require.Equal(t, 0, first.Position)
	require.Equal(t, models.TaskTodo, first.Status)
	require.Equal(t, models.PriorityMedium, first.Priority)

	second, err := svc.Create(context.Background(), project.ID, CreateTaskInput{
		Title:    "Ship it",
		Priority: models.PriorityHigh,
	})
	require.NoError(t, err)
	require.Equal(t, 1, second.Position)
	require.Equal(t, models.PriorityHigh, second.Priority)

	_, err = svc.Create(context.Background(), project.ID, CreateTaskInput{Title: "   "})
	require.Error(t, err)
	_, err = svc.Create(context.Background(), project.ID, CreateTaskInput{Title: "Bad", Priority: "urgent"})
	require.Error(t, err)
}

func TestTaskServiceListFilters(t *testing.T) {
	db, svc, project := newTaskFixture(t)

	assignee := createTestUser(t, db, "dev@example.com")

	a, err := svc.Create(context.Background(), project.ID, CreateTaskInput{Title: "A"})
	require.NoError(t, err)
	b, err := svc.Create(context.Background(), project.ID, CreateTaskInput{Title: "B", AssigneeID: &assignee.ID})
	require.NoError(t, err)

	_, err = svc.Move(context.Background(), project.ID, a.ID, models.TaskInProgress, 5)
	require.NoError(t, err)

	all, err := svc.List(context.Background(), project.ID, TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Ordered by position, so B (position 1) now precedes A (position 5).
	require.Equal(t, b.ID, all[0].ID)

	inProgress, err := svc.List(context.Background(), project.ID, TaskFilter{Status: models.TaskInProgress})
	require.NoError(t, err)
	require.Len(t, inProgress, 1)
	require.Equal(t, a.ID, inProgress[0].ID)

	mine, err := svc.List(context.Background(), project.ID, TaskFilter{AssigneeID: &assignee.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, b.ID, mine[0].ID)
}

func TestTaskServiceUpdateAndMove(t *testing.T) {
	db, svc, project := newTaskFixture(t)

	sprintSvc, err := NewSprintService(db)
	require.NoError(t, err)
	sprint, err := sprintSvc.Create(context.Background(), project.ID, CreateSprintInput{Name: "Sprint 1"})
	require.NoError(t, err)

	task, err := svc.Create(context.Background(), project.ID, CreateTaskInput{Title: "Build"})
	require.NoError(t, err)

	title := "Build the thing"
	updated, err := svc.Update(context.Background(), project.ID, task.ID, UpdateTaskInput{
		Title:    &title,
		SprintID: &sprint.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "Build the thing", updated.Title)
	require.NotNil(t, updated.SprintID)
	require.Equal(t, sprint.ID, *updated.SprintID)

	// Clearing the sprint sends the task back to the backlog.
	empty := ""
	updated, err = svc.Update(context.Background(), project.ID, task.ID, UpdateTaskInput{SprintID: &empty})
	require.NoError(t, err)
	require.Nil(t, updated.SprintID)

	moved, err := svc.Move(context.Background(), project.ID, task.ID, models.TaskDone, 3)
	require.NoError(t, err)
	require.Equal(t, models.TaskDone, moved.Status)
	require.Equal(t, 3, moved.Position)

	_, err = svc.Move(context.Background(), project.ID, task.ID, "someday", 0)
	require.Error(t, err)
	_, err = svc.Move(context.Background(), project.ID, "missing", models.TaskDone, 0)
	require.ErrorIs(t, err, ErrTaskNotFound)
}
