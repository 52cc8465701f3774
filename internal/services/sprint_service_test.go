package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andrelmts/taskhive/internal/database/testutil"
	"github.com/andrelmts/taskhive/internal/models"
)

func TestSprintServiceCRUD(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewSprintService(db)
	require.NoError(t, err)

	owner := createTestUser(t, db, "owner@example.com")
	workspace := createTestWorkspace(t, db, owner)
	project := createTestProject(t, db, workspace.ID)

	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(14 * 24 * time.Hour)

	sprint, err := svc.Create(context.Background(), project.ID, CreateSprintInput{
		Name:     "Sprint 1",
		StartsAt: &start,
		EndsAt:   &end,
	})
	require.NoError(t, err)
	require.Equal(t, models.SprintPlanned, sprint.Status)

	// End before start is rejected.
	_, err = svc.Create(context.Background(), project.ID, CreateSprintInput{
		Name:     "Backwards",
		StartsAt: &end,
		EndsAt:   &start,
	})
	require.Error(t, err)

	active := models.SprintActive
	updated, err := svc.Update(context.Background(), project.ID, sprint.ID, UpdateSprintInput{Status: &active})
	require.NoError(t, err)
	require.Equal(t, models.SprintActive, updated.Status)

	bogus := models.SprintStatus("paused")
	_, err = svc.Update(context.Background(), project.ID, sprint.ID, UpdateSprintInput{Status: &bogus})
	require.Error(t, err)

	sprints, err := svc.List(context.Background(), project.ID)
	require.NoError(t, err)
	require.Len(t, sprints, 1)

	require.NoError(t, svc.Delete(context.Background(), project.ID, sprint.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), project.ID, sprint.ID), ErrSprintNotFound)
}

func TestSprintDeleteReleasesTasks(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	sprintSvc, err := NewSprintService(db)
	require.NoError(t, err)
	taskSvc, err := NewTaskService(db)
	require.NoError(t, err)

	owner := createTestUser(t, db, "owner@example.com")
	workspace := createTestWorkspace(t, db, owner)
	project := createTestProject(t, db, workspace.ID)

	sprint, err := sprintSvc.Create(context.Background(), project.ID, CreateSprintInput{Name: "Sprint 1"})
	require.NoError(t, err)

	task, err := taskSvc.Create(context.Background(), project.ID, CreateTaskInput{
		Title:    "Scheduled work",
		SprintID: &sprint.ID,
	})
	require.NoError(t, err)

	require.NoError(t, sprintSvc.Delete(context.Background(), project.ID, sprint.ID))

	refreshed, err := taskSvc.Get(context.Background(), project.ID, task.ID)
	require.NoError(t, err)
	require.Nil(t, refreshed.SprintID)
}
