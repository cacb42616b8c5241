package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kindlyhq/kindly-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("defaults applied", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask(userID, "Buy groceries", "", "", "", nil, nil)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, task.ID)
		assert.Equal(t, userID, task.UserID)
		assert.Equal(t, domain.TaskStatusPending, task.Status)
		assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
		assert.False(t, task.Completed)
		assert.NotNil(t, task.Tags, "tags should serialize as an array, not null")
		assert.Empty(t, task.Tags)
		assert.False(t, task.CreatedAt.IsZero())
		assert.False(t, task.UpdatedAt.IsZero())
	})

	t.Run("trims fields", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask(
			userID,
			"  Walk the dog  ",
			"  every morning  ",
			domain.TaskStatusInProgress,
			domain.TaskPriorityHigh,
			nil,
			[]string{" home ", "pets "},
		)
		require.NoError(t, err)

		assert.Equal(t, "Walk the dog", task.Title)
		assert.Equal(t, "every morning", task.Description)
		assert.Equal(t, []string{"home", "pets"}, task.Tags)
	})

	t.Run("completed derived from status", func(t *testing.T) {
		t.Parallel()

		for _, tc := range []struct {
			status    domain.TaskStatus
			completed bool
		}{
			{domain.TaskStatusPending, false},
			{domain.TaskStatusInProgress, false},
			{domain.TaskStatusCompleted, true},
		} {
			task, err := domain.NewTask(userID, "title", "", tc.status, "", nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.completed, task.Completed,
				"completed must agree with status %q", tc.status)
		}
	})

	t.Run("validation failures", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			userID  uuid.UUID
			title   string
			desc    string
			status  domain.TaskStatus
			wantErr error
		}{
			{"missing title", userID, "", "", "", domain.ErrTitleRequired},
			{"blank title", userID, "   ", "", "", domain.ErrTitleRequired},
			{"missing user", uuid.Nil, "title", "", "", domain.ErrTaskUserIDEmpty},
			{
				"title too long",
				userID,
				strings.Repeat("a", domain.MaxTitleLength+1),
				"",
				"",
				domain.ErrTitleTooLong,
			},
			{
				"description too long",
				userID,
				"title",
				strings.Repeat("a", domain.MaxDescriptionLength+1),
				"",
				domain.ErrDescriptionTooLong,
			},
			{"unknown status", userID, "title", "", "archived", domain.ErrInvalidStatus},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := domain.NewTask(tc.userID, tc.title, tc.desc, tc.status, "", nil, nil)
				assert.ErrorIs(t, err, tc.wantErr)
			})
		}
	})
}

func TestTask_SetTitleAndDescription(t *testing.T) {
	t.Parallel()

	task, err := domain.NewTask(uuid.New(), "title", "", "", "", nil, nil)
	require.NoError(t, err)

	task.SetTitle("  Renamed  ")
	task.SetDescription("  details  ")
	assert.Equal(t, "Renamed", task.Title)
	assert.Equal(t, "details", task.Description)
}

func TestTask_SetStatus(t *testing.T) {
	t.Parallel()

	task, err := domain.NewTask(uuid.New(), "title", "", "", "", nil, nil)
	require.NoError(t, err)

	task.SetStatus(domain.TaskStatusCompleted)
	assert.True(t, task.Completed)

	task.SetStatus(domain.TaskStatusPending)
	assert.False(t, task.Completed)
}

func TestTask_ApplyCompleted(t *testing.T) {
	t.Parallel()

	task, err := domain.NewTask(uuid.New(), "title", "", "", "", nil, nil)
	require.NoError(t, err)

	// Explicit completed overrides the status-derived value.
	task.SetStatus(domain.TaskStatusPending)
	task.ApplyCompleted(true)
	assert.True(t, task.Completed)
	assert.Equal(t, domain.TaskStatusPending, task.Status)
}

func TestTask_Touch(t *testing.T) {
	t.Parallel()

	task, err := domain.NewTask(uuid.New(), "title", "", "", "", nil, nil)
	require.NoError(t, err)

	before := task.UpdatedAt
	time.Sleep(time.Millisecond)
	task.Touch()
	assert.True(t, task.UpdatedAt.After(before))
}
