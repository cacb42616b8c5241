package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/kindlyhq/kindly-api/internal/domain"
	"github.com/kindlyhq/kindly-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestSortColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sortBy string
		want   string
	}{
		{"createdAt", "created_at"},
		{"updatedAt", "updated_at"},
		{"dueDate", "due_date"},
		{"title", "title"},
		{"priority", "priority"},
		{"completed", "completed"},
		{"", "created_at"},
		{"nonsense", "created_at"},
		// Never interpolate raw input into ORDER BY.
		{"created_at; DROP TABLE tasks", "created_at"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, sortColumn(tc.sortBy), "sortBy=%q", tc.sortBy)
	}
}

func TestSortDirection(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ASC", sortDirection(store.OrderAsc))
	assert.Equal(t, "DESC", sortDirection(store.OrderDesc))
	assert.Equal(t, "DESC", sortDirection(""))
	assert.Equal(t, "DESC", sortDirection("sideways"))
}

func TestBuildTaskFilter(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("owner scope only", func(t *testing.T) {
		t.Parallel()

		where, args := buildTaskFilter(userID, store.TaskQuery{})
		assert.Equal(t, "user_id = $1", where)
		assert.Equal(t, []any{userID}, args)
	})

	t.Run("search spans title and description with one arg", func(t *testing.T) {
		t.Parallel()

		where, args := buildTaskFilter(userID, store.TaskQuery{Search: "groceries"})
		assert.Equal(t, "user_id = $1 AND (title ILIKE $2 OR description ILIKE $2)", where)
		assert.Equal(t, []any{userID, "%groceries%"}, args)
	})

	t.Run("all filters combined", func(t *testing.T) {
		t.Parallel()

		where, args := buildTaskFilter(userID, store.TaskQuery{
			Search:   "milk",
			Status:   domain.TaskStatusPending,
			Priority: domain.TaskPriorityHigh,
		})
		assert.Equal(
			t,
			"user_id = $1 AND (title ILIKE $2 OR description ILIKE $2) AND status = $3 AND priority = $4",
			where,
		)
		assert.Len(t, args, 4)
	})
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\temp`, escapeLike(`c:\temp`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
