package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/kindlyhq/kindly-api/internal/domain"
	"github.com/kindlyhq/kindly-api/internal/platform/logger"
	"github.com/kindlyhq/kindly-api/internal/store"
)

// taskColumns is the canonical select list for task rows.
const taskColumns = "id, user_id, title, description, status, priority, due_date, tags, completed, created_at, updated_at"

// sortColumns maps API-level sort field names to task table columns.
// Anything not in this map sorts by created_at; the sort column is always
// taken from here, never from user input, so it is safe to interpolate.
var sortColumns = map[string]string{
	"title":       "title",
	"description": "description",
	"status":      "status",
	"priority":    "priority",
	"dueDate":     "due_date",
	"completed":   "completed",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// List implements store.TaskStore.List.
// It builds a single WHERE clause shared by the page query and the count
// query, so totals always agree with page contents. Results are always
// scoped to userID regardless of filter values.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	userID uuid.UUID,
	query store.TaskQuery,
) (*store.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	query.Normalize()

	where, args := buildTaskFilter(userID, query)

	countQuery := "SELECT COUNT(*) FROM tasks WHERE " + where

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	pageQuery := fmt.Sprintf(
		"SELECT %s FROM tasks WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		taskColumns,
		where,
		sortColumn(query.SortBy),
		sortDirection(query.Order),
		len(args)+1,
		len(args)+2,
	)
	args = append(args, query.Limit, query.Offset())

	rows, err := s.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	pages := 0
	if total > 0 {
		pages = (total + query.Limit - 1) / query.Limit
	}

	log.Debug("listed tasks",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(tasks)),
		slog.Int("total", total),
		slog.Int("page", query.Page))

	return &store.TaskPage{
		Tasks: tasks,
		Total: total,
		Page:  query.Page,
		Pages: pages,
	}, nil
}

// GetByID implements store.TaskStore.GetByID.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := "SELECT " + taskColumns + " FROM tasks WHERE id = $1"

	row := s.db.QueryRowContext(ctx, query, id)
	task, err := scanTask(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return task, nil
}

// Create implements store.TaskStore.Create.
// It saves a new task to the database, handling domain validation.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO tasks (id, user_id, title, description, status, priority, due_date, tags, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		tags,
		task.Completed,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", task.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return MapError(err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// Update implements store.TaskStore.Update.
// It writes every mutable column of the task; partial-field merging is the
// caller's concern. Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4,
		    due_date = $5, tags = $6, completed = $7, updated_at = $8
		WHERE id = $9
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		tags,
		task.Completed,
		task.UpdatedAt,
		task.ID,
	)

	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		log.Debug("task not found for update",
			slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// Delete implements store.TaskStore.Delete.
// It hard-removes the task. Returns store.ErrTaskNotFound if the task does
// not exist, so a repeated delete of the same ID fails.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		log.Debug("task not found for delete", slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

// DeleteMany implements store.TaskStore.DeleteMany.
// It removes all tasks matching both the id set and the owner in one
// statement, which makes the bulk delete atomic at the database level.
// IDs that are missing or owned by someone else are silently skipped.
func (s *PostgresTaskStore) DeleteMany(
	ctx context.Context,
	userID uuid.UUID,
	ids []uuid.UUID,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return 0, nil
	}

	// database/sql cannot pass []uuid.UUID through the pgx stdlib driver;
	// string UUIDs cast cleanly on the server side.
	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	result, err := s.db.ExecContext(
		ctx,
		"DELETE FROM tasks WHERE user_id = $1 AND id = ANY($2::uuid[])",
		userID,
		idStrings,
	)
	if err != nil {
		log.Error("failed to bulk delete tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("requested", len(ids)))
		return 0, MapError(err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info("tasks bulk deleted",
		slog.String("user_id", userID.String()),
		slog.Int("requested", len(ids)),
		slog.Int64("deleted", deleted))
	return deleted, nil
}

// buildTaskFilter assembles the WHERE clause and args shared by the count
// and page queries. The owner scope is always the first predicate.
func buildTaskFilter(userID uuid.UUID, query store.TaskQuery) (string, []any) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	if query.Search != "" {
		args = append(args, "%"+escapeLike(query.Search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
	}

	if query.Status != "" {
		args = append(args, query.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	if query.Priority != "" {
		args = append(args, query.Priority)
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}

	return strings.Join(where, " AND "), args
}

// sortColumn resolves an API-level sort field to a whitelisted column.
func sortColumn(sortBy string) string {
	if col, ok := sortColumns[sortBy]; ok {
		return col
	}
	return "created_at"
}

// sortDirection resolves the requested order to a SQL keyword.
func sortDirection(order string) string {
	if order == store.OrderAsc {
		return "ASC"
	}
	return "DESC"
}

// escapeLike escapes LIKE/ILIKE wildcards so the search term matches
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// scanTask scans one task row using the given scan function, which lets it
// serve both QueryRow and Rows iteration.
func scanTask(scan func(dest ...any) error) (*domain.Task, error) {
	var (
		task    domain.Task
		status  string
		prio    string
		dueDate sql.NullTime
		tags    []byte
	)

	err := scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&status,
		&prio,
		&dueDate,
		&tags,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(prio)
	if dueDate.Valid {
		due := dueDate.Time
		task.DueDate = &due
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &task.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	return &task, nil
}
