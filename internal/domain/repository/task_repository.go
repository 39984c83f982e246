package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskzone/internal/common"
	"taskzone/internal/domain/model"
)

// TaskFilter narrows a listing. Zero values mean "no restriction".
type TaskFilter struct {
	OwnerID      string
	CategorySlug string
}

// TaskSort names a whitelisted column and a direction.
type TaskSort struct {
	Field     string // validated column name
	Ascending bool
}

// TaskUpdate is a partial patch; nil fields are left untouched. The owner id
// is immutable and deliberately absent.
type TaskUpdate struct {
	Title         *string
	Description   *string
	Deadline      *time.Time
	Priority      *string
	Category      *string
	CategorySlug  *string
	Collaborators *[]string
}

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id string) (*model.Task, error)
	Update(ctx context.Context, id string, patch TaskUpdate) (*model.Task, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter TaskFilter, sort TaskSort, limit, offset int) ([]model.Task, int, error)
}

type pgTaskRepository struct {
	db *sql.DB
}

func NewPgTaskRepository(db *sql.DB) TaskRepository {
	return &pgTaskRepository{db: db}
}

const taskColumns = `id, title, description, deadline, priority, category, category_slug, user_id, collaborators, created_at, updated_at`

func scanTask(row interface{ Scan(...interface{}) error }) (*model.Task, error) {
	task := &model.Task{}
	var collaborators []byte
	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &task.Deadline, &task.Priority,
		&task.Category, &task.CategorySlug, &task.UserID, &collaborators,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(collaborators) > 0 {
		if err := json.Unmarshal(collaborators, &task.Collaborators); err != nil {
			return nil, fmt.Errorf("decoding collaborators: %w", err)
		}
	}
	if task.Collaborators == nil {
		task.Collaborators = []string{}
	}
	return task, nil
}

func (r *pgTaskRepository) Create(ctx context.Context, task *model.Task) error {
	collaborators, err := json.Marshal(task.Collaborators)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Create marshal: %w", err)
	}
	query := `INSERT INTO tasks (id, title, description, deadline, priority, category, category_slug, user_id, collaborators)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query,
		task.ID, task.Title, task.Description, task.Deadline, task.Priority,
		task.Category, task.CategorySlug, task.UserID, collaborators,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Create: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTaskRepository.FindByID: %w", err)
	}
	return task, nil
}

func (r *pgTaskRepository) Update(ctx context.Context, id string, patch TaskUpdate) (*model.Task, error) {
	var sets []string
	var args []interface{}
	argID := 1

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if patch.Title != nil {
		addSet("title", *patch.Title)
	}
	if patch.Description != nil {
		addSet("description", *patch.Description)
	}
	if patch.Deadline != nil {
		addSet("deadline", *patch.Deadline)
	}
	if patch.Priority != nil {
		addSet("priority", *patch.Priority)
	}
	if patch.Category != nil {
		addSet("category", *patch.Category)
	}
	if patch.CategorySlug != nil {
		addSet("category_slug", *patch.CategorySlug)
	}
	if patch.Collaborators != nil {
		collaborators, err := json.Marshal(*patch.Collaborators)
		if err != nil {
			return nil, fmt.Errorf("pgTaskRepository.Update marshal: %w", err)
		}
		addSet("collaborators", collaborators)
	}

	if len(sets) == 0 {
		// Nothing to change; return the current record.
		return r.FindByID(ctx, id)
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d RETURNING `+taskColumns,
		strings.Join(sets, ", "), argID)
	args = append(args, id)

	task, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTaskRepository.Update: %w", err)
	}
	return task, nil
}

func (r *pgTaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("pgTaskRepository.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgTaskRepository.Delete rows: %w", err)
	}
	return n > 0, nil
}

func (r *pgTaskRepository) List(ctx context.Context, filter TaskFilter, sort TaskSort, limit, offset int) ([]model.Task, int, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if filter.OwnerID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argID))
		args = append(args, filter.OwnerID)
		argID++
	}
	if filter.CategorySlug != "" {
		conditions = append(conditions, fmt.Sprintf("category_slug = $%d", argID))
		args = append(args, filter.CategorySlug)
		argID++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks` + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgTaskRepository.List count: %w", err)
	}

	direction := "DESC"
	if sort.Ascending {
		direction = "ASC"
	}
	// sort.Field comes from the service-side whitelist, never from raw input.
	query := fmt.Sprintf(`SELECT %s FROM tasks%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		taskColumns, whereClause, sort.Field, direction, argID, argID+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgTaskRepository.List query: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("pgTaskRepository.List scan: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgTaskRepository.List rows.Err: %w", err)
	}
	return tasks, total, nil
}
