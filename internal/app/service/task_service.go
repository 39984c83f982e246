package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"taskzone/internal/app/cache"
	"taskzone/internal/common"
	"taskzone/internal/domain/model"
	"taskzone/internal/domain/permission"
	"taskzone/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// TaskService orchestrates task use cases: it authorizes mutations through
// the permission package, keeps the read cache coherent with writes, and
// scopes listings by role.
type TaskService struct {
	taskRepo repository.TaskRepository
	cache    cache.TaskCache
}

func NewTaskService(taskRepo repository.TaskRepository, taskCache cache.TaskCache) *TaskService {
	return &TaskService{taskRepo: taskRepo, cache: taskCache}
}

type CreateTaskRequest struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Deadline      time.Time `json:"deadline"`
	Priority      string    `json:"priority"`
	Category      string    `json:"category"`
	Collaborators []string  `json:"collaborators"`
}

type UpdateTaskRequest struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Priority      *string    `json:"priority,omitempty"`
	Category      *string    `json:"category,omitempty"`
	Collaborators *[]string  `json:"collaborators,omitempty"`
}

type ListTasksParams struct {
	Page     int
	Limit    int
	SortBy   string
	Order    string
	Category string
}

// sortColumns whitelists user-supplied sort fields against real columns.
var sortColumns = map[string]string{
	"deadline":   "deadline",
	"priority":   "priority",
	"title":      "title",
	"category":   "category",
	"createdAt":  "created_at",
	"created_at": "created_at",
	"updatedAt":  "updated_at",
	"updated_at": "updated_at",
}

func (s *TaskService) Create(ctx context.Context, principal model.Principal, req CreateTaskRequest) (*model.Task, error) {
	if req.Title == "" || req.Description == "" || req.Category == "" || req.Deadline.IsZero() {
		return nil, common.Errorf("title, description, deadline and category are required: %w", common.ErrValidation)
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !model.ValidPriority(priority) {
		return nil, common.Errorf("priority must be low, medium or high: %w", common.ErrValidation)
	}

	collaborators := req.Collaborators
	if collaborators == nil {
		collaborators = []string{}
	}

	task := &model.Task{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Description:   req.Description,
		Deadline:      req.Deadline,
		Priority:      priority,
		Category:      req.Category,
		CategorySlug:  slug.Make(req.Category),
		UserID:        principal.UserID, // Owner, immutable from here on
		Collaborators: collaborators,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, principal model.Principal, params ListTasksParams) ([]model.Task, *common.Pagination, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = "deadline"
	}
	sort := repository.TaskSort{Field: column, Ascending: params.Order != "desc"}

	filter := repository.TaskFilter{}
	// Regular users only see their own tasks; any other role lists unscoped.
	if principal.Role == model.RoleRegular {
		filter.OwnerID = principal.UserID
	}
	if params.Category != "" {
		filter.CategorySlug = slug.Make(params.Category)
	}

	tasks, total, err := s.taskRepo.List(ctx, filter, sort, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	pagination := &common.Pagination{
		Page:       page,
		Limit:      limit,
		TotalTasks: total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
	return tasks, pagination, nil
}

// Get serves a single task, preferring the cached snapshot. Only this read
// path consults or populates the cache.
func (s *TaskService) Get(ctx context.Context, taskID string) (*model.Task, error) {
	if task, ok := s.cache.Get(ctx, taskID); ok {
		return task, nil
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	s.cache.Put(ctx, taskID, task)
	return task, nil
}

// Update authorizes against a fresh load (never the cache, which could hold
// stale owner or collaborator data), applies the partial patch, and
// invalidates the cache entry before returning.
func (s *TaskService) Update(ctx context.Context, principal model.Principal, taskID string, req UpdateTaskRequest) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := permission.Check(task, principal, permission.OpUpdate); err != nil {
		log.Printf("WARN: user %s denied update on task %s", principal.UserID, taskID)
		return nil, common.Errorf("you do not have permission to update this task: %w", err)
	}

	patch, err := buildTaskPatch(req)
	if err != nil {
		return nil, err
	}

	updated, err := s.taskRepo.Update(ctx, taskID, patch)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, taskID)
	return updated, nil
}

// Delete treats the removal as a write for cache purposes: the entry is
// invalidated synchronously so a later read cannot serve the dead task.
func (s *TaskService) Delete(ctx context.Context, principal model.Principal, taskID string) error {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return err
	}

	if err := permission.Check(task, principal, permission.OpDelete); err != nil {
		log.Printf("WARN: user %s denied delete on task %s", principal.UserID, taskID)
		return common.Errorf("you do not have permission to delete this task: %w", err)
	}

	deleted, err := s.taskRepo.Delete(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !deleted {
		return common.ErrNotFound
	}

	s.cache.Invalidate(ctx, taskID)
	return nil
}

func buildTaskPatch(req UpdateTaskRequest) (repository.TaskUpdate, error) {
	patch := repository.TaskUpdate{}

	if req.Title != nil {
		if *req.Title == "" {
			return patch, common.Errorf("title cannot be empty: %w", common.ErrValidation)
		}
		patch.Title = req.Title
	}
	if req.Description != nil {
		if *req.Description == "" {
			return patch, common.Errorf("description cannot be empty: %w", common.ErrValidation)
		}
		patch.Description = req.Description
	}
	if req.Deadline != nil {
		if req.Deadline.IsZero() {
			return patch, common.Errorf("deadline cannot be empty: %w", common.ErrValidation)
		}
		patch.Deadline = req.Deadline
	}
	if req.Priority != nil {
		if !model.ValidPriority(*req.Priority) {
			return patch, common.Errorf("priority must be low, medium or high: %w", common.ErrValidation)
		}
		patch.Priority = req.Priority
	}
	if req.Category != nil {
		if *req.Category == "" {
			return patch, common.Errorf("category cannot be empty: %w", common.ErrValidation)
		}
		categorySlug := slug.Make(*req.Category)
		patch.Category = req.Category
		patch.CategorySlug = &categorySlug
	}
	if req.Collaborators != nil {
		patch.Collaborators = req.Collaborators
	}

	return patch, nil
}
