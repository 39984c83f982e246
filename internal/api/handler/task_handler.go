package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"taskzone/internal/api/middleware"
	"taskzone/internal/app/service"
	"taskzone/internal/common"

	"github.com/go-chi/chi/v5"
)

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// RegisterRoutes mounts the task endpoints. Every route requires a bearer
// token; owner/collaborator/admin rules are enforced in the service layer so
// that owners can delete their own tasks too.
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)

	r.Post("/create", h.createTask)
	r.Get("/get", h.listTasks)
	r.Get("/get/{id}", h.getTask)
	r.Put("/update/{id}", h.updateTask)
	r.Delete("/delete/{id}", h.deleteTask)
}

func (h *TaskHandler) createTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	task, err := h.taskService.Create(r.Context(), principal, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, common.APIResponse{Success: true, Data: task})
}

func (h *TaskHandler) listTasks(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	params := service.ListTasksParams{
		Page:     page,
		Limit:    limit,
		SortBy:   query.Get("sortBy"),
		Order:    query.Get("order"),
		Category: query.Get("category"),
	}

	tasks, pagination, err := h.taskService.List(r.Context(), principal, params)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.APIResponse{
		Success:    true,
		Data:       tasks,
		Pagination: pagination,
		Message:    "Tasks retrieved successfully.",
	})
}

func (h *TaskHandler) getTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")

	task, err := h.taskService.Get(r.Context(), taskID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.APIResponse{Success: true, Data: task})
}

func (h *TaskHandler) updateTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	task, err := h.taskService.Update(r.Context(), principal, chi.URLParam(r, "id"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.APIResponse{Success: true, Data: task})
}

func (h *TaskHandler) deleteTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	if err := h.taskService.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.APIResponse{Success: true, Message: "Task deleted successfully"})
}
