package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/saurabh-eg/Tasksync/internal/auth"
	apperrors "github.com/saurabh-eg/Tasksync/internal/errors"
	"github.com/saurabh-eg/Tasksync/internal/service"
)

// TaskHandler handles task endpoints. All routes run behind the auth gate, so
// the current user is always available from the echo context.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// Create godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskRequest true "Task data"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return domainError(apperrors.ErrInvalidToken)
	}

	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), user.ID, req.Title, req.Description, req.DueDate)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, task)
}

// List godoc
// @Summary List the current user's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param completed query bool false "Filter by completion"
// @Param search query string false "Case-insensitive match on title or description"
// @Param sort_by query string false "created_at, updated_at, due_date or title"
// @Param order query string false "asc or desc (default desc)"
// @Success 200 {array} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return domainError(apperrors.ErrInvalidToken)
	}

	opts := service.TaskListOptions{
		Search: c.QueryParam("search"),
		SortBy: c.QueryParam("sort_by"),
		Order:  c.QueryParam("order"),
	}
	if raw := c.QueryParam("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid completed value")
		}
		opts.Completed = &completed
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), user.ID, opts)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// Get godoc
// @Summary Get a task by id
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} model.Task
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return domainError(apperrors.ErrInvalidToken)
	}

	task, err := h.taskService.GetTask(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, task)
}

// Update godoc
// @Summary Partially update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body service.TaskPatch true "Fields to change"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return domainError(apperrors.ErrInvalidToken)
	}

	var patch service.TaskPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), user.ID, c.Param("id"), patch)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return domainError(apperrors.ErrInvalidToken)
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), user.ID, c.Param("id")); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

// Stats godoc
// @Summary Task statistics for the current user
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.TaskStats
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /tasks/stats/summary [get]
func (h *TaskHandler) Stats(c echo.Context) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return domainError(apperrors.ErrInvalidToken)
	}

	stats, err := h.taskService.Stats(c.Request().Context(), user.ID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
