package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk-api/internal/api/response"
	"github.com/taskdesk/taskdesk-api/internal/core/domain"
	"github.com/taskdesk/taskdesk-api/internal/core/ports"
)

type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List returns tasks, newest first.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Param        status      query     string  false  "todo, in_progress, review or done"
// @Param        assignedTo  query     string  false  "Assignee username"
// @Param        clientId    query     string  false  "Client ID"
// @Param        completed   query     bool    false  "Completion flag"
// @Success      200         {object}  response.Envelope{data=[]domain.Task}
// @Failure      400         {object}  response.Envelope
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	filter := domain.TaskFilter{
		Status:     domain.TaskStatus(c.QueryParam("status")),
		AssignedTo: c.QueryParam("assignedTo"),
		ClientID:   c.QueryParam("clientId"),
	}
	if raw := c.QueryParam("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.Validation("completed must be true or false")
		}
		filter.Completed = &completed
	}

	tasks, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return response.OK(c, tasks)
}

// Get returns one task.
//
// @Summary      Get task
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Envelope{data=domain.Task}
// @Failure      404  {object}  response.Envelope
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	task, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, task)
}

// Create adds a task. createdBy defaults to the caller.
//
// @Summary      Create task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      taskRequest  true  "Task"
// @Success      201   {object}  response.Envelope{data=domain.Task}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	var req taskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := req.toDomain()
	if err != nil {
		return err
	}

	created, err := h.service.Create(c.Request().Context(), id, task)
	if err != nil {
		return err
	}
	return response.Created(c, created)
}

// Update replaces a task's editable fields.
//
// @Summary      Update task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Task ID"
// @Param        body  body      taskRequest  true  "Task"
// @Success      200   {object}  response.Envelope{data=domain.Task}
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	var req taskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := req.toDomain()
	if err != nil {
		return err
	}
	task.ID = c.Param("id")

	updated, err := h.service.Update(c.Request().Context(), task)
	if err != nil {
		return err
	}
	return response.OK(c, updated)
}

// Delete removes a task.
//
// @Summary      Delete task
// @Tags         tasks
// @Param        id   path  string  true  "Task ID"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return response.OK(c, nil)
}
