package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk-api/internal/api/response"
	"github.com/taskdesk/taskdesk-api/internal/core/domain"
	"github.com/taskdesk/taskdesk-api/internal/core/ports"
)

// ClientHandler handles client and client note routes.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// List returns all clients.
//
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Param        sort  query     string  false  "name, -name, createdAt or -createdAt"
// @Success      200   {object}  response.Envelope{data=[]domain.Client}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Router       /api/clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	sort, err := domain.ParseClientSort(c.QueryParam("sort"))
	if err != nil {
		return err
	}

	clients, err := h.service.List(c.Request().Context(), sort)
	if err != nil {
		return err
	}
	return response.OK(c, clients)
}

// Get returns one client with its notes.
//
// @Summary      Get client
// @Tags         clients
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  response.Envelope{data=domain.Client}
// @Failure      404  {object}  response.Envelope
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	client, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, client)
}

// Create adds a client.
//
// @Summary      Create client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        body  body      clientRequest  true  "Client"
// @Success      201   {object}  response.Envelope{data=domain.Client}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /api/clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	var req clientRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	client, err := h.service.Create(c.Request().Context(), req.toDomain())
	if err != nil {
		return err
	}
	return response.Created(c, client)
}

// Update replaces a client's fields. Notes are edited through the note routes.
//
// @Summary      Update client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Client ID"
// @Param        body  body      clientRequest  true  "Client"
// @Success      200   {object}  response.Envelope{data=domain.Client}
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	var req clientRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	client := req.toDomain()
	client.ID = c.Param("id")
	updated, err := h.service.Update(c.Request().Context(), client)
	if err != nil {
		return err
	}
	return response.OK(c, updated)
}

// Delete removes a client.
//
// @Summary      Delete client
// @Tags         clients
// @Param        id   path  string  true  "Client ID"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return response.OK(c, nil)
}

// AddNote appends a note to a client.
//
// @Summary      Add client note
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Client ID"
// @Param        body  body      noteRequest  true  "Note"
// @Success      201   {object}  response.Envelope{data=domain.Client}
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /api/clients/{id}/notes [post]
func (h *ClientHandler) AddNote(c echo.Context) error {
	var req noteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	client, err := h.service.AddNote(c.Request().Context(), c.Param("id"), ports.NoteInput(req))
	if err != nil {
		return err
	}
	return response.Created(c, client)
}

// UpdateNote edits a note in place.
//
// @Summary      Update client note
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id      path      string       true  "Client ID"
// @Param        noteId  path      string       true  "Note ID"
// @Param        body    body      noteRequest  true  "Note"
// @Success      200     {object}  response.Envelope{data=domain.Client}
// @Failure      404     {object}  response.Envelope
// @Router       /api/clients/{id}/notes/{noteId} [put]
func (h *ClientHandler) UpdateNote(c echo.Context) error {
	var req noteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	client, err := h.service.UpdateNote(c.Request().Context(), c.Param("id"), c.Param("noteId"), ports.NoteInput(req))
	if err != nil {
		return err
	}
	return response.OK(c, client)
}

// DeleteNote removes a note.
//
// @Summary      Delete client note
// @Tags         clients
// @Produce      json
// @Param        id      path      string  true  "Client ID"
// @Param        noteId  path      string  true  "Note ID"
// @Success      200     {object}  response.Envelope{data=domain.Client}
// @Failure      404     {object}  response.Envelope
// @Router       /api/clients/{id}/notes/{noteId} [delete]
func (h *ClientHandler) DeleteNote(c echo.Context) error {
	client, err := h.service.DeleteNote(c.Request().Context(), c.Param("id"), c.Param("noteId"))
	if err != nil {
		return err
	}
	return response.OK(c, client)
}
