package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MAKAMOUL/prophoneplus/internal/service"
	"github.com/MAKAMOUL/prophoneplus/pkg/apierror"
	"github.com/MAKAMOUL/prophoneplus/pkg/response"

	"github.com/go-chi/chi/v5"
)

// UserHandler handles local account HTTP requests.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Users(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, users)
}

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	u, err := h.users.User(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, u)
}

// Create handles POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	u, err := h.users.AddUser(r.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Error(w, apierror.Conflict(err.Error()))
			return
		}
		writeServiceError(w, err)
		return
	}
	response.Created(w, u)
}

// Update handles PUT /api/v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	var in service.UserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	u, err := h.users.UpdateUser(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Error(w, apierror.Conflict(err.Error()))
			return
		}
		writeServiceError(w, err)
		return
	}
	response.OK(w, u)
}
