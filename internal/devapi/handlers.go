package devapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/dmitrijs2005/apexclient/internal/client/models"
	"github.com/dmitrijs2005/apexclient/internal/logging"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type updateRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,alphanum,max=32"`
}

type errorResponse struct {
	Message string `json:"message"`
}

type handler struct {
	users    *UserStore
	secret   []byte
	tokenTTL time.Duration
	validate *validator.Validate
	log      logging.Logger
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Message: msg})
}

// decode reads a JSON body into dst and validates it, answering 400 itself on
// failure.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.log.Debug(r.Context(), "failed to decode request body", "error", err, "request_id", requestID(r))
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			writeError(w, r, http.StatusBadRequest, validationMessage(ve))
		} else {
			writeError(w, r, http.StatusBadRequest, err.Error())
		}
		return false
	}
	return true
}

func validationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		switch fe.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is not valid", field))
		}
	}
	return strings.Join(msgs, ", ")
}

func (h *handler) issueToken(w http.ResponseWriter, r *http.Request, id int64) (string, bool) {
	token, err := GenerateToken(id, h.secret, h.tokenTTL)
	if err != nil {
		h.log.Error(r.Context(), "failed to sign token", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return "", false
	}
	return token, true
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.users.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, ok := h.issueToken(w, r, user.ID)
	if !ok {
		return
	}
	h.log.Info(r.Context(), "user logged in", "id", user.ID)
	render.JSON(w, r, models.AuthResponse{Token: token, User: user})
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.users.Create(req.Username, req.Email, req.Password, RoleUser)
	if errors.Is(err, ErrEmailTaken) {
		writeError(w, r, http.StatusBadRequest, "Email already in use")
		return
	}
	if err != nil {
		h.log.Error(r.Context(), "failed to create user", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, ok := h.issueToken(w, r, user.ID)
	if !ok {
		return
	}
	h.log.Info(r.Context(), "user registered", "id", user.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, models.RegisterResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Token:    token,
	})
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(callerID(r.Context()))
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	render.JSON(w, r, user)
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.users.List())
}

// target resolves {id} and checks that the caller may modify it: either the
// caller owns the record or is an admin. It returns the caller alongside.
func (h *handler) target(w http.ResponseWriter, r *http.Request) (id int64, caller models.User, ok bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "Invalid user id")
		return 0, models.User{}, false
	}

	caller, err = h.users.Get(callerID(r.Context()))
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Invalid or expired token")
		return 0, models.User{}, false
	}
	if caller.ID != id && caller.Role != RoleAdmin {
		writeError(w, r, http.StatusForbidden, "Forbidden")
		return 0, models.User{}, false
	}
	return id, caller, true
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	id, caller, ok := h.target(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if !h.decode(w, r, &req) {
		return
	}
	upd := models.UserUpdate{Username: req.Username, Email: req.Email, Role: req.Role}
	if upd.IsEmpty() {
		writeError(w, r, http.StatusBadRequest, "No fields to update")
		return
	}

	current, err := h.users.Get(id)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "User not found")
		return
	}
	if req.Role != nil && *req.Role != current.Role && caller.Role != RoleAdmin {
		writeError(w, r, http.StatusForbidden, "Only admins can change roles")
		return
	}

	user, err := h.users.Update(id, upd)
	switch {
	case errors.Is(err, ErrUserNotFound):
		writeError(w, r, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, ErrEmailTaken):
		writeError(w, r, http.StatusBadRequest, "Email already in use")
		return
	case err != nil:
		h.log.Error(r.Context(), "failed to update user", "id", id, "error", err)
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.log.Info(r.Context(), "user updated", "id", id, "by", caller.ID)
	render.JSON(w, r, user)
}

func (h *handler) remove(w http.ResponseWriter, r *http.Request) {
	id, caller, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(id); err != nil {
		writeError(w, r, http.StatusNotFound, "User not found")
		return
	}

	h.log.Info(r.Context(), "user deleted", "id", id, "by", caller.ID)
	w.WriteHeader(http.StatusNoContent)
}
