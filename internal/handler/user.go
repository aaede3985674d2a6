package handler

import (
	"net/http"

	"github.com/templui/sneakerbase/internal/ctxkeys"
	"github.com/templui/sneakerbase/internal/service"
)

type userHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *userHandler {
	return &userHandler{userService: userService}
}

func (h *userHandler) EnsureMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.EnsureUser(ctxkeys.Subject(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Me answers null for anonymous callers and callers without a record.
func (h *userHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.CurrentUser(ctxkeys.Subject(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type profileRequest struct {
	Email     string  `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// UpdateProfile is called by the identity backend with the service token.
func (h *userHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.PathValue("subject"), req.Email, req.FirstName, req.LastName)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
