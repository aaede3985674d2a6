package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/templui/sneakerbase/internal/ctxkeys"
	"github.com/templui/sneakerbase/internal/repository"
	"github.com/templui/sneakerbase/internal/service"
	"github.com/templui/sneakerbase/internal/validation"
)

const maxJSONBody = 64 << 10

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a JSON request body into v. Malformed bodies surface as
// validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return &validation.Error{Field: "body", Message: "request body is required"}
	}
	if err != nil {
		return &validation.Error{Field: "body", Message: "invalid request body"}
	}

	return nil
}

// writeError maps service errors to status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *validation.Error

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, service.ErrUnauthenticated.Error())
	case errors.Is(err, repository.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, repository.ErrUserNotFound.Error())
	case errors.Is(err, repository.ErrSneakerNotFound):
		writeMessage(w, http.StatusNotFound, repository.ErrSneakerNotFound.Error())
	case errors.Is(err, repository.ErrRatingNotFound):
		writeMessage(w, http.StatusNotFound, repository.ErrRatingNotFound.Error())
	case errors.As(err, &validationErr):
		writeMessage(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, service.ErrInvalidUploadSlot):
		writeMessage(w, http.StatusBadRequest, service.ErrInvalidUploadSlot.Error())
	case errors.Is(err, service.ErrForbidden):
		writeMessage(w, http.StatusForbidden, service.ErrForbidden.Error())
	case errors.Is(err, service.ErrUploadSlotUsed):
		writeMessage(w, http.StatusConflict, service.ErrUploadSlotUsed.Error())
	case errors.Is(err, repository.ErrImageInUse):
		writeMessage(w, http.StatusConflict, repository.ErrImageInUse.Error())
	case errors.Is(err, service.ErrImageUploadFailed):
		slog.Warn("image reference rejected", "error", err, "request_id", ctxkeys.RequestID(r.Context()))
		writeMessage(w, http.StatusBadGateway, service.ErrImageUploadFailed.Error())
	case errors.Is(err, service.ErrStorage):
		slog.Error("storage failure", "error", err, "request_id", ctxkeys.RequestID(r.Context()))
		writeMessage(w, http.StatusBadGateway, service.ErrStorage.Error())
	default:
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"request_id", ctxkeys.RequestID(r.Context()),
		)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
