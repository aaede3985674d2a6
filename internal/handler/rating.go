package handler

import (
	"net/http"

	"github.com/templui/sneakerbase/internal/ctxkeys"
	"github.com/templui/sneakerbase/internal/service"
)

type ratingHandler struct {
	ratingService *service.RatingService
}

func NewRatingHandler(ratingService *service.RatingService) *ratingHandler {
	return &ratingHandler{ratingService: ratingService}
}

func (h *ratingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.ratingService.ListMine(ctxkeys.Subject(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ratings)
}

func (h *ratingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.ratingService.Delete(ctxkeys.Subject(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
