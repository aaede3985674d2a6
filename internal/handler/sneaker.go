package handler

import (
	"net/http"

	"github.com/templui/sneakerbase/internal/ctxkeys"
	"github.com/templui/sneakerbase/internal/service"
)

type sneakerHandler struct {
	sneakerService *service.SneakerService
	ratingService  *service.RatingService
}

func NewSneakerHandler(sneakerService *service.SneakerService, ratingService *service.RatingService) *sneakerHandler {
	return &sneakerHandler{
		sneakerService: sneakerService,
		ratingService:  ratingService,
	}
}

func (h *sneakerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateSneakerInput
	err := decodeJSON(w, r, &input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.sneakerService.Create(r.Context(), ctxkeys.Subject(r.Context()), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *sneakerHandler) List(w http.ResponseWriter, r *http.Request) {
	sneakers, err := h.sneakerService.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sneakers)
}

func (h *sneakerHandler) Mine(w http.ResponseWriter, r *http.Request) {
	sneakers, err := h.sneakerService.ListMine(r.Context(), ctxkeys.Subject(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sneakers)
}

func (h *sneakerHandler) Get(w http.ResponseWriter, r *http.Request) {
	sneaker, err := h.sneakerService.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sneaker)
}

func (h *sneakerHandler) Ratings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.ratingService.ListForSneaker(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ratings)
}

func (h *sneakerHandler) AddRating(w http.ResponseWriter, r *http.Request) {
	var input service.AddRatingInput
	err := decodeJSON(w, r, &input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.ratingService.Add(ctxkeys.Subject(r.Context()), r.PathValue("id"), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}
