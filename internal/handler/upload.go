package handler

import (
	"net/http"

	"github.com/templui/sneakerbase/internal/service"
)

type uploadHandler struct {
	uploadService *service.UploadService
}

func NewUploadHandler(uploadService *service.UploadService) *uploadHandler {
	return &uploadHandler{uploadService: uploadService}
}

func (h *uploadHandler) RequestSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := h.uploadService.RequestSlot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

// Receive accepts the raw image bytes of a relay upload.
func (h *uploadHandler) Receive(w http.ResponseWriter, r *http.Request) {
	defer func() {
		_ = r.Body.Close()
	}()

	// One byte of slack so the service sees the body is too large
	body := http.MaxBytesReader(w, r.Body, h.uploadService.MaxBytes()+1)

	storageID, err := h.uploadService.Receive(r.Context(), r.PathValue("token"), body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"storageId": storageID})
}
