package handlers

import (
	"net/http"

	"shop-backend/internal/services"
	"shop-backend/pkg/utils"
)

const maxLogoSize = 5 << 20 // 5 MiB

type SettingsHandler struct {
	Service *services.StoreService
}

func NewSettingsHandler(s *services.StoreService) *SettingsHandler {
	return &SettingsHandler{Service: s}
}

// Profile returns the authenticated store account
func (h *SettingsHandler) Profile(w http.ResponseWriter, r *http.Request) {
	sid, ok := storeID(w, r)
	if !ok {
		return
	}

	store, err := h.Service.Get(r.Context(), sid)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, store)
}

// UploadLogo accepts a multipart image and stores it in object storage
func (h *SettingsHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	sid, ok := storeID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "logo file is required")
		return
	}
	defer file.Close()

	url, err := h.Service.UploadLogo(r.Context(), sid, &services.LogoUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"logo_url": url})
}
