package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/schoolregistry/server/internal/model"
	"github.com/schoolregistry/server/internal/repo"
	"github.com/schoolregistry/server/internal/storage"
)

const maxUploadSize = 10 << 20 // 10 MiB

// SchoolsHandler handles the school registry endpoints.
type SchoolsHandler struct {
	schoolRepo repo.SchoolRepo
	images     storage.ImageStore
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewSchoolsHandler creates a new schools handler. images may be nil when
// no object storage is configured; creating schools with an image then
// fails with a clear error.
func NewSchoolsHandler(schoolRepo repo.SchoolRepo, images storage.ImageStore, logger *slog.Logger) *SchoolsHandler {
	return &SchoolsHandler{
		schoolRepo: schoolRepo,
		images:     images,
		validate:   validator.New(),
		logger:     logger,
	}
}

// createSchoolForm is the multipart form for POST /api/schools
type createSchoolForm struct {
	Name    string `validate:"required"`
	Address string `validate:"required"`
	City    string `validate:"required"`
	State   string `validate:"required"`
	Contact string `validate:"required"`
	EmailID string `validate:"required,email"`
}

// HandleList handles GET /api/schools
func (h *SchoolsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	schools, err := h.schoolRepo.List(r.Context())
	if err != nil {
		h.logger.Error("list schools failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch schools")
		return
	}
	writeJSON(w, http.StatusOK, schools)
}

// HandleCreate handles POST /api/schools (multipart form, optional image)
func (h *SchoolsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	form := createSchoolForm{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Address: strings.TrimSpace(r.FormValue("address")),
		City:    strings.TrimSpace(r.FormValue("city")),
		State:   strings.TrimSpace(r.FormValue("state")),
		Contact: strings.TrimSpace(r.FormValue("contact")),
		EmailID: strings.TrimSpace(r.FormValue("email_id")),
	}
	if err := h.validate.Struct(form); err != nil {
		respondWithError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	imageURL := ""
	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		imageURL, err = h.uploadImage(r, header.Filename, file)
		if err != nil {
			h.logger.Error("image upload failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to upload image")
			return
		}
	}

	id, err := h.schoolRepo.Create(r.Context(), model.School{
		Name:    form.Name,
		Address: form.Address,
		City:    form.City,
		State:   form.State,
		Contact: form.Contact,
		EmailID: form.EmailID,
		Image:   imageURL,
	})
	if err != nil {
		h.logger.Error("create school failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to add school")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "School added successfully",
		"id":      id,
	})
}

// HandleDelete handles DELETE /api/schools/{id} (admin only; gated by
// middleware in the router)
func (h *SchoolsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid school id")
		return
	}

	school, err := h.schoolRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "School not found")
			return
		}
		h.logger.Error("fetch school failed", "error", err, "id", id)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete school")
		return
	}

	if err := h.schoolRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "School not found")
			return
		}
		h.logger.Error("delete school failed", "error", err, "id", id)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete school")
		return
	}

	// Best effort: a leaked object is not worth failing the delete.
	if school.Image != "" && h.images != nil {
		if key := h.images.KeyFromURL(school.Image); key != "" {
			if err := h.images.Delete(r.Context(), key); err != nil {
				h.logger.Warn("image cleanup failed", "error", err, "id", id)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "School deleted successfully"})
}

func (h *SchoolsHandler) uploadImage(r *http.Request, filename string, file io.Reader) (string, error) {
	if h.images == nil {
		return "", fmt.Errorf("image storage not configured")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("schools/%s%s", uuid.New().String(), ext)
	contentType := contentTypeForExt(ext)

	return h.images.Upload(r.Context(), key, file, contentType)
}

func contentTypeForExt(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
