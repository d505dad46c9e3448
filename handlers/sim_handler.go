package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"simregistry-backend/models"
	"simregistry-backend/repository"
	"simregistry-backend/service"
	"simregistry-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SIMHandler handles the HTML and JSON routes for SIM records
type SIMHandler struct {
	simService *service.SIMService
	photos     *storage.PhotoStore
	gender     GenderNormalizer
	logger     *slog.Logger
}

// NewSIMHandler creates a new SIM handler
func NewSIMHandler(simService *service.SIMService, photos *storage.PhotoStore, gender GenderNormalizer, logger *slog.Logger) *SIMHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if gender.Logger == nil {
		gender.Logger = logger
	}
	return &SIMHandler{
		simService: simService,
		photos:     photos,
		gender:     gender,
		logger:     logger,
	}
}

type formPage struct {
	Title   string
	Action  string
	License *models.License
	Values  map[string]string
	Errors  map[string]string
	Message string
}

type savedPage struct {
	Licenses   []*models.License
	Page       int
	Limit      int
	Total      int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

type errorPage struct {
	Status  int
	Title   string
	Message string
}

// Index handles GET /
func (h *SIMHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", formPage{
		Title:  "Input Data SIM",
		Action: "/submit-sim",
		Values: map[string]string{},
	})
}

// ListSaved handles GET /saved
func (h *SIMHandler) ListSaved(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.simService.ListLicenses(c.Request.Context(), page, limit)
	if err != nil {
		h.renderError(c, "list licenses", err)
		return
	}

	totalPages := result.TotalPages()
	c.HTML(http.StatusOK, "saved.html", savedPage{
		Licenses:   result.Items,
		Page:       page,
		Limit:      limit,
		Total:      result.Total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		PrevPage:   page - 1,
		NextPage:   page + 1,
	})
}

// CreateLicense handles POST /submit-sim
func (h *SIMHandler) CreateLicense(c *gin.Context) {
	sub, release, err := h.parseSubmission(c)
	defer release()
	if err != nil {
		h.renderForm(c, "index.html", formPage{Title: "Input Data SIM", Action: "/submit-sim"}, err)
		return
	}

	_, err = h.simService.CreateLicense(c.Request.Context(), service.CreateLicenseRequest{Submission: sub})
	if err != nil {
		if isUserError(err) {
			h.renderForm(c, "index.html", formPage{Title: "Input Data SIM", Action: "/submit-sim"}, err)
			return
		}
		h.renderError(c, "create license", err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/saved")
}

// EditLicense handles GET /edit/:id
func (h *SIMHandler) EditLicense(c *gin.Context) {
	license, ok := h.loadLicense(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "edit.html", formPage{
		Title:   "Edit Data SIM",
		Action:  "/update/" + license.ID.String(),
		License: license,
		Values:  licenseValues(license),
	})
}

// UpdateLicense handles POST /update/:id
func (h *SIMHandler) UpdateLicense(c *gin.Context) {
	id, ok := h.licenseID(c)
	if !ok {
		return
	}
	page := formPage{Title: "Edit Data SIM", Action: "/update/" + id.String()}

	sub, release, err := h.parseSubmission(c)
	defer release()
	if err != nil {
		page.License = h.currentLicense(c, id)
		h.renderForm(c, "edit.html", page, err)
		return
	}

	_, err = h.simService.UpdateLicense(c.Request.Context(), service.UpdateLicenseRequest{ID: id, Submission: sub})
	if err != nil {
		if isUserError(err) {
			page.License = h.currentLicense(c, id)
			h.renderForm(c, "edit.html", page, err)
			return
		}
		h.renderError(c, "update license", err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/detail/"+id.String())
}

// DeleteLicense handles POST /delete/:id
func (h *SIMHandler) DeleteLicense(c *gin.Context) {
	id, ok := h.licenseID(c)
	if !ok {
		return
	}

	if err := h.simService.DeleteLicense(c.Request.Context(), id); err != nil {
		h.renderError(c, "delete license", err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/saved")
}

// DetailLicense handles GET /detail/:id
func (h *SIMHandler) DetailLicense(c *gin.Context) {
	license, ok := h.loadLicense(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "detail.html", license)
}

// DeletePhoto handles POST /delete-foto/:id
func (h *SIMHandler) DeletePhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid license ID format"})
		return
	}

	result, err := h.simService.DeletePhoto(c.Request.Context(), id)
	if err != nil {
		status := apiStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("delete photo failed", "license_id", id, "error", err)
		}
		c.JSON(status, gin.H{"error": userMessage(status, err)})
		return
	}

	message := "Foto berhasil dihapus"
	if !result.Removed {
		message = "Data SIM tidak memiliki foto"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

// ServePhoto handles GET /uploads/:name
func (h *SIMHandler) ServePhoto(c *gin.Context) {
	reader, contentType, err := h.photos.Open(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidReference) {
			c.Status(http.StatusNotFound)
			return
		}
		h.logger.Error("open photo failed", "name", c.Param("name"), "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, -1, contentType, reader, nil)
}

// licenseID parses the :id parameter, rendering a 400 page when malformed
func (h *SIMHandler) licenseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.HTML(http.StatusBadRequest, "error.html", errorPage{
			Status:  http.StatusBadRequest,
			Title:   http.StatusText(http.StatusBadRequest),
			Message: "Invalid license ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *SIMHandler) loadLicense(c *gin.Context) (*models.License, bool) {
	id, ok := h.licenseID(c)
	if !ok {
		return nil, false
	}

	license, err := h.simService.GetLicense(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, "get license", err)
		return nil, false
	}
	return license, true
}

// currentLicense returns the stored license for re-rendering the edit form, or nil
func (h *SIMHandler) currentLicense(c *gin.Context, id uuid.UUID) *models.License {
	license, err := h.simService.GetLicense(c.Request.Context(), id)
	if err != nil {
		return nil
	}
	return license
}

// renderForm re-renders a form with the submitted values and the field problems of err
func (h *SIMHandler) renderForm(c *gin.Context, name string, page formPage, err error) {
	page.Values = formValues(c)
	page.Errors = fieldErrors(err)
	page.Message = userMessage(http.StatusBadRequest, err)
	c.HTML(http.StatusBadRequest, name, page)
}

func (h *SIMHandler) renderError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(op+" failed", "path", c.Request.URL.Path, "error", err)
	}
	c.HTML(status, "error.html", errorPage{
		Status:  status,
		Title:   http.StatusText(status),
		Message: userMessage(status, err),
	})
}

// statusFor maps reconciler errors to HTTP status codes for the HTML routes
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case isUserError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// apiStatus is statusFor with the photo-specific codes used by the JSON route
func apiStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, storage.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	default:
		return statusFor(err)
	}
}

func isUserError(err error) bool {
	return errors.Is(err, service.ErrValidation) ||
		errors.Is(err, storage.ErrUnsupportedMediaType) ||
		errors.Is(err, storage.ErrPayloadTooLarge) ||
		errors.Is(err, repository.ErrConstraintViolation)
}

func userMessage(status int, err error) string {
	switch {
	case status == http.StatusNotFound:
		return "Data SIM tidak ditemukan"
	case errors.Is(err, service.ErrValidation):
		return "Periksa kembali data yang diisi"
	case errors.Is(err, storage.ErrUnsupportedMediaType):
		return "Foto harus berupa gambar JPEG, PNG, GIF atau WEBP"
	case errors.Is(err, storage.ErrPayloadTooLarge):
		return "Ukuran foto melebihi batas maksimum"
	case errors.Is(err, repository.ErrConstraintViolation):
		return "Nomor SIM sudah terdaftar"
	default:
		return "Terjadi kesalahan pada server: " + err.Error()
	}
}

// fieldErrors returns the per-field problems carried by err
func fieldErrors(err error) map[string]string {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	switch {
	case errors.Is(err, storage.ErrUnsupportedMediaType), errors.Is(err, storage.ErrPayloadTooLarge):
		return map[string]string{"foto": userMessage(http.StatusBadRequest, err)}
	case errors.Is(err, repository.ErrConstraintViolation):
		return map[string]string{"no_sim": "is already registered"}
	}
	return map[string]string{}
}
