package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"simregistry-backend/models"
	"simregistry-backend/service"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// Pagination defaults for GET /saved
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// formFields lists the text fields echoed back when a form is re-rendered
var formFields = []string{
	"nama", "nik", "alamat", "tempat_lahir", "tanggal_lahir",
	"gender", "tinggi", "pekerjaan", "no_sim", "berlaku_sd",
}

// parsePagination reads page and limit, falling back to the defaults for
// missing, non-numeric or non-positive values. limit is capped at MaxPageSize.
func parsePagination(c *gin.Context) (page, limit int) {
	page = positiveInt(c.Query("page"), DefaultPage)
	limit = positiveInt(c.Query("limit"), DefaultPageSize)
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// keepPhoto reads the keep_foto flag. Only an explicit negative discards the photo.
func keepPhoto(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "false", "0", "off", "no":
		return false
	default:
		return true
	}
}

// formValues returns the submitted text fields for re-rendering a form
func formValues(c *gin.Context) map[string]string {
	values := make(map[string]string, len(formFields))
	for _, field := range formFields {
		values[field] = c.PostForm(field)
	}
	return values
}

// licenseValues returns the form fields of an existing license
func licenseValues(l *models.License) map[string]string {
	values := map[string]string{
		"nama":          l.Name,
		"tempat_lahir":  l.BirthPlace,
		"tanggal_lahir": formatDate(l.BirthDate),
		"gender":        string(l.Gender),
		"tinggi":        strconv.Itoa(l.HeightCM),
		"pekerjaan":     l.Occupation,
		"no_sim":        l.LicenseNumber,
		"berlaku_sd":    formatOptionalDate(l.ValidUntil),
	}
	if l.Owner != nil {
		values["nik"] = l.Owner.NIK
		values["alamat"] = deref(l.Owner.Address)
	}
	return values
}

// parseSubmission converts a multipart form post into a service.Submission.
// The returned release func closes the uploaded photo and must always be called.
func (h *SIMHandler) parseSubmission(c *gin.Context) (service.Submission, func(), error) {
	release := func() {}
	verr := service.NewValidationError()

	sub := service.Submission{
		NIK:           strings.TrimSpace(c.PostForm("nik")),
		Name:          c.PostForm("nama"),
		BirthPlace:    c.PostForm("tempat_lahir"),
		Occupation:    c.PostForm("pekerjaan"),
		LicenseNumber: c.PostForm("no_sim"),
		KeepPhoto:     true,
	}
	if address, ok := c.GetPostForm("alamat"); ok {
		sub.Address = &address
	}
	if raw, ok := c.GetPostForm("keep_foto"); ok {
		sub.KeepPhoto = keepPhoto(raw)
	}

	if raw := strings.TrimSpace(c.PostForm("tanggal_lahir")); raw != "" {
		birthDate, err := time.Parse(dateLayout, raw)
		if err != nil {
			verr.Add("tanggal_lahir", "must be a date in YYYY-MM-DD format")
		}
		sub.BirthDate = birthDate
	}
	if raw := strings.TrimSpace(c.PostForm("berlaku_sd")); raw != "" {
		validUntil, err := time.Parse(dateLayout, raw)
		if err != nil {
			verr.Add("berlaku_sd", "must be a date in YYYY-MM-DD format")
		} else {
			sub.ValidUntil = &validUntil
		}
	}
	if raw := strings.TrimSpace(c.PostForm("tinggi")); raw != "" {
		height, err := strconv.Atoi(raw)
		if err != nil || height <= 0 {
			verr.Add("tinggi", "must be a positive integer")
		}
		sub.HeightCM = height
	}

	rawGender := c.PostForm("gender")
	if gender, ok := h.gender.Normalize(rawGender); ok {
		sub.Gender = gender
	} else if strings.TrimSpace(rawGender) != "" {
		verr.Add("gender", "is not a recognised gender")
	}

	var fieldErr *service.ValidationError
	if err := sub.Validate(); errors.As(err, &fieldErr) {
		verr.Merge(fieldErr)
	}
	if !verr.Empty() {
		return sub, release, verr
	}

	fileHeader, err := c.FormFile("foto")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return sub, release, nil
	case err != nil:
		verr.Add("foto", "could not be read")
		return sub, release, verr
	case fileHeader.Filename == "" && fileHeader.Size == 0:
		return sub, release, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		verr.Add("foto", "could not be read")
		return sub, release, verr
	}
	sub.Photo = &models.PhotoUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	}
	return sub, func() { _ = file.Close() }, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
