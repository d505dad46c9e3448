package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"simregistry-backend/models"
)

var nikPattern = regexp.MustCompile(`^[0-9]{16}$`)

// Column limits shared by both schemas
const (
	MaxLicenseNumberLength = 64
	MaxHeightCM            = 300
)

// Submission carries the owner and license attributes of one form post
type Submission struct {
	// Owner attributes
	NIK        string
	Name       string
	Address    *string
	BirthPlace string
	BirthDate  time.Time
	Gender     models.Gender
	HeightCM   int
	Occupation string

	// License attributes
	LicenseNumber string
	ValidUntil    *time.Time

	// Photo is the optional new photo file
	Photo *models.PhotoUpload
	// KeepPhoto keeps the existing photo on update when no new photo is sent
	KeepPhoto bool
}

// Validate checks that every required field is present and well formed.
// Field names in the returned error are the form field names.
func (s *Submission) Validate() error {
	verr := NewValidationError()

	if strings.TrimSpace(s.Name) == "" {
		verr.Add("nama", "is required")
	}
	switch nik := strings.TrimSpace(s.NIK); {
	case nik == "":
		verr.Add("nik", "is required")
	case !nikPattern.MatchString(nik):
		verr.Add("nik", "must be 16 digits")
	}
	if strings.TrimSpace(s.BirthPlace) == "" {
		verr.Add("tempat_lahir", "is required")
	}
	if s.BirthDate.IsZero() {
		verr.Add("tanggal_lahir", "is required")
	}
	if s.Gender == "" {
		verr.Add("gender", "is required")
	} else if !s.Gender.Valid() {
		verr.Add("gender", "must be MALE or FEMALE")
	}
	switch {
	case s.HeightCM <= 0:
		verr.Add("tinggi", "must be a positive integer")
	case s.HeightCM > MaxHeightCM:
		verr.Add("tinggi", fmt.Sprintf("must be at most %d", MaxHeightCM))
	}
	if strings.TrimSpace(s.Occupation) == "" {
		verr.Add("pekerjaan", "is required")
	}
	switch number := strings.TrimSpace(s.LicenseNumber); {
	case number == "":
		verr.Add("no_sim", "is required")
	case utf8.RuneCountInString(number) > MaxLicenseNumberLength:
		verr.Add("no_sim", fmt.Sprintf("must be at most %d characters", MaxLicenseNumberLength))
	}

	return verr.OrNil()
}

// owner builds the owner-attribute subset of the submission
func (s *Submission) owner() *models.Owner {
	return &models.Owner{
		NIK:        strings.TrimSpace(s.NIK),
		Name:       strings.TrimSpace(s.Name),
		Address:    trimOptional(s.Address),
		BirthDate:  s.BirthDate,
		BirthPlace: strings.TrimSpace(s.BirthPlace),
		Gender:     s.Gender,
		Occupation: strings.TrimSpace(s.Occupation),
		HeightCM:   s.HeightCM,
	}
}

// applyTo copies the license attributes onto license
func (s *Submission) applyTo(license *models.License, ownerRef *models.Owner) {
	license.OwnerID = ownerRef.ID
	license.Owner = ownerRef
	license.LicenseNumber = strings.TrimSpace(s.LicenseNumber)
	license.Name = strings.TrimSpace(s.Name)
	license.BirthPlace = strings.TrimSpace(s.BirthPlace)
	license.BirthDate = s.BirthDate
	license.Gender = s.Gender
	license.HeightCM = s.HeightCM
	license.Occupation = strings.TrimSpace(s.Occupation)
	license.ValidUntil = s.ValidUntil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
