package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"simregistry-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmission() Submission {
	return Submission{
		NIK:           "3174051990010001",
		Name:          "Budi Santoso",
		BirthPlace:    "Jakarta",
		BirthDate:     time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC),
		Gender:        models.GenderMale,
		HeightCM:      170,
		Occupation:    "Karyawan Swasta",
		LicenseNumber: "SIM-000001",
	}
}

func TestSubmissionValidate(t *testing.T) {
	sub := validSubmission()
	require.NoError(t, sub.Validate())

	tests := []struct {
		name   string
		mutate func(*Submission)
		field  string
	}{
		{"missing name", func(s *Submission) { s.Name = "  " }, "nama"},
		{"missing nik", func(s *Submission) { s.NIK = "" }, "nik"},
		{"short nik", func(s *Submission) { s.NIK = "12345" }, "nik"},
		{"non-digit nik", func(s *Submission) { s.NIK = "31740519900100AB" }, "nik"},
		{"missing birthplace", func(s *Submission) { s.BirthPlace = "" }, "tempat_lahir"},
		{"missing birthdate", func(s *Submission) { s.BirthDate = time.Time{} }, "tanggal_lahir"},
		{"missing gender", func(s *Submission) { s.Gender = "" }, "gender"},
		{"unknown gender", func(s *Submission) { s.Gender = "X" }, "gender"},
		{"zero height", func(s *Submission) { s.HeightCM = 0 }, "tinggi"},
		{"negative height", func(s *Submission) { s.HeightCM = -4 }, "tinggi"},
		{"missing occupation", func(s *Submission) { s.Occupation = "" }, "pekerjaan"},
		{"missing license number", func(s *Submission) { s.LicenseNumber = "" }, "no_sim"},
		{"height above limit", func(s *Submission) { s.HeightCM = MaxHeightCM + 1 }, "tinggi"},
		{"height beyond int4", func(s *Submission) { s.HeightCM = 3_000_000 }, "tinggi"},
		{"license number too long", func(s *Submission) { s.LicenseNumber = "SIM-" + strings.Repeat("9", 61) }, "no_sim"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)

			err := sub.Validate()
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
			assert.Len(t, verr.Fields, 1)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	verr := NewValidationError()
	verr.Add("tinggi", "must be a positive integer")
	verr.Add("nama", "is required")
	verr.Add("nama", "ignored second reason")

	assert.Equal(t, "validation failed: nama is required; tinggi must be a positive integer", verr.Error())
	assert.Nil(t, NewValidationError().OrNil())
}

func TestSubmissionValidateAcceptsColumnLimits(t *testing.T) {
	sub := validSubmission()
	sub.HeightCM = MaxHeightCM
	sub.LicenseNumber = strings.Repeat("9", MaxLicenseNumberLength)
	assert.NoError(t, sub.Validate())
}

func TestSubmissionOwnerTrimsOptionalAddress(t *testing.T) {
	sub := validSubmission()
	blank := "   "
	sub.Address = &blank
	assert.Nil(t, sub.owner().Address)

	addr := " Jl. Sudirman "
	sub.Address = &addr
	require.NotNil(t, sub.owner().Address)
	assert.Equal(t, "Jl. Sudirman", *sub.owner().Address)
}
