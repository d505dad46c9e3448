package handlers

import (
	"testing"

	"simregistry-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestGenderNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want models.Gender
	}{
		{"laki-laki", models.GenderMale},
		{"Laki-Laki", models.GenderMale},
		{"LAKI", models.GenderMale},
		{" pria ", models.GenderMale},
		{"L", models.GenderMale},
		{"MALE", models.GenderMale},
		{"m", models.GenderMale},
		{"perempuan", models.GenderFemale},
		{"PEREMPUAN", models.GenderFemale},
		{"Wanita", models.GenderFemale},
		{"p", models.GenderFemale},
		{"FEMALE", models.GenderFemale},
	}

	n := GenderNormalizer{}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := n.Normalize(tt.raw)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenderNormalizeUnknownToken(t *testing.T) {
	lenient := GenderNormalizer{Logger: discardLogger()}
	got, ok := lenient.Normalize("x")
	assert.True(t, ok)
	assert.Equal(t, models.GenderFemale, got)

	strict := GenderNormalizer{Strict: true}
	_, ok = strict.Normalize("x")
	assert.False(t, ok)
}

func TestGenderNormalizeEmpty(t *testing.T) {
	_, ok := GenderNormalizer{}.Normalize("   ")
	assert.False(t, ok)
}
