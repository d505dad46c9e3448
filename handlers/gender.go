package handlers

import (
	"log/slog"
	"strings"

	"simregistry-backend/models"

	"golang.org/x/text/cases"
)

// genderTokens maps case-folded form tokens to the stored enumeration
var genderTokens = map[string]models.Gender{
	"laki-laki": models.GenderMale,
	"laki laki": models.GenderMale,
	"laki":      models.GenderMale,
	"pria":      models.GenderMale,
	"l":         models.GenderMale,
	"male":      models.GenderMale,
	"m":         models.GenderMale,

	"perempuan": models.GenderFemale,
	"wanita":    models.GenderFemale,
	"p":         models.GenderFemale,
	"female":    models.GenderFemale,
	"f":         models.GenderFemale,
}

// GenderNormalizer maps free-text gender input to models.Gender.
// Unrecognised tokens become FEMALE unless Strict is set, in which case they are rejected.
type GenderNormalizer struct {
	Strict bool
	Logger *slog.Logger
}

// Normalize returns the gender for raw. ok is false for empty input, and for
// unrecognised input in strict mode.
func (n GenderNormalizer) Normalize(raw string) (gender models.Gender, ok bool) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "", false
	}

	if g, found := genderTokens[cases.Fold().String(token)]; found {
		return g, true
	}
	if n.Strict {
		return "", false
	}

	if n.Logger != nil {
		n.Logger.Warn("unrecognised gender token, defaulting", "token", token, "gender", models.GenderFemale)
	}
	return models.GenderFemale, true
}
