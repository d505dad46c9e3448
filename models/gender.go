package models

// Gender represents the enumerated gender stored on owners and licenses
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Valid reports whether g is one of the enumerated values
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Label returns the display label used by the views
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "Laki-laki"
	case GenderFemale:
		return "Perempuan"
	default:
		return string(g)
	}
}
