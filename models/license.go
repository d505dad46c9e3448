package models

import (
	"time"

	"github.com/google/uuid"
)

// License represents a single issued SIM document
type License struct {
	ID            uuid.UUID  `json:"id"`
	OwnerID       uuid.UUID  `json:"pemilik_id"`
	LicenseNumber string     `json:"no_sim"`
	Name          string     `json:"nama"`
	BirthPlace    string     `json:"tempat_lahir"`
	BirthDate     time.Time  `json:"tanggal_lahir"`
	Gender        Gender     `json:"gender"`
	HeightCM      int        `json:"tinggi"`
	Occupation    string     `json:"pekerjaan"`
	ValidUntil    *time.Time `json:"berlaku_sd,omitempty"`
	Photo         *string    `json:"foto,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Owner is populated by lookups that join the owner row
	Owner *Owner `json:"pemilik,omitempty"`
}

// HasPhoto reports whether the license references a stored photo
func (l *License) HasPhoto() bool {
	return l.Photo != nil && *l.Photo != ""
}

// LicensePage is one page of licenses plus the total row count
type LicensePage struct {
	Items    []*License `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"limit"`
}

// TotalPages returns the number of pages for the page size
func (p *LicensePage) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}
