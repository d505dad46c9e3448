package models

import (
	"time"

	"github.com/google/uuid"
)

// Owner represents a license holder, unique by NIK
type Owner struct {
	ID         uuid.UUID `json:"id"`
	NIK        string    `json:"nik"`
	Name       string    `json:"nama"`
	Address    *string   `json:"alamat,omitempty"`
	BirthDate  time.Time `json:"tanggal_lahir"`
	BirthPlace string    `json:"tempat_lahir"`
	Gender     Gender    `json:"gender"`
	Occupation string    `json:"pekerjaan"`
	HeightCM   int       `json:"tinggi"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
