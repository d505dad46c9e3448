package repository

import (
	"context"
	"errors"
	"fmt"

	"simregistry-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const licenseSelect = `
		SELECT l.id, l.owner_id, l.license_number, l.name, l.birth_place, l.birth_date,
			l.gender, l.height_cm, l.occupation, l.valid_until, l.photo,
			l.created_at, l.updated_at,
			o.id, o.nik, o.name, o.address, o.birth_date, o.birth_place, o.gender,
			o.occupation, o.height_cm, o.created_at, o.updated_at
		FROM licenses l
		JOIN owners o ON o.id = l.owner_id`

// LicenseRepository handles database operations for licenses
type LicenseRepository struct {
	db *pgxpool.Pool
}

// NewLicenseRepository creates a new license repository
func NewLicenseRepository(db *pgxpool.Pool) *LicenseRepository {
	return &LicenseRepository{db: db}
}

// Create creates a new license record
func (r *LicenseRepository) Create(ctx context.Context, license *models.License) error {
	query := `
		INSERT INTO licenses (
			owner_id, license_number, name, birth_place, birth_date, gender,
			height_cm, occupation, valid_until, photo
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		license.OwnerID,
		license.LicenseNumber,
		license.Name,
		license.BirthPlace,
		license.BirthDate,
		license.Gender,
		license.HeightCM,
		license.Occupation,
		license.ValidUntil,
		license.Photo,
	).Scan(&license.ID, &license.CreatedAt, &license.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("license %s: %w", license.LicenseNumber, ErrConstraintViolation)
		}
		return err
	}

	return nil
}

// GetByID retrieves a license and its owner by ID
func (r *LicenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	license, err := scanLicense(r.db.QueryRow(ctx, licenseSelect+` WHERE l.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return license, nil
}

// Update writes every mutable column of the license in one statement
func (r *LicenseRepository) Update(ctx context.Context, license *models.License) error {
	query := `
		UPDATE licenses SET
			owner_id = $2,
			license_number = $3,
			name = $4,
			birth_place = $5,
			birth_date = $6,
			gender = $7,
			height_cm = $8,
			occupation = $9,
			valid_until = $10,
			photo = $11,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		license.ID,
		license.OwnerID,
		license.LicenseNumber,
		license.Name,
		license.BirthPlace,
		license.BirthDate,
		license.Gender,
		license.HeightCM,
		license.Occupation,
		license.ValidUntil,
		license.Photo,
	).Scan(&license.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("license %s: %w", license.LicenseNumber, ErrConstraintViolation)
		}
		return err
	}

	return nil
}

// Delete deletes a license record
func (r *LicenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM licenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of licenses, newest first, and the total count
func (r *LicenseRepository) List(ctx context.Context, page, pageSize int) ([]*models.License, int, error) {
	limit, offset, reachable, err := pageBounds(page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM licenses`).Scan(&total); err != nil {
		return nil, 0, err
	}
	if !reachable {
		return []*models.License{}, total, nil
	}

	query := licenseSelect + ` ORDER BY l.created_at DESC, l.id DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	licenses := []*models.License{}
	for rows.Next() {
		license, err := scanLicense(rows)
		if err != nil {
			return nil, 0, err
		}
		licenses = append(licenses, license)
	}

	return licenses, total, rows.Err()
}

func scanLicense(row pgx.Row) (*models.License, error) {
	license := &models.License{}
	owner := &models.Owner{}
	err := row.Scan(
		&license.ID,
		&license.OwnerID,
		&license.LicenseNumber,
		&license.Name,
		&license.BirthPlace,
		&license.BirthDate,
		&license.Gender,
		&license.HeightCM,
		&license.Occupation,
		&license.ValidUntil,
		&license.Photo,
		&license.CreatedAt,
		&license.UpdatedAt,
		&owner.ID,
		&owner.NIK,
		&owner.Name,
		&owner.Address,
		&owner.BirthDate,
		&owner.BirthPlace,
		&owner.Gender,
		&owner.Occupation,
		&owner.HeightCM,
		&owner.CreatedAt,
		&owner.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	license.Owner = owner
	return license, nil
}
