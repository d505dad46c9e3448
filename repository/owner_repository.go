package repository

import (
	"context"
	"errors"
	"fmt"

	"simregistry-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OwnerRepository handles database operations for owners
type OwnerRepository struct {
	db *pgxpool.Pool
}

// NewOwnerRepository creates a new owner repository
func NewOwnerRepository(db *pgxpool.Pool) *OwnerRepository {
	return &OwnerRepository{db: db}
}

// Create creates a new owner. A duplicate NIK yields ErrConstraintViolation.
func (r *OwnerRepository) Create(ctx context.Context, owner *models.Owner) error {
	query := `
		INSERT INTO owners (
			nik, name, address, birth_date, birth_place, gender, occupation, height_cm
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		owner.NIK,
		owner.Name,
		owner.Address,
		owner.BirthDate,
		owner.BirthPlace,
		owner.Gender,
		owner.Occupation,
		owner.HeightCM,
	).Scan(&owner.ID, &owner.CreatedAt, &owner.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("owner %s: %w", owner.NIK, ErrConstraintViolation)
		}
		return err
	}

	return nil
}

// FindByNIK retrieves an owner by national ID
func (r *OwnerRepository) FindByNIK(ctx context.Context, nik string) (*models.Owner, error) {
	owner := &models.Owner{}
	query := `
		SELECT id, nik, name, address, birth_date, birth_place, gender, occupation, height_cm,
			created_at, updated_at
		FROM owners
		WHERE nik = $1`

	err := r.db.QueryRow(ctx, query, nik).Scan(
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
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return owner, nil
}

// Count returns the number of owners
func (r *OwnerRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM owners`).Scan(&n)
	return n, err
}
