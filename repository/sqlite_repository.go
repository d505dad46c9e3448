package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"simregistry-backend/models"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// SQLiteOwnerRepository handles owner persistence on SQLite
type SQLiteOwnerRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteOwnerRepository creates a new SQLite owner repository
func NewSQLiteOwnerRepository(db *sql.DB) *SQLiteOwnerRepository {
	return &SQLiteOwnerRepository{db: db, now: time.Now}
}

// Create creates a new owner. A duplicate NIK yields ErrConstraintViolation.
func (r *SQLiteOwnerRepository) Create(ctx context.Context, owner *models.Owner) error {
	id := uuid.New()
	now := r.now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (
			id, nik, name, address, birth_date, birth_place, gender, occupation, height_cm,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(),
		owner.NIK,
		owner.Name,
		owner.Address,
		owner.BirthDate.Format(dateLayout),
		owner.BirthPlace,
		string(owner.Gender),
		owner.Occupation,
		owner.HeightCM,
		now.UnixNano(),
		now.UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("owner %s: %w", owner.NIK, ErrConstraintViolation)
		}
		return err
	}

	owner.ID = id
	owner.CreatedAt = now
	owner.UpdatedAt = now
	return nil
}

// FindByNIK retrieves an owner by national ID
func (r *SQLiteOwnerRepository) FindByNIK(ctx context.Context, nik string) (*models.Owner, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, nik, name, address, birth_date, birth_place, gender, occupation, height_cm,
			created_at, updated_at
		FROM owners
		WHERE nik = ?`, nik)

	owner, err := scanSQLiteOwner(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return owner, nil
}

// Count returns the number of owners
func (r *SQLiteOwnerRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM owners`).Scan(&n)
	return n, err
}

const sqliteLicenseSelect = `
		SELECT l.id, l.owner_id, l.license_number, l.name, l.birth_place, l.birth_date,
			l.gender, l.height_cm, l.occupation, l.valid_until, l.photo,
			l.created_at, l.updated_at,
			o.id, o.nik, o.name, o.address, o.birth_date, o.birth_place, o.gender,
			o.occupation, o.height_cm, o.created_at, o.updated_at
		FROM licenses l
		JOIN owners o ON o.id = l.owner_id`

// SQLiteLicenseRepository handles license persistence on SQLite
type SQLiteLicenseRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteLicenseRepository creates a new SQLite license repository
func NewSQLiteLicenseRepository(db *sql.DB) *SQLiteLicenseRepository {
	return &SQLiteLicenseRepository{db: db, now: time.Now}
}

// Create creates a new license record
func (r *SQLiteLicenseRepository) Create(ctx context.Context, license *models.License) error {
	id := uuid.New()
	now := r.now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO licenses (
			id, owner_id, license_number, name, birth_place, birth_date, gender,
			height_cm, occupation, valid_until, photo, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(),
		license.OwnerID.String(),
		license.LicenseNumber,
		license.Name,
		license.BirthPlace,
		license.BirthDate.Format(dateLayout),
		string(license.Gender),
		license.HeightCM,
		license.Occupation,
		nullableDate(license.ValidUntil),
		license.Photo,
		now.UnixNano(),
		now.UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("license %s: %w", license.LicenseNumber, ErrConstraintViolation)
		}
		return err
	}

	license.ID = id
	license.CreatedAt = now
	license.UpdatedAt = now
	return nil
}

// GetByID retrieves a license and its owner by ID
func (r *SQLiteLicenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	row := r.db.QueryRowContext(ctx, sqliteLicenseSelect+` WHERE l.id = ?`, id.String())
	license, err := scanSQLiteLicense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return license, nil
}

// Update writes every mutable column of the license in one statement
func (r *SQLiteLicenseRepository) Update(ctx context.Context, license *models.License) error {
	now := r.now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE licenses SET
			owner_id = ?,
			license_number = ?,
			name = ?,
			birth_place = ?,
			birth_date = ?,
			gender = ?,
			height_cm = ?,
			occupation = ?,
			valid_until = ?,
			photo = ?,
			updated_at = ?
		WHERE id = ?`,
		license.OwnerID.String(),
		license.LicenseNumber,
		license.Name,
		license.BirthPlace,
		license.BirthDate.Format(dateLayout),
		string(license.Gender),
		license.HeightCM,
		license.Occupation,
		nullableDate(license.ValidUntil),
		license.Photo,
		now.UnixNano(),
		license.ID.String(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("license %s: %w", license.LicenseNumber, ErrConstraintViolation)
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	license.UpdatedAt = now
	return nil
}

// Delete deletes a license record
func (r *SQLiteLicenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM licenses WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of licenses, newest first, and the total count
func (r *SQLiteLicenseRepository) List(ctx context.Context, page, pageSize int) ([]*models.License, int, error) {
	limit, offset, reachable, err := pageBounds(page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM licenses`).Scan(&total); err != nil {
		return nil, 0, err
	}
	if !reachable {
		return []*models.License{}, total, nil
	}

	rows, err := r.db.QueryContext(ctx,
		sqliteLicenseSelect+` ORDER BY l.created_at DESC, l.id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	licenses := []*models.License{}
	for rows.Next() {
		license, err := scanSQLiteLicense(rows)
		if err != nil {
			return nil, 0, err
		}
		licenses = append(licenses, license)
	}

	return licenses, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteOwner(row rowScanner) (*models.Owner, error) {
	var (
		owner                models.Owner
		birthDate            string
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&owner.ID,
		&owner.NIK,
		&owner.Name,
		&owner.Address,
		&birthDate,
		&owner.BirthPlace,
		&owner.Gender,
		&owner.Occupation,
		&owner.HeightCM,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if owner.BirthDate, err = time.Parse(dateLayout, birthDate); err != nil {
		return nil, fmt.Errorf("owner %s birth_date: %w", owner.ID, err)
	}
	owner.CreatedAt = time.Unix(0, createdAt).UTC()
	owner.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &owner, nil
}

func scanSQLiteLicense(row rowScanner) (*models.License, error) {
	var (
		license                        models.License
		owner                          models.Owner
		birthDate, ownerBirthDate      string
		validUntil                     sql.NullString
		createdAt, updatedAt           int64
		ownerCreatedAt, ownerUpdatedAt int64
	)
	err := row.Scan(
		&license.ID,
		&license.OwnerID,
		&license.LicenseNumber,
		&license.Name,
		&license.BirthPlace,
		&birthDate,
		&license.Gender,
		&license.HeightCM,
		&license.Occupation,
		&validUntil,
		&license.Photo,
		&createdAt,
		&updatedAt,
		&owner.ID,
		&owner.NIK,
		&owner.Name,
		&owner.Address,
		&ownerBirthDate,
		&owner.BirthPlace,
		&owner.Gender,
		&owner.Occupation,
		&owner.HeightCM,
		&ownerCreatedAt,
		&ownerUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if license.BirthDate, err = time.Parse(dateLayout, birthDate); err != nil {
		return nil, fmt.Errorf("license %s birth_date: %w", license.ID, err)
	}
	if owner.BirthDate, err = time.Parse(dateLayout, ownerBirthDate); err != nil {
		return nil, fmt.Errorf("owner %s birth_date: %w", owner.ID, err)
	}
	if validUntil.Valid {
		t, err := time.Parse(dateLayout, validUntil.String)
		if err != nil {
			return nil, fmt.Errorf("license %s valid_until: %w", license.ID, err)
		}
		license.ValidUntil = &t
	}
	license.CreatedAt = time.Unix(0, createdAt).UTC()
	license.UpdatedAt = time.Unix(0, updatedAt).UTC()
	owner.CreatedAt = time.Unix(0, ownerCreatedAt).UTC()
	owner.UpdatedAt = time.Unix(0, ownerUpdatedAt).UTC()
	license.Owner = &owner
	return &license, nil
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}
