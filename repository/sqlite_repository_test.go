package repository

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"simregistry-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type SQLiteRepositorySuite struct {
	suite.Suite
	ctx      context.Context
	owners   *SQLiteOwnerRepository
	licenses *SQLiteLicenseRepository
	clock    time.Time
}

func TestSQLiteRepositorySuite(t *testing.T) {
	suite.Run(t, new(SQLiteRepositorySuite))
}

func (s *SQLiteRepositorySuite) SetupTest() {
	s.ctx = context.Background()
	db, err := OpenSQLite(s.ctx, ":memory:")
	s.Require().NoError(err)
	s.T().Cleanup(func() { db.Close() })
	s.Require().NoError(ApplySQLiteSchema(s.ctx, db))

	// every call advances the clock so created_at ordering is deterministic
	s.clock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		s.clock = s.clock.Add(time.Second)
		return s.clock
	}

	s.owners = NewSQLiteOwnerRepository(db)
	s.owners.now = tick
	s.licenses = NewSQLiteLicenseRepository(db)
	s.licenses.now = tick
}

func (s *SQLiteRepositorySuite) newOwner(nik string) *models.Owner {
	address := "Jl. Sudirman No. 123, Jakarta"
	return &models.Owner{
		NIK:        nik,
		Name:       "Budi Santoso",
		Address:    &address,
		BirthDate:  time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC),
		BirthPlace: "Jakarta",
		Gender:     models.GenderMale,
		Occupation: "Karyawan Swasta",
		HeightCM:   170,
	}
}

func (s *SQLiteRepositorySuite) newLicense(owner *models.Owner, number string) *models.License {
	return &models.License{
		OwnerID:       owner.ID,
		LicenseNumber: number,
		Name:          owner.Name,
		BirthPlace:    owner.BirthPlace,
		BirthDate:     owner.BirthDate,
		Gender:        owner.Gender,
		HeightCM:      owner.HeightCM,
		Occupation:    owner.Occupation,
	}
}

func (s *SQLiteRepositorySuite) TestOwnerCreateAndFind() {
	owner := s.newOwner("3174051990010001")
	s.Require().NoError(s.owners.Create(s.ctx, owner))
	s.NotEqual(uuid.Nil, owner.ID)

	found, err := s.owners.FindByNIK(s.ctx, "3174051990010001")
	s.Require().NoError(err)
	s.Equal(owner.ID, found.ID)
	s.Equal("Budi Santoso", found.Name)
	s.Equal(models.GenderMale, found.Gender)
	s.Equal(owner.BirthDate, found.BirthDate)
	s.Require().NotNil(found.Address)
	s.Equal(*owner.Address, *found.Address)

	s.Run("absent owner returns ErrNotFound", func() {
		_, err := s.owners.FindByNIK(s.ctx, "0000000000000000")
		s.ErrorIs(err, ErrNotFound)
	})
}

func (s *SQLiteRepositorySuite) TestOwnerDuplicateNIK() {
	s.Require().NoError(s.owners.Create(s.ctx, s.newOwner("3174051990010001")))

	err := s.owners.Create(s.ctx, s.newOwner("3174051990010001"))
	s.ErrorIs(err, ErrConstraintViolation)

	n, err := s.owners.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *SQLiteRepositorySuite) TestLicenseLifecycle() {
	owner := s.newOwner("3174051990010001")
	s.Require().NoError(s.owners.Create(s.ctx, owner))

	license := s.newLicense(owner, "SIM-000001")
	photo := "/uploads/1-a.png"
	license.Photo = &photo
	validUntil := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	license.ValidUntil = &validUntil
	s.Require().NoError(s.licenses.Create(s.ctx, license))

	found, err := s.licenses.GetByID(s.ctx, license.ID)
	s.Require().NoError(err)
	s.Equal("SIM-000001", found.LicenseNumber)
	s.Require().NotNil(found.Photo)
	s.Equal(photo, *found.Photo)
	s.Require().NotNil(found.ValidUntil)
	s.True(validUntil.Equal(*found.ValidUntil))
	s.Require().NotNil(found.Owner)
	s.Equal(owner.NIK, found.Owner.NIK)

	found.Photo = nil
	found.ValidUntil = nil
	found.Occupation = "Wiraswasta"
	s.Require().NoError(s.licenses.Update(s.ctx, found))

	updated, err := s.licenses.GetByID(s.ctx, license.ID)
	s.Require().NoError(err)
	s.Nil(updated.Photo)
	s.Nil(updated.ValidUntil)
	s.Equal("Wiraswasta", updated.Occupation)
	s.True(updated.UpdatedAt.After(updated.CreatedAt))

	s.Require().NoError(s.licenses.Delete(s.ctx, license.ID))
	_, err = s.licenses.GetByID(s.ctx, license.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *SQLiteRepositorySuite) TestLicenseNotFound() {
	missing := &models.License{ID: uuid.New(), OwnerID: uuid.New(), BirthDate: time.Now()}

	s.ErrorIs(s.licenses.Update(s.ctx, missing), ErrNotFound)
	s.ErrorIs(s.licenses.Delete(s.ctx, missing.ID), ErrNotFound)
	_, err := s.licenses.GetByID(s.ctx, missing.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *SQLiteRepositorySuite) TestLicenseDuplicateNumber() {
	owner := s.newOwner("3174051990010001")
	s.Require().NoError(s.owners.Create(s.ctx, owner))
	s.Require().NoError(s.licenses.Create(s.ctx, s.newLicense(owner, "SIM-000001")))

	err := s.licenses.Create(s.ctx, s.newLicense(owner, "SIM-000001"))
	s.ErrorIs(err, ErrConstraintViolation)
}

func (s *SQLiteRepositorySuite) TestLicenseRequiresExistingOwner() {
	ghost := s.newOwner("3174051990010009")
	ghost.ID = uuid.New()

	err := s.licenses.Create(s.ctx, s.newLicense(ghost, "SIM-000009"))
	s.Error(err)
}

func (s *SQLiteRepositorySuite) TestListPagination() {
	owner := s.newOwner("3174051990010001")
	s.Require().NoError(s.owners.Create(s.ctx, owner))

	for i := 1; i <= 25; i++ {
		s.Require().NoError(s.licenses.Create(s.ctx, s.newLicense(owner, fmt.Sprintf("SIM-%06d", i))))
	}

	s.Run("first page is newest first", func() {
		items, total, err := s.licenses.List(s.ctx, 1, 10)
		s.Require().NoError(err)
		s.Equal(25, total)
		s.Require().Len(items, 10)
		s.Equal("SIM-000025", items[0].LicenseNumber)
		s.Equal("SIM-000016", items[9].LicenseNumber)
		for i := 1; i < len(items); i++ {
			s.False(items[i].CreatedAt.After(items[i-1].CreatedAt))
		}
	})

	s.Run("last partial page", func() {
		items, total, err := s.licenses.List(s.ctx, 3, 10)
		s.Require().NoError(err)
		s.Equal(25, total)
		s.Len(items, 5)
		s.Equal("SIM-000001", items[4].LicenseNumber)
	})

	s.Run("page beyond the last is empty with true total", func() {
		items, total, err := s.licenses.List(s.ctx, 4, 10)
		s.Require().NoError(err)
		s.Equal(25, total)
		s.Empty(items)
	})

	s.Run("page whose offset overflows is empty with true total", func() {
		items, total, err := s.licenses.List(s.ctx, math.MaxInt/10+2, 10)
		s.Require().NoError(err)
		s.Equal(25, total)
		s.Empty(items)

		items, total, err = s.licenses.List(s.ctx, math.MaxInt/10, 10)
		s.Require().NoError(err)
		s.Equal(25, total)
		s.Empty(items)
	})

	s.Run("non-positive arguments are rejected", func() {
		_, _, err := s.licenses.List(s.ctx, 0, 10)
		s.Error(err)
		_, _, err = s.licenses.List(s.ctx, 1, 0)
		s.Error(err)
	})
}
