package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"simregistry-backend/metrics"
	"simregistry-backend/models"
	"simregistry-backend/repository"
	"simregistry-backend/storage"

	"github.com/google/uuid"
)

// OwnerRepository persists owners keyed by NIK
type OwnerRepository interface {
	FindByNIK(ctx context.Context, nik string) (*models.Owner, error)
	Create(ctx context.Context, owner *models.Owner) error
}

// LicenseRepository persists licenses
type LicenseRepository interface {
	Create(ctx context.Context, license *models.License) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.License, error)
	Update(ctx context.Context, license *models.License) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page, pageSize int) ([]*models.License, int, error)
}

// PhotoStore persists uploaded photos and releases them by reference
type PhotoStore interface {
	Store(ctx context.Context, upload models.PhotoUpload) (string, error)
	Delete(ctx context.Context, ref string) error
}

// SIMService reconciles license submissions with owner records and photo files
type SIMService struct {
	ownerRepo   OwnerRepository
	licenseRepo LicenseRepository
	photos      PhotoStore
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// SIMServiceOption is a functional option for SIMService
type SIMServiceOption func(*SIMService)

// WithOwnerRepository sets the owner repository
func WithOwnerRepository(repo OwnerRepository) SIMServiceOption {
	return func(s *SIMService) {
		s.ownerRepo = repo
	}
}

// WithLicenseRepository sets the license repository
func WithLicenseRepository(repo LicenseRepository) SIMServiceOption {
	return func(s *SIMService) {
		s.licenseRepo = repo
	}
}

// WithPhotoStore sets the photo store
func WithPhotoStore(photos PhotoStore) SIMServiceOption {
	return func(s *SIMService) {
		s.photos = photos
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) SIMServiceOption {
	return func(s *SIMService) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) SIMServiceOption {
	return func(s *SIMService) {
		s.metrics = m
	}
}

// NewSIMService creates a new SIM service
func NewSIMService(opts ...SIMServiceOption) *SIMService {
	s := &SIMService{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SIMService) ready() error {
	switch {
	case s.ownerRepo == nil:
		return errors.New("owner repository not set")
	case s.licenseRepo == nil:
		return errors.New("license repository not set")
	case s.photos == nil:
		return errors.New("photo store not set")
	}
	return nil
}

// CreateLicenseRequest represents a request to create a license
type CreateLicenseRequest struct {
	Submission Submission
}

// CreateLicenseResult represents the result of creating a license
type CreateLicenseResult struct {
	License      *models.License
	OwnerCreated bool
}

// CreateLicense validates the submission, reuses or creates the owner by NIK,
// stores the photo and creates the license. On failure the stored photo is removed.
func (s *SIMService) CreateLicense(ctx context.Context, req CreateLicenseRequest) (result *CreateLicenseResult, err error) {
	defer func() { s.observe("create", err) }()
	if err := s.ready(); err != nil {
		return nil, err
	}

	sub := req.Submission
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	tx := newSaga("create", s.logger, s.metrics)

	var photoRef *string
	if sub.Photo != nil {
		ref, err := s.photos.Store(ctx, *sub.Photo)
		if err != nil {
			return nil, err
		}
		photoRef = &ref
		tx.compensate("delete uploaded photo", func(ctx context.Context) error {
			return s.photos.Delete(ctx, ref)
		})
	}

	owner, created, err := s.resolveOwner(ctx, &sub)
	if err != nil {
		tx.rollback(ctx, err)
		return nil, err
	}

	license := &models.License{Photo: photoRef}
	sub.applyTo(license, owner)
	if err := s.licenseRepo.Create(ctx, license); err != nil {
		tx.rollback(ctx, err)
		return nil, fmt.Errorf("create license %s: %w", license.LicenseNumber, err)
	}
	tx.commit(ctx)

	s.logger.Info("license created",
		"license_id", license.ID,
		"owner_id", owner.ID,
		"owner_created", created,
		"has_photo", license.HasPhoto(),
	)
	return &CreateLicenseResult{License: license, OwnerCreated: created}, nil
}

// UpdateLicenseRequest represents a request to update a license
type UpdateLicenseRequest struct {
	ID         uuid.UUID
	Submission Submission
}

// UpdateLicenseResult represents the result of updating a license
type UpdateLicenseResult struct {
	License      *models.License
	OwnerCreated bool
}

// UpdateLicense applies the submission to an existing license in one update call.
// The superseded photo is deleted only after that update succeeds.
func (s *SIMService) UpdateLicense(ctx context.Context, req UpdateLicenseRequest) (result *UpdateLicenseResult, err error) {
	defer func() { s.observe("update", err) }()
	if err := s.ready(); err != nil {
		return nil, err
	}

	sub := req.Submission
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	license, err := s.licenseRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	tx := newSaga("update", s.logger, s.metrics)

	oldRef := license.Photo
	switch {
	case sub.Photo != nil:
		ref, err := s.photos.Store(ctx, *sub.Photo)
		if err != nil {
			return nil, err
		}
		tx.compensate("delete uploaded photo", func(ctx context.Context) error {
			return s.photos.Delete(ctx, ref)
		})
		license.Photo = &ref
	case !sub.KeepPhoto:
		license.Photo = nil
	}

	if oldRef != nil && *oldRef != "" && (license.Photo == nil || *license.Photo != *oldRef) {
		superseded := *oldRef
		tx.finalize("delete superseded photo", func(ctx context.Context) error {
			return s.photos.Delete(ctx, superseded)
		})
	}

	owner, created, err := s.resolveOwner(ctx, &sub)
	if err != nil {
		tx.rollback(ctx, err)
		return nil, err
	}

	sub.applyTo(license, owner)
	if err := s.licenseRepo.Update(ctx, license); err != nil {
		tx.rollback(ctx, err)
		return nil, fmt.Errorf("update license %s: %w", req.ID, err)
	}
	tx.commit(ctx)

	s.logger.Info("license updated",
		"license_id", license.ID,
		"owner_id", owner.ID,
		"owner_created", created,
		"has_photo", license.HasPhoto(),
	)
	return &UpdateLicenseResult{License: license, OwnerCreated: created}, nil
}

// DeleteLicense deletes the license record and then releases its photo.
// A failure to delete the photo is logged, never returned.
func (s *SIMService) DeleteLicense(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { s.observe("delete", err) }()
	if err := s.ready(); err != nil {
		return err
	}

	license, err := s.licenseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	tx := newSaga("delete", s.logger, s.metrics)
	if license.HasPhoto() {
		ref := *license.Photo
		tx.finalize("delete license photo", func(ctx context.Context) error {
			return s.photos.Delete(ctx, ref)
		})
	}

	if err := s.licenseRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete license %s: %w", id, err)
	}
	tx.commit(ctx)

	s.logger.Info("license deleted", "license_id", id)
	return nil
}

// DeletePhotoResult represents the result of removing a license photo
type DeletePhotoResult struct {
	License *models.License
	Removed bool
}

// DeletePhoto clears the photo reference of a license and deletes the file.
// A license without a photo is left untouched.
func (s *SIMService) DeletePhoto(ctx context.Context, id uuid.UUID) (result *DeletePhotoResult, err error) {
	defer func() { s.observe("delete_photo", err) }()
	if err := s.ready(); err != nil {
		return nil, err
	}

	license, err := s.licenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !license.HasPhoto() {
		return &DeletePhotoResult{License: license}, nil
	}

	tx := newSaga("delete_photo", s.logger, s.metrics)
	ref := *license.Photo
	tx.finalize("delete license photo", func(ctx context.Context) error {
		return s.photos.Delete(ctx, ref)
	})

	license.Photo = nil
	if err := s.licenseRepo.Update(ctx, license); err != nil {
		tx.rollback(ctx, err)
		return nil, fmt.Errorf("clear photo of license %s: %w", id, err)
	}
	tx.commit(ctx)

	s.logger.Info("license photo removed", "license_id", id, "photo", ref)
	return &DeletePhotoResult{License: license, Removed: true}, nil
}

// GetLicense retrieves a license with its owner
func (s *SIMService) GetLicense(ctx context.Context, id uuid.UUID) (*models.License, error) {
	if s.licenseRepo == nil {
		return nil, errors.New("license repository not set")
	}
	return s.licenseRepo.GetByID(ctx, id)
}

// ListLicenses returns one page of licenses ordered by creation time, newest first
func (s *SIMService) ListLicenses(ctx context.Context, page, pageSize int) (*models.LicensePage, error) {
	if s.licenseRepo == nil {
		return nil, errors.New("license repository not set")
	}

	items, total, err := s.licenseRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &models.LicensePage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// resolveOwner returns the owner for the submission's NIK, creating it when absent.
// Losing a creation race to a concurrent request re-fetches the winner.
func (s *SIMService) resolveOwner(ctx context.Context, sub *Submission) (*models.Owner, bool, error) {
	candidate := sub.owner()

	owner, err := s.ownerRepo.FindByNIK(ctx, candidate.NIK)
	if err == nil {
		return owner, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("find owner %s: %w", candidate.NIK, err)
	}

	err = s.ownerRepo.Create(ctx, candidate)
	if err == nil {
		s.metrics.IncOwnerCreated()
		return candidate, true, nil
	}
	if !errors.Is(err, repository.ErrConstraintViolation) {
		return nil, false, fmt.Errorf("create owner %s: %w", candidate.NIK, err)
	}

	s.metrics.IncOwnerRaceRetry()
	owner, findErr := s.ownerRepo.FindByNIK(ctx, candidate.NIK)
	if findErr != nil {
		return nil, false, fmt.Errorf("create owner %s: %w", candidate.NIK, err)
	}
	return owner, false, nil
}

func (s *SIMService) observe(operation string, err error) {
	s.metrics.ObserveOperation(operation, Outcome(err))
}

// Outcome classifies an operation error into a metrics outcome label
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrValidation):
		return metrics.OutcomeValidation
	case errors.Is(err, repository.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, repository.ErrConstraintViolation):
		return metrics.OutcomeConflict
	case errors.Is(err, storage.ErrUnsupportedMediaType), errors.Is(err, storage.ErrPayloadTooLarge):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
