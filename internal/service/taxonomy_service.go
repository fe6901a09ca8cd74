package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/campus-desk/request-service/internal/domain"
	"github.com/campus-desk/request-service/internal/repository"
	apperrors "github.com/campus-desk/request-service/pkg/util/errorutil"
)

// TaxonomyService manages units and categories and validates them for
// new submissions.
type TaxonomyService struct {
	units      repository.UnitRepository
	categories repository.CategoryRepository
}

// NewTaxonomyService constructs the service.
func NewTaxonomyService(units repository.UnitRepository, categories repository.CategoryRepository) *TaxonomyService {
	return &TaxonomyService{units: units, categories: categories}
}

// ListUnits returns units, optionally only active ones.
func (s *TaxonomyService) ListUnits(ctx context.Context, activeOnly bool) ([]domain.Unit, error) {
	units, err := s.units.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return units, nil
}

// ListCategories returns categories, optionally only active ones.
func (s *TaxonomyService) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return categories, nil
}

// ValidateSubmission checks the unit and category a new request targets.
func (s *TaxonomyService) ValidateSubmission(ctx context.Context, unitID, categoryID string) error {
	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("unknown unit", map[string]any{"unit_id": unitID})
		}
		return apperrors.NewStorageFailure(err)
	}
	if !unit.IsActive {
		return apperrors.NewValidationError("unit is inactive", map[string]any{"unit_id": unitID})
	}

	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("unknown category", map[string]any{"category_id": categoryID})
		}
		return apperrors.NewStorageFailure(err)
	}
	if !category.IsActive {
		return apperrors.NewValidationError("category is inactive", map[string]any{"category_id": categoryID})
	}
	return nil
}

// CreateUnit adds a unit to the taxonomy.
func (s *TaxonomyService) CreateUnit(ctx context.Context, name, description string) (*domain.Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("unit name required", nil)
	}
	unit := &domain.Unit{Name: name, Description: strings.TrimSpace(description), IsActive: true}
	if err := s.units.Create(ctx, unit); err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return unit, nil
}

// UpdateUnit edits a unit's fields, including the active flag.
func (s *TaxonomyService) UpdateUnit(ctx context.Context, id, name, description string, active bool) (*domain.Unit, error) {
	unit, err := s.units.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("unit", map[string]any{"unit_id": id})
		}
		return nil, apperrors.NewStorageFailure(err)
	}
	unit.Name = strings.TrimSpace(name)
	unit.Description = strings.TrimSpace(description)
	unit.IsActive = active
	if err := s.units.Update(ctx, unit); err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return unit, nil
}

// CreateCategory adds a category to the taxonomy.
func (s *TaxonomyService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name required", nil)
	}
	category := &domain.Category{Name: name, Description: strings.TrimSpace(description), IsActive: true}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return category, nil
}

// UpdateCategory edits a category's fields, including the active flag.
func (s *TaxonomyService) UpdateCategory(ctx context.Context, id, name, description string, active bool) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": id})
		}
		return nil, apperrors.NewStorageFailure(err)
	}
	category.Name = strings.TrimSpace(name)
	category.Description = strings.TrimSpace(description)
	category.IsActive = active
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return category, nil
}
