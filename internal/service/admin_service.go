package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/campus-desk/request-service/internal/domain"
	"github.com/campus-desk/request-service/internal/repository"
	apperrors "github.com/campus-desk/request-service/pkg/util/errorutil"
)

// AdminService covers account administration: listing users, changing
// roles and attaching officers to the units they serve.
type AdminService struct {
	users repository.UserRepository
	units repository.UnitRepository
}

// NewAdminService constructs the service.
func NewAdminService(users repository.UserRepository, units repository.UnitRepository) *AdminService {
	return &AdminService{users: users, units: units}
}

// ListUsers returns accounts matching the filter.
func (s *AdminService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return users, nil
}

// ChangeRole promotes or demotes an account.
func (s *AdminService) ChangeRole(ctx context.Context, userID string, role domain.Role) error {
	switch role {
	case domain.RoleStudent, domain.RoleOfficer, domain.RoleAdmin:
	default:
		return apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.NewStorageFailure(err)
	}
	return nil
}

// AssignUnits replaces an officer's unit assignments.
func (s *AdminService) AssignUnits(ctx context.Context, officerID string, unitIDs []string) error {
	user, err := s.users.GetByID(ctx, officerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": officerID})
		}
		return apperrors.NewStorageFailure(err)
	}
	if user.Role != domain.RoleOfficer {
		return apperrors.NewValidationError("unit assignments require an officer account", map[string]any{"user_id": officerID})
	}
	for _, unitID := range unitIDs {
		if _, err := s.units.GetByID(ctx, unitID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewValidationError("unknown unit", map[string]any{"unit_id": unitID})
			}
			return apperrors.NewStorageFailure(err)
		}
	}
	if err := s.users.ReplaceUnitAssignments(ctx, officerID, unitIDs); err != nil {
		return apperrors.NewStorageFailure(err)
	}
	return nil
}

// UnitsOf returns the unit ids the officer serves.
func (s *AdminService) UnitsOf(ctx context.Context, officerID string) ([]string, error) {
	unitIDs, err := s.users.UnitsOf(ctx, officerID)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return unitIDs, nil
}

// OfficersInUnit lists active officers attached to a unit, used by the
// transfer dialog to offer peers.
func (s *AdminService) OfficersInUnit(ctx context.Context, unitID string) ([]domain.User, error) {
	officers, err := s.users.OfficersInUnit(ctx, unitID)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return officers, nil
}
