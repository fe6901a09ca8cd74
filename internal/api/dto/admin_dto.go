package dto

import (
	"time"

	"github.com/campus-desk/request-service/internal/domain"
)

// ChangeRolePayload promotes or demotes an account.
type ChangeRolePayload struct {
	Role string `json:"role"`
}

// AssignUnitsPayload replaces an officer's unit memberships.
type AssignUnitsPayload struct {
	UnitIDs []string `json:"unit_ids"`
}

// UnitPayload creates or updates a unit.
type UnitPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// CategoryPayload creates or updates a category.
type CategoryPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// UnitResponse is the public view of a unit.
type UnitResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryResponse is the public view of a category.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUnitResponse maps a domain unit.
func NewUnitResponse(unit *domain.Unit) UnitResponse {
	return UnitResponse{
		ID:          unit.ID,
		Name:        unit.Name,
		Description: unit.Description,
		Active:      unit.IsActive,
		CreatedAt:   unit.CreatedAt,
	}
}

// NewCategoryResponse maps a domain category.
func NewCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Active:      category.IsActive,
		CreatedAt:   category.CreatedAt,
	}
}
