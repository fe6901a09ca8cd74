package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-desk/request-service/internal/api/dto"
	"github.com/campus-desk/request-service/internal/auth"
	"github.com/campus-desk/request-service/internal/domain"
	"github.com/campus-desk/request-service/internal/repository"
	"github.com/campus-desk/request-service/internal/service"
	apperrors "github.com/campus-desk/request-service/pkg/util/errorutil"
)

// AdminHandler manages accounts, taxonomies and the system-wide views.
type AdminHandler struct {
	admin     *service.AdminService
	taxonomy  *service.TaxonomyService
	queries   *service.QueryService
	dashboard *service.DashboardService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService, taxonomy *service.TaxonomyService, queries *service.QueryService, dashboard *service.DashboardService) *AdminHandler {
	return &AdminHandler{admin: admin, taxonomy: taxonomy, queries: queries, dashboard: dashboard}
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	filter := repository.UserFilter{Limit: defaultPageSize}
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("role"))); raw != "" {
		role := domain.Role(raw)
		filter.Role = &role
	}
	if term := strings.TrimSpace(c.Query("search")); term != "" {
		filter.SearchTerm = &term
	}

	users, err := h.admin.ListUsers(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.UserProfile, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserProfile(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ChangeRole PATCH /admin/users/:id/role.
func (h *AdminHandler) ChangeRole(c *fiber.Ctx) error {
	var req dto.ChangeRolePayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	role := domain.Role(strings.ToUpper(strings.TrimSpace(req.Role)))
	if err := h.admin.ChangeRole(c.Context(), c.Params("id"), role); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"role": role}})
}

// AssignUnits PUT /admin/users/:id/units.
func (h *AdminHandler) AssignUnits(c *fiber.Ctx) error {
	var req dto.AssignUnitsPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.admin.AssignUnits(c.Context(), c.Params("id"), req.UnitIDs); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"unit_ids": req.UnitIDs}})
}

// ListRequests GET /admin/requests lists across all units.
func (h *AdminHandler) ListRequests(c *fiber.Ctx) error {
	requests, err := h.queries.ListAll(c.Context(), parseListFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestSummaries(requests)})
}

// GetRequest GET /admin/requests/:id.
func (h *AdminHandler) GetRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	request, err := h.queries.GetRequest(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestDetail(request)})
}

// CreateUnit POST /admin/units.
func (h *AdminHandler) CreateUnit(c *fiber.Ctx) error {
	var req dto.UnitPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	unit, err := h.taxonomy.CreateUnit(c.Context(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewUnitResponse(unit)})
}

// UpdateUnit PATCH /admin/units/:id.
func (h *AdminHandler) UpdateUnit(c *fiber.Ctx) error {
	var req dto.UnitPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	unit, err := h.taxonomy.UpdateUnit(c.Context(), c.Params("id"), req.Name, req.Description, active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUnitResponse(unit)})
}

// CreateCategory POST /admin/categories.
func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CategoryPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	category, err := h.taxonomy.CreateCategory(c.Context(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewCategoryResponse(category)})
}

// UpdateCategory PATCH /admin/categories/:id.
func (h *AdminHandler) UpdateCategory(c *fiber.Ctx) error {
	var req dto.CategoryPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	category, err := h.taxonomy.UpdateCategory(c.Context(), c.Params("id"), req.Name, req.Description, active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCategoryResponse(category)})
}

// ListAllUnits GET /admin/units includes inactive units.
func (h *AdminHandler) ListAllUnits(c *fiber.Ctx) error {
	units, err := h.taxonomy.ListUnits(c.Context(), false)
	if err != nil {
		return err
	}
	items := make([]dto.UnitResponse, 0, len(units))
	for i := range units {
		items = append(items, dto.NewUnitResponse(&units[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListAllCategories GET /admin/categories includes inactive entries.
func (h *AdminHandler) ListAllCategories(c *fiber.Ctx) error {
	categories, err := h.taxonomy.ListCategories(c.Context(), false)
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, dto.NewCategoryResponse(&categories[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Dashboard GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.dashboard.AdminStats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
