package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-desk/request-service/internal/api/dto"
	"github.com/campus-desk/request-service/internal/auth"
	"github.com/campus-desk/request-service/internal/domain"
	"github.com/campus-desk/request-service/internal/service"
	apperrors "github.com/campus-desk/request-service/pkg/util/errorutil"
)

// OfficerHandler manages the officer work queue endpoints.
type OfficerHandler struct {
	lifecycle *service.LifecycleService
	queries   *service.QueryService
	admin     *service.AdminService
	dashboard *service.DashboardService
}

// NewOfficerHandler constructs handler.
func NewOfficerHandler(lifecycle *service.LifecycleService, queries *service.QueryService, admin *service.AdminService, dashboard *service.DashboardService) *OfficerHandler {
	return &OfficerHandler{lifecycle: lifecycle, queries: queries, admin: admin, dashboard: dashboard}
}

// Inbox GET /officer/inbox lists unassigned requests in the officer's
// units, pending by default.
func (h *OfficerHandler) Inbox(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	requests, err := h.queries.ListInbox(c.Context(), principal.User.ID, parseListFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestSummaries(requests)})
}

// Assigned GET /officer/assigned lists the officer's current workload.
func (h *OfficerHandler) Assigned(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	requests, err := h.queries.ListAssigned(c.Context(), principal.User.ID, parseListFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestSummaries(requests)})
}

// Claim POST /officer/requests/:id/claim.
func (h *OfficerHandler) Claim(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	status, err := h.lifecycle.ClaimOwnership(c.Context(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": status.DisplayName()}})
}

// Transfer POST /officer/requests/:id/transfer.
func (h *OfficerHandler) Transfer(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.TransferPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ToOfficerID == "" {
		return apperrors.NewValidationError("to_officer_id required", nil)
	}
	if err := h.lifecycle.TransferOwnership(c.Context(), c.Params("id"), principal.User.ID, req.ToOfficerID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"assigned_officer_id": req.ToOfficerID}})
}

// Respond POST /officer/requests/:id/respond.
func (h *OfficerHandler) Respond(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.RespondPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, ok := domain.StatusFromFilter(strings.ToLower(req.Status))
	if !ok {
		return apperrors.NewValidationError("unknown status", fiber.Map{"status": req.Status})
	}
	if err := h.lifecycle.Respond(c.Context(), c.Params("id"), principal.User.ID, status, req.Comment); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": status.DisplayName()}})
}

// Resolve POST /officer/requests/:id/resolve.
func (h *OfficerHandler) Resolve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ResolvePayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	outcome := service.ResolveOutcome(strings.ToUpper(strings.TrimSpace(req.Outcome)))
	if err := h.lifecycle.Resolve(c.Context(), c.Params("id"), principal.User.ID, outcome); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"outcome": outcome}})
}

// Peers GET /officer/units/:id/officers lists transfer candidates.
func (h *OfficerHandler) Peers(c *fiber.Ctx) error {
	officers, err := h.admin.OfficersInUnit(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.UserProfile, 0, len(officers))
	for i := range officers {
		items = append(items, dto.NewUserProfile(&officers[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Dashboard GET /officer/dashboard.
func (h *OfficerHandler) Dashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	stats, err := h.dashboard.OfficerStats(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
