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

// RequestsHandler manages the requester-facing endpoints.
type RequestsHandler struct {
	lifecycle *service.LifecycleService
	queries   *service.QueryService
	taxonomy  *service.TaxonomyService
	dashboard *service.DashboardService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(lifecycle *service.LifecycleService, queries *service.QueryService, taxonomy *service.TaxonomyService, dashboard *service.DashboardService) *RequestsHandler {
	return &RequestsHandler{lifecycle: lifecycle, queries: queries, taxonomy: taxonomy, dashboard: dashboard}
}

// CreateRequest POST /requests.
func (h *RequestsHandler) CreateRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UnitID == "" || req.CategoryID == "" || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return apperrors.NewValidationError("unit_id, category_id, title, description required", nil)
	}
	if err := h.taxonomy.ValidateSubmission(c.Context(), req.UnitID, req.CategoryID); err != nil {
		return err
	}

	input := service.CreateRequestInput{
		RequesterID: principal.User.ID,
		UnitID:      req.UnitID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Priority != nil {
		priority, ok := domain.PriorityFromFilter(strings.ToLower(*req.Priority))
		if !ok {
			return apperrors.NewValidationError("unknown priority", fiber.Map{"priority": *req.Priority})
		}
		input.Priority = &priority
	}

	request, err := h.lifecycle.CreateRequest(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewRequestDetail(request)})
}

// ListRequests GET /requests.
func (h *RequestsHandler) ListRequests(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	requests, err := h.queries.ListMyRequests(c.Context(), principal.User.ID, parseListFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestSummaries(requests)})
}

// GetRequest GET /requests/:id.
func (h *RequestsHandler) GetRequest(c *fiber.Ctx) error {
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

// GetTimeline GET /requests/:id/timeline.
func (h *RequestsHandler) GetTimeline(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	views, err := h.queries.GetTimeline(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.TimelineEntryResponse, 0, len(views))
	for _, view := range views {
		items = append(items, dto.NewTimelineEntryResponse(view.Entry, view.Attachments))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Respond POST /requests/:id/respond. Students use this to answer a
// Waiting Response request or to add a comment without changing status.
func (h *RequestsHandler) Respond(c *fiber.Ctx) error {
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

	// The engine leaves role-level checks to the caller.
	if _, err := h.queries.GetRequest(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	if err := h.lifecycle.Respond(c.Context(), c.Params("id"), principal.User.ID, status, req.Comment); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": status.DisplayName()}})
}

// Cancel POST /requests/:id/cancel.
func (h *RequestsHandler) Cancel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.lifecycle.Cancel(c.Context(), c.Params("id"), principal.User.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": domain.StatusCancelled.DisplayName()}})
}

// Attach POST /requests/:id/attachments.
func (h *RequestsHandler) Attach(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AttachmentPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.FileName == "" || req.StorageKey == "" {
		return apperrors.NewValidationError("file_name, storage_key required", nil)
	}

	attachment := &domain.Attachment{
		RequestID:       c.Params("id"),
		TimelineEntryID: req.TimelineEntryID,
		FileName:        req.FileName,
		StorageKey:      req.StorageKey,
		MimeType:        req.MimeType,
		SizeBytes:       req.SizeBytes,
	}
	if err := h.queries.AttachFile(c.Context(), principal.User, attachment); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewAttachmentResponse(*attachment)})
}

// ListUnits GET /units.
func (h *RequestsHandler) ListUnits(c *fiber.Ctx) error {
	units, err := h.taxonomy.ListUnits(c.Context(), true)
	if err != nil {
		return err
	}
	items := make([]dto.UnitResponse, 0, len(units))
	for i := range units {
		items = append(items, dto.NewUnitResponse(&units[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListCategories GET /categories.
func (h *RequestsHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.taxonomy.ListCategories(c.Context(), true)
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, dto.NewCategoryResponse(&categories[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Dashboard GET /dashboard.
func (h *RequestsHandler) Dashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	stats, err := h.dashboard.StudentStats(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

func requestSummaries(requests []domain.Request) []dto.RequestSummary {
	items := make([]dto.RequestSummary, 0, len(requests))
	for i := range requests {
		items = append(items, dto.NewRequestSummary(&requests[i]))
	}
	return items
}
