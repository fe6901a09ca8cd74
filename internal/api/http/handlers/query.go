package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-desk/request-service/internal/domain"
	"github.com/campus-desk/request-service/internal/service"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parseListFilter reads the shared listing query parameters. Unknown
// status or priority values are ignored rather than rejected.
func parseListFilter(c *fiber.Ctx) service.ListFilter {
	filter := service.ListFilter{
		SortBy:   c.Query("sort_by"),
		SortDesc: strings.EqualFold(c.Query("order"), "desc"),
		Limit:    defaultPageSize,
	}

	for _, raw := range splitCSV(c.Query("status")) {
		if status, ok := domain.StatusFromFilter(raw); ok {
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	for _, raw := range splitCSV(c.Query("priority")) {
		if priority, ok := domain.PriorityFromFilter(raw); ok {
			filter.Priorities = append(filter.Priorities, priority)
		}
	}
	if term := strings.TrimSpace(c.Query("search")); term != "" {
		filter.SearchTerm = &term
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		if limit > maxPageSize {
			limit = maxPageSize
		}
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}
	return filter
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
