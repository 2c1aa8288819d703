package persistence

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/dormhub/backend/internal/domain/shared"
)

// validateSortOrder normalizes the sort order to ASC or DESC,
// defaulting to DESC for anything unrecognized.
func validateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// validateSortField checks the sort field against a whitelist so user
// input never reaches the ORDER BY clause unchecked.
func validateSortField(sortField string, allowed map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowed[trimmed] {
		return defaultField
	}
	return trimmed
}

var billSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"room_number":  true,
	"period_year":  true,
	"period_month": true,
	"due_date":     true,
	"total_amount": true,
	"paid_amount":  true,
	"status":       true,
}

var roomSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"number":     true,
	"floor":      true,
	"status":     true,
}

var tenantSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"name":                true,
	"status":              true,
	"outstanding_balance": true,
}

var dormitorySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// applyFilter adds ordering and pagination from a shared.Filter
func applyFilter(query *gorm.DB, filter shared.Filter, allowedSortFields map[string]bool) *gorm.DB {
	field := validateSortField(filter.OrderBy, allowedSortFields, "created_at")
	dir := validateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", field, dir))

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}
