package persistence

import (
	"slices"
	"strings"

	"gorm.io/gorm/clause"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// sortColumns lists the columns a list endpoint may be ordered by. Anything
// else from the query string falls back to the repository default, so the
// caller never reaches raw SQL.
type sortColumns []string

// order resolves the filter's sort into a quoted ORDER BY column.
// Descending unless OrderDir is "asc" in any case.
func (s sortColumns) order(f shared.Filter, fallback string) clause.OrderByColumn {
	col := strings.TrimSpace(f.OrderBy)
	if !slices.Contains(s, col) {
		col = fallback
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: col},
		Desc:   !strings.EqualFold(strings.TrimSpace(f.OrderDir), "asc"),
	}
}

var (
	leadSort        = sortColumns{"created_at", "updated_at", "lead_number", "full_name", "status", "urgency", "city"}
	clientSort      = sortColumns{"created_at", "updated_at", "client_number", "full_name", "company", "billing_city"}
	projectSort     = sortColumns{"created_at", "updated_at", "project_number", "name", "status", "priority", "start_date", "expected_end_date"}
	appointmentSort = sortColumns{"start_date", "end_date", "created_at", "status", "type"}
	itemSort        = sortColumns{"created_at", "updated_at", "sku", "name", "selling_price_ht", "stock_qty"}
	supplierSort    = sortColumns{"created_at", "name", "city"}
	orderSort       = sortColumns{"created_at", "order_number", "total", "status", "payment_status"}
	userSort        = sortColumns{"created_at", "updated_at", "email", "name", "role", "last_login"}
	quoteSort       = sortColumns{"created_at", "updated_at", "quote_number", "status", "customer_name"}
	messageSort     = sortColumns{"created_at", "status", "name", "subject"}
)
