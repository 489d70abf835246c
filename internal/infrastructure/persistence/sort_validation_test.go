package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

func TestSortColumns_Order(t *testing.T) {
	tests := []struct {
		by, dir  string
		wantCol  string
		wantDesc bool
	}{
		{"", "", "created_at", true},
		{"full_name", "asc", "full_name", false},
		{"  full_name ", " ASC ", "full_name", false},
		{"company", "desc", "company", true},
		{"company", "sideways", "company", true},
		{"FULL_NAME", "asc", "created_at", false},
		{"password_hash", "asc", "created_at", false},
		{"full_name; DROP TABLE users;--", "", "created_at", true},
		{"full_name", "ASC; DROP TABLE users;--", "full_name", true},
		{"(SELECT password_hash FROM users)", "", "created_at", true},
	}
	for _, tt := range tests {
		got := clientSort.order(shared.Filter{OrderBy: tt.by, OrderDir: tt.dir}, "created_at")
		assert.Equal(t, tt.wantCol, got.Column.Name, "by=%q", tt.by)
		assert.Equal(t, tt.wantDesc, got.Desc, "dir=%q", tt.dir)
	}
}

func TestSortColumns_QuotedInSQL(t *testing.T) {
	db := newSQLiteDB(t)
	stmt := db.Session(&gorm.Session{DryRun: true}).Table("crm_clients").
		Order(clientSort.order(shared.Filter{OrderBy: "billing_city", OrderDir: "asc"}, "created_at")).
		Find(&[]map[string]any{}).Statement
	require.NotNil(t, stmt)
	assert.Contains(t, stmt.SQL.String(), "ORDER BY `billing_city`")
}

func TestSortColumns_DefaultsAreListed(t *testing.T) {
	for name, cols := range map[string]sortColumns{
		"lead": leadSort, "client": clientSort, "project": projectSort, "item": itemSort,
		"supplier": supplierSort, "order": orderSort, "user": userSort, "quote": quoteSort,
		"message": messageSort, "appointment": appointmentSort,
	} {
		assert.Contains(t, cols, "created_at", name)
	}
}
