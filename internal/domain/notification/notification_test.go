package notification

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftValidate(t *testing.T) {
	assert.NoError(t, Draft{Type: TypeNewLead, Title: "Nouveau prospect"}.Validate())

	err := Draft{Type: "BOGUS", Title: " "}.Validate()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, shared.CodeValidationFailed, de.Code)
	assert.Len(t, de.Details, 2)
}

func TestDraftFor(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	a, b := uuid.New(), uuid.New()
	d := Draft{
		Type:     TypeInvoiceOverdue,
		Title:    " Facture FA-2025-0003 en retard ",
		Message:  "",
		Link:     "/admin/facturation/factures/x",
		Metadata: map[string]any{"invoiceNumber": "FA-2025-0003"},
	}

	ns := d.For([]uuid.UUID{a, b}, now)
	require.Len(t, ns, 2)
	assert.Equal(t, a, ns[0].UserID)
	assert.Equal(t, b, ns[1].UserID)
	assert.NotEqual(t, ns[0].ID, ns[1].ID)
	assert.Equal(t, "Facture FA-2025-0003 en retard", ns[0].Title)
	assert.Nil(t, ns[0].Message)
	assert.Equal(t, "/admin/facturation/factures/x", *ns[0].Link)
	assert.False(t, ns[0].Read)
	assert.True(t, ns[0].CreatedAt.Equal(now))

	assert.Empty(t, d.For(nil, now))
}
