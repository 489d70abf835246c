package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func code(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func trackedItem(t *testing.T, qty, min string) *Item {
	t.Helper()
	it, err := NewItem("LTB-PRD-0001", ItemParams{
		Name:           "Planche de cèdre 2m",
		Unit:           UnitPiece,
		PurchasePrice:  decp("120"),
		SellingPriceHT: dec("180"),
		TrackStock:     true,
		StockQty:       decp(qty),
		StockMin:       decp(min),
		StockMax:       decp("100"),
	})
	require.NoError(t, err)
	return it
}

func TestNewItem(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		it, err := NewItem("LTB-SRV-0001", ItemParams{Type: ItemService, Name: " Pose ", SellingPriceHT: dec("500")})
		require.NoError(t, err)
		assert.Equal(t, "Pose", it.Name)
		assert.Equal(t, UnitPiece, it.Unit)
		assert.True(t, it.TVARate.Equal(dec("20")))
		assert.True(t, it.IsActive)
		assert.True(t, it.SellingPriceTTC().Equal(dec("600")))
	})

	t.Run("invalid fields", func(t *testing.T) {
		_, err := NewItem("X", ItemParams{Type: "WOOD", Unit: "BOX", SellingPriceHT: dec("-1"), TVARate: decp("120")})
		require.Error(t, err)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, shared.CodeValidationFailed, de.Code)
		assert.Len(t, de.Details, 5)
	})
}

func TestItem_UpdateKeepsStock(t *testing.T) {
	it := trackedItem(t, "12", "5")
	err := it.Update(ItemParams{Name: "Planche", SellingPriceHT: dec("190"), TrackStock: true, StockQty: decp("99")}, testNow)
	require.NoError(t, err)
	assert.True(t, it.StockQty.Equal(dec("12")))
	assert.Equal(t, 2, it.Version)
}

func TestNextCode(t *testing.T) {
	assert.Equal(t, "LTB-PRD-0001", NextCode("LTB-PRD", "", 4))
	assert.Equal(t, "LTB-PRD-0008", NextCode("LTB-PRD", "LTB-PRD-0007", 4))
	assert.Equal(t, "FRN-012", NextCode(SupplierCodePrefix, "FRN-011", 3))
	assert.Equal(t, "LTB-SRV", SKUPrefix(ItemService))
}

func TestItem_Move(t *testing.T) {
	t.Run("in and out", func(t *testing.T) {
		it := trackedItem(t, "10", "5")
		m, err := it.Move(MovementParams{Type: MovementIn, Quantity: dec("4")}, testNow)
		require.NoError(t, err)
		assert.True(t, m.PreviousQty.Equal(dec("10")))
		assert.True(t, m.NewQty.Equal(dec("14")))

		m, err = it.Move(MovementParams{Type: MovementOut, Quantity: dec("9")}, testNow)
		require.NoError(t, err)
		assert.True(t, it.StockQty.Equal(dec("5")))
		assert.True(t, m.Quantity.Equal(dec("9")))
		require.Len(t, it.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeStockBelowMinimum, it.GetDomainEvents()[0].EventType())
	})

	t.Run("insufficient stock", func(t *testing.T) {
		it := trackedItem(t, "2", "1")
		_, err := it.Move(MovementParams{Type: MovementOut, Quantity: dec("3")}, testNow)
		assert.Equal(t, CodeInsufficientStock, code(err))
		assert.True(t, it.StockQty.Equal(dec("2")))
	})

	t.Run("adjustment sets the level", func(t *testing.T) {
		it := trackedItem(t, "20", "5")
		m, err := it.Move(MovementParams{Type: MovementAdjustment, Quantity: dec("17")}, testNow)
		require.NoError(t, err)
		assert.True(t, m.Quantity.Equal(dec("3")))
		assert.True(t, it.StockQty.Equal(dec("17")))
		assert.Empty(t, it.GetDomainEvents())
	})

	t.Run("untracked", func(t *testing.T) {
		it, err := NewItem("LTB-SRV-0002", ItemParams{Type: ItemService, Name: "Pose", SellingPriceHT: dec("10")})
		require.NoError(t, err)
		_, err = it.Move(MovementParams{Type: MovementIn, Quantity: dec("1")}, testNow)
		assert.Equal(t, CodeStockNotTracked, code(err))
	})
}

func TestComputeStockStats(t *testing.T) {
	items := []Item{*trackedItem(t, "3", "5"), *trackedItem(t, "100", "5"), *trackedItem(t, "10", "5")}
	stats := ComputeStockStats(items)
	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, 1, stats.LowStockItems)
	assert.Equal(t, 1, stats.OverStockItems)
	assert.True(t, stats.TotalValue.Equal(dec("13560")))
	assert.Equal(t, "Ajustement négatif", AdjustmentReason(dec("-2")))
}

func TestCategory(t *testing.T) {
	c, err := NewCategory(CategoryParams{Name: "Portes", Slug: " Portes-Interieures "})
	require.NoError(t, err)
	assert.Equal(t, "portes-interieures", c.Slug)

	self := c.ID
	err = c.Update(CategoryParams{Name: "Portes", Slug: "portes", ParentID: &self}, testNow)
	assert.Equal(t, CodeInvalidParent, code(err))

	_, err = NewCategory(CategoryParams{Name: "Portes", Slug: "portes intérieures"})
	assert.Equal(t, shared.CodeValidationFailed, code(err))

	assert.NoError(t, GuardDeleteCategory(0, 0))
	assert.EqualError(t, GuardDeleteCategory(1, 0), "Impossible de supprimer: catégorie contient des sous-catégories")
	assert.EqualError(t, GuardDeleteCategory(0, 3), "Impossible de supprimer: catégorie contient des articles")
}

func TestSupplier(t *testing.T) {
	email := " Contact@Bois-Atlas.MA "
	s, err := NewSupplier("FRN-001", SupplierParams{Name: "Bois Atlas", Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Maroc", s.Country)
	assert.Equal(t, "contact@bois-atlas.ma", *s.Email)

	bad := "nope"
	err = s.Update(SupplierParams{Name: "Bois Atlas", Email: &bad}, testNow)
	assert.Equal(t, shared.CodeValidationFailed, code(err))

	s.Deactivate(testNow)
	assert.False(t, s.IsActive)
}
