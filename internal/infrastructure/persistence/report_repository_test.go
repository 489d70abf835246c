package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/report"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type reportFixture struct {
	db       *gorm.DB
	repo     *GormReportRepository
	atlas    uuid.UUID
	riad     uuid.UUID
	door     uuid.UUID
	category uuid.UUID
	q1       report.Range
}

func rd(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func rday(m time.Month, d int) time.Time { return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC) }

func entity(now time.Time) shared.BaseEntity {
	return shared.BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func (f *reportFixture) doc(t *testing.T, number string, typ document.Type, status document.Status, client uuid.UUID, date time.Time, ttc, paid string, items ...models.DocumentItemModel) uuid.UUID {
	t.Helper()
	total := rd(ttc)
	ht := total.Div(rd("1.2")).Round(2)
	m := &models.DocumentModel{
		Type:         typ,
		Number:       number,
		IsDraft:      status == document.StatusDraft,
		Status:       status,
		ClientID:     client,
		ClientName:   map[uuid.UUID]string{f.atlas: "Atlas Déco", f.riad: "Riad Zitoun"}[client],
		ClientICE:    "001234567000089",
		Date:         date,
		TotalHT:      ht,
		TotalTVA:     total.Sub(ht),
		TotalTTC:     total,
		PaidAmount:   rd(paid),
		Balance:      total.Sub(rd(paid)),
		VATBreakdown: `[{"rate":20,"description":"TVA 20%","baseHT":"` + ht.String() + `","amount":"` + total.Sub(ht).String() + `"}]`,
	}
	m.ID = uuid.New()
	m.CreatedAt, m.UpdatedAt = date, date
	for i := range items {
		items[i].ID = uuid.New()
		items[i].DocumentID = m.ID
		items[i].Designation = "ligne"
		m.Items = append(m.Items, items[i])
	}
	require.NoError(t, f.db.Create(m).Error)
	return m.ID
}

func setupReportFixture(t *testing.T) *reportFixture {
	db := newSQLiteDB(t,
		&models.DocumentModel{},
		&models.DocumentItemModel{},
		&models.PaymentModel{},
		&crm.Client{},
		&crm.Lead{},
		&crm.Project{},
		&crm.Task{},
		&crm.ChecklistItem{},
		&catalog.Item{},
		&catalog.Category{},
		&shop.Order{},
		&shop.OrderItem{},
		&shop.TrackingEvent{},
	)
	f := &reportFixture{
		db:   db,
		repo: NewGormReportRepository(db),
		q1:   report.Range{From: rday(time.January, 1), To: rday(time.March, 31)},
	}
	created := rday(time.January, 1)

	email := "contact@atlasdeco.ma"
	atlas := crm.Client{BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: entity(created)}, Number: "CLI-0001", FullName: "Atlas Déco", Phone: "0522000001", Email: &email, ClientType: "COMPANY", BillingCountry: "Maroc", PaymentTerms: "30j"}
	riad := crm.Client{BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: entity(created)}, Number: "CLI-0002", FullName: "Riad Zitoun", Phone: "0524000002", ClientType: "INDIVIDUAL", BillingCountry: "Maroc", PaymentTerms: "comptant"}
	idle := crm.Client{BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: entity(created)}, Number: "CLI-0003", FullName: "Zineb Idle", Phone: "0661000003", ClientType: "INDIVIDUAL", BillingCountry: "Maroc", PaymentTerms: "comptant"}
	require.NoError(t, db.Create(&[]crm.Client{atlas, riad, idle}).Error)
	f.atlas, f.riad = atlas.ID, riad.ID

	cat := catalog.Category{Name: "Portes", Slug: "portes", IsActive: true}
	cat.ID = uuid.New()
	require.NoError(t, db.Create(&cat).Error)
	f.category = cat.ID
	door := catalog.Item{SKU: "POR-001", Name: "Porte en cèdre", CategoryID: &cat.ID, SellingPriceHT: rd("2000"), TVARate: rd("20"), IsActive: true}
	door.BaseAggregateRoot.BaseEntity = entity(created)
	require.NoError(t, db.Create(&door).Error)
	f.door = door.ID

	due := rday(time.February, 15)
	paid := f.doc(t, "FAC-2026-0001", document.TypeFacture, document.StatusPaid, f.atlas, rday(time.January, 10), "2400", "2400",
		models.DocumentItemModel{CatalogItemID: &f.door, Quantity: rd("1"), TotalTTC: rd("2400")})
	f.doc(t, "FAC-2026-0002", document.TypeFacture, document.StatusSent, f.riad, rday(time.February, 3), "1200", "0",
		models.DocumentItemModel{Quantity: rd("2"), TotalTTC: rd("1200")})
	overdue := f.doc(t, "FAC-2026-0003", document.TypeFacture, document.StatusOverdue, f.atlas, rday(time.January, 20), "600", "100")
	require.NoError(t, db.Model(&models.DocumentModel{}).Where("id = ?", overdue).Update("due_date", due).Error)
	f.doc(t, "BROUILLON-0001", document.TypeFacture, document.StatusDraft, f.atlas, rday(time.March, 1), "9999", "0")
	f.doc(t, "AV-2026-0001", document.TypeAvoir, document.StatusSent, f.atlas, rday(time.March, 2), "120", "0")
	f.doc(t, "DEV-2026-0001", document.TypeDevis, document.StatusAccepted, f.riad, rday(time.March, 3), "5000", "0")
	f.doc(t, "DEV-2026-0002", document.TypeDevis, document.StatusSent, f.riad, rday(time.March, 4), "800", "0")
	f.doc(t, "FAC-2025-0099", document.TypeFacture, document.StatusPaid, f.riad, time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC), "300", "300")

	payments := []models.PaymentModel{
		{Number: "PAY-0001", DocumentID: paid, ClientID: f.atlas, Amount: rd("2400"), Date: rday(time.January, 12), Method: "BANK_TRANSFER", Reference: "VIR-778"},
		{Number: "PAY-0002", DocumentID: overdue, ClientID: f.atlas, Amount: rd("100"), Date: rday(time.February, 1), Method: "CASH"},
	}
	for i := range payments {
		payments[i].ID = uuid.New()
		payments[i].CreatedAt, payments[i].UpdatedAt = created, created
	}
	require.NoError(t, db.Create(&payments).Error)
	return f
}

func TestGormReportRepository_Invoices(t *testing.T) {
	f := setupReportFixture(t)
	ctx := context.Background()

	invoices, err := f.repo.Invoices(ctx, report.SalesFilter{Range: f.q1})
	require.NoError(t, err)
	require.Len(t, invoices, 3)
	assert.Equal(t, "FAC-2026-0001", invoices[0].Number)
	assert.Equal(t, "CLI-0001", invoices[0].ClientNumber)
	assert.Equal(t, "FAC-2026-0002", invoices[2].Number)
	assert.True(t, rd("2400").Equal(invoices[0].TotalTTC))

	invoices, err = f.repo.Invoices(ctx, report.SalesFilter{Range: f.q1, ClientID: &f.riad})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
}

func TestGormReportRepository_Rankings(t *testing.T) {
	f := setupReportFixture(t)
	ctx := context.Background()
	filter := report.SalesFilter{Range: f.q1}

	clients, err := f.repo.TopClients(ctx, filter, 10)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, f.atlas, clients[0].ClientID)
	assert.Equal(t, int64(2), clients[0].InvoicesCount)
	assert.True(t, rd("3000").Equal(clients[0].TotalTTC))

	products, err := f.repo.TopProducts(ctx, filter, 10)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.NotNil(t, products[0].ProductID)
	assert.Equal(t, f.door, *products[0].ProductID)
	assert.Equal(t, "Porte en cèdre", products[0].Label())
	assert.Equal(t, "POR-001", products[0].SKU)
	assert.Nil(t, products[1].ProductID)
	assert.Equal(t, report.ManualItemLabel, products[1].Label())
	assert.True(t, rd("2").Equal(products[1].Quantity))

	categories, err := f.repo.RevenueByCategory(ctx, f.q1)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Portes", categories[0].Category)
	assert.Equal(t, report.UncategorizedLabel, categories[1].Category)
}

func TestGormReportRepository_OpenInvoices(t *testing.T) {
	f := setupReportFixture(t)

	open, err := f.repo.OpenInvoices(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "FAC-2026-0003", open[0].Number)
	assert.True(t, rd("500").Equal(open[0].Balance))
	require.NotNil(t, open[0].DueDate)

	open, err = f.repo.OpenInvoices(context.Background(), &f.riad)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestGormReportRepository_DashboardCounts(t *testing.T) {
	f := setupReportFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Create(&crm.Project{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: entity(rday(time.January, 5))},
		Number:            "PRJ-0001", ClientID: f.riad, Name: "Salon marocain", Type: "BOTH",
		Status: crm.ProjectProduction, Priority: "medium",
	}).Error)
	require.NoError(t, f.db.Create(&crm.Lead{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: entity(rday(time.March, 10))},
		Number:            "LEAD-0001", Source: "WEBSITE", Status: crm.LeadNew, FullName: "Omar", Phone: "0600000000",
		ClientType: "INDIVIDUAL", Urgency: "MEDIUM",
	}).Error)

	current, previous := report.PeriodRanges(report.PeriodQuarter, 2026, rday(time.March, 15))
	c, err := f.repo.DashboardCounts(ctx, current, previous)
	require.NoError(t, err)

	assert.Equal(t, int64(3), c.InvoiceCount)
	assert.True(t, rd("4200").Equal(c.InvoiceTotal))
	assert.True(t, rd("300").Equal(c.PrevInvoiceTotal))
	assert.Equal(t, int64(2), c.QuoteCount)
	assert.Equal(t, int64(1), c.QuoteAccepted)
	assert.Equal(t, int64(2), c.PaymentCount)
	assert.True(t, rd("2500").Equal(c.PaymentTotal))
	assert.Equal(t, int64(2), c.OutstandingCount)
	assert.True(t, rd("1700").Equal(c.OutstandingTotal))
	assert.Equal(t, int64(1), c.OverdueCount)
	assert.Equal(t, int64(3), c.Clients)
	assert.Equal(t, int64(1), c.LeadsNew)
	assert.Equal(t, int64(1), c.ProjectsByStatus["PRODUCTION"])
	assert.Equal(t, int64(0), c.OrdersTotal)
}

func TestGormReportRepository_Ledgers(t *testing.T) {
	f := setupReportFixture(t)
	ctx := context.Background()

	docs, err := f.repo.LedgerDocuments(ctx, f.q1, nil, report.LedgerTypes)
	require.NoError(t, err)
	require.Len(t, docs, 4)
	last := docs[3]
	assert.Equal(t, document.TypeAvoir, last.Type)
	assert.Equal(t, "001234567000089", last.ClientICE)
	require.Len(t, last.VATBreakdown, 1)
	assert.Equal(t, 20, last.VATBreakdown[0].Rate)
	assert.True(t, rd("20").Equal(last.VATBreakdown[0].Amount))

	payments, err := f.repo.Payments(ctx, f.q1, nil)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "PAY-0001", payments[0].Number)
	assert.Equal(t, "FAC-2026-0001", payments[0].DocumentNumber)
	assert.Equal(t, "Atlas Déco", payments[0].ClientName)
	assert.Equal(t, "VIR-778", payments[0].Reference)
	assert.Equal(t, document.PaymentBankTransfer, payments[0].Method)

	accounts, err := f.repo.ClientAccounts(ctx, f.q1.To, nil)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "Atlas Déco", accounts[0].ClientName)
	assert.Equal(t, "contact@atlasdeco.ma", accounts[0].Email)
	assert.Len(t, accounts[0].Documents, 3)
	assert.Len(t, accounts[1].Documents, 2)
	assert.Empty(t, accounts[2].Documents)

	accounts, err = f.repo.ClientAccounts(ctx, f.q1.To, &f.riad)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
}
