package crm

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) *crm.Client {
	t.Helper()
	c, err := crm.NewClient("CLI-000042", crm.ClientParams{
		ClientType:     crm.ClientCompany,
		FullName:       "Karim Benjelloun",
		Company:        strp("Riad Dar Zitoun"),
		Phone:          "0522456789",
		Email:          strp("contact@darzitoun.ma"),
		ICE:            strp("001234567000089"),
		BillingAddress: strp("12 Derb Zitoun"),
		BillingCity:    strp("Marrakech"),
	})
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func TestClientService_Create(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.clients.On("Save", ctx, mock.AnythingOfType("*crm.Client")).Return(nil)

	resp, err := env.clientSvc.Create(ctx, ClientRequest{FullName: "Nadia Fassi", Phone: "0612345678", Tags: []string{"vip", "vip"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "CLI-000001", resp.ClientNumber)
	assert.Equal(t, "Maroc", resp.BillingCountry)
	assert.Equal(t, "comptant", resp.PaymentTerms)
	assert.Equal(t, []string{"vip"}, resp.Tags)
	assert.Equal(t, []string{audit.ActionCreate}, env.audits.actions())
	assert.Equal(t, []string{crm.EventTypeClientCreated}, env.publisher.Types())

	resp, err = env.clientSvc.Create(ctx, ClientRequest{FullName: "Omar Tazi", Phone: "0698765432"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "CLI-000002", resp.ClientNumber)
}

func TestClientService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("refused while documents exist", func(t *testing.T) {
		env := newTestEnv()
		c := testClient(t)
		env.clients.On("FindByID", ctx, c.ID).Return(c, nil)
		env.docs.On("ExistsForClient", ctx, c.ID).Return(true, nil)
		env.projects.On("ExistsForClient", ctx, c.ID).Return(false, nil)

		err := env.clientSvc.Delete(ctx, c.ID, nil)
		assert.Equal(t, crm.CodeClientInUse, domainCode(err))
		assert.Contains(t, err.Error(), "documents")
		env.clients.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("refused while projects exist", func(t *testing.T) {
		env := newTestEnv()
		c := testClient(t)
		env.clients.On("FindByID", ctx, c.ID).Return(c, nil)
		env.docs.On("ExistsForClient", ctx, c.ID).Return(false, nil)
		env.projects.On("ExistsForClient", ctx, c.ID).Return(true, nil)

		err := env.clientSvc.Delete(ctx, c.ID, nil)
		assert.Equal(t, crm.CodeClientInUse, domainCode(err))
		assert.Contains(t, err.Error(), "projets")
	})

	t.Run("free client is deleted and audited", func(t *testing.T) {
		env := newTestEnv()
		c := testClient(t)
		env.clients.On("FindByID", ctx, c.ID).Return(c, nil)
		env.docs.On("ExistsForClient", ctx, c.ID).Return(false, nil)
		env.projects.On("ExistsForClient", ctx, c.ID).Return(false, nil)
		env.clients.On("Delete", ctx, c.ID).Return(nil)

		require.NoError(t, env.clientSvc.Delete(ctx, c.ID, nil))
		assert.Equal(t, []string{audit.ActionDelete}, env.audits.actions())
		assert.Equal(t, audit.SeverityWarning, env.audits.entries[0].Severity)
	})
}

func TestClientService_BalanceAndPayments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	c := testClient(t)
	env.clients.On("FindByID", ctx, c.ID).Return(c, nil)
	env.docs.On("InvoiceTotals", ctx, c.ID).Return(document.InvoiceTotals{
		Count: 3, TotalTTC: decimal.RequireFromString("18000"), Paid: decimal.RequireFromString("12500.50"),
	}, nil)
	env.docs.On("FindByClient", ctx, c.ID).Return([]document.Payment{
		{BaseEntity: shared.NewBaseEntity(), Number: "PAY-2025-000001", Amount: decimal.RequireFromString("10000"), Method: document.PaymentBankTransfer},
		{BaseEntity: shared.NewBaseEntity(), Number: "PAY-2025-000002", Amount: decimal.RequireFromString("2000.50"), Method: document.PaymentCash},
		{BaseEntity: shared.NewBaseEntity(), Number: "PAY-2025-000003", Amount: decimal.RequireFromString("500"), Method: document.PaymentCash},
	}, nil)

	bal, err := env.clientSvc.Balance(ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, bal.InvoiceCount)
	assert.Equal(t, "5499.5", bal.Balance.String())

	pays, err := env.clientSvc.Payments(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, pays.Payments, 3)
	assert.Equal(t, "12500.5", pays.Total.String())
	assert.Equal(t, "2500.5", pays.ByMethod["CASH"].String())
}

func TestClientService_Snapshot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	c := testClient(t)
	env.clients.On("FindByID", ctx, c.ID).Return(c, nil)
	missing := uuid.New()
	env.clients.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

	snap, err := env.clientSvc.Snapshot(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Riad Dar Zitoun", snap.Name)
	assert.Equal(t, "Marrakech", snap.City)
	assert.Equal(t, "001234567000089", snap.ICE)

	_, err = env.clientSvc.Snapshot(ctx, missing)
	assert.True(t, shared.IsNotFound(err))
}

func TestClientService_List(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	c := testClient(t)
	env.clients.On("FindAll", ctx, mock.MatchedBy(func(f crm.ClientFilter) bool {
		return f.Tag == "hôtel" && f.PageSize == 20 && f.Page == 1
	})).Return([]crm.Client{*c}, int64(1), nil)

	page, err := env.clientSvc.List(ctx, ClientListRequest{Tag: "hôtel"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, "CLI-000042", page.Items[0].ClientNumber)
}
