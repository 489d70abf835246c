package document

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func acceptedDevis(t *testing.T, number string) *document.Document {
	t.Helper()
	d := issuedDoc(t, document.TypeDevis, number)
	d.Status = document.StatusAccepted
	return d
}

func TestDocumentService_Convert(t *testing.T) {
	ctx := context.Background()

	t.Run("devis to bon de commande", func(t *testing.T) {
		env := newTestEnv()
		devis := acceptedDevis(t, "DEV-2025-000005")
		env.docs.On("FindByIDForUpdate", ctx, devis.ID).Return(devis, nil)
		env.docs.On("Save", ctx, mock.Anything).Return(nil)

		res, err := env.service.Convert(ctx, devis.ID, ConvertRequest{TargetType: "BON_COMMANDE"}, nil)
		require.NoError(t, err)

		assert.Equal(t, "BON_COMMANDE", res.Document.Type)
		assert.True(t, res.Document.IsDraft)
		assert.Equal(t, "DEV-2025-000005", res.Document.DevisRef)
		assert.Equal(t, devis.ID, res.SourceID)
		assert.False(t, res.Partial)
		assert.Equal(t, []string{audit.ActionConvert}, env.audits.actions())
		env.docs.AssertNumberOfCalls(t, "Save", 2)
	})

	t.Run("conversion outside the flow is refused", func(t *testing.T) {
		env := newTestEnv()
		devis := acceptedDevis(t, "DEV-2025-000006")
		env.docs.On("FindByIDForUpdate", ctx, devis.ID).Return(devis, nil)

		_, err := env.service.Convert(ctx, devis.ID, ConvertRequest{TargetType: "FACTURE"}, nil)
		assert.Equal(t, document.CodeConversionNotAllowed, domainCode(err))
		env.docs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("partial bon de livraison", func(t *testing.T) {
		env := newTestEnv()
		bc := issuedDoc(t, document.TypeBonCommande, "BC-2025-000003")
		env.docs.On("FindByIDForUpdate", ctx, bc.ID).Return(bc, nil)
		env.docs.On("Save", ctx, mock.Anything).Return(nil)

		res, err := env.service.Convert(ctx, bc.ID, ConvertRequest{
			TargetType: "BON_LIVRAISON",
			Items:      []ConvertLineRequest{{ItemID: bc.Items[0].ID, Quantity: dec("1")}},
		}, nil)
		require.NoError(t, err)

		assert.True(t, res.Partial)
		assert.Equal(t, "PARTIAL", res.SourceStatus)
	})
}

func TestDocumentService_CreateDepositInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("raises an issued deposit invoice", func(t *testing.T) {
		env := newTestEnv()
		devis := acceptedDevis(t, "DEV-2025-000008")
		env.docs.On("FindByIDForUpdate", ctx, devis.ID).Return(devis, nil)
		env.docs.On("FindDepositInvoices", ctx, devis.ID).Return([]*document.Document{}, nil)
		env.docs.On("Save", ctx, mock.Anything).Return(nil)

		percent := dec("30")
		resp, err := env.service.CreateDepositInvoice(ctx, devis.ID, DepositInvoiceRequest{Percent: &percent}, nil)
		require.NoError(t, err)

		assert.Equal(t, "FACTURE_ACOMPTE", resp.Type)
		assert.Equal(t, "FAAC-2025-000001", resp.Number)
		assert.True(t, resp.IsDepositInvoice)
		assert.True(t, dec("360").Equal(resp.TotalTTC))
		assert.Equal(t, "SENT", resp.Status)
		assert.Equal(t, []string{audit.ActionIssue, audit.ActionCreateDeposit}, env.audits.actions())
	})

	t.Run("deposits cannot exceed the devis", func(t *testing.T) {
		env := newTestEnv()
		devis := acceptedDevis(t, "DEV-2025-000009")
		previous := issuedDoc(t, document.TypeFactureAcompte, "FAAC-2025-000001")
		previous.TotalTTC = dec("1000")
		env.docs.On("FindByIDForUpdate", ctx, devis.ID).Return(devis, nil)
		env.docs.On("FindDepositInvoices", ctx, devis.ID).Return([]*document.Document{previous}, nil)

		percent := dec("50")
		_, err := env.service.CreateDepositInvoice(ctx, devis.ID, DepositInvoiceRequest{Percent: &percent}, nil)
		assert.Equal(t, document.CodeInvalidDeposit, domainCode(err))
	})
}

func TestDocumentService_CreateFinalInvoice(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	devis := acceptedDevis(t, "DEV-2025-000012")
	deposit := issuedDoc(t, document.TypeFactureAcompte, "FAAC-2025-000004")
	deposit.Deposit.IsDepositInvoice = true
	deposit.Deposit.LinkedDevisID = &devis.ID
	deposit.TotalTTC = dec("360")
	deposit.PaidAmount = dec("360")
	deposit.Balance = dec("0")
	deposit.Status = document.StatusPaid

	bc := issuedDoc(t, document.TypeBonCommande, "BC-2025-000012")
	bc.Refs.DevisRef = devis.Number
	bc.ParentID = &devis.ID
	bc.Client = devis.Client
	deposit.Client = devis.Client

	env.docs.On("FindByIDForUpdate", ctx, bc.ID).Return(bc, nil)
	env.docs.On("FindByNumber", ctx, devis.Number).Return(devis, nil)
	env.docs.On("FindDepositInvoices", ctx, devis.ID).Return([]*document.Document{deposit}, nil)
	env.docs.On("Save", ctx, mock.Anything).Return(nil)

	resp, err := env.service.CreateFinalInvoice(ctx, bc.ID, FinalInvoiceRequest{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "FACTURE", resp.Type)
	assert.True(t, resp.IsDraft)
	assert.True(t, dec("360").Equal(resp.TotalDepositsApplied))
	assert.True(t, dec("840").Equal(resp.AmountDue))
	assert.Equal(t, []uuid.UUID{deposit.ID}, resp.AppliedDepositIDs)
	assert.NotNil(t, deposit.Deposit.AppliedToInvoiceID)
	assert.Equal(t, document.StatusDelivered, bc.Status)
	assert.Equal(t, []string{audit.ActionConvert, audit.ActionApplyDeposits}, env.audits.actions())
}

func TestDocumentService_FindDevis(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	devis := acceptedDevis(t, "DEV-2025-000013")
	bc := issuedDoc(t, document.TypeBonCommande, "BC-2025-000013")
	bc.ParentID = &devis.ID
	bl := issuedDoc(t, document.TypeBonLivraison, "BL-2025-000013")
	bl.ParentID = &bc.ID
	bl.Refs.DevisRef = "DEV-2019-000001"

	env.docs.On("FindByNumber", ctx, "DEV-2019-000001").Return(nil, shared.ErrNotFound)
	env.docs.On("FindByID", ctx, bc.ID).Return(bc, nil)
	env.docs.On("FindByID", ctx, devis.ID).Return(devis, nil)

	found, err := env.service.findDevis(ctx, env.docs, bl)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, devis.ID, found.ID)
}

func TestDocumentService_ApplyDeposits(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	inv := newDraft(t, document.TypeFacture)
	unknown := uuid.New()
	env.docs.On("FindByIDForUpdate", ctx, inv.ID).Return(inv, nil)
	env.docs.On("FindByIDs", ctx, []uuid.UUID{unknown}).Return([]*document.Document{}, nil)

	_, err := env.service.ApplyDeposits(ctx, inv.ID, ApplyDepositsRequest{DepositInvoiceIDs: []uuid.UUID{unknown}}, nil)
	require.Error(t, err)
	assert.Equal(t, document.CodeInvalidDeposit, domainCode(err))
	assert.Contains(t, err.Error(), unknown.String())

	paidDeposit := func(t *testing.T, devis *document.Document, number string) *document.Document {
		dep := issuedDoc(t, document.TypeFactureAcompte, number)
		dep.Deposit.IsDepositInvoice = true
		dep.Deposit.LinkedDevisID = &devis.ID
		dep.Client = devis.Client
		dep.PaidAmount = dec("300")
		dep.Status = document.StatusPaid
		return dep
	}

	tests := []struct {
		name    string
		linkRef bool
		foreign bool
		code    string
	}{
		{name: "deposit of the invoice devis", linkRef: true},
		{name: "deposit of another devis", linkRef: true, foreign: true, code: document.CodeInvalidDeposit},
		{name: "invoice without devis", code: document.CodeInvalidDeposit},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			devis := acceptedDevis(t, fmt.Sprintf("DEV-2025-00010%d", i))
			inv := newDraft(t, document.TypeFacture)
			inv.Client = devis.Client
			if tt.linkRef {
				inv.Refs.DevisRef = devis.Number
			}
			owner := devis
			if tt.foreign {
				owner = acceptedDevis(t, fmt.Sprintf("DEV-2025-00020%d", i))
				owner.Client = devis.Client
			}
			dep := paidDeposit(t, owner, fmt.Sprintf("FAAC-2025-00010%d", i))

			env.docs.On("FindByIDForUpdate", ctx, inv.ID).Return(inv, nil)
			env.docs.On("FindByIDs", ctx, []uuid.UUID{dep.ID}).Return([]*document.Document{dep}, nil)
			env.docs.On("FindByNumber", ctx, devis.Number).Return(devis, nil)
			env.docs.On("Save", ctx, mock.Anything).Return(nil)

			resp, err := env.service.ApplyDeposits(ctx, inv.ID, ApplyDepositsRequest{DepositInvoiceIDs: []uuid.UUID{dep.ID}}, nil)
			if tt.code != "" {
				assert.Equal(t, tt.code, domainCode(err))
				assert.Nil(t, dep.Deposit.AppliedToInvoiceID)
				env.docs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.True(t, dec("300").Equal(resp.TotalDepositsApplied))
			assert.Equal(t, []string{audit.ActionApplyDeposits}, env.audits.actions())
		})
	}
}

func TestDocumentService_DeliverPartially(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	bc := issuedDoc(t, document.TypeBonCommande, "BC-2025-000020")
	env.docs.On("FindByIDForUpdate", ctx, bc.ID).Return(bc, nil)
	env.docs.On("Save", ctx, mock.Anything).Return(nil)
	env.deliveries.On("Save", ctx, mock.AnythingOfType("*document.DeliveryLog")).Return(nil)

	res, err := env.service.DeliverPartially(ctx, bc.ID, PartialDeliveryRequest{
		Items:      []document.DeliveryLine{{ItemID: bc.Items[0].ID, Quantity: dec("1")}},
		ReceivedBy: "M. Benali",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "BL-2025-000001", res.DeliveryNote.Number)
	assert.Equal(t, "DELIVERED", res.DeliveryNote.Status)
	assert.Equal(t, "PARTIAL", res.BCStatus)
	assert.NotEqual(t, uuid.Nil, res.LogID)
	assert.Equal(t, []string{audit.ActionIssue, audit.ActionDelivery}, env.audits.actions())
	env.deliveries.AssertExpectations(t)

	t.Run("cannot deliver more than remains", func(t *testing.T) {
		_, err := env.service.DeliverPartially(ctx, bc.ID, PartialDeliveryRequest{
			Items: []document.DeliveryLine{{ItemID: bc.Items[0].ID, Quantity: dec("5")}},
		}, nil)
		assert.Equal(t, document.CodeInvalidDelivery, domainCode(err))
	})
}
