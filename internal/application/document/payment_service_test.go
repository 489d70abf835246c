package document

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPaymentService_Record(t *testing.T) {
	ctx := context.Background()
	cashier := uuid.New()

	t.Run("partial then full payment", func(t *testing.T) {
		env := newTestEnv()
		inv := issuedDoc(t, document.TypeFacture, "FAC-2025-000050")
		env.docs.On("FindByIDForUpdate", ctx, inv.ID).Return(inv, nil)
		env.docs.On("Save", ctx, inv).Return(nil)
		env.payments.On("Save", ctx, mock.AnythingOfType("*document.Payment")).Return(nil)

		res, err := env.paymentSvc.Record(ctx, inv.ID, RecordPaymentRequest{Amount: dec("500"), Method: "CASH"}, &cashier)
		require.NoError(t, err)
		assert.Equal(t, "PAY-2025-000001", res.Payment.Number)
		assert.Equal(t, "PARTIAL", res.DocumentStatus)
		assert.True(t, dec("700").Equal(res.Balance))
		assert.Equal(t, testNow, res.Payment.Date)

		res, err = env.paymentSvc.Record(ctx, inv.ID, RecordPaymentRequest{Amount: dec("700"), Method: "BANK_TRANSFER", Reference: "VIR-889"}, &cashier)
		require.NoError(t, err)
		assert.Equal(t, "PAY-2025-000002", res.Payment.Number)
		assert.Equal(t, "PAID", res.DocumentStatus)
		assert.True(t, res.Balance.IsZero())
		assert.NotNil(t, inv.PaidAt)

		assert.Equal(t, []string{audit.ActionPayment, audit.ActionPayment}, env.audits.actions())
		entry := env.audits.entries[1]
		assert.Equal(t, audit.CategoryFinancial, entry.Category)
		assert.Equal(t, &cashier, entry.UserID)
		assert.Contains(t, env.publisher.Types(), document.EventTypePaymentRecorded)
	})

	t.Run("overpayment does not consume a number", func(t *testing.T) {
		env := newTestEnv()
		inv := issuedDoc(t, document.TypeFacture, "FAC-2025-000051")
		env.docs.On("FindByIDForUpdate", ctx, inv.ID).Return(inv, nil)

		_, err := env.paymentSvc.Record(ctx, inv.ID, RecordPaymentRequest{Amount: dec("1500"), Method: "CASH"}, nil)
		assert.Equal(t, document.CodeInvalidAmount, domainCode(err))

		_, err = env.store.Current(ctx, sequence.TypePayment, 2025)
		assert.True(t, shared.IsNotFound(err))
		env.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("quotes do not take payments", func(t *testing.T) {
		env := newTestEnv()
		devis := issuedDoc(t, document.TypeDevis, "DEV-2025-000051")
		env.docs.On("FindByIDForUpdate", ctx, devis.ID).Return(devis, nil)

		_, err := env.paymentSvc.Record(ctx, devis.ID, RecordPaymentRequest{Amount: dec("10"), Method: "CASH"}, nil)
		assert.Equal(t, document.CodeNotInvoice, domainCode(err))
	})

	t.Run("draft invoices do not take payments", func(t *testing.T) {
		env := newTestEnv()
		draft := newDraft(t, document.TypeFacture)
		env.docs.On("FindByIDForUpdate", ctx, draft.ID).Return(draft, nil)

		_, err := env.paymentSvc.Record(ctx, draft.ID, RecordPaymentRequest{Amount: dec("10"), Method: "CASH"}, nil)
		assert.Equal(t, shared.CodeInvalidState, domainCode(err))
	})

	t.Run("unknown method fails validation", func(t *testing.T) {
		env := newTestEnv()
		inv := issuedDoc(t, document.TypeFacture, "FAC-2025-000052")
		env.docs.On("FindByIDForUpdate", ctx, inv.ID).Return(inv, nil)

		_, err := env.paymentSvc.Record(ctx, inv.ID, RecordPaymentRequest{Amount: dec("10"), Method: "BITCOIN"}, nil)
		assert.Equal(t, shared.CodeValidationFailed, domainCode(err))
	})

	t.Run("deposit invoices take payments", func(t *testing.T) {
		env := newTestEnv()
		dep := issuedDoc(t, document.TypeFactureAcompte, "FAAC-2025-000009")
		env.docs.On("FindByIDForUpdate", ctx, dep.ID).Return(dep, nil)
		env.docs.On("Save", ctx, dep).Return(nil)
		env.payments.On("Save", ctx, mock.Anything).Return(nil)

		paidOn := testNow.Add(-24 * time.Hour)
		res, err := env.paymentSvc.Record(ctx, dep.ID, RecordPaymentRequest{Amount: dec("1200"), Method: "CHECK", Date: &paidOn}, nil)
		require.NoError(t, err)
		assert.Equal(t, "PAID", res.DocumentStatus)
		assert.Equal(t, paidOn, res.Payment.Date)
	})
}

func TestPaymentService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	inv := issuedDoc(t, document.TypeFacture, "FAC-2025-000060")
	env.docs.On("FindByIDForUpdate", ctx, inv.ID).Return(inv, nil)
	env.docs.On("Save", ctx, inv).Return(nil)
	env.payments.On("Save", ctx, mock.Anything).Return(nil)

	res, err := env.paymentSvc.Record(ctx, inv.ID, RecordPaymentRequest{Amount: dec("1200"), Method: "CARD"}, nil)
	require.NoError(t, err)
	require.Equal(t, "PAID", res.DocumentStatus)

	payment := &document.Payment{
		BaseEntity: shared.BaseEntity{ID: res.Payment.ID},
		Number:     res.Payment.Number,
		DocumentID: inv.ID,
		Amount:     res.Payment.Amount,
	}
	env.payments.On("FindByID", ctx, payment.ID).Return(payment, nil)
	env.payments.On("Delete", ctx, payment.ID).Return(nil)

	require.NoError(t, env.paymentSvc.Delete(ctx, payment.ID, nil))

	assert.Equal(t, document.StatusSent, inv.Status)
	assert.True(t, inv.PaidAmount.IsZero())
	assert.True(t, dec("1200").Equal(inv.Balance))
	assert.Nil(t, inv.PaidAt)
	assert.Equal(t, []string{audit.ActionPayment, audit.ActionPaymentDelete}, env.audits.actions())
}

func TestPaymentService_ListByDocument(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	inv := issuedDoc(t, document.TypeFacture, "FAC-2025-000070")
	env.docs.On("FindByID", ctx, inv.ID).Return(inv, nil)
	env.payments.On("FindByDocument", ctx, inv.ID).Return([]document.Payment{
		{Number: "PAY-2025-000010", DocumentID: inv.ID, Amount: dec("100"), Method: document.PaymentCash},
		{Number: "PAY-2025-000011", DocumentID: inv.ID, Amount: dec("50"), Method: document.PaymentCheck},
	}, nil)

	list, err := env.paymentSvc.ListByDocument(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "PAY-2025-000010", list[0].Number)
	assert.Equal(t, "CHECK", list[1].Method)

	missing := uuid.New()
	env.docs.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)
	_, err = env.paymentSvc.ListByDocument(ctx, missing)
	assert.True(t, shared.IsNotFound(err))
}

func TestSequenceService_Health(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.store.seed(sequence.TypeFacture, 2025, 4)

	svc := NewSequenceService(env.store, env.docs, env.audits, zap.NewNop())
	svc.SetClock(func() time.Time { return testNow })

	for _, typ := range document.AllTypes() {
		if typ == document.TypeFacture {
			continue
		}
		env.docs.On("CountOfficial", ctx, typ, 2025).Return(int64(0), nil)
		env.docs.On("ListOfficialNumbers", ctx, typ, 2025).Return([]string{}, nil)
	}
	env.docs.On("CountOfficial", ctx, document.TypeFacture, 2025).Return(int64(3), nil)
	env.docs.On("ListOfficialNumbers", ctx, document.TypeFacture, 2025).
		Return([]string{"FAC-2025-000001", "FAC-2025-000002", "FAC-2025-000004"}, nil)

	report, err := svc.Health(ctx)
	require.NoError(t, err)
	require.Len(t, report, len(document.AllTypes()))

	var facture SequenceHealth
	for _, h := range report {
		if h.Type == "FACTURE" {
			facture = h
		} else {
			assert.True(t, h.Healthy, h.Type)
		}
	}
	assert.Equal(t, int64(4), facture.LastNumber)
	assert.Equal(t, "FAC-2025-000005", facture.NextNumber)
	assert.Equal(t, []int64{3}, facture.Gaps)
	assert.False(t, facture.Healthy)

	require.Equal(t, []string{audit.ActionSequenceGap}, env.audits.actions())
	entry := env.audits.entries[0]
	assert.Equal(t, audit.SeverityWarning, entry.Severity)
	assert.Equal(t, audit.EntitySequence, entry.Entity)
	assert.Equal(t, "FACTURE", entry.DocumentType)
	assert.Contains(t, entry.Description, "2 → 4")
}

func TestSequenceService_Parse(t *testing.T) {
	svc := NewSequenceService(newMemorySequenceStore(), nil, &memoryAuditRepository{}, zap.NewNop())

	p, err := svc.Parse("FAC-2025-000123")
	require.NoError(t, err)
	assert.Equal(t, sequence.TypeFacture, p.Type)
	assert.Equal(t, int64(123), p.Sequence)

	_, err = svc.Parse("hello")
	assert.Equal(t, sequence.CodeInvalidFormat, domainCode(err))

	preview, err := svc.Preview(context.Background(), "CLIENT")
	require.NoError(t, err)
	assert.Equal(t, "CLI-000001", preview)
}
