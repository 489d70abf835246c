package document

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func testContent() Content {
	rate7 := 7
	return Content{
		Client: ClientSnapshot{ID: uuid.New(), Name: "Riad Atlas", City: "Marrakech", ICE: "001234567000089"},
		Date:   testNow,
		Items: []ItemInput{
			{Designation: "Porte en cèdre sculptée", Quantity: dec("2"), UnitPriceHT: dec("100"), DiscountPercent: dec("10")},
			{Designation: "Pose", Quantity: dec("1"), UnitPriceHT: dec("50"), TVARate: &rate7},
		},
	}
}

func newTestDocument(t *testing.T, typ Type) *Document {
	t.Helper()
	d, err := New(NewParams{Type: typ, Content: testContent(), Now: testNow})
	require.NoError(t, err)
	return d
}

func issued(t *testing.T, typ Type, number string) *Document {
	t.Helper()
	d := newTestDocument(t, typ)
	require.NoError(t, d.Issue(number, nil, testNow))
	d.ClearDomainEvents()
	return d
}

func domainCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func TestNew(t *testing.T) {
	t.Run("creates a priced draft", func(t *testing.T) {
		d := newTestDocument(t, TypeDevis)

		assert.True(t, d.IsDraft)
		assert.False(t, d.IsLocked)
		assert.Equal(t, StatusDraft, d.Status)
		assert.True(t, strings.HasPrefix(d.Number, "DRAFT-DEVIS-"))
		assert.Equal(t, "pcs", d.Items[0].Unit)
		assert.Equal(t, DefaultVATRate, d.Items[0].TVARate)
		assert.True(t, d.TotalHT.Equal(dec("230")))
		assert.True(t, d.TotalTTC.Equal(dec("269.5")))
		assert.True(t, d.Balance.Equal(d.TotalTTC))
		assert.Len(t, d.GetDomainEvents(), 1)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := New(NewParams{Type: "TICKET", Content: testContent()})
		require.Error(t, err)
	})

	t.Run("requires a client", func(t *testing.T) {
		c := testContent()
		c.Client.ID = uuid.Nil
		_, err := New(NewParams{Type: TypeDevis, Content: c})
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidationFailed, domainCode(err))
	})

	t.Run("collects line errors", func(t *testing.T) {
		bad := 19
		c := testContent()
		c.Items = []ItemInput{
			{Designation: "", Quantity: dec("0"), UnitPriceHT: dec("-1")},
			{Designation: "ok", Quantity: dec("1"), UnitPriceHT: dec("1"), TVARate: &bad},
		}
		_, err := New(NewParams{Type: TypeDevis, Content: c})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Len(t, de.Details, 4)
		assert.Equal(t, "items[1].tvaRate", de.Details[3].Field)
	})

	t.Run("deposit amount follows the percent", func(t *testing.T) {
		c := testContent()
		c.DepositPercent = dec("30")
		d, err := New(NewParams{Type: TypeDevis, Content: c})
		require.NoError(t, err)
		assert.True(t, d.Deposit.Amount.Equal(dec("80.85")))
	})

	t.Run("global discount bounds", func(t *testing.T) {
		tests := []struct {
			name    string
			typ     DiscountType
			value   string
			wantErr bool
		}{
			{name: "fixed equal to net", typ: DiscountFixed, value: "230"},
			{name: "fixed above net", typ: DiscountFixed, value: "230.01", wantErr: true},
			{name: "full percentage", typ: DiscountPercentage, value: "100"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c := testContent()
				c.DiscountType = tt.typ
				c.DiscountValue = dec(tt.value)

				d, err := New(NewParams{Type: TypeDevis, Content: c})
				if tt.wantErr {
					var de *shared.DomainError
					require.ErrorAs(t, err, &de)
					assert.Equal(t, shared.CodeValidationFailed, de.Code)
					assert.Equal(t, "discountValue", de.Details[0].Field)
					return
				}
				require.NoError(t, err)
				assert.False(t, d.TotalTTC.IsNegative())
				assert.True(t, d.TotalHT.IsZero())
			})
		}
	})
}

func TestCanEdit(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Document)
		reason string
	}{
		{"locked", func(d *Document) { d.IsLocked = true }, "Ce document a été émis et verrouillé. Il ne peut plus être modifié."},
		{"official number", func(d *Document) { d.IsDraft = false }, "Ce document a un numéro officiel et ne peut plus être modifié."},
		{"payments", func(d *Document) { d.PaymentCount = 1 }, "Ce document a des paiements enregistrés et ne peut plus être modifié."},
		{"converted", func(d *Document) { d.ChildType = TypeBonCommande }, "Ce document a été converti en BON_COMMANDE et ne peut plus être modifié."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDocument(t, TypeDevis)
			tt.mutate(d)

			check := d.CanEdit()
			assert.False(t, check.CanEdit)
			assert.Equal(t, tt.reason, check.Reason)

			err := d.GuardEdit()
			assert.Equal(t, shared.CodeDocumentLocked, domainCode(err))
		})
	}

	t.Run("draft is editable", func(t *testing.T) {
		assert.True(t, newTestDocument(t, TypeDevis).CanEdit().CanEdit)
	})
}

func TestUpdate(t *testing.T) {
	d := newTestDocument(t, TypeDevis)
	c := testContent()
	c.Items = c.Items[:1]

	require.NoError(t, d.Update(c, nil, testNow.Add(time.Hour)))
	assert.Len(t, d.Items, 1)
	assert.True(t, d.TotalTTC.Equal(dec("216")))
	assert.Equal(t, 2, d.GetVersion())

	d.IsLocked = true
	assert.Error(t, d.Update(c, nil, testNow))
}

func TestGuardDelete(t *testing.T) {
	d := newTestDocument(t, TypeDevis)
	assert.NoError(t, d.GuardDelete())

	d.Status = StatusCancelled
	err := d.GuardDelete()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Impossible de supprimer")
}

func TestIssue(t *testing.T) {
	t.Run("assigns number, locks and seals", func(t *testing.T) {
		d := newTestDocument(t, TypeFacture)
		draft := d.Number
		actor := uuid.New()

		require.NoError(t, d.Issue("FAC-2025-000001", &actor, testNow))

		assert.Equal(t, "FAC-2025-000001", d.Number)
		assert.Equal(t, draft, d.DraftNumber)
		assert.False(t, d.IsDraft)
		assert.True(t, d.IsLocked)
		assert.Equal(t, StatusSent, d.Status)
		assert.NotNil(t, d.SentAt)
		assert.Equal(t, &actor, d.IssuedByID)
		assert.Len(t, d.Archive.DocumentHash, 64)

		events := d.GetDomainEvents()
		ev, ok := events[len(events)-1].(*DocumentIssuedEvent)
		require.True(t, ok)
		assert.Equal(t, draft, ev.PreviousNumber)
		assert.Equal(t, &actor, ev.ActorID())
	})

	t.Run("status after issue depends on type", func(t *testing.T) {
		assert.Equal(t, StatusConfirmed, issued(t, TypeBonCommande, "BC-2025-000001").Status)
		assert.Equal(t, StatusDelivered, issued(t, TypeBonLivraison, "BL-2025-000001").Status)
		assert.Equal(t, StatusDraft, issued(t, TypePVReception, "PV-2025-000001").Status)
	})

	t.Run("cannot issue twice", func(t *testing.T) {
		d := issued(t, TypeFacture, "FAC-2025-000002")
		err := d.Issue("FAC-2025-000003", nil, testNow)
		assert.Equal(t, CodeAlreadyIssued, domainCode(err))
	})

	t.Run("requires items", func(t *testing.T) {
		d := newTestDocument(t, TypeDevis)
		d.Items = nil
		assert.Error(t, d.Issue("DEV-2025-000001", nil, testNow))
	})
}

func TestChangeStatus(t *testing.T) {
	t.Run("invalid transition lists allowed ones", func(t *testing.T) {
		d := newTestDocument(t, TypeDevis)
		err := d.ChangeStatus(StatusChange{To: StatusPaid})
		require.Error(t, err)
		assert.Equal(t, "Transition invalide : DRAFT → PAID. Transitions possibles : CONFIRMED, SENT, CANCELLED", err.Error())
	})

	t.Run("terminal state has no transition", func(t *testing.T) {
		d := newTestDocument(t, TypeDevis)
		d.Status = StatusRejected
		err := d.ChangeStatus(StatusChange{To: StatusSent})
		assert.Contains(t, err.Error(), "Transitions possibles : aucune")
	})

	t.Run("confirm validates content", func(t *testing.T) {
		d := newTestDocument(t, TypeBonCommande)
		d.Items = nil
		d.Date = time.Time{}
		err := d.ChangeStatus(StatusChange{To: StatusConfirmed, OfficialNumber: "BC-2025-000009"})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "Validation échouée", de.Message)
		assert.Len(t, de.Details, 2)
	})

	t.Run("confirming a draft issues it", func(t *testing.T) {
		d := newTestDocument(t, TypeBonCommande)
		require.True(t, d.NeedsNumberFor(StatusConfirmed))

		require.NoError(t, d.ChangeStatus(StatusChange{To: StatusConfirmed, OfficialNumber: "BC-2025-000010", At: testNow}))
		assert.Equal(t, StatusConfirmed, d.Status)
		assert.Equal(t, "BC-2025-000010", d.Number)
		assert.True(t, d.IsLocked)
		assert.NotNil(t, d.ConfirmedAt)
	})

	t.Run("cancelling an issued document needs a reason", func(t *testing.T) {
		d := issued(t, TypeDevis, "DEV-2025-000001")
		err := d.ChangeStatus(StatusChange{To: StatusCancelled, Reason: "  "})
		assert.Equal(t, "Motif d'annulation requis", err.Error())

		require.NoError(t, d.ChangeStatus(StatusChange{To: StatusCancelled, Reason: "Client injoignable"}))
		assert.Equal(t, "Client injoignable", d.CancellationReason)
		assert.NotNil(t, d.CancelledAt)
	})

	t.Run("paid zeroes the balance", func(t *testing.T) {
		d := issued(t, TypeFacture, "FAC-2025-000004")
		require.NoError(t, d.ChangeStatus(StatusChange{To: StatusPaid}))
		assert.True(t, d.Balance.IsZero())
		assert.NotNil(t, d.PaidAt)
	})
}

func TestMarkOverdue(t *testing.T) {
	d := issued(t, TypeFacture, "FAC-2025-000005")
	due := testNow.Add(-24 * time.Hour)
	d.DueDate = &due

	assert.True(t, d.MarkOverdue(testNow))
	assert.Equal(t, StatusOverdue, d.Status)
	assert.False(t, d.MarkOverdue(testNow))
}

func TestLockUnlock(t *testing.T) {
	d := issued(t, TypeFacture, "FAC-2025-000006")

	err := d.Lock("", "", nil, testNow)
	assert.Equal(t, "Document déjà verrouillé", err.Error())

	assert.Error(t, d.Unlock("", nil, testNow))
	require.NoError(t, d.Unlock("Erreur d'adresse client", nil, testNow))
	assert.False(t, d.IsLocked)
	assert.Error(t, d.Unlock("encore", nil, testNow))

	require.NoError(t, d.Lock("https://cdn.example.com/docs/fac.pdf", "abc", nil, testNow))
	assert.True(t, d.IsLocked)
	assert.Equal(t, "abc", d.Archive.PdfHash)
	assert.NotNil(t, d.Archive.ArchivedAt)
}

func TestIntegrity(t *testing.T) {
	t.Run("draft needs no check", func(t *testing.T) {
		check := newTestDocument(t, TypeFacture).VerifyIntegrity(testNow)
		assert.True(t, check.Valid)
	})

	t.Run("hash is stable across decimal scale", func(t *testing.T) {
		d := issued(t, TypeFacture, "FAC-2025-000007")
		h := d.ComputeHash()
		d.TotalTTC = dec("269.50")
		d.Items[0].Quantity = dec("2.000")
		assert.Equal(t, h, d.ComputeHash())
		assert.True(t, d.VerifyIntegrity(testNow).Valid)
	})

	t.Run("over-precise input survives a reload", func(t *testing.T) {
		c := testContent()
		c.Items[0].Quantity = dec("1.23456")
		c.Items[0].UnitPriceHT = dec("99.999")
		d, err := New(NewParams{Type: TypeFacture, Content: c, Now: testNow})
		require.NoError(t, err)
		require.NoError(t, d.Issue("FAC-2025-000011", nil, testNow))
		assert.True(t, d.Items[0].Quantity.Equal(dec("1.235")))
		assert.True(t, d.Items[0].UnitPriceHT.Equal(dec("100")))

		// column scales applied by the database
		d.Items[0].Quantity = dec(d.Items[0].Quantity.StringFixed(3))
		d.Items[0].UnitPriceHT = dec(d.Items[0].UnitPriceHT.StringFixed(2))
		assert.True(t, d.VerifyIntegrity(testNow).Valid)
	})

	t.Run("detects tampering", func(t *testing.T) {
		d := issued(t, TypeFacture, "FAC-2025-000008")
		d.Items[0].Designation = "Porte en pin"

		check := d.VerifyIntegrity(testNow)
		assert.False(t, check.Valid)
		assert.Equal(t, "ALERTE: Le document a été modifié!", check.Reason)
	})

	t.Run("missing hash", func(t *testing.T) {
		d := issued(t, TypeFacture, "FAC-2025-000009")
		d.Archive.DocumentHash = ""
		assert.False(t, d.VerifyIntegrity(testNow).Valid)
	})
}

func TestPayments(t *testing.T) {
	pay := func(d *Document, amount string) *Payment {
		p, err := NewPayment(d, "PAY-2025-000001", PaymentParams{Amount: dec(amount), Date: testNow, Method: PaymentCash})
		require.NoError(t, err)
		return p
	}

	t.Run("only invoices accept payments", func(t *testing.T) {
		d := issued(t, TypeDevis, "DEV-2025-000002")
		err := d.ApplyPayment(pay(d, "10"), testNow)
		assert.Equal(t, "Seules les factures peuvent recevoir des paiements", err.Error())
	})

	t.Run("partial then full", func(t *testing.T) {
		d := issued(t, TypeFacture, "FAC-2025-000010")

		require.NoError(t, d.ApplyPayment(pay(d, "100"), testNow))
		assert.Equal(t, StatusPartial, d.Status)
		assert.True(t, d.PaidAmount.Add(d.Balance).Equal(d.TotalTTC))

		err := d.ApplyPayment(pay(d, "500"), testNow)
		assert.Equal(t, "Le montant (500) dépasse le solde restant (169.5)", err.Error())

		require.NoError(t, d.ApplyPayment(pay(d, "169.5"), testNow))
		assert.Equal(t, StatusPaid, d.Status)
		assert.True(t, d.Balance.IsZero())
	})

	t.Run("deposit invoices accept payments", func(t *testing.T) {
		d := issued(t, TypeFactureAcompte, "FAAC-2025-000001")
		require.NoError(t, d.ApplyPayment(pay(d, "10"), testNow))
	})

	t.Run("reversal restores status", func(t *testing.T) {
		d := issued(t, TypeFacture, "FAC-2025-000011")
		p1, p2 := pay(d, "100"), pay(d, "50")
		require.NoError(t, d.ApplyPayment(p1, testNow))
		require.NoError(t, d.ApplyPayment(p2, testNow))

		require.NoError(t, d.ReversePayment(p2, testNow))
		assert.Equal(t, StatusPartial, d.Status)
		require.NoError(t, d.ReversePayment(p1, testNow))
		assert.Equal(t, StatusSent, d.Status)
		assert.True(t, d.Balance.Equal(d.TotalTTC))
	})

	t.Run("validates payment input", func(t *testing.T) {
		d := issued(t, TypeFacture, "FAC-2025-000012")
		_, err := NewPayment(d, "PAY-2025-000002", PaymentParams{Amount: decimal.Zero, Method: "BITCOIN"})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Len(t, de.Details, 3)
	})
}
