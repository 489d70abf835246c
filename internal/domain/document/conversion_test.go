package document

import (
	"testing"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acceptedDevis(t *testing.T) *Document {
	t.Helper()
	d := issued(t, TypeDevis, "DEV-2025-000010")
	d.Status = StatusAccepted
	return d
}

func TestCanConvert(t *testing.T) {
	assert.NoError(t, CanConvert(TypeDevis, StatusAccepted, TypeBonCommande))

	err := CanConvert(TypeDevis, StatusAccepted, TypeFacture)
	assert.Equal(t, "Impossible de convertir DEVIS en FACTURE", err.Error())

	err = CanConvert(TypeBonCommande, StatusSent, TypeBonLivraison)
	assert.Equal(t, "Le document doit être CONFIRMED ou PARTIAL pour être converti", err.Error())

	assert.NoError(t, CanConvert(TypeFacture, StatusOverdue, TypeAvoir))
	assert.Error(t, CanConvert(TypeAvoir, StatusSent, TypeFacture))
}

func TestConvert(t *testing.T) {
	t.Run("devis to bon de commande copies everything", func(t *testing.T) {
		devis := acceptedDevis(t)

		bc, err := devis.Convert(ConvertParams{Target: TypeBonCommande, Now: testNow})
		require.NoError(t, err)

		assert.Equal(t, TypeBonCommande, bc.Type)
		assert.True(t, bc.IsDraft)
		assert.Equal(t, "DEV-2025-000010", bc.Refs.DevisRef)
		assert.Equal(t, devis.ID, *bc.ParentID)
		assert.Equal(t, devis.Client, bc.Client)
		assert.Len(t, bc.Items, 2)
		assert.Equal(t, devis.Items[0].ID, *bc.Items[0].SourceItemID)
		assert.True(t, bc.TotalTTC.Equal(devis.TotalTTC))
		assert.True(t, bc.Balance.Equal(bc.TotalTTC))
		assert.Equal(t, StatusAccepted, devis.Status)
		assert.Equal(t, TypeBonCommande, devis.ChildType)
	})

	t.Run("refs chain through the flow", func(t *testing.T) {
		bc := issued(t, TypeBonCommande, "BC-2025-000020")
		bc.Refs.DevisRef = "DEV-2025-000010"

		bl, err := bc.Convert(ConvertParams{Target: TypeBonLivraison, DeliveryCity: "Fès"})
		require.NoError(t, err)
		assert.Equal(t, "DEV-2025-000010", bl.Refs.DevisRef)
		assert.Equal(t, "BC-2025-000020", bl.Refs.BCRef)
		assert.Equal(t, "Fès", bl.Delivery.City)
		assert.True(t, bl.Items[0].OrderedQty.Equal(dec("2")))
		assert.True(t, bl.Items[0].DeliveredQty.Equal(dec("2")))
		assert.Equal(t, StatusDelivered, bc.Status)
	})

	t.Run("partial selection marks the source partial", func(t *testing.T) {
		bc := issued(t, TypeBonCommande, "BC-2025-000021")

		bl, err := bc.Convert(ConvertParams{
			Target: TypeBonLivraison,
			Lines:  []ConvertLine{{ItemID: bc.Items[0].ID, Quantity: dec("1")}},
		})
		require.NoError(t, err)
		require.Len(t, bl.Items, 1)
		assert.True(t, bl.Items[0].Quantity.Equal(dec("1")))
		assert.True(t, bl.TotalHT.Equal(dec("90")))
		assert.Equal(t, StatusPartial, bc.Status)
	})

	t.Run("unknown line is rejected", func(t *testing.T) {
		bc := issued(t, TypeBonCommande, "BC-2025-000022")
		_, err := bc.Convert(ConvertParams{
			Target: TypeBonLivraison,
			Lines:  []ConvertLine{{ItemID: uuid.New(), Quantity: dec("1")}},
		})
		assert.Error(t, err)
	})

	t.Run("quantity above the source is rejected", func(t *testing.T) {
		bc := issued(t, TypeBonCommande, "BC-2025-000023")
		_, err := bc.Convert(ConvertParams{
			Target: TypeFacture,
			Lines:  []ConvertLine{{ItemID: bc.Items[0].ID, Quantity: dec("3")}},
		})
		assert.Error(t, err)
		assert.Equal(t, StatusConfirmed, bc.Status)
	})

	t.Run("invoice to avoir keeps the reason", func(t *testing.T) {
		fac := issued(t, TypeFacture, "FAC-2025-000030")
		fac.Status = StatusPaid

		av, err := fac.Convert(ConvertParams{Target: TypeAvoir, AvoirReason: "Retour marchandise"})
		require.NoError(t, err)
		assert.Equal(t, "FAC-2025-000030", av.Refs.FactureRef)
		assert.Equal(t, "Retour marchandise", av.AvoirReason)
		assert.Equal(t, StatusPaid, fac.Status)
	})
}

func TestDeliverPartially(t *testing.T) {
	bc := issued(t, TypeBonCommande, "BC-2025-000040")
	first := bc.Items[0].ID

	bl, log, err := bc.DeliverPartially(PartialDeliveryParams{
		Lines:      []DeliveryLine{{ItemID: first, Quantity: dec("1")}},
		ReceivedBy: "M. Alaoui",
		Now:        testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, TypeBonLivraison, bl.Type)
	assert.Equal(t, "BC-2025-000040", bl.Refs.BCRef)
	assert.True(t, bl.Items[0].RemainingQty.Equal(dec("1")))
	assert.Equal(t, StatusPartial, bc.Status)
	assert.Equal(t, bc.ID, log.BCID)
	assert.Equal(t, bl.ID, log.BLID)

	_, _, err = bc.DeliverPartially(PartialDeliveryParams{
		Lines: []DeliveryLine{{ItemID: first, Quantity: dec("2")}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supérieure au reste à livrer (1)")

	_, _, err = bc.DeliverPartially(PartialDeliveryParams{
		Lines: []DeliveryLine{
			{ItemID: first, Quantity: dec("1")},
			{ItemID: bc.Items[1].ID, Quantity: dec("1")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, bc.Status)
	for _, p := range bc.DeliveryProgress() {
		assert.True(t, p.FullyDelivered)
	}

	devis := acceptedDevis(t)
	_, _, err = devis.DeliverPartially(PartialDeliveryParams{Lines: []DeliveryLine{{ItemID: devis.Items[0].ID, Quantity: dec("1")}}})
	assert.Error(t, err)
}

func TestRepeatedLinesAreRejected(t *testing.T) {
	tests := []struct {
		name string
		run  func(bc *Document) error
	}{
		{
			name: "convert",
			run: func(bc *Document) error {
				id := bc.Items[0].ID
				_, err := bc.Convert(ConvertParams{
					Target: TypeBonLivraison,
					Lines: []ConvertLine{
						{ItemID: id, Quantity: dec("2")},
						{ItemID: id, Quantity: dec("2")},
					},
				})
				return err
			},
		},
		{
			name: "partial delivery",
			run: func(bc *Document) error {
				id := bc.Items[0].ID
				_, _, err := bc.DeliverPartially(PartialDeliveryParams{
					Lines: []DeliveryLine{
						{ItemID: id, Quantity: dec("2")},
						{ItemID: id, Quantity: dec("2")},
					},
				})
				return err
			},
		},
		{
			name: "partial delivery within the ordered quantity",
			run: func(bc *Document) error {
				id := bc.Items[0].ID
				_, _, err := bc.DeliverPartially(PartialDeliveryParams{
					Lines: []DeliveryLine{
						{ItemID: id, Quantity: dec("1")},
						{ItemID: id, Quantity: dec("1")},
					},
				})
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc := issued(t, TypeBonCommande, "BC-2025-000060")
			version := bc.Version

			err := tt.run(bc)
			require.Error(t, err)
			assert.Equal(t, shared.CodeValidationFailed, domainCode(err))
			assert.Equal(t, StatusConfirmed, bc.Status)
			assert.Equal(t, version, bc.Version)
			assert.True(t, bc.Items[0].TotalDeliveredQty.IsZero())
		})
	}
}

func TestDeposits(t *testing.T) {
	t.Run("default share is thirty percent", func(t *testing.T) {
		devis := acceptedDevis(t)

		dep, err := devis.NewDepositInvoice(nil, DepositParams{Now: testNow})
		require.NoError(t, err)
		assert.Equal(t, TypeFactureAcompte, dep.Type)
		assert.True(t, dep.Deposit.IsDepositInvoice)
		assert.Equal(t, devis.ID, *dep.Deposit.LinkedDevisID)
		assert.True(t, dep.Deposit.Amount.Equal(dec("80.85")))
		assert.Len(t, dep.Items, 2)
		assert.Equal(t, "forfait", dep.Items[0].Unit)
		assert.True(t, dep.TotalTTC.Sub(dec("80.85")).Abs().LessThanOrEqual(dec("0.01")))
		assert.Equal(t, "Acompte de 30% sur devis DEV-2025-000010", dep.Terms.PublicNotes)
	})

	t.Run("cumulated deposits cannot exceed the devis", func(t *testing.T) {
		devis := acceptedDevis(t)
		prev := &Document{Type: TypeFactureAcompte, Status: StatusPaid, TotalTTC: dec("200")}

		_, err := devis.NewDepositInvoice([]*Document{prev}, DepositParams{Amount: dec("100")})
		require.Error(t, err)
		assert.Equal(t, "Le montant de l'acompte dépasse le solde restant. Maximum autorisé: 69.50 DH", err.Error())
	})

	t.Run("devis must be accepted", func(t *testing.T) {
		devis := issued(t, TypeDevis, "DEV-2025-000011")
		_, err := devis.NewDepositInvoice(nil, DepositParams{Percent: dec("50")})
		assert.Equal(t, "Le devis doit être accepté pour créer une facture d'acompte", err.Error())
	})

	t.Run("final invoice deducts paid deposits", func(t *testing.T) {
		bc := issued(t, TypeBonCommande, "BC-2025-000050")
		inv, err := bc.NewFinalInvoice(FinalInvoiceParams{Now: testNow})
		require.NoError(t, err)
		assert.Equal(t, StatusDelivered, bc.Status)
		assert.Equal(t, "BC-2025-000050", inv.Refs.BCRef)

		devisID := uuid.New()
		dep := paidDeposit(devisID, inv.Client, "80")
		dep.TotalTTC = dec("80")
		unpaid := &Document{Type: TypeFactureAcompte, Status: StatusSent}
		unpaid.ID = uuid.New()

		err = inv.ApplyDeposits(devisID, []*Document{dep, unpaid}, testNow)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Factures d'acompte invalides ou non payées: "+unpaid.ID.String())

		require.NoError(t, inv.ApplyDeposits(devisID, []*Document{dep}, testNow))
		assert.True(t, inv.Deposit.TotalApplied.Equal(dec("80")))
		assert.True(t, inv.Deposit.AmountDue.Equal(dec("189.5")))
		assert.True(t, inv.Balance.Equal(inv.Deposit.AmountDue))
		assert.Equal(t, inv.ID, *dep.Deposit.AppliedToInvoiceID)

		summary := SummarizeDeposits(&Document{TotalTTC: dec("269.5")}, []*Document{dep})
		assert.True(t, summary.RemainingAfterDeposits.Equal(dec("189.5")))
		assert.True(t, summary.Deposits[0].IsApplied)

		require.NoError(t, inv.RemoveDeposits([]*Document{dep}, testNow))
		assert.Nil(t, dep.Deposit.AppliedToInvoiceID)
		assert.True(t, inv.Balance.Equal(inv.TotalTTC))

		inv.IsLocked = true
		err = inv.RemoveDeposits(nil, testNow)
		assert.Contains(t, err.Error(), "est verrouillée")
	})

	t.Run("final invoice needs a delivered bl", func(t *testing.T) {
		bl := issued(t, TypeBonLivraison, "BL-2025-000050")
		bl.Status = StatusPartial
		_, err := bl.NewFinalInvoice(FinalInvoiceParams{})
		assert.Equal(t, "Le document doit être DELIVERED pour créer une facture", err.Error())
	})

	t.Run("amount due never goes negative", func(t *testing.T) {
		inv := newTestDocument(t, TypeFacture)
		devisID := uuid.New()
		dep := paidDeposit(devisID, inv.Client, "1000")
		require.NoError(t, inv.ApplyDeposits(devisID, []*Document{dep}, testNow))
		assert.True(t, inv.Deposit.AmountDue.Equal(decimal.Zero))
	})
}
