package document

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/shopspring/decimal"
)

func docEntry(action string, d *document.Document, description string, actor *uuid.UUID) *audit.Log {
	id := d.ID
	amount := d.TotalTTC
	return audit.New(action, audit.EntityDocument, &id, description).
		WithDocument(d.Number, string(d.Type), &amount).
		By(actor)
}

func auditCreated(d *document.Document, actor *uuid.UUID) *audit.Log {
	return docEntry(audit.ActionCreate, d, fmt.Sprintf("Document %s %s créé", d.Type, d.Number), actor).
		Classify(audit.CategoryDocument, audit.SeverityInfo)
}

func auditUpdated(before, after *document.Document, actor *uuid.UUID) *audit.Log {
	e := docEntry(audit.ActionUpdate, after, fmt.Sprintf("Document %s %s modifié", after.Type, after.Number), actor).
		Classify(audit.CategoryDocument, audit.SeverityWarning)
	if !before.TotalTTC.Equal(after.TotalTTC) {
		e.WithChange("totalTTC", before.TotalTTC, after.TotalTTC)
	}
	if before.Client.ID != after.Client.ID {
		e.WithChange("clientId", before.Client.ID, after.Client.ID)
	}
	if len(before.Items) != len(after.Items) {
		e.WithChange("items", len(before.Items), len(after.Items))
	}
	if !before.Date.Equal(after.Date) {
		e.WithChange("date", before.Date, after.Date)
	}
	return e
}

func auditDeleted(d *document.Document, actor *uuid.UUID) *audit.Log {
	return docEntry(audit.ActionDelete, d, fmt.Sprintf("Document %s %s supprimé", d.Type, d.Number), actor).
		Classify(audit.CategoryDocument, audit.SeverityWarning)
}

func auditIssued(d *document.Document, previous string, actor *uuid.UUID) *audit.Log {
	return docEntry(audit.ActionIssue, d, fmt.Sprintf("Document %s %s émis officiellement", d.Type, d.Number), actor).
		WithChange("number", previous, d.Number).
		Classify(audit.CategoryFinancial, audit.SeverityCritical)
}

func auditStatus(d *document.Document, from, to document.Status, actor *uuid.UUID) *audit.Log {
	return docEntry(audit.ActionStatusChange, d, fmt.Sprintf("%s %s: %s → %s", d.Type, d.Number, from, to), actor).
		WithChange("status", from, to).
		Classify(audit.CategoryDocument, audit.StatusSeverity(string(to)))
}

func auditLocked(d *document.Document, reason string, actor *uuid.UUID) *audit.Log {
	return docEntry(audit.ActionLock, d, fmt.Sprintf("Document %s %s verrouillé: %s", d.Type, d.Number, reason), actor).
		Classify(audit.CategoryDocument, audit.SeverityCritical)
}

func auditUnlocked(d *document.Document, reason string, actor *uuid.UUID) *audit.Log {
	return docEntry(audit.ActionUnlock, d,
		fmt.Sprintf("ADMIN: Document %s %s déverrouillé. Raison: %s", d.Type, d.Number, reason), actor).
		WithChange("unlockReason", nil, reason).
		Classify(audit.CategoryDocument, audit.SeverityCritical)
}

func auditArchived(d *document.Document, actor *uuid.UUID) *audit.Log {
	e := docEntry(audit.ActionArchive, d, fmt.Sprintf("PDF archivé pour %s %s", d.Type, d.Number), actor).
		WithChange("pdfHash", nil, d.Archive.PdfHash).
		Classify(audit.CategoryDocument, audit.SeverityInfo)
	e.PdfSnapshot = d.Archive.PdfURL
	return e
}

func auditConverted(source, target *document.Document, actor *uuid.UUID) *audit.Log {
	return docEntry(audit.ActionConvert, target,
		fmt.Sprintf("%s %s converti en %s %s", source.Type, source.Number, target.Type, target.Number), actor).
		WithChange("source", nil, map[string]any{"id": source.ID, "number": source.Number, "type": source.Type}).
		Classify(audit.CategoryDocument, audit.SeverityInfo)
}

func auditDepositCreated(dep, devis *document.Document, actor *uuid.UUID) *audit.Log {
	percent := dep.Deposit.Amount.Div(devis.TotalTTC).Mul(decimal.NewFromInt(100)).Round(0)
	return docEntry(audit.ActionCreateDeposit, dep,
		fmt.Sprintf("Facture d'acompte %s créée (%s%% de %s)", dep.Number, percent, devis.Number), actor).
		WithChange("sourceDevis", nil, devis.Number).
		WithChange("depositPercent", nil, percent).
		Classify(audit.CategoryFinancial, audit.SeverityCritical)
}

func auditDepositsApplied(inv *document.Document, deposits []*document.Document, actor *uuid.UUID) *audit.Log {
	applied := make([]map[string]any, len(deposits))
	for i, dep := range deposits {
		applied[i] = map[string]any{"number": dep.Number, "amount": dep.PaidAmount}
	}
	total := inv.Deposit.TotalApplied
	e := docEntry(audit.ActionApplyDeposits, inv,
		fmt.Sprintf("Acomptes déduits de %s: %s DH", inv.Number, total.StringFixed(2)), actor).
		WithChange("appliedDeposits", nil, applied).
		WithChange("totalDeducted", nil, total).
		Classify(audit.CategoryFinancial, audit.SeverityCritical)
	e.DocumentAmount = &total
	return e
}

func auditDepositsRemoved(inv *document.Document, removed decimal.Decimal, actor *uuid.UUID) *audit.Log {
	return docEntry(audit.ActionRemoveDeposit, inv,
		fmt.Sprintf("Acomptes retirés de %s: %s DH", inv.Number, removed.StringFixed(2)), actor).
		WithChange("totalDeducted", removed, decimal.Zero).
		Classify(audit.CategoryFinancial, audit.SeverityWarning)
}

func auditDelivery(bc, bl *document.Document, actor *uuid.UUID) *audit.Log {
	return docEntry(audit.ActionDelivery, bl,
		fmt.Sprintf("Livraison partielle %s sur %s (statut BC: %s)", bl.Number, bc.Number, bc.Status), actor).
		WithChange("bcStatus", nil, bc.Status).
		Classify(audit.CategoryDocument, audit.SeverityInfo)
}

func auditPayment(p *document.Payment, d *document.Document) *audit.Log {
	id := p.ID
	amount := p.Amount
	return audit.New(audit.ActionPayment, audit.EntityPayment, &id,
		fmt.Sprintf("Paiement %s de %s DH reçu pour %s", p.Number, p.Amount.StringFixed(2), d.Number)).
		WithDocument(d.Number, string(d.Type), &amount).
		WithChange("balance", d.Balance.Add(p.Amount), d.Balance).
		Classify(audit.CategoryFinancial, audit.SeverityCritical).
		By(p.CreatedByID)
}

func auditPaymentDeleted(p *document.Payment, d *document.Document, actor *uuid.UUID) *audit.Log {
	id := p.ID
	amount := p.Amount
	return audit.New(audit.ActionPaymentDelete, audit.EntityPayment, &id,
		fmt.Sprintf("Paiement %s de %s DH supprimé sur %s", p.Number, p.Amount.StringFixed(2), d.Number)).
		WithDocument(d.Number, string(d.Type), &amount).
		WithChange("balance", d.Balance.Sub(p.Amount), d.Balance).
		Classify(audit.CategoryFinancial, audit.SeverityCritical).
		By(actor)
}
