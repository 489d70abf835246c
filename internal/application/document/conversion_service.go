package document

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// maxParentDepth bounds the walk from a BC, BL or PV back to its devis
const maxParentDepth = 3

// Convert derives the next document of the flow from a source document
func (s *DocumentService) Convert(ctx context.Context, sourceID uuid.UUID, req ConvertRequest, actor *uuid.UUID) (*ConvertResult, error) {
	lines := make([]document.ConvertLine, len(req.Items))
	for i, it := range req.Items {
		lines[i] = document.ConvertLine{ItemID: it.ItemID, Quantity: it.Quantity}
	}

	var source, target *document.Document
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		source, err = repos.DocumentRepo().FindByIDForUpdate(ctx, sourceID)
		if err != nil {
			return err
		}
		target, err = source.Convert(document.ConvertParams{
			Target:          document.Type(req.TargetType),
			Lines:           lines,
			DeliveryDate:    req.DeliveryDate,
			DeliveryAddress: req.DeliveryAddress,
			DeliveryCity:    req.DeliveryCity,
			DeliveryNotes:   req.DeliveryNotes,
			DueDate:         req.DueDate,
			AvoirReason:     req.AvoirReason,
			CreatedByID:     actor,
			Now:             s.now(),
		})
		if err != nil {
			return err
		}
		if err := repos.DocumentRepo().Save(ctx, target); err != nil {
			return err
		}
		if err := repos.DocumentRepo().Save(ctx, source); err != nil {
			return err
		}
		s.record(ctx, repos.AuditRepo(), auditConverted(source, target, actor))
		return nil
	})
	if err != nil {
		return nil, err
	}

	partial := wasPartial(source)
	s.publish(ctx, source, target)
	return &ConvertResult{
		Document:     ToDocumentResponse(target),
		SourceID:     source.ID,
		SourceStatus: string(source.Status),
		Partial:      partial,
	}, nil
}

func wasPartial(source *document.Document) bool {
	for _, e := range source.GetDomainEvents() {
		if converted, ok := e.(*document.DocumentConvertedEvent); ok {
			return converted.Partial
		}
	}
	return false
}

// CreateDepositInvoice raises and issues a facture d'acompte on an accepted devis
func (s *DocumentService) CreateDepositInvoice(ctx context.Context, devisID uuid.UUID, req DepositInvoiceRequest, actor *uuid.UUID) (*DocumentResponse, error) {
	params := document.DepositParams{
		DueDate:     req.DueDate,
		Notes:       req.Notes,
		CreatedByID: actor,
		Now:         s.now(),
	}
	if req.Percent != nil {
		params.Percent = *req.Percent
	}
	if req.Amount != nil {
		params.Amount = *req.Amount
	}

	var devis, dep *document.Document
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		devis, err = repos.DocumentRepo().FindByIDForUpdate(ctx, devisID)
		if err != nil {
			return err
		}
		existing, err := repos.DocumentRepo().FindDepositInvoices(ctx, devisID)
		if err != nil {
			return err
		}
		dep, err = devis.NewDepositInvoice(existing, params)
		if err != nil {
			return err
		}
		if _, err := s.issueIn(ctx, repos, dep, actor); err != nil {
			return err
		}
		s.record(ctx, repos.AuditRepo(), auditDepositCreated(dep, devis, actor))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.archive(ctx, dep, actor)
	s.publish(ctx, dep)
	resp := ToDocumentResponse(dep)
	return &resp, nil
}

// CreateFinalInvoice builds the draft invoice closing a BC, BL or PV and
// deducts the paid deposit invoices of the originating devis.
func (s *DocumentService) CreateFinalInvoice(ctx context.Context, sourceID uuid.UUID, req FinalInvoiceRequest, actor *uuid.UUID) (*DocumentResponse, error) {
	var (
		source, inv *document.Document
		applied     []*document.Document
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		source, err = repos.DocumentRepo().FindByIDForUpdate(ctx, sourceID)
		if err != nil {
			return err
		}
		inv, err = source.NewFinalInvoice(document.FinalInvoiceParams{
			DueDate:     req.DueDate,
			Notes:       req.Notes,
			CreatedByID: actor,
			Now:         s.now(),
		})
		if err != nil {
			return err
		}

		devis, err := s.findDevis(ctx, repos.DocumentRepo(), source)
		if err != nil {
			return err
		}
		if devis != nil {
			deposits, err := repos.DocumentRepo().FindDepositInvoices(ctx, devis.ID)
			if err != nil {
				return err
			}
			applied = paidUnapplied(deposits)
			if len(applied) > 0 {
				if err := inv.ApplyDeposits(devis.ID, applied, s.now()); err != nil {
					return err
				}
			}
		}

		if err := repos.DocumentRepo().Save(ctx, inv); err != nil {
			return err
		}
		if err := repos.DocumentRepo().Save(ctx, source); err != nil {
			return err
		}
		for _, dep := range applied {
			if err := repos.DocumentRepo().Save(ctx, dep); err != nil {
				return err
			}
		}
		s.record(ctx, repos.AuditRepo(), auditConverted(source, inv, actor))
		if len(applied) > 0 {
			s.record(ctx, repos.AuditRepo(), auditDepositsApplied(inv, applied, actor))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, source, inv)
	resp := ToDocumentResponse(inv)
	return &resp, nil
}

// findDevis resolves the devis a document descends from, through devisRef
// first and then up the parent chain
func (s *DocumentService) findDevis(ctx context.Context, repo document.DocumentRepository, d *document.Document) (*document.Document, error) {
	if d.Refs.DevisRef != "" {
		devis, err := repo.FindByNumber(ctx, d.Refs.DevisRef)
		if err == nil && devis.Type == document.TypeDevis {
			return devis, nil
		}
		if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
	}
	current := d
	for i := 0; i < maxParentDepth && current.ParentID != nil; i++ {
		parent, err := repo.FindByID(ctx, *current.ParentID)
		if err != nil {
			if shared.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		if parent.Type == document.TypeDevis {
			return parent, nil
		}
		current = parent
	}
	return nil, nil
}

func paidUnapplied(deposits []*document.Document) []*document.Document {
	var out []*document.Document
	for _, dep := range deposits {
		paid := dep.Status == document.StatusPaid || dep.Status == document.StatusPartial
		if paid && dep.Deposit.AppliedToInvoiceID == nil {
			out = append(out, dep)
		}
	}
	return out
}

// ApplyDeposits deducts the given paid deposit invoices from a draft final invoice
func (s *DocumentService) ApplyDeposits(ctx context.Context, invoiceID uuid.UUID, req ApplyDepositsRequest, actor *uuid.UUID) (*DocumentResponse, error) {
	var (
		inv      *document.Document
		deposits []*document.Document
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = repos.DocumentRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		deposits, err = repos.DocumentRepo().FindByIDs(ctx, req.DepositInvoiceIDs)
		if err != nil {
			return err
		}
		if missing := missingIDs(req.DepositInvoiceIDs, deposits); len(missing) > 0 {
			return shared.NewDomainErrorf(document.CodeInvalidDeposit,
				"Factures d'acompte invalides ou non payées: %s", joinIDs(missing))
		}
		devis, err := s.findDevis(ctx, repos.DocumentRepo(), inv)
		if err != nil {
			return err
		}
		if devis == nil {
			return shared.NewDomainError(document.CodeInvalidDeposit, "La facture n'est liée à aucun devis")
		}
		if err := inv.ApplyDeposits(devis.ID, deposits, s.now()); err != nil {
			return err
		}
		if err := repos.DocumentRepo().Save(ctx, inv); err != nil {
			return err
		}
		for _, dep := range deposits {
			if err := repos.DocumentRepo().Save(ctx, dep); err != nil {
				return err
			}
		}
		s.record(ctx, repos.AuditRepo(), auditDepositsApplied(inv, deposits, actor))
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToDocumentResponse(inv)
	return &resp, nil
}

// RemoveDeposits detaches every deposit applied to a draft final invoice
func (s *DocumentService) RemoveDeposits(ctx context.Context, invoiceID uuid.UUID, actor *uuid.UUID) (*DocumentResponse, error) {
	var inv *document.Document
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = repos.DocumentRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		var deposits []*document.Document
		if len(inv.Deposit.AppliedDepositIDs) > 0 {
			deposits, err = repos.DocumentRepo().FindByIDs(ctx, inv.Deposit.AppliedDepositIDs)
			if err != nil {
				return err
			}
		}
		removed := inv.Deposit.TotalApplied
		if err := inv.RemoveDeposits(deposits, s.now()); err != nil {
			return err
		}
		if err := repos.DocumentRepo().Save(ctx, inv); err != nil {
			return err
		}
		for _, dep := range deposits {
			if err := repos.DocumentRepo().Save(ctx, dep); err != nil {
				return err
			}
		}
		s.record(ctx, repos.AuditRepo(), auditDepositsRemoved(inv, removed, actor))
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToDocumentResponse(inv)
	return &resp, nil
}

// DepositSummary reports the deposit invoices raised on a devis
func (s *DocumentService) DepositSummary(ctx context.Context, devisID uuid.UUID) (*document.DepositSummary, error) {
	devis, err := s.docRepo.FindByID(ctx, devisID)
	if err != nil {
		return nil, err
	}
	if devis.Type != document.TypeDevis {
		return nil, shared.NewDomainError(document.CodeInvalidDeposit, "Le document n'est pas un devis")
	}
	deposits, err := s.docRepo.FindDepositInvoices(ctx, devisID)
	if err != nil {
		return nil, err
	}
	summary := document.SummarizeDeposits(devis, deposits)
	return &summary, nil
}

// DeliverPartially ships part of a bon de commande. The BL is issued at once
// and the delivery is logged.
func (s *DocumentService) DeliverPartially(ctx context.Context, bcID uuid.UUID, req PartialDeliveryRequest, actor *uuid.UUID) (*PartialDeliveryResult, error) {
	var (
		bc, bl *document.Document
		log    *document.DeliveryLog
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		bc, err = repos.DocumentRepo().FindByIDForUpdate(ctx, bcID)
		if err != nil {
			return err
		}
		bl, log, err = bc.DeliverPartially(document.PartialDeliveryParams{
			Lines:       req.Items,
			Date:        req.DeliveryDate,
			Address:     req.Address,
			City:        req.City,
			Notes:       req.Notes,
			ReceivedBy:  req.ReceivedBy,
			CreatedByID: actor,
			Now:         s.now(),
		})
		if err != nil {
			return err
		}
		if _, err := s.issueIn(ctx, repos, bl, actor); err != nil {
			return err
		}
		if err := repos.DocumentRepo().Save(ctx, bc); err != nil {
			return err
		}
		if err := repos.DeliveryLogRepo().Save(ctx, log); err != nil {
			return err
		}
		s.record(ctx, repos.AuditRepo(), auditDelivery(bc, bl, actor))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.archive(ctx, bl, actor)
	s.publish(ctx, bc, bl)
	return &PartialDeliveryResult{
		DeliveryNote: ToDocumentResponse(bl),
		BCStatus:     string(bc.Status),
		Progress:     bc.DeliveryProgress(),
		LogID:        log.ID,
	}, nil
}

// DeliveryLogs lists the deliveries of a bon de commande
func (s *DocumentService) DeliveryLogs(ctx context.Context, bcID uuid.UUID) ([]DeliveryLogResponse, error) {
	logs, err := s.deliveryRepo.FindByBC(ctx, bcID)
	if err != nil {
		return nil, err
	}
	out := make([]DeliveryLogResponse, len(logs))
	for i, l := range logs {
		out[i] = DeliveryLogResponse{
			ID:         l.ID,
			BLID:       l.BLID,
			Items:      l.Lines,
			Date:       l.Date,
			ReceivedBy: l.ReceivedBy,
			CreatedAt:  l.CreatedAt,
		}
	}
	return out, nil
}

func missingIDs(want []uuid.UUID, found []*document.Document) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(found))
	for _, d := range found {
		seen[d.ID] = true
	}
	var missing []uuid.UUID
	for _, id := range want {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
