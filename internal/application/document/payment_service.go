package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PaymentService records client payments against invoices and keeps the
// invoice balance and status in step inside the same transaction.
type PaymentService struct {
	paymentRepo    document.PaymentRepository
	docRepo        document.DocumentRepository
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo document.PaymentRepository,
	docRepo document.DocumentRepository,
	scope TransactionScope,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		docRepo:     docRepo,
		scope:       scope,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides time.Now, for tests
func (s *PaymentService) SetClock(now func() time.Time) {
	s.now = now
}

// Record records a payment on a facture or facture d'acompte
func (s *PaymentService) Record(ctx context.Context, documentID uuid.UUID, req RecordPaymentRequest, actor *uuid.UUID) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentID, documentID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		telemetry.SpanAttrPaymentMethod, req.Method,
	)

	now := s.now()
	date := now
	if req.Date != nil {
		date = *req.Date
	}

	var (
		d       *document.Document
		payment *document.Payment
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		d, err = repos.DocumentRepo().FindByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if !d.Type.IsInvoice() {
			return shared.NewDomainError(document.CodeNotInvoice, "Seules les factures peuvent recevoir des paiements")
		}
		params := document.PaymentParams{
			Amount:      req.Amount,
			Date:        date,
			Method:      document.PaymentMethod(req.Method),
			Reference:   req.Reference,
			Notes:       req.Notes,
			CreatedByID: actor,
		}
		// validate before consuming a number
		if _, err := document.NewPayment(d, "", params); err != nil {
			return err
		}
		if d.Status == document.StatusCancelled || d.Status == document.StatusDraft {
			return shared.NewDomainErrorf(shared.CodeInvalidState,
				"Impossible d'enregistrer un paiement sur un document au statut %s", d.Status)
		}
		if req.Amount.GreaterThan(d.Balance) {
			return shared.NewDomainErrorf(document.CodeInvalidAmount,
				"Le montant (%s) dépasse le solde restant (%s)", req.Amount, d.Balance)
		}

		gen := sequence.NewGenerator(repos.SequenceStore(), sequence.WithClock(s.now))
		number, err := gen.Next(ctx, sequence.TypePayment)
		if err != nil {
			return err
		}
		payment, err = document.NewPayment(d, number, params)
		if err != nil {
			return err
		}
		if err := d.ApplyPayment(payment, now); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return err
		}
		if err := repos.DocumentRepo().Save(ctx, d); err != nil {
			return err
		}
		appaudit.Write(ctx, repos.AuditRepo(), s.logger, auditPayment(payment, d))
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentStatus, string(d.Status))

	if err := shared.PublishAndClear(ctx, s.eventPublisher, d); err != nil {
		s.logger.Warn("failed to publish payment events", zap.Error(err))
	}
	s.logger.Info("payment recorded",
		zap.String("payment", payment.Number),
		zap.String("document", d.Number),
		zap.String("amount", payment.Amount.StringFixed(2)),
	)
	return &PaymentResult{
		Payment:        ToPaymentResponse(payment),
		DocumentStatus: string(d.Status),
		PaidAmount:     d.PaidAmount,
		Balance:        d.Balance,
	}, nil
}

// Delete removes a payment and reverses it on the invoice
func (s *PaymentService) Delete(ctx context.Context, paymentID uuid.UUID, actor *uuid.UUID) error {
	var d *document.Document
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		d, err = repos.DocumentRepo().FindByIDForUpdate(ctx, p.DocumentID)
		if err != nil {
			return err
		}
		if err := d.ReversePayment(p, s.now()); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Delete(ctx, paymentID); err != nil {
			return err
		}
		if err := repos.DocumentRepo().Save(ctx, d); err != nil {
			return err
		}
		appaudit.Write(ctx, repos.AuditRepo(), s.logger, auditPaymentDeleted(p, d, actor))
		return nil
	})
	if err != nil {
		return err
	}
	if err := shared.PublishAndClear(ctx, s.eventPublisher, d); err != nil {
		s.logger.Warn("failed to publish payment events", zap.Error(err))
	}
	return nil
}

// ListByDocument lists the payments of an invoice, oldest first
func (s *PaymentService) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.docRepo.FindByID(ctx, documentID); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out, nil
}

// GetByID returns one payment
func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(p)
	return &resp, nil
}
