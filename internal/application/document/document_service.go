package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ClientDirectory resolves the client details printed on documents
type ClientDirectory interface {
	Snapshot(ctx context.Context, clientID uuid.UUID) (document.ClientSnapshot, error)
}

// PDFRenderer renders a document to PDF bytes
type PDFRenderer interface {
	RenderPDF(ctx context.Context, d *document.Document) ([]byte, error)
}

// FileStore stores archived files and returns their public URL
type FileStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// DocumentService orchestrates the CRM document lifecycle: drafting,
// official numbering, status changes, locking and archiving.
type DocumentService struct {
	docRepo        document.DocumentRepository
	deliveryRepo   document.DeliveryLogRepository
	auditRepo      audit.Repository
	scope          TransactionScope
	clients        ClientDirectory
	renderer       PDFRenderer
	files          FileStore
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
	seqOpts        []sequence.GeneratorOption
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	docRepo document.DocumentRepository,
	deliveryRepo document.DeliveryLogRepository,
	auditRepo audit.Repository,
	scope TransactionScope,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		docRepo:      docRepo,
		deliveryRepo: deliveryRepo,
		auditRepo:    auditRepo,
		scope:        scope,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *DocumentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClientDirectory sets the lookup used to fill client snapshots
func (s *DocumentService) SetClientDirectory(clients ClientDirectory) {
	s.clients = clients
}

// SetArchiver enables PDF archiving on issue and lock
func (s *DocumentService) SetArchiver(renderer PDFRenderer, files FileStore) {
	s.renderer = renderer
	s.files = files
}

// SetSequenceOptions adds options to the per-transaction number generator
func (s *DocumentService) SetSequenceOptions(opts ...sequence.GeneratorOption) {
	s.seqOpts = opts
}

// SetClock overrides time.Now, for tests
func (s *DocumentService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *DocumentService) generator(repos TransactionalRepositories) *sequence.Generator {
	opts := append([]sequence.GeneratorOption{
		sequence.WithClock(s.now),
		sequence.WithGapReporter(&gapReporter{repo: repos.AuditRepo(), logger: s.logger}),
	}, s.seqOpts...)
	return sequence.NewGenerator(repos.SequenceStore(), opts...)
}

func (s *DocumentService) publish(ctx context.Context, docs ...*document.Document) {
	for _, d := range docs {
		if d == nil {
			continue
		}
		if err := shared.PublishAndClear(ctx, s.eventPublisher, d); err != nil {
			s.logger.Warn("failed to publish document events",
				zap.String("document_id", d.ID.String()),
				zap.Error(err),
			)
		}
	}
}

func (s *DocumentService) record(ctx context.Context, repo audit.Repository, entry *audit.Log) {
	appaudit.Write(ctx, repo, s.logger, entry)
}

func (s *DocumentService) snapshot(ctx context.Context, req ContentRequest) (document.ClientSnapshot, error) {
	snap := document.ClientSnapshot{
		ID:      req.ClientID,
		Name:    req.ClientName,
		Phone:   req.ClientPhone,
		Email:   req.ClientEmail,
		Address: req.ClientAddress,
		City:    req.ClientCity,
		ICE:     req.ClientICE,
	}
	if s.clients == nil || req.ClientID == uuid.Nil {
		return snap, nil
	}
	stored, err := s.clients.Snapshot(ctx, req.ClientID)
	if err != nil {
		return snap, err
	}
	if snap.Name == "" {
		snap.Name = stored.Name
	}
	if snap.Phone == "" {
		snap.Phone = stored.Phone
	}
	if snap.Email == "" {
		snap.Email = stored.Email
	}
	if snap.Address == "" {
		snap.Address = stored.Address
	}
	if snap.City == "" {
		snap.City = stored.City
	}
	if snap.ICE == "" {
		snap.ICE = stored.ICE
	}
	return snap, nil
}

// Create creates a draft document, or an issued one when IssueImmediately is set
func (s *DocumentService) Create(ctx context.Context, req CreateDocumentRequest, actor *uuid.UUID) (*DocumentResponse, error) {
	now := s.now()
	content := req.toContent(now)
	snap, err := s.snapshot(ctx, req.ContentRequest)
	if err != nil {
		return nil, err
	}
	content.Client = snap

	d, err := document.New(document.NewParams{
		Type:        document.Type(req.Type),
		Content:     content,
		ParentID:    req.ParentID,
		CreatedByID: actor,
		Now:         now,
	})
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if req.IssueImmediately {
			if err := d.CheckIssuable(); err != nil {
				return err
			}
			number, err := s.generator(repos).Next(ctx, d.Type.SequenceType())
			if err != nil {
				return err
			}
			previous := d.Number
			if err := d.Issue(number, actor, now); err != nil {
				return err
			}
			if err := repos.DocumentRepo().Save(ctx, d); err != nil {
				return err
			}
			s.record(ctx, repos.AuditRepo(), auditCreated(d, actor))
			s.record(ctx, repos.AuditRepo(), auditIssued(d, previous, actor))
			return nil
		}
		if err := repos.DocumentRepo().Save(ctx, d); err != nil {
			return err
		}
		s.record(ctx, repos.AuditRepo(), auditCreated(d, actor))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.IssueImmediately {
		s.archive(ctx, d, actor)
	}
	s.publish(ctx, d)
	resp := ToDocumentResponse(d)
	return &resp, nil
}

// GetByID returns a document with its lines
func (s *DocumentService) GetByID(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	d, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToDocumentResponse(d)
	return &resp, nil
}

// List returns a page of documents, newest first
func (s *DocumentService) List(ctx context.Context, req ListDocumentsRequest) (*shared.Paginated[DocumentListItem], error) {
	filter := document.ListFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.Limit,
			Search:   req.Search,
		}.Normalize(20),
		Type:      document.Type(req.Type),
		Status:    document.Status(req.Status),
		ClientID:  req.ClientID,
		ProjectID: req.ProjectID,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
	}
	docs, total, err := s.docRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]DocumentListItem, len(docs))
	for i := range docs {
		items[i] = ToDocumentListItem(&docs[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update replaces the content of an editable document
func (s *DocumentService) Update(ctx context.Context, id uuid.UUID, req UpdateDocumentRequest, actor *uuid.UUID) (*DocumentResponse, error) {
	now := s.now()
	content := req.toContent(now)
	snap, err := s.snapshot(ctx, req.ContentRequest)
	if err != nil {
		return nil, err
	}
	content.Client = snap

	var d *document.Document
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		d, err = repos.DocumentRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		before := *d
		before.Items = append([]document.Item(nil), d.Items...)
		if err := d.Update(content, actor, now); err != nil {
			return err
		}
		if err := repos.DocumentRepo().Save(ctx, d); err != nil {
			return err
		}
		s.record(ctx, repos.AuditRepo(), auditUpdated(&before, d, actor))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, d)
	resp := ToDocumentResponse(d)
	return &resp, nil
}

// Delete removes a draft document
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	var d *document.Document
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		d, err = repos.DocumentRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := d.MarkDeleted(actor); err != nil {
			return err
		}
		if err := repos.DocumentRepo().Delete(ctx, id); err != nil {
			return err
		}
		s.record(ctx, repos.AuditRepo(), auditDeleted(d, actor))
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, d)
	return nil
}

// Issue gives a draft its official number and locks it
func (s *DocumentService) Issue(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*IssueResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "issue")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentID, id.String())

	var (
		d        *document.Document
		previous string
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		d, err = repos.DocumentRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		previous, err = s.issueIn(ctx, repos, d, actor)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentType, string(d.Type),
		telemetry.SpanAttrDocumentNumber, d.Number,
		telemetry.SpanAttrClientID, d.Client.ID.String(),
	)

	s.archive(ctx, d, actor)
	s.publish(ctx, d)
	s.logger.Info("document issued",
		zap.String("document_id", d.ID.String()),
		zap.String("number", d.Number),
		zap.String("type", string(d.Type)),
	)
	return &IssueResult{
		Document:       ToDocumentResponse(d),
		PreviousNumber: previous,
		OfficialNumber: d.Number,
	}, nil
}

// issueIn numbers and saves d inside an open transaction
func (s *DocumentService) issueIn(ctx context.Context, repos TransactionalRepositories, d *document.Document, actor *uuid.UUID) (string, error) {
	if err := d.CheckIssuable(); err != nil {
		return "", err
	}
	number, err := s.generator(repos).Next(ctx, d.Type.SequenceType())
	if err != nil {
		return "", err
	}
	previous := d.Number
	if err := d.Issue(number, actor, s.now()); err != nil {
		return "", err
	}
	if err := repos.DocumentRepo().Save(ctx, d); err != nil {
		return "", err
	}
	s.record(ctx, repos.AuditRepo(), auditIssued(d, previous, actor))
	return previous, nil
}

// IssueMany issues each document in its own transaction and reports failures per document
func (s *DocumentService) IssueMany(ctx context.Context, ids []uuid.UUID, actor *uuid.UUID) *BulkIssueResult {
	result := &BulkIssueResult{
		Successful: make([]IssuedDocument, 0, len(ids)),
		Failed:     make([]IssueFailure, 0),
	}
	for _, id := range ids {
		res, err := s.Issue(ctx, id, actor)
		if err != nil {
			result.Failed = append(result.Failed, IssueFailure{ID: id, Error: err.Error()})
			continue
		}
		result.Successful = append(result.Successful, IssuedDocument{ID: id, Number: res.OfficialNumber})
	}
	return result
}

// ChangeStatus moves a document through the transition table. Confirming a
// draft-numbered document gives it its official number first.
func (s *DocumentService) ChangeStatus(ctx context.Context, id uuid.UUID, req ChangeStatusRequest, actor *uuid.UUID) (*DocumentResponse, error) {
	to := document.Status(req.Status)
	if !to.IsValid() {
		return nil, shared.NewDomainErrorf(document.CodeInvalidTransition, "Statut invalide : %s", req.Status)
	}

	var d *document.Document
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		d, err = repos.DocumentRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		from := d.Status
		change := document.StatusChange{To: to, Reason: req.Reason, Actor: actor, At: s.now()}
		if d.NeedsNumberFor(to) && from.CanTransitionTo(to) {
			change.OfficialNumber, err = s.generator(repos).Next(ctx, d.Type.SequenceType())
			if err != nil {
				return err
			}
		}
		if err := d.ChangeStatus(change); err != nil {
			return err
		}
		if err := repos.DocumentRepo().Save(ctx, d); err != nil {
			return err
		}
		s.record(ctx, repos.AuditRepo(), auditStatus(d, from, to, actor))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, d)
	resp := ToDocumentResponse(d)
	return &resp, nil
}

// LockStatus reports what can still be done with a document
func (s *DocumentService) LockStatus(ctx context.Context, id uuid.UUID) (*document.LockStatus, error) {
	d, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	status := d.LockStatus()
	return &status, nil
}

// CanEdit tells whether a document may be modified and why not
func (s *DocumentService) CanEdit(ctx context.Context, id uuid.UUID) (*document.EditCheck, error) {
	d, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	check := d.CanEdit()
	return &check, nil
}

// Lock seals an unlocked document and archives its PDF
func (s *DocumentService) Lock(ctx context.Context, id uuid.UUID, reason string, actor *uuid.UUID) (*DocumentResponse, error) {
	var d *document.Document
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		d, err = repos.DocumentRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := d.Lock("", "", actor, s.now()); err != nil {
			return err
		}
		if err := repos.DocumentRepo().Save(ctx, d); err != nil {
			return err
		}
		if reason == "" {
			reason = "verrouillage manuel"
		}
		s.record(ctx, repos.AuditRepo(), auditLocked(d, reason, actor))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.archive(ctx, d, actor)
	s.publish(ctx, d)
	resp := ToDocumentResponse(d)
	return &resp, nil
}

// Unlock reopens a locked document. The caller must be an administrator.
func (s *DocumentService) Unlock(ctx context.Context, id uuid.UUID, req UnlockRequest, actor *uuid.UUID) (*DocumentResponse, error) {
	var d *document.Document
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		d, err = repos.DocumentRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := d.Unlock(req.Reason, actor, s.now()); err != nil {
			return err
		}
		if err := repos.DocumentRepo().Save(ctx, d); err != nil {
			return err
		}
		s.record(ctx, repos.AuditRepo(), auditUnlocked(d, req.Reason, actor))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Warn("document unlocked",
		zap.String("document_id", d.ID.String()),
		zap.String("number", d.Number),
		zap.String("reason", req.Reason),
	)
	s.publish(ctx, d)
	resp := ToDocumentResponse(d)
	return &resp, nil
}

// VerifyIntegrity recomputes the content hash of an issued document
func (s *DocumentService) VerifyIntegrity(ctx context.Context, id uuid.UUID) (*document.IntegrityCheck, error) {
	d, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	check := d.VerifyIntegrity(s.now())
	if !check.Valid && check.StoredHash != "" {
		s.logger.Warn("document integrity check failed",
			zap.String("document_id", d.ID.String()),
			zap.String("number", d.Number),
		)
	}
	return &check, nil
}

// VerifyTotals recomputes the totals of a document from its lines
func (s *DocumentService) VerifyTotals(ctx context.Context, id uuid.UUID) (*document.TotalsCheck, error) {
	d, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	check := document.VerifyTotals(d)
	return &check, nil
}

// History returns the audit trail of a document
func (s *DocumentService) History(ctx context.Context, id uuid.UUID, limit, offset int) (*appaudit.SearchResult, error) {
	if _, err := s.docRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	logs, total, err := s.auditRepo.Search(ctx, audit.Filter{
		Entity:   audit.EntityDocument,
		EntityID: &id,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]appaudit.LogResponse, len(logs))
	for i, l := range logs {
		out[i] = appaudit.ToLogResponse(l)
	}
	return &appaudit.SearchResult{Logs: out, Total: total, HasMore: int64(offset+len(logs)) < total}, nil
}

// PDF renders a document
func (s *DocumentService) PDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	if s.renderer == nil {
		return nil, "", shared.NewDomainError("PDF_DISABLED", "La génération PDF n'est pas configurée")
	}
	d, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	var pdf []byte
	telemetry.WithProfilingLabels(ctx, telemetry.RegionLabels("pdf_render", map[string]string{
		telemetry.ProfilingLabelOperation: string(d.Type),
	}), func(ctx context.Context) {
		pdf, err = s.renderer.RenderPDF(ctx, d)
	})
	if err != nil {
		return nil, "", err
	}
	return pdf, d.Number + ".pdf", nil
}

// archive renders and stores the PDF of an issued or locked document.
// Failures are logged; the document stays issued.
func (s *DocumentService) archive(ctx context.Context, d *document.Document, actor *uuid.UUID) {
	if s.renderer == nil || s.files == nil {
		return
	}
	pdf, err := s.renderer.RenderPDF(ctx, d)
	if err != nil {
		s.logger.Error("failed to render document pdf", zap.String("number", d.Number), zap.Error(err))
		return
	}
	sum := sha256.Sum256(pdf)
	hash := hex.EncodeToString(sum[:])
	key := fmt.Sprintf("documents/%s/%s.pdf", d.Type, d.Number)
	url, err := s.files.Put(ctx, key, "application/pdf", pdf)
	if err != nil {
		s.logger.Error("failed to upload document pdf", zap.String("number", d.Number), zap.Error(err))
		return
	}
	d.AttachArchive(url, hash, s.now())
	if err := s.docRepo.Save(ctx, d); err != nil {
		s.logger.Error("failed to record archived pdf", zap.String("number", d.Number), zap.Error(err))
		return
	}
	s.record(ctx, s.auditRepo, auditArchived(d, actor))
}

// MarkOverdueInvoices flags SENT or PARTIAL invoices past their due date. It
// returns the invoices that changed.
func (s *DocumentService) MarkOverdueInvoices(ctx context.Context) ([]DocumentListItem, error) {
	now := s.now()
	candidates, err := s.docRepo.FindOverdueCandidates(ctx, now)
	if err != nil {
		return nil, err
	}
	marked := make([]DocumentListItem, 0, len(candidates))
	for _, d := range candidates {
		from := d.Status
		if !d.MarkOverdue(now) {
			continue
		}
		if err := s.docRepo.Save(ctx, d); err != nil {
			s.logger.Error("failed to mark invoice overdue", zap.String("number", d.Number), zap.Error(err))
			continue
		}
		s.record(ctx, s.auditRepo, auditStatus(d, from, document.StatusOverdue, nil))
		s.publish(ctx, d)
		marked = append(marked, ToDocumentListItem(d))
	}
	return marked, nil
}

// ExpiringQuotes lists sent devis whose validity ends within the window
func (s *DocumentService) ExpiringQuotes(ctx context.Context, within time.Duration) ([]DocumentListItem, error) {
	now := s.now()
	docs, err := s.docRepo.FindExpiringQuotes(ctx, now, now.Add(within))
	if err != nil {
		return nil, err
	}
	out := make([]DocumentListItem, len(docs))
	for i := range docs {
		out[i] = ToDocumentListItem(&docs[i])
	}
	return out, nil
}

// gapReporter writes a warning audit entry when a counter skipped values
type gapReporter struct {
	repo   audit.Repository
	logger *zap.Logger
}

func (g *gapReporter) ReportGap(ctx context.Context, t sequence.Type, year int, previous, next int64) {
	entry := audit.New(audit.ActionSequenceGap, audit.EntitySequence, nil,
		fmt.Sprintf("Écart de numérotation %s %d: %d → %d", t, year, previous, next)).
		WithChange("lastNumber", previous, next).
		Classify(audit.CategorySystem, audit.SeverityWarning)
	entry.DocumentType = string(t)
	appaudit.Write(ctx, g.repo, g.logger, entry)
}
