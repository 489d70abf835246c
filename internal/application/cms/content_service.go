// Package cms manages the public site content edited from the back office.
package cms

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/cms"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"go.uber.org/zap"
)

var (
	ErrSlugExists    = shared.NewDomainError("SLUG_EXISTS", "Ce slug est déjà utilisé")
	ErrMergeIntoSelf = shared.NewDomainError("INVALID_MERGE", "Impossible de fusionner une réalisation avec elle-même")
)

// ContentService manages testimonials, portfolio, slides and page sections
type ContentService struct {
	repo      cms.Repository
	auditRepo audit.Repository
	logger    *zap.Logger
	now       func() time.Time
}

// NewContentService creates a new ContentService
func NewContentService(repo cms.Repository, auditRepo audit.Repository, logger *zap.Logger) *ContentService {
	return &ContentService{repo: repo, auditRepo: auditRepo, logger: logger, now: time.Now}
}

// SetClock overrides time.Now, for tests
func (s *ContentService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *ContentService) record(ctx context.Context, action string, id *uuid.UUID, description string) {
	appaudit.Write(ctx, s.auditRepo, s.logger,
		audit.New(action, audit.EntityContent, id, description).Classify(audit.CategorySystem, audit.SeverityInfo))
}

// ListTestimonials lists testimonials; public callers only see active ones
func (s *ContentService) ListTestimonials(ctx context.Context, req ListRequest, public bool) ([]TestimonialResponse, error) {
	items, err := s.repo.ListTestimonials(ctx, req.filter(public))
	if err != nil {
		return nil, err
	}
	out := make([]TestimonialResponse, len(items))
	for i := range items {
		out[i] = toTestimonialResponse(&items[i])
	}
	return out, nil
}

// GetTestimonial returns one testimonial
func (s *ContentService) GetTestimonial(ctx context.Context, id uuid.UUID) (*TestimonialResponse, error) {
	t, err := s.repo.FindTestimonial(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toTestimonialResponse(t)
	return &resp, nil
}

// CreateTestimonial adds a testimonial at the end of the list
func (s *ContentService) CreateTestimonial(ctx context.Context, req TestimonialRequest) (*TestimonialResponse, error) {
	pos, err := s.repo.NextPosition(ctx, cms.KindTestimonial, "")
	if err != nil {
		return nil, err
	}
	t, err := cms.NewTestimonial(req.params(), pos)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveTestimonial(ctx, t); err != nil {
		return nil, err
	}
	s.record(ctx, audit.ActionCreate, &t.ID, "Témoignage ajouté : "+t.ClientName)
	resp := toTestimonialResponse(t)
	return &resp, nil
}

// UpdateTestimonial replaces a testimonial
func (s *ContentService) UpdateTestimonial(ctx context.Context, id uuid.UUID, req TestimonialRequest) (*TestimonialResponse, error) {
	t, err := s.repo.FindTestimonial(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.Update(req.params(), s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveTestimonial(ctx, t); err != nil {
		return nil, err
	}
	s.record(ctx, audit.ActionUpdate, &t.ID, "Témoignage modifié : "+t.ClientName)
	resp := toTestimonialResponse(t)
	return &resp, nil
}

// DeleteTestimonial removes a testimonial
func (s *ContentService) DeleteTestimonial(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteTestimonial(ctx, id); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, &id, "Témoignage supprimé")
	return nil
}

// ListProjects lists portfolio projects, featured first
func (s *ContentService) ListProjects(ctx context.Context, req ListRequest, public bool) ([]ProjectResponse, error) {
	items, err := s.repo.ListProjects(ctx, req.filter(public))
	if err != nil {
		return nil, err
	}
	out := make([]ProjectResponse, len(items))
	for i := range items {
		out[i] = toProjectResponse(&items[i])
	}
	return out, nil
}

// GetProject returns a project by id
func (s *ContentService) GetProject(ctx context.Context, id uuid.UUID) (*ProjectResponse, error) {
	p, err := s.repo.FindProject(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProjectResponse(p)
	return &resp, nil
}

// GetProjectBySlug returns an active project for the public site
func (s *ContentService) GetProjectBySlug(ctx context.Context, slug string) (*ProjectResponse, error) {
	p, err := s.repo.FindProjectBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, cms.ErrProjectNotFound
	}
	resp := toProjectResponse(p)
	return &resp, nil
}

// CreateProject adds a portfolio project. A slug derived from the title gets
// a suffix when already used; an explicit slug must be free.
func (s *ContentService) CreateProject(ctx context.Context, req ProjectRequest) (*ProjectResponse, error) {
	pos, err := s.repo.NextPosition(ctx, cms.KindProject, "")
	if err != nil {
		return nil, err
	}
	p, err := cms.NewProject(req.params(), pos)
	if err != nil {
		return nil, err
	}
	taken, err := s.repo.SlugTaken(ctx, p.Slug, p.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		if req.Slug != "" {
			return nil, ErrSlugExists
		}
		p.Slug = p.Slug + "-" + strconv.FormatInt(s.now().UnixMilli(), 36)
	}
	if err := s.repo.SaveProject(ctx, p); err != nil {
		return nil, err
	}
	s.record(ctx, audit.ActionCreate, &p.ID, "Réalisation ajoutée : "+p.Title.French())
	resp := toProjectResponse(p)
	return &resp, nil
}

// UpdateProject replaces a portfolio project
func (s *ContentService) UpdateProject(ctx context.Context, id uuid.UUID, req ProjectRequest) (*ProjectResponse, error) {
	p, err := s.repo.FindProject(ctx, id)
	if err != nil {
		return nil, err
	}
	params := req.params()
	if params.Slug == "" {
		params.Slug = p.Slug
	}
	if err := p.Update(params, s.now()); err != nil {
		return nil, err
	}
	taken, err := s.repo.SlugTaken(ctx, p.Slug, p.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugExists
	}
	if err := s.repo.SaveProject(ctx, p); err != nil {
		return nil, err
	}
	s.record(ctx, audit.ActionUpdate, &p.ID, "Réalisation modifiée : "+p.Title.French())
	resp := toProjectResponse(p)
	return &resp, nil
}

// DeleteProject removes a portfolio project
func (s *ContentService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, &id, "Réalisation supprimée")
	return nil
}

// MergeProjects folds the galleries of duplicate projects into the target
// and deletes the duplicates
func (s *ContentService) MergeProjects(ctx context.Context, req MergeRequest) (*ProjectResponse, error) {
	target, err := s.repo.FindProject(ctx, req.TargetID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, id := range req.SourceIDs {
		if id == target.ID {
			return nil, ErrMergeIntoSelf
		}
		src, err := s.repo.FindProject(ctx, id)
		if err != nil {
			return nil, err
		}
		target.Absorb(src, now)
	}
	if err := s.repo.MergeProjects(ctx, target, req.SourceIDs); err != nil {
		return nil, err
	}
	s.record(ctx, audit.ActionUpdate, &target.ID,
		fmt.Sprintf("%d réalisation(s) fusionnée(s) dans %s", len(req.SourceIDs), target.Title.French()))
	resp := toProjectResponse(target)
	return &resp, nil
}

// ListSlides lists hero slides of a page
func (s *ContentService) ListSlides(ctx context.Context, req ListRequest, public bool) ([]SlideResponse, error) {
	items, err := s.repo.ListSlides(ctx, req.filter(public))
	if err != nil {
		return nil, err
	}
	out := make([]SlideResponse, len(items))
	for i := range items {
		out[i] = toSlideResponse(&items[i])
	}
	return out, nil
}

// CreateSlide adds a slide at the end of its page carousel
func (s *ContentService) CreateSlide(ctx context.Context, req SlideRequest) (*SlideResponse, error) {
	pos, err := s.repo.NextPosition(ctx, cms.KindSlide, req.TargetPage)
	if err != nil {
		return nil, err
	}
	slide, err := cms.NewHeroSlide(req.params(), pos)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveSlide(ctx, slide); err != nil {
		return nil, err
	}
	s.record(ctx, audit.ActionCreate, &slide.ID, "Slide ajouté sur "+slide.TargetPage)
	resp := toSlideResponse(slide)
	return &resp, nil
}

// UpdateSlide replaces a slide
func (s *ContentService) UpdateSlide(ctx context.Context, id uuid.UUID, req SlideRequest) (*SlideResponse, error) {
	slide, err := s.repo.FindSlide(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := slide.Update(req.params(), s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveSlide(ctx, slide); err != nil {
		return nil, err
	}
	s.record(ctx, audit.ActionUpdate, &slide.ID, "Slide modifié sur "+slide.TargetPage)
	resp := toSlideResponse(slide)
	return &resp, nil
}

// DeleteSlide removes a slide
func (s *ContentService) DeleteSlide(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteSlide(ctx, id); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, &id, "Slide supprimé")
	return nil
}

// Reorder sets the display order of testimonials, projects or slides
func (s *ContentService) Reorder(ctx context.Context, kind cms.Kind, req ReorderRequest) error {
	if err := s.repo.Reorder(ctx, kind, req.IDs); err != nil {
		return err
	}
	s.logger.Info("content reordered", zap.String("kind", string(kind)), zap.Int("count", len(req.IDs)))
	return nil
}

// Sections returns the sections of a page
func (s *ContentService) Sections(ctx context.Context, pageSlug string, public bool) ([]SectionResponse, error) {
	items, err := s.repo.ListSections(ctx, pageSlug, public)
	if err != nil {
		return nil, err
	}
	out := make([]SectionResponse, len(items))
	for i := range items {
		out[i] = toSectionResponse(&items[i])
	}
	return out, nil
}

// SaveSections creates or updates the given sections of a page, keyed by
// section key; sections not listed are left untouched
func (s *ContentService) SaveSections(ctx context.Context, pageSlug string, req SectionsRequest) ([]SectionResponse, error) {
	if !cms.ValidSlug(pageSlug) {
		return nil, shared.NewValidationError("Données invalides", shared.ErrorDetail{Field: "slug", Message: "Page invalide"})
	}
	now := s.now()
	sections := make([]cms.Section, len(req.Sections))
	for i, r := range req.Sections {
		sections[i] = cms.Section{BaseEntity: shared.NewBaseEntity()}
		if err := sections[i].Apply(r.params(), now); err != nil {
			return nil, err
		}
	}
	if err := s.repo.UpsertSections(ctx, pageSlug, sections); err != nil {
		return nil, err
	}
	s.record(ctx, audit.ActionUpdate, nil, fmt.Sprintf("Page %s : %d section(s) enregistrée(s)", pageSlug, len(sections)))
	return s.Sections(ctx, pageSlug, false)
}

// DeleteSection removes one section of a page
func (s *ContentService) DeleteSection(ctx context.Context, pageSlug, key string) error {
	if err := s.repo.DeleteSection(ctx, pageSlug, key); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, nil, fmt.Sprintf("Page %s : section %s supprimée", pageSlug, key))
	return nil
}
