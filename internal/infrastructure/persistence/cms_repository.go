package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/cms"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCMSRepository implements cms.Repository using GORM
type GormCMSRepository struct {
	db *gorm.DB
}

// NewGormCMSRepository creates a new GormCMSRepository
func NewGormCMSRepository(db *gorm.DB) *GormCMSRepository {
	return &GormCMSRepository{db: db}
}

// findAs is findOne with the miss mapped to a content specific error
func findAs[T any](ctx context.Context, db *gorm.DB, miss error, query string, args ...any) (*T, error) {
	v, err := findOne[T](ctx, db, query, args...)
	if shared.IsNotFound(err) {
		return nil, miss
	}
	return v, err
}

func deleteAs[T any](ctx context.Context, db *gorm.DB, miss error, id uuid.UUID) error {
	err := deleteWhere[T](ctx, db, "id = ?", id)
	if shared.IsNotFound(err) {
		return miss
	}
	return err
}

func activeOnly(f cms.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.ActiveOnly {
			q = q.Where("is_active = ?", true)
		}
		if f.FeaturedOnly {
			q = q.Where("is_featured = ?", true)
		}
		if f.Limit > 0 {
			q = q.Limit(f.Limit)
		}
		return q
	}
}

func (r *GormCMSRepository) FindTestimonial(ctx context.Context, id uuid.UUID) (*cms.Testimonial, error) {
	return findAs[cms.Testimonial](ctx, r.db, cms.ErrTestimonialNotFound, "id = ?", id)
}

// ListTestimonials lists featured testimonials first, then by position
func (r *GormCMSRepository) ListTestimonials(ctx context.Context, f cms.ListFilter) ([]cms.Testimonial, error) {
	var out []cms.Testimonial
	err := r.db.WithContext(ctx).Scopes(activeOnly(f)).
		Order("is_featured DESC").Order("sort_order ASC").Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *GormCMSRepository) SaveTestimonial(ctx context.Context, t *cms.Testimonial) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *GormCMSRepository) DeleteTestimonial(ctx context.Context, id uuid.UUID) error {
	return deleteAs[cms.Testimonial](ctx, r.db, cms.ErrTestimonialNotFound, id)
}

func (r *GormCMSRepository) FindProject(ctx context.Context, id uuid.UUID) (*cms.Project, error) {
	return findAs[cms.Project](ctx, r.db, cms.ErrProjectNotFound, "id = ?", id)
}

func (r *GormCMSRepository) FindProjectBySlug(ctx context.Context, slug string) (*cms.Project, error) {
	return findAs[cms.Project](ctx, r.db, cms.ErrProjectNotFound, "slug = ?", slug)
}

// SlugTaken reports whether another project already uses the slug
func (r *GormCMSRepository) SlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	return exists[cms.Project](ctx, r.db, "slug = ? AND id <> ?", slug, excludeID)
}

// ListProjects lists featured projects first, then by position and newest
func (r *GormCMSRepository) ListProjects(ctx context.Context, f cms.ListFilter) ([]cms.Project, error) {
	query := r.db.WithContext(ctx).Scopes(activeOnly(f))
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	var out []cms.Project
	err := query.Order("is_featured DESC").Order("sort_order ASC").Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *GormCMSRepository) SaveProject(ctx context.Context, p *cms.Project) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *GormCMSRepository) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return deleteAs[cms.Project](ctx, r.db, cms.ErrProjectNotFound, id)
}

// MergeProjects saves the target and removes the absorbed projects atomically
func (r *GormCMSRepository) MergeProjects(ctx context.Context, target *cms.Project, sourceIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(target).Error; err != nil {
			return err
		}
		if len(sourceIDs) == 0 {
			return nil
		}
		return tx.Where("id IN ?", sourceIDs).Delete(&cms.Project{}).Error
	})
}

func (r *GormCMSRepository) FindSlide(ctx context.Context, id uuid.UUID) (*cms.HeroSlide, error) {
	return findAs[cms.HeroSlide](ctx, r.db, cms.ErrSlideNotFound, "id = ?", id)
}

// ListSlides lists slides by position, optionally for one page
func (r *GormCMSRepository) ListSlides(ctx context.Context, f cms.ListFilter) ([]cms.HeroSlide, error) {
	query := r.db.WithContext(ctx).Scopes(activeOnly(f))
	if f.TargetPage != "" {
		query = query.Where("target_page = ?", f.TargetPage)
	}
	var out []cms.HeroSlide
	err := query.Order("sort_order ASC").Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *GormCMSRepository) SaveSlide(ctx context.Context, s *cms.HeroSlide) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *GormCMSRepository) DeleteSlide(ctx context.Context, id uuid.UUID) error {
	return deleteAs[cms.HeroSlide](ctx, r.db, cms.ErrSlideNotFound, id)
}

// ListSections lists the sections of a page by position
func (r *GormCMSRepository) ListSections(ctx context.Context, pageSlug string, activeOnly bool) ([]cms.Section, error) {
	query := r.db.WithContext(ctx).Where("page_slug = ?", pageSlug)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var out []cms.Section
	err := query.Order("sort_order ASC").Find(&out).Error
	return out, err
}

// UpsertSections writes the sections of a page keyed by section key
func (r *GormCMSRepository) UpsertSections(ctx context.Context, pageSlug string, sections []cms.Section) error {
	if len(sections) == 0 {
		return nil
	}
	for i := range sections {
		sections[i].PageSlug = pageSlug
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "page_slug"}, {Name: "section_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"section_type", "title", "subtitle", "content", "image_url", "video_url",
				"bg_color", "bg_image", "bg_overlay", "cta_text", "cta_url", "cta_style",
				"sort_order", "is_active", "updated_at",
			}),
		}).Create(&sections).Error
	})
}

func (r *GormCMSRepository) DeleteSection(ctx context.Context, pageSlug, key string) error {
	err := deleteWhere[cms.Section](ctx, r.db, "page_slug = ? AND section_key = ?", pageSlug, key)
	if shared.IsNotFound(err) {
		return cms.ErrSectionNotFound
	}
	return err
}

func kindModel(kind cms.Kind) (any, error) {
	switch kind {
	case cms.KindTestimonial:
		return &cms.Testimonial{}, nil
	case cms.KindProject:
		return &cms.Project{}, nil
	case cms.KindSlide:
		return &cms.HeroSlide{}, nil
	}
	return nil, fmt.Errorf("unknown content kind %q", kind)
}

// NextPosition returns one past the highest sort order of a kind
func (r *GormCMSRepository) NextPosition(ctx context.Context, kind cms.Kind, targetPage string) (int, error) {
	model, err := kindModel(kind)
	if err != nil {
		return 0, err
	}
	query := r.db.WithContext(ctx).Model(model)
	if kind == cms.KindSlide && targetPage != "" {
		query = query.Where("target_page = ?", targetPage)
	}
	var maxPos sql.NullInt64
	if err := query.Select("MAX(sort_order)").Row().Scan(&maxPos); err != nil {
		return 0, err
	}
	if !maxPos.Valid {
		return 0, nil
	}
	return int(maxPos.Int64) + 1, nil
}

// Reorder assigns positions 0..n-1 following ids
func (r *GormCMSRepository) Reorder(ctx context.Context, kind cms.Kind, ids []uuid.UUID) error {
	model, err := kindModel(kind)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			if err := tx.Model(model).Where("id = ?", id).Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ cms.Repository = (*GormCMSRepository)(nil)
