package cms

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

var (
	ErrTestimonialNotFound = shared.NotFound("Témoignage non trouvé")
	ErrProjectNotFound     = shared.NotFound("Réalisation non trouvée")
	ErrSlideNotFound       = shared.NotFound("Slide non trouvé")
	ErrSectionNotFound     = shared.NotFound("Section non trouvée")
)

// Testimonial is a customer review shown on the site
type Testimonial struct {
	shared.BaseEntity
	ClientName string     `gorm:"type:varchar(200);not null"`
	ClientRole *string    `gorm:"type:varchar(200)"`
	Company    *string    `gorm:"type:varchar(200)"`
	Avatar     *string    `gorm:"type:varchar(500)"`
	Content    Text       `gorm:"type:text;serializer:json;not null"`
	Rating     int        `gorm:"not null"`
	ProjectID  *uuid.UUID `gorm:"type:uuid"`
	Position   int        `gorm:"column:sort_order;not null;default:0"`
	IsFeatured bool       `gorm:"not null;index"`
	IsActive   bool       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Testimonial) TableName() string {
	return "cms_testimonials"
}

// TestimonialParams are the editable fields of a testimonial
type TestimonialParams struct {
	ClientName string
	ClientRole *string
	Company    *string
	Avatar     *string
	Content    Text
	Rating     int
	ProjectID  *uuid.UUID
	IsFeatured bool
	IsActive   bool
}

func (p TestimonialParams) validate() error {
	var details []shared.ErrorDetail
	if p.ClientName == "" {
		details = append(details, shared.ErrorDetail{Field: "clientName", Message: "Nom du client requis"})
	}
	if p.Content.French() == "" {
		details = append(details, shared.ErrorDetail{Field: "contentFr", Message: "Contenu en français requis"})
	}
	if p.Rating < 1 || p.Rating > 5 {
		details = append(details, shared.ErrorDetail{Field: "rating", Message: "La note doit être comprise entre 1 et 5"})
	}
	return validation(details)
}

// NewTestimonial validates and creates a testimonial placed at position
func NewTestimonial(p TestimonialParams, position int) (*Testimonial, error) {
	t := &Testimonial{BaseEntity: shared.NewBaseEntity(), Position: position}
	if err := t.Update(p, t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// Update replaces the editable fields
func (t *Testimonial) Update(p TestimonialParams, now time.Time) error {
	p.Content = p.Content.clean()
	if err := p.validate(); err != nil {
		return err
	}
	t.ClientName = p.ClientName
	t.ClientRole = p.ClientRole
	t.Company = p.Company
	t.Avatar = p.Avatar
	t.Content = p.Content
	t.Rating = p.Rating
	t.ProjectID = p.ProjectID
	t.IsFeatured = p.IsFeatured
	t.IsActive = p.IsActive
	t.UpdatedAt = now
	return nil
}

// Project is a finished piece of work shown in the portfolio
type Project struct {
	shared.BaseEntity
	Title        Text     `gorm:"type:text;serializer:json;not null"`
	Slug         string   `gorm:"type:varchar(200);not null;uniqueIndex"`
	Description  Text     `gorm:"type:text;serializer:json"`
	Category     *string  `gorm:"type:varchar(100);index"`
	CoverImage   *string  `gorm:"type:varchar(500)"`
	Location     *string  `gorm:"type:varchar(200)"`
	Year         *int
	BeforeImages []string `gorm:"type:text;serializer:json"`
	AfterImages  []string `gorm:"type:text;serializer:json"`
	Position     int      `gorm:"column:sort_order;not null;default:0"`
	IsFeatured   bool     `gorm:"not null;index"`
	IsActive     bool     `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "cms_portfolio_projects"
}

// ProjectParams are the editable fields of a portfolio project. An empty
// slug is derived from the French title.
type ProjectParams struct {
	Title        Text
	Slug         string
	Description  Text
	Category     *string
	CoverImage   *string
	Location     *string
	Year         *int
	BeforeImages []string
	AfterImages  []string
	IsFeatured   bool
	IsActive     bool
}

func (p *ProjectParams) normalize() {
	p.Title = p.Title.clean()
	p.Description = p.Description.clean()
	if p.Slug == "" {
		p.Slug = Slugify(p.Title.French())
	}
}

func (p ProjectParams) validate() error {
	var details []shared.ErrorDetail
	if p.Title.French() == "" {
		details = append(details, shared.ErrorDetail{Field: "titleFr", Message: "Le titre en français est requis"})
	}
	if !ValidSlug(p.Slug) {
		details = append(details, shared.ErrorDetail{Field: "slug", Message: "Slug invalide"})
	}
	if p.Year != nil && (*p.Year < 1900 || *p.Year > 2100) {
		details = append(details, shared.ErrorDetail{Field: "year", Message: "Année invalide"})
	}
	return validation(details)
}

// NewProject validates and creates a portfolio project placed at position
func NewProject(p ProjectParams, position int) (*Project, error) {
	pr := &Project{BaseEntity: shared.NewBaseEntity(), Position: position}
	if err := pr.Update(p, pr.CreatedAt); err != nil {
		return nil, err
	}
	return pr, nil
}

// Update replaces the editable fields
func (pr *Project) Update(p ProjectParams, now time.Time) error {
	p.normalize()
	if err := p.validate(); err != nil {
		return err
	}
	pr.Title = p.Title
	pr.Slug = p.Slug
	pr.Description = p.Description
	pr.Category = p.Category
	pr.CoverImage = p.CoverImage
	pr.Location = p.Location
	pr.Year = p.Year
	pr.BeforeImages = p.BeforeImages
	pr.AfterImages = p.AfterImages
	pr.IsFeatured = p.IsFeatured
	pr.IsActive = p.IsActive
	pr.UpdatedAt = now
	return nil
}

// Absorb moves the galleries of other into this project, skipping images
// already present. The cover is taken from other when this one has none.
func (pr *Project) Absorb(other *Project, now time.Time) {
	pr.BeforeImages = appendMissing(pr.BeforeImages, other.BeforeImages)
	pr.AfterImages = appendMissing(pr.AfterImages, other.AfterImages)
	if pr.CoverImage == nil {
		pr.CoverImage = other.CoverImage
	}
	pr.UpdatedAt = now
}

func appendMissing(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			dst = append(dst, s)
			seen[s] = true
		}
	}
	return dst
}

// MediaType is the background of a hero slide
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// HeroSlide is one slide of a page header carousel
type HeroSlide struct {
	shared.BaseEntity
	TargetPage  string    `gorm:"type:varchar(50);not null;index"`
	MediaType   MediaType `gorm:"type:varchar(10);not null"`
	ImageURL    *string   `gorm:"type:varchar(500)"`
	VideoURL    *string   `gorm:"type:varchar(500)"`
	VideoPoster *string   `gorm:"type:varchar(500)"`
	Title       Text      `gorm:"type:text;serializer:json;not null"`
	Subtitle    Text      `gorm:"type:text;serializer:json"`
	CTAText     Text      `gorm:"column:cta_text;type:text;serializer:json"`
	CTAURL      *string   `gorm:"column:cta_url;type:varchar(500)"`
	CTA2Text    Text      `gorm:"column:cta2_text;type:text;serializer:json"`
	CTA2URL     *string   `gorm:"column:cta2_url;type:varchar(500)"`
	Position    int       `gorm:"column:sort_order;not null;default:0"`
	IsActive    bool      `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (HeroSlide) TableName() string {
	return "cms_hero_slides"
}

// SlideParams are the editable fields of a slide
type SlideParams struct {
	TargetPage  string
	MediaType   MediaType
	ImageURL    *string
	VideoURL    *string
	VideoPoster *string
	Title       Text
	Subtitle    Text
	CTAText     Text
	CTAURL      *string
	CTA2Text    Text
	CTA2URL     *string
	IsActive    bool
}

func (p SlideParams) validate() error {
	var details []shared.ErrorDetail
	if p.TargetPage == "" {
		details = append(details, shared.ErrorDetail{Field: "targetPage", Message: "Page cible requise"})
	}
	if p.Title.French() == "" {
		details = append(details, shared.ErrorDetail{Field: "titleFr", Message: "Titre en français requis"})
	}
	switch p.MediaType {
	case MediaImage:
	case MediaVideo:
		if p.VideoURL == nil || *p.VideoURL == "" {
			details = append(details, shared.ErrorDetail{Field: "videoUrl", Message: "Vidéo requise"})
		}
	default:
		details = append(details, shared.ErrorDetail{Field: "mediaType", Message: "Type de média invalide"})
	}
	return validation(details)
}

// NewHeroSlide validates and creates a slide placed at position
func NewHeroSlide(p SlideParams, position int) (*HeroSlide, error) {
	s := &HeroSlide{BaseEntity: shared.NewBaseEntity(), Position: position}
	if err := s.Update(p, s.CreatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the editable fields
func (s *HeroSlide) Update(p SlideParams, now time.Time) error {
	if p.MediaType == "" {
		p.MediaType = MediaImage
	}
	p.Title = p.Title.clean()
	if err := p.validate(); err != nil {
		return err
	}
	s.TargetPage = p.TargetPage
	s.MediaType = p.MediaType
	s.ImageURL = p.ImageURL
	s.VideoURL = p.VideoURL
	s.VideoPoster = p.VideoPoster
	s.Title = p.Title
	s.Subtitle = p.Subtitle.clean()
	s.CTAText = p.CTAText.clean()
	s.CTAURL = p.CTAURL
	s.CTA2Text = p.CTA2Text.clean()
	s.CTA2URL = p.CTA2URL
	s.IsActive = p.IsActive
	s.UpdatedAt = now
	return nil
}

// Section is a block of a CMS page, unique per page and key
type Section struct {
	shared.BaseEntity
	PageSlug    string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_cms_section_key"`
	SectionKey  string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_cms_section_key"`
	SectionType string  `gorm:"type:varchar(50);not null"`
	Title       Text    `gorm:"type:text;serializer:json"`
	Subtitle    Text    `gorm:"type:text;serializer:json"`
	Content     Text    `gorm:"type:text;serializer:json"`
	ImageURL    *string `gorm:"type:varchar(500)"`
	VideoURL    *string `gorm:"type:varchar(500)"`
	BgColor     *string `gorm:"type:varchar(20)"`
	BgImage     *string `gorm:"type:varchar(500)"`
	BgOverlay   *int
	CTAText     Text    `gorm:"column:cta_text;type:text;serializer:json"`
	CTAURL      *string `gorm:"column:cta_url;type:varchar(500)"`
	CTAStyle    *string `gorm:"column:cta_style;type:varchar(50)"`
	Position    int     `gorm:"column:sort_order;not null;default:0"`
	IsActive    bool    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Section) TableName() string {
	return "cms_page_sections"
}

// SectionParams are the fields of a section upsert
type SectionParams struct {
	SectionKey  string
	SectionType string
	Title       Text
	Subtitle    Text
	Content     Text
	ImageURL    *string
	VideoURL    *string
	BgColor     *string
	BgImage     *string
	BgOverlay   *int
	CTAText     Text
	CTAURL      *string
	CTAStyle    *string
	Position    int
	IsActive    *bool
}

// Apply writes an upsert onto the section. A new section defaults to the
// content type and to active.
func (s *Section) Apply(p SectionParams, now time.Time) error {
	p.SectionKey = strings.TrimSpace(p.SectionKey)
	if p.SectionKey == "" {
		return shared.NewValidationError("Données invalides", shared.ErrorDetail{Field: "sectionKey", Message: "Clé de section requise"})
	}
	if p.BgOverlay != nil && (*p.BgOverlay < 0 || *p.BgOverlay > 100) {
		return shared.NewValidationError("Données invalides", shared.ErrorDetail{Field: "bgOverlay", Message: "Opacité entre 0 et 100"})
	}
	s.SectionKey = p.SectionKey
	switch {
	case p.SectionType != "":
		s.SectionType = p.SectionType
	case s.SectionType == "":
		s.SectionType = "content"
	}
	s.Title = p.Title.clean()
	s.Subtitle = p.Subtitle.clean()
	s.Content = p.Content.clean()
	s.ImageURL = p.ImageURL
	s.VideoURL = p.VideoURL
	s.BgColor = p.BgColor
	s.BgImage = p.BgImage
	s.BgOverlay = p.BgOverlay
	s.CTAText = p.CTAText.clean()
	s.CTAURL = p.CTAURL
	s.CTAStyle = p.CTAStyle
	s.Position = p.Position
	s.IsActive = p.IsActive == nil || *p.IsActive
	s.UpdatedAt = now
	return nil
}

func validation(details []shared.ErrorDetail) error {
	if len(details) > 0 {
		return shared.NewValidationError("Données invalides", details...)
	}
	return nil
}

// Kind names an orderable content list
type Kind string

const (
	KindTestimonial Kind = "testimonials"
	KindProject     Kind = "projects"
	KindSlide       Kind = "slides"
)

// ListFilter narrows a content listing. Public listings set ActiveOnly.
type ListFilter struct {
	ActiveOnly   bool
	FeaturedOnly bool
	Category     string
	TargetPage   string
	Limit        int
}

// Repository persists CMS content
type Repository interface {
	FindTestimonial(ctx context.Context, id uuid.UUID) (*Testimonial, error)
	ListTestimonials(ctx context.Context, f ListFilter) ([]Testimonial, error)
	SaveTestimonial(ctx context.Context, t *Testimonial) error
	DeleteTestimonial(ctx context.Context, id uuid.UUID) error

	FindProject(ctx context.Context, id uuid.UUID) (*Project, error)
	FindProjectBySlug(ctx context.Context, slug string) (*Project, error)
	SlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	ListProjects(ctx context.Context, f ListFilter) ([]Project, error)
	SaveProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
	MergeProjects(ctx context.Context, target *Project, sourceIDs []uuid.UUID) error

	FindSlide(ctx context.Context, id uuid.UUID) (*HeroSlide, error)
	ListSlides(ctx context.Context, f ListFilter) ([]HeroSlide, error)
	SaveSlide(ctx context.Context, s *HeroSlide) error
	DeleteSlide(ctx context.Context, id uuid.UUID) error

	ListSections(ctx context.Context, pageSlug string, activeOnly bool) ([]Section, error)
	UpsertSections(ctx context.Context, pageSlug string, sections []Section) error
	DeleteSection(ctx context.Context, pageSlug, key string) error

	// NextPosition returns one past the highest position of a kind; slides
	// are counted per target page
	NextPosition(ctx context.Context, kind Kind, targetPage string) (int, error)
	// Reorder sets positions following the order of ids
	Reorder(ctx context.Context, kind Kind, ids []uuid.UUID) error
}
