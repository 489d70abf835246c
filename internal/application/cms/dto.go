package cms

import (
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/cms"
)

// TestimonialRequest creates or replaces a testimonial
type TestimonialRequest struct {
	ClientName string     `json:"clientName" binding:"required,max=200"`
	ClientRole *string    `json:"clientRole" binding:"omitempty,max=200"`
	Company    *string    `json:"company" binding:"omitempty,max=200"`
	Avatar     *string    `json:"avatar" binding:"omitempty,max=500"`
	Content    cms.Text   `json:"content" binding:"required"`
	Rating     int        `json:"rating" binding:"required,min=1,max=5"`
	ProjectID  *uuid.UUID `json:"projectId"`
	IsFeatured bool       `json:"isFeatured"`
	IsActive   *bool      `json:"isActive"`
}

func (r TestimonialRequest) params() cms.TestimonialParams {
	return cms.TestimonialParams{
		ClientName: r.ClientName,
		ClientRole: r.ClientRole,
		Company:    r.Company,
		Avatar:     r.Avatar,
		Content:    r.Content,
		Rating:     r.Rating,
		ProjectID:  r.ProjectID,
		IsFeatured: r.IsFeatured,
		IsActive:   r.IsActive == nil || *r.IsActive,
	}
}

// TestimonialResponse is a testimonial as served by the API
type TestimonialResponse struct {
	ID         uuid.UUID  `json:"id"`
	ClientName string     `json:"clientName"`
	ClientRole *string    `json:"clientRole,omitempty"`
	Company    *string    `json:"company,omitempty"`
	Avatar     *string    `json:"avatar,omitempty"`
	Content    cms.Text   `json:"content"`
	Rating     int        `json:"rating"`
	ProjectID  *uuid.UUID `json:"projectId,omitempty"`
	Order      int        `json:"order"`
	IsFeatured bool       `json:"isFeatured"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func toTestimonialResponse(t *cms.Testimonial) TestimonialResponse {
	return TestimonialResponse{
		ID:         t.ID,
		ClientName: t.ClientName,
		ClientRole: t.ClientRole,
		Company:    t.Company,
		Avatar:     t.Avatar,
		Content:    t.Content,
		Rating:     t.Rating,
		ProjectID:  t.ProjectID,
		Order:      t.Position,
		IsFeatured: t.IsFeatured,
		IsActive:   t.IsActive,
		CreatedAt:  t.CreatedAt,
	}
}

// ProjectRequest creates or replaces a portfolio project
type ProjectRequest struct {
	Title        cms.Text `json:"title" binding:"required"`
	Slug         string   `json:"slug" binding:"omitempty,max=200"`
	Description  cms.Text `json:"description"`
	Category     *string  `json:"category" binding:"omitempty,max=100"`
	CoverImage   *string  `json:"coverImage" binding:"omitempty,max=500"`
	Location     *string  `json:"location" binding:"omitempty,max=200"`
	Year         *int     `json:"year"`
	BeforeImages []string `json:"beforeImages"`
	AfterImages  []string `json:"afterImages"`
	IsFeatured   bool     `json:"isFeatured"`
	IsActive     *bool    `json:"isActive"`
}

func (r ProjectRequest) params() cms.ProjectParams {
	return cms.ProjectParams{
		Title:        r.Title,
		Slug:         r.Slug,
		Description:  r.Description,
		Category:     r.Category,
		CoverImage:   r.CoverImage,
		Location:     r.Location,
		Year:         r.Year,
		BeforeImages: r.BeforeImages,
		AfterImages:  r.AfterImages,
		IsFeatured:   r.IsFeatured,
		IsActive:     r.IsActive == nil || *r.IsActive,
	}
}

// ProjectResponse is a portfolio project as served by the API
type ProjectResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        cms.Text  `json:"title"`
	Slug         string    `json:"slug"`
	Description  cms.Text  `json:"description,omitempty"`
	Category     *string   `json:"category,omitempty"`
	CoverImage   *string   `json:"coverImage,omitempty"`
	Location     *string   `json:"location,omitempty"`
	Year         *int      `json:"year,omitempty"`
	BeforeImages []string  `json:"beforeImages"`
	AfterImages  []string  `json:"afterImages"`
	Order        int       `json:"order"`
	IsFeatured   bool      `json:"isFeatured"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toProjectResponse(p *cms.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Description:  p.Description,
		Category:     p.Category,
		CoverImage:   p.CoverImage,
		Location:     p.Location,
		Year:         p.Year,
		BeforeImages: p.BeforeImages,
		AfterImages:  p.AfterImages,
		Order:        p.Position,
		IsFeatured:   p.IsFeatured,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
	}
	if resp.BeforeImages == nil {
		resp.BeforeImages = []string{}
	}
	if resp.AfterImages == nil {
		resp.AfterImages = []string{}
	}
	return resp
}

// MergeRequest folds duplicate projects into a target
type MergeRequest struct {
	TargetID  uuid.UUID   `json:"targetId" binding:"required"`
	SourceIDs []uuid.UUID `json:"sourceIds" binding:"required,min=1"`
}

// SlideRequest creates or replaces a hero slide
type SlideRequest struct {
	TargetPage  string        `json:"targetPage" binding:"required,max=50"`
	MediaType   cms.MediaType `json:"mediaType" binding:"omitempty,oneof=image video"`
	ImageURL    *string       `json:"imageUrl"`
	VideoURL    *string       `json:"videoUrl"`
	VideoPoster *string       `json:"videoPoster"`
	Title       cms.Text      `json:"title" binding:"required"`
	Subtitle    cms.Text      `json:"subtitle"`
	CTAText     cms.Text      `json:"ctaText"`
	CTAURL      *string       `json:"ctaUrl"`
	CTA2Text    cms.Text      `json:"cta2Text"`
	CTA2URL     *string       `json:"cta2Url"`
	IsActive    *bool         `json:"isActive"`
}

func (r SlideRequest) params() cms.SlideParams {
	return cms.SlideParams{
		TargetPage:  r.TargetPage,
		MediaType:   r.MediaType,
		ImageURL:    r.ImageURL,
		VideoURL:    r.VideoURL,
		VideoPoster: r.VideoPoster,
		Title:       r.Title,
		Subtitle:    r.Subtitle,
		CTAText:     r.CTAText,
		CTAURL:      r.CTAURL,
		CTA2Text:    r.CTA2Text,
		CTA2URL:     r.CTA2URL,
		IsActive:    r.IsActive == nil || *r.IsActive,
	}
}

// SlideResponse is a hero slide as served by the API
type SlideResponse struct {
	ID          uuid.UUID     `json:"id"`
	TargetPage  string        `json:"targetPage"`
	MediaType   cms.MediaType `json:"mediaType"`
	ImageURL    *string       `json:"imageUrl,omitempty"`
	VideoURL    *string       `json:"videoUrl,omitempty"`
	VideoPoster *string       `json:"videoPoster,omitempty"`
	Title       cms.Text      `json:"title"`
	Subtitle    cms.Text      `json:"subtitle,omitempty"`
	CTAText     cms.Text      `json:"ctaText,omitempty"`
	CTAURL      *string       `json:"ctaUrl,omitempty"`
	CTA2Text    cms.Text      `json:"cta2Text,omitempty"`
	CTA2URL     *string       `json:"cta2Url,omitempty"`
	Order       int           `json:"order"`
	IsActive    bool          `json:"isActive"`
}

func toSlideResponse(s *cms.HeroSlide) SlideResponse {
	return SlideResponse{
		ID:          s.ID,
		TargetPage:  s.TargetPage,
		MediaType:   s.MediaType,
		ImageURL:    s.ImageURL,
		VideoURL:    s.VideoURL,
		VideoPoster: s.VideoPoster,
		Title:       s.Title,
		Subtitle:    s.Subtitle,
		CTAText:     s.CTAText,
		CTAURL:      s.CTAURL,
		CTA2Text:    s.CTA2Text,
		CTA2URL:     s.CTA2URL,
		Order:       s.Position,
		IsActive:    s.IsActive,
	}
}

// SectionRequest is one section of a page update
type SectionRequest struct {
	SectionKey  string   `json:"sectionKey" binding:"required,max=100"`
	SectionType string   `json:"sectionType" binding:"omitempty,max=50"`
	Title       cms.Text `json:"title"`
	Subtitle    cms.Text `json:"subtitle"`
	Content     cms.Text `json:"content"`
	ImageURL    *string  `json:"imageUrl"`
	VideoURL    *string  `json:"videoUrl"`
	BgColor     *string  `json:"bgColor"`
	BgImage     *string  `json:"bgImage"`
	BgOverlay   *int     `json:"bgOverlay"`
	CTAText     cms.Text `json:"ctaText"`
	CTAURL      *string  `json:"ctaUrl"`
	CTAStyle    *string  `json:"ctaStyle"`
	Order       int      `json:"order"`
	IsActive    *bool    `json:"isActive"`
}

func (r SectionRequest) params() cms.SectionParams {
	return cms.SectionParams{
		SectionKey:  r.SectionKey,
		SectionType: r.SectionType,
		Title:       r.Title,
		Subtitle:    r.Subtitle,
		Content:     r.Content,
		ImageURL:    r.ImageURL,
		VideoURL:    r.VideoURL,
		BgColor:     r.BgColor,
		BgImage:     r.BgImage,
		BgOverlay:   r.BgOverlay,
		CTAText:     r.CTAText,
		CTAURL:      r.CTAURL,
		CTAStyle:    r.CTAStyle,
		Position:    r.Order,
		IsActive:    r.IsActive,
	}
}

// SectionsRequest replaces the listed sections of a page
type SectionsRequest struct {
	Sections []SectionRequest `json:"sections" binding:"required,dive"`
}

// SectionResponse is a page section as served by the API
type SectionResponse struct {
	SectionKey  string   `json:"sectionKey"`
	SectionType string   `json:"sectionType"`
	Title       cms.Text `json:"title,omitempty"`
	Subtitle    cms.Text `json:"subtitle,omitempty"`
	Content     cms.Text `json:"content,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
	VideoURL    *string  `json:"videoUrl,omitempty"`
	BgColor     *string  `json:"bgColor,omitempty"`
	BgImage     *string  `json:"bgImage,omitempty"`
	BgOverlay   *int     `json:"bgOverlay,omitempty"`
	CTAText     cms.Text `json:"ctaText,omitempty"`
	CTAURL      *string  `json:"ctaUrl,omitempty"`
	CTAStyle    *string  `json:"ctaStyle,omitempty"`
	Order       int      `json:"order"`
	IsActive    bool     `json:"isActive"`
}

func toSectionResponse(s *cms.Section) SectionResponse {
	return SectionResponse{
		SectionKey:  s.SectionKey,
		SectionType: s.SectionType,
		Title:       s.Title,
		Subtitle:    s.Subtitle,
		Content:     s.Content,
		ImageURL:    s.ImageURL,
		VideoURL:    s.VideoURL,
		BgColor:     s.BgColor,
		BgImage:     s.BgImage,
		BgOverlay:   s.BgOverlay,
		CTAText:     s.CTAText,
		CTAURL:      s.CTAURL,
		CTAStyle:    s.CTAStyle,
		Order:       s.Position,
		IsActive:    s.IsActive,
	}
}

// ReorderRequest lists ids in their new display order
type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// ListRequest filters a content listing
type ListRequest struct {
	Category   string `form:"category"`
	TargetPage string `form:"page"`
	Featured   bool   `form:"featured"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (r ListRequest) filter(public bool) cms.ListFilter {
	return cms.ListFilter{
		ActiveOnly:   public,
		FeaturedOnly: r.Featured,
		Category:     r.Category,
		TargetPage:   r.TargetPage,
		Limit:        r.Limit,
	}
}
