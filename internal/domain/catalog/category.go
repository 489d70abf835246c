package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Category groups catalog items in a tree
type Category struct {
	shared.BaseAggregateRoot
	Name        string     `gorm:"type:varchar(100);not null"`
	Slug        string     `gorm:"type:varchar(120);not null;uniqueIndex"`
	Description *string    `gorm:"type:text"`
	Icon        *string    `gorm:"type:varchar(100)"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	Position    int        `gorm:"column:sort_order;not null;default:0"`
	IsActive    bool       `gorm:"not null"`

	Children []Category `gorm:"foreignKey:ParentID"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "catalog_categories"
}

// CategoryParams carries the editable fields of a category
type CategoryParams struct {
	Name        string
	Slug        string
	Description *string
	Icon        *string
	ParentID    *uuid.UUID
	Position    int
	IsActive    *bool
}

func (p *CategoryParams) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Slug = strings.ToLower(strings.TrimSpace(p.Slug))
}

func (p CategoryParams) validate() error {
	var details []shared.ErrorDetail
	if p.Name == "" {
		details = append(details, shared.ErrorDetail{Field: "name", Message: "Nom requis"})
	}
	if !slugPattern.MatchString(p.Slug) {
		details = append(details, shared.ErrorDetail{Field: "slug", Message: "Slug requis"})
	}
	if len(details) > 0 {
		return shared.NewValidationError("Données invalides", details...)
	}
	return nil
}

// NewCategory validates and creates a category
func NewCategory(p CategoryParams) (*Category, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return nil, err
	}
	c := &Category{BaseAggregateRoot: shared.NewBaseAggregateRoot(), IsActive: true}
	c.apply(p)
	return c, nil
}

func (c *Category) apply(p CategoryParams) {
	c.Name = p.Name
	c.Slug = p.Slug
	c.Description = p.Description
	c.Icon = p.Icon
	c.ParentID = p.ParentID
	c.Position = p.Position
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
}

// Update replaces the editable fields
func (c *Category) Update(p CategoryParams, now time.Time) error {
	p.normalize()
	if err := p.validate(); err != nil {
		return err
	}
	if p.ParentID != nil && *p.ParentID == c.ID {
		return shared.NewDomainError(CodeInvalidParent, "Une catégorie ne peut pas être son propre parent")
	}
	c.apply(p)
	c.UpdatedAt = now
	c.IncrementVersion()
	return nil
}

// GuardDeleteCategory refuses deleting a category that still has children or items
func GuardDeleteCategory(children, items int64) error {
	if children > 0 {
		return shared.NewDomainError(CodeCategoryInUse, "Impossible de supprimer: catégorie contient des sous-catégories")
	}
	if items > 0 {
		return shared.NewDomainError(CodeCategoryInUse, "Impossible de supprimer: catégorie contient des articles")
	}
	return nil
}
