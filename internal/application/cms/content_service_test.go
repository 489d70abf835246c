package cms

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/cms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)

func newTestService() (*ContentService, *memoryContent, *memoryAudits) {
	repo := newMemoryContent()
	audits := &memoryAudits{}
	svc := NewContentService(repo, audits, zap.NewNop())
	svc.SetClock(func() time.Time { return testNow })
	return svc, repo, audits
}

func boolPtr(b bool) *bool { return &b }

func TestTestimonials(t *testing.T) {
	svc, _, audits := newTestService()
	ctx := context.Background()

	first, err := svc.CreateTestimonial(ctx, TestimonialRequest{
		ClientName: "Youssef",
		Content:    cms.Text{"fr": "Porte sculptée magnifique."},
		Rating:     5,
	})
	require.NoError(t, err)
	assert.True(t, first.IsActive)
	assert.Equal(t, 0, first.Order)

	second, err := svc.CreateTestimonial(ctx, TestimonialRequest{
		ClientName: "Hind",
		Content:    cms.Text{"fr": "Délais respectés."},
		Rating:     4,
		IsActive:   boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Order)

	public, err := svc.ListTestimonials(ctx, ListRequest{}, true)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	all, err := svc.ListTestimonials(ctx, ListRequest{}, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	updated, err := svc.UpdateTestimonial(ctx, second.ID, TestimonialRequest{
		ClientName: "Hind",
		Content:    cms.Text{"fr": "Délais respectés et finitions parfaites."},
		Rating:     5,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.Equal(t, 1, updated.Order)

	require.NoError(t, svc.Reorder(ctx, cms.KindTestimonial, ReorderRequest{IDs: []uuid.UUID{second.ID, first.ID}}))
	all, err = svc.ListTestimonials(ctx, ListRequest{}, false)
	require.NoError(t, err)
	assert.Equal(t, "Hind", all[0].ClientName)

	require.NoError(t, svc.DeleteTestimonial(ctx, first.ID))
	assert.ErrorIs(t, svc.DeleteTestimonial(ctx, first.ID), cms.ErrTestimonialNotFound)

	_, err = svc.UpdateTestimonial(ctx, uuid.New(), TestimonialRequest{ClientName: "x", Content: cms.Text{"fr": "x"}, Rating: 3})
	assert.ErrorIs(t, err, cms.ErrTestimonialNotFound)

	assert.Len(t, audits.entries, 4)
	for _, e := range audits.entries {
		assert.Equal(t, audit.EntityContent, e.Entity)
	}
}

func TestCreateProject_Slugs(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, ProjectRequest{Title: cms.Text{"fr": "Plafond en cèdre"}})
	require.NoError(t, err)
	assert.Equal(t, "plafond-en-cedre", p.Slug)
	assert.Equal(t, []string{}, p.BeforeImages)

	dup, err := svc.CreateProject(ctx, ProjectRequest{Title: cms.Text{"fr": "Plafond en cèdre"}})
	require.NoError(t, err)
	assert.NotEqual(t, p.Slug, dup.Slug)
	assert.True(t, cms.ValidSlug(dup.Slug))
	assert.Equal(t, 1, dup.Order)

	_, err = svc.CreateProject(ctx, ProjectRequest{Title: cms.Text{"fr": "Autre"}, Slug: "plafond-en-cedre"})
	assert.ErrorIs(t, err, ErrSlugExists)

	_, err = svc.UpdateProject(ctx, dup.ID, ProjectRequest{Title: cms.Text{"fr": "Plafond"}, Slug: "plafond-en-cedre"})
	assert.ErrorIs(t, err, ErrSlugExists)

	kept, err := svc.UpdateProject(ctx, dup.ID, ProjectRequest{Title: cms.Text{"fr": "Plafond (2)"}})
	require.NoError(t, err)
	assert.Equal(t, dup.Slug, kept.Slug)
}

func TestGetProjectBySlug_HidesInactive(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, ProjectRequest{Title: cms.Text{"fr": "Dressing"}, IsActive: boolPtr(false)})
	require.NoError(t, err)

	_, err = svc.GetProjectBySlug(ctx, "dressing")
	assert.ErrorIs(t, err, cms.ErrProjectNotFound)
}

func TestMergeProjects(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	target, err := svc.CreateProject(ctx, ProjectRequest{Title: cms.Text{"fr": "Villa Anfa"}, AfterImages: []string{"/1.jpg"}})
	require.NoError(t, err)
	src, err := svc.CreateProject(ctx, ProjectRequest{Title: cms.Text{"fr": "Villa Anfa salon"}, AfterImages: []string{"/1.jpg", "/2.jpg"}})
	require.NoError(t, err)

	_, err = svc.MergeProjects(ctx, MergeRequest{TargetID: target.ID, SourceIDs: []uuid.UUID{target.ID}})
	assert.ErrorIs(t, err, ErrMergeIntoSelf)

	merged, err := svc.MergeProjects(ctx, MergeRequest{TargetID: target.ID, SourceIDs: []uuid.UUID{src.ID}})
	require.NoError(t, err)
	assert.Equal(t, []string{"/1.jpg", "/2.jpg"}, merged.AfterImages)
	assert.Len(t, repo.projects, 1)
}

func TestSlides(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	home1, err := svc.CreateSlide(ctx, SlideRequest{TargetPage: "home", Title: cms.Text{"fr": "Savoir-faire"}})
	require.NoError(t, err)
	_, err = svc.CreateSlide(ctx, SlideRequest{TargetPage: "home", Title: cms.Text{"fr": "Sur mesure"}})
	require.NoError(t, err)
	atelier, err := svc.CreateSlide(ctx, SlideRequest{TargetPage: "atelier", Title: cms.Text{"fr": "Atelier"}})
	require.NoError(t, err)
	assert.Equal(t, 0, atelier.Order)
	assert.Equal(t, cms.MediaImage, home1.MediaType)

	list, err := svc.ListSlides(ctx, ListRequest{TargetPage: "home"}, true)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.UpdateSlide(ctx, home1.ID, SlideRequest{TargetPage: "home", Title: cms.Text{"fr": "Vidéo"}, MediaType: cms.MediaVideo})
	require.Error(t, err)

	require.NoError(t, svc.DeleteSlide(ctx, home1.ID))
	assert.ErrorIs(t, svc.DeleteSlide(ctx, home1.ID), cms.ErrSlideNotFound)
}

func TestSections(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	out, err := svc.SaveSections(ctx, "atelier", SectionsRequest{Sections: []SectionRequest{
		{SectionKey: "story", Content: cms.Text{"fr": "Depuis 2020"}, Order: 1},
		{SectionKey: "hero", Order: 0, IsActive: boolPtr(false)},
	}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "hero", out[0].SectionKey)

	public, err := svc.Sections(ctx, "atelier", true)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "content", public[0].SectionType)

	_, err = svc.SaveSections(ctx, "Bad Page", SectionsRequest{Sections: []SectionRequest{{SectionKey: "x"}}})
	require.Error(t, err)

	require.NoError(t, svc.DeleteSection(ctx, "atelier", "hero"))
	assert.ErrorIs(t, svc.DeleteSection(ctx, "atelier", "hero"), cms.ErrSectionNotFound)
}
