package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/cms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCMSRepo(t *testing.T) *GormCMSRepository {
	t.Helper()
	db := newSQLiteDB(t, &cms.Testimonial{}, &cms.Project{}, &cms.HeroSlide{}, &cms.Section{})
	return NewGormCMSRepository(db)
}

func TestGormCMSRepository_Testimonials(t *testing.T) {
	repo := newCMSRepo(t)
	ctx := context.Background()

	pos, err := repo.NextPosition(ctx, cms.KindTestimonial, "")
	require.NoError(t, err)
	assert.Zero(t, pos)

	var ids []uuid.UUID
	for i, name := range []string{"Amine", "Leila", "Omar"} {
		tm, err := cms.NewTestimonial(cms.TestimonialParams{
			ClientName: name,
			Content:    cms.Text{"fr": "Très satisfait du travail."},
			Rating:     5,
			IsActive:   name != "Omar",
			IsFeatured: name == "Leila",
		}, i)
		require.NoError(t, err)
		require.NoError(t, repo.SaveTestimonial(ctx, tm))
		ids = append(ids, tm.ID)
	}

	pos, err = repo.NextPosition(ctx, cms.KindTestimonial, "")
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	public, err := repo.ListTestimonials(ctx, cms.ListFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, "Leila", public[0].ClientName)

	require.NoError(t, repo.Reorder(ctx, cms.KindTestimonial, []uuid.UUID{ids[2], ids[0], ids[1]}))
	all, err := repo.ListTestimonials(ctx, cms.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Leila", "Omar", "Amine"}, []string{all[0].ClientName, all[1].ClientName, all[2].ClientName})

	got, err := repo.FindTestimonial(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Très satisfait du travail.", got.Content.French())

	require.NoError(t, repo.DeleteTestimonial(ctx, ids[0]))
	assert.ErrorIs(t, repo.DeleteTestimonial(ctx, ids[0]), cms.ErrTestimonialNotFound)
	_, err = repo.FindTestimonial(ctx, ids[0])
	assert.ErrorIs(t, err, cms.ErrTestimonialNotFound)
}

func TestGormCMSRepository_Projects(t *testing.T) {
	repo := newCMSRepo(t)
	ctx := context.Background()

	kitchen, err := cms.NewProject(cms.ProjectParams{Title: cms.Text{"fr": "Cuisine en noyer"}, AfterImages: []string{"/k1.jpg"}, IsActive: true}, 0)
	require.NoError(t, err)
	duplicate, err := cms.NewProject(cms.ProjectParams{Title: cms.Text{"fr": "Cuisine en noyer (bis)"}, AfterImages: []string{"/k2.jpg"}, IsActive: true}, 1)
	require.NoError(t, err)
	require.NoError(t, repo.SaveProject(ctx, kitchen))
	require.NoError(t, repo.SaveProject(ctx, duplicate))

	taken, err := repo.SlugTaken(ctx, "cuisine-en-noyer", uuid.New())
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = repo.SlugTaken(ctx, "cuisine-en-noyer", kitchen.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	kitchen.Absorb(duplicate, time.Now())
	require.NoError(t, repo.MergeProjects(ctx, kitchen, []uuid.UUID{duplicate.ID}))

	got, err := repo.FindProjectBySlug(ctx, "cuisine-en-noyer")
	require.NoError(t, err)
	assert.Equal(t, []string{"/k1.jpg", "/k2.jpg"}, got.AfterImages)

	_, err = repo.FindProject(ctx, duplicate.ID)
	assert.ErrorIs(t, err, cms.ErrProjectNotFound)

	list, err := repo.ListProjects(ctx, cms.ListFilter{ActiveOnly: true, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGormCMSRepository_SlidesAndSections(t *testing.T) {
	repo := newCMSRepo(t)
	ctx := context.Background()

	for i, page := range []string{"home", "home", "atelier"} {
		s, err := cms.NewHeroSlide(cms.SlideParams{TargetPage: page, Title: cms.Text{"fr": "Slide"}, IsActive: true}, i)
		require.NoError(t, err)
		require.NoError(t, repo.SaveSlide(ctx, s))
	}
	home, err := repo.ListSlides(ctx, cms.ListFilter{TargetPage: "home"})
	require.NoError(t, err)
	assert.Len(t, home, 2)

	pos, err := repo.NextPosition(ctx, cms.KindSlide, "atelier")
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	now := time.Now()
	var story, hero cms.Section
	require.NoError(t, story.Apply(cms.SectionParams{SectionKey: "story", Content: cms.Text{"fr": "Notre histoire"}, Position: 2}, now))
	require.NoError(t, hero.Apply(cms.SectionParams{SectionKey: "hero", Position: 1}, now))
	story.BaseEntity.ID, hero.BaseEntity.ID = uuid.New(), uuid.New()
	story.CreatedAt, hero.CreatedAt = now, now
	require.NoError(t, repo.UpsertSections(ctx, "atelier", []cms.Section{story, hero}))

	off := false
	var update cms.Section
	require.NoError(t, update.Apply(cms.SectionParams{SectionKey: "story", Content: cms.Text{"fr": "Depuis 2020"}, Position: 0, IsActive: &off}, now))
	update.ID, update.CreatedAt = uuid.New(), now
	require.NoError(t, repo.UpsertSections(ctx, "atelier", []cms.Section{update}))

	sections, err := repo.ListSections(ctx, "atelier", false)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "story", sections[0].SectionKey)
	assert.Equal(t, "Depuis 2020", sections[0].Content.French())

	active, err := repo.ListSections(ctx, "atelier", true)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, repo.DeleteSection(ctx, "atelier", "hero"))
	assert.ErrorIs(t, repo.DeleteSection(ctx, "atelier", "hero"), cms.ErrSectionNotFound)
}
