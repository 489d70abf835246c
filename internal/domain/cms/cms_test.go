package cms

import (
	"errors"
	"testing"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(t *testing.T, err error) []string {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected a domain error, got %v", err)
	out := make([]string, len(de.Details))
	for i, d := range de.Details {
		out[i] = d.Field
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Plafond décoratif en bois sculpté", "plafond-decoratif-en-bois-sculpte"},
		{"  Porte d'entrée – Cèdre  ", "porte-d-entree-cedre"},
		{"Moucharabieh 2024!", "moucharabieh-2024"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in))
		assert.True(t, ValidSlug(Slugify(tt.in)))
	}
	assert.False(t, ValidSlug("Bad Slug"))
}

func TestText(t *testing.T) {
	txt := Text{"fr": " Bonjour ", "en": "", "xx": "?"}.clean()
	assert.Equal(t, Text{"fr": "Bonjour"}, txt)
	assert.Equal(t, "Bonjour", txt.Get("en"))
	assert.Nil(t, Text{"en": " "}.clean())
}

func TestNewTestimonial(t *testing.T) {
	tm, err := NewTestimonial(TestimonialParams{
		ClientName: "Nadia B.",
		Content:    Text{"fr": "Travail remarquable sur notre cuisine.", "en": "Outstanding work."},
		Rating:     5,
		IsActive:   true,
	}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, tm.Position)
	assert.Equal(t, "Outstanding work.", tm.Content.Get("en"))

	_, err = NewTestimonial(TestimonialParams{Rating: 6, Content: Text{"en": "x"}}, 0)
	assert.Equal(t, []string{"clientName", "contentFr", "rating"}, fields(t, err))
}

func TestProject(t *testing.T) {
	p, err := NewProject(ProjectParams{
		Title:        Text{"fr": "Salon marocain en cèdre"},
		BeforeImages: []string{"/a.jpg"},
		AfterImages:  []string{"/b.jpg"},
		IsActive:     true,
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, "salon-marocain-en-cedre", p.Slug)

	_, err = NewProject(ProjectParams{Title: Text{"fr": "x"}, Slug: "Mauvais Slug", Year: ptr(1800)}, 0)
	assert.Equal(t, []string{"slug", "year"}, fields(t, err))

	other := &Project{BeforeImages: []string{"/a.jpg", "/c.jpg"}, AfterImages: []string{"/d.jpg"}, CoverImage: ptr("/cover.jpg")}
	p.Absorb(other, time.Now())
	assert.Equal(t, []string{"/a.jpg", "/c.jpg"}, p.BeforeImages)
	assert.Equal(t, []string{"/b.jpg", "/d.jpg"}, p.AfterImages)
	assert.Equal(t, "/cover.jpg", *p.CoverImage)
}

func TestHeroSlide(t *testing.T) {
	s, err := NewHeroSlide(SlideParams{TargetPage: "home", Title: Text{"fr": "L'art du bois"}, IsActive: true}, 0)
	require.NoError(t, err)
	assert.Equal(t, MediaImage, s.MediaType)

	_, err = NewHeroSlide(SlideParams{TargetPage: "home", Title: Text{"fr": "Vidéo"}, MediaType: MediaVideo}, 0)
	assert.Equal(t, []string{"videoUrl"}, fields(t, err))

	_, err = NewHeroSlide(SlideParams{MediaType: "gif"}, 0)
	assert.Equal(t, []string{"targetPage", "titleFr", "mediaType"}, fields(t, err))
}

func TestSectionApply(t *testing.T) {
	var s Section
	require.NoError(t, s.Apply(SectionParams{SectionKey: " story ", Content: Text{"fr": "Depuis 2020"}}, time.Now()))
	assert.Equal(t, "story", s.SectionKey)
	assert.Equal(t, "content", s.SectionType)
	assert.True(t, s.IsActive)

	require.NoError(t, s.Apply(SectionParams{SectionKey: "story", SectionType: "gallery", IsActive: ptr(false)}, time.Now()))
	assert.Equal(t, "gallery", s.SectionType)
	assert.False(t, s.IsActive)

	assert.Equal(t, []string{"sectionKey"}, fields(t, s.Apply(SectionParams{}, time.Now())))
	assert.Equal(t, []string{"bgOverlay"}, fields(t, s.Apply(SectionParams{SectionKey: "a", BgOverlay: ptr(150)}, time.Now())))
}
