package cms

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/cms"
)

type memoryContent struct {
	mu           sync.Mutex
	testimonials map[uuid.UUID]*cms.Testimonial
	projects     map[uuid.UUID]*cms.Project
	slides       map[uuid.UUID]*cms.HeroSlide
	sections     map[string]cms.Section
}

func newMemoryContent() *memoryContent {
	return &memoryContent{
		testimonials: make(map[uuid.UUID]*cms.Testimonial),
		projects:     make(map[uuid.UUID]*cms.Project),
		slides:       make(map[uuid.UUID]*cms.HeroSlide),
		sections:     make(map[string]cms.Section),
	}
}

func (r *memoryContent) FindTestimonial(_ context.Context, id uuid.UUID) (*cms.Testimonial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.testimonials[id]
	if !ok {
		return nil, cms.ErrTestimonialNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memoryContent) ListTestimonials(_ context.Context, f cms.ListFilter) ([]cms.Testimonial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []cms.Testimonial
	for _, t := range r.testimonials {
		if f.ActiveOnly && !t.IsActive {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memoryContent) SaveTestimonial(_ context.Context, t *cms.Testimonial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.testimonials[t.ID] = &cp
	return nil
}

func (r *memoryContent) DeleteTestimonial(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.testimonials[id]; !ok {
		return cms.ErrTestimonialNotFound
	}
	delete(r.testimonials, id)
	return nil
}

func (r *memoryContent) FindProject(_ context.Context, id uuid.UUID) (*cms.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, cms.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryContent) FindProjectBySlug(_ context.Context, slug string) (*cms.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.projects {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, cms.ErrProjectNotFound
}

func (r *memoryContent) SlugTaken(_ context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.projects {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryContent) ListProjects(_ context.Context, f cms.ListFilter) ([]cms.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []cms.Project
	for _, p := range r.projects {
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memoryContent) SaveProject(_ context.Context, p *cms.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r *memoryContent) DeleteProject(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return cms.ErrProjectNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *memoryContent) MergeProjects(_ context.Context, target *cms.Project, sourceIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *target
	r.projects[target.ID] = &cp
	for _, id := range sourceIDs {
		delete(r.projects, id)
	}
	return nil
}

func (r *memoryContent) FindSlide(_ context.Context, id uuid.UUID) (*cms.HeroSlide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slides[id]
	if !ok {
		return nil, cms.ErrSlideNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memoryContent) ListSlides(_ context.Context, f cms.ListFilter) ([]cms.HeroSlide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []cms.HeroSlide
	for _, s := range r.slides {
		if (f.ActiveOnly && !s.IsActive) || (f.TargetPage != "" && s.TargetPage != f.TargetPage) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memoryContent) SaveSlide(_ context.Context, s *cms.HeroSlide) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.slides[s.ID] = &cp
	return nil
}

func (r *memoryContent) DeleteSlide(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slides[id]; !ok {
		return cms.ErrSlideNotFound
	}
	delete(r.slides, id)
	return nil
}

func (r *memoryContent) ListSections(_ context.Context, pageSlug string, activeOnly bool) ([]cms.Section, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []cms.Section
	for _, s := range r.sections {
		if s.PageSlug != pageSlug || (activeOnly && !s.IsActive) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memoryContent) UpsertSections(_ context.Context, pageSlug string, sections []cms.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range sections {
		s.PageSlug = pageSlug
		r.sections[pageSlug+"/"+s.SectionKey] = s
	}
	return nil
}

func (r *memoryContent) DeleteSection(_ context.Context, pageSlug, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sections[pageSlug+"/"+key]; !ok {
		return cms.ErrSectionNotFound
	}
	delete(r.sections, pageSlug+"/"+key)
	return nil
}

func (r *memoryContent) NextPosition(_ context.Context, kind cms.Kind, targetPage string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := 0
	bump := func(pos int) {
		if pos+1 > next {
			next = pos + 1
		}
	}
	switch kind {
	case cms.KindTestimonial:
		for _, t := range r.testimonials {
			bump(t.Position)
		}
	case cms.KindProject:
		for _, p := range r.projects {
			bump(p.Position)
		}
	case cms.KindSlide:
		for _, s := range r.slides {
			if targetPage == "" || s.TargetPage == targetPage {
				bump(s.Position)
			}
		}
	}
	return next, nil
}

func (r *memoryContent) Reorder(_ context.Context, kind cms.Kind, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, id := range ids {
		switch kind {
		case cms.KindTestimonial:
			if t, ok := r.testimonials[id]; ok {
				t.Position = i
			}
		case cms.KindProject:
			if p, ok := r.projects[id]; ok {
				p.Position = i
			}
		case cms.KindSlide:
			if s, ok := r.slides[id]; ok {
				s.Position = i
			}
		}
	}
	return nil
}

type memoryAudits struct {
	entries []audit.Log
}

func (r *memoryAudits) Save(_ context.Context, l *audit.Log) error {
	r.entries = append(r.entries, *l)
	return nil
}

func (r *memoryAudits) Search(context.Context, audit.Filter) ([]audit.Log, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

func (r *memoryAudits) CountByAction(context.Context, audit.Filter) (map[string]int64, error) {
	return nil, nil
}
