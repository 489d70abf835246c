package document

import (
	"context"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"go.uber.org/zap"
)

// maxReportedGaps bounds the missing numbers listed per type
const maxReportedGaps = 50

// SequenceHealth describes one document counter
type SequenceHealth struct {
	Type          string  `json:"type"`
	Year          int     `json:"year"`
	LastNumber    int64   `json:"lastNumber"`
	DocumentCount int64   `json:"documentCount"`
	NextNumber    string  `json:"nextNumber"`
	Gaps          []int64 `json:"gaps"`
	GapCount      int     `json:"gapCount"`
	Healthy       bool    `json:"healthy"`
}

// SequenceService exposes numbering diagnostics
type SequenceService struct {
	store   sequence.Store
	docRepo document.DocumentRepository
	gaps    sequence.GapReporter
	logger  *zap.Logger
	now     func() time.Time
}

// NewSequenceService creates a new SequenceService
func NewSequenceService(store sequence.Store, docRepo document.DocumentRepository, auditRepo audit.Repository, logger *zap.Logger) *SequenceService {
	return &SequenceService{
		store:   store,
		docRepo: docRepo,
		gaps:    &gapReporter{repo: auditRepo, logger: logger},
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock overrides time.Now, for tests
func (s *SequenceService) SetClock(now func() time.Time) {
	s.now = now
}

// Preview returns the next number of a type without consuming it
func (s *SequenceService) Preview(ctx context.Context, t string) (string, error) {
	gen := sequence.NewGenerator(s.store, sequence.WithClock(s.now))
	return gen.Preview(ctx, sequence.Type(t))
}

// Counters lists every persisted counter
func (s *SequenceService) Counters(ctx context.Context) ([]sequence.Counter, error) {
	return s.store.List(ctx)
}

// Validate checks a number's format
func (s *SequenceService) Validate(number string) sequence.Validation {
	return sequence.Validate(number)
}

// Parse decodes a number
func (s *SequenceService) Parse(number string) (sequence.Parsed, error) {
	p, ok := sequence.Parse(number)
	if !ok {
		return sequence.Parsed{}, shared.NewDomainError(sequence.CodeInvalidFormat, "Invalid document number format")
	}
	return p, nil
}

// Health reports, for each document type, the counter value for the current
// year against the numbers actually carried by documents. Every missing
// number is written to the audit trail as a sequence_gap warning.
func (s *SequenceService) Health(ctx context.Context) ([]SequenceHealth, error) {
	now := s.now()
	gen := sequence.NewGenerator(s.store, sequence.WithClock(s.now))
	out := make([]SequenceHealth, 0, len(document.AllTypes()))
	for _, t := range document.AllTypes() {
		st := t.SequenceType()
		year, err := sequence.CounterYear(st, now)
		if err != nil {
			return nil, err
		}
		last, err := gen.Current(ctx, st)
		if err != nil {
			return nil, err
		}
		count, err := s.docRepo.CountOfficial(ctx, t, year)
		if err != nil {
			return nil, err
		}
		numbers, err := s.docRepo.ListOfficialNumbers(ctx, t, year)
		if err != nil {
			return nil, err
		}
		next, err := sequence.Format(st, year, last+1)
		if err != nil {
			return nil, err
		}

		gaps := findGaps(numbers, last)
		h := SequenceHealth{
			Type:          string(t),
			Year:          year,
			LastNumber:    last,
			DocumentCount: count,
			NextNumber:    next,
			GapCount:      len(gaps),
			Healthy:       len(gaps) == 0 && count <= last,
		}
		if len(gaps) > maxReportedGaps {
			gaps = gaps[:maxReportedGaps]
		}
		h.Gaps = gaps
		for _, g := range gaps {
			s.gaps.ReportGap(ctx, st, year, g-1, g+1)
		}
		if !h.Healthy {
			s.logger.Warn("sequence anomaly",
				zap.String("type", h.Type),
				zap.Int64("last", last),
				zap.Int64("documents", count),
				zap.Int("gaps", h.GapCount),
			)
		}
		out = append(out, h)
	}
	return out, nil
}

// findGaps returns the sequence values in 1..last that no number carries
func findGaps(numbers []string, last int64) []int64 {
	seen := make(map[int64]struct{}, len(numbers))
	for _, n := range numbers {
		if p, ok := sequence.Parse(n); ok && !p.Legacy {
			seen[p.Sequence] = struct{}{}
		}
	}
	gaps := []int64{}
	for i := int64(1); i <= last; i++ {
		if _, ok := seen[i]; !ok {
			gaps = append(gaps, i)
		}
	}
	return gaps
}
