package webquote

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 4, 3, 9, 30, 0, 0, time.UTC)

func code(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func submission() SubmitParams {
	kitchen := "Cuisine"
	return SubmitParams{
		CustomerName:  " Youssef Alaoui ",
		CustomerEmail: "Youssef@Mail.com",
		CustomerPhone: "0661223344",
		ProjectType:   &kitchen,
		Description:   "Cuisine en noyer avec îlot central",
	}
}

func newQuote(t *testing.T) *QuoteRequest {
	t.Helper()
	q, err := NewQuoteRequest("QT-2025-0001", submission())
	require.NoError(t, err)
	q.ClearDomainEvents()
	return q
}

func status(s Status) *Status { return &s }

func TestNewQuoteRequest(t *testing.T) {
	q, err := NewQuoteRequest("QT-2025-0001", submission())
	require.NoError(t, err)

	assert.Equal(t, StatusNew, q.Status)
	assert.Equal(t, "Youssef Alaoui", q.CustomerName)
	assert.Equal(t, "youssef@mail.com", q.CustomerEmail)
	assert.Equal(t, "fr", q.Locale)
	assert.Equal(t, "website", q.Source)
	require.Len(t, q.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeQuoteRequested, q.GetDomainEvents()[0].EventType())
}

func TestNewQuoteRequest_Validation(t *testing.T) {
	_, err := NewQuoteRequest("QT-2025-0001", SubmitParams{
		CustomerName:  "Y",
		CustomerEmail: "nope",
		CustomerPhone: "0612",
		Description:   "court",
	})
	require.Error(t, err)

	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, shared.CodeValidationFailed, de.Code)
	assert.Len(t, de.Details, 4)
}

func TestReview(t *testing.T) {
	t.Run("quoting sets the response date", func(t *testing.T) {
		q := newQuote(t)
		price := decimal.NewFromInt(18500)
		valid := testNow.AddDate(0, 1, 0)

		old, err := q.Review(ReviewParams{Status: status(StatusQuoted), QuotedPrice: &price, ValidUntil: &valid}, testNow)
		require.NoError(t, err)

		assert.Equal(t, StatusNew, old)
		assert.Equal(t, StatusQuoted, q.Status)
		require.NotNil(t, q.RespondedAt)
		assert.True(t, q.RespondedAt.Equal(testNow))
		assert.True(t, q.QuotedPrice.Equal(price))
		assert.Equal(t, 2, q.GetVersion())
	})

	t.Run("rejects an impossible move", func(t *testing.T) {
		q := newQuote(t)
		_, err := q.Review(ReviewParams{Status: status(StatusAccepted)}, testNow)
		assert.Equal(t, CodeInvalidTransition, code(err))
		assert.Equal(t, StatusNew, q.Status)
	})

	t.Run("conversion goes through its own operation", func(t *testing.T) {
		q := newQuote(t)
		_, err := q.Review(ReviewParams{Status: status(StatusConverted)}, testNow)
		assert.Equal(t, CodeInvalidTransition, code(err))
	})

	t.Run("negative price", func(t *testing.T) {
		q := newQuote(t)
		price := decimal.NewFromInt(-1)
		_, err := q.Review(ReviewParams{QuotedPrice: &price}, testNow)
		assert.Equal(t, shared.CodeValidationFailed, code(err))
	})
}

func TestAddNote(t *testing.T) {
	q := newQuote(t)
	author := uuid.New()

	n, err := q.AddNote("  Client rappelé ", true, &author, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Client rappelé", n.Content)
	assert.Equal(t, q.ID, n.QuoteID)
	assert.Len(t, q.Notes, 1)

	_, err = q.AddNote("   ", true, nil, testNow)
	assert.Equal(t, shared.CodeValidationFailed, code(err))
}

func TestMarkConverted(t *testing.T) {
	q := newQuote(t)
	lead := uuid.New()

	require.NoError(t, q.MarkConverted(lead, testNow))
	assert.Equal(t, StatusConverted, q.Status)
	assert.Equal(t, &lead, q.LeadID)
	require.Len(t, q.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeQuoteConverted, q.GetDomainEvents()[0].EventType())

	assert.Equal(t, CodeAlreadyConverted, code(q.MarkConverted(uuid.New(), testNow)))

	rejected := newQuote(t)
	rejected.Status = StatusRejected
	assert.Equal(t, CodeInvalidTransition, code(rejected.CheckConvertible()))
}

func TestExpire(t *testing.T) {
	q := newQuote(t)
	assert.False(t, q.Expire(testNow))

	past := testNow.AddDate(0, 0, -1)
	q.Status = StatusQuoted
	q.ValidUntil = &past
	assert.True(t, q.Expire(testNow))
	assert.Equal(t, StatusExpired, q.Status)
}

func TestGuardDelete(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusRejected, StatusExpired} {
		q := newQuote(t)
		q.Status = s
		assert.NoError(t, q.GuardDelete(), s)
	}
	for _, s := range []Status{StatusInReview, StatusQuoted, StatusAccepted, StatusConverted} {
		q := newQuote(t)
		q.Status = s
		err := q.GuardDelete()
		assert.Equal(t, CodeNotDeletable, code(err), s)
		assert.Contains(t, err.Error(), "Can only delete quotes with status")
	}
}

func TestLeadNeed(t *testing.T) {
	q := newQuote(t)
	assert.Equal(t, "Cuisine: Cuisine en noyer avec îlot central", q.LeadNeed())
	q.ProjectType = nil
	assert.Equal(t, "Cuisine en noyer avec îlot central", q.LeadNeed())
}
