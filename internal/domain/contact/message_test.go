package contact

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 5, 2, 8, 45, 0, 0, time.UTC)

func received(t *testing.T) *Message {
	t.Helper()
	subject := "Table sur mesure"
	m, err := NewMessage(SubmitParams{
		Name:    "Nadia Chraibi",
		Email:   " Nadia@Example.MA",
		Subject: &subject,
		Content: "Bonjour, pouvez-vous fabriquer une table de 2m ?",
	})
	require.NoError(t, err)
	m.ClearDomainEvents()
	return m
}

func TestNewMessage(t *testing.T) {
	m, err := NewMessage(SubmitParams{Name: "Nadia", Email: "nadia@example.ma", Content: "Bonjour, un devis svp"})
	require.NoError(t, err)
	assert.Equal(t, Received, m.Direction)
	assert.Equal(t, "fr", m.Locale)
	assert.False(t, m.Read)
	require.Len(t, m.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeMessageReceived, m.GetDomainEvents()[0].EventType())

	_, err = NewMessage(SubmitParams{Name: "N", Email: "x", Content: "court"})
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Len(t, de.Details, 3)
}

func TestReply(t *testing.T) {
	m := received(t)
	admin := uuid.New()

	reply, err := m.Reply("contact@letatchebois.com", "Le Tatche Bois", "", "Bonjour Nadia, oui bien sûr.", &admin, testNow)
	require.NoError(t, err)

	assert.Equal(t, Sent, reply.Direction)
	assert.Equal(t, "Re: Table sur mesure", *reply.Subject)
	assert.Equal(t, m.ID, *reply.InReplyToID)
	assert.True(t, reply.Read)
	assert.True(t, m.Read)
	require.NotNil(t, m.RepliedAt)

	_, err = reply.Reply("a@b.c", "x", "", "encore", nil, testNow)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeReplyToSent, de.Code)

	_, err = m.Reply("a@b.c", "x", "", "  ", nil, testNow)
	require.True(t, errors.As(err, &de))
	assert.Equal(t, shared.CodeValidationFailed, de.Code)
}

func TestReplySubjectDefault(t *testing.T) {
	m := received(t)
	m.Subject = nil
	assert.Equal(t, "Re: Votre message", m.ReplySubject())
}

func TestRecordDelivery(t *testing.T) {
	m := received(t)
	m.RecordDelivery(errors.New("smtp: 535 authentication failed"))
	assert.False(t, m.EmailSent)
	assert.Equal(t, "smtp: 535 authentication failed", *m.EmailError)

	m.RecordDelivery(nil)
	assert.True(t, m.EmailSent)
	assert.Nil(t, m.EmailError)
}

func TestReadAndArchive(t *testing.T) {
	m := received(t)

	assert.True(t, m.MarkRead(testNow))
	assert.False(t, m.MarkRead(testNow.Add(time.Hour)))
	assert.True(t, m.ReadAt.Equal(testNow))

	assert.True(t, m.MarkUnread(testNow))
	assert.Nil(t, m.ReadAt)

	m.Archive(testNow)
	assert.True(t, m.Archived)
	m.Unarchive(testNow)
	assert.False(t, m.Archived)
	assert.Nil(t, m.ArchivedAt)

	assert.Equal(t, "Nadia Chraibi: Table sur mesure", m.Label())
}
