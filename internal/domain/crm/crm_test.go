package crm

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

var testNow = time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC)

func strp(s string) *string { return &s }

func decp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func code(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func fields(err error) []string {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return nil
	}
	out := make([]string, len(de.Details))
	for i, d := range de.Details {
		out[i] = d.Field
	}
	return out
}

func testLead(t *testing.T) *Lead {
	t.Helper()
	l, err := NewLead("L-2025-000001", LeadParams{
		Source:    SourceWhatsApp,
		FullName:  "  Youssef Alaoui ",
		Phone:     "+212 6 61 23 45 67",
		Email:     strp("youssef@example.ma"),
		City:      strp("Fès"),
		Address:   strp("12 derb Sidi Ahmed"),
		Need:      strp("Plafond en cèdre"),
		BudgetMax: decp("45000"),
	})
	require.NoError(t, err)
	return l
}

func TestNewLead(t *testing.T) {
	t.Run("applies defaults and emits creation event", func(t *testing.T) {
		l := testLead(t)

		assert.Equal(t, "Youssef Alaoui", l.FullName)
		assert.Equal(t, LeadNew, l.Status)
		assert.Equal(t, UrgencyMedium, l.Urgency)
		assert.Equal(t, ClientIndividual, l.ClientType)
		require.Len(t, l.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeLeadCreated, l.GetDomainEvents()[0].EventType())
	})

	t.Run("collects every invalid field", func(t *testing.T) {
		_, err := NewLead("L-2025-000002", LeadParams{
			Source:    "TV",
			FullName:  "Y",
			Phone:     "12ab",
			Email:     strp("not-an-email"),
			BudgetMin: decp("500"),
			BudgetMax: decp("100"),
		})

		assert.Equal(t, shared.CodeValidationFailed, code(err))
		assert.ElementsMatch(t, []string{"source", "fullName", "phone", "email", "budgetMax"}, fields(err))
	})
}

func TestLeadUpdate(t *testing.T) {
	l := testLead(t)
	l.ClearDomainEvents()

	old, err := l.Update(LeadParams{Source: SourceWhatsApp, Status: LeadContacted, FullName: "Youssef Alaoui", Phone: "0661234567"}, testNow)
	require.NoError(t, err)

	assert.Equal(t, LeadNew, old)
	assert.Equal(t, LeadContacted, l.Status)
	assert.Equal(t, 2, l.Version)
	require.Len(t, l.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeLeadStatusChanged, l.GetDomainEvents()[0].EventType())

	act := LeadStatusActivity(l, old, nil)
	assert.Equal(t, `Statut changé de "NEW" à "CONTACTED"`, act.Content)
}

func TestLeadConversion(t *testing.T) {
	l := testLead(t)
	client, err := NewClient("CLI-000007", l.ClientParams())
	require.NoError(t, err)

	assert.Equal(t, DefaultCountry, client.BillingCountry)
	assert.Equal(t, "12 derb Sidi Ahmed", *client.BillingAddress)
	assert.Equal(t, "Plafond en cèdre - Youssef Alaoui", l.DefaultProjectName())

	require.NoError(t, l.MarkConverted(client, testNow))
	assert.Equal(t, LeadWon, l.Status)
	assert.Equal(t, client.ID, *l.ConvertedToClientID)

	err = l.MarkConverted(client, testNow)
	assert.Equal(t, CodeLeadConverted, code(err))
	assert.Equal(t, "Ce lead a déjà été converti en client", err.Error())

	assert.Equal(t, CodeLeadNotDeletable, code(l.GuardDelete()))
	assert.Equal(t, "Lead converti en client: CLI-000007", LeadConvertedActivity(l, client, nil).Content)
}

func TestDefaultProjectNameWithoutNeed(t *testing.T) {
	l := &Lead{FullName: "Salma Idrissi"}
	assert.Equal(t, "Projet - Salma Idrissi", l.DefaultProjectName())
}

func TestClient(t *testing.T) {
	t.Run("defaults and tag cleanup", func(t *testing.T) {
		c, err := NewClient("CLI-000001", ClientParams{
			ClientType: ClientCompany,
			FullName:   "Karim Benjelloun",
			Company:    strp("Riad Dar Zitoun"),
			Phone:      "0522 45 67 89",
			Tags:       []string{" hôtel", "", "hôtel", "VIP"},
		})
		require.NoError(t, err)

		assert.Equal(t, DefaultPaymentTerms, c.PaymentTerms)
		assert.Equal(t, "Maroc", c.BillingCountry)
		assert.True(t, c.SameAsDelivery)
		assert.Equal(t, []string{"hôtel", "VIP"}, c.Tags)
		assert.Equal(t, "Riad Dar Zitoun", c.DisplayName())
	})

	t.Run("rejects discount above 100", func(t *testing.T) {
		_, err := NewClient("CLI-000002", ClientParams{FullName: "Nadia", Phone: "0661000000", DefaultDiscount: decp("120")})
		assert.Equal(t, []string{"defaultDiscount"}, fields(err))
	})

	t.Run("delivery address when different from billing", func(t *testing.T) {
		same := false
		c, err := NewClient("CLI-000003", ClientParams{
			FullName: "Nadia Tazi", Phone: "0661000000",
			BillingAddress: strp("Bd Zerktouni"), BillingCity: strp("Casablanca"),
			DeliveryAddress: strp("Route de Ouarzazate"), DeliveryCity: strp("Marrakech"),
			SameAsDelivery: &same,
		})
		require.NoError(t, err)

		addr, city := c.ShippingAddress()
		assert.Equal(t, "Route de Ouarzazate", addr)
		assert.Equal(t, "Marrakech", city)
	})

	t.Run("delete guard", func(t *testing.T) {
		c := &Client{}
		assert.NoError(t, c.GuardDelete(false, false))
		assert.Contains(t, c.GuardDelete(true, true).Error(), "des documents")
		assert.Contains(t, c.GuardDelete(false, true).Error(), "des projets")
	})
}

func TestProject(t *testing.T) {
	clientID := uuid.New()
	start := testNow
	end := testNow.AddDate(0, 0, -1)

	_, err := NewProject("PRJ-2025-000001", ProjectParams{ClientID: clientID, Name: "Cuisine", StartDate: &start, ExpectedEndDate: &end})
	assert.Equal(t, []string{"expectedEndDate"}, fields(err))

	p, err := NewProject("PRJ-2025-000001", ProjectParams{ClientID: clientID, Name: "Cuisine", MaterialCost: decp("1200"), LaborCost: decp("800")})
	require.NoError(t, err)
	assert.Equal(t, ProjectBoth, p.Type)
	assert.Equal(t, ProjectStudy, p.Status)
	assert.True(t, decimal.NewFromInt(2000).Equal(p.TotalCost()))

	old, err := p.ChangeStatus(ProjectCompleted, testNow)
	require.NoError(t, err)
	assert.Equal(t, ProjectStudy, old)
	require.NotNil(t, p.ActualEndDate)
	assert.Equal(t, EventTypeProjectStatusChanged, p.GetDomainEvents()[1].EventType())

	_, err = p.ChangeStatus("DONE", testNow)
	assert.Equal(t, shared.CodeValidationFailed, code(err))
}

func TestProgress(t *testing.T) {
	tasks := []Task{
		{Status: TaskCompleted},
		{Status: TaskCompleted},
		{Status: TaskInProgress},
		{Status: TaskCancelled},
	}
	assert.Equal(t, 66, Progress(tasks))
	assert.Equal(t, 0, Progress(nil))
}

func TestTask(t *testing.T) {
	projectID := uuid.New()
	task, err := NewTask(projectID, TaskParams{Title: "Découpe des panneaux"}, 3, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, task.Position)
	assert.Equal(t, TaskPending, task.Status)
	assert.Nil(t, task.CompletedAt)

	require.NoError(t, task.Update(TaskParams{Title: "Découpe", Status: TaskCompleted}, testNow))
	require.NotNil(t, task.CompletedAt)

	require.NoError(t, task.Update(TaskParams{Title: "Découpe", Status: TaskInProgress}, testNow))
	assert.Nil(t, task.CompletedAt)

	_, err = NewTask(projectID, TaskParams{Title: "x", Priority: PriorityUrgent}, 0, testNow)
	assert.Equal(t, []string{"priority"}, fields(err))
}

func TestWorkItems(t *testing.T) {
	projectID := uuid.New()

	_, err := NewJournalEntry(projectID, nil, "  ", nil, nil, testNow)
	assert.Equal(t, []string{"content"}, fields(err))

	j, err := NewJournalEntry(projectID, strp("Pose"), "Pose terminée côté salon", nil, nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow, j.Date)

	m, err := NewMedia(projectID, "https://cdn.example.ma/p.jpg", "p.jpg", MediaImage, "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, TagOther, m.Tag)

	_, err = NewMedia(projectID, "", "p.jpg", "GIF", TagAfter, nil, nil)
	assert.ElementsMatch(t, []string{"url", "type"}, fields(err))

	c, err := NewChecklistItem(projectID, "Vérifier les niveaux", nil, 0)
	require.NoError(t, err)
	c.Toggle(true, testNow)
	assert.True(t, c.Checked)
	assert.NotNil(t, c.CheckedAt)
	c.Toggle(false, testNow)
	assert.Nil(t, c.CheckedAt)
}

func TestAppointment(t *testing.T) {
	leadID := uuid.New()
	base := AppointmentParams{
		Title:     "Prise de mesures",
		Type:      AppointmentMeasure,
		StartDate: testNow,
		EndDate:   testNow.Add(time.Hour),
	}

	_, err := NewAppointment(base)
	assert.Equal(t, CodeMissingRelation, code(err))
	assert.Equal(t, "Lead, client ou projet requis", err.Error())

	bad := base
	bad.LeadID = &leadID
	bad.EndDate = testNow.Add(-time.Minute)
	_, err = NewAppointment(bad)
	assert.Equal(t, CodeInvalidSchedule, code(err))

	base.LeadID = &leadID
	a, err := NewAppointment(base)
	require.NoError(t, err)
	assert.Equal(t, AppointmentScheduled, a.Status)
	assert.Equal(t, time.Hour, a.Duration())

	a.ReminderSent = true
	moved := base
	moved.StartDate = testNow.Add(24 * time.Hour)
	moved.EndDate = moved.StartDate.Add(time.Hour)
	require.NoError(t, a.Update(moved, testNow))
	assert.False(t, a.ReminderSent)
}

func TestNewNote(t *testing.T) {
	leadID := uuid.New()
	a, err := NewNote(leadID, "", " Rappeler lundi ", nil)
	require.NoError(t, err)
	assert.Equal(t, ActivityNote, a.Type)
	assert.Equal(t, "Rappeler lundi", a.Content)

	_, err = NewNote(leadID, "SMS", "ok", nil)
	assert.Equal(t, []string{"type"}, fields(err))
}
