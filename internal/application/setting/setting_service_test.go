package setting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/notification"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/setting"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memorySettings struct {
	mu      sync.Mutex
	rows    map[string]setting.Setting
	failErr error
}

func newMemorySettings() *memorySettings {
	return &memorySettings{rows: make(map[string]setting.Setting)}
}

func (r *memorySettings) FindByGroups(_ context.Context, groups []string) ([]setting.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	want := make(map[string]bool, len(groups))
	for _, g := range groups {
		want[g] = true
	}
	var out []setting.Setting
	for _, row := range r.rows {
		if len(groups) == 0 || want[row.Group] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memorySettings) Upsert(_ context.Context, rows []setting.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range rows {
		r.rows[row.Group+"/"+row.Key] = row
	}
	return nil
}

func (r *memorySettings) DeleteGroup(_ context.Context, group string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, row := range r.rows {
		if row.Group == group {
			delete(r.rows, k)
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

func newTestService() (*SettingService, *memorySettings, *memoryAudits) {
	repo := newMemorySettings()
	audits := &memoryAudits{}
	svc := NewSettingService(repo, audits, zap.NewNop())
	svc.SetClock(func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) })
	return svc, repo, audits
}

func domainCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func TestGroup(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	resp, err := svc.Group(ctx, setting.GroupContact, false)
	require.NoError(t, err)
	assert.Equal(t, "Casablanca", resp.Settings["city"])

	_, err = svc.Group(ctx, setting.GroupEmails, false)
	assert.Equal(t, setting.CodeGroupNotFound, domainCode(err))

	resp, err = svc.Group(ctx, setting.GroupEmails, true)
	require.NoError(t, err)
	assert.Equal(t, "Le Tatche Bois", resp.Settings["fromName"])

	_, err = svc.Group(ctx, "unknown", true)
	assert.EqualError(t, err, "Setting group 'unknown' not found")
}

func TestPublic(t *testing.T) {
	svc, _, _ := newTestService()
	groups, err := svc.Public(context.Background())
	require.NoError(t, err)
	assert.Len(t, groups, 4)
	assert.Contains(t, groups, setting.GroupTheme)
	assert.NotContains(t, groups, setting.GroupPayment)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	by := uuid.New()

	t.Run("stores and audits", func(t *testing.T) {
		svc, repo, audits := newTestService()
		resp, err := svc.Update(ctx, setting.GroupShipping, map[string]any{"defaultFreeThreshold": 1500}, &by)
		require.NoError(t, err)
		assert.Equal(t, "Settings for 'shipping' updated successfully", resp.Message)
		assert.Equal(t, 1500, resp.Settings["defaultFreeThreshold"])
		assert.Equal(t, true, resp.Settings["enabled"])
		assert.Len(t, repo.rows, 1)

		require.Len(t, audits.entries, 1)
		entry := audits.entries[0]
		assert.Equal(t, audit.EntitySettings, entry.Entity)
		assert.Equal(t, &by, entry.UserID)
		assert.Equal(t, audit.Change{Old: 1000, New: 1500}, entry.Changes["shipping.defaultFreeThreshold"])
	})

	t.Run("unknown keys", func(t *testing.T) {
		svc, repo, audits := newTestService()
		_, err := svc.Update(ctx, setting.GroupShipping, map[string]any{"enabled": false, "carrier": "amana"}, &by)
		assert.EqualError(t, err, "Invalid setting keys for group 'shipping': carrier")
		assert.Empty(t, repo.rows)
		assert.Empty(t, audits.entries)
	})

	t.Run("unknown group", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Update(ctx, "billing", map[string]any{"x": 1}, &by)
		assert.Equal(t, setting.CodeGroupNotFound, domainCode(err))
	})
}

func TestReset(t *testing.T) {
	svc, repo, audits := newTestService()
	ctx := context.Background()

	_, err := svc.Update(ctx, setting.GroupSocial, map[string]any{"instagram": "letatchebois"}, nil)
	require.NoError(t, err)

	resp, err := svc.Reset(ctx, setting.GroupSocial, nil)
	require.NoError(t, err)
	assert.Equal(t, "", resp.Settings["instagram"])
	assert.Empty(t, repo.rows)
	require.Len(t, audits.entries, 2)
	assert.Equal(t, audit.SeverityWarning, audits.entries[1].Severity)
}

func TestEmailEnabledFor(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	assert.True(t, svc.EmailEnabledFor(ctx, notification.TypeNewOrder))

	_, err := svc.Update(ctx, setting.GroupNotifications, map[string]any{"notifyNewOrder": false, "adminEmails": "a@tb.ma, b@tb.ma"}, nil)
	require.NoError(t, err)
	assert.False(t, svc.EmailEnabledFor(ctx, notification.TypeNewOrder))
	assert.True(t, svc.EmailEnabledFor(ctx, notification.TypeInvoiceOverdue))
	assert.Equal(t, []string{"a@tb.ma", "b@tb.ma"}, svc.AdminEmails(ctx))

	_, err = svc.Update(ctx, setting.GroupNotifications, map[string]any{"emailEnabled": false}, nil)
	require.NoError(t, err)
	assert.False(t, svc.EmailEnabledFor(ctx, notification.TypeInvoiceOverdue))
}

func TestEmailEnabledFor_StoreDown(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.failErr = errors.New("db down")
	assert.True(t, svc.EmailEnabledFor(context.Background(), notification.TypeNewQuote))
}
