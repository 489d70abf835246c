// Package setting reads and writes the site settings groups.
package setting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/notification"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/setting"
	"go.uber.org/zap"
)

// GroupResponse is one settings group merged over its defaults
type GroupResponse struct {
	Group    string         `json:"group"`
	Settings setting.Values `json:"settings"`
}

// UpdateResponse acknowledges a group update
type UpdateResponse struct {
	Message  string         `json:"message"`
	Settings setting.Values `json:"settings"`
}

// SettingService manages settings groups
type SettingService struct {
	repo      setting.Repository
	auditRepo audit.Repository
	logger    *zap.Logger
	now       func() time.Time
}

// NewSettingService creates a new SettingService
func NewSettingService(repo setting.Repository, auditRepo audit.Repository, logger *zap.Logger) *SettingService {
	return &SettingService{repo: repo, auditRepo: auditRepo, logger: logger, now: time.Now}
}

// SetClock overrides time.Now, for tests
func (s *SettingService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SettingService) load(ctx context.Context, groups []string) (map[string]setting.Values, error) {
	rows, err := s.repo.FindByGroups(ctx, groups)
	if err != nil {
		return nil, err
	}
	return setting.Merge(groups, rows), nil
}

// All returns every group, for the back office
func (s *SettingService) All(ctx context.Context) (map[string]setting.Values, error) {
	return s.load(ctx, setting.Groups)
}

// Public returns the groups the public site may read
func (s *SettingService) Public(ctx context.Context) (map[string]setting.Values, error) {
	return s.load(ctx, setting.PublicGroups())
}

// Group returns one group. Anonymous callers only see public groups; a
// private group is reported as missing to them.
func (s *SettingService) Group(ctx context.Context, group string, authenticated bool) (*GroupResponse, error) {
	if !setting.IsGroup(group) || (!authenticated && !setting.IsPublic(group)) {
		return nil, setting.ErrGroupNotFound(group)
	}
	all, err := s.load(ctx, []string{group})
	if err != nil {
		return nil, err
	}
	return &GroupResponse{Group: group, Settings: all[group]}, nil
}

// Update stores the given keys of a group. Unknown keys reject the whole update.
func (s *SettingService) Update(ctx context.Context, group string, values map[string]any, by *uuid.UUID) (*UpdateResponse, error) {
	if err := setting.Validate(group, values); err != nil {
		return nil, err
	}
	before, err := s.load(ctx, []string{group})
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, setting.Rows(group, values, by, s.now())); err != nil {
		return nil, err
	}

	entry := audit.New(audit.ActionUpdate, audit.EntitySettings, nil, fmt.Sprintf("Paramètres '%s' mis à jour", group)).
		Classify(audit.CategorySystem, audit.SeverityInfo)
	for k, v := range values {
		entry.WithChange(group+"."+k, before[group][k], v)
	}
	appaudit.Write(ctx, s.auditRepo, s.logger, entry.By(by))

	after, err := s.load(ctx, []string{group})
	if err != nil {
		return nil, err
	}
	s.logger.Info("settings updated", zap.String("group", group), zap.Int("keys", len(values)))
	return &UpdateResponse{
		Message:  fmt.Sprintf("Settings for '%s' updated successfully", group),
		Settings: after[group],
	}, nil
}

// Reset drops the stored values of a group, restoring its defaults
func (s *SettingService) Reset(ctx context.Context, group string, by *uuid.UUID) (*UpdateResponse, error) {
	defaults, err := setting.Defaults(group)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteGroup(ctx, group); err != nil {
		return nil, err
	}
	appaudit.Write(ctx, s.auditRepo, s.logger,
		audit.New(audit.ActionDelete, audit.EntitySettings, nil, fmt.Sprintf("Paramètres '%s' réinitialisés", group)).
			Classify(audit.CategorySystem, audit.SeverityWarning).By(by))
	return &UpdateResponse{
		Message:  fmt.Sprintf("Settings for '%s' reset to defaults", group),
		Settings: defaults,
	}, nil
}

func (s *SettingService) notifications(ctx context.Context) setting.Values {
	all, err := s.load(ctx, []string{setting.GroupNotifications})
	if err != nil {
		s.logger.Warn("failed to load notification settings", zap.Error(err))
		defaults, _ := setting.Defaults(setting.GroupNotifications)
		return defaults
	}
	return all[setting.GroupNotifications]
}

// typeSwitches maps notification types to the key that silences their email
var typeSwitches = map[notification.Type]string{
	notification.TypeNewOrder:   "notifyNewOrder",
	notification.TypeNewQuote:   "notifyNewQuote",
	notification.TypeNewMessage: "notifyNewMessage",
	notification.TypeLowStock:   "notifyLowStock",
}

// EmailEnabledFor reports whether staff alerts of a type are also emailed
func (s *SettingService) EmailEnabledFor(ctx context.Context, t notification.Type) bool {
	vals := s.notifications(ctx)
	if !vals.Bool("emailEnabled", true) {
		return false
	}
	if key, ok := typeSwitches[t]; ok {
		return vals.Bool(key, true)
	}
	return true
}

// AdminEmails returns the extra alert addresses configured in the back office
func (s *SettingService) AdminEmails(ctx context.Context) []string {
	return s.notifications(ctx).List("adminEmails")
}

// Issuer returns the company identity printed on documents
func (s *SettingService) Issuer(ctx context.Context) setting.Issuer {
	groups := []string{setting.GroupLegal, setting.GroupContact}
	all, err := s.load(ctx, groups)
	if err != nil {
		s.logger.Warn("failed to load issuer settings", zap.Error(err))
		all = make(map[string]setting.Values, len(groups))
		for _, g := range groups {
			all[g], _ = setting.Defaults(g)
		}
	}
	return setting.IssuerFrom(all[setting.GroupLegal], all[setting.GroupContact])
}
