// Package setting holds the site settings, stored as one row per key and
// merged over built-in defaults per group.
package setting

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

const (
	CodeGroupNotFound = "SETTING_GROUP_NOT_FOUND"
	CodeInvalidKeys   = "INVALID_SETTING_KEYS"
)

// Setting is one stored value of a group
type Setting struct {
	Group       string     `gorm:"column:group_name;type:varchar(50);primaryKey"`
	Key         string     `gorm:"type:varchar(100);primaryKey"`
	Value       any        `gorm:"type:text;serializer:json"`
	UpdatedByID *uuid.UUID `gorm:"type:uuid"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Setting) TableName() string {
	return "settings"
}

// Values are the settings of one group by key
type Values map[string]any

// Bool reads a boolean value, falling back when missing or of another type
func (v Values) Bool(key string, fallback bool) bool {
	if b, ok := v[key].(bool); ok {
		return b
	}
	return fallback
}

// String reads a string value
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// List splits a comma separated value, dropping blanks
func (v Values) List(key string) []string {
	var out []string
	for _, part := range strings.Split(v.String(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsGroup reports whether name is a known group
func IsGroup(name string) bool {
	_, ok := defaults()[name]
	return ok
}

// IsPublic reports whether a group is readable by the public site
func IsPublic(group string) bool {
	return publicGroups[group]
}

// PublicGroups lists the groups the public site can read
func PublicGroups() []string {
	out := make([]string, 0, len(publicGroups))
	for _, g := range Groups {
		if publicGroups[g] {
			out = append(out, g)
		}
	}
	return out
}

// Defaults returns a fresh copy of the defaults of a group
func Defaults(group string) (Values, error) {
	d, ok := defaults()[group]
	if !ok {
		return nil, ErrGroupNotFound(group)
	}
	return Values(d), nil
}

// Merge overlays stored rows on the defaults of their group. Rows of
// unknown groups are ignored.
func Merge(groups []string, rows []Setting) map[string]Values {
	all := defaults()
	out := make(map[string]Values, len(groups))
	for _, g := range groups {
		if d, ok := all[g]; ok {
			out[g] = Values(d)
		}
	}
	for _, r := range rows {
		if vals, ok := out[r.Group]; ok {
			vals[r.Key] = r.Value
		}
	}
	return out
}

// Validate checks that every key of an update exists in the group defaults
func Validate(group string, update map[string]any) error {
	d, err := Defaults(group)
	if err != nil {
		return err
	}
	var invalid []string
	for k := range update {
		if _, ok := d[k]; !ok {
			invalid = append(invalid, k)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return shared.NewDomainErrorf(CodeInvalidKeys, "Invalid setting keys for group '%s': %s", group, strings.Join(invalid, ", "))
	}
	return nil
}

// Rows turns an update into stored rows
func Rows(group string, update map[string]any, by *uuid.UUID, now time.Time) []Setting {
	keys := make([]string, 0, len(update))
	for k := range update {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]Setting, len(keys))
	for i, k := range keys {
		rows[i] = Setting{Group: group, Key: k, Value: update[k], UpdatedByID: by, UpdatedAt: now}
	}
	return rows
}

// ErrGroupNotFound is returned for an unknown group name
func ErrGroupNotFound(group string) error {
	return shared.NewDomainErrorf(CodeGroupNotFound, "Setting group '%s' not found", group)
}

// Repository persists settings
type Repository interface {
	FindByGroups(ctx context.Context, groups []string) ([]Setting, error)
	Upsert(ctx context.Context, rows []Setting) error
	DeleteGroup(ctx context.Context, group string) error
}

// Issuer is the company identity printed on commercial documents
type Issuer struct {
	Name    string
	Address string
	City    string
	Phone   string
	Email   string
	ICE     string
	RC      string
	IF      string
	Patente string
	RIB     string
}

// IssuerFrom assembles the issuer from the legal and contact groups
func IssuerFrom(legal, contact Values) Issuer {
	address := legal.String("legalAddress")
	if address == "" {
		address = contact.String("address")
	}
	return Issuer{
		Name:    legal.String("companyLegalName"),
		Address: address,
		City:    contact.String("city"),
		Phone:   contact.String("phone"),
		Email:   contact.String("email"),
		ICE:     legal.String("ice"),
		RC:      legal.String("rc"),
		IF:      legal.String("taxId"),
		Patente: legal.String("patente"),
		RIB:     legal.String("rib"),
	}
}
