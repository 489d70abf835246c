package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// Files are named NNNNNN_name.up.sql / NNNNNN_name.down.sql.
var fileRe = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

const versionWidth = 6

var headerTmpl = template.Must(template.New("header").Parse(
	`-- {{.Version}}_{{.Name}} ({{.Direction}})
-- {{.Created}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`))

// Migration is one numbered migration found on disk.
type Migration struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// Reversible reports whether a down file exists.
func (m Migration) Reversible() bool { return m.DownPath != "" }

// ListMigrations returns the migrations in dir ordered by version. A missing
// directory holds no migrations.
func ListMigrations(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	byVersion := map[uint]*Migration{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := fileRe.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		v, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			continue
		}
		version := uint(v)
		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: match[2]}
			byVersion[version] = m
		} else if m.Name != match[2] {
			return nil, fmt.Errorf("migration %d has two names: %s and %s", version, m.Name, match[2])
		}
		path := filepath.Join(dir, entry.Name())
		if match[3] == "up" {
			m.UpPath = path
		} else {
			m.DownPath = path
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpPath == "" {
			return nil, fmt.Errorf("migration %d_%s has no up file", m.Version, m.Name)
		}
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b Migration) int { return int(a.Version) - int(b.Version) })
	return out, nil
}

// CreateMigration writes an empty up/down pair numbered after the highest
// existing version.
func CreateMigration(dir, name, description string) (*Migration, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations dir: %w", err)
	}
	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	var version uint = 1
	if n := len(existing); n > 0 {
		version = existing[n-1].Version + 1
	}

	base := fmt.Sprintf("%0*d_%s", versionWidth, version, slug)
	m := &Migration{
		Version:  version,
		Name:     slug,
		UpPath:   filepath.Join(dir, base+".up.sql"),
		DownPath: filepath.Join(dir, base+".down.sql"),
	}
	created := time.Now().Format(time.DateOnly)
	for _, f := range []struct{ path, direction string }{{m.UpPath, "up"}, {m.DownPath, "down"}} {
		if err := writeHeader(f.path, map[string]string{
			"Version":     fmt.Sprintf("%0*d", versionWidth, version),
			"Name":        slug,
			"Direction":   f.direction,
			"Created":     created,
			"Description": description,
		}); err != nil {
			_ = os.Remove(m.UpPath)
			return nil, err
		}
	}
	return m, nil
}

func writeHeader(path string, data map[string]string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return headerTmpl.Execute(f, data)
}

// sanitizeName lowercases name and keeps letters and digits, joining words
// with single underscores.
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}
