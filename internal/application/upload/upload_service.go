// Package upload stores media sent from the back office.
package upload

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"go.uber.org/zap"
)

// Root is the key prefix of every upload
const Root = "uploads"

// DefaultMaxSize is the upload limit when none is configured
const DefaultMaxSize int64 = 50 << 20

const (
	CodeNoFile      = "NO_FILE"
	CodeInvalidType = "INVALID_FILE_TYPE"
	CodeTooLarge    = "FILE_TOO_LARGE"
	CodeInvalidKey  = "INVALID_UPLOAD_KEY"
)

var (
	ErrNoFile      = shared.NewDomainError(CodeNoFile, "Aucun fichier fourni")
	ErrInvalidType = shared.NewDomainError(CodeInvalidType, "Type de fichier non autorisé")
	ErrInvalidKey  = shared.NewDomainError(CodeInvalidKey, "URL invalide")
)

const (
	typeDoc  = "application/msword"
	typeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	typeXls  = "application/vnd.ms-excel"
	typeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// allowed maps accepted content types to the extension used when the file
// name carries none
var allowed = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	typeDoc:           ".doc",
	typeDocx:          ".docx",
	typeXls:           ".xls",
	typeXlsx:          ".xlsx",
}

// containers are sniffed types that say nothing about what the file really
// is: office files are zip or OLE containers and SVG is sometimes plain text
var containers = map[string]bool{
	"application/zip":           true,
	"application/x-ole-storage": true,
	"text/plain":                true,
	"text/xml":                  true,
}

var folderPattern = regexp.MustCompile(`[^a-z0-9/-]+`)

// ObjectStore is where uploaded bytes end up
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// File is one uploaded file
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Result describes a stored file
type Result struct {
	URL          string `json:"url"`
	Key          string `json:"key"`
	FileName     string `json:"fileName"`
	OriginalName string `json:"originalName"`
	Size         int    `json:"size"`
	Type         string `json:"type"`
}

// BatchResult is the outcome of a multi-file upload
type BatchResult struct {
	Message string   `json:"message"`
	Files   []Result `json:"files"`
	Errors  []string `json:"errors,omitempty"`
}

// Constraints tells clients what the endpoint accepts
type Constraints struct {
	MaxFileSize   int64    `json:"maxFileSize"`
	MaxFileSizeMB int64    `json:"maxFileSizeMB"`
	AllowedTypes  []string `json:"allowedTypes"`
	UploadPath    string   `json:"uploadPath"`
}

// UploadService validates and stores files
type UploadService struct {
	store     ObjectStore
	auditRepo audit.Repository
	logger    *zap.Logger
	maxSize   int64
	now       func() time.Time
	newID     func() uuid.UUID
}

// NewUploadService creates a new UploadService
func NewUploadService(store ObjectStore, auditRepo audit.Repository, maxSize int64, logger *zap.Logger) *UploadService {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &UploadService{
		store:     store,
		auditRepo: auditRepo,
		logger:    logger,
		maxSize:   maxSize,
		now:       time.Now,
		newID:     uuid.New,
	}
}

// SetClock replaces the time source
func (s *UploadService) SetClock(now func() time.Time) {
	s.now = now
}

// MaxSize returns the per-file limit in bytes
func (s *UploadService) MaxSize() int64 {
	return s.maxSize
}

// Constraints returns the accepted sizes and types
func (s *UploadService) Constraints() Constraints {
	types := make([]string, 0, len(allowed))
	for t := range allowed {
		types = append(types, t)
	}
	sort.Strings(types)
	return Constraints{
		MaxFileSize:   s.maxSize,
		MaxFileSizeMB: s.maxSize >> 20,
		AllowedTypes:  types,
		UploadPath:    "/uploads/{folder}/{uuid}{ext}",
	}
}

func (s *UploadService) tooLarge() error {
	return shared.NewDomainErrorf(CodeTooLarge, "Fichier trop volumineux. Maximum: %dMB", s.maxSize>>20)
}

// DetectType returns the content type the file is stored with. The sniffed
// type wins when it is accepted; the declared type is only trusted when the
// content is an opaque container.
func DetectType(declared string, data []byte) (string, error) {
	declared = baseType(declared)
	if declared == "image/jpg" {
		declared = "image/jpeg"
	}
	sniffed := mimetype.Detect(data)
	for m := sniffed; m != nil; m = m.Parent() {
		t := baseType(m.String())
		if _, ok := allowed[t]; ok {
			return t, nil
		}
		if containers[t] {
			break
		}
	}
	if _, ok := allowed[declared]; ok && containers[baseType(sniffed.String())] {
		return declared, nil
	}
	return "", ErrInvalidType
}

func baseType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// Folder cleans a client supplied folder. An empty folder files uploads by
// year and month.
func Folder(folder string, now time.Time) string {
	f := folderPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(folder)), "-")
	var parts []string
	for _, p := range strings.Split(f, "/") {
		if p = strings.Trim(p, "-"); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return now.Format("2006/01")
	}
	return strings.Join(parts, "/")
}

// extension keeps the file's own extension when it matches the content type
func extension(name, contentType string) string {
	want := allowed[contentType]
	ext := strings.ToLower(path.Ext(name))
	switch {
	case ext == want:
		return ext
	case ext == ".jpeg" && contentType == "image/jpeg":
		return ext
	}
	return want
}

// Upload validates and stores one file under uploads/{folder}/{uuid}{ext}
func (s *UploadService) Upload(ctx context.Context, f File, folder string, by *uuid.UUID) (*Result, error) {
	res, err := s.put(ctx, f, folder)
	if err != nil {
		return nil, err
	}
	appaudit.Write(ctx, s.auditRepo, s.logger,
		audit.New(audit.ActionUpload, audit.EntityMedia, nil, "Fichier téléversé : "+res.Key).
			Classify(audit.CategorySystem, audit.SeverityInfo).
			WithChange("key", nil, res.Key).
			By(by))
	return res, nil
}

func (s *UploadService) put(ctx context.Context, f File, folder string) (*Result, error) {
	if len(f.Data) == 0 {
		return nil, ErrNoFile
	}
	if int64(len(f.Data)) > s.maxSize {
		return nil, s.tooLarge()
	}
	contentType, err := DetectType(f.ContentType, f.Data)
	if err != nil {
		return nil, err
	}

	name := s.newID().String() + extension(f.Name, contentType)
	key := path.Join(Root, Folder(folder, s.now()), name)
	url, err := s.store.Put(ctx, key, contentType, f.Data)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	s.logger.Info("file uploaded",
		zap.String("key", key),
		zap.String("type", contentType),
		zap.Int("size", len(f.Data)))
	return &Result{
		URL:          url,
		Key:          key,
		FileName:     name,
		OriginalName: f.Name,
		Size:         len(f.Data),
		Type:         contentType,
	}, nil
}

// UploadMany stores every valid file and reports the others. It only fails
// when nothing could be stored.
func (s *UploadService) UploadMany(ctx context.Context, files []File, folder string, by *uuid.UUID) (*BatchResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFile
	}
	out := &BatchResult{Files: []Result{}}
	var details []shared.ErrorDetail
	for _, f := range files {
		res, err := s.put(ctx, f, folder)
		if err != nil {
			msg := f.Name + ": " + err.Error()
			out.Errors = append(out.Errors, msg)
			details = append(details, shared.ErrorDetail{Field: "file", Message: msg})
			continue
		}
		out.Files = append(out.Files, *res)
	}
	if len(out.Files) == 0 {
		return nil, shared.NewValidationError("All uploads failed", details...)
	}

	out.Message = fmt.Sprintf("%d fichier(s) téléchargé(s)", len(out.Files))
	if len(out.Errors) > 0 {
		out.Message += fmt.Sprintf(", %d échoué(s)", len(out.Errors))
	}
	entry := audit.New(audit.ActionUpload, audit.EntityMedia, nil, out.Message).
		Classify(audit.CategorySystem, audit.SeverityInfo).
		By(by)
	for i, r := range out.Files {
		entry.WithChange(fmt.Sprintf("key[%d]", i), nil, r.Key)
	}
	appaudit.Write(ctx, s.auditRepo, s.logger, entry)
	return out, nil
}

// KeyFrom accepts either a storage key or a URL ending in one
func KeyFrom(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	i := strings.Index(ref, "/"+Root+"/")
	switch {
	case strings.HasPrefix(ref, Root+"/"):
	case i >= 0:
		ref = ref[i+1:]
	default:
		return "", ErrInvalidKey
	}
	if q := strings.IndexAny(ref, "?#"); q >= 0 {
		ref = ref[:q]
	}
	if strings.Contains(ref, "..") || strings.Contains(ref, `\`) || ref == Root+"/" {
		return "", ErrInvalidKey
	}
	return ref, nil
}

// Delete removes a stored file by key or URL
func (s *UploadService) Delete(ctx context.Context, ref string, by *uuid.UUID) error {
	key, err := KeyFrom(ref)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	appaudit.Write(ctx, s.auditRepo, s.logger,
		audit.New(audit.ActionDelete, audit.EntityMedia, nil, "Fichier supprimé : "+key).
			Classify(audit.CategorySystem, audit.SeverityInfo).
			WithChange("key", key, nil).
			By(by))
	return nil
}
