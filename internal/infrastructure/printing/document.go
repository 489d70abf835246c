package printing

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/setting"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// IssuerSource supplies the company block printed on every document
type IssuerSource interface {
	Issuer(ctx context.Context) setting.Issuer
}

// DocumentRenderer turns commercial documents into archived PDFs
type DocumentRenderer struct {
	html    HTMLRenderer
	tpl     *template.Template
	issuers IssuerSource
}

var docFuncs = template.FuncMap{
	"mad":   document.FormatMAD,
	"words": document.AmountToWordsFR,
	"qty": func(d decimal.Decimal) string {
		return d.StringFixedBank(2)
	},
	"date": func(t time.Time) string {
		return t.Format("02/01/2006")
	},
	"datep": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("02/01/2006")
	},
	"pct": func(d decimal.Decimal) string {
		return d.String() + " %"
	},
	"rate": func(r int) string {
		return strconv.Itoa(r) + " %"
	},
	"positive": func(d decimal.Decimal) bool {
		return d.IsPositive()
	},
}

// NewDocumentRenderer parses the embedded document template
func NewDocumentRenderer(html HTMLRenderer, issuers IssuerSource) (*DocumentRenderer, error) {
	tpl, err := template.New("document").Funcs(docFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse document template: %w", err)
	}
	return &DocumentRenderer{html: html, tpl: tpl, issuers: issuers}, nil
}

type documentPage struct {
	Company  setting.Issuer
	Doc      *document.Document
	Title    string
	Number   string
	Priced   bool
	Delivery bool
}

// RenderHTML renders the document page without converting it
func (r *DocumentRenderer) RenderHTML(ctx context.Context, d *document.Document) (string, error) {
	return r.renderHTML(r.issuers.Issuer(ctx), d)
}

func (r *DocumentRenderer) renderHTML(issuer setting.Issuer, d *document.Document) (string, error) {
	number := d.Number
	if number == "" {
		number = d.DraftNumber
	}
	p := documentPage{
		Company:  issuer,
		Doc:      d,
		Title:    d.Type.Label(),
		Number:   number,
		Priced:   d.Type != document.TypeBonLivraison && d.Type != document.TypePVReception,
		Delivery: d.Type == document.TypeBonLivraison,
	}
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, "document.html", p); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "render document template", err)
	}
	return buf.String(), nil
}

// RenderPDF renders the document to A4 PDF bytes
func (r *DocumentRenderer) RenderPDF(ctx context.Context, d *document.Document) ([]byte, error) {
	issuer := r.issuers.Issuer(ctx)
	body, err := r.renderHTML(issuer, d)
	if err != nil {
		return nil, err
	}
	res, err := r.html.Render(ctx, &RenderRequest{
		HTML:        body,
		PaperSize:   PaperSizeA4,
		Orientation: OrientationPortrait,
		Margins:     DefaultMargins(),
		Title:       d.Type.Label() + " " + d.Number,
		FooterHTML:  footer(issuer),
	})
	if err != nil {
		return nil, err
	}
	return res.PDFData, nil
}

func footer(c setting.Issuer) string {
	line := template.HTMLEscapeString(c.Name)
	for _, part := range []struct{ label, value string }{
		{"ICE", c.ICE}, {"RC", c.RC}, {"IF", c.IF}, {"Patente", c.Patente}, {"RIB", c.RIB},
	} {
		if part.value != "" {
			line += " | " + part.label + " : " + template.HTMLEscapeString(part.value)
		}
	}
	return `<div style="font-size:7px;width:100%;text-align:center;color:#555;">` + line +
		` | Page <span class="pageNumber"></span>/<span class="totalPages"></span></div>`
}
