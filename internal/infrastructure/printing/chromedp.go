package printing

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultRenderTimeout = 30 * time.Second
	defaultMaxTabs       = 2
	// the page footer needs this much bottom margin to stay off the body
	footerMinMarginMM = 10
)

type ChromedpConfig struct {
	DefaultTimeout time.Duration
	// RemoteURL is the DevTools websocket of a running headless Chrome.
	// Empty launches a local browser.
	RemoteURL string
	// NoSandbox is needed when Chrome runs as root inside a container.
	NoSandbox bool
	Scale     float64
	// MaxTabs bounds the renders running at once.
	MaxTabs int
	Logger  *zap.Logger
}

// ChromedpRenderer prints through one shared browser, opening a tab per
// render. The browser starts on the first render and again after it dies.
type ChromedpRenderer struct {
	timeout time.Duration
	scale   float64
	tabs    chan struct{}
	log     *zap.Logger

	allocCtx   context.Context
	closeAlloc context.CancelFunc

	mu      sync.Mutex
	browser context.Context
	stop    context.CancelFunc
	closed  bool
}

func NewChromedpRenderer(cfg *ChromedpConfig) *ChromedpRenderer {
	var c ChromedpConfig
	if cfg != nil {
		c = *cfg
	}
	log := c.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tabs := c.MaxTabs
	if tabs <= 0 {
		tabs = defaultMaxTabs
	}
	r := &ChromedpRenderer{
		timeout: cmp.Or(c.DefaultTimeout, defaultRenderTimeout),
		scale:   cmp.Or(c.Scale, 1.0),
		tabs:    make(chan struct{}, tabs),
		log:     log.Named("chromedp"),
	}
	if c.RemoteURL != "" {
		r.allocCtx, r.closeAlloc = chromedp.NewRemoteAllocator(context.Background(), c.RemoteURL)
	} else {
		r.allocCtx, r.closeAlloc = chromedp.NewExecAllocator(context.Background(), execOptions(c.NoSandbox)...)
	}
	return r
}

func execOptions(noSandbox bool) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if noSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

// browserContext returns the running browser, starting one when there is
// none or the previous one has gone away.
func (r *ChromedpRenderer) browserContext() (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, NewRenderError(ErrCodeRenderFailed, "renderer closed", nil)
	}
	if r.browser != nil && r.browser.Err() == nil {
		return r.browser, nil
	}

	ctx, stop := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.log.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			r.log.Warn(fmt.Sprintf(format, args...))
		}),
	)
	if err := chromedp.Run(ctx); err != nil {
		stop()
		return nil, NewRenderError(ErrCodeRenderFailed, "start browser", err)
	}
	r.browser, r.stop = ctx, stop
	r.log.Info("Browser started")
	return ctx, nil
}

// Render prints req in a fresh tab. It waits for a free tab within the
// request timeout.
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	started := time.Now()
	timeout := cmp.Or(req.Timeout, r.timeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case r.tabs <- struct{}{}:
		defer func() { <-r.tabs }()
	case <-ctx.Done():
		return nil, NewRenderError(ErrCodeBusy, "no free browser tab", ctx.Err())
	}

	browser, err := r.browserContext()
	if err != nil {
		return nil, err
	}
	tab, closeTab := chromedp.NewContext(browser)
	defer closeTab()
	defer context.AfterFunc(ctx, closeTab)()

	var pdf []byte
	err = chromedp.Run(tab,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, wrapHTML(req)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := r.printParams(req).Do(ctx)
			pdf = data
			return err
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout, fmt.Sprintf("render timed out after %s", timeout), err)
		}
		if ctx.Err() != nil {
			return nil, NewRenderError(ErrCodeRenderTimeout, "render cancelled", err)
		}
		r.log.Error("Print to PDF failed", zap.String("title", req.Title), zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "print to PDF", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "chrome returned an empty PDF", nil)
	}

	res := &RenderResult{PDFData: pdf, PageCount: pageCount(pdf), Duration: time.Since(started)}
	r.log.Debug("PDF rendered",
		zap.String("title", req.Title),
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", res.PageCount),
		zap.Duration("took", res.Duration))
	return res, nil
}

func (r *ChromedpRenderer) printParams(req *RenderRequest) *page.PrintToPDFParams {
	w, h, _ := req.PaperSize.sheet()
	m := req.Margins
	p := page.PrintToPDF().
		WithPrintBackground(true).
		WithScale(r.scale).
		WithPaperWidth(inches(w)).
		WithPaperHeight(inches(h)).
		WithLandscape(req.Orientation == OrientationLandscape).
		WithMarginTop(inches(float64(m.Top))).
		WithMarginRight(inches(float64(m.Right))).
		WithMarginBottom(inches(float64(m.Bottom))).
		WithMarginLeft(inches(float64(m.Left)))
	if req.FooterHTML != "" {
		p = p.WithDisplayHeaderFooter(true).
			WithHeaderTemplate("<span></span>").
			WithFooterTemplate(req.FooterHTML).
			WithMarginBottom(inches(float64(max(m.Bottom, footerMinMarginMM))))
	}
	return p
}

// Close shuts the browser down. Renders after Close fail.
func (r *ChromedpRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	var err error
	if r.browser != nil {
		err = chromedp.Cancel(r.browser)
		r.stop()
	}
	r.closeAlloc()
	return err
}

// wrapHTML completes a fragment into a UTF-8 page; full documents pass
// through.
func wrapHTML(req *RenderRequest) string {
	head := strings.ToLower(req.HTML[:min(len(req.HTML), 512)])
	if strings.Contains(head, "<!doctype") || strings.Contains(head, "<html") {
		return req.HTML
	}
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
	if req.Title != "" {
		b.WriteString("<title>" + html.EscapeString(req.Title) + "</title>")
	}
	b.WriteString("</head><body>")
	b.WriteString(req.HTML)
	b.WriteString("</body></html>")
	return b.String()
}

func inches(mm float64) float64 { return mm / 25.4 }

// pageCount counts /Type /Page objects, at least one.
func pageCount(pdf []byte) int {
	n := bytes.Count(pdf, []byte("/Type /Page")) - bytes.Count(pdf, []byte("/Type /Pages"))
	return max(n, 1)
}

var _ HTMLRenderer = (*ChromedpRenderer)(nil)
