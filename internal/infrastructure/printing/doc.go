// Package printing renders commercial documents to PDF.
//
// Documents are laid out with an embedded html/template page and printed
// by a headless Chrome driven through chromedp. The renderer either
// launches Chrome locally or attaches to a remote instance:
//
//	chrome := NewChromedpRenderer(&ChromedpConfig{RemoteURL: "ws://chrome:9222"})
//	docs, err := NewDocumentRenderer(chrome, settings)
//	pdf, err := docs.RenderPDF(ctx, doc)
package printing
