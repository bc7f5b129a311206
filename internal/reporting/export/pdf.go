package export

import (
	"context"
	"errors"
	"fmt"
)

// ErrRendererMissing is returned when no PDF backend is configured.
var ErrRendererMissing = errors.New("pdf exporter not initialised")

// Renderer turns a report payload into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, payload PDFPayload) ([]byte, error)
}

// HTMLConverter converts an HTML document into a PDF. report.Client
// satisfies it through Gotenberg.
type HTMLConverter interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// HTMLRenderer prints BuildHTML output through an HTMLConverter.
type HTMLRenderer struct {
	Converter HTMLConverter
}

// Render implements Renderer.
func (r HTMLRenderer) Render(ctx context.Context, payload PDFPayload) ([]byte, error) {
	if r.Converter == nil {
		return nil, ErrRendererMissing
	}
	return r.Converter.RenderHTML(ctx, BuildHTML(payload))
}

// PDFExporter renders report PDFs through the configured backend.
type PDFExporter struct {
	Renderer Renderer
}

// NewPDFExporter wires an exporter around renderer.
func NewPDFExporter(renderer Renderer) *PDFExporter {
	return &PDFExporter{Renderer: renderer}
}

// RenderProfile produces the PDF for payload.
func (p *PDFExporter) RenderProfile(ctx context.Context, payload PDFPayload) ([]byte, error) {
	if p == nil || p.Renderer == nil {
		return nil, ErrRendererMissing
	}
	data, err := p.Renderer.Render(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("export: render pdf: %w", err)
	}
	return data, nil
}

// LocaleRouter sends right-to-left reports to RTL and every other report to
// Default. A nil RTL keeps all reports on Default.
type LocaleRouter struct {
	Default Renderer
	RTL     Renderer
}

// Render implements Renderer.
func (r LocaleRouter) Render(ctx context.Context, payload PDFPayload) ([]byte, error) {
	target := r.Default
	if r.RTL != nil && payload.Formatter.RTL() {
		target = r.RTL
	}
	if target == nil {
		return nil, ErrRendererMissing
	}
	return target.Render(ctx, payload)
}
