// Package pdfdoc adapts go-fitz as the document capability: native
// per-page text extraction and page rendering for the recognition pass.
package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// Document implements extraction.NativeExtractor and
// extraction.PageRenderer over PDF bytes.
type Document struct {
	renderDPI float64
	logger    *zap.Logger
}

// NewDocument creates the adapter. renderDPI <= 0 defaults to 144
// (the 2x zoom the recognition pass was tuned for).
func NewDocument(renderDPI float64, logger *zap.Logger) *Document {
	if renderDPI <= 0 {
		renderDPI = 144
	}
	return &Document{
		renderDPI: renderDPI,
		logger:    logger,
	}
}

// ExtractPages returns the embedded text of every page.
func (d *Document) ExtractPages(ctx context.Context, data []byte) ([]string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d: %w", i+1, err)
		}
		pages = append(pages, text)
	}

	return pages, nil
}

// RenderPages rasterizes every page to PNG at the configured DPI.
func (d *Document) RenderPages(ctx context.Context, data []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	images := make([][]byte, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.ImageDPI(i, d.renderDPI)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", i+1, err)
		}
		images = append(images, buf.Bytes())
	}

	d.logger.Debug("Rendered document pages",
		zap.Int("pages", len(images)),
		zap.Float64("dpi", d.renderDPI))
	return images, nil
}
