// Package extraction implements the resilient text-extraction pipeline:
// a budgeted native fast path with a quality gate, falling back to a
// per-unit recognition pass with failure isolation.
package extraction

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fruno/warranty-bot/internal/core"
	"github.com/fruno/warranty-bot/internal/utils"
	"go.uber.org/zap"
)

// NativeExtractor pulls embedded text out of a digitally generated
// document, one entry per page.
type NativeExtractor interface {
	ExtractPages(ctx context.Context, data []byte) ([]string, error)
}

// PageRenderer rasterizes a document into one image per page for the
// recognition pass.
type PageRenderer interface {
	RenderPages(ctx context.Context, data []byte) ([][]byte, error)
}

// RecognitionEngine derives text from a rendered page image.
type RecognitionEngine interface {
	RecognizeImage(ctx context.Context, image []byte) (string, error)
}

// Options tune the orchestrator's gating and fallback behavior.
type Options struct {
	// NativeTimeout is the hard wall-clock budget for the native
	// attempt. Exceeding it discards the attempt entirely.
	NativeTimeout time.Duration

	// MinPageChars is the minimum trimmed length for a page's native
	// text to count as usable.
	MinPageChars int

	// NativeCoverage is the fraction of pages that must carry usable
	// native text for the native path to be accepted.
	NativeCoverage float64

	// ParallelUnits bounds how many recognition units run at once.
	// Results combine by index, so parallelism never changes output.
	ParallelUnits int
}

// Orchestrator runs attachments through the two-tier strategy chain.
// It is strategy-agnostic: concrete engines come in through the
// capability interfaces above.
type Orchestrator struct {
	native   NativeExtractor
	renderer PageRenderer
	engine   RecognitionEngine
	text     *utils.TextProcessor
	opts     Options
	logger   *zap.Logger
}

// NewOrchestrator creates an orchestrator. Zero option fields fall back
// to the defaults: 30s budget, 50 chars per page, 80% page coverage,
// sequential units.
func NewOrchestrator(
	native NativeExtractor,
	renderer PageRenderer,
	engine RecognitionEngine,
	text *utils.TextProcessor,
	opts Options,
	logger *zap.Logger,
) *Orchestrator {
	if opts.NativeTimeout <= 0 {
		opts.NativeTimeout = 30 * time.Second
	}
	if opts.MinPageChars <= 0 {
		opts.MinPageChars = 50
	}
	if opts.NativeCoverage <= 0 {
		opts.NativeCoverage = 0.8
	}
	if opts.ParallelUnits <= 0 {
		opts.ParallelUnits = 1
	}
	return &Orchestrator{
		native:   native,
		renderer: renderer,
		engine:   engine,
		text:     text,
		opts:     opts,
		logger:   logger,
	}
}

// Extract runs one attachment through the strategy chain and returns the
// result with provenance. It never returns an error: every failure mode
// ends in a result with Success=false.
func (o *Orchestrator) Extract(ctx context.Context, att *core.Attachment) *core.ExtractionResult {
	start := time.Now()
	result := &core.ExtractionResult{Strategy: core.StrategyNone}

	if isDocument(att) {
		if text, ok := o.tryNative(ctx, att); ok {
			result.Text = text
			result.Strategy = core.StrategyNative
			result.Success = true
			result.Elapsed = time.Since(start)
			return result
		}
	}

	units, err := o.units(ctx, att)
	if err != nil {
		o.logger.Warn("Could not prepare recognition units",
			zap.String("filename", att.Filename),
			zap.Error(err))
		result.Elapsed = time.Since(start)
		return result
	}

	text, failures := o.recognizeUnits(ctx, units)
	result.UnitFailures = failures
	result.Elapsed = time.Since(start)

	if strings.TrimSpace(text) == "" {
		return result
	}

	result.Text = o.text.Process(text, 0)
	result.Strategy = core.StrategyRecognition
	result.Success = true
	return result
}

// tryNative attempts native extraction under the hard budget and applies
// the quality gate. A timed-out attempt is abandoned: the goroutine runs
// to completion but its output is discarded, never partially committed.
func (o *Orchestrator) tryNative(ctx context.Context, att *core.Attachment) (string, bool) {
	type nativeResult struct {
		pages []string
		err   error
	}
	resultCh := make(chan nativeResult, 1)

	go func() {
		pages, err := o.native.ExtractPages(ctx, att.Data)
		resultCh <- nativeResult{pages: pages, err: err}
	}()

	timer := time.NewTimer(o.opts.NativeTimeout)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		if res.err != nil {
			o.logger.Warn("Native extraction failed, falling back",
				zap.String("filename", att.Filename),
				zap.Error(res.err))
			return "", false
		}
		return o.gateNative(att.Filename, res.pages)
	case <-timer.C:
		o.logger.Warn("Native extraction exceeded budget, falling back",
			zap.String("filename", att.Filename),
			zap.Duration("budget", o.opts.NativeTimeout))
		return "", false
	}
}

// gateNative accepts native output only when enough pages carry
// non-trivial text. Below-threshold output is insufficient, not success.
func (o *Orchestrator) gateNative(filename string, pages []string) (string, bool) {
	if len(pages) == 0 {
		return "", false
	}

	usable := 0
	var joined strings.Builder
	for _, page := range pages {
		if len(strings.TrimSpace(page)) >= o.opts.MinPageChars {
			usable++
		}
		joined.WriteString(page)
		joined.WriteString("\n")
	}

	coverage := float64(usable) / float64(len(pages))
	if coverage < o.opts.NativeCoverage {
		o.logger.Info("Native text below quality threshold, falling back",
			zap.String("filename", filename),
			zap.Int("usable_pages", usable),
			zap.Int("total_pages", len(pages)))
		return "", false
	}

	return o.text.Process(joined.String(), 0), true
}

// units prepares the independent recognition units: rendered pages for a
// document, the image itself for an image attachment.
func (o *Orchestrator) units(ctx context.Context, att *core.Attachment) ([][]byte, error) {
	if isDocument(att) {
		return o.renderer.RenderPages(ctx, att.Data)
	}
	if isImage(att) {
		return [][]byte{att.Data}, nil
	}
	return nil, fmt.Errorf("unsupported content type %q", att.ContentType)
}

// recognizeUnits runs the recognition engine over every unit. Units are
// independent: one failure is recorded and skipped, the rest still
// contribute. Output is combined by unit index, so the configured
// parallelism never changes the result.
func (o *Orchestrator) recognizeUnits(ctx context.Context, units [][]byte) (string, []core.UnitFailure) {
	texts := make([]string, len(units))
	errs := make([]error, len(units))

	var wg sync.WaitGroup
	sem := make(chan struct{}, o.opts.ParallelUnits)
	for i := range units {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			texts[i], errs[i] = o.engine.RecognizeImage(ctx, units[i])
		}(i)
	}
	wg.Wait()

	var failures []core.UnitFailure
	var combined strings.Builder
	for i := range units {
		if errs[i] != nil {
			failures = append(failures, core.UnitFailure{Unit: i, Reason: errs[i].Error()})
			continue
		}
		if strings.TrimSpace(texts[i]) == "" {
			continue
		}
		if combined.Len() > 0 {
			combined.WriteString("\n\n")
		}
		combined.WriteString(texts[i])
	}

	return combined.String(), failures
}

func isDocument(att *core.Attachment) bool {
	ct := strings.ToLower(att.ContentType)
	return strings.Contains(ct, "application/pdf") ||
		strings.HasSuffix(strings.ToLower(att.Filename), ".pdf")
}

func isImage(att *core.Attachment) bool {
	return strings.HasPrefix(strings.ToLower(att.ContentType), "image/")
}
