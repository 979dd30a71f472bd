package extraction

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fruno/warranty-bot/internal/core"
	"github.com/fruno/warranty-bot/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeNative struct {
	pages []string
	err   error
	delay time.Duration
}

func (f *fakeNative) ExtractPages(ctx context.Context, data []byte) ([]string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.pages, f.err
}

type fakeRenderer struct {
	units [][]byte
	err   error
}

func (f *fakeRenderer) RenderPages(ctx context.Context, data []byte) ([][]byte, error) {
	return f.units, f.err
}

// fakeEngine transcribes unit payloads verbatim; payloads starting with
// "fail:" become errors.
type fakeEngine struct{}

func (fakeEngine) RecognizeImage(ctx context.Context, image []byte) (string, error) {
	s := string(image)
	if strings.HasPrefix(s, "fail:") {
		return "", fmt.Errorf("%s", strings.TrimPrefix(s, "fail:"))
	}
	return s, nil
}

func newTestOrchestrator(native NativeExtractor, renderer PageRenderer, opts Options) *Orchestrator {
	return NewOrchestrator(native, renderer, fakeEngine{}, utils.NewTextProcessor(zap.NewNop()), opts, zap.NewNop())
}

func pdfAttachment() *core.Attachment {
	return &core.Attachment{Filename: "boleta.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}
}

// TestExtract_NativeAccepted tests the happy path: enough pages with
// enough native text, no recognition pass
func TestExtract_NativeAccepted(t *testing.T) {
	page := strings.Repeat("texto de boleta ", 10)
	native := &fakeNative{pages: []string{page, page}}
	o := newTestOrchestrator(native, &fakeRenderer{err: fmt.Errorf("must not render")}, Options{})

	result := o.Extract(context.Background(), pdfAttachment())

	require.True(t, result.Success)
	assert.Equal(t, core.StrategyNative, result.Strategy)
	assert.Contains(t, result.Text, "texto de boleta")
	assert.Empty(t, result.UnitFailures)
}

// TestExtract_InsufficientNativeFallsBack tests the quality gate: sparse
// native text triggers the recognition pass
func TestExtract_InsufficientNativeFallsBack(t *testing.T) {
	native := &fakeNative{pages: []string{"x", "y", "z"}}
	renderer := &fakeRenderer{units: [][]byte{[]byte("pagina uno"), []byte("pagina dos")}}
	o := newTestOrchestrator(native, renderer, Options{})

	result := o.Extract(context.Background(), pdfAttachment())

	require.True(t, result.Success)
	assert.Equal(t, core.StrategyRecognition, result.Strategy)
	assert.Contains(t, result.Text, "pagina uno")
	assert.Contains(t, result.Text, "pagina dos")
}

// TestExtract_PartialCoverageBelowThreshold tests that one empty page out
// of three fails the 80% coverage gate
func TestExtract_PartialCoverageBelowThreshold(t *testing.T) {
	full := strings.Repeat("contenido ", 10)
	native := &fakeNative{pages: []string{full, full, ""}}
	renderer := &fakeRenderer{units: [][]byte{[]byte("reconocido")}}
	o := newTestOrchestrator(native, renderer, Options{})

	result := o.Extract(context.Background(), pdfAttachment())

	require.True(t, result.Success)
	assert.Equal(t, core.StrategyRecognition, result.Strategy, "2/3 coverage is below the 0.8 gate")
}

// TestExtract_NativeTimeout tests that a slow native attempt is abandoned
// and the recognition pass takes over
func TestExtract_NativeTimeout(t *testing.T) {
	page := strings.Repeat("texto ", 20)
	native := &fakeNative{pages: []string{page}, delay: 200 * time.Millisecond}
	renderer := &fakeRenderer{units: [][]byte{[]byte("desde imagen")}}
	o := newTestOrchestrator(native, renderer, Options{NativeTimeout: 20 * time.Millisecond})

	result := o.Extract(context.Background(), pdfAttachment())

	require.True(t, result.Success)
	assert.Equal(t, core.StrategyRecognition, result.Strategy)
	assert.NotContains(t, result.Text, "texto", "Timed-out native output must be discarded")
}

func TestExtract_NativeErrorFallsBack(t *testing.T) {
	native := &fakeNative{err: fmt.Errorf("corrupt document")}
	renderer := &fakeRenderer{units: [][]byte{[]byte("rescatado")}}
	o := newTestOrchestrator(native, renderer, Options{})

	result := o.Extract(context.Background(), pdfAttachment())

	require.True(t, result.Success)
	assert.Equal(t, core.StrategyRecognition, result.Strategy)
}

// TestExtract_UnitFailureIsolated tests that one failing unit is recorded
// while the others still contribute, in index order
func TestExtract_UnitFailureIsolated(t *testing.T) {
	native := &fakeNative{pages: nil}
	renderer := &fakeRenderer{units: [][]byte{
		[]byte("primera"),
		[]byte("fail:unreadable page"),
		[]byte("tercera"),
	}}
	o := newTestOrchestrator(native, renderer, Options{ParallelUnits: 3})

	result := o.Extract(context.Background(), pdfAttachment())

	require.True(t, result.Success)
	require.Len(t, result.UnitFailures, 1)
	assert.Equal(t, 1, result.UnitFailures[0].Unit)
	assert.Equal(t, "unreadable page", result.UnitFailures[0].Reason)

	first := strings.Index(result.Text, "primera")
	third := strings.Index(result.Text, "tercera")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, third, first, "Unit output combines in index order")
}

// TestExtract_AllUnitsFail tests that total recognition failure yields a
// failed result, never an error
func TestExtract_AllUnitsFail(t *testing.T) {
	native := &fakeNative{pages: nil}
	renderer := &fakeRenderer{units: [][]byte{
		[]byte("fail:a"),
		[]byte("fail:b"),
	}}
	o := newTestOrchestrator(native, renderer, Options{})

	result := o.Extract(context.Background(), pdfAttachment())

	assert.False(t, result.Success)
	assert.Equal(t, core.StrategyNone, result.Strategy)
	assert.Len(t, result.UnitFailures, 2)
}

// TestExtract_ImageSkipsNative tests that an image attachment goes
// straight to recognition as a single unit
func TestExtract_ImageSkipsNative(t *testing.T) {
	native := &fakeNative{err: fmt.Errorf("must not be called for images")}
	renderer := &fakeRenderer{err: fmt.Errorf("must not render images")}
	o := newTestOrchestrator(native, renderer, Options{})

	att := &core.Attachment{
		Filename:    "boleta.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("foto de boleta"),
	}
	result := o.Extract(context.Background(), att)

	require.True(t, result.Success)
	assert.Equal(t, core.StrategyRecognition, result.Strategy)
	assert.Contains(t, result.Text, "foto de boleta")
}

func TestExtract_UnsupportedContentType(t *testing.T) {
	o := newTestOrchestrator(&fakeNative{}, &fakeRenderer{}, Options{})

	att := &core.Attachment{Filename: "nota.txt", ContentType: "text/plain", Data: []byte("hola")}
	result := o.Extract(context.Background(), att)

	assert.False(t, result.Success)
	assert.Equal(t, core.StrategyNone, result.Strategy)
}

func TestExtract_RenderFailure(t *testing.T) {
	native := &fakeNative{pages: nil}
	renderer := &fakeRenderer{err: fmt.Errorf("broken pdf")}
	o := newTestOrchestrator(native, renderer, Options{})

	result := o.Extract(context.Background(), pdfAttachment())
	assert.False(t, result.Success)
}

// TestExtract_ParallelMatchesSequential tests that parallelism does not
// change the combined output
func TestExtract_ParallelMatchesSequential(t *testing.T) {
	units := [][]byte{[]byte("uno"), []byte("dos"), []byte("tres"), []byte("cuatro")}
	renderer := &fakeRenderer{units: units}

	sequential := newTestOrchestrator(&fakeNative{}, renderer, Options{ParallelUnits: 1}).
		Extract(context.Background(), pdfAttachment())
	parallel := newTestOrchestrator(&fakeNative{}, renderer, Options{ParallelUnits: 4}).
		Extract(context.Background(), pdfAttachment())

	assert.Equal(t, sequential.Text, parallel.Text)
}
