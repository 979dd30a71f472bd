package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

var (
	spaceRuns  = regexp.MustCompile(`[ \t]+`)
	blankLines = regexp.MustCompile(`\n\s*\n+`)
	trailingWS = regexp.MustCompile(`[ \t]+\n`)
)

// TextProcessor normalizes and bounds text coming out of the extraction
// pipeline before it reaches field parsing and classification.
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor.
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{logger: logger}
}

// NormalizeRecognized cleans up recognition-pass output: collapses runs
// of spaces, strips trailing whitespace and squeezes blank-line runs.
// Line breaks are kept — the ticket field patterns anchor on them.
func (tp *TextProcessor) NormalizeRecognized(text string) string {
	if text == "" {
		return text
	}
	normalized := spaceRuns.ReplaceAllString(text, " ")
	normalized = trailingWS.ReplaceAllString(normalized, "\n")
	normalized = blankLines.ReplaceAllString(normalized, "\n")
	return strings.TrimSpace(normalized)
}

// SanitizeUTF8 drops invalid UTF-8 sequences. Recognition engines
// occasionally emit broken bytes on low-quality scans.
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(text[i:]); size == 1 {
				continue
			}
		}
		result = append(result, r)
	}

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(string(result))))

	return string(result)
}

// Truncate bounds text to maxSize bytes without splitting a UTF-8
// sequence.
func (tp *TextProcessor) Truncate(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)))

	return truncated
}

// Process sanitizes, normalizes and bounds text in one pass.
func (tp *TextProcessor) Process(text string, maxSize int) string {
	return tp.Truncate(tp.NormalizeRecognized(tp.SanitizeUTF8(text)), maxSize)
}
