// Package tesseract drives the tesseract executable as a recognition
// engine. The engine's own diagnostics stay out of the operator log.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Engine runs tesseract over a page image via stdin/stdout.
type Engine struct {
	binary    string
	languages string
	logger    *zap.Logger
}

// NewEngine creates the engine. binary defaults to "tesseract" on PATH,
// languages to "spa+eng" (the documents are Spanish-language tickets).
func NewEngine(binary, languages string, logger *zap.Logger) *Engine {
	if binary == "" {
		binary = "tesseract"
	}
	if languages == "" {
		languages = "spa+eng"
	}
	return &Engine{
		binary:    binary,
		languages: languages,
		logger:    logger,
	}
}

// RecognizeImage feeds the image to tesseract and returns the
// transcribed text. Engine stderr is buffered and surfaced only at debug
// level, never on the operator stream.
func (e *Engine) RecognizeImage(ctx context.Context, image []byte) (string, error) {
	cmd := exec.CommandContext(ctx, e.binary, "stdin", "stdout", "-l", e.languages)
	cmd.Stdin = bytes.NewReader(image)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			e.logger.Debug("tesseract diagnostics", zap.String("stderr", stderr.String()))
		}
		return "", fmt.Errorf("tesseract failed: %w", err)
	}
	if stderr.Len() > 0 {
		e.logger.Debug("tesseract diagnostics", zap.String("stderr", stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}
