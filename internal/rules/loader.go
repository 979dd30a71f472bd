// Package rules loads the case-rule configuration and resolves it into
// the canonical ordered rule set the dispatcher scans.
package rules

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fruno/warranty-bot/internal/core"
	"go.uber.org/zap"
)

// structuredRule is the new on-disk rule form. Keywords and senders each
// accept either a list of strings or a single string.
type structuredRule struct {
	Keywords         json.RawMessage `json:"keywords"`
	Senders          json.RawMessage `json:"senders"`
	Response         string          `json:"response"`
	FallbackResponse string          `json:"fallback_response"`
}

// LoadFile reads the rules file and returns the ordered, canonical rule
// set. Dead and malformed entries are reported and excluded; the load
// itself only fails when the file cannot be read or parsed at all.
func LoadFile(path string, logger *zap.Logger) ([]core.CaseRule, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules file: %w", err)
	}
	defer file.Close()
	return Load(file, logger)
}

// Load decodes a rules document. The document is a JSON object keyed by
// case id; key order defines evaluation priority, so decoding walks the
// object token by token instead of going through a map.
func Load(r io.Reader, logger *zap.Logger) ([]core.CaseRule, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("rules document must be a JSON object")
	}

	var rules []core.CaseRule
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse rules: %w", err)
		}
		caseID := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse rule %q: %w", caseID, err)
		}

		rule, err := resolveRule(caseID, raw, logger)
		if err != nil {
			logger.Warn("Skipping malformed case rule",
				zap.String("case_id", caseID),
				zap.Error(err))
			continue
		}

		if rule.Dead() {
			logger.Warn("Skipping dead case rule: no keywords and no senders",
				zap.String("case_id", caseID))
			continue
		}

		rules = append(rules, rule)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	logger.Info("Loaded case rules", zap.Int("count", len(rules)))
	return rules, nil
}

// resolveRule canonicalizes the tagged variant: a bare string is the
// legacy form, equivalent to a structured rule with that one keyword and
// no senders. Downstream code never sees the original form.
func resolveRule(caseID string, raw json.RawMessage, logger *zap.Logger) (core.CaseRule, error) {
	var legacy string
	if err := json.Unmarshal(raw, &legacy); err == nil {
		rule := core.CaseRule{ID: caseID}
		if keyword := strings.TrimSpace(legacy); keyword != "" {
			rule.Keywords = []string{keyword}
		}
		return rule, nil
	}

	var structured structuredRule
	if err := json.Unmarshal(raw, &structured); err != nil {
		return core.CaseRule{}, fmt.Errorf("rule is neither a string nor an object: %w", err)
	}

	keywords, err := stringList(structured.Keywords)
	if err != nil {
		return core.CaseRule{}, fmt.Errorf("invalid keywords: %w", err)
	}
	senders, err := stringList(structured.Senders)
	if err != nil {
		return core.CaseRule{}, fmt.Errorf("invalid senders: %w", err)
	}

	return core.CaseRule{
		ID:               caseID,
		Keywords:         cleanEntries(caseID, "keyword", keywords, logger),
		Senders:          cleanEntries(caseID, "sender", senders, logger),
		Response:         structured.Response,
		FallbackResponse: structured.FallbackResponse,
	}, nil
}

// stringList accepts a JSON list or a single string. Non-string list
// elements are filtered out here, never during matching.
func stringList(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err == nil {
		var kept []string
		for _, element := range elements {
			var s string
			if err := json.Unmarshal(element, &s); err == nil {
				kept = append(kept, s)
			}
		}
		return kept, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("expected a string or a list of strings")
	}
	return []string{single}, nil
}

// cleanEntries drops blank entries at load time so matching never has to
// deal with them.
func cleanEntries(caseID, kind string, entries []string, logger *zap.Logger) []string {
	var cleaned []string
	for _, entry := range entries {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			logger.Warn("Dropping blank rule entry",
				zap.String("case_id", caseID),
				zap.String("kind", kind))
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	return cleaned
}
