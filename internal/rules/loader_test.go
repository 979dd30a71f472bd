package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestLoad_LegacyStringForm tests that a bare string rule becomes a
// one-keyword rule
func TestLoad_LegacyStringForm(t *testing.T) {
	doc := `{"caso1": "boleta"}`

	rules, err := Load(strings.NewReader(doc), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "caso1", rules[0].ID)
	assert.Equal(t, []string{"boleta"}, rules[0].Keywords)
	assert.Empty(t, rules[0].Senders)
}

func TestLoad_StructuredForm(t *testing.T) {
	doc := `{
		"caso1": {
			"keywords": ["boleta", "garantía"],
			"senders": ["@fruno.com"],
			"response": "gracias",
			"fallback_response": "no pudimos leer"
		}
	}`

	rules, err := Load(strings.NewReader(doc), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []string{"boleta", "garantía"}, rules[0].Keywords)
	assert.Equal(t, []string{"@fruno.com"}, rules[0].Senders)
	assert.Equal(t, "gracias", rules[0].Response)
	assert.Equal(t, "no pudimos leer", rules[0].FallbackResponse)
}

// TestLoad_OrderPreserved tests that document key order becomes rule
// priority order
func TestLoad_OrderPreserved(t *testing.T) {
	doc := `{"caso3": "c", "caso1": "a", "caso2": "b"}`

	rules, err := Load(strings.NewReader(doc), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, "caso3", rules[0].ID)
	assert.Equal(t, "caso1", rules[1].ID)
	assert.Equal(t, "caso2", rules[2].ID)
}

// TestLoad_DeadRuleExcluded tests that a rule with no keywords and no
// senders is dropped at load time
func TestLoad_DeadRuleExcluded(t *testing.T) {
	doc := `{
		"dead": {"response": "hola"},
		"alive": {"keywords": ["boleta"]}
	}`

	rules, err := Load(strings.NewReader(doc), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "alive", rules[0].ID)
}

func TestLoad_EmptyLegacyStringIsDead(t *testing.T) {
	doc := `{"caso1": "  "}`

	rules, err := Load(strings.NewReader(doc), zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, rules)
}

// TestLoad_MixedListFiltersNonStrings tests that non-string list elements
// are excluded without dropping the rule
func TestLoad_MixedListFiltersNonStrings(t *testing.T) {
	doc := `{"caso1": {"keywords": ["boleta", 42, "garantía"]}}`

	rules, err := Load(strings.NewReader(doc), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []string{"boleta", "garantía"}, rules[0].Keywords)
}

func TestLoad_SingleStringListForm(t *testing.T) {
	doc := `{"caso1": {"keywords": "boleta", "senders": "@fruno.com"}}`

	rules, err := Load(strings.NewReader(doc), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []string{"boleta"}, rules[0].Keywords)
	assert.Equal(t, []string{"@fruno.com"}, rules[0].Senders)
}

func TestLoad_BlankEntriesDropped(t *testing.T) {
	doc := `{"caso1": {"keywords": ["", "  ", "boleta"]}}`

	rules, err := Load(strings.NewReader(doc), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []string{"boleta"}, rules[0].Keywords)
}

// TestLoad_MalformedRuleSkipped tests that one broken rule does not abort
// the whole load
func TestLoad_MalformedRuleSkipped(t *testing.T) {
	doc := `{
		"broken": {"keywords": {"not": "a list"}},
		"ok": "boleta"
	}`

	rules, err := Load(strings.NewReader(doc), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "ok", rules[0].ID)
}

func TestLoad_NotAnObject(t *testing.T) {
	_, err := Load(strings.NewReader(`["caso1"]`), zap.NewNop())
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("/nonexistent/rules.json", zap.NewNop())
	assert.Error(t, err)
}
