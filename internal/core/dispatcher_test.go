package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestDispatcher_FirstMatchWins tests that evaluation stops at the first
// matching rule in configured order
func TestDispatcher_FirstMatchWins(t *testing.T) {
	rules := []CaseRule{
		{ID: "caso1", Keywords: []string{"boleta"}},
		{ID: "caso2", Keywords: []string{"boleta", "garantía"}},
	}
	d := NewDispatcher(rules, zap.NewNop())

	result := d.Dispatch("Boleta de garantía", "x@y.com")
	require.NotNil(t, result)
	assert.Equal(t, "caso1", result.CaseID, "Both rules match; the first configured wins")
	assert.False(t, result.DispatchedAt.IsZero())
}

// TestDispatcher_OrderChangesOutcome tests that reordering the same rules
// changes which case an email lands in
func TestDispatcher_OrderChangesOutcome(t *testing.T) {
	a := CaseRule{ID: "caso1", Keywords: []string{"boleta"}}
	b := CaseRule{ID: "caso2", Keywords: []string{"garantía"}}

	first := NewDispatcher([]CaseRule{a, b}, zap.NewNop()).
		Dispatch("boleta de garantía", "x@y.com")
	second := NewDispatcher([]CaseRule{b, a}, zap.NewNop()).
		Dispatch("boleta de garantía", "x@y.com")

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, "caso1", first.CaseID)
	assert.Equal(t, "caso2", second.CaseID)
}

func TestDispatcher_NoMatch(t *testing.T) {
	rules := []CaseRule{
		{ID: "caso1", Keywords: []string{"boleta"}},
	}
	d := NewDispatcher(rules, zap.NewNop())

	assert.Nil(t, d.Dispatch("consulta general", "x@y.com"))
}

func TestDispatcher_LaterRuleReachable(t *testing.T) {
	rules := []CaseRule{
		{ID: "caso1", Keywords: []string{"boleta"}, Senders: []string{"@fruno.com"}},
		{ID: "caso2", Keywords: []string{"boleta"}},
	}
	d := NewDispatcher(rules, zap.NewNop())

	result := d.Dispatch("boleta adjunta", "ana@gmail.com")
	require.NotNil(t, result)
	assert.Equal(t, "caso2", result.CaseID, "First rule fails its sender check, second takes it")
}

func TestDispatcher_RuleLookup(t *testing.T) {
	rules := []CaseRule{
		{ID: "caso1", Keywords: []string{"boleta"}, Response: "gracias"},
	}
	d := NewDispatcher(rules, zap.NewNop())

	rule, ok := d.Rule("caso1")
	require.True(t, ok)
	assert.Equal(t, "gracias", rule.Response)

	_, ok = d.Rule("caso99")
	assert.False(t, ok)
}
