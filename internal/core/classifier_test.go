package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testTable() *CategoryTable {
	return NewCategoryTable([]Category{
		{
			Name: "Accesorios",
			ID:   6,
			Keywords: []KeywordEntry{
				{Keyword: "CABLE", DeviceTypeID: 10},
				{Keyword: "CABLE USB", DeviceTypeID: 11},
			},
		},
		{
			Name: "Cómputo",
			ID:   4,
			Keywords: []KeywordEntry{
				{Keyword: "LAPTOP", DeviceTypeID: 2},
			},
		},
	})
}

// TestClassify_LongestKeywordWins tests that the most specific keyword
// takes precedence regardless of declaration order
func TestClassify_LongestKeywordWins(t *testing.T) {
	result := testTable().Classify("CABLE USB TIPO C")

	assert.Equal(t, "Accesorios", result.CategoryName)
	assert.Equal(t, 6, result.CategoryID)
	assert.Equal(t, "CABLE USB", result.MatchedKeyword, "Longer keyword beats its prefix")
	assert.Equal(t, 11, result.DeviceTypeID)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	result := testTable().Classify("cable usb tipo c")
	assert.Equal(t, "CABLE USB", result.MatchedKeyword)
}

// TestClassify_EqualLengthTie tests that equal-length keywords resolve by
// declaration order
func TestClassify_EqualLengthTie(t *testing.T) {
	table := NewCategoryTable([]Category{
		{Name: "Hogar", ID: 3, Keywords: []KeywordEntry{{Keyword: "HORNO", DeviceTypeID: 5}}},
		{Name: "Cómputo", ID: 4, Keywords: []KeywordEntry{{Keyword: "MOUSE", DeviceTypeID: 6}}},
	})

	result := table.Classify("HORNO Y MOUSE")
	assert.Equal(t, "Hogar", result.CategoryName, "First declared keyword wins the tie")
}

// TestClassify_TieLengthInCharacters tests that keyword length compares
// by character count, so a multibyte keyword does not outrank an
// equal-length ASCII one
func TestClassify_TieLengthInCharacters(t *testing.T) {
	table := NewCategoryTable([]Category{
		{Name: "Móviles", ID: 1, Keywords: []KeywordEntry{{Keyword: "TELEFONO", DeviceTypeID: 1}}},
		{Name: "Accesorios", ID: 6, Keywords: []KeywordEntry{{Keyword: "Nº SERIE", DeviceTypeID: 10}}},
	})

	result := table.Classify("TELEFONO CON Nº SERIE 445")
	assert.Equal(t, "Móviles", result.CategoryName, "Equal character counts resolve by declaration order")
}

func TestClassify_NotFound(t *testing.T) {
	result := testTable().Classify("REFRIGERADORA SAMSUNG")

	assert.Equal(t, CategoryNotFoundName, result.CategoryName)
	assert.Equal(t, CategoryNotFoundID, result.CategoryID)
	assert.Equal(t, DeviceTypeUnknown, result.DeviceTypeID)
	assert.Empty(t, result.MatchedKeyword)
}

// TestClassify_AccentInsensitive tests that accent drift in recognized
// text still matches accented keywords
func TestClassify_AccentInsensitive(t *testing.T) {
	table := NewCategoryTable([]Category{
		{Name: "Móviles", ID: 1, Keywords: []KeywordEntry{{Keyword: "TELÉFONO", DeviceTypeID: 1}}},
	})

	result := table.Classify("TELEFONO SAMSUNG")
	assert.Equal(t, "Móviles", result.CategoryName)

	result = table.Classify("teléfono samsung")
	assert.Equal(t, "Móviles", result.CategoryName)
}

func TestClassify_EmptyText(t *testing.T) {
	result := testTable().Classify("   ")
	assert.Equal(t, CategoryNotFoundID, result.CategoryID)
}

// TestClassify_Deterministic tests that repeated classification of the
// same text always lands in the same category
func TestClassify_Deterministic(t *testing.T) {
	table := testTable()
	first := table.Classify("LAPTOP CON CABLE USB")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, table.Classify("LAPTOP CON CABLE USB"))
	}
}

func TestNewCategoryTable_DropsBlankKeywords(t *testing.T) {
	table := NewCategoryTable([]Category{
		{Name: "Hogar", ID: 3, Keywords: []KeywordEntry{
			{Keyword: "  "},
			{Keyword: "HORNO", DeviceTypeID: 5},
		}},
	})

	result := table.Classify("CUALQUIER COSA")
	assert.Equal(t, CategoryNotFoundID, result.CategoryID, "Blank keyword must not match everything")

	result = table.Classify("HORNO")
	assert.Equal(t, 3, result.CategoryID)
}
