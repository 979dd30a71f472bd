package core

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category ids the classifier knows about. The table loader rejects any
// other name: an unknown category in the file is a configuration error,
// not a silently-ignored entry.
var KnownCategories = map[string]int{
	"Móviles":            1,
	"Hogar":              3,
	"Cómputo":            4,
	"Desconocido":        5,
	"Accesorios":         6,
	"Transporte":         7,
	"Seguridad":          8,
	"Entretenimiento":    10,
	"Telecomunicaciones": 11,
	"No encontrado":      12,
}

// Reserved classification outcomes.
const (
	CategoryNotFoundName = "No encontrado"
	CategoryNotFoundID   = 12

	DeviceTypeUnknown  = 7
	DeviceTypeNotFound = 36
)

// tableEntry is one flattened keyword prepared for matching.
type tableEntry struct {
	keyword      string // folded for matching
	original     string // as declared
	categoryName string
	categoryID   int
	deviceTypeID int
}

// CategoryTable is an immutable classification snapshot: categories in
// declaration order with their keywords flattened and sorted longest
// first. Safe for concurrent use; reloads swap in a new table.
type CategoryTable struct {
	categories []Category
	entries    []tableEntry
}

// NewCategoryTable builds a table from categories in declaration order.
// Blank keywords are dropped. Equal-length keywords keep declaration
// order, which makes equal-length ties deterministic: first declared wins.
func NewCategoryTable(categories []Category) *CategoryTable {
	t := &CategoryTable{categories: categories}

	for _, cat := range categories {
		for _, entry := range cat.Keywords {
			keyword := foldForMatch(entry.Keyword)
			if keyword == "" {
				continue
			}
			t.entries = append(t.entries, tableEntry{
				keyword:      keyword,
				original:     strings.TrimSpace(entry.Keyword),
				categoryName: cat.Name,
				categoryID:   cat.ID,
				deviceTypeID: entry.DeviceTypeID,
			})
		}
	}

	// Longest keyword first, measured in characters rather than bytes
	// so multibyte keywords rank by visible length. Stable so
	// declaration order breaks equal-length ties.
	sort.SliceStable(t.entries, func(i, j int) bool {
		return utf8.RuneCountInString(t.entries[i].keyword) > utf8.RuneCountInString(t.entries[j].keyword)
	})

	return t
}

// Categories returns the categories in declaration order.
func (t *CategoryTable) Categories() []Category {
	return t.categories
}

// Classify assigns a category to extracted text: case- and
// accent-insensitive substring search, longest configured keyword wins
// regardless of which category owns it. Pure function of (text, table):
// identical inputs always yield identical output.
func (t *CategoryTable) Classify(text string) ClassificationResult {
	normalized := foldForMatch(text)
	if normalized != "" {
		for _, entry := range t.entries {
			if strings.Contains(normalized, entry.keyword) {
				return ClassificationResult{
					CategoryName:   entry.categoryName,
					CategoryID:     entry.categoryID,
					DeviceTypeID:   entry.deviceTypeID,
					MatchedKeyword: entry.original,
				}
			}
		}
	}

	return ClassificationResult{
		CategoryName: CategoryNotFoundName,
		CategoryID:   CategoryNotFoundID,
		DeviceTypeID: DeviceTypeUnknown,
	}
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldForMatch upper-cases and strips diacritics so that recognition
// output with accent drift ("MOVIL" for "MÓVIL") still matches.
func foldForMatch(s string) string {
	folded, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		folded = s
	}
	return strings.ToUpper(strings.TrimSpace(folded))
}
