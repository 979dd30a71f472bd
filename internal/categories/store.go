// Package categories manages the keyword-to-category table: loading it
// from the JSON file the external editor maintains, validating it against
// the fixed category set, and handing out immutable snapshots.
package categories

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/fruno/warranty-bot/internal/core"
	"go.uber.org/zap"
)

// fileCategory mirrors one category value in the on-disk document.
type fileCategory struct {
	ID       int               `json:"id"`
	Keywords []json.RawMessage `json:"palabras_clave"`
}

type fileKeyword struct {
	Keyword      string `json:"palabra"`
	DeviceTypeID int    `json:"tipo_dispositivo_id"`
}

// namedCategory keeps a decoded category together with its position in
// the file.
type namedCategory struct {
	name string
	fileCategory
}

// Store holds the current category-table snapshot. Reload builds a whole
// new table and swaps it in atomically, so a classification that started
// against the old snapshot keeps reading the old snapshot.
type Store struct {
	path     string
	snapshot atomic.Pointer[core.CategoryTable]
	logger   *zap.Logger
}

// NewStore creates a store and performs the initial load. A missing file
// yields an empty table: every classification then returns the reserved
// "not found" category, which is the documented degraded mode, not an
// error.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		logger: logger,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the latest loaded table. Never nil.
func (s *Store) Snapshot() *core.CategoryTable {
	return s.snapshot.Load()
}

// Reload re-reads the table file and atomically replaces the snapshot.
// The category editor may rewrite the file at any time; classification
// calls between reloads keep working against the previous snapshot.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("Category file not found, using empty table",
				zap.String("path", s.path))
			s.snapshot.Store(core.NewCategoryTable(nil))
			return nil
		}
		return fmt.Errorf("failed to read category file: %w", err)
	}

	decoded, err := decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse category file: %w", err)
	}

	table := core.NewCategoryTable(s.resolve(decoded))
	s.snapshot.Store(table)

	s.logger.Info("Loaded category table",
		zap.String("path", s.path),
		zap.Int("categories", len(table.Categories())))
	return nil
}

// decode walks the document token by token. Key order inside the
// "categorias" object breaks equal-length keyword ties downstream, so
// decoding cannot go through a map.
func decode(r io.Reader) ([]namedCategory, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("category document must be a JSON object")
	}

	var cats []namedCategory
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if keyTok.(string) != "categorias" {
			var skipped json.RawMessage
			if err := dec.Decode(&skipped); err != nil {
				return nil, err
			}
			continue
		}

		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			return nil, fmt.Errorf("categorias must be a JSON object")
		}

		for dec.More() {
			nameTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			cat := namedCategory{name: nameTok.(string)}
			if err := dec.Decode(&cat.fileCategory); err != nil {
				return nil, fmt.Errorf("category %q: %w", cat.name, err)
			}
			cats = append(cats, cat)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return cats, nil
}

// resolve validates category names against the fixed known set and
// upgrades legacy bare-string keywords to entries with the unknown device
// type. File order is preserved into the result. Unknown names are a
// configuration error: reported and skipped, never silently active.
func (s *Store) resolve(decoded []namedCategory) []core.Category {
	var cats []core.Category
	for _, nc := range decoded {
		knownID, ok := core.KnownCategories[nc.name]
		if !ok {
			s.logger.Error("Unknown category name in table, skipping",
				zap.String("category", nc.name))
			continue
		}
		if nc.ID != knownID {
			s.logger.Warn("Category id differs from the fixed set, using fixed id",
				zap.String("category", nc.name),
				zap.Int("file_id", nc.ID),
				zap.Int("fixed_id", knownID))
		}

		cat := core.Category{Name: nc.name, ID: knownID}
		for _, raw := range nc.Keywords {
			entry, ok := resolveKeyword(raw)
			if !ok {
				s.logger.Warn("Dropping malformed keyword entry",
					zap.String("category", nc.name))
				continue
			}
			cat.Keywords = append(cat.Keywords, entry)
		}
		cats = append(cats, cat)
	}
	return cats
}

// resolveKeyword accepts both keyword forms: the legacy bare string
// (device type defaults to unknown) and the object with an explicit
// device-type tag.
func resolveKeyword(raw json.RawMessage) (core.KeywordEntry, bool) {
	var legacy string
	if err := json.Unmarshal(raw, &legacy); err == nil {
		if legacy == "" {
			return core.KeywordEntry{}, false
		}
		return core.KeywordEntry{Keyword: legacy, DeviceTypeID: core.DeviceTypeUnknown}, true
	}

	var kw fileKeyword
	if err := json.Unmarshal(raw, &kw); err != nil || kw.Keyword == "" {
		return core.KeywordEntry{}, false
	}
	if kw.DeviceTypeID == 0 {
		kw.DeviceTypeID = core.DeviceTypeUnknown
	}
	return core.KeywordEntry{Keyword: kw.Keyword, DeviceTypeID: kw.DeviceTypeID}, true
}

// Save writes a table back to disk in the editor's format and swaps the
// in-memory snapshot to match. The slice order becomes the file order, so
// a later reload resolves keyword ties the same way.
func (s *Store) Save(cats []core.Category) error {
	var buf bytes.Buffer
	buf.WriteString(`{"categorias":{`)
	for i, cat := range cats {
		if i > 0 {
			buf.WriteByte(',')
		}

		name, err := json.Marshal(cat.Name)
		if err != nil {
			return fmt.Errorf("failed to encode category name: %w", err)
		}

		fc := fileCategory{ID: cat.ID}
		for _, entry := range cat.Keywords {
			raw, err := json.Marshal(fileKeyword{
				Keyword:      entry.Keyword,
				DeviceTypeID: entry.DeviceTypeID,
			})
			if err != nil {
				return fmt.Errorf("failed to encode keyword entry: %w", err)
			}
			fc.Keywords = append(fc.Keywords, raw)
		}
		value, err := json.Marshal(fc)
		if err != nil {
			return fmt.Errorf("failed to encode category: %w", err)
		}

		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteString("}}")

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "    "); err != nil {
		return fmt.Errorf("failed to encode category file: %w", err)
	}
	if err := os.WriteFile(s.path, out.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write category file: %w", err)
	}

	s.snapshot.Store(core.NewCategoryTable(cats))
	return nil
}
