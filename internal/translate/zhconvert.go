package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// table names inside the conversion data file
const (
	tableZhHant = "zh2Hant"
	tableZhHans = "zh2Hans"
)

// ZhConvertProvider applies ordered literal substitutions from a named table.
// Later pairs operate on the already-substituted string, so pair order is part
// of the table's meaning. It has no network dependency; the only failure is
// missing table data.
type ZhConvertProvider struct {
	tables map[string][][]string
}

// NewZhConvertProvider loads the conversion tables from a JSON file shaped as
// {"zh2Hant": [["from","to"], ...], "zh2Hans": [...]}. Load problems are
// deferred to Translate, which reports ErrMissingTable per call.
func NewZhConvertProvider(path string) *ZhConvertProvider {
	p := &ZhConvertProvider{}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	var tables map[string][][]string
	if err := json.Unmarshal(data, &tables); err != nil {
		return p
	}
	p.tables = tables
	return p
}

// NewZhConvertProviderFromTables wires in-memory tables, mainly for tests.
func NewZhConvertProviderFromTables(tables map[string][][]string) *ZhConvertProvider {
	return &ZhConvertProvider{tables: tables}
}

// TableForTarget maps a target language to its conversion table name.
// Empty means the target has no local conversion.
func TableForTarget(to string) string {
	switch to {
	case LangZhHant:
		return tableZhHant
	case LangZhHans:
		return tableZhHans
	}
	return ""
}

func (p *ZhConvertProvider) Translate(_ context.Context, _ string, to string, text string) (string, error) {
	name := TableForTarget(to)
	if name == "" {
		return "", fmt.Errorf("%w: no table for target %q", ErrMissingTable, to)
	}
	table, ok := p.tables[name]
	if !ok || len(table) == 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingTable, name)
	}

	for _, pair := range table {
		if len(pair) < 2 {
			continue
		}
		text = strings.ReplaceAll(text, pair[0], pair[1])
	}
	return text, nil
}
