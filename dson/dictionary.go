// Package dson implements the DSON attribute key dictionary and a JSON
// writer for AST nodes, per §6.4 of the design spec. DSON keys below
// ast.DSONDynamicKeysBegin are statically enumerated (see staticNames);
// keys at or above it are assigned at parse time, in order of first
// appearance, and recorded here so they can be rendered back to text.
package dson

import (
	"sort"

	"github.com/dashql-run/dashql-core/ast"
)

// staticNames gives every statically enumerated DSON key (ast.AttrDSON*)
// its source-level spelling. Structural/statement keys below
// ast.DSONKeysBegin are not DSON options and are never looked up here.
var staticNames = map[ast.AttributeKey]string{
	ast.AttrDSONPosition:       "position",
	ast.AttrDSONPositionRow:    "row",
	ast.AttrDSONPositionColumn: "column",
	ast.AttrDSONPositionWidth:  "width",
	ast.AttrDSONPositionHeight: "height",
	ast.AttrDSONTitle:          "title",
	ast.AttrDSONURL:            "url",
	ast.AttrFlatRow:            "row",
	ast.AttrFlatColumn:         "column",
	ast.AttrFlatWidth:          "width",
	ast.AttrFlatHeight:         "height",
}

// Dictionary is a bidirectional map between attribute keys and their
// textual form, covering both the static enumeration and dynamically
// discovered keys (§3.2 Program.dynamic_dson_keys, §9 design note).
type Dictionary struct {
	dynamicNames []string // index i holds the name for key DSONDynamicKeysBegin+i
	byName       map[string]ast.AttributeKey
}

func NewDictionary() *Dictionary {
	return &Dictionary{byName: make(map[string]ast.AttributeKey)}
}

// Name resolves key to its textual spelling, or "" if unknown.
func (d *Dictionary) Name(key ast.AttributeKey) string {
	if name, ok := staticNames[key]; ok {
		return name
	}
	if key < ast.DSONDynamicKeysBegin {
		return ""
	}
	idx := int(key - ast.DSONDynamicKeysBegin)
	if idx < 0 || idx >= len(d.dynamicNames) {
		return ""
	}
	return d.dynamicNames[idx]
}

// Intern returns the attribute key for name, assigning a new dynamic key
// (DSONDynamicKeysBegin + next index) the first time name is seen. Static
// names are recognized and return their static key instead of minting a
// new dynamic one.
func (d *Dictionary) Intern(name string) ast.AttributeKey {
	for k, n := range staticNames {
		if n == name {
			return k
		}
	}
	if key, ok := d.byName[name]; ok {
		return key
	}
	key := ast.DSONDynamicKeysBegin + ast.AttributeKey(len(d.dynamicNames))
	d.dynamicNames = append(d.dynamicNames, name)
	d.byName[name] = key
	return key
}

// DynamicKeys returns every dynamically interned key in order of first
// appearance, i.e. the wire-shape "dynamic dson keys" table of §3.2.
func (d *Dictionary) DynamicKeys() []ast.AttributeKey {
	keys := make([]ast.AttributeKey, len(d.dynamicNames))
	for i := range d.dynamicNames {
		keys[i] = ast.DSONDynamicKeysBegin + ast.AttributeKey(i)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
