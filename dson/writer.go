package dson

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dashql-run/dashql-core/ast"
)

// Mode selects one of the three serialization modes §6.4 mandates.
type Mode int

const (
	// Pretty indents nested objects/arrays for readability.
	Pretty Mode = iota
	// Compact emits no insignificant whitespace.
	Compact
	// DSONOnly skips attributes whose key is below ast.DSONKeysBegin,
	// i.e. structural/statement keys, emitting only DSON options.
	DSONOnly
)

// Writer serializes AST subtrees as JSON, hand-walking the tree rather
// than reflecting over a Go value (there is no Go value — the source is
// the flat ast.Tree), the way the original SAX-style json_writer renders
// nodes directly from the AST.
type Writer struct {
	tree *ast.Tree
	dict *Dictionary
	mode Mode
}

func NewWriter(tree *ast.Tree, dict *Dictionary, mode Mode) *Writer {
	return &Writer{tree: tree, dict: dict, mode: mode}
}

// Write renders the subtree rooted at nodeID as a JSON string.
func (w *Writer) Write(nodeID int) string {
	var b strings.Builder
	w.writeNode(&b, nodeID, 0)
	return b.String()
}

func (w *Writer) indent(b *strings.Builder, depth int) {
	if w.mode != Pretty {
		return
	}
	b.WriteByte('\n')
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func (w *Writer) writeNode(b *strings.Builder, nodeID int, depth int) {
	if nodeID < 0 || nodeID >= len(w.tree.Nodes) {
		b.WriteString("null")
		return
	}
	n := w.tree.Nodes[nodeID]
	switch {
	case n.NodeType == ast.NodeTypeNone:
		b.WriteString("null")
	case n.NodeType == ast.NodeTypeBool:
		b.WriteString(strconv.FormatBool(n.Value != 0))
	case n.NodeType == ast.NodeTypeUI32, n.NodeType == ast.NodeTypeUI32Bitmap:
		b.WriteString(strconv.FormatInt(n.Value, 10))
	case n.NodeType == ast.NodeTypeStringRef:
		writeJSONString(b, w.tree.StringRefText(n))
	case n.NodeType.IsEnum():
		b.WriteString(strconv.FormatInt(n.Value, 10))
	case n.NodeType == ast.NodeTypeArray:
		w.writeArray(b, nodeID, depth)
	case n.NodeType.IsObject():
		w.writeObject(b, nodeID, depth)
	default:
		b.WriteString("null")
	}
}

func (w *Writer) writeArray(b *strings.Builder, nodeID int, depth int) {
	kids := w.tree.Children(nodeID)
	if len(kids) == 0 {
		b.WriteString("[]")
		return
	}
	b.WriteByte('[')
	begin, _ := w.tree.ChildIndices(nodeID)
	for i := range kids {
		if i > 0 {
			b.WriteByte(',')
		}
		w.indent(b, depth+1)
		w.writeNode(b, begin+i, depth+1)
	}
	w.indent(b, depth)
	b.WriteByte(']')
}

func (w *Writer) writeObject(b *strings.Builder, nodeID int, depth int) {
	kids := w.tree.Children(nodeID)
	begin, _ := w.tree.ChildIndices(nodeID)
	b.WriteByte('{')
	first := true
	for i, child := range kids {
		if w.mode == DSONOnly && child.AttributeKey < ast.DSONKeysBegin {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		w.indent(b, depth+1)
		name := w.dict.Name(child.AttributeKey)
		if name == "" {
			name = fmt.Sprintf("key%d", child.AttributeKey)
		}
		writeJSONString(b, camelCase(name))
		b.WriteByte(':')
		if w.mode == Pretty {
			b.WriteByte(' ')
		}
		w.writeNode(b, begin+i, depth+1)
	}
	w.indent(b, depth)
	b.WriteByte('}')
}

func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

// camelCase converts a snake_case identifier to camelCase, treating '_'
// as the sole word separator (§6.4).
func camelCase(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}
