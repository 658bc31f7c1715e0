// Package ast defines the read-only abstract syntax tree model produced by
// the (externally specified) parser: a pre-order, flat array of Node
// records with contiguous children, as described in §3.1 of the design
// spec. This package owns only the node model, the static node-type and
// attribute-key enumerations, and cheap read helpers; every pass that
// interprets nodes (matching, constant propagation, statement analysis)
// lives in its own package.
package ast

// NodeType tags the variant a Node holds. Enum types occupy the open
// range (EnumKeysBegin, ObjectKeysBegin); object types occupy everything
// above ObjectKeysBegin. Both ranges are extended by the concrete grammar
// (see keys.go) but the core only ever compares against the boundaries
// and the handful of object types it interprets directly.
type NodeType uint32

const (
	NodeTypeNone NodeType = iota
	NodeTypeBool
	NodeTypeUI32
	NodeTypeUI32Bitmap
	NodeTypeStringRef
	NodeTypeArray

	// EnumKeysBegin marks the start of the enum node-type range. Concrete
	// enum types (component types, fetch methods, load methods, ...) are
	// declared in keys.go starting just above this value.
	EnumKeysBegin NodeType = 1000

	// ObjectKeysBegin marks the start of the object node-type range.
	// Concrete object types (OBJECT_DASHQL_INPUT, OBJECT_DASHQL_FETCH,
	// ...) are declared in keys.go starting just above this value.
	ObjectKeysBegin NodeType = 2000
)

// IsEnum reports whether t falls in the enum node-type range.
func (t NodeType) IsEnum() bool { return t > EnumKeysBegin && t < ObjectKeysBegin }

// IsObject reports whether t falls in the object node-type range.
func (t NodeType) IsObject() bool { return t > ObjectKeysBegin }

// AttributeKey tags a child's semantic role under its parent object. Zero
// (AttributeKeyNone) is used for array elements and unattributed nodes.
// Keys at or above DSONDynamicKeysBegin were discovered in source text and
// are not part of the static enumeration; see the dson package for the
// dictionary that resolves them back to text.
type AttributeKey uint16

const (
	AttributeKeyNone AttributeKey = 0

	// DSONKeysBegin is the first attribute key reserved for DSON option
	// keys (as opposed to structural/statement attribute keys below it).
	DSONKeysBegin AttributeKey = 500

	// DSONDynamicKeysBegin is the first attribute key assigned to a
	// dynamically discovered (non-enumerated) DSON key. Index i's key is
	// DSONDynamicKeysBegin + i, in order of first appearance (§9 design
	// note on dynamic DSON keys).
	DSONDynamicKeysBegin AttributeKey = 10000
)

// NoParent is the sentinel parent index for the root (and only the root).
const NoParent int32 = -1

// Location is a (byte offset, byte length) span into the original source
// text.
type Location struct {
	Offset uint32
	Length uint32
}

// End returns the exclusive end offset of the location.
func (l Location) End() uint32 { return l.Offset + l.Length }

// Node is a single AST record. See package docs and §3.1 for the field
// semantics and invariants (object children sorted by AttributeKey and
// duplicate-free; children contiguous and disjoint across siblings;
// scalar nodes carry zero ChildrenCount).
type Node struct {
	NodeType      NodeType
	AttributeKey  AttributeKey
	Parent        int32
	ChildrenBegin int32 // for containers: index of first child
	Value         int64 // for scalars: literal value, or packed offset<<32|length for STRING_REF
	ChildrenCount uint32
	Location      Location
}

// IsScalar reports whether n is a leaf scalar (BOOL/UI32/UI32_BITMAP/
// STRING_REF/enum), i.e. has no children and its Value field carries its
// payload.
func (n Node) IsScalar() bool {
	return n.ChildrenCount == 0 && n.NodeType != NodeTypeArray && !n.NodeType.IsObject()
}

// Tree is the flat, pre-order node array the parser produces. Index 0 is
// conventionally the root when non-empty.
type Tree struct {
	Nodes []Node
	// Text is the full original source the Location fields index into.
	Text string
}

// StringRefText returns the source text slice a STRING_REF node's Value
// addresses. Value is interpreted as a packed (offset<<32 | length) pair
// into Text — this keeps STRING_REF nodes self-contained without a side
// table, matching a STRING_REF's own Location normally covering the
// quoted literal while Value addresses the unquoted payload.
func (t Tree) StringRefText(n Node) string {
	offset := uint32(n.Value >> 32)
	length := uint32(n.Value & 0xffffffff)
	if int(offset+length) > len(t.Text) {
		return ""
	}
	return t.Text[offset : offset+length]
}

// LocationText returns the source text a Location spans.
func (t Tree) LocationText(loc Location) string {
	end := loc.End()
	if int(end) > len(t.Text) {
		end = uint32(len(t.Text))
	}
	if int(loc.Offset) > len(t.Text) {
		return ""
	}
	return t.Text[loc.Offset:end]
}

// Children returns the contiguous child slice of node index i.
func (t Tree) Children(i int) []Node {
	n := t.Nodes[i]
	if n.ChildrenCount == 0 {
		return nil
	}
	begin := int(n.ChildrenBegin)
	end := begin + int(n.ChildrenCount)
	if end > len(t.Nodes) {
		end = len(t.Nodes)
	}
	return t.Nodes[begin:end]
}

// ChildIndices returns the contiguous child index range [begin, end) of
// node index i, for callers that need indices rather than values.
func (t Tree) ChildIndices(i int) (begin, end int) {
	n := t.Nodes[i]
	if n.ChildrenCount == 0 {
		return 0, 0
	}
	begin = int(n.ChildrenBegin)
	end = begin + int(n.ChildrenCount)
	return begin, end
}
