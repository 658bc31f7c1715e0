// Package matcher implements the declarative, schema-driven AST matcher
// described in §4.1: a pattern tree rooted at a single Element, matched in
// O(matcher nodes + visited children) against a statement subtree, with
// sorted-children merge-join for object attributes instead of per-visit
// hash maps.
package matcher

import "github.com/dashql-run/dashql-core/ast"

// MatchingID names a slot in the Index a matcher node's result is
// recorded under. Discard means "match but do not record" (§4.1).
type MatchingID int

const Discard MatchingID = -1

// Matcher is one node of the declarative pattern tree. Concrete variants
// are the unexported structs below, built via the constructor functions.
type Matcher interface {
	matcherNode()
}

type objectMatcher struct {
	nodeType ast.NodeType // NodeTypeNone means "any object"
	id       MatchingID
	children []*attributeMatcher
}

type arrayMatcher struct {
	id       MatchingID
	children []Matcher
}

type stringMatcher struct{ id MatchingID }
type boolMatcher struct{ id MatchingID }
type ui32Matcher struct{ id MatchingID }
type ui32BitmapMatcher struct{ id MatchingID }

type enumMatcher struct {
	nodeType ast.NodeType
	id       MatchingID
}

type selectByTypeMatcher struct {
	alternatives []Matcher
}

type nodeMatcher struct{ id MatchingID }

type attributeMatcher struct {
	key   ast.AttributeKey
	inner Matcher
}

func (*objectMatcher) matcherNode()       {}
func (*arrayMatcher) matcherNode()        {}
func (*stringMatcher) matcherNode()       {}
func (*boolMatcher) matcherNode()         {}
func (*ui32Matcher) matcherNode()         {}
func (*ui32BitmapMatcher) matcherNode()   {}
func (*enumMatcher) matcherNode()         {}
func (*selectByTypeMatcher) matcherNode() {}
func (*attributeMatcher) matcherNode()    {}
func (*nodeMatcher) matcherNode()         {}

// Object matches a node of the given type (ast.NodeTypeNone for "any
// object") and merge-joins its expected attribute children against the
// node's actual children.
func Object(nodeType ast.NodeType, id MatchingID, children ...*attributeMatcher) Matcher {
	return &objectMatcher{nodeType: nodeType, id: id, children: children}
}

// Array matches a node of type ARRAY and matches the first len(children)
// actual children positionally against children.
func Array(id MatchingID, children ...Matcher) Matcher {
	return &arrayMatcher{id: id, children: children}
}

func String(id MatchingID) Matcher     { return &stringMatcher{id: id} }
func Bool(id MatchingID) Matcher       { return &boolMatcher{id: id} }
func UI32(id MatchingID) Matcher       { return &ui32Matcher{id: id} }
func UI32Bitmap(id MatchingID) Matcher { return &ui32BitmapMatcher{id: id} }

// Enum matches an enum node of the given type, producing its ordinal.
func Enum(nodeType ast.NodeType, id MatchingID) Matcher {
	return &enumMatcher{nodeType: nodeType, id: id}
}

// Node matches any node without a type constraint, recording only its node
// id. Useful for attributes whose shape varies by source form (e.g. a
// qualified name, which may be a STRING_REF, an ARRAY, or an
// OBJECT_SQL_TABLE_REF) and that a caller will re-interpret itself.
func Node(id MatchingID) Matcher { return &nodeMatcher{id: id} }

// SelectByType picks the first alternative whose expected node type equals
// the actual child's type; if none matches, every matching_id referenced
// within alternatives resolves to MISSING.
func SelectByType(alternatives ...Matcher) Matcher {
	return &selectByTypeMatcher{alternatives: alternatives}
}

// Attr wraps any matcher, additionally requiring attribute_key == key. It
// is only meaningful as a child of Object.
func Attr(key ast.AttributeKey, inner Matcher) *attributeMatcher {
	return &attributeMatcher{key: key, inner: inner}
}

// AttrMatcher aliases the type Attr returns, so callers outside this
// package can collect attribute matchers into a slice (e.g. to build a
// shared sub-pattern) before splicing them into Object's variadic list.
type AttrMatcher = attributeMatcher

// expectedType returns the node type a matcher statically requires for
// comparison purposes, or (0, false) if it accepts by category rather
// than exact type (an Object matcher for any object type, or Node).
func expectedType(m Matcher) (ast.NodeType, bool) {
	switch t := m.(type) {
	case *objectMatcher:
		if t.nodeType == ast.NodeTypeNone {
			return 0, false
		}
		return t.nodeType, true
	case *arrayMatcher:
		return ast.NodeTypeArray, true
	case *stringMatcher:
		return ast.NodeTypeStringRef, true
	case *boolMatcher:
		return ast.NodeTypeBool, true
	case *ui32Matcher:
		return ast.NodeTypeUI32, true
	case *ui32BitmapMatcher:
		return ast.NodeTypeUI32Bitmap, true
	case *enumMatcher:
		return t.nodeType, true
	case *attributeMatcher:
		return expectedType(t.inner)
	default:
		return 0, false
	}
}
