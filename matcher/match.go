package matcher

import "github.com/dashql-run/dashql-core/ast"

// Status classifies how a single matching_id resolved.
type Status int

const (
	Missing Status = iota
	TypeMismatch
	Matched
)

// NodeMatch is one entry of a match Index.
type NodeMatch struct {
	Status Status
	NodeID int
	Data   any
}

// Index maps matching_id to its NodeMatch, plus whether every referenced
// matching_id resolved to Matched (§4.1 "is_full_match").
type Index struct {
	entries     map[MatchingID]NodeMatch
	isFullMatch bool
}

// Get returns the NodeMatch recorded for id, or the zero value (Status
// Missing) if id was never visited.
func (ix Index) Get(id MatchingID) NodeMatch {
	if ix.entries == nil {
		return NodeMatch{Status: Missing}
	}
	return ix.entries[id]
}

func (ix Index) IsFullMatch() bool { return ix.isFullMatch }

// SelectAlt returns whichever of a or b actually resolved to Matched,
// preferring a, enabling "either nested position attribute or flat
// position attribute" patterns (§4.1).
func SelectAlt(ix Index, a, b MatchingID) NodeMatch {
	if m := ix.Get(a); m.Status == Matched {
		return m
	}
	return ix.Get(b)
}

type matchState struct {
	tree    *ast.Tree
	entries map[MatchingID]NodeMatch
	full    bool
}

// Match runs matcher m against the subtree rooted at rootNodeID and
// returns the resulting Index.
func Match(tree *ast.Tree, rootNodeID int, m Matcher) Index {
	st := &matchState{tree: tree, entries: make(map[MatchingID]NodeMatch), full: true}
	st.visit(rootNodeID, m)
	return Index{entries: st.entries, isFullMatch: st.full}
}

func (st *matchState) record(id MatchingID, status Status, nodeID int, data any) {
	if id == Discard {
		return
	}
	if status != Matched {
		st.full = false
	}
	st.entries[id] = NodeMatch{Status: status, NodeID: nodeID, Data: data}
}

// markMissing marks id, and every id reachable from m, as MISSING. Used
// when a SelectByType finds no matching alternative, or a short array
// runs out of actual children.
func (st *matchState) markMissing(m Matcher) {
	switch t := m.(type) {
	case *objectMatcher:
		st.record(t.id, Missing, -1, nil)
		for _, c := range t.children {
			st.markMissing(c)
		}
	case *arrayMatcher:
		st.record(t.id, Missing, -1, nil)
		for _, c := range t.children {
			st.markMissing(c)
		}
	case *stringMatcher:
		st.record(t.id, Missing, -1, nil)
	case *boolMatcher:
		st.record(t.id, Missing, -1, nil)
	case *ui32Matcher:
		st.record(t.id, Missing, -1, nil)
	case *ui32BitmapMatcher:
		st.record(t.id, Missing, -1, nil)
	case *enumMatcher:
		st.record(t.id, Missing, -1, nil)
	case *selectByTypeMatcher:
		for _, alt := range t.alternatives {
			st.markMissing(alt)
		}
	case *attributeMatcher:
		st.markMissing(t.inner)
	case *nodeMatcher:
		st.record(t.id, Missing, -1, nil)
	}
}

func (st *matchState) visit(nodeID int, m Matcher) {
	if nodeID < 0 || nodeID >= len(st.tree.Nodes) {
		st.markMissing(m)
		return
	}
	n := st.tree.Nodes[nodeID]

	switch t := m.(type) {
	case *objectMatcher:
		if t.nodeType != ast.NodeTypeNone && n.NodeType != t.nodeType {
			st.record(t.id, TypeMismatch, nodeID, nil)
			for _, c := range t.children {
				st.markMissing(c)
			}
			return
		}
		st.record(t.id, Matched, nodeID, nodeID)
		st.matchObjectChildren(nodeID, t.children)

	case *arrayMatcher:
		if n.NodeType != ast.NodeTypeArray {
			st.record(t.id, TypeMismatch, nodeID, nil)
			for _, c := range t.children {
				st.markMissing(c)
			}
			return
		}
		st.record(t.id, Matched, nodeID, nodeID)
		begin, end := st.tree.ChildIndices(nodeID)
		count := end - begin
		for i, c := range t.children {
			if i >= count {
				st.markMissing(c)
				continue
			}
			st.visit(begin+i, c)
		}

	case *stringMatcher:
		if n.NodeType != ast.NodeTypeStringRef {
			st.record(t.id, TypeMismatch, nodeID, nil)
			return
		}
		st.record(t.id, Matched, nodeID, st.tree.StringRefText(n))

	case *boolMatcher:
		if n.NodeType != ast.NodeTypeBool {
			st.record(t.id, TypeMismatch, nodeID, nil)
			return
		}
		st.record(t.id, Matched, nodeID, n.Value != 0)

	case *ui32Matcher:
		if n.NodeType != ast.NodeTypeUI32 {
			st.record(t.id, TypeMismatch, nodeID, nil)
			return
		}
		st.record(t.id, Matched, nodeID, uint32(n.Value))

	case *ui32BitmapMatcher:
		if n.NodeType != ast.NodeTypeUI32Bitmap {
			st.record(t.id, TypeMismatch, nodeID, nil)
			return
		}
		st.record(t.id, Matched, nodeID, uint32(n.Value))

	case *enumMatcher:
		if n.NodeType != t.nodeType {
			st.record(t.id, TypeMismatch, nodeID, nil)
			return
		}
		st.record(t.id, Matched, nodeID, n.Value)

	case *selectByTypeMatcher:
		for _, alt := range t.alternatives {
			if wanted, ok := expectedType(alt); !ok || wanted == n.NodeType {
				st.visit(nodeID, alt)
				return
			}
		}
		st.markMissing(t)

	case *attributeMatcher:
		st.visit(nodeID, t.inner)

	case *nodeMatcher:
		st.record(t.id, Matched, nodeID, nodeID)
	}
}

// matchObjectChildren merge-joins expected attribute children (sorted by
// key, the order callers are expected to pass them in) against the
// node's actual children (already sorted by attribute_key per the AST
// invariant, §3.1). Actual children whose key is a dynamic DSON key
// (>= ast.DSONDynamicKeysBegin) are skipped during the join since they
// can never satisfy a static expected key (§4.1 step 2).
func (st *matchState) matchObjectChildren(nodeID int, expected []*attributeMatcher) {
	begin, end := st.tree.ChildIndices(nodeID)
	actual := st.tree.Nodes[begin:end]

	ai := 0
	for _, exp := range expected {
		for ai < len(actual) && (actual[ai].AttributeKey >= ast.DSONDynamicKeysBegin || actual[ai].AttributeKey < exp.key) {
			ai++
		}
		if ai < len(actual) && actual[ai].AttributeKey == exp.key {
			st.visit(begin+ai, exp.inner)
			ai++
			continue
		}
		st.markMissing(exp)
	}
}
