package stmt

import (
	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/layout"
	"github.com/dashql-run/dashql-core/matcher"
)

// positionIDs names the matching_ids used by the nested/flat position
// sub-pattern shared by INPUT and VIZ components.
type positionIDs struct {
	nestedRow, nestedCol, nestedW, nestedH matcher.MatchingID
	flatRow, flatCol, flatW, flatH         matcher.MatchingID
	title                                  matcher.MatchingID
}

// positionAttrs returns the Attr()-wrapped matchers for the nested
// position object, the title, and the flat coordinates (ascending by
// AttributeKey, as the object matcher's merge-join needs), meant to be
// appended into a parent Object()'s children list (nested takes
// precedence, per §4.4 INPUT: "nested DSON_POSITION.{...} or flat {...}
// (nested takes precedence)").
func positionAttrs(ids positionIDs) []*matcher.AttrMatcher {
	nested := matcher.Object(ast.ObjectDSONPosition, matcher.Discard,
		matcher.Attr(ast.AttrDSONPositionRow, matcher.UI32(ids.nestedRow)),
		matcher.Attr(ast.AttrDSONPositionColumn, matcher.UI32(ids.nestedCol)),
		matcher.Attr(ast.AttrDSONPositionWidth, matcher.UI32(ids.nestedW)),
		matcher.Attr(ast.AttrDSONPositionHeight, matcher.UI32(ids.nestedH)),
	)
	return []*matcher.AttrMatcher{
		matcher.Attr(ast.AttrDSONPosition, nested),
		matcher.Attr(ast.AttrDSONTitle, matcher.String(ids.title)),
		matcher.Attr(ast.AttrFlatRow, matcher.UI32(ids.flatRow)),
		matcher.Attr(ast.AttrFlatColumn, matcher.UI32(ids.flatCol)),
		matcher.Attr(ast.AttrFlatWidth, matcher.UI32(ids.flatW)),
		matcher.Attr(ast.AttrFlatHeight, matcher.UI32(ids.flatH)),
	}
}

// readPosition resolves the nested-vs-flat position request from a match
// Index, returning nil if neither form specified anything.
func readPosition(ix matcher.Index, ids positionIDs) *layout.Request {
	row := matcher.SelectAlt(ix, ids.nestedRow, ids.flatRow)
	col := matcher.SelectAlt(ix, ids.nestedCol, ids.flatCol)
	width := matcher.SelectAlt(ix, ids.nestedW, ids.flatW)
	height := matcher.SelectAlt(ix, ids.nestedH, ids.flatH)

	if row.Status != matcher.Matched && col.Status != matcher.Matched &&
		width.Status != matcher.Matched && height.Status != matcher.Matched {
		return nil
	}
	req := &layout.Request{}
	if row.Status == matcher.Matched {
		req.Row = row.Data.(uint32)
	}
	if col.Status == matcher.Matched {
		req.Column = col.Data.(uint32)
	}
	if width.Status == matcher.Matched {
		req.Width = width.Data.(uint32)
	}
	if height.Status == matcher.Matched {
		req.Height = height.Data.(uint32)
	}
	return req
}

func readTitle(ix matcher.Index, id matcher.MatchingID) *string {
	m := ix.Get(id)
	if m.Status != matcher.Matched {
		return nil
	}
	s := m.Data.(string)
	return &s
}

// PositionNodeIDs reports the AST node id backing each already-written
// row/column/width/height coordinate (nested taking precedence over
// flat, as in readPosition), or -1 where the source omits that
// coordinate. The editor uses these to rewrite an existing position
// in place; a statement with no position attributes at all has nothing
// to rewrite and must be re-rendered by other means (a limitation noted
// in DESIGN.md).
type PositionNodeIDs struct {
	Row, Column, Width, Height int
}

func positionNodeIDs(ix matcher.Index, ids positionIDs) PositionNodeIDs {
	sel := func(a, b matcher.MatchingID) int {
		m := matcher.SelectAlt(ix, a, b)
		if m.Status != matcher.Matched {
			return -1
		}
		return m.NodeID
	}
	return PositionNodeIDs{
		Row:    sel(ids.nestedRow, ids.flatRow),
		Column: sel(ids.nestedCol, ids.flatCol),
		Width:  sel(ids.nestedW, ids.flatW),
		Height: sel(ids.nestedH, ids.flatH),
	}
}

// InputPositionNodeIDs re-matches an INPUT statement's position schema to
// recover the node ids backing its current coordinates.
func InputPositionNodeIDs(tree *ast.Tree, rootNode int) PositionNodeIDs {
	ix := matcher.Match(tree, rootNode, inputSchema)
	return positionNodeIDs(ix, inputPositionIDs)
}

// VizFirstComponentPositionNodeIDs re-matches a VIZ statement's first
// component (the only one allowed to carry a position, §4.4) to recover
// the node ids backing its current coordinates. ok is false if the
// statement has no components.
func VizFirstComponentPositionNodeIDs(tree *ast.Tree, rootNode int) (ids PositionNodeIDs, ok bool) {
	vix := matcher.Match(tree, rootNode, vizSchema)
	m := vix.Get(vizIDComponents)
	if m.Status != matcher.Matched {
		return PositionNodeIDs{}, false
	}
	begin, end := tree.ChildIndices(m.NodeID)
	if begin >= end {
		return PositionNodeIDs{}, false
	}
	cix := matcher.Match(tree, begin, componentSchema)
	return positionNodeIDs(cix, componentPositionIDs), true
}
