package stmt

import (
	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/layout"
	"github.com/dashql-run/dashql-core/matcher"
	"github.com/dashql-run/dashql-core/program"
)

// VizComponentType enumerates OBJECT_DASHQL_VIZ_COMPONENT's
// DASHQL_VIZ_COMPONENT_TYPE enum.
type VizComponentType int

const (
	VizComponentNone VizComponentType = iota
	VizComponentLine
	VizComponentBar
	VizComponentArea
	VizComponentTable
)

const (
	vizIDTarget matcher.MatchingID = iota
	vizIDComponents
)

var vizSchema = matcher.Object(ast.ObjectDashqlViz, matcher.Discard,
	matcher.Attr(ast.AttrDashqlVizTarget, matcher.Node(vizIDTarget)),
	matcher.Attr(ast.AttrDashqlVizComponents, matcher.Array(vizIDComponents)),
)

const (
	componentIDType matcher.MatchingID = iota
	componentIDModifiers
	componentIDNestedRow
	componentIDNestedCol
	componentIDNestedW
	componentIDNestedH
	componentIDFlatRow
	componentIDFlatCol
	componentIDFlatW
	componentIDFlatH
	componentIDTitle
)

var componentPositionIDs = positionIDs{
	nestedRow: componentIDNestedRow, nestedCol: componentIDNestedCol,
	nestedW: componentIDNestedW, nestedH: componentIDNestedH,
	flatRow: componentIDFlatRow, flatCol: componentIDFlatCol,
	flatW: componentIDFlatW, flatH: componentIDFlatH,
	title: componentIDTitle,
}

var componentSchema = buildComponentSchema()

func buildComponentSchema() matcher.Matcher {
	children := []*matcher.AttrMatcher{
		matcher.Attr(ast.AttrDashqlVizComponentType, matcher.Enum(ast.EnumVizComponentType, componentIDType)),
		matcher.Attr(ast.AttrDashqlVizComponentModifiers, matcher.UI32Bitmap(componentIDModifiers)),
	}
	children = append(children, positionAttrs(componentPositionIDs)...)
	return matcher.Object(ast.ObjectDashqlVizComponent, matcher.Discard, children...)
}

// VizComponent is one analyzed DASHQL_VIZ_COMPONENTS entry.
type VizComponent struct {
	Type      VizComponentType
	Modifiers uint32
	Position  *layout.Request
	Title     *string
}

// Viz is the analyzed form of a VIZ statement (§4.4).
type Viz struct {
	StatementID  int
	Target       program.QualifiedName
	Components   []VizComponent
	SpecifiedPos *layout.Request
	Position     layout.CardPosition
	Title        *string
	Linter       []LinterMessage
}

// ReadViz analyzes the VIZ statement rooted at stmt.RootNode. Only the
// first component may carry a position/title; any later component that
// does produces a KEY_NOT_UNIQUE linter message and has that field
// ignored. The statement's specified_position aliases whichever
// component (necessarily the first, by the rule above) carries one.
func ReadViz(tree *ast.Tree, values ValueReader, stmt program.Statement, stmtID int, alloc layout.Allocator) Viz {
	ix := matcher.Match(tree, stmt.RootNode, vizSchema)
	v := Viz{StatementID: stmtID}

	if m := ix.Get(vizIDTarget); m.Status == matcher.Matched {
		target := values.ReadQualifiedName(m.NodeID, true)
		target.IndexValue = ""
		v.Target = target
	}

	if m := ix.Get(vizIDComponents); m.Status == matcher.Matched {
		begin, end := tree.ChildIndices(m.NodeID)
		havePosOrTitle := false
		for childID := begin; childID < end; childID++ {
			cix := matcher.Match(tree, childID, componentSchema)
			comp := VizComponent{}
			if cm := cix.Get(componentIDType); cm.Status == matcher.Matched {
				comp.Type = VizComponentType(cm.Data.(int64))
			}
			if cm := cix.Get(componentIDModifiers); cm.Status == matcher.Matched {
				comp.Modifiers = cm.Data.(uint32)
			}
			pos := readPosition(cix, componentPositionIDs)
			title := readTitle(cix, componentIDTitle)

			if pos != nil || title != nil {
				if havePosOrTitle {
					v.Linter = append(v.Linter, LinterMessage{
						Code:    KeyNotUnique,
						NodeID:  childID,
						Message: "only the first component may carry a position or title",
					})
					pos, title = nil, nil
				} else {
					havePosOrTitle = true
				}
			}
			comp.Position, comp.Title = pos, title
			v.Components = append(v.Components, comp)
		}
	}

	for _, c := range v.Components {
		if c.Position != nil {
			v.SpecifiedPos = c.Position
		}
		if c.Title != nil {
			v.Title = c.Title
		}
	}

	req := layout.Request{}
	if v.SpecifiedPos != nil {
		req = *v.SpecifiedPos
	}
	v.Position = alloc.Allocate(layout.KindViz, req)
	return v
}
