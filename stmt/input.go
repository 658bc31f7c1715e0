package stmt

import (
	"strings"

	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/layout"
	"github.com/dashql-run/dashql-core/matcher"
	"github.com/dashql-run/dashql-core/program"
)

// InputComponentType enumerates OBJECT_DASHQL_INPUT's
// DASHQL_INPUT_COMPONENT_TYPE enum.
type InputComponentType int

const (
	InputComponentNone InputComponentType = iota
	InputComponentText
	InputComponentSlider
	InputComponentCheckbox
	InputComponentDropdown
)

// SQLValueType is the coarse type classification §1's non-goals call out
// ("schema type checking beyond the coarse classification used to drive
// planning"): just enough to pick a literal constructor, never full SQL
// type inference.
type SQLValueType int

const (
	SQLValueUnknown SQLValueType = iota
	SQLValueBool
	SQLValueInt
	SQLValueFloat
	SQLValueText
)

func classifySQLValueType(typeName string) SQLValueType {
	switch strings.ToLower(strings.TrimSpace(typeName)) {
	case "bool", "boolean":
		return SQLValueBool
	case "int", "integer", "bigint", "smallint":
		return SQLValueInt
	case "float", "double", "real", "decimal", "numeric":
		return SQLValueFloat
	case "text", "varchar", "string", "char":
		return SQLValueText
	default:
		return SQLValueUnknown
	}
}

const (
	inputIDComponentType matcher.MatchingID = iota
	inputIDValueType
	inputIDName
	inputIDNestedRow
	inputIDNestedCol
	inputIDNestedW
	inputIDNestedH
	inputIDFlatRow
	inputIDFlatCol
	inputIDFlatW
	inputIDFlatH
	inputIDTitle
)

var inputPositionIDs = positionIDs{
	nestedRow: inputIDNestedRow, nestedCol: inputIDNestedCol,
	nestedW: inputIDNestedW, nestedH: inputIDNestedH,
	flatRow: inputIDFlatRow, flatCol: inputIDFlatCol,
	flatW: inputIDFlatW, flatH: inputIDFlatH,
	title: inputIDTitle,
}

var inputSchema = buildInputSchema()

func buildInputSchema() matcher.Matcher {
	// Attr children must be listed in ascending AttributeKey order: the
	// object matcher merge-joins them against the node's actual children,
	// which are sorted ascending per the AST invariant (§3.1), and the
	// join cursor never moves backward.
	children := []*matcher.AttrMatcher{
		matcher.Attr(ast.AttrDashqlStatementName, matcher.Node(inputIDName)),
		matcher.Attr(ast.AttrDashqlInputComponentType, matcher.Enum(ast.EnumInputComponentType, inputIDComponentType)),
		matcher.Attr(ast.AttrDashqlInputValueType, matcher.Node(inputIDValueType)),
	}
	children = append(children, positionAttrs(inputPositionIDs)...)
	return matcher.Object(ast.ObjectDashqlInput, matcher.Discard, children...)
}

// Input is the analyzed form of an INPUT statement (§4.4).
type Input struct {
	StatementID    int
	ComponentType  InputComponentType
	ValueType      SQLValueType
	Name           program.QualifiedName
	SpecifiedPos   *layout.Request
	Position       layout.CardPosition
	Title          *string
}

// ReadInput analyzes the INPUT statement rooted at stmt.RootNode and
// allocates its board position via alloc.
func ReadInput(tree *ast.Tree, values ValueReader, stmt program.Statement, stmtID int, alloc layout.Allocator) Input {
	ix := matcher.Match(tree, stmt.RootNode, inputSchema)
	in := Input{StatementID: stmtID}

	if m := ix.Get(inputIDComponentType); m.Status == matcher.Matched {
		in.ComponentType = InputComponentType(m.Data.(int64))
	}
	if m := ix.Get(inputIDValueType); m.Status == matcher.Matched {
		typeName := values.ReadNodeValue(m.NodeID).FormatValue()
		in.ValueType = classifySQLValueType(typeName)
	}
	if m := ix.Get(inputIDName); m.Status == matcher.Matched {
		in.Name = values.ReadQualifiedName(m.NodeID, true)
	}
	in.SpecifiedPos = readPosition(ix, inputPositionIDs)
	in.Title = readTitle(ix, inputIDTitle)

	req := layout.Request{}
	if in.SpecifiedPos != nil {
		req = *in.SpecifiedPos
	}
	in.Position = alloc.Allocate(layout.KindInput, req)
	return in
}
