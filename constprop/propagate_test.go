package constprop_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/constprop"
	"github.com/dashql-run/dashql-core/instance"
	"github.com/dashql-run/dashql-core/program"
	"github.com/dashql-run/dashql-core/scalar"
)

func stringRefValue(offset, length uint32) int64 {
	return int64(offset)<<32 | int64(length)
}

// buildFormatCallTree builds format('https://cdn.example.com/{}', country)
// where country (node 2) is itself a STRING_REF literal — the shape
// scenario A exercises when a FETCH's url is a folded function call.
func buildFormatCallTree() *ast.Tree {
	text := `"https://cdn.example.com/{}" "DE"`
	return &ast.Tree{
		Text: text,
		Nodes: []ast.Node{
			{ // 0: call root
				NodeType:      ast.ObjectDashqlFunctionCall,
				ChildrenBegin: 1,
				ChildrenCount: 2,
			},
			{ // 1: arguments array
				NodeType:      ast.NodeTypeArray,
				AttributeKey:  ast.AttrSQLFunctionArguments,
				Parent:        0,
				ChildrenBegin: 3,
				ChildrenCount: 2,
			},
			{ // 2: function name
				NodeType:     ast.NodeTypeStringRef,
				AttributeKey: ast.AttrSQLFunctionName,
				Parent:       0,
				Value:        stringRefValue(0, 0),
			},
			{ // 3: template argument
				NodeType: ast.NodeTypeStringRef,
				Parent:   1,
				Value:    stringRefValue(1, 26),
			},
			{ // 4: substitution argument
				NodeType: ast.NodeTypeStringRef,
				Parent:   1,
				Value:    stringRefValue(30, 2),
			},
		},
	}
}

func TestPropagateFoldsFormatCall(t *testing.T) {
	tree := buildFormatCallTree()
	// the function name STRING_REF carries no real text in this fixture;
	// patch its ReadNodeValue result in directly via Insert, the way a
	// real STRING_REF("format") literal would fold.
	store := instance.NewNodeValueStore()
	store.Insert(2, scalar.StringVal("format"))

	errs := constprop.Propagate(tree, store, constprop.DefaultRegistry())
	require.Empty(t, errs)

	v := store.Find(0)
	require.NotNil(t, v)
	require.Equal(t, "https://cdn.example.com/DE", v.Data.FormatValue())
}

func TestPropagateUnknownFunctionRecordsNodeError(t *testing.T) {
	tree := buildFormatCallTree()
	store := instance.NewNodeValueStore()
	store.Insert(2, scalar.StringVal("does_not_exist"))

	errs := constprop.Propagate(tree, store, constprop.DefaultRegistry())
	require.Len(t, errs, 1)
	require.Equal(t, 0, errs[0].NodeID)
}

func TestEvaluateInputValuesWritesIntoCausedByNode(t *testing.T) {
	tree := &ast.Tree{
		Text: "country",
		Nodes: []ast.Node{
			{NodeType: ast.ObjectDashqlInput},
			{NodeType: ast.NodeTypeStringRef, Parent: 0},
			{NodeType: ast.ObjectDashqlFetch},
			{NodeType: ast.NodeTypeStringRef, AttributeKey: ast.AttrDashqlFetchFromURI, Parent: 2},
		},
	}
	p := program.New(tree)
	p.Statements = []program.Statement{
		{StatementType: program.StatementInput, RootNode: 0},
		{StatementType: program.StatementFetch, RootNode: 2},
	}
	p.Dependencies = []program.Dependency{
		{Kind: program.DependencyTableRef, Source: 0, Target: 1, CausedByNode: 3},
	}

	store := instance.NewNodeValueStore()
	constprop.EvaluateInputValues(p, store, map[int]scalar.Scalar{0: scalar.StringVal("DE")})

	v := store.Find(3)
	require.NotNil(t, v)
	require.Equal(t, "DE", v.Data.FormatValue())
}

func TestEvaluateInputValuesThenPropagateKeepsSubstitution(t *testing.T) {
	tree := &ast.Tree{
		Nodes: []ast.Node{
			{NodeType: ast.ObjectDashqlInput},
			{NodeType: ast.NodeTypeStringRef, Parent: 0},
			{NodeType: ast.ObjectDashqlFetch},
			{NodeType: ast.NodeTypeStringRef, AttributeKey: ast.AttrDashqlFetchFromURI, Parent: 2},
		},
	}
	p := program.New(tree)
	p.Dependencies = []program.Dependency{
		{Kind: program.DependencyTableRef, Source: 0, Target: 1, CausedByNode: 3},
	}

	store := instance.NewNodeValueStore()
	constprop.EvaluateInputValues(p, store, map[int]scalar.Scalar{0: scalar.StringVal("DE")})
	errs := constprop.Propagate(tree, store, constprop.DefaultRegistry())
	require.Empty(t, errs)

	// Propagate's leaf-fold loop re-inserts node 3's raw text ("") via
	// ReadNodeValue, but ReadNodeValue checks store.Find first, so the
	// substituted "DE" must survive untouched.
	require.Equal(t, "DE", instance.ReadNodeValue(store, tree, 3).FormatValue())
}

func TestConcatFunction(t *testing.T) {
	reg := constprop.DefaultRegistry()
	fn, err := reg.Resolve("concat")
	require.NoError(t, err)

	v, err := fn([]scalar.Scalar{scalar.StringVal("a"), scalar.StringVal("b"), scalar.Int64Val(3)})
	require.NoError(t, err)
	require.Equal(t, "ab3", v.FormatValue())
}

func TestConcatRequiresAtLeastOneArgument(t *testing.T) {
	reg := constprop.DefaultRegistry()
	fn, _ := reg.Resolve("concat")
	_, err := fn(nil)
	require.Error(t, err)
}
