package constprop

import (
	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/instance"
	"github.com/dashql-run/dashql-core/matcher"
	"github.com/dashql-run/dashql-core/program"
	"github.com/dashql-run/dashql-core/scalar"
)

const (
	callIDArguments matcher.MatchingID = iota
	callIDName
)

var callSchema = matcher.Object(ast.ObjectDashqlFunctionCall, matcher.Discard,
	matcher.Attr(ast.AttrSQLFunctionArguments, matcher.Array(callIDArguments)),
	matcher.Attr(ast.AttrSQLFunctionName, matcher.String(callIDName)),
)

// Propagate folds the tree back-to-front (§4.3): every child follows its
// parent in the flat pre-order node array, so a single reverse pass visits
// every child before its parent.
// Leaves intern the literal instance.ReadNodeValue reads for them: a
// STRING_REF interns its text as a string scalar, while BOOL and UI32/
// UI32_BITMAP leaves intern bool and integer scalars, not their source
// text. OBJECT_DASHQL_FUNCTION_CALL nodes fold through reg if every
// argument already folded.
// A folding failure is recorded as a node error against the call node and
// does not abort the pass.
func Propagate(tree *ast.Tree, store *instance.NodeValueStore, reg Registry) []instance.NodeError {
	var errs []instance.NodeError
	for id := len(tree.Nodes) - 1; id >= 0; id-- {
		n := tree.Nodes[id]
		switch {
		case n.NodeType == ast.NodeTypeBool, n.NodeType == ast.NodeTypeUI32, n.NodeType == ast.NodeTypeUI32Bitmap, n.NodeType == ast.NodeTypeStringRef:
			store.Insert(id, instance.ReadNodeValue(store, tree, id))

		case n.NodeType == ast.ObjectDashqlFunctionCall:
			val, argIDs, err := foldCall(tree, store, reg, id)
			if err != nil {
				errs = append(errs, instance.NodeError{NodeID: id, Err: err})
				continue
			}
			store.Merge(id, argIDs, val)
		}
	}
	return errs
}

// foldCall matches callID against the function-call schema, resolves the
// named function, and invokes it with the already-folded argument
// scalars. It also returns the argument node ids so the caller can merge
// them into the call's union.
func foldCall(tree *ast.Tree, store *instance.NodeValueStore, reg Registry, callID int) (scalar.Scalar, []int, error) {
	ix := matcher.Match(tree, callID, callSchema)
	nameMatch := ix.Get(callIDName)
	if nameMatch.Status != matcher.Matched {
		return scalar.Scalar{}, nil, ErrFunctionUnknown.New("")
	}
	name := instance.ReadNodeValue(store, tree, nameMatch.NodeID).FormatValue()
	fn, err := reg.Resolve(name)
	if err != nil {
		return scalar.Scalar{}, nil, err
	}

	var args []scalar.Scalar
	var argIDs []int
	if argsMatch := ix.Get(callIDArguments); argsMatch.Status == matcher.Matched {
		begin, end := tree.ChildIndices(argsMatch.NodeID)
		for i := begin; i < end; i++ {
			v := store.Find(i)
			if v == nil {
				return scalar.Scalar{}, nil, ErrFunctionInvalidInput.New(name)
			}
			args = append(args, v.Data)
			argIDs = append(argIDs, i)
		}
	}
	val, err := fn(args)
	if err != nil {
		return scalar.Scalar{}, nil, err
	}
	return val, argIDs, nil
}

// EvaluateInputValues maps inputs to nodes via p.Dependencies (§4.3): for
// every dependency whose Source names a statement in inputsByStatement,
// the corresponding value is written into the union for the dependency's
// CausedByNode (the "target_node" input substitution writes into).
func EvaluateInputValues(p *program.Program, store *instance.NodeValueStore, inputsByStatement map[int]scalar.Scalar) {
	for _, dep := range p.Dependencies {
		val, ok := inputsByStatement[dep.Source]
		if !ok {
			continue
		}
		store.Insert(dep.CausedByNode, val)
	}
}
