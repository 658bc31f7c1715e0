package diff_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/diff"
	"github.com/dashql-run/dashql-core/program"
)

// buildFetchProgram builds one FETCH-root statement per entry in texts,
// each root node's Location spanning its own slice of the concatenated
// text, with a single STRING_REF child holding that same text. The root
// Location drives estimate()'s fast path (node type, length, text); the
// child is what lets the deep comparator, which compares object children
// rather than root text, tell statements with different text apart.
func buildFetchProgram(texts []string) *program.Program {
	var sb strings.Builder
	var nodes []ast.Node
	var stmts []program.Statement
	offset := uint32(0)
	for _, s := range texts {
		root := len(nodes)
		loc := ast.Location{Offset: offset, Length: uint32(len(s))}
		nodes = append(nodes, ast.Node{
			NodeType:      ast.ObjectDashqlFetch,
			ChildrenBegin: int32(root + 1),
			ChildrenCount: 1,
			Location:      loc,
		}, ast.Node{
			NodeType:     ast.NodeTypeStringRef,
			AttributeKey: ast.AttrDashqlFetchFromURI,
			Parent:       int32(root),
			Value:        int64(offset)<<32 | int64(len(s)),
			Location:     loc,
		})
		stmts = append(stmts, program.Statement{StatementType: program.StatementFetch, RootNode: root})
		sb.WriteString(s)
		offset += uint32(len(s))
	}
	tree := &ast.Tree{Text: sb.String(), Nodes: nodes}
	p := program.New(tree)
	p.Statements = stmts
	return p
}

func TestComputeWithNoSourceInsertsEverything(t *testing.T) {
	tgt := buildFetchProgram([]string{"aaa", "bbb"})
	ops := diff.Compute(nil, tgt)
	require.Len(t, ops, 2)
	for i, op := range ops {
		require.Equal(t, diff.OpInsert, op.Code)
		require.Equal(t, -1, op.Source)
		require.Equal(t, i, op.Target)
	}
}

func TestComputeKeepsIdenticalStatements(t *testing.T) {
	src := buildFetchProgram([]string{"aaa", "bbb"})
	tgt := buildFetchProgram([]string{"aaa", "bbb"})
	ops := diff.Compute(src, tgt)
	require.Len(t, ops, 2)
	for i, op := range ops {
		require.Equal(t, diff.OpKeep, op.Code)
		require.Equal(t, i, op.Source)
		require.Equal(t, i, op.Target)
	}
}

func TestComputeDeletesRemovedStatement(t *testing.T) {
	src := buildFetchProgram([]string{"aaa", "bbb"})
	tgt := buildFetchProgram([]string{"aaa"})
	ops := diff.Compute(src, tgt)

	var codes []diff.OpCode
	for _, op := range ops {
		codes = append(codes, op.Code)
	}
	require.Contains(t, codes, diff.OpKeep)
	require.Contains(t, codes, diff.OpDelete)
}

func TestComputeInsertsAddedStatement(t *testing.T) {
	src := buildFetchProgram([]string{"aaa"})
	tgt := buildFetchProgram([]string{"aaa", "bbb"})
	ops := diff.Compute(src, tgt)

	var codes []diff.OpCode
	for _, op := range ops {
		codes = append(codes, op.Code)
	}
	require.Contains(t, codes, diff.OpKeep)
	require.Contains(t, codes, diff.OpInsert)
}

func TestComputeDetectsReorderAsMove(t *testing.T) {
	src := buildFetchProgram([]string{"aaa", "bbb"})
	tgt := buildFetchProgram([]string{"bbb", "aaa"})
	ops := diff.Compute(src, tgt)

	var moves, keeps int
	for _, op := range ops {
		switch op.Code {
		case diff.OpMove:
			moves++
		case diff.OpKeep:
			keeps++
		}
	}
	require.Equal(t, 1, moves)
	require.Equal(t, 1, keeps)
}
