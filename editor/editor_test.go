package editor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/editor"
	"github.com/dashql-run/dashql-core/layout"
	"github.com/dashql-run/dashql-core/program"
)

// fakeRenderer re-renders a statement id to a fixed location/text pair,
// recording which position each call was given so tests can assert the
// editor actually threaded the right CardPositionUpdate through.
type fakeRenderer struct {
	locations map[int]ast.Location
	seen      map[int]layout.CardPosition
	skip      map[int]bool
}

func (r *fakeRenderer) RenderStatement(stmtID int, pos *layout.CardPosition) (ast.Location, string, bool) {
	if r.seen == nil {
		r.seen = map[int]layout.CardPosition{}
	}
	if r.skip[stmtID] {
		return ast.Location{}, "", false
	}
	r.seen[stmtID] = *pos
	loc := r.locations[stmtID]
	text := "INPUT a POSITION " + posText(*pos) + ";"
	return loc, text, true
}

func posText(p layout.CardPosition) string {
	digits := func(v uint32) string {
		return string(rune('0' + v))
	}
	return digits(p.Row) + " " + digits(p.Column) + " " + digits(p.Width) + " " + digits(p.Height)
}

func TestApplyRewritesOnlyTouchedStatement(t *testing.T) {
	source := "INPUT a POSITION 0 0 3 1; INPUT b POSITION 0 4 3 1;"
	r := &fakeRenderer{
		locations: map[int]ast.Location{
			0: {Offset: 0, Length: 25},
		},
	}
	out := editor.Apply(source, []editor.CardPositionUpdate{
		{StatementID: 0, Position: layout.CardPosition{Row: 1, Column: 2, Width: 3, Height: 1}},
	}, r)

	require.Equal(t, "INPUT a POSITION 1 2 3 1; INPUT b POSITION 0 4 3 1;", out)
	require.Equal(t, layout.CardPosition{Row: 1, Column: 2, Width: 3, Height: 1}, r.seen[0])
}

func TestApplyCoalescesMultipleEditsPerStatement(t *testing.T) {
	source := "INPUT a POSITION 0 0 3 1;"
	r := &fakeRenderer{
		locations: map[int]ast.Location{0: {Offset: 0, Length: 25}},
	}
	// Two updates target the same statement; Apply keys by statement id so
	// only the later one in the map survives to be rendered.
	out := editor.Apply(source, []editor.CardPositionUpdate{
		{StatementID: 0, Position: layout.CardPosition{Row: 1, Column: 1, Width: 1, Height: 1}},
		{StatementID: 0, Position: layout.CardPosition{Row: 9, Column: 9, Width: 9, Height: 9}},
	}, r)
	require.Equal(t, "INPUT a POSITION 9 9 9 9;", out)
}

func TestApplySkipsStatementsTheRendererRejects(t *testing.T) {
	source := "INPUT a POSITION 0 0 3 1; INPUT b POSITION 0 4 3 1;"
	r := &fakeRenderer{
		locations: map[int]ast.Location{0: {Offset: 0, Length: 25}},
		skip:      map[int]bool{1: true},
	}
	out := editor.Apply(source, []editor.CardPositionUpdate{
		{StatementID: 0, Position: layout.CardPosition{Row: 1, Column: 1, Width: 1, Height: 1}},
		{StatementID: 1, Position: layout.CardPosition{Row: 2, Column: 2, Width: 2, Height: 2}},
	}, r)
	require.Equal(t, "INPUT a POSITION 1 1 1 1;"+" INPUT b POSITION 0 4 3 1;", out)
}

func TestApplyWithNoUpdatesReturnsSourceUnchanged(t *testing.T) {
	source := "INPUT a POSITION 0 0 3 1;"
	out := editor.Apply(source, nil, &fakeRenderer{})
	require.Equal(t, source, out)
}

func TestStatementRootLocationReadsRootNodeLocation(t *testing.T) {
	tree := &ast.Tree{
		Nodes: []ast.Node{
			{Location: ast.Location{Offset: 5, Length: 9}},
		},
	}
	loc := editor.StatementRootLocation(tree, program.Statement{RootNode: 0})
	require.Equal(t, ast.Location{Offset: 5, Length: 9}, loc)
}
