package substring_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/substring"
)

func TestBufferSingleReplaceShrinking(t *testing.T) {
	source := "SET x = 'longer value';"
	b := substring.New(source, ast.Location{Offset: 0, Length: uint32(len(source))})
	b.Replace(ast.Location{Offset: 8, Length: 14}, "'hi'")
	require.Equal(t, "SET x = 'hi';", b.Finish())
}

func TestBufferSingleReplaceLengthening(t *testing.T) {
	source := "SET x = 'a';"
	b := substring.New(source, ast.Location{Offset: 0, Length: uint32(len(source))})
	b.Replace(ast.Location{Offset: 8, Length: 3}, "'much longer'")
	require.Equal(t, "SET x = 'much longer';", b.Finish())
}

// TestBufferSequentialReplacesUseOriginalOffsets is the load-bearing
// property of the patch-list design: every Replace call addresses by the
// *original* source offset, even after an earlier replacement shifted the
// buffer text, because translate() walks the full patch list at lookup
// time rather than mutating stored offsets.
func TestBufferSequentialReplacesUseOriginalOffsets(t *testing.T) {
	source := "INPUT aaa TEXT; INPUT bbb TEXT;"
	b := substring.New(source, ast.Location{Offset: 0, Length: uint32(len(source))})

	// shrink the first name first, which shifts everything after it...
	b.Replace(ast.Location{Offset: 6, Length: 3}, "x")
	// ...but the second replacement still addresses bbb by its original
	// offset in `source`, not its shifted position in the buffer so far.
	b.Replace(ast.Location{Offset: 22, Length: 3}, "y")

	require.Equal(t, "INPUT x TEXT; INPUT y TEXT;", b.Finish())
}

func TestBufferIntersectsClipsToSubstring(t *testing.T) {
	source := "0123456789"
	b := substring.New(source, ast.Location{Offset: 2, Length: 4}) // "2345"
	require.True(t, b.Intersects(ast.Location{Offset: 3, Length: 1}))
	require.False(t, b.Intersects(ast.Location{Offset: 6, Length: 2}))
	require.False(t, b.Intersects(ast.Location{Offset: 0, Length: 1}))
}

func TestRenderOnlyAppliesIntersectingReplacements(t *testing.T) {
	source := "FETCH a FROM 'x'; FETCH b FROM 'y';"
	rootLoc := ast.Location{Offset: 0, Length: 17} // "FETCH a FROM 'x';"

	out := substring.Render(source, rootLoc, []substring.Replacement{
		{Location: ast.Location{Offset: 13, Length: 3}, Literal: "'z'"},
		{Location: ast.Location{Offset: 32, Length: 3}, Literal: "'q'"}, // outside rootLoc
	})
	require.Equal(t, "FETCH a FROM 'z';", out)
}
