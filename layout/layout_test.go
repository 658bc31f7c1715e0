package layout_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dashql-run/dashql-core/layout"
)

func TestAllocateExpandsZerosToDefaults(t *testing.T) {
	a := layout.NewSequentialAllocator(12)
	pos := a.Allocate(layout.KindInput, layout.Request{})
	require.Equal(t, uint32(3), pos.Width)
	require.Equal(t, uint32(1), pos.Height)

	pos2 := a.Allocate(layout.KindViz, layout.Request{})
	require.Equal(t, uint32(12), pos2.Width)
	require.Equal(t, uint32(4), pos2.Height)
}

func TestAllocateHonorsExplicitCoordinates(t *testing.T) {
	a := layout.NewSequentialAllocator(12)
	pos := a.Allocate(layout.KindViz, layout.Request{Row: 5, Column: 2, Width: 3, Height: 4})
	require.Equal(t, layout.CardPosition{Row: 5, Column: 2, Width: 3, Height: 4}, pos)
}

func TestAllocateIsDeterministicAndWraps(t *testing.T) {
	a := layout.NewSequentialAllocator(6)
	p1 := a.Allocate(layout.KindInput, layout.Request{})
	p2 := a.Allocate(layout.KindInput, layout.Request{})
	p3 := a.Allocate(layout.KindInput, layout.Request{})
	require.Equal(t, uint32(0), p1.Column)
	require.Equal(t, uint32(3), p2.Column)
	require.Equal(t, uint32(1), p3.Row) // wraps after two 3-wide cards fill a 6-wide row
	require.Equal(t, uint32(0), p3.Column)
}
