package topo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dashql-run/dashql-core/internal/topo"
)

type graph struct {
	deps [][]int
}

func (g graph) Len() int              { return len(g.deps) }
func (g graph) DependsOn(i int) []int { return g.deps[i] }

func TestSortRespectsDependencies(t *testing.T) {
	g := graph{deps: [][]int{
		0: {},
		1: {0},
		2: {0, 1},
		3: {},
	}}
	order := topo.Sort(g)
	require.Len(t, order, 4)
	pos := make(map[int]int, 4)
	for i, idx := range order {
		pos[idx] = i
	}
	require.Less(t, pos[0], pos[1])
	require.Less(t, pos[1], pos[2])
	require.Less(t, pos[0], pos[2])
}

func TestSortBreaksTiesByIndex(t *testing.T) {
	g := graph{deps: [][]int{0: {}, 1: {}, 2: {}}}
	order := topo.Sort(g)
	require.Equal(t, []int{0, 1, 2}, order)
}

func TestSortEmptyGraph(t *testing.T) {
	order := topo.Sort(graph{})
	require.Empty(t, order)
}
