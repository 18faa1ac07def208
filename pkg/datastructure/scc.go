package datastructure

import (
	"github.com/lintang-b-s/rutavial/pkg/util"
)

// SCCResult. Component[v] is the component of node index v, components are numbered in
// the order the second kosaraju pass finds them.
type SCCResult struct {
	Component       []int32
	ComponentSizes  []int32
	CondensationAdj [][]int32
}

func (s SCCResult) Count() int {
	return len(s.ComponentSizes)
}

func (s SCCResult) Largest() (int32, int32) {
	largest, size := int32(-1), int32(0)
	for i, c := range s.ComponentSizes {
		if c > size {
			largest, size = int32(i), c
		}
	}
	return largest, size
}

// StronglyConnectedComponents. kosaraju scc over the node indices of g.
func (g *RoadGraph) StronglyConnectedComponents() SCCResult {
	n := int32(len(g.nodes))

	in := make([][]int32, n)
	for u := int32(0); u < n; u++ {
		for _, group := range g.out[u] {
			in[group.to] = append(in[group.to], u)
		}
	}

	order := make([]int32, 0, n)
	visited := make([]bool, n)
	for i := int32(0); i < n; i++ {
		if !visited[i] {
			g.sccDfs(i, &order, visited, nil)
		}
	}

	order = util.ReverseG(order)

	visited = make([]bool, n)
	component := make([]int32, n)
	sizes := make([]int32, 0)
	for _, v := range order {
		if visited[v] {
			continue
		}
		members := make([]int32, 0)
		g.sccDfs(v, &members, visited, in)

		id := int32(len(sizes))
		for _, node := range members {
			component[node] = id
		}
		sizes = append(sizes, int32(len(members)))
	}

	condAdj := make([][]int32, len(sizes))
	seen := make(map[[2]int32]struct{})
	for u := int32(0); u < n; u++ {
		for _, group := range g.out[u] {
			cu, cv := component[u], component[group.to]
			if cu == cv {
				continue
			}
			if _, ok := seen[[2]int32{cu, cv}]; ok {
				continue
			}
			seen[[2]int32{cu, cv}] = struct{}{}
			condAdj[cu] = append(condAdj[cu], cv)
		}
	}

	return SCCResult{
		Component:       component,
		ComponentSizes:  sizes,
		CondensationAdj: condAdj,
	}
}

// sccDfs walks the out edges when in is nil, otherwise the reversed edges.
func (g *RoadGraph) sccDfs(v int32, output *[]int32, visited []bool, in [][]int32) {
	visited[v] = true

	if in == nil {
		for _, group := range g.out[v] {
			if !visited[group.to] {
				g.sccDfs(group.to, output, visited, in)
			}
		}
	} else {
		for _, u := range in[v] {
			if !visited[u] {
				g.sccDfs(u, output, visited, in)
			}
		}
	}

	*output = append(*output, v)
}
