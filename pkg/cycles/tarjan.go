package cycles

import (
	"gonum.org/v1/gonum/graph"
)

// tarjan holds the bookkeeping of one strongly connected component search
type tarjan struct {
	graph   graph.Directed
	minSize int
	counter int
	stack   []int64
	onStack map[int64]bool
	index   map[int64]int
	low     map[int64]int
	found   [][]int64
}

// Components returns the strongly connected components of g that have at
// least minSize nodes. Node order inside a component is unspecified.
func Components(g graph.Directed, minSize int) [][]int64 {
	t := &tarjan{
		graph:   g,
		minSize: minSize,
		onStack: make(map[int64]bool),
		index:   make(map[int64]int),
		low:     make(map[int64]int),
		found:   make([][]int64, 0),
	}

	nodes := g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		if _, seen := t.index[id]; !seen {
			t.visit(id)
		}
	}
	return t.found
}

func (t *tarjan) visit(id int64) {
	t.index[id] = t.counter
	t.low[id] = t.counter
	t.counter++

	t.stack = append(t.stack, id)
	t.onStack[id] = true

	next := t.graph.From(id)
	for next.Next() {
		succ := next.Node().ID()
		if _, seen := t.index[succ]; !seen {
			t.visit(succ)
			t.low[id] = min(t.low[id], t.low[succ])
		} else if t.onStack[succ] {
			t.low[id] = min(t.low[id], t.index[succ])
		}
	}

	// id is the root of a component: everything above it on the stack belongs to it
	if t.low[id] != t.index[id] {
		return
	}
	var component []int64
	for {
		top := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[top] = false
		component = append(component, top)
		if top == id {
			break
		}
	}
	if len(component) >= t.minSize {
		t.found = append(t.found, component)
	}
}
