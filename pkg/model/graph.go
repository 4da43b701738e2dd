package model

// Graph is a flat node/edge view of the similarity graph, used for export
// and by the web layer.
type Graph struct {
	Nodes map[string]*Node `json:"nodes"`
	Edges []*Edge          `json:"edges"`
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
		Edges: make([]*Edge, 0),
	}
}

// Node represents a track vertex.
type Node struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Artist string `json:"artist"`
	Genre  Genre  `json:"genre"`
}

// Edge is one undirected similarity link. Each link appears once.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// AddNode adds a node to the graph. If a node with the same ID exists, it updates it.
func (g *Graph) AddNode(node *Node) {
	g.Nodes[node.ID] = node
}

// AddEdge adds an edge to the graph.
func (g *Graph) AddEdge(edge *Edge) {
	g.Edges = append(g.Edges, edge)
}
