package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ritzau/syncup/pkg/model"
)

var (
	// ErrInvalidWeight is returned when an edge weight is NaN or outside [0,1]
	ErrInvalidWeight = errors.New("similarity weight must be within [0,1]")
	// ErrSelfLoop is returned when an edge would connect a track to itself
	ErrSelfLoop = errors.New("similarity edge cannot connect a track to itself")
	// ErrNilTrack is returned when a nil track is passed where one is required
	ErrNilTrack = errors.New("track is nil")
)

// Edge is one directed record of an undirected similarity link
type Edge struct {
	From   *model.Track
	To     *model.Track
	Weight float64
}

// SimilarityGraph is an undirected weighted graph of tracks keyed by track ID.
// Every link is stored as two directed records, one per endpoint, so the
// adjacency lists stay symmetric. Not safe for concurrent use.
type SimilarityGraph struct {
	vertices  map[string]*model.Track
	adjacency map[string][]Edge
}

// NewSimilarityGraph creates an empty similarity graph
func NewSimilarityGraph() *SimilarityGraph {
	return &SimilarityGraph{
		vertices:  make(map[string]*model.Track),
		adjacency: make(map[string][]Edge),
	}
}

// AddVertex adds a track. Adding a track whose ID is already present is a no-op.
func (g *SimilarityGraph) AddVertex(t *model.Track) {
	if t == nil {
		return
	}
	if _, exists := g.vertices[t.ID]; exists {
		return
	}
	g.vertices[t.ID] = t
	g.adjacency[t.ID] = make([]Edge, 0)
}

// AddEdge links two tracks with the given weight, adding them as vertices
// if needed. Both directions are inserted.
func (g *SimilarityGraph) AddEdge(a, b *model.Track, weight float64) error {
	if a == nil || b == nil {
		return ErrNilTrack
	}
	if math.IsNaN(weight) || weight < 0 || weight > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidWeight, weight)
	}
	if a.ID == b.ID {
		return fmt.Errorf("%w: %s", ErrSelfLoop, a.ID)
	}

	g.AddVertex(a)
	g.AddVertex(b)

	// Always link the stored instances so edges agree with the vertex set
	va := g.vertices[a.ID]
	vb := g.vertices[b.ID]

	g.adjacency[va.ID] = append(g.adjacency[va.ID], Edge{From: va, To: vb, Weight: weight})
	g.adjacency[vb.ID] = append(g.adjacency[vb.ID], Edge{From: vb, To: va, Weight: weight})
	return nil
}

// Neighbors returns a copy of the edges leaving t, in insertion order.
// Unknown tracks have no neighbors.
func (g *SimilarityGraph) Neighbors(t *model.Track) []Edge {
	if t == nil {
		return nil
	}
	return g.neighborsByID(t.ID)
}

func (g *SimilarityGraph) neighborsByID(id string) []Edge {
	edges := g.adjacency[id]
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// RemoveVertex deletes a track and purges every edge pointing at it.
// This scans all vertices.
func (g *SimilarityGraph) RemoveVertex(t *model.Track) {
	if t == nil {
		return
	}
	if _, exists := g.vertices[t.ID]; !exists {
		return
	}

	for id, edges := range g.adjacency {
		if id == t.ID {
			continue
		}
		kept := edges[:0]
		for _, e := range edges {
			if e.To.ID != t.ID {
				kept = append(kept, e)
			}
		}
		g.adjacency[id] = kept
	}

	delete(g.vertices, t.ID)
	delete(g.adjacency, t.ID)
}

// TopNSimilar returns at most n neighbors of t ordered by descending weight.
// Equal weights keep insertion order.
func (g *SimilarityGraph) TopNSimilar(t *model.Track, n int) []Edge {
	if t == nil || n <= 0 {
		return []Edge{}
	}
	edges := g.neighborsByID(t.ID)
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Weight > edges[j].Weight
	})
	if len(edges) > n {
		edges = edges[:n]
	}
	return edges
}

// Similarity returns the weight of the edge between a and b, or 0 when
// there is no edge or either track is absent.
func (g *SimilarityGraph) Similarity(a, b *model.Track) float64 {
	if a == nil || b == nil {
		return 0.0
	}
	if !g.Contains(a) || !g.Contains(b) {
		return 0.0
	}
	for _, e := range g.adjacency[a.ID] {
		if e.To.ID == b.ID {
			return e.Weight
		}
	}
	return 0.0
}

// Contains reports whether t is a vertex
func (g *SimilarityGraph) Contains(t *model.Track) bool {
	if t == nil {
		return false
	}
	_, ok := g.vertices[t.ID]
	return ok
}

// Vertex returns the stored track with the given ID
func (g *SimilarityGraph) Vertex(id string) (*model.Track, bool) {
	t, ok := g.vertices[id]
	return t, ok
}

// Vertices returns all tracks sorted by ID
func (g *SimilarityGraph) Vertices() []*model.Track {
	out := make([]*model.Track, 0, len(g.vertices))
	for _, t := range g.vertices {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *SimilarityGraph) VertexCount() int {
	return len(g.vertices)
}

// EdgeCount returns the number of undirected links
func (g *SimilarityGraph) EdgeCount() int {
	total := 0
	for _, edges := range g.adjacency {
		total += len(edges)
	}
	return total / 2
}

// Clear removes all vertices and edges
func (g *SimilarityGraph) Clear() {
	g.vertices = make(map[string]*model.Track)
	g.adjacency = make(map[string][]Edge)
}

// Export converts the graph into the flat node/edge model. Each undirected
// link is emitted once, from the endpoint with the smaller ID.
func (g *SimilarityGraph) Export() *model.Graph {
	out := model.NewGraph()
	for _, t := range g.Vertices() {
		out.AddNode(&model.Node{
			ID:     t.ID,
			Label:  t.Title,
			Artist: t.Artist,
			Genre:  t.Genre,
		})
		for _, e := range g.adjacency[t.ID] {
			if e.From.ID < e.To.ID {
				out.AddEdge(&model.Edge{
					Source: e.From.ID,
					Target: e.To.ID,
					Weight: e.Weight,
				})
			}
		}
	}
	return out
}
