package recommend

import (
	"container/heap"
	"sort"

	"github.com/ritzau/syncup/pkg/graph"
	"github.com/ritzau/syncup/pkg/model"
)

// Recommendation is a track reachable from the seed with the similarity
// accumulated along the shortest-distance tree
type Recommendation struct {
	Track      *model.Track `json:"track"`
	Similarity float64      `json:"similarity"`
	Distance   float64      `json:"distance"`
	Hops       int          `json:"hops"`
}

// queueItem is an entry in the min-priority queue
type queueItem struct {
	id       string
	distance float64
}

type distanceQueue []queueItem

func (q distanceQueue) Len() int            { return len(q) }
func (q distanceQueue) Less(i, j int) bool  { return q[i].distance < q[j].distance }
func (q distanceQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *distanceQueue) Push(x interface{}) { *q = append(*q, x.(queueItem)) }
func (q *distanceQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// shortestPathTree holds the relaxation state of one Dijkstra run
type shortestPathTree struct {
	distance    map[string]float64
	accumulated map[string]float64
	prev        map[string]string
	hops        map[string]int
}

// run relaxes the whole graph from seed using 1 - weight as the edge length.
// The accumulated similarity of a vertex is its predecessor's accumulated
// similarity times the edge weight, so it follows the distance tree and is
// not a maximum-product path. If stopAt is non-empty the run ends as soon as
// that vertex is settled.
func run(g *graph.SimilarityGraph, seed *model.Track, stopAt string) *shortestPathTree {
	tree := &shortestPathTree{
		distance:    map[string]float64{seed.ID: 0},
		accumulated: map[string]float64{seed.ID: 1.0},
		prev:        make(map[string]string),
		hops:        map[string]int{seed.ID: 0},
	}
	settled := make(map[string]bool)

	queue := &distanceQueue{{id: seed.ID, distance: 0}}
	for queue.Len() > 0 {
		current := heap.Pop(queue).(queueItem)
		if settled[current.id] {
			continue
		}
		settled[current.id] = true

		if current.id == stopAt {
			break
		}

		from, ok := g.Vertex(current.id)
		if !ok {
			continue
		}
		for _, edge := range g.Neighbors(from) {
			next := edge.To.ID
			if settled[next] {
				continue
			}

			candidate := tree.distance[current.id] + (1.0 - edge.Weight)
			if old, seen := tree.distance[next]; !seen || candidate < old {
				tree.distance[next] = candidate
				tree.accumulated[next] = tree.accumulated[current.id] * edge.Weight
				tree.prev[next] = current.id
				tree.hops[next] = tree.hops[current.id] + 1
				heap.Push(queue, queueItem{id: next, distance: candidate})
			}
		}
	}

	return tree
}

// From ranks every track reachable from seed by accumulated similarity,
// highest first, and returns at most limit of them. The seed itself is
// never included. Ties are ordered by track ID.
func From(g *graph.SimilarityGraph, seed *model.Track, limit int) []Recommendation {
	if seed == nil || limit <= 0 || !g.Contains(seed) {
		return []Recommendation{}
	}

	tree := run(g, seed, "")

	results := make([]Recommendation, 0, len(tree.distance))
	for id, dist := range tree.distance {
		if id == seed.ID {
			continue
		}
		t, _ := g.Vertex(id)
		results = append(results, Recommendation{
			Track:      t,
			Similarity: tree.accumulated[id],
			Distance:   dist,
			Hops:       tree.hops[id],
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Track.ID < results[j].Track.ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// PathBetween returns the least-distance chain of tracks from a to b,
// both included. It is empty when either track is absent or b cannot be
// reached.
func PathBetween(g *graph.SimilarityGraph, a, b *model.Track) []*model.Track {
	if a == nil || b == nil || !g.Contains(a) || !g.Contains(b) {
		return []*model.Track{}
	}
	if a.ID == b.ID {
		t, _ := g.Vertex(a.ID)
		return []*model.Track{t}
	}

	tree := run(g, a, b.ID)
	if _, reached := tree.distance[b.ID]; !reached {
		return []*model.Track{}
	}

	var reversed []string
	for at := b.ID; ; at = tree.prev[at] {
		reversed = append(reversed, at)
		if at == a.ID {
			break
		}
		if _, ok := tree.prev[at]; !ok {
			return []*model.Track{}
		}
	}

	path := make([]*model.Track, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		t, _ := g.Vertex(reversed[i])
		path = append(path, t)
	}
	return path
}
