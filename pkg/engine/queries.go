package engine

import (
	"github.com/ritzau/syncup/pkg/cycles"
	"github.com/ritzau/syncup/pkg/metrics"
	"github.com/ritzau/syncup/pkg/model"
	"github.com/ritzau/syncup/pkg/recommend"
	"github.com/ritzau/syncup/pkg/social"
)

// topSimilarPerFavorite is how many neighbours of each favorite feed Discover
const topSimilarPerFavorite = 5

// Similar is a direct neighbour of a track
type Similar struct {
	Track      *model.Track `json:"track"`
	Similarity float64      `json:"similarity"`
}

// Stats summarizes the size of every structure
type Stats struct {
	Tracks  int `json:"tracks"`
	Edges   int `json:"edges"`
	Users   int `json:"users"`
	Follows int `json:"follows"`
	Words   int `json:"words"`
}

// Track returns the stored track with the given ID
func (e *Engine) Track(id string) (*model.Track, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.similarity.Vertex(id)
}

// Tracks returns a copy of every track, sorted by ID. Background jobs scan
// this snapshot without holding the engine lock.
func (e *Engine) Tracks() []model.Track {
	e.mu.RLock()
	defer e.mu.RUnlock()

	vertices := e.similarity.Vertices()
	out := make([]model.Track, len(vertices))
	for i, t := range vertices {
		out[i] = *t
	}
	return out
}

// TopNSimilar returns at most n direct neighbours of the track, most
// similar first
func (e *Engine) TopNSimilar(id string, n int) []Similar {
	defer metrics.ObserveQuery("top_similar")()
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.topNSimilarLocked(id, n)
}

func (e *Engine) topNSimilarLocked(id string, n int) []Similar {
	t, ok := e.similarity.Vertex(id)
	if !ok {
		return []Similar{}
	}
	edges := e.similarity.TopNSimilar(t, n)
	out := make([]Similar, len(edges))
	for i, edge := range edges {
		out[i] = Similar{Track: edge.To, Similarity: edge.Weight}
	}
	return out
}

// Similarity returns the weight of the edge between two tracks, or 0
func (e *Engine) Similarity(a, b string) float64 {
	defer metrics.ObserveQuery("similarity")()
	e.mu.RLock()
	defer e.mu.RUnlock()

	ta, okA := e.similarity.Vertex(a)
	tb, okB := e.similarity.Vertex(b)
	if !okA || !okB {
		return 0
	}
	return e.similarity.Similarity(ta, tb)
}

// RecommendFrom ranks tracks reachable from the seed by accumulated
// similarity
func (e *Engine) RecommendFrom(seedID string, limit int) []recommend.Recommendation {
	defer metrics.ObserveQuery("recommend")()
	e.mu.RLock()
	defer e.mu.RUnlock()

	seed, ok := e.similarity.Vertex(seedID)
	if !ok {
		return []recommend.Recommendation{}
	}
	return recommend.From(e.similarity, seed, limit)
}

// Radio is RecommendFrom sized as a station playlist
func (e *Engine) Radio(seedID string) []recommend.Recommendation {
	return e.RecommendFrom(seedID, e.opts.RadioSize)
}

// PathBetween returns the least-distance chain of tracks from a to b
func (e *Engine) PathBetween(a, b string) []*model.Track {
	defer metrics.ObserveQuery("path")()
	e.mu.RLock()
	defer e.mu.RUnlock()

	ta, okA := e.similarity.Vertex(a)
	tb, okB := e.similarity.Vertex(b)
	if !okA || !okB {
		return []*model.Track{}
	}
	return recommend.PathBetween(e.similarity, ta, tb)
}

// Discover collects the closest neighbours of each of the user's favorites,
// in favorite order, skipping the favorites themselves and repeats
func (e *Engine) Discover(username string) []*model.Track {
	defer metrics.ObserveQuery("discover")()
	e.mu.RLock()
	defer e.mu.RUnlock()

	favorites := e.favorites[username]
	exclude := make(map[string]bool, len(favorites))
	for _, id := range favorites {
		exclude[id] = true
	}

	out := make([]*model.Track, 0, e.opts.DiscoverySize)
	for _, id := range favorites {
		for _, s := range e.topNSimilarLocked(id, topSimilarPerFavorite) {
			if len(out) >= e.opts.DiscoverySize {
				return out
			}
			if exclude[s.Track.ID] {
				continue
			}
			exclude[s.Track.ID] = true
			out = append(out, s.Track)
		}
	}
	return out
}

// Suggest ranks friends of friends by how many friends they share with
// username
func (e *Engine) Suggest(username string, limit int) []social.Suggestion {
	defer metrics.ObserveQuery("suggest")()
	e.mu.RLock()
	defer e.mu.RUnlock()
	return social.Suggest(e.social, username, limit)
}

func (e *Engine) SecondDegree(username string) []string {
	defer metrics.ObserveQuery("second_degree")()
	e.mu.RLock()
	defer e.mu.RUnlock()
	return social.SecondDegree(e.social, username)
}

// Distance is the hop count between two users, -1 when unreachable
func (e *Engine) Distance(from, to string) int {
	defer metrics.ObserveQuery("distance")()
	e.mu.RLock()
	defer e.mu.RUnlock()
	return social.Distance(e.social, from, to)
}

func (e *Engine) ShortestPath(from, to string) []string {
	defer metrics.ObserveQuery("shortest_path")()
	e.mu.RLock()
	defer e.mu.RUnlock()
	return social.ShortestPath(e.social, from, to)
}

// TraverseFrom lists every user reachable from seed in breadth-first order
func (e *Engine) TraverseFrom(seed string) []string {
	defer metrics.ObserveQuery("traverse")()
	e.mu.RLock()
	defer e.mu.RUnlock()
	return social.Traverse(e.social, seed)
}

// Followers returns who follows username
func (e *Engine) Followers(username string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.follows.Followers(username)
}

// Following returns who username follows
func (e *Engine) Following(username string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.follows.Following(username)
}

// FollowCircles returns groups of users who all reach each other by
// following
func (e *Engine) FollowCircles() []cycles.Circle {
	defer metrics.ObserveQuery("follow_circles")()
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cycles.FindFollowCircles(e.follows)
}

// Users returns every known username, sorted
func (e *Engine) Users() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.social.Users()
}

// SearchByPrefix returns titles starting with prefix, sorted
func (e *Engine) SearchByPrefix(prefix string) []string {
	defer metrics.ObserveQuery("autocomplete")()
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.titles.SearchByPrefixSorted(prefix)
}

// ContainsTitle reports whether the autocomplete index holds title
func (e *Engine) ContainsTitle(title string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.titles.Contains(title)
}

func (e *Engine) WordCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.titles.Count()
}

func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	follows := 0
	for _, u := range e.social.Users() {
		follows += len(e.follows.Following(u))
	}
	return Stats{
		Tracks:  e.similarity.VertexCount(),
		Edges:   e.similarity.EdgeCount(),
		Users:   e.social.UserCount(),
		Follows: follows,
		Words:   e.titles.Count(),
	}
}

// Export returns the node/edge view of the similarity graph
func (e *Engine) Export() *model.Graph {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.similarity.Export()
}
