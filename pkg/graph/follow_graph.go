package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// FollowGraph keeps the direction of "A follows B", which the SocialGraph
// collapses into a mutual connection.
type FollowGraph struct {
	graph  *simple.DirectedGraph
	ids    map[string]int64
	names  map[int64]string
	nextID int64
}

// NewFollowGraph creates an empty follow graph
func NewFollowGraph() *FollowGraph {
	return &FollowGraph{
		graph: simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
	}
}

// AddUser adds a user without any follow relation
func (fg *FollowGraph) AddUser(username string) {
	if username == "" {
		return
	}
	if _, exists := fg.ids[username]; exists {
		return
	}

	fg.ids[username] = fg.nextID
	fg.names[fg.nextID] = username
	fg.graph.AddNode(simple.Node(fg.nextID))
	fg.nextID++
}

// Follow records that follower follows followee
func (fg *FollowGraph) Follow(follower, followee string) {
	if follower == "" || followee == "" || follower == followee {
		return
	}
	fg.AddUser(follower)
	fg.AddUser(followee)

	from := fg.ids[follower]
	to := fg.ids[followee]
	if !fg.graph.HasEdgeFromTo(from, to) {
		fg.graph.SetEdge(fg.graph.NewEdge(fg.graph.Node(from), fg.graph.Node(to)))
	}
}

// Unfollow removes the follower -> followee relation
func (fg *FollowGraph) Unfollow(follower, followee string) {
	from, ok1 := fg.ids[follower]
	to, ok2 := fg.ids[followee]
	if !ok1 || !ok2 {
		return
	}
	fg.graph.RemoveEdge(from, to)
}

// IsFollowing reports whether follower follows followee
func (fg *FollowGraph) IsFollowing(follower, followee string) bool {
	from, ok1 := fg.ids[follower]
	to, ok2 := fg.ids[followee]
	if !ok1 || !ok2 {
		return false
	}
	return fg.graph.HasEdgeFromTo(from, to)
}

// Following returns who username follows, sorted
func (fg *FollowGraph) Following(username string) []string {
	id, ok := fg.ids[username]
	if !ok {
		return []string{}
	}
	return fg.collect(fg.graph.From(id))
}

// Followers returns who follows username, sorted
func (fg *FollowGraph) Followers(username string) []string {
	id, ok := fg.ids[username]
	if !ok {
		return []string{}
	}
	return fg.collect(fg.graph.To(id))
}

func (fg *FollowGraph) collect(iter graph.Nodes) []string {
	out := make([]string, 0, iter.Len())
	for iter.Next() {
		out = append(out, fg.names[iter.Node().ID()])
	}
	sort.Strings(out)
	return out
}

// RemoveUser drops a user and all follow relations in either direction
func (fg *FollowGraph) RemoveUser(username string) {
	id, ok := fg.ids[username]
	if !ok {
		return
	}
	fg.graph.RemoveNode(id)
	delete(fg.ids, username)
	delete(fg.names, id)
}

// Username maps a graph node ID back to its username
func (fg *FollowGraph) Username(id int64) (string, bool) {
	name, ok := fg.names[id]
	return name, ok
}

// Graph returns the underlying directed graph
func (fg *FollowGraph) Graph() *simple.DirectedGraph {
	return fg.graph
}
