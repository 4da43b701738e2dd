package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
)

// SocialGraph is an undirected, unweighted graph of users keyed by username.
// A username with no entry is unknown to the graph; a known user may have
// no connections. Not safe for concurrent use.
type SocialGraph struct {
	graph  *simple.UndirectedGraph
	ids    map[string]int64 // username -> graph ID
	names  map[int64]string // graph ID -> username
	nextID int64
}

// NewSocialGraph creates an empty social graph
func NewSocialGraph() *SocialGraph {
	return &SocialGraph{
		graph: simple.NewUndirectedGraph(),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
	}
}

// AddUser adds a user. Adding a known user or an empty username is a no-op.
func (sg *SocialGraph) AddUser(username string) {
	if username == "" {
		return
	}
	if _, exists := sg.ids[username]; exists {
		return
	}

	sg.ids[username] = sg.nextID
	sg.names[sg.nextID] = username
	sg.graph.AddNode(simple.Node(sg.nextID))
	sg.nextID++
}

// AddConnection connects two users in both directions, adding them if needed.
// A user cannot be connected to itself.
func (sg *SocialGraph) AddConnection(u1, u2 string) {
	if u1 == "" || u2 == "" || u1 == u2 {
		return
	}
	sg.AddUser(u1)
	sg.AddUser(u2)

	id1 := sg.ids[u1]
	id2 := sg.ids[u2]
	if !sg.graph.HasEdgeBetween(id1, id2) {
		sg.graph.SetEdge(sg.graph.NewEdge(sg.graph.Node(id1), sg.graph.Node(id2)))
	}
}

// RemoveConnection removes the link between two users, if any
func (sg *SocialGraph) RemoveConnection(u1, u2 string) {
	id1, ok1 := sg.ids[u1]
	id2, ok2 := sg.ids[u2]
	if !ok1 || !ok2 {
		return
	}
	sg.graph.RemoveEdge(id1, id2)
}

// RemoveUser removes a user and every connection to it
func (sg *SocialGraph) RemoveUser(username string) {
	id, ok := sg.ids[username]
	if !ok {
		return
	}
	// gonum drops the node's edges from every neighbour as well
	sg.graph.RemoveNode(id)
	delete(sg.ids, username)
	delete(sg.names, id)
}

// Neighbors returns the usernames connected to username, sorted.
// Unknown users have no neighbors.
func (sg *SocialGraph) Neighbors(username string) []string {
	id, ok := sg.ids[username]
	if !ok {
		return []string{}
	}

	var out []string
	iter := sg.graph.From(id)
	for iter.Next() {
		out = append(out, sg.names[iter.Node().ID()])
	}
	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	return out
}

// AreConnected reports whether the two users are direct neighbors
func (sg *SocialGraph) AreConnected(u1, u2 string) bool {
	id1, ok1 := sg.ids[u1]
	id2, ok2 := sg.ids[u2]
	if !ok1 || !ok2 {
		return false
	}
	return sg.graph.HasEdgeBetween(id1, id2)
}

// Contains reports whether username is known to the graph
func (sg *SocialGraph) Contains(username string) bool {
	_, ok := sg.ids[username]
	return ok
}

// Users returns all usernames, sorted
func (sg *SocialGraph) Users() []string {
	out := make([]string, 0, len(sg.ids))
	for name := range sg.ids {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (sg *SocialGraph) UserCount() int {
	return len(sg.ids)
}

// Clear removes every user and connection
func (sg *SocialGraph) Clear() {
	sg.graph = simple.NewUndirectedGraph()
	sg.ids = make(map[string]int64)
	sg.names = make(map[int64]string)
	sg.nextID = 0
}
