package social

import (
	"sort"

	"github.com/ritzau/syncup/pkg/graph"
)

// Suggestion is a second-degree user ranked by friends in common
type Suggestion struct {
	Username      string `json:"username"`
	CommonFriends int    `json:"commonFriends"`
}

// distanceQueueNode represents a user in the BFS queue
type distanceQueueNode struct {
	username string
	distance int
}

// Traverse returns every user reachable from seed in breadth-first order,
// starting with seed. Unknown seeds yield an empty result.
func Traverse(sg *graph.SocialGraph, seed string) []string {
	order := []string{}
	if !sg.Contains(seed) {
		return order
	}

	visited := map[string]bool{seed: true}
	queue := []string{seed}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, friend := range sg.Neighbors(current) {
			if !visited[friend] {
				visited[friend] = true
				queue = append(queue, friend)
			}
		}
	}
	return order
}

// SecondDegree returns friends of friends of username, excluding username
// and its direct friends. The result is sorted.
func SecondDegree(sg *graph.SocialGraph, username string) []string {
	_, order := commonFriendCounts(sg, username)
	out := make([]string, 0, len(order))
	out = append(out, order...)
	sort.Strings(out)
	return out
}

// Suggest ranks second-degree users by how many of username's friends know
// them, most first. Ties keep the order in which candidates were first
// seen. At most limit suggestions are returned.
func Suggest(sg *graph.SocialGraph, username string, limit int) []Suggestion {
	if limit <= 0 {
		return []Suggestion{}
	}
	counts, order := commonFriendCounts(sg, username)

	suggestions := make([]Suggestion, 0, len(order))
	for _, candidate := range order {
		suggestions = append(suggestions, Suggestion{
			Username:      candidate,
			CommonFriends: counts[candidate],
		})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].CommonFriends > suggestions[j].CommonFriends
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// commonFriendCounts scans the friends of username and counts, for each
// second-degree candidate, how many of those friends it is connected to.
// order lists candidates as first encountered.
func commonFriendCounts(sg *graph.SocialGraph, username string) (map[string]int, []string) {
	counts := make(map[string]int)
	var order []string
	if !sg.Contains(username) {
		return counts, order
	}

	friends := sg.Neighbors(username)
	direct := make(map[string]bool, len(friends))
	for _, f := range friends {
		direct[f] = true
	}

	for _, friend := range friends {
		for _, candidate := range sg.Neighbors(friend) {
			if candidate == username || direct[candidate] {
				continue
			}
			if _, seen := counts[candidate]; !seen {
				order = append(order, candidate)
			}
			counts[candidate]++
		}
	}
	return counts, order
}

// Distance returns the number of hops between two users: 0 for the same
// user and -1 when either is unknown or they are not connected.
func Distance(sg *graph.SocialGraph, from, to string) int {
	if !sg.Contains(from) || !sg.Contains(to) {
		return -1
	}
	if from == to {
		return 0
	}

	visited := map[string]bool{from: true}
	queue := []distanceQueueNode{{username: from, distance: 0}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, friend := range sg.Neighbors(current.username) {
			if friend == to {
				return current.distance + 1
			}
			if !visited[friend] {
				visited[friend] = true
				queue = append(queue, distanceQueueNode{username: friend, distance: current.distance + 1})
			}
		}
	}
	return -1
}

// ShortestPath returns the usernames on a shortest path from origin to
// destination, both included. It is empty when no path exists and has a
// single element when origin equals destination.
func ShortestPath(sg *graph.SocialGraph, origin, destination string) []string {
	if !sg.Contains(origin) || !sg.Contains(destination) {
		return []string{}
	}
	if origin == destination {
		return []string{origin}
	}

	visited := map[string]bool{origin: true}
	prev := make(map[string]string)
	queue := []string{origin}
	found := false

	for len(queue) > 0 && !found {
		current := queue[0]
		queue = queue[1:]

		for _, friend := range sg.Neighbors(current) {
			if visited[friend] {
				continue
			}
			visited[friend] = true
			prev[friend] = current
			queue = append(queue, friend)
			if friend == destination {
				found = true
				break
			}
		}
	}

	if !found {
		return []string{}
	}

	var path []string
	for at := destination; ; at = prev[at] {
		path = append(path, at)
		if at == origin {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
