// Package cycles finds groups of users who all reach each other through
// follow relations.
package cycles

import (
	"sort"

	"github.com/ritzau/syncup/pkg/graph"
)

// Circle is a set of users where every member can reach every other member
// by following follow relations
type Circle struct {
	Members []string `json:"members"`
}

// FindFollowCircles returns every follow circle with at least two members.
// Members are sorted, and circles are ordered by size (largest first) then
// by their first member.
func FindFollowCircles(fg *graph.FollowGraph) []Circle {
	circles := make([]Circle, 0)
	for _, component := range Components(fg.Graph(), 2) {
		members := make([]string, 0, len(component))
		for _, id := range component {
			if name, ok := fg.Username(id); ok {
				members = append(members, name)
			}
		}
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		circles = append(circles, Circle{Members: members})
	}

	sort.Slice(circles, func(i, j int) bool {
		if len(circles[i].Members) != len(circles[j].Members) {
			return len(circles[i].Members) > len(circles[j].Members)
		}
		return circles[i].Members[0] < circles[j].Members[0]
	})
	return circles
}
