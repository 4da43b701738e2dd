package social

import (
	"reflect"
	"testing"

	"github.com/ritzau/syncup/pkg/graph"
)

// chain builds the graph derived from follow lists A->B, B->C
func chain() *graph.SocialGraph {
	sg := graph.NewSocialGraph()
	sg.AddConnection("A", "B")
	sg.AddConnection("B", "C")
	return sg
}

func TestChainScenario(t *testing.T) {
	sg := chain()

	if got := SecondDegree(sg, "A"); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("SecondDegree(A) = %v, want [C]", got)
	}
	if got := Distance(sg, "A", "C"); got != 2 {
		t.Errorf("Distance(A,C) = %d, want 2", got)
	}
	if got := ShortestPath(sg, "A", "C"); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("ShortestPath(A,C) = %v, want [A B C]", got)
	}
}

func TestTraverse(t *testing.T) {
	sg := chain()
	sg.AddConnection("A", "D")
	sg.AddUser("lonely")

	got := Traverse(sg, "A")
	want := []string{"A", "B", "D", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Traverse(A) = %v, want %v", got, want)
	}

	if got := Traverse(sg, "nobody"); len(got) != 0 {
		t.Errorf("Traverse of unknown user should be empty, got %v", got)
	}
	if got := Traverse(sg, "lonely"); !reflect.DeepEqual(got, []string{"lonely"}) {
		t.Errorf("Traverse(lonely) = %v", got)
	}
}

func TestDistance(t *testing.T) {
	sg := chain()
	sg.AddUser("island")

	if got := Distance(sg, "A", "A"); got != 0 {
		t.Errorf("Distance to self = %d, want 0", got)
	}
	if Distance(sg, "A", "C") != Distance(sg, "C", "A") {
		t.Error("Distance should be symmetric")
	}
	if got := Distance(sg, "A", "island"); got != -1 {
		t.Errorf("Distance to disconnected user = %d, want -1", got)
	}
	if got := Distance(sg, "A", "ghost"); got != -1 {
		t.Errorf("Distance to unknown user = %d, want -1", got)
	}
}

func TestShortestPath_EdgeCases(t *testing.T) {
	sg := chain()
	sg.AddUser("island")

	if got := ShortestPath(sg, "B", "B"); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("ShortestPath to self = %v, want [B]", got)
	}
	if got := ShortestPath(sg, "A", "island"); len(got) != 0 {
		t.Errorf("Unreachable path should be empty, got %v", got)
	}
	if got := ShortestPath(sg, "ghost", "A"); len(got) != 0 {
		t.Errorf("Unknown origin should give empty path, got %v", got)
	}
}

func TestSuggest(t *testing.T) {
	sg := graph.NewSocialGraph()
	// me knows f1, f2, f3
	sg.AddConnection("me", "f1")
	sg.AddConnection("me", "f2")
	sg.AddConnection("me", "f3")
	// popular is known by all three friends, x by two, y by one
	sg.AddConnection("f1", "y")
	sg.AddConnection("f1", "x")
	sg.AddConnection("f1", "popular")
	sg.AddConnection("f2", "popular")
	sg.AddConnection("f2", "x")
	sg.AddConnection("f3", "popular")
	// friends knowing each other must not be suggested
	sg.AddConnection("f1", "f2")

	got := Suggest(sg, "me", 10)
	want := []Suggestion{
		{Username: "popular", CommonFriends: 3},
		{Username: "x", CommonFriends: 2},
		{Username: "y", CommonFriends: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest = %v, want %v", got, want)
	}

	for _, s := range got {
		if s.Username == "me" || sg.AreConnected("me", s.Username) {
			t.Errorf("Suggestion %s is the user or a direct friend", s.Username)
		}
	}

	if got := Suggest(sg, "me", 1); len(got) != 1 || got[0].Username != "popular" {
		t.Errorf("Suggest with limit 1 = %v", got)
	}
	if got := Suggest(sg, "ghost", 5); len(got) != 0 {
		t.Errorf("Suggest for unknown user should be empty, got %v", got)
	}
}

func TestSuggest_TiesKeepFirstSeenOrder(t *testing.T) {
	sg := graph.NewSocialGraph()
	sg.AddConnection("me", "a")
	sg.AddConnection("me", "b")
	// Neighbours are scanned in sorted order: a first, then b
	sg.AddConnection("a", "zed")
	sg.AddConnection("b", "amy")

	got := Suggest(sg, "me", 5)
	if len(got) != 2 || got[0].Username != "zed" || got[1].Username != "amy" {
		t.Errorf("Expected first-seen order [zed amy], got %v", got)
	}
}
