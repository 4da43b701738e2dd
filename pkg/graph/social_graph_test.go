package graph

import (
	"reflect"
	"testing"
)

func TestSocialGraph_AddConnection(t *testing.T) {
	sg := NewSocialGraph()
	sg.AddConnection("alice", "bob")

	if sg.UserCount() != 2 {
		t.Errorf("Expected 2 users, got %d", sg.UserCount())
	}
	if !sg.AreConnected("alice", "bob") || !sg.AreConnected("bob", "alice") {
		t.Error("Connection should be symmetric")
	}

	// Adding the same connection twice keeps one link
	sg.AddConnection("bob", "alice")
	if got := sg.Neighbors("alice"); len(got) != 1 {
		t.Errorf("Expected one connection, got %v", got)
	}
}

func TestSocialGraph_IgnoresInvalid(t *testing.T) {
	sg := NewSocialGraph()
	sg.AddUser("")
	sg.AddConnection("alice", "alice")
	sg.AddConnection("", "bob")

	if sg.UserCount() != 0 {
		t.Errorf("Invalid input should not add users, got %d", sg.UserCount())
	}
}

func TestSocialGraph_UnknownVsLonely(t *testing.T) {
	sg := NewSocialGraph()
	sg.AddUser("hermit")

	if !sg.Contains("hermit") {
		t.Error("hermit should be known")
	}
	if sg.Contains("ghost") {
		t.Error("ghost should be unknown")
	}
	if n := sg.Neighbors("hermit"); n == nil || len(n) != 0 {
		t.Errorf("hermit should have an empty, non-nil neighbor list, got %v", n)
	}
}

func TestSocialGraph_Neighbors(t *testing.T) {
	sg := NewSocialGraph()
	sg.AddConnection("carol", "bob")
	sg.AddConnection("carol", "alice")
	sg.AddConnection("carol", "dave")

	want := []string{"alice", "bob", "dave"}
	if got := sg.Neighbors("carol"); !reflect.DeepEqual(got, want) {
		t.Errorf("Neighbors = %v, want %v", got, want)
	}
}

func TestSocialGraph_RemoveConnection(t *testing.T) {
	sg := NewSocialGraph()
	sg.AddConnection("alice", "bob")
	sg.RemoveConnection("bob", "alice")

	if sg.AreConnected("alice", "bob") {
		t.Error("Connection should be removed in both directions")
	}
	if sg.UserCount() != 2 {
		t.Errorf("Users should remain after removing a connection, got %d", sg.UserCount())
	}

	// Unknown users are ignored
	sg.RemoveConnection("alice", "nobody")
}

func TestSocialGraph_RemoveUserCascades(t *testing.T) {
	sg := NewSocialGraph()
	sg.AddConnection("alice", "bob")
	sg.AddConnection("alice", "carol")
	sg.AddConnection("bob", "carol")

	sg.RemoveUser("alice")

	if sg.Contains("alice") {
		t.Error("alice should be removed")
	}
	for _, u := range sg.Users() {
		for _, n := range sg.Neighbors(u) {
			if n == "alice" {
				t.Errorf("%s still lists alice as a neighbor", u)
			}
		}
	}
	if !sg.AreConnected("bob", "carol") {
		t.Error("Unrelated connection bob-carol should survive")
	}

	// Re-adding works with a fresh identity
	sg.AddConnection("alice", "bob")
	if !sg.AreConnected("alice", "bob") {
		t.Error("alice should be reconnectable after removal")
	}
	if sg.AreConnected("alice", "carol") {
		t.Error("Old connections must not come back")
	}
}

func TestSocialGraph_Clear(t *testing.T) {
	sg := NewSocialGraph()
	sg.AddConnection("alice", "bob")
	sg.Clear()

	if sg.UserCount() != 0 {
		t.Errorf("Expected empty graph after Clear, got %d users", sg.UserCount())
	}
	sg.AddConnection("x", "y")
	if !sg.AreConnected("x", "y") {
		t.Error("Graph should be usable after Clear")
	}
}

func TestFollowGraph_Direction(t *testing.T) {
	fg := NewFollowGraph()
	fg.Follow("alice", "bob")
	fg.Follow("carol", "bob")
	fg.Follow("bob", "alice")

	if !fg.IsFollowing("alice", "bob") {
		t.Error("alice should follow bob")
	}
	if fg.IsFollowing("bob", "carol") {
		t.Error("bob does not follow carol")
	}

	if got, want := fg.Followers("bob"), []string{"alice", "carol"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Followers(bob) = %v, want %v", got, want)
	}
	if got, want := fg.Following("bob"), []string{"alice"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Following(bob) = %v, want %v", got, want)
	}

	fg.Unfollow("alice", "bob")
	if fg.IsFollowing("alice", "bob") {
		t.Error("Unfollow should remove the relation")
	}
	if !fg.IsFollowing("bob", "alice") {
		t.Error("Unfollow must not touch the reverse relation")
	}

	fg.RemoveUser("bob")
	if got := fg.Following("carol"); len(got) != 0 {
		t.Errorf("carol should follow nobody after bob is removed, got %v", got)
	}
}
