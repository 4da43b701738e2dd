package engine

import (
	"reflect"
	"testing"

	"github.com/ritzau/syncup/pkg/model"
)

func browseTracks() []*model.Track {
	return []*model.Track{
		{ID: "1", Title: "Imagine", Artist: "John Lennon", Genre: model.GenreRock, Year: 1971, Duration: 183},
		{ID: "2", Title: "So What", Artist: "Miles Davis", Genre: model.GenreJazz, Year: 1959, Duration: 562},
		{ID: "3", Title: "Blue in Green", Artist: "Miles Davis", Genre: model.GenreJazz, Year: 1959, Duration: 337},
		{ID: "4", Title: "Jealous Guy", Artist: "John Lennon", Genre: model.GenreRock, Year: 1971, Duration: 254},
		{ID: "5", Title: "Take Five", Artist: "Dave Brubeck", Genre: model.GenreJazz, Year: 1959, Duration: 324},
		{ID: "6", Title: "Clocks", Artist: "Coldplay", Genre: model.GenreAlternative, Year: 2002, Duration: 307},
	}
}

func trackIDs(tracks []model.Track) []string {
	out := []string{}
	for _, t := range tracks {
		out = append(out, t.ID)
	}
	return out
}

func TestSearchAll(t *testing.T) {
	e := newEngine(t, browseTracks(), nil)

	tests := []struct {
		term string
		want []string
	}{
		{"miles", []string{"2", "3"}},
		{"GREEN", []string{"3"}},
		{"jazz", []string{"2", "3", "5"}},
		{"1971", []string{"1", "4"}},
		{"200", []string{"6"}},
		{"  ", []string{}},
		{"polka", []string{}},
	}
	for _, tt := range tests {
		if got := trackIDs(e.SearchAll(tt.term)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SearchAll(%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestByGenreAndArtist(t *testing.T) {
	e := newEngine(t, browseTracks(), nil)

	if got := trackIDs(e.ByGenre(model.GenreJazz, 0)); !reflect.DeepEqual(got, []string{"2", "3", "5"}) {
		t.Errorf("ByGenre(Jazz) = %v", got)
	}
	if got := trackIDs(e.ByGenre(model.GenreJazz, 2)); !reflect.DeepEqual(got, []string{"2", "3"}) {
		t.Errorf("ByGenre(Jazz, 2) = %v", got)
	}
	if got := e.ByGenre(model.GenrePop, 5); len(got) != 0 {
		t.Errorf("No pop tracks expected, got %v", trackIDs(got))
	}

	if got := trackIDs(e.ByArtist("lennon", 0)); !reflect.DeepEqual(got, []string{"1", "4"}) {
		t.Errorf("ByArtist(lennon) = %v", got)
	}
	if got := trackIDs(e.ByArtist("DAVIS", 1)); !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("ByArtist(DAVIS, 1) = %v", got)
	}
	if got := e.ByArtist(" ", 0); len(got) != 0 {
		t.Errorf("Blank artist should match nothing, got %v", trackIDs(got))
	}
}

func TestTrending(t *testing.T) {
	users := []*model.User{
		{Username: "ana", Favorites: []string{"1", "2", "4"}},
		{Username: "tie", Favorites: []string{"1", "2"}},
		{Username: "ghost", Favorites: []string{"missing"}},
	}
	e := newEngine(t, browseTracks(), users)

	// Two rock favorites against one jazz; favorites are left out
	if got := trackIDs(e.Trending("ana", 10)); len(got) != 0 {
		t.Errorf("Every rock track is a favorite of ana, got %v", got)
	}
	// Rock is declared before Jazz
	if got := trackIDs(e.Trending("tie", 10)); !reflect.DeepEqual(got, []string{"4"}) {
		t.Errorf("Trending(tie) = %v, want [4]", got)
	}
	// Without known favorites the largest catalog genre is used
	if got := trackIDs(e.Trending("ghost", 2)); !reflect.DeepEqual(got, []string{"2", "3"}) {
		t.Errorf("Trending(ghost) = %v, want [2 3]", got)
	}
	if got := trackIDs(e.Trending("nobody", 0)); !reflect.DeepEqual(got, []string{"2", "3", "5"}) {
		t.Errorf("Trending(nobody) = %v", got)
	}

	empty := newEngine(t, nil, nil)
	if got := empty.Trending("ana", 5); len(got) != 0 {
		t.Errorf("Empty catalog should trend nothing, got %v", got)
	}
}

func TestGenreStats(t *testing.T) {
	tracks := append(browseTracks(), &model.Track{ID: "7", Title: "Halo", Artist: "Beyoncé", Genre: model.GenrePop, Year: 2008})
	e := newEngine(t, tracks, nil)

	want := []GenreCount{
		{Genre: model.GenreJazz, Tracks: 3},
		{Genre: model.GenreRock, Tracks: 2},
		{Genre: model.GenrePop, Tracks: 1},
		{Genre: model.GenreAlternative, Tracks: 1},
	}
	if got := e.GenreStats(); !reflect.DeepEqual(got, want) {
		t.Errorf("GenreStats() = %v, want %v", got, want)
	}
}

func TestTopArtists(t *testing.T) {
	e := newEngine(t, browseTracks(), nil)

	want := []ArtistCount{
		{Artist: "John Lennon", Tracks: 2},
		{Artist: "Miles Davis", Tracks: 2},
		{Artist: "Coldplay", Tracks: 1},
	}
	if got := e.TopArtists(3); !reflect.DeepEqual(got, want) {
		t.Errorf("TopArtists(3) = %v, want %v", got, want)
	}
	if got := e.TopArtists(0); len(got) != 4 {
		t.Errorf("Expected all 4 artists, got %v", got)
	}
}
