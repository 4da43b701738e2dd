package model

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestParseGenre(t *testing.T) {
	tests := []struct {
		in   string
		want Genre
	}{
		{"Rock", GenreRock},
		{"rock", GenreRock},
		{" hip hop ", GenreHipHop},
		{"r&b", GenreRnB},
		{"polka", GenreOther},
		{"", GenreOther},
	}
	for _, tt := range tests {
		if got := ParseGenre(tt.in); got != tt.want {
			t.Errorf("ParseGenre(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTrack_DecodeNormalizesGenre(t *testing.T) {
	var tr Track
	data := []byte(`{"id":"t1","title":"So What","artist":"Miles Davis","genre":"JAZZ","year":1959,"duration":562}`)
	if err := json.Unmarshal(data, &tr); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if tr.Genre != GenreJazz {
		t.Errorf("Expected genre %q, got %q", GenreJazz, tr.Genre)
	}
	if tr.Duration != 562 {
		t.Errorf("Expected duration 562, got %d", tr.Duration)
	}
}

func TestGenre_UnmarshalEmptyStaysEmpty(t *testing.T) {
	for _, text := range []string{"", "   "} {
		g := GenreRock
		if err := g.UnmarshalText([]byte(text)); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if g != "" {
			t.Errorf("UnmarshalText(%q) = %q, want empty", text, g)
		}
	}

	var c struct {
		Genre Genre `json:"genre"`
	}
	if err := json.Unmarshal([]byte(`{"genre":""}`), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c.Genre != "" {
		t.Errorf("Expected empty genre, got %q", c.Genre)
	}
}

func TestTrack_SameAs(t *testing.T) {
	a := &Track{ID: "1", Title: "One"}
	b := &Track{ID: "1", Title: "Other title"}
	c := &Track{ID: "2"}

	if !a.SameAs(b) {
		t.Error("Tracks with the same ID should be the same")
	}
	if a.SameAs(c) {
		t.Error("Tracks with different IDs should differ")
	}
	var nilTrack *Track
	if nilTrack.SameAs(a) || a.SameAs(nil) {
		t.Error("nil tracks are never the same as anything")
	}
}
