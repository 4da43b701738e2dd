package similarity

import (
	"strings"

	"github.com/ritzau/syncup/pkg/model"
)

// Weights of each factor in the composite score. They sum to 1.
const (
	GenreWeight    = 0.4
	ArtistWeight   = 0.3
	YearWeight     = 0.2
	DurationWeight = 0.1
)

// Score returns how alike two tracks are, in [0,1].
// A track compared with itself (same ID) scores 1. The result is
// deterministic and commutative.
func Score(a, b *model.Track) float64 {
	if a == nil || b == nil {
		return 0.0
	}
	if a.SameAs(b) {
		return 1.0
	}

	total := genreScore(a, b)*GenreWeight +
		artistScore(a, b)*ArtistWeight +
		yearScore(a, b)*YearWeight +
		durationScore(a, b)*DurationWeight

	return clamp(total)
}

func genreScore(a, b *model.Track) float64 {
	if a.Genre == b.Genre {
		return 1.0
	}
	return 0.0
}

// artistScore gives full credit for a case-insensitive match and half credit
// when the names share a word longer than two characters
func artistScore(a, b *model.Track) float64 {
	artistA := strings.ToLower(a.Artist)
	artistB := strings.ToLower(b.Artist)
	if artistA == artistB {
		return 1.0
	}

	words := make(map[string]bool)
	for _, w := range strings.Fields(artistA) {
		if len(w) > 2 {
			words[w] = true
		}
	}
	for _, w := range strings.Fields(artistB) {
		if words[w] {
			return 0.5
		}
	}
	return 0.0
}

func yearScore(a, b *model.Track) float64 {
	diff := abs(a.Year - b.Year)
	switch {
	case diff == 0:
		return 1.0
	case diff <= 2:
		return 0.8
	case diff <= 5:
		return 0.6
	case diff <= 10:
		return 0.4
	case diff <= 20:
		return 0.2
	default:
		return 0.0
	}
}

func durationScore(a, b *model.Track) float64 {
	diff := abs(a.Duration - b.Duration)
	switch {
	case diff == 0:
		return 1.0
	case diff <= 30:
		return 0.8
	case diff <= 60:
		return 0.6
	case diff <= 120:
		return 0.4
	default:
		return 0.2
	}
}

// Level describes a score in words, for display
func Level(score float64) string {
	switch {
	case score >= 0.8:
		return "very similar"
	case score >= 0.6:
		return "similar"
	case score >= 0.4:
		return "somewhat similar"
	case score >= 0.2:
		return "slightly similar"
	default:
		return "different"
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
