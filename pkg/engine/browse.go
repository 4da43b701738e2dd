package engine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ritzau/syncup/pkg/metrics"
	"github.com/ritzau/syncup/pkg/model"
)

// GenreCount is the number of catalog tracks in a genre
type GenreCount struct {
	Genre  model.Genre `json:"genre"`
	Tracks int         `json:"tracks"`
}

// ArtistCount is the number of catalog tracks by an artist
type ArtistCount struct {
	Artist string `json:"artist"`
	Tracks int    `json:"tracks"`
}

// SearchAll returns every track whose title, artist, genre or year
// contains term, case-insensitively, sorted by ID. A blank term matches
// nothing.
func (e *Engine) SearchAll(term string) []model.Track {
	defer metrics.ObserveQuery("search_all")()
	term = strings.ToLower(strings.TrimSpace(term))
	out := []model.Track{}
	if term == "" {
		return out
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, t := range e.similarity.Vertices() {
		if strings.Contains(strings.ToLower(t.Title), term) ||
			strings.Contains(strings.ToLower(t.Artist), term) ||
			strings.Contains(strings.ToLower(string(t.Genre)), term) ||
			strings.Contains(strconv.Itoa(t.Year), term) {
			out = append(out, *t)
		}
	}
	return out
}

// ByGenre returns at most limit tracks of the genre, sorted by ID.
// A limit of zero or less returns them all.
func (e *Engine) ByGenre(genre model.Genre, limit int) []model.Track {
	defer metrics.ObserveQuery("by_genre")()
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filterLocked(limit, nil, func(t *model.Track) bool { return t.Genre == genre })
}

// ByArtist returns at most limit tracks whose artist contains artist,
// case-insensitively, sorted by ID
func (e *Engine) ByArtist(artist string, limit int) []model.Track {
	defer metrics.ObserveQuery("by_artist")()
	artist = strings.ToLower(strings.TrimSpace(artist))
	if artist == "" {
		return []model.Track{}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filterLocked(limit, nil, func(t *model.Track) bool {
		return strings.Contains(strings.ToLower(t.Artist), artist)
	})
}

// Trending lists tracks of the genre username favorites most, leaving out
// the favorites themselves. Ties between genres go to the one declared
// first in model.Genres. A user without known favorites gets the
// catalog's largest genre instead.
func (e *Engine) Trending(username string, limit int) []model.Track {
	defer metrics.ObserveQuery("trending")()
	e.mu.RLock()
	defer e.mu.RUnlock()

	counts := make(map[model.Genre]int)
	exclude := make(map[string]bool)
	for _, id := range e.favorites[username] {
		if t, ok := e.similarity.Vertex(id); ok && !exclude[id] {
			exclude[id] = true
			counts[t.Genre]++
		}
	}
	if len(counts) == 0 {
		counts = e.genreCountsLocked()
	}

	genre, ok := topGenre(counts)
	if !ok {
		return []model.Track{}
	}
	return e.filterLocked(limit, exclude, func(t *model.Track) bool { return t.Genre == genre })
}

// GenreStats counts catalog tracks per genre, largest first. Genres with
// the same count follow genreLess.
func (e *Engine) GenreStats() []GenreCount {
	defer metrics.ObserveQuery("genre_stats")()
	e.mu.RLock()
	counts := e.genreCountsLocked()
	e.mu.RUnlock()

	out := make([]GenreCount, 0, len(counts))
	for g, n := range counts {
		out = append(out, GenreCount{Genre: g, Tracks: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tracks != out[j].Tracks {
			return out[i].Tracks > out[j].Tracks
		}
		return genreLess(out[i].Genre, out[j].Genre)
	})
	return out
}

// TopArtists ranks artists by how many catalog tracks they have, then by
// name. A limit of zero or less returns them all.
func (e *Engine) TopArtists(limit int) []ArtistCount {
	defer metrics.ObserveQuery("top_artists")()
	counts := make(map[string]int)
	e.mu.RLock()
	for _, t := range e.similarity.Vertices() {
		if t.Artist != "" {
			counts[t.Artist]++
		}
	}
	e.mu.RUnlock()

	out := make([]ArtistCount, 0, len(counts))
	for a, n := range counts {
		out = append(out, ArtistCount{Artist: a, Tracks: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tracks != out[j].Tracks {
			return out[i].Tracks > out[j].Tracks
		}
		return out[i].Artist < out[j].Artist
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// filterLocked collects matching tracks in ID order, skipping excluded
// IDs. Callers hold e.mu.
func (e *Engine) filterLocked(limit int, exclude map[string]bool, match func(*model.Track) bool) []model.Track {
	out := []model.Track{}
	for _, t := range e.similarity.Vertices() {
		if limit > 0 && len(out) >= limit {
			break
		}
		if exclude[t.ID] || !match(t) {
			continue
		}
		out = append(out, *t)
	}
	return out
}

func (e *Engine) genreCountsLocked() map[model.Genre]int {
	counts := make(map[model.Genre]int)
	for _, t := range e.similarity.Vertices() {
		counts[t.Genre]++
	}
	return counts
}

// topGenre picks the most frequent genre, breaking ties with genreLess
func topGenre(counts map[model.Genre]int) (model.Genre, bool) {
	var best model.Genre
	found := false
	for g, n := range counts {
		if !found || n > counts[best] || (n == counts[best] && genreLess(g, best)) {
			best, found = g, true
		}
	}
	return best, found
}

// genreLess orders genres as declared in model.Genres. Genres outside the
// list sort last, by name.
func genreLess(a, b model.Genre) bool {
	ra, rb := genreRank(a), genreRank(b)
	if ra != rb {
		return ra < rb
	}
	return a < b
}

func genreRank(g model.Genre) int {
	for i, known := range model.Genres {
		if g == known {
			return i
		}
	}
	return len(model.Genres)
}
