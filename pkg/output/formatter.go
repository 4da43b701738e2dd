// Package output prints query results for the one-shot command line mode.
package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ritzau/syncup/pkg/engine"
	"github.com/ritzau/syncup/pkg/model"
	"github.com/ritzau/syncup/pkg/recommend"
	"github.com/ritzau/syncup/pkg/similarity"
	"github.com/ritzau/syncup/pkg/social"
)

var (
	bold   = color.New(color.Bold)
	red    = color.New(color.FgRed)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

// scoreColor picks a color by how close a score is
func scoreColor(score float64) *color.Color {
	switch {
	case score >= 0.6:
		return green
	case score >= 0.4:
		return yellow
	default:
		return red
	}
}

func header(w io.Writer, title string) {
	bold.Fprintln(w, title)
	underline := make([]byte, len(title))
	for i := range underline {
		underline[i] = '='
	}
	bold.Fprintln(w, string(underline))
}

// PrintStats prints the size of every engine structure
func PrintStats(w io.Writer, stats engine.Stats) {
	header(w, "SyncUp - Engine Summary")
	fmt.Fprintf(w, "Tracks: %d (%d similarity links)\n", stats.Tracks, stats.Edges)
	fmt.Fprintf(w, "Users: %d (%d follows)\n", stats.Users, stats.Follows)
	fmt.Fprintf(w, "Titles: %d\n", stats.Words)
	fmt.Fprintln(w)
}

// PrintRecommendations lists tracks recommended from seed, best first
func PrintRecommendations(w io.Writer, seed *model.Track, recs []recommend.Recommendation) {
	header(w, fmt.Sprintf("Recommendations for %q by %s", seed.Title, seed.Artist))
	if len(recs) == 0 {
		yellow.Fprintln(w, "No similar tracks found")
		return
	}

	for i, r := range recs {
		fmt.Fprintf(w, "%2d. %s", i+1, r.Track.Title)
		cyan.Fprintf(w, " - %s", r.Track.Artist)
		fmt.Fprintf(w, " [%s, %d]\n", r.Track.Genre, r.Track.Year)
		scoreColor(r.Similarity).Fprintf(w, "    %.2f %s, %d hop(s)\n",
			r.Similarity, similarity.Level(r.Similarity), r.Hops)
	}
	fmt.Fprintln(w)
}

// PrintSuggestions lists people username may know
func PrintSuggestions(w io.Writer, username string, suggestions []social.Suggestion) {
	header(w, fmt.Sprintf("People %s may know", username))
	if len(suggestions) == 0 {
		yellow.Fprintln(w, "No suggestions")
		return
	}

	for _, s := range suggestions {
		fmt.Fprintf(w, "  %s", s.Username)
		cyan.Fprintf(w, " (%d friend(s) in common)\n", s.CommonFriends)
	}
	fmt.Fprintln(w)
}

// PrintTitles lists autocomplete matches for prefix
func PrintTitles(w io.Writer, prefix string, titles []string) {
	header(w, fmt.Sprintf("Titles starting with %q", prefix))
	if len(titles) == 0 {
		yellow.Fprintln(w, "No matching titles")
		return
	}

	for _, title := range titles {
		green.Fprintf(w, "  %s\n", title)
	}
	green.Fprintf(w, "%d match(es)\n", len(titles))
	fmt.Fprintln(w)
}
