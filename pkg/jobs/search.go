package jobs

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/ritzau/syncup/pkg/model"
)

// KindSearch labels advanced catalog searches
const KindSearch = "search"

// Criteria filters the catalog. Zero-valued fields are not applied.
type Criteria struct {
	Artist   string      `json:"artist,omitempty"` // substring, case and accent insensitive
	Genre    model.Genre `json:"genre,omitempty"`
	YearFrom int         `json:"yearFrom,omitempty"`
	YearTo   int         `json:"yearTo,omitempty"`
	MatchAll bool        `json:"matchAll"` // AND when true, OR when false
}

// SearchResult is what a finished search job carries
type SearchResult struct {
	Tracks []model.Track `json:"tracks"`
	Total  int           `json:"total"` // tracks scanned
}

type predicate func(t *model.Track) bool

func (c Criteria) predicates() []predicate {
	var preds []predicate

	if artist := fold(strings.TrimSpace(c.Artist)); artist != "" {
		preds = append(preds, func(t *model.Track) bool {
			return strings.Contains(fold(t.Artist), artist)
		})
	}
	if c.Genre != "" {
		genre := model.ParseGenre(string(c.Genre))
		preds = append(preds, func(t *model.Track) bool {
			return t.Genre == genre
		})
	}
	switch {
	case c.YearFrom != 0 && c.YearTo != 0:
		preds = append(preds, func(t *model.Track) bool {
			return t.Year >= c.YearFrom && t.Year <= c.YearTo
		})
	case c.YearFrom != 0:
		preds = append(preds, func(t *model.Track) bool { return t.Year >= c.YearFrom })
	case c.YearTo != 0:
		preds = append(preds, func(t *model.Track) bool { return t.Year <= c.YearTo })
	}
	return preds
}

// Empty reports whether no filter is set
func (c Criteria) Empty() bool {
	return len(c.predicates()) == 0
}

// SearchTask scans catalog for tracks matching criteria, reporting
// progress per track. catalog must be a snapshot the caller will not
// modify while the job runs.
func SearchTask(catalog []model.Track, criteria Criteria) Task {
	return func(ctx context.Context, report Reporter) (any, error) {
		preds := criteria.predicates()
		result := SearchResult{Tracks: []model.Track{}, Total: len(catalog)}
		if len(preds) == 0 {
			report(1, "No search criteria given")
			return result, nil
		}

		report(0, "Starting search")
		for i := range catalog {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			t := &catalog[i]
			if matches(t, preds, criteria.MatchAll) {
				result.Tracks = append(result.Tracks, *t)
			}
			report(float64(i+1)/float64(len(catalog)), fmt.Sprintf("Processed %d/%d tracks", i+1, len(catalog)))
		}

		report(1, fmt.Sprintf("Search complete, %d results", len(result.Tracks)))
		return result, nil
	}
}

func matches(t *model.Track, preds []predicate, all bool) bool {
	for _, p := range preds {
		ok := p(t)
		if all && !ok {
			return false
		}
		if !all && ok {
			return true
		}
	}
	return all
}

// fold lower-cases s and strips combining marks so "Beyoncé" matches
// "beyonce"
func fold(s string) string {
	decomposed := norm.NFD.String(strings.ToLower(s))
	out := make([]rune, 0, len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
