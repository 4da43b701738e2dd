package model

import "strings"

// Genre is the closed set of musical genres a track can belong to
type Genre string

const (
	GenreRock        Genre = "Rock"
	GenrePop         Genre = "Pop"
	GenreJazz        Genre = "Jazz"
	GenreReggaeton   Genre = "Reggaeton"
	GenreElectronic  Genre = "Electronic"
	GenreClassical   Genre = "Classical"
	GenreHipHop      Genre = "Hip Hop"
	GenreSalsa       Genre = "Salsa"
	GenreBachata     Genre = "Bachata"
	GenreMerengue    Genre = "Merengue"
	GenreBallad      Genre = "Ballad"
	GenreCountry     Genre = "Country"
	GenreBlues       Genre = "Blues"
	GenreMetal       Genre = "Metal"
	GenrePunk        Genre = "Punk"
	GenreIndie       Genre = "Indie"
	GenreAlternative Genre = "Alternative"
	GenreReggae      Genre = "Reggae"
	GenreFolk        Genre = "Folk"
	GenreRnB         Genre = "R&B"
	GenreSoul        Genre = "Soul"
	GenreFunk        Genre = "Funk"
	GenreCumbia      Genre = "Cumbia"
	GenreVallenato   Genre = "Vallenato"
	GenreOther       Genre = "Other"
)

// Genres lists every known genre in declaration order
var Genres = []Genre{
	GenreRock, GenrePop, GenreJazz, GenreReggaeton, GenreElectronic,
	GenreClassical, GenreHipHop, GenreSalsa, GenreBachata, GenreMerengue,
	GenreBallad, GenreCountry, GenreBlues, GenreMetal, GenrePunk,
	GenreIndie, GenreAlternative, GenreReggae, GenreFolk, GenreRnB,
	GenreSoul, GenreFunk, GenreCumbia, GenreVallenato, GenreOther,
}

// ParseGenre matches a genre name case-insensitively.
// Unknown names map to GenreOther.
func ParseGenre(name string) Genre {
	name = strings.TrimSpace(name)
	for _, g := range Genres {
		if strings.EqualFold(string(g), name) {
			return g
		}
	}
	return GenreOther
}

// UnmarshalText normalizes genre names read from catalog files
// Empty text leaves the genre empty.
func (g *Genre) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*g = ""
		return nil
	}
	*g = ParseGenre(string(text))
	return nil
}

// Track is a catalog item. Identity is defined by ID alone: two Track values
// with the same ID are the same vertex regardless of their other fields.
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Genre    Genre  `json:"genre"`
	Year     int    `json:"year"`
	// Duration is in seconds.
	Duration int    `json:"duration"`
	AudioURL string `json:"audioUrl,omitempty"`
}

// SameAs reports whether both tracks refer to the same catalog item
func (t *Track) SameAs(other *Track) bool {
	if t == nil || other == nil {
		return false
	}
	return t.ID == other.ID
}

// User is a member of the social graph. Username is the identity.
type User struct {
	Username  string   `json:"username"`
	Name      string   `json:"name"`
	// Follows holds usernames, Favorites holds track IDs.
	Follows   []string `json:"follows,omitempty"`
	Favorites []string `json:"favorites,omitempty"`
}
