package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ritzau/syncup/pkg/model"
)

const defaultBrowseLimit = 20

func (s *Server) handleSearchAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.SearchAll(r.URL.Query().Get("q")))
}

func (s *Server) handleGenreTracks(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["genre"]
	genre := model.ParseGenre(name)
	if genre == model.GenreOther && !strings.EqualFold(strings.TrimSpace(name), string(model.GenreOther)) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown genre: %s", name))
		return
	}
	limit, err := intParam(r, "limit", defaultBrowseLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.ByGenre(genre, limit))
}

func (s *Server) handleArtistTracks(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultBrowseLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.ByArtist(mux.Vars(r)["artist"], limit))
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultBrowseLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Trending(mux.Vars(r)["username"], limit))
}

func (s *Server) handleGenreStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.GenreStats())
}

func (s *Server) handleTopArtists(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.TopArtists(limit))
}
