package web

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ritzau/syncup/pkg/model"
	"github.com/ritzau/syncup/pkg/similarity"
)

// Defaults for list endpoints when no limit is given
const (
	defaultSimilarLimit   = 10
	defaultRecommendLimit = 10
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Export())
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	titles := s.engine.SearchByPrefix(prefix)
	if limit > 0 && len(titles) > limit {
		titles = titles[:limit]
	}
	writeJSON(w, http.StatusOK, titles)
}

type similarityResponse struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	Similarity float64 `json:"similarity"`
	Level      string  `json:"level"`
}

func (s *Server) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	params, err := requireParams(r, "a", "b")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	score := s.engine.Similarity(params[0], params[1])
	writeJSON(w, http.StatusOK, similarityResponse{
		A:          params[0],
		B:          params[1],
		Similarity: score,
		Level:      similarity.Level(score),
	})
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	params, err := requireParams(r, "from", "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.PathBetween(params[0], params[1]))
}

func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Tracks())
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	track, ok := s.engine.Track(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Track not found: %s", id))
		return
	}
	writeJSON(w, http.StatusOK, track)
}

func (s *Server) handleAddTrack(w http.ResponseWriter, r *http.Request) {
	var track model.Track
	if err := decodeBody(w, r, &track); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.engine.AddTrack(&track); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stored, _ := s.engine.Track(track.ID)
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleRemoveTrack(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.engine.RemoveTrack(id) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Track not found: %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r, "n", defaultSimilarLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.TopNSimilar(mux.Vars(r)["id"], n))
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultRecommendLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.RecommendFrom(mux.Vars(r)["id"], limit))
}

func (s *Server) handleRadio(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Radio(mux.Vars(r)["id"]))
}

type distanceResponse struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Distance int    `json:"distance"` // -1 when not connected
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	params, err := requireParams(r, "from", "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, distanceResponse{
		From:     params[0],
		To:       params[1],
		Distance: s.engine.Distance(params[0], params[1]),
	})
}

func (s *Server) handleSocialPath(w http.ResponseWriter, r *http.Request) {
	params, err := requireParams(r, "from", "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.ShortestPath(params[0], params[1]))
}

func (s *Server) handleTraverse(w http.ResponseWriter, r *http.Request) {
	params, err := requireParams(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.TraverseFrom(params[0]))
}

func (s *Server) handleCircles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.FollowCircles())
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Users())
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var user model.User
	if err := decodeBody(w, r, &user); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.engine.AddUser(&user) {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if !s.engine.RemoveUser(username) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("User not found: %s", username))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", s.opts.SuggestionLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Suggest(mux.Vars(r)["username"], limit))
}

func (s *Server) handleSecondDegree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.SecondDegree(mux.Vars(r)["username"]))
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Followers(mux.Vars(r)["username"]))
}

func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Following(mux.Vars(r)["username"]))
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Discover(mux.Vars(r)["username"]))
}

func (s *Server) handleSetFavorites(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	var trackIDs []string
	if err := decodeBody(w, r, &trackIDs); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.engine.SetFavorites(username, trackIDs) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("User not found: %s", username))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !s.engine.Follow(vars["username"], vars["target"]) {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("%s cannot follow %s", vars["username"], vars["target"]))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !s.engine.Unfollow(vars["username"], vars["target"]) {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("%s does not follow %s", vars["username"], vars["target"]))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
