package web

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ritzau/syncup/pkg/jobs"
	"github.com/ritzau/syncup/pkg/logging"
)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobs.List())
}

func (s *Server) handleStartSearch(w http.ResponseWriter, r *http.Request) {
	var criteria jobs.Criteria
	if err := decodeBody(w, r, &criteria); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if criteria.Empty() {
		writeError(w, http.StatusBadRequest, "At least one of artist, genre, yearFrom or yearTo is required")
		return
	}
	if criteria.YearFrom > 0 && criteria.YearTo > 0 && criteria.YearFrom > criteria.YearTo {
		writeError(w, http.StatusBadRequest, "yearFrom must not be after yearTo")
		return
	}

	job := s.jobs.Start(s.opts.BaseContext, jobs.KindSearch, jobs.SearchTask(s.engine.Tracks(), criteria))
	logging.InfoContext(r.Context(), "search job started", "jobID", job.ID)
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleStartRebuild(w http.ResponseWriter, r *http.Request) {
	job := s.jobs.Start(s.opts.BaseContext, jobs.KindRebuild, jobs.RebuildTask(s.engine))
	logging.InfoContext(r.Context(), "rebuild job started", "jobID", job.ID)
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, ok := s.jobs.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Job not found: %s", id))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancelJob cancels a running job, or forgets a finished one
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	job, ok := s.jobs.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Job not found: %s", id))
		return
	}
	if job.Status.Done() {
		s.jobs.Forget(id)
	} else {
		s.jobs.Cancel(id)
	}
	w.WriteHeader(http.StatusNoContent)
}
