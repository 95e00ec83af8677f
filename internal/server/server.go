// Package server exposes the jobs directory over HTTP for external
// monitors. It goes through the same state store as the CLI query
// commands and never talks to workers directly.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"jobd/internal/store"
	"jobd/internal/worker"
)

type Server struct {
	store   *store.Store
	limiter *rate.Limiter
	router  *mux.Router
}

func New(st *store.Store) *Server {
	s := &Server{
		store: st,
		// generous for a monitoring endpoint, but keeps a misbehaving
		// poller from hammering the jobs directory
		limiter: rate.NewLimiter(rate.Limit(20), 40),
	}

	r := mux.NewRouter()
	r.HandleFunc("/jobs", s.handleList).Methods("GET")
	r.HandleFunc("/jobs/{jobId}", s.handleGet).Methods("GET")
	r.HandleFunc("/jobs/{jobId}/stop", s.handleStop).Methods("POST")
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}
	s.router.ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	log.Printf("monitor listening on %s", addr)
	return http.ListenAndServe(addr, s)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List()
	if err != nil {
		log.Printf("failed to list jobs: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": ids})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]
	job, err := s.store.Read(jobID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"job_id": jobID, "state": "not_found"})
		return
	}
	if err != nil {
		log.Printf("failed to read job %s: %v", jobID, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job_id": jobID, "state": job})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]
	killed, reason, err := worker.Stop(s.store, jobID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"job_id": jobID, "state": "not_found"})
		return
	}
	if err != nil {
		log.Printf("failed to stop job %s: %v", jobID, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": killed, "job_id": jobID, "reason": reason})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
