package http

import (
	"net/http"

	"github.com/aretw0/storyloom/internal/presentation/graph"
	"github.com/aretw0/storyloom/pkg/analysis"
)

// GetStory handles the GET /story request.
func (s *Server) GetStory(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Story)
}

// GetAnalysis handles the GET /story/analysis request.
func (s *Server) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	report := analysis.Validate(s.Story)
	s.writeJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
		*analysis.Report
	}{OK: report.OK(), Report: report})
}

// GetMermaid handles the GET /story/mermaid request. With ?session=<id>
// the session's visited and current nodes are highlighted.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	var overlay *graph.GraphOverlay
	if id := r.URL.Query().Get("session"); id != "" {
		game, ok := s.Sessions.Get(id)
		if !ok {
			s.writeError(w, r, errSessionNotOpen)
			return
		}
		overlay = graph.OverlayFromState(game.State())
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(graph.GenerateMermaid(s.Story, overlay))); err != nil {
		s.logger.Error("mermaid write failed", "err", err)
	}
}
