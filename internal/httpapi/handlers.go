package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/brickmetric/leadpulse/internal/calls"
	"github.com/brickmetric/leadpulse/internal/leads"
)

type leadPriorityRequest struct {
	Leads      []leads.Lead `json:"leads"`
	MaxResults *int         `json:"max_results"`
}

type leadPriorityResponse struct {
	Leads []leads.ScoreResult `json:"leads"`
}

func (s *Server) handleLeadPriority(w http.ResponseWriter, r *http.Request) {
	var req leadPriorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Leads) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "leads list must not be empty")
		return
	}
	for i, lead := range req.Leads {
		if strings.TrimSpace(lead.LeadID) == "" {
			writeError(w, http.StatusUnprocessableEntity, "lead_id is required for every lead (missing at index "+strconv.Itoa(i)+")")
			return
		}
	}

	maxResults := s.maxResults
	if req.MaxResults != nil {
		maxResults = *req.MaxResults
	}

	results := s.scorer.ScoreBatch(r.Context(), req.Leads, maxResults)
	writeJSON(w, http.StatusOK, leadPriorityResponse{Leads: results})
}

func (s *Server) handleCallEval(w http.ResponseWriter, r *http.Request) {
	var req calls.Transcript
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.CallID) == "" {
		writeError(w, http.StatusUnprocessableEntity, "call_id is required")
		return
	}

	writeJSON(w, http.StatusOK, s.evaluator.Evaluate(r.Context(), req))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "leadpulse",
		"version": s.version,
	})
}
