package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/cholinyo/chatbot-comparador/internal/gateway"
	"github.com/cholinyo/chatbot-comparador/internal/retrieval"
	"github.com/cholinyo/chatbot-comparador/internal/vectorstore"
)

type retrieveRequest struct {
	Question   string            `json:"question"`
	K          int               `json:"k,omitempty"`
	Categories []string          `json:"categories,omitempty"`
	Filters    map[string]string `json:"filters,omitempty"`
}

type retrieveResponse struct {
	Results []retrieval.Result `json:"results"`
	Count   int                `json:"count"`
}

type chatRequest struct {
	retrieveRequest
	Backend string `json:"backend,omitempty"`
}

type chatResponse struct {
	Answer    gateway.Result     `json:"answer"`
	Fragments []retrieval.Result `json:"fragments"`
	NoContext bool               `json:"no_context"`
}

type compareRequest struct {
	retrieveRequest
	Backends []string `json:"backends,omitempty"`
}

type compareResponse struct {
	Answers   []gateway.Result   `json:"answers"`
	Fragments []retrieval.Result `json:"fragments"`
	NoContext bool               `json:"no_context"`
}

type categoryStatus struct {
	Category  string `json:"category"`
	Fragments int    `json:"fragments"`
}

type statusResponse struct {
	Categories []categoryStatus `json:"categories"`
	Total      int              `json:"total"`
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if !s.decodeRetrieve(w, r, &req, &req) {
		return
	}

	results, err := s.retrieve(r, req)
	if err != nil {
		respondError(w, http.StatusBadGateway, err)
		return
	}
	respondJSON(w, http.StatusOK, retrieveResponse{Results: results, Count: len(results)})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decodeRetrieve(w, r, &req, &req.retrieveRequest) {
		return
	}

	backend := s.cfg.DefaultBackend
	if req.Backend != "" {
		var err error
		if backend, err = gateway.ParseBackend(req.Backend); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
	}

	results, err := s.retrieve(r, req.retrieveRequest)
	if err != nil {
		respondError(w, http.StatusBadGateway, err)
		return
	}

	prompt := retrieval.BuildPrompt(req.Question, results)
	answer := s.gw.Generate(r.Context(), prompt, backend)

	respondJSON(w, http.StatusOK, chatResponse{
		Answer:    answer,
		Fragments: results,
		NoContext: len(results) == 0,
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !s.decodeRetrieve(w, r, &req, &req.retrieveRequest) {
		return
	}

	backends := s.cfg.CompareBackends
	if len(req.Backends) > 0 {
		backends = backends[:0:0]
		for _, b := range req.Backends {
			parsed, err := gateway.ParseBackend(b)
			if err != nil {
				respondError(w, http.StatusBadRequest, err)
				return
			}
			backends = append(backends, parsed)
		}
	}
	if len(backends) == 0 {
		respondError(w, http.StatusBadRequest, fmt.Errorf("no backends configured for comparison"))
		return
	}

	results, err := s.retrieve(r, req.retrieveRequest)
	if err != nil {
		respondError(w, http.StatusBadGateway, err)
		return
	}

	prompt := retrieval.BuildPrompt(req.Question, results)
	answers := s.gw.Compare(r.Context(), prompt, backends)

	respondJSON(w, http.StatusOK, compareResponse{
		Answers:   answers,
		Fragments: results,
		NoContext: len(results) == 0,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{}
	for _, idx := range s.indices {
		n := idx.Len()
		resp.Categories = append(resp.Categories, categoryStatus{
			Category:  string(idx.Category()),
			Fragments: n,
		})
		resp.Total += n
	}
	respondJSON(w, http.StatusOK, resp)
}

// decodeRetrieve parses the body into dst (the full request struct, so
// fields outside the embedded retrieval set are populated too) and
// validates the shared retrieval fields through req. It writes the
// error response itself and reports whether to continue.
func (s *Server) decodeRetrieve(w http.ResponseWriter, r *http.Request, dst any, req *retrieveRequest) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return false
	}
	if req.Question == "" {
		respondError(w, http.StatusBadRequest, fmt.Errorf("question is required"))
		return false
	}
	if req.K <= 0 {
		req.K = s.cfg.DefaultK
	}
	if req.K > 10 {
		respondError(w, http.StatusBadRequest, fmt.Errorf("k must be at most 10"))
		return false
	}
	for _, c := range req.Categories {
		if !vectorstore.SourceCategory(c).Valid() {
			respondError(w, http.StatusBadRequest, fmt.Errorf("unknown category %q", c))
			return false
		}
	}
	return true
}

func (s *Server) retrieve(r *http.Request, req retrieveRequest) ([]retrieval.Result, error) {
	categories := make([]vectorstore.SourceCategory, len(req.Categories))
	for i, c := range req.Categories {
		categories[i] = vectorstore.SourceCategory(c)
	}
	return s.fuser.Retrieve(r.Context(), req.Question, req.K, categories, req.Filters)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already out; nothing left to do but log.
		log.Printf("encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
