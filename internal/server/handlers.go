package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/umoja/ujenzi/internal/answer"
	"github.com/umoja/ujenzi/internal/llm"
	"github.com/umoja/ujenzi/internal/models"
	"github.com/umoja/ujenzi/internal/storage"
	"go.uber.org/zap"
)

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("ask request", zap.String("question", req.Question), zap.Int("top_k", req.TopK))
	bundle, err := s.engine.Ask(r.Context(), &req)
	if err != nil {
		s.logger.Error("ask failed", zap.Error(err))
		s.respondError(w, askStatusCode(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, bundle)
}

// askStatusCode maps pipeline failures to response codes: bad input is the
// client's fault, a missing knowledge store means we are not ready, and
// model API failures are upstream errors.
func askStatusCode(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, llm.ErrEmbeddingFailed), errors.Is(err, answer.ErrSynthesisFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.engine.Status(r.Context())
	if err != nil {
		s.logger.Error("status failed", zap.Error(err))
		if errors.Is(err, storage.ErrStoreUnavailable) {
			s.respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
