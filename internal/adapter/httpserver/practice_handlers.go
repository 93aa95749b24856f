package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fairyhunter13/prepio-api/internal/domain"
	"github.com/fairyhunter13/prepio-api/internal/usecase"
)

type evaluateSolutionRequest struct {
	Challenge        *domain.Challenge `json:"challenge"`
	UserCode         string            `json:"userCode"`
	TimeSpentSeconds int               `json:"timeSpentSeconds"`
}

// GenerateChallengeHandler serves POST /api/generate-challenge.
func (s *Server) GenerateChallengeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.ChallengeRequest
		if err := decodeJSON(r, &req); err != nil {
			LoggerFrom(r).Warn("generate-challenge: bad body", slog.Any("error", err))
			writeMessage(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		ch, err := s.Practice.Generate(r.Context(), req)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				writeMessage(w, http.StatusBadRequest, "Missing required fields")
				return
			}
			LoggerFrom(r).Error("generate-challenge failed", slog.Any("error", err))
			writeMessage(w, http.StatusInternalServerError, "Failed to generate challenge")
			return
		}
		writeJSON(w, http.StatusOK, ch)
	}
}

// EvaluateSolutionHandler serves POST /api/evaluate-solution.
func (s *Server) EvaluateSolutionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req evaluateSolutionRequest
		if err := decodeJSON(r, &req); err != nil || req.Challenge == nil || req.UserCode == "" {
			writeMessage(w, http.StatusBadRequest, "Missing challenge or user code")
			return
		}
		fb, err := s.Practice.Evaluate(r.Context(), usecase.EvaluateInput{
			Challenge:        *req.Challenge,
			UserCode:         req.UserCode,
			UserID:           userIDFrom(r),
			TimeSpentSeconds: req.TimeSpentSeconds,
		})
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				writeMessage(w, http.StatusBadRequest, err.Error())
				return
			}
			LoggerFrom(r).Error("evaluate-solution failed", slog.Any("error", err))
			writeMessage(w, http.StatusInternalServerError, "Failed to evaluate solution")
			return
		}
		writeJSON(w, http.StatusOK, fb)
	}
}
