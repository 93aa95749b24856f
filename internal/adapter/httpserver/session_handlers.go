package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/prepio-api/internal/domain"
	"github.com/fairyhunter13/prepio-api/internal/usecase"
)

type createSessionRequest struct {
	CompanyType string `json:"companyType" validate:"required,oneof=faang startup other"`
	Role        string `json:"role" validate:"required,max=100"`
	Experience  string `json:"experience" validate:"required,oneof=entry mid senior"`
	Language    string `json:"language" validate:"required,max=50"`
}

type answersRequest struct {
	CodeSolution      *string  `json:"codeSolution" validate:"omitempty,max=100000"`
	TechnicalAnswers  []string `json:"technicalAnswers" validate:"omitempty,max=20,dive,max=20000"`
	BehavioralAnswers []string `json:"behavioralAnswers" validate:"omitempty,max=20,dive,max=20000"`
}

// sessionView adds derived timing fields to a session.
type sessionView struct {
	domain.InterviewSession
	Progress      float64 `json:"progress"`
	StageDeadline *string `json:"stageDeadline,omitempty"`
}

func viewOf(sess domain.InterviewSession) sessionView {
	v := sessionView{InterviewSession: sess, Progress: sess.Stage.Progress()}
	if d := sess.StageDeadline(); !d.IsZero() {
		ts := d.UTC().Format(time.RFC3339)
		v.StageDeadline = &ts
	}
	return v
}

// CreateSessionHandler serves POST /api/interview-sessions.
func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		details, err := decodeAndValidate(r, &req)
		if err != nil {
			writeError(w, r, err, details)
			return
		}
		sess, err := s.Sessions.Create(r.Context(), domain.InterviewProfile{
			CompanyType: req.CompanyType,
			Role:        req.Role,
			Experience:  req.Experience,
			Language:    req.Language,
		}, userIDFrom(r))
		if err != nil {
			LoggerFrom(r).Error("create session failed", slog.Any("error", err))
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, viewOf(sess))
	}
}

// GetSessionHandler serves GET /api/interview-sessions/{id}.
func (s *Server) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := validateSessionID(id); err != nil {
			writeError(w, r, err, map[string]string{"field": "id"})
			return
		}
		sess, err := s.Sessions.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(sess))
	}
}

// AdvanceSessionHandler serves POST /api/interview-sessions/{id}/advance.
func (s *Server) AdvanceSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := validateSessionID(id); err != nil {
			writeError(w, r, err, map[string]string{"field": "id"})
			return
		}
		sess, err := s.Sessions.Advance(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(sess))
	}
}

// AnswersHandler serves POST /api/interview-sessions/{id}/answers.
func (s *Server) AnswersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := validateSessionID(id); err != nil {
			writeError(w, r, err, map[string]string{"field": "id"})
			return
		}
		var req answersRequest
		details, err := decodeAndValidate(r, &req)
		if err != nil {
			writeError(w, r, err, details)
			return
		}
		sess, err := s.Sessions.RecordAnswers(r.Context(), id, usecase.AnswersInput{
			CodeSolution:      req.CodeSolution,
			TechnicalAnswers:  req.TechnicalAnswers,
			BehavioralAnswers: req.BehavioralAnswers,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(sess))
	}
}

// ProgressHandler serves GET /api/progress for the X-User-Id caller.
func (s *Server) ProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := s.Progress.Get(r.Context(), userIDFrom(r))
		if err != nil {
			writeError(w, r, err, map[string]string{"header": UserIDHeader})
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
