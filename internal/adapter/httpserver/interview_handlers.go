package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fairyhunter13/prepio-api/internal/domain"
	"github.com/fairyhunter13/prepio-api/internal/scoring"
	"github.com/fairyhunter13/prepio-api/internal/usecase"
)

const msgNoAIKey = "Google AI API key not configured"

// stageRequest keeps absent fields absent when echoed back in "received".
type stageRequest struct {
	CompanyType *string `json:"companyType,omitempty"`
	Role        *string `json:"role,omitempty"`
	Experience  *string `json:"experience,omitempty"`
	Language    *string `json:"language,omitempty"`
	Stage       *string `json:"stage,omitempty"`
}

func (r stageRequest) complete() bool {
	for _, v := range []*string{r.CompanyType, r.Role, r.Experience, r.Language, r.Stage} {
		if v == nil || *v == "" {
			return false
		}
	}
	return true
}

func (r stageRequest) profile() domain.InterviewProfile {
	return domain.InterviewProfile{
		CompanyType: deref(r.CompanyType),
		Role:        deref(r.Role),
		Experience:  deref(r.Experience),
		Language:    deref(r.Language),
	}
}

type evaluateInterviewRequest struct {
	SessionData         *domain.InterviewProfile `json:"sessionData"`
	ChallengeData       *domain.CodingProblem    `json:"challengeData"`
	CodeSolution        domain.FlexString        `json:"codeSolution"`
	TechnicalQuestions  *domain.TechnicalSet     `json:"technicalQuestions"`
	TechnicalAnswers    []string                 `json:"technicalAnswers"`
	BehavioralQuestions *domain.BehavioralSet    `json:"behavioralQuestions"`
	BehavioralAnswers   []string                 `json:"behavioralAnswers"`
	SessionID           string                   `json:"sessionId"`
}

// GenerateInterviewChallengeHandler serves POST /api/generate-interview-challenge.
func (s *Server) GenerateInterviewChallengeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stageRequest
		if err := decodeJSON(r, &req); err != nil {
			LoggerFrom(r).Error("generate-interview-challenge: bad body", slog.Any("error", err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Failed to generate interview challenge",
				"details": err.Error(),
			})
			return
		}
		if !req.complete() {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":    "Missing required parameters",
				"received": req,
			})
			return
		}
		content, err := s.Interview.StageContent(r.Context(), req.profile(), domain.Stage(*req.Stage))
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrAIUnavailable):
				writeMessage(w, http.StatusInternalServerError, msgNoAIKey)
			default:
				LoggerFrom(r).Error("generate-interview-challenge failed", slog.Any("error", err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"error":   "Failed to generate interview challenge",
					"details": err.Error(),
				})
			}
			return
		}
		writeJSON(w, http.StatusOK, content)
	}
}

// EvaluateInterviewHandler serves POST /api/evaluate-interview. An
// unreadable body still yields the static report.
func (s *Server) EvaluateInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req evaluateInterviewRequest
		if err := decodeJSON(r, &req); err != nil {
			LoggerFrom(r).Warn("evaluate-interview: bad body; serving static report", slog.Any("error", err))
			writeJSON(w, http.StatusOK, scoring.StaticReport())
			return
		}
		rep, err := s.Interview.Evaluate(r.Context(), usecase.EvaluateInterviewInput{
			Submission: domain.InterviewSubmission{
				Session:             req.SessionData,
				Challenge:           req.ChallengeData,
				CodeSolution:        string(req.CodeSolution),
				TechnicalQuestions:  req.TechnicalQuestions,
				TechnicalAnswers:    req.TechnicalAnswers,
				BehavioralQuestions: req.BehavioralQuestions,
				BehavioralAnswers:   req.BehavioralAnswers,
			},
			UserID:    userIDFrom(r),
			SessionID: req.SessionID,
		})
		if err != nil {
			if errors.Is(err, domain.ErrAIUnavailable) {
				writeMessage(w, http.StatusInternalServerError, msgNoAIKey)
				return
			}
			LoggerFrom(r).Error("evaluate-interview failed; serving static report", slog.Any("error", err))
			writeJSON(w, http.StatusOK, scoring.StaticReport())
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
