// Package domain holds the entities, error taxonomy and ports shared by
// the practice and interview flows.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrSchemaInvalid     = errors.New("schema invalid")
	ErrInternal          = errors.New("internal error")
	// ErrAIUnavailable reports that no AI provider credentials are configured.
	ErrAIUnavailable = errors.New("ai provider not configured")
	// ErrParseFailure reports that an AI response held no usable JSON.
	ErrParseFailure = errors.New("parse failure")
)

// Context aliases context.Context so ports read uniformly.
type Context = context.Context

// Challenge types
const (
	ChallengeTypeBugFix         = "bug-fix"
	ChallengeTypeCodeCompletion = "code-completion"
)

// ChallengeRequest is the practice-mode generation request.
type ChallengeRequest struct {
	Language      string `json:"language"`
	SkillLevel    string `json:"skillLevel"`
	ChallengeType string `json:"challengeType"`
}

// Challenge is a practice challenge, AI generated or taken from the fallback table.
// Invariant: Code is never empty on a challenge returned to callers.
type Challenge struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Code           string   `json:"code"`
	Language       string   `json:"language"`
	SkillLevel     string   `json:"skillLevel"`
	ChallengeType  string   `json:"challengeType"`
	ExpectedOutput string   `json:"expectedOutput,omitempty"`
	Hints          []string `json:"hints,omitempty"`
}

// Feedback is the practice-mode evaluation result.
// Invariants: all scores in [0,100]; Score == round(mean(Correctness, Efficiency, CodeQuality)).
type Feedback struct {
	Score       int      `json:"score"`
	Correctness int      `json:"correctness"`
	Efficiency  int      `json:"efficiency"`
	CodeQuality int      `json:"codeQuality"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
	IsCorrect   bool     `json:"isCorrect"`
}

// EvaluationReport is the interview-mode evaluation result.
// Invariant: OverallScore == round(mean(CodingScore, TechnicalScore, BehavioralScore)).
type EvaluationReport struct {
	OverallScore       int      `json:"overallScore"`
	CodingScore        int      `json:"codingScore"`
	TechnicalScore     int      `json:"technicalScore"`
	BehavioralScore    int      `json:"behavioralScore"`
	Strengths          []string `json:"strengths"`
	Improvements       []string `json:"improvements"`
	Feedback           string   `json:"feedback"`
	CodingFeedback     string   `json:"codingFeedback"`
	TechnicalFeedback  string   `json:"technicalFeedback"`
	BehavioralFeedback string   `json:"behavioralFeedback"`
}

// ChallengeRecord is one persisted practice attempt.
type ChallengeRecord struct {
	ID               string
	UserID           string
	ChallengeID      string
	Title            string
	Description      string
	Language         string
	SkillLevel       string
	ChallengeType    string
	OriginalCode     string
	UserSolution     string
	IsCompleted      bool
	IsCorrect        bool
	Score            int
	Correctness      int
	Efficiency       int
	CodeQuality      int
	Feedback         string
	Suggestions      []string
	TimeSpentSeconds int
	CreatedAt        time.Time
	CompletedAt      *time.Time
}

// RecentChallenge is a compact view of a completed attempt.
type RecentChallenge struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Language    string    `json:"language"`
	SkillLevel  string    `json:"skill_level"`
	Score       int       `json:"score"`
	IsCorrect   bool      `json:"is_correct"`
	CompletedAt time.Time `json:"completed_at"`
}

// UserProgress aggregates a user's practice history.
type UserProgress struct {
	TotalChallenges        int               `json:"total_challenges"`
	CorrectChallenges      int               `json:"correct_challenges"`
	IncorrectChallenges    int               `json:"incorrect_challenges"`
	SuccessRate            float64           `json:"success_rate"`
	AverageScore           float64           `json:"average_score"`
	ChallengesByLanguage   map[string]int    `json:"challenges_by_language"`
	ChallengesBySkillLevel map[string]int    `json:"challenges_by_skill_level"`
	RecentChallenges       []RecentChallenge `json:"recent_challenges"`
}

// InterviewRecord is a persisted interview report.
type InterviewRecord struct {
	ID        string
	UserID    string
	SessionID string
	Profile   InterviewProfile
	Report    EvaluationReport
	CreatedAt time.Time
}

// Event is a domain event emitted after an evaluation completes.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	UserID     string    `json:"user_id,omitempty"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Event types
const (
	EventPracticeEvaluated  = "practice.evaluated"
	EventInterviewEvaluated = "interview.evaluated"
)

// Ports

// AIClient is the text-generation gateway. Implementations return the raw model text.
type AIClient interface {
	Generate(ctx Context, prompt string) (string, error)
}

// ProgressRepository persists practice attempts and derives progress from them.
type ProgressRepository interface {
	SaveChallenge(ctx Context, rec ChallengeRecord) (string, error)
	GetProgress(ctx Context, userID string) (UserProgress, error)
	CompletionDates(ctx Context, userID string) ([]time.Time, error)
}

// InterviewRepository persists interview reports.
type InterviewRepository interface {
	SaveReport(ctx Context, rec InterviewRecord) (string, error)
}

// SessionStore keeps interview sessions between requests.
type SessionStore interface {
	Get(ctx Context, id string) (InterviewSession, error)
	Put(ctx Context, s InterviewSession) error
}

// EventPublisher emits domain events.
type EventPublisher interface {
	Publish(ctx Context, evt Event) error
}

// Picker chooses an index in [0,n). It makes fallback selection injectable.
type Picker interface {
	Intn(n int) int
}
