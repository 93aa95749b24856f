package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/prepio-api/internal/adapter/observability"
	"github.com/fairyhunter13/prepio-api/internal/domain"
)

// SessionService drives interview sessions through their stages.
type SessionService struct {
	Store     domain.SessionStore
	Interview InterviewService
	Now       func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(store domain.SessionStore, interview InterviewService) SessionService {
	return SessionService{Store: store, Interview: interview}
}

// Create starts a session in the setup stage.
func (s SessionService) Create(ctx domain.Context, p domain.InterviewProfile, userID string) (domain.InterviewSession, error) {
	if err := ValidateProfile(p); err != nil {
		return domain.InterviewSession{}, err
	}
	now := nowUTC(s.Now)
	sess := domain.InterviewSession{
		ID:             uuid.New().String(),
		UserID:         userID,
		Profile:        p,
		Stage:          domain.StageSetup,
		StageStartedAt: now,
		CreatedAt:      now,
	}
	if err := s.Store.Put(ctx, sess); err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=session.Create: %w", err)
	}
	return sess, nil
}

// Get loads a session after applying any stage time-outs.
func (s SessionService) Get(ctx domain.Context, id string) (domain.InterviewSession, error) {
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return domain.InterviewSession{}, err
	}
	sess, changed := s.expire(ctx, sess)
	if changed {
		if err := s.Store.Put(ctx, sess); err != nil {
			return domain.InterviewSession{}, fmt.Errorf("op=session.Get: %w", err)
		}
	}
	return sess, nil
}

// Advance moves the session one stage forward. Advancing past the report
// stage is a conflict.
func (s SessionService) Advance(ctx domain.Context, id string) (domain.InterviewSession, error) {
	tracer := otel.Tracer("usecase.session")
	ctx, span := tracer.Start(ctx, "SessionService.Advance")
	defer span.End()

	sess, err := s.Get(ctx, id)
	if err != nil {
		return domain.InterviewSession{}, err
	}
	if _, ok := sess.Stage.Next(); !ok {
		return sess, fmt.Errorf("%w: session already at %s", domain.ErrConflict, sess.Stage)
	}
	sess = s.step(ctx, sess, nowUTC(s.Now))
	span.SetAttributes(attribute.String("interview.stage", string(sess.Stage)))
	if err := s.Store.Put(ctx, sess); err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=session.Advance: %w", err)
	}
	return sess, nil
}

// AnswersInput carries answers for the session's current stage.
type AnswersInput struct {
	CodeSolution      *string  `json:"codeSolution"`
	TechnicalAnswers  []string `json:"technicalAnswers"`
	BehavioralAnswers []string `json:"behavioralAnswers"`
}

// RecordAnswers stores answers for the current stage. Answers for any
// other stage are a conflict.
func (s SessionService) RecordAnswers(ctx domain.Context, id string, in AnswersInput) (domain.InterviewSession, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return domain.InterviewSession{}, err
	}
	switch sess.Stage {
	case domain.StageCoding:
		if in.CodeSolution == nil {
			return sess, fmt.Errorf("%w: codeSolution required in coding stage", domain.ErrInvalidArgument)
		}
		sess.CodeSolution = *in.CodeSolution
	case domain.StageTechnical:
		if in.TechnicalAnswers == nil {
			return sess, fmt.Errorf("%w: technicalAnswers required in technical stage", domain.ErrInvalidArgument)
		}
		sess.TechnicalAnswers = in.TechnicalAnswers
	case domain.StageBehavioral:
		if in.BehavioralAnswers == nil {
			return sess, fmt.Errorf("%w: behavioralAnswers required in behavioral stage", domain.ErrInvalidArgument)
		}
		sess.BehavioralAnswers = in.BehavioralAnswers
	default:
		return sess, fmt.Errorf("%w: stage %s takes no answers", domain.ErrConflict, sess.Stage)
	}
	if err := s.Store.Put(ctx, sess); err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=session.RecordAnswers: %w", err)
	}
	return sess, nil
}

// expire advances through every timed stage whose window has elapsed.
// Each step behaves exactly like a manual advance.
func (s SessionService) expire(ctx domain.Context, sess domain.InterviewSession) (domain.InterviewSession, bool) {
	now := nowUTC(s.Now)
	changed := false
	for sess.Stage.Timed() && !now.Before(sess.StageDeadline()) {
		deadline := sess.StageDeadline()
		observability.LoggerFromContext(ctx).Info("interview stage expired",
			slog.String("session_id", sess.ID),
			slog.String("stage", string(sess.Stage)))
		sess = s.step(ctx, sess, deadline)
		changed = true
	}
	return sess, changed
}

// step enters the next stage at startedAt, generating its content or the
// final report.
func (s SessionService) step(ctx domain.Context, sess domain.InterviewSession, startedAt time.Time) domain.InterviewSession {
	next, ok := sess.Stage.Next()
	if !ok {
		return sess
	}
	sess.Stage = next
	sess.StageStartedAt = startedAt
	switch next {
	case domain.StageCoding:
		if c, ok := s.Interview.stageContent(ctx, sess.Profile, next).(domain.CodingProblem); ok {
			sess.Coding = &c
		}
	case domain.StageTechnical:
		if t, ok := s.Interview.stageContent(ctx, sess.Profile, next).(domain.TechnicalSet); ok {
			sess.Technical = &t
		}
	case domain.StageBehavioral:
		if b, ok := s.Interview.stageContent(ctx, sess.Profile, next).(domain.BehavioralSet); ok {
			sess.Behavioral = &b
		}
	case domain.StageReport:
		rep, _ := s.Interview.evaluate(ctx, EvaluateInterviewInput{
			Submission: sess.Submission(),
			UserID:     sess.UserID,
			SessionID:  sess.ID,
		})
		sess.Report = &rep
	}
	return sess
}
