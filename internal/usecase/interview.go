package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/prepio-api/internal/adapter/ai"
	"github.com/fairyhunter13/prepio-api/internal/adapter/observability"
	"github.com/fairyhunter13/prepio-api/internal/domain"
	"github.com/fairyhunter13/prepio-api/internal/fallback"
	"github.com/fairyhunter13/prepio-api/internal/prompt"
	"github.com/fairyhunter13/prepio-api/internal/scoring"
)

// Interview report sources.
const (
	SourceAI        = "ai"
	SourceHeuristic = "heuristic"
	SourceStatic    = "static"
)

// StageError is the body returned for a stage that has no content.
type StageError struct {
	Error   string `json:"error"`
	RawText string `json:"rawText"`
}

// InterviewService generates interview stage content and evaluates
// finished interviews.
type InterviewService struct {
	AI      domain.AIClient
	Prompts prompt.Builder
	Scorer  *scoring.Interview
	Reports domain.InterviewRepository
	Events  domain.EventPublisher
	Picker  domain.Picker
	Now     func() time.Time
}

// NewInterviewService constructs an InterviewService with its dependencies.
func NewInterviewService(client domain.AIClient, prompts prompt.Builder, scorer *scoring.Interview, reports domain.InterviewRepository, events domain.EventPublisher) InterviewService {
	return InterviewService{AI: client, Prompts: prompts, Scorer: scorer, Reports: reports, Events: events, Picker: fallback.RandPicker{}}
}

func (s InterviewService) picker() domain.Picker {
	if s.Picker == nil {
		return fallback.RandPicker{}
	}
	return s.Picker
}

// ValidateProfile requires every profile field.
func ValidateProfile(p domain.InterviewProfile) error {
	if p.CompanyType == "" || p.Role == "" || p.Experience == "" || p.Language == "" {
		return fmt.Errorf("%w: companyType, role, experience and language are required", domain.ErrInvalidArgument)
	}
	return nil
}

// StageContent returns the generated content for stage. It fails with
// domain.ErrAIUnavailable when no provider is configured. Stages without
// content yield a StageError value rather than an error.
func (s InterviewService) StageContent(ctx domain.Context, p domain.InterviewProfile, stage domain.Stage) (any, error) {
	tracer := otel.Tracer("usecase.interview")
	ctx, span := tracer.Start(ctx, "InterviewService.StageContent")
	defer span.End()
	span.SetAttributes(attribute.String("interview.stage", string(stage)))

	if err := ValidateProfile(p); err != nil {
		return nil, err
	}
	if stage == "" {
		return nil, fmt.Errorf("%w: stage is required", domain.ErrInvalidArgument)
	}
	if s.AI == nil {
		return nil, domain.ErrAIUnavailable
	}
	if !stage.IsContentStage() {
		return StageError{Error: "Failed to generate content"}, nil
	}
	return s.stageContent(ctx, p, stage), nil
}

// stageContent asks the model for stage content and substitutes the canned
// content on any failure, including a missing client.
func (s InterviewService) stageContent(ctx domain.Context, p domain.InterviewProfile, stage domain.Stage) any {
	lg := observability.LoggerFromContext(ctx).With(slog.String("stage", string(stage)))
	fb := func(reason string) any {
		observability.RecordFallback(prompt.OpInterviewStage, reason)
		content, _ := fallback.StageContent(stage, p, s.picker())
		return content
	}
	promptText, ok := s.Prompts.InterviewStage(p, stage)
	if !ok {
		return fb(reasonParse)
	}
	if s.AI == nil {
		return fb(reasonUnavailable)
	}
	raw, err := s.AI.Generate(ctx, promptText)
	if err != nil {
		lg.Warn("stage generation failed; serving fallback", slog.Any("error", err))
		return fb(reasonTransport)
	}
	content, err := decodeStage(raw, stage)
	if err != nil {
		lg.Warn("stage response unusable; serving fallback",
			slog.String("raw_snippet", ai.SnippetOf([]byte(raw), 200)),
			slog.Any("error", err))
		return fb(reasonParse)
	}
	return content
}

func decodeStage(raw string, stage domain.Stage) (any, error) {
	switch stage {
	case domain.StageCoding:
		var c domain.CodingProblem
		if err := ai.DecodeStrict(raw, &c); err != nil {
			return nil, err
		}
		if c.Title == "" || c.Description == "" {
			return nil, fmt.Errorf("%w: coding problem without title or description", domain.ErrParseFailure)
		}
		return c, nil
	case domain.StageTechnical:
		var t domain.TechnicalSet
		if err := ai.DecodeStrict(raw, &t); err != nil {
			return nil, err
		}
		if len(t.Questions) == 0 {
			return nil, fmt.Errorf("%w: no technical questions", domain.ErrParseFailure)
		}
		return t, nil
	case domain.StageBehavioral:
		var b domain.BehavioralSet
		if err := ai.DecodeStrict(raw, &b); err != nil {
			return nil, err
		}
		if len(b.Questions) == 0 {
			return nil, fmt.Errorf("%w: no behavioral questions", domain.ErrParseFailure)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: stage %q has no content", domain.ErrInvalidArgument, stage)
	}
}

// EvaluateInterviewInput is one finished interview.
type EvaluateInterviewInput struct {
	Submission domain.InterviewSubmission
	UserID     string
	SessionID  string
}

// Evaluate scores an interview. It fails only when no provider is
// configured; every later failure yields a heuristic or static report.
func (s InterviewService) Evaluate(ctx domain.Context, in EvaluateInterviewInput) (domain.EvaluationReport, error) {
	if s.AI == nil {
		return domain.EvaluationReport{}, domain.ErrAIUnavailable
	}
	rep, _ := s.evaluate(ctx, in)
	return rep, nil
}

// evaluate runs the evaluation and reports where the report came from.
// Without a client the heuristic evaluator is used directly.
func (s InterviewService) evaluate(ctx domain.Context, in EvaluateInterviewInput) (domain.EvaluationReport, string) {
	tracer := otel.Tracer("usecase.interview")
	ctx, span := tracer.Start(ctx, "InterviewService.Evaluate")
	defer span.End()

	rep, source := s.score(ctx, in.Submission)
	span.SetAttributes(attribute.String("evaluation.source", source), attribute.Int("evaluation.overall", rep.OverallScore))
	observability.ObserveInterviewScore(source, rep.OverallScore)

	var profile domain.InterviewProfile
	if in.Submission.Session != nil {
		profile = *in.Submission.Session
	}
	s.persist(ctx, in, profile, rep)
	publish(ctx, s.Events, domain.Event{
		Type:   domain.EventInterviewEvaluated,
		Key:    textOr(in.SessionID, in.UserID),
		UserID: in.UserID,
		Payload: map[string]any{
			"sessionId": in.SessionID,
			"profile":   profile,
			"source":    source,
			"report":    rep,
		},
		OccurredAt: nowUTC(s.Now),
	})
	return rep, source
}

func (s InterviewService) score(ctx domain.Context, sub domain.InterviewSubmission) (domain.EvaluationReport, string) {
	lg := observability.LoggerFromContext(ctx)
	if sub.Session == nil {
		observability.RecordFallback(prompt.OpEvaluateInterview, reasonNoSession)
		return scoring.StaticReport(), SourceStatic
	}
	if s.AI == nil {
		observability.RecordFallback(prompt.OpEvaluateInterview, reasonUnavailable)
		return s.Scorer.Heuristic(sub), SourceHeuristic
	}
	raw, err := s.AI.Generate(ctx, s.Prompts.EvaluateInterview(sub))
	if err != nil {
		lg.Warn("interview evaluation failed; serving static report", slog.Any("error", err))
		observability.RecordFallback(prompt.OpEvaluateInterview, reasonTransport)
		return scoring.StaticReport(), SourceStatic
	}
	r, err := parseReport(raw)
	if err != nil {
		lg.Info("interview evaluation unparsable; scoring heuristically",
			slog.String("raw_snippet", ai.SnippetOf([]byte(raw), 200)),
			slog.Any("error", err))
		observability.RecordFallback(prompt.OpEvaluateInterview, reasonParse)
		return s.Scorer.Heuristic(sub), SourceHeuristic
	}
	return scoring.FromAI(r), SourceAI
}

func parseReport(raw string) (scoring.AIReport, error) {
	var obj ai.Object
	if err := ai.DecodeStrict(raw, &obj); err != nil {
		return scoring.AIReport{}, err
	}
	if obj == nil {
		return scoring.AIReport{}, fmt.Errorf("%w: null report", domain.ErrParseFailure)
	}
	if err := obj.RequireNumbers("codingScore", "technicalScore", "behavioralScore"); err != nil {
		return scoring.AIReport{}, err
	}
	var r scoring.AIReport
	r.CodingScore, _ = obj.Number("codingScore")
	r.TechnicalScore, _ = obj.Number("technicalScore")
	r.BehavioralScore, _ = obj.Number("behavioralScore")
	r.Strengths, _ = obj.Strings("strengths")
	r.Improvements, _ = obj.Strings("improvements")
	r.Feedback, _ = obj.String("feedback")
	r.CodingFeedback, _ = obj.String("codingFeedback")
	r.TechnicalFeedback, _ = obj.String("technicalFeedback")
	r.BehavioralFeedback, _ = obj.String("behavioralFeedback")
	return r, nil
}

func (s InterviewService) persist(ctx domain.Context, in EvaluateInterviewInput, profile domain.InterviewProfile, rep domain.EvaluationReport) {
	if s.Reports == nil || in.UserID == "" {
		return
	}
	rec := domain.InterviewRecord{
		UserID:    in.UserID,
		SessionID: in.SessionID,
		Profile:   profile,
		Report:    rep,
		CreatedAt: nowUTC(s.Now),
	}
	if _, err := s.Reports.SaveReport(ctx, rec); err != nil {
		observability.LoggerFromContext(ctx).Error("save interview report failed",
			slog.String("user_id", in.UserID),
			slog.Any("error", err))
	}
}
