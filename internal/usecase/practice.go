package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/prepio-api/internal/adapter/ai"
	"github.com/fairyhunter13/prepio-api/internal/adapter/observability"
	"github.com/fairyhunter13/prepio-api/internal/domain"
	"github.com/fairyhunter13/prepio-api/internal/fallback"
	"github.com/fairyhunter13/prepio-api/internal/prompt"
	"github.com/fairyhunter13/prepio-api/internal/scoring"
)

// PracticeService generates practice challenges and evaluates submissions.
// A nil AI client serves the static fallbacks; nil Progress or Events
// disable persistence and event publishing.
type PracticeService struct {
	AI       domain.AIClient
	Prompts  prompt.Builder
	Scorer   *scoring.Practice
	Progress domain.ProgressRepository
	Events   domain.EventPublisher
	Picker   domain.Picker
	// ShortCircuitIdentical answers unmodified submissions without calling the model.
	ShortCircuitIdentical bool
	Now                   func() time.Time
}

// NewPracticeService constructs a PracticeService with its dependencies.
func NewPracticeService(client domain.AIClient, prompts prompt.Builder, scorer *scoring.Practice, progress domain.ProgressRepository, events domain.EventPublisher) PracticeService {
	return PracticeService{
		AI:                    client,
		Prompts:               prompts,
		Scorer:                scorer,
		Progress:              progress,
		Events:                events,
		Picker:                fallback.RandPicker{},
		ShortCircuitIdentical: true,
	}
}

func (s PracticeService) picker() domain.Picker {
	if s.Picker == nil {
		return fallback.RandPicker{}
	}
	return s.Picker
}

// Generate returns a challenge for req. Every failure after validation is
// answered with the static challenge for the requested language and type.
func (s PracticeService) Generate(ctx domain.Context, req domain.ChallengeRequest) (domain.Challenge, error) {
	tracer := otel.Tracer("usecase.practice")
	ctx, span := tracer.Start(ctx, "PracticeService.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("challenge.language", req.Language),
		attribute.String("challenge.type", req.ChallengeType),
	)

	if req.Language == "" || req.SkillLevel == "" || req.ChallengeType == "" {
		return domain.Challenge{}, fmt.Errorf("%w: language, skillLevel and challengeType are required", domain.ErrInvalidArgument)
	}
	id := fallback.ChallengeID(s.picker())
	lg := observability.LoggerFromContext(ctx)

	if s.AI == nil {
		observability.RecordFallback(prompt.OpGenerateChallenge, reasonUnavailable)
		return fallback.Challenge(req, id), nil
	}
	raw, err := s.AI.Generate(ctx, s.Prompts.GenerateChallenge(req))
	if err != nil {
		lg.Warn("challenge generation failed; serving fallback", slog.Any("error", err))
		observability.RecordFallback(prompt.OpGenerateChallenge, reasonTransport)
		return fallback.Challenge(req, id), nil
	}
	ch, reason, err := challengeFromResponse(raw, req, id)
	if err != nil {
		lg.Warn("challenge response unusable; serving fallback",
			slog.String("reason", reason),
			slog.String("raw_snippet", ai.SnippetOf([]byte(raw), 200)),
			slog.Any("error", err))
		observability.RecordFallback(prompt.OpGenerateChallenge, reason)
		return fallback.Challenge(req, id), nil
	}
	return ch, nil
}

func challengeFromResponse(raw string, req domain.ChallengeRequest, id string) (domain.Challenge, string, error) {
	obj, err := ai.ExtractObject(raw)
	if err != nil {
		return domain.Challenge{}, reasonParse, err
	}
	code, _ := obj.String("code")
	if strings.TrimSpace(code) == "" {
		return domain.Challenge{}, reasonNoCode, errors.New("generated challenge has no code")
	}
	ch := domain.Challenge{
		ID:            id,
		Code:          code,
		Language:      req.Language,
		SkillLevel:    req.SkillLevel,
		ChallengeType: req.ChallengeType,
	}
	ch.Title, _ = obj.String("title")
	ch.Description, _ = obj.String("description")
	ch.Hints, _ = obj.Strings("hints")
	if rawOut, ok := obj["expectedOutput"]; ok {
		var out domain.FlexString
		if json.Unmarshal(rawOut, &out) == nil {
			ch.ExpectedOutput = string(out)
		}
	}
	return ch, "", nil
}

// EvaluateInput is one practice submission.
type EvaluateInput struct {
	Challenge        domain.Challenge
	UserCode         string
	UserID           string
	TimeSpentSeconds int
}

// Evaluate scores a submission. Model failures never surface as errors;
// the fallback verdict is returned instead.
func (s PracticeService) Evaluate(ctx domain.Context, in EvaluateInput) (domain.Feedback, error) {
	tracer := otel.Tracer("usecase.practice")
	ctx, span := tracer.Start(ctx, "PracticeService.Evaluate")
	defer span.End()

	if in.UserCode == "" {
		return domain.Feedback{}, fmt.Errorf("%w: user code required", domain.ErrInvalidArgument)
	}
	if mt := mimetype.Detect([]byte(in.UserCode)); isBinary(mt) {
		return domain.Feedback{}, fmt.Errorf("%w: user code must be text, got %s", domain.ErrInvalidArgument, mt.String())
	}

	ch := in.Challenge
	identical := scoring.Identical(ch.Code, in.UserCode)
	span.SetAttributes(attribute.Bool("submission.identical", identical))

	fb, source := s.evaluate(ctx, ch, in.UserCode, identical)
	span.SetAttributes(attribute.String("evaluation.source", source), attribute.Int("evaluation.score", fb.Score))
	observability.ObservePracticeScore(ch.Language, fb.Score)

	s.persist(ctx, in, fb)
	publish(ctx, s.Events, domain.Event{
		Type:   domain.EventPracticeEvaluated,
		Key:    textOr(in.UserID, ch.ID),
		UserID: in.UserID,
		Payload: map[string]any{
			"challengeId": ch.ID,
			"language":    ch.Language,
			"skillLevel":  ch.SkillLevel,
			"source":      source,
			"feedback":    fb,
		},
		OccurredAt: nowUTC(s.Now),
	})
	return fb, nil
}

func (s PracticeService) evaluate(ctx domain.Context, ch domain.Challenge, userCode string, identical bool) (domain.Feedback, string) {
	lg := observability.LoggerFromContext(ctx)
	if identical && s.ShortCircuitIdentical {
		observability.RecordFallback(prompt.OpEvaluateSolution, reasonShortCircuit)
		return s.Scorer.Unchanged(ch), reasonShortCircuit
	}
	if s.AI == nil {
		observability.RecordFallback(prompt.OpEvaluateSolution, reasonUnavailable)
		return s.Scorer.Fallback(userCode, identical), "fallback"
	}
	raw, err := s.AI.Generate(ctx, s.Prompts.EvaluateSolution(ch, userCode, identical))
	if err != nil {
		lg.Warn("solution evaluation failed; serving fallback", slog.Any("error", err))
		observability.RecordFallback(prompt.OpEvaluateSolution, reasonTransport)
		return s.Scorer.Fallback(userCode, identical), "fallback"
	}
	ev, err := parseEvaluation(raw)
	if err != nil {
		lg.Warn("evaluation response unusable; serving fallback",
			slog.String("raw_snippet", ai.SnippetOf([]byte(raw), 200)),
			slog.Any("error", err))
		observability.RecordFallback(prompt.OpEvaluateSolution, reasonParse)
		return s.Scorer.Fallback(userCode, identical), "fallback"
	}
	return s.Scorer.FromAI(ev, ch, userCode, identical), "ai"
}

func parseEvaluation(raw string) (scoring.AIEvaluation, error) {
	obj, err := ai.ExtractObject(raw)
	if err != nil {
		return scoring.AIEvaluation{}, err
	}
	if err := obj.RequireNumbers("correctness", "efficiency", "codeQuality"); err != nil {
		return scoring.AIEvaluation{}, err
	}
	var ev scoring.AIEvaluation
	ev.Correctness, _ = obj.Number("correctness")
	ev.Efficiency, _ = obj.Number("efficiency")
	ev.CodeQuality, _ = obj.Number("codeQuality")
	ev.Feedback, _ = obj.String("feedback")
	ev.Suggestions, _ = obj.Strings("suggestions")
	if b, ok := obj.Bool("isCorrect"); ok {
		ev.IsCorrect = &b
	}
	return ev, nil
}

func (s PracticeService) persist(ctx domain.Context, in EvaluateInput, fb domain.Feedback) {
	if s.Progress == nil || in.UserID == "" {
		return
	}
	now := nowUTC(s.Now)
	ch := in.Challenge
	rec := domain.ChallengeRecord{
		UserID:           in.UserID,
		ChallengeID:      ch.ID,
		Title:            ch.Title,
		Description:      ch.Description,
		Language:         ch.Language,
		SkillLevel:       ch.SkillLevel,
		ChallengeType:    ch.ChallengeType,
		OriginalCode:     ch.Code,
		UserSolution:     in.UserCode,
		IsCompleted:      true,
		IsCorrect:        fb.IsCorrect,
		Score:            fb.Score,
		Correctness:      fb.Correctness,
		Efficiency:       fb.Efficiency,
		CodeQuality:      fb.CodeQuality,
		Feedback:         fb.Feedback,
		Suggestions:      fb.Suggestions,
		TimeSpentSeconds: max(in.TimeSpentSeconds, 0),
		CreatedAt:        now,
		CompletedAt:      &now,
	}
	if _, err := s.Progress.SaveChallenge(ctx, rec); err != nil {
		observability.LoggerFromContext(ctx).Error("save challenge attempt failed",
			slog.String("user_id", in.UserID),
			slog.Any("error", err))
	}
}

// isBinary reports undecodable bytes only. Source code often starts with
// something that looks like a file signature ("BMI =", "MZ = 1"), so a
// matched signature alone is not enough to reject it.
func isBinary(mt *mimetype.MIME) bool {
	return mt.Is("application/octet-stream")
}

func textOr(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
