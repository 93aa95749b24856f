package scoring

import (
	"strings"

	"github.com/fairyhunter13/prepio-api/internal/config"
	"github.com/fairyhunter13/prepio-api/internal/domain"
	"github.com/fairyhunter13/prepio-api/pkg/textx"
)

// Interview scores whole interview sessions from surface features of the
// submitted code and answers.
type Interview struct {
	h config.Heuristics
}

// NewInterview returns an Interview evaluator tuned by h.
func NewInterview(h config.Heuristics) *Interview {
	return &Interview{h: h}
}

// CodingScore grades a solution against its starter code. It is a proxy for
// effort, not correctness.
func (s *Interview) CodingScore(starter, solution string) int {
	c := s.h.Coding
	if starter == "" || solution == "" {
		return c.ScoreUnchanged
	}
	if strings.TrimSpace(solution) == strings.TrimSpace(starter) {
		return c.ScoreUnchanged
	}
	delta := textx.Len(solution) - textx.Len(starter)
	added := strings.TrimSpace(strings.Replace(solution, starter, "", 1))
	if delta < c.MinimalDelta || hasAnyPrefix(added, c.CommentPrefixes) {
		return c.ScoreMinimal
	}
	if delta <= c.SubstantialGrowth {
		return c.ScoreInsufficient
	}
	hasLogic := containsAny(solution, c.LogicKeywords)
	hasData := containsAny(solution, c.DataStructureKeywords)
	switch {
	case hasLogic && hasData:
		return c.ScoreGood
	case hasLogic:
		return c.ScoreBasic
	default:
		return c.ScorePoor
	}
}

// AnswerScore averages banded per-answer points. The divisor is the number
// of questions asked, or the number of answers when that is larger; empty
// answers add nothing. No answers at all score 0.
func AnswerScore(answers []string, questions int, bands config.AnswerBands) int {
	if len(answers) == 0 {
		return 0
	}
	total := 0
	for _, a := range answers {
		n := textx.Len(strings.TrimSpace(a))
		if n == 0 {
			continue
		}
		total += bandFor(n, bands)
	}
	return Round(float64(total) / float64(max(len(answers), questions)))
}

func bandFor(n int, bands config.AnswerBands) int {
	for _, b := range bands.Steps {
		if n < b.Below {
			return b.Score
		}
	}
	return bands.Otherwise
}

// TechnicalScore applies the technical answer bands.
func (s *Interview) TechnicalScore(answers []string, questions int) int {
	return AnswerScore(answers, questions, s.h.Technical)
}

// BehavioralScore applies the behavioral answer bands.
func (s *Interview) BehavioralScore(answers []string, questions int) int {
	return AnswerScore(answers, questions, s.h.Behavioral)
}

// Heuristic evaluates a submission without the model.
func (s *Interview) Heuristic(sub domain.InterviewSubmission) domain.EvaluationReport {
	starter := ""
	if sub.Challenge != nil {
		starter = sub.Challenge.StarterCode
	}
	techQ, behQ := 0, 0
	if sub.TechnicalQuestions != nil {
		techQ = len(sub.TechnicalQuestions.Questions)
	}
	if sub.BehavioralQuestions != nil {
		behQ = len(sub.BehavioralQuestions.Questions)
	}
	return Report(
		s.CodingScore(starter, sub.CodeSolution),
		s.TechnicalScore(sub.TechnicalAnswers, techQ),
		s.BehavioralScore(sub.BehavioralAnswers, behQ),
	)
}

// AIReport is the model's interview verdict after parsing.
type AIReport struct {
	CodingScore        float64
	TechnicalScore     float64
	BehavioralScore    float64
	Strengths          []string
	Improvements       []string
	Feedback           string
	CodingFeedback     string
	TechnicalFeedback  string
	BehavioralFeedback string
}

// FromAI normalizes the model's report: sub-scores are clamped and the
// overall score is recomputed. Missing texts come from the ladders.
func FromAI(r AIReport) domain.EvaluationReport {
	rep := Report(Clamp(r.CodingScore), Clamp(r.TechnicalScore), Clamp(r.BehavioralScore))
	if r.Strengths != nil {
		rep.Strengths = r.Strengths
	}
	if r.Improvements != nil {
		rep.Improvements = r.Improvements
	}
	rep.Feedback = textx.FirstNonEmpty(r.Feedback, rep.Feedback)
	rep.CodingFeedback = textx.FirstNonEmpty(r.CodingFeedback, rep.CodingFeedback)
	rep.TechnicalFeedback = textx.FirstNonEmpty(r.TechnicalFeedback, rep.TechnicalFeedback)
	rep.BehavioralFeedback = textx.FirstNonEmpty(r.BehavioralFeedback, rep.BehavioralFeedback)
	return rep
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(s, w) {
			return true
		}
	}
	return false
}
