package scoring

import (
	"strings"

	"github.com/fairyhunter13/prepio-api/internal/config"
	"github.com/fairyhunter13/prepio-api/internal/domain"
	"github.com/fairyhunter13/prepio-api/pkg/textx"
)

const (
	defaultFeedback     = "Solution evaluated successfully."
	unavailableFeedback = "Your solution has been submitted successfully. AI evaluation is temporarily unavailable."
	unchangedFeedback   = "You submitted the original code without changes. Please modify the code to solve the challenge."
	unchangedPrefix     = "You submitted the original code without any changes. "
)

var (
	defaultSuggestions = []string{
		"Review your solution for potential improvements",
		"Consider edge cases and error handling",
		"Look for optimization opportunities",
	}
	fallbackSuggestions = []string{
		"Review your code for potential bugs or improvements",
		"Test your solution with different inputs",
		"Consider code readability and best practices",
	}
)

// AIEvaluation is the model's practice verdict after parsing. Suggestions
// is nil when the model did not return an array; IsCorrect is nil when the
// field was absent or not a boolean.
type AIEvaluation struct {
	Correctness float64
	Efficiency  float64
	CodeQuality float64
	Feedback    string
	Suggestions []string
	IsCorrect   *bool
}

// Practice scores practice-mode submissions.
type Practice struct {
	h config.PracticeHeuristics
}

// NewPractice returns a Practice evaluator tuned by h.
func NewPractice(h config.PracticeHeuristics) *Practice {
	return &Practice{h: h}
}

// Identical reports whether the submission equals the original code after
// whitespace normalization.
func Identical(original, submitted string) bool {
	return textx.SameCode(original, submitted)
}

// FromAI turns the model's numbers into a Feedback. Identical submissions
// are capped into the low band regardless of what the model said.
func (p *Practice) FromAI(ev AIEvaluation, ch domain.Challenge, userCode string, identical bool) domain.Feedback {
	fb := domain.Feedback{
		Correctness: Clamp(ev.Correctness),
		Efficiency:  Clamp(ev.Efficiency),
		CodeQuality: Clamp(ev.CodeQuality),
		Feedback:    ev.Feedback,
		Suggestions: ev.Suggestions,
	}
	explicitFalse := ev.IsCorrect != nil && !*ev.IsCorrect
	if identical {
		fb.Correctness = min(fb.Correctness, 20)
		fb.Efficiency = min(fb.Efficiency, 15)
		fb.CodeQuality = min(fb.CodeQuality, 25)
		explicitFalse = true
		fb.Feedback = unchangedPrefix + identicalGuidance(ch.ChallengeType, "Please identify and fix the bugs in the code.", "Please complete the missing parts of the code.")
	}
	if fb.Feedback == "" {
		fb.Feedback = defaultFeedback
	}
	if fb.Suggestions == nil {
		fb.Suggestions = append([]string(nil), defaultSuggestions...)
	}
	fb.Score = Mean3(fb.Correctness, fb.Efficiency, fb.CodeQuality)
	fb.IsCorrect = !explicitFalse && fb.Score >= p.h.PassScore
	return p.PostProcess(fb, userCode)
}

// Fallback is the verdict used when the model could not be reached or
// returned nothing usable.
func (p *Practice) Fallback(userCode string, identical bool) domain.Feedback {
	fb := domain.Feedback{
		Score:       75,
		Correctness: 80,
		Efficiency:  70,
		CodeQuality: 75,
		Feedback:    unavailableFeedback,
		Suggestions: append([]string(nil), fallbackSuggestions...),
	}
	if identical {
		fb.Score, fb.Correctness, fb.Efficiency, fb.CodeQuality = 15, 10, 15, 20
		fb.Feedback = unchangedFeedback
	}
	fb.IsCorrect = fb.Score >= p.h.PassScore
	return p.PostProcess(fb, userCode)
}

// Unchanged is the immediate verdict for an unmodified submission, returned
// without consulting the model.
func (p *Practice) Unchanged(ch domain.Challenge) domain.Feedback {
	guidance := identicalGuidance(ch.ChallengeType,
		"You need to identify and fix the bugs in the code.",
		"You need to complete the missing parts of the code.")
	first := identicalGuidance(ch.ChallengeType,
		"Carefully read through the code to identify the bugs",
		"Look for TODO comments or incomplete sections")
	return domain.Feedback{
		Score:       15,
		Correctness: 10,
		Efficiency:  15,
		CodeQuality: 20,
		Feedback:    unchangedPrefix + guidance + " Please review the challenge description and make the necessary modifications.",
		Suggestions: []string{
			first,
			"Test your solution with the provided examples",
			"Consider edge cases and error handling",
			"Make sure your solution actually addresses the challenge requirements",
		},
		IsCorrect: false,
	}
}

// PostProcess lowers an efficiency score that is implausibly high for a
// short uncommented snippet, then recomputes the overall score.
func (p *Practice) PostProcess(fb domain.Feedback, userCode string) domain.Feedback {
	h := p.h
	if fb.Efficiency > h.EfficiencyClampAbove &&
		!strings.Contains(userCode, h.CommentMarker) &&
		textx.Len(userCode) < h.ShortCodeLength {
		fb.Efficiency = max(fb.Efficiency-h.EfficiencyPenalty, h.EfficiencyFloor)
		fb.Score = Mean3(fb.Correctness, fb.Efficiency, fb.CodeQuality)
		fb.IsCorrect = fb.IsCorrect && fb.Score >= h.PassScore
	}
	return fb
}

func identicalGuidance(challengeType, bugFix, completion string) string {
	if challengeType == domain.ChallengeTypeBugFix {
		return bugFix
	}
	return completion
}
