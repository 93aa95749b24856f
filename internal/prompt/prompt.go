// Package prompt renders the instructions sent to the AI gateway. Every
// builder is a pure function of its typed input; user-supplied text is
// capped at a token budget before it is embedded.
package prompt

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/prepio-api/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/prepio-api/internal/adapter/observability"
	"github.com/fairyhunter13/prepio-api/internal/domain"
	"github.com/fairyhunter13/prepio-api/internal/fallback"
)

// Operation names used for prompt metrics.
const (
	OpGenerateChallenge = "generate_challenge"
	OpEvaluateSolution  = "evaluate_solution"
	OpInterviewStage    = "interview_stage"
	OpEvaluateInterview = "evaluate_interview"
)

// Builder renders prompts. The zero value embeds user text uncapped.
type Builder struct {
	// Model selects the tokenizer used for counting and truncation.
	Model string
	// MaxTokens caps each user-supplied text; <= 0 disables the cap.
	MaxTokens int
}

// New returns a Builder for model with the given per-field cap.
func New(model string, maxTokens int) Builder {
	return Builder{Model: model, MaxTokens: maxTokens}
}

func (b Builder) capped(s string) string {
	out, _ := tokencount.TruncateDefault(s, b.Model, b.MaxTokens)
	return out
}

func (b Builder) finish(op, p string) string {
	observability.ObservePromptTokens(op, tokencount.CountTokensDefault(p, b.Model))
	return p
}

func render(tpl string, kv ...string) string {
	kv = append(kv, "fence", "```")
	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "${"+kv[i]+"}", kv[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// GenerateChallenge renders the practice challenge generation prompt.
func (b Builder) GenerateChallenge(req domain.ChallengeRequest) string {
	return b.finish(OpGenerateChallenge, render(generateChallengeTemplate,
		"challengeType", req.ChallengeType,
		"skillLevel", req.SkillLevel,
		"language", req.Language,
	))
}

// EvaluateSolution renders the practice evaluation prompt. identical adds
// the warning line telling the model the code was not changed.
func (b Builder) EvaluateSolution(ch domain.Challenge, userCode string, identical bool) string {
	warning := ""
	if identical {
		warning = identicalWarning
	}
	expected := ch.ExpectedOutput
	if expected == "" {
		expected = "Not specified"
	}
	return b.finish(OpEvaluateSolution, render(evaluateSolutionTemplate,
		"language", ch.Language,
		"title", ch.Title,
		"challengeType", ch.ChallengeType,
		"description", b.capped(ch.Description),
		"expectedOutput", expected,
		"code", b.capped(ch.Code),
		"userCode", b.capped(userCode),
		"skillLevel", ch.SkillLevel,
		"identicalWarning", warning,
	))
}

// InterviewStage renders the content prompt for a content stage. ok is
// false for stages that have no generated content.
func (b Builder) InterviewStage(p domain.InterviewProfile, stage domain.Stage) (string, bool) {
	var out string
	switch stage {
	case domain.StageCoding:
		out = render(codingStageTemplate,
			"experience", p.Experience,
			"role", p.Role,
			"companyType", p.CompanyType,
			"language", p.Language,
			"levelFocus", byExperience(p.Experience, "easier, fundamental concepts", "complex, system design aspects", "moderate difficulty"),
			"companyStyle", byCompany(p.CompanyType, "algorithmic, optimization focused", "practical, product-focused", "business logic, real-world scenarios"),
			"starterCode", escapeStarter(fallback.StarterCode(p.Language)),
			"difficulty", fallback.Difficulty(p.Experience),
		)
	case domain.StageTechnical:
		out = render(technicalStageTemplate,
			"experience", p.Experience,
			"role", p.Role,
			"companyType", p.CompanyType,
			"language", p.Language,
			"depth", byExperience(p.Experience, "fundamentals and basic concepts", "architecture, leadership, complex systems", "intermediate concepts and practical experience"),
		)
	case domain.StageBehavioral:
		out = render(behavioralStageTemplate,
			"experience", p.Experience,
			"role", p.Role,
			"companyType", p.CompanyType,
			"expectations", byExperience(p.Experience, "learning, growth, basic teamwork", "leadership, mentoring, strategic thinking", "collaboration, problem-solving, initiative"),
			"culture", byCompany(p.CompanyType, "innovation, scale, leadership principles", "adaptability, ownership, fast-paced environment", "collaboration, process, reliability"),
			"leadershipQuestion", byExperience(p.Experience,
				"Tell me about a time you took initiative to learn something new",
				"Describe how you mentored or led a team through a challenge",
				"Tell me about a time you had to influence others without authority"),
			"leadershipTrait", byExperience(p.Experience, "Learning agility", "Leadership", "Influence"),
		)
	default:
		return "", false
	}
	return b.finish(OpInterviewStage, out), true
}

// EvaluateInterview renders the whole-interview evaluation prompt.
// sub.Session must be non-nil.
func (b Builder) EvaluateInterview(sub domain.InterviewSubmission) string {
	s := *sub.Session
	title, description := "Coding Problem", "N/A"
	if sub.Challenge != nil {
		if sub.Challenge.Title != "" {
			title = sub.Challenge.Title
		}
		if sub.Challenge.Description != "" {
			description = sub.Challenge.Description
		}
	}
	var technical, behavioral []string
	if sub.TechnicalQuestions != nil {
		for _, q := range sub.TechnicalQuestions.Questions {
			technical = append(technical, q.Question)
		}
	}
	if sub.BehavioralQuestions != nil {
		for _, q := range sub.BehavioralQuestions.Questions {
			behavioral = append(behavioral, q.Question)
		}
	}
	return b.finish(OpEvaluateInterview, render(evaluateInterviewTemplate,
		"companyType", s.CompanyType,
		"role", s.Role,
		"experience", s.Experience,
		"language", s.Language,
		"problemTitle", title,
		"problemDescription", description,
		"codeSolution", b.capped(sub.CodeSolution),
		"technicalQA", b.qaBlock(technical, sub.TechnicalAnswers, "No technical questions"),
		"behavioralQA", b.qaBlock(behavioral, sub.BehavioralAnswers, "No behavioral questions"),
	))
}

func (b Builder) qaBlock(questions, answers []string, empty string) string {
	if len(questions) == 0 {
		return empty
	}
	parts := make([]string, len(questions))
	for i, q := range questions {
		a := "No answer provided"
		if i < len(answers) && answers[i] != "" {
			a = b.capped(answers[i])
		}
		parts[i] = fmt.Sprintf("\nQ%d: %s\nAnswer: %s\n", i+1, q, a)
	}
	return strings.Join(parts, "\n")
}

func byExperience(experience, entry, senior, other string) string {
	switch experience {
	case domain.ExperienceEntry:
		return entry
	case domain.ExperienceSenior:
		return senior
	default:
		return other
	}
}

func byCompany(companyType, faang, startup, other string) string {
	switch companyType {
	case domain.CompanyFAANG:
		return faang
	case domain.CompanyStartup:
		return startup
	default:
		return other
	}
}

// escapeStarter embeds a template inside a JSON string example.
func escapeStarter(s string) string {
	return strings.NewReplacer(`"`, `\"`, "\n", `\n`).Replace(s)
}
