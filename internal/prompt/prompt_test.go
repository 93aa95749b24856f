package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/prepio-api/internal/domain"
)

func TestGenerateChallenge(t *testing.T) {
	p := Builder{}.GenerateChallenge(domain.ChallengeRequest{Language: "Python", SkillLevel: "advanced", ChallengeType: "bug-fix"})
	assert.True(t, strings.HasPrefix(p, "Generate a bug-fix coding challenge for advanced level in Python.\n"))
	assert.Contains(t, p, "- Difficulty appropriate for advanced level")
	assert.NotContains(t, p, "${")
}

func TestEvaluateSolution(t *testing.T) {
	ch := domain.Challenge{Title: "Sum", Description: "Add", Code: "function f(){}", Language: "JavaScript", SkillLevel: "beginner", ChallengeType: "bug-fix"}

	p := Builder{}.EvaluateSolution(ch, "function f(){ return 1 }", false)
	assert.Contains(t, p, "Evaluate this JavaScript coding solution.")
	assert.Contains(t, p, "EXPECTED OUTPUT: Not specified")
	assert.Contains(t, p, "ORIGINAL CODE:\nfunction f(){}\n")
	assert.Contains(t, p, "USER'S SOLUTION:\nfunction f(){ return 1 }\n")
	assert.NotContains(t, p, "WARNING")

	ch.ExpectedOutput = "15"
	p = Builder{}.EvaluateSolution(ch, ch.Code, true)
	assert.Contains(t, p, "EXPECTED OUTPUT: 15")
	assert.Contains(t, p, identicalWarning)
}

func TestEvaluateSolution_UserTextIsNotExpanded(t *testing.T) {
	ch := domain.Challenge{Language: "Go", Code: "x"}
	p := Builder{}.EvaluateSolution(ch, "// ${language} ${fence}", false)
	assert.Contains(t, p, "// ${language} ${fence}")
}

func TestEvaluateSolution_CapsUserCode(t *testing.T) {
	long := strings.Repeat("word ", 5000)
	p := New("gemini", 50).EvaluateSolution(domain.Challenge{Language: "Go", Code: "x"}, long, false)
	assert.Less(t, len(p), len(long))
}

func TestInterviewStage(t *testing.T) {
	b := Builder{}
	entry := domain.InterviewProfile{CompanyType: "faang", Role: "Backend Engineer", Experience: "entry", Language: "python"}

	p, ok := b.InterviewStage(entry, domain.StageCoding)
	require.True(t, ok)
	assert.Contains(t, p, "for a entry level Backend Engineer position at a faang company using python.")
	assert.Contains(t, p, "(easier, fundamental concepts)")
	assert.Contains(t, p, "(algorithmic, optimization focused)")
	assert.Contains(t, p, `"starterCode": "def two_sum(nums, target):\n    # Your code here\n    pass",`)
	assert.Contains(t, p, `"difficulty": "Easy",`)
	assert.Contains(t, p, `"Input: example1\nOutput: result1"`)

	senior := domain.InterviewProfile{CompanyType: "startup", Role: "SRE", Experience: "senior", Language: "go"}
	p, ok = b.InterviewStage(senior, domain.StageTechnical)
	require.True(t, ok)
	assert.Contains(t, p, "Create 5 diverse technical questions.")
	assert.Contains(t, p, "(architecture, leadership, complex systems)")
	assert.Contains(t, p, "\"type\": \"system-design\", \n")

	mid := domain.InterviewProfile{CompanyType: "other", Role: "Frontend", Experience: "mid", Language: "typescript"}
	p, ok = b.InterviewStage(mid, domain.StageBehavioral)
	require.True(t, ok)
	assert.Contains(t, p, "(collaboration, problem-solving, initiative)")
	assert.Contains(t, p, "(collaboration, process, reliability)")
	assert.Contains(t, p, `"question": "Tell me about a time you had to influence others without authority",`)
	assert.Contains(t, p, `"lookingFor": ["Influence", "Initiative", "Growth mindset"],`)

	_, ok = b.InterviewStage(mid, domain.StageReport)
	assert.False(t, ok)
	_, ok = b.InterviewStage(mid, domain.StageSetup)
	assert.False(t, ok)
}

func TestEvaluateInterview(t *testing.T) {
	sub := domain.InterviewSubmission{
		Session:      &domain.InterviewProfile{CompanyType: "startup", Role: "Backend", Experience: "mid", Language: "go"},
		CodeSolution: "func main() {}",
		TechnicalQuestions: &domain.TechnicalSet{Questions: []domain.TechnicalQuestion{
			{Question: "What is a goroutine?"}, {Question: "What is a channel?"},
		}},
		TechnicalAnswers: []string{"A lightweight thread", ""},
	}
	p := Builder{}.EvaluateInterview(sub)
	assert.Contains(t, p, "- Company Type: startup\n- Role: Backend\n- Experience Level: mid\n- Programming Language: go\n")
	assert.Contains(t, p, "Problem: Coding Problem\nDescription: N/A\n")
	assert.Contains(t, p, "```go\nfunc main() {}\n```")
	assert.Contains(t, p, "TECHNICAL QUESTIONS & ANSWERS:\n\nQ1: What is a goroutine?\nAnswer: A lightweight thread\n\n\nQ2: What is a channel?\nAnswer: No answer provided\n\n")
	assert.Contains(t, p, "BEHAVIORAL QUESTIONS & ANSWERS:\nNo behavioral questions\n")

	sub.Challenge = &domain.CodingProblem{Title: "Valid Parentheses", Description: "Brackets"}
	p = Builder{}.EvaluateInterview(sub)
	assert.Contains(t, p, "Problem: Valid Parentheses\nDescription: Brackets\n")
}

func TestEscapeStarter(t *testing.T) {
	assert.Equal(t, `a \"b\"\nc`, escapeStarter("a \"b\"\nc"))
}
