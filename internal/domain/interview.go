package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Stage is one linear phase of an interview session.
type Stage string

const (
	StageSetup      Stage = "setup"
	StageCoding     Stage = "coding"
	StageTechnical  Stage = "technical"
	StageBehavioral Stage = "behavioral"
	StageReport     Stage = "report"
)

// StageOrder is the only legal stage sequence.
var StageOrder = []Stage{StageSetup, StageCoding, StageTechnical, StageBehavioral, StageReport}

var stageDurations = map[Stage]time.Duration{
	StageCoding:     45 * time.Minute,
	StageTechnical:  30 * time.Minute,
	StageBehavioral: 20 * time.Minute,
}

// Index returns the position of s in StageOrder, or -1.
func (s Stage) Index() int {
	for i, st := range StageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the following stage. ok is false for the terminal stage or an unknown one.
func (s Stage) Next() (next Stage, ok bool) {
	i := s.Index()
	if i < 0 || i >= len(StageOrder)-1 {
		return s, false
	}
	return StageOrder[i+1], true
}

// Duration is the time box of a timed stage; zero for setup and report.
func (s Stage) Duration() time.Duration { return stageDurations[s] }

// Timed reports whether the stage has a countdown.
func (s Stage) Timed() bool { return s.Duration() > 0 }

// Progress is the stage position as a percentage of the whole session.
func (s Stage) Progress() float64 {
	i := s.Index()
	if i < 0 {
		return 0
	}
	return float64(i) / float64(len(StageOrder)-1) * 100
}

// IsContentStage reports whether the stage has AI-generated content.
func (s Stage) IsContentStage() bool {
	return s == StageCoding || s == StageTechnical || s == StageBehavioral
}

// Experience levels
const (
	ExperienceEntry  = "entry"
	ExperienceMid    = "mid"
	ExperienceSenior = "senior"
)

// Company types
const (
	CompanyFAANG   = "faang"
	CompanyStartup = "startup"
	CompanyOther   = "other"
)

// InterviewProfile describes the simulated position.
type InterviewProfile struct {
	CompanyType string `json:"companyType"`
	Role        string `json:"role"`
	Experience  string `json:"experience"`
	Language    string `json:"language"`
}

// FlexString decodes any JSON scalar or composite into text. Strings keep
// their value; everything else keeps its compact JSON form.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return err
	}
	*f = FlexString(buf.String())
	return nil
}

// TestCase is one example input/expected pair of a coding problem.
type TestCase struct {
	Input    FlexString `json:"input"`
	Expected FlexString `json:"expected"`
}

// CodingProblem is the coding-stage payload.
type CodingProblem struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Examples    []FlexString `json:"examples,omitempty"`
	StarterCode string       `json:"starterCode"`
	TestCases   []TestCase   `json:"testCases,omitempty"`
	Hints       []string     `json:"hints,omitempty"`
	Difficulty  string       `json:"difficulty,omitempty"`
	TimeLimit   string       `json:"timeLimit,omitempty"`
	Topics      []string     `json:"topics,omitempty"`
}

// TechnicalQuestion is one technical-stage question.
type TechnicalQuestion struct {
	Question       string `json:"question"`
	Type           string `json:"type,omitempty"`
	ExpectedAnswer string `json:"expectedAnswer,omitempty"`
	FollowUp       string `json:"followUp,omitempty"`
}

// TechnicalSet is the technical-stage payload.
type TechnicalSet struct {
	Questions []TechnicalQuestion `json:"questions"`
}

// BehavioralQuestion is one behavioral-stage question.
type BehavioralQuestion struct {
	Question   string   `json:"question"`
	Category   string   `json:"category,omitempty"`
	LookingFor []string `json:"lookingFor,omitempty"`
	FollowUp   string   `json:"followUp,omitempty"`
}

// BehavioralSet is the behavioral-stage payload.
type BehavioralSet struct {
	Questions []BehavioralQuestion `json:"questions"`
}

// InterviewSubmission is everything evaluate-interview needs.
// Session is nil when the caller omitted it.
type InterviewSubmission struct {
	Session             *InterviewProfile
	Challenge           *CodingProblem
	CodeSolution        string
	TechnicalQuestions  *TechnicalSet
	TechnicalAnswers    []string
	BehavioralQuestions *BehavioralSet
	BehavioralAnswers   []string
}

// InterviewSession is the server-side state of one simulated interview.
type InterviewSession struct {
	ID                string            `json:"id"`
	UserID            string            `json:"userId,omitempty"`
	Profile           InterviewProfile  `json:"profile"`
	Stage             Stage             `json:"stage"`
	StageStartedAt    time.Time         `json:"stageStartedAt"`
	CreatedAt         time.Time         `json:"createdAt"`
	Coding            *CodingProblem    `json:"coding,omitempty"`
	Technical         *TechnicalSet     `json:"technical,omitempty"`
	Behavioral        *BehavioralSet    `json:"behavioral,omitempty"`
	CodeSolution      string            `json:"codeSolution,omitempty"`
	TechnicalAnswers  []string          `json:"technicalAnswers,omitempty"`
	BehavioralAnswers []string          `json:"behavioralAnswers,omitempty"`
	Report            *EvaluationReport `json:"report,omitempty"`
}

// StageDeadline is when the current timed stage expires; zero if untimed.
func (s InterviewSession) StageDeadline() time.Time {
	if !s.Stage.Timed() {
		return time.Time{}
	}
	return s.StageStartedAt.Add(s.Stage.Duration())
}

// Submission assembles the evaluation input from the session state.
func (s InterviewSession) Submission() InterviewSubmission {
	p := s.Profile
	return InterviewSubmission{
		Session:             &p,
		Challenge:           s.Coding,
		CodeSolution:        s.CodeSolution,
		TechnicalQuestions:  s.Technical,
		TechnicalAnswers:    s.TechnicalAnswers,
		BehavioralQuestions: s.Behavioral,
		BehavioralAnswers:   s.BehavioralAnswers,
	}
}
