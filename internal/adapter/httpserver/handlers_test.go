package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/prepio-api/internal/adapter/session"
	"github.com/fairyhunter13/prepio-api/internal/config"
	"github.com/fairyhunter13/prepio-api/internal/domain"
	"github.com/fairyhunter13/prepio-api/internal/prompt"
	"github.com/fairyhunter13/prepio-api/internal/scoring"
	"github.com/fairyhunter13/prepio-api/internal/usecase"
)

type aiStub struct {
	mu    sync.Mutex
	out   string
	err   error
	calls int
}

func (a *aiStub) Generate(context.Context, string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return a.out, a.err
}

type progressRepoStub struct {
	saved    []domain.ChallengeRecord
	progress domain.UserProgress
}

func (r *progressRepoStub) SaveChallenge(_ context.Context, rec domain.ChallengeRecord) (string, error) {
	r.saved = append(r.saved, rec)
	return "rec", nil
}

func (r *progressRepoStub) GetProgress(context.Context, string) (domain.UserProgress, error) {
	return r.progress, nil
}

func (r *progressRepoStub) CompletionDates(context.Context, string) ([]time.Time, error) {
	return nil, nil
}

type firstPicker struct{}

func (firstPicker) Intn(int) int { return 0 }

// newTestServer wires real services around client; a nil client means no AI key.
func newTestServer(client domain.AIClient, repo domain.ProgressRepository) *Server {
	h := config.DefaultHeuristics()
	practice := usecase.NewPracticeService(client, prompt.Builder{}, scoring.NewPractice(h.Practice), repo, nil)
	practice.Picker = firstPicker{}
	practice.ShortCircuitIdentical = true
	interview := usecase.NewInterviewService(client, prompt.Builder{}, scoring.NewInterview(h), nil, nil)
	interview.Picker = firstPicker{}
	sessions := usecase.NewSessionService(session.NewMemoryStore(time.Hour), interview)
	return NewServer(config.Config{}, practice, interview, sessions, usecase.NewProgressService(repo))
}

func (s *Server) testRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(UserID())
	r.Post("/api/generate-challenge", s.GenerateChallengeHandler())
	r.Post("/api/evaluate-solution", s.EvaluateSolutionHandler())
	r.Post("/api/generate-interview-challenge", s.GenerateInterviewChallengeHandler())
	r.Post("/api/evaluate-interview", s.EvaluateInterviewHandler())
	r.Get("/api/progress", s.ProgressHandler())
	r.Post("/api/interview-sessions", s.CreateSessionHandler())
	r.Get("/api/interview-sessions/{id}", s.GetSessionHandler())
	r.Post("/api/interview-sessions/{id}/advance", s.AdvanceSessionHandler())
	r.Post("/api/interview-sessions/{id}/answers", s.AnswersHandler())
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func TestGenerateChallenge_MissingFields(t *testing.T) {
	h := newTestServer(nil, nil).testRouter()
	for _, body := range []string{`{"language":"JavaScript","skillLevel":"beginner"}`, `not json`, ``} {
		rec := do(t, h, http.MethodPost, "/api/generate-challenge", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Missing required fields"}`, rec.Body.String())
	}
}

func TestGenerateChallenge_FallbackWithoutAI(t *testing.T) {
	h := newTestServer(nil, nil).testRouter()
	rec := do(t, h, http.MethodPost, "/api/generate-challenge", `{"language":"Python","skillLevel":"advanced","challengeType":"code-completion"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	m := decodeBody(t, rec)
	assert.Equal(t, "Python", m["language"])
	assert.Equal(t, "advanced", m["skillLevel"])
	assert.Equal(t, "code-completion", m["challengeType"])
	assert.NotEmpty(t, m["code"])
	assert.Len(t, m["id"], 7)
}

func TestGenerateChallenge_AI(t *testing.T) {
	stub := &aiStub{out: "```json\n{\"title\":\"Off by one\",\"description\":\"Fix it\",\"code\":\"let x = 1;\",\"hints\":[\"h\"],\"expectedOutput\":3}\n```"}
	h := newTestServer(stub, nil).testRouter()
	rec := do(t, h, http.MethodPost, "/api/generate-challenge", `{"language":"JavaScript","skillLevel":"beginner","challengeType":"bug-fix"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	m := decodeBody(t, rec)
	assert.Equal(t, "Off by one", m["title"])
	assert.Equal(t, "let x = 1;", m["code"])
	assert.Equal(t, "3", m["expectedOutput"])
	assert.Equal(t, 1, stub.calls)
}

func TestEvaluateSolution_MissingInput(t *testing.T) {
	h := newTestServer(nil, nil).testRouter()
	for _, body := range []string{`{"userCode":"x"}`, `{"challenge":{"code":"a"}}`, `{"challenge":{"code":"a"},"userCode":""}`, `[`} {
		rec := do(t, h, http.MethodPost, "/api/evaluate-solution", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Missing challenge or user code"}`, rec.Body.String())
	}
}

func TestEvaluateSolution_AIScoresAndPersistsForUser(t *testing.T) {
	stub := &aiStub{out: `{"correctness":90,"efficiency":80,"codeQuality":85,"feedback":"Good.","suggestions":["Add tests"],"isCorrect":true}`}
	repo := &progressRepoStub{}
	h := newTestServer(stub, repo).testRouter()
	body := `{"challenge":{"id":"1234567","title":"Sum","code":"function sum(a){\n  let s = 0;\n  for (let i = 0; i <= a.length; i++) s += a[i];\n  return s;\n}","language":"JavaScript","skillLevel":"beginner","challengeType":"bug-fix"},` +
		`"userCode":"function sum(a){\n  let s = 0;\n  for (let i = 0; i < a.length; i++) {\n    s += a[i];\n  }\n  return s;\n}","timeSpentSeconds":30}`
	rec := do(t, h, http.MethodPost, "/api/evaluate-solution", body, UserIDHeader, "user-9")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var fb domain.Feedback
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fb))
	assert.Equal(t, 85, fb.Score)
	assert.True(t, fb.IsCorrect)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "user-9", repo.saved[0].UserID)
	assert.Equal(t, 30, repo.saved[0].TimeSpentSeconds)
}

func TestEvaluateSolution_IdenticalShortCircuits(t *testing.T) {
	stub := &aiStub{out: `{}`}
	h := newTestServer(stub, nil).testRouter()
	rec := do(t, h, http.MethodPost, "/api/evaluate-solution", `{"challenge":{"code":"let a = 1;","challengeType":"bug-fix"},"userCode":"  let a = 1;\n"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var fb domain.Feedback
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fb))
	assert.Equal(t, 15, fb.Score)
	assert.False(t, fb.IsCorrect)
	assert.Equal(t, 0, stub.calls)
}

func TestEvaluateSolution_BinaryRejected(t *testing.T) {
	h := newTestServer(nil, nil).testRouter()
	payload, _ := json.Marshal(map[string]any{
		"challenge": map[string]string{"code": "x"},
		"userCode":  "\x01\x02\x03\x00\x00\x00\x04\x05",
	})
	rec := do(t, h, http.MethodPost, "/api/evaluate-solution", string(payload))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "must be text")
}

func TestEvaluateSolution_OrdinaryCodeIsNeverRejected(t *testing.T) {
	h := newTestServer(nil, nil).testRouter()
	for _, code := range []string{"BMI = weight / (height ** 2)\nprint(BMI)\n", "   "} {
		payload, _ := json.Marshal(map[string]any{
			"challenge": map[string]string{"code": "def bmi(w, h):\n    pass\n", "language": "Python"},
			"userCode":  code,
		})
		rec := do(t, h, http.MethodPost, "/api/evaluate-solution", string(payload))
		require.Equal(t, http.StatusOK, rec.Code, "code %q: %s", code, rec.Body.String())
		body := decodeBody(t, rec)
		assert.Contains(t, body, "score")
		assert.Contains(t, body, "feedback")
	}
}

func TestGenerateInterviewChallenge_MissingParams(t *testing.T) {
	h := newTestServer(&aiStub{}, nil).testRouter()
	rec := do(t, h, http.MethodPost, "/api/generate-interview-challenge", `{"companyType":"faang","role":"","stage":"coding"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing required parameters","received":{"companyType":"faang","role":"","stage":"coding"}}`, rec.Body.String())
}

func TestGenerateInterviewChallenge_NoKey(t *testing.T) {
	h := newTestServer(nil, nil).testRouter()
	rec := do(t, h, http.MethodPost, "/api/generate-interview-challenge", `{"companyType":"faang","role":"Backend","experience":"mid","language":"go","stage":"coding"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Google AI API key not configured"}`, rec.Body.String())
}

func TestGenerateInterviewChallenge_BadBody(t *testing.T) {
	h := newTestServer(&aiStub{}, nil).testRouter()
	rec := do(t, h, http.MethodPost, "/api/generate-interview-challenge", `{"companyType":`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to generate interview challenge", decodeBody(t, rec)["error"])
}

func TestGenerateInterviewChallenge_Stages(t *testing.T) {
	profile := `"companyType":"startup","role":"Backend","experience":"mid","language":"python"`

	t.Run("ai technical", func(t *testing.T) {
		stub := &aiStub{out: `{"questions":[{"question":"What is a goroutine?","type":"concept"}]}`}
		rec := do(t, newTestServer(stub, nil).testRouter(), http.MethodPost, "/api/generate-interview-challenge", `{`+profile+`,"stage":"technical"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"questions":[{"question":"What is a goroutine?","type":"concept"}]}`, rec.Body.String())
	})

	t.Run("transport failure serves fallback", func(t *testing.T) {
		stub := &aiStub{err: errors.New("dial tcp: refused")}
		rec := do(t, newTestServer(stub, nil).testRouter(), http.MethodPost, "/api/generate-interview-challenge", `{`+profile+`,"stage":"coding"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		m := decodeBody(t, rec)
		assert.NotEmpty(t, m["title"])
		assert.Equal(t, "45 minutes", m["timeLimit"])
	})

	t.Run("report stage", func(t *testing.T) {
		stub := &aiStub{}
		rec := do(t, newTestServer(stub, nil).testRouter(), http.MethodPost, "/api/generate-interview-challenge", `{`+profile+`,"stage":"report"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to generate content","rawText":""}`, rec.Body.String())
		assert.Equal(t, 0, stub.calls)
	})
}

func TestEvaluateInterview(t *testing.T) {
	full := `{"sessionData":{"companyType":"faang","role":"SWE","experience":"senior","language":"go"},` +
		`"challengeData":{"title":"T","description":"D","starterCode":"func f() {}"},"codeSolution":"func f() {}",` +
		`"technicalQuestions":{"questions":[{"question":"q1"}]},"technicalAnswers":["a"],` +
		`"behavioralQuestions":{"questions":[{"question":"b1"}]},"behavioralAnswers":["b"]}`

	t.Run("no key", func(t *testing.T) {
		rec := do(t, newTestServer(nil, nil).testRouter(), http.MethodPost, "/api/evaluate-interview", full)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Google AI API key not configured"}`, rec.Body.String())
	})

	t.Run("bad body serves static report", func(t *testing.T) {
		rec := do(t, newTestServer(&aiStub{}, nil).testRouter(), http.MethodPost, "/api/evaluate-interview", `{{`)
		require.Equal(t, http.StatusOK, rec.Code)
		var rep domain.EvaluationReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
		assert.Equal(t, scoring.StaticReport(), rep)
	})

	t.Run("ai report", func(t *testing.T) {
		stub := &aiStub{out: `{"codingScore":80,"technicalScore":70,"behavioralScore":75,"strengths":["s"],"improvements":["i"],"feedback":"f"}`}
		rec := do(t, newTestServer(stub, nil).testRouter(), http.MethodPost, "/api/evaluate-interview", full)
		require.Equal(t, http.StatusOK, rec.Code)
		var rep domain.EvaluationReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
		assert.Equal(t, 75, rep.OverallScore)
		assert.Equal(t, 80, rep.CodingScore)
	})

	t.Run("unparsable reply scores heuristically", func(t *testing.T) {
		stub := &aiStub{out: "I cannot score this."}
		rec := do(t, newTestServer(stub, nil).testRouter(), http.MethodPost, "/api/evaluate-interview", full)
		require.Equal(t, http.StatusOK, rec.Code)
		var rep domain.EvaluationReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
		assert.Equal(t, 0, rep.CodingScore)
		assert.NotEqual(t, scoring.StaticReport(), rep)
	})
}

func TestProgressHandler(t *testing.T) {
	repo := &progressRepoStub{progress: domain.UserProgress{TotalChallenges: 12, CorrectChallenges: 9}}
	h := newTestServer(nil, repo).testRouter()

	rec := do(t, h, http.MethodGet, "/api/progress", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/progress", "", UserIDHeader, "user-1")
	require.Equal(t, http.StatusOK, rec.Code)
	var view usecase.ProgressView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 12, view.Progress.TotalChallenges)
	assert.Equal(t, "Bug Hunter", view.Level.Name)
	require.NotNil(t, view.NextLevel)
}

func TestSessionLifecycle(t *testing.T) {
	stub := &aiStub{err: errors.New("offline")}
	h := newTestServer(stub, nil).testRouter()

	rec := do(t, h, http.MethodPost, "/api/interview-sessions", `{"companyType":"faang","role":"SWE","experience":"wizard","language":"go"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "experience")

	rec = do(t, h, http.MethodPost, "/api/interview-sessions", `{"companyType":"faang","role":"SWE","experience":"mid","language":"go"}`, UserIDHeader, "u-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "setup", created["stage"])
	assert.Equal(t, float64(0), created["progress"])

	rec = do(t, h, http.MethodPost, "/api/interview-sessions/"+id+"/advance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	adv := decodeBody(t, rec)
	assert.Equal(t, "coding", adv["stage"])
	assert.Equal(t, float64(25), adv["progress"])
	assert.NotNil(t, adv["coding"])
	assert.NotEmpty(t, adv["stageDeadline"])

	rec = do(t, h, http.MethodPost, "/api/interview-sessions/"+id+"/answers", `{"codeSolution":"func main() {}"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "func main() {}", decodeBody(t, rec)["codeSolution"])

	rec = do(t, h, http.MethodGet, "/api/interview-sessions/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "coding", decodeBody(t, rec)["stage"])

	for _, want := range []string{"technical", "behavioral", "report"} {
		rec = do(t, h, http.MethodPost, "/api/interview-sessions/"+id+"/advance", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, decodeBody(t, rec)["stage"])
	}
	assert.NotNil(t, decodeBody(t, rec)["report"])

	rec = do(t, h, http.MethodPost, "/api/interview-sessions/"+id+"/advance", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSessionHandlers_BadIDs(t *testing.T) {
	h := newTestServer(nil, nil).testRouter()

	rec := do(t, h, http.MethodGet, "/api/interview-sessions/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/interview-sessions/6f1c2a1e-8f0d-4a43-9c1b-0d6e9e1f5a77", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var e respErr
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "NOT_FOUND", e.Error.Code)
}

func TestReadyzHandler(t *testing.T) {
	s := newTestServer(nil, nil)
	s.DBCheck = func(context.Context) error { return nil }
	s.RedisCheck = func(context.Context) error { return errors.New("redis down") }

	rec := httptest.NewRecorder()
	s.ReadyzHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"checks":[{"name":"db","ok":true,"details":""},{"name":"redis","ok":false,"details":"redis down"}]}`, rec.Body.String())

	s.RedisCheck = nil
	rec = httptest.NewRecorder()
	s.ReadyzHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.HealthzHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
