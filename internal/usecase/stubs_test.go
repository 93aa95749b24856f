package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fairyhunter13/prepio-api/internal/config"
	"github.com/fairyhunter13/prepio-api/internal/domain"
	"github.com/fairyhunter13/prepio-api/internal/prompt"
	"github.com/fairyhunter13/prepio-api/internal/scoring"
)

type aiStub struct {
	mu      sync.Mutex
	out     []string
	err     error
	prompts []string
}

func (a *aiStub) Generate(_ context.Context, p string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prompts = append(a.prompts, p)
	if a.err != nil {
		return "", a.err
	}
	if len(a.out) == 0 {
		return "", errors.New("no scripted response")
	}
	out := a.out[0]
	if len(a.out) > 1 {
		a.out = a.out[1:]
	}
	return out, nil
}

func (a *aiStub) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.prompts)
}

type progressRepoStub struct {
	saved    []domain.ChallengeRecord
	saveErr  error
	progress domain.UserProgress
	getErr   error
	dates    []time.Time
	datesErr error
}

func (r *progressRepoStub) SaveChallenge(_ context.Context, rec domain.ChallengeRecord) (string, error) {
	if r.saveErr != nil {
		return "", r.saveErr
	}
	r.saved = append(r.saved, rec)
	return "rec-1", nil
}

func (r *progressRepoStub) GetProgress(context.Context, string) (domain.UserProgress, error) {
	return r.progress, r.getErr
}

func (r *progressRepoStub) CompletionDates(context.Context, string) ([]time.Time, error) {
	return r.dates, r.datesErr
}

type reportRepoStub struct {
	saved []domain.InterviewRecord
	err   error
}

func (r *reportRepoStub) SaveReport(_ context.Context, rec domain.InterviewRecord) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.saved = append(r.saved, rec)
	return "rep-1", nil
}

type publisherStub struct {
	events []domain.Event
	err    error
}

func (p *publisherStub) Publish(_ context.Context, evt domain.Event) error {
	p.events = append(p.events, evt)
	return p.err
}

type memStore struct {
	mu   sync.Mutex
	data map[string]domain.InterviewSession
	puts int
}

func newMemStore() *memStore { return &memStore{data: map[string]domain.InterviewSession{}} }

func (m *memStore) Get(_ context.Context, id string) (domain.InterviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok {
		return domain.InterviewSession{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *memStore) Put(_ context.Context, s domain.InterviewSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ID] = s
	m.puts++
	return nil
}

type fixedPicker struct{ idx int }

func (p fixedPicker) Intn(n int) int { return p.idx % n }

type clock struct{ t time.Time }

func (c *clock) now() time.Time      { return c.t }
func (c *clock) add(d time.Duration) { c.t = c.t.Add(d) }

func testHeuristics() config.Heuristics { return config.DefaultHeuristics() }

func newPracticeSvc(client domain.AIClient, repo domain.ProgressRepository, pub domain.EventPublisher) PracticeService {
	svc := NewPracticeService(client, prompt.Builder{}, scoring.NewPractice(testHeuristics().Practice), repo, pub)
	svc.Picker = fixedPicker{}
	return svc
}

func newInterviewSvc(client domain.AIClient, repo domain.InterviewRepository, pub domain.EventPublisher) InterviewService {
	svc := NewInterviewService(client, prompt.Builder{}, scoring.NewInterview(testHeuristics()), repo, pub)
	svc.Picker = fixedPicker{}
	return svc
}
