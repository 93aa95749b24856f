package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fairyhunter13/prepio-api/internal/adapter/observability"
	"github.com/fairyhunter13/prepio-api/internal/domain"
	"github.com/fairyhunter13/prepio-api/internal/levels"
)

// ProgressView is a user's practice history with level and streak data.
type ProgressView struct {
	Progress       domain.UserProgress `json:"progress"`
	Level          levels.Level        `json:"level"`
	NextLevel      *levels.Level       `json:"nextLevel"`
	ProgressToNext levels.Progress     `json:"progressToNext"`
	Streak         int                 `json:"streak"`
	LongestStreak  int                 `json:"longestStreak"`
}

// ProgressService reads practice progress. A nil repository yields empty
// progress rather than an error.
type ProgressService struct {
	Repo domain.ProgressRepository
	Now  func() time.Time
}

// NewProgressService constructs a ProgressService.
func NewProgressService(repo domain.ProgressRepository) ProgressService {
	return ProgressService{Repo: repo}
}

// Get builds the progress view for userID. Repository failures are logged
// and reported as empty progress.
func (s ProgressService) Get(ctx domain.Context, userID string) (ProgressView, error) {
	if userID == "" {
		return ProgressView{}, fmt.Errorf("%w: user id required", domain.ErrInvalidArgument)
	}
	p := emptyProgress()
	var dates []time.Time
	if s.Repo != nil {
		lg := observability.LoggerFromContext(ctx)
		got, err := s.Repo.GetProgress(ctx, userID)
		if err != nil {
			lg.Error("load progress failed", slog.String("user_id", userID), slog.Any("error", err))
		} else {
			p = normalizeProgress(got)
		}
		dates, err = s.Repo.CompletionDates(ctx, userID)
		if err != nil {
			lg.Error("load completion dates failed", slog.String("user_id", userID), slog.Any("error", err))
			dates = nil
		}
	}

	lvl := levels.ForTotal(p.TotalChallenges)
	view := ProgressView{
		Progress:       p,
		Level:          lvl,
		ProgressToNext: levels.ProgressToNext(p.TotalChallenges, lvl),
	}
	if next, ok := levels.Next(lvl); ok {
		view.NextLevel = &next
	}
	streaks := levels.Compute(dates, nowUTC(s.Now))
	view.Streak, view.LongestStreak = streaks.Current, streaks.Longest
	return view, nil
}

func emptyProgress() domain.UserProgress {
	return domain.UserProgress{
		ChallengesByLanguage:   map[string]int{},
		ChallengesBySkillLevel: map[string]int{},
		RecentChallenges:       []domain.RecentChallenge{},
	}
}

func normalizeProgress(p domain.UserProgress) domain.UserProgress {
	if p.ChallengesByLanguage == nil {
		p.ChallengesByLanguage = map[string]int{}
	}
	if p.ChallengesBySkillLevel == nil {
		p.ChallengesBySkillLevel = map[string]int{}
	}
	if p.RecentChallenges == nil {
		p.RecentChallenges = []domain.RecentChallenge{}
	}
	return p
}
