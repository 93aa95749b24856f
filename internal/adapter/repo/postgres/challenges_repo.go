package postgres

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/prepio-api/internal/domain"
)

// RecentLimit caps the recent challenges listed in a progress summary.
const RecentLimit = 10

// ChallengeRepo persists practice attempts and derives user progress.
type ChallengeRepo struct{ Pool PgxPool }

// NewChallengeRepo constructs a ChallengeRepo with the given pool.
func NewChallengeRepo(p PgxPool) *ChallengeRepo { return &ChallengeRepo{Pool: p} }

// SaveChallenge stores a practice attempt and returns its id (generates one if empty).
func (r *ChallengeRepo) SaveChallenge(ctx domain.Context, rec domain.ChallengeRecord) (string, error) {
	tracer := otel.Tracer("repo.challenges")
	ctx, span := tracer.Start(ctx, "challenges.Save")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "challenge_attempts"),
	)
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	suggestions := rec.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	q := `INSERT INTO challenge_attempts (id, user_id, challenge_id, title, description, language, skill_level, challenge_type,
	original_code, user_solution, is_completed, is_correct, score, correctness_score, efficiency_score, code_quality_score,
	feedback, suggestions, time_spent_seconds, created_at, completed_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`
	_, err := r.Pool.Exec(ctx, q, id, rec.UserID, rec.ChallengeID, rec.Title, rec.Description, rec.Language, rec.SkillLevel, rec.ChallengeType,
		rec.OriginalCode, rec.UserSolution, rec.IsCompleted, rec.IsCorrect, rec.Score, rec.Correctness, rec.Efficiency, rec.CodeQuality,
		rec.Feedback, suggestions, rec.TimeSpentSeconds, created, rec.CompletedAt)
	if err != nil {
		return "", fmt.Errorf("op=challenge.save: %w", err)
	}
	return id, nil
}

// GetProgress aggregates every completed attempt of userID.
func (r *ChallengeRepo) GetProgress(ctx domain.Context, userID string) (domain.UserProgress, error) {
	tracer := otel.Tracer("repo.challenges")
	ctx, span := tracer.Start(ctx, "challenges.GetProgress")
	defer span.End()
	q := `SELECT id, title, language, skill_level, score, is_correct, completed_at
	FROM challenge_attempts
	WHERE user_id=$1 AND is_completed AND completed_at IS NOT NULL
	ORDER BY completed_at DESC`
	rows, err := r.Pool.Query(ctx, q, userID)
	if err != nil {
		return domain.UserProgress{}, fmt.Errorf("op=challenge.progress: %w", err)
	}
	defer rows.Close()

	p := domain.UserProgress{
		ChallengesByLanguage:   map[string]int{},
		ChallengesBySkillLevel: map[string]int{},
		RecentChallenges:       []domain.RecentChallenge{},
	}
	scoreSum := 0
	for rows.Next() {
		var c domain.RecentChallenge
		if err := rows.Scan(&c.ID, &c.Title, &c.Language, &c.SkillLevel, &c.Score, &c.IsCorrect, &c.CompletedAt); err != nil {
			return domain.UserProgress{}, fmt.Errorf("op=challenge.progress_scan: %w", err)
		}
		p.TotalChallenges++
		if c.IsCorrect {
			p.CorrectChallenges++
		}
		scoreSum += c.Score
		p.ChallengesByLanguage[c.Language]++
		p.ChallengesBySkillLevel[c.SkillLevel]++
		if len(p.RecentChallenges) < RecentLimit {
			p.RecentChallenges = append(p.RecentChallenges, c)
		}
	}
	if err := rows.Err(); err != nil {
		return domain.UserProgress{}, fmt.Errorf("op=challenge.progress_rows: %w", err)
	}
	p.IncorrectChallenges = p.TotalChallenges - p.CorrectChallenges
	if p.TotalChallenges > 0 {
		p.SuccessRate = math.Floor(float64(p.CorrectChallenges)/float64(p.TotalChallenges)*100 + 0.5)
		p.AverageScore = math.Floor(float64(scoreSum)/float64(p.TotalChallenges) + 0.5)
	}
	return p, nil
}

// CompletionDates lists the completion times of userID's attempts, most recent first.
func (r *ChallengeRepo) CompletionDates(ctx domain.Context, userID string) ([]time.Time, error) {
	tracer := otel.Tracer("repo.challenges")
	ctx, span := tracer.Start(ctx, "challenges.CompletionDates")
	defer span.End()
	q := `SELECT completed_at FROM challenge_attempts
	WHERE user_id=$1 AND is_completed AND completed_at IS NOT NULL
	ORDER BY completed_at DESC`
	rows, err := r.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("op=challenge.dates: %w", err)
	}
	defer rows.Close()
	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("op=challenge.dates_scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=challenge.dates_rows: %w", err)
	}
	return out, nil
}
