package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/prepio-api/internal/domain"
)

// InterviewReportRepo persists interview reports.
type InterviewReportRepo struct{ Pool PgxPool }

// NewInterviewReportRepo constructs an InterviewReportRepo with the given pool.
func NewInterviewReportRepo(p PgxPool) *InterviewReportRepo { return &InterviewReportRepo{Pool: p} }

// SaveReport stores rec and returns its id. The report body is kept as JSONB.
func (r *InterviewReportRepo) SaveReport(ctx domain.Context, rec domain.InterviewRecord) (string, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.SaveReport")
	defer span.End()
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	body, err := json.Marshal(rec.Report)
	if err != nil {
		return "", fmt.Errorf("op=interview.save_marshal: %w", err)
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	q := `INSERT INTO interview_reports (id, user_id, session_id, company_type, role, experience, language, overall_score, report, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	p := rec.Profile
	if _, err := r.Pool.Exec(ctx, q, id, rec.UserID, rec.SessionID, p.CompanyType, p.Role, p.Experience, p.Language, rec.Report.OverallScore, body, created); err != nil {
		return "", fmt.Errorf("op=interview.save: %w", err)
	}
	return id, nil
}
