package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/fairyhunter13/prepio-api/internal/config"
	"github.com/fairyhunter13/prepio-api/internal/usecase"
)

// Server holds the services behind the HTTP surface.
type Server struct {
	Cfg        config.Config
	Practice   usecase.PracticeService
	Interview  usecase.InterviewService
	Sessions   usecase.SessionService
	Progress   usecase.ProgressService
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
	KafkaCheck func(ctx context.Context) error
}

// NewServer constructs a Server. Readiness checks are optional and attached by the caller.
func NewServer(cfg config.Config, practice usecase.PracticeService, interview usecase.InterviewService, sessions usecase.SessionService, progress usecase.ProgressService) *Server {
	return &Server{Cfg: cfg, Practice: practice, Interview: interview, Sessions: sessions, Progress: progress}
}

// HealthzHandler reports liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler runs every configured dependency check and answers 503 if any fails.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		probes := []struct {
			name  string
			check func(context.Context) error
		}{
			{"db", s.DBCheck},
			{"redis", s.RedisCheck},
			{"kafka", s.KafkaCheck},
		}
		checks := make([]usecase.ReadinessCheck, 0, len(probes))
		ok := true
		for _, p := range probes {
			if p.check == nil {
				continue
			}
			c := usecase.ReadinessCheck{Name: p.name, OK: true}
			if err := p.check(ctx); err != nil {
				c.OK = false
				c.Details = err.Error()
				ok = false
			}
			checks = append(checks, c)
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
