package health

import (
	"context"
	"time"
)

const (
	ServiceName = "Resume Generator API"
	Version     = "1.0.0"

	pingTimeout = 2 * time.Second
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB  Pinger
	Now func() time.Time
}

// NewService constructs a health service. db may be nil when no database is configured.
func NewService(db Pinger) *Service {
	return &Service{DB: db, Now: time.Now}
}

// Root is the payload of the service banner.
func (s *Service) Root() map[string]any {
	return map[string]any{
		"status":    "healthy",
		"service":   ServiceName,
		"version":   Version,
		"timestamp": s.timestamp(),
	}
}

// Status reports process health and database reachability.
// The process is healthy even when the database is not.
func (s *Service) Status(ctx context.Context) map[string]any {
	return map[string]any{
		"status":    "healthy",
		"database":  s.databaseStatus(ctx),
		"timestamp": s.timestamp(),
	}
}

func (s *Service) databaseStatus(ctx context.Context) string {
	if s.DB == nil {
		return "not configured"
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "connected"
}

func (s *Service) timestamp() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().UTC().Format(time.RFC3339Nano)
}
