package health

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Status reports process and dependency health.
type Status struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
	Model    string `json:"model"`
}

// Service checks dependencies for the health endpoint.
type Service struct {
	db          Pinger
	modelSource string
	timeout     time.Duration
}

// NewService builds a Service. db may be nil when running on memory repositories.
func NewService(db Pinger, modelSource string) *Service {
	return &Service{db: db, modelSource: modelSource, timeout: 2 * time.Second}
}

// Check pings the database. The process is healthy unless a configured
// database fails to answer.
func (s *Service) Check(ctx context.Context) Status {
	st := Status{OK: true, Database: "memory", Model: s.modelSource}
	if s.db == nil {
		return st
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		st.OK = false
		st.Database = "down"
		return st
	}
	st.Database = "up"
	return st
}
