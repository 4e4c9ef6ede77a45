package ports

import (
	"context"
	"time"

	"gobenford/domain/benford"
	"gobenford/domain/core"
)

// RunRepository defines the interface for analysis run storage operations
type RunRepository interface {
	// Save persists a report. The report must carry a RunID.
	Save(ctx context.Context, report *benford.Report) error
	GetByID(ctx context.Context, id core.RunID) (*benford.Report, error)
	List(ctx context.Context, limit, offset int) ([]RunSummary, error)
}

// RunSummary is one row of run history
type RunSummary struct {
	ID        core.RunID `json:"id" db:"id"`
	Source    string     `json:"source" db:"source"`
	Positions string     `json:"positions" db:"positions"`
	Total     int        `json:"total" db:"total"`
	Passed    bool       `json:"passed" db:"passed"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
