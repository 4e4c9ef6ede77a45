package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gobenford/domain/benford"
	"gobenford/domain/core"
	"gobenford/internal/errors"
	"gobenford/ports"

	"github.com/jmoiron/sqlx"
)

// RunRepositoryImpl implements RunRepository over PostgreSQL or SQLite.
// Each section of a report is one row keyed by (id, position).
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new SQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

type runRow struct {
	ID            string    `db:"id"`
	Source        string    `db:"source"`
	Position      string    `db:"position"`
	ZeroPolicy    string    `db:"zero_policy"`
	Total         int       `db:"total"`
	Unbucketed    int       `db:"unbucketed"`
	Dropped       int       `db:"dropped"`
	Counts        string    `db:"counts"`
	Expected      string    `db:"expected"`
	Statistic     float64   `db:"statistic"`
	CriticalValue float64   `db:"critical_value"`
	Significance  float64   `db:"significance"`
	PValue        float64   `db:"p_value"`
	Passed        bool      `db:"passed"`
	MAD           float64   `db:"mad"`
	Conformity    string    `db:"conformity"`
	CreatedAt     time.Time `db:"created_at"`
}

const runColumns = `id, source, position, zero_policy, total, unbucketed, dropped, counts, expected,
	statistic, critical_value, significance, p_value, passed, mad, conformity, created_at`

const insertRunSQL = `
	INSERT INTO benford_runs (` + runColumns + `)
	VALUES (:id, :source, :position, :zero_policy, :total, :unbucketed, :dropped, :counts, :expected,
		:statistic, :critical_value, :significance, :p_value, :passed, :mad, :conformity, :created_at)`

// Save persists every section of the report in one transaction
func (r *RunRepositoryImpl) Save(ctx context.Context, report *benford.Report) error {
	if report == nil || report.RunID == "" {
		return errors.InvalidInput("report must carry a run ID")
	}
	if len(report.Sections) == 0 {
		return errors.InvalidInput("report has no sections")
	}

	createdAt := report.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.UTC()

	rows := make([]runRow, 0, len(report.Sections))
	for _, section := range report.Sections {
		row, err := toRow(report.RunID, report.Source, createdAt, section)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		if _, err := tx.NamedExecContext(ctx, insertRunSQL, row); err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to save %s section of run %s", row.Position, row.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit run", err)
	}
	return nil
}

// GetByID rebuilds a report from its stored sections
func (r *RunRepositoryImpl) GetByID(ctx context.Context, id core.RunID) (*benford.Report, error) {
	var rows []runRow
	query := r.db.Rebind(`SELECT ` + runColumns + ` FROM benford_runs WHERE id = ? ORDER BY position`)
	if err := r.db.SelectContext(ctx, &rows, query, id.String()); err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to load run %s", id), err)
	}
	if len(rows) == 0 {
		return nil, errors.Wrap(fmt.Errorf("%w %s", core.ErrRunNotFound, id), "failed to load run")
	}

	report := &benford.Report{
		RunID:     core.RunID(rows[0].ID),
		Source:    rows[0].Source,
		CreatedAt: rows[0].CreatedAt,
		Sections:  make([]benford.Section, 0, len(rows)),
	}
	for _, row := range rows {
		section, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		report.Sections = append(report.Sections, section)
	}
	return report, nil
}

// List returns run summaries, newest first
func (r *RunRepositoryImpl) List(ctx context.Context, limit, offset int) ([]ports.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := r.db.Rebind(`
		SELECT id, source, position, total, passed, created_at
		FROM benford_runs
		WHERE id IN (
			SELECT id FROM benford_runs
			GROUP BY id
			ORDER BY MAX(created_at) DESC, id DESC
			LIMIT ? OFFSET ?
		)
		ORDER BY created_at DESC, id DESC, position`)

	var rows []struct {
		ID        string    `db:"id"`
		Source    string    `db:"source"`
		Position  string    `db:"position"`
		Total     int       `db:"total"`
		Passed    bool      `db:"passed"`
		CreatedAt time.Time `db:"created_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}

	summaries := make([]ports.RunSummary, 0, len(rows))
	var positions []string
	for _, row := range rows {
		n := len(summaries)
		if n == 0 || summaries[n-1].ID != core.RunID(row.ID) {
			positions = positions[:0]
			summaries = append(summaries, ports.RunSummary{
				ID:        core.RunID(row.ID),
				Source:    row.Source,
				Total:     row.Total,
				Passed:    true,
				CreatedAt: row.CreatedAt,
			})
			n++
		}
		current := &summaries[n-1]
		positions = append(positions, row.Position)
		current.Positions = strings.Join(positions, ",")
		current.Passed = current.Passed && row.Passed
	}
	return summaries, nil
}

func toRow(id core.RunID, source string, createdAt time.Time, section benford.Section) (runRow, error) {
	counts, err := json.Marshal(section.Distribution.Counts)
	if err != nil {
		return runRow{}, errors.Wrap(err, "failed to encode counts")
	}
	expected, err := json.Marshal(section.ChiSquare.Expected)
	if err != nil {
		return runRow{}, errors.Wrap(err, "failed to encode expected counts")
	}

	dist := section.Distribution
	chi := section.ChiSquare
	return runRow{
		ID:            id.String(),
		Source:        source,
		Position:      string(dist.Position),
		ZeroPolicy:    string(dist.ZeroPolicy),
		Total:         dist.Total,
		Unbucketed:    dist.Unbucketed,
		Dropped:       dist.Dropped,
		Counts:        string(counts),
		Expected:      string(expected),
		Statistic:     chi.Statistic,
		CriticalValue: chi.CriticalValue,
		Significance:  chi.Significance,
		PValue:        chi.PValue,
		Passed:        chi.Passed,
		MAD:           section.Conformity.MAD,
		Conformity:    string(section.Conformity.Level),
		CreatedAt:     createdAt,
	}, nil
}

// fromRow restores a section. Digits, percentages and the reference are derived.
func fromRow(row runRow) (benford.Section, error) {
	position, err := benford.ParsePosition(row.Position)
	if err != nil {
		return benford.Section{}, errors.Wrapf(err, "run %s has a corrupt position", row.ID)
	}
	var counts, expected []int
	if err := json.Unmarshal([]byte(row.Counts), &counts); err != nil {
		return benford.Section{}, errors.Wrapf(err, "run %s has corrupt counts", row.ID)
	}
	if err := json.Unmarshal([]byte(row.Expected), &expected); err != nil {
		return benford.Section{}, errors.Wrapf(err, "run %s has corrupt expected counts", row.ID)
	}

	percentages := make([]float64, len(counts))
	if row.Total > 0 {
		for i, n := range counts {
			percentages[i] = (float64(n) / float64(row.Total)) * 100
		}
	}
	reference, _ := benford.Reference(position)

	return benford.Section{
		Distribution: benford.DigitDistribution{
			Position:    position,
			ZeroPolicy:  benford.ZeroPolicy(row.ZeroPolicy),
			Digits:      position.Digits(),
			Counts:      counts,
			Percentages: percentages,
			Total:       row.Total,
			Unbucketed:  row.Unbucketed,
			Dropped:     row.Dropped,
		},
		Reference: reference,
		ChiSquare: benford.ChiSquareResult{
			Position:         position,
			Observed:         counts,
			Expected:         expected,
			Statistic:        row.Statistic,
			CriticalValue:    row.CriticalValue,
			DegreesOfFreedom: position.DegreesOfFreedom(),
			Significance:     row.Significance,
			PValue:           row.PValue,
			Passed:           row.Passed,
		},
		Conformity: benford.Conformity{
			MAD:   row.MAD,
			Level: benford.ConformityLevel(row.Conformity),
		},
	}, nil
}
