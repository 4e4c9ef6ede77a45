package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gobenford/domain/benford"
	"gobenford/domain/core"
	"gobenford/internal"
	"gobenford/internal/config"
	"gobenford/internal/errors"
	"gobenford/internal/profiling"
	"gobenford/ports"
)

// PositionBoth analyzes the first and the second digit of the same samples
const PositionBoth = "both"

// AnalysisRequest describes one analysis run
type AnalysisRequest struct {
	Source       string
	Samples      []string
	Position     string // first, second or both
	ZeroPolicy   string // empty selects the default for the position
	Significance float64
	Normalize    bool
	Store        bool
}

// NewAnalysisRequest creates a request carrying the configured analysis defaults
func NewAnalysisRequest(cfg config.AnalysisConfig) AnalysisRequest {
	return AnalysisRequest{
		Position:     cfg.Position,
		ZeroPolicy:   cfg.ZeroPolicy,
		Significance: cfg.Significance,
		Normalize:    cfg.Normalize,
	}
}

// ParsePositions expands a position argument into the positions to analyze
func ParsePositions(s string) ([]benford.Position, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", string(benford.PositionFirst), "1":
		return []benford.Position{benford.PositionFirst}, nil
	case PositionBoth:
		return []benford.Position{benford.PositionFirst, benford.PositionSecond}, nil
	}
	p, err := benford.ParsePosition(s)
	if err != nil {
		return nil, err
	}
	return []benford.Position{p}, nil
}

// AnalysisService runs Benford analyses and manages stored runs
type AnalysisService struct {
	runs     ports.RunRepository
	samples  ports.SampleSource
	profiler *profiling.MagnitudeProfiler
	logger   *internal.Logger
}

// NewAnalysisService creates a new analysis service. runs may be nil when no store is configured.
func NewAnalysisService(runs ports.RunRepository, samples ports.SampleSource, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		runs:     runs,
		samples:  samples,
		profiler: profiling.NewMagnitudeProfiler(),
		logger:   logger.With("AnalysisService"),
	}
}

// StoreEnabled reports whether runs can be persisted
func (s *AnalysisService) StoreEnabled() bool {
	return s.runs != nil
}

// Analyze counts digits, tests them against Benford's law and optionally stores the report
func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) (*benford.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	positions, err := ParsePositions(req.Position)
	if err != nil {
		return nil, errors.AnalysisFailed(describeSource(req.Source), err)
	}

	var policy benford.ZeroPolicy
	if req.ZeroPolicy != "" {
		if policy, err = benford.ParseZeroPolicy(strings.ToLower(req.ZeroPolicy)); err != nil {
			return nil, errors.AnalysisFailed(describeSource(req.Source), err)
		}
	} else if len(positions) > 1 {
		// combined runs drop leading-zero samples from both sections
		policy = benford.ZeroExclude
	}

	start := time.Now()
	report := &benford.Report{
		RunID:     core.NewRunID(),
		Source:    req.Source,
		Sections:  make([]benford.Section, 0, len(positions)),
		CreatedAt: start.UTC(),
	}

	for _, position := range positions {
		opts := benford.CounterOptions{Position: position, ZeroPolicy: policy, Normalize: req.Normalize}
		section, err := benford.Analyze(req.Samples, opts, req.Significance)
		if err != nil {
			s.logger.Warn("Analysis of %s failed: %v", describeSource(req.Source), err)
			return nil, errors.AnalysisFailed(describeSource(req.Source), err)
		}

		chi := section.ChiSquare
		s.logger.Info("%s %s digit: chi-square %.3f, critical %.2f, passed=%t (n=%d)",
			describeSource(req.Source), position, chi.Statistic, chi.CriticalValue, chi.Passed, section.Distribution.Total)
		s.logger.Debug("%s %s digit: counts %v expected %v, MAD %.4f (%s)",
			describeSource(req.Source), position, chi.Observed, chi.Expected, section.Conformity.MAD, section.Conformity.Level)

		report.Sections = append(report.Sections, section)
	}

	if profile, err := s.profiler.Profile(req.Samples); err == nil {
		report.Profile = profile
		for _, warning := range profile.Warnings {
			s.logger.Warn("%s: %s", describeSource(req.Source), warning)
		}
	}

	if req.Store {
		if err := s.save(ctx, report); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("Analyzed %d samples from %s in %.2fms", len(req.Samples), describeSource(req.Source), float64(time.Since(start).Nanoseconds())/1e6)
	return report, nil
}

// AnalyzeFile loads samples from path and analyzes them
func (s *AnalysisService) AnalyzeFile(ctx context.Context, path string, opts ports.LoadOptions, req AnalysisRequest) (*benford.Report, error) {
	if s.samples == nil {
		return nil, errors.InternalError("no sample source configured")
	}

	samples, err := s.samples.Load(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	req.Samples = samples
	if req.Source == "" {
		req.Source = path
	}
	return s.Analyze(ctx, req)
}

// GetRun returns a stored report
func (s *AnalysisService) GetRun(ctx context.Context, id string) (*benford.Report, error) {
	if s.runs == nil {
		return nil, errors.ConfigInvalid("run store is not configured")
	}
	runID, err := core.ParseRunID(id)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	return s.runs.GetByID(ctx, runID)
}

// ListRuns returns stored run summaries, newest first
func (s *AnalysisService) ListRuns(ctx context.Context, limit, offset int) ([]ports.RunSummary, error) {
	if s.runs == nil {
		return nil, errors.ConfigInvalid("run store is not configured")
	}
	return s.runs.List(ctx, limit, offset)
}

func (s *AnalysisService) save(ctx context.Context, report *benford.Report) error {
	if s.runs == nil {
		return errors.ConfigInvalid("run store is not configured")
	}
	if err := s.runs.Save(ctx, report); err != nil {
		s.logger.Error("Failed to store run %s: %v", report.RunID, err)
		return errors.Wrap(err, fmt.Sprintf("failed to store run %s", report.RunID))
	}
	s.logger.Info("Stored run %s", report.RunID)
	return nil
}

func describeSource(source string) string {
	if source == "" {
		return "samples"
	}
	return source
}
