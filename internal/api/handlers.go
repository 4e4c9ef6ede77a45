package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"gobenford/app"
	"gobenford/domain/benford"
	"gobenford/internal/errors"
	"gobenford/internal/report"

	"github.com/gin-gonic/gin"
)

// AnalyzeRequest is the body of POST /api/v1/analyze.
// Samples may be JSON numbers or strings; numbers keep their exact text.
type AnalyzeRequest struct {
	Samples      []json.RawMessage `json:"samples" binding:"required"`
	Position     string            `json:"position" binding:"omitempty,oneof=first second both 1 2"`
	ZeroPolicy   string            `json:"zero_policy" binding:"omitempty,oneof=include exclude"`
	Significance *float64          `json:"significance" binding:"omitempty,gt=0,lt=1"`
	Normalize    *bool             `json:"normalize"`
	Source       string            `json:"source"`
	Store        bool              `json:"store"`
}

// ReferenceResponse describes the expected distribution of one digit position
type ReferenceResponse struct {
	Position         benford.Position `json:"position"`
	Digits           []int            `json:"digits"`
	Percentages      []float64        `json:"percentages"`
	DegreesOfFreedom int              `json:"degrees_of_freedom"`
	Significance     float64          `json:"significance"`
	CriticalValue    float64          `json:"critical_value"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"store":  s.service.StoreEnabled(),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var body AnalyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	format, err := report.ParseFormat(c.DefaultQuery("format", string(report.FormatJSON)))
	if err != nil {
		s.respondError(c, err)
		return
	}

	samples, err := decodeSamples(body.Samples)
	if err != nil {
		s.respondError(c, err)
		return
	}

	req := app.NewAnalysisRequest(s.defaults)
	req.Samples = samples
	req.Source = body.Source
	req.Store = body.Store
	if body.Position != "" {
		req.Position = body.Position
	}
	if body.ZeroPolicy != "" {
		req.ZeroPolicy = body.ZeroPolicy
	}
	if body.Significance != nil {
		req.Significance = *body.Significance
	}
	if body.Normalize != nil {
		req.Normalize = *body.Normalize
	}
	if req.Store && !s.service.StoreEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run store is not configured", "code": errors.CodeConfigInvalid})
		return
	}

	result, err := s.service.Analyze(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respondReport(c, result, format)
}

func (s *Server) handleListRuns(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}

	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		s.respondError(c, err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		s.respondError(c, err)
		return
	}

	runs, err := s.service.ListRuns(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "limit": limit, "offset": offset})
}

func (s *Server) handleGetRun(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}

	format, err := report.ParseFormat(c.DefaultQuery("format", string(report.FormatJSON)))
	if err != nil {
		s.respondError(c, err)
		return
	}

	run, err := s.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respondReport(c, run, format)
}

func (s *Server) handleReference(c *gin.Context) {
	positions, err := app.ParsePositions(c.Param("position"))
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	significance := benford.DefaultSignificance
	if raw := c.Query("significance"); raw != "" {
		if significance, err = strconv.ParseFloat(raw, 64); err != nil {
			s.respondError(c, errors.InvalidInput("significance must be a number"))
			return
		}
	}

	refs := make([]ReferenceResponse, 0, len(positions))
	for _, p := range positions {
		percentages, _ := benford.Reference(p)
		critical, err := benford.CriticalValue(p, significance)
		if err != nil {
			s.respondError(c, errors.InvalidInput(err.Error()))
			return
		}
		refs = append(refs, ReferenceResponse{
			Position:         p,
			Digits:           p.Digits(),
			Percentages:      percentages,
			DegreesOfFreedom: p.DegreesOfFreedom(),
			Significance:     significance,
			CriticalValue:    critical,
		})
	}
	c.JSON(http.StatusOK, gin.H{"references": refs})
}

func (s *Server) requireStore(c *gin.Context) bool {
	if s.service.StoreEnabled() {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run store is not configured", "code": errors.CodeConfigInvalid})
	return false
}

func (s *Server) respondReport(c *gin.Context, r *benford.Report, format report.Format) {
	var buf bytes.Buffer
	if err := report.Render(&buf, r, format); err != nil {
		s.respondError(c, err)
		return
	}

	contentType := "application/json; charset=utf-8"
	switch format {
	case report.FormatText:
		contentType = "text/plain; charset=utf-8"
	case report.FormatMarkdown:
		contentType = "text/markdown; charset=utf-8"
	case report.FormatHTML:
		contentType = "text/html; charset=utf-8"
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		s.logger.Debug("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

// decodeSamples turns JSON numbers, strings and nulls into sample text
func decodeSamples(raw []json.RawMessage) ([]string, error) {
	samples := make([]string, len(raw))
	for i, msg := range raw {
		msg = bytes.TrimSpace(msg)
		switch {
		case len(msg) == 0 || bytes.Equal(msg, []byte("null")):
			samples[i] = ""
		case msg[0] == '"':
			if err := json.Unmarshal(msg, &samples[i]); err != nil {
				return nil, errors.InvalidInput("sample " + strconv.Itoa(i) + " is not a valid string")
			}
		case msg[0] == '-' || (msg[0] >= '0' && msg[0] <= '9'):
			samples[i] = string(msg)
		default:
			return nil, errors.InvalidInput("sample " + strconv.Itoa(i) + " must be a number or a string")
		}
	}
	return samples, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.InvalidInput(key + " must be a non-negative integer")
	}
	return v, nil
}
