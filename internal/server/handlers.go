package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fortify-index/mfi/core"
	"github.com/fortify-index/mfi/core/algo"
	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/internal/outwriter"
	"github.com/fortify-index/mfi/schema"
	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
)

// bandRequest is the body of POST /v1/bands.
type bandRequest struct {
	Compliance []float64           `json:"compliance"`
	Strategy   schema.BandStrategy `json:"strategy"`
}

// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /v1/rank
// The body is a JSON array of raw records. ?format=csv returns the ranking export.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.queryConfig(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error(), err)
		return
	}

	var metrics []schema.RawMetric
	body := http.MaxBytesReader(w, r.Body, contract.DefaultRequestLimit)
	if err := json.NewDecoder(body).Decode(&metrics); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrCodeInvalidBody, "body must be a JSON array of raw records", err)
		return
	}

	result := core.BuildRanking(cfg.Cycle, metrics, core.OptionsFromConfig(cfg))
	s.writeRanking(w, r, result, cfg)
}

// POST /v1/bands
func (s *Server) handleBands(w http.ResponseWriter, r *http.Request) {
	var req bandRequest
	body := http.MaxBytesReader(w, r.Body, contract.DefaultRequestLimit)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrCodeInvalidBody, "body must be {\"compliance\": [...], \"strategy\": \"any|min\"}", err)
		return
	}

	if req.Strategy == "" {
		req.Strategy = schema.AnyStrategy
	}
	req.Strategy = schema.BandStrategy(strings.ToLower(string(req.Strategy)))
	if _, ok := schema.ValidBandStrategies[req.Strategy]; !ok {
		err := eris.Errorf("invalid band strategy %q", req.Strategy)
		s.writeError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error(), err)
		return
	}
	for _, v := range req.Compliance {
		if v < 0 {
			err := eris.Errorf("compliance value %v must not be negative", v)
			s.writeError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error(), err)
			return
		}
	}
	if req.Compliance == nil {
		req.Compliance = []float64{}
	}

	s.writeJSON(w, http.StatusOK, schema.BandResult{
		Compliance: req.Compliance,
		Strategy:   req.Strategy,
		Band:       algo.ClassifyBand(req.Compliance, req.Strategy),
	})
}

// GET /v1/cycles/{cycle}/ranking
func (s *Server) handleCycleRanking(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.queryConfig(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error(), err)
		return
	}
	cfg.Cycle = chi.URLParam(r, "cycle")

	result, err := core.RankCycle(r.Context(), s.src, cfg, s.history)
	if err != nil {
		s.writeError(w, r, http.StatusBadGateway, ErrCodeUpstream, "failed to fetch cycle from source", err)
		return
	}
	s.writeRanking(w, r, result, cfg)
}

// writeRanking writes a ranking as JSON, or as the CSV export when cfg.Output is csv.
func (s *Server) writeRanking(w http.ResponseWriter, r *http.Request, result schema.RankingResult, cfg *contract.Config) {
	if cfg.Output != schema.CSVOut {
		s.writeJSON(w, http.StatusOK, result)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	fmtFloat := func(v float64) string { return fmt.Sprintf("%.*f", cfg.Precision, v) }
	if err := outwriter.WriteRankingCSV(w, result.Records, fmtFloat); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to write CSV", err)
	}
}

// queryConfig derives the per-request config from the server config and the query string.
// Supported parameters: format, strategy, sector, tier, q, incomplete, sort, asc, limit.
func (s *Server) queryConfig(r *http.Request) (*contract.Config, error) {
	cfg := s.cfg.Clone()
	q := r.URL.Query()

	cfg.Output = schema.JSONOut
	switch format := strings.ToLower(q.Get("format")); format {
	case "", "json":
	case "csv":
		cfg.Output = schema.CSVOut
	default:
		return nil, eris.Errorf("invalid format %q. must be json, csv", format)
	}

	if v := q.Get("strategy"); v != "" {
		cfg.Strategy = schema.BandStrategy(strings.ToLower(v))
		if _, ok := schema.ValidBandStrategies[cfg.Strategy]; !ok {
			return nil, eris.Errorf("invalid strategy %q. must be any, min", v)
		}
	}

	cfg.Sector = strings.TrimSpace(q.Get("sector"))
	cfg.Tier = schema.NormalizeTier(q.Get("tier"))
	cfg.Query = strings.TrimSpace(q.Get("q"))

	cfg.IncompleteOnly = false
	if v := q.Get("incomplete"); v != "" {
		parsed, err := contract.ParseBoolString(v)
		if err != nil {
			return nil, eris.Wrap(err, "invalid incomplete")
		}
		cfg.IncompleteOnly = parsed
	}

	asc := false
	if v := q.Get("asc"); v != "" {
		parsed, err := contract.ParseBoolString(v)
		if err != nil {
			return nil, eris.Wrap(err, "invalid asc")
		}
		asc = parsed
	}
	cfg.SortKey = schema.SortByScore
	if v := q.Get("sort"); v != "" {
		cfg.SortKey = schema.SortKey(strings.ToLower(v))
		if _, ok := schema.ValidSortKeys[cfg.SortKey]; !ok {
			return nil, eris.Errorf("invalid sort key %q", v)
		}
	}
	cfg.SortDesc = !asc
	if cfg.SortKey == schema.SortByRank {
		cfg.SortDesc = asc
	}

	cfg.ResultLimit = 0
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 || limit > contract.MaxResultLimit {
			return nil, eris.Errorf("limit must be between 0 and %d (received %q)", contract.MaxResultLimit, v)
		}
		cfg.ResultLimit = limit
	}

	cfg.Cycle = q.Get("cycle")
	return cfg, nil
}
