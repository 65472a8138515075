package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ogulcanaydogan/tokalator/pkg/economics"
	"github.com/ogulcanaydogan/tokalator/pkg/importer"
	"github.com/ogulcanaydogan/tokalator/pkg/model"
	"github.com/ogulcanaydogan/tokalator/pkg/providers"
)

const (
	queryTimeout        = 10 * time.Second
	defaultImportsLimit = 50
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Service string `json:"service"`
}

type pricingResponse struct {
	Models  []providers.Entry `json:"models"`
	Updated map[string]string `json:"updated"`
}

type tokensRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: s.opts.Version,
		Service: ServiceName,
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	save, err := boolParam(r.URL.Query(), "save")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if save && s.tracker == nil {
		s.fail(w, r, fmt.Errorf("%w: import history is disabled", errBadRequest))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, err)
			return
		}
		s.fail(w, r, fmt.Errorf("%w: missing multipart field \"file\"", errBadRequest))
		return
	}
	defer file.Close()

	if err := importer.CheckFilename(header.Filename); err != nil {
		s.fail(w, r, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	result, err := s.importer.Parse(data)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if save {
		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()
		if _, err := s.tracker.Import(ctx, header.Filename, result); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	s.logger.Debug("csv parsed",
		"filename", header.Filename,
		"provider", result.DetectedProvider,
		"records", result.TotalRecords,
		"saved", save,
	)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	req := economics.DefaultQualityRequest()
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.calc.Quality(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleBreakeven(w http.ResponseWriter, r *http.Request) {
	req := economics.DefaultBreakevenRequest()
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.calc.Breakeven(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCaching(w http.ResponseWriter, r *http.Request) {
	req := economics.DefaultCachingRequest()
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.calc.Caching(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePricing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, pricingResponse{Models: s.table.Models(), Updated: s.table.Updated()})
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	var req tokensRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	est, err := s.estimator.Estimate(req.Text, req.ModelID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	records, err := s.tracker.Query(ctx, filter)
	if err != nil {
		s.fail(w, r, fmt.Errorf("query usage: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	q := r.URL.Query()
	filter, err := filterFromQuery(q)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var summary *model.UsageSummary
	if name := q.Get("period"); name != "" {
		period, perr := model.ParsePeriod(name)
		if perr != nil {
			s.fail(w, r, fmt.Errorf("%w: %v", errBadRequest, perr))
			return
		}
		summary, err = s.tracker.ReportPeriod(ctx, period, filter)
	} else {
		summary, err = s.tracker.Report(ctx, filter)
	}
	if err != nil {
		s.fail(w, r, fmt.Errorf("aggregate usage: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleImports(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	limit, err := intParam(r.URL.Query(), "limit", defaultImportsLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	imports, err := s.tracker.Imports(ctx, limit)
	if err != nil {
		s.fail(w, r, fmt.Errorf("list imports: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, imports)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	imp, err := s.tracker.Lookup(ctx, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imp)
}

// decodeJSON decodes a size-capped JSON body onto v. An empty body leaves
// v untouched so the request defaults apply.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxTextBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.As(err, &tooLarge):
			return err
		}
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func filterFromQuery(q url.Values) (model.ReportFilter, error) {
	filter := model.ReportFilter{
		Provider:  q.Get("provider"),
		Model:     q.Get("model"),
		Project:   q.Get("project"),
		ImportID:  q.Get("import_id"),
		StartDate: q.Get("start"),
		EndDate:   q.Get("end"),
	}
	for _, d := range []string{filter.StartDate, filter.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(model.DateLayout, d); err != nil {
			return filter, fmt.Errorf("%w: date %q is not YYYY-MM-DD", errBadRequest, d)
		}
	}

	limit, err := intParam(q, "limit", 0)
	if err != nil {
		return filter, err
	}
	filter.Limit = limit
	return filter, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errBadRequest, name)
	}
	return n, nil
}

func boolParam(q url.Values, name string) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", errBadRequest, name)
	}
	return b, nil
}
