package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/justin4957/seclab-dashboard/internal/analyzer"
	"github.com/justin4957/seclab-dashboard/internal/charts"
	"github.com/justin4957/seclab-dashboard/internal/export"
	"github.com/justin4957/seclab-dashboard/internal/logger"
	"github.com/justin4957/seclab-dashboard/pkg/models"
)

// Query parameters carrying a selection. An absent parameter selects every
// value of its dimension. Each occurrence adds one value, the blank value
// included. The dimension's NoneSuffix parameter selects no values.
const (
	ParamCountry    = "country"
	ParamAttackType = "attack_type"
	ParamSeverity   = "severity"

	NoneSuffix = "_none"
)

const svgContentType = "image/svg+xml"

var indexTemplate = template.Must(template.ParseFS(staticFiles, "static/index.html"))

type indexData struct {
	Title  string
	Intro  string
	Footer string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, indexData{
		Title:  analyzer.Title,
		Intro:  analyzer.Intro,
		Footer: analyzer.Footer,
	})
	if err != nil {
		logger.Error("Failed to render index", logger.Err(err))
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) staticHandler() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{"status": "ok"}
	code := http.StatusOK

	table, err := s.table()
	switch {
	case table == nil:
		status["status"] = "unavailable"
		code = http.StatusServiceUnavailable
	case err != nil:
		status["status"] = "degraded"
	}
	if table != nil {
		status["rows"] = table.Len()
		status["source"] = table.Source
		status["modified"] = table.ModTime
	}
	if err != nil {
		status["error"] = err.Error()
	}
	status["sessions"] = s.SessionCount()

	writeJSON(w, code, status)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	table, ok := s.requestTable(w)
	if !ok {
		return
	}

	start := time.Now()
	view := s.renderer.Render(table, SelectionFromQuery(table, r.URL.Query()))
	s.metrics.ObserveRender("http", time.Since(start))

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	table, ok := s.requestTable(w)
	if !ok {
		return
	}

	sel := analyzer.NormalizeSelection(table, SelectionFromQuery(table, r.URL.Query()))
	events := analyzer.Filter(table, sel)

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, table.Columns, events); err != nil {
		logger.Error("CSV export failed", logger.Err(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	s.metrics.Exported(len(events))

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Write(buf.Bytes())
}

func (s *Server) handleSeverityChart(w http.ResponseWriter, r *http.Request) {
	table, ok := s.requestTable(w)
	if !ok {
		return
	}

	sel := analyzer.NormalizeSelection(table, SelectionFromQuery(table, r.URL.Query()))
	counts := analyzer.CountBySeverity(analyzer.Filter(table, sel))

	var buf bytes.Buffer
	err := charts.SeverityDonut(&buf, counts)
	if errors.Is(err, charts.ErrNoData) {
		buf.Reset()
		err = charts.Placeholder(&buf, analyzer.EmptyMessage)
	}
	if err != nil {
		logger.Error("Severity chart failed", logger.Err(err))
		writeError(w, http.StatusInternalServerError, "chart failed")
		return
	}
	writeSVG(w, buf.Bytes())
}

func (s *Server) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	table, ok := s.requestTable(w)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "frame"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "invalid frame index")
		return
	}

	sel := analyzer.NormalizeSelection(table, SelectionFromQuery(table, r.URL.Query()))
	trend := analyzer.TrendByHour(analyzer.Filter(table, sel))

	var buf bytes.Buffer
	switch {
	case len(trend.Frames) == 0:
		err = charts.Placeholder(&buf, analyzer.EmptyMessage)
	case index >= len(trend.Frames):
		writeError(w, http.StatusNotFound, "frame out of range")
		return
	default:
		err = charts.TrendFrame(&buf, trend.Frames[index], trend.YMax, charts.Palette(trend.AttackTypes))
	}
	if err != nil {
		logger.Error("Trend chart failed", logger.Int("frame", index), logger.Err(err))
		writeError(w, http.StatusInternalServerError, "chart failed")
		return
	}
	writeSVG(w, buf.Bytes())
}

// requestTable fetches the table for a request, writing 503 when none exists
func (s *Server) requestTable(w http.ResponseWriter) (*models.EventTable, bool) {
	table, err := s.table()
	if table == nil {
		logger.Error("No event table available", logger.Err(err))
		writeError(w, http.StatusServiceUnavailable, "event data unavailable")
		return nil, false
	}
	if err != nil {
		logger.Warn("Serving previous event table", logger.Err(err))
	}
	return table, true
}

// SelectionFromQuery reads a selection from query parameters
func SelectionFromQuery(table *models.EventTable, q url.Values) models.Selection {
	all := analyzer.DefaultSelection(table)
	return models.Selection{
		Countries:   queryValues(q, ParamCountry, all.Countries),
		AttackTypes: queryValues(q, ParamAttackType, all.AttackTypes),
		Severities:  queryValues(q, ParamSeverity, all.Severities),
	}
}

func queryValues(q url.Values, key string, all []string) []string {
	if _, none := q[key+NoneSuffix]; none {
		return []string{}
	}
	raw, ok := q[key]
	if !ok {
		return all
	}
	return append([]string{}, raw...)
}

// SelectionQuery encodes a selection so that SelectionFromQuery restores it
func SelectionQuery(sel models.Selection) url.Values {
	q := url.Values{}
	for key, values := range map[string][]string{
		ParamCountry:    sel.Countries,
		ParamAttackType: sel.AttackTypes,
		ParamSeverity:   sel.Severities,
	} {
		if len(values) == 0 {
			q.Set(key+NoneSuffix, "1")
			continue
		}
		q[key] = append([]string(nil), values...)
	}
	return q
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", logger.Err(err))
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

func writeSVG(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", svgContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(body)
}
