package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "vyapara-admin/internal/common/errors"
	"vyapara-admin/internal/common/metrics"
	"vyapara-admin/internal/decision"
	"vyapara-admin/internal/gateway"
	"vyapara-admin/internal/models"
	"vyapara-admin/internal/view"
)

// searchResultLimit caps how many ids the search mirror feeds back into the
// SQL filter for one list request.
const searchResultLimit = 500

// listFilter builds a gateway filter from the request's query parameters.
func (s *Server) listFilter(r *http.Request) gateway.Filter {
	q := r.URL.Query()

	pageSize := s.review.DefaultPageSize
	if v, err := strconv.Atoi(q.Get("pageSize")); err == nil && v > 0 {
		pageSize = v
	}
	page := 1
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}

	return gateway.Filter{
		Status:      strings.TrimSpace(q.Get("status")),
		ApplicantID: strings.TrimSpace(q.Get("applicantId")),
		SortBy:      q.Get("sortBy"),
		SortOrder:   q.Get("sortOrder"),
	}.WithPage(pageSize, (page-1)*pageSize)
}

// resolveSearch applies a free-text term to the filter. With the mirror
// enabled the term resolves to an id set; on mirror failure, when the mirror
// is disabled, or when the match set overflows the id cap, the term goes to
// the SQL path instead. The second return is false when the mirror matched
// nothing, which short-circuits the list to an empty page.
func (s *Server) resolveSearch(r *http.Request, f gateway.Filter) (gateway.Filter, bool) {
	term := strings.TrimSpace(r.URL.Query().Get("search"))
	if term == "" {
		return f, true
	}
	if s.deps.Search == nil {
		return f.WithSearch(term), true
	}

	ids, err := s.deps.Search.SearchIDs(r.Context(), term, searchResultLimit)
	if err != nil {
		s.logger.WithError(err).Warn("search mirror unavailable, using sql search", map[string]interface{}{
			"term": term,
		})
		return f.WithSearch(term), true
	}
	if len(ids) == 0 {
		return f, false
	}
	if len(ids) >= searchResultLimit {
		// a full page from the mirror means the match set may exceed the
		// cap; only the SQL path keeps the row set and total count exact
		return f.WithSearch(term), true
	}
	return f.WithIDs(ids), true
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	f, matched := s.resolveSearch(r, s.listFilter(r))
	if !matched {
		writeJSON(w, http.StatusOK, gateway.ListResult{Records: []models.Application{}, TotalCount: 0})
		return
	}

	result, err := s.deps.Gateway.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	detail, err := s.deps.Gateway.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleApplicationDocuments(w http.ResponseWriter, r *http.Request) {
	detail, err := s.deps.Gateway.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	entries := s.deps.Documents.MergedDocuments(r.Context(), detail, s.now())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"documents": entries,
	})
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req decision.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("body", "request body must be valid JSON"))
		return
	}

	app, err := s.deps.Decisions.Submit(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}

	// keep the search mirror current; a stale entry only affects ranking,
	// so failures are logged and not surfaced
	if s.deps.Search != nil {
		updated := *app
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.deps.Search.IndexApplication(ctx, updated); err != nil {
				s.logger.WithError(err).Warn("search mirror update failed", map[string]interface{}{
					"applicationId": updated.ID,
				})
			}
		}()
	}

	writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleExportApplications(w http.ResponseWriter, r *http.Request) {
	f, matched := s.resolveSearch(r, s.listFilter(r))
	if !matched {
		s.writeCSV(w, "applications", view.ApplicationsCSV(nil))
		return
	}
	// exports walk the full match set, not one page
	f = f.WithPage(0, 0)

	result, err := s.deps.Gateway.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}

	ids := make([]string, 0, len(result.Records))
	for _, app := range result.Records {
		ids = append(ids, app.ID)
	}
	stepsByApp, err := s.deps.Gateway.ListStepsFor(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}

	rows := view.ToTableRows(result.Records, stepsByApp, s.now())
	s.writeCSV(w, "applications", view.ApplicationsCSV(rows))
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Statistics.Snapshot(r.Context(), r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleExportStatistics(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Statistics.Snapshot(r.Context(), r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeCSV(w, "statistics", view.StatisticsCSV(*snap))
}

func (s *Server) handleSignedURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	expiresIn, _ := strconv.ParseInt(q.Get("expires"), 10, 64)

	url, err := s.deps.Documents.SignedURL(r.Context(), q.Get("path"), expiresIn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"url": url,
	})
}

func (s *Server) handleSignedURLs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paths     []string `json:"paths"`
		ExpiresIn int64    `json:"expiresIn"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("body", "request body must be valid JSON"))
		return
	}

	urls, err := s.deps.Documents.SignedURLs(r.Context(), req.Paths, req.ExpiresIn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"urls": urls,
	})
}

// writeCSV sends a CSV attachment named after the export kind and the
// current date.
func (s *Server) writeCSV(w http.ResponseWriter, kind, body string) {
	metrics.ExportsTotal.WithLabelValues(kind).Inc()
	filename := fmt.Sprintf("%s_export_%s.csv", kind, s.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
