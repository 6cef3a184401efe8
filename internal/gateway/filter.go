// internal/gateway/filter.go
package gateway

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Filter is the immutable query state for an application list read. Handlers
// build a new Filter per request rather than mutating shared state.
type Filter struct {
	Status      string
	ApplicantID string
	Search      string
	IDs         []string
	SortBy      string
	SortOrder   string
	Limit       int
	Offset      int
}

// sortFields is the whitelist of sortable columns. Anything else falls back
// to created_at.
var sortFields = map[string]string{
	"created_at":   "a.created_at",
	"updated_at":   "a.updated_at",
	"submitted_at": "a.submitted_at",
}

// WithPage returns a copy of the filter positioned at the given page window.
func (f Filter) WithPage(limit, offset int) Filter {
	f.Limit = limit
	f.Offset = offset
	return f
}

// WithSearch returns a copy of the filter carrying a free-text search term.
func (f Filter) WithSearch(term string) Filter {
	f.Search = term
	return f
}

// WithIDs returns a copy of the filter restricted to the given application
// ids. An empty slice leaves the filter unchanged.
func (f Filter) WithIDs(ids []string) Filter {
	f.IDs = ids
	return f
}

// whereClause builds the WHERE fragment and its positional arguments.
// The fragment is empty when no criteria are set.
func (f Filter) whereClause() (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if f.ApplicantID != "" {
		args = append(args, f.ApplicantID)
		conds = append(conds, fmt.Sprintf("a.applicant_id = $%d", len(args)))
	}
	if len(f.IDs) > 0 {
		args = append(args, pq.Array(f.IDs))
		conds = append(conds, fmt.Sprintf("a.id = ANY($%d)", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(a.application_number ILIKE $%d OR b.business_name ILIKE $%d OR b.proposed_trade_name ILIKE $%d)",
			n, n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause builds the ORDER BY fragment from the whitelisted sort field
// and direction. Ties follow the storage's natural order and are not stable
// across pages under concurrent writes.
func (f Filter) orderClause() string {
	col, ok := sortFields[f.SortBy]
	if !ok {
		return " ORDER BY a.created_at DESC"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}

// pageClause builds the LIMIT/OFFSET fragment. A limit of zero or less
// disables pagination and returns every matching row from offset 0.
func (f Filter) pageClause(args []interface{}) (string, []interface{}) {
	if f.Limit <= 0 {
		return "", args
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, f.Limit)
	clause := fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, offset)
	clause += fmt.Sprintf(" OFFSET $%d", len(args))
	return clause, args
}
