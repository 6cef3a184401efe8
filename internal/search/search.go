// Package search maintains a free-text mirror of application summaries in
// Elasticsearch. It is optional: when disabled or failing, the list endpoint
// falls back to SQL ILIKE matching.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"vyapara-admin/internal/common/logger"
	"vyapara-admin/internal/models"
)

// Document is the indexed application summary.
type Document struct {
	ID                string    `json:"id"`
	ApplicationNumber string    `json:"application_number"`
	BusinessName      string    `json:"business_name"`
	ProposedTradeName string    `json:"proposed_trade_name"`
	ApplicantName     string    `json:"applicant_name"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

// Index wraps the application search index.
type Index struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

// NewIndex creates an Index over the named Elasticsearch index.
func NewIndex(client *elasticsearch.Client, index string, log logger.Logger) *Index {
	return &Index{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "search"}),
	}
}

// IndexApplication upserts one application summary into the mirror.
func (ix *Index) IndexApplication(ctx context.Context, app models.Application) error {
	doc := Document{
		ID:                app.ID,
		ApplicationNumber: app.ApplicationNumber,
		BusinessName:      app.BusinessName,
		ProposedTradeName: app.ProposedTradeName,
		ApplicantName:     app.ApplicantName,
		Status:            app.Status,
		CreatedAt:         app.CreatedAt,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      ix.index,
		DocumentID: app.ID,
		Body:       strings.NewReader(string(body)),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("index application %s: %w", app.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index application %s: %s", app.ID, res.Status())
	}
	return nil
}

// SearchIDs returns the ids of applications matching the free-text term,
// best matches first.
func (ix *Index) SearchIDs(ctx context.Context, term string, size int) ([]string, error) {
	if size <= 0 || size > 1000 {
		size = 100
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  term,
				"fields": []string{"application_number^3", "business_name^2", "proposed_trade_name^2", "applicant_name"},
				"type":   "best_fields",
			},
		},
		"_source": false,
	}

	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{ix.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return nil, fmt.Errorf("search applications: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search applications: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
