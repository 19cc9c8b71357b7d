// Package search indexes and queries transactions in Algolia.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/algolia/algoliasearch-client-go/v4/algolia/search"
	"github.com/hamid26126/CashMate/internal/models"
	"github.com/sirupsen/logrus"
)

// Config holds Algolia configuration.
type Config struct {
	AppID     string
	APIKey    string // Admin key; the server both writes and queries
	IndexName string
}

// SearchParams defines the input for an Algolia search.
type SearchParams struct {
	Query    string
	UserID   string
	Category string
	Type     models.TransactionType
	// Pagination (offset-based)
	Page     int
	PageSize int
}

// SearchResult is one matching transaction.
type SearchResult struct {
	ID          string                 `json:"id"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Amount      float64                `json:"amount"`
	Type        models.TransactionType `json:"type"`
	Date        time.Time              `json:"date"`
}

// SearchResponse holds results from Algolia.
type SearchResponse struct {
	Results    []*SearchResult `json:"results"`
	TotalCount int             `json:"totalCount"`
	TotalPages int             `json:"totalPages"`
	Page       int             `json:"page"`
}

// AlgoliaClient wraps the Algolia search API client.
type AlgoliaClient struct {
	client    *search.APIClient
	indexName string
	log       logrus.FieldLogger
}

// NewAlgoliaClient creates a new Algolia search client.
func NewAlgoliaClient(cfg Config, log logrus.FieldLogger) (*AlgoliaClient, error) {
	if cfg.AppID == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("algolia AppID and APIKey are required")
	}
	if cfg.IndexName == "" {
		cfg.IndexName = "transactions"
	}

	client, err := search.NewClient(cfg.AppID, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("creating algolia client: %w", err)
	}

	return &AlgoliaClient{
		client:    client,
		indexName: cfg.IndexName,
		log:       log.WithField("component", "search"),
	}, nil
}

// IndexTransaction adds or replaces the transaction's record.
func (c *AlgoliaClient) IndexTransaction(ctx context.Context, tx *models.Transaction) error {
	_, err := c.client.AddOrUpdateObject(c.client.NewApiAddOrUpdateObjectRequest(c.indexName, tx.ID, transactionRecord(tx)))
	if err != nil {
		return fmt.Errorf("algolia index transaction %s: %w", tx.ID, err)
	}
	return nil
}

// RemoveTransaction deletes the transaction's record.
func (c *AlgoliaClient) RemoveTransaction(ctx context.Context, txID string) error {
	_, err := c.client.DeleteObject(c.client.NewApiDeleteObjectRequest(c.indexName, txID))
	if err != nil {
		return fmt.Errorf("algolia delete transaction %s: %w", txID, err)
	}
	return nil
}

func transactionRecord(tx *models.Transaction) map[string]any {
	return map[string]any{
		"UserID":      tx.UserID,
		"Description": tx.Description,
		"Category":    tx.CategoryName(),
		"Amount":      tx.Amount,
		"Type":        string(tx.Type),
		"DateUnix":    tx.Date.Unix(),
	}
}

// Search performs a full-text search via Algolia.
func (c *AlgoliaClient) Search(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	if pageSize > 100 {
		pageSize = 100
	}

	page := params.Page
	if page < 0 {
		page = 0
	}

	searchParams := search.SearchParamsObjectAsSearchParams(
		search.NewSearchParamsObject().
			SetQuery(params.Query).
			SetHitsPerPage(int32(pageSize)).
			SetPage(int32(page)).
			SetFilters(buildFilters(params)),
	)

	resp, err := c.client.SearchSingleIndex(c.client.NewApiSearchSingleIndexRequest(c.indexName).WithSearchParams(searchParams))
	if err != nil {
		return nil, fmt.Errorf("algolia search: %w", err)
	}

	results := make([]*SearchResult, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		props := hit.AdditionalProperties
		if props == nil {
			props = map[string]any{}
		}
		props["objectID"] = hit.ObjectID
		if result := hitToSearchResult(props); result != nil {
			results = append(results, result)
		} else {
			c.log.Warn("skipping hit with no objectID")
		}
	}

	totalCount := 0
	if resp.NbHits != nil {
		totalCount = int(*resp.NbHits)
	}
	totalPages := 0
	if resp.NbPages != nil {
		totalPages = int(*resp.NbPages)
	}

	return &SearchResponse{
		Results:    results,
		TotalCount: totalCount,
		TotalPages: totalPages,
		Page:       page,
	}, nil
}

// buildFilters constructs Algolia filter string from search params.
// UserID is always enforced so one user never sees another's records.
func buildFilters(params SearchParams) string {
	parts := []string{fmt.Sprintf("UserID:%q", params.UserID)}

	if params.Category != "" {
		parts = append(parts, fmt.Sprintf("Category:%q", params.Category))
	}
	if params.Type.Valid() {
		parts = append(parts, fmt.Sprintf("Type:%q", string(params.Type)))
	}

	return strings.Join(parts, " AND ")
}

// hitToSearchResult converts an Algolia hit to a SearchResult.
func hitToSearchResult(props map[string]any) *SearchResult {
	result := &SearchResult{}

	if v, ok := props["objectID"].(string); ok {
		result.ID = v
	}
	if v, ok := props["Description"].(string); ok {
		result.Description = v
	}
	if v, ok := props["Category"].(string); ok {
		result.Category = v
	}
	if v, ok := props["Amount"].(float64); ok {
		result.Amount = v
	}
	if v, ok := props["DateUnix"].(float64); ok && v > 0 {
		result.Date = time.Unix(int64(v), 0).UTC()
	}
	if v, ok := props["Type"].(string); ok {
		result.Type = models.TransactionType(strings.ToLower(v))
	}

	if result.ID == "" {
		return nil
	}
	return result
}
