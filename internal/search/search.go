// Package search is the medical Q&A pass-through: queries are forwarded to
// Google Programmable Search and results returned verbatim. Answer synthesis
// happens in the external conversational layer.
package search

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/lungsight/apiserver/config"
)

const defaultMaxResults = 5

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Service wraps the Custom Search API client.
type Service struct {
	svc      *customsearch.Service
	engineID string
}

// NewService constructs a search client from config.
func NewService(ctx context.Context, cfg config.SearchConfig) (*Service, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("search api key is required")
	}
	if strings.TrimSpace(cfg.EngineID) == "" {
		return nil, errors.New("search engine id is required")
	}

	svc, err := customsearch.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}

	return &Service{svc: svc, engineID: cfg.EngineID}, nil
}

// Query forwards the question and returns up to max results.
func (s *Service) Query(ctx context.Context, query string, max int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is required")
	}
	if max <= 0 || max > 10 {
		max = defaultMaxResults
	}

	resp, err := s.svc.Cse.List().
		Cx(s.engineID).
		Q(query).
		Num(int64(max)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, Result{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}
