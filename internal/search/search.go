// Package search runs cross-category text searches against the backend and
// keeps the aggregated results.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/larder/internal/apiclient"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Path is the backend search endpoint.
const Path = "/search"

// Searcher owns one search state: the in-flight flag, the last error and
// the last result set. Results always carry all four categories.
type Searcher struct {
	client *apiclient.Client
	logger *slog.Logger

	mu        sync.Mutex
	searching bool
	err       string
	results   types.SearchResultSet
	token     string
}

// New returns a Searcher with an empty result set.
func New(client *apiclient.Client) *Searcher {
	return &Searcher{
		client:  client,
		logger:  client.Logger().With("component", "search"),
		results: types.EmptySearchResults(),
	}
}

// IsSearching reports whether a search is in flight.
func (s *Searcher) IsSearching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searching
}

// Err returns the message recorded by the last failed search, or "".
func (s *Searcher) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Results returns the current result set.
func (s *Searcher) Results() types.SearchResultSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// TotalResults counts hits across all categories at call time.
func (s *Searcher) TotalResults() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results.Total()
}

// Search queries every category. An empty or blank query resets the
// results without a request. A failure is recorded in Err and leaves the
// previous results in place; it is not returned.
//
// When searches overlap, only the most recent one updates state. Search
// reports false when a later Search or Clear superseded it, in which case
// Results and Err belong to another query.
func (s *Searcher) Search(ctx context.Context, query string) bool {
	if strings.TrimSpace(query) == "" {
		s.mu.Lock()
		s.results = types.EmptySearchResults()
		s.token = uuid.NewString()
		s.searching = false
		s.mu.Unlock()
		return true
	}

	s.mu.Lock()
	token := uuid.NewString()
	s.token = token
	s.searching = true
	s.err = ""
	s.mu.Unlock()

	results, err := s.fetch(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		s.logger.Debug("search superseded", "query", query)
		return false
	}
	s.searching = false
	if err != nil {
		s.logger.Debug("search failed", "query", query, "error", err)
		s.err = err.Error()
		return true
	}
	s.results = results
	return true
}

// Clear empties the results and the error without a request. A search
// still in flight is superseded and will not repopulate them.
func (s *Searcher) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = uuid.NewString()
	s.searching = false
	s.results = types.EmptySearchResults()
	s.err = ""
}

type searchResponse struct {
	Query   string                     `json:"query"`
	Results map[string]json.RawMessage `json:"results"`
}

func (s *Searcher) fetch(ctx context.Context, query string) (types.SearchResultSet, error) {
	resp, err := s.client.Do(ctx, http.MethodGet, Path+"?q="+encodeQuery(query), nil)
	if err != nil {
		return types.SearchResultSet{}, err
	}
	if !resp.OK() {
		return types.SearchResultSet{}, &types.RequestError{
			StatusCode: resp.StatusCode,
			Status:     resp.StatusText,
			Message:    fmt.Sprintf("Search failed: %d", resp.StatusCode),
		}
	}

	var body searchResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return types.SearchResultSet{}, &types.ParseError{Body: string(resp.Body), Err: err}
	}
	return s.decodeResults(body.Results), nil
}

// decodeResults keeps the object hits of each known category. A category
// that is not an array, or a hit that is not an object, is skipped.
func (s *Searcher) decodeResults(raw map[string]json.RawMessage) types.SearchResultSet {
	var set types.SearchResultSet
	for _, category := range types.SearchCategories {
		data, ok := raw[category]
		if !ok {
			continue
		}
		var hits []json.RawMessage
		if err := json.Unmarshal(data, &hits); err != nil {
			s.logger.Debug("skipping search category", "category", category, "error", err)
			continue
		}
		objs := make([]*types.Object, 0, len(hits))
		for _, hit := range hits {
			obj, err := types.ParseObject(hit)
			if err != nil {
				s.logger.Debug("skipping search hit", "category", category, "error", err)
				continue
			}
			objs = append(objs, obj)
		}
		switch category {
		case types.CategoryRecipes:
			set.Recipes = objs
		case types.CategoryMeals:
			set.Meals = objs
		case types.CategoryFoodItems:
			set.FoodItems = objs
		case types.CategoryIngredients:
			set.Ingredients = objs
		}
	}
	return set.Normalize()
}

// encodeQuery escapes like encodeURIComponent: spaces become %20, not "+".
func encodeQuery(q string) string {
	return strings.ReplaceAll(url.QueryEscape(q), "+", "%20")
}
