package search

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/mesh-intelligence/larder/internal/apiclient"
	"github.com/mesh-intelligence/larder/internal/debounce"
	"github.com/mesh-intelligence/larder/pkg/types"
)

type fakeAPI struct {
	*httptest.Server
	calls   atomic.Int32
	queries chan string
}

func newFakeAPI(t *testing.T, handler http.HandlerFunc) *fakeAPI {
	t.Helper()
	f := &fakeAPI{queries: make(chan string, 16)}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.queries <- r.URL.Query().Get("q")
		handler(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) searcher() *Searcher {
	return New(apiclient.New(f.URL + "/api"))
}

const pastaResponse = `{"query":"pasta","results":{"recipes":[{"recipe_id":1}],"meals":[],"food_items":[],"ingredients":[]}}`

func TestSearch_BlankQueryIssuesNoRequest(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, pastaResponse)
	})
	s := api.searcher()

	s.Search(context.Background(), "pasta")
	require.Equal(t, 1, s.TotalResults())

	for _, q := range []string{"", "   ", "\t\n"} {
		s.Search(context.Background(), q)
		assert.Equal(t, types.EmptySearchResults(), s.Results(), "query %q", q)
	}
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestSearch_AggregatesResults(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search", r.URL.Path)
		io.WriteString(w, pastaResponse)
	})
	s := api.searcher()

	s.Search(context.Background(), "pasta")
	assert.Equal(t, 1, s.TotalResults())
	assert.False(t, s.IsSearching())
	assert.Empty(t, s.Err())
	assert.Equal(t, "pasta", <-api.queries)

	results := s.Results()
	require.Len(t, results.Recipes, 1)
	assert.Equal(t, "1", results.Recipes[0].String("recipe_id"))
}

func TestSearch_EncodesQuery(t *testing.T) {
	var rawQuery string
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		io.WriteString(w, `{"results":{}}`)
	})
	s := api.searcher()

	s.Search(context.Background(), "mac & cheese+")
	assert.Equal(t, "q=mac%20%26%20cheese%2B", rawQuery)
	assert.Equal(t, "mac & cheese+", <-api.queries)
}

func TestSearch_MissingResultsYieldEmptyShape(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "partial" {
			io.WriteString(w, `{"results":{"meals":[{"meal_id":2},{"meal_id":3}]}}`)
			return
		}
		io.WriteString(w, `{"query":"x"}`)
	})
	s := api.searcher()

	s.Search(context.Background(), "x")
	assert.Equal(t, types.EmptySearchResults(), s.Results())

	s.Search(context.Background(), "partial")
	results := s.Results()
	assert.Len(t, results.Meals, 2)
	assert.NotNil(t, results.Recipes)
	assert.NotNil(t, results.FoodItems)
	assert.NotNil(t, results.Ingredients)
	assert.Equal(t, 2, s.TotalResults())
}

func TestSearch_FailureKeepsPreviousResults(t *testing.T) {
	var fail atomic.Bool
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, pastaResponse)
	})
	s := api.searcher()

	s.Search(context.Background(), "pasta")
	require.Equal(t, 1, s.TotalResults())

	fail.Store(true)
	s.Search(context.Background(), "pasta")
	assert.Equal(t, "Search failed: 502", s.Err())
	assert.False(t, s.IsSearching())
	assert.Equal(t, 1, s.TotalResults())

	fail.Store(false)
	s.Search(context.Background(), "pasta")
	assert.Empty(t, s.Err(), "a new search clears the error")
}

func TestSearch_ParseFailure(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>`)
	})
	s := api.searcher()

	s.Search(context.Background(), "soup")
	assert.NotEmpty(t, s.Err())
	assert.Equal(t, types.EmptySearchResults(), s.Results())
}

func TestSearch_Clear(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	s := api.searcher()

	s.Search(context.Background(), "soup")
	require.NotEmpty(t, s.Err())

	s.Clear()
	assert.Empty(t, s.Err())
	assert.Equal(t, types.EmptySearchResults(), s.Results())
	assert.Equal(t, 0, s.TotalResults())
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestSearch_LatestWins(t *testing.T) {
	release := make(chan struct{})
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "slow" {
			<-release
			io.WriteString(w, `{"results":{"recipes":[{"recipe_id":1},{"recipe_id":2},{"recipe_id":3}]}}`)
			return
		}
		io.WriteString(w, pastaResponse)
	})
	s := api.searcher()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Search(context.Background(), "slow")
	}()
	require.Eventually(t, func() bool { return api.calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.True(t, s.IsSearching())

	assert.True(t, s.Search(context.Background(), "pasta"))
	close(release)
	<-done

	assert.Equal(t, 1, s.TotalResults())
	assert.False(t, s.IsSearching())
}

func TestSearch_SupersededReportsFalse(t *testing.T) {
	release := make(chan struct{})
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "slow" {
			<-release
		}
		io.WriteString(w, pastaResponse)
	})
	s := api.searcher()

	current := make(chan bool, 1)
	go func() { current <- s.Search(context.Background(), "slow") }()
	require.Eventually(t, func() bool { return api.calls.Load() == 1 }, time.Second, time.Millisecond)

	assert.True(t, s.Search(context.Background(), "pasta"))
	close(release)
	assert.False(t, <-current)
}

func TestSearch_ClearSupersedesInFlight(t *testing.T) {
	release := make(chan struct{})
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		io.WriteString(w, pastaResponse)
	})
	s := api.searcher()

	current := make(chan bool, 1)
	go func() { current <- s.Search(context.Background(), "pasta") }()
	require.Eventually(t, func() bool { return api.calls.Load() == 1 }, time.Second, time.Millisecond)
	require.True(t, s.IsSearching())

	s.Clear()
	assert.False(t, s.IsSearching())
	close(release)

	assert.False(t, <-current)
	assert.Equal(t, types.EmptySearchResults(), s.Results())
	assert.Empty(t, s.Err())
}

func TestSearch_SkipsNonObjectHits(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"results":{"recipes":[{"recipe_id":1},"stray",null,7],"meals":"none","food_items":[{"food_item_id":3}]}}`)
	})
	s := api.searcher()

	require.True(t, s.Search(context.Background(), "soup"))
	assert.Empty(t, s.Err())
	assert.Equal(t, 2, s.TotalResults())
	results := s.Results()
	require.Len(t, results.Recipes, 1)
	assert.Equal(t, []*types.Object{}, results.Meals)
	assert.Len(t, results.FoodItems, 1)
	assert.Equal(t, []*types.Object{}, results.Ingredients)
}

func TestLive_DebouncesTyping(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, pastaResponse)
	})
	clk := testingclock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	live := NewLive(context.Background(), api.searcher(), 100*time.Millisecond, debounce.WithClock(clk))
	defer live.Close()

	live.Type("p")
	clk.Step(30 * time.Millisecond)
	live.Type("pa")
	clk.Step(30 * time.Millisecond)
	live.Type("pasta")
	clk.Step(99 * time.Millisecond)
	assert.Equal(t, int32(0), api.calls.Load())

	clk.Step(time.Millisecond)
	require.Eventually(t, func() bool { return live.Searcher().TotalResults() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), api.calls.Load())
	assert.Equal(t, "pasta", <-api.queries)
	assert.Equal(t, "pasta", live.Query())
}

func TestLive_FlushAndClose(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, pastaResponse)
	})
	clk := testingclock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	live := NewLive(context.Background(), api.searcher(), time.Minute, debounce.WithClock(clk))

	live.Type("pasta")
	live.Flush()
	assert.Equal(t, 1, live.Searcher().TotalResults())

	live.Type("soup")
	live.Close()
	clk.Step(time.Hour)
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestLive_OnSettled(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, pastaResponse)
	})
	clk := testingclock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	live := NewLive(context.Background(), api.searcher(), time.Minute, debounce.WithClock(clk))
	defer live.Close()

	var settled []string
	live.OnSettled(func(q string) {
		settled = append(settled, q)
		assert.False(t, live.Searcher().IsSearching())
	})

	live.Type("pasta")
	live.Flush()
	assert.Equal(t, []string{"pasta"}, settled)
}

func TestLive_OnSettledSkipsSupersededSearch(t *testing.T) {
	release := make(chan struct{})
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "apple" {
			<-release
			io.WriteString(w, pastaResponse)
			return
		}
		io.WriteString(w, `{"results":{"recipes":[{"recipe_id":1}],"meals":[{"meal_id":2}]}}`)
	})
	clk := testingclock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	live := NewLive(context.Background(), api.searcher(), time.Minute, debounce.WithClock(clk))
	defer live.Close()

	var mu sync.Mutex
	settled := map[string]int{}
	live.OnSettled(func(q string) {
		mu.Lock()
		defer mu.Unlock()
		settled[q] = live.Searcher().TotalResults()
	})

	live.Type("apple")
	go live.Flush()
	require.Eventually(t, func() bool { return api.calls.Load() == 1 }, time.Second, time.Millisecond)

	live.Type("banana")
	live.Flush()
	close(release)
	live.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]int{"banana": 2}, settled)
	assert.Equal(t, 2, live.Searcher().TotalResults())
}
