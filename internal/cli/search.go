package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/internal/search"
	"github.com/mesh-intelligence/larder/internal/sqlite"
)

// errSearchFailed wraps the message recorded by a failed search.
var errSearchFailed = errors.New("search failed")

func newSearchCmd(a *app) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search recipes, meals, food items and ingredients",
		Long: `Search queries every category at once and records the query in the
local search history.

With --interactive, each line read from stdin replaces the query. A search
runs once the input has been quiet for search_delay_ms, and the final line
is searched when input ends.

Example:
  larder search tomato soup
  larder search --interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			searcher := search.New(client)

			cache, err := a.openCache()
			if err != nil {
				a.logger.Warn("search history unavailable", "error", err)
				cache = nil
			} else {
				defer cache.Detach()
			}

			if interactive {
				return a.searchInteractive(cmd, searcher, cache)
			}

			query := strings.Join(args, " ")
			searcher.Search(cmd.Context(), query)
			if msg := searcher.Err(); msg != "" {
				return fmt.Errorf("%w: %s", errSearchFailed, msg)
			}
			a.recordSearch(cache, query, searcher.TotalResults())
			return a.printer(cmd.OutOrStdout()).search(query, searcher.Results())
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read queries from stdin as they are typed")
	return cmd
}

// searchInteractive feeds stdin lines through a debounced search and prints
// each settled result.
func (a *app) searchInteractive(cmd *cobra.Command, searcher *search.Searcher, cache *sqlite.Backend) error {
	delay := time.Duration(a.cfg.SearchDelayMS) * time.Millisecond
	live := search.NewLive(cmd.Context(), searcher, delay)
	defer live.Close()

	out := a.printer(cmd.OutOrStdout())
	var mu sync.Mutex
	live.OnSettled(func(query string) {
		mu.Lock()
		defer mu.Unlock()
		if strings.TrimSpace(query) == "" {
			return
		}
		if msg := searcher.Err(); msg != "" {
			a.status(cmd, "%s: %s", errSearchFailed, msg)
			return
		}
		a.recordSearch(cache, query, searcher.TotalResults())
		if err := out.search(query, searcher.Results()); err != nil {
			a.logger.Warn("render search failed", "error", err)
		}
	})

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		live.Type(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read queries: %w", err)
	}
	live.Flush()
	live.Wait()
	return nil
}

// recordSearch appends to the search history. Blank queries and a missing
// cache are skipped.
func (a *app) recordSearch(cache *sqlite.Backend, query string, total int) {
	if cache == nil || strings.TrimSpace(query) == "" {
		return
	}
	if _, err := cache.RecordSearch(query, total); err != nil {
		a.logger.Warn("record search failed", "query", query, "error", err)
	}
}

