package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// testEnv is an isolated config and data directory pointed at a fake
// recipe backend.
type testEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
	api       *fakeBackend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, key := range []string{"LARDER_SERVER", "LARDER_API_BASE", "LARDER_DATA_DIR", "LARDER_CONFIG_DIR", "LARDER_LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	tempDir := t.TempDir()
	env := &testEnv{
		t:         t,
		configDir: filepath.Join(tempDir, "config"),
		dataDir:   filepath.Join(tempDir, "data"),
		api:       newFakeBackend(t),
	}
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	config := "search_delay_ms: 60000\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "config.yaml"), []byte(config), 0o644))
	return env
}

// cmdResult holds the outcome of one command.
type cmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// run executes larder in-process against the fake backend.
func (e *testEnv) run(args ...string) cmdResult {
	return e.runWithInput("", args...)
}

func (e *testEnv) runWithInput(stdin string, args ...string) cmdResult {
	e.t.Helper()

	all := append([]string{
		"--config-dir", e.configDir,
		"--data-dir", e.dataDir,
		"--server", e.api.URL(),
	}, args...)

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetArgs(all)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))

	err := root.Execute()
	code := exitSuccess
	if err != nil {
		code = exitCode(err)
	}
	return cmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code, Err: err}
}

// mustRun runs larder and fails the test on a non-zero exit.
func (e *testEnv) mustRun(args ...string) cmdResult {
	e.t.Helper()
	res := e.run(args...)
	if res.ExitCode != exitSuccess {
		e.t.Fatalf("larder %v exited %d: %v\nstderr: %s", args, res.ExitCode, res.Err, res.Stderr)
	}
	return res
}

// parseJSON decodes command output into T.
func parseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), "output: %s", s)
	return v
}

// fakeBackend serves /api/recipes and /api/search from memory.
type fakeBackend struct {
	srv *httptest.Server

	mu       sync.Mutex
	nextID   int
	recipes  map[string]*types.Object
	order    []string
	failNext int
	queries  []string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	f := &fakeBackend{nextID: 1, recipes: map[string]*types.Object{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/recipes", f.list)
	mux.HandleFunc("POST /api/recipes", f.create)
	mux.HandleFunc("GET /api/recipes/{id}", f.get)
	mux.HandleFunc("PUT /api/recipes/{id}", f.update)
	mux.HandleFunc("DELETE /api/recipes/{id}", f.remove)
	mux.HandleFunc("GET /api/search", f.search)

	f.srv = httptest.NewServer(f.maybeFail(mux))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeBackend) URL() string { return f.srv.URL }

// failWith makes the next request answer status with a detail message.
func (f *fakeBackend) failWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = status
}

func (f *fakeBackend) maybeFail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		status := f.failNext
		f.failNext = 0
		f.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			fmt.Fprintf(w, `{"detail":"backend says %d"}`, status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeBackend) seed(fields ...types.Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := strconv.Itoa(f.nextID)
	f.nextID++
	obj := types.NewObject(types.Field{Key: "recipe_id", Value: json.Number(id)})
	for _, field := range fields {
		obj.Set(field.Key, field.Value)
	}
	f.recipes[id] = obj
	f.order = append(f.order, id)
	return id
}

func (f *fakeBackend) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]any, 0, len(f.order))
	for _, id := range f.order {
		items = append(items, f.recipes[id])
	}
	writeJSON(w, http.StatusOK, types.NewObject(types.Field{Key: "recipes", Value: items}))
}

func (f *fakeBackend) create(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	payload, err := types.ParseObject(body)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, types.NewObject(types.Field{Key: "detail", Value: "body must be an object"}))
		return
	}
	id := f.seed(payload.Fields()...)
	f.mu.Lock()
	obj := f.recipes[id]
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, obj)
}

func (f *fakeBackend) get(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	obj, ok := f.recipes[r.PathValue("id")]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, types.NewObject(types.Field{Key: "detail", Value: "Recipe not found"}))
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

func (f *fakeBackend) update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	body, _ := io.ReadAll(r.Body)
	payload, err := types.ParseObject(body)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, types.NewObject(types.Field{Key: "detail", Value: "body must be an object"}))
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recipes[id]; !ok {
		writeJSON(w, http.StatusNotFound, types.NewObject(types.Field{Key: "detail", Value: "Recipe not found"}))
		return
	}
	obj := types.NewObject(types.Field{Key: "recipe_id", Value: json.Number(id)})
	obj.Merge(payload)
	f.recipes[id] = obj
	writeJSON(w, http.StatusOK, obj)
}

func (f *fakeBackend) remove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recipes[id]; !ok {
		writeJSON(w, http.StatusNotFound, types.NewObject(types.Field{Key: "detail", Value: "Recipe not found"}))
		return
	}
	delete(f.recipes, id)
	for i, v := range f.order {
		if v == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	writeJSON(w, http.StatusOK, types.NewObject(types.Field{Key: "message", Value: "deleted"}))
}

func (f *fakeBackend) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)

	hits := []any{}
	for _, id := range f.order {
		obj := f.recipes[id]
		if strings.Contains(strings.ToLower(obj.String("recipe_name")), strings.ToLower(q)) {
			hits = append(hits, obj)
		}
	}
	writeJSON(w, http.StatusOK, types.NewObject(
		types.Field{Key: "query", Value: q},
		types.Field{Key: "results", Value: types.NewObject(
			types.Field{Key: "recipes", Value: hits},
			types.Field{Key: "meals", Value: []any{}},
			types.Field{Key: "food_items", Value: []any{}},
			types.Field{Key: "ingredients", Value: []any{}},
		)},
	))
}

func (f *fakeBackend) searchQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func writeJSON(w http.ResponseWriter, status int, obj *types.Object) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	data, _ := obj.MarshalJSON()
	w.Write(data)
}
