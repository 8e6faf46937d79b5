// Package entity implements the create, update and delete workflows for
// any entity type. Each workflow owns one state bundle and is built on a
// single mutation engine parameterized by HTTP verb, URL and redirect
// policy.
package entity

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/larder/internal/apiclient"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// redirectPolicy returns the path to navigate to after success, or "" to
// stay put.
type redirectPolicy func(result *types.Object) string

// mutation runs one kind of write request and tracks its state.
//
// Every invocation takes a fresh token. Only the invocation holding the
// latest token may write state, run callbacks or navigate; a superseded
// invocation still returns its own result to its caller.
type mutation struct {
	client     *apiclient.Client
	logger     *slog.Logger
	entityType string
	method     string
	opts       Options
	url        func() string
	redirect   redirectPolicy

	mu    sync.Mutex
	state types.OperationState
	token string
}

func newMutation(client *apiclient.Client, entityType, method string, opts Options, url func() string, redirect redirectPolicy) *mutation {
	return &mutation{
		client:     client,
		logger:     client.Logger().With("component", "entity", "entity", entityType),
		entityType: entityType,
		method:     method,
		opts:       opts,
		url:        url,
		redirect:   redirect,
	}
}

// State returns a snapshot of the state bundle.
func (m *mutation) State() types.OperationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reset clears loading, error and success and supersedes any invocation
// still in flight.
func (m *mutation) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = types.OperationState{}
	m.token = uuid.NewString()
}

// begin starts an invocation: loading on, error and success cleared.
func (m *mutation) begin(clearSuccess bool) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = uuid.NewString()
	m.state.Loading = true
	m.state.Error = ""
	if clearSuccess {
		m.state.Success = false
	}
	return m.token
}

// settle records the outcome of the invocation holding token. It reports
// false, and changes nothing, when the invocation was superseded.
func (m *mutation) settle(token string, err error, apply func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token != m.token {
		return false
	}
	m.state.Loading = false
	if err != nil {
		m.state.Error = err.Error()
		m.state.Success = false
		return true
	}
	if apply != nil {
		apply()
	}
	return true
}

// run sends body and applies the shared success/failure contract.
func (m *mutation) run(ctx context.Context, body any) (*types.Object, error) {
	token := m.begin(true)
	url := m.url()

	m.logger.Debug("mutation request", "method", m.method, "path", url)
	result, err := m.send(ctx, url, body)

	current := m.settle(token, err, func() {
		m.state.Success = true
	})
	if !current {
		m.logger.Debug("mutation superseded", "method", m.method, "path", url)
		return result, err
	}

	if err != nil {
		m.logger.Debug("mutation failed", "method", m.method, "path", url, "error", err)
		if m.opts.OnError != nil {
			m.opts.OnError(err)
		}
		return nil, err
	}

	if m.opts.OnSuccess != nil {
		m.opts.OnSuccess(result)
	}
	m.navigateAfter(result)
	return result, nil
}

// send issues the request. Response bodies are decoded leniently so an
// empty or non-JSON success body never fails the operation.
func (m *mutation) send(ctx context.Context, url string, body any) (*types.Object, error) {
	resp, err := m.client.Do(ctx, m.method, url, body)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, apiclient.RequestError(resp, m.opts.ErrorMessage)
	}
	return apiclient.DecodeLenient(resp.Body), nil
}

func (m *mutation) navigateAfter(result *types.Object) {
	if !m.opts.RedirectOnSuccess {
		return
	}
	var path string
	if m.opts.RedirectPathFunc != nil {
		path = m.opts.RedirectPathFunc(result)
	} else {
		path = m.redirect(result)
	}
	m.navigate(path)
}

func (m *mutation) navigate(path string) {
	if m.opts.Navigator == nil || path == "" {
		return
	}
	m.opts.Navigator.Push(path)
}
