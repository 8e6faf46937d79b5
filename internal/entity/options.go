package entity

import (
	"fmt"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Navigator receives the path to show after a successful operation or a
// cancel. It is the only contact the composables have with routing.
type Navigator interface {
	Push(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Push calls f(path).
func (f NavigatorFunc) Push(path string) {
	f(path)
}

// Options is the per-instance request configuration. Defaults are derived
// from the entity type name and then overridden by the caller's Options.
type Options struct {
	APIEndpoint       string
	RedirectPath      string
	IDField           string
	SuccessMessage    string
	ErrorMessage      string
	OnSuccess         func(result *types.Object)
	OnError           func(err error)
	RedirectPathFunc  func(result *types.Object) string
	RedirectOnSuccess bool
	Navigator         Navigator
}

// Option overrides one field of Options.
type Option func(*Options)

// WithEndpoint sets the API path, default "/{entityType}".
func WithEndpoint(path string) Option {
	return func(o *Options) { o.APIEndpoint = path }
}

// WithRedirectPath sets the list path redirects are built from, default
// "/{entityType}".
func WithRedirectPath(path string) Option {
	return func(o *Options) { o.RedirectPath = path }
}

// WithIDField sets the identifier key read from created entities, default
// "{entityType}_id".
func WithIDField(field string) Option {
	return func(o *Options) { o.IDField = field }
}

// WithSuccessMessage overrides the message shown after success.
func WithSuccessMessage(msg string) Option {
	return func(o *Options) { o.SuccessMessage = msg }
}

// WithErrorMessage overrides the fallback message used when the server
// gives no detail.
func WithErrorMessage(msg string) Option {
	return func(o *Options) { o.ErrorMessage = msg }
}

// OnSuccess registers a callback run with the parsed result.
func OnSuccess(fn func(result *types.Object)) Option {
	return func(o *Options) { o.OnSuccess = fn }
}

// OnError registers a callback run with the recorded error.
func OnError(fn func(err error)) Option {
	return func(o *Options) { o.OnError = fn }
}

// WithRedirectFunc computes the redirect path from the result instead of
// the default detail path.
func WithRedirectFunc(fn func(result *types.Object) string) Option {
	return func(o *Options) { o.RedirectPathFunc = fn }
}

// WithoutRedirect disables navigation on success.
func WithoutRedirect() Option {
	return func(o *Options) { o.RedirectOnSuccess = false }
}

// WithNavigator sets the router collaborator. Without one, navigation is
// skipped.
func WithNavigator(nav Navigator) Option {
	return func(o *Options) { o.Navigator = nav }
}

// FromSpec applies a registered entity's endpoint, list path and id field.
func FromSpec(spec types.EntitySpec) Option {
	return func(o *Options) {
		o.APIEndpoint = spec.Endpoint
		o.RedirectPath = "/" + spec.Name
		o.IDField = spec.IDField
	}
}

// newOptions computes defaults for entityType and applies opts on top.
// verb is the past participle used in messages ("created"), action the
// infinitive ("create").
func newOptions(entityType, verb, action string, opts []Option) Options {
	o := Options{
		APIEndpoint:       "/" + entityType,
		RedirectPath:      "/" + entityType,
		IDField:           entityType + "_id",
		SuccessMessage:    fmt.Sprintf("%s %s successfully!", entityType, verb),
		ErrorMessage:      fmt.Sprintf("Failed to %s %s", action, entityType),
		RedirectOnSuccess: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
