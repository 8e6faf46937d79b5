package entity

import (
	"context"
	"net/http"

	"github.com/mesh-intelligence/larder/internal/apiclient"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Creator drives the "create new entity" workflow for one entity type.
type Creator struct {
	*mutation
}

// NewCreator builds a Creator posting to {base}{endpoint}.
func NewCreator(client *apiclient.Client, entityType string, opts ...Option) *Creator {
	o := newOptions(entityType, "created", "create", opts)
	c := &Creator{}
	c.mutation = newMutation(client, entityType, http.MethodPost, o,
		func() string { return o.APIEndpoint },
		func(result *types.Object) string {
			// Without an id in the response there is no detail page to
			// show, so fall back to the list.
			if id := result.String(o.IDField); id != "" {
				return o.RedirectPath + "/" + id
			}
			return o.RedirectPath
		})
	return c
}

// CreateEntity posts data and returns the parsed result. On failure the
// error is recorded in State and also returned.
func (c *Creator) CreateEntity(ctx context.Context, data any) (*types.Object, error) {
	return c.run(ctx, data)
}

// Cancel navigates to the list page.
func (c *Creator) Cancel() {
	c.navigate(c.opts.RedirectPath)
}

// SuccessMessage returns the configured success text.
func (c *Creator) SuccessMessage() string {
	return c.opts.SuccessMessage
}
