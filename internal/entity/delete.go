package entity

import (
	"context"
	"net/http"

	"github.com/mesh-intelligence/larder/internal/apiclient"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Deleter removes one entity and returns to the list page.
type Deleter struct {
	*mutation
	entityID string
}

// NewDeleter builds a Deleter for {base}{endpoint}/{entityID}.
func NewDeleter(client *apiclient.Client, entityType, entityID string, opts ...Option) *Deleter {
	o := newOptions(entityType, "deleted", "delete", opts)
	d := &Deleter{entityID: entityID}
	d.mutation = newMutation(client, entityType, http.MethodDelete, o,
		func() string { return o.APIEndpoint + "/" + entityID },
		func(*types.Object) string { return o.RedirectPath })
	return d
}

// DeleteEntity issues the delete and returns the parsed response body.
func (d *Deleter) DeleteEntity(ctx context.Context) (*types.Object, error) {
	return d.run(ctx, nil)
}

// Cancel navigates back to the entity's detail page.
func (d *Deleter) Cancel() {
	d.navigate(d.opts.RedirectPath + "/" + d.entityID)
}

// SuccessMessage returns the configured success text.
func (d *Deleter) SuccessMessage() string {
	return d.opts.SuccessMessage
}
