package entity

import (
	"context"
	"net/http"

	"github.com/mesh-intelligence/larder/internal/apiclient"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// fetchFailedMessage is used for every failed read; the server's detail is
// not consulted on this path.
const fetchFailedMessage = "Failed to fetch entity"

// Updater loads an existing entity and persists edits to it.
type Updater struct {
	*mutation
	entityID string
	data     *types.Object
}

// NewUpdater builds an Updater for {base}{endpoint}/{entityID}.
func NewUpdater(client *apiclient.Client, entityType, entityID string, opts ...Option) *Updater {
	o := newOptions(entityType, "updated", "update", opts)
	u := &Updater{entityID: entityID}
	detail := func() string { return o.APIEndpoint + "/" + entityID }
	u.mutation = newMutation(client, entityType, http.MethodPut, o, detail,
		func(*types.Object) string { return o.RedirectPath + "/" + entityID })
	return u
}

// EntityID returns the id the Updater was built for.
func (u *Updater) EntityID() string {
	return u.entityID
}

// Data returns the last fetched payload, or nil.
func (u *Updater) Data() *types.Object {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.data
}

// FetchEntity reads the entity and stores it as Data. Success is left as
// it was. A failed fetch keeps the previous Data.
func (u *Updater) FetchEntity(ctx context.Context) (*types.Object, error) {
	token := u.begin(false)
	url := u.url()

	u.logger.Debug("fetch entity", "path", url)
	result, err := u.fetch(ctx, url)

	if !u.settle(token, err, func() { u.data = result }) {
		return result, err
	}
	if err != nil {
		u.logger.Debug("fetch failed", "path", url, "error", err)
		return nil, err
	}
	return result, nil
}

func (u *Updater) fetch(ctx context.Context, url string) (*types.Object, error) {
	resp, err := u.client.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &types.RequestError{
			StatusCode: resp.StatusCode,
			Status:     resp.StatusText,
			Message:    fetchFailedMessage,
		}
	}
	return apiclient.DecodeStrict(resp.Body)
}

// UpdateEntity replaces the entity with data and returns the parsed
// result. On success it navigates to the entity's detail page.
func (u *Updater) UpdateEntity(ctx context.Context, data any) (*types.Object, error) {
	return u.run(ctx, data)
}

// Cancel navigates back to the entity's detail page.
func (u *Updater) Cancel() {
	u.navigate(u.opts.RedirectPath + "/" + u.entityID)
}

// SuccessMessage returns the configured success text.
func (u *Updater) SuccessMessage() string {
	return u.opts.SuccessMessage
}
