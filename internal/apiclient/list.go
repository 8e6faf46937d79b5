package apiclient

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// List fetches every entity of one type. The backend wraps the list in an
// envelope keyed by the type ({"unit_types": [...]}); when that key is
// missing the first array-valued field is used.
func (c *Client) List(ctx context.Context, spec types.EntitySpec) ([]*types.Object, error) {
	envelope, err := c.GetJSON(ctx, spec.Endpoint)
	if err != nil {
		return nil, err
	}
	return listItems(envelope, spec.ListKey)
}

func listItems(envelope *types.Object, key string) ([]*types.Object, error) {
	raw, ok := envelope.Get(key)
	if !ok {
		for _, f := range envelope.Fields() {
			if _, isArr := f.Value.([]any); isArr {
				raw = f.Value
				ok = true
				break
			}
		}
	}
	if !ok {
		return []*types.Object{}, nil
	}
	arr, isArr := raw.([]any)
	if !isArr {
		return nil, fmt.Errorf("list field %q is %T, not an array", key, raw)
	}
	items := make([]*types.Object, 0, len(arr))
	for _, v := range arr {
		if obj, isObj := v.(*types.Object); isObj {
			items = append(items, obj)
		}
	}
	return items, nil
}
