package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// lookupEntity resolves a type argument against the registry.
func lookupEntity(name string) (types.EntitySpec, error) {
	spec, err := types.LookupEntity(name)
	if err != nil {
		return types.EntitySpec{}, fmt.Errorf("%w %q (valid: %s)", err, name, strings.Join(types.EntityNames(), ", "))
	}
	return spec, nil
}

// buildPayload merges a --data JSON object with field=value arguments.
// Values that parse as JSON keep their type; anything else is a string.
func buildPayload(data string, assignments []string) (*types.Object, error) {
	payload := types.NewObject()
	if strings.TrimSpace(data) != "" {
		parsed, err := types.ParseObject([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("invalid --data: %w", err)
		}
		payload = parsed
	}
	for _, arg := range assignments {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q (expected key=value)", arg)
		}
		payload.Set(key, parseValue(value))
	}
	return payload, nil
}

// parseValue decodes value as a JSON scalar, array or object, falling back
// to the raw string.
func parseValue(value string) any {
	if !json.Valid([]byte(value)) {
		return value
	}
	wrapped, err := types.ParseObject([]byte(`{"v":` + value + `}`))
	if err != nil {
		return value
	}
	v, _ := wrapped.Get("v")
	return v
}
