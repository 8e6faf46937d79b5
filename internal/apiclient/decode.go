package apiclient

import (
	"bytes"
	"encoding/json"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// RawKey holds the response text when a lenient decode cannot parse it.
const RawKey = "raw"

// DecodeLenient never fails: an empty body yields an empty object and a
// body that is not a JSON object is kept as {"raw": text}.
func DecodeLenient(body []byte) *types.Object {
	if len(bytes.TrimSpace(body)) == 0 {
		return types.NewObject()
	}
	obj, err := types.ParseObject(body)
	if err != nil {
		return types.NewObject(types.Field{Key: RawKey, Value: string(body)})
	}
	return obj
}

// DecodeStrict requires a JSON object body and returns a *types.ParseError
// otherwise.
func DecodeStrict(body []byte) (*types.Object, error) {
	obj, err := types.ParseObject(body)
	if err != nil {
		return nil, &types.ParseError{Body: string(body), Err: err}
	}
	return obj, nil
}

// Detail extracts the server-supplied "detail" message from an error body.
// Non-string details (validation error lists) are rendered as JSON. Returns
// "" when the body carries no usable detail.
func Detail(body []byte) string {
	obj, err := types.ParseObject(body)
	if err != nil {
		return ""
	}
	v, ok := obj.Get("detail")
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	out, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(out)
}

// ErrorMessage picks the best message for a failed response: server
// detail, then fallback, then the status text.
func ErrorMessage(resp *Response, fallback string) string {
	if detail := Detail(resp.Body); detail != "" {
		return detail
	}
	if fallback != "" {
		return fallback
	}
	return resp.StatusText
}

// RequestError builds the typed error for a non-2xx response.
func RequestError(resp *Response, fallback string) *types.RequestError {
	return &types.RequestError{
		StatusCode: resp.StatusCode,
		Status:     resp.StatusText,
		Message:    ErrorMessage(resp, fallback),
	}
}
