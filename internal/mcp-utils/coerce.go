// Package mcputils binds loosely typed MCP tool arguments to request structs.
package mcputils

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidArguments indicates tool arguments that cannot be bound to the
// request type.
var ErrInvalidArguments = errors.Base("invalid arguments")

// ArgumentGetter is implemented by mcp.CallToolRequest.
type ArgumentGetter interface {
	GetArguments() map[string]any
}

// Bind decodes the request arguments into target using its json tags.
// Embedded structs are flattened.
// Clients often send every parameter as a string, so JSON-encoded arrays,
// objects, booleans and numbers inside strings are decoded first, and plain
// strings bound to slices are split on commas.
func Bind[T any](request ArgumentGetter, target *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			decodeJSONString,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
		Squash:  true,
	})
	if err != nil {
		return errors.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(request.GetArguments()); err != nil {
		return errors.Errorf("%w: %s", ErrInvalidArguments, err.Error())
	}
	return nil
}

// decodeJSONString replaces a string holding JSON with the decoded value
// when the destination is not a string. Anything that fails to decode is
// passed through unchanged.
func decodeJSONString(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return data, nil
	}

	switch to.Kind() {
	case reflect.Slice:
		if !enclosed(raw, '[', ']') {
			return data, nil
		}
		ptr := reflect.New(to)
		if err := json.Unmarshal([]byte(raw), ptr.Interface()); err == nil {
			return ptr.Elem().Interface(), nil
		}
	case reflect.Map, reflect.Struct:
		if !enclosed(raw, '{', '}') {
			return data, nil
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v, nil
		}
	case reflect.Bool:
		if raw == "true" || raw == "false" {
			return raw == "true", nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		var n json.Number
		if err := json.Unmarshal([]byte(raw), &n); err == nil {
			return n, nil
		}
	}
	return data, nil
}

func enclosed(s string, open, close byte) bool {
	return len(s) >= 2 && s[0] == open && s[len(s)-1] == close
}
