package router

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/vango-dev/fragment/pkg/pattern"
	"github.com/vango-dev/fragment/pkg/routepath"
)

// ParamParser parses string parameters into typed struct fields.
type ParamParser struct{}

// NewParamParser creates a new parameter parser.
func NewParamParser() *ParamParser {
	return &ParamParser{}
}

// Bind populates target from a match. Parameter values are percent-decoded
// first. A field tagged `param:"*"` receives the first wildcard capture.
func (p *ParamParser) Bind(m *pattern.MatchResult, target any) error {
	if m == nil {
		return nil
	}

	values := make(map[string]string, len(m.Params)+1)
	for name, raw := range m.Params {
		v, err := routepath.DecodeSegment(raw, false)
		if err != nil {
			return fmt.Errorf("decoding param %q: %w", name, err)
		}
		values[name] = v
	}
	if len(m.Wildcards) > 0 {
		v, err := routepath.DecodeSegment(m.Wildcards[0], true)
		if err != nil {
			return fmt.Errorf("decoding wildcard: %w", err)
		}
		values["*"] = v
	}
	return p.Parse(values, target)
}

// Bind populates target from a match using a default ParamParser.
func Bind(m *pattern.MatchResult, target any) error {
	return NewParamParser().Bind(m, target)
}

// Parse populates a struct with values from the params map.
// The target must be a pointer to a struct with `param` tags.
func (p *ParamParser) Parse(params map[string]string, target any) error {
	if target == nil {
		return nil
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer, got %s", v.Kind())
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to struct, got pointer to %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		paramName := field.Tag.Get("param")
		if paramName == "" {
			continue
		}

		value, ok := params[paramName]
		if !ok {
			continue
		}

		fieldValue := v.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		if err := p.setField(fieldValue, value); err != nil {
			return fmt.Errorf("parsing param %q: %w", paramName, err)
		}
	}

	return nil
}

// setField sets a field value from a string.
func (p *ParamParser) setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float: %s", value)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Wildcards: "a/b/c" becomes ["a", "b", "c"]
			var parts []string
			if value != "" {
				parts = strings.Split(value, "/")
			}
			field.Set(reflect.ValueOf(parts))
		} else {
			return fmt.Errorf("unsupported slice element type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported type: %s", field.Kind())
	}

	return nil
}
