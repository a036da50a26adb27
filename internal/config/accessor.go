package config

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Keys returns every settable dot-path ("section.field"), sorted. Fields
// tagged omitempty are included even when empty.
func Keys() []string {
	var keys []string
	walkFields(reflect.ValueOf(Defaults()).Elem(), func(path string, _ reflect.Value) {
		keys = append(keys, path)
	})
	slices.Sort(keys)
	return keys
}

// GetByPath returns the value at a dot-path such as "server.port". A section
// name ("provider") returns that section's fields keyed by field name.
func GetByPath(cfg *Config, path string) (any, error) {
	if v, ok := lookup(cfg, path); ok {
		return v.Interface(), nil
	}
	section := make(map[string]any)
	walkFields(reflect.ValueOf(cfg).Elem(), func(p string, v reflect.Value) {
		if name, ok := strings.CutPrefix(p, path+"."); ok {
			section[name] = v.Interface()
		}
	})
	if len(section) == 0 {
		return nil, fmt.Errorf("unknown config key %q", path)
	}
	return section, nil
}

// SetByPath parses value into the type of the field at path. Unknown keys
// are rejected; the result is not validated, callers run Validate (or use
// Update) before saving.
func SetByPath(cfg *Config, path, value string) error {
	field, ok := lookup(cfg, path)
	if !ok {
		return fmt.Errorf("unknown config key %q (see 'replyai config list --flat')", path)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", path, value)
		}
		field.SetInt(int64(n))
	case reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", path, value)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean", path, value)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("%s: unsupported field type %s", path, field.Kind())
	}
	return nil
}

// ListPaths returns every dot-path with its current value.
func ListPaths(cfg *Config) map[string]any {
	out := make(map[string]any)
	walkFields(reflect.ValueOf(cfg).Elem(), func(path string, v reflect.Value) {
		out[path] = v.Interface()
	})
	return out
}

// Sanitize returns a copy of the config with the API key masked.
func Sanitize(cfg *Config) *Config {
	c := *cfg
	if c.Provider.APIKey != "" {
		c.Provider.APIKey = maskString(c.Provider.APIKey)
	}
	return &c
}

// maskString keeps the first and last four characters of long secrets.
func maskString(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

func lookup(cfg *Config, path string) (reflect.Value, bool) {
	var found reflect.Value
	walkFields(reflect.ValueOf(cfg).Elem(), func(p string, v reflect.Value) {
		if p == path {
			found = v
		}
	})
	return found, found.IsValid()
}

// walkFields visits the leaf fields of a config struct by their JSON names.
func walkFields(v reflect.Value, visit func(path string, field reflect.Value)) {
	walk("", v, visit)
}

func walk(prefix string, v reflect.Value, visit func(string, reflect.Value)) {
	t := v.Type()
	for i := range t.NumField() {
		name := jsonName(t.Field(i))
		if name == "" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		if f := v.Field(i); f.Kind() == reflect.Struct {
			walk(name, f, visit)
		} else {
			visit(name, f)
		}
	}
}

func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if tag == "-" {
		return ""
	}
	if tag == "" {
		return f.Name
	}
	return tag
}
