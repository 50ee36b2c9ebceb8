package registry

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Schema is the JSON Schema subset used to describe tool inputs and outputs
// and component props to the dispatch host.
type Schema struct {
	Type                 string             `json:"type,omitempty"`
	Format               string             `json:"format,omitempty"`
	Description          string             `json:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
	Default              any                `json:"default,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty"`
	Maximum              *float64           `json:"maximum,omitempty"`
	MinLength            *int               `json:"minLength,omitempty"`
	MaxLength            *int               `json:"maxLength,omitempty"`
	MinItems             *int               `json:"minItems,omitempty"`
	MaxItems             *int               `json:"maxItems,omitempty"`
	Nullable             bool               `json:"nullable,omitempty"`
}

// SchemaProvider lets a type describe itself instead of being reflected
type SchemaProvider interface {
	JSONSchema() *Schema
}

type enumer interface {
	EnumValues() []string
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	providerType = reflect.TypeOf((*SchemaProvider)(nil)).Elem()
	enumerType   = reflect.TypeOf((*enumer)(nil)).Elem()
)

// SchemaFor reflects the schema of T from its json, validate, desc and
// default struct tags.
func SchemaFor[T any]() *Schema {
	return schemaOf(reflect.TypeOf((*T)(nil)).Elem(), map[reflect.Type]bool{})
}

func schemaOf(t reflect.Type, visiting map[reflect.Type]bool) *Schema {
	if t.Implements(providerType) && t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface {
		return reflect.Zero(t).Interface().(SchemaProvider).JSONSchema()
	}
	if t.Kind() == reflect.Pointer {
		s := schemaOf(t.Elem(), visiting)
		s.Nullable = true
		return s
	}
	if t == timeType {
		return &Schema{Type: "string", Format: "date-time"}
	}

	var s *Schema
	switch t.Kind() {
	case reflect.String:
		s = &Schema{Type: "string"}
	case reflect.Bool:
		s = &Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		s = &Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		s = &Schema{Type: "number"}
	case reflect.Slice, reflect.Array:
		s = &Schema{Type: "array", Items: schemaOf(t.Elem(), visiting)}
	case reflect.Map:
		s = &Schema{Type: "object"}
	case reflect.Struct:
		if visiting[t] {
			return &Schema{Type: "object"}
		}
		visiting[t] = true
		s = objectSchema(t, visiting)
		delete(visiting, t)
	default:
		s = &Schema{}
	}

	if t.Implements(enumerType) {
		s.Enum = reflect.Zero(t).Interface().(enumer).EnumValues()
	}
	return s
}

func objectSchema(t reflect.Type, visiting map[reflect.Type]bool) *Schema {
	closed := false
	s := &Schema{
		Type:                 "object",
		Properties:           map[string]*Schema{},
		AdditionalProperties: &closed,
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, omitempty, skip := jsonName(f)
		if skip {
			continue
		}

		prop := schemaOf(f.Type, visiting)
		if desc := f.Tag.Get("desc"); desc != "" {
			prop.Description = desc
		}
		def, hasDefault := f.Tag.Lookup("default")
		if hasDefault {
			prop.Default = parseDefault(f.Type, def)
		}

		if applyRules(prop, f.Type, f.Tag.Get("validate")) ||
			(!omitempty && !hasDefault && f.Type.Kind() != reflect.Pointer) {
			s.Required = append(s.Required, name)
		}
		s.Properties[name] = prop
	}
	return s
}

func jsonName(f reflect.StructField) (name string, omitempty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = f.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

// applyRules maps validator rules onto the schema and reports "required"
func applyRules(s *Schema, t reflect.Type, tag string) bool {
	if tag == "" {
		return false
	}

	fieldRules, elemRules, hasDive := strings.Cut(tag, ",dive")
	required := false
	for _, rule := range strings.Split(fieldRules, ",") {
		if rule == "required" {
			required = true
			continue
		}
		applyRule(s, t, rule)
	}
	if hasDive && s.Items != nil {
		for _, rule := range strings.Split(strings.TrimPrefix(elemRules, ","), ",") {
			applyRule(s.Items, t.Elem(), rule)
		}
	}
	return required
}

func applyRule(s *Schema, t reflect.Type, rule string) {
	key, value, _ := strings.Cut(rule, "=")
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch key {
	case "oneof":
		s.Enum = strings.Fields(value)
	case "timestamp":
		s.Format = "date-time"
	case "datekey":
		s.Format = "date"
	case "hhmm":
		s.Format = "time"
	case "min", "gte", "max", "lte":
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return
		}
		lower := key == "min" || key == "gte"
		switch t.Kind() {
		case reflect.String:
			setInt(&s.MinLength, &s.MaxLength, lower, int(n))
		case reflect.Slice, reflect.Array, reflect.Map:
			setInt(&s.MinItems, &s.MaxItems, lower, int(n))
		default:
			if lower {
				s.Minimum = &n
			} else {
				s.Maximum = &n
			}
		}
	}
}

func setInt(min, max **int, lower bool, n int) {
	if lower {
		*min = &n
	} else {
		*max = &n
	}
}

func parseDefault(t reflect.Type, raw string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}
