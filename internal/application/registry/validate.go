package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/productivitybrain/core/internal/domain/entities"
)

// ErrNotRegistered is returned for unknown tools, components and actions
var ErrNotRegistered = errors.New("not registered")

// ValidationError reports arguments or props rejected before a handler ran
type ValidationError struct {
	Kind string // tool, component or action
	Name string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s input for %q: %v", e.Kind, e.Name, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Fields maps each offending field path to a readable problem
func (e *ValidationError) Fields() map[string]string {
	var missing *MissingFieldsError
	if errors.As(e.Err, &missing) {
		out := make(map[string]string, len(missing.Paths))
		for _, path := range missing.Paths {
			out[path] = "is required"
		}
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(e.Err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe)] = describe(fe)
	}
	return out
}

// MissingFieldsError lists properties the schema requires but the input
// left out or sent as null.
type MissingFieldsError struct {
	Paths []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Paths, ", ")
}

var validate = NewValidator()

// NewValidator returns a validator that reports json field names and knows
// the timestamp, datekey and hhmm rules.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, skip := jsonName(f)
		if skip {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("timestamp", func(fl validator.FieldLevel) bool {
		_, err := entities.ParseTimestamp(fl.Field().String(), time.UTC)
		return err == nil
	})
	_ = v.RegisterValidation("datekey", func(fl validator.FieldLevel) bool {
		_, err := entities.ParseDateKey(fl.Field().String(), time.UTC)
		return err == nil
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})
	return v
}

// decode reads raw strictly into T, fills defaults and validates the result.
// An empty body decodes as an empty object.
func decode[T any](raw json.RawMessage) (T, error) {
	var v T

	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		data = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	if dec.More() {
		return v, errors.New("unexpected data after JSON value")
	}

	rv := reflect.ValueOf(&v).Elem()
	applyDefaults(rv)
	if rv.Kind() == reflect.Struct {
		if err := validate.Struct(v); err != nil {
			return v, err
		}
	}
	if missing := missingRequired(SchemaFor[T](), data, ""); len(missing) > 0 {
		return v, &MissingFieldsError{Paths: missing}
	}
	return v, nil
}

// missingRequired walks data alongside s and collects the paths of required
// properties that are absent or null, in nested objects and array items too.
func missingRequired(s *Schema, data json.RawMessage, prefix string) []string {
	if s == nil {
		return nil
	}

	var missing []string
	switch s.Type {
	case "object":
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
			return nil
		}
		for _, name := range s.Required {
			value, ok := obj[name]
			if !ok || isNull(value) {
				missing = append(missing, prefix+name)
			}
		}
		for name, value := range obj {
			if prop, ok := s.Properties[name]; ok {
				missing = append(missing, missingRequired(prop, value, prefix+name+".")...)
			}
		}
	case "array":
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		base := strings.TrimSuffix(prefix, ".")
		for i, item := range items {
			missing = append(missing, missingRequired(s.Items, item, fmt.Sprintf("%s[%d].", base, i))...)
		}
	}
	sort.Strings(missing)
	return missing
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// applyDefaults fills zero string and number fields and nil pointer fields
// of a struct from their default tags.
func applyDefaults(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		raw, ok := f.Tag.Lookup("default")
		if !ok || !f.IsExported() {
			continue
		}
		field := v.Field(i)
		if field.Kind() == reflect.Pointer {
			if !field.IsNil() {
				continue
			}
			elem := reflect.New(f.Type.Elem())
			if setScalar(elem.Elem(), raw) {
				field.Set(elem)
			}
			continue
		}
		if field.IsZero() {
			setScalar(field, raw)
		}
	}
}

func setScalar(v reflect.Value, raw string) bool {
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return false
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return false
		}
		v.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return false
		}
		v.SetFloat(f)
	default:
		return false
	}
	return true
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	return strings.ReplaceAll(ns, ".Fields", "")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "timestamp":
		return "must be a date or date-time such as 2024-03-10T09:00"
	case "datekey":
		return "must be a date in YYYY-MM-DD form"
	case "hhmm":
		return "must be a time in HH:MM form"
	}
	return "failed " + fe.Tag() + " validation"
}

// Patch decodes a partial update object. Known fields land in Fields; keys
// sent as JSON null are remembered so callers can unset optional values.
type Patch[T any] struct {
	Fields T
	nulls  map[string]bool
}

func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p.Fields); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.nulls = make(map[string]bool)
	for key, value := range raw {
		if isNull(value) {
			p.nulls[key] = true
		}
	}
	return nil
}

// IsNull reports whether field was explicitly sent as null
func (p Patch[T]) IsNull(field string) bool {
	return p.nulls[field]
}

// Nulls lists the fields sent as null
func (p Patch[T]) Nulls() []string {
	out := make([]string, 0, len(p.nulls))
	for k := range p.nulls {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// JSONSchema describes the patch as T with every field optional and nullable
func (p Patch[T]) JSONSchema() *Schema {
	s := SchemaFor[T]()
	s.Required = nil
	for _, prop := range s.Properties {
		prop.Nullable = true
	}
	return s
}
