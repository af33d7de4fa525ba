package validation

import (
	"strings"
)

// Values holds raw form input keyed by field path.
type Values map[string]string

// Violation is a field-scoped validation failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations is the ordered result of a validation pass.
type Violations []Violation

func (v Violations) Error() string {
	msgs := make([]string, len(v))
	for i, x := range v {
		msgs[i] = x.Message
	}
	return strings.Join(msgs, "; ")
}

// For returns the message recorded for path.
func (v Violations) For(path string) (string, bool) {
	for _, x := range v {
		if x.Field == path {
			return x.Message, true
		}
	}
	return "", false
}

// Schema is an ordered set of fields.
type Schema struct {
	fields []*Field
	index  map[string]*Field
}

func New(fields ...*Field) *Schema {
	s := &Schema{fields: fields, index: make(map[string]*Field, len(fields))}
	for _, f := range fields {
		s.index[f.path] = f
	}
	return s
}

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []*Field {
	return s.fields
}

// Field looks a field up by path.
func (s *Schema) Field(path string) (*Field, bool) {
	f, ok := s.index[path]
	return f, ok
}

// Validate checks every field and returns all violations, one per field at
// most. The result is nil when values are valid.
func (s *Schema) Validate(values Values) Violations {
	var out Violations
	for _, f := range s.fields {
		if msg := f.validate(values[f.path]); msg != "" {
			out = append(out, Violation{Field: f.path, Message: msg})
		}
	}
	return out
}

// ValidateField checks a single field. Unknown paths are never invalid.
func (s *Schema) ValidateField(values Values, path string) (Violation, bool) {
	f, ok := s.index[path]
	if !ok {
		return Violation{}, false
	}
	if msg := f.validate(values[path]); msg != "" {
		return Violation{Field: path, Message: msg}, true
	}
	return Violation{}, false
}
