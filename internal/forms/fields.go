package forms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
	KindBool
	KindList
)

// Field describes one input of a form.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Default  string
}

func Text(name, label string) Field  { return Field{Name: name, Label: label, Kind: KindText} }
func Int(name, label string) Field   { return Field{Name: name, Label: label, Kind: KindInt} }
func Float(name, label string) Field { return Field{Name: name, Label: label, Kind: KindFloat} }
func Bool(name, label string) Field  { return Field{Name: name, Label: label, Kind: KindBool} }
func List(name, label string) Field  { return Field{Name: name, Label: label, Kind: KindList} }

func (f Field) Require() Field {
	f.Required = true
	return f
}

func (f Field) WithDefault(v string) Field {
	f.Default = v
	return f
}

// FieldError reports one invalid input.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every invalid input of a submission.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Message
	}
	return strings.Join(parts, "; ")
}

// Fields is the text buffer behind a form. Values stay strings until read
// through a typed accessor.
type Fields struct {
	schema []Field
	byName map[string]Field
	values map[string]string
}

func NewFields(schema ...Field) *Fields {
	f := &Fields{
		schema: schema,
		byName: make(map[string]Field, len(schema)),
	}
	for _, fd := range schema {
		f.byName[fd.Name] = fd
	}
	f.Reset()
	return f
}

func (f *Fields) Schema() []Field {
	return f.schema
}

// Reset restores every field to its default.
func (f *Fields) Reset() {
	f.values = make(map[string]string, len(f.schema))
	for _, fd := range f.schema {
		f.values[fd.Name] = fd.Default
	}
}

func (f *Fields) Set(name, value string) error {
	if _, ok := f.byName[name]; !ok {
		return fmt.Errorf("forms: unknown field %q", name)
	}
	f.values[name] = value
	return nil
}

// Fill sets several fields at once, skipping names the form does not have.
func (f *Fields) Fill(values map[string]string) {
	for k, v := range values {
		if _, ok := f.byName[k]; ok {
			f.values[k] = v
		}
	}
}

func (f *Fields) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

func (f *Fields) String(name string) string {
	return strings.TrimSpace(f.values[name])
}

func (f *Fields) Int(name string) models.Number {
	return ParseInt(f.values[name])
}

func (f *Fields) Float(name string) models.Number {
	return ParseFloat(f.values[name])
}

// Bool treats anything strconv.ParseBool rejects as false, plus "yes"/"on".
func (f *Fields) Bool(name string) bool {
	v := strings.ToLower(f.String(name))
	if v == "yes" || v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

func (f *Fields) List(name string) []string {
	return SplitList(f.values[name])
}

// Validate checks required fields and numeric inputs that would be sent as NaN.
func (f *Fields) Validate() error {
	var errs []FieldError
	for _, fd := range f.schema {
		raw := strings.TrimSpace(f.values[fd.Name])
		label := fd.Label
		if label == "" {
			label = fd.Name
		}
		if raw == "" {
			if fd.Required {
				errs = append(errs, FieldError{Field: fd.Name, Message: label + " is required"})
			}
			continue
		}
		switch fd.Kind {
		case KindInt:
			if ParseInt(raw).IsNaN() {
				errs = append(errs, FieldError{Field: fd.Name, Message: label + " must be a whole number"})
			}
		case KindFloat:
			if ParseFloat(raw).IsNaN() {
				errs = append(errs, FieldError{Field: fd.Name, Message: label + " must be a number"})
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}
