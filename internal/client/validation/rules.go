package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// rule builds an ozzo rule once the field label is known.
type rule func(label string) ozzo.Rule

// Field is one schema entry. Build it with String and chain rules.
type Field struct {
	path     string
	label    string
	required bool
	kind     Kind

	// rules run on the input text, bounds on its integer value.
	rules  []rule
	bounds []rule
}

// Kind tells the UI how to read a field.
type Kind int

const (
	KindText Kind = iota
	KindSecret
	KindNumber
	KindBool
)

// String starts a text field at path.
func String(path string) *Field {
	return &Field{path: path, label: path}
}

func (f *Field) Path() string  { return f.path }
func (f *Field) Label() string { return f.label }
func (f *Field) Kind() Kind    { return f.kind }
func (f *Field) IsRequired() bool {
	return f.required
}

// As sets the human-readable label used in messages and prompts.
func (f *Field) As(label string) *Field {
	f.label = label
	return f
}

func (f *Field) Required() *Field {
	f.required = true
	return f
}

// Secret marks a password field. Secrets are validated as typed, without
// trimming, because they are sent that way.
func (f *Field) Secret() *Field {
	f.kind = KindSecret
	return f
}

func (f *Field) Min(n int) *Field {
	return f.add(func(label string) ozzo.Rule {
		return ozzo.RuneLength(n, 0).Error(fmt.Sprintf("%s must be at least %d characters long", label, n))
	})
}

func (f *Field) Max(n int) *Field {
	return f.add(func(label string) ozzo.Rule {
		return ozzo.RuneLength(0, n).Error(fmt.Sprintf("%s must be at most %d characters long", label, n))
	})
}

// Pattern requires the value to match re. An empty msg yields a generic
// message.
func (f *Field) Pattern(re *regexp.Regexp, msg string) *Field {
	return f.add(func(label string) ozzo.Rule {
		m := msg
		if m == "" {
			m = fmt.Sprintf("%s has an invalid format", label)
		}
		return ozzo.Match(re).Error(m)
	})
}

// Email accepts a bare address whose domain has at least two labels.
// Top-level domains are not checked against any list.
func (f *Field) Email() *Field {
	return f.add(func(label string) ozzo.Rule {
		return is.EmailFormat.Error(fmt.Sprintf("%s must be a valid email", label))
	})
}

// URI accepts an absolute URI with a scheme.
func (f *Field) URI() *Field {
	return f.add(func(label string) ozzo.Rule {
		return is.RequestURL.Error(fmt.Sprintf("%s must be a valid uri", label))
	})
}

// Int requires a whole number.
func (f *Field) Int() *Field {
	f.kind = KindNumber
	return f.add(func(label string) ozzo.Rule {
		return is.Int.Error(fmt.Sprintf("%s must be a number", label))
	})
}

// Range bounds the numeric value; it implies Int.
func (f *Field) Range(lo, hi int) *Field {
	if f.kind != KindNumber {
		f.Int()
	}
	if lo > 0 {
		// Min skips zero values.
		f.bounds = append(f.bounds, func(label string) ozzo.Rule {
			return ozzo.Required.Error(fmt.Sprintf("%s must be greater than or equal to %d", label, lo))
		})
	}
	f.bounds = append(f.bounds,
		func(label string) ozzo.Rule {
			return ozzo.Min(lo).Error(fmt.Sprintf("%s must be greater than or equal to %d", label, lo))
		},
		func(label string) ozzo.Rule {
			return ozzo.Max(hi).Error(fmt.Sprintf("%s must be less than or equal to %d", label, hi))
		},
	)
	return f
}

// Bool accepts true/false style answers.
func (f *Field) Bool() *Field {
	f.kind = KindBool
	return f.add(func(label string) ozzo.Rule {
		msg := fmt.Sprintf("%s must be a boolean", label)
		return ozzo.By(func(v any) error {
			s, _ := v.(string)
			if _, ok := ParseBool(s); !ok {
				return errors.New(msg)
			}
			return nil
		})
	})
}

const passwordSpecials = "!@#$%^&*-"

var passwordClasses = []*regexp.Regexp{
	regexp.MustCompile(`[A-Z]`),
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`[0-9]`),
	regexp.MustCompile("[" + regexp.QuoteMeta(passwordSpecials) + "]"),
}

// Password is the composite login rule: 7 to 20 characters with at least one
// ASCII uppercase letter, lowercase letter, digit and one of !@#$%^&*-.
// Every part reports msg.
func (f *Field) Password(msg string) *Field {
	f.add(func(string) ozzo.Rule { return ozzo.RuneLength(7, 20).Error(msg) })
	for _, re := range passwordClasses {
		f.add(func(string) ozzo.Rule { return ozzo.Match(re).Error(msg) })
	}
	return f
}

func (f *Field) add(r rule) *Field {
	f.rules = append(f.rules, r)
	return f
}

// normalize returns the value as it will be submitted.
func (f *Field) normalize(value string) string {
	if f.kind == KindSecret {
		return value
	}
	return strings.TrimSpace(value)
}

// validate returns the first message for value or "". Blank input is empty.
func (f *Field) validate(value string) string {
	value = f.normalize(value)
	if strings.TrimSpace(value) == "" {
		if !f.required {
			return ""
		}
		value = ""
	}

	rules := f.rules
	if f.required {
		rules = append([]rule{requiredRule}, f.rules...)
	}
	if msg := check(value, f.label, rules); msg != "" {
		return msg
	}
	if len(f.bounds) == 0 {
		return ""
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return ""
	}
	return check(n, f.label, f.bounds)
}

func requiredRule(label string) ozzo.Rule {
	return ozzo.Required.Error(fmt.Sprintf("%s is required", label))
}

func check(value any, label string, rules []rule) string {
	built := make([]ozzo.Rule, len(rules))
	for i, r := range rules {
		built[i] = r(label)
	}
	if err := ozzo.Validate(value, built...); err != nil {
		return err.Error()
	}
	return ""
}

// ParseBool reads y/yes/true/1 and n/no/false/0, case-insensitively.
func ParseBool(v string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "true", "1":
		return true, true
	case "n", "no", "false", "0":
		return false, true
	}
	return false, false
}
