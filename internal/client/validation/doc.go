// Package validation describes form input as declarative schemas.
//
// A Schema is an ordered list of fields, each addressed by a dotted path
// ("name.first", "address.zip") and carrying a chain of rules. Validation is
// pure: it reads a Values map and returns every violation found, at most one
// per field, in schema order.
//
//	s := validation.New(
//		validation.String("title").Required().Min(2).Max(256),
//		validation.String("web").URI(),
//	)
//	if v := s.Validate(values); len(v) > 0 { ... }
//
// Fields are optional unless marked Required; an empty optional field skips
// its remaining rules. Each rule is an ozzo-validation rule carrying the
// field's message. Values are trimmed before checking, as they are on
// submit; secrets are checked as typed.
package validation
