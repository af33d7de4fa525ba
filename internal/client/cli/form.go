package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/bcards/internal/client/forms"
	"github.com/dmitrijs2005/bcards/internal/client/validation"
	"github.com/dmitrijs2005/bcards/internal/common"
)

// cancelWord aborts a form at any prompt.
const cancelWord = ".cancel"

var errCanceled = errors.New("form canceled")

// runForm prompts for the fields of f, re-asking while a field is invalid,
// then submits once. After a failed submission the user may try again.
// follow is called with the redirect of a closed or finished form.
func (a *App) runForm(ctx context.Context, f *forms.Form, follow func(forms.Redirect) error) error {
	defer f.Close()

	if r, ok := f.Redirect(); ok {
		return follow(r)
	}

	a.Header()
	a.printf("%s (type %s to abort)\n", formTitle(f.Name()), cancelWord)

	var only map[string]bool
	for {
		err := a.fill(f, only)
		switch {
		case errors.Is(err, errCanceled):
			a.println("Canceled.")
			return nil
		case errors.Is(err, common.ErrFormClosed):
			return a.closed(f, follow, err)
		case err != nil:
			return err
		}

		err = f.Submit(ctx)
		if err == nil {
			r, _ := f.Redirect()
			return follow(r)
		}

		var verr *forms.ValidationError
		switch {
		case errors.As(err, &verr):
			only = make(map[string]bool, len(verr.Violations))
			for _, v := range verr.Violations {
				a.println("  " + v.Message)
				only[v.Field] = true
			}
		case errors.Is(err, common.ErrFormClosed):
			return a.closed(f, follow, err)
		default:
			a.println(f.ServerError())
			again, cerr := Confirm(a.reader, "Try again?", a.out)
			if cerr != nil || !again {
				return err
			}
			only = nil
		}
	}
}

func (a *App) closed(f *forms.Form, follow func(forms.Redirect) error, err error) error {
	if r, ok := f.Redirect(); ok {
		return follow(r)
	}
	return err
}

// fill asks for each field, or only for those in only when it is non-nil.
func (a *App) fill(f *forms.Form, only map[string]bool) error {
	for _, field := range f.Schema().Fields() {
		if only != nil && !only[field.Path()] {
			continue
		}
		if err := a.ask(f, field); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) ask(f *forms.Form, field *validation.Field) error {
	path := field.Path()
	for {
		value, err := a.prompt(field)
		if err != nil {
			return err
		}
		if value == cancelWord {
			return errCanceled
		}

		if err := f.Set(path, value); err != nil {
			return err
		}
		msg, bad := f.Violations().For(path)
		if !bad {
			return nil
		}
		a.println("  " + msg)
	}
}

func (a *App) prompt(field *validation.Field) (string, error) {
	label := field.Label()
	if !field.IsRequired() {
		label += " (optional)"
	}

	switch field.Kind() {
	case validation.KindSecret:
		pw, err := GetPassword(a.reader, label, a.out)
		if err != nil {
			return "", err
		}
		defer common.WipeByteArray(pw)
		return string(pw), nil
	case validation.KindBool:
		label += " (y/N)"
	}

	return GetSimpleText(a.reader, label, a.out)
}

func formTitle(name string) string {
	switch name {
	case "new-card":
		return "CREATE CARD"
	}
	return strings.ToUpper(name)
}
