// Package forms implements the login, registration and new-card form
// controllers as small state machines:
//
//	editing -> validating -> submitting -> done
//	                      \-> editing (with field or server error)
//
// A form may also be closed by its entry guard, either when it is created or
// later when the session changes underneath it. A closed form exposes the
// redirect the UI should follow and refuses further input.
package forms

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/bcards/internal/client/session"
	"github.com/dmitrijs2005/bcards/internal/client/validation"
	"github.com/dmitrijs2005/bcards/internal/common"
	"github.com/dmitrijs2005/bcards/internal/logging"
)

type State int

const (
	StateEditing State = iota
	StateValidating
	StateSubmitting
	StateDone
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateDone:
		return "done"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Redirect tells the UI where to go next and what to tell the user.
type Redirect struct {
	To     string
	Notice string
}

// Guard decides whether the session may use a form. It returns nil to allow.
type Guard func(session.Snapshot) *Redirect

// Observable is the session view a form watches.
type Observable interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot)) (unsubscribe func())
}

// ValidationError is returned by Submit when the values break the schema.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Violations.Error()
}

func (e *ValidationError) Unwrap() error { return common.ErrValidation }

type submitFunc func(ctx context.Context, values validation.Values) error

// Form is safe for use from several goroutines; the session observer runs on
// whichever goroutine changed the session.
type Form struct {
	name      string
	schema    *validation.Schema
	submit    submitFunc
	guard     Guard
	onSuccess Redirect
	message   func(error) string
	logger    logging.Logger

	mu          sync.Mutex
	state       State
	live        bool
	values      validation.Values
	touched     map[string]bool
	violations  validation.Violations
	serverError string
	closedBy    *Redirect

	unsubscribe func()
}

type config struct {
	name      string
	schema    *validation.Schema
	submit    submitFunc
	guard     Guard
	onSuccess Redirect
	message   func(error) string
}

func newForm(c config, sess Observable, logger logging.Logger) *Form {
	f := &Form{
		name:      c.name,
		schema:    c.schema,
		submit:    c.submit,
		guard:     c.guard,
		onSuccess: c.onSuccess,
		message:   c.message,
		logger:    logger,
		live:      true,
		values:    validation.Values{},
		touched:   map[string]bool{},
	}
	if f.message == nil {
		f.message = func(error) string { return MsgUnexpectedFailed }
	}
	f.violations = f.schema.Validate(f.values)

	if f.guard != nil && sess != nil {
		f.checkGuard(sess.Snapshot())
		f.unsubscribe = sess.Subscribe(f.checkGuard)
	}
	return f
}

func (f *Form) checkGuard(snap session.Snapshot) {
	r := f.guard(snap)
	if r == nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateClosed || f.state == StateDone {
		return
	}
	f.state = StateClosed
	f.closedBy = r
	f.logger.Info(context.Background(), "form closed", "form", f.name, "redirect", r.To)
}

// Close detaches the form from the session.
func (f *Form) Close() {
	if f.unsubscribe != nil {
		f.unsubscribe()
	}
}

func (f *Form) Name() string {
	return f.name
}

func (f *Form) Schema() *validation.Schema {
	return f.schema
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SetLive toggles validation on every change. With live mode off, field
// messages only appear after a submit attempt.
func (f *Form) SetLive(live bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live = live
}

// Set records a field value and re-validates.
func (f *Form) Set(path, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateClosed {
		return common.ErrFormClosed
	}
	if _, ok := f.schema.Field(path); !ok {
		return fmt.Errorf("%s: unknown field %q", f.name, path)
	}

	f.values[path] = value
	f.serverError = ""
	if f.live {
		f.touched[path] = true
	}

	f.state = StateValidating
	f.violations = f.schema.Validate(f.values)
	f.state = StateEditing
	return nil
}

func (f *Form) Value(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[path]
}

// Violations returns the messages for fields the user has touched (or all
// of them after a submit attempt).
func (f *Form) Violations() validation.Violations {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out validation.Violations
	for _, v := range f.violations {
		if f.touched[v.Field] {
			out = append(out, v)
		}
	}
	return out
}

// CanSubmit reports whether Submit would go to the network.
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == StateEditing && len(f.violations) == 0
}

// ServerError is the message of the last failed submission.
func (f *Form) ServerError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.serverError
}

// Redirect returns where the UI should go: the guard's target for a closed
// form, the success target for a finished one.
func (f *Form) Redirect() (Redirect, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateClosed:
		return *f.closedBy, true
	case StateDone:
		return f.onSuccess, true
	}
	return Redirect{}, false
}

// Submit validates every field and, if all pass, performs exactly one
// submission. A failed submission leaves the form editable; nothing is
// retried.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch f.state {
	case StateClosed:
		f.mu.Unlock()
		return common.ErrFormClosed
	case StateSubmitting:
		f.mu.Unlock()
		return fmt.Errorf("%s: submission in progress", f.name)
	case StateDone:
		f.mu.Unlock()
		return fmt.Errorf("%s: already submitted", f.name)
	}

	f.state = StateValidating
	f.serverError = ""
	f.violations = f.schema.Validate(f.values)
	for _, field := range f.schema.Fields() {
		f.touched[field.Path()] = true
	}
	if len(f.violations) > 0 {
		v := f.violations
		f.state = StateEditing
		f.mu.Unlock()
		return &ValidationError{Violations: v}
	}

	f.state = StateSubmitting
	values := make(validation.Values, len(f.values))
	for k, v := range f.values {
		values[k] = v
	}
	f.mu.Unlock()

	err := f.submit(ctx, values)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.logger.Warn(ctx, "form submission failed", "form", f.name, "error", err)
		if f.state != StateClosed {
			f.state = StateEditing
		}
		f.serverError = f.message(err)
		return err
	}

	if f.state != StateClosed {
		f.state = StateDone
	}
	f.logger.Debug(ctx, "form submitted", "form", f.name)
	return nil
}

// IsValidation reports whether err came from schema validation.
func IsValidation(err error) bool {
	return errors.Is(err, common.ErrValidation)
}
