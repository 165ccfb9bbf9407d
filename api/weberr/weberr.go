// Package weberr decorates errors with what the HTTP layer needs to report
// them: the body and status shown to the client and the fields logged.
package weberr

import "errors"

// Opt decorates an error.
type Opt func(error) error

func Wrap(err error, opts ...Opt) error {
	for _, opt := range opts {
		err = opt(err)
	}
	return err
}

// WithResponse replaces err, as seen by the client, with body and status.
func WithResponse(body interface{}, status int) Opt {
	return func(err error) error {
		return &withResponse{cause: err, body: body, status: status}
	}
}

// WithFields attaches fields that are logged along with err.
func WithFields(fields map[string]interface{}) Opt {
	return func(err error) error {
		return &withFields{cause: err, fields: fields}
	}
}

// Response returns the outermost response attached to err.
func Response(err error) (body interface{}, status int, ok bool) {
	var r *withResponse
	if errors.As(err, &r) {
		return r.body, r.status, true
	}
	return nil, 0, false
}

type fielder interface {
	Fields() map[string]interface{}
}

// Fields merges the fields of every error in err's tree. Fields closer to
// the root win.
func Fields(err error) (fields map[string]interface{}, ok bool) {
	fields = make(map[string]interface{})
	collect(err, fields)
	return fields, len(fields) > 0
}

func collect(err error, into map[string]interface{}) {
	if err == nil {
		return
	}

	if f, ok := err.(fielder); ok {
		for k, v := range f.Fields() {
			if _, set := into[k]; !set {
				into[k] = v
			}
		}
	}

	switch u := err.(type) {
	case interface{ Unwrap() error }:
		collect(u.Unwrap(), into)
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			collect(e, into)
		}
	}
}

// =============================================================================

type withResponse struct {
	cause  error
	body   interface{}
	status int
}

func (e *withResponse) Error() string { return e.cause.Error() }

func (e *withResponse) Unwrap() error { return e.cause }

type withFields struct {
	cause  error
	fields map[string]interface{}
}

func (e *withFields) Error() string { return e.cause.Error() }

func (e *withFields) Unwrap() error { return e.cause }

func (e *withFields) Fields() map[string]interface{} { return e.fields }
