package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type Handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

type Middleware func(Handler) Handler

// WrapMiddleware returns handler wrapped so that mw[0] runs first.
func WrapMiddleware(mw []Middleware, handler Handler) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] != nil {
			handler = mw[i](handler)
		}
	}
	return handler
}

// Envelope is the body shape every successful response shares with the
// client.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

func Respond(ctx context.Context, w http.ResponseWriter, data interface{}, statusCode int) error {
	if statusCode == http.StatusNoContent || data == nil {
		w.WriteHeader(statusCode)
		return nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}

	return nil
}

const maxBodyBytes = 1 << 20

// DecodeError is a body the client got wrong. Its message is safe to send
// back.
type DecodeError struct {
	msg string
	err error
}

func (e *DecodeError) Error() string { return e.msg }

func (e *DecodeError) Unwrap() error { return e.err }

// Decode reads a single JSON value from the body into val, rejecting fields
// val does not declare.
func Decode(w http.ResponseWriter, r *http.Request, val interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(val)
	if err == nil {
		if dec.More() || dec.Decode(&struct{}{}) != io.EOF {
			return &DecodeError{msg: "body must contain a single JSON value"}
		}
		return nil
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		sizeErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &syntaxErr):
		return &DecodeError{msg: fmt.Sprintf("body contains badly-formed JSON (at character %d)", syntaxErr.Offset), err: err}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &DecodeError{msg: "body contains badly-formed JSON", err: err}
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return &DecodeError{msg: fmt.Sprintf("body contains incorrect JSON type for field %q", typeErr.Field), err: err}
		}
		return &DecodeError{msg: fmt.Sprintf("body contains incorrect JSON type (at character %d)", typeErr.Offset), err: err}
	case errors.Is(err, io.EOF):
		return &DecodeError{msg: "body must not be empty", err: err}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return &DecodeError{msg: fmt.Sprintf("body contains unknown field %s", field), err: err}
	case errors.As(err, &sizeErr):
		return &DecodeError{msg: fmt.Sprintf("body must not be larger than %d bytes", sizeErr.Limit), err: err}
	}

	// Anything else is a value whose own decoding failed, like a malformed
	// decimal.
	return &DecodeError{msg: "body contains an invalid value", err: err}
}

func Param(r *http.Request, key string) string {
	return mux.Vars(r)[key]
}
