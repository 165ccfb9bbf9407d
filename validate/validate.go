// Package validate checks request payloads against their struct tags and
// reports failures in client-facing English.
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	entrans "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
)

var (
	once  sync.Once
	v     *validator.Validate
	trans ut.Translator
)

func setup() {
	v = validator.New()

	// Failures name the field as it appears on the wire.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	trans, _ = ut.New(english, english).GetTranslator("en")
	if err := entrans.RegisterDefaultTranslations(v, trans); err != nil {
		panic(err)
	}

	// notblank rejects strings made only of whitespace.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	err := v.RegisterTranslation("notblank", trans,
		func(t ut.Translator) error {
			return t.Add("notblank", "{0} must not be blank", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("notblank", fe.Field())
			return msg
		},
	)
	if err != nil {
		panic(err)
	}
}

// Check validates val and returns every failing field, in declaration
// order, as a single error joined by "; ".
func Check(val any) error {
	once.Do(setup)

	err := v.Struct(val)
	if err == nil {
		return nil
	}

	var fails validator.ValidationErrors
	if !errors.As(err, &fails) {
		return err
	}

	msgs := make([]string, 0, len(fails))
	for _, f := range fails {
		msgs = append(msgs, f.Translate(trans))
	}

	return errors.New(strings.Join(msgs, "; "))
}

func GenerateID() string {
	return uuid.NewString()
}

// CheckID reports whether id is a UUID.
func CheckID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return errors.New("ID is not in its proper form")
	}
	return nil
}
