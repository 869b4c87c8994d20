// Package validate checks config structs with go-playground/validator
// and reports the first failure as a perr validation error naming its field
package validate

import (
	stderrs "errors"
	"reflect"
	"strings"
	"sync"

	perr "surveysync/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

type engine struct {
	v     *validator.Validate
	trans ut.Translator
}

var shared = sync.OnceValue(func() engine {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	_ = entrans.RegisterDefaultTranslations(v, trans)

	// the stock duration messages spell out nanoseconds; keep the param as written
	for tag, text := range map[string]string{
		"gte": "{0} must be at least {1}",
		"lte": "{0} must be at most {1}",
	} {
		_ = v.RegisterTranslation(tag, trans,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(tag, fe.Field(), fe.Param())
				return msg
			},
		)
	}
	return engine{v: v, trans: trans}
})

// fieldName prefers the json name so messages match what operators configure
func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// Struct validates s; label prefixes the message, e.g. "survey sync options"
func Struct(label string, s any) error {
	err := shared().v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrs.As(err, &verrs) || len(verrs) == 0 {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "%s: cannot validate", label)
	}
	fe := verrs[0]
	return perr.WithField(
		perr.Newf(perr.ErrorCodeValidation, "%s: %s", label, fe.Translate(shared().trans)),
		fe.Field(),
	)
}
