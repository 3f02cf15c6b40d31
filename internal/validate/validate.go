// Package validate wraps struct validation for HTTP request payloads. Field
// names in error output come from JSON tags and messages are translated to
// plain English, so handler code can surface them verbatim.
package validate

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	clockTag   = "clock"
	clockText  = "must be a time formatted HH:MM"
	clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	dateTag   = "date"
	dateText  = "must be a date formatted YYYY-MM-DD"
	dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	requiredTag  = "required"
	requiredText = "this field is required"
)

// Validator bundles a configured validator instance with its translator.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a Validator with JSON tag names, English translations and the
// clock/date helpers registered.
func New() *Validator {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(clockTag, clockValidation)
	registerTranslation(validate, translator, clockTag, clockText)

	_ = validate.RegisterValidation(dateTag, dateValidation)
	registerTranslation(validate, translator, dateTag, dateText)

	registerTranslation(validate, translator, requiredTag, requiredText, true)

	return &Validator{validate: validate, translator: translator}
}

// Struct validates the value and returns translated messages keyed by field
// name. A nil map means the value is valid.
func (v *Validator) Struct(value any) map[string]string {
	err := v.validate.Struct(value)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"": err.Error()}
	}

	out := make(map[string]string, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		out[fieldError.Field()] = fieldError.Translate(v.translator)
	}
	return out
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func clockValidation(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return clockRegex.MatchString(value)
}

func dateValidation(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return dateRegex.MatchString(value)
}
