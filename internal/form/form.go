// Package form validates tagged structs before any remote call is made and
// reports the failures as field-level messages.
package form

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var cardExpiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator. Besides the built-in tags it knows
// notblank (not empty after trimming), maxbytes=N (byte length, not rune
// count) and cardexpiry (MM/YY).
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(fieldName)
		mustRegister(v, "notblank", notBlank)
		mustRegister(v, "maxbytes", maxBytes)
		mustRegister(v, "cardexpiry", cardExpiry)
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("form: register %s: %v", tag, err))
	}
}

// fieldName reports a field by its form tag, then its json name, then its
// Go name with a lower-case first letter.
func fieldName(fld reflect.StructField) string {
	if name := fld.Tag.Get("form"); name != "" {
		return name
	}
	if name, _, _ := strings.Cut(fld.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	r := []rune(fld.Name)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func notBlank(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return !fl.Field().IsZero()
	}
	return strings.TrimSpace(fl.Field().String()) != ""
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func cardExpiry(fl validator.FieldLevel) bool {
	return cardExpiryPattern.MatchString(fl.Field().String())
}

// Validate checks v against its validate tags. Failures come back as
// Errors keyed by field name. messages replaces the text of any failure
// other than a missing value for the named fields.
func Validate(v any, messages map[string]string) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	errs := Errors{}
	for _, fe := range verrs {
		field := fe.Field()
		if msg, ok := messages[field]; ok && !isMissing(fe.Tag()) {
			errs.Add(field, msg)
			continue
		}
		errs.Add(field, message(fe))
	}
	return errs.Err()
}

func isMissing(tag string) bool {
	switch tag {
	case "required", "required_if", "notblank":
		return true
	}
	return false
}

func message(fe validator.FieldError) string {
	label := Label(fe.Field())
	switch {
	case isMissing(fe.Tag()):
		return label + " is required"
	case fe.Tag() == "min" && fe.Kind() == reflect.String:
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case fe.Tag() == "max" && fe.Kind() == reflect.String:
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case fe.Tag() == "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", label, fe.Param())
	case fe.Tag() == "eqfield":
		return label + " does not match"
	}
	return label + " is invalid"
}

// Errors maps a field name to its message. It is an error only when
// non-empty; use Err to get a nil error for a clean form.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e[f])
	}
	return strings.Join(msgs, "; ")
}

// Add records msg for field unless the field already has a message
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Label turns a camelCase field name into a sentence-case label:
// "zipCode" -> "Zip code", "cardCVV" -> "Card CVV".
func Label(field string) string {
	var words []string
	var cur []rune
	runes := []rune(field)
	for i, r := range runes {
		boundary := unicode.IsUpper(r) && i > 0 &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1])))
		if boundary && len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		words = append(words, string(cur))
	}

	for i, w := range words {
		switch {
		case isAcronym(w):
		case i == 0:
			rs := []rune(w)
			rs[0] = unicode.ToUpper(rs[0])
			words[i] = string(rs)
		default:
			words[i] = strings.ToLower(w)
		}
	}
	return strings.Join(words, " ")
}

func isAcronym(w string) bool {
	if len(w) < 2 {
		return false
	}
	for _, r := range w {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
