package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// phoneRe accepts digits with an optional leading +, and the separators
// people type: spaces, dots, dashes and parentheses.
var phoneRe = regexp.MustCompile(`^\+?[0-9 ().\-]{3,50}$`)

func validPhone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return phoneRe.MatchString(s) && strings.ContainsAny(s, "0123456789")
}

// validPassword wants at least 8 characters and at most 72 bytes, the
// longest input bcrypt accepts.
func validPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return utf8.RuneCountInString(s) >= 8 && len(s) <= 72
}

// Init configures the validator behind gin's binding: field names come from
// json (or form) tags, and the pwd, phone, name and isodate tags are
// registered.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
		_ = v.RegisterValidation("pwd", validPassword)
		_ = v.RegisterValidation("phone", validPhone)
		v.RegisterAlias("name", "min=1,max=100")
		v.RegisterAlias("isodate", "datetime=2006-01-02")
	}
}

// ToDetails converts binding errors into field -> message pairs for the
// error envelope.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "datetime", "isodate":
		return "must be a date formatted as YYYY-MM-DD"
	case "len":
		return "must be exactly " + param + " characters long"
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of [" + param + "]"
	case "pwd":
		return "must be at least 8 characters and at most 72 bytes long"
	case "phone":
		return "must be a phone number of 3 to 50 digits and separators"
	case "name":
		return "must be between 1 and 100 characters long"
	default:
		return "is invalid"
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
