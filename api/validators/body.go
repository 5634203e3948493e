package validators

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/storerate-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

const (
	PasswordMinLen = 8
	PasswordMaxLen = 16
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("password", validatePassword)
	return v
}

// validatePassword enforces 8-16 characters with at least one ASCII
// uppercase letter and one character outside [A-Za-z0-9].
func validatePassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	length := len([]rune(value))
	if length < PasswordMinLen || length > PasswordMaxLen {
		return false
	}
	var upper, special bool
	for _, r := range value {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
		default:
			special = true
		}
	}
	return upper && special
}

// Normalizer is implemented by bodies that tidy their fields (trimming,
// casing) before validation, so the validated value is the stored one.
type Normalizer interface {
	Normalize()
}

func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
			WithDetails([]pkgerrors.Issue{{Field: "body", Message: err.Error()}})
	}
	if n, ok := dest.(Normalizer); ok {
		n.Normalize()
	}
	return ValidateStruct(dest)
}

// ValidateStruct runs the struct tags on v and returns a VALIDATION_ERROR
// carrying one Issue per failing field.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		issues := make([]pkgerrors.Issue, 0, len(errs))
		for _, fieldErr := range errs {
			issues = append(issues, pkgerrors.Issue{Field: fieldErr.Field(), Message: validationMessage(fieldErr)})
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(issues)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "password":
		return fmt.Sprintf("must be %d-%d characters with an uppercase letter and a special character", PasswordMinLen, PasswordMaxLen)
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "uuid":
		return "must be a valid id"
	}
	return "is invalid"
}
