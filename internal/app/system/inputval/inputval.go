// internal/app/system/inputval/inputval.go
package inputval

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/dalemusser/voyager/internal/app/system/apperr"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxBodyBytes bounds every JSON request body.
const MaxBodyBytes = 64 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsValidUsername(fl.Field().String())
	})
	return v
}

// DecodeJSON reads r's body into dest, rejecting unknown fields, and then
// runs struct validation. All failures are VALIDATION errors.
func DecodeJSON(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return &apperr.Error{Kind: apperr.KindValidation, Msg: "invalid request body", Err: err}
	}
	return Struct(dest)
}

// Struct validates an already-populated struct.
func Struct(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			parts := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				parts = append(parts, fe.Field()+" "+message(fe))
			}
			return apperr.Validation(strings.Join(parts, "; "))
		}
		return &apperr.Error{Kind: apperr.KindValidation, Msg: "validation failed", Err: err}
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "username":
		return "must be a username without spaces"
	default:
		return "is invalid"
	}
}

// ObjectID parses a hex id from a path or query value.
func ObjectID(hex, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("bad " + what + " id")
	}
	return oid, nil
}

// IsValidUsername accepts 1–64 printable, non-space characters.
func IsValidUsername(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// Username validates a caller-supplied identity taken from a path, query or
// header value.
func Username(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !IsValidUsername(s) {
		return "", apperr.Validation("username is required")
	}
	return s, nil
}

// CallerHeader carries the acting username when it is not in the body or
// query string.
const CallerHeader = "X-Username"

// Caller resolves the acting username. A non-empty fromBody wins, then the
// "username" query parameter, then the X-Username header.
func Caller(r *http.Request, fromBody string) (string, error) {
	for _, s := range []string{fromBody, r.URL.Query().Get("username"), r.Header.Get(CallerHeader)} {
		if strings.TrimSpace(s) != "" {
			return Username(s)
		}
	}
	return "", apperr.Validation("username is required")
}
