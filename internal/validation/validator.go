// Package validation turns loosely typed request input into immutable, typed
// commands. Everything downstream of this package trusts its output.
package validation

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"issueapi/internal/apperr"
)

var (
	once     sync.Once
	validate *validator.Validate
	policy   *bluemonday.Policy
)

func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their wire name.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		policy = bluemonday.StrictPolicy()
	})
	return validate
}

// sanitizeText strips markup and surrounding whitespace from free text.
// StrictPolicy escapes entities, so they are unescaped again for storage.
func sanitizeText(s string) string {
	engine()
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// parseCoordinate accepts both "40.4" and the comma-decimal form "40,4".
func parseCoordinate(s string) (float64, bool) {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != f { // NaN
		return 0, false
	}
	return f, true
}

// structErrors validates v and folds failures into a field -> message map.
func structErrors(v any, fields map[string]string) {
	err := engine().Struct(v)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["_"] = "invalid input"
		return
	}
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte", "lte":
		switch fe.Field() {
		case "lat":
			return "must be between -90 and 90"
		case "lng":
			return "must be between -180 and 180"
		}
		return "is out of range"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "uuid":
		return "must be a valid id"
	}
	return "is invalid"
}

func failIfAny(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return apperr.Validation(fields)
}
