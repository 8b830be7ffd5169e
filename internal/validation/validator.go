package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ai-blog-writer/internal/models"
	"github.com/go-playground/validator/v10"
)

// TagName is the struct tag inspected by the validator. It matches gin's
// binding tag so request structs carry one set of rules.
const TagName = "binding"

var slugRegex = regexp.MustCompile(`^[\p{Ll}\p{Lo}0-9]+(?:-[\p{Ll}\p{Lo}0-9]+)*$`)

// ProviderNames lists the accepted aiModel values
var ProviderNames = []string{"claude", "gemini", "openai"}

// ValidationError represents field level validation failures
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, e.Errors[field])
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, ", "))
}

// NewFieldError builds a single-field validation error
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Errors: map[string]string{field: message}}
}

// Validator wraps the go-playground validator with custom rules
type Validator struct {
	validate *validator.Validate
}

// New creates a new validator instance with custom rules
func New() *Validator {
	validate := validator.New()
	validate.SetTagName(TagName)
	Register(validate)
	return &Validator{validate: validate}
}

// Register installs custom rules and JSON field naming on an existing engine,
// e.g. the one gin uses for request binding.
func Register(validate *validator.Validate) {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsValidSlug(fl.Field().String())
	})
	validate.RegisterValidation("provider", func(fl validator.FieldLevel) bool {
		return IsValidProvider(fl.Field().String())
	})
	validate.RegisterValidation("schedule_status", func(fl validator.FieldLevel) bool {
		return models.ValidScheduleStatuses[models.ScheduleStatus(fl.Field().String())]
	})
	validate.RegisterValidation("recurrence", func(fl validator.FieldLevel) bool {
		switch models.RecurrenceType(fl.Field().String()) {
		case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
			return true
		}
		return false
	})
}

// Struct validates a struct and returns a *ValidationError on failure
func (v *Validator) Struct(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return FromError(err)
	}
	return nil
}

// FromError converts validator errors (including those returned by gin's
// ShouldBindJSON) into a *ValidationError. Other errors become a body error.
func FromError(err error) *ValidationError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return NewFieldError("body", fmt.Sprintf("invalid request body: %v", err))
	}

	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			out[field] = fmt.Sprintf("%s is required", field)
		case "max":
			out[field] = fmt.Sprintf("%s must be at most %s", field, fe.Param())
		case "min":
			out[field] = fmt.Sprintf("%s must be at least %s", field, fe.Param())
		case "oneof":
			out[field] = fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
		case "uuid":
			out[field] = fmt.Sprintf("%s must be a valid UUID", field)
		case "datetime":
			out[field] = fmt.Sprintf("%s must match %s", field, fe.Param())
		case "slug":
			out[field] = fmt.Sprintf("%s must contain only lowercase letters, numbers and hyphens", field)
		case "provider":
			out[field] = fmt.Sprintf("%s must be one of: %s", field, strings.Join(ProviderNames, ", "))
		case "schedule_status":
			out[field] = fmt.Sprintf("%s must be one of: scheduled, published, failed, cancelled", field)
		case "recurrence":
			out[field] = fmt.Sprintf("%s must be one of: none, daily, weekly, monthly", field)
		default:
			out[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return &ValidationError{Errors: out}
}

// IsValidSlug checks if a slug is lowercase kebab-case (unicode letters allowed)
func IsValidSlug(slug string) bool {
	return slug != "" && utf8.RuneCountInString(slug) <= 120 && slugRegex.MatchString(slug)
}

// IsValidProvider checks an aiModel value against the supported providers
func IsValidProvider(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range ProviderNames {
		if p == name {
			return true
		}
	}
	return false
}
