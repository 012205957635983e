// Package validation checks request payloads and reports failures per field.
//
// Field rules are declared with go-playground/validator struct tags and
// reported with the messages the web client displays. UniqueName adds the
// per-owner name uniqueness rule that needs the database.
package validation

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a field name to its failure messages.
type Errors map[string][]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, e[field]...)
	}
	return strings.Join(msgs, " ")
}

// Add appends a message for field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Merge copies every message of other into e.
func (e Errors) Merge(other Errors) {
	for field, msgs := range other {
		e[field] = append(e[field], msgs...)
	}
}

// Message returns the first failure message, used as the summary line of an
// error response.
func (e Errors) Message() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if len(e[field]) > 0 {
			if extra := len(e) - 1; extra > 0 {
				return fmt.Sprintf("%s (and %d more error%s)", e[field][0], extra, plural(extra))
			}
			return e[field][0]
		}
	}
	return "The given data was invalid."
}

// OrNil returns nil when e is empty so it can be returned as an error.
func (e Errors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates v against its `validate` tags.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	errs := Errors{}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	attribute := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", attribute)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s field must not be greater than %s characters.", attribute, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s.", attribute, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s field must be at least %s characters.", attribute, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s.", attribute, fe.Param())
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", attribute)
	case "eqfield":
		return fmt.Sprintf("The %s field confirmation does not match.", strings.TrimSuffix(attribute, " confirmation"))
	case "gt":
		return fmt.Sprintf("The %s field must be greater than %s.", attribute, fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", attribute)
	}
}

// NameTaken reports whether ownerID already owns an entity called name,
// ignoring the entity with id ignoreID (zero ignores nothing).
type NameTaken func(ctx context.Context, ownerID uint, name string, ignoreID uint) (bool, error)

// UniqueName checks that name is not used by another entity of ownerID.
// Lookup failures are returned as plain errors, not as Errors.
func UniqueName(ctx context.Context, taken NameTaken, ownerID uint, name string, ignoreID uint) error {
	exists, err := taken(ctx, ownerID, name, ignoreID)
	if err != nil {
		return err
	}
	if exists {
		return Errors{"name": {"The name has already been taken."}}
	}
	return nil
}
