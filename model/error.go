package model

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FieldError is a schema violation of a single attribute.
type FieldError struct {
	field   string
	details map[string]any
	Message string `json:"message"`
}

// Field is the dotted path of the attribute, empty for the attributes object
// itself.
func (fe FieldError) Field() string {
	return fe.field
}

func (fe FieldError) Details() map[string]any {
	return fe.details
}

// ValidationError lists every schema violation of an attributes object.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (ve ValidationError) Error() string {
	msgs := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		msgs = append(msgs, fe.Message)
	}

	return "invalid attributes: " + strings.Join(msgs, "; ")
}

// Fields returns the paths of the offending attributes.
func (ve ValidationError) Fields() []string {
	fields := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		if fe.field != "" && !slices.Contains(fields, fe.field) {
			fields = append(fields, fe.field)
		}
	}

	return fields
}

func ToValidationError(result *gojsonschema.Result) ValidationError {
	errs := make([]FieldError, 0, len(result.Errors()))
	for _, res := range result.Errors() {
		switch res.(type) {
		// the branch errors of a combinator are reported on their own
		case *gojsonschema.NumberAllOfError, *gojsonschema.NumberAnyOfError, *gojsonschema.NumberOneOfError:
			continue
		}

		field := res.Field()
		if field == gojsonschema.STRING_CONTEXT_ROOT {
			field = ""
		}
		if _, ok := res.(*gojsonschema.RequiredError); ok {
			field = join(field, fmt.Sprint(res.Details()["property"]))
		}

		errs = append(errs, FieldError{
			field:   field,
			details: res.Details(),
			Message: newErrorMessage(field, res),
		})
	}

	ve := ValidationError{Errors: errs}
	SortErrors(&ve)

	return ve
}

func SortErrors(e *ValidationError) {
	slices.SortFunc(e.Errors, func(a, b FieldError) int { return cmp.Compare(a.Message, b.Message) })
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

func join(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

func newErrorMessage(field string, resErr gojsonschema.ResultError) string {
	d := resErr.Details()

	switch resErr.(type) {
	case *gojsonschema.RequiredError:
		return fmt.Sprintf("Attribute '%s' is missing", field)
	case *gojsonschema.StringLengthGTEError:
		return fmt.Sprintf("Attribute '%s' is too short", field)
	case *gojsonschema.StringLengthLTEError:
		return fmt.Sprintf("Attribute '%s' is too long", field)
	case *gojsonschema.NumberGTEError, *gojsonschema.NumberGTError:
		return fmt.Sprintf("Attribute '%s' must be at least %v", field, d["min"])
	case *gojsonschema.NumberLTEError, *gojsonschema.NumberLTError:
		return fmt.Sprintf("Attribute '%s' must be at most %v", field, d["max"])
	case *gojsonschema.EnumError:
		return fmt.Sprintf("Attribute '%s' must be one of %v", field, d["allowed"])
	case *gojsonschema.ArrayMinItemsError:
		return fmt.Sprintf("Attribute '%s' must contain at least %v items", field, d["min"])
	case *gojsonschema.ArrayMaxItemsError:
		return fmt.Sprintf("Attribute '%s' must contain at most %v items", field, d["max"])
	case *gojsonschema.AdditionalPropertyNotAllowedError:
		return fmt.Sprintf("Attribute '%s' doesn't allow key: %s", field, d["property"])
	case *gojsonschema.InvalidTypeError:
		if field == "" {
			return fmt.Sprintf("Attributes should be of type %s", d["expected"])
		}
		return fmt.Sprintf("Attribute '%s' should be of type %s", field, d["expected"])
	case *gojsonschema.DoesNotMatchPatternError:
		return fmt.Sprintf("Attribute '%s' should match pattern %s", field, d["pattern"])
	case *gojsonschema.DoesNotMatchFormatError:
		return fmt.Sprintf("Attribute '%s' should be a valid %s", field, d["format"])
	default:
		return fmt.Sprintf("[%T]: %s", resErr, resErr.Description())
	}
}
