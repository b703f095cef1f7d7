package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/helixir/paper-search-service/internal/domain"
)

// SearchArgs are the arguments of the search_arxiv tool.
type SearchArgs struct {
	Query      string `json:"query" validate:"required"`
	MaxResults int    `json:"max_results" validate:"min=1,max=2000"`
}

// ReadArgs are the arguments of the read_arxiv_paper tool.
type ReadArgs struct {
	PaperID string `json:"paper_id" validate:"required"`
}

// argValidator checks tool arguments and reports failures by JSON field name.
type argValidator struct {
	validate *validator.Validate
}

func newArgValidator() *argValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &argValidator{validate: v}
}

// Struct validates args and returns the first failure as a *domain.ValidationError.
func (a *argValidator) Struct(args any) error {
	err := a.validate.Struct(args)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("arguments", err.Error())
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(fe.Field(), "is required")
	case "min":
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("must be at least %s", fe.Param()))
	case "max":
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("must be at most %s", fe.Param()))
	default:
		return domain.NewValidationError(fe.Field(), "is invalid")
	}
}

// decodeArgs copies a JSON-RPC arguments object into dst. Unknown keys are
// ignored; a value of the wrong JSON type is a validation error.
func decodeArgs(args map[string]any, dst any) error {
	if args == nil {
		return nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return domain.NewValidationError("arguments", err.Error())
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return domain.NewValidationError(typeErr.Field, "must be of type "+jsonKind(typeErr.Type))
		}
		return domain.NewValidationError("arguments", err.Error())
	}
	return nil
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.String:
		return "string"
	default:
		return t.Kind().String()
	}
}
