package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"fitness-directory/backend/internal/apperr"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// report json names so clients see the fields they sent
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

// Struct validates s and returns an apperr.ValidationError naming every
// violated field.
func Struct(s any) error {
	return withPrefix("", validate.Struct(s))
}

// Records validates each record, prefixing field names with the record index.
func Records[T any](recs []T) error {
	var fields []string
	for i := range recs {
		err := withPrefix(fmt.Sprintf("[%d].", i), validate.Struct(&recs[i]))
		fields = append(fields, apperr.Fields(err)...)
	}
	if len(fields) > 0 {
		return apperr.Invalid(fields...)
	}
	return nil
}

func withPrefix(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperr.Invalid(prefix + "?")
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, prefix+fieldPath(fe.Namespace()))
	}
	return apperr.Invalid(fields...)
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
