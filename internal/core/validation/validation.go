package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is returned when a struct fails validation. FieldErrors carries the details.
var ErrValidation = errors.New("validation failed")

// FieldErrors maps JSON field names to human-readable messages.
type FieldErrors map[string]string

// Error implements error.
func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%v: %s", ErrValidation, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrValidation.
func (f FieldErrors) Unwrap() error {
	return ErrValidation
}

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the process-wide validator with the custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
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
		_ = v.RegisterValidation("containernumber", func(fl validator.FieldLevel) bool {
			return ValidContainerNumber(fl.Field().String())
		})
		_ = v.RegisterValidation("uniqueset", uniqueSet)
		instance = v
	})
	return instance
}

// Struct validates obj and converts validator errors into FieldErrors.
func Struct(obj interface{}) error {
	err := Validator().Struct(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = message(fe)
	}
	return fields
}

// fieldPath drops the root struct name from the namespace, e.g. "containers[0].containerNumber".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "containernumber":
		return "must be an ISO 6346 container number such as CSQU3054383"
	case "unique":
		return "must not contain duplicates"
	case "uniqueset":
		return fmt.Sprintf("must not repeat a %s", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

// uniqueSet is like unique=Field for slices of structs, except that blank values may repeat.
func uniqueSet(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice && field.Kind() != reflect.Array {
		return false
	}

	seen := make(map[string]struct{}, field.Len())
	for i := 0; i < field.Len(); i++ {
		elem := reflect.Indirect(field.Index(i))
		if elem.Kind() != reflect.Struct {
			return false
		}
		value := elem.FieldByName(fl.Param())
		if !value.IsValid() || value.Kind() != reflect.String {
			return false
		}
		s := value.String()
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			return false
		}
		seen[s] = struct{}{}
	}
	return true
}

// letterValues are the ISO 6346 equivalents; multiples of 11 are skipped.
var letterValues = func() map[rune]int {
	values := make(map[rune]int, 26)
	v := 10
	for r := 'A'; r <= 'Z'; r++ {
		if v%11 == 0 {
			v++
		}
		values[r] = v
		v++
	}
	return values
}()

// ValidContainerNumber checks the owner code, category identifier, serial number and check digit
// of an ISO 6346 container number.
func ValidContainerNumber(raw string) bool {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) != 11 {
		return false
	}

	sum := 0
	for i, r := range s[:10] {
		var n int
		switch {
		case i < 4:
			v, ok := letterValues[r]
			if !ok {
				return false
			}
			if i == 3 && r != 'U' && r != 'J' && r != 'Z' {
				return false
			}
			n = v
		case r >= '0' && r <= '9':
			n = int(r - '0')
		default:
			return false
		}
		sum += n << i
	}

	check := s[10]
	if check < '0' || check > '9' {
		return false
	}
	return sum%11%10 == int(check-'0')
}
