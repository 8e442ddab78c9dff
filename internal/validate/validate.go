package validate

// This package adds struct and field validation as a thin wrapper around the go-playground/validator package.
//
// e.g. internal/settings/settings.go
//   type Values struct {
//       Threshold float64 `validate:"gte=0"`
//       Interval  int     `validate:"gte=1"`
//       ...
//   }
//
// It also registers the "ticker" tag used by the index catalog.

import (
	"errors"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

// tickerPattern accepts Yahoo-style symbols such as ^GSPC, 000001.SS or FTSEMIB.MI.
//
//nolint:gochecknoglobals // Compiled once and shared.
var tickerPattern = regexp.MustCompile(`^\^?[A-Za-z0-9][A-Za-z0-9.\-=]{0,19}$`)

//nolint:gochecknoglobals // Shared validator singleton.
var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// get returns a process-wide singleton of the validator.
func get() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
		_ = validatorInst.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
			return tickerPattern.MatchString(fl.Field().String())
		})
	})
	return validatorInst
}

// Struct validates a struct using the shared validator instance.
func Struct(v any) error {
	return get().Struct(v)
}

// Var validates a single variable against the provided tag constraints.
func Var(field any, tag string) error {
	return get().Var(field, tag)
}

// FailedField returns the struct field name of the first failed constraint in err, or "" when
// err is not a validation error.
func FailedField(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ""
	}
	return verrs[0].StructField()
}
