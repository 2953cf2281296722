package app

import (
	"errors"
	"regexp"

	apperrors "github.com/gerosd/book-exchange/internal/errors"
	"github.com/gerosd/book-exchange/internal/phone"
	"github.com/go-playground/validator/v10"
)

var (
	latinAlphaPattern  = regexp.MustCompile(`^[a-zA-Z]+$`)
	cyrillicPattern    = regexp.MustCompile(`^[а-яёА-ЯЁ\s]+$`)
	simpleEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// newValidator builds the validator with the registration and application
// form contracts registered as custom tags.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	mustRegister(v, "latinalpha", func(fl validator.FieldLevel) bool {
		return latinAlphaPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "cyrillic", func(fl validator.FieldLevel) bool {
		return cyrillicPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "ruphone", func(fl validator.FieldLevel) bool {
		return phone.IsValid(fl.Field().String())
	})
	mustRegister(v, "simpleemail", func(fl validator.FieldLevel) bool {
		return simpleEmailPattern.MatchString(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// fieldMessages translates failed validation tags into the messages surfaced
// verbatim on the submitting form.
var fieldMessages = map[string]string{
	"Login/required":        "login is required",
	"Login/min":             "login must contain at least 6 characters",
	"Login/latinalpha":      "login must contain only latin letters",
	"Password/required":     "password is required",
	"Password/min":          "password must contain at least 6 characters",
	"FullName/required":     "full name is required",
	"FullName/cyrillic":     "full name must contain only Cyrillic letters and spaces",
	"Phone/required":        "phone is required",
	"Phone/ruphone":         "phone must be in +7(XXX)-XXX-XX-XX format",
	"Email/required":        "email is required",
	"Email/simpleemail":     "invalid email format",
	"BookTitle/required":    "book title is required",
	"Author/required":       "author is required",
	"Genre/required":        "genre is required",
	"Condition/required":    "book condition is required",
	"Condition/oneof":       "invalid book condition",
	"Kind/required":         "application kind is required",
	"Kind/oneof":            "invalid application kind",
}

// asValidationError converts a validator error into a structured validation
// error with a user-facing message for the first failed field.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if msg, ok := fieldMessages[fe.StructField()+"/"+fe.Tag()]; ok {
			return apperrors.ValidationError(msg)
		}
		return apperrors.ValidationError("invalid " + fe.StructField())
	}

	return apperrors.ValidationError("invalid input")
}
