package utils

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the shared struct validator.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct runs the `validate` tags and reports the first failing field
// as a ValidationError.
func ValidateStruct(input any) error {
	err := GetValidator().Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return NewValidationError(errors.New("failed on '"+fe.Tag()+"'"), fe.Namespace())
}

// DefaultPhoneRegion is used to parse numbers written without a country prefix.
func DefaultPhoneRegion() string {
	if v := strings.ToUpper(strings.TrimSpace(os.Getenv("DEFAULT_PHONE_REGION"))); v != "" {
		return v
	}
	return "IN"
}

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return NewValidationError(ErrInvalidPhone, "phone")
	}
	if !libphonenumber.IsValidNumber(p) {
		return NewValidationError(ErrInvalidPhone, "phone")
	}
	return nil
}

// NormalizePhoneNumber validates a non-empty number and returns it in E.164 form.
// An empty input is returned as is.
func NormalizePhoneNumber(phoneNumber string) (string, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return "", nil
	}
	region := DefaultPhoneRegion()
	if err := ValidatePhoneNumber(phoneNumber, region); err != nil {
		return "", err
	}
	p, _ := libphonenumber.Parse(phoneNumber, region)
	return libphonenumber.Format(p, libphonenumber.E164), nil
}
