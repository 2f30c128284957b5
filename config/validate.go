package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("postgres_url", func(fl validator.FieldLevel) bool {
		return ValidateDatabaseURL(fl.Field().String()) == nil
	})
	if err != nil {
		panic(fmt.Sprintf("config: register postgres_url validation: %v", err))
	}
	return v
}

// ValidateDatabaseURL accepts postgres:// and postgresql:// connection strings.
func ValidateDatabaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid database connection url: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("invalid database connection url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("invalid database connection url: missing host")
	}
	return nil
}

func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msg := "invalid configuration:"
	for _, fe := range verrs {
		msg += fmt.Sprintf("\n • field '%s': rule '%s' expected '%s'", fe.Namespace(), fe.Tag(), fe.Param())
	}
	return errors.New(msg)
}
