package cli

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator"

	"github.com/dmitrijs2005/apexclient/internal/client/client"
)

// emailPattern accepts anything shaped like a@b.c.
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

var fieldMessages = map[string]string{
	"Username.required": "Username is required",
	"Username.min":      "Username must be at least 3 characters",
	"Email.required":    "Email is required",
	"Email.simpleemail": "Please enter a valid email",
	"Password.required": "Password is required",
}

// validateForm returns field messages keyed by lower-cased field name, or
// nil when form is valid.
func validateForm(form any) map[string]string {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}

	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		errs["form"] = err.Error()
		return errs
	}
	for _, fe := range ve {
		key := strings.ToLower(fe.Field())
		if _, seen := errs[key]; seen {
			continue
		}
		if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
			errs[key] = msg
		} else {
			errs[key] = fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
		}
	}
	return errs
}

// printFieldErrors prints errs in the given field order.
func printFieldErrors(errs map[string]string, order ...string) {
	for _, f := range order {
		if msg, ok := errs[f]; ok {
			printlnFn(fmt.Sprintf("  ! %s: %s", f, msg))
		}
	}
	if msg, ok := errs["form"]; ok {
		printlnFn("  ! " + msg)
	}
}

// toast prints a one-line notification.
func toast(title, description string) {
	printlnFn(fmt.Sprintf("[%s] %s", title, description))
}

// errorDescription prefers the server's message over fallback.
func errorDescription(err error, fallback string) string {
	if msg := client.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}
