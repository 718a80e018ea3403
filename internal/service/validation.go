package service

import (
	"regexp"
	"strings"

	"shopfront/internal/domain"
)

// FieldError señala la primera regla que falló para un campo del formulario.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe = regexp.MustCompile(`^\d{10}$`)
	otpRe   = regexp.MustCompile(`^\d{6}$`)
)

// SignupInput son los campos crudos del formulario de registro.
type SignupInput struct {
	Name            string
	Email           string
	Phone           string
	DOB             string
	Gender          string
	Password        string
	ConfirmPassword string
}

type fieldRule func() (message string, failed bool)

// firstFailing compone reglas con corte en la primera que falla.
func firstFailing(rules ...fieldRule) (string, bool) {
	for _, rule := range rules {
		if msg, failed := rule(); failed {
			return msg, true
		}
	}
	return "", false
}

func required(value, message string) fieldRule {
	return func() (string, bool) {
		return message, strings.TrimSpace(value) == ""
	}
}

func matchesPattern(value string, re *regexp.Regexp, message string) fieldRule {
	return func() (string, bool) {
		return message, !re.MatchString(strings.TrimSpace(value))
	}
}

func minLength(value string, min int, message string) fieldRule {
	return func() (string, bool) {
		return message, len(strings.TrimSpace(value)) < min
	}
}

func equalTo(value, other, message string) fieldRule {
	return func() (string, bool) {
		return message, strings.TrimSpace(value) != strings.TrimSpace(other)
	}
}

func validGender(value, message string) fieldRule {
	return func() (string, bool) {
		return message, !domain.ValidGender(strings.ToLower(strings.TrimSpace(value)))
	}
}

// ValidateSignup evalúa cada campo en orden y devuelve a lo sumo un error
// por campo. Sin errores significa entrada aceptable para crear el usuario.
func ValidateSignup(in SignupInput) []FieldError {
	var errs []FieldError
	check := func(field string, rules ...fieldRule) {
		if msg, failed := firstFailing(rules...); failed {
			errs = append(errs, FieldError{Field: field, Message: msg})
		}
	}

	check("name", required(in.Name, "Full name is required."))
	check("email",
		required(in.Email, "Email is required."),
		matchesPattern(in.Email, emailRe, "Enter a valid email address."),
	)
	check("phone",
		required(in.Phone, "Phone number is required."),
		matchesPattern(in.Phone, phoneRe, "Phone number must be exactly 10 digits."),
	)
	check("dob", required(in.DOB, "Date of birth is required."))
	check("gender",
		required(in.Gender, "Gender is required."),
		validGender(in.Gender, "Select a valid gender."),
	)
	check("password",
		required(in.Password, "Password is required."),
		minLength(in.Password, 8, "Password must be at least 8 characters."),
	)
	check("confirm_password",
		required(in.ConfirmPassword, "Confirm your password."),
		equalTo(in.ConfirmPassword, in.Password, "Passwords must match."),
	)
	return errs
}

// ValidOTPCode valida el formato de 6 dígitos antes de comparar hashes.
func ValidOTPCode(code string) bool {
	return otpRe.MatchString(strings.TrimSpace(code))
}
