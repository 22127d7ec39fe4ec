package service

import (
	"net/mail"
	"strings"
)

const minPasswordLength = 6

func isAlphanumeric(value string) bool {
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func isEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}

// validateRegister collects every failed rule, mirroring how the API reports
// all field errors in one response rather than failing fast.
func validateRegister(in RegisterInput) []FieldError {
	var fields []FieldError

	firstName := strings.TrimSpace(in.FirstName)
	switch {
	case firstName == "":
		fields = append(fields, FieldError{Field: "firstName", Message: "First name must be specified."})
	case !isAlphanumeric(firstName):
		fields = append(fields, FieldError{Field: "firstName", Message: "First name has non-alphanumeric characters."})
	}

	lastName := strings.TrimSpace(in.LastName)
	switch {
	case lastName == "":
		fields = append(fields, FieldError{Field: "lastName", Message: "Last name must be specified."})
	case !isAlphanumeric(lastName):
		fields = append(fields, FieldError{Field: "lastName", Message: "Last name has non-alphanumeric characters."})
	}

	email := strings.TrimSpace(in.Email)
	switch {
	case email == "":
		fields = append(fields, FieldError{Field: "email", Message: "Email must be specified."})
	case !isEmail(email):
		fields = append(fields, FieldError{Field: "email", Message: "Email must be a valid email address."})
	}

	if len(strings.TrimSpace(in.Password)) < minPasswordLength {
		fields = append(fields, FieldError{Field: "password", Message: "Password must be 6 characters or greater."})
	}

	return fields
}

func validateLogin(phone, uniqueID string) []FieldError {
	var fields []FieldError
	if strings.TrimSpace(phone) == "" {
		fields = append(fields, FieldError{Field: "phone", Message: "Phone number must be specified."})
	}
	if strings.TrimSpace(uniqueID) == "" {
		fields = append(fields, FieldError{Field: "unique_id", Message: "Company number must be specified."})
	}
	return fields
}

func validateEmailField(email string) []FieldError {
	trimmed := strings.TrimSpace(email)
	switch {
	case trimmed == "":
		return []FieldError{{Field: "email", Message: "Email must be specified."}}
	case !isEmail(trimmed):
		return []FieldError{{Field: "email", Message: "Email must be a valid email address."}}
	}
	return nil
}
