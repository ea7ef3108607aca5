package validation

import (
	"todo-sync/internal/auth"
)

const (
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldName     = "name"
)

// CredentialValidator checks sign-in and sign-up forms before they reach
// the auth provider. Failures are returned as validation AppErrors.
type CredentialValidator struct {
	validator *Validator
}

var _ auth.CredentialValidator = (*CredentialValidator)(nil)

// NewCredentialValidator creates a credential validator.
func NewCredentialValidator() *CredentialValidator {
	return &CredentialValidator{validator: NewValidator()}
}

// ValidateSignIn checks the email shape and password length.
func (cv *CredentialValidator) ValidateSignIn(email, password string) error {
	validationError := NewValidationError()
	cv.checkEmail(validationError, email)
	cv.checkPassword(validationError, password)
	if validationError.HasErrors() {
		return validationError.AppError()
	}
	return nil
}

// ValidateSignUp additionally requires a display name.
func (cv *CredentialValidator) ValidateSignUp(email, password, name string) error {
	validationError := NewValidationError()
	if !cv.validator.IsNonEmptyString(name) {
		validationError.AddRequiredError(FieldName)
	}
	cv.checkEmail(validationError, email)
	cv.checkPassword(validationError, password)
	if validationError.HasErrors() {
		return validationError.AppError()
	}
	return nil
}

func (cv *CredentialValidator) checkEmail(ve *ValidationError, email string) {
	if !cv.validator.IsNonEmptyString(email) {
		ve.AddRequiredError(FieldEmail)
		return
	}
	if !cv.validator.IsValidEmail(email) {
		ve.AddInvalidFormatError(FieldEmail, email, "name@example.com")
	}
}

func (cv *CredentialValidator) checkPassword(ve *ValidationError, password string) {
	if password == "" {
		ve.AddRequiredError(FieldPassword)
		return
	}
	if !cv.validator.IsValidPasswordLength(password) {
		ve.AddInvalidLengthError(FieldPassword, nil, PasswordMinLength, PasswordMaxLength)
	}
}
