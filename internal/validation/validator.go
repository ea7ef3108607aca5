package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"todo-sync/internal/config"
	"todo-sync/internal/domain"
)

var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+'\-]+@[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?)*\.[A-Za-z]{2,}$`)

const (
	PasswordMinLength = 6
	PasswordMaxLength = 50
)

// Validator provides common validation utilities
type Validator struct {
	config *config.Config
	now    func() time.Time
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		config: nil, // Use defaults
		now:    time.Now,
	}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{
		config: cfg,
		now:    time.Now,
	}
}

// SetClock overrides the time source used for "today".
func (v *Validator) SetClock(now func() time.Time) {
	v.now = now
}

// Today returns the current calendar day.
func (v *Validator) Today() domain.Date {
	return domain.DateOf(v.now())
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks the trimmed length in characters, not bytes.
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	return length >= min && length <= max
}

// IsValidTitleLength checks if a title length is within configured limits
func (v *Validator) IsValidTitleLength(title string) bool {
	return v.IsValidStringLength(title, v.TitleMinLength(), v.TitleMaxLength())
}

// IsValidDescriptionLength checks a description against the configured maximum
func (v *Validator) IsValidDescriptionLength(description string) bool {
	return v.IsValidStringLength(description, 0, v.DescriptionMaxLength())
}

// IsValidEmail checks the address shape only; deliverability is the auth
// provider's concern.
func (v *Validator) IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

// IsValidPasswordLength checks the untrimmed password length.
func (v *Validator) IsValidPasswordLength(password string) bool {
	length := utf8.RuneCountInString(password)
	return length >= PasswordMinLength && length <= PasswordMaxLength
}

// IsNotInPast reports whether d is today or later.
func (v *Validator) IsNotInPast(d domain.Date) bool {
	return !d.Before(v.Today())
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}

// TitleMinLength returns configured minimum title length or default
func (v *Validator) TitleMinLength() int {
	if v.config != nil {
		return v.config.Validation.TitleMinLength
	}
	return 2
}

// TitleMaxLength returns configured maximum title length or default
func (v *Validator) TitleMaxLength() int {
	if v.config != nil {
		return v.config.Validation.TitleMaxLength
	}
	return 255
}

// DescriptionMaxLength returns configured maximum description length or default
func (v *Validator) DescriptionMaxLength() int {
	if v.config != nil {
		return v.config.Validation.DescriptionMaxLength
	}
	return 1000
}
