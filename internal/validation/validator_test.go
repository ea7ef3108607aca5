package validation

import (
	"strings"
	"testing"
	"time"

	"todo-sync/internal/config"
	"todo-sync/internal/domain"
)

func TestValidator_IsNonEmptyString(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Empty string", "", false},
		{"Whitespace only", "   ", false},
		{"Tab and newline", "\t\n", false},
		{"Valid string", "hello", true},
		{"String with spaces", "hello world", true},
		{"String with leading/trailing spaces", "  hello  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.IsNonEmptyString(tt.input)
			if result != tt.expected {
				t.Errorf("IsNonEmptyString(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidator_IsValidStringLength(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		min      int
		max      int
		expected bool
	}{
		{"Empty string, min 1", "", 1, 10, false},
		{"Too short", "a", 2, 10, false},
		{"Too long", "very long string", 1, 5, false},
		{"Valid length", "hello", 1, 10, true},
		{"Exactly min", "ab", 2, 10, true},
		{"Exactly max", "hello", 1, 5, true},
		{"With leading/trailing spaces", "  hello  ", 1, 5, true},
		{"Counts characters not bytes", "ñú", 2, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.IsValidStringLength(tt.input, tt.min, tt.max)
			if result != tt.expected {
				t.Errorf("IsValidStringLength(%q, %d, %d) = %v, expected %v", tt.input, tt.min, tt.max, result, tt.expected)
			}
		})
	}
}

func TestValidator_IsValidTitleLength(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Validation.TitleMinLength = 3
	cfg.Validation.TitleMaxLength = 5

	tests := []struct {
		name      string
		validator *Validator
		input     string
		expected  bool
	}{
		{"Default minimum rejects one character", NewValidator(), "a", false},
		{"Default minimum accepts two characters", NewValidator(), "ab", true},
		{"Default maximum", NewValidator(), strings.Repeat("a", 256), false},
		{"Configured minimum", NewValidatorWithConfig(cfg), "ab", false},
		{"Configured maximum", NewValidatorWithConfig(cfg), "abcdef", false},
		{"Within configured range", NewValidatorWithConfig(cfg), "abcd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.validator.IsValidTitleLength(tt.input)
			if result != tt.expected {
				t.Errorf("IsValidTitleLength(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidator_IsValidEmail(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		input    string
		expected bool
	}{
		{"ana@example.com", true},
		{"ana.maria+todo@mail.example.org", true},
		{" ana@example.com ", true},
		{"ana@example", false},
		{"ana.example.com", false},
		{"@example.com", false},
		{"ana@@example.com", false},
		{"ana @example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := validator.IsValidEmail(tt.input)
			if result != tt.expected {
				t.Errorf("IsValidEmail(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidator_IsValidPasswordLength(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Too short", "12345", false},
		{"Minimum", "123456", true},
		{"Maximum", strings.Repeat("x", 50), true},
		{"Too long", strings.Repeat("x", 51), false},
		{"Spaces count", "      ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.IsValidPasswordLength(tt.input)
			if result != tt.expected {
				t.Errorf("IsValidPasswordLength(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidator_IsNotInPast(t *testing.T) {
	validator := NewValidator()
	validator.SetClock(func() time.Time {
		return time.Date(2026, 10, 15, 23, 59, 0, 0, time.Local)
	})

	tests := []struct {
		name     string
		input    domain.Date
		expected bool
	}{
		{"Yesterday", domain.NewDate(2026, 10, 14), false},
		{"Today", domain.NewDate(2026, 10, 15), true},
		{"Tomorrow", domain.NewDate(2026, 10, 16), true},
		{"Last year", domain.NewDate(2025, 12, 31), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.IsNotInPast(tt.input)
			if result != tt.expected {
				t.Errorf("IsNotInPast(%s) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidator_TrimAndValidateString(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"No whitespace", "hello", "hello"},
		{"Leading whitespace", "  hello", "hello"},
		{"Trailing whitespace", "hello  ", "hello"},
		{"Both sides", "  hello  ", "hello"},
		{"Tabs and newlines", "\t\nhello\t\n", "hello"},
		{"Empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.TrimAndValidateString(tt.input)
			if result != tt.expected {
				t.Errorf("TrimAndValidateString(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}
