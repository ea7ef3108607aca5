package validation

import (
	"strings"

	"github.com/google/uuid"

	"todo-sync/internal/config"
	"todo-sync/internal/domain"
)

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDueDate     = "due_date"
	FieldTaskID      = "task_id"
)

// TaskValidator checks the task form: a new task and an edit share the same
// rules.
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{
		validator: NewValidator(),
	}
}

// NewTaskValidatorWithConfig creates a task validator with configured limits
func NewTaskValidatorWithConfig(cfg *config.Config) *TaskValidator {
	return &TaskValidator{
		validator: NewValidatorWithConfig(cfg),
	}
}

// Validator exposes the underlying validator, mainly to set its clock.
func (tv *TaskValidator) Validator() *Validator {
	return tv.validator
}

// ValidateTitle validates a task title
func (tv *TaskValidator) ValidateTitle(title string) error {
	validationError := NewValidationError()
	tv.checkTitle(validationError, title)
	return validationError.ErrOrNil()
}

// ValidateTaskInput validates a new task. The due date, when present, must
// not be before today.
func (tv *TaskValidator) ValidateTaskInput(input domain.TaskInput) error {
	validationError := NewValidationError()

	if input.ID != "" {
		if _, err := uuid.Parse(input.ID); err != nil {
			validationError.AddInvalidFormatError(FieldTaskID, input.ID, "UUID")
		}
	}
	tv.checkTitle(validationError, input.Title)
	if input.Description != nil {
		tv.checkDescription(validationError, *input.Description)
	}
	if input.DueDate != nil {
		tv.checkDueDate(validationError, *input.DueDate)
	}

	return validationError.ErrOrNil()
}

// ValidatePatch validates the fields an edit sets. Clearing a field and
// changing the completed flag are always valid here.
func (tv *TaskValidator) ValidatePatch(patch domain.TaskPatch) error {
	validationError := NewValidationError()

	if patch.Title != nil {
		tv.checkTitle(validationError, *patch.Title)
	}
	if patch.Description != nil && !patch.ClearDescription {
		tv.checkDescription(validationError, *patch.Description)
	}
	if patch.DueDate != nil && !patch.ClearDueDate {
		tv.checkDueDate(validationError, *patch.DueDate)
	}
	if patch.IsEmpty() {
		validationError.AddInvalidValueError("patch", nil, "nothing to update")
	}

	return validationError.ErrOrNil()
}

// ValidateTaskID validates a task ID
func (tv *TaskValidator) ValidateTaskID(id string) error {
	if strings.TrimSpace(id) == "" {
		validationError := NewValidationError()
		validationError.AddRequiredError(FieldTaskID)
		return validationError
	}
	return nil
}

// NormalizeInput returns the input with title and description trimmed. An
// all-blank description becomes absent.
func (tv *TaskValidator) NormalizeInput(input domain.TaskInput) domain.TaskInput {
	input.Title = tv.validator.TrimAndValidateString(input.Title)
	if input.Description != nil {
		description := tv.validator.TrimAndValidateString(*input.Description)
		if description == "" {
			input.Description = nil
		} else {
			input.Description = &description
		}
	}
	return input
}

// NormalizePatch trims the text fields a patch sets. A blank description is
// treated as clearing it.
func (tv *TaskValidator) NormalizePatch(patch domain.TaskPatch) domain.TaskPatch {
	if patch.Title != nil {
		title := tv.validator.TrimAndValidateString(*patch.Title)
		patch.Title = &title
	}
	if patch.Description != nil {
		description := tv.validator.TrimAndValidateString(*patch.Description)
		if description == "" {
			patch.Description = nil
			patch.ClearDescription = true
		} else {
			patch.Description = &description
		}
	}
	return patch
}

func (tv *TaskValidator) checkTitle(ve *ValidationError, title string) {
	trimmed := tv.validator.TrimAndValidateString(title)
	if !tv.validator.IsNonEmptyString(trimmed) {
		ve.AddRequiredError(FieldTitle)
		return
	}
	if !tv.validator.IsValidTitleLength(trimmed) {
		ve.AddInvalidLengthError(FieldTitle, trimmed, tv.validator.TitleMinLength(), tv.validator.TitleMaxLength())
	}
}

func (tv *TaskValidator) checkDescription(ve *ValidationError, description string) {
	if !tv.validator.IsValidDescriptionLength(description) {
		ve.AddInvalidLengthError(FieldDescription, description, 0, tv.validator.DescriptionMaxLength())
	}
}

func (tv *TaskValidator) checkDueDate(ve *ValidationError, due domain.Date) {
	if due.IsZero() {
		ve.AddInvalidFormatError(FieldDueDate, due, domain.DateLayout)
		return
	}
	if !tv.validator.IsNotInPast(due) {
		ve.AddPastDateError(FieldDueDate, due.String())
	}
}
