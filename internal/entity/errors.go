package entity

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden            = errors.New("forbidden: access denied")
	ErrNoFieldsToUpdate     = errors.New("no fields to update")
	ErrTaskNotFound         = errors.New("task not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyExists        = errors.New("company code already taken")
	ErrMemberExists         = errors.New("user is already a team member")
	ErrReferenceNotFound    = errors.New("reference not found")
	ErrLocationNotFound     = errors.New("location not found")
	ErrFieldNotFound        = errors.New("field not found")
	ErrChecklistItemMissing = errors.New("checklist item not found")
	ErrTenantNotProvisioned = errors.New("user is not a member of any company")
	ErrEmailTaken           = errors.New("email already in use")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidToken         = errors.New("invalid or expired token")

	// конструктор задач
	ErrNameRequired          = errors.New("task name is required")
	ErrFieldsRequired        = errors.New("detailed task needs at least one field")
	ErrChecklistRequired     = errors.New("checklist task needs at least one item")
	ErrOneTimeScheduleNeeded = errors.New("one-time task needs date and time")
	ErrStartTimeRequired     = errors.New("recurring task needs a start time")
	ErrDuplicateFieldID      = errors.New("duplicate field id")
	ErrUnknownFieldType      = errors.New("unknown field type")
	ErrInvalidFieldConfig    = errors.New("invalid field config")
	ErrInvalidTaskData       = errors.New("invalid task data")
	ErrInvalidUserData       = errors.New("invalid user data")
	ErrWrongStep             = errors.New("operation is not allowed at this wizard step")
	ErrNoDraft               = errors.New("no task is being composed")

	// файлы
	ErrFileTooLarge        = errors.New("file is too large")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrBlobNotFound        = errors.New("file not found")
)

// ValidationError привязывает ошибку к полю запроса.
// errors.Is видит обернутую ошибку.
type ValidationError struct {
	Field string
	Err   error
}

func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation проверяет, что ошибка вызвана некорректными данными пользователя
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
