package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("User not found")
	ErrUsernameTaken      = errors.New("Username already exists")
	ErrEmailRegistered    = errors.New("Email already exists")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrAccountDisabled    = errors.New("Account is deactivated")
	ErrPermissionDenied   = errors.New("Admin access required")
	ErrExamNotFound       = errors.New("Exam not found")
	ErrExamNotActive      = errors.New("Exam is not active")
	ErrExamNoAnswerKey    = errors.New("Exam has no answers configured")
	ErrAttemptNotFound    = errors.New("Exam attempt not found")
	ErrAttemptCompleted   = errors.New("Exam attempt already completed")
	ErrAnswersRequired    = errors.New("Answers are required")
	ErrQuestionNotFound   = errors.New("Question not found")
	ErrTestPaperNotFound  = errors.New("Test not found")
	ErrNoFieldsProvided   = errors.New("No valid fields provided")
	ErrNoFile             = errors.New("No file provided")
	ErrFileNotFound       = errors.New("File not found")
)

// ValidationError 请求参数校验失败，映射为 400
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
