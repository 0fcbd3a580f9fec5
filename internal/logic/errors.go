package logic

import (
	"errors"
	"fmt"
)

var (
	ErrDonationNotFound    = errors.New("donation not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrVolunteerNotFound   = errors.New("volunteer application not found")
	ErrJobNotFound         = errors.New("job not found")
	ErrApplicationNotFound = errors.New("job application not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailTaken         = errors.New("email already registered, please login instead")
	ErrAlreadyApplied     = errors.New("you have already applied for this job using this email")
)

// ValidationError 提交字段不合法，不产生任何状态变化
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ProfileSyncError 支付完成后同步资料失败，只记录日志
type ProfileSyncError struct {
	UserID int64
	Err    error
}

func (e *ProfileSyncError) Error() string {
	return fmt.Sprintf("sync profile for user %d: %v", e.UserID, e.Err)
}

func (e *ProfileSyncError) Unwrap() error {
	return e.Err
}
