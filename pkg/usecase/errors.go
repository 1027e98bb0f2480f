package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Input errors
	ErrValidation          = errors.New("validation failed")
	ErrTooManyFiles        = errors.New("too many files in one upload")
	ErrFileTooLarge        = errors.New("file exceeds the size limit")
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// Identity errors
	ErrUnauthenticated = errors.New("authentication required")

	// Access control errors
	ErrRoleDenied   = errors.New("role is not allowed to perform this operation")
	ErrAccessDenied = errors.New("access denied to complaint")

	// Not found errors
	ErrComplaintNotFound    = errors.New("complaint not found")
	ErrAttachmentNotFound   = errors.New("attachment not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")

	// Status errors
	ErrStatusConflict = errors.New("complaint status does not allow this operation")

	// Quota errors
	ErrRateLimited = errors.New("submission rate limit exceeded")
)

// Context keys for error values
const (
	ComplaintIDKey    = "complaint_id"
	NotificationIDKey = "notification_id"
	UserIDKey         = "user_id"
	StatusKey         = "status"
	ActionKey         = "action"
	RoleKey           = "role"
	FilenameKey       = "filename"
	RetryAfterKey     = "retry_after"
)
