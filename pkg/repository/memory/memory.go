package memory

import (
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = interfaces.ErrNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	complaint    *complaintRepository
	attachment   *attachmentRepository
	comment      *commentRepository
	notification *notificationRepository
	user         *userRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	notificationRepo := newNotificationRepository()

	return &Memory{
		complaint:    newComplaintRepository(notificationRepo),
		attachment:   newAttachmentRepository(),
		comment:      newCommentRepository(),
		notification: notificationRepo,
		user:         newUserRepository(),
	}
}

func (m *Memory) Complaint() interfaces.ComplaintRepository {
	return m.complaint
}

func (m *Memory) Attachment() interfaces.AttachmentRepository {
	return m.attachment
}

func (m *Memory) Comment() interfaces.CommentRepository {
	return m.comment
}

func (m *Memory) Notification() interfaces.NotificationRepository {
	return m.notification
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

// Close does nothing for the in-memory repository
func (m *Memory) Close() error {
	return nil
}
