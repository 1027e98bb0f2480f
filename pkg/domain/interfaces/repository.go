package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Complaint() ComplaintRepository
	Attachment() AttachmentRepository
	Comment() CommentRepository
	Notification() NotificationRepository
	User() UserRepository

	Close() error
}
