package types

// NotificationType tags the lifecycle event that produced a notification
type NotificationType string

const (
	NotificationComplaintSubmitted NotificationType = "complaint_submitted"
	NotificationComplaintApproved  NotificationType = "complaint_approved"
	NotificationComplaintRejected  NotificationType = "complaint_rejected"
	NotificationTaskAssigned       NotificationType = "task_assigned"
	NotificationComplaintAssigned  NotificationType = "complaint_assigned"
	NotificationStatusUpdated      NotificationType = "status_updated"
	NotificationProofUploaded      NotificationType = "proof_uploaded"
	NotificationComplaintResolved  NotificationType = "complaint_resolved"
	NotificationWorkRevision       NotificationType = "work_revision"
	NotificationCommentAdded       NotificationType = "comment_added"
)

// IsValid checks if the notification type is known
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationComplaintSubmitted,
		NotificationComplaintApproved,
		NotificationComplaintRejected,
		NotificationTaskAssigned,
		NotificationComplaintAssigned,
		NotificationStatusUpdated,
		NotificationProofUploaded,
		NotificationComplaintResolved,
		NotificationWorkRevision,
		NotificationCommentAdded:
		return true
	default:
		return false
	}
}

// String returns the string representation of the notification type
func (t NotificationType) String() string {
	return string(t)
}
