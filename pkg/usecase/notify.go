package usecase

import (
	"fmt"

	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

const defaultRevisionFeedback = "Please check and update."

func newNotification(recipientID string, c *model.Complaint, typ types.NotificationType, title, message string) *model.Notification {
	return &model.Notification{
		RecipientID: recipientID,
		ComplaintID: c.ID,
		Title:       title,
		Message:     message,
		Type:        typ,
	}
}

func notifySubmitted(recipientID string, c *model.Complaint) *model.Notification {
	return newNotification(recipientID, c, types.NotificationComplaintSubmitted,
		"New Complaint Submitted",
		fmt.Sprintf("A new complaint %q has been submitted.", c.Title))
}

func notifyApproved(c *model.Complaint) *model.Notification {
	return newNotification(c.SubmitterID, c, types.NotificationComplaintApproved,
		"Complaint Approved",
		fmt.Sprintf("Your complaint %q has been approved and will be assigned to a worker soon.", c.Title))
}

func notifyRejected(c *model.Complaint, reason string) *model.Notification {
	return newNotification(c.SubmitterID, c, types.NotificationComplaintRejected,
		"Complaint Rejected",
		fmt.Sprintf("Your complaint %q has been rejected. Reason: %s", c.Title, reason))
}

func notifyTaskAssigned(assigneeID string, c *model.Complaint) *model.Notification {
	return newNotification(assigneeID, c, types.NotificationTaskAssigned,
		"New Task Assigned",
		fmt.Sprintf("You have been assigned a new complaint: %q", c.Title))
}

func notifyComplaintAssigned(c *model.Complaint) *model.Notification {
	return newNotification(c.SubmitterID, c, types.NotificationComplaintAssigned,
		"Complaint Assigned",
		fmt.Sprintf("Your complaint %q has been assigned to a worker.", c.Title))
}

func notifyStatusUpdated(c *model.Complaint, status types.ComplaintStatus) *model.Notification {
	return newNotification(c.SubmitterID, c, types.NotificationStatusUpdated,
		fmt.Sprintf("Task %s", status),
		fmt.Sprintf("The status of your complaint %q has been updated to %s.", c.Title, status))
}

func notifyProofUploaded(recipientID string, c *model.Complaint) *model.Notification {
	return newNotification(recipientID, c, types.NotificationProofUploaded,
		"Proof of Work Uploaded",
		fmt.Sprintf("Worker has uploaded proof of work for complaint %q. Please verify.", c.Title))
}

func notifyResolved(c *model.Complaint) *model.Notification {
	return newNotification(c.SubmitterID, c, types.NotificationComplaintResolved,
		"Complaint Resolved",
		fmt.Sprintf("Your complaint %q has been resolved and verified.", c.Title))
}

func notifyRevision(c *model.Complaint, feedback string) *model.Notification {
	if feedback == "" {
		feedback = defaultRevisionFeedback
	}
	return newNotification(c.AssigneeID, c, types.NotificationWorkRevision,
		"Work Needs Revision",
		fmt.Sprintf("Your work on %q needs revision. Feedback: %s", c.Title, feedback))
}

func notifyComment(recipientID string, c *model.Complaint, author *model.User) *model.Notification {
	who := "Someone"
	if author != nil && author.Name != "" {
		who = author.Name
	}
	return newNotification(recipientID, c, types.NotificationCommentAdded,
		"New Comment",
		fmt.Sprintf("%s added a comment on complaint %q", who, c.Title))
}
