package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// MaxCommentLength bounds the body of a single comment
const MaxCommentLength = 2000

// CommentID is a UUID-based identifier for Comment
type CommentID string

// NewCommentID generates a new UUID v4 CommentID
func NewCommentID() CommentID {
	return CommentID(uuid.New().String())
}

// Comment is an immutable entry of a complaint's discussion thread
type Comment struct {
	ID          CommentID
	ComplaintID int64
	AuthorID    string
	Body        string
	CreatedAt   time.Time
}

// CommentView is a comment resolved to its author for display
type CommentView struct {
	*Comment
	AuthorName string
	AuthorRole types.Role
}
