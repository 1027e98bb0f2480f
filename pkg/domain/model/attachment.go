package model

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// AttachmentID is a UUID-based identifier for Attachment
type AttachmentID string

// NewAttachmentID generates a new UUID v4 AttachmentID
func NewAttachmentID() AttachmentID {
	return AttachmentID(uuid.New().String())
}

func (id AttachmentID) String() string {
	return string(id)
}

// Attachment is the metadata of a file uploaded to a complaint. Submitters
// upload evidence; the assignee uploads proof of work.
type Attachment struct {
	ID            AttachmentID
	ComplaintID   int64
	Filename      string
	StoragePath   string
	MimeType      string
	Size          int64
	UploaderID    string
	IsProofOfWork bool
	CreatedAt     time.Time
}

// UploadFile is a file received from a client before it is stored
type UploadFile struct {
	Filename string
	MimeType string
	Size     int64
	Content  io.Reader
}
