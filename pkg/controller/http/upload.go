package http

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/errutil"
	"github.com/secmon-lab/themis/pkg/utils/safe"
)

const (
	uploadField       = "files"
	multipartMemory   = 8 << 20
	multipartOverhead = 1 << 20
)

// readUploads parses the multipart body and opens every file of the upload
// field. The returned cleanup closes them.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request) ([]*model.UploadFile, func(), error) {
	policy := s.uc.Attachment.Policy()
	r.Body = http.MaxBytesReader(w, r.Body, int64(policy.MaxFiles)*policy.MaxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, goerr.Wrap(usecase.ErrFileTooLarge, "upload body is too large", goerr.V("limit", tooLarge.Limit))
		}
		return nil, nil, goerr.Wrap(errBadRequest, "invalid multipart body", goerr.V("reason", err.Error()))
	}

	headers := r.MultipartForm.File[uploadField]
	if len(headers) > policy.MaxFiles {
		return nil, nil, goerr.Wrap(usecase.ErrTooManyFiles, "too many files",
			goerr.V("count", len(headers)),
			goerr.V("max", policy.MaxFiles))
	}

	var opened []multipart.File
	cleanup := func() {
		for _, f := range opened {
			safe.Close(r.Context(), f)
		}
		if err := r.MultipartForm.RemoveAll(); err != nil {
			errutil.Warn(r.Context(), err, "failed to remove multipart temp files")
		}
	}

	files := make([]*model.UploadFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			cleanup()
			return nil, nil, goerr.Wrap(err, "failed to open uploaded file", goerr.V(usecase.FilenameKey, h.Filename))
		}
		opened = append(opened, f)

		files = append(files, &model.UploadFile{
			Filename: h.Filename,
			MimeType: contentType(h),
			Size:     h.Size,
			Content:  f,
		})
	}

	return files, cleanup, nil
}

func contentType(h *multipart.FileHeader) string {
	ct := h.Header.Get("Content-Type")
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if byExt := mime.TypeByExtension(filepath.Ext(h.Filename)); byExt != "" {
		return byExt
	}
	if ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (s *Server) handleUploadEvidence(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := complaintID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	files, cleanup, err := s.readUploads(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer cleanup()

	attachments, err := s.uc.Attachment.UploadEvidence(r.Context(), p, id, files)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeData(w, r, http.StatusCreated, "Attachments uploaded successfully", toAttachments(attachments))
}

func (s *Server) handleUploadProof(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := complaintID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	files, cleanup, err := s.readUploads(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer cleanup()

	attachments, c, err := s.uc.Attachment.UploadProof(r.Context(), p, id, files)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeData(w, r, http.StatusCreated, "Proof of work uploaded successfully", map[string]any{
		"attachments": toAttachments(attachments),
		"complaint":   toComplaint(c),
	})
}
