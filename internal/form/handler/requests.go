package handler

import (
	"strings"

	"onboarding/internal/form/models"
	dErrors "onboarding/pkg/domain-errors"
)

const (
	maxValueLength = 200
	maxNameLength  = 255
)

// EditFieldRequest is the body of a field edit. An empty value clears the
// field.
type EditFieldRequest struct {
	Value string `json:"value"`
}

// Validate implements httputil.Validatable.
func (r *EditFieldRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Value) > maxValueLength {
		return dErrors.New(dErrors.CodeValidation, "value is too long")
	}
	return nil
}

// AttachmentRequest carries the metadata of a selected document. An empty
// name clears the attachment.
type AttachmentRequest struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Validate implements httputil.Validatable. Size and type limits are form
// rules and are reported as field errors, not rejected here.
func (r *AttachmentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	r.ContentType = strings.ToLower(strings.TrimSpace(r.ContentType))
	if len(r.Name) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 255 characters")
	}
	if r.Size < 0 {
		return dErrors.New(dErrors.CodeValidation, "size must not be negative")
	}
	return nil
}

// Attachment converts the request to the domain type.
func (r *AttachmentRequest) Attachment() models.Attachment {
	return models.Attachment{Name: r.Name, ContentType: r.ContentType, Size: r.Size}
}
