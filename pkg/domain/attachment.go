package domain

import (
	"mime"
	"strings"
)

// Display is the presentation class of an attachment.
type Display string

const (
	// DisplayImage attachments are rendered through a preview handle.
	DisplayImage Display = "image"
	// DisplayDocument attachments are shown as a static icon, never rendered.
	DisplayDocument Display = "document"
	// DisplayOther attachments get no preview at all.
	DisplayOther Display = "other"
)

// DocumentIcon is the static representation of document-class attachments.
const DocumentIcon = "file-text"

var documentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// PreviewHandle is a temporary, revocable reference used to render an image attachment.
type PreviewHandle struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Attachment is a user-selected binary file bound to one field.
type Attachment struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	MediaType string `json:"media_type"`
	Data      []byte `json:"data,omitempty"`

	// Preview is owned by the attachment manager. It is nil unless the owning
	// step is on screen and the attachment is an image.
	Preview *PreviewHandle `json:"preview,omitempty"`
}

// NewAttachment builds an attachment from raw bytes.
func NewAttachment(name, mediaType string, data []byte) *Attachment {
	return &Attachment{
		Name:      name,
		Size:      int64(len(data)),
		MediaType: mediaType,
		Data:      data,
	}
}

// Classify returns the display class of a declared media type.
func Classify(mediaType string) Display {
	base, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		base = strings.ToLower(strings.TrimSpace(mediaType))
	}
	switch {
	case strings.HasPrefix(base, "image/"):
		return DisplayImage
	case documentTypes[base]:
		return DisplayDocument
	default:
		return DisplayOther
	}
}

// Display returns the display class of the attachment.
func (a *Attachment) Display() Display {
	return Classify(a.MediaType)
}

// Icon returns the static icon for document attachments, empty otherwise.
func (a *Attachment) Icon() string {
	if a.Display() == DisplayDocument {
		return DocumentIcon
	}
	return ""
}

// Clone returns a copy sharing the payload bytes but not the preview pointer.
func (a *Attachment) Clone() *Attachment {
	if a == nil {
		return nil
	}
	c := *a
	if a.Preview != nil {
		p := *a.Preview
		c.Preview = &p
	}
	return &c
}
