package mail

import (
	"bytes"
	"path/filepath"

	gomail "github.com/wneessen/go-mail"
)

// Attachment is a file attached to a message, either from memory or from
// disk. Inline attachments are embedded and can be referenced by cid.
type Attachment struct {
	Filename    string
	ContentType string
	Inline      bool
	data        []byte
	path        string
}

// NewAttachment creates an attachment from in-memory data.
func NewAttachment(data []byte, filename, contentType string) *Attachment {
	return &Attachment{Filename: filename, ContentType: contentType, data: data}
}

// AttachmentFromPath creates an attachment read from path at send time.
func AttachmentFromPath(path, contentType string) *Attachment {
	return &Attachment{Filename: filepath.Base(path), ContentType: contentType, path: path}
}

// NewImage creates an inline image from in-memory data.
func NewImage(data []byte, filename, contentType string) *Attachment {
	a := NewAttachment(data, filename, contentType)
	a.Inline = true
	return a
}

// ImageFromPath creates an inline image read from path.
func ImageFromPath(path string) *Attachment {
	a := AttachmentFromPath(path, "")
	a.Inline = true
	return a
}

// Path returns the file path backing the attachment, if any.
func (a *Attachment) Path() string { return a.path }

func (a *Attachment) attach(msg *gomail.Msg) {
	var opts []gomail.FileOption
	if a.ContentType != "" {
		opts = append(opts, gomail.WithFileContentType(gomail.ContentType(a.ContentType)))
	}
	if a.path != "" {
		opts = append(opts, gomail.WithFileName(a.Filename))
		if a.Inline {
			msg.EmbedFile(a.path, opts...)
		} else {
			msg.AttachFile(a.path, opts...)
		}
		return
	}
	if a.Inline {
		msg.EmbedReadSeeker(a.Filename, bytes.NewReader(a.data), opts...)
	} else {
		msg.AttachReadSeeker(a.Filename, bytes.NewReader(a.data), opts...)
	}
}
