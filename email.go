package mimecast

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"path/filepath"
)

// Address represents an email address with an optional display name.
type Address struct {
	Email string `json:"emailAddress"`
	Name  string `json:"displayableName,omitempty"`
}

// Attachment represents a file attached inline to an outgoing message.
// Content is base64-encoded on the wire; use Message.Attach or
// NewAttachment rather than filling the fields by hand.
type Attachment struct {
	// FileID references a file previously uploaded with UploadFile
	// instead of inline content.
	FileID             string       `json:"id,omitempty"`
	Filename           string       `json:"filename"`
	Size               int64        `json:"size"`
	Content            string       `json:"content,omitempty"`
	ContentType        string       `json:"contentType,omitempty"`
	TransferEncoding   string       `json:"contentTransferEncoding,omitempty"`
	ContentID          string       `json:"contentId,omitempty"`
	ContentDisposition string       `json:"contentDisposition,omitempty"`
	ExtraHeaders       []HeaderPair `json:"extraHeaders,omitempty"`
}

// HeaderPair is a single custom header on a message or attachment.
type HeaderPair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Message describes an outgoing email.
type Message struct {
	To          []Address    `json:"to"`
	Subject     string       `json:"subject"`
	From        *Address     `json:"from,omitempty"`
	CC          []Address    `json:"cc,omitempty"`
	BCC         []Address    `json:"bcc,omitempty"`
	ReplyTo     *Address     `json:"replyTo,omitempty"`
	InReplyTo   string       `json:"inReplyTo,omitempty"`
	TextBody    string       `json:"text,omitempty"`
	HTMLBody    string       `json:"html,omitempty"`
	Importance  string       `json:"importance,omitempty"`
	Headers     []HeaderPair `json:"extraHeaders,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// NewAttachment builds an attachment from in-memory data, detecting the
// content type from the filename extension.
func NewAttachment(filename string, data []byte) Attachment {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return Attachment{
		Filename:         filepath.Base(filename),
		Size:             int64(len(data)),
		Content:          base64.StdEncoding.EncodeToString(data),
		ContentType:      contentType,
		TransferEncoding: "base64",
	}
}

// Attach appends data as an inline base64 attachment named after filename.
func (m *Message) Attach(filename string, data []byte) {
	m.Attachments = append(m.Attachments, NewAttachment(filename, data))
}

// AttachUpload references a file previously uploaded with UploadFile or
// UploadFiles, avoiding inline base64 content for large files.
func (m *Message) AttachUpload(result *UploadResult) {
	m.Attachments = append(m.Attachments, Attachment{
		FileID:   result.FileID,
		Filename: filepath.Base(result.Path),
		Size:     result.Size,
	})
}

// validate checks the message before any request is sent.
func (m *Message) validate() error {
	var errs []string
	if len(m.To) == 0 {
		errs = append(errs, "at least one recipient is required")
	}
	for i, addr := range m.To {
		if addr.Email == "" {
			errs = append(errs, fmt.Sprintf("recipient %d has no email address", i))
		}
	}
	if m.TextBody == "" && m.HTMLBody == "" {
		errs = append(errs, "either text or html body is required")
	}
	switch m.Importance {
	case "", "normal", "low", "high":
	default:
		errs = append(errs, "importance must be one of: normal, low, high")
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// SendResult describes the outcome of sending one message.
type SendResult struct {
	MessageID string `json:"messageId"`
}

// SendEmail sends a message through the gateway.
func (c *Client) SendEmail(ctx context.Context, msg *Message) (*SendResult, error) {
	if msg == nil {
		return nil, &ValidationError{Errors: []string{"message is nil"}}
	}
	if err := msg.validate(); err != nil {
		return nil, err
	}

	body := map[string]interface{}{"data": []*Message{msg}}

	var results []SendResult
	if err := c.Post(ctx, "/api/email/send-email", body, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &SendResult{}, nil
	}
	return &results[0], nil
}
