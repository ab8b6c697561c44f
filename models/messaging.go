package models

import (
	"time"
)

const (
	ThreadStatusOpen   = "open"
	ThreadStatusClosed = "closed"

	SenderTypeCustomer = "customer"
	SenderTypeAdmin    = "admin"
)

type Contact struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// Thread groups a contact submission and every reply exchanged with the
// customer afterwards, in both directions.
type Thread struct {
	ID                int        `json:"id"`
	ContactID         *int       `json:"contact_id,omitempty"`
	Subject           string     `json:"subject"`
	CustomerName      string     `json:"customer_name"`
	CustomerEmail     string     `json:"customer_email"`
	Status            string     `json:"status"`
	LastMessageAt     time.Time  `json:"last_message_at"`
	AdminLastViewedAt *time.Time `json:"admin_last_viewed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`

	// Computed on listing, not persisted.
	UnreadCount int    `json:"unread_count"`
	LastMessage string `json:"last_message,omitempty"`
	LastSender  string `json:"last_sender,omitempty"`
}

type ThreadMessage struct {
	ID              int          `json:"id"`
	ThreadID        int          `json:"thread_id"`
	SenderType      string       `json:"sender_type"`
	SenderName      string       `json:"sender_name"`
	SenderEmail     string       `json:"sender_email"`
	Message         string       `json:"message"`
	HasAttachments  bool         `json:"has_attachments"`
	ResendEmailID   string       `json:"resend_email_id,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	AttachmentCount int          `json:"attachment_count"`
	Attachments     []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	ID        int    `json:"id"`
	MessageID int    `json:"message_id"`
	Filename  string `json:"filename"`
	FilePath  string `json:"file_path"`
	FileSize  int64  `json:"file_size"`
	MimeType  string `json:"mime_type"`
}

// InboundEmail is the webhook payload for a customer reply routed back by
// the email provider.
type InboundEmail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}
