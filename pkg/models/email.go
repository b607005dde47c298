// Package models defines the core domain models for the automation engine.
package models

import "time"

// Email is a message row from the unified inbox. The engine only reads the
// fields below and writes back through EmailUpdate; everything else about the
// message (threading, attachments, sync state) is owned by the inbox service.
type Email struct {
	ID             string     `json:"id"`
	AccountID      string     `json:"account_id"     validate:"required"`
	FromAddress    string     `json:"from_address"`
	ToAddresses    []string   `json:"to_addresses"`
	Subject        string     `json:"subject"`
	BodyText       string     `json:"body_text"`
	BodyHTML       string     `json:"body_html"`
	HasAttachments bool       `json:"has_attachments"`
	IsRead         bool       `json:"is_read"`
	IsStarred      bool       `json:"is_starred"`
	IsImportant    bool       `json:"is_important"`
	IsArchived     bool       `json:"is_archived"`
	IsSpam         bool       `json:"is_spam"`
	IsTrashed      bool       `json:"is_trashed"`
	Folder         string     `json:"folder,omitempty"`
	Labels         []string   `json:"labels"`
	ReceivedAt     time.Time  `json:"received_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

// EmailUpdate is a partial update of the mutable flags on an Email. Nil fields
// are left untouched by the store.
type EmailUpdate struct {
	IsRead      *bool
	IsStarred   *bool
	IsImportant *bool
	IsArchived  *bool
	IsSpam      *bool
	IsTrashed   *bool
	Folder      *string
	Labels      *[]string
	DeletedAt   *time.Time
}

// IsZero reports whether the update would change nothing.
func (u EmailUpdate) IsZero() bool {
	return u.IsRead == nil && u.IsStarred == nil && u.IsImportant == nil &&
		u.IsArchived == nil && u.IsSpam == nil && u.IsTrashed == nil &&
		u.Folder == nil && u.Labels == nil && u.DeletedAt == nil
}
