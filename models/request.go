package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Requester kinds
const (
	RequesterPrivatePerson = "private-person"
	RequesterAssociation   = "association" // bostadsrättsförening (BRF)
)

// Request status
const (
	RequestStatusOpen     = "open"
	RequestStatusMatched  = "matched"
	RequestStatusArchived = "archived"
)

// Request is a construction project submitted by a private person or a
// housing association, looking for contractor quotes.
type Request struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RefID string `gorm:"index" json:"ref_id"`

	// Requester information
	Title         string `gorm:"not null" json:"title"`
	RequesterKind string `gorm:"not null;default:private-person" json:"requester_kind"`
	ContactName   string `json:"contact_name"`
	ContactEmail  string `json:"contact_email"`
	ContactPhone  string `json:"contact_phone"`
	OrgNumber     string `json:"org_number,omitempty"` // set for associations
	Municipality  string `json:"municipality"`

	// Project details
	Description string `gorm:"type:text" json:"description"`
	Status      string `gorm:"not null;default:open;index" json:"status"`

	// Shared file index: id -> display name, used to resolve legacy
	// linkedFileIds on documents to human-readable filenames.
	Files []RequestFile `gorm:"serializer:json" json:"files,omitempty"`
}

// RequestFile is one entry in a request's shared file index.
type RequestFile struct {
	ID         string `json:"id"`
	RefID      string `json:"refId,omitempty"`
	Name       string `json:"name"`
	Folder     string `json:"folder,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	StorageKey string `json:"storageKey,omitempty"`
	Size       int64  `json:"size,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Request model
func (Request) TableName() string {
	return "requests"
}

// FileName resolves a file id against the request's file index. Returns
// the raw id when the file is unknown.
func (r *Request) FileName(fileID string) string {
	for _, f := range r.Files {
		if f.ID == fileID && f.Name != "" {
			return f.Name
		}
	}
	return fileID
}

// IsValidRequesterKind checks if the requester kind is valid
func IsValidRequesterKind(kind string) bool {
	return kind == RequesterPrivatePerson || kind == RequesterAssociation
}
