package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document types
const (
	DocTypeQuote       = "quote"        // offert
	DocTypeContract    = "contract"     // avtal
	DocTypeChangeOrder = "change-order" // ÄTA
)

// Document audiences
const (
	AudienceAssociation   = "association"
	AudiencePrivatePerson = "private-person"
)

// Document statuses
const (
	DocStatusDraft      = "draft"
	DocStatusSent       = "sent"
	DocStatusAccepted   = "accepted"
	DocStatusRejected   = "rejected"
	DocStatusSuperseded = "superseded"
)

// Author roles
const (
	RoleContractor    = "contractor"
	RoleAssociation   = "association"
	RolePrivatePerson = "private-person"
)

// Field types
const (
	FieldText     = "text"
	FieldNumber   = "number"
	FieldDate     = "date"
	FieldSelect   = "select"
	FieldCheckbox = "checkbox"
	FieldTextarea = "textarea"
)

// Attachment folders
const (
	FolderQuotes    = "offerter"
	FolderContracts = "avtal"
	FolderDrawings  = "ritningar"
	FolderPhotos    = "foton"
	FolderOther     = "ovrig"
)

// Document is a structured contractor document (quote, contract or change
// order) owned by a Request. The section tree is stored as a JSON column; a
// row is one version in a lineage linked by RequestID and Version.
type Document struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RefID     string `gorm:"index" json:"refId"`
	RequestID string `gorm:"type:uuid;not null;index" json:"requestId"`
	Version   int    `gorm:"not null;default:1" json:"version"`

	Type     string `gorm:"not null;default:quote" json:"type"`
	Audience string `gorm:"not null;default:private-person" json:"audience"`
	Status   string `gorm:"not null;default:draft;index" json:"status"`

	SentAt     *time.Time `json:"sentAt,omitempty"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
	RejectedAt *time.Time `json:"rejectedAt,omitempty"`

	CreatedByRole  string `gorm:"not null;default:contractor" json:"createdByRole"`
	CreatedByLabel string `json:"createdByLabel"`

	Title    string    `gorm:"not null" json:"title"`
	Sections []Section `gorm:"serializer:json" json:"sections"`

	LinkedFileIDs []string     `gorm:"serializer:json" json:"linkedFileIds,omitempty"`
	Attachments   []Attachment `gorm:"serializer:json" json:"attachments,omitempty"`

	// Cached renders, regenerated on demand. Never authoritative.
	RenderedHTML string `gorm:"type:text" json:"renderedHtml,omitempty"`
	PDFDataURL   string `gorm:"type:text" json:"pdfDataUrl,omitempty"`
}

// Section is a named, independently toggleable block of a document.
type Section struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Enabled     bool       `json:"enabled"`
	Fields      []Field    `json:"fields"`
	Items       []LineItem `json:"items,omitempty"`
}

// Field is a labeled value discriminated by Type. Exactly one of Value,
// Number or Checked is meaningful for a given type; normalization zeroes
// the rest.
type Field struct {
	ID      string         `json:"id"`
	Label   string         `json:"label"`
	Type    string         `json:"type"`
	Value   string         `json:"value,omitempty"`   // text, date, textarea, select
	Number  float64        `json:"number,omitempty"`  // number
	Checked bool           `json:"checked,omitempty"` // checkbox
	Options []SelectOption `json:"options,omitempty"` // select only
}

// SelectOption is a label/value pair for select fields.
type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LineItem is a priced row in a section's item table. Value carries
// free-text rows that have no quantity/price.
type LineItem struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity,omitempty"`
	UnitPrice   float64 `json:"unitPrice,omitempty"`
	Total       float64 `json:"total,omitempty"`
	Value       string  `json:"value,omitempty"`
}

// Attachment links a shared file to a document.
type Attachment struct {
	FileID   string `json:"fileId"`
	RefID    string `json:"refId,omitempty"`
	Filename string `json:"filename"`
	Folder   string `json:"folder"`
	MimeType string `json:"mimeType,omitempty"`
}

// BeforeCreate hook to generate UUID
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Document model
func (Document) TableName() string {
	return "documents"
}

// IsValidDocType checks if the document type is valid
func IsValidDocType(docType string) bool {
	return docType == DocTypeQuote || docType == DocTypeContract || docType == DocTypeChangeOrder
}

// IsValidAudience checks if the audience is valid
func IsValidAudience(audience string) bool {
	return audience == AudienceAssociation || audience == AudiencePrivatePerson
}

// IsValidDocStatus checks if the document status is valid
func IsValidDocStatus(status string) bool {
	switch status {
	case DocStatusDraft, DocStatusSent, DocStatusAccepted, DocStatusRejected, DocStatusSuperseded:
		return true
	}
	return false
}

// IsValidRole checks if the author role is valid
func IsValidRole(role string) bool {
	return role == RoleContractor || role == RoleAssociation || role == RolePrivatePerson
}

// IsValidFieldType checks if the field type is valid
func IsValidFieldType(fieldType string) bool {
	switch fieldType {
	case FieldText, FieldNumber, FieldDate, FieldSelect, FieldCheckbox, FieldTextarea:
		return true
	}
	return false
}

// IsValidFolder checks if the attachment folder is valid
func IsValidFolder(folder string) bool {
	switch folder {
	case FolderQuotes, FolderContracts, FolderDrawings, FolderPhotos, FolderOther:
		return true
	}
	return false
}

// DocTypeDisplayName returns the Swedish display name for a document type
func DocTypeDisplayName(docType string) string {
	names := map[string]string{
		DocTypeQuote:       "Offert",
		DocTypeContract:    "Avtal",
		DocTypeChangeOrder: "ÄTA",
	}
	if name, ok := names[docType]; ok {
		return name
	}
	return docType
}

// DocStatusDisplayName returns the Swedish display name for a document status
func DocStatusDisplayName(status string) string {
	names := map[string]string{
		DocStatusDraft:      "Utkast",
		DocStatusSent:       "Skickad",
		DocStatusAccepted:   "Accepterad",
		DocStatusRejected:   "Avböjd",
		DocStatusSuperseded: "Ersatt",
	}
	if name, ok := names[status]; ok {
		return name
	}
	return status
}

// IsTerminal reports whether the document has reached accepted or rejected.
func (d *Document) IsTerminal() bool {
	return d.Status == DocStatusAccepted || d.Status == DocStatusRejected
}

// DownloadURL returns the PDF download route for this document.
func (d *Document) DownloadURL() string {
	return "/api/documents/" + d.ID + "/pdf"
}
