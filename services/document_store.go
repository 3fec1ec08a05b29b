package services

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"bygg_flow_app_go/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// versionSuffixRegex matches a trailing " (v N)" version marker on titles.
var versionSuffixRegex = regexp.MustCompile(`\s*\(v \d+\)$`)

// DocumentStore persists documents and broadcasts change notifications.
// Writes are whole-row, last write wins; subscribers are told that something
// changed, never what, and are expected to re-read.
type DocumentStore struct {
	db *gorm.DB

	mu      sync.Mutex
	subs    map[int]func()
	nextSub int
}

// Docs is the global document store instance
var Docs *DocumentStore

// InitializeDocumentStore sets up the global store over the given database
// handle.
func InitializeDocumentStore(db *gorm.DB) {
	Docs = NewDocumentStore(db)
}

// NewDocumentStore creates a store backed by the given database handle.
func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db, subs: make(map[int]func())}
}

// List returns all documents, newest updatedAt first. Every record is
// re-normalized on the way out so callers never see a raw row.
func (s *DocumentStore) List() ([]models.Document, error) {
	var docs []models.Document
	if err := s.db.Order("updated_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	for i := range docs {
		NormalizeStored(&docs[i])
	}
	return docs, nil
}

// ListByRequest returns the documents owned by a request, newest first.
func (s *DocumentStore) ListByRequest(requestID string) ([]models.Document, error) {
	var docs []models.Document
	if err := s.db.Where("request_id = ?", requestID).Order("updated_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents for request %s: %w", requestID, err)
	}
	for i := range docs {
		NormalizeStored(&docs[i])
	}
	return docs, nil
}

// GetByID returns a single document, or nil when it does not exist.
func (s *DocumentStore) GetByID(id string) (*models.Document, error) {
	var doc models.Document
	err := s.db.First(&doc, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document %s: %w", id, err)
	}
	return NormalizeStored(&doc), nil
}

// Save normalizes and persists a document: refId is validated or assigned,
// updatedAt is stamped, and status timestamps are reconciled against the
// previously stored version of the same row. Returns the full updated list
// and notifies subscribers.
func (s *DocumentStore) Save(doc *models.Document) ([]models.Document, error) {
	NormalizeStored(doc)

	if !ValidateRefID(doc.RefID) {
		doc.RefID = BuildRefID(RefKindDocument)
	}

	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	previous, err := s.GetByID(doc.ID)
	if err != nil {
		return nil, err
	}
	reconcileStatusTimestamps(doc, previous, now)

	if err := s.db.Save(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to save document %s: %w", doc.ID, err)
	}

	list, err := s.List()
	if err != nil {
		return nil, err
	}
	s.notify()
	return list, nil
}

// CreateFromTemplate builds a fresh draft for the request. The draft is not
// persisted; call Save.
func (s *DocumentStore) CreateFromTemplate(request *models.Request, docType, createdByRole, createdByLabel string) *models.Document {
	return NewDocumentFromTemplate(request, docType, createdByRole, createdByLabel)
}

// CreateNextVersion produces the next-version draft of a document and, as a
// side effect, persists both the superseded predecessor and the new draft in
// one transaction. Returns nil when the source document does not exist.
func (s *DocumentStore) CreateNextVersion(documentID string) (*models.Document, error) {
	source, err := s.GetByID(documentID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, nil
	}

	now := time.Now()
	next := *source
	next.ID = uuid.New().String()
	next.RefID = BuildRefID(RefKindDocument)
	next.Version = source.Version + 1
	next.Status = models.DocStatusDraft
	next.SentAt = nil
	next.AcceptedAt = nil
	next.RejectedAt = nil
	next.CreatedAt = now
	next.UpdatedAt = now
	next.RenderedHTML = ""
	next.PDFDataURL = ""
	next.Title = fmt.Sprintf("%s (v %d)", versionSuffixRegex.ReplaceAllString(source.Title, ""), next.Version)

	source.Status = models.DocStatusSuperseded
	source.UpdatedAt = now

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(source).Error; err != nil {
			return fmt.Errorf("failed to supersede document %s: %w", source.ID, err)
		}
		if err := tx.Create(&next).Error; err != nil {
			return fmt.Errorf("failed to create version %d: %w", next.Version, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify()
	return &next, nil
}

// Subscribe registers a no-argument callback fired after every persisted
// mutation. The returned function unregisters it. Delivery is advisory:
// callbacks run on their own goroutines, events are not coalesced, and
// subscribers must re-read full state rather than expect a diff.
func (s *DocumentStore) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *DocumentStore) notify() {
	s.mu.Lock()
	callbacks := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		callbacks = append(callbacks, fn)
	}
	s.mu.Unlock()

	for _, fn := range callbacks {
		go fn()
	}
}

// reconcileStatusTimestamps backfills and clears the status timestamps so
// the stored record always satisfies the status invariants:
//   - sent requires sentAt (defaulted to now)
//   - accepted/rejected require a pre-existing sentAt (backfilled from
//     createdAt) and exactly one terminal timestamp
//   - draft clears both terminal timestamps
func reconcileStatusTimestamps(doc *models.Document, previous *models.Document, now time.Time) {
	if previous != nil {
		if doc.SentAt == nil {
			doc.SentAt = previous.SentAt
		}
		if doc.AcceptedAt == nil {
			doc.AcceptedAt = previous.AcceptedAt
		}
		if doc.RejectedAt == nil {
			doc.RejectedAt = previous.RejectedAt
		}
	}

	switch doc.Status {
	case models.DocStatusDraft:
		doc.AcceptedAt = nil
		doc.RejectedAt = nil
	case models.DocStatusSent:
		if doc.SentAt == nil {
			t := now
			doc.SentAt = &t
		}
		doc.AcceptedAt = nil
		doc.RejectedAt = nil
	case models.DocStatusAccepted:
		if doc.SentAt == nil {
			t := doc.CreatedAt
			doc.SentAt = &t
		}
		if doc.AcceptedAt == nil {
			t := now
			doc.AcceptedAt = &t
		}
		doc.RejectedAt = nil
	case models.DocStatusRejected:
		if doc.SentAt == nil {
			t := doc.CreatedAt
			doc.SentAt = &t
		}
		if doc.RejectedAt == nil {
			t := now
			doc.RejectedAt = &t
		}
		doc.AcceptedAt = nil
	}
}
