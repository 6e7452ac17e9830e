package documents

import (
	"time"

	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/google/uuid"
)

// DocumentDTO is the API shape of document metadata.
type DocumentDTO struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Type             string     `json:"type"`
	URL              string     `json:"url"`
	SizeBytes        int64      `json:"size_bytes"`
	UploadedByUserID uuid.UUID  `json:"uploaded_by_user_id"`
	MarketID         *uuid.UUID `json:"market_id,omitempty"`
	OrderID          *uuid.UUID `json:"order_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// DocumentPageDTO is a page of documents plus the next cursor.
type DocumentPageDTO struct {
	Documents  []DocumentDTO `json:"documents"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// ToDTO converts a document model to its API shape.
func ToDTO(doc *models.Document) DocumentDTO {
	return DocumentDTO{
		ID:               doc.ID,
		Name:             doc.Name,
		Type:             doc.Type.String(),
		URL:              doc.URL,
		SizeBytes:        doc.SizeBytes,
		UploadedByUserID: doc.UploadedByUserID,
		MarketID:         doc.MarketID,
		OrderID:          doc.OrderID,
		CreatedAt:        doc.CreatedAt,
	}
}

// ToDTOs converts a slice of documents for bulk payloads such as the live
// feed.
func ToDTOs(records []models.Document) []DocumentDTO {
	out := make([]DocumentDTO, 0, len(records))
	for i := range records {
		out = append(out, ToDTO(&records[i]))
	}
	return out
}

// ToPageDTO converts a repository page to its API shape.
func ToPageDTO(page *DocumentPage) DocumentPageDTO {
	out := DocumentPageDTO{
		Documents:  make([]DocumentDTO, 0, len(page.Documents)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Documents {
		out.Documents = append(out.Documents, ToDTO(&page.Documents[i]))
	}
	return out
}
