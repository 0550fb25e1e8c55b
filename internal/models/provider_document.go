package models

import (
	"time"

	"github.com/google/uuid"
)

// ProviderDocument is a credential file stored in object storage.
type ProviderDocument struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID uuid.UUID  `json:"organization_id" db:"organization_id"`
	ProviderID     uuid.UUID  `json:"provider_id" db:"provider_id"`
	Name           string     `json:"name" db:"name"`
	ObjectKey      string     `json:"object_key" db:"object_key"`
	ContentType    string     `json:"content_type" db:"content_type"`
	Size           int64      `json:"size" db:"size"`
	UploadedBy     *uuid.UUID `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	URL            string     `json:"url,omitempty" db:"-"`
}
