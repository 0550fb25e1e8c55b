package repositories

import (
	"context"

	"credhub/internal/models"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *models.ProviderDocument) (*models.ProviderDocument, error)
	// ListByProvider returns nothing for a provider outside the viewer's
	// organizations. A nil viewer is not scoped.
	ListByProvider(ctx context.Context, providerID uuid.UUID, viewerID *uuid.UUID) ([]*models.ProviderDocument, error)
}

type documentRepo struct {
	db DBTX
}

func NewDocumentRepo(db DBTX) DocumentRepository {
	return &documentRepo{db: db}
}

const documentColumns = `id, organization_id, provider_id, name, object_key, content_type, size, uploaded_by, created_at`

func (r *documentRepo) Create(ctx context.Context, doc *models.ProviderDocument) (*models.ProviderDocument, error) {
	query := `
		INSERT INTO provider_documents (organization_id, provider_id, name, object_key, content_type, size, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING ` + documentColumns

	created := &models.ProviderDocument{}
	err := r.db.QueryRow(ctx, query,
		doc.OrganizationID, doc.ProviderID, doc.Name, doc.ObjectKey, doc.ContentType, doc.Size, doc.UploadedBy,
	).Scan(&created.ID, &created.OrganizationID, &created.ProviderID, &created.Name, &created.ObjectKey,
		&created.ContentType, &created.Size, &created.UploadedBy, &created.CreatedAt)
	if err != nil {
		return nil, mapError("create provider document", err)
	}
	return created, nil
}

func (r *documentRepo) ListByProvider(ctx context.Context, providerID uuid.UUID, viewerID *uuid.UUID) ([]*models.ProviderDocument, error) {
	conds, args := scopeClause("d", models.Scope{ViewerID: viewerID}, []any{providerID})
	conds = append([]string{"d.provider_id = $1"}, conds...)
	query := `SELECT ` + documentColumns + ` FROM provider_documents d` + whereClause(conds) + ` ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list provider documents", err)
	}
	defer rows.Close()

	docs := []*models.ProviderDocument{}
	for rows.Next() {
		d := &models.ProviderDocument{}
		if err := rows.Scan(&d.ID, &d.OrganizationID, &d.ProviderID, &d.Name, &d.ObjectKey,
			&d.ContentType, &d.Size, &d.UploadedBy, &d.CreatedAt); err != nil {
			return nil, mapError("list provider documents", err)
		}
		docs = append(docs, d)
	}
	return docs, mapError("list provider documents", rows.Err())
}
