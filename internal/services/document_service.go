package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"credhub/internal/common"
	"credhub/internal/models"
	"credhub/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const documentURLExpiry = 15 * time.Minute

// ErrStorageNotConfigured is returned when no object store is available.
var ErrStorageNotConfigured = errors.New("document storage is not configured")

type DocumentService interface {
	Upload(ctx context.Context, actorID *uuid.UUID, req *UploadDocumentRequest) (*models.ProviderDocument, error)
	// List returns the provider's documents, each with a short-lived
	// download URL. A provider outside the viewer's organizations is not
	// found.
	List(ctx context.Context, viewerID *uuid.UUID, providerID uuid.UUID) ([]*models.ProviderDocument, error)
}

type UploadDocumentRequest struct {
	ProviderID  uuid.UUID `validate:"required"`
	Name        string    `validate:"required,max=255"`
	ContentType string
	Size        int64     `validate:"gt=0"`
	Body        io.Reader `validate:"required"`
}

type documentService struct {
	documentRepo repositories.DocumentRepository
	providerRepo repositories.ProviderRepository
	store        ObjectStore
	bucket       string
	effects      WriteEffects
	logger       *zap.Logger
}

func NewDocumentService(documentRepo repositories.DocumentRepository, providerRepo repositories.ProviderRepository, store ObjectStore, bucket string, effects WriteEffects, logger *zap.Logger) DocumentService {
	return &documentService{
		documentRepo: documentRepo,
		providerRepo: providerRepo,
		store:        store,
		bucket:       bucket,
		effects:      effects,
		logger:       logger,
	}
}

func documentKey(providerID uuid.UUID, name string) string {
	clean := strings.ReplaceAll(path.Base(name), " ", "_")
	return fmt.Sprintf("providers/%s/%s-%s", providerID, uuid.NewString(), clean)
}

func (s *documentService) Upload(ctx context.Context, actorID *uuid.UUID, req *UploadDocumentRequest) (*models.ProviderDocument, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, ErrStorageNotConfigured
	}

	provider, err := s.providerRepo.GetByID(ctx, req.ProviderID, actorID)
	if err != nil {
		return nil, err
	}

	key := documentKey(provider.ID, req.Name)
	if err := s.store.Upload(ctx, s.bucket, key, req.Body, req.Size, req.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc, err := s.documentRepo.Create(ctx, &models.ProviderDocument{
		OrganizationID: provider.OrganizationID,
		ProviderID:     provider.ID,
		Name:           req.Name,
		ObjectKey:      key,
		ContentType:    req.ContentType,
		Size:           req.Size,
		UploadedBy:     actorID,
	})
	if err != nil {
		return nil, err
	}
	s.effects.created(ctx, doc.OrganizationID, "provider_documents", doc.ID.String(), actorID, doc)
	s.attachURL(ctx, doc)
	return doc, nil
}

func (s *documentService) List(ctx context.Context, viewerID *uuid.UUID, providerID uuid.UUID) ([]*models.ProviderDocument, error) {
	if viewerID != nil {
		if _, err := s.providerRepo.GetByID(ctx, providerID, viewerID); err != nil {
			if isNotConfigured(err) {
				return []*models.ProviderDocument{}, nil
			}
			return nil, err
		}
	}
	docs, err := s.documentRepo.ListByProvider(ctx, providerID, viewerID)
	if err != nil {
		if isNotConfigured(err) {
			return []*models.ProviderDocument{}, nil
		}
		return nil, err
	}
	for _, doc := range docs {
		s.attachURL(ctx, doc)
	}
	return docs, nil
}

func (s *documentService) attachURL(ctx context.Context, doc *models.ProviderDocument) {
	if s.store == nil {
		return
	}
	url, err := s.store.PresignedURL(ctx, s.bucket, doc.ObjectKey, documentURLExpiry)
	if err != nil {
		s.logger.Warn("presign document failed", zap.String("object_key", doc.ObjectKey), zap.Error(err))
		return
	}
	doc.URL = url
}
