package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"credhub/internal/common"
	"credhub/internal/services"

	"github.com/labstack/echo/v4"
)

const maxDocumentSize = 20 * 1024 * 1024

var allowedDocumentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// ProviderHandlers handles provider records, their documents and the roster
// export.
type ProviderHandlers struct {
	providerService services.ProviderService
	documentService services.DocumentService
	rosterService   services.RosterService
}

func NewProviderHandlers(providerService services.ProviderService, documentService services.DocumentService, rosterService services.RosterService) *ProviderHandlers {
	return &ProviderHandlers{
		providerService: providerService,
		documentService: documentService,
		rosterService:   rosterService,
	}
}

// ListProviders godoc
// @Summary      List providers by last name with their organization and location
// @Tags         providers
// @Produce      json
// @Security     BearerAuth
// @Param        organization_id query string false "organization filter"
// @Success      200 {array} models.Provider
// @Router       /providers [get]
func (h *ProviderHandlers) ListProviders(c echo.Context) error {
	orgID, err := requestedOrganization(c)
	if err != nil {
		return common.SendValidationError(c, "organization_id", err.Error())
	}

	providers, err := h.providerService.List(c.Request().Context(), viewerID(c), orgID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, providers)
}

// CreateProvider godoc
// @Summary      Create a provider
// @Tags         providers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body services.CreateProviderRequest true "provider"
// @Success      201 {object} models.Provider
// @Failure      400 {object} common.ErrorResponse
// @Failure      422 {object} common.ErrorResponse
// @Router       /providers [post]
func (h *ProviderHandlers) CreateProvider(c echo.Context) error {
	var req services.CreateProviderRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	req.OrganizationID = organizationFallback(c, req.OrganizationID)

	provider, err := h.providerService.Create(c.Request().Context(), viewerID(c), &req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusCreated, provider)
}

// UpdateProvider godoc
// @Summary      Patch a provider
// @Description  Only the fields present in the body change.
// @Tags         providers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "provider id"
// @Param        request body services.UpdateProviderRequest true "changed fields"
// @Success      200 {object} models.Provider
// @Failure      404 {object} common.ErrorResponse
// @Router       /providers/{id} [patch]
func (h *ProviderHandlers) UpdateProvider(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req services.UpdateProviderRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	provider, err := h.providerService.Update(c.Request().Context(), viewerID(c), id, &req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, provider)
}

// ExportRoster godoc
// @Summary      Provider roster as PDF
// @Tags         providers
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        organization_id query string false "organization filter"
// @Success      200 {file} binary
// @Router       /providers/roster.pdf [get]
func (h *ProviderHandlers) ExportRoster(c echo.Context) error {
	orgID, err := requestedOrganization(c)
	if err != nil {
		return common.SendValidationError(c, "organization_id", err.Error())
	}

	pdf, err := h.rosterService.ProviderRosterPDF(c.Request().Context(), viewerID(c), orgID)
	if err != nil {
		return sendError(c, err)
	}

	filename := fmt.Sprintf("provider-roster-%s.pdf", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// UploadDocument godoc
// @Summary      Attach a credential document to a provider
// @Tags         providers
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "provider id"
// @Param        file formData file true "PDF, JPEG or PNG up to 20MB"
// @Success      201 {object} models.ProviderDocument
// @Failure      400 {object} common.ErrorResponse
// @Failure      503 {object} common.ErrorResponse
// @Router       /providers/{id}/documents [post]
func (h *ProviderHandlers) UploadDocument(c echo.Context) error {
	providerID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "Document file is required")
	}
	if file.Size > maxDocumentSize {
		return common.SendValidationError(c, "file", "File size exceeds maximum limit of 20MB")
	}

	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to open document")
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return common.SendServerError(c, "Failed to read document")
	}
	contentType := http.DetectContentType(head[:n])
	if !allowedDocumentTypes[contentType] {
		return common.SendValidationError(c, "file", "Only PDF, JPEG and PNG documents are allowed")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return common.SendServerError(c, "Failed to read document")
	}

	doc, err := h.documentService.Upload(c.Request().Context(), viewerID(c), &services.UploadDocumentRequest{
		ProviderID:  providerID,
		Name:        file.Filename,
		ContentType: contentType,
		Size:        file.Size,
		Body:        src,
	})
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// ListDocuments godoc
// @Summary      A provider's documents with download links
// @Tags         providers
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "provider id"
// @Success      200 {array} models.ProviderDocument
// @Router       /providers/{id}/documents [get]
func (h *ProviderHandlers) ListDocuments(c echo.Context) error {
	providerID, err := pathUUID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	docs, err := h.documentService.List(c.Request().Context(), viewerID(c), providerID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}
