package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"credhub/internal/common"
	"credhub/internal/models"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

type RosterService interface {
	// ProviderRosterPDF renders the visible providers as a landscape A4 table.
	ProviderRosterPDF(ctx context.Context, viewerID, organizationID *uuid.UUID) ([]byte, error)
}

type rosterService struct {
	providers ProviderService
	now       func() time.Time
}

func NewRosterService(providers ProviderService) RosterService {
	return &rosterService{providers: providers, now: time.Now}
}

type rosterColumn struct {
	title string
	width float64
	value func(p *models.Provider) string
}

var rosterColumns = []rosterColumn{
	{"Name", 55, func(p *models.Provider) string { return p.LastName + ", " + p.FirstName }},
	{"Specialty", 45, func(p *models.Provider) string { return common.SafeString(p.Specialty) }},
	{"NPI", 35, func(p *models.Provider) string { return common.SafeString(p.LicenseNumber) }},
	{"License Expiry", 32, func(p *models.Provider) string {
		if p.LicenseExpiry == nil {
			return ""
		}
		return p.LicenseExpiry.String()
	}},
	{"Location", 50, func(p *models.Provider) string {
		if p.Location == nil {
			return ""
		}
		return p.Location.Name
	}},
	{"Status", 25, func(p *models.Provider) string { return p.Status }},
}

func (s *rosterService) ProviderRosterPDF(ctx context.Context, viewerID, organizationID *uuid.UUID) ([]byte, error) {
	providers, err := s.providers.List(ctx, viewerID, organizationID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Provider Roster", true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(18, 40, 66)
		pdf.SetTextColor(255, 255, 255)
		for _, col := range rosterColumns {
			pdf.CellFormat(col.width, 8, col.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 9)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Provider Roster", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s, %d providers", s.now().Format("2006-01-02 15:04"), len(providers)), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	header()

	_, pageHeight := pdf.GetPageSize()
	for i, p := range providers {
		if pdf.GetY()+7 > pageHeight-20 {
			pdf.AddPage()
			header()
		}
		fill := i%2 == 1
		pdf.SetFillColor(235, 240, 245)
		for _, col := range rosterColumns {
			pdf.CellFormat(col.width, 7, tr(col.value(p)), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render roster: %w", err)
	}
	return buf.Bytes(), nil
}
