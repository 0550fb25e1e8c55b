package models

import (
	"time"

	"github.com/google/uuid"
)

type Provider struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	OrganizationID uuid.UUID     `json:"organization_id" db:"organization_id"`
	LocationID     *uuid.UUID    `json:"location_id" db:"location_id"`
	FirstName      string        `json:"first_name" db:"first_name"`
	LastName       string        `json:"last_name" db:"last_name"`
	Email          *string       `json:"email" db:"email"`
	Phone          *string       `json:"phone" db:"phone"`
	Specialty      *string       `json:"specialty" db:"specialty"`
	LicenseNumber  *string       `json:"license_number" db:"license_number"`
	LicenseExpiry  *Date         `json:"license_expiry" db:"license_expiry"`
	Status         string        `json:"status" db:"status"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
	Organization   *Organization `json:"organization,omitempty" db:"-"`
	Location       *Location     `json:"location,omitempty" db:"-"`
}

const (
	ProviderStatusActive    = "active"
	ProviderStatusPending   = "pending"
	ProviderStatusExpired   = "expired"
	ProviderStatusSuspended = "suspended"
)

func (p *Provider) FullName() string {
	return p.FirstName + " " + p.LastName
}

// ProviderPatch carries only the fields to change. A LocationID of uuid.Nil,
// an empty string or a zero LicenseExpiry clears the column.
type ProviderPatch struct {
	LocationID    *uuid.UUID `json:"location_id,omitempty"`
	FirstName     *string    `json:"first_name,omitempty"`
	LastName      *string    `json:"last_name,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Specialty     *string    `json:"specialty,omitempty"`
	LicenseNumber *string    `json:"license_number,omitempty"`
	LicenseExpiry *Date      `json:"license_expiry,omitempty"`
	Status        *string    `json:"status,omitempty"`
}

// Assignment is one column = value pair of an UPDATE.
type Assignment struct {
	Column string
	Value  any
}

// Assignments lists the patched columns in table order.
func (p *ProviderPatch) Assignments() []Assignment {
	var out []Assignment
	if p.LocationID != nil {
		if *p.LocationID == uuid.Nil {
			out = append(out, Assignment{"location_id", nil})
		} else {
			out = append(out, Assignment{"location_id", *p.LocationID})
		}
	}
	if p.FirstName != nil {
		out = append(out, Assignment{"first_name", *p.FirstName})
	}
	if p.LastName != nil {
		out = append(out, Assignment{"last_name", *p.LastName})
	}
	if p.Email != nil {
		out = append(out, Assignment{"email", optionalText(*p.Email)})
	}
	if p.Phone != nil {
		out = append(out, Assignment{"phone", optionalText(*p.Phone)})
	}
	if p.Specialty != nil {
		out = append(out, Assignment{"specialty", optionalText(*p.Specialty)})
	}
	if p.LicenseNumber != nil {
		out = append(out, Assignment{"license_number", optionalText(*p.LicenseNumber)})
	}
	if p.LicenseExpiry != nil {
		out = append(out, Assignment{"license_expiry", optionalDate(*p.LicenseExpiry)})
	}
	if p.Status != nil {
		out = append(out, Assignment{"status", *p.Status})
	}
	return out
}

func optionalText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func optionalDate(d Date) any {
	if d.IsZero() {
		return nil
	}
	return d
}
