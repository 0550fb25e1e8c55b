package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"credhub/internal/models"
	"credhub/internal/services"
	"credhub/internal/viewmodel"

	"github.com/google/uuid"
)

type ProvidersCmd struct {
	List   ProvidersListCmd   `cmd:"" default:"withargs" help:"List providers"`
	Create ProvidersCreateCmd `cmd:"" help:"Add a provider"`
	Update ProvidersUpdateCmd `cmd:"" help:"Change a provider"`
}

type ProvidersListCmd struct {
	Org       string `help:"Only this organization"`
	Query     string `help:"Search names, email, phone, license number, specialty and location" short:"q"`
	Specialty string `help:"Only this specialty"`
	Location  string `help:"Only this location id"`
	Tab       string `help:"Which tab to show" enum:"all,active,inactive" default:"all"`
}

func (c *ProvidersListCmd) Run(ctx context.Context, globals *Globals) error {
	app, viewer, err := globals.viewer(ctx)
	if err != nil {
		return err
	}
	orgID, err := parseOrg(c.Org)
	if err != nil {
		return err
	}
	locationID, err := parseOptionalID("location", c.Location)
	if err != nil {
		return err
	}

	filter := viewmodel.OrgFilter{OrganizationID: orgID}
	providers := viewmodel.NewProviders(app.Providers, viewer, filter)
	locations := viewmodel.NewLocations(app.Locations, viewer, filter)
	if err := providers.Load(ctx); err != nil {
		return fmt.Errorf("failed to load providers: %w", err)
	}
	// Location names only feed the search; a failed load leaves them blank.
	_ = locations.Load(ctx)

	names := locations.Names()
	shown := viewmodel.FilterProviders(providers.Items(), viewmodel.ProviderFilter{
		Query:      c.Query,
		Specialty:  c.Specialty,
		LocationID: locationID,
	}, names)
	if c.Tab != "all" {
		shown = viewmodel.PartitionProviders(shown, viewmodel.ProviderTab(c.Tab))
	}

	if len(shown) == 0 {
		fmt.Fprintln(globals.out(), "No providers found.")
		return nil
	}
	printProviders(globals, shown, names)
	return nil
}

func printProviders(globals *Globals, providers []*models.Provider, locationNames map[uuid.UUID]string) {
	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tNPI\tSPECIALTY\tLOCATION\tSTATUS\tLICENSE EXPIRY")
	for _, p := range providers {
		location := "-"
		if p.LocationID != nil {
			if name, ok := locationNames[*p.LocationID]; ok {
				location = name
			}
		}
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.FirstName, p.LastName, deref(p.LicenseNumber), deref(p.Specialty), location, p.Status, dateOrDash(p.LicenseExpiry))
	}
	w.Flush()
}

type ProvidersCreateCmd struct {
	Org           string `help:"Organization id; defaults to your membership"`
	Location      string `help:"Location id"`
	FirstName     string `help:"First name" required:""`
	LastName      string `help:"Last name" required:""`
	Email         string `help:"Email"`
	Phone         string `help:"Phone"`
	Specialty     string `help:"Specialty"`
	License       string `help:"License number"`
	LicenseExpiry string `help:"License expiry (YYYY-MM-DD)"`
	Status        string `help:"Status" enum:"active,pending,expired,suspended" default:"pending"`
}

func (c *ProvidersCreateCmd) Run(ctx context.Context, globals *Globals) error {
	app, viewer, err := globals.viewer(ctx)
	if err != nil {
		return err
	}
	expiry, err := optionalDate("license-expiry", c.LicenseExpiry)
	if err != nil {
		return err
	}

	providers := viewmodel.NewProviders(app.Providers, viewer, viewmodel.OrgFilter{})
	provider, err := providers.Create(ctx, &services.CreateProviderRequest{
		OrganizationID: c.Org,
		LocationID:     c.Location,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          optional(c.Email),
		Phone:          optional(c.Phone),
		Specialty:      optional(c.Specialty),
		LicenseNumber:  optional(c.License),
		LicenseExpiry:  expiry,
		Status:         c.Status,
	})
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}
	fmt.Fprintf(globals.out(), "Created provider %s %s (%s)\n", provider.FirstName, provider.LastName, provider.ID)
	return nil
}

// ProvidersUpdateCmd changes only the flags that are given.
type ProvidersUpdateCmd struct {
	ID            string `arg:"" help:"Provider id"`
	Location      string `help:"Location id"`
	ClearLocation bool   `help:"Remove the provider's location"`
	FirstName     string `help:"First name"`
	LastName      string `help:"Last name"`
	Email         string `help:"Email"`
	Phone         string `help:"Phone"`
	Specialty     string `help:"Specialty"`
	License       string `help:"License number"`
	LicenseExpiry string `help:"License expiry (YYYY-MM-DD)"`
	Status        string `help:"Status (active, pending, expired, suspended)"`
}

func (c *ProvidersUpdateCmd) request() (*services.UpdateProviderRequest, error) {
	expiry, err := optionalDate("license-expiry", c.LicenseExpiry)
	if err != nil {
		return nil, err
	}
	req := &services.UpdateProviderRequest{
		FirstName:     optional(c.FirstName),
		LastName:      optional(c.LastName),
		Email:         optional(c.Email),
		Phone:         optional(c.Phone),
		Specialty:     optional(c.Specialty),
		LicenseNumber: optional(c.License),
		LicenseExpiry: expiry,
		Status:        optional(c.Status),
		LocationID:    optional(c.Location),
	}
	if c.ClearLocation {
		empty := ""
		req.LocationID = &empty
	}
	return req, nil
}

func (c *ProvidersUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	app, viewer, err := globals.viewer(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return fmt.Errorf("%q is not a valid provider id", c.ID)
	}
	req, err := c.request()
	if err != nil {
		return err
	}

	providers := viewmodel.NewProviders(app.Providers, viewer, viewmodel.OrgFilter{})
	provider, err := providers.Update(ctx, id, req)
	if err != nil {
		return fmt.Errorf("failed to update provider: %w", err)
	}
	fmt.Fprintf(globals.out(), "Updated provider %s %s (%s)\n", provider.FirstName, provider.LastName, provider.ID)
	return nil
}
