package commands

import (
	"context"
	"fmt"

	"credhub/internal/config"
	"credhub/internal/services"
	"credhub/internal/session"
)

// StatusCmd prints the session gate state.
type StatusCmd struct{}

func (c *StatusCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.open(ctx)
	if err != nil {
		return err
	}
	gate, snap := globals.gate(ctx, app)
	defer gate.Close()

	printSnapshot(globals, snap)
	return nil
}

func printSnapshot(globals *Globals, snap session.Snapshot) {
	w := globals.out()
	fmt.Fprintf(w, "State:  %s\n", snap.State)
	if snap.Email != "" {
		fmt.Fprintf(w, "User:   %s\n", snap.Email)
	}
	if snap.AuthError != "" {
		fmt.Fprintf(w, "Note:   %s\n", snap.AuthError)
	}

	switch snap.State {
	case session.NeedsDatabaseConfig:
		fmt.Fprintln(w, "\nRun 'credctl db-setup --database-url <url> --api-key <key>' to connect.")
	case session.NeedsAuth:
		fmt.Fprintln(w, "\nRun 'credctl signin --email <email>' or 'credctl signup --email <email>'.")
	case session.NeedsOrgSetup:
		fmt.Fprintln(w, "\nRun 'credctl setup --name <organization>' to create your organization.")
	}
}

type SigninCmd struct {
	Email    string `help:"Account email" required:""`
	Password string `help:"Account password" required:"" env:"CREDHUB_PASSWORD"`
}

func (c *SigninCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.open(ctx)
	if err != nil {
		return err
	}
	if !app.Configured {
		return errDatabaseSetup
	}
	gate, _ := globals.gate(ctx, app)
	defer gate.Close()

	sess, err := gate.SignIn(ctx, c.Email, c.Password)
	if err != nil {
		return fmt.Errorf("sign in failed: %w", err)
	}
	if err := globals.saveToken(sess); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	printSnapshot(globals, gate.Snapshot())
	return nil
}

type SignupCmd struct {
	Email      string `help:"Account email" required:""`
	Password   string `help:"Account password, at least 6 characters" required:"" env:"CREDHUB_PASSWORD"`
	RedirectTo string `help:"Where the confirmation link should send the user"`
}

func (c *SignupCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.open(ctx)
	if err != nil {
		return err
	}
	if !app.Configured {
		return errDatabaseSetup
	}
	gate, _ := globals.gate(ctx, app)
	defer gate.Close()

	result, err := gate.SignUp(ctx, &services.SignUpRequest{Email: c.Email, Password: c.Password, RedirectTo: c.RedirectTo})
	if err != nil {
		return fmt.Errorf("sign up failed: %w", err)
	}
	fmt.Fprintln(globals.out(), result.Message)
	return nil
}

type SignoutCmd struct{}

func (c *SignoutCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.open(ctx)
	if err != nil {
		return err
	}
	gate, _ := globals.gate(ctx, app)
	defer gate.Close()

	if err := gate.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out failed: %w", err)
	}
	if err := globals.clearToken(); err != nil {
		return err
	}
	fmt.Fprintln(globals.out(), "Signed out.")
	return nil
}

// DBSetupCmd writes the two connection slots read at startup.
type DBSetupCmd struct {
	DatabaseURL string `help:"Database connection URL" required:""`
	APIKey      string `help:"Public API key" required:"" name:"api-key"`
	File        string `help:"Connection file to write" type:"path" env:"CREDHUB_CONNECTION_FILE"`
}

func (c *DBSetupCmd) Run(ctx context.Context, globals *Globals) error {
	path := c.File
	if path == "" {
		path = config.DefaultConnectionFilePath()
	}
	if err := config.SaveConnectionFile(path, config.ConnectionFile{DatabaseURL: c.DatabaseURL, APIKey: c.APIKey}); err != nil {
		return fmt.Errorf("failed to save connection: %w", err)
	}
	fmt.Fprintf(globals.out(), "Connection saved to %s\n", path)
	return nil
}

// SetupCmd is the first-run wizard: organization, then an optional first
// location and provider.
type SetupCmd struct {
	Name    string `help:"Organization name" required:""`
	Address string `help:"Organization address"`
	Phone   string `help:"Organization phone"`
	Email   string `help:"Organization email"`

	LocationName        string `help:"First location name"`
	LocationAddress     string `help:"First location address"`
	LocationDepartments int    `help:"Number of departments at the first location" default:"1"`

	ProviderFirstName string `help:"First provider's first name"`
	ProviderLastName  string `help:"First provider's last name"`
	ProviderEmail     string `help:"First provider's email"`
	ProviderSpecialty string `help:"First provider's specialty"`
}

func (c *SetupCmd) request() *services.SetupRequest {
	req := &services.SetupRequest{
		Organization: services.CreateOrganizationRequest{
			Name:    c.Name,
			Address: optional(c.Address),
			Phone:   optional(c.Phone),
			Email:   optional(c.Email),
		},
	}
	if c.LocationName != "" {
		req.Location = &services.SetupLocation{
			Name:        c.LocationName,
			Address:     optional(c.LocationAddress),
			Departments: c.LocationDepartments,
		}
	}
	if c.ProviderFirstName != "" || c.ProviderLastName != "" {
		req.Provider = &services.SetupProvider{
			FirstName: c.ProviderFirstName,
			LastName:  c.ProviderLastName,
			Email:     optional(c.ProviderEmail),
			Specialty: optional(c.ProviderSpecialty),
		}
	}
	return req
}

func (c *SetupCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.open(ctx)
	if err != nil {
		return err
	}
	gate, snap := globals.gate(ctx, app)
	defer gate.Close()

	switch snap.State {
	case session.NeedsDatabaseConfig:
		return errDatabaseSetup
	case session.NeedsAuth, session.Initializing:
		return ErrNotSignedIn
	}

	result, err := app.Setup.Run(ctx, *snap.UserID, c.request())
	w := globals.out()
	if result != nil {
		fmt.Fprintf(w, "Organization: %s (%s)\n", result.Organization.Name, result.Organization.ID)
		if result.Location != nil {
			fmt.Fprintf(w, "Location:     %s (%s)\n", result.Location.Name, result.Location.ID)
		}
		if result.Provider != nil {
			fmt.Fprintf(w, "Provider:     %s %s (%s)\n", result.Provider.FirstName, result.Provider.LastName, result.Provider.ID)
		}
		gate.CompleteSetup()
	}
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	printSnapshot(globals, gate.Snapshot())
	return nil
}
