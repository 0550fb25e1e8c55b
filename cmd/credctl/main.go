package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"credhub/cmd/credctl/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Status      commands.StatusCmd      `cmd:"" help:"Show which step the dashboard is on"`
		Signin      commands.SigninCmd      `cmd:"" help:"Sign in with email and password"`
		Signup      commands.SignupCmd      `cmd:"" help:"Register a new user"`
		Signout     commands.SignoutCmd     `cmd:"" help:"End the stored session"`
		Setup       commands.SetupCmd       `cmd:"" help:"Create your organization (first-run wizard)"`
		DBSetup     commands.DBSetupCmd     `cmd:"" name:"db-setup" help:"Save the database connection parameters"`
		Providers   commands.ProvidersCmd   `cmd:"" help:"Manage providers"`
		Locations   commands.LocationsCmd   `cmd:"" help:"Manage locations"`
		Workflows   commands.WorkflowsCmd   `cmd:"" help:"Manage workflow templates"`
		Tasks       commands.TasksCmd       `cmd:"" help:"Manage tasks"`
		Dashboard   commands.DashboardCmd   `cmd:"" help:"Show the dashboard counts"`
		Diagnostics commands.DiagnosticsCmd `cmd:"" help:"Run the database self-test"`

		Debug     bool   `help:"Enable debug logging."`
		TokenFile string `help:"Where the session token is kept." type:"path" env:"CREDHUB_TOKEN_FILE"`
		Version   kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("credctl"),
		kong.Description("Provider credentialing administration."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	globals := &commands.Globals{Debug: cli.Debug, Version: version, TokenFile: cli.TokenFile}
	defer globals.Close()

	err := cmd.Run(globals)
	cmd.FatalIfErrorf(err)
}
