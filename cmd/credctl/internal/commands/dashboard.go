package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"credhub/internal/viewmodel"
)

type DashboardCmd struct {
	Org string `help:"Only this organization"`
}

func (c *DashboardCmd) Run(ctx context.Context, globals *Globals) error {
	app, viewerID, err := globals.viewer(ctx)
	if err != nil {
		return err
	}
	orgID, err := parseOrg(c.Org)
	if err != nil {
		return err
	}

	view := viewmodel.NewStatsView(app.Dashboard, viewerID, orgID)
	if err := view.Refetch(ctx); err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}
	stats := view.Snapshot().Stats

	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total providers\t%d\n", stats.TotalProviders)
	fmt.Fprintf(w, "Active workflows\t%d\n", stats.ActiveWorkflows)
	fmt.Fprintf(w, "Completed tasks\t%d\n", stats.CompletedTasks)
	fmt.Fprintf(w, "Pending tasks\t%d\n", stats.PendingTasks)
	w.Flush()
	return nil
}

type DiagnosticsCmd struct{}

func (c *DiagnosticsCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.open(ctx)
	if err != nil {
		return err
	}
	report, err := app.Diagnostics.Run(ctx)
	if err != nil {
		return fmt.Errorf("diagnostics failed: %w", err)
	}

	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Connection\t%s\t%s\n", okMark(report.Connection.OK), report.Connection.Message)

	fmt.Fprintln(w, "\nTABLE\tEXISTS\tROWS\tERROR")
	for _, t := range report.Tables {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.Table, okMark(t.Exists), report.Counts[t.Table], t.Error)
	}

	fmt.Fprintln(w, "\nRELATIONSHIP\tOK\tROWS\tMESSAGE")
	for _, r := range report.Relationships {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Name, okMark(r.OK), r.Rows, r.Message)
	}
	w.Flush()

	if !report.Healthy {
		return fmt.Errorf("database self-test reported problems")
	}
	fmt.Fprintln(globals.out(), "\nAll checks passed.")
	return nil
}

func okMark(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
