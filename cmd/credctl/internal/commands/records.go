package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"credhub/internal/models"
	"credhub/internal/services"
	"credhub/internal/viewmodel"

	"github.com/google/uuid"
)

type LocationsCmd struct {
	List   LocationsListCmd   `cmd:"" default:"withargs" help:"List locations"`
	Create LocationsCreateCmd `cmd:"" help:"Add a location"`
}

type LocationsListCmd struct {
	Org string `help:"Only this organization"`
}

func (c *LocationsListCmd) Run(ctx context.Context, globals *Globals) error {
	app, viewer, err := globals.viewer(ctx)
	if err != nil {
		return err
	}
	orgID, err := parseOrg(c.Org)
	if err != nil {
		return err
	}

	locations := viewmodel.NewLocations(app.Locations, viewer, viewmodel.OrgFilter{OrganizationID: orgID})
	if err := locations.Load(ctx); err != nil {
		return fmt.Errorf("failed to load locations: %w", err)
	}
	items := locations.Items()
	if len(items) == 0 {
		fmt.Fprintln(globals.out(), "No locations found.")
		return nil
	}

	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tADDRESS\tDEPARTMENTS\tSTATUS")
	for _, l := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", l.ID, l.Name, deref(l.Address), l.Departments, l.Status)
	}
	w.Flush()
	return nil
}

type LocationsCreateCmd struct {
	Org         string `help:"Organization id; defaults to your membership"`
	Name        string `help:"Location name" required:""`
	Address     string `help:"Street address"`
	Departments int    `help:"Number of departments" default:"1"`
	Status      string `help:"Status" enum:"active,inactive" default:"active"`
}

func (c *LocationsCreateCmd) Run(ctx context.Context, globals *Globals) error {
	app, viewer, err := globals.viewer(ctx)
	if err != nil {
		return err
	}
	locations := viewmodel.NewLocations(app.Locations, viewer, viewmodel.OrgFilter{})
	location, err := locations.Create(ctx, &services.CreateLocationRequest{
		OrganizationID: c.Org,
		Name:           c.Name,
		Address:        optional(c.Address),
		Departments:    c.Departments,
		Status:         c.Status,
	})
	if err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	fmt.Fprintf(globals.out(), "Created location %s (%s)\n", location.Name, location.ID)
	return nil
}

type WorkflowsCmd struct {
	List   WorkflowsListCmd   `cmd:"" default:"withargs" help:"List workflow templates"`
	Create WorkflowsCreateCmd `cmd:"" help:"Add a workflow template"`
}

type WorkflowsListCmd struct {
	Org  string `help:"Only this organization"`
	Type string `help:"Only this type (credentialing, renewal, compliance)"`
}

func (c *WorkflowsListCmd) Run(ctx context.Context, globals *Globals) error {
	app, viewer, err := globals.viewer(ctx)
	if err != nil {
		return err
	}
	orgID, err := parseOrg(c.Org)
	if err != nil {
		return err
	}

	workflows := viewmodel.NewWorkflows(app.Workflows, viewer, viewmodel.OrgFilter{OrganizationID: orgID})
	if err := workflows.Load(ctx); err != nil {
		return fmt.Errorf("failed to load workflows: %w", err)
	}
	items := workflows.Items()
	if c.Type != "" {
		items = viewmodel.WorkflowsByType(items, c.Type)
	}
	if len(items) == 0 {
		fmt.Fprintln(globals.out(), "No workflows found.")
		return nil
	}

	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATUS\tSTEPS")
	for _, wf := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", wf.ID, wf.Name, wf.Type, wf.Status, len(wf.Steps))
	}
	w.Flush()
	return nil
}

type WorkflowsCreateCmd struct {
	Org         string   `help:"Organization id; defaults to your membership"`
	Name        string   `help:"Template name" required:""`
	Description string   `help:"Description"`
	Type        string   `help:"Workflow type" enum:"credentialing,renewal,compliance" required:""`
	Status      string   `help:"Status" enum:"active,draft,archived" default:"draft"`
	Step        []string `help:"Step name, in order; repeat for more steps"`
}

func (c *WorkflowsCreateCmd) steps() []models.WorkflowStep {
	steps := make([]models.WorkflowStep, 0, len(c.Step))
	for i, name := range c.Step {
		steps = append(steps, models.WorkflowStep{"order": i + 1, "name": strings.TrimSpace(name)})
	}
	return steps
}

func (c *WorkflowsCreateCmd) Run(ctx context.Context, globals *Globals) error {
	app, viewer, err := globals.viewer(ctx)
	if err != nil {
		return err
	}
	workflows := viewmodel.NewWorkflows(app.Workflows, viewer, viewmodel.OrgFilter{})
	workflow, err := workflows.Create(ctx, &services.CreateWorkflowRequest{
		OrganizationID: c.Org,
		Name:           c.Name,
		Description:    optional(c.Description),
		Type:           c.Type,
		Status:         c.Status,
		Steps:          c.steps(),
	})
	if err != nil {
		return fmt.Errorf("failed to create workflow: %w", err)
	}
	fmt.Fprintf(globals.out(), "Created workflow %s (%s)\n", workflow.Name, workflow.ID)
	return nil
}

type TasksCmd struct {
	List   TasksListCmd   `cmd:"" default:"withargs" help:"List tasks"`
	Create TasksCreateCmd `cmd:"" help:"Add a task"`
	Update TasksUpdateCmd `cmd:"" help:"Change a task"`
}

type TasksListCmd struct {
	Workflow   string `help:"Only tasks of this workflow"`
	Provider   string `help:"Only tasks for this provider"`
	Status     string `help:"Only this status (pending, in_progress, completed, rejected)"`
	AssignedTo string `help:"Only tasks assigned to this user"`
}

func (c *TasksListCmd) filters() (models.TaskFilters, error) {
	var f models.TaskFilters
	var err error
	if f.WorkflowID, err = parseOptionalID("workflow", c.Workflow); err != nil {
		return f, err
	}
	if f.ProviderID, err = parseOptionalID("provider", c.Provider); err != nil {
		return f, err
	}
	if f.AssignedTo, err = parseOptionalID("assigned-to", c.AssignedTo); err != nil {
		return f, err
	}
	f.Status = optional(c.Status)
	return f, nil
}

func (c *TasksListCmd) Run(ctx context.Context, globals *Globals) error {
	app, viewer, err := globals.viewer(ctx)
	if err != nil {
		return err
	}
	filters, err := c.filters()
	if err != nil {
		return err
	}

	tasks := viewmodel.NewTasks(app.Tasks, viewer, filters)
	if err := tasks.Load(ctx); err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	items := tasks.Items()
	if len(items) == 0 {
		fmt.Fprintln(globals.out(), "No tasks found.")
		return nil
	}

	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE\tWORKFLOW\tPROVIDER")
	for _, t := range items {
		workflow, provider := "-", "-"
		if t.Workflow != nil {
			workflow = t.Workflow.Name
		}
		if t.Provider != nil {
			provider = t.Provider.FirstName + " " + t.Provider.LastName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Priority, dateOrDash(t.DueDate), workflow, provider)
	}
	w.Flush()
	return nil
}

type TasksCreateCmd struct {
	Title       string `help:"Task title" required:""`
	Description string `help:"Description"`
	Workflow    string `help:"Workflow id"`
	Provider    string `help:"Provider id"`
	Status      string `help:"Status" enum:"pending,in_progress,completed,rejected" default:"pending"`
	Priority    string `help:"Priority" enum:"low,medium,high,urgent" default:"medium"`
	Due         string `help:"Due date (YYYY-MM-DD)"`
	AssignedTo  string `help:"Assignee user id"`
}

func (c *TasksCreateCmd) Run(ctx context.Context, globals *Globals) error {
	app, viewer, err := globals.viewer(ctx)
	if err != nil {
		return err
	}
	due, err := optionalDate("due", c.Due)
	if err != nil {
		return err
	}

	tasks := viewmodel.NewTasks(app.Tasks, viewer, models.TaskFilters{})
	task, err := tasks.Create(ctx, &services.CreateTaskRequest{
		WorkflowID:  c.Workflow,
		ProviderID:  c.Provider,
		Title:       c.Title,
		Description: optional(c.Description),
		Status:      c.Status,
		Priority:    c.Priority,
		DueDate:     due,
		AssignedTo:  c.AssignedTo,
	})
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	fmt.Fprintf(globals.out(), "Created task %q (%s)\n", task.Title, task.ID)
	return nil
}

// TasksUpdateCmd changes only the flags that are given.
type TasksUpdateCmd struct {
	ID          string `arg:"" help:"Task id"`
	Title       string `help:"Task title"`
	Description string `help:"Description"`
	Status      string `help:"Status (pending, in_progress, completed, rejected)"`
	Priority    string `help:"Priority (low, medium, high, urgent)"`
	Due         string `help:"Due date (YYYY-MM-DD)"`
	AssignedTo  string `help:"Assignee user id"`
}

func (c *TasksUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	app, viewer, err := globals.viewer(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return fmt.Errorf("%q is not a valid task id", c.ID)
	}
	due, err := optionalDate("due", c.Due)
	if err != nil {
		return err
	}

	tasks := viewmodel.NewTasks(app.Tasks, viewer, models.TaskFilters{})
	task, err := tasks.Update(ctx, id, &services.UpdateTaskRequest{
		Title:       optional(c.Title),
		Description: optional(c.Description),
		Status:      optional(c.Status),
		Priority:    optional(c.Priority),
		DueDate:     due,
		AssignedTo:  optional(c.AssignedTo),
	})
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	fmt.Fprintf(globals.out(), "Updated task %q: %s\n", task.Title, task.Status)
	return nil
}
