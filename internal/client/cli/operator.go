package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/hiredesk/internal/catalog"
	"github.com/dmitrijs2005/hiredesk/internal/client/client"
	"github.com/dmitrijs2005/hiredesk/internal/client/models"
	"github.com/dmitrijs2005/hiredesk/internal/client/services"
	"github.com/dmitrijs2005/hiredesk/internal/validation"
)

// openDashboard replaces any previous dashboard and loads the list.
func (a *App) openDashboard(ctx context.Context) error {
	if a.dashboard != nil {
		a.dashboard.Close()
	}
	a.dashboard = services.NewDashboard(a.client, a.store, a, a.logger)
	err := a.dashboard.Mount(ctx)
	a.printBanner()
	return err
}

// ensureDashboard mounts a dashboard on first use after a restart with a
// stored session.
func (a *App) ensureDashboard(ctx context.Context) error {
	if a.dashboard != nil {
		return nil
	}
	return a.openDashboard(ctx)
}

func (a *App) printBanner() {
	if a.dashboard == nil {
		return
	}
	b := a.dashboard.Banner()
	switch b.Kind {
	case services.BannerSuccess:
		a.println(b.Message)
	case services.BannerError:
		a.println("Error:", b.Message)
	}
}

func (a *App) List(ctx context.Context) error {
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}
	a.printApplications(a.dashboard.Applications())
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}
	err := a.dashboard.Refresh(ctx)
	a.printBanner()
	if err != nil {
		return err
	}
	a.printApplications(a.dashboard.Applications())
	return nil
}

func (a *App) printApplications(apps []models.Application) {
	if len(apps) == 0 {
		a.println("No applications.")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPROJECT\tAGE\tSTATUS\tSUBMITTED")
	for _, app := range apps {
		submitted := "-"
		if app.CreatedAt != nil {
			submitted = app.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			app.ID, app.FullName(), app.Email, app.ProjectAppliedFor, app.Age, app.Status.Normalize(), submitted)
	}
	_ = tw.Flush()
}

// Add prompts for a new application, including its initial status.
func (a *App) Add(ctx context.Context) error {
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}
	app, err := a.promptApplication(models.Application{}, true)
	if err != nil {
		return err
	}
	return a.save(ctx, "", app)
}

// Edit prompts for every field with the current value as default.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.requireID("edit", args)
	if err != nil {
		return err
	}
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}
	current, ok := a.dashboard.Application(id)
	if !ok {
		a.println("No application with id", id)
		return services.ErrUnknownApplication
	}
	app, err := a.promptApplication(current, false)
	if err != nil {
		return err
	}
	return a.save(ctx, id, app)
}

func (a *App) save(ctx context.Context, id string, app models.Application) error {
	err := a.dashboard.Save(ctx, id, app)
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		a.println("Please correct the following:")
		for _, f := range fe.Fields() {
			a.printf("  - %s\n", fe[f])
		}
		return err
	}
	a.printBanner()
	return err
}

func (a *App) promptApplication(current models.Application, withStatus bool) (models.Application, error) {
	app := current
	text := []struct {
		prompt string
		dst    *string
	}{
		{"First name", &app.FirstName},
		{"Last name", &app.LastName},
		{"Degree", &app.Degree},
		{"Relevant experience", &app.RelevantExperience},
		{"Email", &app.Email},
	}
	for _, f := range text {
		v, err := GetTextWithDefault(a.reader, f.prompt, *f.dst, a.out)
		if err != nil {
			return app, err
		}
		*f.dst = v
	}

	ageDefault := ""
	if app.Age > 0 {
		ageDefault = strconv.Itoa(app.Age)
	}
	age, err := GetTextWithDefault(a.reader, "Age", ageDefault, a.out)
	if err != nil {
		return app, err
	}
	app.Age, _ = strconv.Atoi(strings.TrimSpace(age))

	project, err := GetTextWithDefault(a.reader, "Project (id or name)", app.ProjectAppliedFor, a.out)
	if err != nil {
		return app, err
	}
	if p, ok := catalog.Resolve(project); ok {
		project = p.Name
	}
	app.ProjectAppliedFor = project

	if withStatus {
		status, err := GetTextWithDefault(a.reader, "Status (pending or accepted)", string(models.StatusPending), a.out)
		if err != nil {
			return app, err
		}
		switch s := models.Status(strings.ToLower(status)); s {
		case models.StatusPending, models.StatusAccepted:
			app.Status = s
		default:
			a.println("Unknown status, using pending.")
			app.Status = models.StatusPending
		}
	}
	return app, nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.requireID("delete", args)
	if err != nil {
		return err
	}
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}
	err = a.dashboard.Delete(ctx, id, a.confirm)
	if errors.Is(err, services.ErrNotConfirmed) {
		a.println("Cancelled.")
		return err
	}
	a.printBanner()
	return err
}

func (a *App) confirm(prompt string) bool {
	return Confirm(a.reader, prompt, a.out)
}

// Accept shows the confirmation dialog and sends the acceptance. A failed
// attempt may be retried while the dialog is still open.
func (a *App) Accept(ctx context.Context, args []string) error {
	id, err := a.requireID("accept", args)
	if err != nil {
		return err
	}
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}

	dlg, err := a.dashboard.BeginAccept(id)
	switch {
	case errors.Is(err, services.ErrAlreadyAccepted):
		a.println("Application", id, "is already accepted.")
		return err
	case errors.Is(err, services.ErrUnknownApplication):
		a.println("No application with id", id)
		return err
	case err != nil:
		a.println("Cannot accept:", err)
		return err
	}

	a.println("Accept this application?")
	a.printf("  Applicant: %s\n  Email:     %s\n  Project:   %s\n  Degree:    %s\n",
		dlg.ApplicantName, dlg.Email, dlg.Project, dlg.Degree)

	prompt := "Accept and notify the applicant?"
	for {
		if !a.confirm(prompt) {
			_ = a.dashboard.CancelAccept()
			a.println("Cancelled.")
			return services.ErrNotConfirmed
		}
		a.println("Accepting...")
		err := a.dashboard.ConfirmAccept(ctx)
		a.printBanner()
		if err == nil || errors.Is(err, client.ErrUnauthorized) || a.dashboard == nil {
			return err
		}
		if _, open := a.dashboard.Dialog(); !open {
			return err
		}
		prompt = "Try again?"
	}
}

func (a *App) requireID(cmd string, args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		a.printf("Usage: %s <id>\n", cmd)
		return "", client.ErrMissingID
	}
	return strings.TrimSpace(args[0]), nil
}
