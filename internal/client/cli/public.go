package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/hiredesk/internal/catalog"
	"github.com/dmitrijs2005/hiredesk/internal/client/services"
	"github.com/dmitrijs2005/hiredesk/internal/validation"
)

// Projects prints the whole catalog, placeholders included.
func (a *App) Projects(_ context.Context) error {
	for _, p := range catalog.All() {
		if p.Eligible {
			a.printf("%-30s %s\n", p.ID, p.Name)
		} else {
			a.printf("%-30s %s (coming soon)\n", p.ID, p.Name)
		}
		if p.Description != "" {
			a.printf("    %s\n", p.Description)
		}
	}
	return nil
}

var formPrompts = []struct {
	field, prompt string
	multiline     bool
}{
	{validation.FieldFirstName, "First name", false},
	{validation.FieldLastName, "Last name", false},
	{validation.FieldAge, "Age", false},
	{validation.FieldDegree, "Degree", false},
	{validation.FieldRelevantExperience, "Relevant experience", true},
	{validation.FieldEmail, "Email", false},
}

// Apply runs the public application form. args may carry a project id or a
// link with a ?project= parameter.
func (a *App) Apply(ctx context.Context, args []string) error {
	form := services.NewApplicationForm(a.client, a.logger)
	if len(args) > 0 {
		link := args[0]
		if !strings.ContainsAny(link, "?=") {
			link = "project=" + link
		}
		if form.ApplyDeepLink(link) {
			a.println("Applying for", form.Draft().ProjectAppliedFor)
		} else {
			a.println("Unknown project, you can pick one below.")
		}
	}

	fields := make([]string, 0, len(formPrompts)+1)
	for _, p := range formPrompts {
		fields = append(fields, p.field)
	}
	if form.Draft().ProjectAppliedFor == "" {
		fields = append(fields, validation.FieldProjectAppliedFor)
	}

	for {
		if err := a.fillForm(form, fields); err != nil {
			return err
		}

		state, err := form.Submit(ctx)
		if state == services.FormSuccess {
			a.println(form.Notice())
			return nil
		}

		a.println(form.Notice())
		errs := form.FieldErrors()
		if len(errs) == 0 {
			return err
		}
		for _, f := range errs.Fields() {
			a.printf("  - %s\n", errs[f])
		}
		if !Confirm(a.reader, "Fix these fields and submit again?", a.out) {
			return err
		}
		fields = errs.Fields()
	}
}

func (a *App) fillForm(form *services.ApplicationForm, fields []string) error {
	for _, field := range fields {
		var (
			value string
			err   error
		)
		switch field {
		case validation.FieldProjectAppliedFor:
			value, err = a.pickProject()
		default:
			value, err = a.promptField(field)
		}
		if err != nil {
			return err
		}
		if err := form.Set(field, value); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) promptField(field string) (string, error) {
	for _, p := range formPrompts {
		if p.field != field {
			continue
		}
		if p.multiline {
			return GetMultiline(a.reader, p.prompt, a.out)
		}
		return getSimpleText(a.reader, p.prompt, a.out)
	}
	return getSimpleText(a.reader, field, a.out)
}

// pickProject accepts a list number, an id or a display name. Anything
// unrecognised leaves the project empty for validation to report.
func (a *App) pickProject() (string, error) {
	eligible := catalog.Eligible()
	for i, p := range eligible {
		a.printf("  %d) %s\n", i+1, p.Name)
	}
	answer, err := getSimpleText(a.reader, "Project (number, id or name)", a.out)
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(eligible) {
		return eligible[n-1].Name, nil
	}
	if p, ok := catalog.Resolve(answer); ok {
		return p.Name, nil
	}
	return "", nil
}
