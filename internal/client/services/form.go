package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/hiredesk/internal/catalog"
	"github.com/dmitrijs2005/hiredesk/internal/client/client"
	"github.com/dmitrijs2005/hiredesk/internal/client/models"
	"github.com/dmitrijs2005/hiredesk/internal/logging"
	"github.com/dmitrijs2005/hiredesk/internal/validation"
)

type FormState int

const (
	FormIdle FormState = iota
	FormValidating
	FormSubmitting
	FormSuccess
	FormFailed
)

func (s FormState) String() string {
	switch s {
	case FormIdle:
		return "idle"
	case FormValidating:
		return "validating"
	case FormSubmitting:
		return "submitting"
	case FormSuccess:
		return "success"
	case FormFailed:
		return "failed"
	default:
		return fmt.Sprintf("FormState(%d)", int(s))
	}
}

const (
	SubmittedNotice  = "Application submitted successfully! You can apply for multiple projects with the same email."
	FailureNotice    = "Your application could not be submitted. Please try again later."
	FieldErrorNotice = "Please correct the highlighted fields and submit again."
)

var (
	ErrUnknownField  = errors.New("unknown form field")
	ErrSubmitPending = errors.New("submission already in progress")
)

// ApplicationForm is the public submission flow. A duplicate e-mail
// rejection from the server is shown to the applicant as success.
type ApplicationForm struct {
	client client.Client
	logger logging.Logger

	mu     sync.Mutex
	state  FormState
	draft  models.Application
	errs   validation.FieldErrors
	notice string
}

func NewApplicationForm(c client.Client, logger logging.Logger) *ApplicationForm {
	return &ApplicationForm{client: c, logger: logger}
}

// Set changes one draft field by its JSON name. An age that is not an
// integer is stored as 0, which validation reports as missing.
func (f *ApplicationForm) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return ErrSubmitPending
	}
	if err := setField(&f.draft, field, value); err != nil {
		return err
	}
	f.state = FormIdle
	f.notice = ""
	return nil
}

func setField(a *models.Application, field, value string) error {
	switch field {
	case validation.FieldFirstName:
		a.FirstName = value
	case validation.FieldLastName:
		a.LastName = value
	case validation.FieldAge:
		age, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			age = 0
		}
		a.Age = age
	case validation.FieldDegree:
		a.Degree = value
	case validation.FieldRelevantExperience:
		a.RelevantExperience = value
	case validation.FieldEmail:
		a.Email = value
	case validation.FieldProjectAppliedFor:
		a.ProjectAppliedFor = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// ApplyDeepLink pre-selects the project named by the "project" query
// parameter of link, which may be a full URL or a bare query string.
// Unknown or ineligible ids are ignored. It reports whether the draft changed.
func (f *ApplicationForm) ApplyDeepLink(link string) bool {
	id := projectParam(link)
	if id == "" {
		return false
	}
	p, ok := catalog.ByID(id)
	if !ok {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return false
	}
	f.draft.ProjectAppliedFor = p.Name
	f.state = FormIdle
	return true
}

func projectParam(link string) string {
	link = strings.TrimSpace(link)
	if i := strings.IndexByte(link, '?'); i >= 0 {
		link = link[i+1:]
	}
	if i := strings.IndexByte(link, '#'); i >= 0 {
		link = link[:i]
	}
	q, err := url.ParseQuery(link)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(q.Get("project"))
}

// Submit validates the draft and, when it is valid, sends it once. On
// success the draft is reset to empty.
func (f *ApplicationForm) Submit(ctx context.Context) (FormState, error) {
	f.mu.Lock()
	if f.state == FormSubmitting {
		f.mu.Unlock()
		return FormSubmitting, ErrSubmitPending
	}
	f.state = FormValidating
	errs := validation.Validate(f.draft)
	if len(errs) > 0 {
		f.errs = errs
		f.state = FormFailed
		f.notice = FieldErrorNotice
		f.mu.Unlock()
		return FormFailed, errs
	}
	f.errs = nil
	f.state = FormSubmitting
	draft := f.draft
	f.mu.Unlock()

	_, err := f.client.Submit(ctx, draft)

	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case err == nil:
	case client.IsDuplicateEmail(err):
		f.logger.Info(ctx, "duplicate e-mail treated as submitted")
	default:
		f.logger.Warn(ctx, "application submission failed", "error", err)
		f.state = FormFailed
		f.notice = FailureNotice
		return FormFailed, err
	}
	f.draft = models.Application{}
	f.state = FormSuccess
	f.notice = SubmittedNotice
	return FormSuccess, nil
}

func (f *ApplicationForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *ApplicationForm) Draft() models.Application {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// FieldErrors returns the errors from the last validation, or nil.
func (f *ApplicationForm) FieldErrors() validation.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) == 0 {
		return nil
	}
	out := make(validation.FieldErrors, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

func (f *ApplicationForm) Notice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}
