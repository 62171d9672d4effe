package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/hiredesk/internal/client/client"
	"github.com/dmitrijs2005/hiredesk/internal/client/models"
	"github.com/dmitrijs2005/hiredesk/internal/client/session"
	"github.com/dmitrijs2005/hiredesk/internal/logging"
	"github.com/dmitrijs2005/hiredesk/internal/validation"
)

type DashboardState int

const (
	DashboardLoading DashboardState = iota
	DashboardLoaded
	DashboardSubmitting
	DashboardAwaitingConfirmation
)

func (s DashboardState) String() string {
	switch s {
	case DashboardLoading:
		return "loading"
	case DashboardLoaded:
		return "loaded"
	case DashboardSubmitting:
		return "submitting"
	case DashboardAwaitingConfirmation:
		return "awaiting confirmation"
	default:
		return fmt.Sprintf("DashboardState(%d)", int(s))
	}
}

var (
	ErrNotConfirmed       = errors.New("action not confirmed")
	ErrAlreadyAccepted    = errors.New("application already accepted")
	ErrAcceptInProgress   = errors.New("acceptance already in progress")
	ErrDialogBusy         = errors.New("dialog is busy")
	ErrNoDialog           = errors.New("no accept dialog open")
	ErrUnknownApplication = errors.New("unknown application")
	ErrDiscarded          = errors.New("dashboard closed, result discarded")
)

const DeleteConfirmPrompt = "Are you sure you want to delete this application?"

// Navigator moves the operator to the sign-in screen.
type Navigator interface {
	ToSignIn()
}

// NavigatorFunc adapts a func to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) ToSignIn() { f() }

// Confirmer asks the operator a yes/no question.
type Confirmer func(prompt string) bool

type BannerKind int

const (
	BannerNone BannerKind = iota
	BannerSuccess
	BannerError
)

type Banner struct {
	Kind    BannerKind
	Message string
}

// AcceptDialog is the confirmation shown before accepting an application.
type AcceptDialog struct {
	ID            string
	ApplicantName string
	Email         string
	Project       string
	Degree        string
	// Busy is set while the accept call is in flight; both buttons are
	// disabled then.
	Busy bool
}

// Dashboard is the operator's view of all applications. It is safe for
// concurrent use; network calls run without the lock held and whichever
// result lands last is what the list shows.
type Dashboard struct {
	client client.Client
	store  session.Store
	nav    Navigator
	logger logging.Logger

	mu        sync.Mutex
	apps      []models.Application
	loaded    bool
	inFlight  int
	banner    Banner
	dialog    *AcceptDialog
	accepting map[string]bool
	closed    bool
}

func NewDashboard(c client.Client, store session.Store, nav Navigator, logger logging.Logger) *Dashboard {
	return &Dashboard{
		client:    c,
		store:     store,
		nav:       nav,
		logger:    logger,
		accepting: map[string]bool{},
	}
}

// Mount loads the list, or sends the operator to sign-in when there is no
// session.
func (d *Dashboard) Mount(ctx context.Context) error {
	if err := d.requireSession(ctx); err != nil {
		return err
	}
	return d.refetch(ctx)
}

// Refresh clears the banner and reloads the list.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDiscarded
	}
	d.banner = Banner{}
	d.mu.Unlock()

	if err := d.requireSession(ctx); err != nil {
		return err
	}
	return d.refetch(ctx)
}

func (d *Dashboard) requireSession(ctx context.Context) error {
	if d.isClosed() {
		return ErrDiscarded
	}
	if _, ok := d.store.GetToken(ctx); !ok {
		d.nav.ToSignIn()
		return client.ErrUnauthorized
	}
	return nil
}

// refetch replaces the list on success and keeps it otherwise.
func (d *Dashboard) refetch(ctx context.Context) error {
	apps, err := d.client.List(ctx)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDiscarded
	}
	d.loaded = true
	if err == nil {
		d.apps = apps
		d.dropStaleDialogLocked()
		d.mu.Unlock()
		return nil
	}
	if !errors.Is(err, client.ErrUnauthorized) {
		d.banner = Banner{Kind: BannerError, Message: fetchFailure(err)}
	}
	d.mu.Unlock()

	d.logger.Warn(ctx, "failed to fetch applications", "error", err)
	if errors.Is(err, client.ErrUnauthorized) {
		d.nav.ToSignIn()
	}
	return err
}

// dropStaleDialogLocked closes an idle dialog whose row is gone or no
// longer pending.
func (d *Dashboard) dropStaleDialogLocked() {
	if d.dialog == nil || d.dialog.Busy {
		return
	}
	i := d.indexLocked(d.dialog.ID)
	if i < 0 || !d.apps[i].Status.CanTransitionTo(models.StatusAccepted) {
		d.dialog = nil
	}
}

func fetchFailure(err error) string {
	if errors.Is(err, client.ErrNetworkFailure) {
		return "Error connecting to the server."
	}
	return "Failed to fetch applications: " + client.Message(err)
}

func (d *Dashboard) Applications() []models.Application {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Application(nil), d.apps...)
}

// Application returns the loaded row with the given id.
func (d *Dashboard) Application(id string) (models.Application, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.indexLocked(id)
	if i < 0 {
		return models.Application{}, false
	}
	return d.apps[i], true
}

func (d *Dashboard) Banner() Banner {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.banner
}

func (d *Dashboard) State() DashboardState {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.dialog != nil:
		return DashboardAwaitingConfirmation
	case d.inFlight > 0:
		return DashboardSubmitting
	case !d.loaded:
		return DashboardLoading
	default:
		return DashboardLoaded
	}
}

// Save creates the application when id is empty and updates it otherwise.
// Invalid input is returned as validation.FieldErrors without a request.
func (d *Dashboard) Save(ctx context.Context, id string, app models.Application) error {
	if errs := validation.Validate(app); len(errs) > 0 {
		return errs
	}
	if err := d.requireSession(ctx); err != nil {
		return err
	}

	action, verb := "update", "updated"
	if id == "" {
		action, verb = "add", "added"
	}

	if err := d.beginMutation(); err != nil {
		return err
	}
	var err error
	if id == "" {
		_, err = d.client.Create(ctx, app)
	} else {
		_, err = d.client.Update(ctx, id, app)
	}
	if derr := d.endMutation(ctx, err, "Failed to "+action+" application"); derr != nil {
		return derr
	}
	if err != nil {
		return err
	}

	d.setBanner(BannerSuccess, "Application "+verb+" successfully!")
	_ = d.refetch(ctx)
	return nil
}

// Delete removes an application after confirm agrees. A failed delete
// leaves the list as it was.
func (d *Dashboard) Delete(ctx context.Context, id string, confirm Confirmer) error {
	if confirm == nil || !confirm(DeleteConfirmPrompt) {
		return ErrNotConfirmed
	}
	if err := d.requireSession(ctx); err != nil {
		return err
	}
	if err := d.beginMutation(); err != nil {
		return err
	}
	err := d.client.Delete(ctx, id)
	if derr := d.endMutation(ctx, err, "Failed to delete application"); derr != nil {
		return derr
	}
	if err != nil {
		return err
	}

	d.setBanner(BannerSuccess, "Application deleted successfully!")
	_ = d.refetch(ctx)
	return nil
}

func (d *Dashboard) beginMutation() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDiscarded
	}
	d.inFlight++
	return nil
}

// endMutation settles a create, update or delete. It returns ErrDiscarded
// when the dashboard was closed meanwhile; otherwise failures go to the
// banner and the caller returns err itself.
func (d *Dashboard) endMutation(ctx context.Context, err error, failure string) error {
	d.mu.Lock()
	d.inFlight--
	if d.closed {
		d.mu.Unlock()
		return ErrDiscarded
	}
	if err != nil && !errors.Is(err, client.ErrUnauthorized) {
		d.banner = Banner{Kind: BannerError, Message: failure + ": " + client.Message(err)}
	}
	d.mu.Unlock()

	if err != nil {
		d.logger.Warn(ctx, "mutation failed", "error", err)
		if errors.Is(err, client.ErrUnauthorized) {
			d.nav.ToSignIn()
		}
	}
	return nil
}

func (d *Dashboard) setBanner(kind BannerKind, msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.banner = Banner{Kind: kind, Message: msg}
}

// CanAccept reports whether the accept control for id is enabled.
func (d *Dashboard) CanAccept(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.indexLocked(id)
	if i < 0 || d.accepting[id] {
		return false
	}
	return d.apps[i].Status.CanTransitionTo(models.StatusAccepted)
}

// BeginAccept opens the confirmation dialog for a pending row. An idle
// dialog for another row is replaced.
func (d *Dashboard) BeginAccept(id string) (AcceptDialog, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return AcceptDialog{}, ErrDiscarded
	}
	if d.accepting[id] {
		return AcceptDialog{}, ErrAcceptInProgress
	}
	if d.dialog != nil && d.dialog.Busy {
		return AcceptDialog{}, ErrDialogBusy
	}
	i := d.indexLocked(id)
	if i < 0 {
		return AcceptDialog{}, fmt.Errorf("%w: %s", ErrUnknownApplication, id)
	}
	app := d.apps[i]
	if !app.Status.CanTransitionTo(models.StatusAccepted) {
		return AcceptDialog{}, ErrAlreadyAccepted
	}
	d.dialog = &AcceptDialog{
		ID:            app.ID,
		ApplicantName: app.FullName(),
		Email:         app.Email,
		Project:       app.ProjectAppliedFor,
		Degree:        app.Degree,
	}
	return *d.dialog, nil
}

// Dialog returns the open accept dialog, if any.
func (d *Dashboard) Dialog() (AcceptDialog, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dialog == nil {
		return AcceptDialog{}, false
	}
	return *d.dialog, true
}

// ConfirmAccept sends the accept call for the open dialog. On success the
// row is marked accepted at once and the list is re-fetched; a re-fetch
// that succeeds replaces the list, one that fails keeps the accepted mark.
// On failure the dialog stays open with the server's message in the banner.
func (d *Dashboard) ConfirmAccept(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDiscarded
	}
	if d.dialog == nil {
		d.mu.Unlock()
		return ErrNoDialog
	}
	if d.dialog.Busy {
		d.mu.Unlock()
		return ErrAcceptInProgress
	}
	dlg := d.dialog
	i := d.indexLocked(dlg.ID)
	if i < 0 {
		d.dialog = nil
		d.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownApplication, dlg.ID)
	}
	if !d.apps[i].Status.CanTransitionTo(models.StatusAccepted) {
		d.dialog = nil
		d.mu.Unlock()
		return ErrAlreadyAccepted
	}
	dlg.Busy = true
	d.accepting[dlg.ID] = true
	id := dlg.ID
	req := client.AcceptRequest{ApplicantName: dlg.ApplicantName, ProjectName: dlg.Project, Email: dlg.Email}
	d.mu.Unlock()

	err := d.client.Accept(ctx, id, req)

	d.mu.Lock()
	delete(d.accepting, id)
	dlg.Busy = false
	if d.closed {
		d.mu.Unlock()
		return ErrDiscarded
	}
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		d.dialog = nil
		d.mu.Unlock()
		d.logger.Warn(ctx, "accept failed", "id", id, "error", err)
		d.nav.ToSignIn()
		return err
	case err != nil:
		d.banner = Banner{Kind: BannerError, Message: client.Message(err)}
		d.mu.Unlock()
		d.logger.Warn(ctx, "accept failed", "id", id, "error", err)
		return err
	}

	if i := d.indexLocked(id); i >= 0 {
		d.apps[i].Status = models.StatusAccepted
	}
	if d.dialog == dlg {
		d.dialog = nil
	}
	d.banner = Banner{Kind: BannerSuccess, Message: "Application accepted! " + req.ApplicantName + " has been notified."}
	d.mu.Unlock()

	d.logger.Info(ctx, "application accepted", "id", id)
	_ = d.refetch(ctx)
	return nil
}

// CancelAccept closes the dialog. It is refused while the call is in flight.
func (d *Dashboard) CancelAccept() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dialog == nil {
		return nil
	}
	if d.dialog.Busy {
		return ErrDialogBusy
	}
	d.dialog = nil
	return nil
}

// Close disposes the dashboard. Calls still in flight finish but their
// results are dropped and reported as ErrDiscarded.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.dialog = nil
}

func (d *Dashboard) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Dashboard) indexLocked(id string) int {
	for i := range d.apps {
		if d.apps[i].ID == id {
			return i
		}
	}
	return -1
}
