// Package controller implements the session and task list state shared by the
// command line and the interactive view.
//
// The controller owns the credential pair, the current page of tasks with its
// filter, and transient UI state (loading flags, form error, status banner).
// Every mutation issues exactly one backend call and, on success, patches the
// local page from the server's answer instead of reloading it.
package controller

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"todo/internal/service"
	"todo/internal/session"
)

// Status texts.
const (
	msgLoggedIn     = "Logged in."
	msgRegistered   = "Account created and logged in."
	msgLoggedOut    = "Session ended."
	msgCreated      = "Task created."
	msgCompleted    = "Task marked as completed."
	msgReopened     = "Task reopened."
	msgUpdated      = "Task updated."
	msgDeleted      = "Task deleted."
	msgEmptyTitle   = "Title cannot be empty."
	msgSessionWrite = "could not save session"
	msgSessionClear = "could not remove session"
)

// Controller is the session and task list controller.
// It is safe for concurrent use; backend calls are made without holding the lock.
type Controller struct {
	svc    service.Service
	store  session.Store
	logger *zap.Logger

	mu sync.Mutex

	sess session.Session
	view View
	mode Mode

	filter service.Filter
	page   int
	total  int
	tasks  []service.Task

	// loadGen identifies the latest issued list load.
	loadGen     uint64
	listLoading bool
	formLoading bool
	// saving is set while a create or edit submission is outstanding.
	saving bool

	formError     string
	status        *Status
	editing       *EditForm
	pendingDelete *service.Task
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a logged-out controller. Call Hydrate to restore a stored session.
func New(svc service.Service, store session.Store, opts ...Option) *Controller {
	c := &Controller{
		svc:    svc,
		store:  store,
		logger: zap.NewNop(),
		filter: service.FilterAll,
		page:   1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hydrate restores the credential pair from the store. It does not fetch tasks.
func (c *Controller) Hydrate() error {
	sess, err := c.store.Load()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sess = sess
	if sess.Present() {
		c.view = ViewAuthenticated
	} else {
		c.view = ViewUnauthenticated
		c.mode = ModeLogin
	}
	c.logger.Debug("session hydrated", zap.Bool("authenticated", sess.Present()))
	return nil
}

// Session returns the current credential pair.
func (c *Controller) Session() session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// State returns a snapshot of the controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		View:        c.view,
		Mode:        c.mode,
		Filter:      c.filter,
		Page:        c.page,
		PageSize:    service.PageSize,
		TotalCount:  c.total,
		TotalPages:  service.TotalPages(c.total),
		Tasks:       append([]service.Task(nil), c.tasks...),
		FormLoading: c.formLoading,
		ListLoading: c.listLoading,
		Saving:      c.saving,
		FormError:   c.formError,
	}
	if c.status != nil {
		s := *c.status
		st.Status = &s
	}
	if c.editing != nil {
		e := *c.editing
		st.Editing = &e
	}
	if c.pendingDelete != nil {
		t := *c.pendingDelete
		st.PendingDelete = &t
	}
	return st
}

// ToggleMode switches the unauthenticated form between login and register.
func (c *Controller) ToggleMode() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view != ViewUnauthenticated {
		return
	}
	if c.mode == ModeLogin {
		c.mode = ModeRegister
	} else {
		c.mode = ModeLogin
	}
	c.formError = ""
}

// DismissStatus clears the status banner.
func (c *Controller) DismissStatus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = nil
}

// Authenticate logs in with a username and password, persists the credential
// pair and loads page 1. On failure the form error is set and the view is unchanged.
func (c *Controller) Authenticate(ctx context.Context, username, password string) error {
	if err := c.beginForm(); err != nil {
		return err
	}
	tokens, err := c.svc.Login(ctx, username, password)
	return c.finishAuth(ctx, tokens, err, msgLoggedIn)
}

// Register creates an account and logs in with the tokens it returns.
// An empty email is left out of the request.
func (c *Controller) Register(ctx context.Context, username, password, email string) error {
	if err := c.beginForm(); err != nil {
		return err
	}
	tokens, err := c.svc.Register(ctx, service.Registration{
		Username: username,
		Password: password,
		Email:    strings.TrimSpace(email),
	})
	return c.finishAuth(ctx, tokens, err, msgRegistered)
}

func (c *Controller) beginForm() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.formLoading {
		return ErrBusy
	}
	c.formLoading = true
	c.formError = ""
	return nil
}

func (c *Controller) finishAuth(ctx context.Context, tokens service.Tokens, authErr error, msg string) error {
	c.mu.Lock()
	c.formLoading = false

	if authErr != nil {
		c.formError = authErr.Error()
		c.mu.Unlock()
		c.logger.Debug("authentication failed", zap.Error(authErr))
		return authErr
	}

	sess := session.FromTokens(tokens)
	if err := c.store.Save(sess); err != nil {
		c.formError = msgSessionWrite + ": " + err.Error()
		c.mu.Unlock()
		return err
	}

	c.sess = sess
	c.view = ViewAuthenticated
	c.mode = ModeLogin
	c.tasks = nil
	c.page = 1
	c.total = 0
	c.status = &Status{Kind: StatusInfo, Text: msg}
	filter := c.filter
	c.mu.Unlock()

	c.logger.Debug("authenticated")

	// A failed first load is reported through the status banner.
	if err := c.load(ctx, filter, 1); err != nil {
		c.logger.Debug("initial load failed", zap.Error(err))
	}
	return nil
}

// Logout forgets the credential pair in memory and in the store and clears the
// task list. No backend call is made. If the store cannot be cleared the
// session is kept and an error status is set.
func (c *Controller) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		c.status = &Status{Kind: StatusError, Text: msgSessionClear + ": " + err.Error()}
		c.logger.Debug("logout failed", zap.Error(err))
		return err
	}

	c.sess = session.Session{}
	c.view = ViewUnauthenticated
	c.mode = ModeLogin
	c.tasks = nil
	c.page = 1
	c.total = 0
	c.loadGen++ // drop in-flight loads
	c.listLoading = false
	c.formError = ""
	c.editing = nil
	c.pendingDelete = nil
	c.status = &Status{Kind: StatusInfo, Text: msgLoggedOut}

	c.logger.Debug("logged out")
	return nil
}

// LoadTasks loads a page of the active filter, replacing the local list.
// Without a credential it does nothing.
func (c *Controller) LoadTasks(ctx context.Context, page int) error {
	c.mu.Lock()
	filter := c.filter
	c.mu.Unlock()
	return c.load(ctx, filter, page)
}

// SetFilter changes the filter and reloads from page 1.
func (c *Controller) SetFilter(ctx context.Context, f service.Filter) error {
	return c.Browse(ctx, f, 1)
}

// Browse sets the filter and loads the given page in one request.
func (c *Controller) Browse(ctx context.Context, f service.Filter, page int) error {
	if f == "" {
		f = service.FilterAll
	}
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
	return c.load(ctx, f, page)
}

// NextPage loads the following page, if any.
func (c *Controller) NextPage(ctx context.Context) error {
	return c.step(ctx, 1)
}

// PrevPage loads the previous page, if any.
func (c *Controller) PrevPage(ctx context.Context) error {
	return c.step(ctx, -1)
}

func (c *Controller) step(ctx context.Context, delta int) error {
	c.mu.Lock()
	if c.listLoading {
		c.mu.Unlock()
		return ErrBusy
	}
	target := c.page + delta
	if target < 1 || target > service.TotalPages(c.total) {
		c.mu.Unlock()
		return nil
	}
	filter := c.filter
	c.mu.Unlock()
	return c.load(ctx, filter, target)
}

// load fetches one page. Each call takes a new generation; the response is
// applied only if no newer load was issued in the meantime.
func (c *Controller) load(ctx context.Context, filter service.Filter, page int) error {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	if !c.sess.Present() {
		c.mu.Unlock()
		return nil
	}
	c.loadGen++
	gen := c.loadGen
	access := c.sess.Access
	c.listLoading = true
	c.mu.Unlock()

	c.logger.Debug("loading tasks",
		zap.Int("page", page),
		zap.String("filter", filter.String()),
		zap.Uint64("generation", gen))

	result, err := c.svc.ListTasks(ctx, access, service.ListQuery{Page: page, Filter: filter})

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.loadGen {
		c.logger.Debug("discarding stale load",
			zap.Uint64("generation", gen),
			zap.Uint64("latest", c.loadGen))
		return ErrSuperseded
	}
	c.listLoading = false

	if err != nil {
		c.setErrorLocked(err)
		return err
	}

	c.tasks = append([]service.Task(nil), result.Results...)
	c.page = page
	c.total = result.Count
	return nil
}

// CreateTask creates a task and prepends the server's copy to the list.
// A title that is empty after trimming is rejected without a request, and a
// second submission while one is outstanding returns ErrBusy.
func (c *Controller) CreateTask(ctx context.Context, title, description string) (service.Task, error) {
	title = strings.TrimSpace(title)

	c.mu.Lock()
	if title == "" {
		c.status = &Status{Kind: StatusError, Text: msgEmptyTitle}
		c.mu.Unlock()
		return service.Task{}, ErrEmptyTitle
	}
	if !c.sess.Present() {
		c.mu.Unlock()
		return service.Task{}, ErrNotAuthenticated
	}
	if c.saving {
		c.mu.Unlock()
		return service.Task{}, ErrBusy
	}
	c.saving = true
	access := c.sess.Access
	c.mu.Unlock()

	task, err := c.svc.CreateTask(ctx, access, service.NewTask{
		Title:       title,
		Description: description,
		IsCompleted: false,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.saving = false

	if err != nil {
		c.setErrorLocked(err)
		return service.Task{}, err
	}
	if c.sess.Access != access {
		return task, nil
	}

	c.tasks = append([]service.Task{task}, c.tasks...)
	c.total++
	c.status = &Status{Kind: StatusInfo, Text: msgCreated}
	c.logger.Debug("task created", zap.Int64("id", task.ID))
	return task, nil
}

// ToggleCompletion flips is_completed of a task on the current page and
// replaces it with the server's copy. Nothing changes locally before the
// backend confirms.
func (c *Controller) ToggleCompletion(ctx context.Context, id int64) (service.Task, error) {
	c.mu.Lock()
	if !c.sess.Present() {
		c.mu.Unlock()
		return service.Task{}, ErrNotAuthenticated
	}
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return service.Task{}, ErrTaskNotFound
	}
	completed := !c.tasks[i].IsCompleted
	access := c.sess.Access
	c.mu.Unlock()

	updated, err := c.svc.UpdateTask(ctx, access, id, service.TaskPatch{IsCompleted: &completed})

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.setErrorLocked(err)
		return service.Task{}, err
	}
	if c.sess.Access != access {
		return updated, nil
	}

	c.replaceLocked(id, updated)
	text := msgReopened
	if updated.IsCompleted {
		text = msgCompleted
	}
	c.status = &Status{Kind: StatusInfo, Text: text}
	return updated, nil
}

// BeginEdit opens the edit form for a task on the current page, prefilled
// with its title and description.
func (c *Controller) BeginEdit(id int64) (EditForm, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.sess.Present() {
		return EditForm{}, ErrNotAuthenticated
	}
	i := c.indexLocked(id)
	if i < 0 {
		return EditForm{}, ErrTaskNotFound
	}
	form := EditForm{
		TaskID:      id,
		Title:       c.tasks[i].Title,
		Description: c.tasks[i].Description,
	}
	c.editing = &form
	return form, nil
}

// SubmitEdit saves the open edit form. An empty title keeps the form open and
// sends nothing.
func (c *Controller) SubmitEdit(ctx context.Context, title, description string) (EditResult, error) {
	c.mu.Lock()
	if c.editing == nil {
		c.mu.Unlock()
		return EditResult{}, ErrNoPendingAction
	}
	c.editing.Title = title
	c.editing.Description = description

	title = strings.TrimSpace(title)
	if title == "" {
		c.status = &Status{Kind: StatusError, Text: msgEmptyTitle}
		c.mu.Unlock()
		return EditResult{}, ErrEmptyTitle
	}
	if !c.sess.Present() {
		c.mu.Unlock()
		return EditResult{}, ErrNotAuthenticated
	}
	if c.saving {
		c.mu.Unlock()
		return EditResult{}, ErrBusy
	}
	c.saving = true
	id := c.editing.TaskID
	access := c.sess.Access
	c.mu.Unlock()

	updated, err := c.svc.UpdateTask(ctx, access, id, service.TaskPatch{
		Title:       &title,
		Description: &description,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.saving = false

	if err != nil {
		c.setErrorLocked(err)
		return EditResult{}, err
	}
	if c.sess.Access != access {
		return EditResult{Saved: true, Task: updated}, nil
	}

	if c.editing != nil && c.editing.TaskID == id {
		c.editing = nil
	}
	c.replaceLocked(id, updated)
	c.status = &Status{Kind: StatusInfo, Text: msgUpdated}
	return EditResult{Saved: true, Task: updated}, nil
}

// CancelEdit closes the edit form without a request.
func (c *Controller) CancelEdit() EditResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = nil
	return EditResult{}
}

// EditTask opens and submits an edit in one step.
func (c *Controller) EditTask(ctx context.Context, id int64, title, description string) (EditResult, error) {
	if _, err := c.BeginEdit(id); err != nil {
		return EditResult{}, err
	}
	res, err := c.SubmitEdit(ctx, title, description)
	if err != nil {
		c.CancelEdit()
	}
	return res, err
}

// RequestDelete opens the delete confirmation for a task on the current page.
func (c *Controller) RequestDelete(id int64) (service.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.sess.Present() {
		return service.Task{}, ErrNotAuthenticated
	}
	i := c.indexLocked(id)
	if i < 0 {
		return service.Task{}, ErrTaskNotFound
	}
	task := c.tasks[i]
	c.pendingDelete = &task
	return task, nil
}

// ResolveDelete closes the delete confirmation. When confirmed the task is
// deleted and removed from the list; if that empties the page, the previous
// page (or page 1 again, while tasks remain) is loaded.
func (c *Controller) ResolveDelete(ctx context.Context, confirmed bool) (DeleteResult, error) {
	c.mu.Lock()
	if c.pendingDelete == nil {
		c.mu.Unlock()
		return DeleteResult{}, ErrNoPendingAction
	}
	task := *c.pendingDelete
	c.pendingDelete = nil

	if !confirmed {
		c.mu.Unlock()
		return DeleteResult{Task: task}, nil
	}
	if !c.sess.Present() {
		c.mu.Unlock()
		return DeleteResult{Task: task}, ErrNotAuthenticated
	}
	access := c.sess.Access
	c.mu.Unlock()

	if err := c.svc.DeleteTask(ctx, access, task.ID); err != nil {
		c.mu.Lock()
		c.setErrorLocked(err)
		c.mu.Unlock()
		return DeleteResult{Task: task}, err
	}

	c.mu.Lock()
	if c.sess.Access != access {
		c.mu.Unlock()
		return DeleteResult{Deleted: true, Task: task}, nil
	}
	if i := c.indexLocked(task.ID); i >= 0 {
		c.tasks = append(c.tasks[:i:i], c.tasks[i+1:]...)
	}
	if c.total > 0 {
		c.total--
	}
	c.status = &Status{Kind: StatusInfo, Text: msgDeleted}

	emptied := len(c.tasks) == 0
	page, total, filter := c.page, c.total, c.filter
	c.mu.Unlock()

	res := DeleteResult{Deleted: true, Task: task}
	if !emptied {
		return res, nil
	}

	target := 0
	switch {
	case page > 1:
		target = page - 1
	case total > 0:
		target = 1
	}
	if target > 0 {
		c.logger.Debug("page emptied by delete", zap.Int("page", page), zap.Int("reload", target))
		if err := c.load(ctx, filter, target); err == nil {
			res.Reloaded = true
		}
	}
	return res, nil
}

func (c *Controller) indexLocked(id int64) int {
	for i, t := range c.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) replaceLocked(id int64, task service.Task) {
	if i := c.indexLocked(id); i >= 0 {
		c.tasks[i] = task
	}
}

func (c *Controller) setErrorLocked(err error) {
	c.status = &Status{Kind: StatusError, Text: err.Error()}
	c.logger.Debug("request failed", zap.Error(err))
}
