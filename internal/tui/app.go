// Package tui provides the interactive terminal view over the task controller.
package tui

import (
	"context"
	"errors"
	"io"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todo/internal/controller"
	"todo/internal/service"
)

// formKind is the task form currently open on the list screen.
type formKind int

const (
	formNone formKind = iota
	formNew
	formEdit
)

// action identifies the controller call behind a doneMsg.
type action int

const (
	actAuth action = iota
	actLoad
	actCreate
	actToggle
	actEdit
	actDelete
)

// Message types
type doneMsg struct {
	action action
	err    error
}

type copiedMsg struct {
	text string
	err  error
}

// App is the Bubble Tea model for the interactive view. All task and session
// state lives in the controller; App keeps only input widgets and the cursor.
type App struct {
	ctx   context.Context
	ctl   *controller.Controller
	state controller.State

	width  int
	height int

	spinner spinner.Model

	// Login and register form
	username  textinput.Model
	email     textinput.Model
	password  textinput.Model
	authFocus int

	// New task and edit form
	form        formKind
	title       textinput.Model
	description textinput.Model
	formFocus   int
	formHint    string

	cursor int
	note   string

	copy func(string) error
}

// NewApp creates an App over a hydrated controller.
func NewApp(ctx context.Context, ctl *controller.Controller) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	a := &App{
		ctx:         ctx,
		ctl:         ctl,
		spinner:     s,
		username:    newInput("username", 150),
		email:       newInput("email (optional)", 254),
		password:    newInput("password", 128),
		title:       newInput("title", 200),
		description: newInput("description", 1000),
		copy:        clipboard.WriteAll,
	}
	a.password.EchoMode = textinput.EchoPassword
	a.password.EchoCharacter = '•'
	a.username.Focus()
	a.refresh()
	return a
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 40
	return in
}

// Run shows the interactive view until the user quits or ctx is cancelled.
func Run(ctx context.Context, ctl *controller.Controller, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(NewApp(ctx, ctl),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, textinput.Blink}
	if a.state.Authenticated() {
		cmds = append(cmds, a.run(actLoad, func(ctx context.Context) error {
			return a.ctl.LoadTasks(ctx, 1)
		}))
	}
	return tea.Batch(cmds...)
}

// run wraps a controller call into a command reporting a doneMsg.
func (a *App) run(act action, fn func(ctx context.Context) error) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return doneMsg{action: act, err: fn(ctx)}
	}
}

// refresh takes a new controller snapshot and keeps the cursor on the page.
func (a *App) refresh() {
	a.state = a.ctl.State()
	if a.cursor >= len(a.state.Tasks) {
		a.cursor = len(a.state.Tasks) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.refresh()
		return a, cmd

	case doneMsg:
		return a.handleDone(msg)

	case copiedMsg:
		if msg.err != nil {
			a.note = "Failed to copy: " + msg.err.Error()
		} else {
			a.note = "Copied: " + msg.text
		}
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		a.refresh()
		if !a.state.Authenticated() {
			return a.handleAuthKey(msg)
		}
		return a.handleListKey(msg)
	}

	return a, nil
}

func (a *App) handleDone(msg doneMsg) (tea.Model, tea.Cmd) {
	wasAuthenticated := a.state.Authenticated()
	a.refresh()

	switch msg.action {
	case actAuth:
		if msg.err == nil && a.state.Authenticated() && !wasAuthenticated {
			a.password.SetValue("")
			a.cursor = 0
		}
	case actLoad:
		if msg.err == nil {
			a.cursor = 0
		}
	case actCreate:
		switch {
		case msg.err == nil:
			a.closeForm()
			a.cursor = 0
		case errors.Is(msg.err, controller.ErrEmptyTitle):
			a.formHint = "Title cannot be empty."
		}
	case actEdit:
		if msg.err == nil {
			a.closeForm()
		}
	}
	return a, nil
}

func (a *App) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return a, tea.Quit

	case "ctrl+r":
		a.ctl.ToggleMode()
		a.refresh()
		a.focusAuth(0)
		return a, nil

	case "tab", "down":
		a.focusAuth(a.authFocus + 1)
		return a, nil

	case "shift+tab", "up":
		a.focusAuth(a.authFocus - 1)
		return a, nil

	case "enter":
		if a.state.FormLoading {
			return a, nil
		}
		username, password := a.username.Value(), a.password.Value()
		if a.state.Mode == controller.ModeRegister {
			email := a.email.Value()
			return a, a.run(actAuth, func(ctx context.Context) error {
				return a.ctl.Register(ctx, username, password, email)
			})
		}
		return a, a.run(actAuth, func(ctx context.Context) error {
			return a.ctl.Authenticate(ctx, username, password)
		})
	}

	var cmd tea.Cmd
	in := a.authInputs()[a.authFocus]
	*in, cmd = in.Update(msg)
	return a, cmd
}

// authInputs returns the inputs shown on the login or register form, in focus order.
func (a *App) authInputs() []*textinput.Model {
	if a.state.Mode == controller.ModeRegister {
		return []*textinput.Model{&a.username, &a.email, &a.password}
	}
	return []*textinput.Model{&a.username, &a.password}
}

func (a *App) focusAuth(i int) {
	inputs := a.authInputs()
	i = (i + len(inputs)) % len(inputs)
	a.username.Blur()
	a.email.Blur()
	a.password.Blur()
	inputs[i].Focus()
	a.authFocus = i
}

func (a *App) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.state.PendingDelete != nil {
		return a.handleConfirmKey(msg)
	}
	if a.form != formNone {
		return a.handleFormKey(msg)
	}

	a.note = ""

	switch msg.String() {
	case "q", "esc":
		return a, tea.Quit

	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}

	case "down", "j":
		if a.cursor < len(a.state.Tasks)-1 {
			a.cursor++
		}

	case "a", "n":
		a.openForm(formNew, "", "")

	case " ", "space":
		if task, ok := a.selected(); ok {
			return a, a.run(actToggle, func(ctx context.Context) error {
				_, err := a.ctl.ToggleCompletion(ctx, task.ID)
				return err
			})
		}

	case "e":
		if task, ok := a.selected(); ok {
			form, err := a.ctl.BeginEdit(task.ID)
			if err == nil {
				a.openForm(formEdit, form.Title, form.Description)
			}
		}

	case "d":
		if task, ok := a.selected(); ok {
			_, _ = a.ctl.RequestDelete(task.ID)
			a.refresh()
		}

	case "1", "2", "3":
		f := service.Filters[msg.String()[0]-'1']
		return a, a.run(actLoad, func(ctx context.Context) error {
			return a.ctl.SetFilter(ctx, f)
		})

	case "left", "h":
		if a.state.HasPrev() {
			return a, a.run(actLoad, a.ctl.PrevPage)
		}

	case "right", "l":
		if a.state.HasNext() {
			return a, a.run(actLoad, a.ctl.NextPage)
		}

	case "r":
		page := a.state.Page
		return a, a.run(actLoad, func(ctx context.Context) error {
			return a.ctl.LoadTasks(ctx, page)
		})

	case "y":
		if task, ok := a.selected(); ok {
			copyFn, text := a.copy, task.Title
			return a, func() tea.Msg {
				return copiedMsg{text: text, err: copyFn(text)}
			}
		}

	case "x":
		a.ctl.DismissStatus()
		a.refresh()

	case "L":
		// On failure the session is kept and the status banner shows why.
		if err := a.ctl.Logout(); err == nil {
			a.cursor = 0
			a.focusAuth(0)
		}
		a.refresh()
	}

	return a, nil
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		return a, a.run(actDelete, func(ctx context.Context) error {
			_, err := a.ctl.ResolveDelete(ctx, true)
			return err
		})
	case "n", "N", "esc":
		_, _ = a.ctl.ResolveDelete(a.ctx, false)
		a.refresh()
	}
	return a, nil
}

func (a *App) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if a.form == formEdit {
			a.ctl.CancelEdit()
		}
		a.closeForm()
		a.refresh()
		return a, nil

	case "tab", "shift+tab":
		a.focusForm(1 - a.formFocus)
		return a, nil

	case "enter":
		if a.state.Saving {
			return a, nil
		}
		title, description := a.title.Value(), a.description.Value()
		a.formHint = ""
		if a.form == formEdit {
			return a, a.run(actEdit, func(ctx context.Context) error {
				_, err := a.ctl.SubmitEdit(ctx, title, description)
				return err
			})
		}
		return a, a.run(actCreate, func(ctx context.Context) error {
			_, err := a.ctl.CreateTask(ctx, title, description)
			return err
		})
	}

	var cmd tea.Cmd
	if a.formFocus == 0 {
		a.title, cmd = a.title.Update(msg)
	} else {
		a.description, cmd = a.description.Update(msg)
	}
	return a, cmd
}

func (a *App) openForm(kind formKind, title, description string) {
	a.form = kind
	a.formHint = ""
	a.title.SetValue(title)
	a.description.SetValue(description)
	a.focusForm(0)
}

func (a *App) closeForm() {
	a.form = formNone
	a.formHint = ""
	a.title.Blur()
	a.description.Blur()
}

func (a *App) focusForm(i int) {
	a.formFocus = i
	if i == 0 {
		a.description.Blur()
		a.title.Focus()
	} else {
		a.title.Blur()
		a.description.Focus()
	}
}

// selected returns the task under the cursor.
func (a *App) selected() (service.Task, bool) {
	if a.cursor < 0 || a.cursor >= len(a.state.Tasks) {
		return service.Task{}, false
	}
	return a.state.Tasks[a.cursor], true
}
