package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"todo/internal/controller"
	"todo/internal/output"
	"todo/internal/service"
)

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	if !a.state.Authenticated() {
		b.WriteString(a.renderAuth())
	} else {
		b.WriteString(a.renderList())
	}

	if a.width > 0 {
		return lipgloss.NewStyle().MaxWidth(a.width).Render(b.String())
	}
	return b.String()
}

func (a *App) renderAuth() string {
	var b strings.Builder

	heading := "Log in"
	other := "ctrl+r: create an account"
	if a.state.Mode == controller.ModeRegister {
		heading = "Create account"
		other = "ctrl+r: log in instead"
	}
	b.WriteString(titleStyle.Render("To-do") + "  " + heading + "\n\n")

	if s := a.state.Status; s != nil {
		b.WriteString(renderStatus(*s) + "\n\n")
	}

	b.WriteString(labelStyle.Render("Username") + a.username.View() + "\n")
	if a.state.Mode == controller.ModeRegister {
		b.WriteString(labelStyle.Render("Email") + a.email.View() + "\n")
	}
	b.WriteString(labelStyle.Render("Password") + a.password.View() + "\n\n")

	switch {
	case a.state.FormLoading:
		b.WriteString(a.spinner.View() + " Submitting...\n")
	case a.state.FormError != "":
		b.WriteString(errorStyle.Render(a.state.FormError) + "\n")
	}

	b.WriteString("\n" + hintStyle.Render("enter: submit • tab: next field • "+other+" • esc: quit"))
	return b.String()
}

func (a *App) renderList() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("To-do") + "  " + a.renderTabs() + "\n\n")

	if s := a.state.Status; s != nil {
		b.WriteString(renderStatus(*s) + hintStyle.Render("  (x)") + "\n\n")
	}

	if len(a.state.Tasks) == 0 {
		if a.state.ListLoading {
			b.WriteString(a.spinner.View() + " Loading...\n")
		} else {
			b.WriteString(hintStyle.Render("No tasks.") + "\n")
		}
	}

	for i, task := range a.state.Tasks {
		b.WriteString(a.renderTask(i, task))
	}

	footer := fmt.Sprintf("page %d of %d (%d tasks)", a.state.Page, a.state.TotalPages, a.state.TotalCount)
	if a.state.ListLoading && len(a.state.Tasks) > 0 {
		footer += " " + a.spinner.View()
	}
	b.WriteString("\n" + hintStyle.Render(footer) + "\n")

	if a.note != "" {
		b.WriteString(infoStyle.Render(a.note) + "\n")
	}

	switch {
	case a.state.PendingDelete != nil:
		b.WriteString(dialogStyle.Render(fmt.Sprintf("Delete %q? (y/n)", a.state.PendingDelete.Title)))
	case a.form != formNone:
		b.WriteString(a.renderForm())
	default:
		b.WriteString("\n" + hintStyle.Render(
			"a: new • space: toggle • e: edit • d: delete • 1/2/3: filter • ←/→: page • y: copy • r: reload • L: log out • q: quit"))
	}
	return b.String()
}

func (a *App) renderTabs() string {
	tabs := make([]string, 0, len(service.Filters))
	for i, f := range service.Filters {
		label := fmt.Sprintf("%d %s", i+1, output.FilterLabel(f))
		if f == a.state.Filter {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (a *App) renderTask(i int, task service.Task) string {
	prefix := "  "
	if i == a.cursor {
		prefix = cursorStyle.Render("> ")
	}

	check := output.CheckOpen
	title := task.Title
	if task.IsCompleted {
		check = output.CheckDone
		title = doneStyle.Render(title)
	}

	line := fmt.Sprintf("%s%3d %s %s\n", prefix, output.TaskNumber(a.state.Page, i), check, title)
	if task.Description != "" {
		line += descStyle.Render(task.Description) + "\n"
	}
	return line
}

func (a *App) renderForm() string {
	heading := "New task"
	if a.form == formEdit {
		heading = "Edit task"
	}

	var b strings.Builder
	b.WriteString(heading + "\n")
	b.WriteString(labelStyle.Render("Title") + a.title.View() + "\n")
	b.WriteString(labelStyle.Render("Details") + a.description.View() + "\n")
	if a.formHint != "" {
		b.WriteString(errorStyle.Render(a.formHint) + "\n")
	}
	b.WriteString(hintStyle.Render("enter: save • tab: next field • esc: cancel"))
	return dialogStyle.Render(b.String())
}

func renderStatus(s controller.Status) string {
	if s.IsError() {
		return errorStyle.Render(s.Text)
	}
	return infoStyle.Render(s.Text)
}
