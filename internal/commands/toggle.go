package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/controller"
	"todo/internal/exitcode"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command: completed tasks are reopened,
// open tasks are completed.
type ToggleCmd struct {
	pageFlags
}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Complete or reopen a task" }
func (c *ToggleCmd) Usage() string {
	return "todo toggle [--filter <filter>] [--page <n>] <n>"
}
func (c *ToggleCmd) NeedsAuth() bool { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {
	c.pageFlags.register(fs, 0)
}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, ctl *controller.Controller, args []string, in io.Reader, out, errOut io.Writer) int {
	num, err := ParseTaskNumber(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, code := c.locate(ctx, ctl, num, errOut)
	if code != exitcode.Success {
		return code
	}

	if _, err := ctl.ToggleCompletion(ctx, task.ID); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		if st := ctl.State().Status; st != nil {
			fmt.Fprintln(out, st.Text)
		}
	}
	return exitcode.Success
}
