package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/controller"
	"todo/internal/exitcode"
	"todo/internal/output"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	pageFlags
	yes bool
}

// SetYes skips the confirmation prompt (for testing).
func (c *RmCmd) SetYes(yes bool) {
	c.yes = yes
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string {
	return "todo rm [--filter <filter>] [--page <n>] [--yes] <n>"
}
func (c *RmCmd) NeedsAuth() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	c.pageFlags.register(fs, 0)
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, ctl *controller.Controller, args []string, in io.Reader, out, errOut io.Writer) int {
	num, err := ParseTaskNumber(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, code := c.locate(ctx, ctl, num, errOut)
	if code != exitcode.Success {
		return code
	}

	if _, err := ctl.RequestDelete(task.ID); err != nil {
		return fail(errOut, err)
	}

	confirmed := c.yes
	if !confirmed {
		fmt.Fprintf(errOut, "delete %q? [y/N] ", task.Title)
		answer, err := readLine(in)
		if err != nil && !errors.Is(err, io.EOF) {
			ctl.ResolveDelete(ctx, false)
			fmt.Fprintf(errOut, "error: failed to read answer: %v\n", err)
			return exitcode.UserError
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			confirmed = true
		}
	}

	res, err := ctl.ResolveDelete(ctx, confirmed)
	if err != nil {
		return fail(errOut, err)
	}
	if !res.Deleted {
		if !cfg.Quiet {
			fmt.Fprintln(out, "cancelled")
		}
		return exitcode.Success
	}

	if cfg.Quiet {
		return exitcode.Success
	}
	fmt.Fprintln(out, "ok")
	if res.Reloaded {
		output.FormatPage(out, ctl.State(), cfg.Quiet)
	}
	return exitcode.Success
}
