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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "todo help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, ctl *controller.Controller, args []string, in io.Reader, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  todo                                     List the first page of tasks
  todo list [common flags] [--filter <f>] [--page <n>]
  todo add [common flags] [--description <text>] <title...>
  todo create [common flags] [--description <text>] <title...>
  todo toggle [common flags] [--filter <f>] [--page <n>] <n>
  todo done [common flags] [--filter <f>] [--page <n>] <n>
  todo edit [common flags] [--title <text>] [--description <text>] <n>
  todo rm [common flags] [--filter <f>] [--page <n>] [--yes] <n>
  todo login [common flags] [--password <password>] <username>
  todo register [common flags] [--email <email>] [--password <password>] <username>
  todo logout [common flags]
  todo status [common flags]
  todo ui [common flags]
  todo help
  todo version

Filters: all, pending, completed (alias: done)

Common flags:
  --config <dir>   Override config directory
  --api <url>      Override backend base URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
