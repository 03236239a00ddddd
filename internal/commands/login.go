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
	"todo/internal/service"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in and store the session" }
func (c *LoginCmd) Usage() string     { return "todo login [--password <password>] <username>" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, ctl *controller.Controller, args []string, in io.Reader, out, errOut io.Writer) int {
	username, password, code := credentials(cfg, args, c.password, in, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := ctl.Authenticate(ctx, username, password); err != nil {
		return authFailure(ctl, err, errOut)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// credentials validates the username argument and takes the password from
// the flag or, failing that, from the first line of in.
func credentials(cfg *config.Config, args []string, password string, in io.Reader, errOut io.Writer) (string, string, int) {
	username := strings.TrimSpace(strings.Join(args, " "))
	if username == "" {
		fmt.Fprintln(errOut, "error: username required")
		return "", "", exitcode.UserError
	}

	if password == "" {
		if !cfg.Quiet {
			fmt.Fprint(errOut, "password: ")
		}
		line, err := readLine(in)
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(errOut, "error: failed to read password: %v\n", err)
			return "", "", exitcode.UserError
		}
		password = line
	}
	if password == "" {
		fmt.Fprintln(errOut, "error: password required")
		return "", "", exitcode.UserError
	}
	return username, password, exitcode.Success
}

// authFailure reports a failed login or registration. The form error carries
// the text the interactive view would show.
func authFailure(ctl *controller.Controller, err error, errOut io.Writer) int {
	if errors.Is(err, controller.ErrBusy) {
		return fail(errOut, err)
	}

	var httpErr *service.HTTPError
	if errors.As(err, &httpErr) || errors.Is(err, service.ErrInvalidCredentials) {
		return fail(errOut, err)
	}

	// Local failures, such as an unwritable session file.
	msg := ctl.State().FormError
	if msg == "" {
		msg = err.Error()
	}
	fmt.Fprintf(errOut, "error: %s\n", msg)
	return exitcode.AuthError
}
