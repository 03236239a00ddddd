package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"todo/internal/config"
	"todo/internal/controller"
	"todo/internal/exitcode"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command.
// The access token is decoded without verification; only the backend can
// tell whether it is still accepted.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return []string{"whoami"} }
func (c *StatusCmd) Synopsis() string  { return "Show the stored session" }
func (c *StatusCmd) Usage() string     { return "todo status" }
func (c *StatusCmd) NeedsAuth() bool   { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, ctl *controller.Controller, args []string, in io.Reader, out, errOut io.Writer) int {
	sess := ctl.Session()
	if !sess.Present() {
		fmt.Fprintln(out, "logged out")
		return exitcode.Success
	}

	fmt.Fprintln(out, "logged in")

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(sess.Access, claims); err != nil {
		fmt.Fprintln(out, "token:   opaque")
		return exitcode.Success
	}

	if user := subject(claims); user != "" {
		fmt.Fprintf(out, "user:    %s\n", user)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return exitcode.Success
	}

	tok := sess.Token()
	tok.Expiry = exp.Time
	state := "valid"
	if !tok.Valid() {
		state = "expired"
	}
	fmt.Fprintf(out, "expires: %s (%s)\n", exp.Time.UTC().Format(time.RFC3339), state)
	return exitcode.Success
}

// subject returns the user id claim, falling back to sub.
func subject(claims jwt.MapClaims) string {
	switch v := claims["user_id"].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	sub, _ := claims.GetSubject()
	return sub
}
