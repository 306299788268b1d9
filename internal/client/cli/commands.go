package cli

import (
	"context"
	"fmt"
)

// ErrUnknownCommand is returned by Run for commands it does not know
var ErrUnknownCommand = fmt.Errorf("unknown command")

// Run executes a single command. args excludes the command name.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "signup":
		return c.runSignup(ctx, args)
	case "login":
		return c.runLogin(ctx, args)
	case "logout":
		return c.runLogout(ctx)
	case "whoami":
		return c.runWhoami(ctx)
	case "search":
		return c.runSearch(ctx, args)
	case "show":
		return c.runShow(ctx, args)
	case "favorites":
		return c.runFavorites(ctx)
	case "favorite":
		return c.runFavorite(ctx, args)
	case "cache":
		return c.runCache(ctx, args)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}
