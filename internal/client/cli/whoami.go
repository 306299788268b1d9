package cli

import (
	"context"
	"time"
)

func (c *Cli) runWhoami(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	if c.session == nil {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'scholarkeeper login' to authenticate.")
		return nil
	}

	// Сервер - источник истины: сессия могла быть отозвана
	me, err := c.backend.Me(ctx)
	if err != nil {
		return c.handleAuthError(ctx, err)
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("User ID: %s\n", me.UserID)
	c.io.Printf("Server: %s\n", c.session.ServerURL)
	c.io.Printf("Session expires: %s\n", c.session.ExpiresAt.Format(time.RFC3339))
	c.io.Printf("Time remaining: %s\n", c.session.ExpiresAt.Sub(c.now()).Round(time.Second))

	return nil
}
