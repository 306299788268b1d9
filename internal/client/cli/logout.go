package cli

import (
	"context"
	"errors"
	"fmt"

	clientapi "github.com/iudanet/scholarkeeper/internal/client/api"
)

func (c *Cli) runLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")

	if c.session == nil {
		c.io.Println("Not logged in.")
		return nil
	}

	// Локальную сессию удаляем в любом случае
	err := c.backend.Logout(ctx)
	c.forgetSession(ctx)
	if err != nil && !errors.Is(err, clientapi.ErrUnauthorized) {
		return fmt.Errorf("logout failed: %w", err)
	}

	c.io.Println("✓ Logout successful!")
	c.io.Println("Your local session has been deleted.")

	return nil
}
