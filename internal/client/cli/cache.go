package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runCache(ctx context.Context, args []string) error {
	if len(args) != 1 || args[0] != "clear" {
		return fmt.Errorf("usage: scholarkeeper cache clear")
	}

	removed, err := c.cache.Clear(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	c.io.Printf("✓ Removed %d cached response(s)\n", removed)
	return nil
}
