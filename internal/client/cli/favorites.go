package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/scholarkeeper/internal/models"
	"github.com/iudanet/scholarkeeper/pkg/api"
)

func (c *Cli) runFavorites(ctx context.Context) error {
	if err := c.requireSession(); err != nil {
		return err
	}

	favorites, err := c.backend.Favorites(ctx)
	if err != nil {
		return c.handleAuthError(ctx, err)
	}

	c.io.Println("=== Favorite Scholars ===")
	c.io.Println()

	if len(favorites) == 0 {
		c.io.Println("No favorites yet.")
		c.io.Println("Run 'scholarkeeper favorite <scholar-id> <name>' to add one.")
		return nil
	}

	rows := make([][]string, 0, len(favorites))
	for _, f := range favorites {
		rows = append(rows, []string{f.ScholarID, f.ScholarName, f.CreatedAt.Local().Format(time.DateTime)})
	}
	if err := renderTable(c.io, []string{"scholar id", "name", "added"}, rows); err != nil {
		return fmt.Errorf("failed to render favorites: %w", err)
	}

	c.io.Println()
	c.io.Printf("Total: %d favorite(s)\n", len(favorites))

	return nil
}

func (c *Cli) runFavorite(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: scholarkeeper favorite <scholar-id> <name>")
	}
	if err := c.requireSession(); err != nil {
		return err
	}

	req := api.AddFavoriteRequest{
		ScholarID:   models.CanonicalScholarID(args[0]),
		ScholarName: strings.Join(args[1:], " "),
	}

	fav, created, err := c.backend.AddFavorite(ctx, req)
	if err != nil {
		return c.handleAuthError(ctx, err)
	}

	if created {
		c.io.Printf("✓ Added %s (%s) to favorites\n", fav.ScholarName, fav.ScholarID)
	} else {
		c.io.Printf("%s (%s) is already in favorites\n", fav.ScholarName, fav.ScholarID)
	}

	return nil
}
