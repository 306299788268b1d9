package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

func (c *Cli) runSearch(ctx context.Context, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("usage: scholarkeeper search <query>")
	}

	res, err := c.lookup.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	c.io.Printf("=== Scholars matching %q%s ===\n", query, cachedNote(res.Cached))
	c.io.Println()

	if len(res.Value) == 0 {
		c.io.Println("No scholars found.")
		return nil
	}

	rows := make([][]string, 0, len(res.Value))
	for _, s := range res.Value {
		rows = append(rows, []string{
			s.ID,
			s.DisplayName,
			s.Institution,
			strconv.Itoa(s.WorksCount),
			strconv.Itoa(s.CitedByCount),
		})
	}

	if err := renderTable(c.io, []string{"id", "name", "institution", "works", "citations"}, rows); err != nil {
		return fmt.Errorf("failed to render results: %w", err)
	}

	c.io.Println()
	c.io.Printf("Total: %d scholar(s)\n", len(res.Value))
	c.io.Println("Run 'scholarkeeper show <id>' for details.")

	return nil
}

func cachedNote(cached bool) string {
	if cached {
		return " (cached)"
	}
	return ""
}
