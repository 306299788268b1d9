package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/template"

	"github.com/iudanet/scholarkeeper/internal/models"
	"github.com/iudanet/scholarkeeper/internal/validation"
)

var profileTmpl = template.Must(template.New("profile").Parse(profileTemplate))

type profileView struct {
	*models.Profile
	Cached bool
}

func (c *Cli) runShow(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: scholarkeeper show <scholar-id>")
	}

	id := models.CanonicalScholarID(args[0])
	if err := validation.ValidateScholarID(id); err != nil {
		return fmt.Errorf("invalid scholar id: %w", err)
	}

	res, err := c.lookup.Profile(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	if err := profileTmpl.Execute(c.io, profileView{Profile: res.Value, Cached: res.Cached}); err != nil {
		return fmt.Errorf("failed to render profile: %w", err)
	}

	if len(res.Value.CountsByYear) > 0 {
		c.io.Println()
		c.io.Println("Citations by year:")
		rows := make([][]string, 0, len(res.Value.CountsByYear))
		for _, y := range res.Value.CountsByYear {
			rows = append(rows, []string{strconv.Itoa(y.Year), strconv.Itoa(y.WorksCount), strconv.Itoa(y.CitedByCount)})
		}
		if err := renderTable(c.io, []string{"year", "works", "citations"}, rows); err != nil {
			return fmt.Errorf("failed to render counts: %w", err)
		}
	}

	c.io.Println()
	if len(res.Value.Works) == 0 {
		c.io.Println("No recent works.")
		return nil
	}

	c.io.Println("Recent works:")
	rows := make([][]string, 0, len(res.Value.Works))
	for _, w := range res.Value.Works {
		rows = append(rows, []string{w.PublicationDate, w.Title, strconv.Itoa(w.CitedByCount)})
	}
	if err := renderTable(c.io, []string{"date", "title", "citations"}, rows); err != nil {
		return fmt.Errorf("failed to render works: %w", err)
	}

	return nil
}
