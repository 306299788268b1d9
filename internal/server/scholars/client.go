// Package scholars is the backend proxy to the OpenAlex scholar graph.
package scholars

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/scholarkeeper/internal/models"
	"github.com/iudanet/scholarkeeper/internal/server/metrics"
)

const (
	// DefaultBaseURL - публичный API OpenAlex
	DefaultBaseURL = "https://api.openalex.org"

	searchPageSize = 10
	recentWorks    = 5

	// maxBodySize ограничивает размер ответа провайдера
	maxBodySize = 4 << 20
)

// ErrUpstreamUnavailable is returned when the provider is unreachable or
// answers with a non-2xx status.
var ErrUpstreamUnavailable = errors.New("scholar provider unavailable")

// Client fetches scholars from OpenAlex
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// NewClient создает клиент OpenAlex
func NewClient(logger *slog.Logger, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Search returns up to ten scholars whose display name matches query.
func (c *Client) Search(ctx context.Context, query string) ([]models.Scholar, error) {
	params := url.Values{}
	params.Set("filter", "display_name.search:"+query)
	params.Set("per_page", strconv.Itoa(searchPageSize))

	var page authorsPage
	if err := c.get(ctx, "search", "/authors?"+params.Encode(), &page); err != nil {
		return nil, err
	}

	result := make([]models.Scholar, 0, len(page.Results))
	for _, a := range page.Results {
		result = append(result, a.toScholar())
	}

	return result, nil
}

// Profile returns the aggregate profile of the scholar together with the
// most recent works. Both upstream requests run in parallel; a failure of
// either one fails the whole profile.
func (c *Client) Profile(ctx context.Context, id string) (*models.Profile, error) {
	id = models.CanonicalScholarID(id)

	var (
		a     author
		works worksPage
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.get(gctx, "profile", "/authors/"+url.PathEscape(id), &a)
	})

	g.Go(func() error {
		params := url.Values{}
		params.Set("filter", "author.id:"+id)
		params.Set("per_page", strconv.Itoa(recentWorks))
		params.Set("sort", "publication_date:desc")
		return c.get(gctx, "works", "/works?"+params.Encode(), &works)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return a.toProfile(works.Results), nil
}

// get выполняет GET запрос к провайдеру и декодирует JSON ответ
func (c *Client) get(ctx context.Context, operation, path string, result any) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Запрос отменил вызывающий, провайдер тут ни при чем
		if ctxErr := ctx.Err(); ctxErr != nil {
			metrics.RecordUpstream(operation, "canceled")
			return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, ctxErr)
		}
		metrics.RecordUpstream(operation, "error")
		c.logger.WarnContext(ctx, "upstream request failed",
			slog.String("operation", operation),
			slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	metrics.RecordUpstream(operation, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "upstream returned error status",
			slog.String("operation", operation),
			slog.Int("status", resp.StatusCode),
			slog.Duration("duration", time.Since(start)))
		return fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", ErrUpstreamUnavailable, err)
	}

	c.logger.DebugContext(ctx, "upstream request completed",
		slog.String("operation", operation),
		slog.Duration("duration", time.Since(start)))

	return nil
}
