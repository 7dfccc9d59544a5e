package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

var ErrMissingAPIKey = errors.New("feed api key not configured")

// maxPages limita a paginação caso o fornecedor devolva cursores em loop
const maxPages = 100

// Client busca eventos com odds no endpoint /events do fornecedor
type Client struct {
	BaseURL   string
	APIKey    string
	LeagueID  string
	PageLimit int
	HTTP      *http.Client
	Log       *zap.Logger
}

func NewClient(baseURL, apiKey, leagueID string, pageLimit int, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		LeagueID:  leagueID,
		PageLimit: pageLimit,
		HTTP:      &http.Client{Timeout: timeout},
		Log:       log,
	}
}

// FetchEvents percorre todas as páginas e retorna os eventos da liga configurada.
// Qualquer falha aborta a execução inteira: o chamador trata como zero eventos.
func (c *Client) FetchEvents(ctx context.Context) ([]Event, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var out []Event
	cursor := ""
	for page := 0; page < maxPages; page++ {
		resp, err := c.fetchPage(ctx, cursor)
		if err != nil {
			return nil, err
		}
		out = append(out, resp.Data...)
		c.Log.Debug("feed page fetched",
			zap.Int("page", page),
			zap.Int("events", len(resp.Data)),
		)
		if resp.NextCursor == "" || resp.NextCursor == cursor {
			return out, nil
		}
		cursor = resp.NextCursor
	}
	c.Log.Warn("feed pagination truncated", zap.Int("max_pages", maxPages))
	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, cursor string) (*Response, error) {
	q := url.Values{}
	q.Set("leagueID", c.LeagueID)
	q.Set("oddsAvailable", "true")
	if c.PageLimit > 0 {
		q.Set("limit", strconv.Itoa(c.PageLimit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/events?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.APIKey)
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("feed http %d", res.StatusCode)
	}

	var out Response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("feed error: %s", out.Error)
	}
	return &out, nil
}
