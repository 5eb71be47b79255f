package statsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 1 << 20
)

// Client is the upstream stats provider boundary. Implementations must
// treat a missing resource (player with no games yet, bracket not published
// yet) as an empty result rather than an error.
type Client interface {
	GameLog(ctx context.Context, playerExternalID string) ([]GameLog, error)
	PlayoffBracket(ctx context.Context) ([]SeriesResult, error)
}

// HTTPClient implements Client against the provider's REST API.
type HTTPClient struct {
	baseURL      string
	season       string
	gameTypeCode string
	httpClient   *http.Client
	logger       *slog.Logger
}

func NewHTTPClient(baseURL, season, gameTypeCode string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		season:       season,
		gameTypeCode: gameTypeCode,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		logger:       logger,
	}
}

// GameLog fetches a player's per-game playoff results for the configured
// season. A 404 means the player has no games yet and yields an empty log.
func (c *HTTPClient) GameLog(ctx context.Context, playerExternalID string) ([]GameLog, error) {
	endpoint := fmt.Sprintf("/player/%s/game-log/%s/%s", playerExternalID, c.season, c.gameTypeCode)

	var resp gameLogResponse
	found, err := c.get(ctx, endpoint, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch game log for player %s: %w", playerExternalID, err)
	}
	if !found {
		return []GameLog{}, nil
	}
	return resp.GameLog, nil
}

// PlayoffBracket fetches the season's bracket. A 404 means the bracket is
// not published yet and yields an empty series list.
func (c *HTTPClient) PlayoffBracket(ctx context.Context) ([]SeriesResult, error) {
	endpoint := fmt.Sprintf("/playoff-bracket/%s", c.season)

	var resp bracketResponse
	found, err := c.get(ctx, endpoint, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch playoff bracket: %w", err)
	}
	if !found {
		return []SeriesResult{}, nil
	}
	return resp.Series, nil
}

// get performs a GET against the feed and decodes the body into result.
// found is false on a 404, with no error and result untouched.
func (c *HTTPClient) get(ctx context.Context, endpoint string, result any) (found bool, err error) {
	url := c.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("stats feed request", slog.String("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return false, &APIError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Body:       excerpt(body),
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return false, fmt.Errorf("unmarshal response: %w", err)
	}
	return true, nil
}

func excerpt(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
