// Package oddsapi is a client for The Odds API v4: per-sport odds snapshots
// with nested bookmaker quotes, and completed-game scores for settlement.
package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sharppicks/parlay-engine/internal/model"
	"github.com/sharppicks/parlay-engine/internal/resilience"
)

const defaultBaseURL = "https://api.the-odds-api.com"

// Client fetches odds and scores from the provider.
type Client interface {
	// FetchOdds returns upcoming games with bookmaker quotes for the given
	// sports, restricted to the requested market keys and time window.
	FetchOdds(ctx context.Context, req OddsRequest) ([]model.Game, error)
	// FetchScores returns games (completed or live) for one sport within a
	// trailing daysFrom window.
	FetchScores(ctx context.Context, sportKey string, daysFrom int) ([]model.CompletedGame, error)
}

// OddsRequest selects what FetchOdds pulls.
type OddsRequest struct {
	SportKeys []string
	Markets   []string
	Region    string
	From      time.Time
	To        time.Time
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request pacing.
func WithRateLimit(l *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

// WithRetry overrides the transient-error retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates an odds provider client. The default limiter paces
// requests at 1/s with a small burst, which keeps multi-sport fetch loops
// under the provider's rate ceiling.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(1, 3),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) FetchOdds(ctx context.Context, req OddsRequest) ([]model.Game, error) {
	region := req.Region
	if region == "" {
		region = "us"
	}

	var games []model.Game
	for _, sport := range req.SportKeys {
		q := url.Values{}
		q.Set("apiKey", c.apiKey)
		q.Set("regions", region)
		q.Set("markets", strings.Join(req.Markets, ","))
		q.Set("oddsFormat", "american")
		if !req.From.IsZero() {
			q.Set("commenceTimeFrom", req.From.UTC().Format("2006-01-02T15:04:05Z"))
		}
		if !req.To.IsZero() {
			q.Set("commenceTimeTo", req.To.UTC().Format("2006-01-02T15:04:05Z"))
		}

		var page []model.Game
		endpoint := fmt.Sprintf("/v4/sports/%s/odds", sport)
		if err := c.get(ctx, endpoint, q, &page); err != nil {
			return nil, eris.Wrapf(err, "oddsapi: fetch odds for %s", sport)
		}
		games = append(games, page...)
	}
	return games, nil
}

func (c *httpClient) FetchScores(ctx context.Context, sportKey string, daysFrom int) ([]model.CompletedGame, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("daysFrom", fmt.Sprintf("%d", daysFrom))

	var scores []model.CompletedGame
	endpoint := fmt.Sprintf("/v4/sports/%s/scores", sportKey)
	if err := c.get(ctx, endpoint, q, &scores); err != nil {
		return nil, eris.Wrapf(err, "oddsapi: fetch scores for %s", sportKey)
	}
	return scores, nil
}

// get performs a rate-limited GET and decodes the JSON body into out,
// retrying 429 and 5xx responses per the client's retry policy.
func (c *httpClient) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	cfg := c.retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger("oddsapi", endpoint)
	}
	return resilience.Do(ctx, cfg, func(ctx context.Context) error {
		return c.getOnce(ctx, endpoint, q, out)
	})
}

func (c *httpClient) getOnce(ctx context.Context, endpoint string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "oddsapi: rate limit wait")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "oddsapi: create request")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrap(err, "oddsapi: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "oddsapi: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("oddsapi: unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "oddsapi: unmarshal response")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
