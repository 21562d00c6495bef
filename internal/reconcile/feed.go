package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/draft"
)

// DefaultTimeout bounds a single feed request
const DefaultTimeout = 15 * time.Second

// Feed reports the picks made so far in an external league's draft
type Feed interface {
	Picks(ctx context.Context, leagueID string) ([]draft.ObservedPick, error)
}

// FeedOptions configures an HTTPFeed
type FeedOptions struct {
	BaseURL string
	// ClientID, ClientSecret and TokenURL enable the OAuth2 client-credentials flow
	ClientID          string
	ClientSecret      string
	TokenURL          string
	RequestsPerSecond float64
	Timeout           time.Duration
	// HTTPClient is the base transport; the OAuth2 client wraps it when enabled
	HTTPClient *http.Client
}

// HTTPFeed reads draft picks from a league provider's REST API
type HTTPFeed struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

type picksResponse struct {
	Picks []draft.ObservedPick `json:"picks"`
}

// NewHTTPFeed creates a rate-limited feed client
func NewHTTPFeed(opts FeedOptions) (*HTTPFeed, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("league feed base URL is required")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid league feed URL: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}

	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: opts.Timeout}
	}

	client := base
	if opts.ClientID != "" && opts.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = cc.Client(ctx)
		client.Timeout = opts.Timeout
	}

	return &HTTPFeed{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}, nil
}

// Picks fetches GET {base}/leagues/{league}/draft/picks
func (f *HTTPFeed) Picks(ctx context.Context, leagueID string) ([]draft.ObservedPick, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/leagues/%s/draft/picks", f.baseURL, url.PathEscape(leagueID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch league picks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("league feed returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out picksResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode league picks: %w", err)
	}
	return out.Picks, nil
}
