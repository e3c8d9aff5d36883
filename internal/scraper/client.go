package scraper

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/grocerscan/tesco_scraper/config"
)

const maxTransportRetries = 3

// Status codes worth a retry; everything else fails the attempt outright.
var retryStatusCodes = map[int]bool{
	408: true,
	413: true,
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// APIClient sends GraphQL payloads to the backend. Transient transport
// failures are retried here up to a fixed budget; anything that still fails
// surfaces to the frontier's retry policy.
type APIClient struct {
	http *resty.Client
	log  *log.Logger

	// baseURL overrides the descriptor target when set; tests point it at a
	// fake server.
	baseURL string
}

func NewAPIClient(cfg *config.ScraperConfig) *APIClient {
	client := resty.New().
		SetTimeout(60 * time.Second).
		SetRetryCount(maxTransportRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return retryStatusCodes[r.StatusCode()]
		}).
		SetHeaders(map[string]string{
			"accept":           "application/json",
			"accept-language":  "en-GB,en;q=0.9",
			"content-type":     "application/json",
			"origin":           "https://www.tesco.com",
			"referer":          "https://www.tesco.com/",
			"user-agent":       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"x-apikey":         "ukLiveGroceriesApi",
			"x-application":    "ukLiveWeb",
			"x-request-origin": "gi",
		})
	if cfg.Proxy.Enabled && cfg.Proxy.Url != "" {
		client.SetProxy(cfg.Proxy.Url)
	}
	return &APIClient{
		http: client,
		log:  log.New(os.Stdout, "[APIClient]: ", log.LstdFlags|log.Lshortfile),
	}
}

// Do posts one GraphQL payload. A body carrying a top-level errors field is a
// failed request even on HTTP 200.
func (c *APIClient) Do(ctx context.Context, desc *RequestDescriptor, region string, payload GraphQLPayload) (*apiResponse, error) {
	target := desc.URL
	if c.baseURL != "" {
		target = c.baseURL
	}
	var out apiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("region", region).
		SetBody(payload).
		SetResult(&out).
		Post(target)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("bad response status: %s", resp.Status())
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("api error: %s", out.Errors[0].Message)
	}
	return &out, nil
}
