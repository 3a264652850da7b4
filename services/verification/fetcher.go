package verification

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/tech-arch1tect/secretsanta/config"
)

// Fetcher retrieves the text of a remote profile page. Kept narrow so
// the verifier is testable without a live remote host.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type HTTPFetcher struct {
	client *resty.Client
}

func NewHTTPFetcher(cfg *config.Config) *HTTPFetcher {
	return &HTTPFetcher{
		client: resty.New().SetTimeout(cfg.GWars.FetchTimeout),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("unexpected status %d from profile host", resp.StatusCode())
	}
	return string(resp.Body()), nil
}
