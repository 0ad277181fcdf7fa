package scraper

import (
	"context"
	"fmt"
	"net/http"
	"theaterwatch/lib/restyutil"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

// HTTPError is returned when a page still answers with a non-2xx status after
// every retry.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

type StaticOptions struct {
	UserAgent  string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	// CloudflareBypass mimics a browser TLS fingerprint.
	CloudflareBypass bool
	// Dump, when set, receives every request/response pair at debug level.
	Dump restyutil.InstrumentOutput
}

// StaticFetcher downloads pages over plain HTTP.
type StaticFetcher struct {
	client *resty.Client
}

func retryable(res *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	code := res.StatusCode()
	return code == http.StatusTooManyRequests || code >= 500
}

func NewStaticFetcher(opts StaticOptions) StaticFetcher {
	client := resty.New()
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	client.SetHeader("user-agent", opts.UserAgent)
	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("accept-language", "en-GB,en;q=0.9")
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(opts.Retries)
	client.SetRetryWaitTime(opts.RetryDelay)
	client.SetRetryMaxWaitTime(opts.RetryDelay * 4)
	client.AddRetryCondition(retryable)

	restyutil.InstrumentClient(client, otel.Tracer("theaterwatch/lib/scraper/http"), opts.Dump)

	return StaticFetcher{client: client}
}

func (f StaticFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, &HTTPError{
			URL:        url,
			StatusCode: res.StatusCode(),
			Status:     res.Status(),
		}
	}
	return res.Body(), nil
}
