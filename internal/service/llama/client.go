package llama

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"DefiPrime/internal/domain/models"
	drepo "DefiPrime/internal/domain/repository"
	"DefiPrime/internal/service/breaker"
	"DefiPrime/internal/service/payload"
	"DefiPrime/internal/service/ratelimit"
	xhttp "DefiPrime/pkg/http"
)

// DefaultBaseURL is the DefiLlama yields chart endpoint; the entity id is appended.
const DefaultBaseURL = "https://yields.llama.fi/chart/"

// Client implements a SeriesSource backed by the DefiLlama HTTP API.
type Client struct {
	baseURL string
	host    string
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	breaker *breaker.Manager
	fields  payload.Fields
}

// New creates a new DefiLlama SeriesSource.
func New(baseURL string, httpClient *xhttp.Client, limiter *ratelimit.Limiter, br *breaker.Manager, fields payload.Fields) (drepo.SeriesSource, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("llama: invalid base url %q", baseURL)
	}
	if httpClient == nil {
		httpClient = xhttp.NewClient()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/",
		host:    u.Host,
		http:    httpClient,
		limiter: limiter,
		breaker: br,
		fields:  fields,
	}, nil
}

// Name identifies the source in logs and metrics.
func (c *Client) Name() string { return "llama" }

// Fetch retrieves and parses the chart of one pool. Transport failures and
// payload defects come back as *models.SourceUnavailableError.
func (c *Client) Fetch(ctx context.Context, entityID string) ([]models.RawRecord, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.host); err != nil {
			return nil, models.Unavailable(entityID, models.ReasonTransport, fmt.Errorf("rate limit wait: %w", err))
		}
	}

	body, err := c.get(ctx, c.baseURL+url.PathEscape(entityID))
	if err != nil {
		return nil, models.Unavailable(entityID, models.ReasonTransport, err)
	}
	return payload.ParseRecords(entityID, body, c.fields)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	call := func() (interface{}, error) {
		var body []byte
		err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:  xhttp.MethodGet,
			URL:     u,
			Headers: map[string]string{"Accept": "application/json"},
		}, &body)
		return body, err
	}
	if c.breaker == nil {
		res, err := call()
		if err != nil {
			return nil, err
		}
		return res.([]byte), nil
	}
	res, err := c.breaker.Execute(c.host, call)
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}
