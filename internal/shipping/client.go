package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/commerce-chat/pkg/logging"
)

const (
	defaultBaseURL   = "https://api.skydropx.com/v1"
	defaultUserAgent = "commerce-chat-rates/0.1"
	quotationsPath   = "/quotations"
)

var carrierTracer = otel.Tracer("commerce.internal.shipping")

// Config controls how the carrier client behaves.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
	UserAgent  string
}

// Client calls the carrier's quotation endpoint. It makes exactly one
// attempt per quote.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	userAgent  string
}

// New creates a Client. A blank API key is allowed so the service can start;
// Quote reports ErrMissingCredentials in that case.
func New(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		userAgent:  userAgent,
	}
}

// Quote requests rates for the default parcel and returns the carrier body verbatim.
func (c *Client) Quote(ctx context.Context, req RateRequest) (json.RawMessage, error) {
	origin := strings.TrimSpace(req.OriginPostalCode)
	destination := strings.TrimSpace(req.DestinationPostalCode)
	if origin == "" || destination == "" {
		return nil, ErrMissingPostalCode
	}
	if c.apiKey == "" {
		return nil, ErrMissingCredentials
	}

	ctx, span := carrierTracer.Start(ctx, "shipping.carrier.quote", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("shipping.zip_from", origin),
		attribute.String("shipping.zip_to", destination),
	)

	body, err := json.Marshal(quotationRequest{
		ZipFrom: origin,
		ZipTo:   destination,
		Parcel:  DefaultParcel,
	})
	if err != nil {
		return nil, fmt.Errorf("shipping: marshal quotation: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+quotationsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("shipping: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Token token="+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "carrier unreachable")
		return nil, fmt.Errorf("shipping: http error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("shipping: read response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("carrier rejected quotation", "status", resp.StatusCode, "zip_from", origin, "zip_to", destination)
		span.SetStatus(codes.Error, "carrier error")
		return nil, &CarrierError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return json.RawMessage(data), nil
}
