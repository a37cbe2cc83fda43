package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/blinxlabs/blinx/internal/config"
	"github.com/blinxlabs/blinx/internal/errorsx"
)

// bitqueryClient posts GraphQL queries to the Bitquery streaming endpoint.
type bitqueryClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func newBitqueryClient(cfg config.BitqueryConfig, httpClient *http.Client) bitqueryClient {
	return bitqueryClient{endpoint: cfg.Endpoint, apiKey: cfg.APIKey, httpClient: httpClient}
}

// query runs q and returns the raw response body. Non-2xx statuses and
// GraphQL-level errors are returned as errors.
func (c bitqueryClient) query(ctx context.Context, q string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, errorsx.Errorf(errorsx.ReasonToolConfig, "BITQUERY_API_KEY is not set")
	}

	body, err := json.Marshal(map[string]string{"query": q})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonToolTransport)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("read response: %w", err), errorsx.ReasonToolTransport)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorsx.Errorf(errorsx.ReasonToolTransport, "%s", resp.Status)
	}
	if !gjson.ValidBytes(raw) {
		return nil, errorsx.Errorf(errorsx.ReasonToolDecode, "invalid JSON in response")
	}
	if errs := gjson.GetBytes(raw, "errors"); errs.IsArray() && len(errs.Array()) > 0 {
		return nil, errorsx.Errorf(errorsx.ReasonToolDecode, "query error: %s", errs.Array()[0].Get("message").String())
	}
	return raw, nil
}
