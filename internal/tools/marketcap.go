package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/blinxlabs/blinx/internal/config"
	"github.com/blinxlabs/blinx/internal/errorsx"
	"github.com/blinxlabs/blinx/internal/schema"
)

const (
	marketcapMaxTokens = 30
	dexScreenerChain   = "solana"
)

// dexPair is the subset of a DexScreener pair record the tool reads.
type dexPair struct {
	BaseToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	MarketCap float64 `json:"marketCap"`
}

// MarketcapTool looks up token market caps on DexScreener. Unlike the other
// read tools it answers with a single number: the first pair's market cap.
type MarketcapTool struct {
	endpoint   string
	httpClient *http.Client
}

// NewMarketcapTool creates a MarketcapTool.
func NewMarketcapTool(cfg config.DexScreenerConfig, httpClient *http.Client) *MarketcapTool {
	return &MarketcapTool{endpoint: strings.TrimRight(cfg.Endpoint, "/"), httpClient: httpClient}
}

func (t *MarketcapTool) Definition() schema.Definition {
	return schema.Definition{
		Name:        string(ToolFetchMarketcap),
		Description: "Fetch marketcap of Solana tokens using the DexScreener API",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"count": {
					"type": "number",
					"description": "The number of tokens to fetch (maximum 30)"
				},
				"term": {
					"type": "string",
					"description": "Search term for token mint address"
				}
			},
			"required": ["count", "term"]
		}`),
	}
}

func (t *MarketcapTool) Invoke(ctx context.Context, params map[string]any) schema.Result {
	const prefix = "Fetch failed: "

	var args struct {
		Count int    `json:"count"`
		Term  string `json:"term"`
	}
	if err := decodeArgs(params, &args); err != nil {
		return fail(ToolFetchMarketcap, prefix, err)
	}
	if err := validatePositive("count", args.Count); err != nil {
		return fail(ToolFetchMarketcap, prefix, err)
	}
	if args.Count > marketcapMaxTokens {
		args.Count = marketcapMaxTokens
	}

	addresses := splitTerm(args.Term, args.Count)
	if len(addresses) == 0 {
		return fail(ToolFetchMarketcap, prefix, errorsx.Errorf(errorsx.ReasonToolValidation, "term is required"))
	}

	pairs, err := t.fetch(ctx, addresses)
	if err != nil {
		return fail(ToolFetchMarketcap, prefix, fmt.Errorf("failed to fetch market cap data: %w", err))
	}
	if len(pairs) == 0 {
		return schema.Empty(fmt.Sprintf("No results found for term: %q", args.Term))
	}

	for _, p := range pairs {
		slog.Info("Marketcap", "symbol", p.BaseToken.Symbol, "mint", p.BaseToken.Address, "marketcap", formatMarketcap(p.MarketCap))
	}
	return schema.Success(pairs[0].MarketCap)
}

func (t *MarketcapTool) fetch(ctx context.Context, addresses []string) ([]dexPair, error) {
	u := fmt.Sprintf("%s/tokens/v1/%s/%s", t.endpoint, dexScreenerChain, strings.Join(addresses, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
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

	var pairs []dexPair
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("decode response: %w", err), errorsx.ReasonToolDecode)
	}
	return pairs, nil
}

// splitTerm turns a comma-separated term into at most limit path-escaped addresses.
func splitTerm(term string, limit int) []string {
	var out []string
	for _, part := range strings.Split(term, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, url.PathEscape(part))
		if len(out) == limit {
			break
		}
	}
	return out
}

// formatMarketcap renders a market cap as e.g. "12M", "340K" or "999".
func formatMarketcap(v float64) string {
	switch {
	case v >= 1_000_000:
		return strconv.FormatFloat(v/1_000_000, 'f', 0, 64) + "M"
	case v >= 1_000:
		return strconv.FormatFloat(v/1_000, 'f', 0, 64) + "K"
	default:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
}
