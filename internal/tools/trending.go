package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/blinxlabs/blinx/internal/config"
	"github.com/blinxlabs/blinx/internal/schema"
)

// solMint is wrapped SOL, the quote side of the trades ranked as trending.
const solMint = "So11111111111111111111111111111111111111112"

// trendingWindow is how far back trades are considered.
const trendingWindow = 24 * time.Hour

// TrendingTokensTool lists tokens recently traded against SOL.
type TrendingTokensTool struct {
	bitquery bitqueryClient
	now      func() time.Time
}

// NewTrendingTokensTool creates a TrendingTokensTool.
func NewTrendingTokensTool(cfg config.BitqueryConfig, httpClient *http.Client) *TrendingTokensTool {
	return &TrendingTokensTool{bitquery: newBitqueryClient(cfg, httpClient), now: time.Now}
}

func (t *TrendingTokensTool) Definition() schema.Definition {
	return schema.Definition{
		Name:        string(ToolFetchTrendingTokens),
		Description: "fetch trending Solana tokens using BITQUERY API",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"amount": {
					"type": "number"
				}
			},
			"required": ["amount"]
		}`),
	}
}

func (t *TrendingTokensTool) Invoke(ctx context.Context, params map[string]any) schema.Result {
	const prefix = "Failed to fetch trending token: "

	var args struct {
		Amount int `json:"amount"`
	}
	if err := decodeArgs(params, &args); err != nil {
		return fail(ToolFetchTrendingTokens, prefix, err)
	}
	if err := validatePositive("amount", args.Amount); err != nil {
		return fail(ToolFetchTrendingTokens, prefix, err)
	}

	now := t.now().UTC()
	raw, err := t.bitquery.query(ctx, trendingQuery(args.Amount, now.Add(-trendingWindow), now.Add(-5*time.Minute)))
	if err != nil {
		return fail(ToolFetchTrendingTokens, prefix, fmt.Errorf("failed to fetch trending tokens: %w", err))
	}

	trades := gjson.GetBytes(raw, "data.Solana.DEXTradeByTokens").Array()
	if len(trades) == 0 {
		return schema.Empty("No trending token found")
	}

	records := make([]json.RawMessage, 0, len(trades))
	for _, trade := range trades {
		slog.Info("Trending token",
			"mint", stringOr(trade.Get("Trade.Currency.MintAddress"), "Unknown Address"),
			"name", stringOr(trade.Get("Trade.Currency.Name"), "Unknown Token"),
		)
		records = append(records, json.RawMessage(trade.Raw))
	}
	return schema.Success(records)
}

func trendingQuery(limit int, since, recent time.Time) string {
	return fmt.Sprintf(`
query TrendingTokens {
  Solana {
    DEXTradeByTokens(
      where: {Transaction: {Result: {Success: true}}, Trade: {Side: {Currency: {MintAddress: {is: %q}}}}, Block: {Time: {since: %q}}}
      orderBy: {}
      limit: {count: %d}
    ) {
      Trade {
        Currency {
          Name
          MintAddress
          Symbol
        }
        start: PriceInUSD
        min5: PriceInUSD(
          minimum: Block_Time
          if: {Block: {Time: {after: %q}}}
        )
        end: PriceInUSD(maximum: Block_Time)
        Side {
          Currency {
            Symbol
            Name
            MintAddress
          }
        }
      }
    }
  }
}`, solMint, since.Format(time.RFC3339), limit, recent.Format(time.RFC3339))
}

// stringOr returns the string value of r, or def when it is missing or empty.
func stringOr(r gjson.Result, def string) string {
	if s := r.String(); s != "" {
		return s
	}
	return def
}
