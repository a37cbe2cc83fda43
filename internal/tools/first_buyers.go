package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/blinxlabs/blinx/internal/config"
	"github.com/blinxlabs/blinx/internal/schema"
)

// Buyer is one entry of the first-buyers result.
type Buyer struct {
	Amount string `json:"amount"`
	Owner  string `json:"owner"`
}

// FirstTopBuyerTool lists the earliest buyers of a token.
type FirstTopBuyerTool struct {
	bitquery bitqueryClient
}

// NewFirstTopBuyerTool creates a FirstTopBuyerTool.
func NewFirstTopBuyerTool(cfg config.BitqueryConfig, httpClient *http.Client) *FirstTopBuyerTool {
	return &FirstTopBuyerTool{bitquery: newBitqueryClient(cfg, httpClient)}
}

func (t *FirstTopBuyerTool) Definition() schema.Definition {
	return schema.Definition{
		Name:        string(ToolFetchFirstTopBuyer),
		Description: "Fetch first top buyers of a token using BITQUERY API",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"mintAddress": {
					"type": "string",
					"pattern": "` + base58Pattern + `"
				},
				"count": {
					"type": "number"
				}
			},
			"required": ["mintAddress", "count"]
		}`),
	}
}

func (t *FirstTopBuyerTool) Invoke(ctx context.Context, params map[string]any) schema.Result {
	const prefix = "Fetch failed: "

	var args struct {
		MintAddress string `json:"mintAddress"`
		Count       int    `json:"count"`
	}
	if err := decodeArgs(params, &args); err != nil {
		return fail(ToolFetchFirstTopBuyer, prefix, err)
	}
	if err := validateAddress("mintAddress", args.MintAddress); err != nil {
		return fail(ToolFetchFirstTopBuyer, prefix, err)
	}
	if err := validatePositive("count", args.Count); err != nil {
		return fail(ToolFetchFirstTopBuyer, prefix, err)
	}

	raw, err := t.bitquery.query(ctx, firstBuyersQuery(args.MintAddress, args.Count))
	if err != nil {
		return fail(ToolFetchFirstTopBuyer, prefix, fmt.Errorf("failed to fetch top buyers: %w", err))
	}

	trades := gjson.GetBytes(raw, "data.Solana.DEXTrades").Array()
	if len(trades) == 0 {
		return schema.Empty("No top buyers found for MintAddress: " + args.MintAddress)
	}

	buyers := make([]Buyer, 0, len(trades))
	for _, tr := range trades {
		buyers = append(buyers, Buyer{
			Amount: stringOr(tr.Get("Trade.Buy.Amount"), "0.000000"),
			Owner:  stringOr(tr.Get("Trade.Buy.Account.Token.Owner"), "Unknown Owner Address"),
		})
	}

	slog.Info("First buyers", "mint", args.MintAddress, "requested", args.Count, "found", len(buyers))
	return schema.Success(buyers)
}

func firstBuyersQuery(mint string, count int) string {
	return fmt.Sprintf(`
query FirstBuyers {
  Solana {
    DEXTrades(
      where: {
        Trade: {
          Buy: {
            Currency: {
              MintAddress: { is: %q }
            }
          }
        }
      }
      limit: { count: %d }
      orderBy: { ascending: Block_Time }
    ) {
      Trade {
        Buy {
          Amount
          Account {
            Token {
              Owner
            }
          }
        }
      }
    }
  }
}`, mint, count)
}
