package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/blinxlabs/blinx/internal/config"
	"github.com/blinxlabs/blinx/internal/schema"
)

const topHoldersLimit = 10

// Holder is one entry of the top-holders result.
type Holder struct {
	Address string `json:"address"`
	Holding string `json:"holding"`
}

// TopHoldersTool lists the largest holders of a token.
type TopHoldersTool struct {
	bitquery bitqueryClient
}

// NewTopHoldersTool creates a TopHoldersTool.
func NewTopHoldersTool(cfg config.BitqueryConfig, httpClient *http.Client) *TopHoldersTool {
	return &TopHoldersTool{bitquery: newBitqueryClient(cfg, httpClient)}
}

func (t *TopHoldersTool) Definition() schema.Definition {
	return schema.Definition{
		Name:        string(ToolFetchTopHolders),
		Description: "Fetch the top holders of a token using the BITQUERY API",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"mintAddress": {
					"type": "string",
					"pattern": "` + base58Pattern + `"
				}
			},
			"required": ["mintAddress"]
		}`),
	}
}

func (t *TopHoldersTool) Invoke(ctx context.Context, params map[string]any) schema.Result {
	const prefix = "Fetch failed: "

	var args struct {
		MintAddress string `json:"mintAddress"`
	}
	if err := decodeArgs(params, &args); err != nil {
		return fail(ToolFetchTopHolders, prefix, err)
	}
	if err := validateAddress("mintAddress", args.MintAddress); err != nil {
		return fail(ToolFetchTopHolders, prefix, err)
	}

	raw, err := t.bitquery.query(ctx, topHoldersQuery(args.MintAddress))
	if err != nil {
		return fail(ToolFetchTopHolders, prefix, fmt.Errorf("failed to fetch top holders: %w", err))
	}

	updates := gjson.GetBytes(raw, "data.Solana.BalanceUpdates").Array()
	if len(updates) == 0 {
		return schema.Empty("No top holders found for MintAddress: " + args.MintAddress)
	}

	holders := make([]Holder, 0, len(updates))
	for _, u := range updates {
		h := Holder{
			Address: stringOr(u.Get("BalanceUpdate.Account.Address"), "Unknown Address"),
			Holding: formatHolding(u.Get("BalanceUpdate.Holding").String()),
		}
		holders = append(holders, h)
	}

	slog.Info("Top holders", "mint", args.MintAddress, "count", len(holders))
	for _, h := range holders {
		slog.Debug("Holder", "address", h.Address, "holding", h.Holding)
	}
	return schema.Success(holders)
}

// formatHolding renders a balance with six decimals; unparsable or missing
// balances read as zero.
func formatHolding(s string) string {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "0.000000"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func topHoldersQuery(mint string) string {
	return fmt.Sprintf(`
query TopHolders {
  Solana(dataset: realtime) {
    BalanceUpdates(
      limit: { count: %d }
      orderBy: { descendingByField: "BalanceUpdate_Holding_maximum" }
      where: {
        BalanceUpdate: {
          Currency: {
            MintAddress: { is: %q }
          }
        }
        Transaction: { Result: { Success: true } }
      }
    ) {
      BalanceUpdate {
        Account {
          Address
        }
        Holding: PostBalance(maximum: Block_Slot)
      }
    }
  }
}`, topHoldersLimit, mint)
}
