package tools

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/blinxlabs/blinx/internal/config"
	"github.com/blinxlabs/blinx/internal/errorsx"
	"github.com/blinxlabs/blinx/internal/schema"
)

const solscanTxURL = "https://solscan.io/tx/"

var (
	allowedPools   = []string{"pump", "raydium", "auto"}
	allowedActions = []string{"buy", "sell"}
)

// Broadcaster signs a serialised transaction with key and submits it to the ledger.
type Broadcaster interface {
	SignAndSend(ctx context.Context, key ed25519.PrivateKey, rawTx []byte) (signature string, err error)
}

// TradeTool buys and sells tokens through PumpPortal's local-signing API.
// Every successful call broadcasts a new transaction, so it is not idempotent.
type TradeTool struct {
	endpoint    string
	secretKey   string
	slippage    float64
	priorityFee float64
	httpClient  *http.Client
	broadcaster Broadcaster
}

// NewTradeTool creates a TradeTool. The secret key is decoded on each call so
// a missing or malformed key only fails the trade, not startup.
func NewTradeTool(cfg config.TradeConfig, httpClient *http.Client, broadcaster Broadcaster) *TradeTool {
	return &TradeTool{
		endpoint:    cfg.Endpoint,
		secretKey:   cfg.PrivateKeypair,
		slippage:    cfg.Slippage,
		priorityFee: cfg.PriorityFee,
		httpClient:  httpClient,
		broadcaster: broadcaster,
	}
}

func (t *TradeTool) Definition() schema.Definition {
	return schema.Definition{
		Name:        string(ToolTrade),
		Description: "buy and sell token using pumpportal API",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"mintAddress": {
					"type": "string",
					"pattern": "` + base58Pattern + `"
				},
				"amount": {
					"type": "number"
				},
				"destination": {
					"type": "string",
					"pattern": "` + base58Pattern + `"
				},
				"action": {
					"type": "string",
					"enum": ["buy", "sell"]
				},
				"pool": {
					"type": "string",
					"enum": ["pump", "raydium", "auto"]
				}
			},
			"required": ["mintAddress", "amount", "destination", "action", "pool"]
		}`),
	}
}

type tradeArgs struct {
	MintAddress string  `json:"mintAddress"`
	Amount      float64 `json:"amount"`
	// Destination is validated but not sent: PumpPortal credits the signing wallet.
	Destination string `json:"destination"`
	Action      string `json:"action"`
	Pool        string `json:"pool"`
}

// tradeRequest is the body PumpPortal's trade-local endpoint expects.
type tradeRequest struct {
	PublicKey        string  `json:"publicKey"`
	Action           string  `json:"action"`
	Mint             string  `json:"mint"`
	DenominatedInSol string  `json:"denominatedInSol"`
	Amount           float64 `json:"amount"`
	Slippage         float64 `json:"slippage"`
	PriorityFee      float64 `json:"priorityFee"`
	Pool             string  `json:"pool"`
}

func (t *TradeTool) Invoke(ctx context.Context, params map[string]any) schema.Result {
	const prefix = "Trade failed: "

	var args tradeArgs
	if err := decodeArgs(params, &args); err != nil {
		return fail(ToolTrade, prefix, err)
	}
	if err := validateTradeArgs(&args); err != nil {
		return fail(ToolTrade, prefix, err)
	}

	key, err := decodeSecretKey(t.secretKey)
	if err != nil {
		return fail(ToolTrade, prefix, err)
	}
	owner := key.Public().(ed25519.PublicKey)

	rawTx, err := t.requestTransaction(ctx, tradeRequest{
		PublicKey:        base58.Encode(owner),
		Action:           args.Action,
		Mint:             args.MintAddress,
		DenominatedInSol: "false",
		Amount:           args.Amount,
		Slippage:         t.slippage,
		PriorityFee:      t.priorityFee,
		Pool:             args.Pool,
	})
	if err != nil {
		return fail(ToolTrade, prefix, err)
	}

	sig, err := t.broadcaster.SignAndSend(ctx, key, rawTx)
	if err != nil {
		return fail(ToolTrade, prefix, errorsx.Wrap(err, errorsx.ReasonToolBroadcast))
	}

	return schema.Success(schema.Status{
		Success:   true,
		Signature: sig,
		Message:   "Transaction successful: " + solscanTxURL + sig,
	})
}

// validateTradeArgs matches pool and action exactly as sent; "PUMP" or
// " pump" are rejected rather than normalised.
func validateTradeArgs(args *tradeArgs) error {
	if !contains(allowedPools, args.Pool) {
		return errorsx.Errorf(errorsx.ReasonToolValidation,
			"Invalid pool specified! Allowed values: %s", strings.Join(allowedPools, ", "))
	}
	if err := validateAddress("mintAddress", args.MintAddress); err != nil {
		return err
	}
	if err := validateAddress("destination", args.Destination); err != nil {
		return err
	}
	if !contains(allowedActions, args.Action) {
		return errorsx.Errorf(errorsx.ReasonToolValidation,
			"Invalid action specified! Allowed values: %s", strings.Join(allowedActions, ", "))
	}
	if args.Amount <= 0 {
		return errorsx.Errorf(errorsx.ReasonToolValidation, "amount must be positive, got %v", args.Amount)
	}
	return nil
}

// decodeSecretKey turns the base58 PRIVATE_KEYPAIR into an ed25519 key.
// Solana secret keys are the 32-byte seed followed by the 32-byte public key.
func decodeSecretKey(encoded string) (ed25519.PrivateKey, error) {
	if encoded == "" {
		return nil, errorsx.Errorf(errorsx.ReasonToolConfig, "PRIVATE_KEYPAIR is not set")
	}
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, errorsx.Errorf(errorsx.ReasonToolConfig, "PRIVATE_KEYPAIR is not valid base58: %v", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errorsx.Errorf(errorsx.ReasonToolConfig,
			"Invalid private key length! expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	key := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !key.Equal(ed25519.PrivateKey(raw)) {
		return nil, errorsx.Errorf(errorsx.ReasonToolConfig,
			"Invalid private key! public half does not match the seed")
	}
	return key, nil
}

// requestTransaction asks PumpPortal for the unsigned transaction bytes.
func (t *TradeTool) requestTransaction(ctx context.Context, body tradeRequest) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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
		return nil, errorsx.Errorf(errorsx.ReasonToolTransport, "API Error: %s", resp.Status)
	}
	if len(raw) == 0 {
		return nil, errorsx.Errorf(errorsx.ReasonToolDecode, "empty transaction in response")
	}
	return raw, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
