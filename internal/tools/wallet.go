package tools

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"net/http"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// RPCBroadcaster decodes versioned Solana transactions, signs them locally and
// sends them through a JSON-RPC node.
type RPCBroadcaster struct {
	client *rpc.Client
}

// NewRPCBroadcaster creates an RPCBroadcaster for endpoint that sends its
// JSON-RPC calls through httpClient.
func NewRPCBroadcaster(endpoint string, httpClient *http.Client) *RPCBroadcaster {
	rpcClient := jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{HTTPClient: httpClient})
	return &RPCBroadcaster{client: rpc.NewWithCustomRPCClient(rpcClient)}
}

func (b *RPCBroadcaster) SignAndSend(ctx context.Context, key ed25519.PrivateKey, rawTx []byte) (string, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(rawTx))
	if err != nil {
		return "", fmt.Errorf("deserialize transaction: %w", err)
	}

	signer := solana.PrivateKey(key)
	owner := signer.PublicKey()
	if _, err := tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(owner) {
			return &signer
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := b.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}
	return sig.String(), nil
}
