package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/satstack/swapkit/internal/core/domain"
	"github.com/satstack/swapkit/internal/logger"
	"github.com/satstack/swapkit/pkg/journal"
	"github.com/satstack/swapkit/pkg/swap"
)

// Executor signs and submits composed call sequences as sequential
// transactions. Order is preserved strictly: an approval broadcast before its
// swap is the whole point of the sequence, so a failed call aborts the rest.
type Executor struct {
	client  *ethclient.Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	journal *journal.Journal
}

var _ domain.ExecutionService = (*Executor)(nil)

// NewExecutor connects to the RPC endpoint and derives the sender address
// from the private key. j may be nil to skip submission journaling.
func NewExecutor(rpcEndpoint, privateKeyHex string, chainID int64, j *journal.Journal) (*Executor, error) {
	client, err := ethclient.Dial(rpcEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &Executor{
		client:  client,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(chainID),
		journal: j,
	}, nil
}

// From returns the sender address derived from the executor's key.
func (e *Executor) From() common.Address {
	return e.from
}

// Close closes the client connection.
func (e *Executor) Close() {
	if e.client != nil {
		e.client.Close()
	}
}

// Submit broadcasts the calls in order, waiting for each to mine before
// sending the next. The first failure aborts the remainder.
func (e *Executor) Submit(ctx context.Context, calls []swap.Call) error {
	if len(calls) == 0 {
		return nil
	}

	entryID := fmt.Sprintf("swap-%d", time.Now().UnixNano())
	if e.journal != nil {
		if _, err := e.journal.Record(entryID, e.from.Hex(), 0, calls); err != nil {
			return fmt.Errorf("failed to journal submission: %w", err)
		}
	}

	txHashes := make([]string, 0, len(calls))
	for i, call := range calls {
		hash, err := e.submitOne(ctx, call)
		if err != nil {
			err = fmt.Errorf("call %d of %d: %w", i+1, len(calls), err)
			e.journalFailed(entryID, err)
			return err
		}
		txHashes = append(txHashes, hash.Hex())

		logger.L().Info().
			Str("tx", hash.Hex()).
			Int("call", i+1).
			Int("of", len(calls)).
			Msg("call submitted")
	}

	if e.journal != nil {
		if err := e.journal.SetSubmitted(entryID, txHashes); err != nil {
			logger.L().Warn().Err(err).Str("entry", entryID).Msg("journal update failed")
		}
		if err := e.journal.SetConfirmed(entryID); err != nil {
			logger.L().Warn().Err(err).Str("entry", entryID).Msg("journal update failed")
		}
	}
	return nil
}

func (e *Executor) submitOne(ctx context.Context, call swap.Call) (common.Hash, error) {
	nonce, err := e.client.PendingNonceAt(ctx, e.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch nonce: %w", err)
	}
	gasPrice, err := e.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch gas price: %w", err)
	}

	value := call.Value
	if value == nil {
		value = big.NewInt(0)
	}

	gasLimit, err := e.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  e.from,
		To:    &call.To,
		Value: value,
		Data:  call.Data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to estimate gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &call.To,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     call.Data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(e.chainID), e.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := e.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to broadcast transaction: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, e.client, signed)
	if err != nil {
		return common.Hash{}, fmt.Errorf("waiting for transaction %s: %w", signed.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Hash{}, fmt.Errorf("transaction %s reverted", signed.Hash().Hex())
	}
	return signed.Hash(), nil
}

func (e *Executor) journalFailed(entryID string, cause error) {
	if e.journal == nil {
		return
	}
	if err := e.journal.SetFailed(entryID, cause); err != nil {
		logger.L().Warn().Err(err).Str("entry", entryID).Msg("journal update failed")
	}
}
