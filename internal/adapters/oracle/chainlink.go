package oracle

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/satstack/swapkit/internal/core/domain"
)

// Ethereum mainnet Chainlink USD feed addresses.
const (
	btcUSDFeed = "0xF4030086522a5bEEa4988F8cA5B36dbC97BeE88c"
	ethUSDFeed = "0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419"
)

const aggregatorV3ABI = `[{"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},{"inputs":[],"name":"latestRoundData","outputs":[{"name":"roundId","type":"uint80"},{"name":"answer","type":"int256"},{"name":"startedAt","type":"uint256"},{"name":"updatedAt","type":"uint256"},{"name":"answeredInRound","type":"uint80"}],"stateMutability":"view","type":"function"}]`

// FeedReader reads spot prices from Chainlink aggregator contracts.
type FeedReader struct {
	client *ethclient.Client
	feeds  map[string]common.Address
	abi    abi.ABI
}

var _ domain.SpotPriceService = (*FeedReader)(nil)

// NewFeedReader connects to the RPC endpoint and prepares the feed ABI.
func NewFeedReader(rpcEndpoint string) (*FeedReader, error) {
	client, err := ethclient.Dial(rpcEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(aggregatorV3ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse aggregator ABI: %w", err)
	}
	return &FeedReader{
		client: client,
		feeds: map[string]common.Address{
			"BTC": common.HexToAddress(btcUSDFeed),
			"ETH": common.HexToAddress(ethUSDFeed),
		},
		abi: parsed,
	}, nil
}

// Close closes the client connection.
func (r *FeedReader) Close() {
	if r.client != nil {
		r.client.Close()
	}
}

// GetAssetPrice returns the feed's latest USD price, scaled by the feed's own
// decimals. Unknown symbols fall back to the BTC feed; a zero or negative
// answer surfaces as a zero price rather than an error, so downstream
// conversion short-circuits instead of dividing by a bad value.
func (r *FeedReader) GetAssetPrice(ctx context.Context, symbol string) (float64, error) {
	feed, ok := r.feeds[symbol]
	if !ok {
		feed = r.feeds["BTC"]
	}

	decimals, err := r.feedDecimals(ctx, feed)
	if err != nil {
		return 0, err
	}

	data, err := r.abi.Pack("latestRoundData")
	if err != nil {
		return 0, fmt.Errorf("failed to pack latestRoundData call: %w", err)
	}
	result, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &feed, Data: data}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to call latestRoundData: %w", err)
	}
	outputs, err := r.abi.Unpack("latestRoundData", result)
	if err != nil {
		return 0, fmt.Errorf("failed to unpack latestRoundData result: %w", err)
	}
	answer, ok := outputs[1].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected answer type in latestRoundData result")
	}
	if answer.Sign() <= 0 {
		return 0, nil
	}

	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	price, _ := new(big.Float).Quo(new(big.Float).SetInt(answer), scale).Float64()
	return price, nil
}

func (r *FeedReader) feedDecimals(ctx context.Context, feed common.Address) (uint8, error) {
	data, err := r.abi.Pack("decimals")
	if err != nil {
		return 0, fmt.Errorf("failed to pack decimals call: %w", err)
	}
	result, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &feed, Data: data}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to call decimals: %w", err)
	}
	var decimals uint8
	if err := r.abi.UnpackIntoInterface(&decimals, "decimals", result); err != nil {
		return 0, fmt.Errorf("failed to unpack decimals result: %w", err)
	}
	return decimals, nil
}
