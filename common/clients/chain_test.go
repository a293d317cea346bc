package clients

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walruspass/walruspass/common/logger"
)

const testGasBudget = 100_000_000

func newTestChainClient(rpcURL string) *ChainClient {
	return NewChainClient(http.DefaultClient, rpcURL, "0xpackage", "0xlisting", testGasBudget, logger.New("error", "text"))
}

func TestCreateMintTransaction(t *testing.T) {
	c := newTestChainClient("http://unused")

	tx := c.CreateMintTransaction(200_000_000, "blob-1", "pass", "access pass")

	assert.Equal(t, "0xpackage", tx.PackageID)
	assert.Equal(t, "gatekeeper", tx.Module)
	assert.Equal(t, "mint_and_list", tx.Function)
	assert.Equal(t, uint64(testGasBudget), tx.GasBudget)
}

func TestSelectPaymentCoins(t *testing.T) {
	c := newTestChainClient("http://unused")

	coins := []Coin{
		{CoinObjectID: "0xsmall", Balance: "50000000"},
		{CoinObjectID: "0xbig", Balance: "500000000"},
		{CoinObjectID: "0xmid", Balance: "200000000"},
	}

	payment, gas, err := c.SelectPaymentCoins(coins, 100_000_000)
	require.NoError(t, err)

	// Largest pays, second largest covers gas
	assert.Equal(t, "0xbig", payment.CoinObjectID)
	assert.Equal(t, "0xmid", gas.CoinObjectID)
}

func TestSelectPaymentCoinsSingleCoin(t *testing.T) {
	c := newTestChainClient("http://unused")

	coins := []Coin{{CoinObjectID: "0xonly", Balance: "900000000"}}

	payment, gas, err := c.SelectPaymentCoins(coins, 100_000_000)
	require.NoError(t, err)
	assert.Equal(t, "0xonly", payment.CoinObjectID)
	assert.Equal(t, "0xonly", gas.CoinObjectID)
}

func TestSelectPaymentCoinsInsufficientBalance(t *testing.T) {
	c := newTestChainClient("http://unused")

	// Total covers the price but not price plus gas
	coins := []Coin{
		{CoinObjectID: "0xa", Balance: "100000000"},
		{CoinObjectID: "0xb", Balance: "50000000"},
	}

	_, _, err := c.SelectPaymentCoins(coins, 100_000_000)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, _, err = c.SelectPaymentCoins(nil, 1)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestSelectPaymentCoinsRequiredOverflowFailsClosed(t *testing.T) {
	c := newTestChainClient("http://unused")

	coins := []Coin{{CoinObjectID: "0xa", Balance: "18446744073709551615"}}

	// price + gas wraps uint64; a wrapped requirement must not pass the check
	_, _, err := c.SelectPaymentCoins(coins, math.MaxUint64)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestSelectPaymentCoinsTotalSaturatesInsteadOfWrapping(t *testing.T) {
	c := newTestChainClient("http://unused")

	// Two max-balance coins would wrap a naive sum to a tiny total and
	// reject a balance that trivially covers the price
	coins := []Coin{
		{CoinObjectID: "0xa", Balance: "18446744073709551615"},
		{CoinObjectID: "0xb", Balance: "18446744073709551615"},
	}

	payment, gas, err := c.SelectPaymentCoins(coins, 100_000_000)
	require.NoError(t, err)
	assert.NotEqual(t, payment.CoinObjectID, gas.CoinObjectID)
}

func TestResolveCreatedObjectID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			Params []any  `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sui_getTransactionBlock", req.Method)
		assert.Equal(t, "digest-1", req.Params[0])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result": map[string]any{
				"objectChanges": []map[string]any{
					{"type": "mutated", "objectId": "0xmutated"},
					{"type": "created", "objectId": "0xcreated"},
					{"type": "created", "objectId": "0xsecond"},
				},
			},
		})
	}))
	defer server.Close()

	c := newTestChainClient(server.URL)

	objectID, err := c.ResolveCreatedObjectID(context.Background(), "digest-1")
	require.NoError(t, err)
	assert.Equal(t, "0xcreated", objectID)
}

func TestResolveCreatedObjectIDNoCreation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result": map[string]any{
				"objectChanges": []map[string]any{
					{"type": "mutated", "objectId": "0xmutated"},
				},
			},
		})
	}))
	defer server.Close()

	c := newTestChainClient(server.URL)

	_, err := c.ResolveCreatedObjectID(context.Background(), "digest-1")
	assert.ErrorIs(t, err, ErrNoCreatedObject)
}

func TestResolveCreatedObjectIDRPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]any{"code": -32602, "message": "invalid digest"},
		})
	}))
	defer server.Close()

	c := newTestChainClient(server.URL)

	_, err := c.ResolveCreatedObjectID(context.Background(), "bad")
	assert.ErrorContains(t, err, "invalid digest")
}

func TestGetCoins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "suix_getCoins", req.Method)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result": map[string]any{
				"data": []map[string]any{
					{"coinObjectId": "0xa", "balance": "100"},
					{"coinObjectId": "0xb", "balance": "200"},
				},
			},
		})
	}))
	defer server.Close()

	c := newTestChainClient(server.URL)

	coins, err := c.GetCoins(context.Background(), "0xwallet")
	require.NoError(t, err)
	require.Len(t, coins, 2)
	assert.Equal(t, uint64(200), coins[1].BalanceValue())
}
