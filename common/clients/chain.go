package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"net/http"
	"sort"
	"strconv"
)

// SuiCoinType is the coin type used for payments and gas
const SuiCoinType = "0x2::sui::SUI"

// ErrNoCreatedObject is returned when a transaction's effects contain no created object
var ErrNoCreatedObject = errors.New("no created object in transaction effects")

// ErrInsufficientBalance is returned before submission when the owned coins
// cannot cover price plus gas
var ErrInsufficientBalance = errors.New("insufficient balance for price plus gas")

// Coin is an owned coin object
type Coin struct {
	CoinObjectID string `json:"coinObjectId"`
	Balance      string `json:"balance"`
}

// BalanceValue parses the coin balance into smallest units
func (c Coin) BalanceValue() uint64 {
	v, _ := strconv.ParseUint(c.Balance, 10, 64)
	return v
}

// Transaction is an unsigned move call awaiting a wallet signature
type Transaction struct {
	PackageID  string   `json:"packageId"`
	Module     string   `json:"module"`
	Function   string   `json:"function"`
	Arguments  []any    `json:"arguments"`
	GasBudget  uint64   `json:"gasBudget"`
	GasPayment []string `json:"gasPayment,omitempty"`
}

// Signer signs and submits a transaction, returning its digest.
// Implementations hold the wallet key material; the chain client never does.
type Signer interface {
	SignAndExecute(ctx context.Context, tx *Transaction) (string, error)
}

// ChainClient builds wallet-signable transactions against the marketplace
// contract and resolves their on-chain effects over JSON-RPC.
type ChainClient struct {
	http      *http.Client
	rpcURL    string
	packageID string
	listingID string
	gasBudget uint64
	logger    Logger
}

// NewChainClient creates a chain client for a fixed package and listing
func NewChainClient(httpClient *http.Client, rpcURL, packageID, listingID string, gasBudget uint64, logger Logger) *ChainClient {
	return &ChainClient{
		http:      httpClient,
		rpcURL:    rpcURL,
		packageID: packageID,
		listingID: listingID,
		gasBudget: gasBudget,
		logger:    logger,
	}
}

// CreateMintTransaction builds the unsigned mint+list move call.
// Price is in smallest units (MIST).
func (c *ChainClient) CreateMintTransaction(price uint64, blobID, name, description string) *Transaction {
	return &Transaction{
		PackageID: c.packageID,
		Module:    "gatekeeper",
		Function:  "mint_and_list",
		Arguments: []any{
			c.listingID,
			strconv.FormatUint(price, 10),
			blobID,
			name,
			description,
		},
		GasBudget: c.gasBudget,
	}
}

// CreateBuyTransaction builds the unsigned purchase move call
func (c *ChainClient) CreateBuyTransaction(nftID, paymentCoinID, gasCoinID string) *Transaction {
	return &Transaction{
		PackageID: c.packageID,
		Module:    "gatekeeper",
		Function:  "buy_nft",
		Arguments: []any{
			c.listingID,
			nftID,
			paymentCoinID,
		},
		GasBudget:  c.gasBudget,
		GasPayment: []string{gasCoinID},
	}
}

// GetCoins lists SUI coin objects owned by an address
func (c *ChainClient) GetCoins(ctx context.Context, owner string) ([]Coin, error) {
	var result struct {
		Data []Coin `json:"data"`
	}

	if err := c.rpcCall(ctx, "suix_getCoins", []any{owner, SuiCoinType, nil, 10}, &result); err != nil {
		c.logger.Error("failed to get coins", "owner", owner, "error", err)
		return nil, err
	}

	return result.Data, nil
}

// SelectPaymentCoins picks the two largest-balance coins to cover price plus
// gas: the largest pays, the second largest (or the same coin) covers gas.
// It fails before submission when the total balance is insufficient.
func (c *ChainClient) SelectPaymentCoins(coins []Coin, price uint64) (payment, gas Coin, err error) {
	if len(coins) == 0 {
		return Coin{}, Coin{}, ErrInsufficientBalance
	}

	required, carry := bits.Add64(price, c.gasBudget, 0)
	if carry != 0 {
		// price + gas exceeds uint64; no balance can cover it
		c.logger.Error("required amount overflows", "price", price, "gas_budget", c.gasBudget)
		return Coin{}, Coin{}, ErrInsufficientBalance
	}

	var total uint64
	for _, coin := range coins {
		sum, carry := bits.Add64(total, coin.BalanceValue(), 0)
		if carry != 0 {
			total = math.MaxUint64
			break
		}
		total = sum
	}

	if total < required {
		c.logger.Error("insufficient total balance",
			"required", required,
			"available", total,
		)
		return Coin{}, Coin{}, ErrInsufficientBalance
	}

	sorted := make([]Coin, len(coins))
	copy(sorted, coins)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].BalanceValue() > sorted[j].BalanceValue()
	})

	payment = sorted[0]
	gas = sorted[0]
	if len(sorted) > 1 {
		gas = sorted[1]
	}

	return payment, gas, nil
}

// ExecuteTransaction signs and submits a transaction via the given signer
func (c *ChainClient) ExecuteTransaction(ctx context.Context, tx *Transaction, signer Signer) (string, error) {
	c.logger.Info("submitting transaction",
		"module", tx.Module,
		"function", tx.Function,
		"gas_budget", tx.GasBudget,
	)

	digest, err := signer.SignAndExecute(ctx, tx)
	if err != nil {
		c.logger.Error("transaction submission failed", "function", tx.Function, "error", err)
		return "", err
	}

	c.logger.Info("transaction submitted", "digest", digest)
	return digest, nil
}

// ResolveCreatedObjectID inspects a transaction's object changes and returns
// the id of the first created object. Returns ErrNoCreatedObject when the
// transaction created nothing.
func (c *ChainClient) ResolveCreatedObjectID(ctx context.Context, digest string) (string, error) {
	var result struct {
		ObjectChanges []struct {
			Type     string `json:"type"`
			ObjectID string `json:"objectId"`
		} `json:"objectChanges"`
	}

	params := []any{
		digest,
		map[string]bool{"showObjectChanges": true, "showEffects": true},
	}

	if err := c.rpcCall(ctx, "sui_getTransactionBlock", params, &result); err != nil {
		c.logger.Error("failed to fetch transaction block", "digest", digest, "error", err)
		return "", err
	}

	for _, change := range result.ObjectChanges {
		if change.Type == "created" {
			c.logger.Info("resolved created object", "digest", digest, "object_id", change.ObjectID)
			return change.ObjectID, nil
		}
	}

	c.logger.Error("no created object found in transaction", "digest", digest)
	return "", ErrNoCreatedObject
}

func (c *ChainClient) rpcCall(ctx context.Context, method string, params []any, result any) error {
	payload, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rpc call %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read rpc response: %w", err)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode rpc envelope: %w", err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("rpc error %d: %s", envelope.Error.Code, envelope.Error.Message)
	}

	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to decode rpc result: %w", err)
		}
	}

	return nil
}
